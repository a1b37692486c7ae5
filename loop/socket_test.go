/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package loop_test

import (
	libbuf "github.com/nabbar/goptk/buffer"
	libhdl "github.com/nabbar/goptk/handle"
	libevl "github.com/nabbar/goptk/loop"
	liberr "github.com/nabbar/golib/errors"
	libptc "github.com/nabbar/golib/network/protocol"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// loadBuf returns a buffer holding the given live bytes.
func loadBuf(capacity int, data []byte) libbuf.Buffer {
	b, err := libbuf.New(capacity)
	Expect(err).ToNot(HaveOccurred())
	copy(b.Free(), data)
	Expect(b.SetEnd(len(data))).ToNot(HaveOccurred())
	return b
}

var _ = Describe("UDP Socket", func() {
	var (
		l    libevl.Loop
		recv libhdl.Handle
		send libhdl.Handle
	)

	BeforeEach(func() {
		l = newLoop()

		var err error

		recv, err = l.SocketUDP()
		Expect(err).ToNot(HaveOccurred())

		send, err = l.SocketUDP()
		Expect(err).ToNot(HaveOccurred())

		Expect(l.Bind(recv, "127.0.0.1:0")).ToNot(HaveOccurred())
		Expect(l.Bind(send, "127.0.0.1:0")).ToNot(HaveOccurred())
	})

	It("should report its transport and assigned port", func() {
		p, err := l.SocketProtocol(recv)
		Expect(err).ToNot(HaveOccurred())
		Expect(p).To(Equal(libptc.NetworkUDP))

		addr, err := l.LocalAddr(recv)
		Expect(err).ToNot(HaveOccurred())
		Expect(addr).To(HavePrefix("127.0.0.1:"))
		Expect(addr).ToNot(HaveSuffix(":0"))
	})

	It("should echo one datagram with the sender address", func() {
		addr, err := l.LocalAddr(recv)
		Expect(err).ToNot(HaveOccurred())

		tx := loadBuf(16, []byte("hello"))

		n, err := l.SendTo(send, tx, addr)
		Expect(err).ToNot(HaveOccurred())
		Expect(n).To(Equal(5))
		Expect(tx.Len()).To(Equal(0))

		from, err := l.LocalAddr(send)
		Expect(err).ToNot(HaveOccurred())

		rx, err := libbuf.New(16)
		Expect(err).ToNot(HaveOccurred())

		var (
			got  int
			peer string
		)

		ok := pumpUntil(l, timeoutSocket, func() bool {
			if got > 0 {
				return true
			}

			if m, p, er := l.RecvFrom(recv, rx); er == nil && m > 0 {
				got = m
				peer = p
				return true
			}

			return false
		})

		Expect(ok).To(BeTrue())
		Expect(got).To(Equal(5))
		Expect(string(rx.Bytes())).To(Equal("hello"))
		Expect(peer).To(Equal(from))
	})

	It("should dispatch readability through a registered handler", func() {
		addr, err := l.LocalAddr(recv)
		Expect(err).ToNot(HaveOccurred())

		rx, err := libbuf.New(16)
		Expect(err).ToNot(HaveOccurred())

		var payload string

		Expect(l.SetHandler(recv, libevl.EventReadable, func(lo libevl.Loop, ev libevl.Event, _ any) {
			if _, _, er := lo.RecvFrom(ev.Resource, rx); er == nil {
				payload = string(rx.Bytes())
			}
		}, nil)).ToNot(HaveOccurred())

		tx := loadBuf(16, []byte("ping"))
		_, err = l.SendTo(send, tx, addr)
		Expect(err).ToNot(HaveOccurred())

		Expect(pumpUntil(l, timeoutSocket, func() bool { return payload != "" })).To(BeTrue())
		Expect(payload).To(Equal("ping"))
	})

	It("should return would-block when nothing is pending", func() {
		rx, err := libbuf.New(16)
		Expect(err).ToNot(HaveOccurred())

		_, _, er := l.RecvFrom(recv, rx)
		Expect(liberr.IsCode(er, libevl.ErrorWouldBlock)).To(BeTrue())
	})

	It("should toggle broadcast", func() {
		Expect(l.SetBroadcast(send, true)).ToNot(HaveOccurred())
		Expect(l.SetBroadcast(send, false)).ToNot(HaveOccurred())
	})

	It("should manage multicast membership and options on the loopback group", func() {
		Expect(l.JoinGroup(recv, "224.0.0.251", "lo")).ToNot(HaveOccurred())
		Expect(l.SetMulticastTTL(recv, 2)).ToNot(HaveOccurred())
		Expect(l.SetMulticastLoopback(recv, true)).ToNot(HaveOccurred())
		Expect(l.LeaveGroup(recv, "224.0.0.251", "lo")).ToNot(HaveOccurred())
	})

	It("should refuse a unicast group address", func() {
		err := l.JoinGroup(recv, "127.0.0.1", "")
		Expect(liberr.IsCode(err, libevl.ErrorInvalidArgument)).To(BeTrue())
	})

	It("should refuse TCP-only operations", func() {
		err := l.Listen(recv, 0)
		Expect(liberr.IsCode(err, libevl.ErrorUnsupported)).To(BeTrue())

		_, err = l.Accept(recv)
		Expect(liberr.IsCode(err, libevl.ErrorUnsupported)).To(BeTrue())
	})

	It("should close idempotently", func() {
		Expect(l.Close(recv)).ToNot(HaveOccurred())
		Expect(l.Close(recv)).ToNot(HaveOccurred())

		_, _, err := l.RecvFrom(recv, loadBuf(4, nil))
		Expect(liberr.IsCode(err, libevl.ErrorClosed)).To(BeTrue())
	})
})

var _ = Describe("TCP Socket", func() {
	var l libevl.Loop

	BeforeEach(func() {
		l = newLoop()
	})

	It("should refuse UDP-only operations", func() {
		h, err := l.SocketTCP()
		Expect(err).ToNot(HaveOccurred())

		err = l.SetBroadcast(h, true)
		Expect(liberr.IsCode(err, libevl.ErrorUnsupported)).To(BeTrue())

		err = l.JoinGroup(h, "224.0.0.251", "")
		Expect(liberr.IsCode(err, libevl.ErrorUnsupported)).To(BeTrue())
	})

	It("should refuse sending on a socket that is not connected", func() {
		h, err := l.SocketTCP()
		Expect(err).ToNot(HaveOccurred())

		_, er := l.Send(h, loadBuf(4, []byte{1}))
		Expect(liberr.IsCode(er, libevl.ErrorNotConnected)).To(BeTrue())
	})

	It("should surface the address-in-use failure", func() {
		a, err := l.SocketTCP()
		Expect(err).ToNot(HaveOccurred())

		Expect(l.Bind(a, "127.0.0.1:0")).ToNot(HaveOccurred())
		Expect(l.Listen(a, 0)).ToNot(HaveOccurred())

		addr, err := l.LocalAddr(a)
		Expect(err).ToNot(HaveOccurred())

		b, err := l.SocketTCP()
		Expect(err).ToNot(HaveOccurred())

		Expect(l.Bind(b, addr)).To(HaveOccurred())
		Expect(liberr.IsCode(l.LastError(), libevl.ErrorAddressInUse)).To(BeTrue())
	})

	It("should map a refused connection into the taxonomy", func() {
		// reserve a port, then close it so nothing listens there
		probe, err := l.SocketTCP()
		Expect(err).ToNot(HaveOccurred())
		Expect(l.Bind(probe, "127.0.0.1:0")).ToNot(HaveOccurred())

		addr, err := l.LocalAddr(probe)
		Expect(err).ToNot(HaveOccurred())
		Expect(l.Free(probe)).ToNot(HaveOccurred())

		cli, err := l.SocketTCP()
		Expect(err).ToNot(HaveOccurred())

		failed := false
		Expect(l.SetHandler(cli, libevl.EventError, func(_ libevl.Loop, _ libevl.Event, _ any) {
			failed = true
		}, nil)).ToNot(HaveOccurred())

		er := l.Connect(cli, addr)

		if liberr.IsCode(er, libevl.ErrorWouldBlock) {
			Expect(pumpUntil(l, timeoutSocket, func() bool { return failed })).To(BeTrue())
			Expect(liberr.IsCode(l.LastError(), libevl.ErrorConnectionRefused)).To(BeTrue())
		} else {
			Expect(liberr.IsCode(er, libevl.ErrorConnectionRefused)).To(BeTrue())
		}
	})

	It("should connect, exchange and observe the peer closing", func() {
		srv, err := l.SocketTCP()
		Expect(err).ToNot(HaveOccurred())

		Expect(l.Bind(srv, "127.0.0.1:0")).ToNot(HaveOccurred())
		Expect(l.Listen(srv, 0)).ToNot(HaveOccurred())

		addr, err := l.LocalAddr(srv)
		Expect(err).ToNot(HaveOccurred())

		cli, err := l.SocketTCP()
		Expect(err).ToNot(HaveOccurred())

		connected := false
		Expect(l.SetHandler(cli, libevl.EventConnected, func(_ libevl.Loop, _ libevl.Event, _ any) {
			connected = true
		}, nil)).ToNot(HaveOccurred())

		if er := l.Connect(cli, addr); er != nil {
			Expect(liberr.IsCode(er, libevl.ErrorWouldBlock)).To(BeTrue())
			Expect(pumpUntil(l, timeoutSocket, func() bool { return connected })).To(BeTrue())
		}

		var acc libhdl.Handle

		Expect(pumpUntil(l, timeoutSocket, func() bool {
			if !acc.IsNil() {
				return true
			}
			if h, er := l.Accept(srv); er == nil {
				acc = h
				return true
			}
			return false
		})).To(BeTrue())

		tx := loadBuf(8, []byte("abc"))
		_, err = l.Send(cli, tx)
		Expect(err).ToNot(HaveOccurred())

		rx, err := libbuf.New(8)
		Expect(err).ToNot(HaveOccurred())

		Expect(pumpUntil(l, timeoutSocket, func() bool {
			n, _ := l.Recv(acc, rx)
			return n > 0 || rx.Len() > 0
		})).To(BeTrue())
		Expect(string(rx.Bytes())).To(Equal("abc"))

		// peer closes; the blocked side reads the reset condition
		Expect(l.Close(cli)).ToNot(HaveOccurred())

		reset := false
		Expect(pumpUntil(l, timeoutSocket, func() bool {
			rx2, er := libbuf.New(8)
			Expect(er).ToNot(HaveOccurred())
			_, e := l.Recv(acc, rx2)
			if liberr.IsCode(e, libevl.ErrorConnectionReset) {
				reset = true
			}
			return reset
		})).To(BeTrue())
	})
})
