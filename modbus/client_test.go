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

package modbus_test

import (
	"encoding/binary"
	"io"
	"net"

	libmbp "github.com/nabbar/goptk/modbus"
	liberr "github.com/nabbar/golib/errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// serveRegisters runs a minimal blocking Modbus/TCP responder answering one
// read-holding-registers request with the given values.
func serveRegisters(ln net.Listener, regs []uint16) {
	defer GinkgoRecover()

	conn, err := ln.Accept()
	if err != nil {
		return
	}

	defer func() {
		_ = conn.Close()
	}()

	req := make([]byte, 12)
	if _, err = io.ReadFull(conn, req); err != nil {
		return
	}

	pdu := make([]byte, 2+2*len(regs))
	pdu[0] = 0x03
	pdu[1] = byte(2 * len(regs))

	for i, v := range regs {
		binary.BigEndian.PutUint16(pdu[2+2*i:], v)
	}

	resp := make([]byte, 0, libmbp.HeaderSize+len(pdu))
	resp = binary.BigEndian.AppendUint16(resp, binary.BigEndian.Uint16(req[0:2]))
	resp = binary.BigEndian.AppendUint16(resp, 0)
	resp = binary.BigEndian.AppendUint16(resp, uint16(1+len(pdu)))
	resp = append(resp, req[6])
	resp = append(resp, pdu...)

	_, _ = conn.Write(resp)
}

var _ = Describe("Client", func() {
	It("should read holding registers end to end", func() {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		Expect(err).ToNot(HaveOccurred())

		DeferCleanup(func() {
			_ = ln.Close()
		})

		want := []uint16{0x0102, 0xBEEF, 0x00FF}
		go serveRegisters(ln, want)

		l := newLoop()

		cli, err := libmbp.NewClient(l, libmbp.ClientConfig{Address: ln.Addr().String(), Unit: 1})
		Expect(err).ToNot(HaveOccurred())

		Expect(cli.Connect()).ToNot(HaveOccurred())
		Expect(pumpUntil(l, timeoutPump, cli.Connected)).To(BeTrue())

		var (
			got  []uint16
			fail error
			done bool
		)

		Expect(cli.ReadHoldingRegisters(0, 3, func(regs []uint16, err error) {
			got = regs
			fail = err
			done = true
		})).ToNot(HaveOccurred())

		Expect(pumpUntil(l, timeoutPump, func() bool { return done })).To(BeTrue())
		Expect(fail).ToNot(HaveOccurred())
		Expect(got).To(Equal(want))

		Expect(cli.Close()).ToNot(HaveOccurred())
	})

	It("should refuse a request while disconnected", func() {
		l := newLoop()

		cli, err := libmbp.NewClient(l, libmbp.ClientConfig{Address: "127.0.0.1:1", Unit: 1})
		Expect(err).ToNot(HaveOccurred())

		er := cli.ReadHoldingRegisters(0, 1, func([]uint16, error) {})
		Expect(liberr.IsCode(er, libmbp.ErrorNotConnected)).To(BeTrue())
	})

	It("should refuse overlapping requests", func() {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		Expect(err).ToNot(HaveOccurred())

		DeferCleanup(func() {
			_ = ln.Close()
		})

		l := newLoop()

		cli, err := libmbp.NewClient(l, libmbp.ClientConfig{Address: ln.Addr().String(), Unit: 1})
		Expect(err).ToNot(HaveOccurred())

		Expect(cli.Connect()).ToNot(HaveOccurred())
		Expect(pumpUntil(l, timeoutPump, cli.Connected)).To(BeTrue())

		Expect(cli.ReadHoldingRegisters(0, 1, func([]uint16, error) {})).ToNot(HaveOccurred())

		er := cli.ReadHoldingRegisters(0, 1, func([]uint16, error) {})
		Expect(liberr.IsCode(er, libmbp.ErrorPending)).To(BeTrue())
	})

	It("should refuse an out-of-range quantity", func() {
		l := newLoop()

		cli, err := libmbp.NewClient(l, libmbp.ClientConfig{Address: "127.0.0.1:1", Unit: 1})
		Expect(err).ToNot(HaveOccurred())

		er := cli.ReadHoldingRegisters(0, 0, func([]uint16, error) {})
		Expect(er).To(HaveOccurred())
	})
})
