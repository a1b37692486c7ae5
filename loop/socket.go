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

package loop

import (
	"net"
	"strconv"

	libhdl "github.com/nabbar/goptk/handle"

	liberr "github.com/nabbar/golib/errors"
	libptc "github.com/nabbar/golib/network/protocol"

	"golang.org/x/sys/unix"
)

// resolveInet4 resolves a host:port string to an IPv4 socket address. Name
// resolution is whatever the OS resolver provides, nothing more.
func resolveInet4(addr string) (unix.SockaddrInet4, liberr.Error) {
	var sa unix.SockaddrInet4

	ua, err := net.ResolveUDPAddr("udp4", addr)
	if err != nil {
		return sa, ErrorInvalidArgument.Error(err)
	}

	sa.Port = ua.Port

	if ua.IP != nil {
		ip4 := ua.IP.To4()
		if ip4 == nil {
			return sa, ErrorUnsupported.Error(nil)
		}
		copy(sa.Addr[:], ip4)
	}

	return sa, nil
}

func sockaddrString(sa unix.Sockaddr) string {
	if s4, ok := sa.(*unix.SockaddrInet4); ok {
		return net.JoinHostPort(net.IP(s4.Addr[:]).String(), strconv.Itoa(s4.Port))
	}

	return ""
}

func (o *lp) socketCreate(typ int, proto libptc.NetworkProtocol) (libhdl.Handle, error) {
	i, ok := o.smu.NextClear(0)

	if !ok || i >= uint(len(o.skt)) {
		return libhdl.Nil, o.setErr(ErrorOutOfResources.Error(nil))
	}

	fd, err := unix.Socket(unix.AF_INET, typ, 0)
	if err != nil {
		return libhdl.Nil, o.setErr(ErrorSystem.Error(err))
	}

	if err = unix.SetNonblock(fd, true); err != nil {
		_ = unix.Close(fd)
		return libhdl.Nil, o.setErr(ErrorSystem.Error(err))
	}

	unix.CloseOnExec(fd)

	gen := allocGen(o.skt[i].gen)
	o.skt[i] = socketSlot{gen: gen, fd: fd, proto: proto}
	o.smu.Set(i)

	return libhdl.New(libhdl.KindSocket, o.id, gen, uint32(i)), nil
}

func (o *lp) SocketTCP() (libhdl.Handle, error) {
	return o.socketCreate(unix.SOCK_STREAM, libptc.NetworkTCP)
}

func (o *lp) SocketUDP() (libhdl.Handle, error) {
	return o.socketCreate(unix.SOCK_DGRAM, libptc.NetworkUDP)
}

func (o *lp) SocketProtocol(h libhdl.Handle) (libptc.NetworkProtocol, error) {
	s, err := o.socket(h)
	if err != nil {
		return libptc.NetworkEmpty, o.setErr(err)
	}

	return s.proto, nil
}

func (o *lp) Connect(h libhdl.Handle, addr string) error {
	s, err := o.socket(h)
	if err != nil {
		return o.setErr(err)
	}

	if s.fd < 0 {
		return o.setErr(ErrorClosed.Error(nil))
	} else if s.connected || s.connecting {
		return o.setErr(ErrorAlreadyConnected.Error(nil))
	} else if s.listening {
		return o.setErr(ErrorUnsupported.Error(nil))
	}

	sa, er := resolveInet4(addr)
	if er != nil {
		return o.setErr(er)
	}

	e := unix.Connect(s.fd, &sa)

	switch {
	case e == nil:
		s.connected = true
		return nil
	case e == unix.EINPROGRESS && s.proto == libptc.NetworkTCP:
		s.connecting = true
		return o.setErr(ErrorWouldBlock.Error(nil))
	}

	return o.setErr(netError(e))
}

func (o *lp) Bind(h libhdl.Handle, addr string) error {
	s, err := o.socket(h)
	if err != nil {
		return o.setErr(err)
	}

	if s.fd < 0 {
		return o.setErr(ErrorClosed.Error(nil))
	}

	sa, er := resolveInet4(addr)
	if er != nil {
		return o.setErr(er)
	}

	if s.proto == libptc.NetworkTCP {
		_ = unix.SetsockoptInt(s.fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
	}

	if e := unix.Bind(s.fd, &sa); e != nil {
		return o.setErr(netError(e))
	}

	return nil
}

func (o *lp) Listen(h libhdl.Handle, backlog int) error {
	s, err := o.socket(h)
	if err != nil {
		return o.setErr(err)
	}

	if s.fd < 0 {
		return o.setErr(ErrorClosed.Error(nil))
	} else if s.proto != libptc.NetworkTCP {
		return o.setErr(ErrorUnsupported.Error(nil))
	}

	if backlog < 1 {
		backlog = unix.SOMAXCONN
	}

	if e := unix.Listen(s.fd, backlog); e != nil {
		return o.setErr(netError(e))
	}

	s.listening = true
	return nil
}

func (o *lp) Accept(h libhdl.Handle) (libhdl.Handle, error) {
	s, err := o.socket(h)
	if err != nil {
		return libhdl.Nil, o.setErr(err)
	}

	if s.fd < 0 {
		return libhdl.Nil, o.setErr(ErrorClosed.Error(nil))
	} else if !s.listening {
		return libhdl.Nil, o.setErr(ErrorUnsupported.Error(nil))
	}

	nfd, _, e := unix.Accept(s.fd)
	if e != nil {
		return libhdl.Nil, o.setErr(netError(e))
	}

	if er := unix.SetNonblock(nfd, true); er != nil {
		_ = unix.Close(nfd)
		return libhdl.Nil, o.setErr(ErrorSystem.Error(er))
	}

	unix.CloseOnExec(nfd)

	i, ok := o.smu.NextClear(0)
	if !ok || i >= uint(len(o.skt)) {
		_ = unix.Close(nfd)
		return libhdl.Nil, o.setErr(ErrorOutOfResources.Error(nil))
	}

	gen := allocGen(o.skt[i].gen)
	o.skt[i] = socketSlot{gen: gen, fd: nfd, proto: libptc.NetworkTCP, connected: true}
	o.smu.Set(i)

	return libhdl.New(libhdl.KindSocket, o.id, gen, uint32(i)), nil
}

func (o *lp) Send(h libhdl.Handle, b Reader) (int, error) {
	s, err := o.socket(h)
	if err != nil {
		return 0, o.setErr(err)
	}

	if b == nil {
		return 0, o.setErr(ErrorNilPointer.Error(nil))
	} else if s.fd < 0 {
		return 0, o.setErr(ErrorClosed.Error(nil))
	} else if !s.connected {
		return 0, o.setErr(ErrorNotConnected.Error(nil))
	} else if b.Len() < 1 {
		return 0, o.setErr(ErrorParamEmpty.Error(nil))
	}

	n, e := unix.Write(s.fd, b.Bytes())
	if e != nil {
		if e == unix.EPIPE || e == unix.ECONNRESET {
			s.connected = false
		}
		return 0, o.setErr(netError(e))
	}

	if er := b.SetStart(b.Start() + n); er != nil {
		return n, o.setErr(er)
	}

	return n, nil
}

func (o *lp) Recv(h libhdl.Handle, b Writer) (int, error) {
	s, err := o.socket(h)
	if err != nil {
		return 0, o.setErr(err)
	}

	if b == nil {
		return 0, o.setErr(ErrorNilPointer.Error(nil))
	} else if s.fd < 0 {
		return 0, o.setErr(ErrorClosed.Error(nil))
	} else if b.Remaining() < 1 {
		return 0, o.setErr(ErrorBufferTooSmall.Error(nil))
	}

	n, e := unix.Read(s.fd, b.Free())
	if e != nil {
		if e == unix.ECONNRESET {
			s.connected = false
		}
		return 0, o.setErr(netError(e))
	}

	if n == 0 {
		if s.proto == libptc.NetworkTCP {
			s.connected = false
			return 0, o.setErr(ErrorConnectionReset.Error(nil))
		}
		return 0, nil
	}

	if er := b.SetEnd(b.End() + n); er != nil {
		return 0, o.setErr(er)
	}

	return n, nil
}

func (o *lp) SendTo(h libhdl.Handle, b Reader, addr string) (int, error) {
	s, err := o.socket(h)
	if err != nil {
		return 0, o.setErr(err)
	}

	if b == nil {
		return 0, o.setErr(ErrorNilPointer.Error(nil))
	} else if s.fd < 0 {
		return 0, o.setErr(ErrorClosed.Error(nil))
	} else if s.proto != libptc.NetworkUDP {
		return 0, o.setErr(ErrorUnsupported.Error(nil))
	} else if b.Len() < 1 {
		return 0, o.setErr(ErrorParamEmpty.Error(nil))
	}

	sa, er := resolveInet4(addr)
	if er != nil {
		return 0, o.setErr(er)
	}

	if e := unix.Sendto(s.fd, b.Bytes(), 0, &sa); e != nil {
		return 0, o.setErr(netError(e))
	}

	n := b.Len()

	if er := b.SetStart(b.Start() + n); er != nil {
		return n, o.setErr(er)
	}

	return n, nil
}

func (o *lp) RecvFrom(h libhdl.Handle, b Writer) (int, string, error) {
	s, err := o.socket(h)
	if err != nil {
		return 0, "", o.setErr(err)
	}

	if b == nil {
		return 0, "", o.setErr(ErrorNilPointer.Error(nil))
	} else if s.fd < 0 {
		return 0, "", o.setErr(ErrorClosed.Error(nil))
	} else if s.proto != libptc.NetworkUDP {
		return 0, "", o.setErr(ErrorUnsupported.Error(nil))
	} else if b.Remaining() < 1 {
		return 0, "", o.setErr(ErrorBufferTooSmall.Error(nil))
	}

	n, sa, e := unix.Recvfrom(s.fd, b.Free(), 0)
	if e != nil {
		return 0, "", o.setErr(netError(e))
	}

	if n > 0 {
		if er := b.SetEnd(b.End() + n); er != nil {
			return 0, "", o.setErr(er)
		}
	}

	return n, sockaddrString(sa), nil
}

func (o *lp) LocalAddr(h libhdl.Handle) (string, error) {
	s, err := o.socket(h)
	if err != nil {
		return "", o.setErr(err)
	}

	if s.fd < 0 {
		return "", o.setErr(ErrorClosed.Error(nil))
	}

	sa, e := unix.Getsockname(s.fd)
	if e != nil {
		return "", o.setErr(netError(e))
	}

	return sockaddrString(sa), nil
}

func (o *lp) PeerAddr(h libhdl.Handle) (string, error) {
	s, err := o.socket(h)
	if err != nil {
		return "", o.setErr(err)
	}

	if s.fd < 0 {
		return "", o.setErr(ErrorClosed.Error(nil))
	}

	sa, e := unix.Getpeername(s.fd)
	if e != nil {
		return "", o.setErr(netError(e))
	}

	return sockaddrString(sa), nil
}

func (o *lp) SetBroadcast(h libhdl.Handle, enable bool) error {
	s, err := o.socket(h)
	if err != nil {
		return o.setErr(err)
	}

	if s.fd < 0 {
		return o.setErr(ErrorClosed.Error(nil))
	} else if s.proto != libptc.NetworkUDP {
		return o.setErr(ErrorUnsupported.Error(nil))
	}

	v := 0
	if enable {
		v = 1
	}

	if e := unix.SetsockoptInt(s.fd, unix.SOL_SOCKET, unix.SO_BROADCAST, v); e != nil {
		return o.setErr(netError(e))
	}

	return nil
}

func (o *lp) Close(h libhdl.Handle) error {
	s, err := o.socket(h)
	if err != nil {
		return o.setErr(err)
	}

	if s.fd < 0 {
		return nil
	}

	_ = unix.Close(s.fd)
	s.fd = -1
	s.connected = false
	s.listening = false
	s.connecting = false

	return nil
}
