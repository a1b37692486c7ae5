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
	"os"

	libhdl "github.com/nabbar/goptk/handle"

	liberr "github.com/nabbar/golib/errors"
	libptc "github.com/nabbar/golib/network/protocol"

	"golang.org/x/net/ipv4"
	"golang.org/x/sys/unix"
)

// withIPv4 runs fct against an ipv4.PacketConn view of the socket. The view
// wraps a dup of the file descriptor; socket options set through it apply to
// the shared file description, so the original socket is configured even
// though the dup is closed before returning.
func (o *lp) withIPv4(h libhdl.Handle, fct func(p *ipv4.PacketConn) error) error {
	s, err := o.socket(h)
	if err != nil {
		return o.setErr(err)
	}

	if s.fd < 0 {
		return o.setErr(ErrorClosed.Error(nil))
	} else if s.proto != libptc.NetworkUDP {
		return o.setErr(ErrorUnsupported.Error(nil))
	}

	nfd, e := unix.Dup(s.fd)
	if e != nil {
		return o.setErr(ErrorSystem.Error(e))
	}

	f := os.NewFile(uintptr(nfd), "goptk-mcast")

	pc, e := net.FilePacketConn(f)
	_ = f.Close()

	if e != nil {
		return o.setErr(ErrorSystem.Error(e))
	}

	defer func() {
		_ = pc.Close()
	}()

	if e = fct(ipv4.NewPacketConn(pc)); e != nil {
		return o.setErr(netError(e))
	}

	return nil
}

func resolveGroup(group string) (*net.UDPAddr, liberr.Error) {
	ip := net.ParseIP(group)

	if ip == nil || ip.To4() == nil || !ip.IsMulticast() {
		return nil, ErrorInvalidArgument.Error(nil)
	}

	return &net.UDPAddr{IP: ip.To4()}, nil
}

func resolveIface(name string) (*net.Interface, liberr.Error) {
	if name == "" {
		return nil, nil
	}

	ifi, err := net.InterfaceByName(name)
	if err != nil {
		return nil, ErrorInvalidArgument.Error(err)
	}

	return ifi, nil
}

func (o *lp) JoinGroup(h libhdl.Handle, group string, ifName string) error {
	ga, err := resolveGroup(group)
	if err != nil {
		return o.setErr(err)
	}

	ifi, err := resolveIface(ifName)
	if err != nil {
		return o.setErr(err)
	}

	return o.withIPv4(h, func(p *ipv4.PacketConn) error {
		return p.JoinGroup(ifi, ga)
	})
}

func (o *lp) LeaveGroup(h libhdl.Handle, group string, ifName string) error {
	ga, err := resolveGroup(group)
	if err != nil {
		return o.setErr(err)
	}

	ifi, err := resolveIface(ifName)
	if err != nil {
		return o.setErr(err)
	}

	return o.withIPv4(h, func(p *ipv4.PacketConn) error {
		return p.LeaveGroup(ifi, ga)
	})
}

func (o *lp) SetMulticastTTL(h libhdl.Handle, ttl int) error {
	if ttl < 0 || ttl > 255 {
		return o.setErr(ErrorInvalidArgument.Error(nil))
	}

	return o.withIPv4(h, func(p *ipv4.PacketConn) error {
		return p.SetMulticastTTL(ttl)
	})
}

func (o *lp) SetMulticastLoopback(h libhdl.Handle, enable bool) error {
	return o.withIPv4(h, func(p *ipv4.PacketConn) error {
		return p.SetMulticastLoopback(enable)
	})
}
