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
	"time"

	libhdl "github.com/nabbar/goptk/handle"

	"golang.org/x/sys/unix"
)

// interest reports the poll events one socket needs this pump. Readiness is
// only requested for conditions some handler observes, so an idle socket
// never turns the pump into a busy loop.
func (s *socketSlot) interest() int16 {
	var ev int16

	for i := range s.handlers {
		if !s.handlers[i].used {
			continue
		}

		switch s.handlers[i].evt {
		case EventReadable:
			ev |= unix.POLLIN
		case EventWritable:
			ev |= unix.POLLOUT
		}
	}

	if s.connecting {
		ev |= unix.POLLOUT
	}

	return ev
}

func (o *lp) Run() error {
	if !o.run.CompareAndSwap(false, true) {
		return o.setErr(ErrorLoopRunning.Error(nil))
	}

	defer o.run.Store(false)

	// build the poll set: wake pipe first, then every open socket with a
	// registered interest.
	o.pfd = o.pfd[:0]
	o.pix = o.pix[:0]
	o.pfd = append(o.pfd, unix.PollFd{Fd: int32(o.wkr), Events: unix.POLLIN})

	for i := range o.skt {
		if !o.smu.Test(uint(i)) || o.skt[i].fd < 0 {
			continue
		}

		if ev := o.skt[i].interest(); ev != 0 {
			o.pfd = append(o.pfd, unix.PollFd{Fd: int32(o.skt[i].fd), Events: ev})
			o.pix = append(o.pix, i)
		}
	}

	wait := o.nextDeadline(time.Now(), o.cfg.PollWait)
	ms := int(wait.Milliseconds())

	if ms == 0 && wait > 0 {
		ms = 1
	}

	_, err := unix.Poll(o.pfd, ms)
	if err != nil && err != unix.EINTR {
		return o.setErr(ErrorSystem.Error(err))
	}

	o.pumpTimers(time.Now())

	for k, i := range o.pix {
		if re := o.pfd[k+1].Revents; re != 0 {
			o.pumpSocket(i, re)
		}
	}

	o.drainWake()
	o.pumpUsers()

	return nil
}

// pumpSocket translates one socket's poll results into events, at most one
// dispatch per event type per pump.
func (o *lp) pumpSocket(i int, re int16) {
	s := &o.skt[i]

	if !o.smu.Test(uint(i)) || s.fd < 0 {
		return
	}

	h := libhdl.New(libhdl.KindSocket, o.id, s.gen, uint32(i))

	// a pending connect resolves on any readiness and owns this pump's
	// events: SO_ERROR is drained exactly once
	if s.connecting && re&(unix.POLLOUT|unix.POLLERR|unix.POLLHUP) != 0 {
		s.connecting = false

		if err := sockError(s.fd); err != nil {
			_ = o.setErr(netError(err))
			o.dispatch(h, EventError, nil, s.handlers[:])
		} else {
			s.connected = true
			o.dispatch(h, EventConnected, nil, s.handlers[:])
		}

		return
	}

	if re&unix.POLLERR != 0 {
		if err := sockError(s.fd); err != nil {
			_ = o.setErr(netError(err))
		}

		o.dispatch(h, EventError, nil, s.handlers[:])
	}

	if re&unix.POLLHUP != 0 && s.connected {
		s.connected = false
		o.dispatch(h, EventDisconnected, nil, s.handlers[:])
	}

	if re&unix.POLLOUT != 0 {
		o.dispatch(h, EventWritable, nil, s.handlers[:])
	}

	if re&unix.POLLIN != 0 {
		o.dispatch(h, EventReadable, nil, s.handlers[:])
	}
}

// sockError drains SO_ERROR, returning the pending errno if any.
func sockError(fd int) error {
	v, err := unix.GetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_ERROR)

	if err != nil {
		return err
	} else if v != 0 {
		return unix.Errno(v)
	}

	return nil
}
