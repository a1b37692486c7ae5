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

package modbus

import (
	"fmt"

	libbuf "github.com/nabbar/goptk/buffer"
	libcdc "github.com/nabbar/goptk/codec"
	libhdl "github.com/nabbar/goptk/handle"
	libevl "github.com/nabbar/goptk/loop"
	libptt "github.com/nabbar/goptk/protothread"

	libval "github.com/go-playground/validator/v10"
	liberr "github.com/nabbar/golib/errors"
)

// ServerConfig parameterizes one echo server.
type ServerConfig struct {
	// Address is the host:port the server binds and listens on; port 0
	// picks an ephemeral port readable through LocalAddr.
	Address string `json:"address" yaml:"address" toml:"address" mapstructure:"address" validate:"required,hostname_port|tcp4_addr"`

	// Backlog is the listen backlog; zero selects the system maximum.
	Backlog int `json:"backlog" yaml:"backlog" toml:"backlog" mapstructure:"backlog" validate:"gte=0"`
}

// Validate checks the config against its constraints.
func (c ServerConfig) Validate() liberr.Error {
	val := libval.New()
	er := val.Struct(c)

	if er == nil {
		return nil
	}

	if e, ok := er.(*libval.InvalidValidationError); ok {
		return ErrorValidatorError.Error(e)
	}

	out := ErrorValidatorError.Error(nil)

	for _, e := range er.(libval.ValidationErrors) {
		//nolint goerr113
		out.Add(fmt.Errorf("config field '%s' is not validated by constraint '%s'", e.Field(), e.ActualTag()))
	}

	if out.HasParent() {
		return out
	}

	return nil
}

// Server accepts Modbus/TCP connections and echoes every well-formed frame
// back to its sender. It demonstrates the accept-read-reply pattern of the
// toolkit: one protothread accepts, one protothread per connection frames
// and replies, and the caller pumps the loop.
type Server interface {
	// Listen creates the listening socket, binds, listens and arms the
	// accepting protothread.
	Listen() error

	// LocalAddr returns the bound address, useful after binding port 0.
	LocalAddr() (string, error)

	// Close shuts the listening socket. Live connections drain on their
	// own.
	Close() error
}

// NewServer builds an echo server on the given loop. The loop is not pumped
// by the server; the caller owns the cadence.
func NewServer(l libevl.Loop, cfg ServerConfig) (Server, error) {
	if l == nil {
		return nil, ErrorNilPointer.Error(nil)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &srv{
		l:   l,
		cfg: cfg,
	}, nil
}

type srv struct {
	l    libevl.Loop
	cfg  ServerConfig
	sock libhdl.Handle
	acc  libptt.Thread
}

func (o *srv) Listen() error {
	h, err := o.l.SocketTCP()
	if err != nil {
		return err
	}

	if err = o.l.Bind(h, o.cfg.Address); err != nil {
		_ = o.l.Free(h)
		return err
	}

	if err = o.l.Listen(h, o.cfg.Backlog); err != nil {
		_ = o.l.Free(h)
		return err
	}

	o.sock = h
	o.acc.Init(acceptRun, o)

	if _, err = libptt.Adopt(o.l, &o.acc); err != nil {
		_ = o.l.Free(h)
		return err
	}

	// prime the accept loop so it parks on the listener
	return o.acc.Resume()
}

func (o *srv) LocalAddr() (string, error) {
	return o.l.LocalAddr(o.sock)
}

func (o *srv) Close() error {
	return o.l.Close(o.sock)
}

// acceptRun drains the pending-connection queue, spawning one connection
// protothread per accepted socket, then parks on the listener readability.
func acceptRun(t *libptt.Thread) libptt.Status {
	o := t.Context().(*srv)

	for {
		h, err := o.l.Accept(o.sock)

		if liberr.IsCode(err, libevl.ErrorWouldBlock) {
			if st, er := t.WaitEvent(o.l, o.sock, libevl.EventReadable, 0); er == nil {
				return st
			}
			return t.Exit()
		} else if err != nil {
			return t.Exit()
		}

		if c, er := newConn(o, h); er != nil {
			_ = o.l.Free(h)
		} else if er = c.t.Resume(); er != nil {
			_ = o.l.Free(h)
		}
	}
}

// conn carries one connection: its protothread, the receive buffer the
// framing loop accumulates into and the transmit buffer the echo drains
// from.
type conn struct {
	s    *srv
	sock libhdl.Handle
	t    libptt.Thread
	rx   libbuf.Buffer
	tx   libbuf.Buffer
}

func newConn(o *srv, sock libhdl.Handle) (*conn, error) {
	rx, err := libbuf.New(MaxFrameSize)
	if err != nil {
		return nil, err
	}

	tx, err := libbuf.New(MaxFrameSize)
	if err != nil {
		return nil, err
	}

	c := &conn{
		s:    o,
		sock: sock,
		rx:   rx,
		tx:   tx,
	}

	c.t.Init(connRun, c)

	if _, err = libptt.Adopt(o.l, &c.t); err != nil {
		return nil, err
	}

	return c, nil
}

func (c *conn) close() {
	_ = c.s.l.Free(c.sock)
}

// Connection steps.
const (
	stepFrame = iota
	stepReply
)

// connRun frames one request at a time: accumulate the MBAP header, learn
// the announced length, accumulate the rest, then echo exactly that frame
// back. Pipelined bytes of a following frame stay in the receive buffer and
// are framed before the thread parks again.
func connRun(t *libptt.Thread) libptt.Status {
	c := t.Context().(*conn)

	for {
		switch t.Step() {
		case stepFrame:
			hdr, err := ConsumeHeader(c.rx, true)

			switch {
			case liberr.IsCode(err, libcdc.ErrorBufferTooSmall):
				// header incomplete, pull more bytes
				if st, er := t.Recv(c.s.l, c.sock, c.rx, stepFrame); er != nil {
					c.close()
					return t.Exit()
				} else if st != libptt.StatusRunning {
					return st
				}
				continue

			case err != nil:
				c.close()
				return t.Exit()
			}

			if err = hdr.Validate(); err != nil {
				c.close()
				return t.Exit()
			}

			if c.rx.Len() < hdr.FrameSize() {
				if st, er := t.Recv(c.s.l, c.sock, c.rx, stepFrame); er != nil {
					c.close()
					return t.Exit()
				} else if st != libptt.StatusRunning {
					return st
				}
				continue
			}

			// move the complete frame to the transmit buffer, leaving any
			// pipelined surplus in place
			frame := c.tx.Free()[:hdr.FrameSize()]

			if err = libcdc.ConsumeBytes(c.rx, frame, false); err != nil {
				c.close()
				return t.Exit()
			}

			if err = c.tx.SetEnd(c.tx.End() + hdr.FrameSize()); err != nil {
				c.close()
				return t.Exit()
			}

			if err = c.rx.MoveTo(0); err != nil {
				c.close()
				return t.Exit()
			}

			t.SetStep(stepReply)

		case stepReply:
			if st, err := t.Send(c.s.l, c.sock, c.tx, stepReply); err != nil {
				c.close()
				return t.Exit()
			} else if st != libptt.StatusRunning {
				return st
			}

			c.tx.Reset()
			t.SetStep(stepFrame)

		default:
			return t.End()
		}
	}
}
