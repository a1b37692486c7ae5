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

// Modbus function codes used by the sample client.
const (
	fctReadHoldingRegisters = 0x03
	fctExceptionFlag        = 0x80
)

// ClientConfig parameterizes one client.
type ClientConfig struct {
	// Address is the server host:port.
	Address string `json:"address" yaml:"address" toml:"address" mapstructure:"address" validate:"required,hostname_port"`

	// Unit is the unit identifier stamped on every request.
	Unit uint8 `json:"unit" yaml:"unit" toml:"unit" mapstructure:"unit"`
}

// Validate checks the config against its constraints.
func (c ClientConfig) Validate() liberr.Error {
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

// Client issues Modbus/TCP requests over one connection driven by the
// caller's loop pump. One request is in flight at a time; the result is
// delivered through the callback given to the request call, on the loop
// goroutine.
type Client interface {
	// Connect starts connecting the socket. Completion surfaces on a later
	// pump; poll Connected between pumps.
	Connect() error

	// Connected reports whether the connection is established.
	Connected() bool

	// Close shuts the connection.
	Close() error

	// ReadHoldingRegisters requests qty registers starting at addr. The
	// callback receives the register values or the decoded failure once the
	// response frame arrived.
	ReadHoldingRegisters(addr, qty uint16, done func(regs []uint16, err error)) error
}

// NewClient builds a client on the given loop.
func NewClient(l libevl.Loop, cfg ClientConfig) (Client, error) {
	if l == nil {
		return nil, ErrorNilPointer.Error(nil)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	rx, err := libbuf.New(MaxFrameSize)
	if err != nil {
		return nil, err
	}

	tx, err := libbuf.New(MaxFrameSize)
	if err != nil {
		return nil, err
	}

	return &cli{
		l:   l,
		cfg: cfg,
		rx:  rx,
		tx:  tx,
	}, nil
}

type cli struct {
	l   libevl.Loop
	cfg ClientConfig

	sock libhdl.Handle
	t    libptt.Thread
	rx   libbuf.Buffer
	tx   libbuf.Buffer

	up      bool
	pending bool
	txid    uint16
	done    func(regs []uint16, err error)
}

func (o *cli) Connect() error {
	h, err := o.l.SocketTCP()
	if err != nil {
		return err
	}

	o.sock = h
	o.t.Init(requestRun, o)

	if _, err = libptt.Adopt(o.l, &o.t); err != nil {
		_ = o.l.Free(h)
		return err
	}

	// track the connection state from the loop's own dispatch
	for _, evt := range []libevl.EventType{libevl.EventConnected, libevl.EventDisconnected, libevl.EventError} {
		if err = o.l.SetHandler(h, evt, o.onState, nil); err != nil {
			_ = o.l.Free(h)
			return err
		}
	}

	err = o.l.Connect(h, o.cfg.Address)

	if err == nil {
		o.up = true
		return nil
	} else if liberr.IsCode(err, libevl.ErrorWouldBlock) {
		return nil
	}

	_ = o.l.Free(h)
	return err
}

func (o *cli) onState(l libevl.Loop, ev libevl.Event, _ any) {
	switch ev.Type {
	case libevl.EventConnected:
		o.up = true
	case libevl.EventDisconnected, libevl.EventError:
		o.up = false
	}
}

func (o *cli) Connected() bool {
	return o.up
}

func (o *cli) Close() error {
	o.up = false
	return o.l.Close(o.sock)
}

func (o *cli) ReadHoldingRegisters(addr, qty uint16, done func(regs []uint16, err error)) error {
	if done == nil {
		return ErrorNilPointer.Error(nil)
	} else if qty < 1 || qty > 125 {
		return ErrorParamEmpty.Error(nil)
	} else if !o.up {
		return ErrorNotConnected.Error(nil)
	} else if o.pending {
		return ErrorPending.Error(nil)
	}

	o.txid++
	o.tx.Reset()

	err := libcdc.Produce(o.tx, libcdc.BigEndian,
		libcdc.U16(o.txid),
		libcdc.U16(protocolModbus),
		libcdc.U16(6),
		libcdc.U8(o.cfg.Unit),
		libcdc.U8(fctReadHoldingRegisters),
		libcdc.U16(addr),
		libcdc.U16(qty),
	)

	if err != nil {
		return err
	}

	o.pending = true
	o.done = done

	return o.t.Resume()
}

func (o *cli) finish(regs []uint16, err error) {
	done := o.done
	o.pending = false
	o.done = nil

	if done != nil {
		done(regs, err)
	}
}

// Request steps.
const (
	stepSend = iota
	stepRecv
)

// requestRun sends the queued request, then frames and decodes the
// response.
func requestRun(t *libptt.Thread) libptt.Status {
	o := t.Context().(*cli)

	for {
		switch t.Step() {
		case stepSend:
			if st, err := t.Send(o.l, o.sock, o.tx, stepSend); err != nil {
				o.finish(nil, err)
				return t.Exit()
			} else if st != libptt.StatusRunning {
				return st
			}

			t.SetStep(stepRecv)

		case stepRecv:
			hdr, err := ConsumeHeader(o.rx, true)

			switch {
			case liberr.IsCode(err, libcdc.ErrorBufferTooSmall):
				if st, er := t.Recv(o.l, o.sock, o.rx, stepRecv); er != nil {
					o.finish(nil, er)
					return t.Exit()
				} else if st != libptt.StatusRunning {
					return st
				}
				continue

			case err != nil:
				o.finish(nil, err)
				return t.Exit()
			}

			if err = hdr.Validate(); err != nil {
				o.finish(nil, err)
				return t.Exit()
			}

			if o.rx.Len() < hdr.FrameSize() {
				if st, er := t.Recv(o.l, o.sock, o.rx, stepRecv); er != nil {
					o.finish(nil, er)
					return t.Exit()
				} else if st != libptt.StatusRunning {
					return st
				}
				continue
			}

			regs, err := o.decode(hdr)

			if er := o.rx.MoveTo(0); er != nil && err == nil {
				err = er
			}

			o.finish(regs, err)
			return t.End()
		}
	}
}

// decode consumes one complete response frame and extracts the register
// values.
func (o *cli) decode(hdr Header) ([]uint16, error) {
	if _, err := ConsumeHeader(o.rx, false); err != nil {
		return nil, err
	}

	if hdr.Transaction != o.txid {
		return nil, ErrorTransaction.Error(nil)
	}

	fct, err := libcdc.ConsumeU8(o.rx, libcdc.BigEndian, false)
	if err != nil {
		return nil, err
	}

	if fct&fctExceptionFlag != 0 {
		if code, er := libcdc.ConsumeU8(o.rx, libcdc.BigEndian, false); er == nil {
			return nil, ErrorException.Error(fmt.Errorf("exception code 0x%02x", code))
		}
		return nil, ErrorException.Error(nil)
	}

	if fct != fctReadHoldingRegisters {
		return nil, ErrorBadFormat.Error(nil)
	}

	count, err := libcdc.ConsumeU8(o.rx, libcdc.BigEndian, false)
	if err != nil {
		return nil, err
	}

	if int(count) != hdr.PDUSize()-2 || count%2 != 0 {
		return nil, ErrorBadFormat.Error(nil)
	}

	regs := make([]uint16, count/2)

	for i := range regs {
		if regs[i], err = libcdc.ConsumeU16(o.rx, libcdc.BigEndian, false); err != nil {
			return nil, err
		}
	}

	return regs, nil
}
