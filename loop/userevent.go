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
	libhdl "github.com/nabbar/goptk/handle"

	"golang.org/x/sys/unix"
)

// openWake opens the self pipe a foreign-goroutine Raise writes to so a
// parked pump wakes immediately.
func (o *lp) openWake() error {
	var p [2]int

	if err := unix.Pipe(p[:]); err != nil {
		return ErrorSystem.Error(err)
	}

	for _, fd := range p {
		if err := unix.SetNonblock(fd, true); err != nil {
			_ = unix.Close(p[0])
			_ = unix.Close(p[1])
			return ErrorSystem.Error(err)
		}
		unix.CloseOnExec(fd)
	}

	o.wkr = p[0]
	o.wkw = p[1]

	return nil
}

func (o *lp) closeWake() {
	if o.wkr >= 0 {
		_ = unix.Close(o.wkr)
		o.wkr = -1
	}

	if o.wkw >= 0 {
		_ = unix.Close(o.wkw)
		o.wkw = -1
	}
}

// wake writes one byte to the pipe unless a wake is already pending. The
// byte count never grows past one per pump, keeping the pipe drain cheap.
func (o *lp) wake() {
	if !o.wkp.CompareAndSwap(false, true) {
		return
	}

	var b = [1]byte{1}
	_, _ = unix.Write(o.wkw, b[:])
}

// drainWake empties the pipe and rearms the wake flag.
func (o *lp) drainWake() {
	var b [16]byte

	for {
		if n, err := unix.Read(o.wkr, b[:]); n < 1 || err != nil {
			break
		}
	}

	o.wkp.Store(false)
}

func (o *lp) UserEvent() (libhdl.Handle, error) {
	o.uml.Lock()
	defer o.uml.Unlock()

	i, ok := o.umu.NextClear(0)

	if !ok || i >= uint(len(o.uev)) {
		return libhdl.Nil, o.setErr(ErrorOutOfResources.Error(nil))
	}

	s := &o.uev[i]
	s.gen = allocGen(s.gen)
	s.npend = 0
	s.data = nil
	clearHandlers(s.handlers[:])
	o.umu.Set(i)

	return libhdl.New(libhdl.KindUserEvent, o.id, s.gen, uint32(i)), nil
}

func (o *lp) Raise(h libhdl.Handle, evt EventType, data any) error {
	s, err := o.user(h)
	if err != nil {
		return o.setErr(err)
	}

	s.mux.Lock()

	found := false
	for i := 0; i < s.npend; i++ {
		if s.pend[i] == evt {
			found = true
			break
		}
	}

	if !found && s.npend < len(s.pend) {
		s.pend[s.npend] = evt
		s.npend++
	}

	s.data = data
	s.mux.Unlock()

	o.wake()

	return nil
}

// pumpUsers dispatches every coalesced signal queued since the previous
// pump: one dispatch per (source, event type) however many times it was
// raised, carrying the latest data only.
func (o *lp) pumpUsers() {
	for i := range o.uev {
		o.uml.RLock()
		used := o.umu.Test(uint(i))
		o.uml.RUnlock()

		if !used {
			continue
		}

		s := &o.uev[i]

		s.mux.Lock()
		n := s.npend
		var pend [maxUserHandler]EventType
		copy(pend[:], s.pend[:n])
		data := s.data
		s.npend = 0
		s.data = nil
		s.mux.Unlock()

		if n < 1 {
			continue
		}

		h := libhdl.New(libhdl.KindUserEvent, o.id, s.gen, uint32(i))

		for k := 0; k < n; k++ {
			o.dispatch(h, pend[k], data, s.handlers[:])
		}
	}
}
