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
	"context"
	"fmt"
	"sync"
	"time"

	libhdl "github.com/nabbar/goptk/handle"

	libatm "github.com/nabbar/golib/atomic"
	liberr "github.com/nabbar/golib/errors"
	liblog "github.com/nabbar/golib/logger"
	logent "github.com/nabbar/golib/logger/entry"
	loglvl "github.com/nabbar/golib/logger/level"
	libptc "github.com/nabbar/golib/network/protocol"

	"github.com/bits-and-blooms/bitset"
	"golang.org/x/sys/unix"
)

type timerSlot struct {
	gen       uint16
	armed     bool
	repeating bool
	stopped   bool
	interval  time.Duration
	deadline  time.Time
	handlers  [maxTimerHandler]handlerRec
}

type socketSlot struct {
	gen        uint16
	fd         int
	proto      libptc.NetworkProtocol
	connected  bool
	listening  bool
	connecting bool
	handlers   [maxSocketHandler]handlerRec
}

type userSlot struct {
	gen      uint16
	handlers [maxUserHandler]handlerRec

	// mux guards the coalescing state below, the only loop state touched
	// from foreign goroutines.
	mux   sync.Mutex
	pend  [maxUserHandler]EventType
	npend int
	data  any
}

type taskSlot struct {
	gen  uint16
	task Task
}

type lp struct {
	x   context.Context
	h   libhdl.Handle
	id  uint8
	cfg Config
	log liblog.FuncLog

	run libatm.Value[bool]
	err libatm.Value[error]

	// wake channel: self pipe written by Raise, drained by the pump.
	wkr int
	wkw int
	wkp libatm.Value[bool]

	// uml guards user event slot occupancy against foreign-goroutine
	// lookups performed by Raise.
	uml sync.RWMutex

	tmr []timerSlot
	tmu *bitset.BitSet
	skt []socketSlot
	smu *bitset.BitSet
	uev []userSlot
	umu *bitset.BitSet
	tsk []taskSlot
	kmu *bitset.BitSet

	// poll scratch, sized once at creation: pfd[0] is the wake pipe, every
	// further entry maps to the socket slot held at the same position of pix.
	pfd []unix.PollFd
	pix []int
}

func (o *lp) Handle() libhdl.Handle {
	return o.h
}

func (o *lp) IsRunning() bool {
	return o.run.Load()
}

func (o *lp) LastError() error {
	return o.err.Load()
}

func (o *lp) setErr(err error) error {
	if err != nil {
		o.err.Store(err)
	}

	return err
}

// entry returns a log entry or nil when no logger is configured; call sites
// must guard the nil.
func (o *lp) entry(lvl loglvl.Level, msg string, args ...interface{}) logent.Entry {
	if o.log == nil {
		return nil
	} else if l := o.log(); l == nil {
		return nil
	} else {
		return l.Entry(lvl, msg, args...)
	}
}

func (o *lp) Destroy() error {
	if o.IsRunning() {
		return o.setErr(ErrorLoopRunning.Error(nil))
	}

	for i := range o.skt {
		if o.smu.Test(uint(i)) && o.skt[i].fd >= 0 {
			_ = unix.Close(o.skt[i].fd)
			o.skt[i].fd = -1
		}
	}

	o.closeWake()
	poolDel(o)

	if ent := o.entry(loglvl.DebugLevel, "event loop destroyed"); ent != nil {
		ent.FieldAdd("loop", o.id).Log()
	}

	return nil
}

func (o *lp) Valid(h libhdl.Handle) bool {
	switch h.Kind() {
	case libhdl.KindLoop:
		return h == o.h
	case libhdl.KindTimer:
		_, err := o.timer(h)
		return err == nil
	case libhdl.KindSocket:
		_, err := o.socket(h)
		return err == nil
	case libhdl.KindUserEvent:
		_, err := o.user(h)
		return err == nil
	case libhdl.KindTask:
		_, err := o.task(h)
		return err == nil
	}

	return false
}

func (o *lp) Type(h libhdl.Handle) (libhdl.Kind, error) {
	if !o.Valid(h) {
		return libhdl.KindNil, o.setErr(ErrorInvalidHandle.Error(nil))
	}

	return h.Kind(), nil
}

// allocGen bumps a slot generation, skipping zero so an occupied slot never
// carries the generation of the nil handle.
func allocGen(gen uint16) uint16 {
	gen++

	if gen == 0 {
		gen = 1
	}

	return gen
}

// checkGen asserts the occupancy invariant: an occupied slot with a zero
// generation can only come from memory corruption or a toolkit bug, never
// from caller misuse.
func checkGen(gen uint16, kind libhdl.Kind, slot uint32) {
	if gen == 0 {
		panic(fmt.Sprintf("goptk/loop: occupied %s slot %d holds a zero generation", kind, slot))
	}
}

func (o *lp) timer(h libhdl.Handle) (*timerSlot, liberr.Error) {
	if h.Kind() != libhdl.KindTimer || h.LoopID() != o.id {
		return nil, ErrorInvalidHandle.Error(nil)
	}

	i := h.Slot()

	if i >= uint32(len(o.tmr)) || !o.tmu.Test(uint(i)) {
		return nil, ErrorInvalidHandle.Error(nil)
	}

	checkGen(o.tmr[i].gen, libhdl.KindTimer, i)

	if o.tmr[i].gen != h.Generation() {
		return nil, ErrorInvalidHandle.Error(nil)
	}

	return &o.tmr[i], nil
}

func (o *lp) socket(h libhdl.Handle) (*socketSlot, liberr.Error) {
	if h.Kind() != libhdl.KindSocket || h.LoopID() != o.id {
		return nil, ErrorInvalidHandle.Error(nil)
	}

	i := h.Slot()

	if i >= uint32(len(o.skt)) || !o.smu.Test(uint(i)) {
		return nil, ErrorInvalidHandle.Error(nil)
	}

	checkGen(o.skt[i].gen, libhdl.KindSocket, i)

	if o.skt[i].gen != h.Generation() {
		return nil, ErrorInvalidHandle.Error(nil)
	}

	return &o.skt[i], nil
}

func (o *lp) user(h libhdl.Handle) (*userSlot, liberr.Error) {
	if h.Kind() != libhdl.KindUserEvent || h.LoopID() != o.id {
		return nil, ErrorInvalidHandle.Error(nil)
	}

	o.uml.RLock()
	defer o.uml.RUnlock()

	i := h.Slot()

	if i >= uint32(len(o.uev)) || !o.umu.Test(uint(i)) {
		return nil, ErrorInvalidHandle.Error(nil)
	}

	checkGen(o.uev[i].gen, libhdl.KindUserEvent, i)

	if o.uev[i].gen != h.Generation() {
		return nil, ErrorInvalidHandle.Error(nil)
	}

	return &o.uev[i], nil
}

func (o *lp) task(h libhdl.Handle) (*taskSlot, liberr.Error) {
	if h.Kind() != libhdl.KindTask || h.LoopID() != o.id {
		return nil, ErrorInvalidHandle.Error(nil)
	}

	i := h.Slot()

	if i >= uint32(len(o.tsk)) || !o.kmu.Test(uint(i)) {
		return nil, ErrorInvalidHandle.Error(nil)
	}

	checkGen(o.tsk[i].gen, libhdl.KindTask, i)

	if o.tsk[i].gen != h.Generation() {
		return nil, ErrorInvalidHandle.Error(nil)
	}

	return &o.tsk[i], nil
}

// handlers returns the handler table of any resource handle.
func (o *lp) handlers(h libhdl.Handle) ([]handlerRec, liberr.Error) {
	switch h.Kind() {
	case libhdl.KindTimer:
		if s, err := o.timer(h); err != nil {
			return nil, err
		} else {
			return s.handlers[:], nil
		}
	case libhdl.KindSocket:
		if s, err := o.socket(h); err != nil {
			return nil, err
		} else {
			return s.handlers[:], nil
		}
	case libhdl.KindUserEvent:
		if s, err := o.user(h); err != nil {
			return nil, err
		} else {
			return s.handlers[:], nil
		}
	}

	return nil, ErrorInvalidHandle.Error(nil)
}

func (o *lp) SetHandler(res libhdl.Handle, evt EventType, fct HandlerFunc, userData any) error {
	if fct == nil {
		return o.setErr(ErrorNilPointer.Error(nil))
	}

	recs, err := o.handlers(res)
	if err != nil {
		return o.setErr(err)
	}

	return o.setErr(setHandler(recs, evt, fct, libhdl.Nil, userData))
}

func (o *lp) SetTaskHandler(res libhdl.Handle, evt EventType, task libhdl.Handle) error {
	if _, err := o.task(task); err != nil {
		return o.setErr(err)
	}

	recs, err := o.handlers(res)
	if err != nil {
		return o.setErr(err)
	}

	return o.setErr(setHandler(recs, evt, nil, task, nil))
}

func (o *lp) RemoveHandler(res libhdl.Handle, evt EventType) error {
	recs, err := o.handlers(res)
	if err != nil {
		return o.setErr(err)
	}

	removeHandler(recs, evt)
	return nil
}

func (o *lp) Free(h libhdl.Handle) error {
	switch h.Kind() {
	case libhdl.KindTimer:
		s, err := o.timer(h)
		if err != nil {
			return o.setErr(err)
		}

		s.armed = false
		clearHandlers(s.handlers[:])
		o.tmu.Clear(uint(h.Slot()))
		return nil

	case libhdl.KindSocket:
		s, err := o.socket(h)
		if err != nil {
			return o.setErr(err)
		}

		if s.fd >= 0 {
			_ = unix.Close(s.fd)
			s.fd = -1
		}

		s.connected = false
		s.listening = false
		s.connecting = false
		clearHandlers(s.handlers[:])
		o.smu.Clear(uint(h.Slot()))
		return nil

	case libhdl.KindUserEvent:
		s, err := o.user(h)
		if err != nil {
			return o.setErr(err)
		}

		s.mux.Lock()
		s.npend = 0
		s.data = nil
		s.mux.Unlock()

		clearHandlers(s.handlers[:])

		o.uml.Lock()
		o.umu.Clear(uint(h.Slot()))
		o.uml.Unlock()
		return nil

	case libhdl.KindTask:
		s, err := o.task(h)
		if err != nil {
			return o.setErr(err)
		}

		s.task = nil
		o.kmu.Clear(uint(h.Slot()))
		return nil
	}

	return o.setErr(ErrorInvalidHandle.Error(nil))
}

// dispatch runs every active handler of the table matching evt, in table
// order. Task handlers are one-shot: the record is cleared before the task
// resumes, so a task re-subscribing during its own resume sees its next
// event no earlier than the next pump.
func (o *lp) dispatch(res libhdl.Handle, evt EventType, data any, recs []handlerRec) {
	for i := range recs {
		if !recs[i].used || recs[i].evt != evt {
			continue
		}

		if recs[i].fct != nil {
			recs[i].fct(o, Event{Resource: res, Type: evt, Data: data}, recs[i].data)
			continue
		}

		th := recs[i].task
		recs[i] = handlerRec{}

		if s, err := o.task(th); err != nil {
			if ent := o.entry(loglvl.WarnLevel, "dropping event for a stale protothread subscription"); ent != nil {
				ent.FieldAdd("resource", res.String()).FieldAdd("event", evt.String()).Log()
			}
		} else if s.task != nil {
			if err := s.task.Resume(); err != nil {
				_ = o.setErr(err)

				if ent := o.entry(loglvl.ErrorLevel, "protothread resume failed"); ent != nil {
					ent.ErrorAdd(true, err)
					ent.Log()
				}
			}
		}
	}
}
