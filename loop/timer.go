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
)

func (o *lp) TimerCreate() (libhdl.Handle, error) {
	i, ok := o.tmu.NextClear(0)

	if !ok || i >= uint(len(o.tmr)) {
		return libhdl.Nil, o.setErr(ErrorOutOfResources.Error(nil))
	}

	gen := allocGen(o.tmr[i].gen)

	o.tmr[i] = timerSlot{gen: gen}
	o.tmu.Set(i)

	return libhdl.New(libhdl.KindTimer, o.id, gen, uint32(i)), nil
}

func (o *lp) TimerStart(h libhdl.Handle, interval time.Duration, repeating bool) error {
	s, err := o.timer(h)
	if err != nil {
		return o.setErr(err)
	}

	if interval <= 0 {
		return o.setErr(ErrorInvalidArgument.Error(nil))
	}

	s.armed = true
	s.stopped = false
	s.repeating = repeating
	s.interval = interval
	s.deadline = time.Now().Add(interval)

	return nil
}

func (o *lp) TimerStop(h libhdl.Handle) error {
	s, err := o.timer(h)
	if err != nil {
		return o.setErr(err)
	}

	s.armed = false
	s.stopped = true

	return nil
}

// pumpTimers delivers one expiry event per overdue armed timer. A repeating
// timer coalesces every elapsed period into one event per pump and keeps a
// monotonic cadence: the next deadline advances from the previous deadline
// by whole intervals, never from the wall clock.
func (o *lp) pumpTimers(now time.Time) {
	for i := range o.tmr {
		if !o.tmu.Test(uint(i)) {
			continue
		}

		s := &o.tmr[i]

		if !s.armed || s.deadline.After(now) {
			continue
		}

		if s.repeating {
			for !s.deadline.After(now) {
				s.deadline = s.deadline.Add(s.interval)
			}
		} else {
			s.armed = false
			s.stopped = true
		}

		h := libhdl.New(libhdl.KindTimer, o.id, s.gen, uint32(i))
		o.dispatch(h, EventTimerExpired, nil, s.handlers[:])
	}
}

// nextDeadline returns the interval until the nearest armed timer deadline,
// clamped to [0, max]. With no armed timer it returns max.
func (o *lp) nextDeadline(now time.Time, max time.Duration) time.Duration {
	d := max

	for i := range o.tmr {
		if !o.tmu.Test(uint(i)) || !o.tmr[i].armed {
			continue
		}

		if w := o.tmr[i].deadline.Sub(now); w <= 0 {
			return 0
		} else if w < d {
			d = w
		}
	}

	return d
}
