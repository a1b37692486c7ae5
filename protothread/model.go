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

package protothread

import (
	libhdl "github.com/nabbar/goptk/handle"
)

// ptMagic guards against running a zeroed or corrupted control block.
const ptMagic uint32 = 0x50547468

// Thread is the protothread control block: the magic stamp, the saved
// resume step, the function and the application context reference. The zero
// value is not runnable; Init it first.
type Thread struct {
	magic uint32
	step  int
	fct   Func
	ctx   any
	self  libhdl.Handle
}

// Init stamps the control block, resets the resume step to zero and stores
// the function and context. Calling Init on a live thread cancels it: the
// next Run restarts from step zero. Subscriptions taken by the previous life
// of the block are not removed.
func (t *Thread) Init(fct Func, ctx any) {
	t.magic = ptMagic
	t.step = 0
	t.fct = fct
	t.ctx = ctx
	t.self = libhdl.Nil
}

// Context returns the application context given to Init.
func (t *Thread) Context() any {
	return t.ctx
}

// Self returns the task handle stored by Adopt, or the nil handle before
// adoption.
func (t *Thread) Self() libhdl.Handle {
	return t.self
}

// Step returns the saved resume step.
func (t *Thread) Step() int {
	return t.step
}

// SetStep saves the resume step the next Run re-enters at.
func (t *Thread) SetStep(step int) {
	t.step = step
}

// Run resumes the function once from its saved step. When the function
// exits or ends, the step resets so the next Run restarts it from zero.
func (t *Thread) Run() (Status, error) {
	if t == nil {
		return StatusExited, ErrorNilPointer.Error(nil)
	} else if t.magic != ptMagic {
		return StatusExited, ErrorNotInitialized.Error(nil)
	} else if t.fct == nil {
		return StatusExited, ErrorNilPointer.Error(nil)
	}

	st := t.fct(t)

	if st == StatusExited || st == StatusEnded {
		t.step = 0
	}

	return st, nil
}

// Resume lets the event loop drive the thread as a one-shot event handler.
func (t *Thread) Resume() error {
	_, err := t.Run()
	return err
}

// Yield suspends until the next Run, which re-enters at the given step.
func (t *Thread) Yield(next int) Status {
	t.step = next
	return StatusYielded
}

// Wait suspends like Yield but declares that the caller re-runs the thread
// only once some readiness condition holds; re-entry at the given step must
// re-check the condition.
func (t *Thread) Wait(next int) Status {
	t.step = next
	return StatusWaiting
}

// Exit terminates the thread early; the next Run restarts from step zero.
func (t *Thread) Exit() Status {
	t.step = 0
	return StatusExited
}

// End marks the function body complete; the next Run restarts from step
// zero.
func (t *Thread) End() Status {
	t.step = 0
	return StatusEnded
}
