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

// Package protothread implements stackless cooperative tasks resumed by the
// event loop.
//
// A protothread is a state machine over a saved step index: its function is
// re-entered from the top on every resume and jumps to the saved step with a
// switch. The Thread control block is designed to be embedded in an
// application context struct; the context reaches the thread by embedding,
// and the thread reaches its context through the reference given to Init,
// so each side can find the other without owning pointers inside the loop's
// handler records.
//
// A function body follows this shape:
//
//	func run(t *protothread.Thread) protothread.Status {
//		ctx := t.Context().(*appCtx)
//
//		switch t.Step() {
//		case 0:
//			// ... first stretch of work ...
//			if st, err := t.WaitEvent(ctx.loop, ctx.sock, loop.EventReadable, 1); err == nil {
//				return st
//			}
//			return t.Exit()
//		case 1:
//			// resumed when the socket turned readable
//			// ... consume, reply ...
//		}
//
//		return t.End()
//	}
//
// Re-initialising a thread cancels it: the resume point resets and the next
// Run restarts the function from step zero. Event subscriptions taken before
// the re-init are NOT removed automatically; the integrator must clear them
// before reusing the control block, or a stale one-shot subscription will
// resume the restarted thread.
package protothread

import (
	libhdl "github.com/nabbar/goptk/handle"
	libevl "github.com/nabbar/goptk/loop"
)

// Status is the outcome of one resume of a protothread function.
type Status uint8

const (
	// StatusRunning means the helper completed inline and the function body
	// keeps executing; it is never a valid return value of the function.
	StatusRunning Status = iota

	// StatusYielded means the thread suspended and will resume at the saved
	// step on the next Run.
	StatusYielded

	// StatusWaiting means the thread suspended until a declared condition,
	// typically a one-shot event subscription registered before returning.
	StatusWaiting

	// StatusExited means the thread terminated early; the next Run restarts
	// the function from step zero.
	StatusExited

	// StatusEnded means the function body completed; the next Run restarts
	// the function from step zero.
	StatusEnded
)

func (s Status) String() string {
	switch s {
	case StatusRunning:
		return "running"
	case StatusYielded:
		return "yielded"
	case StatusWaiting:
		return "waiting"
	case StatusExited:
		return "exited"
	case StatusEnded:
		return "ended"
	}

	return "invalid"
}

// Func is a protothread function body. It is re-entered from the top on
// every resume and must dispatch on t.Step().
type Func func(t *Thread) Status

// New returns an initialised standalone control block. Embedding a Thread in
// an application context struct and calling Init on it is equivalent.
func New(fct Func, ctx any) (*Thread, error) {
	if fct == nil {
		return nil, ErrorNilPointer.Error(nil)
	}

	t := new(Thread)
	t.Init(fct, ctx)

	return t, nil
}

// Adopt registers the thread with the loop and stores the returned task
// handle inside the control block so the wait helpers can subscribe it.
func Adopt(l libevl.Loop, t *Thread) (libhdl.Handle, error) {
	if l == nil || t == nil {
		return libhdl.Nil, ErrorNilPointer.Error(nil)
	} else if t.magic != ptMagic {
		return libhdl.Nil, ErrorNotInitialized.Error(nil)
	}

	h, err := l.AdoptTask(t)
	if err != nil {
		return libhdl.Nil, err
	}

	t.self = h
	return h, nil
}
