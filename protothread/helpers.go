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
	"time"

	libhdl "github.com/nabbar/goptk/handle"
	libevl "github.com/nabbar/goptk/loop"

	liberr "github.com/nabbar/golib/errors"
)

// The wait helpers return (StatusRunning, nil) when the operation completed
// inline, or (StatusWaiting, nil) after registering a one-shot subscription
// and saving the resume step; in that case the function body must return
// the status to the loop. On error the status is StatusRunning and the body
// decides whether to retry, exit or end.
//
// A timeout is expressed by arming a timer and waiting on both the timer
// and the pending resource: the thread resumes on whichever event fires
// first, and must remove the other subscription itself.

// WaitEvent suspends the thread until evt fires on res: it registers the
// thread as a one-shot handler for (res, evt) and saves the resume step.
func (t *Thread) WaitEvent(l libevl.Loop, res libhdl.Handle, evt libevl.EventType, next int) (Status, error) {
	if l == nil {
		return StatusRunning, ErrorNilPointer.Error(nil)
	} else if t.self.IsNil() {
		return StatusRunning, ErrorNotAdopted.Error(nil)
	}

	if err := l.SetTaskHandler(res, evt, t.self); err != nil {
		return StatusRunning, err
	}

	t.step = next
	return StatusWaiting, nil
}

// Sleep arms the timer as a one-shot with the given duration and waits for
// its expiry.
func (t *Thread) Sleep(l libevl.Loop, timer libhdl.Handle, d time.Duration, next int) (Status, error) {
	if l == nil {
		return StatusRunning, ErrorNilPointer.Error(nil)
	}

	if err := l.TimerStart(timer, d, false); err != nil {
		return StatusRunning, err
	}

	return t.WaitEvent(l, timer, libevl.EventTimerExpired, next)
}

// Send pushes the live bytes of the buffer to the socket. When the
// transport blocks before the buffer drains, the thread subscribes to
// EventWritable and suspends; the body must call Send again at the resume
// step with the same arguments until it returns StatusRunning.
func (t *Thread) Send(l libevl.Loop, sock libhdl.Handle, b libevl.Reader, next int) (Status, error) {
	if l == nil || b == nil {
		return StatusRunning, ErrorNilPointer.Error(nil)
	}

	if b.Len() < 1 {
		return StatusRunning, nil
	}

	if _, err := l.Send(sock, b); err != nil {
		if liberr.IsCode(err, libevl.ErrorWouldBlock) {
			return t.WaitEvent(l, sock, libevl.EventWritable, next)
		}

		return StatusRunning, err
	}

	if b.Len() > 0 {
		return t.WaitEvent(l, sock, libevl.EventWritable, next)
	}

	return StatusRunning, nil
}

// Recv pulls available bytes from the socket into the buffer. When nothing
// is available, the thread subscribes to EventReadable and suspends; the
// body must call Recv again at the resume step until it returns
// StatusRunning, which it does as soon as at least one byte arrived.
func (t *Thread) Recv(l libevl.Loop, sock libhdl.Handle, b libevl.Writer, next int) (Status, error) {
	if l == nil || b == nil {
		return StatusRunning, ErrorNilPointer.Error(nil)
	}

	if _, err := l.Recv(sock, b); err != nil {
		if liberr.IsCode(err, libevl.ErrorWouldBlock) {
			return t.WaitEvent(l, sock, libevl.EventReadable, next)
		}

		return StatusRunning, err
	}

	return StatusRunning, nil
}
