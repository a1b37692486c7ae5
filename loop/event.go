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
)

// EventType names one observable condition on a resource. The core types
// live below 0x0100; any value is accepted for user event sources, so
// applications are free to define their own type space.
type EventType uint16

const (
	EventNone EventType = iota
	EventReadable
	EventWritable
	EventConnected
	EventDisconnected
	EventError
	EventTimerExpired
)

// EventUser is the conventional first value for application-defined event
// types raised through user event sources.
const EventUser EventType = 0x0100

func (e EventType) String() string {
	switch e {
	case EventNone:
		return "none"
	case EventReadable:
		return "readable"
	case EventWritable:
		return "writable"
	case EventConnected:
		return "connected"
	case EventDisconnected:
		return "disconnected"
	case EventError:
		return "error"
	case EventTimerExpired:
		return "timer expired"
	}

	return "user"
}

// Event is one dispatched occurrence handed to a handler function.
// Data carries the payload of the latest Raise for user event sources and
// is nil for core events.
type Event struct {
	Resource libhdl.Handle
	Type     EventType
	Data     any
}

// HandlerFunc is a function handler. It runs on the loop goroutine, must
// complete promptly and must never suspend; userData is the value given to
// SetHandler at registration.
type HandlerFunc func(l Loop, ev Event, userData any)

// Task is the minimal surface the loop needs to resume a cooperative task
// registered as a one-shot event handler. It is implemented by the
// protothread package.
type Task interface {
	// Resume runs the task once from its saved resume point.
	Resume() error
}

// handlerRec is one slot of a per-resource handler table. Either fct or
// task is set, never both. Handler tables never store owning references:
// tasks are referenced by handle so a destroyed task cannot be resurrected
// through a stale subscription.
type handlerRec struct {
	evt  EventType
	fct  HandlerFunc
	task libhdl.Handle
	data any
	used bool
}

// setHandler installs or overwrites the handler for evt in the given table.
// A second set against the same event type replaces the first: at most one
// active handler exists per (resource, event type) pair.
func setHandler(recs []handlerRec, evt EventType, fct HandlerFunc, task libhdl.Handle, data any) error {
	free := -1

	for i := range recs {
		if recs[i].used && recs[i].evt == evt {
			recs[i] = handlerRec{evt: evt, fct: fct, task: task, data: data, used: true}
			return nil
		} else if !recs[i].used && free < 0 {
			free = i
		}
	}

	if free < 0 {
		return ErrorOutOfResources.Error(nil)
	}

	recs[free] = handlerRec{evt: evt, fct: fct, task: task, data: data, used: true}
	return nil
}

// removeHandler clears the handler for evt. Removing a missing handler is
// not an error.
func removeHandler(recs []handlerRec, evt EventType) {
	for i := range recs {
		if recs[i].used && recs[i].evt == evt {
			recs[i] = handlerRec{}
		}
	}
}

func clearHandlers(recs []handlerRec) {
	for i := range recs {
		recs[i] = handlerRec{}
	}
}
