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

// Package handle defines the opaque token identifying one resource inside
// one event loop.
//
// A handle packs four fields into 64 bits, low to high: the resource Kind
// (8 bits), the owning loop id (8 bits), a generation counter (16 bits) and
// the slot index (32 bits). The zero value is the reserved nil handle.
// Handles compare by value; a handle is valid only while its slot is
// occupied and the slot's stored generation equals the handle's, so a stale
// handle kept across slot reuse is detected instead of silently touching
// the new occupant.
package handle

import (
	"fmt"
)

// Kind identifies the resource family a handle points into.
type Kind uint8

const (
	KindNil Kind = iota
	KindLoop
	KindTimer
	KindSocket
	KindUserEvent
	KindTask
)

func (k Kind) String() string {
	switch k {
	case KindLoop:
		return "event loop"
	case KindTimer:
		return "timer"
	case KindSocket:
		return "socket"
	case KindUserEvent:
		return "user event source"
	case KindTask:
		return "protothread"
	}

	return "invalid"
}

// Valid reports whether the kind names a real resource family.
func (k Kind) Valid() bool {
	return k > KindNil && k <= KindTask
}

// Handle is a 64-bit opaque resource token. The zero value is Nil.
type Handle uint64

// Nil is the reserved null handle.
const Nil Handle = 0

// New composes a handle from its four fields. A zero generation composes an
// invalid token by construction: occupied slots always carry a generation of
// at least one.
func New(k Kind, loopID uint8, gen uint16, slot uint32) Handle {
	return Handle(uint64(k) |
		uint64(loopID)<<8 |
		uint64(gen)<<16 |
		uint64(slot)<<32)
}

// Kind extracts the resource kind field.
func (h Handle) Kind() Kind {
	return Kind(h & 0xFF)
}

// LoopID extracts the owning loop id field.
func (h Handle) LoopID() uint8 {
	return uint8(h >> 8)
}

// Generation extracts the generation counter field.
func (h Handle) Generation() uint16 {
	return uint16(h >> 16)
}

// Slot extracts the slot index field.
func (h Handle) Slot() uint32 {
	return uint32(h >> 32)
}

// IsNil reports whether the handle is the reserved null token.
func (h Handle) IsNil() bool {
	return h == Nil
}

func (h Handle) String() string {
	if h.IsNil() {
		return "nil handle"
	}

	return fmt.Sprintf("%s[loop %d, slot %d, gen %d]", h.Kind(), h.LoopID(), h.Slot(), h.Generation())
}
