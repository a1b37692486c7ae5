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

// Package buffer provides the double-cursor byte container used for protocol
// framing over stream sockets.
//
// A buffer owns two cursors over one backing slice: live bytes are
// data[start:end). A codec produces new bytes at end and consumes decoded
// bytes at start, so one buffer carries a receive-decode-reply cycle without
// copies. The invariant 0 <= start <= end <= capacity holds before and after
// every operation: any call that would break it fails with ErrorOutOfBounds
// and leaves both cursors unchanged.
//
// The backing memory is borrowed when the buffer is built with Make; the
// buffer never grows, shrinks or frees it.
package buffer

// Buffer is a fixed-capacity byte container with independent start and end
// cursors.
//
// All cursor mutations validate their bounds and fail without side effect.
type Buffer interface {
	// Len returns the number of live bytes (end - start).
	Len() int

	// Cap returns the fixed capacity of the backing memory.
	Cap() int

	// Remaining returns the writable space after the end cursor (capacity - end).
	Remaining() int

	// Start returns the position of the start cursor.
	Start() int

	// End returns the position of the end cursor.
	End() int

	// SetStart moves the start cursor. The new position must stay within
	// [0, End()], otherwise ErrorOutOfBounds is returned and nothing moves.
	SetStart(i int) error

	// SetEnd moves the end cursor. The new position must stay within
	// [Start(), Cap()], otherwise ErrorOutOfBounds is returned and nothing moves.
	SetEnd(i int) error

	// MoveTo shifts the live bytes so that they begin at newStart, adjusting
	// the end cursor to keep Len unchanged. It fails with ErrorOutOfBounds
	// when newStart+Len() exceeds the capacity. MoveTo(Start()) is a no-op.
	MoveTo(newStart int) error

	// Reset moves both cursors back to zero. The backing bytes are untouched.
	Reset()

	// Bytes returns the live region data[start:end) without copying. The
	// slice aliases the backing memory and is invalidated by MoveTo.
	Bytes() []byte

	// Free returns the writable region data[end:cap) without copying. After
	// writing n bytes into it, commit them with SetEnd(End()+n).
	Free() []byte
}

// New returns a buffer owning a fresh backing slice of the given capacity.
// A capacity lower than 1 yields ErrorParamEmpty.
func New(capacity int) (Buffer, error) {
	if capacity < 1 {
		return nil, ErrorParamEmpty.Error(nil)
	}

	return &buf{
		d: make([]byte, capacity),
	}, nil
}

// Make returns a buffer borrowing the given backing slice. Both cursors start
// at zero; the slice length fixes the capacity. The buffer never frees or
// reallocates the slice.
func Make(data []byte) (Buffer, error) {
	if len(data) < 1 {
		return nil, ErrorParamEmpty.Error(nil)
	}

	return &buf{
		d: data,
	}, nil
}
