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

// Package codec encodes and decodes typed values against a buffer.Buffer.
//
// The codec is stateless: every call takes the buffer and an explicit wire
// Endianness. Produce operations append at the buffer end cursor; consume
// operations read at the start cursor, advancing it only when the call
// succeeds and peek is false. On any failure both cursors are left exactly
// where they were, including inside the transactional multi-field Produce
// and Consume calls: a half-decoded header is never visible to the caller.
//
// Floats are bit-cast through the same-width unsigned integer before hitting
// the wire. Bit arrays serialise whole containers (see the bits sub-package)
// with the endianness of the call.
package codec

import (
	libbuf "github.com/nabbar/goptk/buffer"
)

// produce appends n bytes at the end cursor, filled by the given function.
// Nothing changes on failure.
func produce(b libbuf.Buffer, e Endianness, n int, fill func([]byte)) error {
	if b == nil {
		return ErrorNilPointer.Error(nil)
	} else if !e.valid() {
		return ErrorInvalidEndianness.Error(nil)
	} else if b.Remaining() < n {
		return ErrorBufferTooSmall.Error(nil)
	}

	fill(b.Free()[:n])
	return b.SetEnd(b.End() + n)
}

// consume reads n live bytes at the start cursor into the given function,
// advancing the cursor only on success when peek is unset.
func consume(b libbuf.Buffer, e Endianness, n int, peek bool, read func([]byte)) error {
	if b == nil {
		return ErrorNilPointer.Error(nil)
	} else if !e.valid() {
		return ErrorInvalidEndianness.Error(nil)
	} else if b.Len() < n {
		return ErrorBufferTooSmall.Error(nil)
	}

	read(b.Bytes()[:n])

	if peek {
		return nil
	}

	return b.SetStart(b.Start() + n)
}
