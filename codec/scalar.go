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

package codec

import (
	"math"

	libbuf "github.com/nabbar/goptk/buffer"
)

// ProduceU8 appends one byte. Endianness is accepted for symmetry with the
// wider scalars and is ignored beyond validation.
func ProduceU8(b libbuf.Buffer, e Endianness, v uint8) error {
	return produce(b, e, 1, func(dst []byte) {
		dst[0] = v
	})
}

func ProduceU16(b libbuf.Buffer, e Endianness, v uint16) error {
	return produce(b, e, 2, func(dst []byte) {
		e.put16(dst, v)
	})
}

func ProduceU32(b libbuf.Buffer, e Endianness, v uint32) error {
	return produce(b, e, 4, func(dst []byte) {
		e.put32(dst, v)
	})
}

func ProduceU64(b libbuf.Buffer, e Endianness, v uint64) error {
	return produce(b, e, 8, func(dst []byte) {
		e.put64(dst, v)
	})
}

func ProduceI8(b libbuf.Buffer, e Endianness, v int8) error {
	return ProduceU8(b, e, uint8(v))
}

func ProduceI16(b libbuf.Buffer, e Endianness, v int16) error {
	return ProduceU16(b, e, uint16(v))
}

func ProduceI32(b libbuf.Buffer, e Endianness, v int32) error {
	return ProduceU32(b, e, uint32(v))
}

func ProduceI64(b libbuf.Buffer, e Endianness, v int64) error {
	return ProduceU64(b, e, uint64(v))
}

// ProduceF32 bit-casts the float through a uint32 before serialising.
func ProduceF32(b libbuf.Buffer, e Endianness, v float32) error {
	return ProduceU32(b, e, math.Float32bits(v))
}

// ProduceF64 bit-casts the float through a uint64 before serialising.
func ProduceF64(b libbuf.Buffer, e Endianness, v float64) error {
	return ProduceU64(b, e, math.Float64bits(v))
}

// ProduceBytes appends the given bytes verbatim.
func ProduceBytes(b libbuf.Buffer, p []byte) error {
	return produce(b, BigEndian, len(p), func(dst []byte) {
		copy(dst, p)
	})
}

// ConsumeU8 reads one byte. With peek set the start cursor is unchanged.
func ConsumeU8(b libbuf.Buffer, e Endianness, peek bool) (uint8, error) {
	var v uint8

	err := consume(b, e, 1, peek, func(src []byte) {
		v = src[0]
	})

	return v, err
}

func ConsumeU16(b libbuf.Buffer, e Endianness, peek bool) (uint16, error) {
	var v uint16

	err := consume(b, e, 2, peek, func(src []byte) {
		v = e.get16(src)
	})

	return v, err
}

func ConsumeU32(b libbuf.Buffer, e Endianness, peek bool) (uint32, error) {
	var v uint32

	err := consume(b, e, 4, peek, func(src []byte) {
		v = e.get32(src)
	})

	return v, err
}

func ConsumeU64(b libbuf.Buffer, e Endianness, peek bool) (uint64, error) {
	var v uint64

	err := consume(b, e, 8, peek, func(src []byte) {
		v = e.get64(src)
	})

	return v, err
}

func ConsumeI8(b libbuf.Buffer, e Endianness, peek bool) (int8, error) {
	v, err := ConsumeU8(b, e, peek)
	return int8(v), err
}

func ConsumeI16(b libbuf.Buffer, e Endianness, peek bool) (int16, error) {
	v, err := ConsumeU16(b, e, peek)
	return int16(v), err
}

func ConsumeI32(b libbuf.Buffer, e Endianness, peek bool) (int32, error) {
	v, err := ConsumeU32(b, e, peek)
	return int32(v), err
}

func ConsumeI64(b libbuf.Buffer, e Endianness, peek bool) (int64, error) {
	v, err := ConsumeU64(b, e, peek)
	return int64(v), err
}

func ConsumeF32(b libbuf.Buffer, e Endianness, peek bool) (float32, error) {
	v, err := ConsumeU32(b, e, peek)
	return math.Float32frombits(v), err
}

func ConsumeF64(b libbuf.Buffer, e Endianness, peek bool) (float64, error) {
	v, err := ConsumeU64(b, e, peek)
	return math.Float64frombits(v), err
}

// ConsumeBytes fills dst entirely from the live bytes. With peek set the
// start cursor is unchanged.
func ConsumeBytes(b libbuf.Buffer, dst []byte, peek bool) error {
	return consume(b, BigEndian, len(dst), peek, func(src []byte) {
		copy(dst, src)
	})
}
