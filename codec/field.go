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
	libbuf "github.com/nabbar/goptk/buffer"
	libbit "github.com/nabbar/goptk/codec/bits"
)

// Field describes one typed slot of a transactional Produce or Consume call.
//
// Value constructors (U16, Raw, ...) describe produce-only fields; pointer
// constructors (U16Ptr, RawPtr, ...) describe fields usable on both sides,
// producing the pointed-to value and consuming into it. Using a value field
// in Consume yields ErrorInvalidField.
type Field interface {
	produce(b libbuf.Buffer, e Endianness) error
	consume(b libbuf.Buffer, e Endianness) error
}

// Produce appends all fields in order, atomically: if any field fails, the
// bytes appended by the preceding fields are rolled back by restoring the
// end cursor, and the first error is returned.
func Produce(b libbuf.Buffer, e Endianness, fields ...Field) error {
	if b == nil {
		return ErrorNilPointer.Error(nil)
	} else if !e.valid() {
		return ErrorInvalidEndianness.Error(nil)
	} else if len(fields) < 1 {
		return ErrorParamEmpty.Error(nil)
	}

	end := b.End()

	for _, f := range fields {
		if f == nil {
			_ = b.SetEnd(end)
			return ErrorInvalidField.Error(nil)
		}

		if err := f.produce(b, e); err != nil {
			_ = b.SetEnd(end)
			return err
		}
	}

	return nil
}

// Consume decodes all fields in order, atomically: if any field fails, the
// start cursor returns to its pre-call position and the first error is
// returned. With peek set, the start cursor is restored even on success, but
// every out reference still receives its decoded value.
func Consume(b libbuf.Buffer, e Endianness, peek bool, fields ...Field) error {
	if b == nil {
		return ErrorNilPointer.Error(nil)
	} else if !e.valid() {
		return ErrorInvalidEndianness.Error(nil)
	} else if len(fields) < 1 {
		return ErrorParamEmpty.Error(nil)
	}

	start := b.Start()

	for _, f := range fields {
		if f == nil {
			_ = b.SetStart(start)
			return ErrorInvalidField.Error(nil)
		}

		if err := f.consume(b, e); err != nil {
			_ = b.SetStart(start)
			return err
		}
	}

	if peek {
		return b.SetStart(start)
	}

	return nil
}

type fctField struct {
	p func(b libbuf.Buffer, e Endianness) error
	c func(b libbuf.Buffer, e Endianness) error
}

func (o *fctField) produce(b libbuf.Buffer, e Endianness) error {
	if o.p == nil {
		return ErrorInvalidField.Error(nil)
	}

	return o.p(b, e)
}

func (o *fctField) consume(b libbuf.Buffer, e Endianness) error {
	if o.c == nil {
		return ErrorInvalidField.Error(nil)
	}

	return o.c(b, e)
}

func U8(v uint8) Field {
	return &fctField{
		p: func(b libbuf.Buffer, e Endianness) error {
			return ProduceU8(b, e, v)
		},
	}
}

func U16(v uint16) Field {
	return &fctField{
		p: func(b libbuf.Buffer, e Endianness) error {
			return ProduceU16(b, e, v)
		},
	}
}

func U32(v uint32) Field {
	return &fctField{
		p: func(b libbuf.Buffer, e Endianness) error {
			return ProduceU32(b, e, v)
		},
	}
}

func U64(v uint64) Field {
	return &fctField{
		p: func(b libbuf.Buffer, e Endianness) error {
			return ProduceU64(b, e, v)
		},
	}
}

func I8(v int8) Field {
	return &fctField{
		p: func(b libbuf.Buffer, e Endianness) error {
			return ProduceI8(b, e, v)
		},
	}
}

func I16(v int16) Field {
	return &fctField{
		p: func(b libbuf.Buffer, e Endianness) error {
			return ProduceI16(b, e, v)
		},
	}
}

func I32(v int32) Field {
	return &fctField{
		p: func(b libbuf.Buffer, e Endianness) error {
			return ProduceI32(b, e, v)
		},
	}
}

func I64(v int64) Field {
	return &fctField{
		p: func(b libbuf.Buffer, e Endianness) error {
			return ProduceI64(b, e, v)
		},
	}
}

func F32(v float32) Field {
	return &fctField{
		p: func(b libbuf.Buffer, e Endianness) error {
			return ProduceF32(b, e, v)
		},
	}
}

func F64(v float64) Field {
	return &fctField{
		p: func(b libbuf.Buffer, e Endianness) error {
			return ProduceF64(b, e, v)
		},
	}
}

// Raw describes a produce-only run of verbatim bytes.
func Raw(p []byte) Field {
	return &fctField{
		p: func(b libbuf.Buffer, e Endianness) error {
			return ProduceBytes(b, p)
		},
	}
}

func U8Ptr(p *uint8) Field {
	return &fctField{
		p: func(b libbuf.Buffer, e Endianness) error {
			return ProduceU8(b, e, *p)
		},
		c: func(b libbuf.Buffer, e Endianness) error {
			v, err := ConsumeU8(b, e, false)
			if err == nil {
				*p = v
			}
			return err
		},
	}
}

func U16Ptr(p *uint16) Field {
	return &fctField{
		p: func(b libbuf.Buffer, e Endianness) error {
			return ProduceU16(b, e, *p)
		},
		c: func(b libbuf.Buffer, e Endianness) error {
			v, err := ConsumeU16(b, e, false)
			if err == nil {
				*p = v
			}
			return err
		},
	}
}

func U32Ptr(p *uint32) Field {
	return &fctField{
		p: func(b libbuf.Buffer, e Endianness) error {
			return ProduceU32(b, e, *p)
		},
		c: func(b libbuf.Buffer, e Endianness) error {
			v, err := ConsumeU32(b, e, false)
			if err == nil {
				*p = v
			}
			return err
		},
	}
}

func U64Ptr(p *uint64) Field {
	return &fctField{
		p: func(b libbuf.Buffer, e Endianness) error {
			return ProduceU64(b, e, *p)
		},
		c: func(b libbuf.Buffer, e Endianness) error {
			v, err := ConsumeU64(b, e, false)
			if err == nil {
				*p = v
			}
			return err
		},
	}
}

func I8Ptr(p *int8) Field {
	return &fctField{
		p: func(b libbuf.Buffer, e Endianness) error {
			return ProduceI8(b, e, *p)
		},
		c: func(b libbuf.Buffer, e Endianness) error {
			v, err := ConsumeI8(b, e, false)
			if err == nil {
				*p = v
			}
			return err
		},
	}
}

func I16Ptr(p *int16) Field {
	return &fctField{
		p: func(b libbuf.Buffer, e Endianness) error {
			return ProduceI16(b, e, *p)
		},
		c: func(b libbuf.Buffer, e Endianness) error {
			v, err := ConsumeI16(b, e, false)
			if err == nil {
				*p = v
			}
			return err
		},
	}
}

func I32Ptr(p *int32) Field {
	return &fctField{
		p: func(b libbuf.Buffer, e Endianness) error {
			return ProduceI32(b, e, *p)
		},
		c: func(b libbuf.Buffer, e Endianness) error {
			v, err := ConsumeI32(b, e, false)
			if err == nil {
				*p = v
			}
			return err
		},
	}
}

func I64Ptr(p *int64) Field {
	return &fctField{
		p: func(b libbuf.Buffer, e Endianness) error {
			return ProduceI64(b, e, *p)
		},
		c: func(b libbuf.Buffer, e Endianness) error {
			v, err := ConsumeI64(b, e, false)
			if err == nil {
				*p = v
			}
			return err
		},
	}
}

func F32Ptr(p *float32) Field {
	return &fctField{
		p: func(b libbuf.Buffer, e Endianness) error {
			return ProduceF32(b, e, *p)
		},
		c: func(b libbuf.Buffer, e Endianness) error {
			v, err := ConsumeF32(b, e, false)
			if err == nil {
				*p = v
			}
			return err
		},
	}
}

func F64Ptr(p *float64) Field {
	return &fctField{
		p: func(b libbuf.Buffer, e Endianness) error {
			return ProduceF64(b, e, *p)
		},
		c: func(b libbuf.Buffer, e Endianness) error {
			v, err := ConsumeF64(b, e, false)
			if err == nil {
				*p = v
			}
			return err
		},
	}
}

// RawPtr describes a fixed-width run of bytes, produced from and consumed
// into the given slice. The slice length fixes the wire width.
func RawPtr(p []byte) Field {
	return &fctField{
		p: func(b libbuf.Buffer, e Endianness) error {
			return ProduceBytes(b, p)
		},
		c: func(b libbuf.Buffer, e Endianness) error {
			return ConsumeBytes(b, p, false)
		},
	}
}

// BitArray describes a bit array serialised container by container with the
// endianness of the call. It is usable on both sides: Produce writes the
// array's containers, Consume fills them.
func BitArray(a libbit.Array) Field {
	return &fctField{
		p: func(b libbuf.Buffer, e Endianness) error {
			return ProduceBits(b, e, a)
		},
		c: func(b libbuf.Buffer, e Endianness) error {
			return ConsumeBits(b, e, a, false)
		},
	}
}
