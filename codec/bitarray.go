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

// ProduceBits appends every container of the array, each serialised as a
// scalar of the container width with the endianness of the call. The whole
// array is appended atomically: a short buffer rolls the end cursor back.
func ProduceBits(b libbuf.Buffer, e Endianness, a libbit.Array) error {
	if b == nil || a == nil {
		return ErrorNilPointer.Error(nil)
	} else if !e.valid() {
		return ErrorInvalidEndianness.Error(nil)
	} else if b.Remaining() < a.Containers()*a.Kind().Bytes() {
		return ErrorBufferTooSmall.Error(nil)
	}

	end := b.End()

	for i := 0; i < a.Containers(); i++ {
		v, err := a.Container(i)
		if err == nil {
			switch a.Kind() {
			case libbit.ContainerU8:
				err = ProduceU8(b, e, uint8(v))
			case libbit.ContainerU16:
				err = ProduceU16(b, e, uint16(v))
			case libbit.ContainerU32:
				err = ProduceU32(b, e, v)
			}
		}

		if err != nil {
			_ = b.SetEnd(end)
			return err
		}
	}

	return nil
}

// ConsumeBits fills every container of the array from the live bytes, each
// decoded as a scalar of the container width with the endianness of the
// call. With peek set the start cursor is unchanged; on failure nothing is
// consumed.
func ConsumeBits(b libbuf.Buffer, e Endianness, a libbit.Array, peek bool) error {
	if b == nil || a == nil {
		return ErrorNilPointer.Error(nil)
	} else if !e.valid() {
		return ErrorInvalidEndianness.Error(nil)
	} else if b.Len() < a.Containers()*a.Kind().Bytes() {
		return ErrorBufferTooSmall.Error(nil)
	}

	start := b.Start()

	for i := 0; i < a.Containers(); i++ {
		var (
			v   uint32
			err error
		)

		switch a.Kind() {
		case libbit.ContainerU8:
			var u uint8
			u, err = ConsumeU8(b, e, false)
			v = uint32(u)
		case libbit.ContainerU16:
			var u uint16
			u, err = ConsumeU16(b, e, false)
			v = uint32(u)
		case libbit.ContainerU32:
			v, err = ConsumeU32(b, e, false)
		}

		if err == nil {
			err = a.SetContainer(i, v)
		}

		if err != nil {
			_ = b.SetStart(start)
			return err
		}
	}

	if peek {
		return b.SetStart(start)
	}

	return nil
}
