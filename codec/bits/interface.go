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

// Package bits implements bit arrays packed into fixed-width integer
// containers, the shape used by coil and discrete-input blocks of
// industrial protocols.
//
// A bit array is declared with a container Kind (u8, u16 or u32) and a bit
// count. Bits pack LSB-first within each container; containers follow in
// declaration order. Both access granularities are first-class: bit-level
// get/set translate a bit index to (container, bit-in-container), while
// container-level get/set move whole containers for bulk updates. Protocols
// that pack bits MSB-first must layer that order on top of this type, not
// change it.
package bits

// Kind is the integer width packaging the bits of an array on the wire.
type Kind uint8

const (
	ContainerU8 Kind = iota
	ContainerU16
	ContainerU32
)

// Bits returns the number of bits held by one container of this kind, or
// zero for an invalid kind.
func (k Kind) Bits() int {
	switch k {
	case ContainerU8:
		return 8
	case ContainerU16:
		return 16
	case ContainerU32:
		return 32
	}

	return 0
}

// Bytes returns the wire size of one container of this kind, or zero for an
// invalid kind.
func (k Kind) Bytes() int {
	return k.Bits() / 8
}

func (k Kind) String() string {
	switch k {
	case ContainerU8:
		return "u8"
	case ContainerU16:
		return "u16"
	case ContainerU32:
		return "u32"
	}

	return "invalid"
}

// mask returns the container value mask for this kind.
func (k Kind) mask() uint32 {
	if n := k.Bits(); n > 0 && n < 32 {
		return (1 << uint(n)) - 1
	}

	return ^uint32(0)
}

// Array is a fixed-size bit array over integer containers.
type Array interface {
	// Kind returns the container kind fixed at creation.
	Kind() Kind

	// Len returns the number of addressable bits.
	Len() int

	// Containers returns the number of backing containers,
	// ceil(Len() / Kind().Bits()).
	Containers() int

	// Bit returns the bit at the given bit index.
	Bit(i int) (bool, error)

	// SetBit sets or clears the bit at the given bit index.
	SetBit(i int, v bool) error

	// Container returns the whole container at the given container index.
	// Values of narrow kinds occupy the low bits of the result.
	Container(i int) (uint32, error)

	// SetContainer replaces the whole container at the given container
	// index. Bits above the container width are masked off.
	SetContainer(i int, v uint32) error
}

// New returns a zeroed bit array of the given kind and bit count.
func New(k Kind, nbBits int) (Array, error) {
	if k.Bits() == 0 {
		return nil, ErrorInvalidKind.Error(nil)
	} else if nbBits < 1 {
		return nil, ErrorParamEmpty.Error(nil)
	}

	w := k.Bits()

	return &arr{
		k: k,
		n: nbBits,
		c: make([]uint32, (nbBits+w-1)/w),
	}, nil
}
