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

// Endianness selects the wire byte order of one produce or consume call.
//
// The byte pattern on the wire is the little-endian pattern of the value
// permuted by a per-endianness byte-index permutation. The two swapped
// variants reverse the bytes inside each 16-bit word of the base order and
// describe wire orders used by EtherNet/IP-family devices; on 64-bit values
// the permutation extends the 32-bit pattern pairwise, word by word. The
// swap is the identity on 16-bit values, and one-byte values ignore
// endianness entirely.
type Endianness uint8

const (
	// BigEndian writes the most significant byte first.
	BigEndian Endianness = iota

	// BigEndianSwap writes big-endian with the bytes of each 16-bit word
	// reversed: with b0 the least significant byte, a 32-bit value appears
	// on the wire as b2 b3 b0 b1.
	BigEndianSwap

	// LittleEndian writes the least significant byte first.
	LittleEndian

	// LittleEndianSwap writes little-endian with the bytes of each 16-bit
	// word reversed: with b0 the least significant byte, a 32-bit value
	// appears on the wire as b1 b0 b3 b2.
	LittleEndianSwap
)

// wire[i] = le[permNN[e][i]], with le[j] the j-th byte of the little-endian
// pattern of the value (le[0] = LSB). Word swapping is the identity on
// 16-bit values.
var (
	perm16 = [4][2]uint8{
		{1, 0},
		{1, 0},
		{0, 1},
		{0, 1},
	}
	perm32 = [4][4]uint8{
		{3, 2, 1, 0},
		{2, 3, 0, 1},
		{0, 1, 2, 3},
		{1, 0, 3, 2},
	}
	perm64 = [4][8]uint8{
		{7, 6, 5, 4, 3, 2, 1, 0},
		{6, 7, 4, 5, 2, 3, 0, 1},
		{0, 1, 2, 3, 4, 5, 6, 7},
		{1, 0, 3, 2, 5, 4, 7, 6},
	}
)

func (e Endianness) String() string {
	switch e {
	case BigEndian:
		return "big"
	case BigEndianSwap:
		return "big byte swapped"
	case LittleEndian:
		return "little"
	case LittleEndianSwap:
		return "little byte swapped"
	}

	return "invalid"
}

func (e Endianness) valid() bool {
	return e <= LittleEndianSwap
}

func (e Endianness) put16(dst []byte, v uint16) {
	p := perm16[e]
	for i := 0; i < 2; i++ {
		dst[i] = byte(v >> (8 * uint(p[i])))
	}
}

func (e Endianness) get16(src []byte) uint16 {
	p := perm16[e]
	var v uint16
	for i := 0; i < 2; i++ {
		v |= uint16(src[i]) << (8 * uint(p[i]))
	}
	return v
}

func (e Endianness) put32(dst []byte, v uint32) {
	p := perm32[e]
	for i := 0; i < 4; i++ {
		dst[i] = byte(v >> (8 * uint(p[i])))
	}
}

func (e Endianness) get32(src []byte) uint32 {
	p := perm32[e]
	var v uint32
	for i := 0; i < 4; i++ {
		v |= uint32(src[i]) << (8 * uint(p[i]))
	}
	return v
}

func (e Endianness) put64(dst []byte, v uint64) {
	p := perm64[e]
	for i := 0; i < 8; i++ {
		dst[i] = byte(v >> (8 * uint(p[i])))
	}
}

func (e Endianness) get64(src []byte) uint64 {
	p := perm64[e]
	var v uint64
	for i := 0; i < 8; i++ {
		v |= uint64(src[i]) << (8 * uint(p[i]))
	}
	return v
}
