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

package bits

type arr struct {
	k Kind
	n int
	c []uint32
}

func (o *arr) Kind() Kind {
	return o.k
}

func (o *arr) Len() int {
	return o.n
}

func (o *arr) Containers() int {
	return len(o.c)
}

func (o *arr) Bit(i int) (bool, error) {
	if i < 0 || i >= o.n {
		return false, ErrorOutOfBounds.Error(nil)
	}

	w := o.k.Bits()
	return o.c[i/w]&(1<<uint(i%w)) != 0, nil
}

func (o *arr) SetBit(i int, v bool) error {
	if i < 0 || i >= o.n {
		return ErrorOutOfBounds.Error(nil)
	}

	w := o.k.Bits()

	if v {
		o.c[i/w] |= 1 << uint(i%w)
	} else {
		o.c[i/w] &^= 1 << uint(i%w)
	}

	return nil
}

func (o *arr) Container(i int) (uint32, error) {
	if i < 0 || i >= len(o.c) {
		return 0, ErrorOutOfBounds.Error(nil)
	}

	return o.c[i], nil
}

func (o *arr) SetContainer(i int, v uint32) error {
	if i < 0 || i >= len(o.c) {
		return ErrorOutOfBounds.Error(nil)
	}

	o.c[i] = v & o.k.mask()
	return nil
}
