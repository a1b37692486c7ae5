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

package buffer

type buf struct {
	d []byte
	s int
	e int
}

func (o *buf) Len() int {
	return o.e - o.s
}

func (o *buf) Cap() int {
	return len(o.d)
}

func (o *buf) Remaining() int {
	return len(o.d) - o.e
}

func (o *buf) Start() int {
	return o.s
}

func (o *buf) End() int {
	return o.e
}

func (o *buf) SetStart(i int) error {
	if i < 0 || i > o.e {
		return ErrorOutOfBounds.Error(nil)
	}

	o.s = i
	return nil
}

func (o *buf) SetEnd(i int) error {
	if i < o.s || i > len(o.d) {
		return ErrorOutOfBounds.Error(nil)
	}

	o.e = i
	return nil
}

func (o *buf) MoveTo(newStart int) error {
	if newStart < 0 || newStart+o.Len() > len(o.d) {
		return ErrorOutOfBounds.Error(nil)
	}

	if newStart == o.s {
		return nil
	}

	n := o.Len()
	copy(o.d[newStart:newStart+n], o.d[o.s:o.e])
	o.s = newStart
	o.e = newStart + n

	return nil
}

func (o *buf) Reset() {
	o.s = 0
	o.e = 0
}

func (o *buf) Bytes() []byte {
	return o.d[o.s:o.e]
}

func (o *buf) Free() []byte {
	return o.d[o.e:]
}
