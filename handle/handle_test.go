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

package handle_test

import (
	libhdl "github.com/nabbar/goptk/handle"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Handle Token", func() {
	It("should pack and unpack every field", func() {
		h := libhdl.New(libhdl.KindSocket, 7, 0x1234, 0xCAFE0001)

		Expect(h.Kind()).To(Equal(libhdl.KindSocket))
		Expect(h.LoopID()).To(Equal(uint8(7)))
		Expect(h.Generation()).To(Equal(uint16(0x1234)))
		Expect(h.Slot()).To(Equal(uint32(0xCAFE0001)))
		Expect(h.IsNil()).To(BeFalse())
	})

	It("should keep distinct fields independent", func() {
		a := libhdl.New(libhdl.KindTimer, 1, 2, 3)
		b := libhdl.New(libhdl.KindTimer, 1, 3, 3)
		c := libhdl.New(libhdl.KindTimer, 2, 2, 3)
		d := libhdl.New(libhdl.KindSocket, 1, 2, 3)

		Expect(a).ToNot(Equal(b))
		Expect(a).ToNot(Equal(c))
		Expect(a).ToNot(Equal(d))
	})

	It("should compare equal by value", func() {
		a := libhdl.New(libhdl.KindUserEvent, 9, 100, 42)
		b := libhdl.New(libhdl.KindUserEvent, 9, 100, 42)

		Expect(a).To(Equal(b))
	})

	It("should reserve zero as the nil handle", func() {
		Expect(libhdl.Nil.IsNil()).To(BeTrue())
		Expect(libhdl.Nil.Kind()).To(Equal(libhdl.KindNil))
		Expect(libhdl.Nil.String()).To(Equal("nil handle"))
	})

	It("should never collide across generations of one slot", func() {
		seen := make(map[libhdl.Handle]bool)

		for gen := uint16(1); gen <= 100; gen++ {
			h := libhdl.New(libhdl.KindTimer, 0, gen, 5)
			Expect(seen[h]).To(BeFalse())
			seen[h] = true
		}
	})

	It("should name every kind", func() {
		for _, k := range []libhdl.Kind{
			libhdl.KindLoop, libhdl.KindTimer, libhdl.KindSocket, libhdl.KindUserEvent, libhdl.KindTask,
		} {
			Expect(k.Valid()).To(BeTrue())
			Expect(k.String()).ToNot(Equal("invalid"))
		}

		Expect(libhdl.KindNil.Valid()).To(BeFalse())
		Expect(libhdl.Kind(99).Valid()).To(BeFalse())
	})
})
