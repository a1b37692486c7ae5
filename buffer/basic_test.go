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

package buffer_test

import (
	libbuf "github.com/nabbar/goptk/buffer"
	liberr "github.com/nabbar/golib/errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// invariant asserts the cursor ordering that must hold after every
// operation.
func invariant(b libbuf.Buffer) {
	Expect(b.Start()).To(BeNumerically(">=", 0))
	Expect(b.End()).To(BeNumerically(">=", b.Start()))
	Expect(b.Cap()).To(BeNumerically(">=", b.End()))
}

var _ = Describe("Buffer Creation", func() {
	Context("with an owned backing slice", func() {
		It("should create a zeroed buffer of the given capacity", func() {
			b, err := libbuf.New(16)
			Expect(err).ToNot(HaveOccurred())
			Expect(b.Cap()).To(Equal(16))
			Expect(b.Len()).To(Equal(0))
			Expect(b.Remaining()).To(Equal(16))
			invariant(b)
		})
		It("should refuse an empty capacity", func() {
			b, err := libbuf.New(0)
			Expect(b).To(BeNil())
			Expect(liberr.IsCode(err, libbuf.ErrorParamEmpty)).To(BeTrue())
		})
	})
	Context("with a borrowed backing slice", func() {
		It("should borrow the slice without copying", func() {
			d := make([]byte, 8)
			b, err := libbuf.Make(d)
			Expect(err).ToNot(HaveOccurred())
			Expect(b.Cap()).To(Equal(8))

			d[0] = 0xAB
			Expect(b.Free()[0]).To(Equal(byte(0xAB)))
		})
		It("should refuse an empty slice", func() {
			b, err := libbuf.Make(nil)
			Expect(b).To(BeNil())
			Expect(liberr.IsCode(err, libbuf.ErrorParamEmpty)).To(BeTrue())
		})
	})
})

var _ = Describe("Buffer Cursors", func() {
	var b libbuf.Buffer

	BeforeEach(func() {
		var err error
		b, err = libbuf.New(10)
		Expect(err).ToNot(HaveOccurred())
	})

	It("should bound the end cursor by start and capacity", func() {
		Expect(b.SetEnd(4)).ToNot(HaveOccurred())
		Expect(b.SetStart(2)).ToNot(HaveOccurred())
		Expect(b.Len()).To(Equal(2))

		Expect(liberr.IsCode(b.SetEnd(1), libbuf.ErrorOutOfBounds)).To(BeTrue())
		Expect(liberr.IsCode(b.SetEnd(11), libbuf.ErrorOutOfBounds)).To(BeTrue())
		Expect(b.End()).To(Equal(4))
		invariant(b)
	})

	It("should bound the start cursor by zero and end", func() {
		Expect(b.SetEnd(6)).ToNot(HaveOccurred())
		Expect(b.SetStart(6)).ToNot(HaveOccurred())

		Expect(liberr.IsCode(b.SetStart(-1), libbuf.ErrorOutOfBounds)).To(BeTrue())
		Expect(liberr.IsCode(b.SetStart(7), libbuf.ErrorOutOfBounds)).To(BeTrue())
		Expect(b.Start()).To(Equal(6))
		invariant(b)
	})

	It("should leave cursors untouched on a failed move", func() {
		Expect(b.SetEnd(5)).ToNot(HaveOccurred())
		Expect(b.SetStart(3)).ToNot(HaveOccurred())

		Expect(b.SetStart(99)).To(HaveOccurred())
		Expect(b.Start()).To(Equal(3))
		Expect(b.End()).To(Equal(5))
	})

	It("should reset both cursors to zero", func() {
		Expect(b.SetEnd(7)).ToNot(HaveOccurred())
		Expect(b.SetStart(3)).ToNot(HaveOccurred())
		b.Reset()
		Expect(b.Start()).To(Equal(0))
		Expect(b.End()).To(Equal(0))
	})

	It("should expose live and free regions consistently", func() {
		copy(b.Free(), []byte{1, 2, 3, 4})
		Expect(b.SetEnd(4)).ToNot(HaveOccurred())
		Expect(b.SetStart(1)).ToNot(HaveOccurred())

		Expect(b.Bytes()).To(Equal([]byte{2, 3, 4}))
		Expect(len(b.Free())).To(Equal(b.Remaining()))
	})
})

var _ = Describe("Buffer MoveTo", func() {
	var b libbuf.Buffer

	BeforeEach(func() {
		var err error
		b, err = libbuf.New(10)
		Expect(err).ToNot(HaveOccurred())

		copy(b.Free(), []byte{0, 0, 0, 0xDE, 0xAD, 0xBE})
		Expect(b.SetEnd(6)).ToNot(HaveOccurred())
		Expect(b.SetStart(3)).ToNot(HaveOccurred())
	})

	It("should shift the live bytes and both cursors", func() {
		Expect(b.MoveTo(0)).ToNot(HaveOccurred())
		Expect(b.Start()).To(Equal(0))
		Expect(b.End()).To(Equal(3))
		Expect(b.Bytes()).To(Equal([]byte{0xDE, 0xAD, 0xBE}))
		invariant(b)
	})

	It("should be a no-op when moving to the current start", func() {
		Expect(b.MoveTo(b.Start())).ToNot(HaveOccurred())
		Expect(b.Start()).To(Equal(3))
		Expect(b.End()).To(Equal(6))
		Expect(b.Bytes()).To(Equal([]byte{0xDE, 0xAD, 0xBE}))
	})

	It("should refuse a destination overflowing the capacity", func() {
		Expect(liberr.IsCode(b.MoveTo(8), libbuf.ErrorOutOfBounds)).To(BeTrue())
		Expect(b.Start()).To(Equal(3))
		Expect(b.End()).To(Equal(6))
	})

	It("should support moving forward", func() {
		Expect(b.MoveTo(7)).ToNot(HaveOccurred())
		Expect(b.Bytes()).To(Equal([]byte{0xDE, 0xAD, 0xBE}))
		Expect(b.End()).To(Equal(10))
	})
})
