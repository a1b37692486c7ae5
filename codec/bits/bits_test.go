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

package bits_test

import (
	libbit "github.com/nabbar/goptk/codec/bits"
	liberr "github.com/nabbar/golib/errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Bit Array", func() {
	Context("creation", func() {
		It("should size containers from the bit count", func() {
			a, err := libbit.New(libbit.ContainerU8, 12)
			Expect(err).ToNot(HaveOccurred())
			Expect(a.Len()).To(Equal(12))
			Expect(a.Containers()).To(Equal(2))

			a, err = libbit.New(libbit.ContainerU16, 16)
			Expect(err).ToNot(HaveOccurred())
			Expect(a.Containers()).To(Equal(1))

			a, err = libbit.New(libbit.ContainerU32, 33)
			Expect(err).ToNot(HaveOccurred())
			Expect(a.Containers()).To(Equal(2))
		})
		It("should refuse an invalid kind or empty size", func() {
			_, err := libbit.New(libbit.Kind(9), 8)
			Expect(liberr.IsCode(err, libbit.ErrorInvalidKind)).To(BeTrue())

			_, err = libbit.New(libbit.ContainerU8, 0)
			Expect(liberr.IsCode(err, libbit.ErrorParamEmpty)).To(BeTrue())
		})
	})

	Context("bit addressing", func() {
		It("should pack bits LSB-first within a container", func() {
			a, err := libbit.New(libbit.ContainerU8, 16)
			Expect(err).ToNot(HaveOccurred())

			Expect(a.SetBit(0, true)).ToNot(HaveOccurred())
			Expect(a.SetBit(3, true)).ToNot(HaveOccurred())
			Expect(a.SetBit(9, true)).ToNot(HaveOccurred())

			c0, err := a.Container(0)
			Expect(err).ToNot(HaveOccurred())
			Expect(c0).To(Equal(uint32(0x09)))

			c1, err := a.Container(1)
			Expect(err).ToNot(HaveOccurred())
			Expect(c1).To(Equal(uint32(0x02)))
		})

		It("should read back set and cleared bits", func() {
			a, err := libbit.New(libbit.ContainerU16, 20)
			Expect(err).ToNot(HaveOccurred())

			Expect(a.SetBit(17, true)).ToNot(HaveOccurred())

			v, err := a.Bit(17)
			Expect(err).ToNot(HaveOccurred())
			Expect(v).To(BeTrue())

			Expect(a.SetBit(17, false)).ToNot(HaveOccurred())

			v, err = a.Bit(17)
			Expect(err).ToNot(HaveOccurred())
			Expect(v).To(BeFalse())
		})

		It("should bound bit indexes", func() {
			a, err := libbit.New(libbit.ContainerU8, 10)
			Expect(err).ToNot(HaveOccurred())

			Expect(liberr.IsCode(a.SetBit(10, true), libbit.ErrorOutOfBounds)).To(BeTrue())
			_, err = a.Bit(-1)
			Expect(liberr.IsCode(err, libbit.ErrorOutOfBounds)).To(BeTrue())
		})
	})

	Context("container addressing", func() {
		It("should share the backing with bit addressing", func() {
			a, err := libbit.New(libbit.ContainerU16, 32)
			Expect(err).ToNot(HaveOccurred())

			Expect(a.SetContainer(1, 0x8001)).ToNot(HaveOccurred())

			v, err := a.Bit(16)
			Expect(err).ToNot(HaveOccurred())
			Expect(v).To(BeTrue())

			v, err = a.Bit(31)
			Expect(err).ToNot(HaveOccurred())
			Expect(v).To(BeTrue())

			v, err = a.Bit(17)
			Expect(err).ToNot(HaveOccurred())
			Expect(v).To(BeFalse())
		})

		It("should mask values above the container width", func() {
			a, err := libbit.New(libbit.ContainerU8, 8)
			Expect(err).ToNot(HaveOccurred())

			Expect(a.SetContainer(0, 0x1FF)).ToNot(HaveOccurred())

			v, err := a.Container(0)
			Expect(err).ToNot(HaveOccurred())
			Expect(v).To(Equal(uint32(0xFF)))
		})

		It("should bound container indexes", func() {
			a, err := libbit.New(libbit.ContainerU32, 32)
			Expect(err).ToNot(HaveOccurred())

			Expect(liberr.IsCode(a.SetContainer(1, 0), libbit.ErrorOutOfBounds)).To(BeTrue())
		})
	})
})
