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

package loop_test

import (
	"time"

	libhdl "github.com/nabbar/goptk/handle"
	libevl "github.com/nabbar/goptk/loop"
	liberr "github.com/nabbar/golib/errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Timer", func() {
	var (
		l libevl.Loop
		h libhdl.Handle
	)

	BeforeEach(func() {
		l = newLoop()

		var err error
		h, err = l.TimerCreate()
		Expect(err).ToNot(HaveOccurred())
	})

	It("should never fire before being armed", func() {
		count := 0

		Expect(l.SetHandler(h, libevl.EventTimerExpired, func(_ libevl.Loop, _ libevl.Event, _ any) {
			count++
		}, nil)).ToNot(HaveOccurred())

		for i := 0; i < 5; i++ {
			Expect(l.Run()).ToNot(HaveOccurred())
		}

		Expect(count).To(Equal(0))
	})

	It("should deliver one expiry for a one-shot timer then stop", func() {
		count := 0

		Expect(l.SetHandler(h, libevl.EventTimerExpired, func(_ libevl.Loop, _ libevl.Event, _ any) {
			count++
		}, nil)).ToNot(HaveOccurred())

		Expect(l.TimerStart(h, 5*time.Millisecond, false)).ToNot(HaveOccurred())

		Expect(pumpUntil(l, time.Second, func() bool { return count > 0 })).To(BeTrue())

		for i := 0; i < 5; i++ {
			Expect(l.Run()).ToNot(HaveOccurred())
		}

		Expect(count).To(Equal(1))
	})

	It("should tick a repeating timer at its cadence", func() {
		count := 0

		Expect(l.SetHandler(h, libevl.EventTimerExpired, func(_ libevl.Loop, _ libevl.Event, _ any) {
			count++
		}, nil)).ToNot(HaveOccurred())

		Expect(l.TimerStart(h, 10*time.Millisecond, true)).ToNot(HaveOccurred())

		limit := time.Now().Add(105 * time.Millisecond)
		for time.Now().Before(limit) {
			Expect(l.Run()).ToNot(HaveOccurred())
		}

		Expect(count).To(BeNumerically(">=", 8))
		Expect(count).To(BeNumerically("<=", 12))
	})

	It("should rearm with a fresh interval on a second start", func() {
		count := 0

		Expect(l.SetHandler(h, libevl.EventTimerExpired, func(_ libevl.Loop, _ libevl.Event, _ any) {
			count++
		}, nil)).ToNot(HaveOccurred())

		Expect(l.TimerStart(h, time.Hour, true)).ToNot(HaveOccurred())
		Expect(l.TimerStart(h, 5*time.Millisecond, false)).ToNot(HaveOccurred())

		Expect(pumpUntil(l, time.Second, func() bool { return count > 0 })).To(BeTrue())
	})

	It("should cancel pending expiry on stop, idempotently", func() {
		count := 0

		Expect(l.SetHandler(h, libevl.EventTimerExpired, func(_ libevl.Loop, _ libevl.Event, _ any) {
			count++
		}, nil)).ToNot(HaveOccurred())

		Expect(l.TimerStart(h, time.Millisecond, true)).ToNot(HaveOccurred())
		time.Sleep(5 * time.Millisecond)

		Expect(l.TimerStop(h)).ToNot(HaveOccurred())
		Expect(l.TimerStop(h)).ToNot(HaveOccurred())

		for i := 0; i < 3; i++ {
			Expect(l.Run()).ToNot(HaveOccurred())
		}

		Expect(count).To(Equal(0))
	})

	It("should refuse a non-positive interval", func() {
		err := l.TimerStart(h, 0, false)
		Expect(liberr.IsCode(err, libevl.ErrorInvalidArgument)).To(BeTrue())
	})

	It("should let a second handler for one timer event replace the first", func() {
		var order []int

		Expect(l.SetHandler(h, libevl.EventTimerExpired, func(_ libevl.Loop, _ libevl.Event, _ any) {
			order = append(order, 1)
		}, nil)).ToNot(HaveOccurred())

		// same event type replaces; distinct types coexist on one timer
		Expect(l.SetHandler(h, libevl.EventTimerExpired, func(_ libevl.Loop, _ libevl.Event, _ any) {
			order = append(order, 2)
		}, nil)).ToNot(HaveOccurred())

		Expect(l.TimerStart(h, time.Millisecond, false)).ToNot(HaveOccurred())
		Expect(pumpUntil(l, time.Second, func() bool { return len(order) > 0 })).To(BeTrue())

		// the second registration overwrote the first
		Expect(order).To(Equal([]int{2}))
	})
})
