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

package loop

import (
	"sync"

	libhdl "github.com/nabbar/goptk/handle"
)

// MaxLoops bounds the number of live loops per process. The loop id is an
// 8-bit handle field, so the hard ceiling is 256.
const MaxLoops = 64

// The process loop table. Loop slots follow the same generation scheme as
// resource slots, so the handle of a destroyed loop stays invalid even after
// its slot is reused.
var (
	poolMux sync.RWMutex
	poolGen [MaxLoops]uint16
	poolLps [MaxLoops]*lp
)

func poolAdd(o *lp) error {
	poolMux.Lock()
	defer poolMux.Unlock()

	for i := range poolLps {
		if poolLps[i] != nil {
			continue
		}

		poolGen[i] = allocGen(poolGen[i])
		poolLps[i] = o
		o.id = uint8(i)
		o.h = libhdl.New(libhdl.KindLoop, o.id, poolGen[i], uint32(i))

		return nil
	}

	return ErrorOutOfResources.Error(nil)
}

func poolDel(o *lp) {
	poolMux.Lock()
	defer poolMux.Unlock()

	i := int(o.id)

	if i < MaxLoops && poolLps[i] == o {
		poolLps[i] = nil
	}
}

// Owner resolves any resource handle back to the loop that owns it. The
// result must only be used on the goroutine pumping that loop.
func Owner(h libhdl.Handle) (Loop, error) {
	if h.Kind() == libhdl.KindLoop {
		return Get(h)
	}

	if int(h.LoopID()) >= MaxLoops {
		return nil, ErrorInvalidHandle.Error(nil)
	}

	poolMux.RLock()
	o := poolLps[h.LoopID()]
	poolMux.RUnlock()

	if o == nil || !o.Valid(h) {
		return nil, ErrorInvalidHandle.Error(nil)
	}

	return o, nil
}

// Get resolves a loop handle back to its loop. It fails with
// ErrorInvalidHandle once the loop has been destroyed, even if the slot has
// been reused since.
func Get(h libhdl.Handle) (Loop, error) {
	poolMux.RLock()
	defer poolMux.RUnlock()

	if h.Kind() != libhdl.KindLoop {
		return nil, ErrorInvalidHandle.Error(nil)
	}

	i := h.Slot()

	if i >= MaxLoops || poolLps[i] == nil || poolGen[i] != h.Generation() {
		return nil, ErrorInvalidHandle.Error(nil)
	}

	return poolLps[i], nil
}
