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

// Package goptk is a portable toolkit for building industrial-network protocol
// endpoints (Modbus/TCP, EtherNet/IP and similar request/response protocols)
// on top of a small event-driven runtime.
//
// The toolkit is split into focused sub-packages:
//   - buffer: double-cursor byte container used for receive-decode-reply framing
//   - codec: typed produce/consume of scalars, byte arrays and bit arrays with
//     explicit wire endianness, peek semantics and transactional multi-field calls
//   - codec/bits: bit arrays packed into u8/u16/u32 containers
//   - handle: opaque generation-tagged resource tokens
//   - loop: single-threaded cooperative event loop multiplexing timers, sockets
//     and user-signalled event sources over pre-allocated resource slots
//   - protothread: stackless cooperative tasks resumed by the loop
//   - modbus: a Modbus/TCP MBAP sample client and server consuming the core
//
// This root package only assigns the error code ranges used by the
// sub-packages, following the layout of the golib errors modules.
package goptk

import (
	liberr "github.com/nabbar/golib/errors"
)

const (
	MinPkgBuffer      = liberr.MinAvailable + 100
	MinPkgCodec       = liberr.MinAvailable + 200
	MinPkgCodecBits   = liberr.MinAvailable + 280
	MinPkgHandle      = liberr.MinAvailable + 300
	MinPkgLoop        = liberr.MinAvailable + 400
	MinPkgProtothread = liberr.MinAvailable + 600
	MinPkgModbus      = liberr.MinAvailable + 700
)
