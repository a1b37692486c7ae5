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

// Package modbus is the reference consumer of the toolkit core: a Modbus/TCP
// MBAP framing layer, an echo server and a small request client, all built
// on the public surface of the buffer, codec, loop and protothread
// packages. No part of the core depends on this package.
package modbus

import (
	libbuf "github.com/nabbar/goptk/buffer"
	libcdc "github.com/nabbar/goptk/codec"

	liberr "github.com/nabbar/golib/errors"
)

const (
	// HeaderSize is the wire size of one MBAP header.
	HeaderSize = 7

	// MaxFrameSize is the largest Modbus/TCP ADU: header plus 253 PDU bytes.
	MaxFrameSize = 260

	// protocolModbus is the only MBAP protocol identifier in use.
	protocolModbus = 0x0000
)

// Header is the MBAP header fronting every Modbus/TCP frame. Length counts
// the unit identifier plus the PDU, so a full frame spans
// HeaderSize - 1 + Length bytes.
type Header struct {
	Transaction uint16
	Protocol    uint16
	Length      uint16
	Unit        uint8
}

// FrameSize returns the wire size of the whole frame announced by the
// header.
func (h Header) FrameSize() int {
	return HeaderSize - 1 + int(h.Length)
}

// PDUSize returns the size of the PDU following the header.
func (h Header) PDUSize() int {
	return int(h.Length) - 1
}

// Validate checks the header fields against the Modbus/TCP framing rules.
func (h Header) Validate() liberr.Error {
	if h.Protocol != protocolModbus {
		return ErrorProtocol.Error(nil)
	}

	if h.Length < 2 || h.FrameSize() > MaxFrameSize {
		return ErrorBadFormat.Error(nil)
	}

	return nil
}

// Produce appends the header to the buffer, big-endian per the Modbus/TCP
// wire order, atomically.
func (h Header) Produce(b libbuf.Buffer) error {
	return libcdc.Produce(b, libcdc.BigEndian,
		libcdc.U16(h.Transaction),
		libcdc.U16(h.Protocol),
		libcdc.U16(h.Length),
		libcdc.U8(h.Unit),
	)
}

// ConsumeHeader decodes one MBAP header off the buffer. With peek set the
// start cursor is unchanged, so a framing loop can inspect the announced
// length before the whole frame arrived.
func ConsumeHeader(b libbuf.Buffer, peek bool) (Header, error) {
	var h Header

	err := libcdc.Consume(b, libcdc.BigEndian, peek,
		libcdc.U16Ptr(&h.Transaction),
		libcdc.U16Ptr(&h.Protocol),
		libcdc.U16Ptr(&h.Length),
		libcdc.U8Ptr(&h.Unit),
	)

	return h, err
}
