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
	goptk "github.com/nabbar/goptk"
	liberr "github.com/nabbar/golib/errors"
	"golang.org/x/sys/unix"
)

const (
	ErrorParamEmpty liberr.CodeError = iota + goptk.MinPkgLoop
	ErrorNilPointer
	ErrorValidatorError
	ErrorInvalidHandle
	ErrorInvalidArgument
	ErrorOutOfResources
	ErrorUnsupported
	ErrorNetwork
	ErrorTimeout
	ErrorWouldBlock
	ErrorConnectionRefused
	ErrorConnectionReset
	ErrorNotConnected
	ErrorAlreadyConnected
	ErrorAddressInUse
	ErrorNoRoute
	ErrorMessageTooLarge
	ErrorBufferTooSmall
	ErrorClosed
	ErrorInterrupted
	ErrorAborted
	ErrorLoopRunning
	ErrorSystem
)

func init() {
	liberr.RegisterIdFctMessage(ErrorParamEmpty, getMessage)
}

func getMessage(code liberr.CodeError) (message string) {
	switch code {
	case liberr.UnknownError:
		return liberr.NullMessage
	case ErrorParamEmpty:
		return "given parameters is empty"
	case ErrorNilPointer:
		return "cannot call function for a nil pointer"
	case ErrorValidatorError:
		return "invalid config, validation error"
	case ErrorInvalidHandle:
		return "given handle does not reference a live resource of this loop"
	case ErrorInvalidArgument:
		return "given argument is not acceptable for this operation"
	case ErrorOutOfResources:
		return "no free slot is left in the requested resource table"
	case ErrorUnsupported:
		return "requested operation is not supported by this resource"
	case ErrorNetwork:
		return "network operation failed"
	case ErrorTimeout:
		return "operation deadline has expired"
	case ErrorWouldBlock:
		return "operation cannot complete without blocking"
	case ErrorConnectionRefused:
		return "peer refused the connection"
	case ErrorConnectionReset:
		return "peer reset the connection"
	case ErrorNotConnected:
		return "socket is not connected"
	case ErrorAlreadyConnected:
		return "socket is already connected"
	case ErrorAddressInUse:
		return "local address is already in use"
	case ErrorNoRoute:
		return "no route to the requested network"
	case ErrorMessageTooLarge:
		return "message exceeds the transport datagram size"
	case ErrorBufferTooSmall:
		return "given buffer has no room for the requested transfer"
	case ErrorClosed:
		return "resource has been closed"
	case ErrorInterrupted:
		return "operation was interrupted"
	case ErrorAborted:
		return "operation was aborted"
	case ErrorLoopRunning:
		return "event loop is already pumping on another call"
	case ErrorSystem:
		return "system call failed"
	}

	return liberr.NullMessage
}

// netErrorCode translates a socket syscall errno into the toolkit taxonomy.
// A zero-length read on a stream socket is translated by the caller, not
// here, since it carries no errno.
func netErrorCode(err error) liberr.CodeError {
	en, ok := err.(unix.Errno)
	if !ok {
		return ErrorNetwork
	}

	switch en {
	case unix.ECONNREFUSED:
		return ErrorConnectionRefused
	case unix.ECONNRESET, unix.EPIPE:
		return ErrorConnectionReset
	case unix.EADDRINUSE:
		return ErrorAddressInUse
	case unix.ENETUNREACH, unix.EHOSTUNREACH:
		return ErrorNoRoute
	case unix.EMSGSIZE:
		return ErrorMessageTooLarge
	case unix.EAGAIN:
		return ErrorWouldBlock
	case unix.EINTR:
		return ErrorInterrupted
	case unix.ENOTCONN:
		return ErrorNotConnected
	case unix.EISCONN:
		return ErrorAlreadyConnected
	case unix.ETIMEDOUT:
		return ErrorTimeout
	case unix.EBADF:
		return ErrorClosed
	}

	return ErrorNetwork
}

func netError(err error) liberr.Error {
	return netErrorCode(err).Error(err)
}
