// The MIT License (MIT)
//
// Copyright (c) 2026 The qcp Authors
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

// Package wire implements the deterministic binary codec shared by the
// control channel and the session protocol: unsigned/signed varints,
// length-prefixed strings and sequences, optional fields, sum-type
// discriminants, and the Variant TLV extension point.
package wire

import "github.com/pkg/errors"

// Reason names why a decode failed, matching the ProtocolError kinds in
// spec.md §7 (ControlProtocolError is built from these at the control
// and session layers).
type Reason int

const (
	// ReasonOversize means a length prefix exceeded the configured
	// MaxFramePayload and decoding was aborted before reading the body.
	ReasonOversize Reason = iota
	// ReasonTruncated means the underlying reader ran out of bytes
	// before a complete value could be decoded.
	ReasonTruncated
	// ReasonMalformed means the bytes present do not form a valid
	// encoding of the requested type (e.g. a boolean byte other than
	// 0/1, or invalid UTF-8 in a string).
	ReasonMalformed
)

func (r Reason) String() string {
	switch r {
	case ReasonOversize:
		return "oversize"
	case ReasonTruncated:
		return "truncated"
	case ReasonMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// ProtocolError is returned by every decode function in this package.
// Callers at higher layers map it onto their own error kind (e.g.
// ControlProtocolError) without needing to inspect the wire details.
type ProtocolError struct {
	Reason Reason
	What   string // field or type being decoded, for diagnostics
}

func (e *ProtocolError) Error() string {
	return "wire: " + e.Reason.String() + ": " + e.What
}

func oversize(what string) error {
	return errors.WithStack(&ProtocolError{Reason: ReasonOversize, What: what})
}

func truncated(what string) error {
	return errors.WithStack(&ProtocolError{Reason: ReasonTruncated, What: what})
}

func malformed(what string) error {
	return errors.WithStack(&ProtocolError{Reason: ReasonMalformed, What: what})
}

// IsOversize reports whether err is (or wraps) a ProtocolError with
// ReasonOversize, the case spec.md §4.1 calls out by name
// (ProtocolError::Oversize).
func IsOversize(err error) bool {
	var pe *ProtocolError
	if errors.As(err, &pe) {
		return pe.Reason == ReasonOversize
	}
	return false
}
