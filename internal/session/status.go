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

package session

import "fmt"

// Status is the outcome a SessionResponse carries back to the peer that
// issued a GET or PUT command.
type Status uint64

const (
	StatusOk Status = iota
	StatusNotFound
	StatusPermissionDenied
	StatusIsDirectory
	StatusNotRegularFile
	StatusOversize
	StatusIOError
	StatusCancelled
)

func (s Status) String() string {
	switch s {
	case StatusOk:
		return "ok"
	case StatusNotFound:
		return "not found"
	case StatusPermissionDenied:
		return "permission denied"
	case StatusIsDirectory:
		return "is a directory"
	case StatusNotRegularFile:
		return "not a regular file"
	case StatusOversize:
		return "file exceeds the negotiated size limit"
	case StatusIOError:
		return "i/o error"
	case StatusCancelled:
		return "cancelled"
	default:
		return "unknown status"
	}
}

// StatusError reports a preflight or transfer failure in terms the wire
// protocol can carry back as a SessionResponse rather than a bare error
// string (spec.md §6 "failures map onto a small closed set of status
// codes rather than free-form text").
type StatusError struct {
	Status Status
	Path   string
}

func (e *StatusError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("session: %s: %s", e.Path, e.Status)
	}
	return fmt.Sprintf("session: %s", e.Status)
}

// AsStatus extracts the Status an error should be reported as, defaulting
// to StatusIOError for anything not already a *StatusError.
func AsStatus(err error) Status {
	if err == nil {
		return StatusOk
	}
	if se, ok := err.(*StatusError); ok {
		return se.Status
	}
	return StatusIOError
}
