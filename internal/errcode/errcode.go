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

// Package errcode classifies a failure into one of a small set of kinds
// and maps each kind to the process exit code cmd/qcp reports, in place
// of the teacher's own checkError(err) -> os.Exit(-1) (every failure
// looks the same to the shell). A caller further down the stack that
// already knows which kind its failure is should wrap it with Wrap so
// main doesn't have to re-derive it from error text.
package errcode

import "fmt"

// Kind names why an invocation failed.
type Kind int

const (
	KindNone Kind = iota
	KindConfig
	KindSSH
	KindControlProtocol
	KindIncompatible
	KindRemoteFailure
	KindTLS
	KindQUIC
	KindSessionStatus
	KindIO
	KindCancelled
	KindTimeout
)

// exitCodes mirrors the sysexits.h-style convention OpenSSH itself uses
// for its own client exit statuses, plus qcp-specific codes (79, 1, 130)
// for the failure kinds sysexits has no slot for.
var exitCodes = map[Kind]int{
	KindNone:            0,
	KindConfig:          64, // EX_USAGE
	KindSSH:             65, // EX_DATAERR: every ssh failure maps here; ssh's own exit status is not passed through
	KindControlProtocol: 76, // EX_PROTOCOL
	KindIncompatible:    77, // EX_NOPERM reused: peer refused to interoperate
	KindRemoteFailure:   70, // EX_SOFTWARE: peer reported a preflight/transfer failure
	KindTLS:             78, // EX_CONFIG reused for credential/handshake failures
	KindQUIC:            79,
	KindSessionStatus:   1,
	KindIO:              74, // EX_IOERR
	KindCancelled:       130, // 128 + SIGINT
	KindTimeout:         75,  // EX_TEMPFAIL
}

// ExitCode returns the process exit status for kind.
func ExitCode(kind Kind) int {
	if code, ok := exitCodes[kind]; ok {
		return code
	}
	return 1
}

// Error wraps an underlying error with the Kind that determines its exit
// status, without discarding the original message or chain.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindConfig:
		return "config error"
	case KindSSH:
		return "ssh failure"
	case KindControlProtocol:
		return "control protocol error"
	case KindIncompatible:
		return "incompatible peer"
	case KindRemoteFailure:
		return "remote failure"
	case KindTLS:
		return "tls error"
	case KindQUIC:
		return "quic error"
	case KindSessionStatus:
		return "session status"
	case KindIO:
		return "i/o error"
	case KindCancelled:
		return "cancelled"
	case KindTimeout:
		return "timeout"
	default:
		return "unknown error"
	}
}

// Wrap attaches kind to err, or returns nil if err is nil.
func Wrap(kind Kind, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Err: err}
}

// KindOf extracts the Kind a previously-wrapped error carries, defaulting
// to KindIO for anything else (an unexpected error is still most often
// the filesystem's fault by the time it reaches main).
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	if e, ok := err.(*Error); ok {
		return e.Kind
	}
	return KindIO
}
