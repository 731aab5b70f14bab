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

// Package control drives the handshake that runs over the SSH-piped stdio
// pipe before any QUIC packet is sent: greeting exchange, certificate and
// transport-preference exchange, and the closedown report exchanged once the
// session protocol has finished (spec.md §4).
package control

import (
	"io"

	"github.com/pkg/errors"

	"github.com/qcp-project/qcp/internal/compat"
)

// greetingMagic identifies the start of a qcp control stream, letting a
// misdirected SSH session (wrong subsystem, stray shell banner) fail fast
// instead of hanging in the general wire codec.
var greetingMagic = [4]byte{'Q', 'C', 'P', 0}

// greetingSize is the on-wire size of a Greeting: 4 (magic) + 1 (protocol
// version) + 1 (compat level) + 16 (host ID).
const greetingSize = 4 + 1 + 1 + 16

// protocolVersion is qcp's own message-format version, independent of
// compat.Level (which governs feature availability once both sides are
// already speaking this format).
const protocolVersion = 1

// Greeting is the very first thing each side writes and the first thing it
// reads, before any compat-level negotiation has happened. It is therefore
// encoded as a fixed-width record rather than through the general wire
// codec in internal/wire, which assumes both ends already agree on framing.
type Greeting struct {
	Version     uint8
	CompatLevel compat.Level
	HostID      [16]byte
}

// NewGreeting builds this side's greeting advertising the highest compat
// level it supports.
func NewGreeting(hostID [16]byte) Greeting {
	return Greeting{Version: protocolVersion, CompatLevel: compat.Current, HostID: hostID}
}

// Write sends the greeting's fixed-width encoding.
func (g Greeting) Write(w io.Writer) error {
	var buf [greetingSize]byte
	copy(buf[0:4], greetingMagic[:])
	buf[4] = g.Version
	buf[5] = uint8(g.CompatLevel)
	copy(buf[6:22], g.HostID[:])
	_, err := w.Write(buf[:])
	return errors.Wrap(err, "control: write greeting")
}

// ReadGreeting reads and validates a peer's greeting.
func ReadGreeting(r io.Reader) (Greeting, error) {
	var buf [greetingSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return Greeting{}, errors.Wrap(err, "control: read greeting")
	}
	if buf[0] != greetingMagic[0] || buf[1] != greetingMagic[1] || buf[2] != greetingMagic[2] || buf[3] != greetingMagic[3] {
		return Greeting{}, errors.New("control: bad greeting magic, not a qcp peer")
	}
	var g Greeting
	g.Version = buf[4]
	g.CompatLevel = compat.Level(buf[5])
	copy(g.HostID[:], buf[6:22])
	if g.Version != protocolVersion {
		return g, errors.Errorf("control: unsupported protocol version %d", g.Version)
	}
	return g, nil
}

// effectiveLevel is a small wrapper kept here (rather than re-exported from
// compat) so callers in this package read naturally: control.effectiveLevel.
func effectiveLevel(local, peer compat.Level) compat.Level { return compat.Min(local, peer) }
