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

// Package config resolves qcp's effective configuration from CLI flags,
// per-user and system config files (OpenSSH Host/Include syntax), and
// hard-wired defaults (spec.md §4.7 Stage A), then negotiates the two
// sides' resolved preferences into one tuple both endpoints apply
// (Stage B).
package config

import "github.com/qcp-project/qcp/internal/wire"

// Congestion names the supported QUIC congestion controllers
// (spec.md §3 TransportPreferences.congestion).
type Congestion int

const (
	CongestionUnset Congestion = iota
	CongestionCubic
	CongestionNewReno
	CongestionBBR
)

func (c Congestion) String() string {
	switch c {
	case CongestionCubic:
		return "cubic"
	case CongestionNewReno:
		return "newreno"
	case CongestionBBR:
		return "bbr"
	default:
		return "unset"
	}
}

// AddressFamily restricts which IP family the QUIC endpoint binds/dials,
// matching the SSH connection's own family (spec.md §4.4).
type AddressFamily int

const (
	AddressFamilyAny AddressFamily = iota
	AddressFamilyV4
	AddressFamilyV6
)

// Optional[T] represents a TransportPreferences field that may be absent
// ("defer to peer"), per spec.md §3.
type Optional[T any] struct {
	Value T
	Set   bool
}

// Some returns a present Optional.
func Some[T any](v T) Optional[T] { return Optional[T]{Value: v, Set: true} }

// TransportPreferences carries one side's preferred transport tuning,
// every field optional until Stage B negotiation fills in concrete
// values (spec.md §3).
type TransportPreferences struct {
	RxBandwidth     Optional[uint64] // bytes/sec
	TxBandwidth     Optional[uint64] // bytes/sec; 0 resolves to post-merge Rx
	RTTMillis       Optional[uint32]
	Congestion      Optional[Congestion]
	InitialCwnd     Optional[uint64] // bytes
	UDPBuffer       Optional[uint64] // bytes
	InitialMTU      Optional[uint32]
	MinMTU          Optional[uint32]
	MaxMTU          Optional[uint32]
	PacketThreshold Optional[uint32]
	TimeThreshold   Optional[uint32] // eighths of RTT (9 = 9/8 RTT)
}

// NegotiatedTransport is the fully-resolved tuple both endpoints apply
// to their QUIC transport, satisfying the invariants in spec.md §3:
// MinMTU <= InitialMTU <= MaxMTU, RTT > 0, RxBandwidth >= 0,
// TxBandwidth > 0 (post tx=0-to-rx substitution).
type NegotiatedTransport struct {
	RxBandwidth     uint64
	TxBandwidth     uint64
	RTTMillis       uint32
	Congestion      Congestion
	InitialCwnd     uint64
	UDPBuffer       uint64
	InitialMTU      uint32
	MinMTU          uint32
	MaxMTU          uint32
	PacketThreshold uint32
	TimeThreshold   uint32
	TimeoutSeconds  uint32
}

// Validate checks the invariants spec.md §8 requires to hold after
// negotiation.
func (n NegotiatedTransport) Validate() error {
	if !(n.MinMTU <= n.InitialMTU && n.InitialMTU <= n.MaxMTU) {
		return errInvariant("min_mtu <= initial_mtu <= max_mtu violated")
	}
	if n.RTTMillis == 0 {
		return errInvariant("rtt must be > 0")
	}
	if n.TxBandwidth == 0 {
		return errInvariant("tx bandwidth must be > 0 after tx=0 substitution")
	}
	return nil
}

type invariantError string

func (e invariantError) Error() string { return string(e) }

func errInvariant(msg string) error { return invariantError("config: " + msg) }

// --- wire encoding for TransportPreferences, used by control messages ---

func writeOptionalUint(w *wire.Writer, o Optional[uint64]) {
	w.OptionalPresent(o.Set)
	if o.Set {
		w.Uint(o.Value)
	}
}

func readOptionalUint(r *wire.Reader) (Optional[uint64], error) {
	present, err := r.OptionalPresent()
	if err != nil || !present {
		return Optional[uint64]{}, err
	}
	v, err := r.Uint()
	if err != nil {
		return Optional[uint64]{}, err
	}
	return Some(v), nil
}

func writeOptionalUint32(w *wire.Writer, o Optional[uint32]) {
	w.OptionalPresent(o.Set)
	if o.Set {
		w.Uint(uint64(o.Value))
	}
}

func readOptionalUint32(r *wire.Reader) (Optional[uint32], error) {
	present, err := r.OptionalPresent()
	if err != nil || !present {
		return Optional[uint32]{}, err
	}
	v, err := r.Uint()
	if err != nil {
		return Optional[uint32]{}, err
	}
	return Some(uint32(v)), nil
}

// Encode writes TransportPreferences as a sequence of optional fields,
// in the order declared in spec.md §3.
func (p TransportPreferences) Encode(w *wire.Writer) {
	writeOptionalUint(w, p.RxBandwidth)
	writeOptionalUint(w, p.TxBandwidth)
	writeOptionalUint32(w, p.RTTMillis)
	w.OptionalPresent(p.Congestion.Set)
	if p.Congestion.Set {
		w.Uint(uint64(p.Congestion.Value))
	}
	writeOptionalUint(w, p.InitialCwnd)
	writeOptionalUint(w, p.UDPBuffer)
	writeOptionalUint32(w, p.InitialMTU)
	writeOptionalUint32(w, p.MinMTU)
	writeOptionalUint32(w, p.MaxMTU)
	writeOptionalUint32(w, p.PacketThreshold)
	writeOptionalUint32(w, p.TimeThreshold)
}

// DecodeTransportPreferences reads back what Encode wrote.
func DecodeTransportPreferences(r *wire.Reader) (TransportPreferences, error) {
	var p TransportPreferences
	var err error
	if p.RxBandwidth, err = readOptionalUint(r); err != nil {
		return p, err
	}
	if p.TxBandwidth, err = readOptionalUint(r); err != nil {
		return p, err
	}
	if p.RTTMillis, err = readOptionalUint32(r); err != nil {
		return p, err
	}
	present, err := r.OptionalPresent()
	if err != nil {
		return p, err
	}
	if present {
		v, err := r.Uint()
		if err != nil {
			return p, err
		}
		p.Congestion = Some(Congestion(v))
	}
	if p.InitialCwnd, err = readOptionalUint(r); err != nil {
		return p, err
	}
	if p.UDPBuffer, err = readOptionalUint(r); err != nil {
		return p, err
	}
	if p.InitialMTU, err = readOptionalUint32(r); err != nil {
		return p, err
	}
	if p.MinMTU, err = readOptionalUint32(r); err != nil {
		return p, err
	}
	if p.MaxMTU, err = readOptionalUint32(r); err != nil {
		return p, err
	}
	if p.PacketThreshold, err = readOptionalUint32(r); err != nil {
		return p, err
	}
	if p.TimeThreshold, err = readOptionalUint32(r); err != nil {
		return p, err
	}
	return p, nil
}
