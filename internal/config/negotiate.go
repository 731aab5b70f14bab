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

package config

// Negotiate merges the client's and server's resolved TransportPreferences
// into the single tuple both endpoints apply, per spec.md §4.7 Stage B.
// Each field's merge rule is a small named function so the direction
// (min/max/client-preferred) is visible at the call site, the structure
// spec.md §9's REDESIGN FLAGS note asks for ("a table driven by
// CompatibilityLevel constants, not hard-coded in the handshake logic").
func Negotiate(client, server TransportPreferences, timeoutSeconds uint32) NegotiatedTransport {
	rx, tx := negotiateBandwidth(client, server)
	n := NegotiatedTransport{
		RxBandwidth:     rx,
		TxBandwidth:     tx,
		RTTMillis:       negotiateRTT(client, server),
		Congestion:      negotiateCongestion(client, server),
		InitialCwnd:     negotiateClientPreferredUint(client.InitialCwnd, server.InitialCwnd, defaultInitialCwnd),
		UDPBuffer:       negotiateClientPreferredUint(client.UDPBuffer, server.UDPBuffer, defaultUDPBuffer),
		InitialMTU:      negotiateMTU(client, server),
		MinMTU:          negotiateBound(client.MinMTU, server.MinMTU, maxU32, defaultMinMTU),
		MaxMTU:          negotiateBound(client.MaxMTU, server.MaxMTU, minU32, defaultMaxMTU),
		PacketThreshold: negotiateClientPreferredUint32(client.PacketThreshold, server.PacketThreshold, defaultPacketThreshold),
		TimeThreshold:   negotiateClientPreferredUint32(client.TimeThreshold, server.TimeThreshold, defaultTimeThreshold),
		TimeoutSeconds:  timeoutSeconds,
	}
	// Keep the initial MTU inside the negotiated [MinMTU, MaxMTU] window.
	if n.InitialMTU < n.MinMTU {
		n.InitialMTU = n.MinMTU
	}
	if n.InitialMTU > n.MaxMTU {
		n.InitialMTU = n.MaxMTU
	}
	return n
}

const (
	defaultRTTMillis       = 300
	defaultInitialCwnd     = 10 * 1460 // ~10 packets, the conventional QUIC/TCP default
	defaultUDPBuffer       = 4 << 20
	defaultMinMTU          = 1200 // RFC 9000 minimum safe datagram size
	defaultMaxMTU          = 1452
	defaultInitialMTU      = 1350
	defaultPacketThreshold = 3
	defaultTimeThreshold   = 9 // x RTT/8, quic-go's own default granularity
)

// negotiateBandwidth implements spec.md §4.7: "effective_rx_at_A =
// min(A.rx, B.tx); symmetric for the other direction. tx = 0 resolves
// to rx before the cross-merge." A is the client here, B the server.
func negotiateBandwidth(client, server TransportPreferences) (rx, tx uint64) {
	clientRx := orDefault(client.RxBandwidth, 0)
	clientTx := orDefault(client.TxBandwidth, 0)
	if clientTx == 0 {
		clientTx = clientRx
	}
	serverRx := orDefault(server.RxBandwidth, 0)
	serverTx := orDefault(server.TxBandwidth, 0)
	if serverTx == 0 {
		serverTx = serverRx
	}
	// rx at the client = min(client's advertised rx capacity, server's tx capacity)
	rx = minU64(clientRx, serverTx)
	// tx from the client = min(client's tx capacity, server's rx capacity)
	tx = minU64(clientTx, serverRx)
	if tx == 0 {
		tx = rx
	}
	if tx == 0 {
		tx = 1 // never let the invariant "tx > 0" go unsatisfied on an all-zero config
	}
	return rx, tx
}

// negotiateRTT: "max(A.rtt, B.rtt) (more conservative wins)". A side
// that leaves RTT unset defers to the peer; the default applies only
// when neither side sets it.
func negotiateRTT(client, server TransportPreferences) uint32 {
	return negotiateBound(client.RTTMillis, server.RTTMillis, maxU32, defaultRTTMillis)
}

// negotiateCongestion: client proposes, server may tighten to one it
// actually supports; absent either side's preference, Cubic is the
// conservative default both quic-go and the teacher's own kcp "normal"
// profile assume.
func negotiateCongestion(client, server TransportPreferences) Congestion {
	if server.Congestion.Set {
		return server.Congestion.Value
	}
	if client.Congestion.Set {
		return client.Congestion.Value
	}
	return CongestionCubic
}

// negotiateMTU: client proposes an initial MTU; the server may clamp it
// into its own [min,max] window.
func negotiateMTU(client, server TransportPreferences) uint32 {
	v := orDefaultU32(client.InitialMTU, defaultInitialMTU)
	if server.MinMTU.Set && v < server.MinMTU.Value {
		v = server.MinMTU.Value
	}
	if server.MaxMTU.Set && v > server.MaxMTU.Value {
		v = server.MaxMTU.Value
	}
	return v
}

// negotiateBound folds two optional bounds with pick, falling back to def.
func negotiateBound(client, server Optional[uint32], pick func(a, b uint32) uint32, def uint32) uint32 {
	switch {
	case client.Set && server.Set:
		return pick(client.Value, server.Value)
	case client.Set:
		return client.Value
	case server.Set:
		return server.Value
	default:
		return def
	}
}

func negotiateClientPreferredUint(client, server Optional[uint64], def uint64) uint64 {
	if server.Set {
		return server.Value
	}
	if client.Set {
		return client.Value
	}
	return def
}

func negotiateClientPreferredUint32(client, server Optional[uint32], def uint32) uint32 {
	if server.Set {
		return server.Value
	}
	if client.Set {
		return client.Value
	}
	return def
}

func orDefault(o Optional[uint64], def uint64) uint64 {
	if o.Set {
		return o.Value
	}
	return def
}

func orDefaultU32(o Optional[uint32], def uint32) uint32 {
	if o.Set {
		return o.Value
	}
	return def
}

func minU64(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}

func minU32(a, b uint32) uint32 {
	if a < b {
		return a
	}
	return b
}

func maxU32(a, b uint32) uint32 {
	if a > b {
		return a
	}
	return b
}
