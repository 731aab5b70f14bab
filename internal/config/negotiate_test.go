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

import "testing"

func TestNegotiateBandwidthTxZeroInheritsRx(t *testing.T) {
	// spec.md §8 scenario 6: client rx 50M tx 0; server rx 10M tx 100M.
	client := TransportPreferences{
		RxBandwidth: Some(uint64(50_000_000)),
		TxBandwidth: Some(uint64(0)),
	}
	server := TransportPreferences{
		RxBandwidth: Some(uint64(10_000_000)),
		TxBandwidth: Some(uint64(100_000_000)),
	}
	n := Negotiate(client, server, 60)
	if n.TxBandwidth != 50_000_000 {
		t.Fatalf("client->server want 50M got %d", n.TxBandwidth)
	}
	if n.RxBandwidth != 50_000_000 {
		t.Fatalf("server->client want min(50M,100M)=50M at client rx; got %d", n.RxBandwidth)
	}
	if err := n.Validate(); err != nil {
		t.Fatal(err)
	}
}

func TestNegotiateRTTIsMax(t *testing.T) {
	client := TransportPreferences{RTTMillis: Some(uint32(20))}
	server := TransportPreferences{RTTMillis: Some(uint32(150))}
	n := Negotiate(client, server, 60)
	if n.RTTMillis != 150 {
		t.Fatalf("want 150, got %d", n.RTTMillis)
	}
}

func TestNegotiateMTUInvariantHolds(t *testing.T) {
	client := TransportPreferences{InitialMTU: Some(uint32(9000))}
	server := TransportPreferences{MinMTU: Some(uint32(1200)), MaxMTU: Some(uint32(1452))}
	n := Negotiate(client, server, 60)
	if n.InitialMTU != 1452 {
		t.Fatalf("want clamp to max 1452, got %d", n.InitialMTU)
	}
	if err := n.Validate(); err != nil {
		t.Fatal(err)
	}
}

func TestNegotiateAllDefaultsSatisfyInvariants(t *testing.T) {
	n := Negotiate(TransportPreferences{}, TransportPreferences{}, 60)
	if err := n.Validate(); err != nil {
		t.Fatalf("defaults must satisfy invariants: %v", err)
	}
}

func TestNegotiateServerTightensCongestion(t *testing.T) {
	client := TransportPreferences{Congestion: Some(CongestionBBR)}
	server := TransportPreferences{Congestion: Some(CongestionCubic)}
	n := Negotiate(client, server, 60)
	if n.Congestion != CongestionCubic {
		t.Fatalf("server restriction should win, got %v", n.Congestion)
	}
}

func TestNegotiateClientPreferenceWinsWhenServerSilent(t *testing.T) {
	client := TransportPreferences{Congestion: Some(CongestionBBR)}
	n := Negotiate(client, TransportPreferences{}, 60)
	if n.Congestion != CongestionBBR {
		t.Fatalf("client preference should win, got %v", n.Congestion)
	}
}
