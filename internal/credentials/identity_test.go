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

package credentials

import (
	"crypto/ecdsa"
	"errors"
	"testing"
)

// failingReader always fails, standing in for an entropy source that
// refuses Ed25519 key generation.
type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("injected: entropy source refuses to read")
}

func TestGenerateFallsBackToECDSAWhenEd25519Unavailable(t *testing.T) {
	id, err := generate("host-fallback", failingReader{})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := id.Certificate.PrivateKey.(*ecdsa.PrivateKey); !ok {
		t.Fatalf("want *ecdsa.PrivateKey, got %T", id.Certificate.PrivateKey)
	}
	cert, err := ParsePeerCertificate(id.DER)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := cert.PublicKey.(*ecdsa.PublicKey); !ok {
		t.Fatalf("want certificate public key *ecdsa.PublicKey, got %T", cert.PublicKey)
	}
}

func TestGenerateProducesUsableCertificate(t *testing.T) {
	id, err := Generate("host-abc123")
	if err != nil {
		t.Fatal(err)
	}
	if len(id.Certificate.Certificate) != 1 {
		t.Fatalf("want exactly one certificate in the chain, got %d", len(id.Certificate.Certificate))
	}
	if id.HostID != "host-abc123" {
		t.Fatalf("got hostID %q", id.HostID)
	}
}

func TestParsePeerCertificateRoundTrips(t *testing.T) {
	id, err := Generate("peer-host")
	if err != nil {
		t.Fatal(err)
	}
	cert, err := ParsePeerCertificate(id.DER)
	if err != nil {
		t.Fatal(err)
	}
	if cert.DNSNames[0] != "peer-host" {
		t.Fatalf("got DNSNames %v", cert.DNSNames)
	}
}

func TestTwoIdentitiesHaveDistinctCertificates(t *testing.T) {
	a, err := Generate("a")
	if err != nil {
		t.Fatal(err)
	}
	b, err := Generate("b")
	if err != nil {
		t.Fatal(err)
	}
	if string(a.DER) == string(b.DER) {
		t.Fatal("expected distinct certificates")
	}
}
