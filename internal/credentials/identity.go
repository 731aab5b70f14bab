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

// Package credentials generates and pins the ephemeral identities each side
// of a session authenticates with (spec.md §4.2, §4.3). Trust is bootstrapped
// over the SSH control channel: each side generates its own key pair and
// self-signed certificate per invocation, sends its certificate to the peer,
// and pins exactly that certificate for the QUIC handshake — there is no
// certificate authority and no hostname verification.
package credentials

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"io"
	"math/big"
	"time"

	"github.com/pkg/errors"
)

// Identity is one side's ephemeral key pair and self-signed certificate,
// generated fresh for every invocation and discarded afterward.
type Identity struct {
	HostID      string
	Certificate tls.Certificate
	DER         []byte // the single certificate, ready to ship over the control channel
}

// Generate creates a fresh key pair and a self-signed certificate whose
// Subject Alternative Name carries hostID (spec.md §4.2). The client passes
// the remote host name and the server "qcp-server"; the control-channel
// greeting carries its own, separate host identifier.
func Generate(hostID string) (Identity, error) {
	return generate(hostID, rand.Reader)
}

// generate is Generate's test seam: randReader feeds the primary Ed25519
// attempt, so a test can inject a reader that always fails to exercise the
// ECDSA-P256 fallback (spec.md §4.2: "Ed25519, or ECDSA-P256 as fallback").
// The fallback itself always draws from crypto/rand, since a caller whose
// entropy source refuses Ed25519 generation has no reason to also be
// distrusted for ECDSA.
func generate(hostID string, randReader io.Reader) (Identity, error) {
	priv, err := generateSigner(randReader)
	if err != nil {
		return Identity{}, errors.Wrap(err, "credentials: generate key")
	}

	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return Identity{}, errors.Wrap(err, "credentials: serial number")
	}

	template := x509.Certificate{
		SerialNumber: serial,
		Subject:      pkix.Name{CommonName: hostID},
		DNSNames:     []string{hostID},
		NotBefore:    time.Now().Add(-5 * time.Minute),
		NotAfter:     time.Now().Add(24 * time.Hour),

		KeyUsage:              x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth, x509.ExtKeyUsageClientAuth},
		BasicConstraintsValid: true,
	}

	der, err := x509.CreateCertificate(rand.Reader, &template, &template, priv.Public(), priv)
	if err != nil {
		return Identity{}, errors.Wrap(err, "credentials: create certificate")
	}

	keyBytes, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		return Identity{}, errors.Wrap(err, "credentials: marshal private key")
	}

	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: keyBytes})

	cert, err := tls.X509KeyPair(certPEM, keyPEM)
	if err != nil {
		return Identity{}, errors.Wrap(err, "credentials: build key pair")
	}

	return Identity{HostID: hostID, Certificate: cert, DER: der}, nil
}

// generateSigner returns a fresh Ed25519 private key, or an ECDSA-P256 one
// if Ed25519 generation itself returns an error.
func generateSigner(randReader io.Reader) (crypto.Signer, error) {
	if _, edPriv, err := ed25519.GenerateKey(randReader); err == nil {
		return edPriv, nil
	}
	ecPriv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, errors.Wrap(err, "ecdsa-p256 fallback")
	}
	return ecPriv, nil
}

// ParsePeerCertificate parses the DER-encoded certificate the peer sent over
// the control channel, the value that PeerTrust pins for the QUIC handshake.
func ParsePeerCertificate(der []byte) (*x509.Certificate, error) {
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		return nil, errors.Wrap(err, "credentials: parse peer certificate")
	}
	return cert, nil
}
