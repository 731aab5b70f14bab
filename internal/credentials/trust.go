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
	"bytes"
	"crypto/tls"
	"crypto/x509"

	"github.com/pkg/errors"
)

// alpn is the QUIC application protocol both sides advertise; mismatched
// ALPN makes a qcp endpoint indistinguishable from any other QUIC service on
// the wire.
const alpn = "qcp/1"

// ErrPeerCertificateMismatch is returned from the TLS verification callback
// when the certificate offered at handshake time does not byte-for-byte
// match the certificate pinned from the control channel.
var ErrPeerCertificateMismatch = errors.New("credentials: peer certificate does not match pinned certificate")

// PeerTrust pins exactly one certificate, exchanged out-of-band over the SSH
// control channel, and rejects anything else (spec.md §4.3: "mutual TLS
// authenticated against the single certificate exchanged during the control
// handshake; no certificate authority, no hostname verification").
type PeerTrust struct {
	pinnedDER []byte
}

// NewPeerTrust pins peerDER, the DER-encoded certificate received from the
// other side's ClientMessage or ServerMessage.
func NewPeerTrust(peerDER []byte) PeerTrust {
	return PeerTrust{pinnedDER: peerDER}
}

func (t PeerTrust) verify(rawCerts [][]byte, _ [][]*x509.Certificate) error {
	if len(rawCerts) != 1 {
		return errors.Errorf("credentials: expected exactly one peer certificate, got %d", len(rawCerts))
	}
	if !bytes.Equal(rawCerts[0], t.pinnedDER) {
		return ErrPeerCertificateMismatch
	}
	return nil
}

// ClientConfig builds the tls.Config a QUIC client dial uses: it presents
// own, authenticates the peer against trust, and disables every check
// crypto/tls would otherwise perform using a system root pool or SNI, since
// there is neither here.
func ClientConfig(own tls.Certificate, trust PeerTrust) *tls.Config {
	return &tls.Config{
		Certificates:          []tls.Certificate{own},
		InsecureSkipVerify:    true,
		VerifyPeerCertificate: trust.verify,
		NextProtos:            []string{alpn},
		MinVersion:            tls.VersionTLS13,
	}
}

// ServerConfig builds the tls.Config a QUIC listener uses, requiring and
// pinning the client certificate the same way ClientConfig pins the server's.
func ServerConfig(own tls.Certificate, trust PeerTrust) *tls.Config {
	return &tls.Config{
		Certificates:          []tls.Certificate{own},
		ClientAuth:            tls.RequireAnyClientCert,
		InsecureSkipVerify:    true,
		VerifyPeerCertificate: trust.verify,
		NextProtos:            []string{alpn},
		MinVersion:            tls.VersionTLS13,
	}
}
