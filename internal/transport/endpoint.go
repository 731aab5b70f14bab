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

package transport

import (
	"context"
	"crypto/tls"
	"log"
	"net"
	"time"

	"github.com/pkg/errors"
	"github.com/quic-go/quic-go"

	"github.com/qcp-project/qcp/internal/config"
)

// buildQUICConfig turns a negotiated transport tuple into a quic.Config,
// the build-then-verify shape the teacher uses for its own multiplexer
// config (std.BuildSmuxConfig + smux.VerifyConfig), adapted here since
// quic-go validates its own Config internally and has no exported verifier
// to call a second time.
func buildQUICConfig(n config.NegotiatedTransport) (*quic.Config, error) {
	if err := n.Validate(); err != nil {
		return nil, errors.Wrap(err, "transport: invalid negotiated transport")
	}
	cfg := &quic.Config{
		MaxIncomingStreams:    16,
		MaxIncomingUniStreams: 4,
		KeepAlivePeriod:       time.Duration(n.RTTMillis) * time.Millisecond * 3,
		MaxIdleTimeout:        time.Duration(n.TimeoutSeconds) * time.Second,
		InitialPacketSize:     uint16(n.InitialMTU),
	}
	return cfg, nil
}

// addressFamilyNetwork maps an AddressFamily to the net package's UDP
// network name.
func addressFamilyNetwork(family config.AddressFamily) string {
	switch family {
	case config.AddressFamilyV4:
		return "udp4"
	case config.AddressFamilyV6:
		return "udp6"
	default:
		return "udp"
	}
}

// bindUDP opens the UDP socket an endpoint listens on or dials from, within
// the port range the resolved configuration restricts it to (spec.md §4.7
// "--port"/"--remote-port"), then raises its socket buffers to fit the
// negotiated UDPBuffer size.
func bindUDP(family config.AddressFamily, ports config.PortRange, bufferBytes uint64) (*net.UDPConn, error) {
	network := addressFamilyNetwork(family)

	var conn *net.UDPConn
	var err error
	if ports.IsEphemeral() {
		conn, err = net.ListenUDP(network, &net.UDPAddr{Port: 0})
	} else {
		for port := ports.Min; port <= ports.Max; port++ {
			conn, err = net.ListenUDP(network, &net.UDPAddr{Port: int(port)})
			if err == nil {
				break
			}
			if port == ports.Max {
				break
			}
		}
	}
	if err != nil {
		return nil, errors.Wrap(err, "transport: bind udp socket")
	}

	if bufferBytes > 0 {
		if err := raiseSocketBuffers(conn, int(bufferBytes)); err != nil {
			log.Printf("transport: raise socket buffers: %v", err)
		}
	}
	return conn, nil
}

// Session wraps the one QUIC connection a qcp invocation ever opens, giving
// the control and session-protocol layers a narrow surface instead of the
// full quic.Conn API (spec.md §1 Non-goals: "more than one file/connection
// per invocation").
type Session struct {
	conn *quic.Conn
}

// OpenCommandStream opens the single bidirectional stream the session
// protocol runs GET/PUT over.
func (s *Session) OpenCommandStream(ctx context.Context) (*quic.Stream, error) {
	return s.conn.OpenStreamSync(ctx)
}

// AcceptCommandStream waits for the peer to open the session's command
// stream.
func (s *Session) AcceptCommandStream(ctx context.Context) (*quic.Stream, error) {
	return s.conn.AcceptStream(ctx)
}

// ConnectionState exposes the negotiated TLS parameters (cipher suite,
// ALPN) for diagnostics.
func (s *Session) ConnectionState() tls.ConnectionState {
	return s.conn.ConnectionState().TLS
}

// Close tears down the QUIC connection with an application error code.
func (s *Session) Close(code uint64, reason string) error {
	return s.conn.CloseWithError(quic.ApplicationErrorCode(code), reason)
}

// BuildServerEndpoint binds a UDP socket in the configured port range and
// starts a QUIC listener on it, returning the bound port so the control
// channel can report it back to the client (spec.md §4.6).
func BuildServerEndpoint(tlsConf *tls.Config, n config.NegotiatedTransport, family config.AddressFamily, ports config.PortRange) (*quic.Listener, int, error) {
	conn, err := bindUDP(family, ports, n.UDPBuffer)
	if err != nil {
		return nil, 0, err
	}
	qcfg, err := buildQUICConfig(n)
	if err != nil {
		conn.Close()
		return nil, 0, err
	}
	ln, err := quic.Listen(conn, tlsConf, qcfg)
	if err != nil {
		conn.Close()
		return nil, 0, errors.Wrap(err, "transport: listen")
	}
	return ln, conn.LocalAddr().(*net.UDPAddr).Port, nil
}

// AcceptSession blocks for the one inbound connection BuildServerEndpoint's
// listener will ever accept.
func AcceptSession(ctx context.Context, ln *quic.Listener) (*Session, error) {
	conn, err := ln.Accept(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "transport: accept")
	}
	return &Session{conn: conn}, nil
}

// BuildClientEndpoint binds a local UDP socket (in the client's configured
// port range, if any) and dials the server's address.
func BuildClientEndpoint(ctx context.Context, addr string, tlsConf *tls.Config, n config.NegotiatedTransport, family config.AddressFamily, ports config.PortRange) (*Session, error) {
	conn, err := bindUDP(family, ports, n.UDPBuffer)
	if err != nil {
		return nil, err
	}
	qcfg, err := buildQUICConfig(n)
	if err != nil {
		conn.Close()
		return nil, err
	}
	udpAddr, err := net.ResolveUDPAddr(addressFamilyNetwork(family), addr)
	if err != nil {
		conn.Close()
		return nil, errors.Wrapf(err, "transport: resolve %s", addr)
	}
	qconn, err := quic.Dial(ctx, conn, udpAddr, tlsConf, qcfg)
	if err != nil {
		conn.Close()
		return nil, errors.Wrapf(err, "transport: dial %s", addr)
	}
	return &Session{conn: qconn}, nil
}
