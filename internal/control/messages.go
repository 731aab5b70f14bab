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

package control

import (
	"bytes"
	"io"

	"github.com/pkg/errors"

	"github.com/qcp-project/qcp/internal/config"
	"github.com/qcp-project/qcp/internal/wire"
)

// Direction names which side reads the file and which side writes it,
// settled once per invocation since qcp never transfers more than one file
// (spec.md §1 Non-goals).
type Direction uint64

const (
	DirectionGet Direction = iota
	DirectionPut
)

// ClientMessage is the first framed message the client sends after the
// greeting exchange: its certificate, its transport preferences, which
// direction it wants, and a Variant slot for anything a newer compat level
// adds without breaking older peers.
type ClientMessage struct {
	CertificateDER []byte
	Preferences    config.TransportPreferences
	Direction      Direction
	RemotePath     string
	Extensions     wire.Variant
}

// Encode writes m's frame payload (without the length prefix; callers pass
// the result to wire.WriteFrame).
func (m ClientMessage) Encode() []byte {
	w := wire.NewWriter()
	w.ByteString(m.CertificateDER)
	m.Preferences.Encode(w)
	w.Discriminant(uint64(m.Direction))
	w.String(m.RemotePath)
	m.Extensions.Encode(w)
	return w.Bytes()
}

// WriteClientMessage frames and writes m to conn.
func WriteClientMessage(conn io.Writer, m ClientMessage) error {
	return wire.WriteFrame(conn, m.Encode())
}

// ReadClientMessage reads and decodes one length-prefixed ClientMessage.
func ReadClientMessage(conn io.Reader, maxPayload int) (ClientMessage, error) {
	payload, err := wire.ReadFrame(conn, maxPayload)
	if err != nil {
		return ClientMessage{}, err
	}
	r := wire.NewReader(bytes.NewReader(payload), maxPayload)
	var m ClientMessage
	if m.CertificateDER, err = r.ByteString(); err != nil {
		return m, err
	}
	if m.Preferences, err = config.DecodeTransportPreferences(r); err != nil {
		return m, err
	}
	d, err := r.Discriminant()
	if err != nil {
		return m, err
	}
	m.Direction = Direction(d)
	if m.RemotePath, err = r.String(); err != nil {
		return m, err
	}
	if m.Extensions, err = wire.DecodeVariant(r); err != nil {
		return m, err
	}
	return m, nil
}

// ServerMessage is the server's reply: its own certificate, the UDP port it
// bound for the QUIC endpoint, the Stage B negotiated transport tuple, and
// either Ok or a failure reason (spec.md §4.6 "server replies with its
// certificate, bound port, merged configuration, and an outcome").
type ServerMessage struct {
	CertificateDER []byte
	Port           uint16
	Negotiated     config.NegotiatedTransport
	Ok             bool
	FailureReason  string
	Extensions     wire.Variant
}

// Encode writes m's frame payload.
func (m ServerMessage) Encode() []byte {
	w := wire.NewWriter()
	w.ByteString(m.CertificateDER)
	w.Uint(uint64(m.Port))
	encodeNegotiated(w, m.Negotiated)
	w.Bool(m.Ok)
	w.String(m.FailureReason)
	m.Extensions.Encode(w)
	return w.Bytes()
}

// WriteServerMessage frames and writes m to conn.
func WriteServerMessage(conn io.Writer, m ServerMessage) error {
	return wire.WriteFrame(conn, m.Encode())
}

// ReadServerMessage reads and decodes one length-prefixed ServerMessage.
func ReadServerMessage(conn io.Reader, maxPayload int) (ServerMessage, error) {
	payload, err := wire.ReadFrame(conn, maxPayload)
	if err != nil {
		return ServerMessage{}, err
	}
	r := wire.NewReader(bytes.NewReader(payload), maxPayload)
	var m ServerMessage
	if m.CertificateDER, err = r.ByteString(); err != nil {
		return m, err
	}
	port, err := r.Uint()
	if err != nil {
		return m, err
	}
	if port > 65535 {
		return m, errors.New("control: server port out of range")
	}
	m.Port = uint16(port)
	if m.Negotiated, err = decodeNegotiated(r); err != nil {
		return m, err
	}
	if m.Ok, err = r.Bool(); err != nil {
		return m, err
	}
	if m.FailureReason, err = r.String(); err != nil {
		return m, err
	}
	if m.Extensions, err = wire.DecodeVariant(r); err != nil {
		return m, err
	}
	return m, nil
}

func encodeNegotiated(w *wire.Writer, n config.NegotiatedTransport) {
	w.Uint(n.RxBandwidth)
	w.Uint(n.TxBandwidth)
	w.Uint(uint64(n.RTTMillis))
	w.Uint(uint64(n.Congestion))
	w.Uint(n.InitialCwnd)
	w.Uint(n.UDPBuffer)
	w.Uint(uint64(n.InitialMTU))
	w.Uint(uint64(n.MinMTU))
	w.Uint(uint64(n.MaxMTU))
	w.Uint(uint64(n.PacketThreshold))
	w.Uint(uint64(n.TimeThreshold))
	w.Uint(uint64(n.TimeoutSeconds))
}

func decodeNegotiated(r *wire.Reader) (config.NegotiatedTransport, error) {
	var n config.NegotiatedTransport
	var err error
	if n.RxBandwidth, err = r.Uint(); err != nil {
		return n, err
	}
	if n.TxBandwidth, err = r.Uint(); err != nil {
		return n, err
	}
	v, err := r.Uint()
	if err != nil {
		return n, err
	}
	n.RTTMillis = uint32(v)
	c, err := r.Uint()
	if err != nil {
		return n, err
	}
	n.Congestion = config.Congestion(c)
	if n.InitialCwnd, err = r.Uint(); err != nil {
		return n, err
	}
	if n.UDPBuffer, err = r.Uint(); err != nil {
		return n, err
	}
	if v, err = r.Uint(); err != nil {
		return n, err
	}
	n.InitialMTU = uint32(v)
	if v, err = r.Uint(); err != nil {
		return n, err
	}
	n.MinMTU = uint32(v)
	if v, err = r.Uint(); err != nil {
		return n, err
	}
	n.MaxMTU = uint32(v)
	if v, err = r.Uint(); err != nil {
		return n, err
	}
	n.PacketThreshold = uint32(v)
	if v, err = r.Uint(); err != nil {
		return n, err
	}
	n.TimeThreshold = uint32(v)
	if v, err = r.Uint(); err != nil {
		return n, err
	}
	n.TimeoutSeconds = uint32(v)
	return n, nil
}
