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
	"crypto/rand"
	"io"

	"github.com/pkg/errors"

	"github.com/qcp-project/qcp/internal/compat"
	"github.com/qcp-project/qcp/internal/wire"
)

// state names where a control session sits in the handshake, mirroring
// spec.md §4's own stage list. It exists purely for assertions inside this
// package; callers only ever see the higher-level Client/Server wrapper.
type state int

const (
	stateGreeting state = iota
	stateExchanged
	stateRunning
	stateClosing
	stateDone
	stateFailed
)

// Client drives the client side of the control handshake over the SSH
// stdio pipe (spec.md §4.2-§4.6).
type Client struct {
	rw          io.ReadWriter
	state       state
	hostID      [16]byte
	local       Greeting
	peer        Greeting
	compatLevel compat.Level
}

// NewClient generates a random host ID and sends this side's greeting.
func NewClient(rw io.ReadWriter) (*Client, error) {
	c := &Client{rw: rw, state: stateGreeting}
	if _, err := rand.Read(c.hostID[:]); err != nil {
		return nil, errors.Wrap(err, "control: generate host id")
	}
	c.local = NewGreeting(c.hostID)
	if err := c.local.Write(rw); err != nil {
		return nil, err
	}
	peer, err := ReadGreeting(rw)
	if err != nil {
		c.state = stateFailed
		return nil, err
	}
	c.peer = peer
	c.compatLevel = effectiveLevel(c.local.CompatLevel, peer.CompatLevel)
	c.state = stateExchanged
	return c, nil
}

// CompatLevel returns the level both sides agreed on.
func (c *Client) CompatLevel() compat.Level { return c.compatLevel }

// Exchange sends the client message and waits for the server's reply.
func (c *Client) Exchange(msg ClientMessage) (ServerMessage, error) {
	if c.state != stateExchanged {
		return ServerMessage{}, errors.New("control: Exchange called out of order")
	}
	if err := WriteClientMessage(c.rw, msg); err != nil {
		c.state = stateFailed
		return ServerMessage{}, err
	}
	reply, err := ReadServerMessage(c.rw, wire.DefaultMaxFramePayload)
	if err != nil {
		c.state = stateFailed
		return ServerMessage{}, err
	}
	if !reply.Ok {
		c.state = stateFailed
		return reply, errors.Errorf("control: server rejected session: %s", reply.FailureReason)
	}
	c.state = stateRunning
	return reply, nil
}

// AwaitClosedown reads the server's closedown report once the session
// protocol has completed.
func (c *Client) AwaitClosedown() (ClosedownReport, error) {
	if c.state != stateRunning {
		return ClosedownReport{}, errors.New("control: AwaitClosedown called out of order")
	}
	c.state = stateClosing
	report, err := ReadClosedownReport(c.rw, wire.DefaultMaxFramePayload)
	if err != nil {
		c.state = stateFailed
		return report, err
	}
	c.state = stateDone
	return report, nil
}

// Server drives the server side of the control handshake (spec.md §4.2-§4.6).
type Server struct {
	rw          io.ReadWriter
	state       state
	hostID      [16]byte
	local       Greeting
	peer        Greeting
	compatLevel compat.Level
}

// NewServer reads the client's greeting and replies with its own.
func NewServer(rw io.ReadWriter) (*Server, error) {
	s := &Server{rw: rw, state: stateGreeting}
	peer, err := ReadGreeting(rw)
	if err != nil {
		return nil, err
	}
	s.peer = peer
	if _, err := rand.Read(s.hostID[:]); err != nil {
		return nil, errors.Wrap(err, "control: generate host id")
	}
	s.local = NewGreeting(s.hostID)
	if err := s.local.Write(rw); err != nil {
		s.state = stateFailed
		return nil, err
	}
	s.compatLevel = effectiveLevel(s.local.CompatLevel, peer.CompatLevel)
	s.state = stateExchanged
	return s, nil
}

// CompatLevel returns the level both sides agreed on.
func (s *Server) CompatLevel() compat.Level { return s.compatLevel }

// ReadClientMessage waits for the client's request.
func (s *Server) ReadClientMessage() (ClientMessage, error) {
	if s.state != stateExchanged {
		return ClientMessage{}, errors.New("control: ReadClientMessage called out of order")
	}
	msg, err := ReadClientMessage(s.rw, wire.DefaultMaxFramePayload)
	if err != nil {
		s.state = stateFailed
		return msg, err
	}
	return msg, nil
}

// Reply sends the server's response. Ok == false transitions to stateFailed
// since there will be no session protocol to run afterward.
func (s *Server) Reply(reply ServerMessage) error {
	if err := WriteServerMessage(s.rw, reply); err != nil {
		s.state = stateFailed
		return err
	}
	if !reply.Ok {
		s.state = stateFailed
		return nil
	}
	s.state = stateRunning
	return nil
}

// SendClosedown sends the closedown report once the session protocol has
// run to completion (or failed partway through — Succeeded records which).
func (s *Server) SendClosedown(report ClosedownReport) error {
	if s.state != stateRunning {
		return errors.New("control: SendClosedown called out of order")
	}
	s.state = stateClosing
	if err := WriteClosedownReport(s.rw, report); err != nil {
		s.state = stateFailed
		return err
	}
	s.state = stateDone
	return nil
}
