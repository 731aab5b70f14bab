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

// Package server implements qcp's remote half: the process ssh starts on
// the far end, speaking the control handshake over its own stdio and
// then serving exactly one GET or PUT over a QUIC connection it binds
// itself (spec.md §5).
package server

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/pkg/errors"

	"github.com/qcp-project/qcp/internal/config"
	"github.com/qcp-project/qcp/internal/control"
	"github.com/qcp-project/qcp/internal/credentials"
	"github.com/qcp-project/qcp/internal/errcode"
	"github.com/qcp-project/qcp/internal/session"
	"github.com/qcp-project/qcp/internal/stats"
	"github.com/qcp-project/qcp/internal/transport"
)

// Options carries the Stage A configuration already resolved for this
// invocation (system config file plus whatever Host block the
// SSH_CONNECTION client address matched) and the local path for the
// --remote-debug trace sink, which — like RemoteDebug itself — is a
// server-side setting resolved from the server's own config, not
// something the client's control message carries (spec.md §4.7: each
// side resolves its own configuration independently).
type Options struct {
	Resolved  config.Resolved
	TraceFile string
}

func openTrace(opts Options) (*stats.TraceWriter, func(format string, args ...any)) {
	if !opts.Resolved.RemoteDebug.Value || opts.TraceFile == "" {
		return nil, func(string, ...any) {}
	}
	tw, err := stats.NewTraceWriter(opts.TraceFile)
	if err != nil {
		log.Printf("server: could not open remote-debug trace file %s: %v", opts.TraceFile, err)
		return nil, func(string, ...any) {}
	}
	return tw, func(format string, args ...any) {
		fmt.Fprintf(tw, format+"\n", args...)
	}
}

// Run drives one server-side invocation to completion: handshake,
// preflight, transfer, closedown. It never returns an error for a
// request the protocol itself rejected (StatusError et al.) — those are
// reported to the peer as a failed ServerMessage/ClosedownReport and Run
// returns nil, since from the process's point of view the control
// channel did its job correctly.
func Run(ctx context.Context, rw io.ReadWriter, opts Options) error {
	tw, trace := openTrace(opts)
	if tw != nil {
		defer tw.Close()
	}

	ctrl, err := control.NewServer(rw)
	if err != nil {
		return errcode.Wrap(errcode.KindControlProtocol, err)
	}

	clientMsg, err := ctrl.ReadClientMessage()
	if err != nil {
		return errcode.Wrap(errcode.KindControlProtocol, err)
	}
	trace("control: direction=%v remote-path=%q", clientMsg.Direction, clientMsg.RemotePath)

	identity, err := credentials.Generate("qcp-server")
	if err != nil {
		return errcode.Wrap(errcode.KindTLS, err)
	}

	negotiated := config.Negotiate(clientMsg.Preferences, opts.Resolved.Preferences(), opts.Resolved.Timeout.Value)
	if err := negotiated.Validate(); err != nil {
		trace("negotiate: rejected: %v", err)
		return ctrl.Reply(control.ServerMessage{Ok: false, FailureReason: err.Error()})
	}

	trust := credentials.NewPeerTrust(clientMsg.CertificateDER)
	tlsConf := credentials.ServerConfig(identity.Certificate, trust)

	ln, port, err := transport.BuildServerEndpoint(tlsConf, negotiated, opts.Resolved.AddressFamily.Value, opts.Resolved.RemotePort.Value)
	if err != nil {
		replyErr := ctrl.Reply(control.ServerMessage{Ok: false, FailureReason: err.Error()})
		if replyErr != nil {
			return errcode.Wrap(errcode.KindQUIC, replyErr)
		}
		return errcode.Wrap(errcode.KindQUIC, err)
	}
	defer ln.Close()

	if err := ctrl.Reply(control.ServerMessage{
		CertificateDER: identity.DER,
		Port:           uint16(port),
		Negotiated:     negotiated,
		Ok:             true,
	}); err != nil {
		return errcode.Wrap(errcode.KindControlProtocol, err)
	}
	log.Println("server: bound quic endpoint on port", port)
	trace("quic: bound port=%d congestion=%v", port, negotiated.Congestion)

	start := time.Now()
	sess, err := transport.AcceptSession(ctx, ln)
	if err != nil {
		return errcode.Wrap(errcode.KindQUIC, err)
	}
	defer sess.Close(0, "transfer complete")

	stream, err := sess.AcceptCommandStream(ctx)
	if err != nil {
		return errcode.Wrap(errcode.KindQUIC, err)
	}

	transferReport, transferErr := session.RunServer(stream, ctrl.CompatLevel(), clientMsg.RemotePath)
	report := control.ClosedownReport{
		BytesTransferred: uint64(transferReport.BytesTransferred),
		ElapsedMillis:    uint64(time.Since(start).Milliseconds()),
		Succeeded:        transferErr == nil,
	}
	if transferErr != nil {
		report.Detail = transferErr.Error()
	}
	trace("transfer: bytes=%d elapsed_ms=%d succeeded=%v", report.BytesTransferred, report.ElapsedMillis, report.Succeeded)
	if err := ctrl.SendClosedown(report); err != nil {
		return errcode.Wrap(errcode.KindControlProtocol, err)
	}
	if transferErr != nil {
		if _, rejected := transferErr.(*session.StatusError); rejected {
			return nil
		}
		return errcode.Wrap(errcode.KindSessionStatus, errors.Wrap(transferErr, "server: transfer"))
	}
	return nil
}
