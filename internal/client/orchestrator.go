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

package client

import (
	"context"
	"log"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/pkg/errors"

	"github.com/qcp-project/qcp/internal/config"
	"github.com/qcp-project/qcp/internal/control"
	"github.com/qcp-project/qcp/internal/credentials"
	"github.com/qcp-project/qcp/internal/errcode"
	"github.com/qcp-project/qcp/internal/session"
	"github.com/qcp-project/qcp/internal/transport"
)

// Options is everything a client invocation needs once Stage A
// resolution has already produced resolved (spec.md §4.7).
type Options struct {
	Host       string
	RemotePath string
	LocalPath  string
	Direction  control.Direction
	Resolved   config.Resolved
	SSHOptions []string // raw -o values from repeated -S flags
}

// Result is what main reports to the user and, if --statistics was
// given, hands to the stats package.
type Result struct {
	Closedown control.ClosedownReport
	Transfer  session.Report
}

// Run drives one full client-side invocation: spawn ssh, handshake,
// dial QUIC, transfer, collect the closedown report, reap ssh.
func Run(ctx context.Context, opts Options) (Result, error) {
	logln := quietLogger(opts.Resolved.Quiet.Value)

	// SIGINT closes the QUIC connection with an application error code
	// and then the control channel; the server observes that as EOF on
	// its stdin and shuts itself down.
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	sshPath := "ssh"
	if opts.Resolved.Ssh.Set && opts.Resolved.Ssh.Value != "" {
		sshPath = opts.Resolved.Ssh.Value
	}

	cmd, pipe, err := startSSH(sshPath, opts.Host, opts.Resolved, opts.SSHOptions)
	if err != nil {
		return Result{}, errcode.Wrap(errcode.KindSSH, errors.Wrap(err, "client: create ssh pipes"))
	}
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		return Result{}, errcode.Wrap(errcode.KindSSH, errors.Wrap(err, "client: start ssh"))
	}
	logln("control channel: ssh started, pid", cmd.Process.Pid)

	result, runErr := runOverControlChannel(ctx, pipe, opts, logln)
	pipe.Close()

	waitErr := cmd.Wait()
	if runErr != nil {
		return result, runErr
	}
	if waitErr != nil {
		return result, errcode.Wrap(errcode.KindSSH, errors.Wrap(waitErr, "client: ssh exited with error"))
	}
	return result, nil
}

func runOverControlChannel(ctx context.Context, pipe stdioPipe, opts Options, logln func(...any)) (Result, error) {
	ctrl, err := control.NewClient(pipe)
	if err != nil {
		return Result{}, errcode.Wrap(errcode.KindControlProtocol, err)
	}
	logln("control channel: handshake complete, compat level", ctrl.CompatLevel())

	identity, err := credentials.Generate(opts.Host)
	if err != nil {
		return Result{}, errcode.Wrap(errcode.KindTLS, err)
	}

	reply, err := ctrl.Exchange(control.ClientMessage{
		CertificateDER: identity.DER,
		Preferences:    opts.Resolved.Preferences(),
		Direction:      opts.Direction,
		RemotePath:     opts.RemotePath,
	})
	if err != nil {
		return Result{}, errcode.Wrap(errcode.KindRemoteFailure, err)
	}
	logln("control channel: server bound port", reply.Port)

	if opts.Resolved.DryRun.Value {
		// spec.md §4.7: --dry-run performs the handshake and negotiation
		// but never opens a UDP socket for the data transport.
		logln("dry run: handshake and negotiation complete, skipping transfer")
		return Result{}, nil
	}

	trust := credentials.NewPeerTrust(reply.CertificateDER)
	tlsConf := credentials.ClientConfig(identity.Certificate, trust)

	addr := net.JoinHostPort(targetHost(opts.Host), strconv.Itoa(int(reply.Port)))
	sess, err := transport.BuildClientEndpoint(ctx, addr, tlsConf, reply.Negotiated,
		opts.Resolved.AddressFamily.Value, opts.Resolved.Port.Value)
	if err != nil {
		return Result{}, errcode.Wrap(errcode.KindQUIC, err)
	}
	defer sess.Close(0, "transfer complete")

	stream, err := sess.OpenCommandStream(ctx)
	if err != nil {
		return Result{}, errcode.Wrap(errcode.KindQUIC, err)
	}

	// If SIGINT/SIGTERM land while the transfer is blocked on stream I/O,
	// tear the QUIC connection down with an application error code so the
	// blocked Read/Write unblocks instead of hanging until the OS reaps us.
	cancelled := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			sess.Close(1, "cancelled")
		case <-cancelled:
		}
	}()

	total := int64(0)
	if opts.Direction == control.DirectionPut {
		if fi, statErr := os.Stat(opts.LocalPath); statErr == nil {
			total = fi.Size()
		}
	}
	progressed := newProgressStream(stream, total, opts.Resolved.Quiet.Value)

	transferReport, err := session.RunClient(progressed, ctrl.CompatLevel(), opts.Direction, opts.LocalPath, opts.RemotePath)
	close(cancelled)
	if err != nil {
		if ctx.Err() != nil {
			return Result{}, errcode.Wrap(errcode.KindCancelled, ctx.Err())
		}
		return Result{}, errcode.Wrap(errcode.KindSessionStatus, err)
	}
	logln("session: transferred", transferReport.BytesTransferred, "bytes")

	closedown, err := ctrl.AwaitClosedown()
	if err != nil {
		return Result{Transfer: transferReport}, errcode.Wrap(errcode.KindControlProtocol, err)
	}
	return Result{Closedown: closedown, Transfer: transferReport}, nil
}

// targetHost strips a possible "user@" prefix so it can be used as the
// QUIC dial target; ssh itself handles the full "user@host" form on its
// own argv, but net.JoinHostPort/ResolveUDPAddr should only ever see the
// bare host.
func targetHost(host string) string {
	for i := 0; i < len(host); i++ {
		if host[i] == '@' {
			return host[i+1:]
		}
	}
	return host
}

func quietLogger(quiet bool) func(...any) {
	if quiet {
		return func(...any) {}
	}
	return func(v ...any) {
		log.Println(append([]any{time.Now().Format("15:04:05")}, v...)...)
	}
}
