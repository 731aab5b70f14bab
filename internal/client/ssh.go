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

// Package client drives qcp's client-side half of an invocation: it
// spawns the SSH control channel, runs the control handshake over its
// stdio pipe, dials the QUIC endpoint the server advertises, and runs
// the single GET or PUT the user asked for.
package client

import (
	"io"
	"os/exec"

	"github.com/qcp-project/qcp/internal/config"
)

// buildSSHArgs assembles the argv qcp hands to the ssh binary: the
// per-invocation config file and remote user come from Stage A
// resolution, and the trailing positional arguments are the target host
// followed by the command that starts the remote qcp process in server
// mode (the same role "-s <subsystem>" plays for sftp, offered here as
// an option since not every qcp install will have registered one).
func buildSSHArgs(host string, resolved config.Resolved, rawOptions []string) []string {
	var args []string
	if resolved.SshConfig.Set && resolved.SshConfig.Value != "" {
		args = append(args, "-F", resolved.SshConfig.Value)
	}
	if resolved.RemoteUser.Set && resolved.RemoteUser.Value != "" {
		args = append(args, "-l", resolved.RemoteUser.Value)
	}
	// The control channel only ever uses stdio, never a pty or shell
	// job control, so batch mode keeps ssh from waiting on a prompt it
	// will never get if key auth fails.
	args = append(args, "-o", "BatchMode=yes")
	for _, opt := range rawOptions {
		args = append(args, "-o", opt)
	}

	if resolved.SshSubsystem.Set && resolved.SshSubsystem.Value != "" {
		args = append(args, host, "-s", resolved.SshSubsystem.Value)
		return args
	}
	args = append(args, host, "qcp", "--server")
	return args
}

// stdioPipe turns an exec.Cmd's stdin/stdout pipes into the single
// io.ReadWriter the control package's handshake expects, the way the
// teacher wraps two net.Conn halves into one multiplexed stream
// elsewhere in its own client.
type stdioPipe struct {
	r io.ReadCloser
	w io.WriteCloser
}

func (p stdioPipe) Read(b []byte) (int, error)  { return p.r.Read(b) }
func (p stdioPipe) Write(b []byte) (int, error) { return p.w.Write(b) }

func (p stdioPipe) Close() error {
	werr := p.w.Close()
	rerr := p.r.Close()
	if werr != nil {
		return werr
	}
	return rerr
}

// startSSH launches ssh with the control channel wired to its stdio.
func startSSH(sshPath, host string, resolved config.Resolved, rawOptions []string) (*exec.Cmd, stdioPipe, error) {
	cmd := exec.Command(sshPath, buildSSHArgs(host, resolved, rawOptions)...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, stdioPipe{}, err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, stdioPipe{}, err
	}
	return cmd, stdioPipe{r: stdout, w: stdin}, nil
}
