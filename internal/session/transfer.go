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

package session

import (
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/qcp-project/qcp/internal/compat"
	"github.com/qcp-project/qcp/internal/control"
	"github.com/qcp-project/qcp/internal/wire"
)

// Report summarizes one completed transfer for the closedown telemetry
// the control channel sends afterwards.
type Report struct {
	BytesTransferred int64
}

// Stream is the minimal surface transfer.go needs from the QUIC command
// stream: a single bidirectional byte pipe. *quic.Stream satisfies it
// without this package importing quic-go directly.
type Stream interface {
	io.Reader
	io.Writer
}

// RunClient drives the requesting side of a session: it sends the
// Command the control handshake already agreed on, waits for the peer's
// preflight Response, and then either sends or receives the file body
// depending on direction.
func RunClient(stream Stream, level compat.Level, dir control.Direction, localPath, remotePath string) (Report, error) {
	if err := WriteCommand(stream, Command{Direction: dir, Path: remotePath}); err != nil {
		return Report{}, errors.Wrap(err, "session: send command")
	}
	resp, err := ReadResponse(stream, wire.DefaultMaxFramePayload)
	if err != nil {
		return Report{}, errors.Wrap(err, "session: read preflight response")
	}

	switch dir {
	case control.DirectionGet:
		if resp.Status != StatusOk {
			return Report{}, &StatusError{Status: resp.Status, Path: remotePath}
		}
		return receiveFile(stream, localPath, resp)
	case control.DirectionPut:
		localFile, meta, err := OpenForRead(localPath)
		if err != nil {
			return Report{}, err
		}
		defer localFile.Close()
		if resp.Status != StatusOk {
			return Report{}, &StatusError{Status: resp.Status, Path: remotePath}
		}
		return sendFile(stream, localFile, meta.Size)
	default:
		return Report{}, errors.Errorf("session: unknown direction %d", dir)
	}
}

// RunServer drives the accepting side: it reads the Command the client
// opened the stream with, runs preflight against its own filesystem, and
// replies before moving any body bytes — the same ordering RunClient
// expects.
func RunServer(stream Stream, level compat.Level, path string) (Report, error) {
	cmd, err := ReadCommand(stream, wire.DefaultMaxFramePayload)
	if err != nil {
		return Report{}, errors.Wrap(err, "session: read command")
	}

	switch cmd.Direction {
	case control.DirectionGet:
		// Client wants to download; this side reads path and streams it.
		f, meta, err := OpenForRead(path)
		if err != nil {
			if werr := WriteResponse(stream, errorResponse(err), level); werr != nil {
				return Report{}, werr
			}
			return Report{}, err
		}
		defer f.Close()
		resp := Response{Status: StatusOk, Size: meta.Size, HasMeta: true, ModTime: meta.ModTime, Mode: uint32(meta.Mode.Perm())}
		if err := WriteResponse(stream, resp, level); err != nil {
			return Report{}, errors.Wrap(err, "session: write preflight response")
		}
		return sendFile(stream, f, meta.Size)
	case control.DirectionPut:
		// Client wants to upload; this side stages path for writing.
		staged, err := CreateStaged(path)
		if err != nil {
			if werr := WriteResponse(stream, errorResponse(err), level); werr != nil {
				return Report{}, werr
			}
			return Report{}, err
		}
		if err := WriteResponse(stream, Response{Status: StatusOk}, level); err != nil {
			staged.Abort()
			return Report{}, errors.Wrap(err, "session: write preflight response")
		}
		n, err := countingCopy(staged, stream)
		if err != nil {
			staged.Abort()
			return Report{}, errors.Wrap(err, "session: receive file")
		}
		if err := staged.Commit(0o644); err != nil {
			return Report{}, err
		}
		return Report{BytesTransferred: n}, nil
	default:
		return Report{}, errors.Errorf("session: unknown direction %d", cmd.Direction)
	}
}

func errorResponse(err error) Response {
	return Response{Status: AsStatus(err), Message: err.Error()}
}

func sendFile(stream Stream, f *os.File, size uint64) (Report, error) {
	n, err := countingCopy(stream, f)
	if err != nil {
		return Report{BytesTransferred: n}, errors.Wrap(err, "session: send file")
	}
	if uint64(n) != size {
		return Report{BytesTransferred: n}, errors.Errorf("session: sent %d bytes, file was %d at preflight", n, size)
	}
	return Report{BytesTransferred: n}, nil
}

func receiveFile(stream Stream, localPath string, resp Response) (Report, error) {
	staged, err := CreateStaged(localPath)
	if err != nil {
		return Report{}, err
	}
	n, err := countingCopy(staged, io.LimitReader(stream, int64(resp.Size)))
	if err != nil {
		staged.Abort()
		return Report{BytesTransferred: n}, errors.Wrap(err, "session: receive file")
	}
	if uint64(n) != resp.Size {
		staged.Abort()
		return Report{BytesTransferred: n}, errors.Errorf("session: received %d bytes, peer promised %d", n, resp.Size)
	}
	mode := os.FileMode(0o644)
	if resp.HasMeta && resp.Mode != 0 {
		mode = os.FileMode(resp.Mode)
	}
	if err := staged.Commit(mode); err != nil {
		return Report{BytesTransferred: n}, err
	}
	return Report{BytesTransferred: n}, nil
}
