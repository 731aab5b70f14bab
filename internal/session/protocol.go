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
	"bytes"
	"io"
	"time"

	"github.com/qcp-project/qcp/internal/compat"
	"github.com/qcp-project/qcp/internal/control"
	"github.com/qcp-project/qcp/internal/wire"
)

// Command is the single message a session sends on its command stream:
// it restates the direction already settled during the control handshake
// so the receiving side doesn't have to remember which way round the
// connection it accepted was going, and carries the path relative to
// whatever side opens the local file.
type Command struct {
	Direction control.Direction
	Path      string
}

// Encode writes c's frame payload.
func (c Command) Encode() []byte {
	w := wire.NewWriter()
	w.Discriminant(uint64(c.Direction))
	w.String(c.Path)
	return w.Bytes()
}

// WriteCommand frames and writes c to the command stream.
func WriteCommand(w io.Writer, c Command) error {
	return wire.WriteFrame(w, c.Encode())
}

// ReadCommand reads and decodes one framed Command.
func ReadCommand(r io.Reader, maxPayload int) (Command, error) {
	payload, err := wire.ReadFrame(r, maxPayload)
	if err != nil {
		return Command{}, err
	}
	rd := wire.NewReader(bytes.NewReader(payload), maxPayload)
	var c Command
	d, err := rd.Discriminant()
	if err != nil {
		return c, err
	}
	c.Direction = control.Direction(d)
	if c.Path, err = rd.String(); err != nil {
		return c, err
	}
	return c, nil
}

// Response answers a Command before either side streams a single byte of
// file content, the preflight step spec.md §6 requires: the receiver
// always learns the outcome, and on StatusOk the size (and, at
// compat.Level2, mtime/mode) the sender is committing to, before bytes
// start moving.
type Response struct {
	Status  Status
	Size    uint64
	HasMeta bool
	ModTime time.Time
	Mode    uint32
	Message string
}

// Encode writes r's frame payload. includeMeta gates the mtime/mode
// fields behind the session's negotiated compat.Level (spec.md §9): a
// Level1 peer never sees the extra fields, so it never has to skip them.
func (r Response) Encode(includeMeta bool) []byte {
	w := wire.NewWriter()
	w.Discriminant(uint64(r.Status))
	w.Uint(r.Size)
	hasMeta := includeMeta && r.HasMeta
	w.Bool(hasMeta)
	if hasMeta {
		w.Int(r.ModTime.Unix())
		w.Uint(uint64(r.Mode))
	}
	w.String(r.Message)
	return w.Bytes()
}

// WriteResponse frames and writes r to the command stream.
func WriteResponse(w io.Writer, r Response, level compat.Level) error {
	return wire.WriteFrame(w, r.Encode(compat.FeatureTable(level).FileMetadata))
}

// ReadResponse reads and decodes one framed Response.
func ReadResponse(rdr io.Reader, maxPayload int) (Response, error) {
	payload, err := wire.ReadFrame(rdr, maxPayload)
	if err != nil {
		return Response{}, err
	}
	r := wire.NewReader(bytes.NewReader(payload), maxPayload)
	var resp Response
	d, err := r.Discriminant()
	if err != nil {
		return resp, err
	}
	resp.Status = Status(d)
	if resp.Size, err = r.Uint(); err != nil {
		return resp, err
	}
	if resp.HasMeta, err = r.Bool(); err != nil {
		return resp, err
	}
	if resp.HasMeta {
		sec, err := r.Int()
		if err != nil {
			return resp, err
		}
		resp.ModTime = time.Unix(sec, 0)
		mode, err := r.Uint()
		if err != nil {
			return resp, err
		}
		resp.Mode = uint32(mode)
	}
	if resp.Message, err = r.String(); err != nil {
		return resp, err
	}
	return resp, nil
}
