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
	"fmt"
	"io"
	"os"
	"time"
)

// progressTick is how often the transferred-byte count is allowed to
// repaint the terminal; the QUIC stream moves far more bytes per call
// than that's worth reporting on.
const progressTick = 200 * time.Millisecond

// progressStream wraps the session command stream so the orchestrator
// can print a bare "\rN/M bytes" line while the transfer runs, without
// pulling in a progress-bar dependency the rest of the stack doesn't
// otherwise need.
type progressStream struct {
	io.Reader
	io.Writer
	total    int64
	sent     int64
	last     time.Time
	quiet    bool
	finished bool
}

func newProgressStream(rw interface {
	io.Reader
	io.Writer
}, total int64, quiet bool) *progressStream {
	p := &progressStream{total: total, quiet: quiet}
	p.Reader = countingReader{p, rw}
	p.Writer = countingWriter{p, rw}
	return p
}

type countingReader struct {
	p  *progressStream
	rw interface {
		io.Reader
		io.Writer
	}
}

func (c countingReader) Read(b []byte) (int, error) {
	n, err := c.rw.Read(b)
	c.p.advance(int64(n))
	return n, err
}

type countingWriter struct {
	p  *progressStream
	rw interface {
		io.Reader
		io.Writer
	}
}

func (c countingWriter) Write(b []byte) (int, error) {
	n, err := c.rw.Write(b)
	c.p.advance(int64(n))
	return n, err
}

func (p *progressStream) advance(n int64) {
	if n <= 0 {
		return
	}
	p.sent += n
	if p.quiet {
		return
	}
	now := time.Now()
	done := p.total > 0 && p.sent >= p.total
	if p.last.IsZero() || now.Sub(p.last) >= progressTick || done {
		p.last = now
		if p.total > 0 {
			fmt.Fprintf(os.Stderr, "\r%d/%d bytes", p.sent, p.total)
		} else {
			fmt.Fprintf(os.Stderr, "\r%d bytes", p.sent)
		}
		if done && !p.finished {
			p.finished = true
			fmt.Fprintln(os.Stderr)
		}
	}
}
