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

package stats

import (
	"os"

	"github.com/golang/snappy"
	"github.com/pkg/errors"
)

// TraceWriter is the --remote-debug/--debug trace-file sink: a plain
// io.WriteCloser that snappy-compresses everything written to it before
// it hits disk, the same wrapping the teacher's std.CompStream applies to
// a net.Conn, just pointed at a file instead of a live connection.
type TraceWriter struct {
	f *os.File
	w *snappy.Writer
}

// NewTraceWriter creates (or truncates) path and returns a writer that
// compresses the trace stream as it's written.
func NewTraceWriter(path string) (*TraceWriter, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, errors.Wrap(err, "stats: open trace file")
	}
	return &TraceWriter{f: f, w: snappy.NewBufferedWriter(f)}, nil
}

func (t *TraceWriter) Write(p []byte) (int, error) {
	n, err := t.w.Write(p)
	if err != nil {
		return n, errors.WithStack(err)
	}
	return n, nil
}

// Close flushes the snappy stream and closes the underlying file.
func (t *TraceWriter) Close() error {
	if err := t.w.Close(); err != nil {
		t.f.Close()
		return errors.Wrap(err, "stats: close trace writer")
	}
	return t.f.Close()
}
