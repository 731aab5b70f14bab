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
	"bytes"
	"io"
	"testing"
)

type rwPair struct {
	io.Reader
	io.Writer
}

func TestProgressStreamPassesBytesThrough(t *testing.T) {
	var out bytes.Buffer
	pair := rwPair{Reader: bytes.NewReader([]byte("hello world")), Writer: &out}
	p := newProgressStream(pair, 11, true)

	buf := make([]byte, 5)
	n, err := p.Read(buf)
	if err != nil || n != 5 {
		t.Fatalf("read: n=%d err=%v", n, err)
	}
	if _, err := p.Write([]byte("abc")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if out.String() != "abc" {
		t.Fatalf("got %q", out.String())
	}
	if p.sent != 8 {
		t.Fatalf("expected 8 bytes tracked, got %d", p.sent)
	}
}

func TestProgressStreamQuietSkipsRendering(t *testing.T) {
	pair := rwPair{Reader: bytes.NewReader([]byte("x")), Writer: &bytes.Buffer{}}
	p := newProgressStream(pair, 1, true)
	buf := make([]byte, 1)
	if _, err := p.Read(buf); err != nil {
		t.Fatalf("read: %v", err)
	}
	if p.sent != 1 {
		t.Fatalf("expected sent=1, got %d", p.sent)
	}
}
