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

package server

import (
	"path/filepath"
	"testing"

	"github.com/qcp-project/qcp/internal/config"
)

func TestOpenTraceNoopWithoutRemoteDebug(t *testing.T) {
	tw, trace := openTrace(Options{
		Resolved:  config.Resolved{},
		TraceFile: filepath.Join(t.TempDir(), "trace.snappy"),
	})
	if tw != nil {
		t.Fatalf("expected no trace writer when RemoteDebug is unset")
	}
	trace("unused %d", 1) // must not panic
}

func TestOpenTraceNoopWithoutPath(t *testing.T) {
	tw, trace := openTrace(Options{
		Resolved: config.Resolved{RemoteDebug: config.Field[bool]{Value: true, Set: true}},
	})
	if tw != nil {
		t.Fatalf("expected no trace writer when TraceFile is empty")
	}
	trace("unused %d", 1)
}

func TestOpenTraceWritesWhenEnabled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.snappy")
	tw, trace := openTrace(Options{
		Resolved:  config.Resolved{RemoteDebug: config.Field[bool]{Value: true, Set: true}},
		TraceFile: path,
	})
	if tw == nil {
		t.Fatalf("expected a trace writer")
	}
	defer tw.Close()
	trace("hello %d", 42)
}
