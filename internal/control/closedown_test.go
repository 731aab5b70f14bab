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
	"bytes"
	"testing"

	"github.com/qcp-project/qcp/internal/wire"
)

func TestClosedownReportRoundTrip(t *testing.T) {
	report := ClosedownReport{
		BytesTransferred: 123456789,
		ElapsedMillis:    4200,
		FinalRTTMillis:   35,
		CongestionEvents: 2,
		Succeeded:        true,
		Detail:           "ok",
	}
	var buf bytes.Buffer
	if err := WriteClosedownReport(&buf, report); err != nil {
		t.Fatal(err)
	}
	got, err := ReadClosedownReport(&buf, wire.DefaultMaxFramePayload)
	if err != nil {
		t.Fatal(err)
	}
	if got != report {
		t.Fatalf("got %#v, want %#v", got, report)
	}
}
