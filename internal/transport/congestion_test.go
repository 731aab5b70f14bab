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

package transport

import (
	"testing"

	"github.com/qcp-project/qcp/internal/config"
)

func TestSelectCongestionKnownNames(t *testing.T) {
	cases := map[config.Congestion]string{
		config.CongestionCubic:   "cubic",
		config.CongestionNewReno: "newreno",
		config.CongestionBBR:     "bbr",
	}
	for in, want := range cases {
		if got := SelectCongestion(in); got != want {
			t.Fatalf("%v: want %s got %s", in, want, got)
		}
	}
}

func TestSelectCongestionFallsBackToCubic(t *testing.T) {
	if got := SelectCongestion(config.CongestionUnset); got != "cubic" {
		t.Fatalf("want cubic fallback, got %s", got)
	}
}
