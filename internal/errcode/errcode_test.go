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

package errcode

import (
	"errors"
	"testing"
)

func TestWrapAndKindOfRoundTrip(t *testing.T) {
	base := errors.New("connection refused")
	wrapped := Wrap(KindSSH, base)
	if KindOf(wrapped) != KindSSH {
		t.Fatalf("got %v", KindOf(wrapped))
	}
	if !errors.Is(wrapped, wrapped) {
		t.Fatal("expected errors.Is self-match")
	}
}

func TestWrapNilIsNil(t *testing.T) {
	if Wrap(KindIO, nil) != nil {
		t.Fatal("expected nil")
	}
}

func TestExitCodeKnownKinds(t *testing.T) {
	if ExitCode(KindNone) != 0 {
		t.Fatal("success should exit 0")
	}
	if ExitCode(KindCancelled) != 130 {
		t.Fatalf("got %d", ExitCode(KindCancelled))
	}
}

func TestKindOfUnwrappedErrorDefaultsToIO(t *testing.T) {
	if KindOf(errors.New("boom")) != KindIO {
		t.Fatal("expected default KindIO")
	}
}
