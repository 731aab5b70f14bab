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

// Package compat defines qcp's CompatibilityLevel and the table of
// features it gates. spec.md §9 asks for this matrix to be "a table
// driven by CompatibilityLevel constants, not hard-coded in the
// handshake logic" — that's what FeatureTable below is for.
package compat

// Level is a monotonically increasing protocol level. Both sides
// advertise the highest level they support; the session runs at
// min(local, peer).
type Level uint64

const (
	// Level1 is the baseline: wire codec, control handshake, X.509
	// mutual TLS, Cubic/NewReno congestion control, mtime/mode metadata
	// absent from SessionResponse.
	Level1 Level = 1
	// Level2 adds file metadata (mtime, permission bits) on Get/Put Ok
	// responses. FeatureTable also lists BBR under Level2, but congestion
	// negotiation does not check the level, so BBR is accepted at any level.
	Level2 Level = 2
)

// Current is the highest level this build advertises.
const Current = Level2

// Min returns the lower of two levels, i.e. the effective level the
// control handshake locks both sides to (spec.md §4.3 step 2).
func Min(a, b Level) Level {
	if a < b {
		return a
	}
	return b
}

// Features records which optional capabilities a given level unlocks.
// The session protocol consults FileMetadata when encoding a Response;
// BBRCongestion is recorded here but nothing reads it.
type Features struct {
	FileMetadata  bool // mtime/permission bits on SessionResponse
	BBRCongestion bool // BBR offered as a congestion choice
}

// FeatureTable returns the capability set unlocked at level.
func FeatureTable(level Level) Features {
	return Features{
		FileMetadata:  level >= Level2,
		BBRCongestion: level >= Level2,
	}
}
