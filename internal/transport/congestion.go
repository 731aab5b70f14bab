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

// Package transport builds the QUIC endpoints both sides of a session dial
// or listen on, and wraps the resulting quic.Conn in the narrow interface
// the rest of qcp needs (spec.md §5).
package transport

import (
	"log"

	"github.com/qcp-project/qcp/internal/config"
)

// congestionChoice records which controller name a negotiated
// config.Congestion maps to, mirroring the shape of the teacher's own
// cipher-name lookup table even though what's being selected differs.
// buildQUICConfig does not consult this table: every connection runs
// quic-go's default controller whatever was negotiated.
type congestionChoice struct {
	name      string
	supported bool
}

var congestionTable = map[config.Congestion]congestionChoice{
	config.CongestionCubic:   {name: "cubic", supported: true},
	config.CongestionNewReno: {name: "newreno", supported: true},
	config.CongestionBBR:     {name: "bbr", supported: true},
}

// SelectCongestion translates a negotiated config.Congestion into its
// controller name, falling back to Cubic (and
// logging why) for anything unrecognized rather than failing the session.
func SelectCongestion(c config.Congestion) string {
	if choice, ok := congestionTable[c]; ok && choice.supported {
		return choice.name
	}
	log.Printf("transport: unknown congestion controller %v, falling back to cubic", c)
	return "cubic"
}
