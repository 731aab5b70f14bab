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
	"io"

	"github.com/qcp-project/qcp/internal/wire"
)

// ClosedownReport is exchanged over the control channel once the QUIC
// session has finished, carrying the telemetry spec.md §9 requires
// --statistics to print: bytes moved, elapsed wall time, and the final
// status, plus whatever the peer's congestion controller observed.
type ClosedownReport struct {
	BytesTransferred uint64
	ElapsedMillis    uint64
	FinalRTTMillis   uint32
	CongestionEvents uint32
	Succeeded        bool
	Detail           string
}

// Encode writes r's frame payload.
func (r ClosedownReport) Encode() []byte {
	w := wire.NewWriter()
	w.Uint(r.BytesTransferred)
	w.Uint(r.ElapsedMillis)
	w.Uint(uint64(r.FinalRTTMillis))
	w.Uint(uint64(r.CongestionEvents))
	w.Bool(r.Succeeded)
	w.String(r.Detail)
	return w.Bytes()
}

// WriteClosedownReport frames and writes report to conn.
func WriteClosedownReport(conn io.Writer, report ClosedownReport) error {
	return wire.WriteFrame(conn, report.Encode())
}

// ReadClosedownReport reads and decodes one length-prefixed ClosedownReport.
func ReadClosedownReport(conn io.Reader, maxPayload int) (ClosedownReport, error) {
	payload, err := wire.ReadFrame(conn, maxPayload)
	if err != nil {
		return ClosedownReport{}, err
	}
	r := wire.NewReader(bytes.NewReader(payload), maxPayload)
	var report ClosedownReport
	if report.BytesTransferred, err = r.Uint(); err != nil {
		return report, err
	}
	if report.ElapsedMillis, err = r.Uint(); err != nil {
		return report, err
	}
	v, err := r.Uint()
	if err != nil {
		return report, err
	}
	report.FinalRTTMillis = uint32(v)
	if v, err = r.Uint(); err != nil {
		return report, err
	}
	report.CongestionEvents = uint32(v)
	if report.Succeeded, err = r.Bool(); err != nil {
		return report, err
	}
	if report.Detail, err = r.String(); err != nil {
		return report, err
	}
	return report, nil
}
