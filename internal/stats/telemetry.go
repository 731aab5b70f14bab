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

// Package stats persists per-invocation transfer telemetry. Where the
// teacher's own std.SnmpLogger ticks forever appending live counters for
// a long-running tunnel, qcp completes exactly one transfer per process
// (spec.md §1 Non-goals), so there is only ever one row to append: the
// closedown report the control channel exchanges at the very end.
package stats

import (
	"encoding/csv"
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"

	"github.com/qcp-project/qcp/internal/control"
)

var csvHeader = []string{
	"unix_time", "succeeded", "bytes_transferred", "elapsed_millis",
	"final_rtt_millis", "congestion_events", "detail",
}

// AppendClosedownCSV appends one row describing report to the CSV file at
// path, writing the header first if the file is new or empty — the same
// "append a row, write the header only once" shape as SnmpLogger, minus
// the ticker since there is nothing to poll between invocations.
func AppendClosedownCSV(path string, when time.Time, report control.ClosedownReport) error {
	if path == "" {
		return nil
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o666)
	if err != nil {
		return errors.Wrap(err, "stats: open telemetry log")
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if stat, err := f.Stat(); err == nil && stat.Size() == 0 {
		if err := w.Write(csvHeader); err != nil {
			return errors.Wrap(err, "stats: write telemetry header")
		}
	}
	row := []string{
		fmt.Sprint(when.Unix()),
		fmt.Sprint(report.Succeeded),
		fmt.Sprint(report.BytesTransferred),
		fmt.Sprint(report.ElapsedMillis),
		fmt.Sprint(report.FinalRTTMillis),
		fmt.Sprint(report.CongestionEvents),
		report.Detail,
	}
	if err := w.Write(row); err != nil {
		return errors.Wrap(err, "stats: write telemetry row")
	}
	w.Flush()
	return w.Error()
}
