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
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/qcp-project/qcp/internal/control"
)

func TestAppendClosedownCSVWritesHeaderOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "telemetry.csv")
	report := control.ClosedownReport{Succeeded: true, BytesTransferred: 1024, ElapsedMillis: 500}

	if err := AppendClosedownCSV(path, time.Unix(1700000000, 0), report); err != nil {
		t.Fatal(err)
	}
	if err := AppendClosedownCSV(path, time.Unix(1700000100, 0), report); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "unix_time" {
		t.Fatalf("missing header, got %v", rows[0])
	}
}

func TestAppendClosedownCSVNoopOnEmptyPath(t *testing.T) {
	if err := AppendClosedownCSV("", time.Now(), control.ClosedownReport{}); err != nil {
		t.Fatal(err)
	}
}
