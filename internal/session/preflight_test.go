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

package session

import (
	"os"
	"path/filepath"
	"testing"
)

func TestOpenForReadRejectsMissingFile(t *testing.T) {
	_, _, err := OpenForRead(filepath.Join(t.TempDir(), "nope.bin"))
	if err == nil {
		t.Fatal("expected error")
	}
	if AsStatus(err) != StatusNotFound {
		t.Fatalf("got status %v", AsStatus(err))
	}
}

func TestOpenForReadRejectsDirectory(t *testing.T) {
	dir := t.TempDir()
	_, _, err := OpenForRead(dir)
	if err == nil {
		t.Fatal("expected error")
	}
	if AsStatus(err) != StatusIsDirectory {
		t.Fatalf("got status %v", AsStatus(err))
	}
}

func TestOpenForReadReturnsMatchingMeta(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "source.bin")
	if err := os.WriteFile(path, []byte("hello world"), 0o644); err != nil {
		t.Fatal(err)
	}
	f, meta, err := OpenForRead(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if meta.Size != 11 {
		t.Fatalf("got size %d", meta.Size)
	}
}

func TestCreateStagedRejectsDirectory(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "sub")
	if err := os.Mkdir(dest, 0o755); err != nil {
		t.Fatal(err)
	}
	_, err := CreateStaged(dest)
	if err == nil {
		t.Fatal("expected error")
	}
	if AsStatus(err) != StatusIsDirectory {
		t.Fatalf("got status %v", AsStatus(err))
	}
}

func TestStagedWriterCommitIsAtomic(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "dest.bin")
	if err := os.WriteFile(dest, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}

	staged, err := CreateStaged(dest)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := staged.Write([]byte("new contents")); err != nil {
		t.Fatal(err)
	}

	entriesBefore, _ := os.ReadDir(dir)
	sawTempDuringWrite := false
	for _, e := range entriesBefore {
		if e.Name() != "dest.bin" {
			sawTempDuringWrite = true
		}
	}
	if !sawTempDuringWrite {
		t.Fatal("expected a staged temp file to exist before Commit")
	}

	if err := staged.Commit(0o600); err != nil {
		t.Fatal(err)
	}

	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "new contents" {
		t.Fatalf("got %q", got)
	}

	entriesAfter, _ := os.ReadDir(dir)
	if len(entriesAfter) != 1 {
		t.Fatalf("expected only the final file to remain, got %v", entriesAfter)
	}
}

func TestStagedWriterAbortLeavesDestinationUntouched(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "dest.bin")
	if err := os.WriteFile(dest, []byte("original"), 0o644); err != nil {
		t.Fatal(err)
	}

	staged, err := CreateStaged(dest)
	if err != nil {
		t.Fatal(err)
	}
	staged.Write([]byte("partial"))
	staged.Abort()

	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "original" {
		t.Fatalf("destination was modified: %q", got)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Fatalf("expected temp file to be cleaned up, got %v", entries)
	}
}
