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
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
)

// FileMeta is the subset of os.FileInfo the protocol exposes to the peer,
// gated behind compat.Level2 (spec.md §4's FeatureTable.FileMetadata).
type FileMeta struct {
	Size    uint64
	ModTime time.Time
	Mode    os.FileMode
}

// OpenForRead opens path and stats the same file handle rather than
// stat-then-open, closing the window where a symlink swap or truncation
// between the two calls could hand the caller metadata that no longer
// describes what it actually reads (spec.md §6 "preflight validation,
// performed on the same handle the transfer subsequently streams from").
func OpenForRead(path string) (*os.File, FileMeta, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, FileMeta{}, classifyOpenError(err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, FileMeta{}, errors.Wrap(err, "session: stat")
	}
	if info.IsDir() {
		f.Close()
		return nil, FileMeta{}, &StatusError{Status: StatusIsDirectory, Path: path}
	}
	if !info.Mode().IsRegular() {
		f.Close()
		return nil, FileMeta{}, &StatusError{Status: StatusNotRegularFile, Path: path}
	}
	return f, FileMeta{Size: uint64(info.Size()), ModTime: info.ModTime(), Mode: info.Mode()}, nil
}

func classifyOpenError(err error) error {
	if os.IsNotExist(err) {
		return &StatusError{Status: StatusNotFound}
	}
	if os.IsPermission(err) {
		return &StatusError{Status: StatusPermissionDenied}
	}
	return errors.Wrap(err, "session: open")
}

// StagedWriter writes to a temporary file in the destination's own
// directory and only becomes visible at destPath once Commit renames it
// into place — the same atomic-rename pattern the control handshake's
// TOCTTOU note in spec.md §6 requires for PUT's destination side. Abort (or
// any early return without calling Commit) leaves the real destination
// untouched.
type StagedWriter struct {
	tmp      *os.File
	destPath string
	done     bool
}

// CreateStaged opens a temp file beside destPath (same directory, so the
// final rename is same-filesystem and therefore atomic). destPath itself
// is stat'd first and rejected before any temp file is created if it
// already exists as a directory or other non-regular file, the PUT-side
// counterpart to OpenForRead's IsDir/IsRegular checks (spec.md §6
// "non-regular sources/destinations are rejected in preflight, never
// opened for I/O").
func CreateStaged(destPath string) (*StagedWriter, error) {
	if info, err := os.Lstat(destPath); err == nil {
		if info.IsDir() {
			return nil, &StatusError{Status: StatusIsDirectory, Path: destPath}
		}
		if !info.Mode().IsRegular() {
			return nil, &StatusError{Status: StatusNotRegularFile, Path: destPath}
		}
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "session: stat destination")
	}

	dir := filepath.Dir(destPath)
	tmp, err := os.CreateTemp(dir, ".qcp-*.tmp")
	if err != nil {
		return nil, classifyOpenError(err)
	}
	return &StagedWriter{tmp: tmp, destPath: destPath}, nil
}

func (s *StagedWriter) Write(p []byte) (int, error) { return s.tmp.Write(p) }

// Commit flushes, syncs, and renames the temp file into place.
func (s *StagedWriter) Commit(mode os.FileMode) error {
	if s.done {
		return errors.New("session: Commit called twice")
	}
	s.done = true
	if err := s.tmp.Sync(); err != nil {
		s.cleanup()
		return errors.Wrap(err, "session: sync staged file")
	}
	if mode != 0 {
		if err := s.tmp.Chmod(mode); err != nil {
			s.cleanup()
			return errors.Wrap(err, "session: chmod staged file")
		}
	}
	name := s.tmp.Name()
	if err := s.tmp.Close(); err != nil {
		os.Remove(name)
		return errors.Wrap(err, "session: close staged file")
	}
	if err := os.Rename(name, s.destPath); err != nil {
		os.Remove(name)
		return errors.Wrap(err, "session: rename into place")
	}
	return nil
}

// Abort discards the staged file without touching the destination.
func (s *StagedWriter) Abort() {
	if s.done {
		return
	}
	s.done = true
	s.cleanup()
}

func (s *StagedWriter) cleanup() {
	name := s.tmp.Name()
	s.tmp.Close()
	os.Remove(name)
}

var _ io.Writer = (*StagedWriter)(nil)
