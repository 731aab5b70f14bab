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

package wire

import (
	"bufio"
	"io"
	"unicode/utf8"
)

// DefaultMaxFramePayload is the hard ceiling on a single framed message or
// stream-content chunk, per spec.md §4.1 ("a hard maximum payload size
// (>= 1 MiB, configurable constant)").
const DefaultMaxFramePayload = 1 << 20

// Writer accumulates an encoded record. The zero value is ready to use.
type Writer struct {
	buf []byte
}

// NewWriter returns a Writer with a pre-sized backing buffer.
func NewWriter() *Writer { return &Writer{buf: make([]byte, 0, 256)} }

// Bytes returns the accumulated encoding.
func (w *Writer) Bytes() []byte { return w.buf }

// Uint writes an unsigned varint.
func (w *Writer) Uint(v uint64) { w.buf = PutUvarint(w.buf, v) }

// Int writes a signed varint.
func (w *Writer) Int(v int64) { w.buf = PutVarint(w.buf, v) }

// Bool writes a single 0/1 byte.
func (w *Writer) Bool(v bool) {
	if v {
		w.buf = append(w.buf, 1)
	} else {
		w.buf = append(w.buf, 0)
	}
}

// ByteString writes a length-prefixed byte string.
func (w *Writer) ByteString(b []byte) {
	w.Uint(uint64(len(b)))
	w.buf = append(w.buf, b...)
}

// String writes a length-prefixed UTF-8 string.
func (w *Writer) String(s string) {
	w.ByteString([]byte(s))
}

// OptionalPresent writes the one-byte presence tag for an optional field.
// Callers write the payload themselves immediately afterwards when
// present is true.
func (w *Writer) OptionalPresent(present bool) { w.Bool(present) }

// Discriminant writes a sum-type tag.
func (w *Writer) Discriminant(d uint64) { w.Uint(d) }

// Len writes a sequence length prefix.
func (w *Writer) Len(n int) { w.Uint(uint64(n)) }

// Raw appends already-encoded bytes verbatim.
func (w *Writer) Raw(b []byte) { w.buf = append(w.buf, b...) }

// Reader decodes a record previously produced by Writer. It wraps an
// io.ByteReader so ReadUvarint/ReadVarint can be reused directly.
type Reader struct {
	br  *bufio.Reader
	max int
}

// NewReader wraps r with the given maximum byte-string/sequence length;
// pass 0 to use DefaultMaxFramePayload.
func NewReader(r io.Reader, maxPayload int) *Reader {
	if maxPayload <= 0 {
		maxPayload = DefaultMaxFramePayload
	}
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &Reader{br: br, max: maxPayload}
}

func (r *Reader) Uint() (uint64, error) { return ReadUvarint(r.br) }
func (r *Reader) Int() (int64, error)   { return ReadVarint(r.br) }

func (r *Reader) Bool() (bool, error) {
	b, err := r.br.ReadByte()
	if err != nil {
		return false, truncated("bool")
	}
	switch b {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, malformed("bool: expected 0 or 1")
	}
}

// ByteString reads a length-prefixed byte string, rejecting lengths
// above the configured maximum (ProtocolError::Oversize per spec §4.1).
func (r *Reader) ByteString() ([]byte, error) {
	n, err := r.Uint()
	if err != nil {
		return nil, err
	}
	if n > uint64(r.max) {
		return nil, oversize("byte string")
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r.br, buf); err != nil {
		return nil, truncated("byte string")
	}
	return buf, nil
}

// String reads a length-prefixed string and verifies it is valid UTF-8,
// per spec.md §4.1 ("strings are valid UTF-8").
func (r *Reader) String() (string, error) {
	b, err := r.ByteString()
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", malformed("string: invalid utf-8")
	}
	return string(b), nil
}

// OptionalPresent reads the one-byte presence tag.
func (r *Reader) OptionalPresent() (bool, error) { return r.Bool() }

// Discriminant reads a sum-type tag.
func (r *Reader) Discriminant() (uint64, error) { return r.Uint() }

// Len reads a sequence length, rejecting lengths that could not possibly
// fit the remaining max payload (a cheap sanity bound; the real bound is
// enforced per-element as each element is decoded).
func (r *Reader) Len() (int, error) {
	n, err := r.Uint()
	if err != nil {
		return 0, err
	}
	if n > uint64(r.max) {
		return 0, oversize("sequence length")
	}
	return int(n), nil
}

// ReadByte satisfies io.ByteReader so Reader itself can be passed to
// ReadUvarint/ReadVarint when decoding nested Variant payloads.
func (r *Reader) ReadByte() (byte, error) { return r.br.ReadByte() }

// Remaining returns a copy of b.
func Remaining(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
