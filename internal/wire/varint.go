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
	"io"

	"github.com/pkg/errors"
)

// maxVarintBytes bounds a 128-bit unsigned varint: ceil(128/7) = 19 bytes.
const maxVarintBytes = 19

// PutUvarint appends the LEB128 encoding of v to dst and returns the
// extended slice. v is treated as an arbitrary-precision non-negative
// integer via uint64; qcp's own fields never need more than 64 bits; the
// 128-bit ceiling in spec.md §4.1 only bounds how many continuation
// bytes a decoder will tolerate before declaring the value malformed.
func PutUvarint(dst []byte, v uint64) []byte {
	for v >= 0x80 {
		dst = append(dst, byte(v)|0x80)
		v >>= 7
	}
	return append(dst, byte(v))
}

// ReadUvarint decodes an unsigned varint from r, refusing to read more
// than maxVarintBytes continuation bytes.
func ReadUvarint(r io.ByteReader) (uint64, error) {
	var result uint64
	var shift uint
	for i := 0; i < maxVarintBytes; i++ {
		b, err := r.ReadByte()
		if err != nil {
			if err == io.EOF {
				return 0, truncated("varint")
			}
			return 0, errors.WithStack(err)
		}
		if i == maxVarintBytes-1 && b > 1 {
			return 0, oversize("varint exceeds 128-bit ceiling")
		}
		result |= uint64(b&0x7f) << shift
		if b < 0x80 {
			return result, nil
		}
		shift += 7
	}
	return 0, oversize("varint exceeds 128-bit ceiling")
}

// PutVarint appends the zig-zag + LEB128 encoding of the two's-complement
// signed value v.
func PutVarint(dst []byte, v int64) []byte {
	uv := uint64(v) << 1
	if v < 0 {
		uv = ^uv
	}
	return PutUvarint(dst, uv)
}

// ReadVarint decodes a zig-zag encoded signed varint.
func ReadVarint(r io.ByteReader) (int64, error) {
	uv, err := ReadUvarint(r)
	if err != nil {
		return 0, err
	}
	v := int64(uv >> 1)
	if uv&1 != 0 {
		v = ^v
	}
	return v, nil
}
