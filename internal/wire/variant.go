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

// Variant is the forward-compatible extension point described in
// spec.md §4.1 and §9: a tag-length-value container. Decoders preserve
// unknown tags instead of failing, so a level-3 client talking to a
// level-1 server (or vice versa) can round-trip fields it doesn't
// understand if it ever needs to re-encode the message (proxying is not
// currently required, but the shape supports it per §9).
type Variant struct {
	Entries []VariantEntry
}

// VariantEntry is one TLV slot. Tag is an application-assigned constant;
// Value is the raw encoded payload for that tag, opaque to this package.
type VariantEntry struct {
	Tag   uint64
	Value []byte
}

// Get returns the first entry's value for tag, if present.
func (v Variant) Get(tag uint64) ([]byte, bool) {
	for _, e := range v.Entries {
		if e.Tag == tag {
			return e.Value, true
		}
	}
	return nil, false
}

// Set replaces (or appends) the entry for tag.
func (v *Variant) Set(tag uint64, value []byte) {
	for i := range v.Entries {
		if v.Entries[i].Tag == tag {
			v.Entries[i].Value = value
			return
		}
	}
	v.Entries = append(v.Entries, VariantEntry{Tag: tag, Value: value})
}

// Encode writes the Variant as a length-prefixed sequence of
// (tag, length-prefixed value) pairs.
func (v Variant) Encode(w *Writer) {
	w.Len(len(v.Entries))
	for _, e := range v.Entries {
		w.Uint(e.Tag)
		w.ByteString(e.Value)
	}
}

// DecodeVariant reads back what Encode wrote. Every entry, known or not,
// is kept verbatim in Entries; callers look up the tags they understand
// via Get and silently ignore the rest.
func DecodeVariant(r *Reader) (Variant, error) {
	n, err := r.Len()
	if err != nil {
		return Variant{}, err
	}
	v := Variant{Entries: make([]VariantEntry, 0, n)}
	for i := 0; i < n; i++ {
		tag, err := r.Uint()
		if err != nil {
			return Variant{}, err
		}
		val, err := r.ByteString()
		if err != nil {
			return Variant{}, err
		}
		v.Entries = append(v.Entries, VariantEntry{Tag: tag, Value: val})
	}
	return v, nil
}
