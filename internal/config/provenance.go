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

package config

import "fmt"

// Provenance names where a resolved field's value came from, for
// human-readable diagnostics under --show-config (spec.md §3 "ConfigValue
// source", §9 "Config provenance").
type Provenance struct {
	Kind SourceKind
	Path string // set when Kind == SourceFile
	Line int    // set when Kind == SourceFile
}

type SourceKind int

const (
	SourceDefault SourceKind = iota
	SourceCommandLine
	SourceEnvironment
	SourceFile
)

func (p Provenance) String() string {
	switch p.Kind {
	case SourceCommandLine:
		return "command-line"
	case SourceEnvironment:
		return "environment"
	case SourceFile:
		return fmt.Sprintf("%s:%d", p.Path, p.Line)
	default:
		return "default"
	}
}

// Value pairs a resolved field with its Provenance, traveling alongside
// the value itself rather than as a side channel (spec.md §9).
type Value[T any] struct {
	V T
	P Provenance
}

func fromDefault[T any](v T) Value[T] { return Value[T]{V: v, P: Provenance{Kind: SourceDefault}} }

func fromCLI[T any](v T) Value[T] { return Value[T]{V: v, P: Provenance{Kind: SourceCommandLine}} }

func fromEnv[T any](v T) Value[T] { return Value[T]{V: v, P: Provenance{Kind: SourceEnvironment}} }

func fromFile[T any](v T, path string, line int) Value[T] {
	return Value[T]{V: v, P: Provenance{Kind: SourceFile, Path: path, Line: line}}
}
