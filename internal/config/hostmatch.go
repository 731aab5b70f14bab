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

import "github.com/gobwas/glob"

// hostPattern is one space-separated token from a `Host` line: either a
// glob to match against the literal host token, or a `!`-prefixed
// negation that excludes matches (spec.md §4.7: "glob (*, ?) and
// negation (!prefix) matching against the literal remote-host token (no
// DNS)"). Patterns compile once per file load, the way the teacher
// compiles its port-range regexp once in ParseMultiPort rather than per
// call.
type hostPattern struct {
	negate bool
	g      glob.Glob
	raw    string
}

func compileHostPattern(tok string) (hostPattern, error) {
	negate := false
	if len(tok) > 0 && tok[0] == '!' {
		negate = true
		tok = tok[1:]
	}
	g, err := glob.Compile(tok)
	if err != nil {
		return hostPattern{}, err
	}
	return hostPattern{negate: negate, g: g, raw: tok}, nil
}

// hostBlockMatches reports whether the literal host token matches the
// block's pattern list: the block matches if at least one non-negated
// pattern matches and no negated pattern matches, mirroring OpenSSH's
// own Host-line semantics.
func hostBlockMatches(patterns []hostPattern, host string) bool {
	matched := false
	for _, p := range patterns {
		if !p.g.Match(host) {
			continue
		}
		if p.negate {
			return false
		}
		matched = true
	}
	return matched
}
