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

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// Directive is one resolved keyword/value pair surviving Host-block
// filtering, tagged with the file and line it came from for
// --show-config provenance.
type Directive struct {
	Keyword string // normalized: lowercased, hyphens/underscores stripped
	Args    []string
	Path    string
	Line    int
}

// normalizeKeyword applies spec.md §4.7's "case-insensitive keys
// (hyphens/underscores ignored)" rule so "Remote-Port", "remote_port"
// and "REMOTEPORT" all resolve to the same field.
func normalizeKeyword(k string) string {
	k = strings.ToLower(k)
	k = strings.ReplaceAll(k, "-", "")
	k = strings.ReplaceAll(k, "_", "")
	return k
}

// ParseFile reads an OpenSSH-style config file, expanding Include
// directives and keeping only directives inside Host blocks that match
// hostToken (directives before any Host line are unconditional).
// hostToken is the literal remote-host string to match against (no DNS
// resolution, per spec.md §4.7).
func ParseFile(path, hostToken string) ([]Directive, error) {
	return parseFile(path, hostToken, map[string]bool{})
}

func parseFile(path, hostToken string, seen map[string]bool) ([]Directive, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrapf(err, "config: resolve path %s", path)
	}
	if seen[abs] {
		return nil, errors.Errorf("config: Include cycle at %s", path)
	}
	seen[abs] = true

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "config: open %s", path)
	}
	defer f.Close()

	var out []Directive
	active := true // directives before any Host block are unconditional

	sc := bufio.NewScanner(f)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		kw, args, err := tokenizeLine(sc.Text())
		if err != nil {
			return nil, errors.Wrapf(err, "config: %s:%d", path, lineNo)
		}
		if kw == "" {
			continue // blank or comment-only line
		}
		switch normalizeKeyword(kw) {
		case "host":
			patterns := make([]hostPattern, 0, len(args))
			for _, a := range args {
				p, err := compileHostPattern(a)
				if err != nil {
					return nil, errors.Wrapf(err, "config: %s:%d: bad Host pattern %q", path, lineNo, a)
				}
				patterns = append(patterns, p)
			}
			active = hostToken == "" || hostBlockMatches(patterns, hostToken)
			continue
		case "include":
			if !active {
				continue
			}
			for _, pattern := range args {
				matches, err := resolveInclude(filepath.Dir(path), pattern)
				if err != nil {
					return nil, errors.Wrapf(err, "config: %s:%d: Include %q", path, lineNo, pattern)
				}
				for _, m := range matches {
					sub, err := parseFile(m, hostToken, seen)
					if err != nil {
						return nil, err
					}
					out = append(out, sub...)
				}
			}
			continue
		}
		if !active {
			continue
		}
		out = append(out, Directive{
			Keyword: normalizeKeyword(kw),
			Args:    args,
			Path:    path,
			Line:    lineNo,
		})
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrapf(err, "config: read %s", path)
	}
	return out, nil
}

// resolveInclude expands an Include argument: globs and relative paths
// are rooted at the including file's directory, per spec.md §4.7.
func resolveInclude(baseDir, pattern string) ([]string, error) {
	if !filepath.IsAbs(pattern) {
		pattern = filepath.Join(baseDir, pattern)
	}
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, err
	}
	return matches, nil
}

// tokenizeLine splits a config line into a keyword and its arguments,
// honoring '#' comments, double-quoted arguments, and backslash escapes
// inside quotes (spec.md §4.7).
func tokenizeLine(line string) (keyword string, args []string, err error) {
	i := 0
	n := len(line)
	skipSpace := func() {
		for i < n && (line[i] == ' ' || line[i] == '\t') {
			i++
		}
	}
	readToken := func() (string, error) {
		skipSpace()
		if i >= n || line[i] == '#' {
			return "", nil
		}
		var sb strings.Builder
		if line[i] == '"' {
			i++
			for i < n && line[i] != '"' {
				if line[i] == '\\' && i+1 < n {
					i++
				}
				sb.WriteByte(line[i])
				i++
			}
			if i >= n {
				return "", errors.New("unterminated quoted argument")
			}
			i++ // closing quote
			return sb.String(), nil
		}
		for i < n && line[i] != ' ' && line[i] != '\t' && line[i] != '#' {
			sb.WriteByte(line[i])
			i++
		}
		return sb.String(), nil
	}

	keyword, err = readToken()
	if err != nil || keyword == "" {
		return "", nil, err
	}
	// OpenSSH allows "Keyword=value" as well as "Keyword value".
	if eq := strings.IndexByte(keyword, '='); eq > 0 {
		first := keyword[:eq]
		rest := keyword[eq+1:]
		keyword = first
		if rest != "" {
			args = append(args, rest)
		}
	}
	for {
		skipSpace()
		if i >= n || line[i] == '#' {
			break
		}
		tok, err := readToken()
		if err != nil {
			return "", nil, err
		}
		if tok == "" {
			break
		}
		args = append(args, tok)
	}
	return keyword, args, nil
}
