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
	"regexp"
	"strconv"

	"github.com/pkg/errors"
)

// PortRange is the "each side picks a concrete port from its own allowed
// range" knob from spec.md §4.7, adapted from the teacher's
// std.ParseMultiPort (which parsed "host:minport-maxport" kcp listen
// addresses); here it parses a bare "port" or "minport-maxport" value
// for the --port/--remote-port flags and config keywords.
type PortRange struct {
	Min uint16
	Max uint16
}

var portRangePattern = regexp.MustCompile(`^([0-9]{1,5})(?:-([0-9]{1,5}))?$`)

// ParsePortRange parses "0" (ephemeral, the default), "60000", or
// "60000-60100".
func ParsePortRange(s string) (PortRange, error) {
	if s == "" || s == "0" {
		return PortRange{}, nil
	}
	m := portRangePattern.FindStringSubmatch(s)
	if m == nil {
		return PortRange{}, errors.Errorf("malformed port range: %q", s)
	}
	min, err := strconv.Atoi(m[1])
	if err != nil {
		return PortRange{}, errors.WithStack(err)
	}
	max := min
	if m[2] != "" {
		max, err = strconv.Atoi(m[2])
		if err != nil {
			return PortRange{}, errors.WithStack(err)
		}
	}
	if min > max || min == 0 || max > 65535 {
		return PortRange{}, errors.Errorf("invalid port range %d-%d", min, max)
	}
	return PortRange{Min: uint16(min), Max: uint16(max)}, nil
}

// IsEphemeral reports whether the range is the unset/"let the OS pick" value.
func (r PortRange) IsEphemeral() bool { return r.Min == 0 && r.Max == 0 }

// Contains reports whether port lies within the range (ephemeral ranges
// contain nothing; callers should check IsEphemeral first).
func (r PortRange) Contains(port uint16) bool {
	return !r.IsEphemeral() && port >= r.Min && port <= r.Max
}
