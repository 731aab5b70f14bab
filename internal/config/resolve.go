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
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Field pairs a possibly-absent value with where it came from, the
// config-file analogue of a CLI flag's "was this set" bit.
type Field[T any] struct {
	Value   T
	Set     bool
	Source  Provenance
}

func setField[T any](v T, p Provenance) Field[T] { return Field[T]{Value: v, Set: true, Source: p} }

// Overrides carries the flags the user actually typed on the command
// line; zero-value fields (Set == false) fall through to config files
// and then defaults, per spec.md §4.7 Stage A precedence.
type Overrides struct {
	Rx              Field[uint64]
	Tx              Field[uint64]
	RTTMillis       Field[uint32]
	Congestion      Field[Congestion]
	InitialCwnd     Field[uint64]
	UDPBuffer       Field[uint64]
	Port            Field[PortRange]
	RemotePort      Field[PortRange]
	Timeout         Field[uint32]
	AddressFamily   Field[AddressFamily]
	Ssh             Field[string]
	SshConfig       Field[string]
	SshSubsystem    Field[string]
	RemoteUser      Field[string]
	Preserve        Field[bool]
	TimeFormat      Field[string]
	Color           Field[bool]
	Quiet           Field[bool]
	Statistics      Field[bool]
	Debug           Field[bool]
	RemoteDebug     Field[bool]
	DryRun          Field[bool]
	ShowConfig      Field[bool]
	RemoteConfig    Field[bool]
}

// Resolved is the Stage A output: one side's complete, provenance-tagged
// configuration, ready to be placed into a ClientMessage/ServerMessage
// and handed to Negotiate for Stage B (spec.md §4.7).
type Resolved struct {
	Rx              Field[uint64]
	Tx              Field[uint64]
	RTTMillis       Field[uint32]
	Congestion      Field[Congestion]
	InitialCwnd     Field[uint64]
	UDPBuffer       Field[uint64]
	Port            Field[PortRange]
	RemotePort      Field[PortRange]
	Timeout         Field[uint32]
	AddressFamily   Field[AddressFamily]
	Ssh             Field[string]
	SshConfig       Field[string]
	SshSubsystem    Field[string]
	RemoteUser      Field[string]
	Preserve        Field[bool]
	TimeFormat      Field[string]
	Color           Field[bool]
	Quiet           Field[bool]
	Statistics      Field[bool]
	Debug           Field[bool]
	RemoteDebug     Field[bool]
	DryRun          Field[bool]
	ShowConfig      Field[bool]
	RemoteConfig    Field[bool]
}

// Preferences extracts the subset Stage B negotiates over.
func (r Resolved) Preferences() TransportPreferences {
	p := TransportPreferences{}
	if r.Rx.Set {
		p.RxBandwidth = Some(r.Rx.Value)
	}
	if r.Tx.Set {
		p.TxBandwidth = Some(r.Tx.Value)
	}
	if r.RTTMillis.Set {
		p.RTTMillis = Some(r.RTTMillis.Value)
	}
	if r.Congestion.Set {
		p.Congestion = Some(r.Congestion.Value)
	}
	if r.InitialCwnd.Set {
		p.InitialCwnd = Some(r.InitialCwnd.Value)
	}
	if r.UDPBuffer.Set {
		p.UDPBuffer = Some(r.UDPBuffer.Value)
	}
	return p
}

var defaultTimeout uint32 = 300

// Resolve merges CLI overrides with directives already extracted from
// the user and system config files (in that precedence order, both
// already filtered to the matching Host block by ParseFile). Fields with
// a hard-wired default here get it when still unset; the transport
// preferences (rx, tx, rtt, congestion, window, buffer, ports and the
// like) stay unset and are defaulted later by Negotiate, if at all.
func Resolve(cli Overrides, userDirectives, systemDirectives []Directive) (Resolved, error) {
	lookup := func(keyword string) (string, Provenance, bool) {
		for _, d := range userDirectives {
			if d.Keyword == keyword && len(d.Args) > 0 {
				return d.Args[0], Provenance{Kind: SourceFile, Path: d.Path, Line: d.Line}, true
			}
		}
		for _, d := range systemDirectives {
			if d.Keyword == keyword && len(d.Args) > 0 {
				return d.Args[0], Provenance{Kind: SourceFile, Path: d.Path, Line: d.Line}, true
			}
		}
		return "", Provenance{}, false
	}

	var r Resolved
	var err error

	r.Rx, err = resolveUint(cli.Rx, lookup, "rx", parseBandwidth)
	if err != nil {
		return r, err
	}
	r.Tx, err = resolveUint(cli.Tx, lookup, "tx", parseBandwidth)
	if err != nil {
		return r, err
	}
	r.RTTMillis, err = resolveUint32(cli.RTTMillis, lookup, "rtt", parseUint32)
	if err != nil {
		return r, err
	}
	r.Congestion, err = resolveCongestion(cli.Congestion, lookup)
	if err != nil {
		return r, err
	}
	r.InitialCwnd, err = resolveUint(cli.InitialCwnd, lookup, "initialcongestionwindow", parseBandwidth)
	if err != nil {
		return r, err
	}
	r.UDPBuffer, err = resolveUint(cli.UDPBuffer, lookup, "udpbuffer", parseBandwidth)
	if err != nil {
		return r, err
	}
	r.Port, err = resolvePortRange(cli.Port, lookup, "port")
	if err != nil {
		return r, err
	}
	r.RemotePort, err = resolvePortRange(cli.RemotePort, lookup, "remoteport")
	if err != nil {
		return r, err
	}
	r.Timeout, err = resolveUint32(cli.Timeout, lookup, "timeout", parseUint32)
	if err != nil {
		return r, err
	}
	if !r.Timeout.Set {
		r.Timeout = setField(defaultTimeout, Provenance{Kind: SourceDefault})
	}
	r.AddressFamily, err = resolveAddressFamily(cli.AddressFamily, lookup)
	if err != nil {
		return r, err
	}
	r.Ssh = resolveString(cli.Ssh, lookup, "ssh", "ssh")
	r.SshConfig = resolveString(cli.SshConfig, lookup, "sshconfig", "")
	r.SshSubsystem = resolveString(cli.SshSubsystem, lookup, "sshsubsystem", "")
	r.RemoteUser = resolveString(cli.RemoteUser, lookup, "remoteuser", "")
	r.TimeFormat = resolveString(cli.TimeFormat, lookup, "timeformat", "local")

	r.Preserve, err = resolveBool(cli.Preserve, lookup, "preserve", false)
	if err != nil {
		return r, err
	}
	r.Color, err = resolveBool(cli.Color, lookup, "color", true)
	if err != nil {
		return r, err
	}
	r.Quiet, err = resolveBool(cli.Quiet, lookup, "quiet", false)
	if err != nil {
		return r, err
	}
	r.Statistics, err = resolveBool(cli.Statistics, lookup, "statistics", false)
	if err != nil {
		return r, err
	}
	r.Debug, err = resolveBool(cli.Debug, lookup, "debug", false)
	if err != nil {
		return r, err
	}
	r.RemoteDebug, err = resolveBool(cli.RemoteDebug, lookup, "remotedebug", false)
	if err != nil {
		return r, err
	}
	r.DryRun = cli.DryRun
	r.ShowConfig = cli.ShowConfig
	r.RemoteConfig, err = resolveBool(cli.RemoteConfig, lookup, "remoteconfig", false)
	if err != nil {
		return r, err
	}

	return r, nil
}

type lookupFn func(keyword string) (string, Provenance, bool)

func resolveUint(cli Field[uint64], lookup lookupFn, keyword string, parse func(string) (uint64, error)) (Field[uint64], error) {
	if cli.Set {
		return cli, nil
	}
	if s, p, ok := lookup(keyword); ok {
		v, err := parse(s)
		if err != nil {
			return Field[uint64]{}, errors.Wrapf(err, "config: %s", keyword)
		}
		return setField(v, p), nil
	}
	return Field[uint64]{}, nil
}

func resolveUint32(cli Field[uint32], lookup lookupFn, keyword string, parse func(string) (uint32, error)) (Field[uint32], error) {
	if cli.Set {
		return cli, nil
	}
	if s, p, ok := lookup(keyword); ok {
		v, err := parse(s)
		if err != nil {
			return Field[uint32]{}, errors.Wrapf(err, "config: %s", keyword)
		}
		return setField(v, p), nil
	}
	return Field[uint32]{}, nil
}

func resolveString(cli Field[string], lookup lookupFn, keyword, def string) Field[string] {
	if cli.Set {
		return cli
	}
	if s, p, ok := lookup(keyword); ok {
		return setField(s, p)
	}
	if def != "" {
		return setField(def, Provenance{Kind: SourceDefault})
	}
	return Field[string]{}
}

func resolveBool(cli Field[bool], lookup lookupFn, keyword string, def bool) (Field[bool], error) {
	if cli.Set {
		return cli, nil
	}
	if s, p, ok := lookup(keyword); ok {
		v, err := parseBool(s)
		if err != nil {
			return Field[bool]{}, errors.Wrapf(err, "config: %s", keyword)
		}
		return setField(v, p), nil
	}
	return setField(def, Provenance{Kind: SourceDefault}), nil
}

func resolveCongestion(cli Field[Congestion], lookup lookupFn) (Field[Congestion], error) {
	if cli.Set {
		return cli, nil
	}
	s, p, ok := lookup("congestion")
	if !ok {
		return Field[Congestion]{}, nil
	}
	switch strings.ToLower(s) {
	case "cubic":
		return setField(CongestionCubic, p), nil
	case "newreno", "new-reno":
		return setField(CongestionNewReno, p), nil
	case "bbr":
		return setField(CongestionBBR, p), nil
	default:
		return Field[Congestion]{}, errors.Errorf("config: unknown congestion controller %q", s)
	}
}

func resolveAddressFamily(cli Field[AddressFamily], lookup lookupFn) (Field[AddressFamily], error) {
	if cli.Set {
		return cli, nil
	}
	s, p, ok := lookup("addressfamily")
	if !ok {
		return setField(AddressFamilyAny, Provenance{Kind: SourceDefault}), nil
	}
	switch s {
	case "4", "inet":
		return setField(AddressFamilyV4, p), nil
	case "6", "inet6":
		return setField(AddressFamilyV6, p), nil
	case "any":
		return setField(AddressFamilyAny, p), nil
	default:
		return Field[AddressFamily]{}, errors.Errorf("config: unknown address family %q", s)
	}
}

func resolvePortRange(cli Field[PortRange], lookup lookupFn, keyword string) (Field[PortRange], error) {
	if cli.Set {
		return cli, nil
	}
	s, p, ok := lookup(keyword)
	if !ok {
		return Field[PortRange]{}, nil
	}
	v, err := ParsePortRange(s)
	if err != nil {
		return Field[PortRange]{}, errors.Wrapf(err, "config: %s", keyword)
	}
	return setField(v, p), nil
}

// parseBandwidth accepts a bare byte count or a k/m/g-suffixed
// shorthand (case-insensitive, binary multiples), e.g. "50M" == 50 *
// 1<<20 bytes/sec.
func parseBandwidth(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("empty value")
	}
	mult := uint64(1)
	switch s[len(s)-1] {
	case 'k', 'K':
		mult = 1 << 10
		s = s[:len(s)-1]
	case 'm', 'M':
		mult = 1 << 20
		s = s[:len(s)-1]
	case 'g', 'G':
		mult = 1 << 30
		s = s[:len(s)-1]
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "malformed bandwidth %q", s)
	}
	return n * mult, nil
}

func parseUint32(s string) (uint32, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint32(n), nil
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "true", "1", "on":
		return true, nil
	case "no", "false", "0", "off":
		return false, nil
	default:
		return false, errors.Errorf("malformed boolean %q", s)
	}
}
