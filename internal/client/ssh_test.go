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

package client

import (
	"testing"

	"github.com/qcp-project/qcp/internal/config"
)

func TestBuildSSHArgsDefaultsToServerSubcommand(t *testing.T) {
	args := buildSSHArgs("box.example.com", config.Resolved{}, nil)
	want := []string{"-o", "BatchMode=yes", "box.example.com", "qcp", "--server"}
	if len(args) != len(want) {
		t.Fatalf("got %v", args)
	}
	for i := range want {
		if args[i] != want[i] {
			t.Fatalf("got %v want %v", args, want)
		}
	}
}

func TestBuildSSHArgsUsesSubsystemWhenConfigured(t *testing.T) {
	resolved := config.Resolved{
		SshSubsystem: config.Field[string]{Value: "qcp", Set: true},
	}
	args := buildSSHArgs("box", resolved, nil)
	found := false
	for i, a := range args {
		if a == "-s" && i+1 < len(args) && args[i+1] == "qcp" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected -s qcp in %v", args)
	}
}

func TestBuildSSHArgsIncludesConfigAndUser(t *testing.T) {
	resolved := config.Resolved{
		SshConfig:  config.Field[string]{Value: "/etc/qcp/ssh_config", Set: true},
		RemoteUser: config.Field[string]{Value: "deploy", Set: true},
	}
	args := buildSSHArgs("box", resolved, nil)
	joined := ""
	for _, a := range args {
		joined += a + " "
	}
	if !contains(joined, "-F /etc/qcp/ssh_config") || !contains(joined, "-l deploy") {
		t.Fatalf("got %q", joined)
	}
}

func contains(haystack, needle string) bool {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return true
		}
	}
	return false
}

func TestBuildSSHArgsPassesRawOptions(t *testing.T) {
	args := buildSSHArgs("box", config.Resolved{}, []string{"ProxyJump=bastion", "Compression=yes"})
	joined := ""
	for _, a := range args {
		joined += a + " "
	}
	if !contains(joined, "-o ProxyJump=bastion") || !contains(joined, "-o Compression=yes") {
		t.Fatalf("got %q", joined)
	}
}

func TestTargetHostStripsUser(t *testing.T) {
	if got := targetHost("deploy@box.example.com"); got != "box.example.com" {
		t.Fatalf("got %q", got)
	}
	if got := targetHost("box.example.com"); got != "box.example.com" {
		t.Fatalf("got %q", got)
	}
}
