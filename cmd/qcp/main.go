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

package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/urfave/cli"

	"github.com/qcp-project/qcp/internal/client"
	"github.com/qcp-project/qcp/internal/config"
	"github.com/qcp-project/qcp/internal/control"
	"github.com/qcp-project/qcp/internal/errcode"
	"github.com/qcp-project/qcp/internal/server"
	"github.com/qcp-project/qcp/internal/stats"
)

// VERSION is injected by buildflags.
var VERSION = "SELFBUILD"

func main() {
	if VERSION == "SELFBUILD" {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	}

	myApp := cli.NewApp()
	myApp.Name = "qcp"
	myApp.Usage = "copy a single file over SSH-bootstrapped QUIC"
	myApp.Version = VERSION
	myApp.ArgsUsage = "SOURCE DESTINATION"
	myApp.Flags = []cli.Flag{
		cli.Uint64Flag{Name: "rx", Usage: "maximum receive bandwidth in bytes/sec, as a plain integer"},
		cli.Uint64Flag{Name: "tx", Usage: "maximum transmit bandwidth in bytes/sec, 0 mirrors --rx"},
		cli.UintFlag{Name: "rtt", Usage: "expected round-trip time in milliseconds"},
		cli.StringFlag{Name: "congestion", Usage: "congestion controller: cubic, newreno, bbr"},
		cli.Uint64Flag{Name: "initial-congestion-window", Usage: "initial congestion window in bytes"},
		cli.Uint64Flag{Name: "udp-buffer", Usage: "requested SO_RCVBUF/SO_SNDBUF size in bytes"},
		cli.StringFlag{Name: "port", Usage: "local UDP port or port range, e.g. 30000-30100"},
		cli.StringFlag{Name: "remote-port", Usage: "remote UDP port or port range"},
		cli.UintFlag{Name: "timeout", Usage: "handshake and idle timeout in seconds"},
		cli.BoolFlag{Name: "4", Usage: "force IPv4"},
		cli.BoolFlag{Name: "6", Usage: "force IPv6"},
		cli.StringFlag{Name: "ssh", Usage: "ssh binary to invoke", EnvVar: "QCP_SSH"},
		cli.StringSliceFlag{Name: "S", Usage: "raw -o option passed through to ssh (repeatable)"},
		cli.StringSliceFlag{Name: "ssh-config", Usage: "additional ssh_config file to pass to ssh -F (repeatable)"},
		cli.StringFlag{Name: "ssh-subsystem", Usage: "invoke qcp as an ssh subsystem instead of a remote command"},
		cli.StringFlag{Name: "remote-user,l", Usage: "remote username, overrides [user@]host"},
		cli.BoolFlag{Name: "preserve", Usage: "accepted but not applied: a GET always applies the permission bits the server sends, and modification times are never set"},
		cli.StringFlag{Name: "time-format", Usage: "local, utc, or a Go reference-time layout"},
		cli.BoolFlag{Name: "color", Usage: "force colored output"},
		cli.BoolFlag{Name: "quiet,q", Usage: "suppress progress and informational output"},
		cli.BoolFlag{Name: "statistics,s", Usage: "append closedown telemetry to --statistics-file"},
		cli.StringFlag{Name: "statistics-file", Usage: "CSV file statistics rows are appended to", Value: defaultStatsPath()},
		cli.BoolFlag{Name: "debug,d", Usage: "verbose client-side logging"},
		cli.BoolFlag{Name: "remote-debug", Usage: "ask the remote side to also log verbosely"},
		cli.StringFlag{Name: "remote-debug-file", Usage: "snappy-compressed trace file for --remote-debug", Value: defaultTraceFilePath()},
		cli.BoolFlag{Name: "dry-run", Usage: "perform the handshake and negotiation, then stop"},
		cli.BoolFlag{Name: "show-config", Usage: "print resolved configuration and exit"},
		cli.BoolFlag{Name: "remote-config", Usage: "also print the server's resolved configuration"},
		cli.StringSliceFlag{Name: "config-files", Usage: "user config file(s), overrides the platform default"},
		cli.BoolFlag{Name: "help-buffers", Usage: "print advice for raising OS UDP buffer limits and exit"},
		cli.BoolFlag{Name: "server", Usage: "internal: run as the remote half on stdin/stdout", Hidden: true},
	}
	myApp.Action = run

	if err := myApp.Run(os.Args); err != nil {
		log.Printf("%+v\n", err)
		os.Exit(errcode.ExitCode(errcode.KindOf(err)))
	}
}

func run(c *cli.Context) error {
	if c.Bool("help-buffers") {
		printBufferAdvice()
		return nil
	}

	overrides, err := overridesFromFlags(c)
	if err != nil {
		return errcode.Wrap(errcode.KindConfig, err)
	}

	if c.Bool("server") {
		return runServer(c, overrides)
	}
	return runClient(c, overrides)
}

func runServer(c *cli.Context, overrides config.Overrides) error {
	hostToken := server.ClientHostToken(os.Getenv("SSH_CONNECTION"))
	if hostToken == "" {
		hostToken = server.ClientHostToken(os.Getenv("SSH_CLIENT"))
	}

	userDirectives, systemDirectives, err := loadDirectives(c, hostToken)
	if err != nil {
		return errcode.Wrap(errcode.KindConfig, err)
	}
	resolved, err := config.Resolve(overrides, userDirectives, systemDirectives)
	if err != nil {
		return errcode.Wrap(errcode.KindConfig, err)
	}

	if resolved.ShowConfig.Value {
		printResolved("server", resolved)
		return nil
	}

	return server.Run(context.Background(), struct {
		io.Reader
		io.Writer
	}{os.Stdin, os.Stdout}, server.Options{
		Resolved:  resolved,
		TraceFile: c.String("remote-debug-file"),
	})
}

func runClient(c *cli.Context, overrides config.Overrides) error {
	if c.NArg() != 2 {
		cli.ShowAppHelp(c)
		return errcode.Wrap(errcode.KindConfig, errors.New("qcp: expected SOURCE and DESTINATION"))
	}
	src := c.Args().Get(0)
	dst := c.Args().Get(1)

	srcHost, srcPath, srcRemote := parseTarget(src)
	dstHost, dstPath, dstRemote := parseTarget(dst)

	var (
		direction  control.Direction
		remoteHost string
		remotePath string
		localPath  string
	)
	switch {
	case srcRemote && !dstRemote:
		direction = control.DirectionGet
		remoteHost, remotePath, localPath = srcHost, srcPath, dstPath
	case dstRemote && !srcRemote:
		direction = control.DirectionPut
		remoteHost, remotePath, localPath = dstHost, dstPath, srcPath
	case srcRemote && dstRemote:
		return errcode.Wrap(errcode.KindConfig, errors.New("qcp: copying between two remote hosts is not supported"))
	default:
		return errcode.Wrap(errcode.KindConfig, errors.New("qcp: one of SOURCE or DESTINATION must be [user@]host:path"))
	}

	if u := c.String("remote-user"); u != "" {
		remoteHost = u + "@" + stripUser(remoteHost)
	}

	hostToken := stripUser(remoteHost)
	userDirectives, systemDirectives, err := loadDirectives(c, hostToken)
	if err != nil {
		return errcode.Wrap(errcode.KindConfig, err)
	}
	resolved, err := config.Resolve(overrides, userDirectives, systemDirectives)
	if err != nil {
		return errcode.Wrap(errcode.KindConfig, err)
	}

	if resolved.ShowConfig.Value {
		printResolved("client", resolved)
		return nil
	}

	if resolved.DryRun.Value && !resolved.Quiet.Value {
		fmt.Fprintln(os.Stderr, "qcp: --dry-run requested; handshake only")
	}

	result, err := client.Run(context.Background(), client.Options{
		Host:       remoteHost,
		RemotePath: remotePath,
		LocalPath:  localPath,
		Direction:  direction,
		Resolved:   resolved,
		SSHOptions: c.StringSlice("S"),
	})
	if err != nil {
		return err
	}

	if resolved.Statistics.Value && !resolved.DryRun.Value {
		if serr := stats.AppendClosedownCSV(c.String("statistics-file"), time.Now(), result.Closedown); serr != nil {
			log.Printf("qcp: failed to record statistics: %v", serr)
		}
	}
	return nil
}

// parseTarget classifies an scp-style argument as [user@]host:path or a
// bare local path. A leading '/', './' or '../' (or "." / "..") always
// means local; any other argument with a ':' after its first character is
// treated as remote, so "C:\x" or "dir/a:b" is read as host "C" or
// "dir/a".
func parseTarget(s string) (host, path string, remote bool) {
	if strings.HasPrefix(s, "/") || strings.HasPrefix(s, "./") || strings.HasPrefix(s, "../") || s == "." || s == ".." {
		return "", s, false
	}
	idx := strings.IndexByte(s, ':')
	if idx <= 0 {
		return "", s, false
	}
	return s[:idx], s[idx+1:], true
}

func stripUser(host string) string {
	if i := strings.IndexByte(host, '@'); i >= 0 {
		return host[i+1:]
	}
	return host
}

// cliField wraps a command-line-supplied value with command-line
// provenance, so --show-config reports it correctly rather than as
// "default".
func cliField[T any](v T) config.Field[T] {
	return config.Field[T]{Value: v, Set: true, Source: config.Provenance{Kind: config.SourceCommandLine}}
}

func overridesFromFlags(c *cli.Context) (config.Overrides, error) {
	var o config.Overrides
	if c.IsSet("rx") {
		o.Rx = cliField(c.Uint64("rx"))
	}
	if c.IsSet("tx") {
		o.Tx = cliField(c.Uint64("tx"))
	}
	if c.IsSet("rtt") {
		o.RTTMillis = cliField(uint32(c.Uint("rtt")))
	}
	if c.IsSet("congestion") {
		cc, err := parseCongestion(c.String("congestion"))
		if err != nil {
			return o, err
		}
		o.Congestion = cliField(cc)
	}
	if c.IsSet("initial-congestion-window") {
		o.InitialCwnd = cliField(c.Uint64("initial-congestion-window"))
	}
	if c.IsSet("udp-buffer") {
		o.UDPBuffer = cliField(c.Uint64("udp-buffer"))
	}
	if c.IsSet("port") {
		pr, err := config.ParsePortRange(c.String("port"))
		if err != nil {
			return o, errors.Wrap(err, "qcp: --port")
		}
		o.Port = cliField(pr)
	}
	if c.IsSet("remote-port") {
		pr, err := config.ParsePortRange(c.String("remote-port"))
		if err != nil {
			return o, errors.Wrap(err, "qcp: --remote-port")
		}
		o.RemotePort = cliField(pr)
	}
	if c.IsSet("timeout") {
		o.Timeout = cliField(uint32(c.Uint("timeout")))
	}
	if c.Bool("4") {
		o.AddressFamily = cliField(config.AddressFamilyV4)
	} else if c.Bool("6") {
		o.AddressFamily = cliField(config.AddressFamilyV6)
	}
	if c.IsSet("ssh") {
		o.Ssh = cliField(c.String("ssh"))
	}
	if sshConfigs := c.StringSlice("ssh-config"); len(sshConfigs) > 0 {
		o.SshConfig = cliField(strings.Join(sshConfigs, ","))
	}
	if c.IsSet("ssh-subsystem") {
		o.SshSubsystem = cliField(c.String("ssh-subsystem"))
	}
	if c.IsSet("remote-user") {
		o.RemoteUser = cliField(c.String("remote-user"))
	}
	if c.IsSet("preserve") {
		o.Preserve = cliField(c.Bool("preserve"))
	}
	if c.IsSet("time-format") {
		o.TimeFormat = cliField(c.String("time-format"))
	}
	if c.IsSet("color") {
		o.Color = cliField(c.Bool("color"))
	}
	if c.IsSet("quiet") {
		o.Quiet = cliField(c.Bool("quiet"))
	}
	if c.IsSet("statistics") {
		o.Statistics = cliField(c.Bool("statistics"))
	}
	if c.IsSet("debug") {
		o.Debug = cliField(c.Bool("debug"))
	}
	if c.IsSet("remote-debug") {
		o.RemoteDebug = cliField(c.Bool("remote-debug"))
	}
	o.DryRun = config.Field[bool]{Value: c.Bool("dry-run"), Set: c.IsSet("dry-run")}
	o.ShowConfig = config.Field[bool]{Value: c.Bool("show-config"), Set: c.IsSet("show-config")}
	if c.IsSet("remote-config") {
		o.RemoteConfig = cliField(c.Bool("remote-config"))
	}
	return o, nil
}

func parseCongestion(s string) (config.Congestion, error) {
	switch strings.ToLower(s) {
	case "cubic":
		return config.CongestionCubic, nil
	case "newreno", "new-reno":
		return config.CongestionNewReno, nil
	case "bbr":
		return config.CongestionBBR, nil
	default:
		return config.CongestionUnset, errors.Errorf("qcp: unknown congestion controller %q", s)
	}
}

// loadDirectives reads the user and system config files, matching Host
// blocks against hostToken (spec.md §4.7 Stage A). A missing file is not
// an error: an unconfigured machine still runs on defaults.
func loadDirectives(c *cli.Context, hostToken string) (user, system []config.Directive, err error) {
	userFiles := c.StringSlice("config-files")
	if len(userFiles) == 0 {
		userFiles = []string{defaultUserConfigPath()}
	}
	for _, f := range userFiles {
		d, ferr := config.ParseFile(f, hostToken)
		if ferr != nil {
			if os.IsNotExist(errors.Cause(ferr)) {
				continue
			}
			return nil, nil, ferr
		}
		user = append(user, d...)
	}

	d, ferr := config.ParseFile(defaultSystemConfigPath(), hostToken)
	if ferr == nil {
		system = d
	} else if !os.IsNotExist(errors.Cause(ferr)) {
		return nil, nil, ferr
	}
	return user, system, nil
}

func defaultUserConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".qcp", "config")
}

func defaultSystemConfigPath() string {
	return "/etc/qcp/config"
}

func defaultTraceFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "qcp-server-trace.snappy"
	}
	return filepath.Join(home, ".qcp", "server-trace.snappy")
}

func defaultStatsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "qcp-statistics.csv"
	}
	return filepath.Join(home, ".qcp", "statistics.csv")
}

func printResolved(side string, r config.Resolved) {
	fmt.Printf("qcp %s resolved configuration:\n", side)
	fmt.Printf("  rx=%v tx=%v rtt=%v congestion=%v initial-cwnd=%v udp-buffer=%v\n",
		r.Rx.Value, r.Tx.Value, r.RTTMillis.Value, r.Congestion.Value, r.InitialCwnd.Value, r.UDPBuffer.Value)
	fmt.Printf("  port=%+v remote-port=%+v timeout=%v address-family=%v\n",
		r.Port.Value, r.RemotePort.Value, r.Timeout.Value, r.AddressFamily.Value)
	fmt.Printf("  ssh=%q ssh-config=%q ssh-subsystem=%q remote-user=%q\n",
		r.Ssh.Value, r.SshConfig.Value, r.SshSubsystem.Value, r.RemoteUser.Value)
	fmt.Printf("  preserve=%v quiet=%v statistics=%v debug=%v remote-debug=%v dry-run=%v\n",
		r.Preserve.Value, r.Quiet.Value, r.Statistics.Value, r.Debug.Value, r.RemoteDebug.Value, r.DryRun.Value)
	fmt.Printf("  sources: rx=%s timeout=%s ssh=%s\n", r.Rx.Source, r.Timeout.Source, r.Ssh.Source)
}

func printBufferAdvice() {
	color.Yellow("qcp: to raise kernel UDP buffer limits, try:")
	fmt.Println("  sudo sysctl -w net.core.rmem_max=26214400")
	fmt.Println("  sudo sysctl -w net.core.wmem_max=26214400")
}
