// Package main is the entry point for the urilens command.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dshills/urilens/internal/config"
	"github.com/dshills/urilens/internal/logging"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type command struct {
	name    string
	summary string
	run     func(args []string, stdout, stderr io.Writer) int
}

func commands() []command {
	return []command{
		{"scan", "List the data URIs in files", runScan},
		{"encode", "Encode a file as a data URI and copy it", runEncode},
		{"view", "Open a file in the terminal viewer", runView},
		{"script", "Run a Lua script with the urilens module", runScript},
		{"version", "Show version information", runVersion},
	}
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		usage(stderr)
		return 2
	}

	name, rest := args[0], args[1:]
	switch name {
	case "-h", "-help", "--help", "help":
		usage(stdout)
		return 0
	case "-v", "-version", "--version":
		name = "version"
	}

	for _, c := range commands() {
		if c.name == name {
			return c.run(rest, stdout, stderr)
		}
	}
	fmt.Fprintf(stderr, "Error: unknown command %q\n\n", name)
	usage(stderr)
	return 2
}

func usage(w io.Writer) {
	fmt.Fprintf(w, "urilens - find, preview and create data URIs\n\n")
	fmt.Fprintf(w, "Usage: urilens <command> [options] [args...]\n\n")
	fmt.Fprintf(w, "Commands:\n")
	for _, c := range commands() {
		fmt.Fprintf(w, "  %-8s %s\n", c.name, c.summary)
	}
	fmt.Fprintf(w, "\nRun 'urilens <command> -h' for the options of a command.\n")
}

func runVersion(_ []string, stdout, _ io.Writer) int {
	fmt.Fprintf(stdout, "urilens %s\n", version)
	fmt.Fprintf(stdout, "Commit: %s\n", commit)
	fmt.Fprintf(stdout, "Built: %s\n", date)
	return 0
}

// globalFlags are shared by the commands that load settings.
type globalFlags struct {
	logLevel   string
	configPath string
	scopes     string
	timeout    string
}

func (g *globalFlags) register(fs *flag.FlagSet, withConfig bool) {
	fs.StringVar(&g.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	if !withConfig {
		return
	}
	fs.StringVar(&g.configPath, "config", defaultConfigPath(), "Path to the settings file (.toml, .json or .sublime-settings)")
	fs.StringVar(&g.configPath, "c", defaultConfigPath(), "Path to the settings file (shorthand)")
	fs.StringVar(&g.scopes, "scopes", "", "Comma separated scope selectors to observe (overrides active_scopes)")
	fs.StringVar(&g.timeout, "check-timeout", "", "Seconds of quiet before a rescan (overrides check_timeout)")
}

func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "urilens", "urilens.toml")
}

// logger builds the process logger from the flags and installs it as the
// default.
func (g *globalFlags) logger(out io.Writer) (*logging.Logger, error) {
	if !logging.ValidLevel(g.logLevel) {
		return nil, fmt.Errorf("invalid log level %q (must be debug, info, warn, or error)", g.logLevel)
	}
	cfg := logging.DefaultConfig()
	cfg.Level = logging.ParseLevel(g.logLevel)
	cfg.Output = out
	l := logging.New(cfg)
	logging.SetDefault(l)
	return l, nil
}

// config loads the settings layers with the flag overrides on top.
func (g *globalFlags) config(log *logging.Logger) (*config.Config, error) {
	overrides := make(map[string]any)
	if strings.TrimSpace(g.scopes) != "" {
		overrides[config.KeyActiveScopes] = g.scopes
	}
	if g.timeout != "" {
		overrides[config.KeyCheckTimeout] = g.timeout
	}

	cfg := config.New(
		config.WithPath(g.configPath),
		config.WithOverrides(overrides),
		config.WithLogger(log),
	)
	if err := cfg.Load(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func fail(stderr io.Writer, err error) int {
	fmt.Fprintf(stderr, "Error: %v\n", err)
	return 1
}
