package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"github.com/sanity-io/litter"
	"golang.org/x/term"

	"github.com/dshills/urilens/internal/app"
	"github.com/dshills/urilens/internal/config"
	"github.com/dshills/urilens/internal/detect/match"
	"github.com/dshills/urilens/internal/logging"
	"github.com/dshills/urilens/internal/renderer"
	"github.com/dshills/urilens/internal/script"
	"github.com/dshills/urilens/internal/watcher"
)

var isTerminal = term.IsTerminal

// newFlagSet creates a flag set that reports to stderr.
func newFlagSet(name, usage string, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: urilens %s %s\n\nOptions:\n", name, usage)
		fs.PrintDefaults()
	}
	return fs
}

// parse parses args and reports the exit code to use when the command
// should stop.
func parse(fs *flag.FlagSet, args []string, minArgs int) (int, bool) {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0, false
		}
		return 2, false
	}
	if fs.NArg() < minArgs {
		fs.Usage()
		return 2, false
	}
	return 0, true
}

func runScan(args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("scan", "[options] file...", stderr)
	var g globalFlags
	g.register(fs, false)
	dump := fs.Bool("dump", false, "Dump the matches with their grammar parts")
	images := fs.Bool("images", false, "Only list image data URIs")
	if code, ok := parse(fs, args, 1); !ok {
		return code
	}

	log, err := g.logger(stderr)
	if err != nil {
		return fail(stderr, err)
	}

	status := 0
	for _, path := range fs.Args() {
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			status = 1
			continue
		}

		matches := match.FindMatches(string(data))
		if *images {
			kept := matches[:0]
			for _, m := range matches {
				if m.IsImage() {
					kept = append(kept, m)
				}
			}
			matches = kept
		}
		log.Debug("%s: %d data URIs", path, len(matches))

		if *dump {
			fmt.Fprintf(stdout, "%s: %s\n", path, litter.Options{StripPackageNames: true}.Sdump(matches))
			continue
		}

		prefix := ""
		if fs.NArg() > 1 {
			prefix = path + ":"
		}
		for _, m := range matches {
			fmt.Fprintf(stdout, "%s%d-%d %s\n", prefix, m.Region.Start, m.Region.End, m.URI)
		}
	}
	return status
}

// writerClipboard sends copied text to a writer, one line per copy.
type writerClipboard struct{ w io.Writer }

func (c writerClipboard) WriteAll(text string) error {
	_, err := fmt.Fprintln(c.w, text)
	return err
}

// statusPrinter prints status messages, except quiet.
type statusPrinter struct {
	w     io.Writer
	quiet string
}

func (p statusPrinter) SetStatus(msg string) {
	if msg != "" && msg != p.quiet {
		fmt.Fprintln(p.w, msg)
	}
}

func writesToTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isTerminal(int(f.Fd()))
}

func runEncode(args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("encode", "[options] file", stderr)
	var g globalFlags
	g.register(fs, true)
	toStdout := fs.Bool("stdout", false, "Print the data URI instead of copying it")
	if code, ok := parse(fs, args, 1); !ok {
		return code
	}

	log, err := g.logger(stderr)
	if err != nil {
		return fail(stderr, err)
	}
	cfg, err := g.config(log)
	if err != nil {
		return fail(stderr, err)
	}
	defer cfg.Close()

	var clip app.Clipboard = app.SystemClipboard{}
	status := statusPrinter{w: stderr}
	if *toStdout || !writesToTerminal(stdout) || !(app.SystemClipboard{}).Available() {
		clip = writerClipboard{w: stdout}
		status.quiet = app.StatusCopied
	}

	a := app.New(
		app.WithConfig(cfg),
		app.WithClipboard(clip),
		app.WithStatus(status),
		app.WithLogger(log),
	)
	if err := a.Start(); err != nil {
		return fail(stderr, err)
	}
	defer a.Shutdown()

	if _, err := a.OpenFile(fs.Arg(0)); err != nil {
		status.SetStatus(app.StatusAccessError + err.Error())
		return 1
	}
	if err := a.CreateDataURI(); err != nil {
		log.Debug("encode: %v", err)
		return 1
	}
	return 0
}

func runView(args []string, _, stderr io.Writer) int {
	fs := newFlagSet("view", "[options] file", stderr)
	var g globalFlags
	g.register(fs, true)
	logFile := fs.String("log", "", "Append logs to this file (logs are discarded otherwise)")
	if code, ok := parse(fs, args, 1); !ok {
		return code
	}

	var logOut io.Writer = io.Discard
	if *logFile != "" {
		f, err := os.OpenFile(*logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return fail(stderr, err)
		}
		defer f.Close()
		logOut = f
	}

	log, err := g.logger(logOut)
	if err != nil {
		return fail(stderr, err)
	}
	cfg, err := g.config(log)
	if err != nil {
		return fail(stderr, err)
	}
	defer cfg.Close()

	screen, err := tcell.NewScreen()
	if err != nil {
		return fail(stderr, fmt.Errorf("failed to create terminal: %w", err))
	}
	if err := screen.Init(); err != nil {
		return fail(stderr, fmt.Errorf("failed to initialize terminal: %w", err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = view(ctx, screen, cfg, log, fs.Arg(0))
	screen.Fini()
	if err != nil && !errors.Is(err, context.Canceled) {
		return fail(stderr, err)
	}
	return 0
}

// view shows path on screen until the user quits. The file is reloaded
// when it changes on disk and the settings follow the settings file.
func view(ctx context.Context, screen tcell.Screen, cfg *config.Config, log *logging.Logger, path string) error {
	color, err := cfg.Settings().Color()
	if err != nil {
		return err
	}

	v := renderer.New(screen, renderer.WithLogger(log), renderer.WithHighlightColor(color))
	a := app.New(
		app.WithConfig(cfg),
		app.WithHighlighter(v),
		app.WithPreviewer(v),
		app.WithStatus(v),
		app.WithLogger(log),
	)
	if err := a.Start(); err != nil {
		return err
	}
	defer a.Shutdown()

	if _, err := v.Subscribe(a.Bus()); err != nil {
		return err
	}

	doc, err := a.OpenFile(path)
	if err != nil {
		return app.NewOperationError("open", path, err)
	}
	v.Attach(a, doc, doc.Name)

	if err := cfg.Watch(watcher.DefaultDelay); err != nil {
		log.Warn("settings will not reload: %v", err)
	}

	w, err := watcher.New(func(string) {
		if err := a.Reload(doc.ID()); err != nil {
			v.SetStatus("reload failed: " + err.Error())
			return
		}
		v.SetStatus("reloaded")
	}, watcher.WithLogger(log))
	if err != nil {
		log.Warn("file will not reload: %v", err)
	} else {
		defer w.Close()
		if err := w.Add(doc.Path()); err != nil {
			log.Warn("file will not reload: %v", err)
		}
	}

	return v.Run(ctx)
}

func runScript(args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("script", "[options] file.lua [args...]", stderr)
	var g globalFlags
	g.register(fs, false)
	timeout := fs.Duration("timeout", script.DefaultTimeout, "Maximum run time (0 for none)")
	if code, ok := parse(fs, args, 1); !ok {
		return code
	}

	log, err := g.logger(stderr)
	if err != nil {
		return fail(stderr, err)
	}

	s := script.NewState(
		script.WithOutput(stdout),
		script.WithTimeout(*timeout),
		script.WithLogger(log),
	)
	defer s.Close()
	s.SetArgs(fs.Args()[1:])

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := s.DoFile(ctx, fs.Arg(0)); err != nil {
		return fail(stderr, err)
	}
	return 0
}
