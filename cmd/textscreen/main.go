// Package main is the entry point for the textscreen server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/dshills/textscreen/internal/app"
	"github.com/dshills/textscreen/internal/config"
	"github.com/dshills/textscreen/internal/video/backend"
	"github.com/dshills/textscreen/internal/video/core"
	"github.com/dshills/textscreen/internal/video/display"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

type options struct {
	configPath string
	backends   string
	logLevel   string
	width      int
	height     int
	mouseFlip  bool
	dumpConfig bool
	set        map[string]bool
}

func run() int {
	opts, code, done := parseFlags(os.Args[1:])
	if done {
		return code
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	applyFlags(cfg, opts)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if opts.dumpConfig {
		data, err := cfg.TOML()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		os.Stdout.Write(data)
		return 0
	}

	logOut, closeLog, err := logOutput(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to open log: %v\n", err)
		return 1
	}
	defer closeLog()
	logger := app.NewLogger(app.LoggerConfig{
		Level:  app.ParseLogLevel(cfg.Log.Level),
		Output: logOut,
		Prefix: "textscreen",
	})

	palette, err := cfg.ColorPalette()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	d := display.New(cfg.Display.Width, cfg.Display.Height,
		display.WithLogger(logger.WithComponent("display").Slog()))

	application := app.New(d, logger, app.Options{
		MouseFlip: cfg.Display.MouseFlip,
		Signals:   true,
		TTY:       int(os.Stdin.Fd()),
	})

	readers, closeBackends, err := attachBackends(application, cfg, palette)
	if err != nil {
		closeBackends()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer closeBackends()

	if opts.configPath != "" {
		w, err := config.Watch(opts.configPath, func(c *config.Config, err error) {
			if err != nil {
				logger.Warn("config reload failed", "error", err)
				return
			}
			logger.SetLevel(app.ParseLogLevel(c.Log.Level))
			logger.Info("config reloaded", "level", c.Log.Level)
		})
		if err != nil {
			logger.Warn("config watcher disabled", "error", err)
		} else {
			defer w.Close()
		}
	}

	application.SetHandler(newDemo().handle)
	for _, r := range readers {
		go r()
	}
	application.Post(app.Event{Kind: app.EventRedraw})

	err = application.Run(context.Background())

	snap := application.Metrics().Snapshot()
	logger.Info("exiting",
		"flushes", snap.FlushCount,
		"avg_flush_ns", snap.AvgFlushNs,
		"drags_accelerated", snap.DragsAccelerated,
		"drags_redrawn", snap.DragsRedrawn,
		"events", snap.EventCount,
	)

	if err != nil {
		var fatal *app.FatalSignalError
		if errors.As(err, &fatal) {
			// Reached only if re-raising the signal did not end the process.
			return 1
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func parseFlags(args []string) (opts options, code int, done bool) {
	fs := flag.NewFlagSet("textscreen", flag.ContinueOnError)
	var showVersion, showHelp bool

	fs.StringVar(&opts.configPath, "config", "", "Path to configuration file")
	fs.StringVar(&opts.configPath, "c", "", "Path to configuration file (shorthand)")
	fs.StringVar(&opts.backends, "backend", "", "Comma separated backends (tcell, ansi, null)")
	fs.StringVar(&opts.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	fs.IntVar(&opts.width, "width", 0, "Initial screen width")
	fs.IntVar(&opts.height, "height", 0, "Initial screen height")
	fs.BoolVar(&opts.mouseFlip, "mouse-flip", true, "Invert the cell under the mouse pointer")
	fs.BoolVar(&opts.dumpConfig, "dump-config", false, "Print the effective configuration and exit")
	fs.BoolVar(&showVersion, "version", false, "Show version information")
	fs.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	fs.BoolVar(&showHelp, "help", false, "Show help message")
	fs.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	fs.Usage = func() {
		out := fs.Output()
		fmt.Fprintf(out, "textscreen - text-mode window server display\n\n")
		fmt.Fprintf(out, "Usage: textscreen [options]\n\n")
		fmt.Fprintf(out, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(out, "\nExamples:\n")
		fmt.Fprintf(out, "  textscreen                          Draw on this terminal\n")
		fmt.Fprintf(out, "  textscreen -c textscreen.toml       Use a config file\n")
		fmt.Fprintf(out, "  textscreen -backend null -dump-config\n")
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return opts, 0, true
		}
		return opts, 2, true
	}

	if showHelp {
		fs.Usage()
		return opts, 0, true
	}

	if showVersion {
		fmt.Printf("textscreen %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		return opts, 0, true
	}

	opts.set = make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { opts.set[f.Name] = true })

	if opts.set["log-level"] && !app.ValidLogLevel(opts.logLevel) {
		fmt.Fprintf(os.Stderr, "Error: invalid log level %q (must be debug, info, warn, or error)\n", opts.logLevel)
		return opts, 1, true
	}

	return opts, 0, false
}

// applyFlags overrides cfg with the flags given on the command line.
func applyFlags(cfg *config.Config, opts options) {
	if opts.set["backend"] {
		cfg.Backends = nil
		for _, b := range strings.Split(opts.backends, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.Backends = append(cfg.Backends, b)
			}
		}
	}
	if opts.set["log-level"] {
		cfg.Log.Level = strings.ToLower(opts.logLevel)
	}
	if opts.set["width"] {
		cfg.Display.Width = opts.width
	}
	if opts.set["height"] {
		cfg.Display.Height = opts.height
	}
	if opts.set["mouse-flip"] {
		cfg.Display.MouseFlip = opts.mouseFlip
	}
}

// logOutput picks where logs go. Backends drawing on this terminal would
// be corrupted by stderr output, so logs are dropped without a log file.
func logOutput(cfg *config.Config) (io.Writer, func(), error) {
	if cfg.Log.File != "" {
		f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, func() {}, err
		}
		return f, func() { f.Close() }, nil
	}
	if slices.Contains(cfg.Backends, config.BackendTcell) ||
		(slices.Contains(cfg.Backends, config.BackendANSI) && cfg.ANSI.Output == "") {
		return io.Discard, func() {}, nil
	}
	return os.Stderr, func() {}, nil
}

// attachBackends creates the configured backends in order. It returns the
// input readers to start and a function closing opened devices.
func attachBackends(application *app.Application, cfg *config.Config, palette core.Palette) ([]func(), func(), error) {
	d := application.Display()
	var readers []func()
	var closers []func()

	for _, name := range cfg.Backends {
		switch name {
		case config.BackendTcell:
			t, err := backend.NewTcell(palette)
			if err != nil {
				return nil, closeAllFn(closers), &app.InitError{Component: "tcell", Err: err}
			}
			if _, err := d.HW().Attach(name, t); err != nil {
				t.Cleanup()
				return nil, closeAllFn(closers), err
			}
			if w, h := t.Size(); w > 0 && h > 0 {
				d.Resize(w, h)
			}
			readers = append(readers, func() { readTcell(application, name, t) })

		case config.BackendANSI:
			out := io.Writer(os.Stdout)
			if cfg.ANSI.Output != "" {
				f, err := os.OpenFile(cfg.ANSI.Output, os.O_WRONLY, 0)
				if err != nil {
					return nil, closeAllFn(closers), &app.InitError{Component: "ansi", Err: err}
				}
				closers = append(closers, func() { f.Close() })
				out = f
			}
			a := backend.NewANSI(out, palette)
			if _, err := d.HW().Attach(name, a); err != nil {
				return nil, closeAllFn(closers), err
			}
			if w, h, ok := a.Size(); ok && !slices.Contains(cfg.Backends, config.BackendTcell) {
				d.Resize(w, h)
			}

		case config.BackendNull:
			w, h := d.Size()
			if _, err := d.HW().Attach(name, backend.NewNull(w, h)); err != nil {
				return nil, closeAllFn(closers), err
			}
		}
	}
	return readers, closeAllFn(closers), nil
}

func closeAllFn(closers []func()) func() {
	return func() {
		for _, c := range slices.Backward(closers) {
			c()
		}
	}
}

// readTcell turns terminal input into loop events until the screen is
// finalized.
func readTcell(application *app.Application, name string, t *backend.Tcell) {
	for {
		in := t.PollInput()
		var ev app.Event
		switch in.Kind {
		case backend.InputClosed:
			return
		case backend.InputKey:
			ev = app.Event{Kind: app.EventKey, Rune: in.Rune, Name: in.Name}
		case backend.InputMouse:
			ev = app.Event{Kind: app.EventMouse, Backend: name, X: in.X, Y: in.Y}
		case backend.InputResize:
			ev = app.Event{Kind: app.EventResize, Width: in.Width, Height: in.Height}
		default:
			continue
		}
		if !application.Post(ev) {
			return
		}
	}
}
