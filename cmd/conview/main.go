// Package main is the entry point for the conview terminal widget.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/dhowlett/conview/internal/config"
	"github.com/dhowlett/conview/internal/console"
	"github.com/dhowlett/conview/internal/console/surface"
	"github.com/dhowlett/conview/internal/source"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run())
}

type options struct {
	command    string
	configPath string
	logPath    string
	logLevel   string
}

func run() int {
	opts := parseFlags()

	logger, closeLog, err := newLogger(opts.logPath, opts.logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to open log: %v\n", err)
		return 1
	}
	defer closeLog()

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	conOpts, err := cfg.ConsoleOptions()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	conOpts.Logger = logger

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create screen: %v\n", err)
		return 1
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to init screen: %v\n", err)
		return 1
	}
	defer screen.Fini()
	screen.EnableMouse()
	screen.EnableFocus()

	a := &app{
		screen:  screen,
		console: console.New(conOpts),
		log:     logger,
	}
	a.console.SetSurface(surface.NewTerminal(screen))
	a.console.SetFocus(true)
	a.console.FitGridToWidget()

	// Spawn the shell on a PTY sized to the grid.
	size := a.console.GridSize()
	proc, err := source.StartProcess(exec.Command(opts.command), size.Cols, size.Rows)
	if err != nil {
		screen.Fini()
		fmt.Fprintf(os.Stderr, "Error: failed to start %s: %v\n", opts.command, err)
		return 1
	}
	defer proc.Wait()
	defer proc.Close()

	reader := a.console.AttachReader(proc)
	go a.pump(reader)

	// Live configuration reload, marshaled onto the event loop.
	watcher, err := config.Watch(opts.configPath, func(cfg config.Config) {
		ev := &configEvent{cfg: cfg}
		ev.t.SetEventNow()
		screen.PostEvent(ev)
	}, logger)
	if err != nil {
		logger.Warn("config watch unavailable", "error", err)
	} else {
		defer watcher.Close()
	}

	// Graceful shutdown on signals: quit the loop, let the deferred
	// cleanup restore the screen and reap the process.
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-signals
		done := &sourceDoneEvent{}
		done.t.SetEventNow()
		screen.PostEvent(done)
	}()

	a.loop()
	return 0
}

// app ties the screen, the console, and the event loop together. All
// console access happens on the loop goroutine.
type app struct {
	screen  tcell.Screen
	console *console.Console
	log     *slog.Logger
	pressed bool
	quit    bool
}

// chunkEvent carries bytes from the reader goroutine to the loop.
type chunkEvent struct {
	t    tcell.EventTime
	data []byte
}

func (e *chunkEvent) When() time.Time { return e.t.When() }

// sourceDoneEvent signals that the byte stream ended.
type sourceDoneEvent struct {
	t tcell.EventTime
}

func (e *sourceDoneEvent) When() time.Time { return e.t.When() }

// configEvent carries a reloaded configuration.
type configEvent struct {
	t   tcell.EventTime
	cfg config.Config
}

func (e *configEvent) When() time.Time { return e.t.When() }

// pump forwards reader chunks onto the event queue. It runs on its own
// goroutine and never touches the console.
func (a *app) pump(r *source.Reader) {
	for chunk := range r.Chunks() {
		ev := &chunkEvent{data: chunk}
		ev.t.SetEventNow()
		a.screen.PostEvent(ev)
	}
	done := &sourceDoneEvent{}
	done.t.SetEventNow()
	a.screen.PostEvent(done)
}

func (a *app) loop() {
	defer a.console.Close()

	a.console.Draw()
	for !a.quit {
		ev := a.screen.PollEvent()
		if ev == nil {
			return
		}
		a.handle(ev)
		if a.console.Dirty() {
			a.console.Draw()
		}
	}
}

func (a *app) handle(ev tcell.Event) {
	switch ev := ev.(type) {
	case *chunkEvent:
		a.console.Feed(ev.data)
	case *sourceDoneEvent:
		a.log.Info("source ended")
		a.quit = true
	case *configEvent:
		a.applyConfig(ev.cfg)
	case *tcell.EventResize:
		a.screen.Sync()
		a.console.FitGridToWidget()
	case *tcell.EventFocus:
		a.console.SetFocus(ev.Focused)
	case *tcell.EventMouse:
		a.handleMouse(ev)
	case *tcell.EventKey:
		a.handleKey(ev)
	}
}

func (a *app) applyConfig(cfg config.Config) {
	opts, err := cfg.ConsoleOptions()
	if err != nil {
		a.log.Warn("ignoring bad config", "error", err)
		return
	}
	a.console.SetPalette(opts.Palette)
	a.console.SetCursorStyle(opts.CursorStyle)
	a.console.SetUseBold(opts.UseBold)
	a.console.SetDrawEmptyCells(opts.DrawEmptyCells)
}

func (a *app) handleMouse(ev *tcell.EventMouse) {
	x, y := ev.Position()
	down := ev.Buttons()&tcell.Button1 != 0
	switch {
	case down && !a.pressed:
		a.console.MouseDown(x, y)
	case down && a.pressed:
		a.console.MouseMove(x, y)
	case !down && a.pressed:
		a.console.MouseUp(x, y)
	}
	a.pressed = down
}

// specialFromTcell maps tcell special keys to console keys.
var specialFromTcell = map[tcell.Key]console.Key{
	tcell.KeyEnter:      console.KeyEnter,
	tcell.KeyTab:        console.KeyTab,
	tcell.KeyBackspace:  console.KeyBackspace,
	tcell.KeyBackspace2: console.KeyBackspace,
	tcell.KeyEscape:     console.KeyEscape,
	tcell.KeyHome:       console.KeyHome,
	tcell.KeyEnd:        console.KeyEnd,
	tcell.KeyUp:         console.KeyUp,
	tcell.KeyDown:       console.KeyDown,
	tcell.KeyLeft:       console.KeyLeft,
	tcell.KeyRight:      console.KeyRight,
	tcell.KeyPgUp:       console.KeyPageUp,
	tcell.KeyPgDn:       console.KeyPageDown,
	tcell.KeyF1:         console.KeyF1,
	tcell.KeyF2:         console.KeyF2,
	tcell.KeyF3:         console.KeyF3,
	tcell.KeyF4:         console.KeyF4,
	tcell.KeyF5:         console.KeyF5,
	tcell.KeyF6:         console.KeyF6,
	tcell.KeyF7:         console.KeyF7,
	tcell.KeyF8:         console.KeyF8,
	tcell.KeyF9:         console.KeyF9,
	tcell.KeyF10:        console.KeyF10,
	tcell.KeyF11:        console.KeyF11,
	tcell.KeyF12:        console.KeyF12,
}

func (a *app) handleKey(ev *tcell.EventKey) {
	if ev.Key() == tcell.KeyCtrlQ {
		a.quit = true
		return
	}

	if k, ok := specialFromTcell[ev.Key()]; ok {
		a.console.HandleKey(k, console.ModNone, 0)
		return
	}

	// tcell folds ctrl-letter combinations into the C0 range.
	if ev.Key() >= tcell.KeyCtrlA && ev.Key() <= tcell.KeyCtrlZ {
		r := rune(ev.Key()-tcell.KeyCtrlA) + 'a'
		a.console.HandleKey(console.KeyRune, console.ModCtrl, r)
		return
	}

	if ev.Key() == tcell.KeyRune {
		a.console.HandleKey(console.KeyRune, console.ModNone, ev.Rune())
	}
}

func newLogger(path, level string) (*slog.Logger, func(), error) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	// The terminal itself is the display; without a log file,
	// diagnostics are discarded rather than corrupting the screen.
	var w io.Writer = io.Discard
	closeLog := func() {}
	if path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, err
		}
		w = f
		closeLog = func() { f.Close() }
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), closeLog, nil
}

func defaultShell() string {
	if shell := os.Getenv("SHELL"); shell != "" {
		return shell
	}
	return "/bin/sh"
}

func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "conview.toml"
	}
	return filepath.Join(dir, "conview", "conview.toml")
}

func parseFlags() options {
	var opts options
	var showVersion bool

	flag.StringVar(&opts.command, "cmd", defaultShell(), "Command to run in the terminal")
	flag.StringVar(&opts.configPath, "config", defaultConfigPath(), "Path to configuration file")
	flag.StringVar(&opts.configPath, "c", defaultConfigPath(), "Path to configuration file (shorthand)")
	flag.StringVar(&opts.logPath, "log", "", "Log file path (logging is off without one)")
	flag.StringVar(&opts.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.BoolVar(&showVersion, "version", false, "Show version information")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "conview - terminal display widget\n\n")
		fmt.Fprintf(os.Stderr, "Usage: conview [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nKeys:\n")
		fmt.Fprintf(os.Stderr, "  Ctrl-Q                      Quit\n")
		fmt.Fprintf(os.Stderr, "  Mouse drag                  Select text\n")
	}

	flag.Parse()

	if showVersion {
		fmt.Printf("conview %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		os.Exit(0)
	}

	switch opts.logLevel {
	case "debug", "info", "warn", "error":
	default:
		fmt.Fprintf(os.Stderr, "Error: invalid log level %q (must be debug, info, warn, or error)\n", opts.logLevel)
		os.Exit(1)
	}

	return opts
}
