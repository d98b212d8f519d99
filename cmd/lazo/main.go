// Command lazo runs Lazo scripts, one-liners, or an interactive REPL.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/jcgregorio/logger"
	"github.com/urfave/cli/v2"
	"golang.org/x/term"

	"github.com/KajizukaTaichi/lazo/config"
	lazo "github.com/KajizukaTaichi/lazo/core"
	sqlite "github.com/KajizukaTaichi/lazo/mod-sqlite"
	timemod "github.com/KajizukaTaichi/lazo/mod-time"
	"github.com/KajizukaTaichi/lazo/repl"
	"github.com/KajizukaTaichi/lazo/session"
)

var (
	configFlag = &cli.StringFlag{
		Name:  "config",
		Usage: "Path to the YAML config file.",
	}
	verboseFlag = &cli.BoolFlag{
		Name:  "verbose",
		Usage: "Log every evaluated form to stderr.",
	}
	oneLinerFlag = &cli.StringFlag{
		Name:    "one-liner",
		Aliases: []string{"l"},
		Usage:   "Evaluate `CODE` and exit.",
	}
)

func main() {
	app := &cli.App{
		Name:      "lazo",
		Usage:     "A small Lisp with unevaluated arguments.",
		Version:   lazo.Version,
		ArgsUsage: "[FILE]",
		Flags:     []cli.Flag{configFlag, verboseFlag, oneLinerFlag},
		Action:    run,
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	cfg, err := config.Load(c.String(configFlag.Name))
	if err != nil {
		return err
	}
	if c.Bool(verboseFlag.Name) {
		cfg.Verbose = true
	}
	log := logger.NewFromOptions(&logger.Options{SyncWriter: os.Stderr, IncludeDebug: cfg.Verbose})

	modules, closeModules := loadModules(cfg, log)
	defer closeModules()

	switch {
	case c.IsSet(oneLinerFlag.Name):
		return runOneLiner(c.String(oneLinerFlag.Name), cfg, log, lazo.DefaultHost(), modules)
	case c.Args().Present():
		return runFile(c.Args().First(), cfg, log, modules)
	default:
		return runREPL(cfg, log, modules)
	}
}

// loadModules builds the builtin modules named in cfg. The returned func
// releases their resources.
func loadModules(cfg config.Config, log *logger.Logger) ([]map[string]lazo.Builtin, func()) {
	var modules []map[string]lazo.Builtin
	closeFn := func() {}
	if cfg.HasModule("sqlite") {
		db := sqlite.New(log)
		modules = append(modules, db.Builtins())
		closeFn = func() {
			if err := db.Close(); err != nil {
				log.Errorf("closing sqlite: %s", err)
			}
		}
	}
	if cfg.HasModule("time") {
		modules = append(modules, timemod.New().Builtins())
	}
	return modules, closeFn
}

func newSession(cfg config.Config, log *logger.Logger, host *lazo.Host, mode session.Mode, modules []map[string]lazo.Builtin) *session.Session {
	return session.New(
		session.WithHost(host),
		session.WithLogger(log),
		session.WithMode(mode),
		session.WithModules(modules...),
		session.WithMaxTraces(cfg.MaxTraces),
	)
}

func runFile(path string, cfg config.Config, log *logger.Logger, modules []map[string]lazo.Builtin) error {
	s := newSession(cfg, log, lazo.DefaultHost(), session.Stop, modules)
	return s.RunFile(path)
}

// runOneLiner evaluates code for its effects; values are not echoed.
func runOneLiner(code string, cfg config.Config, log *logger.Logger, host *lazo.Host, modules []map[string]lazo.Builtin) error {
	s := newSession(cfg, log, host, session.Stop, modules)
	_, err := s.Eval(code)
	return err
}

func runREPL(cfg config.Config, log *logger.Logger, modules []map[string]lazo.Builtin) error {
	interactive := term.IsTerminal(int(os.Stdin.Fd()))

	var in repl.LineReader
	closeIn := func() {}
	if interactive {
		tr := repl.NewTerminalReader(cfg.HistoryFile)
		in = tr
		closeIn = func() {
			if err := tr.Close(); err != nil {
				log.Warningf("closing terminal: %s", err)
			}
		}
	} else {
		in = repl.NewPlainReader(os.Stdin)
	}
	defer closeIn()

	// (exit) must restore the terminal before the process goes away.
	host := lazo.NewHost(os.Stdin, os.Stdout, func(code int) {
		closeIn()
		os.Exit(code)
	})
	s := newSession(cfg, log, host, session.Continue, modules)

	r := repl.New(s, in, color.Output, repl.Options{
		Prompt:             cfg.Prompt,
		ContinuationPrompt: cfg.ContinuationPrompt,
		Color:              useColor(cfg.Color, term.IsTerminal(int(os.Stdout.Fd()))),
	})
	return r.Run()
}

// useColor resolves the configured colour mode against whether stdout is a
// terminal.
func useColor(mode string, tty bool) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	default:
		return tty
	}
}
