package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/stlalpha/pocketscene/internal/config"
	"github.com/stlalpha/pocketscene/internal/display"
	"github.com/stlalpha/pocketscene/internal/engine"
	"github.com/stlalpha/pocketscene/internal/logging"
	"github.com/stlalpha/pocketscene/internal/runner"
	"github.com/stlalpha/pocketscene/internal/scene"
	"github.com/stlalpha/pocketscene/internal/scheduler"
	"github.com/stlalpha/pocketscene/internal/settings"
	"github.com/stlalpha/pocketscene/internal/simulator"
	"github.com/stlalpha/pocketscene/internal/storage"
)

// app holds the global flags and the loaded configuration.
type app struct {
	configPath string
	debug      bool
	logPath    string

	cfg     config.Config
	logFile io.Closer
}

func newRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:          "pocketscene",
		Short:        "Scene engine of a pocket scripting computer",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the simulator
  pocketscene

  # Run a script without the UI
  pocketscene run scripts/blink.lua

  # List a directory the way the file browser does
  pocketscene ls games
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runInteractive(cmd.Context())
		},
	}

	cmd.PersistentFlags().StringVar(&a.configPath, "config", config.FileName, "path to the configuration file")
	cmd.PersistentFlags().BoolVar(&a.debug, "debug", false, "enable debug logging")
	cmd.PersistentFlags().StringVar(&a.logPath, "log", "", "write the log to `FILE`")

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return a.setup(cmd)
	}
	cmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		if a.logFile != nil {
			return a.logFile.Close()
		}
		return nil
	}

	cmd.AddCommand(newRunCmd(a), newLsCmd(a))
	return cmd
}

// setup configures logging and loads the configuration.
func (a *app) setup(cmd *cobra.Command) error {
	if a.debug || os.Getenv("DEBUG") == "1" {
		logging.DebugEnabled = true
	}
	switch {
	case a.logPath != "":
		c, err := logging.ToFile(a.logPath)
		if err != nil {
			return err
		}
		a.logFile = c
	case cmd.Parent() == nil:
		// The simulator owns the terminal.
		log.SetOutput(io.Discard)
	}

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg
	return nil
}

func (a *app) layout() scene.Layout {
	return scene.Layout{
		MaxLineLength:   a.cfg.MaxLineLength,
		MaxLinesPerPage: a.cfg.MaxLinesPerPage,
		ScrollBudget:    a.cfg.ScrollBudget,
	}
}

func runnerOptions(cfg config.Config) runner.Options {
	return runner.Options{
		Interpreters: cfg.Interpreters,
		Timeout:      cfg.RunTimeout(),
		Cols:         uint16(cfg.MaxLineLength),
		Rows:         uint16(cfg.MaxLinesPerPage),
	}
}

// runInteractive hosts the scene engine in the terminal simulator.
func (a *app) runInteractive(parent context.Context) error {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return errors.New("the simulator needs a terminal; use 'pocketscene run' for headless runs")
	}
	cfg := a.cfg
	if cols, rows, err := term.GetSize(fd); err == nil {
		needCols := cfg.Display.Width/cfg.Display.FontWidth + 2
		needRows := cfg.Display.Height/cfg.Display.FontHeight + 3
		if cols < needCols || rows < needRows {
			logging.Warn("Terminal is %dx%d, the panel needs %dx%d", cols, rows, needCols, needRows)
		}
	}

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	prefs, err := settings.Open(ctx, cfg.SettingsDB)
	if err != nil {
		return err
	}
	defer prefs.Close()

	fs, err := storage.New(cfg.RootDir)
	if err != nil {
		return err
	}

	canvas := display.NewCanvas(cfg.Display.Width, cfg.Display.Height,
		cfg.Display.FontWidth, cfg.Display.FontHeight, termenv.EnvColorProfile())
	env := &scene.Env{
		Context:  ctx,
		Display:  canvas,
		Settings: prefs,
		Storage:  fs,
		Layout:   a.layout(),
	}
	eng := engine.New(env, nil)
	run := runner.New(runnerOptions(cfg), eng)
	env.Runner = run

	watcher, err := config.NewWatcher(a.configPath, func(c config.Config) {
		eng.Post(func() {
			run.SetOptions(runnerOptions(c))
			logging.Info("Configuration reloaded; layout changes apply on restart")
		})
	})
	if err != nil {
		logging.Warn("Config watcher disabled: %v", err)
	} else {
		defer watcher.Stop()
	}

	sched := scheduler.New()
	if err := sched.Add(scheduler.Job{Name: "autosave", Schedule: cfg.Autosave, Run: eng.Autosave}); err != nil {
		return err
	}
	go sched.Start(ctx)

	eng.Start(scene.KindStart, "")
	err = simulator.Run(simulator.New(eng, canvas), tea.WithContext(ctx))
	run.Cancel()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("simulator: %w", err)
	}
	return nil
}
