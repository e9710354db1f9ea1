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

	"github.com/spf13/cobra"

	"github.com/lixenwraith/matrix-rain/audio"
	"github.com/lixenwraith/matrix-rain/config"
	"github.com/lixenwraith/matrix-rain/core"
	"github.com/lixenwraith/matrix-rain/engine"
	"github.com/lixenwraith/matrix-rain/terminal"
)

// Process exit codes
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

// exitError carries a process exit code out of cobra
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	flags := config.Defaults()
	var (
		configPath string
		list       bool
	)

	cmd := &cobra.Command{
		Use:   "matrix-rain",
		Short: "Falling glyph rain for the terminal",
		Long: `Renders a continuously falling waterfall of glyph streams until
interrupted. Press q, Esc or Ctrl-C to quit, Ctrl-L to redraw.`,
		Example: `  matrix-rain
  matrix-rain --color amber --speed 1.5
  matrix-rain -c '#ff00ff' --charset binary
  matrix-rain -c style:dracula --density 0.3`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if list {
				printLists(stdout)
				return nil
			}

			opts := config.Defaults()
			var warnings []string
			fileWarnings, err := config.LoadFile(configPath, &opts)
			if err != nil {
				warnings = append(warnings, err.Error()+", ignored")
			}
			warnings = append(warnings, fileWarnings...)
			if cmd.Flags().Changed("config") {
				if _, err := os.Stat(configPath); err != nil {
					warnings = append(warnings, fmt.Sprintf("config %s not found", configPath))
				}
			}

			opts.Override(flags, cmd.Flags().Changed)
			cfg, resolveWarnings := config.Resolve(opts)
			warnings = append(warnings, resolveWarnings...)
			for _, w := range warnings {
				fmt.Fprintf(stderr, "matrix-rain: warning: %s\n", w)
			}

			return run(cmd.Context(), cfg)
		},
	}

	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return &exitError{code: exitUsage, err: fmt.Errorf("%w\nRun '%s --help' for usage", err, c.CommandPath())}
	})

	f := cmd.Flags()
	f.StringVarP(&flags.Color, "color", "c", flags.Color,
		"stream color: "+strings.Join(config.SchemeNames(), ", ")+", #rrggbb or "+config.StylePrefix+"<name>")
	f.Float64VarP(&flags.Speed, "speed", "s", flags.Speed,
		fmt.Sprintf("animation speed multiplier, %.2f to %.1f", config.MinSpeed, config.MaxSpeed))
	f.Float64VarP(&flags.Density, "density", "d", flags.Density,
		fmt.Sprintf("spawn chance per idle column per tick, %.2f to %.1f", config.MinDensity, config.MaxDensity))
	f.StringVar(&flags.Charset, "charset", flags.Charset,
		"glyph set: "+strings.Join(config.CharsetNames(), ", ")+", or literal characters")
	f.Uint64Var(&flags.Seed, "seed", 0, "random seed, 0 for time-based")
	f.StringVar(&flags.ColorMode, "color-mode", flags.ColorMode, "auto, truecolor, 256 or mono")
	f.StringVar(&flags.Backend, "backend", flags.Backend, "terminal backend: ansi or tcell")
	f.BoolVar(&flags.Sound, "sound", false, "play rain ambience")
	f.BoolVar(&flags.Debug, "debug", false, "write "+logDir+"/"+logFileName)
	f.StringVar(&configPath, "config", config.DefaultPath(), "TOML config file")
	f.BoolVar(&list, "list", false, "list color schemes, styles and charsets")
	f.SortFlags = false

	return cmd
}

// run owns the terminal for the lifetime of the animation
func run(ctx context.Context, cfg config.Config) error {
	logFile := setupLogging(cfg.Debug)
	if logFile != nil {
		defer logFile.Close()
	}
	log.Printf("config: color=%s speed=%.2f density=%.2f glyphs=%d mode=%s backend=%s sound=%v",
		cfg.Color, cfg.Speed, cfg.Density, len(cfg.Glyphs), cfg.ColorMode, cfg.Backend, cfg.Sound)

	// Panics in the terminal's reader goroutines go through the same crash path as main
	terminal.SetSpawner(core.Go)
	defer terminal.SetSpawner(nil)

	term, err := newTerminal(cfg)
	if err != nil {
		return &exitError{code: exitFailure, err: err}
	}
	if err := term.Init(); err != nil {
		if errors.Is(err, terminal.ErrNotTerminal) {
			err = fmt.Errorf("%w: matrix-rain needs an interactive terminal on stdin and stdout", err)
		}
		return &exitError{code: exitFailure, err: err}
	}
	core.SetCrashTerminal(term)
	defer core.SetCrashTerminal(nil)
	defer term.Fini()

	var player audio.Player = audio.Nop{}
	if cfg.Sound {
		player = audio.Start(cfg.Seed)
	}
	defer player.Close()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer stop()

	if err := engine.New(term, cfg, player).Run(ctx); err != nil {
		// Restore before the error reaches stderr
		term.Fini()
		return &exitError{code: exitFailure, err: err}
	}
	return nil
}

func newTerminal(cfg config.Config) (terminal.Terminal, error) {
	switch cfg.Backend {
	case config.BackendTcell:
		return terminal.NewTcell(cfg.ColorMode, cfg.ColorModeForced)
	default:
		return terminal.New(cfg.ColorMode), nil
	}
}

func printLists(w io.Writer) {
	fmt.Fprintf(w, "Color schemes:\n  %s\n", strings.Join(config.SchemeNames(), " "))
	fmt.Fprintf(w, "Charsets:\n  %s\n", strings.Join(config.CharsetNames(), " "))
	fmt.Fprintf(w, "Styles (use %s<name>):\n", config.StylePrefix)
	for _, name := range config.StyleNames() {
		fmt.Fprintf(w, "  %s\n", name)
	}
}

// execute runs the command line and maps the outcome to an exit code
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}

	fmt.Fprintf(stderr, "matrix-rain: %v\n", err)
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	// Positional arguments and other cobra usage errors
	return exitUsage
}
