package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/fang"
	slogmulti "github.com/samber/slog-multi"
	"github.com/spf13/cobra"

	"github.com/vito/cheqed/pkg/cheqed"
)

// Config holds the application configuration
type Config struct {
	Debug    bool
	LogFile  string
	Theories []string
	NoColor  bool
}

// app is the state shared by every command once flags are parsed.
type app struct {
	cfg     *Config
	project *cheqed.ProjectConfig
	cache   *cheqed.Cache
	styles  styles
	closers []io.Closer
}

func main() {
	rootCmd := newRootCmd()

	if err := fang.Execute(context.Background(), rootCmd,
		fang.WithVersion("v0.1.0"),
		fang.WithCommit("dev"),
		fang.WithErrorHandler(func(w io.Writer, styles fang.Styles, err error) {
			_, _ = fmt.Fprintln(w, err.Error())
		}),
	); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg := &Config{}
	a := &app{cfg: cfg}

	rootCmd := &cobra.Command{
		Use:   "cheqed",
		Short: "Interactive sequent calculus proof checker",
		Long: `cheqed checks proofs in a classical sequent calculus over theories
declared in Starlark scripts.

Goals are sequents such as "a, b |- c". Plans are rule calls such as
branch(left_disjunction(), axiom(), axiom()), with term arguments in
backquotes.`,
		Example: `  # Trace a proof
  cheqed prove '|- a or not a' 'excluded_middle()'

  # List the rules that apply to a goal
  cheqed rules '|- a implies b'

  # Check every proof in a script
  cheqed check proofs.yaml`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&cfg.Debug, "debug", "d", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&cfg.LogFile, "log-file", "", "Also write JSON logs to this file")
	rootCmd.PersistentFlags().StringSliceVarP(&cfg.Theories, "theory", "t", nil, "Theories to load (default from cheqed.toml, else logic,set)")
	rootCmd.PersistentFlags().BoolVar(&cfg.NoColor, "no-color", os.Getenv("NO_COLOR") != "", "Disable colored output")

	rootCmd.AddCommand(
		a.parseCmd(),
		a.rulesCmd(),
		a.proveCmd(),
		a.advanceCmd(),
		a.checkCmd(),
		a.theoryCmd(),
		a.serveCmd(),
	)

	return rootCmd
}

func (a *app) setup(cmd *cobra.Command) error {
	if err := a.setupLogging(cmd.ErrOrStderr()); err != nil {
		return err
	}

	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	path, project, err := cheqed.FindProjectConfig(cwd)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", cheqed.ProjectConfigFile, err)
	}
	if project != nil {
		slog.Debug("found project config", "path", path)
	}
	a.project = project

	size := cheqed.DefaultCacheSize
	if project != nil && project.CacheSize > 0 {
		size = project.CacheSize
	}
	a.cache, err = cheqed.NewCache(project.Loader(), size)
	if err != nil {
		return err
	}

	a.styles = newStyles(!a.cfg.NoColor)
	return nil
}

func (a *app) setupLogging(stderr io.Writer) error {
	level := slog.LevelInfo
	if a.cfg.Debug {
		level = slog.LevelDebug
	}

	handlers := []slog.Handler{
		slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}),
	}
	if a.cfg.LogFile != "" {
		logFile, err := os.Create(a.cfg.LogFile)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		a.closers = append(a.closers, logFile)
		handlers = append(handlers, slog.NewJSONHandler(logFile, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	slog.SetDefault(slog.New(slogmulti.Fanout(handlers...)))
	return nil
}

func (a *app) close() error {
	var firstErr error
	for _, c := range a.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	a.closers = nil
	return firstErr
}

// theories returns the theories named on the command line, then in
// cheqed.toml, then the defaults.
func (a *app) theories() []string {
	if len(a.cfg.Theories) > 0 {
		return a.cfg.Theories
	}
	return a.project.TheoryNames()
}

func (a *app) env() (*cheqed.Environment, error) {
	return a.cache.Get(a.theories()...)
}
