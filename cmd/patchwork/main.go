package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/vango-dev/patchwork/internal/config"
	"github.com/vango-dev/patchwork/internal/errors"
	"github.com/vango-dev/patchwork/pkg/reactive"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ┌─┐┌─┐┌┬┐┌─┐┬ ┬┬ ┬┌─┐┬─┐┬┌─
  ├─┘├─┤ │ │  ├─┤││││ │├┬┘├┴┐
  ┴  ┴ ┴ ┴ └─┘┴ ┴└┴┘└─┘┴└─┴ ┴
`

// globalFlags are shared by every command.
type globalFlags struct {
	config    string
	logLevel  string
	logFormat string
	noColor   bool
}

var (
	flags globalFlags
	color = true
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "patchwork",
		Short: "Reactive state and keyed virtual DOM patching",
		Long: `Patchwork drives a component tree from reactive state.

State changes are batched into flushes; each flush re-renders the
affected components and patches the keyed virtual DOM onto a backend.
The CLI exercises the engine against an in-memory document:

  • demo   walks a keyed list through a series of updates
  • bench  times random keyed reorders
  • serve  streams the document to browsers over WebSocket`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			color = !flags.noColor && isatty.IsTerminal(os.Stdout.Fd())
			if !color {
				errors.DisableColors()
			}
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flags.config, "config", "c", "", "Path to patchwork.json or patchwork.yaml")
	pf.StringVar(&flags.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	pf.StringVar(&flags.logFormat, "log-format", "", "Log format: text or json")
	pf.BoolVar(&flags.noColor, "no-color", false, "Disable colored output")

	// Add commands
	rootCmd.AddCommand(
		demoCmd(),
		benchCmd(),
		serveCmd(),
		versionCmd(),
	)

	// Execute
	if err := rootCmd.Execute(); err != nil {
		if e, ok := err.(*errors.Error); ok {
			fmt.Fprint(os.Stderr, e.Format())
		} else {
			errorMsg("%s", err)
		}
		os.Exit(1)
	}
}

// loadConfig resolves the configuration for a command: the --config file,
// the nearest project config, or defaults. Log flags override the file.
func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if flags.config != "" {
		cfg, err = config.LoadFile(flags.config)
	} else {
		cfg, err = config.LoadFromWorkingDir()
	}
	if err != nil {
		return nil, err
	}

	if flags.logLevel != "" {
		cfg.Log.Level = flags.logLevel
	}
	if flags.logFormat != "" {
		cfg.Log.Format = flags.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	reactive.DevMode = !cfg.Runtime.Production
	return cfg, nil
}

// newLogger builds the slog logger described by cfg and installs it as the
// default.
func newLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel()}
	var handler slog.Handler
	if cfg.Log.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// printBanner prints the ASCII art banner.
func printBanner() {
	fmt.Print(banner)
}

func paint(code, text string) string {
	if !color {
		return text
	}
	return "\033[" + code + "m" + text + "\033[0m"
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Printf("%s %s\n", paint("32", "✓"), fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func warn(format string, args ...any) {
	fmt.Printf("%s %s\n", paint("33", "⚠"), fmt.Sprintf(format, args...))
}

// errorMsg prints an error message.
func errorMsg(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "%s %s\n", paint("31", "✗"), fmt.Sprintf(format, args...))
}
