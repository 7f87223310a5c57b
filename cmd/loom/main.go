package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/loom/internal/config"
	"github.com/vango-dev/loom/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// options are the persistent flags shared by every command.
type options struct {
	configPath string
	dir        string
	logLevel   string
	noColor    bool
}

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		errors.PrintError(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "loom",
		Short: "Incremental UI reconciler with a live DOM mirror",
		Long: `Loom renders component trees through an interruptible reconciler.

Commands:
  render    Render a demo component to HTML
  serve     Serve a demo component to browsers over WebSocket
  snapshot  Inspect and manage stored snapshots
  version   Print version information`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.noColor || os.Getenv("NO_COLOR") != "" {
				errors.DisableColors()
			}
		},
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "Config file (default: loom.json or loom.yaml in --dir)")
	flags.StringVar(&opts.dir, "dir", ".", "Directory to look for a config file in")
	flags.StringVar(&opts.logLevel, "log-level", "", "Override log.level")
	flags.BoolVar(&opts.noColor, "no-color", false, "Disable colored error output")

	rootCmd.AddCommand(
		renderCmd(opts),
		serveCmd(opts),
		snapshotCmd(opts),
		versionCmd(),
	)
	return rootCmd
}

// loadConfig reads the config file named by the flags. Without --config a
// missing file falls back to the defaults.
func (o *options) loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if o.configPath != "" {
		cfg, err = config.LoadFile(o.configPath)
	} else {
		cfg, err = config.Load(o.dir)
		if errors.IsCode(err, "E121") {
			cfg, err = config.New(), nil
		}
	}
	if err != nil {
		return nil, err
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// logger builds the process logger. Logs go to stderr so stdout stays
// clean for rendered output.
func logger(cmd *cobra.Command, cfg *config.Config) *slog.Logger {
	l := cfg.Log.NewLogger(cmd.ErrOrStderr())
	slog.SetDefault(l)
	return l
}

// success prints a success message.
func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}
