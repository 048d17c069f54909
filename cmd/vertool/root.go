package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// logLevelFlag implements pflag.Value for slog.Level.
type logLevelFlag struct {
	level slog.Level
}

func (f *logLevelFlag) String() string { return strings.ToLower(f.level.String()) }
func (f *logLevelFlag) Type() string   { return "string" }
func (f *logLevelFlag) Set(s string) error {
	switch strings.ToLower(s) {
	case "debug":
		f.level = slog.LevelDebug
	case "info":
		f.level = slog.LevelInfo
	case "warn":
		f.level = slog.LevelWarn
	case "error":
		f.level = slog.LevelError
	default:
		return fmt.Errorf("unknown log level %q (valid: debug, info, warn, error)", s)
	}
	return nil
}

func (f *logLevelFlag) Level() slog.Level { return f.level }

var (
	globalLogLevel = &logLevelFlag{level: slog.LevelWarn}
	noColor        bool
	configDir      string
	jobs           int
)

var rootCmd = &cobra.Command{
	Use:   "vertool",
	Short: "Polyglot developer-tool version manager",
	Long: `vertool resolves, installs, and activates pinned versions of CLI
tools and language runtimes from a stack of vertool.toml files, aqua-style.

  vertool resolve    Resolve the config stack to concrete versions
  vertool plan       Show the install plan without installing
  vertool install    Resolve, compose and install the current toolset
  vertool env        Emit shell activation statements
  vertool which       Print an installed tool's binary path
  vertool uninstall   Remove an installed tool's artifacts`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: globalLogLevel.Level()})))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().Var(globalLogLevel, "log-level", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "Directory to start vertool.toml stack discovery from (default: current directory)")
	rootCmd.PersistentFlags().IntVar(&jobs, "jobs", 0, "Parallel install worker count (default: from config, then 5)")
	_ = rootCmd.RegisterFlagCompletionFunc("log-level", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"debug", "info", "warn", "error"}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(
		versionCmd,
		resolveCmd,
		planCmd,
		installCmd,
		envCmd,
		whichCmd,
		uninstallCmd,
		execCmd,
	)
}
