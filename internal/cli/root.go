package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rileyhilliard/watchdog/internal/errors"
	"github.com/rileyhilliard/watchdog/internal/logger"
	"github.com/rileyhilliard/watchdog/internal/ui"
)

// Global flags
var (
	cfgFile string
	verbose bool
	noColor bool
)

// rootCmd is the base command when called without subcommands
var rootCmd = &cobra.Command{
	Use:   "watchdog",
	Short: "Watch an Arduino sensor board and push alerts",
	Long: `watchdog reads temperature, humidity, noise and gas readings from an
Arduino over a serial port, keeps a short history of each, and sends a
Pushbullet notification when a value leaves its safe range.

Examples:
  watchdog init
  watchdog monitor --port /dev/ttyUSB0
  watchdog run --replay capture.log --dry-run
  watchdog doctor`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.SetDebug(verbose)
		if noColor || os.Getenv("NO_COLOR") != "" {
			ui.DisableColors()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: .watchdog.yaml, searched upward)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
}

// Config returns the --config flag value.
func Config() string {
	return cfgFile
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprint(os.Stderr, formatError(err))
		os.Exit(exitCode(err))
	}
}

// formatError renders structured errors in full and plain ones on a line.
func formatError(err error) string {
	msg := err.Error()
	if !strings.HasSuffix(msg, "\n") {
		msg += "\n"
	}
	if isUnknownCommandError(err) {
		msg += "Run 'watchdog --help' for usage.\n"
	}
	return msg
}

// exitCode maps error codes to process exit statuses.
func exitCode(err error) int {
	switch {
	case errors.IsCode(err, errors.ErrConfig):
		return 2
	case errors.IsCode(err, errors.ErrTransport):
		return 3
	case errors.IsCode(err, errors.ErrNotify):
		return 4
	default:
		return 1
	}
}

// isUnknownCommandError checks if the error is from cobra's unknown command handling.
func isUnknownCommandError(err error) bool {
	msg := err.Error()
	return strings.HasPrefix(msg, "unknown command") || strings.HasPrefix(msg, "unknown flag")
}
