package cli

import (
	"github.com/spf13/cobra"

	"github.com/rileyhilliard/watchdog/internal/errors"
)

// Command-specific flags
var (
	monitorFlags     SourceFlags
	runFlags         SourceFlags
	parseOpts        = ParseOptions{Summary: true}
	notifyTestOpts   NotifyTestOptions
	initOpts         InitOptions
	doctorOpts       DoctorOptions
	configShowYAML   bool
	capturesCleanAll bool
)

// monitorCmd starts the TUI dashboard
var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Live dashboard of sensor readings",
	Long: `Open the sensor board's serial port and show every metric as a card
with its latest value, history sparkline, safe range and last alert.

Alerts are sent while the dashboard is open. Press p to pause the display,
c to clear history, ? for help, q to quit. Falls back to plain log output
when stdout isn't a terminal.

Examples:
  watchdog monitor
  watchdog monitor --port /dev/ttyUSB0 --baud 9600
  watchdog monitor --replay capture.log --interval 200ms --dry-run`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return monitorCommand(cmd.Context(), monitorFlags)
	},
}

// runCmd monitors without a UI
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Monitor without a UI, logging readings and alerts",
	Long: `Run the monitoring loop headless: each reading and alert is logged,
suited to a service manager or a terminal multiplexer. Stops on Ctrl+C,
SIGTERM, or when a replay input runs out.

Examples:
  watchdog run
  WATCHDOG_PORT=/dev/ttyACM0 watchdog run
  watchdog run --replay - --dry-run < capture.log`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCommand(cmd.Context(), runFlags)
	},
}

// parseCmd runs captured output through the parser
var parseCmd = &cobra.Command{
	Use:   "parse [file|-]",
	Short: "Parse captured serial output and show what was recognized",
	Long: `Run a capture of the board's serial output through the line parser,
printing each recognized reading and a per-metric summary. Readings outside
their safe range are marked, but no notifications are sent.

Examples:
  watchdog parse capture.log
  watchdog parse --all capture.log
  cat /dev/ttyUSB0 | watchdog parse -`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in, _, err := openInput(args)
		if err != nil {
			return err
		}
		defer in.Close()
		return parseCommand(cmd.OutOrStdout(), in, parseOpts)
	},
}

// notifyTestCmd sends one notification
var notifyTestCmd = &cobra.Command{
	Use:   "notify-test",
	Short: "Send a test notification",
	Long: `Send one notification through the configured notifier to confirm the
Pushbullet token works.

Examples:
  watchdog notify-test
  watchdog notify-test --title "Hello" --body "from the garage"
  watchdog notify-test --dry-run`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return notifyTestCommand(cmd.Context(), cmd.OutOrStdout(), notifyTestOpts)
	},
}

// initCmd creates a new .watchdog.yaml configuration
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create .watchdog.yaml configuration",
	Long: `Create a .watchdog.yaml file in the current directory.

Prompts for the serial port (from the detected devices), baud rate,
Pushbullet token and metrics. Use --non-interactive to write defaults
plus whatever flags are given.

Examples:
  watchdog init
  watchdog init --port /dev/ttyUSB0 --non-interactive
  watchdog init --force`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return Init(cmd.OutOrStdout(), initOpts)
	},
}

// configCmd groups config subcommands
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Check, show or change the configuration",
	Long: `Work with the watchdog configuration.

Examples:
  watchdog config check
  watchdog config show
  watchdog config set port /dev/ttyUSB0
  watchdog config set thresholds.temperature.high 35`,
}

var configCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return configCheckCommand(cmd.OutOrStdout())
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change one setting, keeping the rest of the file",
	Long: `Change one setting in the config file in use, creating ./.watchdog.yaml
if there isn't one. Comments and other settings are kept. The change is
rolled back if the result doesn't validate.

Examples:
  watchdog config set api_key o.abc123
  watchdog config set cooldown_seconds 600
  watchdog config set thresholds.gas.high 400`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return configSetCommand(cmd.OutOrStdout(), args[0], args[1])
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return configShowCommand(cmd.OutOrStdout(), configShowYAML)
	},
}

// capturesCmd lists recordings
var capturesCmd = &cobra.Command{
	Use:   "captures",
	Short: "List recorded serial captures",
	Long: `List the capture files written by 'watchdog run --record' or
'watchdog monitor --record', newest first. Any of them can be fed back in
with --replay.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return capturesCommand(cmd.OutOrStdout())
	},
}

var capturesCleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Prune old captures",
	Long: `Apply the capture retention settings (capture.keep_runs,
capture.keep_days, capture.max_size_mb) now. With --all, remove every capture.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return capturesCleanCommand(cmd.OutOrStdout(), capturesCleanAll)
	},
}

// portsCmd lists serial devices
var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List serial ports",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return portsCommand(cmd.OutOrStdout())
	},
}

// doctorCmd runs diagnostic checks
var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose configuration, serial and notification issues",
	Long: `Run diagnostic checks on the config file, alert rules, serial source,
notifier and metrics endpoint.

Examples:
  watchdog doctor
  watchdog doctor --fix
  watchdog doctor --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return doctorCommand(cmd.OutOrStdout(), doctorOpts)
	},
}

// completionCmd generates shell completion scripts
var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long: `Generate shell completion scripts for watchdog.

Examples:
  # Bash
  watchdog completion bash > /etc/bash_completion.d/watchdog

  # Zsh
  watchdog completion zsh > "${fpath[1]}/_watchdog"

  # Fish
  watchdog completion fish > ~/.config/fish/completions/watchdog.fish`,
	ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletion(out)
		case "zsh":
			return rootCmd.GenZshCompletion(out)
		case "fish":
			return rootCmd.GenFishCompletion(out, true)
		case "powershell":
			return rootCmd.GenPowerShellCompletion(out)
		default:
			return errors.New(errors.ErrConfig,
				"Unknown shell: "+args[0],
				"Supported shells: bash, zsh, fish, powershell")
		}
	},
}

func init() {
	AddSourceFlags(monitorCmd, &monitorFlags)
	AddSourceFlags(runCmd, &runFlags)

	parseCmd.Flags().BoolVar(&parseOpts.ShowAll, "all", false, "also list unrecognized lines")
	parseCmd.Flags().BoolVar(&parseOpts.Summary, "summary", true, "print the per-metric summary")

	notifyTestCmd.Flags().StringVar(&notifyTestOpts.Title, "title", "", "notification title")
	notifyTestCmd.Flags().StringVar(&notifyTestOpts.Body, "body", "", "notification body")
	notifyTestCmd.Flags().BoolVar(&notifyTestOpts.DryRun, "dry-run", false, "log the notification instead of pushing it")

	initCmd.Flags().StringVar(&initOpts.Port, "port", "", "serial device")
	initCmd.Flags().IntVar(&initOpts.Baud, "baud", 0, "baud rate")
	initCmd.Flags().StringVar(&initOpts.APIKey, "api-key", "", "Pushbullet access token")
	initCmd.Flags().BoolVarP(&initOpts.Overwrite, "force", "f", false, "overwrite existing config")
	initCmd.Flags().BoolVar(&initOpts.NonInteractive, "non-interactive", false, "don't prompt; use flags and defaults")

	configShowCmd.Flags().BoolVar(&configShowYAML, "yaml", false, "print as YAML")
	configCmd.AddCommand(configCheckCmd, configSetCmd, configShowCmd)

	capturesCleanCmd.Flags().BoolVar(&capturesCleanAll, "all", false, "remove every capture")
	capturesCmd.AddCommand(capturesCleanCmd)

	doctorCmd.Flags().BoolVar(&doctorOpts.JSON, "json", false, "output in JSON format")
	doctorCmd.Flags().BoolVar(&doctorOpts.Fix, "fix", false, "attempt automatic fixes where possible")

	rootCmd.AddCommand(monitorCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(notifyTestCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(capturesCmd)
	rootCmd.AddCommand(portsCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(completionCmd)
}
