package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rileyhilliard/watchdog/internal/config"
	"github.com/rileyhilliard/watchdog/internal/errors"
)

// SourceFlags holds the input overrides shared by monitor and run.
type SourceFlags struct {
	Port     string
	Baud     int
	Replay   string
	Interval string
	DryRun   bool
	Record   bool
}

// AddSourceFlags registers the source, interval, --dry-run and --record flags on a command.
func AddSourceFlags(cmd *cobra.Command, flags *SourceFlags) {
	cmd.Flags().StringVar(&flags.Port, "port", "", "serial device (overrides 'port')")
	cmd.Flags().IntVar(&flags.Baud, "baud", 0, "baud rate (overrides 'baud_rate')")
	cmd.Flags().StringVar(&flags.Replay, "replay", "", "read lines from a file, or - for stdin, instead of the serial port")
	cmd.Flags().StringVar(&flags.Interval, "interval", "", "poll interval (e.g., 1s, 500ms)")
	cmd.Flags().BoolVar(&flags.DryRun, "dry-run", false, "log alerts instead of pushing them")
	cmd.Flags().BoolVar(&flags.Record, "record", false, "save every line read to a capture file under 'capture.dir'")
}

// Apply copies the set flags over cfg.
func (f SourceFlags) Apply(cfg *config.Config) error {
	if f.Port != "" {
		cfg.Port = config.ExpandPath(f.Port)
		// An explicit port wins over a replay file from the config.
		if f.Replay == "" {
			cfg.Replay = ""
		}
	}
	if f.Baud != 0 {
		cfg.BaudRate = f.Baud
	}
	if f.Replay != "" {
		cfg.Replay = config.ExpandPath(f.Replay)
	}
	if f.Interval != "" {
		d, err := ParseInterval(f.Interval)
		if err != nil {
			return err
		}
		cfg.PollInterval = d
	}
	return nil
}

// ParseInterval parses a poll interval string into a duration.
func ParseInterval(flag string) (time.Duration, error) {
	d, err := time.ParseDuration(flag)
	if err != nil {
		return 0, errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("'%s' doesn't look like a valid interval", flag),
			"Try something like 1s, 500ms, or 2s.")
	}
	if d < config.MinPollInterval || d > config.MaxPollInterval {
		return 0, errors.New(errors.ErrConfig,
			fmt.Sprintf("Interval %s is out of range", d),
			fmt.Sprintf("Use a value between %s and %s.", config.MinPollInterval, config.MaxPollInterval))
	}
	return d, nil
}
