package transport

import (
	"strconv"

	"github.com/rileyhilliard/watchdog/internal/config"
)

// Opener creates a fresh Source. The monitor loop calls it again after a
// transport failure.
type Opener func() (Source, error)

// Open builds the configured source: the replay input when set, otherwise
// the serial port.
func Open(cfg *config.Config) (Source, error) {
	if cfg.Replay != "" {
		rp, err := OpenReplay(cfg.Replay, 1)
		if err != nil {
			return nil, err
		}
		return rp, nil
	}
	s, err := OpenSerial(cfg.Port, cfg.BaudRate)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// OpenerFor returns an Opener bound to cfg.
func OpenerFor(cfg *config.Config) Opener {
	return func() (Source, error) {
		return Open(cfg)
	}
}

// Describe names the configured source for status lines, e.g.
// "/dev/ttyUSB0 @ 9600" or "replay: capture.log".
func Describe(cfg *config.Config) string {
	if cfg.Replay != "" {
		if cfg.Replay == "-" {
			return "replay: stdin"
		}
		return "replay: " + cfg.Replay
	}
	return cfg.Port + " @ " + strconv.Itoa(cfg.BaudRate)
}
