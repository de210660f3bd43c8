package notify

import (
	"context"

	"github.com/rileyhilliard/watchdog/internal/alert"
	"github.com/rileyhilliard/watchdog/internal/config"
	"github.com/rileyhilliard/watchdog/internal/errors"
	"github.com/rileyhilliard/watchdog/internal/logger"
)

// Log writes notifications to a logger instead of sending them.
type Log struct {
	log logger.Logger
}

// NewLog creates a notifier that logs each message at info level.
func NewLog(l logger.Logger) *Log {
	if l == nil {
		l = logger.Default()
	}
	return &Log{log: l}
}

// Send logs the notification. It never fails.
func (n *Log) Send(_ context.Context, title, body string) error {
	n.log.Info("NOTIFY %s: %s", title, body)
	return nil
}

type noop struct{}

// Noop returns a notifier that discards everything.
func Noop() alert.Notifier {
	return noop{}
}

func (noop) Send(context.Context, string, string) error { return nil }

// New picks the notifier for cfg: Pushbullet when an API key is set and
// dryRun is false, otherwise Log.
func New(cfg *config.Config, dryRun bool, l logger.Logger) (alert.Notifier, error) {
	if l == nil {
		l = logger.Default()
	}
	if dryRun || cfg.APIKey == "" {
		if !dryRun {
			l.Warn("no api_key configured; alerts will only be logged")
		}
		return NewLog(l), nil
	}
	pb, err := NewPushbullet(cfg.APIKey, "", nil)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid Pushbullet configuration",
			"Set api_key in .watchdog.yaml or WATCHDOG_API_KEY to your Pushbullet access token")
	}
	return pb, nil
}
