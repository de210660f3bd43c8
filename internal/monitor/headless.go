package monitor

import (
	"github.com/rileyhilliard/watchdog/internal/errors"
	"github.com/rileyhilliard/watchdog/internal/logger"
)

// Headless presents loop activity as log lines, for `watchdog run` and for
// `watchdog monitor` when stdout is not a terminal.
type Headless struct {
	log logger.Logger
}

// NewHeadless creates a presenter writing to l.
func NewHeadless(l logger.Logger) *Headless {
	if l == nil {
		l = logger.Noop()
	}
	return &Headless{log: l}
}

// Observe logs readings at debug, alerts at info and failures at warn.
func (h *Headless) Observe(o Outcome) {
	if !o.Recognized() {
		h.log.Debug("unrecognized line: %q", o.Line)
		return
	}
	for _, r := range o.Readings {
		h.log.Debug("%s", r)
	}
	for _, pe := range o.ParseErrors {
		h.log.Warn("%s", errors.Short(pe.Err))
	}
	for _, a := range o.Alerts {
		h.log.Info("ALERT %s: %s", a.Title, a.Body)
	}
	for _, ne := range o.NotifyErrors {
		h.log.Warn("%s alert not delivered: %s", ne.Metric, errors.Short(ne.Err))
	}
}

// TransportError logs a transport failure. The loop reconnects on its own.
func (h *Headless) TransportError(err error) {
	h.log.Error("%s", errors.Short(err))
}

// Connected logs that the source is open.
func (h *Headless) Connected(source string) {
	h.log.Info("reading from %s", source)
}
