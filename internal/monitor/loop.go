package monitor

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/rileyhilliard/watchdog/internal/logger"
	"github.com/rileyhilliard/watchdog/internal/transport"
)

// Observer receives the outcome of every processed line. Observers run on
// the loop goroutine and must not block.
type Observer interface {
	Observe(Outcome)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(Outcome)

// Observe calls f.
func (f ObserverFunc) Observe(o Outcome) {
	f(o)
}

// LoopOptions tunes a Loop.
type LoopOptions struct {
	// Interval between polls of the source.
	Interval time.Duration
	// ReconnectBackoff is the wait before reopening a failed source.
	ReconnectBackoff time.Duration
	// OnError is called with every open or read failure. The loop keeps going.
	OnError func(error)
	// OnConnect is called each time the source is (re)opened.
	OnConnect func()
	Logger    logger.Logger
}

// Loop polls a Source on a fixed interval and feeds each line to a Session.
type Loop struct {
	open      transport.Opener
	session   *Session
	interval  time.Duration
	backoff   time.Duration
	onError   func(error)
	onConnect func()
	observers []Observer
	log       logger.Logger
}

// NewLoop creates a loop reading from sources produced by open.
func NewLoop(open transport.Opener, session *Session, opts LoopOptions, observers ...Observer) *Loop {
	l := &Loop{
		open:      open,
		session:   session,
		interval:  opts.Interval,
		backoff:   opts.ReconnectBackoff,
		onError:   opts.OnError,
		onConnect: opts.OnConnect,
		observers: observers,
		log:       opts.Logger,
	}
	if l.interval <= 0 {
		l.interval = time.Second
	}
	if l.backoff <= 0 {
		l.backoff = 5 * time.Second
	}
	if l.onError == nil {
		l.onError = func(error) {}
	}
	if l.onConnect == nil {
		l.onConnect = func() {}
	}
	if l.log == nil {
		l.log = logger.Noop()
	}
	return l
}

// Run polls until ctx is cancelled or the source is exhausted, and returns
// nil in both cases. Transport failures never end the loop: the source is
// closed, and reopened after the reconnect backoff.
func (l *Loop) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	var src transport.Source
	defer func() {
		if src != nil {
			_ = src.Close()
		}
	}()

	for {
		if src == nil {
			src = l.connect(ctx)
			if src == nil {
				return nil
			}
		}

		lines, err := src.ReadLines()
		for _, line := range lines {
			l.dispatch(l.session.Process(ctx, line))
		}

		switch {
		case stderrors.Is(err, transport.ErrExhausted):
			l.log.Info("input exhausted after %d lines", l.session.Snapshot().Lines)
			return nil
		case err != nil:
			l.onError(err)
			_ = src.Close()
			src = nil
			if !sleep(ctx, l.backoff) {
				return nil
			}
			continue
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// connect opens the source, retrying after the backoff until it succeeds or
// ctx ends. It returns nil only when ctx is done.
func (l *Loop) connect(ctx context.Context) transport.Source {
	for {
		if ctx.Err() != nil {
			return nil
		}
		src, err := l.open()
		if err == nil {
			l.log.Debug("source opened")
			l.onConnect()
			return src
		}
		l.onError(err)
		if !sleep(ctx, l.backoff) {
			return nil
		}
	}
}

func (l *Loop) dispatch(o Outcome) {
	for _, obs := range l.observers {
		obs.Observe(o)
	}
}

// sleep waits for d and reports false if ctx ended first.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
