package cli

import (
	"context"
	stderrors "errors"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/rileyhilliard/watchdog/internal/capture"
	"github.com/rileyhilliard/watchdog/internal/config"
	"github.com/rileyhilliard/watchdog/internal/errors"
	"github.com/rileyhilliard/watchdog/internal/lock"
	"github.com/rileyhilliard/watchdog/internal/logger"
	"github.com/rileyhilliard/watchdog/internal/monitor"
	"github.com/rileyhilliard/watchdog/internal/notify"
	"github.com/rileyhilliard/watchdog/internal/transport"
	"github.com/rileyhilliard/watchdog/internal/ui"
)

// stdoutIsTerminal is replaced in tests.
var stdoutIsTerminal = func() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// lockDir holds port lock files. Empty means the system temp dir.
var lockDir = ""

// watchRun holds everything one monitoring session needs.
type watchRun struct {
	cfg      *config.Config
	session  *monitor.Session
	metrics  *monitor.Metrics
	source   string
	lock     *lock.Lock
	recorder *capture.Writer
	log      logger.Logger
}

// prepareRun loads config, applies flag overrides, takes the port lock and
// builds the session. log receives notifier and session messages. Callers
// must close the returned run.
func prepareRun(command string, flags SourceFlags, log logger.Logger) (*watchRun, error) {
	cfg, path, err := config.LoadOrDefault(Config())
	if err != nil {
		return nil, err
	}
	if path != "" {
		log.Debug("using config %s", path)
	}

	if err := flags.Apply(cfg); err != nil {
		return nil, err
	}
	if err := config.Validate(cfg, config.RequireSource()); err != nil {
		return nil, err
	}

	notifier, err := notify.New(cfg, flags.DryRun, log)
	if err != nil {
		return nil, err
	}

	session, err := monitor.NewSession(cfg, notifier, monitor.SessionOptions{Logger: log})
	if err != nil {
		return nil, err
	}

	w := &watchRun{
		cfg:     cfg,
		session: session,
		metrics: monitor.NewMetrics(session.Metrics()...),
		source:  transport.Describe(cfg),
		log:     log,
	}

	if cfg.Replay == "" {
		w.lock, err = lock.TryAcquire(lockDir, cfg.Port, "watchdog "+command)
		if err != nil {
			return nil, err
		}
	}

	if flags.Record {
		name := cfg.Port
		if cfg.Replay != "" {
			name = cfg.Replay
		}
		w.recorder, err = capture.NewWriter(cfg.Capture.Dir, name)
		if err != nil {
			w.close()
			return nil, err
		}
		log.Info("recording to %s", w.recorder.Path())
	}

	return w, nil
}

// observers returns the extra observers the run needs besides the metrics.
func (w *watchRun) observers() []monitor.Observer {
	obs := []monitor.Observer{w.metrics}
	if w.recorder != nil {
		obs = append(obs, monitor.ObserverFunc(func(o monitor.Outcome) {
			if err := w.recorder.WriteLine(o.Line); err != nil {
				w.log.Warn("%s", errors.Short(err))
			}
		}))
	}
	return obs
}

// close stops recording, prunes old captures and releases the port.
func (w *watchRun) close() {
	if w.recorder != nil {
		if err := w.recorder.Close(); err != nil {
			w.log.Warn("closing capture: %v", err)
		}
		if err := capture.Cleanup(w.cfg.Capture); err != nil {
			w.log.Warn("%s", errors.Short(err))
		}
	}
	if err := w.lock.Release(); err != nil {
		w.log.Warn("%s", errors.Short(err))
	}
}

// startMetrics binds the metrics endpoint if one is configured. The server
// stops when ctx is cancelled.
func (w *watchRun) startMetrics(ctx context.Context, log logger.Logger) error {
	if w.cfg.MetricsListen == "" {
		return nil
	}
	ln, err := monitor.Listen(w.cfg.MetricsListen)
	if err != nil {
		return err
	}
	go func() {
		if err := w.metrics.ServeListener(ctx, ln, log); err != nil {
			log.Error("%s", errors.Short(err))
		}
	}()
	return nil
}

// loopOptions wires the loop to the config and the given callbacks.
func (w *watchRun) loopOptions(log logger.Logger, onError func(error), onConnect func()) monitor.LoopOptions {
	return monitor.LoopOptions{
		Interval:         w.cfg.PollInterval,
		ReconnectBackoff: w.cfg.ReconnectBackoff,
		OnError: func(err error) {
			w.metrics.TransportError()
			onError(err)
		},
		OnConnect: onConnect,
		Logger:    log,
	}
}

// monitorCommand starts the dashboard, or the headless loop when stdout is
// not a terminal or stdin carries the replay input.
func monitorCommand(ctx context.Context, flags SourceFlags) error {
	replayStdin := flags.Replay == "-"
	if !stdoutIsTerminal() || replayStdin {
		return runCommand(ctx, flags)
	}

	// Anything logged while the dashboard owns the screen would corrupt it.
	quiet := logger.Noop()
	w, err := prepareRun("monitor", flags, quiet)
	if err != nil {
		return err
	}
	if w.cfg.Replay == "-" {
		w.close()
		return runCommand(ctx, flags)
	}
	defer w.close()
	if w.cfg.APIKey == "" && !flags.DryRun {
		ui.PrintWarning("No api_key configured; alerts will only show on the dashboard")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := w.startMetrics(ctx, quiet); err != nil {
		return err
	}

	model := monitor.NewModel(w.session, w.source, w.cfg.PollInterval)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	loop := monitor.NewLoop(transport.OpenerFor(w.cfg), w.session, w.loopOptions(quiet,
		func(err error) { p.Send(monitor.TransportErrorMsg{Err: err}) },
		func() { p.Send(monitor.ConnectedMsg{}) },
	), w.observers()...)

	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		err := loop.Run(ctx)
		p.Send(monitor.LoopDoneMsg{Err: err})
	}()

	_, err = p.Run()

	// Stop the loop and wait for it to close the port.
	cancel()
	<-loopDone

	if stderrors.Is(err, tea.ErrInterrupted) || stderrors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}

// runCommand runs the loop without a UI until interrupted or the replay
// input ends.
func runCommand(ctx context.Context, flags SourceFlags) error {
	log := logger.Default()
	w, err := prepareRun("run", flags, log)
	if err != nil {
		return err
	}
	defer w.close()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := w.startMetrics(ctx, log); err != nil {
		return err
	}

	h := monitor.NewHeadless(log)
	loop := monitor.NewLoop(transport.OpenerFor(w.cfg), w.session, w.loopOptions(log,
		h.TransportError,
		func() { h.Connected(w.source) },
	), append([]monitor.Observer{h}, w.observers()...)...)

	err = loop.Run(ctx)

	snap := w.session.Snapshot()
	log.Info("stopped after %d lines (%d unrecognized, %d parse errors)",
		snap.Lines, snap.Unrecognized, snap.ParseErrors)
	return err
}
