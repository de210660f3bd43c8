package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rileyhilliard/watchdog/internal/alert"
	"github.com/rileyhilliard/watchdog/internal/config"
	"github.com/rileyhilliard/watchdog/internal/errors"
	"github.com/rileyhilliard/watchdog/internal/logger"
	"github.com/rileyhilliard/watchdog/internal/notify"
	"github.com/rileyhilliard/watchdog/internal/ui"
)

// notifyTestTimeout bounds the whole test send.
const notifyTestTimeout = 20 * time.Second

// NotifyTestOptions holds options for the notify-test command.
type NotifyTestOptions struct {
	Title  string
	Body   string
	DryRun bool
}

// newNotifier is replaced in tests.
var newNotifier = notify.New

// notifyTestCommand sends one notification through the configured notifier.
func notifyTestCommand(ctx context.Context, out io.Writer, opts NotifyTestOptions) error {
	cfg, _, err := config.LoadOrDefault(Config())
	if err != nil {
		return err
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}

	if cfg.APIKey == "" && !opts.DryRun {
		return errors.New(errors.ErrConfig,
			"No Pushbullet api_key configured",
			"Run 'watchdog config set api_key <token>' or set WATCHDOG_API_KEY. Use --dry-run to test without one.")
	}

	notifier, err := newNotifier(cfg, opts.DryRun, logger.Default())
	if err != nil {
		return err
	}

	title := opts.Title
	if title == "" {
		title = "watchdog test"
	}
	body := opts.Body
	if body == "" {
		host, _ := os.Hostname()
		body = fmt.Sprintf("Test notification from watchdog on %s at %s", host, time.Now().Format(time.ANSIC))
	}

	return sendWithSpinner(ctx, out, notifier, title, body)
}

func sendWithSpinner(ctx context.Context, out io.Writer, n alert.Notifier, title, body string) error {
	ctx, cancel := context.WithTimeout(ctx, notifyTestTimeout)
	defer cancel()

	spinner := ui.NewSpinner("Sending test notification")
	spinner.SetOutput(func(s string) { fmt.Fprint(out, s) })
	spinner.Start()

	if err := n.Send(ctx, title, body); err != nil {
		spinner.Fail()
		return errors.WrapWithCode(err, errors.ErrNotify,
			"Test notification failed",
			"Check the api_key with 'watchdog doctor' and your network connection")
	}

	spinner.Success()
	fmt.Fprintf(out, "%s Sent %q\n", ui.SuccessStyle().Render(ui.SymbolSuccess), title)
	return nil
}
