package cli

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/rileyhilliard/watchdog/internal/config"
	"github.com/rileyhilliard/watchdog/internal/doctor"
	"github.com/rileyhilliard/watchdog/internal/errors"
	"github.com/rileyhilliard/watchdog/internal/ui"
	"github.com/rileyhilliard/watchdog/internal/util"
)

// configCheckCommand validates the config the run commands would use.
func configCheckCommand(out io.Writer) error {
	target := doctor.LoadTarget(Config())
	report := doctor.Run(doctor.ConfigChecks(target))
	results := report.Results()

	fmt.Fprint(out, ui.RenderChecks(checkRows(results)))

	if doctor.HasFailures(results) {
		if target.LoadErr != nil {
			return target.LoadErr
		}
		return errors.New(errors.ErrConfig,
			"Config is invalid",
			"Fix the items marked ✗ above")
	}
	return nil
}

// configSetCommand writes one setting into the config file in use, or into
// ./.watchdog.yaml when there is none yet.
func configSetCommand(out io.Writer, key, value string) error {
	path, err := config.Find(Config())
	if err != nil {
		return err
	}
	if path == "" {
		path = filepath.Join(".", config.ConfigFileName)
		if err := config.Save(path, config.DefaultConfig()); err != nil {
			return err
		}
	}

	if err := config.Set(path, key, value); err != nil {
		return err
	}

	shown := value
	if key == "api_key" {
		shown = config.MaskSecret(value)
	}
	fmt.Fprintf(out, "%s Set %s = %s in %s\n", ui.SuccessStyle().Render(ui.SymbolSuccess), key, shown, path)
	return nil
}

// configShowCommand prints the effective config with the API key masked.
func configShowCommand(out io.Writer, asYAML bool) error {
	cfg, path, err := config.LoadOrDefault(Config())
	if err != nil {
		return err
	}
	safe := cfg.Redacted()

	if asYAML {
		data, err := yaml.Marshal(safe)
		if err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig, "Failed to encode config", "")
		}
		_, err = out.Write(data)
		return err
	}

	source := path
	if source == "" {
		source = "built-in defaults"
	}
	fmt.Fprintln(out, ui.MutedStyle().Render("Source: "+source))
	fmt.Fprintln(out)

	keys, values := configValues(safe)
	fmt.Fprint(out, ui.RenderKeyValues(keys, values))
	return nil
}

// configValues flattens cfg into display order.
func configValues(cfg *config.Config) ([]string, map[string]string) {
	orDash := func(s string) string {
		if s == "" {
			return "-"
		}
		return s
	}

	keys := []string{
		"port", "baud_rate", "replay", "api_key", "metrics",
		"cooldown_seconds", "buffer_capacity", "poll_interval",
		"reconnect_backoff", "retry_backoff", "metrics_listen",
		"parser.gas_zero_floor", "capture.dir", "capture.keep_runs", "capture.keep_days", "capture.max_size_mb",
	}
	values := map[string]string{
		"port":                  orDash(cfg.Port),
		"baud_rate":             strconv.Itoa(cfg.BaudRate),
		"replay":                orDash(cfg.Replay),
		"api_key":               orDash(cfg.APIKey),
		"metrics":               util.JoinOrDefault(cfg.Metrics, "-"),
		"cooldown_seconds":      strconv.Itoa(cfg.CooldownSeconds),
		"buffer_capacity":       strconv.Itoa(cfg.BufferCapacity),
		"poll_interval":         cfg.PollInterval.String(),
		"reconnect_backoff":     cfg.ReconnectBackoff.String(),
		"retry_backoff":         cfg.RetryBackoff.String(),
		"metrics_listen":        orDash(cfg.MetricsListen),
		"parser.gas_zero_floor": strconv.FormatFloat(cfg.Parser.GasZeroFloor, 'g', -1, 64),
		"capture.dir":           orDash(cfg.Capture.Dir),
		"capture.keep_runs":     strconv.Itoa(cfg.Capture.KeepRuns),
		"capture.keep_days":     strconv.Itoa(cfg.Capture.KeepDays),
		"capture.max_size_mb":   strconv.Itoa(cfg.Capture.MaxSizeMB),
	}

	if rules, err := cfg.Rules(); err == nil {
		for _, r := range rules {
			k := "thresholds." + r.Metric.String()
			keys = append(keys, k)
			values[k] = r.String()
		}
	}

	names := make([]string, 0, len(cfg.Parser.Labels))
	for name := range cfg.Parser.Labels {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		k := "parser.labels." + name
		keys = append(keys, k)
		values[k] = util.JoinOrNone(cfg.Parser.Labels[name])
	}

	return keys, values
}
