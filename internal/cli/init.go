package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/rileyhilliard/watchdog/internal/config"
	"github.com/rileyhilliard/watchdog/internal/errors"
	"github.com/rileyhilliard/watchdog/internal/sensor"
	"github.com/rileyhilliard/watchdog/internal/ui"
)

// InitOptions holds options for the init command.
type InitOptions struct {
	Port           string // Pre-specified serial device
	Baud           int    // Pre-specified baud rate
	APIKey         string // Pre-specified Pushbullet token
	Overwrite      bool   // Overwrite existing config without asking
	NonInteractive bool   // Skip prompts, use defaults
}

// stdinIsTerminal is replaced in tests.
var stdinIsTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// Init creates a new .watchdog.yaml in the current directory.
func Init(out io.Writer, opts InitOptions) error {
	configPath := filepath.Join(".", config.ConfigFileName)

	if !opts.NonInteractive && !stdinIsTerminal() {
		opts.NonInteractive = true
	}

	// Check for existing config
	if _, err := os.Stat(configPath); err == nil && !opts.Overwrite {
		if opts.NonInteractive {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Config file already exists: %s", configPath),
				"Use --force to overwrite")
		}

		var overwrite bool
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("Config file '%s' already exists. Overwrite?", config.ConfigFileName)).
					Value(&overwrite),
			),
		)
		if err := form.Run(); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to get user input",
				"Try running with --force to overwrite")
		}
		if !overwrite {
			fmt.Fprintln(out, "Cancelled.")
			return nil
		}
	}

	cfg := config.DefaultConfig()
	cfg.Port = opts.Port
	cfg.APIKey = opts.APIKey
	if opts.Baud != 0 {
		cfg.BaudRate = opts.Baud
	}

	if !opts.NonInteractive {
		if err := promptConfig(cfg); err != nil {
			return err
		}
	}

	if err := config.Validate(cfg); err != nil {
		return err
	}
	if err := config.Save(configPath, cfg); err != nil {
		return err
	}

	fmt.Fprintf(out, "%s Created %s\n", ui.SuccessStyle().Render(ui.SymbolSuccess), configPath)
	fmt.Fprintln(out)
	if cfg.Port == "" {
		fmt.Fprintln(out, ui.MutedStyle().Render("No port set yet. Find one with 'watchdog ports', then 'watchdog config set port <device>'."))
	}
	if cfg.APIKey == "" {
		fmt.Fprintln(out, ui.MutedStyle().Render("No api_key set; alerts will be logged instead of pushed."))
	}
	fmt.Fprintln(out, "Next steps:")
	fmt.Fprintln(out, "  watchdog doctor      # check the setup")
	fmt.Fprintln(out, "  watchdog monitor     # start the dashboard")
	return nil
}

// promptConfig asks for the port, baud rate, token and metrics.
func promptConfig(cfg *config.Config) error {
	baud := strconv.Itoa(cfg.BaudRate)
	metrics := cfg.Metrics

	portField := portPrompt(&cfg.Port)

	metricOptions := make([]huh.Option[string], 0, len(sensor.All))
	for _, m := range sensor.All {
		metricOptions = append(metricOptions, huh.NewOption(m.Title(), m.String()))
	}

	form := huh.NewForm(
		huh.NewGroup(portField),
		huh.NewGroup(
			huh.NewInput().
				Title("Baud rate").
				Description("Must match Serial.begin() in the firmware").
				Value(&baud).
				Validate(func(s string) error {
					n, err := strconv.Atoi(strings.TrimSpace(s))
					if err != nil || n <= 0 {
						return fmt.Errorf("baud rate must be a positive number")
					}
					return nil
				}),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Pushbullet access token (optional)").
				Description("Leave empty to log alerts instead of pushing them").
				EchoMode(huh.EchoModePassword).
				Value(&cfg.APIKey),
		),
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Metrics to monitor").
				Options(metricOptions...).
				Value(&metrics).
				Validate(func(v []string) error {
					if len(v) == 0 {
						return fmt.Errorf("pick at least one metric")
					}
					return nil
				}),
		),
	)

	if err := form.Run(); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to get user input",
			"Check terminal compatibility or use --non-interactive flag")
	}

	cfg.Port = strings.TrimSpace(cfg.Port)
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.BaudRate, _ = strconv.Atoi(strings.TrimSpace(baud))
	cfg.Metrics = metrics
	return nil
}

// portPrompt offers the detected serial ports, or a free-text field when
// none are found.
func portPrompt(port *string) huh.Field {
	ports, _ := listPorts()
	if len(ports) == 0 {
		return huh.NewInput().
			Title("Serial port").
			Description("No serial ports detected. Enter one, or leave empty to set later").
			Placeholder("/dev/ttyUSB0 or COM3").
			Value(port)
	}

	options := make([]huh.Option[string], 0, len(ports)+1)
	for _, p := range ports {
		label := p.Name
		if p.Product != "" {
			label += " (" + p.Product + ")"
		}
		options = append(options, huh.NewOption(label, p.Name))
	}
	options = append(options, huh.NewOption("Set later", ""))

	if *port == "" {
		*port = ports[0].Name
	}
	return huh.NewSelect[string]().
		Title("Serial port").
		Description("The board running the sensor firmware").
		Options(options...).
		Value(port)
}
