package doctor

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rileyhilliard/watchdog/internal/config"
	"github.com/rileyhilliard/watchdog/internal/errors"
)

// Target is the setup under inspection. Checks share one so the config is
// found and loaded once, with any command-line overrides already applied.
type Target struct {
	// Path is the config file in use; empty means built-in defaults.
	Path    string
	Config  *config.Config
	LoadErr error

	// InitPath is where ConfigFileCheck.Fix writes a default config.
	InitPath string

	// LockDir holds port lock files; empty means the system temp dir.
	LockDir string
}

// LoadTarget finds and loads the config the same way the run commands do.
func LoadTarget(explicit string) *Target {
	cfg, path, err := config.LoadOrDefault(explicit)
	return &Target{
		Path:     path,
		Config:   cfg,
		LoadErr:  err,
		InitPath: filepath.Join(".", config.ConfigFileName),
	}
}

// suggestionOf pulls the suggestion out of a structured error.
func suggestionOf(err error, fallback string) string {
	if s := errors.SuggestionOf(err); s != "" {
		return s
	}
	return fallback
}

// ConfigFileCheck verifies that a config file was found.
type ConfigFileCheck struct {
	Target *Target
}

func (c *ConfigFileCheck) Name() string     { return "config_file" }
func (c *ConfigFileCheck) Category() string { return "CONFIG" }

func (c *ConfigFileCheck) Run() CheckResult {
	if c.Target.LoadErr != nil && c.Target.Config == nil && c.Target.Path == "" {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("Error finding config: %s", errors.Short(c.Target.LoadErr)),
			Suggestion: suggestionOf(c.Target.LoadErr, "Check file permissions or pass --config"),
		}
	}

	if c.Target.Path == "" {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    "No config file found, using defaults and WATCHDOG_* variables",
			Suggestion: "Run 'watchdog init' (or 'watchdog doctor --fix') to create " + config.ConfigFileName,
			Fixable:    true,
		}
	}

	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: fmt.Sprintf("Config file: %s", c.Target.Path),
	}
}

// Fix writes a default config file and points the target at it.
func (c *ConfigFileCheck) Fix() error {
	if c.Target.Path != "" {
		return nil
	}
	cfg := config.DefaultConfig()
	if c.Target.Config != nil {
		cfg.Port = c.Target.Config.Port
	}
	if err := config.Save(c.Target.InitPath, cfg); err != nil {
		return err
	}
	c.Target.Path = c.Target.InitPath
	c.Target.Config = cfg
	c.Target.LoadErr = nil
	return nil
}

// ConfigSchemaCheck verifies that the config loads and validates.
type ConfigSchemaCheck struct {
	Target *Target
}

func (c *ConfigSchemaCheck) Name() string     { return "config_schema" }
func (c *ConfigSchemaCheck) Category() string { return "CONFIG" }

func (c *ConfigSchemaCheck) Run() CheckResult {
	if c.Target.LoadErr != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("Failed to load config: %s", errors.Short(c.Target.LoadErr)),
			Suggestion: suggestionOf(c.Target.LoadErr, "Check the YAML syntax in your config file"),
		}
	}

	if err := config.Validate(c.Target.Config); err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("Schema error: %s", errors.Short(err)),
			Suggestion: suggestionOf(err, "Fix the configuration errors in "+config.ConfigFileName),
		}
	}

	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: "Schema valid",
	}
}

func (c *ConfigSchemaCheck) Fix() error {
	return nil // Schema issues require manual intervention
}

// RulesCheck lists the enabled metrics with their safe ranges.
type RulesCheck struct {
	Target *Target
}

func (c *RulesCheck) Name() string     { return "alert_rules" }
func (c *RulesCheck) Category() string { return "CONFIG" }

func (c *RulesCheck) Run() CheckResult {
	if c.Target.Config == nil {
		return CheckResult{
			Name:    c.Name(),
			Status:  StatusFail,
			Message: "Cannot check alert rules: config load error",
		}
	}

	rules, err := c.Target.Config.Rules()
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("Invalid alert rules: %v", err),
			Suggestion: "Valid metrics are: " + strings.Join(config.DefaultMetrics(), ", "),
		}
	}

	parts := make([]string, len(rules))
	for i, r := range rules {
		parts[i] = r.Metric.String() + " " + r.RangeLabel()
	}
	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: fmt.Sprintf("%d metric%s monitored: %s", len(rules), pluralize(len(rules)), strings.Join(parts, ", ")),
	}
}

func (c *RulesCheck) Fix() error {
	return nil
}
