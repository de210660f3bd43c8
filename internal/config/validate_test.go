package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/watchdog/internal/errors"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name        string
		modify      func(*Config)
		opts        []ValidationOption
		wantErr     bool
		errContains string
	}{
		{
			name:   "defaults are valid",
			modify: func(c *Config) {},
		},
		{
			name:        "future version",
			modify:      func(c *Config) { c.Version = CurrentConfigVersion + 1 },
			wantErr:     true,
			errContains: "from the future",
		},
		{
			name:        "source required but missing",
			modify:      func(c *Config) {},
			opts:        []ValidationOption{RequireSource()},
			wantErr:     true,
			errContains: "No serial port configured",
		},
		{
			name:   "replay satisfies source requirement",
			modify: func(c *Config) { c.Replay = "-" },
			opts:   []ValidationOption{RequireSource()},
		},
		{
			name:   "port satisfies source requirement",
			modify: func(c *Config) { c.Port = "/dev/ttyUSB0" },
			opts:   []ValidationOption{RequireSource()},
		},
		{
			name:        "zero baud rate",
			modify:      func(c *Config) { c.BaudRate = 0 },
			wantErr:     true,
			errContains: "baud_rate must be positive",
		},
		{
			name:        "unknown metric",
			modify:      func(c *Config) { c.Metrics = []string{"temperature", "pressure"} },
			wantErr:     true,
			errContains: "Invalid 'metrics' list",
		},
		{
			name: "unknown threshold metric",
			modify: func(c *Config) {
				c.Thresholds["wind"] = Threshold{High: floatPtr(10)}
			},
			wantErr:     true,
			errContains: "Unknown metric 'wind'",
		},
		{
			name: "threshold without bounds",
			modify: func(c *Config) {
				c.Thresholds["noise"] = Threshold{Inclusive: true}
			},
			wantErr:     true,
			errContains: "neither 'high' nor 'low'",
		},
		{
			name: "inverted humidity range",
			modify: func(c *Config) {
				c.Thresholds["humidity"] = Threshold{Low: floatPtr(80), High: floatPtr(20)}
			},
			wantErr:     true,
			errContains: "low (80) >= high (20)",
		},
		{
			name:        "negative cooldown",
			modify:      func(c *Config) { c.CooldownSeconds = -1 },
			wantErr:     true,
			errContains: "cooldown_seconds",
		},
		{
			name:   "zero cooldown allowed",
			modify: func(c *Config) { c.CooldownSeconds = 0 },
		},
		{
			name:        "zero buffer capacity",
			modify:      func(c *Config) { c.BufferCapacity = 0 },
			wantErr:     true,
			errContains: "buffer_capacity",
		},
		{
			name:        "huge buffer capacity",
			modify:      func(c *Config) { c.BufferCapacity = MaxBufferCapacity + 1 },
			wantErr:     true,
			errContains: "buffer_capacity",
		},
		{
			name:        "poll interval too fast",
			modify:      func(c *Config) { c.PollInterval = 10 * time.Millisecond },
			wantErr:     true,
			errContains: "poll_interval",
		},
		{
			name:        "poll interval too slow",
			modify:      func(c *Config) { c.PollInterval = 2 * time.Minute },
			wantErr:     true,
			errContains: "poll_interval",
		},
		{
			name:   "poll interval at lower bound",
			modify: func(c *Config) { c.PollInterval = MinPollInterval },
		},
		{
			name:        "zero reconnect backoff",
			modify:      func(c *Config) { c.ReconnectBackoff = 0 },
			wantErr:     true,
			errContains: "reconnect_backoff",
		},
		{
			name:        "negative retry backoff",
			modify:      func(c *Config) { c.RetryBackoff = -time.Second },
			wantErr:     true,
			errContains: "retry_backoff",
		},
		{
			name:        "negative gas floor",
			modify:      func(c *Config) { c.Parser.GasZeroFloor = -0.1 },
			wantErr:     true,
			errContains: "gas_zero_floor",
		},
		{
			name:        "unknown label metric",
			modify:      func(c *Config) { c.Parser.Labels = map[string][]string{"wind": {"Wind"}} },
			wantErr:     true,
			errContains: "parser.labels",
		},
		{
			name:        "blank label",
			modify:      func(c *Config) { c.Parser.Labels = map[string][]string{"gas": {" "}} },
			wantErr:     true,
			errContains: "empty label",
		},
		{
			name:        "negative capture retention",
			modify:      func(c *Config) { c.Capture.KeepDays = -1 },
			wantErr:     true,
			errContains: "capture.keep_days",
		},
		{
			name:   "capture retention off",
			modify: func(c *Config) { c.Capture = CaptureConfig{Dir: "captures"} },
		},
		{
			name:        "bad metrics listen address",
			modify:      func(c *Config) { c.MetricsListen = "9108" },
			wantErr:     true,
			errContains: "metrics_listen",
		},
		{
			name:   "metrics listen with host",
			modify: func(c *Config) { c.MetricsListen = "127.0.0.1:9108" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)

			err := Validate(cfg, tt.opts...)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.ErrConfig), "validation errors carry the CONFIG code")
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}

func TestValidate_Nil(t *testing.T) {
	err := Validate(nil)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}

func TestValidate_HasSuggestions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PollInterval = time.Hour

	err := Validate(cfg)
	require.Error(t, err)

	var wdErr *errors.Error
	require.ErrorAs(t, err, &wdErr)
	assert.NotEmpty(t, wdErr.Suggestion)
}
