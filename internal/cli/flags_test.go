package cli

import (
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/watchdog/internal/config"
	"github.com/rileyhilliard/watchdog/internal/errors"
)

func TestParseInterval(t *testing.T) {
	tests := []struct {
		name    string
		flag    string
		want    time.Duration
		wantErr bool
	}{
		{
			name: "valid seconds",
			flag: "2s",
			want: 2 * time.Second,
		},
		{
			name: "valid milliseconds",
			flag: "500ms",
			want: 500 * time.Millisecond,
		},
		{
			name: "lower bound",
			flag: "50ms",
			want: config.MinPollInterval,
		},
		{
			name: "upper bound",
			flag: "1m",
			want: config.MaxPollInterval,
		},
		{
			name:    "below lower bound",
			flag:    "10ms",
			wantErr: true,
		},
		{
			name:    "above upper bound",
			flag:    "2m",
			wantErr: true,
		},
		{
			name:    "missing unit",
			flag:    "5",
			wantErr: true,
		},
		{
			name:    "not a duration",
			flag:    "fast",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseInterval(tt.flag)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsCode(err, errors.ErrConfig))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSourceFlags_Apply(t *testing.T) {
	t.Run("no flags leaves config alone", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.Port = "/dev/ttyUSB0"
		require.NoError(t, SourceFlags{}.Apply(cfg))
		assert.Equal(t, "/dev/ttyUSB0", cfg.Port)
		assert.Equal(t, config.DefaultBaudRate, cfg.BaudRate)
		assert.Equal(t, time.Second, cfg.PollInterval)
	})

	t.Run("port and baud override", func(t *testing.T) {
		cfg := config.DefaultConfig()
		require.NoError(t, SourceFlags{Port: "/dev/ttyACM0", Baud: 115200}.Apply(cfg))
		assert.Equal(t, "/dev/ttyACM0", cfg.Port)
		assert.Equal(t, 115200, cfg.BaudRate)
	})

	t.Run("port clears configured replay", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.Replay = "capture.log"
		require.NoError(t, SourceFlags{Port: "/dev/ttyACM0"}.Apply(cfg))
		assert.Empty(t, cfg.Replay)
	})

	t.Run("replay flag wins alongside port", func(t *testing.T) {
		cfg := config.DefaultConfig()
		require.NoError(t, SourceFlags{Port: "/dev/ttyACM0", Replay: "-"}.Apply(cfg))
		assert.Equal(t, "-", cfg.Replay)
	})

	t.Run("interval", func(t *testing.T) {
		cfg := config.DefaultConfig()
		require.NoError(t, SourceFlags{Interval: "250ms"}.Apply(cfg))
		assert.Equal(t, 250*time.Millisecond, cfg.PollInterval)
	})

	t.Run("bad interval", func(t *testing.T) {
		cfg := config.DefaultConfig()
		err := SourceFlags{Interval: "soon"}.Apply(cfg)
		require.Error(t, err)
		assert.Equal(t, time.Second, cfg.PollInterval)
	})
}

func TestAddSourceFlags(t *testing.T) {
	var flags SourceFlags
	cmd := &cobra.Command{Use: "test"}
	AddSourceFlags(cmd, &flags)

	require.NoError(t, cmd.ParseFlags([]string{
		"--port", "/dev/ttyUSB1",
		"--baud", "57600",
		"--replay", "cap.log",
		"--interval", "100ms",
		"--dry-run",
		"--record",
	}))

	assert.Equal(t, SourceFlags{
		Port:     "/dev/ttyUSB1",
		Baud:     57600,
		Replay:   "cap.log",
		Interval: "100ms",
		DryRun:   true,
		Record:   true,
	}, flags)
}
