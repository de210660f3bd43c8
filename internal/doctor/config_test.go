package doctor

import (
	"errors"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rileyhilliard/watchdog/internal/config"
	"github.com/rileyhilliard/watchdog/internal/lock"
	"github.com/rileyhilliard/watchdog/internal/transport"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), config.ConfigFileName)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func defaultsTarget(t *testing.T) *Target {
	t.Helper()
	return &Target{
		Config:   config.DefaultConfig(),
		InitPath: filepath.Join(t.TempDir(), config.ConfigFileName),
	}
}

func TestConfigFileCheck(t *testing.T) {
	t.Run("config found", func(t *testing.T) {
		path := writeConfig(t, "version: 1\nport: /dev/ttyUSB0\n")
		result := (&ConfigFileCheck{Target: LoadTarget(path)}).Run()

		if result.Status != StatusPass {
			t.Errorf("expected StatusPass, got %v: %s", result.Status, result.Message)
		}
		if !strings.Contains(result.Message, path) {
			t.Errorf("expected path in message, got %q", result.Message)
		}
	})

	t.Run("explicit path missing", func(t *testing.T) {
		target := LoadTarget(filepath.Join(t.TempDir(), "nonexistent.yaml"))
		result := (&ConfigFileCheck{Target: target}).Run()

		if result.Status != StatusFail {
			t.Errorf("expected StatusFail, got %v", result.Status)
		}
	})

	t.Run("defaults only", func(t *testing.T) {
		result := (&ConfigFileCheck{Target: defaultsTarget(t)}).Run()

		if result.Status != StatusWarn {
			t.Errorf("expected StatusWarn, got %v", result.Status)
		}
		if !result.Fixable {
			t.Error("expected missing config to be fixable")
		}
	})

	t.Run("name and category", func(t *testing.T) {
		check := &ConfigFileCheck{}
		if check.Name() != "config_file" {
			t.Errorf("expected name 'config_file', got %s", check.Name())
		}
		if check.Category() != "CONFIG" {
			t.Errorf("expected category 'CONFIG', got %s", check.Category())
		}
	})
}

func TestConfigFileCheck_Fix(t *testing.T) {
	target := defaultsTarget(t)
	target.Config.Port = "/dev/ttyACM0"
	check := &ConfigFileCheck{Target: target}

	if err := check.Fix(); err != nil {
		t.Fatalf("Fix() error: %v", err)
	}

	if result := check.Run(); result.Status != StatusPass {
		t.Errorf("expected StatusPass after fix, got %v", result.Status)
	}
	cfg, err := config.Load(target.InitPath)
	if err != nil {
		t.Fatalf("written config does not load: %v", err)
	}
	if cfg.Port != "/dev/ttyACM0" {
		t.Errorf("expected port to carry over, got %q", cfg.Port)
	}
}

func TestConfigSchemaCheck(t *testing.T) {
	t.Run("valid schema", func(t *testing.T) {
		path := writeConfig(t, "version: 1\nport: /dev/ttyUSB0\n")
		result := (&ConfigSchemaCheck{Target: LoadTarget(path)}).Run()

		if result.Status != StatusPass {
			t.Errorf("expected StatusPass, got %v: %s", result.Status, result.Message)
		}
	})

	t.Run("invalid yaml", func(t *testing.T) {
		path := writeConfig(t, `this is not valid yaml: [unclosed`)
		result := (&ConfigSchemaCheck{Target: LoadTarget(path)}).Run()

		if result.Status != StatusFail {
			t.Errorf("expected StatusFail, got %v", result.Status)
		}
	})

	t.Run("validation error", func(t *testing.T) {
		path := writeConfig(t, "version: 1\nbaud_rate: -5\n")
		result := (&ConfigSchemaCheck{Target: LoadTarget(path)}).Run()

		if result.Status != StatusFail {
			t.Errorf("expected StatusFail, got %v", result.Status)
		}
		if result.Suggestion == "" {
			t.Error("expected the validation suggestion to be carried over")
		}
	})
}

func TestRulesCheck(t *testing.T) {
	result := (&RulesCheck{Target: defaultsTarget(t)}).Run()

	if result.Status != StatusPass {
		t.Fatalf("expected StatusPass, got %v: %s", result.Status, result.Message)
	}
	for _, want := range []string{"4 metrics monitored", "humidity [30% - 70%]", "temperature [< 40 °C]"} {
		if !strings.Contains(result.Message, want) {
			t.Errorf("expected %q in %q", want, result.Message)
		}
	}

	bad := defaultsTarget(t)
	bad.Config.Metrics = []string{"pressure"}
	if result := (&RulesCheck{Target: bad}).Run(); result.Status != StatusFail {
		t.Errorf("expected StatusFail for unknown metric, got %v", result.Status)
	}
}

func fakePorts(t *testing.T, ports []transport.PortInfo, err error) {
	t.Helper()
	orig := listPorts
	listPorts = func() ([]transport.PortInfo, error) { return ports, err }
	t.Cleanup(func() { listPorts = orig })
}

func TestSourceCheck(t *testing.T) {
	fakePorts(t, []transport.PortInfo{
		{Name: "/dev/ttyACM0", IsUSB: true, Product: "Arduino Uno"},
	}, nil)

	capture := filepath.Join(t.TempDir(), "capture.log")
	if err := os.WriteFile(capture, []byte("Temperature: 20\n"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		port     string
		replay   string
		status   CheckStatus
		contains string
	}{
		{"listed port", "/dev/ttyACM0", "", StatusPass, "Arduino Uno"},
		{"missing port", "/dev/ttyUSB9", "", StatusFail, "/dev/ttyUSB9"},
		{"no port", "", "", StatusFail, "No serial port configured"},
		{"replay file", "", capture, StatusPass, "Replaying"},
		{"replay stdin", "", "-", StatusPass, "stdin"},
		{"replay missing", "", filepath.Join(t.TempDir(), "gone.log"), StatusFail, "not readable"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			target := defaultsTarget(t)
			target.Config.Port = tc.port
			target.Config.Replay = tc.replay

			result := (&SourceCheck{Target: target}).Run()
			if result.Status != tc.status {
				t.Errorf("expected %v, got %v: %s", tc.status, result.Status, result.Message)
			}
			if !strings.Contains(result.Message, tc.contains) {
				t.Errorf("expected %q in %q", tc.contains, result.Message)
			}
		})
	}
}

func TestSourceCheck_SuggestsAvailablePorts(t *testing.T) {
	fakePorts(t, []transport.PortInfo{{Name: "/dev/ttyACM0"}, {Name: "/dev/ttyACM1"}}, nil)
	target := defaultsTarget(t)
	target.Config.Port = "/dev/ttyUSB9"

	result := (&SourceCheck{Target: target}).Run()
	if result.Suggestion != "Available: /dev/ttyACM0, /dev/ttyACM1" {
		t.Errorf("unexpected suggestion %q", result.Suggestion)
	}
}

func TestBaudRateCheck(t *testing.T) {
	target := defaultsTarget(t)
	if result := (&BaudRateCheck{Target: target}).Run(); result.Status != StatusPass {
		t.Errorf("expected 9600 to pass, got %v", result.Status)
	}

	target.Config.BaudRate = 12345
	if result := (&BaudRateCheck{Target: target}).Run(); result.Status != StatusWarn {
		t.Errorf("expected unusual rate to warn, got %v", result.Status)
	}

	target.Config.Replay = "-"
	if result := (&BaudRateCheck{Target: target}).Run(); result.Status != StatusPass {
		t.Errorf("expected replay to skip the rate check, got %v", result.Status)
	}
}

func TestPortLockCheck(t *testing.T) {
	target := defaultsTarget(t)
	target.LockDir = t.TempDir()
	check := &PortLockCheck{Target: target}

	target.Config.Replay = "capture.log"
	if r := check.Run(); r.Status != StatusPass {
		t.Errorf("replay: expected pass, got %v", r.Status)
	}

	target.Config.Replay = ""
	target.Config.Port = "/dev/ttyUSB0"
	if r := check.Run(); r.Status != StatusPass {
		t.Errorf("free port: expected pass, got %v: %s", r.Status, r.Message)
	}

	held, err := lock.TryAcquire(target.LockDir, "/dev/ttyUSB0", "watchdog run")
	if err != nil {
		t.Fatal(err)
	}
	defer held.Release()

	r := check.Run()
	if r.Status != StatusWarn {
		t.Errorf("held port: expected warn, got %v", r.Status)
	}
	if !strings.Contains(r.Message, "watchdog run") {
		t.Errorf("expected holder in message, got %q", r.Message)
	}
}

func TestNotifierCheck(t *testing.T) {
	target := defaultsTarget(t)
	if result := (&NotifierCheck{Target: target}).Run(); result.Status != StatusWarn {
		t.Errorf("expected missing key to warn, got %v", result.Status)
	}

	target.Config.APIKey = "o.v1secrettoken"
	result := (&NotifierCheck{Target: target}).Run()
	if result.Status != StatusPass {
		t.Errorf("expected StatusPass, got %v", result.Status)
	}
	if strings.Contains(result.Message, "secrettoken") {
		t.Errorf("token leaked into message: %q", result.Message)
	}
}

func TestMetricsEndpointCheck(t *testing.T) {
	target := defaultsTarget(t)
	if result := (&MetricsEndpointCheck{Target: target}).Run(); result.Status != StatusPass {
		t.Errorf("expected disabled endpoint to pass, got %v", result.Status)
	}

	target.Config.MetricsListen = "127.0.0.1:0"
	if result := (&MetricsEndpointCheck{Target: target}).Run(); result.Status != StatusPass {
		t.Errorf("expected free port to pass, got %v: %s", result.Status, result.Message)
	}

	orig := listen
	listen = func(network, addr string) (net.Listener, error) {
		return nil, errors.New("address already in use")
	}
	defer func() { listen = orig }()

	target.Config.MetricsListen = ":9108"
	result := (&MetricsEndpointCheck{Target: target}).Run()
	if result.Status != StatusFail {
		t.Errorf("expected StatusFail, got %v", result.Status)
	}
	if !strings.Contains(result.Message, "address already in use") {
		t.Errorf("unexpected message %q", result.Message)
	}
}

func TestAll(t *testing.T) {
	target := defaultsTarget(t)
	if got := len(All(target)); got != 8 {
		t.Errorf("expected 8 checks, got %d", got)
	}
	for _, c := range ConfigChecks(target) {
		if c.Category() != "CONFIG" {
			t.Errorf("config check %s has category %s", c.Name(), c.Category())
		}
	}
}
