package notify

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/watchdog/internal/config"
	"github.com/rileyhilliard/watchdog/internal/errors"
	"github.com/rileyhilliard/watchdog/internal/logger"
)

func TestPushbullet_Send(t *testing.T) {
	var got pushRequest
	var gotToken, gotPath, gotMethod, gotType string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotToken = r.Header.Get("Access-Token")
		gotType = r.Header.Get("Content-Type")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"active":true,"iden":"ujpah72o0"}`))
	}))
	defer srv.Close()

	pb, err := NewPushbullet(" o.token ", srv.URL+"/", nil)
	require.NoError(t, err)

	err = pb.Send(context.Background(), "High Temperature Alert", "Temperature: 41 °C")
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/pushes", gotPath)
	assert.Equal(t, "o.token", gotToken)
	assert.Equal(t, "application/json", gotType)
	assert.Equal(t, pushRequest{Type: "note", Title: "High Temperature Alert", Body: "Temperature: 41 °C"}, got)
}

func TestPushbullet_Errors(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantIs      error
		errContains string
	}{
		{
			name:        "unauthorized with api message",
			status:      http.StatusUnauthorized,
			body:        `{"error":{"code":"invalid_access_token","message":"Access token is missing or invalid.","type":"invalid_request"}}`,
			wantIs:      ErrUnauthorized,
			errContains: "Access token is missing or invalid.",
		},
		{
			name:        "forbidden",
			status:      http.StatusForbidden,
			body:        "",
			wantIs:      ErrUnauthorized,
			errContains: "403",
		},
		{
			name:        "rate limited",
			status:      http.StatusTooManyRequests,
			body:        `{"error":{"message":"Account has used too many requests."}}`,
			wantIs:      ErrRateLimited,
			errContains: "too many requests",
		},
		{
			name:        "server error plain body",
			status:      http.StatusServiceUnavailable,
			body:        "upstream down",
			errContains: "pushbullet returned 503: upstream down",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			pb, err := NewPushbullet("o.token", srv.URL, &http.Client{Timeout: time.Second})
			require.NoError(t, err)

			err = pb.Send(context.Background(), "t", "b")
			require.Error(t, err)
			if tt.wantIs != nil {
				assert.True(t, stderrors.Is(err, tt.wantIs), "got %v", err)
			}
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}

func TestPushbullet_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	pb, err := NewPushbullet("o.token", srv.URL, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = pb.Send(ctx, "t", "b")
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, context.Canceled))
}

func TestPushbullet_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	pb, err := NewPushbullet("o.token", url, &http.Client{Timeout: time.Second})
	require.NoError(t, err)

	err = pb.Send(context.Background(), "t", "b")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "send push")
}

func TestNewPushbullet(t *testing.T) {
	_, err := NewPushbullet("  ", "", nil)
	assert.Error(t, err)

	pb, err := NewPushbullet("o.token", "", nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultPushbulletURL, pb.baseURL)
	assert.Equal(t, defaultTimeout, pb.client.Timeout)

	custom := &http.Client{}
	pb, err = NewPushbullet("o.token", "", custom)
	require.NoError(t, err)
	assert.Equal(t, defaultTimeout, custom.Timeout, "zero timeout gets the default")
}

func TestLogNotifier(t *testing.T) {
	buf := logger.NewBufferLogger()
	n := NewLog(buf)

	require.NoError(t, n.Send(context.Background(), "Gas Level Alert", "Gas Level: 250"))

	msgs := buf.Snapshot()
	require.Len(t, msgs, 1)
	assert.Equal(t, "info", msgs[0].Level)
	assert.Equal(t, "NOTIFY Gas Level Alert: Gas Level: 250", msgs[0].Message)
}

func TestNoop(t *testing.T) {
	assert.NoError(t, Noop().Send(context.Background(), "t", "b"))
}

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		apiKey   string
		dryRun   bool
		wantType string
		wantWarn bool
	}{
		{"api key set", "o.token", false, "pushbullet", false},
		{"dry run wins over api key", "o.token", true, "log", false},
		{"no api key", "", false, "log", true},
		{"no api key dry run", "", true, "log", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			cfg.APIKey = tt.apiKey
			buf := logger.NewBufferLogger()

			n, err := New(cfg, tt.dryRun, buf)
			require.NoError(t, err)

			switch tt.wantType {
			case "pushbullet":
				assert.IsType(t, &Pushbullet{}, n)
			case "log":
				assert.IsType(t, &Log{}, n)
			}
			assert.Equal(t, tt.wantWarn, buf.HasLevel("warn"))
		})
	}
}

func TestNew_BlankKey(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.APIKey = "   "

	_, err := New(cfg, false, logger.Noop())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}
