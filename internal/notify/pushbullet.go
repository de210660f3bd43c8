// Package notify delivers alert notifications. Pushbullet sends a push to the
// owner's phone; Log and Noop stand in when no API key is configured.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultPushbulletURL is the Pushbullet API root.
	DefaultPushbulletURL = "https://api.pushbullet.com/v2"
	defaultTimeout       = 10 * time.Second
	maxErrorBodySize     = 4096
)

// ErrUnauthorized indicates Pushbullet rejected the access token.
var ErrUnauthorized = errors.New("pushbullet rejected the access token")

// ErrRateLimited indicates Pushbullet throttled the account.
var ErrRateLimited = errors.New("pushbullet rate limit reached")

// Pushbullet sends notes through the Pushbullet REST API.
type Pushbullet struct {
	baseURL string
	token   string
	client  *http.Client
}

type pushRequest struct {
	Type  string `json:"type"`
	Title string `json:"title"`
	Body  string `json:"body"`
}

type apiError struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// NewPushbullet creates a client. An empty baseURL means DefaultPushbulletURL;
// a nil client gets a 10s timeout.
func NewPushbullet(token, baseURL string, client *http.Client) (*Pushbullet, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, errors.New("pushbullet access token required")
	}
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		trimmed = DefaultPushbulletURL
	}
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	} else if client.Timeout == 0 {
		client.Timeout = defaultTimeout
	}
	return &Pushbullet{
		baseURL: trimmed,
		token:   token,
		client:  client,
	}, nil
}

// Send pushes a note with title and body to every device on the account.
func (p *Pushbullet) Send(ctx context.Context, title, body string) error {
	payload, err := json.Marshal(pushRequest{Type: "note", Title: title, Body: body})
	if err != nil {
		return fmt.Errorf("marshal push: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/pushes", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Access-Token", p.token)

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("send push: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errorForStatus(resp)
	}
	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBodySize))
	return nil
}

func errorForStatus(resp *http.Response) error {
	buf, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))

	summary := strings.TrimSpace(string(buf))
	var apiErr apiError
	if err := json.Unmarshal(buf, &apiErr); err == nil && apiErr.Error.Message != "" {
		summary = apiErr.Error.Message
	}
	if summary == "" {
		summary = resp.Status
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrUnauthorized, summary)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", ErrRateLimited, summary)
	default:
		return fmt.Errorf("pushbullet returned %d: %s", resp.StatusCode, summary)
	}
}
