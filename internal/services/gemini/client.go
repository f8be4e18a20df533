package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"dubsync/internal/logging"
	"dubsync/internal/services"
)

const (
	// DefaultBaseURL is the public Generative Language API host.
	DefaultBaseURL = "https://generativelanguage.googleapis.com"

	defaultHTTPTimeout     = 300 * time.Second
	defaultPollInterval    = 2 * time.Second
	defaultPollMaxInterval = 15 * time.Second
	defaultPollTimeout     = 10 * time.Minute
)

// Config captures the settings required to talk to Gemini.
type Config struct {
	APIKey          string
	BaseURL         string
	Model           string
	Prompt          string
	PollInterval    time.Duration
	PollMaxInterval time.Duration
	PollTimeout     time.Duration
	TimeoutSeconds  int
}

// Client talks to the Gemini REST API.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *slog.Logger
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient constructs a Gemini client, filling zero durations with defaults.
func NewClient(cfg Config, logger *slog.Logger, opts ...Option) *Client {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.Model = strings.TrimPrefix(strings.TrimSpace(cfg.Model), "models/")
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	if cfg.PollMaxInterval < cfg.PollInterval {
		cfg.PollMaxInterval = max(defaultPollMaxInterval, cfg.PollInterval)
	}
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = defaultPollTimeout
	}
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}

	client := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logging.NewComponentLogger(logger, "gemini"),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// apiError mirrors the error envelope returned by Google APIs.
type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

type statusError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("%s: http %d: %s", e.Op, e.StatusCode, e.Message)
}

func (c *Client) endpoint(path string) string {
	return c.cfg.BaseURL + "/" + strings.TrimLeft(path, "/")
}

// doJSON sends a request with an optional JSON body and decodes a JSON reply
// into out when out is non-nil.
func (c *Client) doJSON(ctx context.Context, op, method, url string, body any, out any) (http.Header, error) {
	var (
		req *http.Request
		err error
	)
	if body != nil {
		req, err = newJSONRequest(ctx, method, url, body)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, url, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return c.do(req, op, out)
}

func (c *Client) do(req *http.Request, op string, out any) (http.Header, error) {
	req.Header.Set("x-goog-api-key", c.cfg.APIKey)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransport(op, err)
	}
	defer resp.Body.Close()
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "gemini", op, "read body", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return nil, classifyStatus(op, resp.StatusCode, payload)
	}
	if out != nil && len(bytes.TrimSpace(payload)) > 0 {
		if err := json.Unmarshal(payload, out); err != nil {
			return nil, services.Wrap(services.ErrExternalTool, "gemini", op, "decode response", err)
		}
	}
	return resp.Header, nil
}

func classifyStatus(op string, status int, payload []byte) error {
	message := strings.TrimSpace(string(payload))
	var envelope apiError
	if err := json.Unmarshal(payload, &envelope); err == nil && envelope.Error.Message != "" {
		message = envelope.Error.Message
		if envelope.Error.Status != "" {
			message = envelope.Error.Status + ": " + message
		}
	}
	statusErr := &statusError{Op: op, StatusCode: status, Message: message}
	marker := services.ErrExternalTool
	switch {
	case status == http.StatusNotFound:
		marker = services.ErrNotFound
	case status == http.StatusTooManyRequests || status >= http.StatusInternalServerError:
		marker = services.ErrTransient
	}
	return services.Wrap(marker, "gemini", "", "", statusErr)
}

func classifyTransport(op string, err error) error {
	if ne, ok := err.(interface{ Timeout() bool }); ok && ne.Timeout() {
		return services.Wrap(services.ErrTimeout, "gemini", op, "", err)
	}
	return services.Wrap(services.ErrTransient, "gemini", op, "", err)
}
