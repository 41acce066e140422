package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/muurk/thermabridge/internal/config"
	"github.com/muurk/thermabridge/internal/logging"
	"github.com/muurk/thermabridge/internal/server"
	"github.com/muurk/thermabridge/internal/version"
	"go.uber.org/zap"
)

const (
	// DefaultPort is the port both device servers listen on
	DefaultPort = 80

	// DefaultTimeout is the default HTTP request timeout
	DefaultTimeout = 10 * time.Second

	// DefaultMaxRetries is the default number of retry attempts for failed requests
	DefaultMaxRetries = 3

	// DefaultRetryDelay is the default delay between retry attempts
	DefaultRetryDelay = 1 * time.Second

	// DefaultMaxRetryDelay is the maximum delay for exponential backoff
	DefaultMaxRetryDelay = 30 * time.Second
)

// Client talks to one ThermaBridge device over its local HTTP API.
type Client struct {
	// BaseURL is the base URL for the device (e.g., "http://192.168.4.1:80")
	BaseURL string

	HTTPClient *http.Client

	MaxRetries            int
	RetryDelay            time.Duration
	MaxRetryDelay         time.Duration
	UseExponentialBackoff bool

	// UserAgent is sent on every request
	UserAgent string

	// sleep waits between retries; replaced in tests
	sleep func(ctx context.Context, d time.Duration) error
}

// NewClient creates a client for the device at host:port.
func NewClient(host string, port int) *Client {
	return NewClientWithURL("http://" + net.JoinHostPort(host, strconv.Itoa(port)))
}

// NewClientWithURL creates a client with a full base URL.
func NewClientWithURL(baseURL string) *Client {
	return &Client{
		BaseURL:               strings.TrimRight(baseURL, "/"),
		HTTPClient:            &http.Client{Timeout: DefaultTimeout},
		MaxRetries:            DefaultMaxRetries,
		RetryDelay:            DefaultRetryDelay,
		MaxRetryDelay:         DefaultMaxRetryDelay,
		UseExponentialBackoff: true,
		UserAgent:             version.UserAgent(),
		sleep:                 sleepContext,
	}
}

// SetTimeout sets the HTTP request timeout
func (c *Client) SetTimeout(timeout time.Duration) {
	c.HTTPClient.Timeout = timeout
}

// SetRetry configures retry behavior
func (c *Client) SetRetry(maxRetries int, retryDelay time.Duration) {
	c.MaxRetries = maxRetries
	c.RetryDelay = retryDelay
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (c *Client) host() string {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return c.BaseURL
	}
	return u.Host
}

// withRetry runs attempt until it succeeds, returns a non-retryable error,
// or the retry budget is spent.
func (c *Client) withRetry(ctx context.Context, op string, attempt func() error) error {
	var lastErr error
	delay := c.RetryDelay

	for i := 0; i <= c.MaxRetries; i++ {
		if i > 0 {
			logging.Debug("Retrying device request",
				zap.String("op", op),
				zap.Int("attempt", i+1),
				zap.Duration("delay", delay),
				zap.Error(lastErr))
			if err := c.sleep(ctx, delay); err != nil {
				return lastErr
			}
			if c.UseExponentialBackoff {
				delay *= 2
				if delay > c.MaxRetryDelay {
					delay = c.MaxRetryDelay
				}
			}
		}

		lastErr = attempt()
		if lastErr == nil || !IsRetryable(lastErr) {
			return lastErr
		}
	}
	return lastErr
}

// get performs one GET and returns the body of a 200 response.
func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return nil, NewNetworkError("failed to create GET request", c.host(), err)
	}
	req.Header.Set("User-Agent", c.UserAgent)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, NewNetworkError("GET "+path+" failed", c.host(), err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewNetworkError("failed to read response body", c.host(), err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, NewHTTPError(resp.StatusCode, fmt.Sprintf("GET %s returned %d: %s", path, resp.StatusCode, strings.TrimSpace(string(body))))
	}
	return body, nil
}

func (c *Client) getJSON(ctx context.Context, path string, v any) error {
	return c.withRetry(ctx, path, func() error {
		body, err := c.get(ctx, path)
		if err != nil {
			return err
		}
		if err := json.Unmarshal(body, v); err != nil {
			return NewParseError("failed to parse "+path+" response", err)
		}
		return nil
	})
}

// Status fetches /status.
func (c *Client) Status(ctx context.Context) (*server.StatusResponse, error) {
	var s server.StatusResponse
	if err := c.getJSON(ctx, "/status", &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Health fetches /health.
func (c *Client) Health(ctx context.Context) (*server.HealthResponse, error) {
	var h server.HealthResponse
	if err := c.getJSON(ctx, "/health", &h); err != nil {
		return nil, err
	}
	return &h, nil
}

// Info fetches /info. Only an operational device serves it.
func (c *Client) Info(ctx context.Context) (*server.InfoResponse, error) {
	var info server.InfoResponse
	if err := c.getJSON(ctx, "/info", &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// Config fetches the raw persisted document and its decoded form. A device
// with no stored document returns an ErrTypeNotConfigured error.
func (c *Client) Config(ctx context.Context) ([]byte, *config.Record, error) {
	var raw []byte
	err := c.withRetry(ctx, "/config", func() error {
		body, err := c.get(ctx, "/config")
		if err != nil {
			return err
		}
		raw = body
		return nil
	})
	var devErr *DeviceError
	if errors.As(err, &devErr) && devErr.Type == ErrTypeHTTP && devErr.StatusCode == http.StatusNotFound {
		return nil, nil, &DeviceError{
			Type:       ErrTypeNotConfigured,
			Message:    "device has no config.json",
			StatusCode: http.StatusNotFound,
			Err:        err,
			DeviceAddr: c.host(),
		}
	}
	if err != nil {
		return nil, nil, err
	}

	rec, err := config.Decode(raw)
	if err != nil {
		return raw, nil, NewParseError("failed to parse config document", err)
	}
	return raw, &rec, nil
}

// Credentials is a provisioning submission.
type Credentials struct {
	SSID    string
	PSK     string
	DevName string
}

// Validate rejects a submission the device would refuse.
func (cr Credentials) Validate() error {
	if strings.TrimSpace(cr.SSID) == "" {
		return NewValidationError("SSID required")
	}
	return nil
}

func (cr Credentials) form() url.Values {
	v := url.Values{}
	v.Set("ssid", cr.SSID)
	v.Set("psk", cr.PSK)
	v.Set("devname", cr.DevName)
	return v
}

// Provision posts credentials to /save and returns the acknowledgment page.
// It is not retried once the device has answered: a second submission would
// restart the connection attempt.
func (c *Client) Provision(ctx context.Context, cr Credentials) (string, error) {
	if err := cr.Validate(); err != nil {
		return "", err
	}

	var ack string
	err := c.withRetry(ctx, "/save", func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/save", strings.NewReader(cr.form().Encode()))
		if err != nil {
			return NewNetworkError("failed to create POST request", c.host(), err)
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("User-Agent", c.UserAgent)

		resp, err := c.HTTPClient.Do(req)
		if err != nil {
			devErr := NewNetworkError("POST /save failed", c.host(), err)
			// Only a refused dial is known not to have reached the device.
			devErr.Retryable = devErr.Type == ErrTypeConnectionRefused
			return devErr
		}
		defer func() { _ = resp.Body.Close() }()

		body, _ := io.ReadAll(resp.Body)
		switch resp.StatusCode {
		case http.StatusOK:
			ack = string(body)
			return nil
		case http.StatusBadRequest:
			return NewValidationError(strings.TrimSpace(string(body)))
		default:
			httpErr := NewHTTPError(resp.StatusCode, fmt.Sprintf("POST /save returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
			httpErr.Retryable = false
			return httpErr
		}
	})
	return ack, err
}

// AckText strips markup from a /save acknowledgment page.
func AckText(page string) string {
	var b bytes.Buffer
	inTag := false
	for _, r := range page {
		switch {
		case r == '<':
			inTag = true
			if b.Len() > 0 {
				b.WriteByte(' ')
			}
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return html.UnescapeString(strings.Join(strings.Fields(b.String()), " "))
}
