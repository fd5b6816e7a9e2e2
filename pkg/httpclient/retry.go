package httpclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"syscall"
	"time"
)

// Config tunes the retry policy. Zero values fall back to the defaults below.
type Config struct {
	MaxAttempts  int
	InitialDelay time.Duration
	Multiplier   float64
	MaxDelay     time.Duration
	Timeout      time.Duration
}

const (
	DefaultMaxAttempts  = 3
	DefaultInitialDelay = time.Second
	DefaultMultiplier   = 2
	DefaultMaxDelay     = 10 * time.Second
	DefaultTimeout      = 30 * time.Second
)

// Client executes HTTP requests with exponential-backoff retries.
// Retryable failures are network errors (timeout, connection refused)
// and 5xx/429 responses; any other non-2xx aborts immediately.
type Client struct {
	http *http.Client
	cfg  Config
}

func New(cfg Config) *Client {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.InitialDelay <= 0 {
		cfg.InitialDelay = DefaultInitialDelay
	}
	if cfg.Multiplier <= 0 {
		cfg.Multiplier = DefaultMultiplier
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = DefaultMaxDelay
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Client{
		http: &http.Client{Timeout: cfg.Timeout},
		cfg:  cfg,
	}
}

// Request describes one outbound call.
type Request struct {
	Method string
	URL    string
	Header http.Header
	Body   []byte
}

// StatusError is a non-2xx response.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.Status, e.Body)
}

// RetryError aggregates an operation that failed on every attempt.
type RetryError struct {
	Label    string
	Attempts int
	LastErr  error
}

func (e *RetryError) Error() string {
	return fmt.Sprintf("%s failed after %d attempts: %v", e.Label, e.Attempts, e.LastErr)
}

func (e *RetryError) Unwrap() error { return e.LastErr }

// Do runs the request under the retry policy and returns the response body.
// label names the operation in logs and in the aggregated error.
func (c *Client) Do(ctx context.Context, req *Request, label string) ([]byte, error) {
	delay := c.cfg.InitialDelay
	var lastErr error
	for attempt := 1; attempt <= c.cfg.MaxAttempts; attempt++ {
		body, err := c.attempt(ctx, req)
		if err == nil {
			if attempt > 1 {
				log.Printf("[httpclient] %s succeeded on attempt %d", label, attempt)
			}
			return body, nil
		}
		lastErr = err
		if !Retryable(err) {
			log.Printf("[httpclient] %s failed (not retryable): %v", label, err)
			return nil, err
		}
		log.Printf("[httpclient] %s attempt %d/%d failed: %v", label, attempt, c.cfg.MaxAttempts, err)
		if attempt == c.cfg.MaxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
		delay = time.Duration(float64(delay) * c.cfg.Multiplier)
		if delay > c.cfg.MaxDelay {
			delay = c.cfg.MaxDelay
		}
	}
	return nil, &RetryError{Label: label, Attempts: c.cfg.MaxAttempts, LastErr: lastErr}
}

func (c *Client) attempt(ctx context.Context, req *Request) ([]byte, error) {
	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return nil, err
	}
	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return respBody, nil
	}
	return nil, &StatusError{Status: resp.StatusCode, Body: truncate(respBody, 512)}
}

// Retryable classifies an attempt failure. Only transient transport
// failures (timeouts, connection refused/reset) and 5xx/429 responses
// retry; malformed requests, TLS failures and 4xx other than 429 are
// definitive and must not consume remaining attempts.
func Retryable(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Status >= 500 || se.Status == http.StatusTooManyRequests
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	return errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET)
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}
