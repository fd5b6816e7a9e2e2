package videogen

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sanjay-gangishetty/VideoGen/pkg/httpclient"
)

// Video job states as reported through the normalized Response.
const (
	StatusPending    = "PENDING"
	StatusProcessing = "PROCESSING"
	StatusCompleted  = "COMPLETED"
	StatusFailed     = "FAILED"
)

// GenerateParams is the provider-neutral generation request.
type GenerateParams struct {
	Prompt     string            `json:"prompt"`
	ImageURL   string            `json:"image_url"`
	AvatarID   string            `json:"avatar_id"`
	VoiceID    string            `json:"voice_id"`
	Duration   int               `json:"duration"`
	Resolution string            `json:"resolution"`
	Extra      map[string]string `json:"extra"`
}

// Response is the normalized result every provider maps its payload into.
// Callers never branch on provider-specific shapes.
type Response struct {
	Provider  string                 `json:"provider"`
	Timestamp time.Time              `json:"timestamp"`
	JobID     string                 `json:"job_id"`
	Status    string                 `json:"status"`
	VideoURL  string                 `json:"video_url,omitempty"`
	Raw       map[string]interface{} `json:"-"`
}

// ProviderError is the normalized failure shape.
type ProviderError struct {
	Provider string
	Message  string
	Code     string
	Status   int
}

func (e *ProviderError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s: %s (code=%s status=%d)", e.Provider, e.Message, e.Code, e.Status)
	}
	return fmt.Sprintf("%s: %s (code=%s)", e.Provider, e.Message, e.Code)
}

// ValidationError names every missing or invalid required field at once,
// raised before any network call is made.
type ValidationError struct {
	Provider string
	Fields   []string
}

func (e *ValidationError) Error() string {
	return e.Provider + ": invalid params: " + strings.Join(e.Fields, "; ")
}

// Provider is the capability contract for a video-generation backend.
type Provider interface {
	Name() string
	ValidateParams(p GenerateParams) error
	Generate(ctx context.Context, p GenerateParams) (*Response, error)
	GetStatus(ctx context.Context, jobID string) (*Response, error)
	// Cancel is advisory: callers move local state to CANCELLED regardless
	// of whether the upstream cancel succeeds.
	Cancel(ctx context.Context, jobID string) error
}

// Config is the per-provider configuration block.
type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
	Retry   httpclient.Config
}

func (c Config) client() *httpclient.Client {
	retry := c.Retry
	if c.Timeout > 0 {
		retry.Timeout = c.Timeout
	}
	return httpclient.New(retry)
}

// normalizeError wraps a transport failure into a ProviderError.
func normalizeError(provider string, err error) error {
	var se *httpclient.StatusError
	if errors.As(err, &se) {
		return &ProviderError{Provider: provider, Message: se.Body, Code: "upstream_status", Status: se.Status}
	}
	var re *httpclient.RetryError
	if errors.As(err, &re) {
		return &ProviderError{Provider: provider, Message: re.Error(), Code: "retries_exhausted"}
	}
	return &ProviderError{Provider: provider, Message: err.Error(), Code: "request_failed"}
}
