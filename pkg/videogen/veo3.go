package videogen

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/sanjay-gangishetty/VideoGen/pkg/httpclient"
)

// Veo3Provider generates videos through Google's Veo 3 long-running
// operations API.
type Veo3Provider struct {
	cfg    Config
	client *httpclient.Client
}

func NewVeo3(cfg Config) Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://generativelanguage.googleapis.com"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &Veo3Provider{cfg: cfg, client: cfg.client()}
}

func (p *Veo3Provider) Name() string { return "veo3" }

func (p *Veo3Provider) ValidateParams(params GenerateParams) error {
	var fields []string
	if params.Prompt == "" {
		fields = append(fields, "prompt is required")
	}
	if params.Duration != 0 && (params.Duration < 4 || params.Duration > 8) {
		fields = append(fields, "duration must be between 4 and 8 seconds")
	}
	if len(fields) > 0 {
		return &ValidationError{Provider: p.Name(), Fields: fields}
	}
	return nil
}

type veoGenerateReq struct {
	Instances  []veoInstance `json:"instances"`
	Parameters veoParameters `json:"parameters"`
}

type veoInstance struct {
	Prompt string `json:"prompt"`
	Image  string `json:"image,omitempty"`
}

type veoParameters struct {
	DurationSeconds int    `json:"durationSeconds,omitempty"`
	Resolution      string `json:"resolution,omitempty"`
}

type veoOperation struct {
	Name     string    `json:"name"`
	Done     bool      `json:"done"`
	Error    *veoError `json:"error"`
	Response *struct {
		GenerateVideoResponse struct {
			GeneratedSamples []struct {
				Video struct {
					URI string `json:"uri"`
				} `json:"video"`
			} `json:"generatedSamples"`
		} `json:"generateVideoResponse"`
	} `json:"response"`
}

type veoError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (p *Veo3Provider) Generate(ctx context.Context, params GenerateParams) (*Response, error) {
	if err := p.ValidateParams(params); err != nil {
		return nil, err
	}
	payload := veoGenerateReq{
		Instances:  []veoInstance{{Prompt: params.Prompt, Image: params.ImageURL}},
		Parameters: veoParameters{DurationSeconds: params.Duration, Resolution: params.Resolution},
	}
	body, _ := json.Marshal(payload)
	respBody, err := p.client.Do(ctx, &httpclient.Request{
		Method: http.MethodPost,
		URL:    p.cfg.BaseURL + "/v1beta/models/veo-3.0-generate-001:predictLongRunning",
		Header: p.headers(),
		Body:   body,
	}, "veo3 generate")
	if err != nil {
		return nil, normalizeError(p.Name(), err)
	}
	var op veoOperation
	if err := json.Unmarshal(respBody, &op); err != nil {
		return nil, &ProviderError{Provider: p.Name(), Message: "invalid response body", Code: "bad_response"}
	}
	if op.Name == "" {
		return nil, &ProviderError{Provider: p.Name(), Message: "response missing operation name", Code: "bad_response"}
	}
	return &Response{
		Provider:  p.Name(),
		Timestamp: time.Now(),
		JobID:     op.Name,
		Status:    StatusPending,
	}, nil
}

func (p *Veo3Provider) GetStatus(ctx context.Context, jobID string) (*Response, error) {
	respBody, err := p.client.Do(ctx, &httpclient.Request{
		Method: http.MethodGet,
		URL:    p.cfg.BaseURL + "/v1beta/" + jobID,
		Header: p.headers(),
	}, "veo3 status")
	if err != nil {
		return nil, normalizeError(p.Name(), err)
	}
	var op veoOperation
	if err := json.Unmarshal(respBody, &op); err != nil {
		return nil, &ProviderError{Provider: p.Name(), Message: "invalid response body", Code: "bad_response"}
	}
	resp := &Response{Provider: p.Name(), Timestamp: time.Now(), JobID: jobID}
	switch {
	case !op.Done:
		resp.Status = StatusProcessing
	case op.Error != nil:
		resp.Status = StatusFailed
	default:
		resp.Status = StatusCompleted
		if op.Response != nil && len(op.Response.GenerateVideoResponse.GeneratedSamples) > 0 {
			resp.VideoURL = op.Response.GenerateVideoResponse.GeneratedSamples[0].Video.URI
		}
	}
	return resp, nil
}

func (p *Veo3Provider) Cancel(ctx context.Context, jobID string) error {
	_, err := p.client.Do(ctx, &httpclient.Request{
		Method: http.MethodPost,
		URL:    p.cfg.BaseURL + "/v1beta/" + jobID + ":cancel",
		Header: p.headers(),
	}, "veo3 cancel")
	if err != nil {
		return normalizeError(p.Name(), err)
	}
	return nil
}

func (p *Veo3Provider) headers() http.Header {
	h := http.Header{}
	h.Set("Content-Type", "application/json")
	h.Set("x-goog-api-key", p.cfg.APIKey)
	return h
}
