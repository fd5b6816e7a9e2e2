package videogen

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sanjay-gangishetty/VideoGen/pkg/httpclient"
)

// HeyGenProvider generates avatar videos via the HeyGen v2 API.
type HeyGenProvider struct {
	cfg    Config
	client *httpclient.Client
}

func NewHeyGen(cfg Config) Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.heygen.com"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &HeyGenProvider{cfg: cfg, client: cfg.client()}
}

func (p *HeyGenProvider) Name() string { return "heygen" }

func (p *HeyGenProvider) ValidateParams(params GenerateParams) error {
	var fields []string
	if params.AvatarID == "" {
		fields = append(fields, "avatar_id is required")
	}
	if params.Prompt == "" {
		fields = append(fields, "prompt is required")
	}
	if params.Duration < 0 {
		fields = append(fields, "duration must not be negative")
	}
	if len(fields) > 0 {
		return &ValidationError{Provider: p.Name(), Fields: fields}
	}
	return nil
}

type heygenGenerateReq struct {
	VideoInputs []heygenVideoInput `json:"video_inputs"`
	Dimension   *heygenDimension   `json:"dimension,omitempty"`
}

type heygenVideoInput struct {
	Character heygenCharacter `json:"character"`
	Voice     heygenVoice     `json:"voice"`
}

type heygenCharacter struct {
	Type     string `json:"type"`
	AvatarID string `json:"avatar_id"`
}

type heygenVoice struct {
	Type      string `json:"type"`
	InputText string `json:"input_text"`
	VoiceID   string `json:"voice_id,omitempty"`
}

type heygenDimension struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type heygenGenerateResp struct {
	Data struct {
		VideoID string `json:"video_id"`
	} `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (p *HeyGenProvider) Generate(ctx context.Context, params GenerateParams) (*Response, error) {
	if err := p.ValidateParams(params); err != nil {
		return nil, err
	}
	payload := heygenGenerateReq{
		VideoInputs: []heygenVideoInput{{
			Character: heygenCharacter{Type: "avatar", AvatarID: params.AvatarID},
			Voice:     heygenVoice{Type: "text", InputText: params.Prompt, VoiceID: params.VoiceID},
		}},
	}
	if params.Resolution == "720p" {
		payload.Dimension = &heygenDimension{Width: 1280, Height: 720}
	}
	body, _ := json.Marshal(payload)
	respBody, err := p.client.Do(ctx, &httpclient.Request{
		Method: http.MethodPost,
		URL:    p.cfg.BaseURL + "/v2/video/generate",
		Header: p.headers(),
		Body:   body,
	}, "heygen generate")
	if err != nil {
		return nil, normalizeError(p.Name(), err)
	}
	var out heygenGenerateResp
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, &ProviderError{Provider: p.Name(), Message: "invalid response body", Code: "bad_response"}
	}
	if out.Error != nil {
		return nil, &ProviderError{Provider: p.Name(), Message: out.Error.Message, Code: out.Error.Code}
	}
	if out.Data.VideoID == "" {
		return nil, &ProviderError{Provider: p.Name(), Message: "response missing video_id", Code: "bad_response"}
	}
	return &Response{
		Provider:  p.Name(),
		Timestamp: time.Now(),
		JobID:     out.Data.VideoID,
		Status:    StatusPending,
	}, nil
}

type heygenStatusResp struct {
	Data struct {
		Status   string `json:"status"`
		VideoURL string `json:"video_url"`
		Error    *struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	} `json:"data"`
}

func (p *HeyGenProvider) GetStatus(ctx context.Context, jobID string) (*Response, error) {
	respBody, err := p.client.Do(ctx, &httpclient.Request{
		Method: http.MethodGet,
		URL:    p.cfg.BaseURL + "/v1/video_status.get?video_id=" + url.QueryEscape(jobID),
		Header: p.headers(),
	}, "heygen status")
	if err != nil {
		return nil, normalizeError(p.Name(), err)
	}
	var out heygenStatusResp
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, &ProviderError{Provider: p.Name(), Message: "invalid response body", Code: "bad_response"}
	}
	resp := &Response{
		Provider:  p.Name(),
		Timestamp: time.Now(),
		JobID:     jobID,
		VideoURL:  out.Data.VideoURL,
	}
	switch out.Data.Status {
	case "completed":
		resp.Status = StatusCompleted
	case "processing", "waiting":
		resp.Status = StatusProcessing
	case "failed":
		resp.Status = StatusFailed
	default:
		resp.Status = StatusPending
	}
	return resp, nil
}

// Cancel: HeyGen has no public cancel endpoint; the caller marks the job
// cancelled locally.
func (p *HeyGenProvider) Cancel(ctx context.Context, jobID string) error {
	return fmt.Errorf("heygen: remote cancellation not supported for job %s", jobID)
}

func (p *HeyGenProvider) headers() http.Header {
	h := http.Header{}
	h.Set("Content-Type", "application/json")
	h.Set("X-Api-Key", p.cfg.APIKey)
	return h
}
