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

// KieProvider generates videos via the Kie.ai task API.
type KieProvider struct {
	cfg    Config
	client *httpclient.Client
}

func NewKie(cfg Config) Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.kie.ai"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &KieProvider{cfg: cfg, client: cfg.client()}
}

func (p *KieProvider) Name() string { return "kie" }

func (p *KieProvider) ValidateParams(params GenerateParams) error {
	var fields []string
	if params.Prompt == "" && params.ImageURL == "" {
		fields = append(fields, "prompt or image_url is required")
	}
	if len(fields) > 0 {
		return &ValidationError{Provider: p.Name(), Fields: fields}
	}
	return nil
}

type kieGenerateReq struct {
	Prompt    string   `json:"prompt,omitempty"`
	ImageURLs []string `json:"imageUrls,omitempty"`
	Model     string   `json:"model"`
}

type kieEnvelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

type kieTaskData struct {
	TaskID       string `json:"taskId"`
	SuccessFlag  int    `json:"successFlag"`
	ErrorMessage string `json:"errorMessage"`
	ResultInfo   *struct {
		ResultURLs []string `json:"resultUrls"`
	} `json:"response"`
}

func (p *KieProvider) Generate(ctx context.Context, params GenerateParams) (*Response, error) {
	if err := p.ValidateParams(params); err != nil {
		return nil, err
	}
	payload := kieGenerateReq{Prompt: params.Prompt, Model: "veo3_fast"}
	if params.ImageURL != "" {
		payload.ImageURLs = []string{params.ImageURL}
	}
	body, _ := json.Marshal(payload)
	respBody, err := p.client.Do(ctx, &httpclient.Request{
		Method: http.MethodPost,
		URL:    p.cfg.BaseURL + "/api/v1/veo/generate",
		Header: p.headers(),
		Body:   body,
	}, "kie generate")
	if err != nil {
		return nil, normalizeError(p.Name(), err)
	}
	env, data, err := p.decode(respBody)
	if err != nil {
		return nil, err
	}
	if env.Code != 200 {
		return nil, &ProviderError{Provider: p.Name(), Message: env.Msg, Code: fmt.Sprintf("kie_%d", env.Code)}
	}
	if data.TaskID == "" {
		return nil, &ProviderError{Provider: p.Name(), Message: "response missing taskId", Code: "bad_response"}
	}
	return &Response{
		Provider:  p.Name(),
		Timestamp: time.Now(),
		JobID:     data.TaskID,
		Status:    StatusPending,
	}, nil
}

func (p *KieProvider) GetStatus(ctx context.Context, jobID string) (*Response, error) {
	respBody, err := p.client.Do(ctx, &httpclient.Request{
		Method: http.MethodGet,
		URL:    p.cfg.BaseURL + "/api/v1/veo/record-info?taskId=" + url.QueryEscape(jobID),
		Header: p.headers(),
	}, "kie status")
	if err != nil {
		return nil, normalizeError(p.Name(), err)
	}
	env, data, err := p.decode(respBody)
	if err != nil {
		return nil, err
	}
	if env.Code != 200 {
		return nil, &ProviderError{Provider: p.Name(), Message: env.Msg, Code: fmt.Sprintf("kie_%d", env.Code)}
	}
	resp := &Response{Provider: p.Name(), Timestamp: time.Now(), JobID: jobID}
	// successFlag: 0 = generating, 1 = done, 2/3 = failed
	switch data.SuccessFlag {
	case 1:
		resp.Status = StatusCompleted
		if data.ResultInfo != nil && len(data.ResultInfo.ResultURLs) > 0 {
			resp.VideoURL = data.ResultInfo.ResultURLs[0]
		}
	case 2, 3:
		resp.Status = StatusFailed
	default:
		resp.Status = StatusProcessing
	}
	return resp, nil
}

// Cancel: Kie tasks cannot be aborted once submitted.
func (p *KieProvider) Cancel(ctx context.Context, jobID string) error {
	return fmt.Errorf("kie: remote cancellation not supported for task %s", jobID)
}

func (p *KieProvider) decode(body []byte) (*kieEnvelope, *kieTaskData, error) {
	var env kieEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, nil, &ProviderError{Provider: p.Name(), Message: "invalid response body", Code: "bad_response"}
	}
	var data kieTaskData
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &data); err != nil {
			return nil, nil, &ProviderError{Provider: p.Name(), Message: "invalid response data", Code: "bad_response"}
		}
	}
	return &env, &data, nil
}

func (p *KieProvider) headers() http.Header {
	h := http.Header{}
	h.Set("Content-Type", "application/json")
	h.Set("Authorization", "Bearer "+p.cfg.APIKey)
	return h
}
