package videogen

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sanjay-gangishetty/VideoGen/pkg/httpclient"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kieTestConfig(baseURL string) Config {
	return Config{
		APIKey:  "kie-key",
		BaseURL: baseURL,
		Timeout: time.Second,
		Retry: httpclient.Config{
			MaxAttempts:  2,
			InitialDelay: time.Millisecond,
			Multiplier:   2,
			MaxDelay:     2 * time.Millisecond,
		},
	}
}

func TestKieGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/veo/generate", r.URL.Path)
		assert.Equal(t, "Bearer kie-key", r.Header.Get("Authorization"))
		w.Write([]byte(`{"code":200,"msg":"success","data":{"taskId":"task-7"}}`))
	}))
	defer srv.Close()

	p := NewKie(kieTestConfig(srv.URL))
	resp, err := p.Generate(context.Background(), GenerateParams{Prompt: "a sunset"})
	require.NoError(t, err)
	assert.Equal(t, "task-7", resp.JobID)
	assert.Equal(t, StatusPending, resp.Status)
}

func TestKieGenerateEnvelopeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code":402,"msg":"insufficient quota"}`))
	}))
	defer srv.Close()

	p := NewKie(kieTestConfig(srv.URL))
	_, err := p.Generate(context.Background(), GenerateParams{Prompt: "a sunset"})
	var pe *ProviderError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "kie_402", pe.Code)
	assert.Equal(t, "insufficient quota", pe.Message)
}

func TestKieGetStatusFlagMapping(t *testing.T) {
	cases := []struct {
		flag int
		want string
	}{
		{0, StatusProcessing},
		{1, StatusCompleted},
		{2, StatusFailed},
		{3, StatusFailed},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprintf("flag=%d", tc.flag), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "task-7", r.URL.Query().Get("taskId"))
				fmt.Fprintf(w,
					`{"code":200,"msg":"success","data":{"taskId":"task-7","successFlag":%d,"response":{"resultUrls":["https://cdn.example.com/v.mp4"]}}}`,
					tc.flag)
			}))
			defer srv.Close()

			p := NewKie(kieTestConfig(srv.URL))
			resp, err := p.GetStatus(context.Background(), "task-7")
			require.NoError(t, err)
			assert.Equal(t, tc.want, resp.Status)
			if tc.want == StatusCompleted {
				assert.Equal(t, "https://cdn.example.com/v.mp4", resp.VideoURL)
			}
		})
	}
}

func TestKieValidateParams(t *testing.T) {
	p := NewKie(kieTestConfig("http://example.invalid"))

	var ve *ValidationError
	require.True(t, errors.As(p.ValidateParams(GenerateParams{}), &ve))
	assert.NoError(t, p.ValidateParams(GenerateParams{Prompt: "a sunset"}))
	assert.NoError(t, p.ValidateParams(GenerateParams{ImageURL: "https://img.example.com/a.png"}))
}
