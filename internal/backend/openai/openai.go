package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	openai "chatrelay/internal/api/openai/v1"
	"chatrelay/internal/backend"
	"chatrelay/internal/backend/util"
	logutils "chatrelay/internal/utils/logger"
	"github.com/pkg/errors"
)

var _ backend.Backend = &openaiBackend{}

type openaiBackend struct {
	name     string
	endpoint string
	model    string
	apikey   string
	client   *http.Client
}

type Options struct {
	Name     string
	Endpoint string
	Model    string
	ApiKey   string
	Timeout  time.Duration
}

// New creates a backend that relays prompts to an OpenAI-compatible
// chat completions endpoint.
func New(opts Options) backend.Backend {
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &openaiBackend{
		name:     opts.Name,
		endpoint: opts.Endpoint,
		model:    opts.Model,
		apikey:   opts.ApiKey,
		client:   &http.Client{Timeout: timeout},
	}
}

// Name returns the name of the backend
func (b *openaiBackend) Name() string {
	return b.name
}

// Complete sends the prompt as a single-message chat completion and returns
// the first choice's content.
func (b *openaiBackend) Complete(ctx context.Context, prompt string) (string, error) {
	lgr := logutils.FromContext(ctx)

	reqBody, err := json.Marshal(openai.ChatCompletionRequest{
		Model: b.model,
		Messages: []openai.Message{
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return "", errors.Wrap(err, "error marshalling chat completion request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.endpoint+"/v1/chat/completions", bytes.NewReader(reqBody))
	if err != nil {
		return "", errors.Wrap(err, "error creating chat completion request")
	}
	req.Header.Set("Content-Type", "application/json")
	if b.apikey != "" {
		req.Header.Set("Authorization", "Bearer "+b.apikey)
	}

	lgr.Debugf(ctx, "%s: forwarding prompt (%d bytes) to %s", b.name, len(prompt), b.endpoint)

	resp, err := b.client.Do(req)
	if err != nil {
		return "", errors.Wrapf(err, "error forwarding request to %s", b.name)
	}
	defer resp.Body.Close()

	body, err := util.ReadResponse(resp)
	if err != nil {
		return "", errors.Wrap(err, "error reading upstream response")
	}

	if resp.StatusCode >= 400 {
		var upstreamErr openai.ErrorResponse
		if err := json.Unmarshal(body, &upstreamErr); err == nil && upstreamErr.Error.Message != "" {
			return "", errors.Errorf("upstream returned status %d: %s", resp.StatusCode, upstreamErr.Error.Message)
		}
		return "", errors.Errorf("upstream returned status %d: %s", resp.StatusCode, util.TruncateString(string(body), 200))
	}

	var completion openai.ChatCompletionResponse
	if err := json.Unmarshal(body, &completion); err != nil {
		return "", errors.Wrap(err, "error parsing upstream response")
	}
	if len(completion.Choices) == 0 {
		return "", errors.New("upstream response contained no choices")
	}

	return completion.Choices[0].Message.Content, nil
}
