package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	ollama "chatrelay/internal/api/ollama/v1"
	"chatrelay/internal/backend"
	"chatrelay/internal/backend/util"
	logutils "chatrelay/internal/utils/logger"
	"github.com/pkg/errors"
)

var _ backend.Backend = &ollamaBackend{}

type ollamaBackend struct {
	name     string
	endpoint string
	model    string
	client   *http.Client
}

type Options struct {
	Name     string
	Endpoint string
	Model    string
	Timeout  time.Duration
}

// New creates a backend that relays prompts to an Ollama server.
func New(opts Options) backend.Backend {
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &ollamaBackend{
		name:     opts.Name,
		endpoint: opts.Endpoint,
		model:    opts.Model,
		client:   &http.Client{Timeout: timeout},
	}
}

// Name returns the name of the backend
func (b *ollamaBackend) Name() string {
	return b.name
}

// Complete sends the prompt as a single-message, non-streaming chat request
// and returns the reply content.
func (b *ollamaBackend) Complete(ctx context.Context, prompt string) (string, error) {
	lgr := logutils.FromContext(ctx)

	reqBody, err := json.Marshal(ollama.Request{
		Model: b.model,
		Messages: []ollama.Message{
			{Role: "user", Content: prompt},
		},
		Stream: false,
	})
	if err != nil {
		return "", errors.Wrap(err, "error marshalling ollama request")
	}

	lgr.Debugf(ctx, "%s: forwarding prompt (%d bytes) to %s", b.name, len(prompt), b.endpoint)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/api/chat", b.endpoint), bytes.NewBuffer(reqBody))
	if err != nil {
		return "", errors.Wrap(err, "error creating ollama request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "error POSTing ollama request")
	}
	defer resp.Body.Close()

	body, err := util.ReadResponse(resp)
	if err != nil {
		return "", errors.Wrap(err, "error reading ollama response")
	}

	var chatResp ollama.Response
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", errors.Wrap(err, "error parsing ollama response")
	}
	if resp.StatusCode >= 400 || chatResp.Error != "" {
		if chatResp.Error != "" {
			return "", errors.Errorf("ollama returned status %d: %s", resp.StatusCode, chatResp.Error)
		}
		return "", errors.Errorf("ollama returned status %d", resp.StatusCode)
	}

	return chatResp.Message.Content, nil
}
