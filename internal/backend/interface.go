package backend

import (
	"context"
)

// Backend defines the interface that all model backends must implement.
// Complete takes a fully rendered prompt and returns the generated text;
// failures come back as errors, never panics, and the relay performs no
// retries on them.
type Backend interface {
	// Name returns the name of the backend
	Name() string

	// Complete generates a response for the given prompt
	Complete(ctx context.Context, prompt string) (string, error)
}
