// Package llm provides the text-generation backends used to produce product
// descriptions. The live backend talks to the Cohere generate API; the
// simulated backend is a deterministic offline stand-in, and Fallback
// guarantees that a batch of N prompts always yields N outputs no matter how
// the live provider misbehaves.
package llm

import (
	"context"
	"errors"

	"github.com/mklnz/descpipe/internal/utils"
)

// Backend maps a prompt to generated text. An error means this backend is
// unavailable for the call; it never partially succeeds.
type Backend interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ErrNoCredential signals that a live backend was requested without an API
// key. Treated as unavailability, not a configuration crash.
var ErrNoCredential = errors.New("no API key configured")

// Simulated deterministically wraps the prompt. Always succeeds.
type Simulated struct{}

func (Simulated) Generate(_ context.Context, prompt string) (string, error) {
	return "[SIMULATED DESCRIPTION] " + prompt, nil
}

// Fallback delegates to Primary and degrades to Reserve on any error,
// logging a warning per degraded call. This is the degrade-not-abort policy:
// backend trouble never fails the enclosing batch.
type Fallback struct {
	Primary Backend
	Reserve Backend
}

func (f Fallback) Generate(ctx context.Context, prompt string) (string, error) {
	out, err := f.Primary.Generate(ctx, prompt)
	if err == nil {
		return out, nil
	}
	utils.Log.Warn("Generation backend unavailable (", err, "). Falling back to simulation.")
	return f.Reserve.Generate(ctx, prompt)
}

// Config selects and parameterizes the backend. The API key is injected
// here rather than read from the environment inside the backend, so backend
// behavior is a pure function of its inputs.
type Config struct {
	Live   bool
	APIKey string

	// Optional overrides, mostly for tests.
	Model    string
	Endpoint string
	Client   Doer
}

// FromConfig builds the backend the pipeline will use. Live mode always
// wraps the provider in a simulated fallback.
func FromConfig(cfg Config) Backend {
	if !cfg.Live {
		return Simulated{}
	}
	cohere := &Cohere{
		APIKey:   cfg.APIKey,
		Model:    cfg.Model,
		Endpoint: cfg.Endpoint,
		Client:   cfg.Client,
	}
	return Fallback{Primary: cohere, Reserve: Simulated{}}
}
