// Package oracle abstracts the generative-text backend used for vocabulary
// enrichment and answer grading. Implementations are fallible: callers must
// tolerate errors, timeouts and malformed output.
package oracle

import (
	"context"
	"time"
)

type Oracle interface {
	// Generate sends one prompt and returns the raw model text.
	Generate(ctx context.Context, prompt string) (string, error)
}

// Params is the fixed generation configuration, injected at construction
// instead of living in process globals.
type Params struct {
	Model           string
	Temperature     float32
	MaxOutputTokens int32
	Timeout         time.Duration
}

func DefaultParams(model string) Params {
	return Params{
		Model:           model,
		Temperature:     0,
		MaxOutputTokens: 1024,
		Timeout:         30 * time.Second,
	}
}
