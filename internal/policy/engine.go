package policy

import "context"

// Engine is the interface for request classification backends.
type Engine interface {
	// Evaluate classifies a request and returns a verdict.
	Evaluate(ctx context.Context, input *EvalInput) (*EvalResult, error)
}
