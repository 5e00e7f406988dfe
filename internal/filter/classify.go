package filter

import (
	"context"

	"github.com/tkingovr/envgate/api"
	"github.com/tkingovr/envgate/internal/policy"
)

// ClassifyFilter evaluates the request against the policy engine.
type ClassifyFilter struct {
	engine policy.Engine
}

func NewClassifyFilter(engine policy.Engine) *ClassifyFilter {
	return &ClassifyFilter{engine: engine}
}

func (f *ClassifyFilter) Name() string { return "classify" }

func (f *ClassifyFilter) Process(ctx context.Context, fc *FilterContext) error {
	input := &policy.EvalInput{
		Path:          fc.Path,
		SourceAddress: fc.SourceAddress,
	}

	result, err := f.engine.Evaluate(ctx, input)
	if err != nil {
		return err
	}

	fc.Verdict = result.Verdict
	fc.MatchedRule = result.Rule
	fc.VerdictMessage = result.Message

	if fc.Verdict == api.VerdictDeny {
		fc.Halted = true
	}

	return nil
}
