package policy

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/open-policy-agent/opa/v1/ast"
	"github.com/open-policy-agent/opa/v1/rego"
	"github.com/open-policy-agent/opa/v1/storage/inmem"
	"github.com/open-policy-agent/opa/v1/topdown"

	"github.com/tkingovr/envgate/api"
)

//go:embed disclosure.rego
var disclosurePolicy string

// OPAEngine implements the Engine interface using embedded OPA/Rego.
// The prepared query is immutable after construction and safe for
// concurrent use.
type OPAEngine struct {
	query rego.PreparedEvalQuery
}

// NewOPAEngine creates an engine from the built-in disclosure policy.
func NewOPAEngine() (*OPAEngine, error) {
	return NewOPAEngineFromSource(disclosurePolicy)
}

// NewOPAEngineFromSource creates a new OPA engine from raw Rego source.
func NewOPAEngineFromSource(source string) (*OPAEngine, error) {
	// Parse to validate
	if _, err := ast.ParseModuleWithOpts("disclosure.rego", source, ast.ParserOptions{RegoVersion: ast.RegoV1}); err != nil {
		return nil, fmt.Errorf("parsing Rego policy: %w", err)
	}

	r := rego.New(
		rego.Query("data.envgate"),
		rego.Module("disclosure.rego", source),
		rego.Store(inmem.New()),
	)

	query, err := r.PrepareForEval(context.Background())
	if err != nil {
		return nil, fmt.Errorf("preparing OPA query: %w", err)
	}
	return &OPAEngine{query: query}, nil
}

// Evaluate runs the OPA policy against the given input.
//
// The Rego policy must define the following in package envgate:
//
//	verdict: "pass" | "allow" | "deny"
//	rule_name: string (optional)
//	message: string (optional)
//
// Input available to the policy:
//
//	input.path: string
//	input.source_address: string
func (e *OPAEngine) Evaluate(ctx context.Context, input *EvalInput) (*EvalResult, error) {
	inputMap := map[string]any{
		"path":           input.Path,
		"source_address": input.SourceAddress,
	}

	rs, err := e.query.Eval(ctx, rego.EvalInput(inputMap))
	if err != nil {
		if topdown.IsError(err) {
			return &EvalResult{
				Verdict: api.VerdictDeny,
				Rule:    "_opa_error",
				Message: api.DeniedMessage,
			}, nil
		}
		return nil, fmt.Errorf("OPA evaluation failed: %w", err)
	}

	if len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return &EvalResult{
			Verdict: api.VerdictDeny,
			Rule:    "_opa_default",
			Message: api.DeniedMessage,
		}, nil
	}

	resultMap, ok := rs[0].Expressions[0].Value.(map[string]any)
	if !ok {
		return &EvalResult{
			Verdict: api.VerdictDeny,
			Rule:    "_opa_parse_error",
			Message: api.DeniedMessage,
		}, nil
	}

	return parseOPAResult(resultMap), nil
}

func parseOPAResult(m map[string]any) *EvalResult {
	result := &EvalResult{
		Verdict: api.VerdictDeny, // default if not set
		Message: api.DeniedMessage,
	}

	if v, ok := m["verdict"].(string); ok {
		switch v {
		case "pass":
			result.Verdict = api.VerdictPass
		case "allow":
			result.Verdict = api.VerdictAllow
		}
	}
	if result.Verdict != api.VerdictDeny {
		result.Message = ""
	}

	if r, ok := m["rule_name"].(string); ok {
		result.Rule = r
	}
	if msg, ok := m["message"].(string); ok && msg != "" {
		result.Message = msg
	}

	return result
}
