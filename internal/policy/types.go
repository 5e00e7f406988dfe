package policy

import "github.com/tkingovr/envgate/api"

// EvalInput is the input to a policy engine evaluation. It carries only
// the two request attributes a decision may depend on.
type EvalInput struct {
	Path          string `json:"path"`
	SourceAddress string `json:"source_address"`
}

// EvalResult is the output of a policy engine evaluation.
type EvalResult struct {
	Verdict api.Verdict `json:"verdict"`
	Rule    string      `json:"rule,omitempty"`
	Message string      `json:"message,omitempty"`
}
