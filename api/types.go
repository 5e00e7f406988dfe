package api

// Verdict represents the outcome of classifying a request.
type Verdict string

const (
	VerdictPass  Verdict = "pass"  // delegate to the file server
	VerdictAllow Verdict = "allow" // disclose the secrets resource
	VerdictDeny  Verdict = "deny"
)

const (
	// ReservedPath is the request target answered by the disclosure filter.
	ReservedPath = "/.env"

	// Placeholder is served to allowed callers when the secrets resource
	// cannot be read.
	Placeholder = "OPENAI_API_KEY="

	// DeniedMessage is the body of a 403 for the reserved path.
	DeniedMessage = "Access Denied"
)

// CheckRequest is used by the CLI `check` command.
type CheckRequest struct {
	Path          string `json:"path"`
	SourceAddress string `json:"source_address"`
}

// CheckResponse is the result of a classification check.
type CheckResponse struct {
	Verdict Verdict `json:"verdict"`
	Rule    string  `json:"rule"`
	Message string  `json:"message,omitempty"`
}
