package filter

import (
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/tkingovr/envgate/api"
)

// FilterContext carries all metadata through the filter chain for a single request.
type FilterContext struct {
	// RequestID correlates debug log lines for one request.
	RequestID string

	// Method is the HTTP method.
	Method string

	// Path is the raw request target, query string included.
	Path string

	// SourceAddress is the host part of the peer address, without port or brackets.
	SourceAddress string

	// Verdict is set by the ClassifyFilter.
	Verdict api.Verdict

	// MatchedRule is the name of the rule that matched.
	MatchedRule string

	// VerdictMessage is the human-readable message from the matched rule.
	VerdictMessage string

	// Body is the response body for an allowed request.
	Body []byte

	// Placeholder reports that Body is the placeholder because the
	// secrets resource could not be read.
	Placeholder bool

	// StartTime records when the request entered the pipeline.
	StartTime time.Time

	// Halted indicates the pipeline should stop (deny was decided).
	Halted bool
}

// NewFilterContext creates a new FilterContext for an inbound request.
func NewFilterContext(r *http.Request) *FilterContext {
	path := r.RequestURI
	if path == "" {
		path = r.URL.RequestURI()
	}
	return &FilterContext{
		RequestID:     uuid.NewString(),
		Method:        r.Method,
		Path:          path,
		SourceAddress: SourceAddress(r.RemoteAddr),
		StartTime:     time.Now(),
	}
}

// SourceAddress extracts the host from a "host:port" remote address.
// IPv6 hosts come back without brackets, e.g. "[::1]:5000" yields "::1".
// Addresses without a port are returned unchanged.
func SourceAddress(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}
