package filter

import (
	"log/slog"

	"github.com/tkingovr/envgate/internal/policy"
	"github.com/tkingovr/envgate/internal/secrets"
)

// ChainConfig holds the configuration for building the filter chain.
type ChainConfig struct {
	Engine  policy.Engine
	Secrets secrets.Source
	Logger  *slog.Logger
}

// BuildChain constructs the request filter chain.
func BuildChain(cfg ChainConfig) *Chain {
	return NewChain(cfg.Logger,
		NewClassifyFilter(cfg.Engine),
		// Disclosure must follow classification; it only acts on allow.
		NewDisclosureFilter(cfg.Secrets, cfg.Logger),
	)
}
