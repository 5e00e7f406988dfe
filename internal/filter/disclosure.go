package filter

import (
	"context"
	"log/slog"

	"github.com/tkingovr/envgate/api"
	"github.com/tkingovr/envgate/internal/secrets"
)

// DisclosureFilter loads the secrets resource for allowed requests.
// Every read failure is answered with the same placeholder body; the cause
// is only logged.
type DisclosureFilter struct {
	source secrets.Source
	logger *slog.Logger
}

func NewDisclosureFilter(source secrets.Source, logger *slog.Logger) *DisclosureFilter {
	return &DisclosureFilter{source: source, logger: logger}
}

func (f *DisclosureFilter) Name() string { return "disclosure" }

func (f *DisclosureFilter) Process(ctx context.Context, fc *FilterContext) error {
	if fc.Halted || fc.Verdict != api.VerdictAllow {
		return nil
	}

	data, err := f.source.Read(ctx)
	if err != nil {
		f.logger.Debug("secrets resource unreadable, serving placeholder",
			"request_id", fc.RequestID,
			"error", err,
		)
		fc.Body = []byte(api.Placeholder)
		fc.Placeholder = true
		return nil
	}

	fc.Body = data
	return nil
}
