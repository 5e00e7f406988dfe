package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"

	"github.com/tkingovr/envgate/api"
	"github.com/tkingovr/envgate/internal/filter"
)

// Server answers the reserved path itself and hands every other request
// to a static file handler.
type Server struct {
	files       http.Handler
	filterChain *filter.Chain
	logger      *slog.Logger
}

// NewServer creates a server that delegates pass-through requests to files.
func NewServer(files http.Handler, chain *filter.Chain, logger *slog.Logger) *Server {
	return &Server{
		files:       files,
		filterChain: chain,
		logger:      logger,
	}
}

// ServeHTTP handles incoming HTTP requests.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	fc := filter.NewFilterContext(r)
	if err := s.filterChain.Process(r.Context(), fc); err != nil {
		s.logger.Error("filter chain error", "request_id", fc.RequestID, "error", err)
		http.Error(w, "internal filter error", http.StatusInternalServerError)
		return
	}

	switch fc.Verdict {
	case api.VerdictPass:
		s.files.ServeHTTP(w, r)

	case api.VerdictAllow:
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		w.Write(fc.Body)

	default:
		s.logger.Debug("request denied",
			"request_id", fc.RequestID,
			"rule", fc.MatchedRule,
		)
		msg := fc.VerdictMessage
		if msg == "" {
			msg = api.DeniedMessage
		}
		http.Error(w, msg, http.StatusForbidden)
	}
}

// Handler returns an http.Handler for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s
}

// ListenAndServe starts the server and blocks until ctx is cancelled or
// the listener fails.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:    addr,
		Handler: s,
	}

	go func() {
		<-ctx.Done()
		srv.Close()
	}()

	s.logger.Info("starting server",
		"listen", addr,
		"url", localURL(addr),
	)

	err := srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func localURL(addr string) string {
	_, port, err := net.SplitHostPort(addr)
	if err != nil || port == "" {
		return "http://localhost"
	}
	return "http://localhost:" + port
}
