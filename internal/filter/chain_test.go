package filter

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"

	"github.com/tkingovr/envgate/api"
	"github.com/tkingovr/envgate/internal/policy"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// countingSource records how many times the secrets resource is read.
type countingSource struct {
	data  []byte
	err   error
	reads atomic.Int32
}

func (s *countingSource) Read(context.Context) ([]byte, error) {
	s.reads.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return s.data, nil
}

type failingEngine struct{}

func (failingEngine) Evaluate(context.Context, *policy.EvalInput) (*policy.EvalResult, error) {
	return nil, errors.New("engine unavailable")
}

func newTestChain(t *testing.T, src *countingSource) *Chain {
	t.Helper()
	engine, err := policy.NewOPAEngine()
	if err != nil {
		t.Fatal(err)
	}
	return BuildChain(ChainConfig{
		Engine:  engine,
		Secrets: src,
		Logger:  newTestLogger(),
	})
}

func newContext(path, remoteAddr string) *FilterContext {
	r := httptest.NewRequest("GET", path, nil)
	r.RemoteAddr = remoteAddr
	return NewFilterContext(r)
}

func TestChain_AllowedReadsSecrets(t *testing.T) {
	src := &countingSource{data: []byte("OPENAI_API_KEY=sk-test123")}
	chain := newTestChain(t, src)

	fc := newContext("/.env", "127.0.0.1:51234")
	if err := chain.Process(context.Background(), fc); err != nil {
		t.Fatal(err)
	}
	if fc.Verdict != api.VerdictAllow {
		t.Errorf("expected allow, got %s", fc.Verdict)
	}
	if string(fc.Body) != "OPENAI_API_KEY=sk-test123" {
		t.Errorf("unexpected body %q", fc.Body)
	}
	if fc.Placeholder {
		t.Error("expected no placeholder")
	}
	if n := src.reads.Load(); n != 1 {
		t.Errorf("expected 1 read, got %d", n)
	}
}

func TestChain_ReadFailureServesPlaceholder(t *testing.T) {
	for _, readErr := range []error{fs.ErrNotExist, fs.ErrPermission, io.ErrUnexpectedEOF, os.ErrDeadlineExceeded} {
		src := &countingSource{err: readErr}
		chain := newTestChain(t, src)

		fc := newContext("/.env", "[::1]:51234")
		if err := chain.Process(context.Background(), fc); err != nil {
			t.Fatal(err)
		}
		if fc.Verdict != api.VerdictAllow {
			t.Errorf("%v: expected allow, got %s", readErr, fc.Verdict)
		}
		if string(fc.Body) != api.Placeholder {
			t.Errorf("%v: expected placeholder body, got %q", readErr, fc.Body)
		}
		if !fc.Placeholder {
			t.Errorf("%v: expected placeholder flag", readErr)
		}
	}
}

func TestChain_DeniedNeverReads(t *testing.T) {
	src := &countingSource{data: []byte("OPENAI_API_KEY=sk-test123")}
	chain := newTestChain(t, src)

	fc := newContext("/.env", "192.168.1.5:40000")
	if err := chain.Process(context.Background(), fc); err != nil {
		t.Fatal(err)
	}
	if fc.Verdict != api.VerdictDeny {
		t.Errorf("expected deny, got %s", fc.Verdict)
	}
	if !fc.Halted {
		t.Error("expected halted for deny")
	}
	if fc.Body != nil {
		t.Errorf("expected no body, got %q", fc.Body)
	}
	if n := src.reads.Load(); n != 0 {
		t.Errorf("expected 0 reads, got %d", n)
	}
}

func TestChain_PassThroughNeverReads(t *testing.T) {
	src := &countingSource{data: []byte("OPENAI_API_KEY=sk-test123")}
	chain := newTestChain(t, src)

	for _, target := range []string{"/index.html", "/.env?x=1", "/"} {
		fc := newContext(target, "127.0.0.1:1")
		if err := chain.Process(context.Background(), fc); err != nil {
			t.Fatal(err)
		}
		if fc.Verdict != api.VerdictPass {
			t.Errorf("%s: expected pass, got %s", target, fc.Verdict)
		}
	}
	if n := src.reads.Load(); n != 0 {
		t.Errorf("expected 0 reads, got %d", n)
	}
}

func TestChain_EngineErrorAborts(t *testing.T) {
	src := &countingSource{}
	chain := BuildChain(ChainConfig{
		Engine:  failingEngine{},
		Secrets: src,
		Logger:  newTestLogger(),
	})

	fc := newContext("/.env", "127.0.0.1:1")
	err := chain.Process(context.Background(), fc)
	if err == nil {
		t.Fatal("expected error from failing engine")
	}
	if n := src.reads.Load(); n != 0 {
		t.Errorf("expected 0 reads, got %d", n)
	}
}

func TestNewFilterContext(t *testing.T) {
	r := httptest.NewRequest("HEAD", "/.env?download=1", nil)
	r.RemoteAddr = "[::1]:8123"
	fc := NewFilterContext(r)

	if fc.Path != "/.env?download=1" {
		t.Errorf("expected raw request target, got %q", fc.Path)
	}
	if fc.SourceAddress != "::1" {
		t.Errorf("expected ::1, got %q", fc.SourceAddress)
	}
	if fc.Method != "HEAD" {
		t.Errorf("expected HEAD, got %s", fc.Method)
	}
	if fc.RequestID == "" {
		t.Error("expected request id")
	}
	if fc.StartTime.IsZero() {
		t.Error("expected start time")
	}
}

func TestSourceAddress(t *testing.T) {
	cases := map[string]string{
		"127.0.0.1:8000":          "127.0.0.1",
		"[::1]:8000":              "::1",
		"192.168.1.5:1":           "192.168.1.5",
		"[::ffff:127.0.0.1]:9000": "::ffff:127.0.0.1",
		"127.0.0.1":               "127.0.0.1",
	}
	for in, want := range cases {
		if got := SourceAddress(in); got != want {
			t.Errorf("SourceAddress(%q) = %q, want %q", in, got, want)
		}
	}
}
