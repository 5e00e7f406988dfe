package secrets

import (
	"context"
	"os"
)

// Source reads the secrets resource.
type Source interface {
	// Read returns the full contents of the resource. A nil error means the
	// bytes are the resource as it exists at call time; any non-nil error
	// means nothing usable was read.
	Read(ctx context.Context) ([]byte, error)
}

// FileSource reads the secrets resource from a file on every call.
// Nothing is cached, so edits to the file are visible on the next read.
type FileSource struct {
	path string
}

// NewFileSource creates a source for the file at path. Relative paths are
// resolved against the working directory at read time.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

func (s *FileSource) Read(_ context.Context) ([]byte, error) {
	return os.ReadFile(s.path)
}

// Locator returns the path the source reads from.
func (s *FileSource) Locator() string { return s.path }
