package collector

import (
	"context"
	"fmt"
	"os"
)

// FileSource replays a captured snapshot document.
type FileSource struct {
	path string
}

// NewFileSource creates a source reading path on every Collect.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Collect reads and decodes the file.
func (s *FileSource) Collect(ctx context.Context) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot %s: %w", s.path, err)
	}
	return Decode(data)
}
