package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// fileStore implements ArtifactStore on the local file system.
type fileStore struct {
	dir    string
	logger zerolog.Logger
}

// NewFileStore creates a store writing into dir. The directory is created on first use.
func NewFileStore(dir string, logger zerolog.Logger) ArtifactStore {
	return &fileStore{
		dir:    dir,
		logger: logger.With().Str("component", "file-artifact-store").Logger(),
	}
}

// Put writes the artifact and returns its absolute path.
func (s *fileStore) Put(ctx context.Context, a *Artifact) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create export dir %s: %w", s.dir, err)
	}

	path := filepath.Join(s.dir, filepath.Base(a.Name))
	if err := os.WriteFile(path, a.Body, 0o644); err != nil {
		s.logger.Error().Err(err).Str("file", path).Msg("failed to write artifact")
		return "", fmt.Errorf("failed to write artifact %s: %w", path, err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	s.logger.Info().Str("file", abs).Int("bytes", len(a.Body)).Msg("artifact written")
	return abs, nil
}
