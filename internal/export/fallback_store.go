package export

import (
	"context"

	"github.com/rs/zerolog"
)

// fallbackStore tries the primary store first and falls back to the local one.
type fallbackStore struct {
	primary        ArtifactStore
	local          ArtifactStore
	primaryEnabled bool
	logger         zerolog.Logger
}

// NewFallbackStore creates a store that uploads to primary when enabled and writes to
// local when the upload fails. A nil primary always uses local.
func NewFallbackStore(primary, local ArtifactStore, primaryEnabled bool, logger zerolog.Logger) ArtifactStore {
	return &fallbackStore{
		primary:        primary,
		local:          local,
		primaryEnabled: primaryEnabled,
		logger:         logger.With().Str("component", "fallback-artifact-store").Logger(),
	}
}

func (s *fallbackStore) Put(ctx context.Context, a *Artifact) (string, error) {
	if s.primaryEnabled && s.primary != nil {
		location, err := s.primary.Put(ctx, a)
		if err == nil {
			return location, nil
		}
		s.logger.Warn().
			Err(err).
			Str("artifact", a.Name).
			Msg("failed to store artifact remotely, falling back to local file system")
	} else {
		s.logger.Debug().
			Bool("primary_enabled", s.primaryEnabled).
			Bool("has_primary", s.primary != nil).
			Msg("remote store disabled or not configured, using local file system")
	}

	return s.local.Put(ctx, a)
}
