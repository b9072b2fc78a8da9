package feed

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
)

// fileLoader implements Loader for feeds on the local file system.
type fileLoader struct {
	logger zerolog.Logger
}

// NewFileLoader creates a new file-based feed loader.
func NewFileLoader(logger zerolog.Logger) Loader {
	return &fileLoader{
		logger: logger.With().Str("component", "feed-loader").Logger(),
	}
}

func (l *fileLoader) Load(ctx context.Context, path string) ([]Entry, error) {
	l.logger.Info().Str("file", path).Msg("loading restock feed")

	file, err := os.Open(path)
	if err != nil {
		l.logger.Error().Err(err).Str("file", path).Msg("failed to open restock feed")
		return nil, fmt.Errorf("failed to open restock feed %s: %w", path, err)
	}
	defer file.Close()

	entries, err := Decode(ctx, path, file)
	if err != nil {
		l.logger.Error().Err(err).Str("file", path).Msg("failed to parse restock feed")
		return nil, fmt.Errorf("restock feed %s: %w", path, err)
	}

	l.logger.Info().
		Str("file", path).
		Int("entries", len(entries)).
		Msg("restock feed loaded")

	return entries, nil
}
