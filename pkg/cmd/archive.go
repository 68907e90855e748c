package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dukex/n8ngen/pkg/persistence"
	"github.com/dukex/n8ngen/pkg/persistence/file"
	"github.com/dukex/n8ngen/pkg/persistence/postgresql"
	"github.com/dukex/n8ngen/pkg/persistence/redis"
)

// NewArchive opens the archive backend selected by the URL scheme. An empty URL
// disables archiving and returns a nil archive.
//
//nolint:ireturn // backend is chosen at runtime
func NewArchive(ctx context.Context, logger *slog.Logger, archiveURL string, ttl time.Duration) (persistence.Archive, error) {
	if archiveURL == "" {
		return nil, nil
	}

	switch parseArchiveProvider(archiveURL) {
	case "file":
		return file.NewArchive(archiveURL), nil
	case "postgres", "postgresql":
		archive, err := postgresql.NewArchive(ctx, logger, archiveURL)
		if err != nil {
			return nil, err
		}

		return archive, nil
	case "redis", "rediss":
		archive, err := redis.NewArchive(ctx, logger, archiveURL, redis.WithTTL(ttl))
		if err != nil {
			return nil, err
		}

		return archive, nil
	default:
		return nil, fmt.Errorf("%w: %s", persistence.ErrUnsupportedArchive, archiveURL)
	}
}

func parseArchiveProvider(archiveURL string) string {
	scheme, _, found := strings.Cut(archiveURL, "://")
	if !found {
		return "file"
	}

	return scheme
}
