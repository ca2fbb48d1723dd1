// Package download implements fetch-then-serve: it turns a submitted URL into a
// request-scoped artifact ready to stream.
package download

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/your-org/vdl/internal/artifact"
	"github.com/your-org/vdl/internal/ingest"
	"github.com/your-org/vdl/internal/observability"
)

// ErrOutputMissing means the extractor reported success but left no file behind.
var ErrOutputMissing = errors.New("extractor finished without writing the output file")

type Service struct {
	workspace *artifact.Workspace
	pool      *ingest.Pool
	fetcher   ingest.Fetcher
	format    string
}

func NewService(workspace *artifact.Workspace, pool *ingest.Pool, fetcher ingest.Fetcher, format string) *Service {
	return &Service{
		workspace: workspace,
		pool:      pool,
		fetcher:   fetcher,
		format:    format,
	}
}

// Fetch downloads url into a fresh artifact. On success the caller owns the
// artifact and must Release it; on failure nothing is left on disk.
func (s *Service) Fetch(ctx context.Context, url string) (*artifact.Artifact, error) {
	start := time.Now()

	a, err := s.workspace.New()
	if err != nil {
		observability.DownloadsTotal.WithLabelValues(observability.OutcomeError).Inc()
		return nil, err
	}

	err = s.pool.Do(ctx, func(ctx context.Context) error {
		return s.fetcher.Fetch(ctx, ingest.Request{
			URL:    url,
			Format: s.format,
			Output: a.Path,
		})
	})
	if err == nil {
		if _, statErr := a.Stat(); statErr != nil {
			if os.IsNotExist(statErr) {
				err = ErrOutputMissing
			} else {
				err = fmt.Errorf("stat artifact: %w", statErr)
			}
		}
	}

	outcome := Outcome(err)
	duration := time.Since(start)
	observability.DownloadsTotal.WithLabelValues(outcome).Inc()
	observability.DownloadDuration.WithLabelValues(outcome).Observe(duration.Seconds())

	if err != nil {
		s.Release(a)
		slog.Warn("fetch failed",
			"url", url,
			"outcome", outcome,
			"duration", duration.String(),
			"error", err,
		)
		return nil, err
	}

	slog.Info("fetched artifact",
		"url", url,
		"name", a.Name,
		"duration", duration.String(),
	)
	return a, nil
}

// Release removes the artifact, logging rather than returning a failure.
func (s *Service) Release(a *artifact.Artifact) {
	if err := a.Release(); err != nil {
		slog.Warn("release artifact", "name", a.Name, "error", err)
	}
}

// Outcome classifies a Fetch error for metrics and logs.
func Outcome(err error) string {
	var extErr *ingest.ExtractionError
	switch {
	case err == nil:
		return observability.OutcomeFetched
	case errors.As(err, &extErr):
		return observability.OutcomeExtraction
	case errors.Is(err, ErrOutputMissing):
		return observability.OutcomeOutputMissing
	default:
		return observability.OutcomeError
	}
}
