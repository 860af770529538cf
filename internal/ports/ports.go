package ports

import (
	"context"
	"time"

	"PressRadar/internal/domain"
)

// Fetcher retrieves the raw markup of a page.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Extractor isolates the article content of a press page.
type Extractor interface {
	Extract(markup []byte, runDate time.Time) (domain.ExtractedArticle, error)
}

// Classifier judges relevance and temporal scope of an article.
type Classifier interface {
	Classify(ctx context.Context, req ClassifyRequest) (*domain.ClassificationResult, error)
}

// ClassifyRequest carries everything the classifier needs, including the
// publication date so relative phrasings ("vanavond") can be resolved.
type ClassifyRequest struct {
	Title           string
	Body            string
	SourceName      string
	PublicationDate string
}

// Archive is the persistent, capped, deduplicated collection of entries.
type Archive interface {
	Load() ([]domain.ArchiveEntry, error)
	Commit(newEntries, existing []domain.ArchiveEntry) error
}

// Notifier streams a digest of newly archived entries to an outside channel.
type Notifier interface {
	PublishDigest(ctx context.Context, entries []domain.ArchiveEntry) error
}

// Scheduler controls when sweeps execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
