package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"PressRadar/internal/domain"
	"PressRadar/internal/ports"
	"PressRadar/internal/scanner"
)

// PipelineDeps wires all driven adapters into the ingestion pipeline.
type PipelineDeps struct {
	Sites          []domain.Site
	Registry       *scanner.Registry
	Fetcher        ports.Fetcher
	Extractor      ports.Extractor
	Classifier     ports.Classifier
	Archive        ports.Archive
	Notifier       ports.Notifier
	CandidateDelay time.Duration
	Logger         *slog.Logger
}

// Pipeline implements the press-release ingestion sweep: discover candidate
// links per site, extract and classify each unseen candidate, and commit the
// merged result to the archive. Strictly sequential; the inter-candidate
// delay is the rate limit toward the press servers.
type Pipeline struct {
	sites      []domain.Site
	registry   *scanner.Registry
	fetcher    ports.Fetcher
	extractor  ports.Extractor
	classifier ports.Classifier
	archive    ports.Archive
	notifier   ports.Notifier
	delay      time.Duration
	logger     *slog.Logger
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	return &Pipeline{
		sites:      deps.Sites,
		registry:   deps.Registry,
		fetcher:    deps.Fetcher,
		extractor:  deps.Extractor,
		classifier: deps.Classifier,
		archive:    deps.Archive,
		notifier:   deps.Notifier,
		delay:      deps.CandidateDelay,
		logger:     deps.Logger,
	}
}

// Sweep runs one end-to-end pass. Per-site and per-candidate failures are
// logged and contained at their own scope; only an archive write failure
// aborts the run.
func (p *Pipeline) Sweep(ctx context.Context, now time.Time) error {
	existing, err := p.archive.Load()
	if err != nil {
		p.warn("archive load failed, starting from empty", "error", err)
		existing = nil
	}
	seen := domain.ExistingURLs(existing)

	var newEntries []domain.ArchiveEntry
	paced := false

	for _, site := range p.sites {
		p.info("visiting site", "site", site.Name, "url", site.URL)

		strategy, err := p.registry.Resolve(site.Scanner)
		if err != nil {
			p.warn("no discovery strategy", "site", site.Name, "error", err)
			continue
		}

		listing, err := p.fetcher.Fetch(ctx, site.URL)
		if err != nil {
			p.warn("listing page unavailable", "site", site.Name, "error", err)
			continue
		}

		links, err := strategy.Discover(scanner.Request{Site: site, ListingMarkup: listing})
		if err != nil {
			p.warn("link discovery failed", "site", site.Name, "error", err)
			continue
		}
		p.info("candidates discovered", "site", site.Name, "count", len(links))

		for _, link := range links {
			if _, ok := seen[link]; ok {
				p.debug("already archived", "url", link)
				continue
			}

			if paced {
				if err := p.pace(ctx); err != nil {
					return err
				}
			}
			paced = true

			entry, ok := p.processCandidate(ctx, site, link, now)
			if !ok {
				continue
			}

			newEntries = append(newEntries, entry)
			seen[link] = struct{}{}
			p.info("archived", "program", entry.Program, "match_type", entry.MatchType, "url", link)
		}
	}

	if len(newEntries) == 0 {
		p.info("no new press releases found")
		return nil
	}

	if err := p.archive.Commit(newEntries, existing); err != nil {
		return fmt.Errorf("commit archive: %w", err)
	}
	p.info("archive updated", "added", len(newEntries))

	if p.notifier != nil {
		if err := p.notifier.PublishDigest(ctx, newEntries); err != nil {
			p.warn("digest notification failed", "error", err)
		}
	}

	return nil
}

// processCandidate runs extract and classify for one link. A false return
// means the candidate is skipped for this run; it was never committed, so it
// stays eligible on the next sweep.
func (p *Pipeline) processCandidate(ctx context.Context, site domain.Site, link string, now time.Time) (domain.ArchiveEntry, bool) {
	p.info("scraping candidate", "url", link)

	page, err := p.fetcher.Fetch(ctx, link)
	if err != nil {
		p.warn("candidate unavailable", "url", link, "error", err)
		return domain.ArchiveEntry{}, false
	}

	article, err := p.extractor.Extract(page, now)
	if err != nil {
		p.warn("no usable article", "url", link, "error", err)
		return domain.ArchiveEntry{}, false
	}

	result, err := p.classifier.Classify(ctx, ports.ClassifyRequest{
		Title:           article.Title,
		Body:            article.Body,
		SourceName:      site.Name,
		PublicationDate: article.PublicationDate,
	})
	if err != nil {
		p.warn("classification failed", "url", link, "error", err)
		return domain.ArchiveEntry{}, false
	}
	if result == nil || result.Ignore {
		p.info("not relevant TV news", "url", link)
		return domain.ArchiveEntry{}, false
	}

	return domain.NewArchiveEntry(site, link, article, *result, now), true
}

// pace enforces the fixed delay between consecutive candidates.
func (p *Pipeline) pace(ctx context.Context) error {
	if p.delay <= 0 {
		return nil
	}

	timer := time.NewTimer(p.delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Pipeline) info(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Info(msg, args...)
	}
}

func (p *Pipeline) warn(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Warn(msg, args...)
	}
}

func (p *Pipeline) debug(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Debug(msg, args...)
	}
}
