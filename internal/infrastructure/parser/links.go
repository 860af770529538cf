package parser

import (
	"bytes"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"PressRadar/internal/config"
	"PressRadar/internal/scanner"
)

// PrezlyScanner discovers press-release permalinks on Prezly-style listing
// pages. Prezly rooms render stories as plain anchor grids, so discovery is
// a filtered scan over every hyperlink on the page.
type PrezlyScanner struct {
	cfg config.DiscoveryConfig
}

var _ scanner.Scanner = (*PrezlyScanner)(nil)

// NewPrezlyScanner builds the strategy from discovery heuristics.
func NewPrezlyScanner(cfg config.DiscoveryConfig) *PrezlyScanner {
	return &PrezlyScanner{cfg: cfg}
}

// Name identifies the strategy inside the registry.
func (p *PrezlyScanner) Name() string {
	return "prezly"
}

// Discover scans all anchors on the listing page and returns up to
// MaxLinksPerSite absolute article URLs. Markup order carries no reliable
// recency signal, so no ranking is attempted; the cap only bounds
// downstream classification cost.
func (p *PrezlyScanner) Discover(req scanner.Request) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(req.ListingMarkup))
	if err != nil {
		return nil, fmt.Errorf("parse listing page: %w", err)
	}

	base, err := url.Parse(req.Site.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url %s: %w", req.Site.BaseURL, err)
	}

	seen := map[string]struct{}{}
	links := make([]string, 0, p.cfg.MaxLinksPerSite)

	doc.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || p.ignored(href) {
			return true
		}

		ref, err := url.Parse(href)
		if err != nil {
			return true
		}

		abs := base.ResolveReference(ref)
		abs.Fragment = ""
		if abs.Scheme != "http" && abs.Scheme != "https" {
			return true
		}
		if abs.Host != base.Host {
			return true
		}
		if len(slug(abs.Path)) < p.cfg.MinSlugLength {
			return true
		}

		resolved := abs.String()
		if _, ok := seen[resolved]; ok {
			return true
		}
		seen[resolved] = struct{}{}
		links = append(links, resolved)

		return p.cfg.MaxLinksPerSite <= 0 || len(links) < p.cfg.MaxLinksPerSite
	})

	return links, nil
}

func (p *PrezlyScanner) ignored(href string) bool {
	lower := strings.ToLower(href)
	for _, term := range p.cfg.IgnoreTerms {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}

// slug returns the final path segment of a URL path. Navigation and menu
// entries tend to have short slugs; article permalinks do not.
func slug(urlPath string) string {
	trimmed := strings.TrimSuffix(urlPath, "/")
	if trimmed == "" {
		return ""
	}
	return path.Base(trimmed)
}
