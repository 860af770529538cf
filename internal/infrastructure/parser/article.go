package parser

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"PressRadar/internal/config"
	"PressRadar/internal/domain"
	"PressRadar/internal/ports"
)

var (
	// ErrNoArticle marks a page without any usable content container.
	ErrNoArticle = errors.New("no article content found")
	// ErrNoTitle marks a page without a detectable heading. Articles
	// without a title carry no usable identity and are rejected rather
	// than archived under a placeholder.
	ErrNoTitle = errors.New("no article title found")
)

const noiseSelector = "script, style, nav, footer, header, button, iframe, svg, noscript"

const dateLayout = "2006-01-02"

// Extractor isolates the main content of a press page and normalizes it
// into a plain-text article record.
type Extractor struct {
	cfg      config.ExtractConfig
	patterns []*regexp.Regexp
}

var _ ports.Extractor = (*Extractor)(nil)

// NewExtractor compiles the configured content-class patterns.
func NewExtractor(cfg config.ExtractConfig) (*Extractor, error) {
	patterns := make([]*regexp.Regexp, 0, len(cfg.ContentClassPatterns))
	for _, p := range cfg.ContentClassPatterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("content class pattern %q: %w", p, err)
		}
		patterns = append(patterns, re)
	}
	return &Extractor{cfg: cfg, patterns: patterns}, nil
}

// Extract parses the article markup and returns title, publication date and
// a paragraph-separated plain-text body.
func (e *Extractor) Extract(markup []byte, runDate time.Time) (domain.ExtractedArticle, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(markup))
	if err != nil {
		return domain.ExtractedArticle{}, fmt.Errorf("parse article page: %w", err)
	}

	title := strings.TrimSpace(doc.Find("h1").First().Text())
	if title == "" {
		return domain.ExtractedArticle{}, ErrNoTitle
	}

	// The time marker may live anywhere on the page, including inside
	// header nodes that the noise strip below removes. Read it first.
	pubDate := publicationDate(doc, runDate)

	container := e.findContainer(doc)
	if container == nil || container.Length() == 0 {
		return domain.ExtractedArticle{}, ErrNoArticle
	}

	// Drop non-content nodes before walking text so share buttons,
	// embedded players and menus never leak into the body.
	container.Find(noiseSelector).Remove()

	var parts []string
	container.Find("p, h2, h3, li").Each(func(_ int, sel *goquery.Selection) {
		text := strings.TrimSpace(sel.Text())
		if utf8.RuneCountInString(text) < e.cfg.MinFragmentChars {
			return
		}
		if e.boilerplate(text) {
			return
		}
		parts = append(parts, text)
	})

	return domain.ExtractedArticle{
		Title:           title,
		Body:            strings.Join(parts, "\n\n"),
		PublicationDate: pubDate,
	}, nil
}

// findContainer prefers a semantic <article>, then the first div whose class
// matches a configured content pattern, then the page body.
func (e *Extractor) findContainer(doc *goquery.Document) *goquery.Selection {
	if article := doc.Find("article").First(); article.Length() > 0 {
		return article
	}

	for _, re := range e.patterns {
		var match *goquery.Selection
		doc.Find("div[class]").EachWithBreak(func(_ int, div *goquery.Selection) bool {
			class, _ := div.Attr("class")
			if re.MatchString(class) {
				match = div
				return false
			}
			return true
		})
		if match != nil {
			return match
		}
	}

	if body := doc.Find("body").First(); body.Length() > 0 {
		return body
	}
	return nil
}

func (e *Extractor) boilerplate(text string) bool {
	lower := strings.ToLower(text)
	for _, phrase := range e.cfg.BoilerplatePhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// publicationDate reads the first machine-readable time marker anywhere on
// the page; Prezly keeps it outside the story body. Missing or malformed
// dates default to the run date.
func publicationDate(doc *goquery.Document, runDate time.Time) string {
	if datetime, ok := doc.Find("time[datetime]").First().Attr("datetime"); ok && len(datetime) >= len(dateLayout) {
		candidate := datetime[:len(dateLayout)]
		if _, err := time.Parse(dateLayout, candidate); err == nil {
			return candidate
		}
	}
	return runDate.Format(dateLayout)
}
