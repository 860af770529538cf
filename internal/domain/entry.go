package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// Site is the static configuration of one monitored press room.
type Site struct {
	Name    string
	URL     string
	BaseURL string
	Scanner string
}

// ExtractedArticle holds the normalized content of a single press page.
type ExtractedArticle struct {
	Title           string
	Body            string
	PublicationDate string
}

// MatchType tells whether a release concerns one specific airing or the
// program in general.
type MatchType string

const (
	MatchEpisode MatchType = "episode"
	MatchSeason  MatchType = "season"
)

// Valid reports whether the value is one of the known match types.
func (m MatchType) Valid() bool {
	return m == MatchEpisode || m == MatchSeason
}

// ClassificationResult is the structured judgment returned by the classifier.
type ClassificationResult struct {
	ProgramTitle  string    `json:"program_title"`
	MatchType     MatchType `json:"match_type"`
	BroadcastDate *string   `json:"broadcast_date"`
	Summary       string    `json:"summary"`
	Ignore        bool      `json:"ignore"`
}

// ArchiveEntry is the durable unit of record. Entries are created once on
// successful classification and never mutated afterwards.
type ArchiveEntry struct {
	ID              string    `json:"id"`
	Channel         string    `json:"channel"`
	Program         string    `json:"program"`
	MatchType       MatchType `json:"match_type"`
	BroadcastDate   *string   `json:"broadcast_date"`
	PublicationDate string    `json:"publication_date"`
	PressTitle      string    `json:"press_title"`
	Summary         string    `json:"summary"`
	FullText        string    `json:"full_text"`
	OriginalURL     string    `json:"original_url"`
	IngestedAt      time.Time `json:"ingested_at"`
}

// EntryID derives a stable identifier from the channel and the article URL.
// The URL is already the dedup key, so hashing it keeps IDs collision-free
// across runs without any wall-clock component.
func EntryID(channel, originalURL string) string {
	sum := sha256.Sum256([]byte(originalURL))
	return fmt.Sprintf("%s-%s", channel, hex.EncodeToString(sum[:])[:12])
}

// ExistingURLs derives the dedup index from loaded entries. There is no
// separate persistent index; the archive itself is the source of truth for
// "have we seen this URL".
func ExistingURLs(entries []ArchiveEntry) map[string]struct{} {
	urls := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		urls[entry.OriginalURL] = struct{}{}
	}
	return urls
}

// NewArchiveEntry assembles the durable record for a classified article.
func NewArchiveEntry(site Site, url string, art ExtractedArticle, res ClassificationResult, ingestedAt time.Time) ArchiveEntry {
	return ArchiveEntry{
		ID:              EntryID(site.Name, url),
		Channel:         site.Name,
		Program:         res.ProgramTitle,
		MatchType:       res.MatchType,
		BroadcastDate:   res.BroadcastDate,
		PublicationDate: art.PublicationDate,
		PressTitle:      art.Title,
		Summary:         res.Summary,
		FullText:        art.Body,
		OriginalURL:     url,
		IngestedAt:      ingestedAt,
	}
}
