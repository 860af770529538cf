package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"PressRadar/internal/config"
	"PressRadar/internal/domain"
	"PressRadar/internal/ports"
)

// JSONArchive persists the archive as one human-readable JSON array file,
// replaced wholesale on every commit.
type JSONArchive struct {
	path       string
	maxEntries int
	logger     *slog.Logger
}

var _ ports.Archive = (*JSONArchive)(nil)

// NewJSONArchive wires the archive file location and retention cap.
func NewJSONArchive(cfg config.ArchiveConfig, logger *slog.Logger) *JSONArchive {
	return &JSONArchive{path: cfg.Path, maxEntries: cfg.MaxEntries, logger: logger}
}

// Load reads the persisted archive. A missing, unreadable or structurally
// invalid file yields an empty archive: a corrupt archive must never halt
// ingestion, re-ingesting previously seen URLs is the acceptable cost.
func (a *JSONArchive) Load() ([]domain.ArchiveEntry, error) {
	raw, err := os.ReadFile(a.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			a.warn("archive unreadable, treating as empty", "path", a.path, "error", err)
		}
		return nil, nil
	}

	var entries []domain.ArchiveEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		a.warn("archive corrupt, treating as empty", "path", a.path, "error", err)
		return nil, nil
	}

	return entries, nil
}

// Commit merges new entries ahead of the existing ones, applies the
// retention cap and replaces the archive file. Ingestion order, not
// publication order, determines precedence. A write failure is fatal for
// the run and propagates.
func (a *JSONArchive) Commit(newEntries, existing []domain.ArchiveEntry) error {
	merged := make([]domain.ArchiveEntry, 0, len(newEntries)+len(existing))
	seen := map[string]struct{}{}
	for _, entry := range append(append([]domain.ArchiveEntry{}, newEntries...), existing...) {
		if _, ok := seen[entry.OriginalURL]; ok {
			continue
		}
		seen[entry.OriginalURL] = struct{}{}
		merged = append(merged, entry)
	}

	if a.maxEntries > 0 && len(merged) > a.maxEntries {
		merged = merged[:a.maxEntries]
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(merged); err != nil {
		return fmt.Errorf("encode archive: %w", err)
	}

	if err := os.WriteFile(a.path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write archive %s: %w", a.path, err)
	}

	return nil
}

func (a *JSONArchive) warn(msg string, args ...any) {
	if a.logger != nil {
		a.logger.Warn(msg, args...)
	}
}
