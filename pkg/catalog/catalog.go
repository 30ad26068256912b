// Package catalog turns per-item results into the JSON asset catalog.
package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"

	"wikiassets/pkg/logger"
	"wikiassets/pkg/models"
	"wikiassets/pkg/storage"
)

// Entry is one catalog record. LocalPath is null unless the asset was
// downloaded.
type Entry struct {
	Name      string  `json:"name"`
	ImageURL  string  `json:"imageUrl"`
	LocalPath *string `json:"localPath"`
}

// Filter keeps the results that carry an image URL, in their given order
func Filter(results []models.ResolvedAsset) []Entry {
	entries := make([]Entry, 0, len(results))
	for _, r := range results {
		if r.ImageURL == "" {
			continue
		}
		entry := Entry{Name: r.Name, ImageURL: r.ImageURL}
		if r.LocalPath != "" {
			localPath := r.LocalPath
			entry.LocalPath = &localPath
		}
		entries = append(entries, entry)
	}
	return entries
}

// SortByName orders entries by name, keeping the relative order of equal names
func SortByName(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Name < entries[j].Name
	})
}

// Encode renders entries as an indented JSON array. Non-ASCII text and HTML
// characters are written as-is.
func Encode(entries []Entry) ([]byte, error) {
	if entries == nil {
		entries = []Entry{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(entries); err != nil {
		return nil, fmt.Errorf("failed to encode catalog: %w", err)
	}
	return buf.Bytes(), nil
}

// Writer writes the catalog file of a run
type Writer struct {
	path       string
	sortByName bool
	logger     logger.Logger
}

// NewWriter creates a Writer for the catalog at path
func NewWriter(path string, sortByName bool, log logger.Logger) *Writer {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Writer{
		path:       path,
		sortByName: sortByName,
		logger:     log.WithField("component", "catalog"),
	}
}

// Path returns the catalog file path
func (w *Writer) Path() string {
	return w.path
}

// WriteCatalog writes the entries of results that have an image URL,
// replacing any previous catalog. Failures are logged and reported through
// the returned flag. The entries are returned either way.
func (w *Writer) WriteCatalog(results []models.ResolvedAsset) ([]Entry, bool) {
	entries := Filter(results)
	if w.sortByName {
		SortByName(entries)
	}

	if err := w.write(entries); err != nil {
		w.logger.WithError(err).ErrorWithFields("Failed to write catalog", map[string]interface{}{
			"path": w.path,
		})
		return entries, false
	}

	w.logger.InfoWithFields("Catalog written", map[string]interface{}{
		"path":    w.path,
		"entries": len(entries),
	})
	return entries, true
}

func (w *Writer) write(entries []Entry) error {
	data, err := Encode(entries)
	if err != nil {
		return err
	}
	if err := storage.EnsureDir(filepath.Dir(w.path)); err != nil {
		return err
	}
	_, err = storage.SaveFile(w.path, bytes.NewReader(data))
	return err
}
