package storage

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"wikiassets/pkg/errors"
)

// MaxFilenameLength is the longest file name produced by SanitizeFilename,
// counted in characters
const MaxFilenameLength = 255

var invalidFilenameChars = strings.NewReplacer(
	"<", "_", ">", "_", ":", "_", `"`, "_", "/", "_",
	`\`, "_", "|", "_", "?", "_", "*", "_",
)

// SanitizeFilename replaces characters that are invalid in file names with
// an underscore and truncates the result to MaxFilenameLength characters
func SanitizeFilename(name string) string {
	name = invalidFilenameChars.Replace(name)
	if runes := []rune(name); len(runes) > MaxFilenameLength {
		name = string(runes[:MaxFilenameLength])
	}
	return name
}

// AssetFilename derives the local file name for an item's image from the
// item title and the decoded last path segment of the image URL
func AssetFilename(title, imageURL string) string {
	decoded, err := url.PathUnescape(imageURL)
	if err != nil {
		decoded = imageURL
	}
	return SanitizeFilename(title + "_" + path.Base(decoded))
}

// EnsureDir creates dir and any missing parents
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Filesystem(dir, err)
	}
	return nil
}

// SaveFile writes r to path through a temporary file in the same directory
// and renames it into place, overwriting any existing file. Nothing is left
// at path when the write fails.
func SaveFile(path string, r io.Reader) (int64, error) {
	out, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return 0, errors.Filesystem(path, fmt.Errorf("failed to create temporary file: %w", err))
	}
	tempFile := out.Name()

	n, err := io.Copy(out, r)
	closeErr := out.Close()

	if err != nil {
		os.Remove(tempFile)
		return 0, errors.Filesystem(path, fmt.Errorf("failed to write data: %w", err))
	}

	if closeErr != nil {
		os.Remove(tempFile)
		return 0, errors.Filesystem(path, fmt.Errorf("failed to close file: %w", closeErr))
	}

	if err := os.Chmod(tempFile, 0644); err != nil {
		os.Remove(tempFile)
		return 0, errors.Filesystem(path, err)
	}

	if err := os.Rename(tempFile, path); err != nil {
		os.Remove(tempFile)
		return 0, errors.Filesystem(path, fmt.Errorf("failed to rename temporary file: %w", err))
	}

	return n, nil
}

// Manager owns the assets directory of a run
type Manager struct {
	outputDir string
	saved     int
	bytes     int64
	mu        sync.Mutex
}

// NewManager creates the assets directory if needed
func NewManager(outputDir string) (*Manager, error) {
	if err := EnsureDir(outputDir); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	return &Manager{outputDir: outputDir}, nil
}

// PathFor returns the destination path for an item's image
func (m *Manager) PathFor(title, imageURL string) string {
	return filepath.Join(m.outputDir, AssetFilename(title, imageURL))
}

// Save writes r to path and records it in the manager's totals
func (m *Manager) Save(path string, r io.Reader) error {
	n, err := SaveFile(path, r)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.saved++
	m.bytes += n
	m.mu.Unlock()
	return nil
}

// GetOutputDir returns the assets directory path
func (m *Manager) GetOutputDir() string {
	return m.outputDir
}

// SavedCount returns the number of files saved and their total size
func (m *Manager) SavedCount() (int, int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saved, m.bytes
}
