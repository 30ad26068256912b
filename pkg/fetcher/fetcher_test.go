package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"wikiassets/pkg/config"
	"wikiassets/pkg/logger"
	"wikiassets/pkg/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFetcher(t *testing.T, timeout time.Duration) (*Fetcher, *storage.Manager, *logger.TestLogger) {
	t.Helper()
	manager, err := storage.NewManager(t.TempDir())
	require.NoError(t, err)

	cfg := config.DefaultConfig()
	cfg.Download.Timeout = timeout

	log := logger.NewTestLogger()
	f := New(cfg.API, cfg.Download, manager, log)
	t.Cleanup(func() { _ = f.Close() })
	return f, manager, log
}

func TestFetchToFileSuccess(t *testing.T) {
	body := []byte("\x89PNG\r\n\x1a\n fake image bytes")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.UserAgent(), "wikiassets")
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	f, manager, _ := newTestFetcher(t, 2*time.Second)
	dest := filepath.Join(manager.GetOutputDir(), "Apple_Apple.png")
	require.NoError(t, os.WriteFile(dest, []byte("stale"), 0644))

	ok := f.FetchToFile(context.Background(), srv.URL+"/Apple.png", dest)
	require.True(t, ok)

	content, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, body, content)

	count, _ := manager.SavedCount()
	assert.Equal(t, 1, count)
}

func TestFetchToFileNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such file", http.StatusNotFound)
	}))
	defer srv.Close()

	f, manager, log := newTestFetcher(t, 2*time.Second)
	dest := filepath.Join(manager.GetOutputDir(), "Missing.png")

	assert.False(t, f.FetchToFile(context.Background(), srv.URL+"/Missing.png", dest))

	_, err := os.Stat(dest)
	assert.True(t, os.IsNotExist(err), "no file should be written on 404")

	entries, err := os.ReadDir(manager.GetOutputDir())
	require.NoError(t, err)
	assert.Empty(t, entries)

	require.Len(t, log.GetMessagesByLevel("WARN"), 1)
	assert.Equal(t, "http_status", log.GetMessagesByLevel("WARN")[0].Fields["error_type"])
	assert.True(t, log.HasMessage("Asset not found on server"))
}

func TestFetchToFileTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	f, manager, _ := newTestFetcher(t, 50*time.Millisecond)
	dest := filepath.Join(manager.GetOutputDir(), "Slow.png")

	assert.False(t, f.FetchToFile(context.Background(), srv.URL+"/Slow.png", dest))
	_, err := os.Stat(dest)
	assert.True(t, os.IsNotExist(err))
}

func TestFetchToFileUnwritablePath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("data"))
	}))
	defer srv.Close()

	f, manager, _ := newTestFetcher(t, 2*time.Second)
	dest := filepath.Join(manager.GetOutputDir(), "missing-dir", "a.png")

	assert.False(t, f.FetchToFile(context.Background(), srv.URL+"/a.png", dest))
}
