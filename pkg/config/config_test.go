package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	apperrors "wikiassets/pkg/errors"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.API.BaseURL != "https://minecraft.fandom.com/api.php" {
		t.Errorf("Expected default API URL, got %s", config.API.BaseURL)
	}

	if config.API.PageSize != 50 {
		t.Errorf("Expected default page size to be 50, got %d", config.API.PageSize)
	}

	if config.Download.Workers != 10 {
		t.Errorf("Expected default workers to be 10, got %d", config.Download.Workers)
	}

	if config.Download.Enabled {
		t.Error("Expected download mode to be disabled by default")
	}

	if config.API.RequestDelay != time.Second {
		t.Errorf("Expected default request delay to be 1s, got %v", config.API.RequestDelay)
	}

	if err := config.Validate(); err != nil {
		t.Errorf("Expected default config to be valid, got %v", err)
	}
}

func TestCatalogPath(t *testing.T) {
	tests := []struct {
		name      string
		assetsDir string
		catalog   string
		want      string
	}{
		{"sibling of assets dir", "scripts/minecraft_items", "", filepath.Join("scripts", "minecraft_items.json")},
		{"trailing slash", "out/assets/", "", filepath.Join("out", "assets.json")},
		{"explicit file", "scripts/minecraft_items", "/tmp/catalog.json", "/tmp/catalog.json"},
		{"current dir", ".", "", ""},
		{"root dir", "/", "", ""},
		{"parent dir", "../", "", ""},
		{"current dir with explicit file", ".", "items.json", "items.json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Output.AssetsDir = tt.assetsDir
			cfg.Output.CatalogFile = tt.catalog
			if got := cfg.CatalogPath(); got != tt.want {
				t.Errorf("CatalogPath() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("WIKIASSETS_CATEGORY", "Category:Blocks")
	t.Setenv("WIKIASSETS_WORKERS", "4")
	t.Setenv("WIKIASSETS_DOWNLOAD", "true")
	t.Setenv("WIKIASSETS_REQUEST_DELAY", "250ms")
	t.Setenv("WIKIASSETS_EXTENSIONS", ".png, .webp")
	t.Setenv("WIKIASSETS_KAFKA_BROKERS", "localhost:9092,localhost:9093")
	t.Setenv("WIKIASSETS_LOG_LEVEL", "debug")

	config := DefaultConfig()
	if err := config.LoadFromEnv(); err != nil {
		t.Fatalf("Failed to load from environment: %v", err)
	}

	if config.API.Category != "Category:Blocks" {
		t.Errorf("Expected category Category:Blocks, got %s", config.API.Category)
	}
	if config.Download.Workers != 4 {
		t.Errorf("Expected 4 workers, got %d", config.Download.Workers)
	}
	if !config.Download.Enabled {
		t.Error("Expected download mode to be enabled")
	}
	if config.API.RequestDelay != 250*time.Millisecond {
		t.Errorf("Expected request delay 250ms, got %v", config.API.RequestDelay)
	}
	if len(config.Download.Extensions) != 2 || config.Download.Extensions[1] != ".webp" {
		t.Errorf("Unexpected extensions: %v", config.Download.Extensions)
	}
	if len(config.Kafka.Brokers) != 2 {
		t.Errorf("Expected 2 kafka brokers, got %v", config.Kafka.Brokers)
	}
	if config.Logging.Level != "debug" {
		t.Errorf("Expected log level to be debug, got %s", config.Logging.Level)
	}
}

func TestLoadFromEnvInvalidValues(t *testing.T) {
	t.Setenv("WIKIASSETS_WORKERS", "many")
	t.Setenv("WIKIASSETS_REQUEST_DELAY", "soon")

	config := DefaultConfig()
	if err := config.LoadFromEnv(); err == nil {
		t.Fatal("Expected an error for unparsable values")
	}
	if config.Download.Workers != 10 {
		t.Errorf("Expected workers to keep default, got %d", config.Download.Workers)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wikiassets.yaml")
	content := `
api:
  category: "Category:Mobs"
  page_size: 100
  request_delay: 2s
download:
  enabled: true
  workers: 3
  extensions: [".png"]
output:
  assets_dir: "out/mobs"
  sort_by_name: true
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	config := DefaultConfig()
	if err := config.LoadFromFile(path); err != nil {
		t.Fatalf("Failed to load config file: %v", err)
	}

	if config.API.Category != "Category:Mobs" {
		t.Errorf("Expected category Category:Mobs, got %s", config.API.Category)
	}
	if config.API.PageSize != 100 {
		t.Errorf("Expected page size 100, got %d", config.API.PageSize)
	}
	if config.API.RequestDelay != 2*time.Second {
		t.Errorf("Expected request delay 2s, got %v", config.API.RequestDelay)
	}
	if !config.Download.Enabled || config.Download.Workers != 3 {
		t.Errorf("Unexpected download config: %+v", config.Download)
	}
	if !config.Output.SortByName {
		t.Error("Expected sort_by_name to be true")
	}
	// Values absent from the file keep their defaults
	if config.API.BaseURL != "https://minecraft.fandom.com/api.php" {
		t.Errorf("Expected default API URL to survive, got %s", config.API.BaseURL)
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	config := DefaultConfig()
	if err := config.LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected error for a missing explicit config file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(c *Config)
		wantError bool
	}{
		{"valid config", func(c *Config) {}, false},
		{"bad base url", func(c *Config) { c.API.BaseURL = "not a url" }, true},
		{"empty category", func(c *Config) { c.API.Category = " " }, true},
		{"page size too large", func(c *Config) { c.API.PageSize = 501 }, true},
		{"negative delay", func(c *Config) { c.API.RequestDelay = -time.Second }, true},
		{"zero delay", func(c *Config) { c.API.RequestDelay = 0 }, false},
		{"no workers", func(c *Config) { c.Download.Workers = 0 }, true},
		{"no extensions", func(c *Config) { c.Download.Extensions = nil }, true},
		{"invalid log level", func(c *Config) { c.Logging.Level = "loud" }, true},
		{"kafka without topic", func(c *Config) { c.Kafka.Brokers = []string{"localhost:9092"} }, true},
		{"assets dir without name", func(c *Config) { c.Output.AssetsDir = "." }, true},
		{"root assets dir", func(c *Config) { c.Output.AssetsDir = "/" }, true},
		{"unnamed assets dir with catalog file", func(c *Config) {
			c.Output.AssetsDir = "."
			c.Output.CatalogFile = "items.json"
		}, false},
		{"s3 without bucket", func(c *Config) { c.S3.Endpoint = "localhost:9000" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(config)
			err := config.Validate()
			if (err != nil) != tt.wantError {
				t.Errorf("Validate() error = %v, wantError %v", err, tt.wantError)
			}
		})
	}
}

func TestValidateErrorType(t *testing.T) {
	config := DefaultConfig()
	config.Download.Workers = 0
	config.API.Category = ""

	err := config.Validate()
	if got := apperrors.TypeOf(err); got != apperrors.ErrorTypeConfig {
		t.Errorf("TypeOf(Validate()) = %s, want %s", got, apperrors.ErrorTypeConfig)
	}
	if !strings.Contains(err.Error(), "workers") || !strings.Contains(err.Error(), "category") {
		t.Errorf("Expected both problems in %q", err)
	}
}

func TestNormalizedExtensions(t *testing.T) {
	config := DefaultConfig()
	config.Download.Extensions = []string{"PNG", ".Gif", " ", "webp "}

	got := config.NormalizedExtensions()
	want := []string{".png", ".gif", ".webp"}
	if len(got) != len(want) {
		t.Fatalf("NormalizedExtensions() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("NormalizedExtensions()[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestMergeCommandLineFlags(t *testing.T) {
	config := DefaultConfig()

	flags := map[string]interface{}{
		"download":            true,
		"category":            "Category:Tools",
		"output":              "/flag/output",
		"workers":             7,
		"delay":               500 * time.Millisecond,
		"keep-url-on-failure": true,
		"log-level":           "error",
	}

	config.MergeCommandLineFlags(flags)

	if !config.Download.Enabled {
		t.Error("Expected download mode enabled from flags")
	}
	if config.API.Category != "Category:Tools" {
		t.Errorf("Expected category Category:Tools, got %s", config.API.Category)
	}
	if config.Output.AssetsDir != "/flag/output" {
		t.Errorf("Expected assets dir /flag/output, got %s", config.Output.AssetsDir)
	}
	if config.Download.Workers != 7 {
		t.Errorf("Expected 7 workers, got %d", config.Download.Workers)
	}
	if config.API.RequestDelay != 500*time.Millisecond {
		t.Errorf("Expected delay 500ms, got %v", config.API.RequestDelay)
	}
	if !config.Download.KeepURLOnFailure {
		t.Error("Expected keep-url-on-failure from flags")
	}
	if config.Logging.Level != "error" {
		t.Errorf("Expected log level error, got %s", config.Logging.Level)
	}
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "api:\n  category: \"Category:FromFile\"\ndownload:\n  workers: 2\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	t.Setenv("WIKIASSETS_WORKERS", "5")

	config, err := Load(path, map[string]interface{}{"category": "Category:FromFlag"})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if config.API.Category != "Category:FromFlag" {
		t.Errorf("Expected flag to win, got %s", config.API.Category)
	}
	if config.Download.Workers != 5 {
		t.Errorf("Expected env to override file, got %d", config.Download.Workers)
	}
}

func TestSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	config := DefaultConfig()
	config.API.Category = "Category:Saved"
	if err := config.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded := DefaultConfig()
	if err := loaded.LoadFromFile(path); err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}
	if loaded.API.Category != "Category:Saved" {
		t.Errorf("Expected saved category, got %s", loaded.API.Category)
	}
}
