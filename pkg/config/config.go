package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
	apperrors "wikiassets/pkg/errors"
)

// EnvPrefix is prepended to every environment variable the loader reads
const EnvPrefix = "WIKIASSETS_"

// Config holds all configuration options for a catalog run
type Config struct {
	// MediaWiki API settings
	API APIConfig `yaml:"api" json:"api"`

	// Resolution and download settings
	Download DownloadConfig `yaml:"download" json:"download"`

	// Output locations
	Output OutputConfig `yaml:"output" json:"output"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`

	// Optional catalog mirrors
	Kafka KafkaConfig `yaml:"kafka" json:"kafka"`
	S3    S3Config    `yaml:"s3" json:"s3"`

	// Run metrics
	Metrics MetricsConfig `yaml:"metrics" json:"metrics"`
}

// APIConfig holds MediaWiki API settings
type APIConfig struct {
	BaseURL        string        `yaml:"base_url" json:"base_url"`
	Category       string        `yaml:"category" json:"category"`
	PageSize       int           `yaml:"page_size" json:"page_size"`
	UserAgent      string        `yaml:"user_agent" json:"user_agent"`
	RequestTimeout time.Duration `yaml:"request_timeout" json:"request_timeout"`
	RequestDelay   time.Duration `yaml:"request_delay" json:"request_delay"`
}

// DownloadConfig holds resolution and download settings
type DownloadConfig struct {
	Enabled bool          `yaml:"enabled" json:"enabled"`
	Workers int           `yaml:"workers" json:"workers"`
	Timeout time.Duration `yaml:"timeout" json:"timeout"`
	// KeepURLOnFailure keeps a resolved image URL in the catalog when the
	// download itself fails. The item is still counted as failed.
	KeepURLOnFailure bool     `yaml:"keep_url_on_failure" json:"keep_url_on_failure"`
	Extensions       []string `yaml:"extensions" json:"extensions"`
}

// OutputConfig holds output locations
type OutputConfig struct {
	AssetsDir   string `yaml:"assets_dir" json:"assets_dir"`
	CatalogFile string `yaml:"catalog_file" json:"catalog_file"`
	SortByName  bool   `yaml:"sort_by_name" json:"sort_by_name"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
	// Console disables console output when false
	Console bool `yaml:"console" json:"console"`
}

// KafkaConfig configures the optional Kafka catalog publisher
type KafkaConfig struct {
	Brokers []string      `yaml:"brokers" json:"brokers"`
	Topic   string        `yaml:"topic" json:"topic"`
	Timeout time.Duration `yaml:"timeout" json:"timeout"`
}

// Enabled reports whether a Kafka publisher should be created
func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0 && k.Topic != ""
}

// S3Config configures the optional S3-compatible mirror
type S3Config struct {
	Endpoint  string `yaml:"endpoint" json:"endpoint"`
	AccessKey string `yaml:"access_key" json:"access_key"`
	SecretKey string `yaml:"secret_key" json:"secret_key"`
	Bucket    string `yaml:"bucket" json:"bucket"`
	Prefix    string `yaml:"prefix" json:"prefix"`
	UseSSL    bool   `yaml:"use_ssl" json:"use_ssl"`
}

// Enabled reports whether an S3 publisher should be created
func (s S3Config) Enabled() bool {
	return s.Endpoint != "" && s.Bucket != ""
}

// MetricsConfig holds Prometheus settings
type MetricsConfig struct {
	PushgatewayURL string `yaml:"pushgateway_url" json:"pushgateway_url"`
	Job            string `yaml:"job" json:"job"`
}

// DefaultConfig returns a Config instance with the defaults of the
// Minecraft wiki item catalog
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:        "https://minecraft.fandom.com/api.php",
			Category:       "Category:Items",
			PageSize:       50,
			UserAgent:      "wikiassets/1.0 (+https://www.mediawiki.org/wiki/API:Etiquette)",
			RequestTimeout: 30 * time.Second,
			RequestDelay:   time.Second,
		},
		Download: DownloadConfig{
			Enabled:    false,
			Workers:    10,
			Timeout:    10 * time.Second,
			Extensions: []string{".png", ".gif"},
		},
		Output: OutputConfig{
			AssetsDir: "scripts/minecraft_items",
		},
		Logging: LoggingConfig{
			Level:   "info",
			File:    "wikiassets.log",
			Console: true,
		},
		Kafka: KafkaConfig{
			Timeout: 10 * time.Second,
		},
		Metrics: MetricsConfig{
			Job: "wikiassets",
		},
	}
}

// CatalogPath returns the catalog file location. When no file is
// configured the catalog sits next to the assets directory, in its parent,
// named after the directory. It returns "" when the assets directory has no
// usable name, such as "." or "/".
func (c *Config) CatalogPath() string {
	if c.Output.CatalogFile != "" {
		return c.Output.CatalogFile
	}
	dir := filepath.Clean(c.Output.AssetsDir)
	base := filepath.Base(dir)
	if base == "." || base == ".." || base == string(filepath.Separator) {
		return ""
	}
	return filepath.Join(filepath.Dir(dir), base+".json")
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	var errs []error

	setString := func(name string, dst *string) {
		if v := os.Getenv(EnvPrefix + name); v != "" {
			*dst = v
		}
	}
	setInt := func(name string, dst *int) {
		if v := os.Getenv(EnvPrefix + name); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
				return
			}
			*dst = n
		}
	}
	setBool := func(name string, dst *bool) {
		if v := os.Getenv(EnvPrefix + name); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
				return
			}
			*dst = b
		}
	}
	setDuration := func(name string, dst *time.Duration) {
		if v := os.Getenv(EnvPrefix + name); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
				return
			}
			*dst = d
		}
	}

	setString("API_URL", &c.API.BaseURL)
	setString("CATEGORY", &c.API.Category)
	setInt("PAGE_SIZE", &c.API.PageSize)
	setString("USER_AGENT", &c.API.UserAgent)
	setDuration("REQUEST_TIMEOUT", &c.API.RequestTimeout)
	setDuration("REQUEST_DELAY", &c.API.RequestDelay)

	setBool("DOWNLOAD", &c.Download.Enabled)
	setInt("WORKERS", &c.Download.Workers)
	setDuration("DOWNLOAD_TIMEOUT", &c.Download.Timeout)
	setBool("KEEP_URL_ON_FAILURE", &c.Download.KeepURLOnFailure)
	if v := os.Getenv(EnvPrefix + "EXTENSIONS"); v != "" {
		c.Download.Extensions = splitList(v)
	}

	setString("ASSETS_DIR", &c.Output.AssetsDir)
	setString("CATALOG_FILE", &c.Output.CatalogFile)
	setBool("SORT_BY_NAME", &c.Output.SortByName)

	setString("LOG_LEVEL", &c.Logging.Level)
	setString("LOG_FILE", &c.Logging.File)

	if v := os.Getenv(EnvPrefix + "KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = splitList(v)
	}
	setString("KAFKA_TOPIC", &c.Kafka.Topic)

	setString("S3_ENDPOINT", &c.S3.Endpoint)
	setString("S3_ACCESS_KEY", &c.S3.AccessKey)
	setString("S3_SECRET_KEY", &c.S3.SecretKey)
	setString("S3_BUCKET", &c.S3.Bucket)
	setString("S3_PREFIX", &c.S3.Prefix)
	setBool("S3_USE_SSL", &c.S3.UseSSL)

	setString("PUSHGATEWAY_URL", &c.Metrics.PushgatewayURL)

	return errors.Join(errs...)
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	home := os.Getenv("HOME")
	locations := []string{
		"wikiassets.yaml",
		"wikiassets.yml",
		".wikiassets.yaml",
		filepath.Join(home, ".config", "wikiassets", "config.yaml"),
		filepath.Join(home, ".wikiassets.yaml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if u, err := url.Parse(c.API.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("invalid API base URL %q", c.API.BaseURL))
	}
	if strings.TrimSpace(c.API.Category) == "" {
		errs = append(errs, errors.New("category is required"))
	}
	// MediaWiki caps cmlimit at 500 for regular clients
	if c.API.PageSize <= 0 || c.API.PageSize > 500 {
		errs = append(errs, errors.New("page size must be between 1 and 500"))
	}
	if c.API.RequestTimeout <= 0 {
		errs = append(errs, errors.New("request timeout must be positive"))
	}
	if c.API.RequestDelay < 0 {
		errs = append(errs, errors.New("request delay cannot be negative"))
	}

	if c.Download.Workers <= 0 {
		errs = append(errs, errors.New("workers must be positive"))
	}
	if c.Download.Timeout <= 0 {
		errs = append(errs, errors.New("download timeout must be positive"))
	}
	if len(c.Download.Extensions) == 0 {
		errs = append(errs, errors.New("at least one image extension is required"))
	}

	if c.Output.AssetsDir == "" {
		errs = append(errs, errors.New("assets directory is required"))
	} else if c.CatalogPath() == "" {
		errs = append(errs, fmt.Errorf("catalog file is required when the assets directory is %q", c.Output.AssetsDir))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Errorf("invalid log level %q", c.Logging.Level))
	}

	if len(c.Kafka.Brokers) > 0 && c.Kafka.Topic == "" {
		errs = append(errs, errors.New("kafka topic is required when brokers are set"))
	}
	if c.S3.Endpoint != "" && c.S3.Bucket == "" {
		errs = append(errs, errors.New("s3 bucket is required when an endpoint is set"))
	}

	if len(errs) == 0 {
		return nil
	}
	return apperrors.Config(errors.Join(errs...))
}

// NormalizedExtensions returns the accepted extensions lower-cased and
// dot-prefixed
func (c *Config) NormalizedExtensions() []string {
	out := make([]string, 0, len(c.Download.Extensions))
	for _, ext := range c.Download.Extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		out = append(out, ext)
	}
	return out
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration.
// Only keys present in the map are applied.
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if v, ok := flags["download"].(bool); ok {
		c.Download.Enabled = v
	}
	if v, ok := flags["category"].(string); ok && v != "" {
		c.API.Category = v
	}
	if v, ok := flags["api-url"].(string); ok && v != "" {
		c.API.BaseURL = v
	}
	if v, ok := flags["output"].(string); ok && v != "" {
		c.Output.AssetsDir = v
	}
	if v, ok := flags["catalog"].(string); ok && v != "" {
		c.Output.CatalogFile = v
	}
	if v, ok := flags["workers"].(int); ok && v > 0 {
		c.Download.Workers = v
	}
	if v, ok := flags["delay"].(time.Duration); ok {
		c.API.RequestDelay = v
	}
	if v, ok := flags["keep-url-on-failure"].(bool); ok {
		c.Download.KeepURLOnFailure = v
	}
	if v, ok := flags["sort"].(bool); ok {
		c.Output.SortByName = v
	}
	if v, ok := flags["log-level"].(string); ok && v != "" {
		c.Logging.Level = v
	}
	if v, ok := flags["log-file"].(string); ok {
		c.Logging.File = v
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Missing .env files are fine
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".wikiassets.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
