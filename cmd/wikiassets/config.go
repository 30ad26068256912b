package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
	"wikiassets/pkg/config"
	"wikiassets/pkg/ui"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage wikiassets configuration files.

Configuration can be loaded from:
  - Command line flags (highest priority)
  - Environment variables (WIKIASSETS_*, also read from .env)
  - Configuration file
  - Default values (lowest priority)`,
}

// initCmd represents the config init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an example configuration file",
	Long: `Create an example configuration file with all available options.

The file will be created in the current directory as 'wikiassets.yaml'
unless a different path is specified with the --config flag.`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

// showCmd represents the config show command
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Show the effective configuration after merging all sources.

Secret values are masked.`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

// validateCmd represents the config validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(initCmd)
	configCmd.AddCommand(showCmd)
	configCmd.AddCommand(validateCmd)
}

const exampleConfig = `# wikiassets configuration file
#
# Every option can also be set with an environment variable prefixed with
# WIKIASSETS_, for example WIKIASSETS_CATEGORY or WIKIASSETS_DOWNLOAD.

# MediaWiki API
api:
  base_url: "https://minecraft.fandom.com/api.php"
  category: "Category:Items"
  # Members requested per listing page (1-500)
  page_size: 50
  user_agent: "wikiassets/1.0 (+https://www.mediawiki.org/wiki/API:Etiquette)"
  request_timeout: 30s
  # Delay between category listing pages
  request_delay: 1s

# Resolution and download
download:
  # Save every resolved image to output.assets_dir
  enabled: false
  workers: 10
  timeout: 10s
  # Keep the image URL in the catalog when its download fails
  keep_url_on_failure: false
  extensions: [".png", ".gif"]

# Output
output:
  assets_dir: "scripts/minecraft_items"
  # Defaults to <assets_dir>.json next to the assets directory
  catalog_file: ""
  sort_by_name: false

# Logging
logging:
  # debug, info, warn, error
  level: "info"
  file: "wikiassets.log"
  console: true

# Optional: publish one message per catalog entry
kafka:
  brokers: []
  topic: ""
  timeout: 10s

# Optional: mirror the catalog and assets to S3-compatible storage
s3:
  endpoint: ""
  access_key: ""
  secret_key: ""
  bucket: ""
  prefix: ""
  use_ssl: true

# Optional: push run metrics to a Prometheus Pushgateway
metrics:
  pushgateway_url: ""
  job: "wikiassets"
`

func runConfigInit(cmd *cobra.Command, args []string) error {
	configPath := configFile
	if configPath == "" {
		configPath = "wikiassets.yaml"
	}

	if _, err := os.Stat(configPath); err == nil {
		ui.PrintError("Configuration file already exists", configPath)
		return fmt.Errorf("%s already exists", configPath)
	}

	if err := os.WriteFile(configPath, []byte(exampleConfig), 0644); err != nil {
		ui.PrintError("Failed to create configuration file", err.Error())
		return err
	}

	ui.PrintSuccess("Configuration file created: " + configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("1. Edit the category and output settings")
	fmt.Println("2. Run 'wikiassets config validate' to check the configuration")
	fmt.Println("3. Build the catalog with 'wikiassets fetch'")
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile, globalFlags(cmd))
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		return err
	}

	display := *cfg
	display.S3.SecretKey = mask(display.S3.SecretKey)
	display.S3.AccessKey = mask(display.S3.AccessKey)

	data, err := yaml.Marshal(&display)
	if err != nil {
		ui.PrintError("Failed to format configuration", err.Error())
		return err
	}

	ui.PrintHighlight("Current Configuration")
	fmt.Println()
	fmt.Print(string(data))
	fmt.Println()
	ui.PrintInfo("Catalog file", cfg.CatalogPath())
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	if configFile != "" {
		ui.PrintInfo("Validating configuration", configFile)
	}

	cfg, err := config.Load(configFile, globalFlags(cmd))
	if err != nil {
		ui.PrintError("Configuration has errors", err.Error())
		return err
	}

	if cfg.API.RequestDelay == 0 {
		ui.PrintWarning("request_delay is 0, category pages will be requested back to back")
	}
	if cfg.Download.Workers > 50 {
		ui.PrintWarning("More than 50 workers may be throttled by the wiki")
	}

	ui.PrintSuccess("Configuration is valid")
	return nil
}

// mask hides all but the edges of a secret
func mask(s string) string {
	if s == "" {
		return ""
	}
	if len(s) > 8 {
		return s[:4] + "..." + s[len(s)-4:]
	}
	return "***"
}
