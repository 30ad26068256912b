package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"wikiassets/pkg/config"
	"wikiassets/pkg/logger"
	"wikiassets/pkg/scraper"
	"wikiassets/pkg/ui"
)

var (
	// Fetch command flags
	download         bool
	category         string
	apiURL           string
	outputDir        string
	catalogFile      string
	workers          int
	delay            time.Duration
	keepURLOnFailure bool
	sortByName       bool
	quiet            bool
)

// fetchCmd represents the fetch command
var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "List a category and write its image catalog",
	Long: `List every page of a MediaWiki category, resolve the first accepted image
of each page and write the catalog of resolved items as JSON.

By default only metadata is collected. With --download every resolved image
is also saved to the assets directory and its path recorded in the catalog.

A failure on a single item never stops the run: the item is counted as
failed and left out of the catalog.`,
	Example: `  # Build the catalog of the Minecraft items category (metadata only)
  wikiassets fetch

  # Download every image as well
  wikiassets fetch --download --output ./assets/items

  # Another wiki and category, sorted output, 20 workers
  wikiassets fetch --api-url https://terraria.wiki.gg/api.php --category Category:Weapons --workers 20 --sort

  # Keep image URLs in the catalog even when a download fails
  wikiassets fetch --download --keep-url-on-failure`,
	Args: cobra.NoArgs,
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().BoolVarP(&download, "download", "d", false, "download images to the assets directory")
	fetchCmd.Flags().StringVar(&category, "category", "", "category to list (default Category:Items)")
	fetchCmd.Flags().StringVar(&apiURL, "api-url", "", "MediaWiki api.php endpoint")
	fetchCmd.Flags().StringVarP(&outputDir, "output", "o", "", "assets directory (default scripts/minecraft_items)")
	fetchCmd.Flags().StringVar(&catalogFile, "catalog", "", "catalog file (default <output>.json)")
	fetchCmd.Flags().IntVarP(&workers, "workers", "w", 10, "number of items processed concurrently")
	fetchCmd.Flags().DurationVar(&delay, "delay", time.Second, "delay between category page requests")
	fetchCmd.Flags().BoolVar(&keepURLOnFailure, "keep-url-on-failure", false, "keep the image URL in the catalog when its download fails")
	fetchCmd.Flags().BoolVar(&sortByName, "sort", false, "sort catalog entries by name")
	fetchCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "suppress console output except errors")
}

// fetchFlags maps the flags the user set onto config keys
func fetchFlags(cmd *cobra.Command) map[string]interface{} {
	flags := globalFlags(cmd)
	changed := cmd.Flags().Changed

	if changed("download") {
		flags["download"] = download
	}
	if changed("category") {
		flags["category"] = category
	}
	if changed("api-url") {
		flags["api-url"] = apiURL
	}
	if changed("output") {
		flags["output"] = outputDir
	}
	if changed("catalog") {
		flags["catalog"] = catalogFile
	}
	if changed("workers") {
		flags["workers"] = workers
	}
	if changed("delay") {
		flags["delay"] = delay
	}
	if changed("keep-url-on-failure") {
		flags["keep-url-on-failure"] = keepURLOnFailure
	}
	if changed("sort") {
		flags["sort"] = sortByName
	}
	return flags
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile, fetchFlags(cmd))
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		return err
	}

	if quiet {
		cfg.Logging.Console = false
	}
	if err := logger.Initialize(&cfg.Logging); err != nil {
		ui.PrintError("Failed to initialize logger", err.Error())
		return err
	}
	log := logger.GetLogger()
	log.WithField("version", version).Info("wikiassets starting")

	if !quiet {
		ui.PrintBanner()
		ui.PrintInfo("Wiki", cfg.API.BaseURL)
		ui.PrintInfo("Category", cfg.API.Category)
		ui.PrintInfo("Download", strconv.FormatBool(cfg.Download.Enabled))
		ui.PrintInfo("Workers", strconv.Itoa(cfg.Download.Workers))
	}

	s, err := scraper.New(cfg, scraper.Options{Logger: log})
	if err != nil {
		ui.PrintError("Failed to initialize", err.Error())
		return err
	}
	defer func() {
		if err := s.Close(); err != nil {
			log.WithError(err).Warn("Failed to close resources")
		}
	}()

	stats, err := s.Run(context.Background())
	if err != nil {
		log.WithError(err).Error("Run failed")
		ui.PrintError("Run failed", err.Error())
		return err
	}

	if !quiet {
		ui.PrintRunSummary(stats, cfg.CatalogPath())
		ui.PrintSuccess(fmt.Sprintf("[run complete: %d of %d items succeeded]", stats.Succeeded, stats.Total))
	}
	return nil
}
