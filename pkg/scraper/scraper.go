package scraper

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"wikiassets/internal/downloader"
	"wikiassets/pkg/catalog"
	"wikiassets/pkg/config"
	"wikiassets/pkg/fetcher"
	"wikiassets/pkg/logger"
	"wikiassets/pkg/mediawiki"
	"wikiassets/pkg/metrics"
	"wikiassets/pkg/models"
	"wikiassets/pkg/publish"
	"wikiassets/pkg/ratelimit"
	"wikiassets/pkg/storage"
)

// Options overrides the collaborators New would otherwise build from the
// configuration
type Options struct {
	Client     WikiClient
	Fetcher    AssetFetcher
	Publishers []publish.Publisher
	Metrics    *metrics.Recorder
	Logger     logger.Logger
}

// Scraper builds the asset catalog of one wiki category
type Scraper struct {
	config    *config.Config
	client    WikiClient
	lister    *Lister
	resolver  *Resolver
	fetcher   AssetFetcher
	assets    *storage.Manager
	writer    *catalog.Writer
	publisher *publish.Multi
	metrics   *metrics.Recorder
	logger    logger.Logger
	closers   []func() error
}

// New creates a Scraper from cfg
func New(cfg *config.Config, opts Options) (*Scraper, error) {
	log := opts.Logger
	if log == nil {
		log = logger.GetLogger()
	}

	s := &Scraper{
		config:  cfg,
		metrics: opts.Metrics,
		fetcher: opts.Fetcher,
		logger:  log,
	}
	if s.metrics == nil {
		s.metrics = metrics.NewRecorder()
	}

	s.client = opts.Client
	if s.client == nil {
		client := mediawiki.NewClient(cfg.API, log)
		client.SetObserver(s.metrics)
		s.closers = append(s.closers, client.Close)
		s.client = client
	}

	publishers := opts.Publishers
	if publishers == nil {
		var err error
		if publishers, err = buildPublishers(cfg); err != nil {
			return nil, err
		}
	}

	s.lister = NewLister(s.client, cfg.API, ratelimit.NewPacer(cfg.API.RequestDelay), log)
	s.resolver = NewResolver(s.client, cfg.NormalizedExtensions(), log)
	s.writer = catalog.NewWriter(cfg.CatalogPath(), cfg.Output.SortByName, log)
	s.publisher = publish.NewMulti(publishers, s.metrics, log)
	s.closers = append(s.closers, s.publisher.Close)

	return s, nil
}

func buildPublishers(cfg *config.Config) ([]publish.Publisher, error) {
	var publishers []publish.Publisher
	if cfg.Kafka.Enabled() {
		publishers = append(publishers, publish.NewKafkaPublisher(cfg.Kafka))
	}
	if cfg.S3.Enabled() {
		p, err := publish.NewS3Publisher(cfg.S3)
		if err != nil {
			return nil, err
		}
		publishers = append(publishers, p)
	}
	return publishers, nil
}

// Metrics returns the recorder of this scraper
func (s *Scraper) Metrics() *metrics.Recorder {
	return s.metrics
}

// Close releases network resources
func (s *Scraper) Close() error {
	var first error
	for _, closeFn := range s.closers {
		if err := closeFn(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// prepareAssets creates the assets directory and the default fetcher. It is
// a no-op when download mode is off or it already ran.
func (s *Scraper) prepareAssets() error {
	if !s.config.Download.Enabled || s.assets != nil {
		return nil
	}

	manager, err := storage.NewManager(s.config.Output.AssetsDir)
	if err != nil {
		return err
	}
	s.assets = manager
	s.logger.WithField("dir", manager.GetOutputDir()).Debug("Assets directory ready")

	if s.fetcher == nil {
		f := fetcher.New(s.config.API, s.config.Download, manager, s.logger)
		s.closers = append(s.closers, f.Close)
		s.fetcher = f
	}
	return nil
}

// ProcessItem resolves one item and, in download mode, fetches its image
func (s *Scraper) ProcessItem(ctx context.Context, item models.CategoryItem) models.ResolvedAsset {
	asset := models.ResolvedAsset{Name: item.Title, Status: models.StatusResolving}

	url := s.resolver.ResolveImageURL(ctx, item)
	if url == "" {
		asset.Status = models.StatusUnresolved
		return asset
	}
	asset.ImageURL = url

	if !s.config.Download.Enabled {
		asset.Status = models.StatusSkipped
		return asset
	}

	asset.Status = models.StatusFetching
	if s.assets != nil {
		dest := s.assets.PathFor(item.Title, url)
		if s.fetcher.FetchToFile(ctx, url, dest) {
			asset.LocalPath = dest
			asset.Status = models.StatusDownloaded
			return asset
		}
	}

	asset.Status = models.StatusFetchFailed
	asset.Err = fmt.Errorf("failed to download %s", url)
	if !s.config.Download.KeepURLOnFailure {
		asset.ImageURL = ""
	}
	return asset
}

// ProcessAll runs ProcessItem for every item on a bounded worker pool and
// returns one result per item in completion order
func (s *Scraper) ProcessAll(ctx context.Context, items []models.CategoryItem) []models.ResolvedAsset {
	if err := s.prepareAssets(); err != nil {
		s.logger.WithError(err).Error("Failed to prepare assets directory")
	}

	pool := downloader.NewWorkerPool(ctx, s.config.Download.Workers, s, s.logger)
	pool.Start()

	go func() {
		defer pool.Stop()
		for i, item := range items {
			if err := pool.Submit(downloader.Job{Index: i, Item: item}); err != nil {
				s.logger.WithError(err).WithField("item", item.Title).Error("Failed to queue item")
			}
		}
	}()

	results := make([]models.ResolvedAsset, 0, len(items))
	for result := range pool.Results() {
		s.metrics.ObserveItem(result.Asset.Status, result.Duration)
		logger.LogItemOutcome(s.logger, result.Asset.Name, string(result.Asset.Status),
			result.Asset.Succeeded(), s.config.Download.Enabled)
		results = append(results, result.Asset)
	}
	return results
}

// Run lists the category, processes every item, writes the catalog and
// publishes it. Per-item and per-request failures are reflected in the
// returned stats; an error is returned only when the run cannot start.
func (s *Scraper) Run(ctx context.Context) (models.RunStats, error) {
	start := time.Now()

	if err := s.prepareAssets(); err != nil {
		return models.RunStats{}, fmt.Errorf("failed to prepare assets directory: %w", err)
	}

	s.logger.InfoWithFields("Listing category", map[string]interface{}{
		"category": s.config.API.Category,
		"download": s.config.Download.Enabled,
	})

	set := s.lister.ListItems(ctx)
	s.metrics.ObserveListing(set)
	if !set.Complete {
		s.logger.WarnWithFields("Category listing is incomplete, continuing with partial results", map[string]interface{}{
			"pages": set.Pages,
			"items": len(set.Items),
		})
	}

	s.logger.InfoWithFields("Processing items", map[string]interface{}{
		"items":   len(set.Items),
		"workers": s.config.Download.Workers,
	})
	results := s.ProcessAll(ctx, set.Items)
	if s.assets != nil {
		files, bytes := s.assets.SavedCount()
		s.logger.InfoWithFields("Assets saved", map[string]interface{}{
			"dir":   s.assets.GetOutputDir(),
			"files": files,
			"bytes": bytes,
		})
	}

	entries, written := s.writer.WriteCatalog(results)
	s.metrics.ObserveCatalog(len(entries))
	if written && s.publisher.Len() > 0 {
		s.publish(ctx, entries)
	}

	stats := models.NewRunStats(results)
	stats.ListingComplete = set.Complete
	stats.Duration = time.Since(start)

	logger.LogRunSummary(s.logger, stats.Total, stats.Succeeded, stats.Failed,
		s.config.Download.Enabled, stats.Duration)
	s.metrics.ObserveRun(stats)

	if url := s.config.Metrics.PushgatewayURL; url != "" {
		if err := s.metrics.Push(ctx, url, s.config.Metrics.Job); err != nil {
			s.logger.WithError(err).Warn("Failed to push metrics")
		}
	}

	return stats, nil
}

func (s *Scraper) publish(ctx context.Context, entries []catalog.Entry) {
	data, err := catalog.Encode(entries)
	if err != nil {
		s.logger.WithError(err).Error("Failed to encode catalog for publishing")
		return
	}

	// Failures are logged and counted by the publisher
	_ = s.publisher.Publish(ctx, publish.Run{
		Category:    s.config.API.Category,
		CatalogName: filepath.Base(s.writer.Path()),
		Catalog:     data,
		Entries:     entries,
	})
}
