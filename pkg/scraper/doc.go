// Package scraper builds the image catalog of a MediaWiki category.
//
// A run has four stages:
//   - the Lister walks the category listing, following continuation tokens
//   - the Resolver picks the first accepted image of each page and looks up
//     its direct URL
//   - in download mode the image is fetched into the assets directory
//   - the catalog of resolved items is written and handed to the
//     configured publishers
//
// Items are processed on a bounded worker pool. A failure on one item never
// stops the run; it is recorded in that item's status and excluded from the
// catalog.
//
// Usage:
//
//	cfg, err := config.Load("", nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	s, err := scraper.New(cfg, scraper.Options{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer s.Close()
//
//	stats, err := s.Run(ctx)
package scraper
