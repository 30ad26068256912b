package scraper

import (
	"context"

	"wikiassets/pkg/mediawiki"
)

// WikiClient defines the MediaWiki queries a run needs
type WikiClient interface {
	CategoryMembers(ctx context.Context, category string, limit int, continuation string) (*mediawiki.CategoryMembersResponse, error)
	PageImages(ctx context.Context, title string) ([]string, error)
	ImageURL(ctx context.Context, fileTitle string) (string, error)
}

// AssetFetcher downloads one URL to a local path
type AssetFetcher interface {
	FetchToFile(ctx context.Context, url, path string) bool
}
