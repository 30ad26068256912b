package scraper

import (
	"context"
	"path"
	"strings"

	"wikiassets/pkg/errors"
	"wikiassets/pkg/logger"
	"wikiassets/pkg/models"
)

// Resolver finds the direct image URL of an item
type Resolver struct {
	client     WikiClient
	extensions map[string]bool
	logger     logger.Logger
}

// NewResolver creates a Resolver accepting files with the given extensions.
// Extensions are compared case-insensitively and include the dot.
func NewResolver(client WikiClient, extensions []string, log logger.Logger) *Resolver {
	if log == nil {
		log = logger.GetLogger()
	}
	accepted := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		accepted[strings.ToLower(ext)] = true
	}
	return &Resolver{
		client:     client,
		extensions: accepted,
		logger:     log.WithField("component", "resolver"),
	}
}

// ResolveImageURL returns the URL of the item's first accepted image, or ""
// when the page has none or a lookup fails
func (r *Resolver) ResolveImageURL(ctx context.Context, item models.CategoryItem) string {
	images, err := r.client.PageImages(ctx, item.Title)
	if err != nil {
		r.logFailure(err, item, "Failed to list page images", "")
		return ""
	}

	fileTitle := r.SelectImage(images)
	if fileTitle == "" {
		r.logger.DebugWithFields("No matching image on page", map[string]interface{}{
			"item":   item.Title,
			"images": len(images),
		})
		return ""
	}

	url, err := r.client.ImageURL(ctx, fileTitle)
	if err != nil {
		r.logFailure(err, item, "Failed to resolve image URL", fileTitle)
		return ""
	}
	return url
}

// SelectImage returns the first title whose extension is accepted
func (r *Resolver) SelectImage(titles []string) string {
	for _, title := range titles {
		if r.extensions[strings.ToLower(path.Ext(title))] {
			return title
		}
	}
	return ""
}

func (r *Resolver) logFailure(err error, item models.CategoryItem, msg, fileTitle string) {
	fields := map[string]interface{}{
		"item":       item.Title,
		"error_type": string(errors.TypeOf(err)),
	}
	if fileTitle != "" {
		fields["file"] = fileTitle
	}
	r.logger.WithError(err).WarnWithFields(msg, fields)
}
