package scraper

import (
	"context"

	"wikiassets/pkg/config"
	"wikiassets/pkg/errors"
	"wikiassets/pkg/logger"
	"wikiassets/pkg/models"
	"wikiassets/pkg/ratelimit"
)

// Lister walks a category listing page by page
type Lister struct {
	client   WikiClient
	category string
	pageSize int
	pacer    ratelimit.Limiter
	logger   logger.Logger
}

// NewLister creates a Lister for the category in cfg. Each page request
// after the first waits on pacer for the delay since the previous response.
func NewLister(client WikiClient, cfg config.APIConfig, pacer ratelimit.Limiter, log logger.Logger) *Lister {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Lister{
		client:   client,
		category: cfg.Category,
		pageSize: cfg.PageSize,
		pacer:    pacer,
		logger:   log.WithField("component", "lister"),
	}
}

// ListItems follows continuation tokens until the listing ends. A failed
// page request stops the walk; the items gathered so far are returned with
// Complete set to false.
func (l *Lister) ListItems(ctx context.Context) models.ItemSet {
	var set models.ItemSet
	token := ""

	for {
		l.pacer.Wait()

		resp, err := l.client.CategoryMembers(ctx, l.category, l.pageSize, token)
		l.pacer.Done()
		if err != nil {
			l.logger.WithError(err).WarnWithFields("Category listing stopped early", map[string]interface{}{
				"category":   l.category,
				"page":       set.Pages + 1,
				"items":      len(set.Items),
				"error_type": string(errors.TypeOf(err)),
			})
			return set
		}

		set.Pages++
		for _, member := range resp.Query.CategoryMembers {
			set.Items = append(set.Items, models.CategoryItem{
				Title:  member.Title,
				PageID: member.PageID,
			})
		}

		l.logger.DebugWithFields("Fetched category page", map[string]interface{}{
			"page":    set.Pages,
			"members": len(resp.Query.CategoryMembers),
			"total":   len(set.Items),
		})

		token = resp.NextToken()
		if token == "" {
			set.Complete = true
			return set
		}
	}
}
