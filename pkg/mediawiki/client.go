package mediawiki

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"resty.dev/v3"
	"wikiassets/pkg/config"
	"wikiassets/pkg/errors"
	"wikiassets/pkg/logger"
)

// RequestObserver receives the outcome of every API request. Code is 0
// for transport errors.
type RequestObserver interface {
	ObserveRequest(endpoint string, code int, d time.Duration)
}

// Client is a read-only MediaWiki action API client
type Client struct {
	http     *resty.Client
	baseURL  string
	logger   logger.Logger
	observer RequestObserver
}

// NewClient creates a client for the api.php endpoint in cfg
func NewClient(cfg config.APIConfig, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}

	httpClient := resty.New().
		SetTimeout(cfg.RequestTimeout).
		SetHeader("User-Agent", cfg.UserAgent).
		SetHeader("Accept", "application/json")

	return &Client{
		http:    httpClient,
		baseURL: cfg.BaseURL,
		logger:  log.WithField("component", "mediawiki"),
	}
}

// SetObserver registers an observer for request metrics
func (c *Client) SetObserver(o RequestObserver) {
	c.observer = o
}

// Close releases idle connections
func (c *Client) Close() error {
	return c.http.Close()
}

// getJSON performs one query and decodes the body into target. Every
// failure is returned as a classified *errors.Error.
func (c *Client) getJSON(ctx context.Context, endpoint string, params map[string]string, target interface{}) error {
	start := time.Now()
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(params).
		Get(c.baseURL)
	duration := time.Since(start)
	if err != nil {
		c.observe(endpoint, 0, duration)
		return errors.Network(err)
	}

	c.observe(endpoint, resp.StatusCode(), duration)
	logger.LogRequest(c.logger, endpoint, resp.StatusCode(), duration)

	if !resp.IsSuccess() {
		return errors.Status(resp.StatusCode(), resp.Status())
	}

	if err := json.Unmarshal(resp.Bytes(), target); err != nil {
		return errors.Parsing(err)
	}
	return nil
}

func (c *Client) observe(endpoint string, code int, d time.Duration) {
	if c.observer != nil {
		c.observer.ObserveRequest(endpoint, code, d)
	}
}

// CategoryMembers fetches one page of a category listing
func (c *Client) CategoryMembers(ctx context.Context, category string, limit int, continuation string) (*CategoryMembersResponse, error) {
	var resp CategoryMembersResponse
	if err := c.getJSON(ctx, EndpointCategoryMembers, CategoryMembersParams(category, limit, continuation), &resp); err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, errors.API(resp.Error.Code, resp.Error.Info)
	}
	if resp.Query == nil {
		return nil, errors.MissingField("query")
	}
	return &resp, nil
}

// PageImages returns the titles of the files embedded in a page, in the
// order the API lists them. A page without images yields an empty slice.
func (c *Client) PageImages(ctx context.Context, title string) ([]string, error) {
	pages, err := c.pages(ctx, EndpointImages, ImagesParams(title))
	if err != nil {
		return nil, err
	}

	var titles []string
	for _, page := range pages {
		for _, img := range page.Images {
			titles = append(titles, img.Title)
		}
	}
	return titles, nil
}

// ImageURL returns the first direct URL recorded for a file page
func (c *Client) ImageURL(ctx context.Context, fileTitle string) (string, error) {
	pages, err := c.pages(ctx, EndpointImageInfo, ImageInfoParams(fileTitle))
	if err != nil {
		return "", err
	}

	for _, page := range pages {
		for _, info := range page.ImageInfo {
			if info.URL != "" {
				return info.URL, nil
			}
		}
	}
	return "", errors.MissingField("imageinfo.url")
}

// pages runs a prop query and returns its pages ordered by key
func (c *Client) pages(ctx context.Context, endpoint string, params map[string]string) ([]Page, error) {
	var resp PagesResponse
	if err := c.getJSON(ctx, endpoint, params, &resp); err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, errors.API(resp.Error.Code, resp.Error.Info)
	}
	if resp.Query == nil || len(resp.Query.Pages) == 0 {
		return nil, errors.MissingField("query.pages")
	}

	keys := make([]string, 0, len(resp.Query.Pages))
	for k := range resp.Query.Pages {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pages := make([]Page, 0, len(keys))
	for _, k := range keys {
		pages = append(pages, resp.Query.Pages[k])
	}
	return pages, nil
}
