// Package fetcher downloads binary assets to local files.
package fetcher

import (
	"context"
	"io"
	"net/http"
	"time"

	"resty.dev/v3"
	"wikiassets/pkg/config"
	"wikiassets/pkg/errors"
	"wikiassets/pkg/logger"
)

// Saver persists a downloaded body at a path
type Saver interface {
	Save(path string, r io.Reader) error
}

// Fetcher performs bounded-timeout GET requests and streams the body to disk
type Fetcher struct {
	http   *resty.Client
	saver  Saver
	logger logger.Logger
}

// New creates a Fetcher. Bodies are written through saver.
func New(api config.APIConfig, download config.DownloadConfig, saver Saver, log logger.Logger) *Fetcher {
	if log == nil {
		log = logger.GetLogger()
	}

	httpClient := resty.New().
		SetTimeout(download.Timeout).
		SetHeader("User-Agent", api.UserAgent)

	return &Fetcher{
		http:   httpClient,
		saver:  saver,
		logger: log.WithField("component", "fetcher"),
	}
}

// Close releases idle connections
func (f *Fetcher) Close() error {
	return f.http.Close()
}

// FetchToFile downloads url to path, overwriting any existing file. It
// returns false on timeouts, non-2xx responses and write errors, leaving no
// file behind.
func (f *Fetcher) FetchToFile(ctx context.Context, url, path string) bool {
	if err := f.fetch(ctx, url, path); err != nil {
		msg := "Failed to download asset"
		if errors.IsStatus(err, http.StatusNotFound) {
			msg = "Asset not found on server"
		}
		f.logger.WithError(err).WarnWithFields(msg, map[string]interface{}{
			"url":        url,
			"path":       path,
			"error_type": string(errors.TypeOf(err)),
		})
		return false
	}
	return true
}

func (f *Fetcher) fetch(ctx context.Context, url, path string) error {
	start := time.Now()
	resp, err := f.http.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(url)
	if err != nil {
		return errors.Network(err)
	}
	defer resp.Body.Close()

	if !resp.IsSuccess() {
		return errors.Status(resp.StatusCode(), resp.Status())
	}

	if err := f.saver.Save(path, resp.Body); err != nil {
		return err
	}

	f.logger.DebugWithFields("Asset downloaded", map[string]interface{}{
		"url":      url,
		"path":     path,
		"duration": time.Since(start),
	})
	return nil
}
