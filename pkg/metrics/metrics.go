// Package metrics records run metrics in a dedicated Prometheus registry and
// optionally pushes them to a Pushgateway when the run ends.
//
// Metrics:
//   - wikiassets_items_total{status} (Counter): processed items by final status
//   - wikiassets_item_duration_seconds (Histogram): resolve and fetch time per item
//   - wikiassets_requests_total{endpoint, code} (Counter): MediaWiki API requests
//   - wikiassets_request_duration_seconds{endpoint} (Histogram): API request latency
//   - wikiassets_listing_pages (Gauge): category pages fetched
//   - wikiassets_listing_complete (Gauge): 1 when pagination reached the end
//   - wikiassets_catalog_entries (Gauge): entries written to the catalog
//   - wikiassets_publish_errors_total{publisher} (Counter): failed catalog publishes
//   - wikiassets_run_duration_seconds (Gauge): wall time of the last run
package metrics

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
	"wikiassets/pkg/models"
)

// Recorder holds the metrics of one process
type Recorder struct {
	registry *prometheus.Registry

	itemsTotal      *prometheus.CounterVec
	itemDuration    prometheus.Histogram
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	listingPages    prometheus.Gauge
	listingComplete prometheus.Gauge
	catalogEntries  prometheus.Gauge
	publishErrors   *prometheus.CounterVec
	runDuration     prometheus.Gauge
}

// NewRecorder creates a Recorder backed by a fresh registry
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		itemsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "wikiassets_items_total",
			Help: "Processed items by final status",
		}, []string{"status"}),
		itemDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "wikiassets_item_duration_seconds",
			Help:    "Time spent resolving and fetching one item",
			Buckets: prometheus.DefBuckets,
		}),
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "wikiassets_requests_total",
			Help: "MediaWiki API requests by endpoint and HTTP status (0 for transport errors)",
		}, []string{"endpoint", "code"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "wikiassets_request_duration_seconds",
			Help:    "MediaWiki API request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
		listingPages: factory.NewGauge(prometheus.GaugeOpts{
			Name: "wikiassets_listing_pages",
			Help: "Category pages fetched",
		}),
		listingComplete: factory.NewGauge(prometheus.GaugeOpts{
			Name: "wikiassets_listing_complete",
			Help: "1 when the category listing reached its last page",
		}),
		catalogEntries: factory.NewGauge(prometheus.GaugeOpts{
			Name: "wikiassets_catalog_entries",
			Help: "Entries written to the catalog",
		}),
		publishErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "wikiassets_publish_errors_total",
			Help: "Failed catalog publishes by publisher",
		}, []string{"publisher"}),
		runDuration: factory.NewGauge(prometheus.GaugeOpts{
			Name: "wikiassets_run_duration_seconds",
			Help: "Wall time of the last run",
		}),
	}
}

// Registry exposes the underlying registry
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// ObserveRequest records one API request
func (r *Recorder) ObserveRequest(endpoint string, code int, d time.Duration) {
	r.requestsTotal.WithLabelValues(endpoint, strconv.Itoa(code)).Inc()
	r.requestDuration.WithLabelValues(endpoint).Observe(d.Seconds())
}

// ObserveItem records the final status of one item
func (r *Recorder) ObserveItem(status models.Status, d time.Duration) {
	r.itemsTotal.WithLabelValues(string(status)).Inc()
	r.itemDuration.Observe(d.Seconds())
}

// ObserveListing records the outcome of the category walk
func (r *Recorder) ObserveListing(set models.ItemSet) {
	r.listingPages.Set(float64(set.Pages))
	if set.Complete {
		r.listingComplete.Set(1)
	} else {
		r.listingComplete.Set(0)
	}
}

// ObserveCatalog records the number of catalog entries
func (r *Recorder) ObserveCatalog(entries int) {
	r.catalogEntries.Set(float64(entries))
}

// ObservePublishError counts a failed publish
func (r *Recorder) ObservePublishError(publisher string) {
	r.publishErrors.WithLabelValues(publisher).Inc()
}

// ObserveRun records the run duration
func (r *Recorder) ObserveRun(stats models.RunStats) {
	r.runDuration.Set(stats.Duration.Seconds())
}

// Push sends all metrics to a Pushgateway, replacing the job's group
func (r *Recorder) Push(ctx context.Context, url, job string) error {
	return push.New(url, job).Gatherer(r.registry).PushContext(ctx)
}
