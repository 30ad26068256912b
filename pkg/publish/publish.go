// Package publish mirrors a finished catalog to optional downstream
// systems. Publishing is best-effort: failures are logged and counted and
// never change the outcome of a run.
package publish

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
	"wikiassets/pkg/catalog"
	"wikiassets/pkg/logger"
)

// Run is what a publisher receives at the end of a run
type Run struct {
	Category    string
	CatalogName string
	Catalog     []byte
	Entries     []catalog.Entry
}

// Publisher sends a finished run somewhere
type Publisher interface {
	Name() string
	Publish(ctx context.Context, run Run) error
	Close() error
}

// ErrorObserver is told about every failed publish
type ErrorObserver interface {
	ObservePublishError(publisher string)
}

// Multi runs several publishers concurrently
type Multi struct {
	publishers []Publisher
	observer   ErrorObserver
	logger     logger.Logger
}

// NewMulti combines publishers. observer may be nil.
func NewMulti(publishers []Publisher, observer ErrorObserver, log logger.Logger) *Multi {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Multi{
		publishers: publishers,
		observer:   observer,
		logger:     log.WithField("component", "publish"),
	}
}

// Len returns the number of configured publishers
func (m *Multi) Len() int {
	return len(m.publishers)
}

// Publish hands run to every publisher and waits for all of them. A failing
// publisher does not cancel the others. The first error is returned.
func (m *Multi) Publish(ctx context.Context, run Run) error {
	var g errgroup.Group
	for _, p := range m.publishers {
		g.Go(func() error {
			if err := p.Publish(ctx, run); err != nil {
				m.logger.WithError(err).WarnWithFields("Failed to publish catalog", map[string]interface{}{
					"publisher": p.Name(),
				})
				if m.observer != nil {
					m.observer.ObservePublishError(p.Name())
				}
				return fmt.Errorf("%s: %w", p.Name(), err)
			}
			m.logger.InfoWithFields("Catalog published", map[string]interface{}{
				"publisher": p.Name(),
				"entries":   len(run.Entries),
			})
			return nil
		})
	}
	return g.Wait()
}

// Close closes every publisher
func (m *Multi) Close() error {
	var first error
	for _, p := range m.publishers {
		if err := p.Close(); err != nil && first == nil {
			first = fmt.Errorf("%s: %w", p.Name(), err)
		}
	}
	return first
}
