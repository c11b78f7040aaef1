package catalog

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/xiaot623/gogo/foodshare/internal/domain"
)

// Loader performs the one-shot asynchronous catalog load and exposes
// its state. Until the load resolves, readers get ErrNotReady.
type Loader struct {
	source Source
	base   domain.Point
	logger *zap.Logger

	once sync.Once
	done chan struct{}

	mu      sync.RWMutex
	state   domain.CatalogState
	catalog *Catalog
	err     error
}

// NewLoader creates a loader for source; positions are synthesized around base.
func NewLoader(source Source, base domain.Point, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{
		source: source,
		base:   base,
		logger: logger,
		done:   make(chan struct{}),
		state:  domain.CatalogStateLoading,
	}
}

// Start launches the load in the background. Calls after the first are no-ops.
func (l *Loader) Start(ctx context.Context) {
	l.once.Do(func() {
		go l.load(ctx)
	})
}

// Load runs the load synchronously and returns its outcome.
func (l *Loader) Load(ctx context.Context) (*Catalog, error) {
	l.once.Do(func() {
		l.load(ctx)
	})
	return l.Wait(ctx)
}

func (l *Loader) load(ctx context.Context) {
	defer close(l.done)

	data, err := l.source.Fetch(ctx)
	var c *Catalog
	if err == nil {
		c, err = Parse(data, l.base)
	} else {
		err = fmt.Errorf("%w: %v", ErrLoadFailed, err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if err != nil {
		l.state = domain.CatalogStateFailed
		l.err = err
		l.logger.Error("catalog load failed", zap.Error(err))
		return
	}
	l.state = domain.CatalogStateReady
	l.catalog = c
	l.logger.Info("catalog loaded", zap.Int("listings", c.Len()), zap.Int("tags", len(c.tags)))
}

// State returns the current load state and, if failed, the error.
func (l *Loader) State() (domain.CatalogState, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state, l.err
}

// Catalog returns the loaded catalog, ErrNotReady while loading, or the
// load error.
func (l *Loader) Catalog() (*Catalog, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	switch l.state {
	case domain.CatalogStateReady:
		return l.catalog, nil
	case domain.CatalogStateFailed:
		return nil, l.err
	default:
		return nil, ErrNotReady
	}
}

// Done is closed once the load has resolved either way.
func (l *Loader) Done() <-chan struct{} {
	return l.done
}

// Wait blocks until the load resolves or ctx is done.
func (l *Loader) Wait(ctx context.Context) (*Catalog, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-l.done:
		return l.Catalog()
	}
}
