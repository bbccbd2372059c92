package backend

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"fairmatch/internal/source"
	"fairmatch/internal/transform"
)

// Facade mediates every query from the CLI and the dashboard. It owns the
// derived-view cache; entries live for the process lifetime unless
// Invalidate drops them. A single mutex serializes cache access so each
// key is computed at most once even when the dashboard fires callbacks
// concurrently.
type Facade struct {
	loader   source.Loader
	registry *transform.Registry
	log      *zap.Logger

	mu    sync.Mutex
	cache map[string]*transform.DerivedView

	// loads counts loader invocations, observable through LoadCount.
	loads int
}

// New creates a facade. A nil registry gets the standard one; a nil logger
// is replaced with a nop.
func New(loader source.Loader, registry *transform.Registry, log *zap.Logger) *Facade {
	if registry == nil {
		registry = transform.NewRegistry()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Facade{
		loader:   loader,
		registry: registry,
		log:      log,
		cache:    make(map[string]*transform.DerivedView),
	}
}

// Operations returns the registered operation names.
func (f *Facade) Operations() []string { return f.registry.Names() }

// LoadCount reports how many times the facade hit the loader.
func (f *Facade) LoadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loads
}

// cacheKey joins the memoization key components. The origin leads so that
// Invalidate can match by prefix.
func cacheKey(origin, operation string, params transform.Params) string {
	return origin + "\x00" + operation + "\x00" + params.Canonical()
}

// Query loads the origin, applies the operation, and memoizes the result.
// A repeat call with an identical key returns the cached view without
// touching the loader. All failures come back as error descriptors.
func (f *Facade) Query(ctx context.Context, origin, operation string, params transform.Params) QueryResult {
	key := cacheKey(origin, operation, params)

	f.mu.Lock()
	defer f.mu.Unlock()

	if view, ok := f.cache[key]; ok {
		f.log.Debug("cache hit", zap.String("origin", origin), zap.String("operation", operation))
		return QueryResult{View: view}
	}

	f.loads++
	ds, err := f.loader.Load(ctx, origin)
	if err != nil {
		f.log.Warn("query failed", zap.String("origin", origin), zap.Error(err))
		return QueryResult{Err: describe(err)}
	}

	view, err := f.registry.Apply(ds, operation, params)
	if err != nil {
		f.log.Warn("query failed",
			zap.String("origin", origin),
			zap.String("operation", operation),
			zap.Error(err))
		return QueryResult{Err: describe(err)}
	}

	f.cache[key] = view
	f.log.Info("query computed",
		zap.String("origin", origin),
		zap.String("operation", operation),
		zap.Int("rows", len(view.Rows)))
	return QueryResult{View: view}
}

// Invalidate drops every cached entry for the origin and reports how many
// were removed. The next query for that origin recomputes.
func (f *Facade) Invalidate(origin string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	dropped := 0
	for key := range f.cache {
		if strings.HasPrefix(key, origin+"\x00") {
			delete(f.cache, key)
			dropped++
		}
	}
	if dropped > 0 {
		f.log.Info("cache invalidated", zap.String("origin", origin), zap.Int("entries", dropped))
	}
	return dropped
}

// CacheSize reports the number of cached views.
func (f *Facade) CacheSize() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.cache)
}
