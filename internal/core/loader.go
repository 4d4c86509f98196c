package core

// loader.go orchestrates fetch-then-parse for categories and keeps the
// Cache current.
//
// At most one load per category is in flight: concurrent Load calls for
// the same category share a single fetch through a singleflight group keyed
// by category ID. A caller that stops waiting (its ctx ends) does not cancel
// the shared load; the result still lands in the Cache for later use.

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/JonMunkholm/mapsdir/internal/logging"
	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// DefaultMaxConcurrentLoads is the default fan-out for LoadAll.
const DefaultMaxConcurrentLoads = 4

// maxLoggedWarnings caps how many row warnings are logged per load.
const maxLoggedWarnings = 5

// LoaderOptions tunes a Loader. The zero value is usable.
type LoaderOptions struct {
	// FetchTimeout bounds one fetch; zero leaves the transport default.
	FetchTimeout time.Duration

	// MaxConcurrent caps parallel loads in LoadAll.
	MaxConcurrent int

	Logger *slog.Logger
}

// Loader fetches, parses and caches category datasets.
type Loader struct {
	locator Locator
	fetcher Fetcher
	cache   *Cache
	opts    LoaderOptions
	logger  *slog.Logger

	group singleflight.Group
	now   func() time.Time
}

// NewLoader creates a Loader. A nil cache gets a fresh one.
func NewLoader(locator Locator, fetcher Fetcher, cache *Cache, opts LoaderOptions) *Loader {
	if cache == nil {
		cache = NewCache()
	}
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = DefaultMaxConcurrentLoads
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Loader{
		locator: locator,
		fetcher: fetcher,
		cache:   cache,
		opts:    opts,
		logger:  logger,
		now:     time.Now,
	}
}

// Cache returns the loader's cache.
func (l *Loader) Cache() *Cache {
	return l.cache
}

// Snapshot returns a copy of the category's cache entry.
func (l *Loader) Snapshot(id string) Entry {
	return l.cache.Snapshot(id)
}

// Load returns the category's records, fetching them if they are not
// loaded yet. A load already in flight for the category is joined rather
// than duplicated.
//
// Failures come back as *LoadFailure (and are recorded on the cache entry),
// except for unknown categories, which return an error wrapping
// ErrUnknownCategory without touching the cache.
func (l *Loader) Load(ctx context.Context, id string) ([]Record, error) {
	locator, err := l.locator.Locate(id)
	if err != nil {
		if errors.Is(err, ErrUnknownCategory) {
			return nil, err
		}
		lf := newLoadFailure(id, err)
		l.cache.markFailed(id, newLoadID(), lf)
		return nil, lf
	}

	if entry := l.cache.Snapshot(id); entry.Status == StatusLoaded {
		return entry.Records, nil
	}

	// The shared load outlives any single caller.
	loadCtx := context.WithoutCancel(ctx)
	ch := l.group.DoChan(id, func() (any, error) {
		return l.load(loadCtx, id, locator)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return slices.Clone(res.Val.([]Record)), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// load performs one fetch-then-parse. Runs inside the singleflight group.
func (l *Loader) load(ctx context.Context, id, locator string) ([]Record, error) {
	// A flight that finished between the caller's check and this one.
	if entry := l.cache.Snapshot(id); entry.Status == StatusLoaded {
		return entry.Records, nil
	}

	loadID := newLoadID()
	logger := logging.Enrich(ctx, l.logger).With("category", id, "load_id", loadID)
	start := l.now()

	l.cache.markLoading(id, loadID)
	logger.Debug("load started", "locator", locator)

	fetchCtx := ctx
	if l.opts.FetchTimeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, l.opts.FetchTimeout)
		defer cancel()
	}

	data, err := l.fetcher.Fetch(fetchCtx, locator)
	if err != nil {
		return nil, l.fail(logger, id, loadID, err)
	}

	result, err := Parse(data)
	if err != nil {
		return nil, l.fail(logger, id, loadID, err)
	}

	if n := len(result.Warnings); n > 0 {
		logged := result.Warnings[:min(n, maxLoggedWarnings)]
		logger.Warn("dataset rows skipped",
			"skipped", n,
			"first", formatWarnings(logged),
		)
	}

	l.cache.storeLoaded(id, loadID, result.Records, result.Warnings, l.now())
	logger.Info("load completed",
		"records", len(result.Records),
		"bytes", len(data),
		"warnings", len(result.Warnings),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return result.Records, nil
}

// fail records err on the category's entry and returns the LoadFailure.
func (l *Loader) fail(logger *slog.Logger, id, loadID string, err error) error {
	lf := newLoadFailure(id, err)
	l.cache.markFailed(id, loadID, lf)
	logger.Error("load failed", "status_code", lf.StatusCode, "error", err)
	return lf
}

// LoadAll loads every category in ids concurrently. Each category succeeds
// or fails on its own; results are returned in the order of ids.
func (l *Loader) LoadAll(ctx context.Context, ids []string) []LoadResult {
	results := make([]LoadResult, len(ids))

	var g errgroup.Group
	g.SetLimit(l.opts.MaxConcurrent)

	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			records, err := l.Load(ctx, id)
			results[i] = LoadResult{Category: id, Records: records, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// Invalidate forces the next Load of the category to refetch. Records
// already cached stay visible until a new load replaces them.
func (l *Loader) Invalidate(id string) error {
	if _, err := l.locator.Locate(id); err != nil {
		return err
	}
	l.cache.invalidate(id)
	return nil
}

func newLoadID() string {
	return ulid.Make().String()
}

func formatWarnings(ws []RowWarning) []string {
	out := make([]string, len(ws))
	for i, w := range ws {
		out[i] = fmt.Sprintf("line %d: %s", w.Line, w.Reason)
	}
	return out
}
