package core

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/JonMunkholm/mapsdir/internal/logging"
)

// DatasetSource is what a Coordinator needs from the loading side.
// Satisfied by *Loader.
type DatasetSource interface {
	Load(ctx context.Context, id string) ([]Record, error)
	Snapshot(id string) Entry
}

// CoordinatorOptions configures a Coordinator.
type CoordinatorOptions struct {
	// DefaultCategory is active before the first Select. Falls back to the
	// first registered category when empty or unknown.
	DefaultCategory string

	// ToggleKeepsQuery stops ToggleShowAll from clearing the search text.
	ToggleKeepsQuery bool

	Logger *slog.Logger
}

// Coordinator holds one session's selection state and derives the visible
// records from it. Mutations are serialized in call order and the view is
// recomputed synchronously on every CurrentView call.
type Coordinator struct {
	source DatasetSource
	opts   CoordinatorOptions
	logger *slog.Logger

	mu  sync.Mutex
	sel Selection
}

// NewCoordinator creates a Coordinator positioned on the default category.
// Nothing is loaded until Start or Select is called.
func NewCoordinator(source DatasetSource, opts CoordinatorOptions) *Coordinator {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	active := opts.DefaultCategory
	if _, ok := Get(active); !ok {
		active = ""
		if all := All(); len(all) > 0 {
			active = all[0].ID
		}
	}

	return &Coordinator{
		source: source,
		opts:   opts,
		logger: logger,
		sel:    Selection{Category: active},
	}
}

// Start loads the active category.
func (c *Coordinator) Start(ctx context.Context) error {
	return c.Select(ctx, c.Selection().Category)
}

// ListCategories returns every category in configured order with its
// current load status.
func (c *Coordinator) ListCategories() []CategoryInfo {
	return categoryInfos(func(id string) LoadStatus {
		return c.source.Snapshot(id).Status
	})
}

// Select makes id the active category and loads it.
//
// Switching to a different category resets the query and show-all flag.
// Re-selecting the active category keeps them and only reloads when the
// category is not loaded (e.g. after a failure).
//
// Select blocks until the load settles. If another category became active
// in the meantime, the result is discarded and Select returns nil; the
// records still land in the cache.
func (c *Coordinator) Select(ctx context.Context, id string) error {
	if _, ok := Get(id); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, id)
	}

	c.mu.Lock()
	if c.sel.Category == id {
		if c.source.Snapshot(id).Status == StatusLoaded {
			c.mu.Unlock()
			return nil
		}
	} else {
		c.sel = Selection{Category: id}
	}
	c.mu.Unlock()

	_, err := c.source.Load(ctx, id)

	c.mu.Lock()
	stale := c.sel.Category != id
	c.mu.Unlock()

	if stale {
		logging.Enrich(ctx, c.logger).Debug("discarding stale load result",
			"category", id,
			"error", err,
		)
		return nil
	}
	return err
}

// SetQuery replaces the search text.
func (c *Coordinator) SetQuery(query string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sel.Query = query
}

// ToggleShowAll flips the show-all flag and returns its new value. The
// search text is cleared as well unless ToggleKeepsQuery is set.
func (c *Coordinator) ToggleShowAll() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sel.ShowAll = !c.sel.ShowAll
	if !c.opts.ToggleKeepsQuery {
		c.sel.Query = ""
	}
	return c.sel.ShowAll
}

// Selection returns a copy of the current selection state.
func (c *Coordinator) Selection() Selection {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sel
}

// CurrentView derives the view from the active category's cache entry and
// the selection. A failed category shows its error instead of records.
//
// The view status is loaded, loading or failed. A category with no settled
// load yet (before Start, or between an invalidate and its reload) reports
// loading.
func (c *Coordinator) CurrentView() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry := c.source.Snapshot(c.sel.Category)

	v := View{
		Category: c.sel.Category,
		Query:    c.sel.Query,
		ShowAll:  c.sel.ShowAll,
		Status:   entry.Status,
	}
	if v.Status == StatusUnloaded {
		v.Status = StatusLoading
	}

	if entry.Status == StatusFailed {
		v.Records = []Record{}
		if entry.Err != nil {
			v.Error = entry.Err.Error()
			v.ErrorCode = MapError(entry.Err).Code
		}
	} else {
		v.Records = Visible(entry.Records, c.sel.Query, c.sel.ShowAll)
	}
	v.ResultCount = len(v.Records)

	return v
}
