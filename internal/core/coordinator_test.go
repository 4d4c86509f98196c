package core

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func newTestCoordinator(t *testing.T, f Fetcher, opts CoordinatorOptions) (*Coordinator, *Loader) {
	t.Helper()
	l := newTestLoader(f)
	if opts.Logger == nil {
		opts.Logger = quietLogger()
	}
	return NewCoordinator(l, opts), l
}

func twoCategoryFetcher(t *testing.T) *memFetcher {
	t.Helper()
	registerTestCategories(t, "restaurants", "government")
	f := newMemFetcher()
	f.set("/restaurants.csv", acmeCSV)
	f.set("/government.csv", "Name,Address\nMinistry of Health,Acme Plaza\nTreasury,1 Bay St\n")
	return f
}

func TestCoordinatorDefaultCategory(t *testing.T) {
	registerTestCategories(t, "restaurants", "government")

	c, _ := newTestCoordinator(t, newMemFetcher(), CoordinatorOptions{DefaultCategory: "government"})
	if got := c.Selection().Category; got != "government" {
		t.Errorf("active = %q, want government", got)
	}

	c, _ = newTestCoordinator(t, newMemFetcher(), CoordinatorOptions{DefaultCategory: "unknown"})
	if got := c.Selection().Category; got != "restaurants" {
		t.Errorf("active = %q, want first registered", got)
	}
}

func TestCoordinatorStart(t *testing.T) {
	f := twoCategoryFetcher(t)
	c, _ := newTestCoordinator(t, f, CoordinatorOptions{DefaultCategory: "restaurants"})

	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	v := c.CurrentView()
	if v.Status != StatusLoaded {
		t.Errorf("status = %s, want loaded", v.Status)
	}
	if v.ResultCount != 0 || len(v.Records) != 0 {
		t.Errorf("blank query should show nothing, got %d", v.ResultCount)
	}
}

func TestCoordinatorSearchAndShowAll(t *testing.T) {
	f := twoCategoryFetcher(t)
	c, _ := newTestCoordinator(t, f, CoordinatorOptions{DefaultCategory: "government"})
	ctx := context.Background()

	if err := c.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}

	c.SetQuery("acme")
	v := c.CurrentView()
	if v.ResultCount != 1 || v.Records[0].Name.String != "Ministry of Health" {
		t.Errorf("search view = %+v", v)
	}

	if on := c.ToggleShowAll(); !on {
		t.Fatal("ToggleShowAll should turn show-all on")
	}
	v = c.CurrentView()
	if v.Query != "" {
		t.Errorf("toggle should clear the query, got %q", v.Query)
	}
	if v.ResultCount != 2 {
		t.Errorf("show all count = %d, want 2", v.ResultCount)
	}

	if on := c.ToggleShowAll(); on {
		t.Fatal("second toggle should turn show-all off")
	}
	if got := c.CurrentView().ResultCount; got != 0 {
		t.Errorf("count = %d, want 0", got)
	}
}

func TestCoordinatorToggleKeepsQuery(t *testing.T) {
	f := twoCategoryFetcher(t)
	c, _ := newTestCoordinator(t, f, CoordinatorOptions{DefaultCategory: "government", ToggleKeepsQuery: true})
	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	c.SetQuery("treasury")
	c.ToggleShowAll()

	v := c.CurrentView()
	if v.Query != "treasury" || !v.ShowAll {
		t.Errorf("selection = %q/%v", v.Query, v.ShowAll)
	}
	if v.ResultCount != 1 {
		t.Errorf("non-blank query should override show-all, got %d", v.ResultCount)
	}
}

func TestCoordinatorSwitchResetsSelection(t *testing.T) {
	f := twoCategoryFetcher(t)
	c, _ := newTestCoordinator(t, f, CoordinatorOptions{DefaultCategory: "restaurants"})
	ctx := context.Background()

	if err := c.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	c.SetQuery("acme")
	c.ToggleShowAll()

	if err := c.Select(ctx, "government"); err != nil {
		t.Fatalf("Select: %v", err)
	}
	sel := c.Selection()
	if sel.Category != "government" || sel.Query != "" || sel.ShowAll {
		t.Errorf("selection after switch = %+v", sel)
	}

	c.ToggleShowAll()
	if err := c.Select(ctx, "restaurants"); err != nil {
		t.Fatalf("Select: %v", err)
	}
	c.ToggleShowAll()

	v := c.CurrentView()
	if v.ResultCount != 1 || v.Records[0] != acmeRecord {
		t.Errorf("switch back view = %+v", v)
	}
	if n := f.count("/restaurants.csv"); n != 1 {
		t.Errorf("restaurants fetched %d times, want 1", n)
	}
}

func TestCoordinatorReselectKeepsQuery(t *testing.T) {
	f := twoCategoryFetcher(t)
	c, _ := newTestCoordinator(t, f, CoordinatorOptions{DefaultCategory: "restaurants"})
	ctx := context.Background()

	if err := c.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	c.SetQuery("acme")
	if err := c.Select(ctx, "restaurants"); err != nil {
		t.Fatalf("Select: %v", err)
	}
	if got := c.Selection().Query; got != "acme" {
		t.Errorf("query = %q, want acme", got)
	}
}

func TestCoordinatorUnknownCategory(t *testing.T) {
	f := twoCategoryFetcher(t)
	c, _ := newTestCoordinator(t, f, CoordinatorOptions{DefaultCategory: "restaurants"})
	c.SetQuery("x")

	err := c.Select(context.Background(), "bakeries")
	if !errors.Is(err, ErrUnknownCategory) {
		t.Fatalf("error = %v, want ErrUnknownCategory", err)
	}
	if sel := c.Selection(); sel.Category != "restaurants" || sel.Query != "x" {
		t.Errorf("selection changed: %+v", sel)
	}
}

func TestCoordinatorFailedView(t *testing.T) {
	registerTestCategories(t, "restaurants", "government")
	f := newMemFetcher()
	f.set("/restaurants.csv", acmeCSV)
	c, _ := newTestCoordinator(t, f, CoordinatorOptions{DefaultCategory: "restaurants"})
	ctx := context.Background()

	if err := c.Select(ctx, "government"); err == nil {
		t.Fatal("expected load failure")
	}
	c.ToggleShowAll()

	v := c.CurrentView()
	if v.Status != StatusFailed {
		t.Errorf("status = %s, want failed", v.Status)
	}
	if v.ErrorCode != "NET001" {
		t.Errorf("code = %q, want NET001", v.ErrorCode)
	}
	if v.Records == nil || len(v.Records) != 0 {
		t.Errorf("failed view should have empty records, got %+v", v.Records)
	}

	infos := c.ListCategories()
	if infos[0].Status != StatusUnloaded || infos[1].Status != StatusFailed {
		t.Errorf("statuses = %+v", infos)
	}

	// Selecting the failed category again retries.
	f.set("/government.csv", "Name\nTreasury\n")
	if err := c.Select(ctx, "government"); err != nil {
		t.Fatalf("retry Select: %v", err)
	}
	if v := c.CurrentView(); v.Status != StatusLoaded || v.ResultCount != 1 {
		t.Errorf("view after retry = %+v", v)
	}
}

func TestCoordinatorDiscardsStaleLoad(t *testing.T) {
	registerTestCategories(t, "slow", "fast")

	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	f := FetcherFunc(func(ctx context.Context, locator string) ([]byte, error) {
		if locator == "/slow.csv" {
			once.Do(func() { close(started) })
			<-release
			return []byte("Name\nSlow One\n"), nil
		}
		return []byte("Name\nFast One\n"), nil
	})
	c, l := newTestCoordinator(t, f, CoordinatorOptions{DefaultCategory: "fast"})
	ctx := context.Background()

	done := make(chan error, 1)
	go func() { done <- c.Select(ctx, "slow") }()
	<-started

	if err := c.Select(ctx, "fast"); err != nil {
		t.Fatalf("Select fast: %v", err)
	}
	close(release)
	if err := <-done; err != nil {
		t.Errorf("stale Select should return nil, got %v", err)
	}

	c.ToggleShowAll()
	v := c.CurrentView()
	if v.Category != "fast" || v.ResultCount != 1 || v.Records[0].Name.String != "Fast One" {
		t.Errorf("view shows stale data: %+v", v)
	}

	if got := l.Snapshot("slow").Status; got != StatusLoaded {
		t.Errorf("slow status = %s; stale results should still be cached", got)
	}
}

func TestCoordinatorDiscardsStaleFailure(t *testing.T) {
	registerTestCategories(t, "slow", "fast")

	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	f := FetcherFunc(func(ctx context.Context, locator string) ([]byte, error) {
		if locator == "/slow.csv" {
			once.Do(func() { close(started) })
			<-release
			return nil, &TransportError{Locator: locator, StatusCode: 404}
		}
		return []byte("Name\nFast One\n"), nil
	})
	c, l := newTestCoordinator(t, f, CoordinatorOptions{DefaultCategory: "fast"})
	ctx := context.Background()

	done := make(chan error, 1)
	go func() { done <- c.Select(ctx, "slow") }()
	<-started

	if err := c.Select(ctx, "fast"); err != nil {
		t.Fatalf("Select fast: %v", err)
	}
	close(release)
	if err := <-done; err != nil {
		t.Errorf("stale Select should return nil, got %v", err)
	}

	v := c.CurrentView()
	if v.Category != "fast" || v.Status != StatusLoaded {
		t.Errorf("view = %+v, want fast/loaded", v)
	}
	if v.Error != "" || v.ErrorCode != "" {
		t.Errorf("stale failure surfaced: %q (%s)", v.Error, v.ErrorCode)
	}

	if got := l.Snapshot("slow").Status; got != StatusFailed {
		t.Errorf("slow status = %s, want failed in the cache", got)
	}
}

func TestCoordinatorViewStatus(t *testing.T) {
	f := twoCategoryFetcher(t)
	c, l := newTestCoordinator(t, f, CoordinatorOptions{DefaultCategory: "restaurants"})

	if got := c.CurrentView().Status; got != StatusLoading {
		t.Errorf("before Start: status = %s, want loading", got)
	}

	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := l.Invalidate("restaurants"); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}

	if got := c.CurrentView().Status; got != StatusLoading {
		t.Errorf("after invalidate: status = %s, want loading", got)
	}
}
