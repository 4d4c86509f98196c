// Package core provides the dataset pipeline behind the maps directory.
//
// This package holds all domain logic independent of any UI or transport
// layer. It can be used by the web handlers, tools, or tests without
// modification.
//
// # Architecture
//
// The package is organized around a few key concepts:
//
//   - Categories: registered via the registry, each names one dataset
//     resource relative to a configured base (see package categories).
//   - Parser: turns comma-separated text into [Record] values, dropping
//     malformed rows with a [RowWarning] instead of failing.
//   - Loader: fetch-then-parse with at most one load in flight per
//     category, writing results into the shared [Cache].
//   - Coordinator: one session's category, query and show-all state, and
//     the [View] derived from it.
//   - Service: the entry point owning the loader and open sessions.
//
// # Category Registry
//
// Categories are registered at init time using [Register]:
//
//	core.Register(core.Category{
//	    ID:    "restaurants",
//	    Label: "Restaurants",
//	    Path:  "/data/R8_google_maps_data.csv",
//	})
//
// [Sources] resolves a category against the dataset base, which may be a
// URL or a local directory; [RoutingFetcher] picks the matching transport.
//
// # Load Lifecycle
//
// Each category's cache entry moves unloaded -> loading -> loaded | failed.
// A failed entry keeps any records from an earlier successful load and is
// retried on the next [Loader.Load]. Records are replaced in one step, so a
// reader never sees a partial dataset.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - CAT001: unknown category
//   - NET001-NET004: fetch failures (status, network, size, timeout)
//   - PARSE001: the resource is not a table
//   - SES001: session expired
//   - REQ001: malformed request
package core
