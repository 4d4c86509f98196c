package core

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path"
	"strings"
)

// Fetcher retrieves the raw bytes of a dataset resource.
// Failures are reported as *TransportError.
type Fetcher interface {
	Fetch(ctx context.Context, locator string) ([]byte, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, locator string) ([]byte, error)

// Fetch calls f(ctx, locator).
func (f FetcherFunc) Fetch(ctx context.Context, locator string) ([]byte, error) {
	return f(ctx, locator)
}

// HTTPFetcher fetches datasets over HTTP(S).
type HTTPFetcher struct {
	Client  *http.Client // http.DefaultClient when nil
	MaxSize int64        // No cap when <= 0
}

// Fetch issues a GET for locator. Any non-2xx status is a failure.
func (f *HTTPFetcher) Fetch(ctx context.Context, locator string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, locator, nil)
	if err != nil {
		return nil, &TransportError{Locator: locator, Cause: err}
	}
	req.Header.Set("Accept", "text/csv, text/plain;q=0.9, */*;q=0.1")

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, &TransportError{Locator: locator, Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain a little so the connection can be reused.
		_, _ = io.CopyN(io.Discard, resp.Body, 4096)
		return nil, &TransportError{Locator: locator, StatusCode: resp.StatusCode}
	}

	data, err := readLimited(resp.Body, f.MaxSize)
	if err != nil {
		return nil, &TransportError{Locator: locator, Cause: err}
	}
	return data, nil
}

// FileFetcher reads datasets from the local filesystem.
//
// With Root set, locators are slash-separated paths inside Root (a leading
// "/" is ignored). Otherwise they are opened as OS paths.
type FileFetcher struct {
	Root    fs.FS
	MaxSize int64
}

// Fetch reads the file at locator. A missing file reports status 404 so it
// surfaces like a missing hosted resource.
func (f *FileFetcher) Fetch(ctx context.Context, locator string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, &TransportError{Locator: locator, Cause: err}
	}

	var (
		file io.ReadCloser
		err  error
	)
	if f.Root != nil {
		file, err = f.Root.Open(path.Clean(strings.TrimPrefix(locator, "/")))
	} else {
		file, err = os.Open(locator)
	}
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &TransportError{Locator: locator, StatusCode: http.StatusNotFound}
		}
		return nil, &TransportError{Locator: locator, Cause: err}
	}
	defer file.Close()

	data, err := readLimited(file, f.MaxSize)
	if err != nil {
		return nil, &TransportError{Locator: locator, Cause: err}
	}
	return data, nil
}

// RoutingFetcher sends http(s) locators to Remote and everything else to Local.
type RoutingFetcher struct {
	Remote Fetcher
	Local  Fetcher
}

// NewRoutingFetcher builds the default fetcher pair sharing one size cap.
func NewRoutingFetcher(client *http.Client, maxSize int64) *RoutingFetcher {
	return &RoutingFetcher{
		Remote: &HTTPFetcher{Client: client, MaxSize: maxSize},
		Local:  &FileFetcher{MaxSize: maxSize},
	}
}

// Fetch dispatches on the locator's scheme.
func (f *RoutingFetcher) Fetch(ctx context.Context, locator string) ([]byte, error) {
	if isRemote(locator) {
		return f.Remote.Fetch(ctx, locator)
	}
	return f.Local.Fetch(ctx, locator)
}
