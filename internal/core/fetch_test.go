package core

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
)

func TestHTTPFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/data/ok.csv":
			w.Header().Set("Content-Type", "text/csv")
			_, _ = w.Write([]byte(acmeCSV))
		case "/data/broken.csv":
			http.Error(w, "boom", http.StatusInternalServerError)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	tests := []struct {
		name       string
		path       string
		maxSize    int64
		wantBody   string
		wantStatus int
		wantErr    bool
	}{
		{name: "success", path: "/data/ok.csv", wantBody: acmeCSV},
		{name: "not found", path: "/data/missing.csv", wantStatus: 404, wantErr: true},
		{name: "server error", path: "/data/broken.csv", wantStatus: 500, wantErr: true},
		{name: "too large", path: "/data/ok.csv", maxSize: 10, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &HTTPFetcher{Client: srv.Client(), MaxSize: tt.maxSize}
			body, err := f.Fetch(context.Background(), srv.URL+tt.path)

			if !tt.wantErr {
				if err != nil {
					t.Fatalf("Fetch: %v", err)
				}
				if string(body) != tt.wantBody {
					t.Errorf("body = %q, want %q", body, tt.wantBody)
				}
				return
			}

			var te *TransportError
			if !errors.As(err, &te) {
				t.Fatalf("error = %v (%T), want *TransportError", err, err)
			}
			if te.StatusCode != tt.wantStatus {
				t.Errorf("StatusCode = %d, want %d", te.StatusCode, tt.wantStatus)
			}
		})
	}
}

func TestHTTPFetcherUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	f := &HTTPFetcher{}
	_, err := f.Fetch(context.Background(), url+"/x.csv")

	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("error = %v, want *TransportError", err)
	}
	if te.StatusCode != 0 {
		t.Errorf("StatusCode = %d, want 0", te.StatusCode)
	}
	if !te.Temporary() {
		t.Error("connection failures should be temporary")
	}
}

func TestFileFetcherFS(t *testing.T) {
	fsys := fstest.MapFS{
		"data/ok.csv": {Data: []byte(acmeCSV)},
	}
	f := &FileFetcher{Root: fsys}

	body, err := f.Fetch(context.Background(), "/data/ok.csv")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if string(body) != acmeCSV {
		t.Errorf("body = %q", body)
	}

	_, err = f.Fetch(context.Background(), "/data/missing.csv")
	var te *TransportError
	if !errors.As(err, &te) || te.StatusCode != http.StatusNotFound {
		t.Errorf("error = %v, want 404 TransportError", err)
	}
}

func TestFileFetcherOS(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ok.csv")
	if err := os.WriteFile(path, []byte(acmeCSV), 0o600); err != nil {
		t.Fatal(err)
	}

	f := &FileFetcher{MaxSize: 1 << 20}
	body, err := f.Fetch(context.Background(), path)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if string(body) != acmeCSV {
		t.Errorf("body = %q", body)
	}

	small := &FileFetcher{MaxSize: 4}
	if _, err := small.Fetch(context.Background(), path); !errors.Is(err, errDatasetTooLarge) {
		t.Errorf("error = %v, want errDatasetTooLarge", err)
	}
}

func TestRoutingFetcher(t *testing.T) {
	var remote, local []string
	f := &RoutingFetcher{
		Remote: FetcherFunc(func(_ context.Context, loc string) ([]byte, error) {
			remote = append(remote, loc)
			return nil, nil
		}),
		Local: FetcherFunc(func(_ context.Context, loc string) ([]byte, error) {
			local = append(local, loc)
			return nil, nil
		}),
	}

	for _, loc := range []string{"https://example.com/a.csv", "HTTP://example.com/b.csv", "/srv/data/c.csv", "data/d.csv"} {
		_, _ = f.Fetch(context.Background(), loc)
	}

	if len(remote) != 2 || len(local) != 2 {
		t.Errorf("remote=%v local=%v", remote, local)
	}
}

func TestSourcesLocate(t *testing.T) {
	Clear()
	t.Cleanup(Clear)
	Register(Category{ID: "restaurants", Path: "/data/R8_google_maps_data.csv"})
	Register(Category{ID: "remote", Path: "https://cdn.example.com/remote.csv"})

	tests := []struct {
		name string
		base string
		id   string
		want string
	}{
		{name: "url base", base: "https://example.github.io/maps-directory-antigua", id: "restaurants", want: "https://example.github.io/maps-directory-antigua/data/R8_google_maps_data.csv"},
		{name: "url base trailing slash", base: "https://example.github.io/site/", id: "restaurants", want: "https://example.github.io/site/data/R8_google_maps_data.csv"},
		{name: "directory base", base: "/srv/www", id: "restaurants", want: filepath.Join("/srv/www", "data", "R8_google_maps_data.csv")},
		{name: "no base", base: "", id: "restaurants", want: "/data/R8_google_maps_data.csv"},
		{name: "absolute url path", base: "/srv/www", id: "remote", want: "https://cdn.example.com/remote.csv"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Sources{Base: tt.base}.Locate(tt.id)
			if err != nil {
				t.Fatalf("Locate: %v", err)
			}
			if got != tt.want {
				t.Errorf("Locate = %q, want %q", got, tt.want)
			}
		})
	}

	if _, err := (Sources{}).Locate("nope"); !errors.Is(err, ErrUnknownCategory) {
		t.Errorf("error = %v, want ErrUnknownCategory", err)
	}
}

func TestRegisterPanics(t *testing.T) {
	Clear()
	t.Cleanup(Clear)
	Register(Category{ID: "a", Path: "/a.csv"})

	for _, c := range []Category{{ID: ""}, {ID: "a"}} {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("Register(%q) should panic", c.ID)
				}
			}()
			Register(c)
		}()
	}
}

func TestRegistryOrder(t *testing.T) {
	Clear()
	t.Cleanup(Clear)
	for _, id := range []string{"zeta", "alpha", "mid"} {
		Register(Category{ID: id})
	}

	all := All()
	want := []string{"zeta", "alpha", "mid"}
	for i, c := range all {
		if c.ID != want[i] {
			t.Errorf("position %d = %q, want %q", i, c.ID, want[i])
		}
		if c.Label != c.ID {
			t.Errorf("label defaults to id, got %q", c.Label)
		}
	}
}
