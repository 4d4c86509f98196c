package core

import (
	"fmt"
	"net/url"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

var (
	registry   = make(map[string]Category)
	registryMu sync.RWMutex
	nextOrder  int
)

// Register adds a category to the registry.
// Panics if the ID is empty or already registered.
func Register(c Category) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if strings.TrimSpace(c.ID) == "" {
		panic("category registered without an id")
	}
	if _, exists := registry[c.ID]; exists {
		panic(fmt.Sprintf("category already registered: %s", c.ID))
	}
	if c.Label == "" {
		c.Label = c.ID
	}

	c.order = nextOrder
	nextOrder++
	registry[c.ID] = c
}

// Get returns a category by ID.
// Returns false if not found.
func Get(id string) (Category, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	c, ok := registry[id]
	return c, ok
}

// All returns all registered categories in registration order.
func All() []Category {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]Category, 0, len(registry))
	for _, c := range registry {
		result = append(result, c)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].order < result[j].order
	})

	return result
}

// Count returns the number of registered categories.
func Count() int {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return len(registry)
}

// Clear removes all registered categories.
func Clear() {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = make(map[string]Category)
	nextOrder = 0
}

// Locator resolves a category ID to the location of its dataset.
type Locator interface {
	Locate(id string) (string, error)
}

// Sources resolves registered categories against a base URL or directory.
type Sources struct {
	Base string
}

// Locate returns the resource location for the category.
// Fails with ErrUnknownCategory when the ID is not registered.
func (s Sources) Locate(id string) (string, error) {
	c, ok := Get(id)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, id)
	}
	return joinLocation(s.Base, c.Path)
}

// joinLocation combines base and path. Absolute URLs in path win.
func joinLocation(base, path string) (string, error) {
	if isRemote(path) || base == "" {
		return path, nil
	}
	if isRemote(base) {
		loc, err := url.JoinPath(base, path)
		if err != nil {
			return "", fmt.Errorf("join %q with %q: %w", base, path, err)
		}
		return loc, nil
	}
	return filepath.Join(base, filepath.FromSlash(path)), nil
}

func isRemote(loc string) bool {
	lower := strings.ToLower(loc)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
