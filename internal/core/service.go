package core

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ServiceOptions configures a Service.
type ServiceOptions struct {
	// Coordinator is applied to every session opened by the service.
	Coordinator CoordinatorOptions

	Logger *slog.Logger
}

// Service provides the entry point for consumers: it owns the shared
// Loader and the per-session view state.
type Service struct {
	loader *Loader
	opts   ServiceOptions
	logger *slog.Logger
	now    func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
}

// Session is one consumer's view state. All sessions share the Service's
// cache, so a category loaded by one is loaded for all.
type Session struct {
	ID string
	*Coordinator

	mu       sync.Mutex
	lastUsed time.Time
}

// LastUsed returns when the session was last looked up.
func (s *Session) LastUsed() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}

func (s *Session) touch(at time.Time) {
	s.mu.Lock()
	s.lastUsed = at
	s.mu.Unlock()
}

// CategoryStatus is the per-category state reported by Statuses.
type CategoryStatus struct {
	ID       string     `json:"id"`
	Label    string     `json:"label"`
	Status   LoadStatus `json:"status"`
	Records  int        `json:"records"`
	Warnings int        `json:"warnings"`
	LoadID   string     `json:"load_id,omitempty"`
	LoadedAt *time.Time `json:"loaded_at,omitempty"`
	Error    string     `json:"error,omitempty"`
}

// NewService creates a new Service instance.
func NewService(loader *Loader, opts ServiceOptions) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Coordinator.Logger == nil {
		opts.Coordinator.Logger = logger
	}

	return &Service{
		loader:   loader,
		opts:     opts,
		logger:   logger,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// Loader returns the shared loader.
func (s *Service) Loader() *Loader {
	return s.loader
}

// OpenSession creates a session positioned on the default category.
// The caller decides when to Start it.
func (s *Service) OpenSession() *Session {
	sess := &Session{
		ID:          uuid.New().String(),
		Coordinator: NewCoordinator(s.loader, s.opts.Coordinator),
		lastUsed:    s.now(),
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	n := len(s.sessions)
	s.mu.Unlock()

	s.logger.Debug("session opened", "session_id", sess.ID, "sessions", n)
	return sess
}

// Session returns the session with the given ID and marks it used.
func (s *Service) Session(id string) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	sess.touch(s.now())
	return sess, nil
}

// CloseSession discards a session. Loads it started keep running and
// still populate the shared cache.
func (s *Service) CloseSession(id string) error {
	s.mu.Lock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	s.logger.Debug("session closed", "session_id", id)
	return nil
}

// SessionCount returns the number of open sessions.
func (s *Service) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// SweepIdle closes sessions unused for longer than maxIdle and returns how
// many were closed.
func (s *Service) SweepIdle(maxIdle time.Duration) int {
	cutoff := s.now().Add(-maxIdle)

	s.mu.Lock()
	defer s.mu.Unlock()

	swept := 0
	for id, sess := range s.sessions {
		if sess.LastUsed().Before(cutoff) {
			delete(s.sessions, id)
			swept++
		}
	}
	return swept
}

// ListCategories returns every category in configured order with its
// current load status.
func (s *Service) ListCategories() []CategoryInfo {
	return categoryInfos(s.loader.Cache().Status)
}

func categoryInfos(status func(id string) LoadStatus) []CategoryInfo {
	all := All()
	infos := make([]CategoryInfo, len(all))
	for i, cat := range all {
		infos[i] = CategoryInfo{
			ID:     cat.ID,
			Label:  cat.Label,
			Status: status(cat.ID),
		}
	}
	return infos
}

// Statuses reports the cache state of every category.
func (s *Service) Statuses() []CategoryStatus {
	all := All()
	out := make([]CategoryStatus, len(all))
	for i, cat := range all {
		e := s.loader.Snapshot(cat.ID)
		st := CategoryStatus{
			ID:       cat.ID,
			Label:    cat.Label,
			Status:   e.Status,
			Records:  len(e.Records),
			Warnings: len(e.Warnings),
			LoadID:   e.LoadID,
		}
		if !e.LoadedAt.IsZero() {
			at := e.LoadedAt
			st.LoadedAt = &at
		}
		if e.Err != nil {
			st.Error = e.Err.Error()
		}
		out[i] = st
	}
	return out
}

// Preload loads every registered category concurrently.
func (s *Service) Preload(ctx context.Context) []LoadResult {
	all := All()
	ids := make([]string, len(all))
	for i, cat := range all {
		ids[i] = cat.ID
	}

	start := s.now()
	results := s.loader.LoadAll(ctx, ids)

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	s.logger.Info("preload completed",
		"categories", len(results),
		"failed", failed,
		"cached", s.loader.Cache().Len(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return results
}

// Refresh drops the category's loaded state and loads it again. Cached
// records stay visible until the new load replaces them.
func (s *Service) Refresh(ctx context.Context, id string) ([]Record, error) {
	if err := s.loader.Invalidate(id); err != nil {
		return nil, err
	}
	return s.loader.Load(ctx, id)
}
