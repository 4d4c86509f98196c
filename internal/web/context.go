package web

import (
	"context"
	"net/http"

	"github.com/JonMunkholm/mapsdir/internal/core"
	"github.com/go-chi/chi/v5"
)

type contextKey string

const ctxKeySession contextKey = "session"

// withSession stores the resolved session on ctx.
func withSession(ctx context.Context, sess *core.Session) context.Context {
	return context.WithValue(ctx, ctxKeySession, sess)
}

// sessionFrom returns the session stored by sessionCtx.
func sessionFrom(ctx context.Context) *core.Session {
	sess, _ := ctx.Value(ctxKeySession).(*core.Session)
	return sess
}

// sessionCtx resolves {sessionID} once for every session route.
func (s *Server) sessionCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := s.service.Session(chi.URLParam(r, "sessionID"))
		if err != nil {
			s.respondError(w, r, err, http.StatusNotFound)
			return
		}
		next.ServeHTTP(w, r.WithContext(withSession(r.Context(), sess)))
	})
}
