package handlers

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

// In-memory cookie sessions. A magic link is one-shot, so after the single
// successful validation the dashboard holds a short-lived server-side session
// instead of re-validating the token on every load. Restarting the server
// logs everyone out, which is acceptable for this deployment.
type sessionStore struct {
	mu   sync.Mutex
	data map[string]sessionEntry
	ttl  time.Duration
}

type sessionEntry struct {
	value   string
	expires time.Time
}

func newSessionStore(ttl time.Duration) *sessionStore {
	return &sessionStore{data: make(map[string]sessionEntry), ttl: ttl}
}

func (s *sessionStore) create(value string) string {
	id := uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()
	// Opportunistic sweep of expired entries.
	now := time.Now()
	for k, e := range s.data {
		if now.After(e.expires) {
			delete(s.data, k)
		}
	}
	s.data[id] = sessionEntry{value: value, expires: now.Add(s.ttl)}
	return id
}

func (s *sessionStore) get(id string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.data[id]
	if !ok || time.Now().After(e.expires) {
		return "", false
	}
	return e.value, true
}

func (s *sessionStore) drop(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, id)
}

var (
	parentSessions = newSessionStore(2 * time.Hour)
	adminSessions  = newSessionStore(24 * time.Hour)
)

const (
	parentCookieName = "parent_session"
	adminCookieName  = "admin_session"
)

func setSessionCookie(w http.ResponseWriter, name, id string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(ttl),
	})
}

func clearSessionCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
	})
}

// parentEmail returns the email bound to the request's parent session.
func parentEmail(r *http.Request) (string, bool) {
	c, err := r.Cookie(parentCookieName)
	if err != nil {
		return "", false
	}
	return parentSessions.get(c.Value)
}

// RequireParent gates the parent dashboard behind a live session.
func RequireParent(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := parentEmail(r); !ok {
			http.Redirect(w, r, "/my", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin is middleware: blocks access unless logged in.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie(adminCookieName)
		if err != nil {
			http.Redirect(w, r, "/admin/login?next="+r.URL.RequestURI(), http.StatusSeeOther)
			return
		}
		if _, ok := adminSessions.get(c.Value); !ok {
			http.Redirect(w, r, "/admin/login?next="+r.URL.RequestURI(), http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// adminActor returns the logged-in admin identity for audit fields.
func adminActor(r *http.Request) string {
	c, err := r.Cookie(adminCookieName)
	if err != nil {
		return ""
	}
	who, _ := adminSessions.get(c.Value)
	return who
}
