// Package token owns the persisted session token. No other component reads
// or writes the token slot directly.
package token

import (
	"net/http"
	"strings"
	"sync"
)

// CookieName is the storage slot for the bearer token.
const CookieName = "wp_auth_token"

// Store persists the session token for a client. Implementations never
// return an error: a slot that cannot be read is simply absent.
type Store interface {
	// Get reads the current token. ok is false when no token is stored.
	Get(r *http.Request) (value string, ok bool)

	// Set writes token with an expiry of now + ttlDays, superseding any
	// prior value.
	Set(w http.ResponseWriter, token string, ttlDays int)

	// Clear removes the token. Clearing an absent token is a no-op.
	Clear(w http.ResponseWriter)
}

// CookieStore keeps the token in an httpOnly, SameSite=Lax cookie.
type CookieStore struct {
	// Secure marks the cookie Secure; set when serving over TLS.
	Secure bool
}

// NewCookieStore creates the production cookie-backed store.
func NewCookieStore(secure bool) *CookieStore {
	return &CookieStore{Secure: secure}
}

func (s *CookieStore) Get(r *http.Request) (string, bool) {
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}

func (s *CookieStore) Set(w http.ResponseWriter, token string, ttlDays int) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   ttlDays * 24 * 60 * 60,
		HttpOnly: true,
		Secure:   s.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *CookieStore) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// HeaderStore reads the token from the Authorization header. It is a
// read-only backing for API callers that manage their own credential;
// Set and Clear are no-ops.
type HeaderStore struct{}

func (HeaderStore) Get(r *http.Request) (string, bool) {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return "", false
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func (HeaderStore) Set(http.ResponseWriter, string, int) {}

func (HeaderStore) Clear(http.ResponseWriter) {}

// MemoryStore holds a single token in memory. Tests use it to drive the
// interceptor without cookie plumbing.
type MemoryStore struct {
	mu    sync.Mutex
	token string
	set   bool
}

func (s *MemoryStore) Get(*http.Request) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, s.set
}

func (s *MemoryStore) Set(_ http.ResponseWriter, token string, _ int) {
	s.mu.Lock()
	s.token = token
	s.set = true
	s.mu.Unlock()
}

func (s *MemoryStore) Clear(http.ResponseWriter) {
	s.mu.Lock()
	s.token = ""
	s.set = false
	s.mu.Unlock()
}
