package session

import (
	"net/http"
	"time"
)

// MarkerCookieName holds the pre-login destination path so the post-login
// flow can return the user to it.
const MarkerCookieName = "redirect_after_login"

// DefaultMarkerTTL bounds the marker's lifetime.
const DefaultMarkerTTL = 10 * time.Minute

// setMarker persists path in the short-lived, server-only marker cookie.
func setMarker(w http.ResponseWriter, path string, ttl time.Duration, secure bool) {
	if ttl <= 0 {
		ttl = DefaultMarkerTTL
	}
	http.SetCookie(w, &http.Cookie{
		Name:     MarkerCookieName,
		Value:    path,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ConsumeMarker reads and clears the redirect marker. The login handler
// calls this once to decide the post-login destination; consumption always
// clears the cookie.
func ConsumeMarker(w http.ResponseWriter, r *http.Request, secure bool) (string, bool) {
	c, err := r.Cookie(MarkerCookieName)
	if err != nil || c.Value == "" {
		return "", false
	}

	http.SetCookie(w, &http.Cookie{
		Name:     MarkerCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
	return c.Value, true
}
