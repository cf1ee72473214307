// Package session resolves per-request authentication state and enforces
// the public/protected route policy in front of every site request.
package session

import (
	"github.com/gin-gonic/gin"

	"github.com/riefer02/astro-wordpress-starter/internal/wordpress"
)

// contextKey is the gin context slot for the resolved session state.
const contextKey = "session_state"

// State is the per-request session state. It is derived fresh for every
// request and never persisted. IsAuthenticated is true if and only if User
// was populated from a server-validated token in this same request cycle;
// a token merely sitting in storage is never sufficient.
type State struct {
	User            *wordpress.User
	IsAuthenticated bool
	IsLoading       bool
	Error           string
}

// set publishes the state for downstream handlers.
func setState(c *gin.Context, s *State) {
	c.Set(contextKey, s)
}

// FromContext returns the request's session state. Handlers read only
// this; they never touch the token store directly. An anonymous state is
// returned when the interceptor has not run.
func FromContext(c *gin.Context) *State {
	if v, ok := c.Get(contextKey); ok {
		if s, ok := v.(*State); ok {
			return s
		}
	}
	return &State{}
}
