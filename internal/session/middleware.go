package session

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/riefer02/astro-wordpress-starter/internal/routes"
	"github.com/riefer02/astro-wordpress-starter/internal/token"
	"github.com/riefer02/astro-wordpress-starter/internal/wordpress"
	apperrors "github.com/riefer02/astro-wordpress-starter/pkg/errors"
	"github.com/riefer02/astro-wordpress-starter/pkg/logger"
)

// Destinations for the two redirect flows.
const (
	LoginPath   = "/login"
	ProfilePath = "/profile"
)

// Authority is the slice of the auth gateway the interceptor needs: prove
// a token, then fetch the user it belongs to.
type Authority interface {
	Validate(ctx context.Context, token string) (*wordpress.ValidationResult, error)
	Profile(ctx context.Context, bearer string) (*wordpress.User, error)
}

// tokenState tracks the interceptor's resolution of the stored token.
type tokenState int

const (
	noToken tokenState = iota
	tokenPresentUnchecked
	tokenValid
	tokenInvalid
)

// Middleware is the request interceptor. For every incoming request it
// resolves the session (valid / absent / invalid), publishes the session
// state, and enforces the route policy with the login round-trip
// redirects.
type Middleware struct {
	store     token.Store
	authority Authority
	policy    *routes.Policy
	log       logger.Logger

	markerTTL time.Duration
	secure    bool
}

// Config collects the interceptor's collaborators.
type Config struct {
	Store     token.Store
	Authority Authority
	Policy    *routes.Policy
	Logger    logger.Logger
	MarkerTTL time.Duration
	Secure    bool
}

// New creates the interceptor middleware.
func New(cfg Config) *Middleware {
	if cfg.Policy == nil {
		cfg.Policy = routes.Default()
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Default()
	}
	return &Middleware{
		store:     cfg.Store,
		authority: cfg.Authority,
		policy:    cfg.Policy,
		log:       cfg.Logger,
		markerTTL: cfg.MarkerTTL,
		secure:    cfg.Secure,
	}
}

// Handler returns the gin middleware.
func (m *Middleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		isPublic := m.policy.IsPublic(path)

		state := &State{}
		setState(c, state)

		st := noToken
		tok, ok := m.store.Get(c.Request)
		if ok {
			st = tokenPresentUnchecked
		}

		if st == tokenPresentUnchecked {
			st = m.resolveToken(c, tok, state)
		}

		switch st {
		case tokenValid:
			if m.policy.RedirectIfAuthenticated(path) {
				c.Redirect(http.StatusFound, ProfilePath)
				c.Abort()
				return
			}

		case tokenInvalid:
			// Clear the stored token and fall through to unauthenticated
			// handling; a broken session must never abort the request.
			m.store.Clear(c.Writer)
		}

		if !isPublic && !state.IsAuthenticated {
			setMarker(c.Writer, path, m.markerTTL, m.secure)
			c.Redirect(http.StatusFound, LoginPath)
			c.Abort()
			return
		}

		c.Next()
	}
}

// resolveToken revalidates tok with the issuer and, on a positive verdict,
// fetches the profile. Every failure along the way, transport included,
// resolves to tokenInvalid.
func (m *Middleware) resolveToken(c *gin.Context, tok string, state *State) tokenState {
	ctx := c.Request.Context()

	result, err := m.authority.Validate(ctx, tok)
	if err != nil {
		m.log.Warn("token validation failed",
			logger.Component("session"),
			logger.Path(c.Request.URL.Path),
			logger.Error(err),
		)
		state.Error = errorMessage(err, "Authentication failed")
		return tokenInvalid
	}

	if !result.OK() {
		m.log.Info("token rejected by issuer",
			logger.Component("session"),
			logger.String("code", result.Code),
			logger.Int("status", result.Status),
		)
		state.Error = "Authentication failed"
		return tokenInvalid
	}

	// Validation success alone is not sufficient: the session is trusted
	// only once the profile fetch proves the token resolves to a user.
	user, err := m.authority.Profile(ctx, tok)
	if err != nil {
		m.log.Warn("profile fetch failed after valid token",
			logger.Component("session"),
			logger.Error(err),
		)
		state.Error = errorMessage(err, "Authentication failed")
		return tokenInvalid
	}

	state.User = user
	state.IsAuthenticated = true
	return tokenValid
}

// errorMessage prefers the provider's message for display.
func errorMessage(err error, fallback string) string {
	if apiErr, ok := apperrors.AsAPIError(err); ok && apiErr.Message != "" {
		return apiErr.Message
	}
	if err != nil && err.Error() != "" {
		return err.Error()
	}
	return fallback
}
