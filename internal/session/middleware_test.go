package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/riefer02/astro-wordpress-starter/internal/token"
	"github.com/riefer02/astro-wordpress-starter/internal/wordpress"
	apperrors "github.com/riefer02/astro-wordpress-starter/pkg/errors"
	"github.com/riefer02/astro-wordpress-starter/pkg/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeAuthority struct {
	result      *wordpress.ValidationResult
	validateErr error
	user        *wordpress.User
	profileErr  error

	validateCalls int
	profileCalls  int
}

func (f *fakeAuthority) Validate(ctx context.Context, tok string) (*wordpress.ValidationResult, error) {
	f.validateCalls++
	return f.result, f.validateErr
}

func (f *fakeAuthority) Profile(ctx context.Context, bearer string) (*wordpress.User, error) {
	f.profileCalls++
	return f.user, f.profileErr
}

func validResult() *wordpress.ValidationResult {
	return &wordpress.ValidationResult{Code: wordpress.ValidTokenCode, Status: 200}
}

func testUser() *wordpress.User {
	return &wordpress.User{ID: 1, Username: "bob", Email: "bob@example.com", DisplayName: "Bob"}
}

// serve runs a request through the interceptor and a catch-all handler
// that records whether it ran and what state it saw.
func serve(t *testing.T, store token.Store, authority Authority, path string) (*httptest.ResponseRecorder, *State, bool) {
	t.Helper()

	mw := New(Config{
		Store:     store,
		Authority: authority,
		Logger:    logger.Nop(),
	})

	var (
		nextCalled bool
		state      *State
	)
	engine := gin.New()
	engine.Use(mw.Handler())
	engine.NoRoute(func(c *gin.Context) {
		nextCalled = true
		state = FromContext(c)
		c.Status(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	engine.ServeHTTP(rec, req)

	return rec, state, nextCalled
}

func markerValue(rec *httptest.ResponseRecorder) (string, bool) {
	for _, c := range rec.Result().Cookies() {
		if c.Name == MarkerCookieName && c.MaxAge > 0 {
			return c.Value, true
		}
	}
	return "", false
}

func TestNoToken_ProtectedPathRedirectsToLogin(t *testing.T) {
	// Scenario A: token absent, path /profile.
	store := &token.MemoryStore{}
	rec, _, nextCalled := serve(t, store, &fakeAuthority{}, "/profile")

	if nextCalled {
		t.Error("Expected request not to continue")
	}
	if rec.Code != http.StatusFound {
		t.Fatalf("Expected 302, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != LoginPath {
		t.Errorf("Expected redirect to %s, got %s", LoginPath, loc)
	}
	if marker, ok := markerValue(rec); !ok || marker != "/profile" {
		t.Errorf("Expected marker /profile, got %q (set=%v)", marker, ok)
	}
}

func TestValidToken_LoginPageRedirectsToProfile(t *testing.T) {
	// Scenario B: valid token, profile fetch succeeds, path /login.
	store := &token.MemoryStore{}
	store.Set(nil, "tok", 14)
	authority := &fakeAuthority{result: validResult(), user: testUser()}

	rec, _, nextCalled := serve(t, store, authority, "/login")

	if nextCalled {
		t.Error("Expected request not to continue")
	}
	if rec.Code != http.StatusFound {
		t.Fatalf("Expected 302, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != ProfilePath {
		t.Errorf("Expected redirect to %s, got %s", ProfilePath, loc)
	}
	if authority.profileCalls != 1 {
		t.Errorf("Expected one profile fetch, got %d", authority.profileCalls)
	}
}

func TestInvalidToken_PublicPathContinuesAndClearsStore(t *testing.T) {
	// Scenario C: rejected token, path public by wildcard.
	store := &token.MemoryStore{}
	store.Set(nil, "tok", 14)
	authority := &fakeAuthority{
		result: &wordpress.ValidationResult{Code: "jwt_auth_invalid_token", Status: 403},
	}

	rec, state, nextCalled := serve(t, store, authority, "/posts/42")

	if !nextCalled {
		t.Fatal("Expected public route to continue unauthenticated")
	}
	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", rec.Code)
	}
	if state.IsAuthenticated {
		t.Error("Expected unauthenticated state")
	}
	if state.Error == "" {
		t.Error("Expected a human-readable error in state")
	}
	if _, ok := store.Get(nil); ok {
		t.Error("Expected token store to be cleared")
	}
	if authority.profileCalls != 0 {
		t.Error("Expected no profile fetch for a rejected token")
	}
}

func TestLoginFailure_ScenarioDErrorShape(t *testing.T) {
	// Scenario D lives in the auth client tests; here we only pin that a
	// provider-coded failure surfaces its message in session state.
	store := &token.MemoryStore{}
	store.Set(nil, "tok", 14)
	authority := &fakeAuthority{
		validateErr: apperrors.NewAPIError(apperrors.KindProtocol, "jwt_auth_invalid_token", "Expired token", 403),
	}

	_, state, nextCalled := serve(t, store, authority, "/posts")

	if !nextCalled {
		t.Fatal("Expected public route to continue")
	}
	if state.Error != "Expired token" {
		t.Errorf("Expected provider message in state, got %q", state.Error)
	}
}

func TestValidToken_ProtectedPathContinuesAuthenticated(t *testing.T) {
	store := &token.MemoryStore{}
	store.Set(nil, "tok", 14)
	authority := &fakeAuthority{result: validResult(), user: testUser()}

	rec, state, nextCalled := serve(t, store, authority, "/dashboard")

	if !nextCalled {
		t.Fatalf("Expected request to continue, got status %d", rec.Code)
	}
	if !state.IsAuthenticated {
		t.Fatal("Expected authenticated state")
	}
	if state.User == nil || state.User.Username != "bob" {
		t.Errorf("Expected user bob, got %+v", state.User)
	}
	if _, ok := store.Get(nil); !ok {
		t.Error("Expected token to survive a valid session")
	}
}

func TestJointValidityCheck(t *testing.T) {
	// Any combination other than code==jwt_auth_valid_token AND
	// status==200 is invalid, including a 200 with a different code.
	tests := []struct {
		name   string
		result *wordpress.ValidationResult
	}{
		{"right code wrong status", &wordpress.ValidationResult{Code: wordpress.ValidTokenCode, Status: 403}},
		{"wrong code right status", &wordpress.ValidationResult{Code: "jwt_auth_invalid_token", Status: 200}},
		{"wrong both", &wordpress.ValidationResult{Code: "jwt_auth_invalid_token", Status: 403}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &token.MemoryStore{}
			store.Set(nil, "tok", 14)
			authority := &fakeAuthority{result: tt.result}

			_, state, _ := serve(t, store, authority, "/posts")

			if state.IsAuthenticated {
				t.Error("Expected unauthenticated state")
			}
			if _, ok := store.Get(nil); ok {
				t.Error("Expected token store to be cleared")
			}
		})
	}
}

func TestTransportErrorTreatedAsInvalid(t *testing.T) {
	// No retry: a transient network failure during validation fails
	// closed, identically to an invalid token.
	store := &token.MemoryStore{}
	store.Set(nil, "tok", 14)
	authority := &fakeAuthority{validateErr: errors.New("dial tcp: connection refused")}

	rec, _, nextCalled := serve(t, store, authority, "/profile")

	if nextCalled {
		t.Error("Expected protected route not to continue")
	}
	if rec.Code != http.StatusFound {
		t.Errorf("Expected redirect to login, got %d", rec.Code)
	}
	if _, ok := store.Get(nil); ok {
		t.Error("Expected token store to be cleared")
	}
	if authority.validateCalls != 1 {
		t.Errorf("Expected exactly one validate call, got %d", authority.validateCalls)
	}
}

func TestProfileFailureAfterValidTokenIsInvalid(t *testing.T) {
	store := &token.MemoryStore{}
	store.Set(nil, "tok", 14)
	authority := &fakeAuthority{
		result:     validResult(),
		profileErr: apperrors.NewAPIError(apperrors.KindProtocol, "profile_fetch_failed", "Failed to fetch profile", 500),
	}

	_, state, _ := serve(t, store, authority, "/posts")

	if state.IsAuthenticated {
		t.Error("Expected unauthenticated state when profile fetch fails")
	}
	if _, ok := store.Get(nil); ok {
		t.Error("Expected token store to be cleared")
	}
}

func TestPublicPathsNeverRedirect(t *testing.T) {
	for _, path := range []string{"/", "/login", "/about", "/posts", "/posts/hello"} {
		t.Run(path, func(t *testing.T) {
			rec, _, nextCalled := serve(t, &token.MemoryStore{}, &fakeAuthority{}, path)
			if !nextCalled {
				t.Errorf("Expected %s to continue, got status %d", path, rec.Code)
			}
		})
	}
}

func TestProtectedPathsPersistMarker(t *testing.T) {
	for _, path := range []string{"/profile", "/dashboard", "/settings/billing"} {
		t.Run(path, func(t *testing.T) {
			rec, _, _ := serve(t, &token.MemoryStore{}, &fakeAuthority{}, path)
			if marker, ok := markerValue(rec); !ok || marker != path {
				t.Errorf("Expected marker %q, got %q (set=%v)", path, marker, ok)
			}
		})
	}
}

func TestNoTokenSkipsValidation(t *testing.T) {
	authority := &fakeAuthority{}
	serve(t, &token.MemoryStore{}, authority, "/")

	if authority.validateCalls != 0 {
		t.Errorf("Expected no validate calls without a token, got %d", authority.validateCalls)
	}
}

func TestConsumeMarker(t *testing.T) {
	rec := httptest.NewRecorder()
	setMarker(rec, "/profile", 0, false)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}

	rec2 := httptest.NewRecorder()
	dest, ok := ConsumeMarker(rec2, req, false)
	if !ok || dest != "/profile" {
		t.Fatalf("Expected marker /profile, got %q (ok=%v)", dest, ok)
	}

	// Consumption clears the cookie.
	cleared := false
	for _, c := range rec2.Result().Cookies() {
		if c.Name == MarkerCookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("Expected marker cookie to be cleared on consumption")
	}

	// A request without the cookie yields nothing.
	if _, ok := ConsumeMarker(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil), false); ok {
		t.Error("Expected no marker on a bare request")
	}
}
