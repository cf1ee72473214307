// Package handlers contains the site's HTTP handlers. Auth endpoints are
// form posts that always answer with a redirect carrying a human-readable
// query-parameter message, never a raw error.
package handlers

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/riefer02/astro-wordpress-starter/internal/session"
	"github.com/riefer02/astro-wordpress-starter/internal/token"
	"github.com/riefer02/astro-wordpress-starter/internal/wordpress"
	apperrors "github.com/riefer02/astro-wordpress-starter/pkg/errors"
	"github.com/riefer02/astro-wordpress-starter/pkg/logger"
)

const minPasswordLength = 6

// authGateway is the slice of the auth gateway client the form
// handlers use. Narrowed so tests can substitute a fake.
type authGateway interface {
	Login(ctx context.Context, creds wordpress.LoginCredentials) (*wordpress.AuthToken, error)
	Register(ctx context.Context, creds wordpress.RegisterCredentials) (*wordpress.AuthResponse, error)
	UpdateProfile(ctx context.Context, bearer string, data wordpress.UpdateProfileData) (*wordpress.User, error)
	ChangePassword(ctx context.Context, bearer string, data wordpress.ChangePasswordData) (*wordpress.AuthResponse, error)
}

// AuthHandler serves the /api/auth endpoints. It is the only site
// component allowed to write the token store.
type AuthHandler struct {
	auth         authGateway
	store        token.Store
	tokenTTLDays int
	secure       bool
	log          logger.Logger
}

// NewAuthHandler creates the auth form handler.
func NewAuthHandler(auth authGateway, store token.Store, tokenTTLDays int, secure bool, log logger.Logger) *AuthHandler {
	return &AuthHandler{
		auth:         auth,
		store:        store,
		tokenTTLDays: tokenTTLDays,
		secure:       secure,
		log:          log,
	}
}

// redirectWithError sends the browser back to page with an error message.
func redirectWithError(c *gin.Context, page, msg string) {
	c.Redirect(http.StatusFound, page+"?error="+url.QueryEscape(msg))
}

// redirectWithMessage sends the browser to page with a success message.
func redirectWithMessage(c *gin.Context, page, msg string) {
	c.Redirect(http.StatusFound, page+"?message="+url.QueryEscape(msg))
}

// userMessage extracts a displayable message from a gateway error.
func userMessage(err error, fallback string) string {
	if err == nil {
		return fallback
	}
	if apiErr, ok := apperrors.AsAPIError(err); ok && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// Login handles the login form.
// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	username := strings.TrimSpace(c.PostForm("username"))
	password := c.PostForm("password")
	redirectTo := c.PostForm("redirect")

	if username == "" || password == "" {
		redirectWithError(c, session.LoginPath, "Username and password are required")
		return
	}

	auth, err := h.auth.Login(c.Request.Context(), wordpress.LoginCredentials{
		Username: username,
		Password: password,
	})
	if err != nil {
		h.log.Info("login rejected",
			logger.Component("auth"),
			logger.String("username", username),
			logger.Error(err),
		)
		redirectWithError(c, session.LoginPath, userMessage(err, "Login failed. Please check your credentials."))
		return
	}

	h.store.Set(c.Writer, auth.Token, h.tokenTTLDays)

	// Destination precedence: explicit form field, then the consumed
	// redirect marker, then the profile page.
	if redirectTo == "" {
		if marked, ok := session.ConsumeMarker(c.Writer, c.Request, h.secure); ok {
			redirectTo = marked
		}
	}
	if redirectTo == "" {
		redirectTo = session.ProfilePath
	}

	c.Redirect(http.StatusFound, redirectTo)
}

// Logout clears the session token.
// POST|GET /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	h.store.Clear(c.Writer)
	redirectWithMessage(c, session.LoginPath, "You have been signed out successfully")
}

// Register handles the registration form.
// POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	username := strings.TrimSpace(c.PostForm("username"))
	email := strings.TrimSpace(c.PostForm("email"))
	password := c.PostForm("password")
	confirm := c.PostForm("confirm-password")
	firstName := strings.TrimSpace(c.PostForm("first-name"))
	lastName := strings.TrimSpace(c.PostForm("last-name"))

	const registerPage = "/register"

	switch {
	case username == "" || email == "" || password == "":
		redirectWithError(c, registerPage, "Username, email, and password are required")
		return
	case password != confirm:
		redirectWithError(c, registerPage, "Passwords do not match")
		return
	case len(password) < minPasswordLength:
		redirectWithError(c, registerPage, "Password must be at least 6 characters long")
		return
	}

	resp, err := h.auth.Register(c.Request.Context(), wordpress.RegisterCredentials{
		Username:  username,
		Email:     email,
		Password:  password,
		FirstName: firstName,
		LastName:  lastName,
	})
	if err != nil {
		redirectWithError(c, registerPage, userMessage(err, "Registration failed. Please try again."))
		return
	}

	display := resp.User.DisplayName
	if display == "" {
		display = username
	}
	redirectWithMessage(c, session.LoginPath,
		"Account created successfully! Welcome "+display+". Please log in.")
}

// UpdateProfile handles the profile form.
// POST /api/auth/profile
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	tok, ok := h.store.Get(c.Request)
	if !ok {
		redirectWithError(c, session.LoginPath, "Please log in to update your profile")
		return
	}

	email := strings.TrimSpace(c.PostForm("email"))
	if email == "" {
		redirectWithError(c, session.ProfilePath, "Email is required")
		return
	}

	_, err := h.auth.UpdateProfile(c.Request.Context(), tok, wordpress.UpdateProfileData{
		FirstName:   strings.TrimSpace(c.PostForm("first-name")),
		LastName:    strings.TrimSpace(c.PostForm("last-name")),
		DisplayName: strings.TrimSpace(c.PostForm("display-name")),
		Email:       email,
	})
	if err != nil {
		redirectWithError(c, session.ProfilePath, userMessage(err, "Failed to update profile. Please try again."))
		return
	}

	redirectWithMessage(c, session.ProfilePath, "Profile updated successfully")
}

// ChangePassword handles the change-password form.
// POST /api/auth/change-password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	tok, ok := h.store.Get(c.Request)
	if !ok {
		redirectWithError(c, session.LoginPath, "Please log in to change your password")
		return
	}

	current := c.PostForm("current-password")
	newPass := c.PostForm("new-password")
	confirm := c.PostForm("confirm-new-password")

	switch {
	case current == "" || newPass == "" || confirm == "":
		redirectWithError(c, session.ProfilePath, "All password fields are required")
		return
	case newPass != confirm:
		redirectWithError(c, session.ProfilePath, "New passwords do not match")
		return
	case len(newPass) < minPasswordLength:
		redirectWithError(c, session.ProfilePath, "New password must be at least 6 characters long")
		return
	case current == newPass:
		redirectWithError(c, session.ProfilePath, "New password must be different from current password")
		return
	}

	_, err := h.auth.ChangePassword(c.Request.Context(), tok, wordpress.ChangePasswordData{
		CurrentPassword: current,
		NewPassword:     newPass,
	})
	if err != nil {
		redirectWithError(c, session.ProfilePath, userMessage(err, "Failed to change password. Please try again."))
		return
	}

	redirectWithMessage(c, session.ProfilePath, "Password changed successfully")
}
