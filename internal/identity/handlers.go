package identity

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/riefer02/astro-wordpress-starter/internal/wordpress"
	apperrors "github.com/riefer02/astro-wordpress-starter/pkg/errors"
	"github.com/riefer02/astro-wordpress-starter/pkg/logger"
)

// Provider verdict codes for the validate endpoint.
const (
	CodeValidToken   = "jwt_auth_valid_token"
	CodeInvalidToken = "jwt_auth_invalid_token"
)

// dummyHash is a syntactically valid argon2id hash used to equalize
// verification time for unknown usernames.
const dummyHash = "$argon2id$v=19$m=65536,t=3,p=4$YWJjZGVmZ2hpamtsbW5vcA$eHh4eHh4eHh4eHh4eHh4eHh4eHh4eHh4eHh4eHh4eHg"

// Limiter is the login-throttling port; nil disables throttling so the
// handler works without Redis in tests and small deployments.
type Limiter interface {
	Allow(ctx context.Context, login string) (bool, error)
	RecordFailure(ctx context.Context, login string) error
	Reset(ctx context.Context, login string) error
}

// Handler serves the identity endpoints.
type Handler struct {
	users   UserRepository
	hasher  *Argon2Hasher
	tokens  *TokenManager
	limiter Limiter
	log     logger.Logger
}

// NewHandler creates the identity handler. lim may be nil to disable
// login throttling.
func NewHandler(users UserRepository, hasher *Argon2Hasher, tokens *TokenManager, lim Limiter, log logger.Logger) *Handler {
	return &Handler{users: users, hasher: hasher, tokens: tokens, limiter: lim, log: log}
}

// errorEnvelope answers in the provider error shape: {code, message,
// data:{status}} with a matching HTTP status.
func errorEnvelope(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"code":    code,
		"message": message,
		"data":    gin.H{"status": status},
	})
}

func toWireUser(u *User) wordpress.User {
	return wordpress.User{
		ID:             int(u.ID),
		Username:       u.Username,
		Email:          u.Email,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		DisplayName:    u.DisplayName,
		Roles:          u.Roles,
		RegisteredDate: u.RegisteredAt.UTC().Format(time.RFC3339),
	}
}

type tokenRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Token exchanges credentials for a signed bearer token.
// POST /wp-json/jwt-auth/v1/token
func (h *Handler) Token(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Username == "" || req.Password == "" {
		errorEnvelope(c, http.StatusBadRequest, "invalid_request", "Username and password are required")
		return
	}

	ctx := c.Request.Context()
	login := strings.ToLower(strings.TrimSpace(req.Username))

	if h.limiter != nil {
		allowed, err := h.limiter.Allow(ctx, login)
		if err != nil {
			h.log.Warn("login throttle check failed", logger.Component("identity"), logger.Error(err))
		}
		if !allowed {
			errorEnvelope(c, http.StatusTooManyRequests, "too_many_attempts",
				"Too many failed login attempts. Please try again later.")
			return
		}
	}

	user, err := h.users.GetByLogin(ctx, login)
	if err != nil && !errors.Is(err, apperrors.ErrUserNotFound) {
		h.log.Error("login lookup failed", logger.Component("identity"), logger.Error(err))
		errorEnvelope(c, http.StatusInternalServerError, "internal_error", "Login failed")
		return
	}

	// Verify against a throwaway hash when the user is unknown so the
	// response time does not reveal which usernames exist.
	valid := false
	if user != nil {
		valid, err = h.hasher.Verify(req.Password, user.PasswordHash)
		if err != nil {
			h.log.Error("password verify failed", logger.Component("identity"), logger.Error(err))
			valid = false
		}
	} else {
		_, _ = h.hasher.Verify(req.Password, dummyHash)
	}
	if !valid {
		if h.limiter != nil {
			if err := h.limiter.RecordFailure(ctx, login); err != nil {
				h.log.Warn("failed to record login failure", logger.Component("identity"), logger.Error(err))
			}
		}
		errorEnvelope(c, http.StatusForbidden, "invalid_credentials",
			"Invalid username or password")
		return
	}

	if h.limiter != nil {
		if err := h.limiter.Reset(ctx, login); err != nil {
			h.log.Warn("failed to reset login counter", logger.Component("identity"), logger.Error(err))
		}
	}

	signed, err := h.tokens.Issue(user.ID)
	if err != nil {
		h.log.Error("token issue failed", logger.Component("identity"), logger.Error(err))
		errorEnvelope(c, http.StatusInternalServerError, "internal_error", "Login failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":             signed,
		"user_email":        user.Email,
		"user_nicename":     user.Username,
		"user_display_name": user.DisplayName,
	})
}

// Validate answers the provider verdict envelope for the bearer token.
// Both the success and failure bodies carry {code, data:{status}}.
// POST /wp-json/jwt-auth/v1/token/validate
func (h *Handler) Validate(c *gin.Context) {
	_, err := h.authenticate(c)
	if err != nil {
		errorEnvelope(c, http.StatusForbidden, CodeInvalidToken, tokenErrorMessage(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"code": CodeValidToken,
		"data": gin.H{"status": http.StatusOK},
	})
}

type registerRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// Register creates a new account.
// POST /wp-json/auth/v1/register
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorEnvelope(c, http.StatusBadRequest, "invalid_request", "Invalid registration payload")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	switch {
	case req.Username == "" || req.Email == "" || req.Password == "":
		errorEnvelope(c, http.StatusBadRequest, "invalid_request",
			"Username, email, and password are required")
		return
	case !strings.Contains(req.Email, "@"):
		errorEnvelope(c, http.StatusBadRequest, "invalid_request", "Invalid email address")
		return
	case len(req.Password) < 6:
		errorEnvelope(c, http.StatusBadRequest, "invalid_request",
			"Password must be at least 6 characters long")
		return
	}

	hash, err := h.hasher.Hash(req.Password)
	if err != nil {
		h.log.Error("password hash failed", logger.Component("identity"), logger.Error(err))
		errorEnvelope(c, http.StatusInternalServerError, "internal_error", "Registration failed")
		return
	}

	display := strings.TrimSpace(req.FirstName + " " + req.LastName)
	if display == "" {
		display = req.Username
	}
	user := &User{
		Username:     strings.ToLower(req.Username),
		Email:        req.Email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		DisplayName:  display,
		PasswordHash: hash,
		RegisteredAt: time.Now().UTC(),
	}

	if err := h.users.Create(c.Request.Context(), user); err != nil {
		if errors.Is(err, apperrors.ErrUserAlreadyExists) {
			c.JSON(http.StatusOK, gin.H{
				"success": false,
				"message": "Username or email is already registered",
			})
			return
		}
		h.log.Error("user create failed", logger.Component("identity"), logger.Error(err))
		errorEnvelope(c, http.StatusInternalServerError, "internal_error", "Registration failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Account created",
		"user":    toWireUser(user),
	})
}

// Profile returns the authenticated user.
// GET /wp-json/auth/v1/profile
func (h *Handler) Profile(c *gin.Context) {
	user, err := h.authenticate(c)
	if err != nil {
		errorEnvelope(c, http.StatusUnauthorized, CodeInvalidToken, tokenErrorMessage(err))
		return
	}
	c.JSON(http.StatusOK, toWireUser(user))
}

type updateProfileRequest struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
}

// UpdateProfile applies a profile patch and returns the updated user.
// PUT /wp-json/auth/v1/profile
func (h *Handler) UpdateProfile(c *gin.Context) {
	user, err := h.authenticate(c)
	if err != nil {
		errorEnvelope(c, http.StatusUnauthorized, CodeInvalidToken, tokenErrorMessage(err))
		return
	}

	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorEnvelope(c, http.StatusBadRequest, "invalid_request", "Invalid profile payload")
		return
	}
	if req.Email != "" && !strings.Contains(req.Email, "@") {
		errorEnvelope(c, http.StatusBadRequest, "invalid_request", "Invalid email address")
		return
	}

	updated, err := h.users.UpdateProfile(c.Request.Context(), user.ID, ProfilePatch{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		DisplayName: req.DisplayName,
		Email:       strings.ToLower(req.Email),
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrUserAlreadyExists) {
			errorEnvelope(c, http.StatusConflict, "email_taken", "Email is already in use")
			return
		}
		h.log.Error("profile update failed", logger.Component("identity"), logger.Error(err))
		errorEnvelope(c, http.StatusInternalServerError, "internal_error", "Profile update failed")
		return
	}

	c.JSON(http.StatusOK, toWireUser(updated))
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// ChangePassword verifies the current password and stores a new hash.
// POST /wp-json/auth/v1/change-password
func (h *Handler) ChangePassword(c *gin.Context) {
	user, err := h.authenticate(c)
	if err != nil {
		errorEnvelope(c, http.StatusUnauthorized, CodeInvalidToken, tokenErrorMessage(err))
		return
	}

	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.CurrentPassword == "" || req.NewPassword == "" {
		errorEnvelope(c, http.StatusBadRequest, "invalid_request",
			"Current and new passwords are required")
		return
	}
	if len(req.NewPassword) < 6 {
		errorEnvelope(c, http.StatusBadRequest, "invalid_request",
			"New password must be at least 6 characters long")
		return
	}

	ok, err := h.hasher.Verify(req.CurrentPassword, user.PasswordHash)
	if err != nil || !ok {
		errorEnvelope(c, http.StatusForbidden, "incorrect_password",
			"Current password is incorrect")
		return
	}

	hash, err := h.hasher.Hash(req.NewPassword)
	if err != nil {
		h.log.Error("password hash failed", logger.Component("identity"), logger.Error(err))
		errorEnvelope(c, http.StatusInternalServerError, "internal_error", "Password change failed")
		return
	}
	if err := h.users.UpdatePassword(c.Request.Context(), user.ID, hash); err != nil {
		h.log.Error("password update failed", logger.Component("identity"), logger.Error(err))
		errorEnvelope(c, http.StatusInternalServerError, "internal_error", "Password change failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Password changed",
	})
}

// authenticate resolves the bearer token to a stored user.
func (h *Handler) authenticate(c *gin.Context) (*User, error) {
	header := c.GetHeader("Authorization")
	if header == "" || !strings.HasPrefix(header, "Bearer ") {
		return nil, apperrors.ErrTokenAbsent
	}
	userID, err := h.tokens.Parse(strings.TrimPrefix(header, "Bearer "))
	if err != nil {
		return nil, err
	}
	user, err := h.users.GetByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrTokenInvalid
		}
		return nil, err
	}
	return user, nil
}

func tokenErrorMessage(err error) string {
	switch {
	case errors.Is(err, apperrors.ErrTokenAbsent):
		return "Authorization token is missing"
	case errors.Is(err, apperrors.ErrTokenExpired):
		return "Token has expired"
	default:
		return "Token is invalid"
	}
}
