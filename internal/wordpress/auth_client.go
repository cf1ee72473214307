package wordpress

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	apperrors "github.com/riefer02/astro-wordpress-starter/pkg/errors"
)

// Identity endpoints exposed by the WordPress JWT plugin and the companion
// auth plugin.
const (
	loginPath          = "/jwt-auth/v1/token"
	validatePath       = "/jwt-auth/v1/token/validate"
	registerPath       = "/auth/v1/register"
	profilePath        = "/auth/v1/profile"
	changePasswordPath = "/auth/v1/change-password"
)

// Fallback error codes when the provider's error body is unparseable.
const (
	codeLoginFailed          = "login_failed"
	codeTokenInvalid         = "token_invalid"
	codeRegistrationFailed   = "registration_failed"
	codeProfileFetchFailed   = "profile_fetch_failed"
	codeProfileUpdateFailed  = "profile_update_failed"
	codePasswordChangeFailed = "password_change_failed"
)

// AuthClient issues calls against the identity endpoints. It does not
// persist tokens; callers own the Token Store.
type AuthClient struct {
	base
}

// NewAuthClient creates an auth gateway client for the given WordPress
// base URL.
func NewAuthClient(baseURL string, timeout time.Duration) *AuthClient {
	return &AuthClient{base: newBase(baseURL, timeout)}
}

// Login exchanges credentials for a bearer token.
func (c *AuthClient) Login(ctx context.Context, creds LoginCredentials) (*AuthToken, error) {
	var tok AuthToken
	err := c.do(ctx, http.MethodPost, c.baseURL+loginPath, "", creds, &tok,
		codeLoginFailed, "Login failed")
	if err != nil {
		return nil, err
	}
	if tok.Token == "" {
		return nil, apperrors.NewAPIError(apperrors.KindRejected,
			codeLoginFailed, "Login failed: no token received", http.StatusOK)
	}
	return &tok, nil
}

// Validate asks the issuer whether token is still good. The returned result
// carries the provider's own code and nested status; callers must apply the
// joint ValidationResult.OK check, not trust the HTTP status alone.
func (c *AuthClient) Validate(ctx context.Context, token string) (*ValidationResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+validatePath, nil)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to build request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, apperrors.NewAPIError(apperrors.KindTransport,
			codeTokenInvalid, err.Error(), 0)
	}
	defer resp.Body.Close()

	// The validate endpoint speaks the same envelope on success and
	// failure: {code, data:{status}}. Decode it regardless of HTTP status
	// so the provider's own verdict is what callers see.
	var body struct {
		Code string `json:"code"`
		Data struct {
			Status int `json:"status"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body.Code == "" {
		kind := apperrors.KindMalformed
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			kind = apperrors.KindProtocol
		}
		return nil, apperrors.NewAPIError(kind, codeTokenInvalid,
			"Token validation failed", resp.StatusCode)
	}

	return &ValidationResult{Code: body.Code, Status: body.Data.Status}, nil
}

// Register creates a new account. Success requires both the provider's
// success flag and a populated user id; a 200 missing either is a failure.
func (c *AuthClient) Register(ctx context.Context, creds RegisterCredentials) (*AuthResponse, error) {
	var resp AuthResponse
	err := c.do(ctx, http.MethodPost, c.baseURL+registerPath, "", creds, &resp,
		codeRegistrationFailed, "Registration failed")
	if err != nil {
		return nil, err
	}
	if !resp.Success || resp.User == nil || resp.User.ID == 0 {
		msg := resp.Message
		if msg == "" {
			msg = "Registration failed: user not created"
		}
		return nil, apperrors.NewAPIError(apperrors.KindRejected,
			codeRegistrationFailed, msg, http.StatusOK)
	}
	return &resp, nil
}

// Profile fetches the authenticated user's record.
func (c *AuthClient) Profile(ctx context.Context, bearer string) (*User, error) {
	var u User
	err := c.do(ctx, http.MethodGet, c.baseURL+profilePath, bearer, nil, &u,
		codeProfileFetchFailed, "Failed to fetch profile")
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateProfile updates the authenticated user's record.
func (c *AuthClient) UpdateProfile(ctx context.Context, bearer string, data UpdateProfileData) (*User, error) {
	var u User
	err := c.do(ctx, http.MethodPut, c.baseURL+profilePath, bearer, data, &u,
		codeProfileUpdateFailed, "Failed to update profile")
	if err != nil {
		return nil, err
	}
	if u.ID == 0 {
		return nil, apperrors.NewAPIError(apperrors.KindRejected,
			codeProfileUpdateFailed, "Profile update failed", http.StatusOK)
	}
	return &u, nil
}

// ChangePassword changes the authenticated user's password.
func (c *AuthClient) ChangePassword(ctx context.Context, bearer string, data ChangePasswordData) (*AuthResponse, error) {
	var resp AuthResponse
	err := c.do(ctx, http.MethodPost, c.baseURL+changePasswordPath, bearer, data, &resp,
		codePasswordChangeFailed, "Failed to change password")
	if err != nil {
		return nil, err
	}
	return &resp, nil
}
