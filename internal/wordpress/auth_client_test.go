package wordpress

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apperrors "github.com/riefer02/astro-wordpress-starter/pkg/errors"
)

func newAuthClient(t *testing.T, handler http.Handler) (*AuthClient, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewAuthClient(srv.URL, 5*time.Second), srv
}

func TestNormalizeBaseURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"http://wp.local", "http://wp.local/wp-json"},
		{"http://wp.local/", "http://wp.local/wp-json"},
		{"http://wp.local/wp-json", "http://wp.local/wp-json"},
		{"http://wp.local/wp-json/", "http://wp.local/wp-json"},
	}
	for _, tt := range tests {
		if got := normalizeBaseURL(tt.in); got != tt.want {
			t.Errorf("normalizeBaseURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLogin_Success(t *testing.T) {
	client, _ := newAuthClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/wp-json/jwt-auth/v1/token" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("Unexpected method %s", r.Method)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"token":"tok123","user_email":"bob@example.com","user_nicename":"bob","user_display_name":"Bob"}`))
	}))

	tok, err := client.Login(context.Background(), LoginCredentials{Username: "bob", Password: "secret"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if tok.Token != "tok123" || tok.UserDisplayName != "Bob" {
		t.Errorf("Unexpected token %+v", tok)
	}
}

func TestLogin_ProviderError(t *testing.T) {
	// Scenario D: provider returns 403 with its own code.
	client, _ := newAuthClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"code":"invalid_credentials","message":"Unknown username or bad password."}`))
	}))

	_, err := client.Login(context.Background(), LoginCredentials{Username: "bob", Password: "wrong"})
	apiErr, ok := apperrors.AsAPIError(err)
	if !ok {
		t.Fatalf("Expected APIError, got %v", err)
	}
	if apiErr.Code != "invalid_credentials" {
		t.Errorf("Expected provider code, got %q", apiErr.Code)
	}
	if apiErr.Status != http.StatusForbidden {
		t.Errorf("Expected status 403, got %d", apiErr.Status)
	}
	if apiErr.Kind != apperrors.KindProtocol {
		t.Errorf("Expected protocol kind, got %q", apiErr.Kind)
	}
}

func TestLogin_MalformedErrorBodyFallsBack(t *testing.T) {
	client, _ := newAuthClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`<html>upstream broke</html>`))
	}))

	_, err := client.Login(context.Background(), LoginCredentials{Username: "bob", Password: "x"})
	apiErr, ok := apperrors.AsAPIError(err)
	if !ok {
		t.Fatalf("Expected APIError, got %v", err)
	}
	if apiErr.Code != "login_failed" {
		t.Errorf("Expected fallback code login_failed, got %q", apiErr.Code)
	}
	if apiErr.Status != http.StatusBadGateway {
		t.Errorf("Expected status 502, got %d", apiErr.Status)
	}
}

func TestLogin_MissingTokenIsFailure(t *testing.T) {
	client, _ := newAuthClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"user_email":"bob@example.com"}`))
	}))

	_, err := client.Login(context.Background(), LoginCredentials{Username: "bob", Password: "x"})
	if err == nil {
		t.Fatal("Expected error for 200 without token")
	}
}

func TestLogin_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close() // client now dials a dead address
	client := NewAuthClient(srv.URL, time.Second)

	_, err := client.Login(context.Background(), LoginCredentials{Username: "bob", Password: "x"})
	apiErr, ok := apperrors.AsAPIError(err)
	if !ok {
		t.Fatalf("Expected APIError, got %v", err)
	}
	if apiErr.Kind != apperrors.KindTransport {
		t.Errorf("Expected transport kind, got %q", apiErr.Kind)
	}
}

func TestValidate_Success(t *testing.T) {
	client, _ := newAuthClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/wp-json/jwt-auth/v1/token/validate" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok123" {
			t.Errorf("Expected bearer header, got %q", got)
		}
		w.Write([]byte(`{"code":"jwt_auth_valid_token","data":{"status":200}}`))
	}))

	result, err := client.Validate(context.Background(), "tok123")
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if !result.OK() {
		t.Errorf("Expected OK result, got %+v", result)
	}
}

func TestValidate_RejectedToken(t *testing.T) {
	// The provider's verdict comes back as a result, not an error, even
	// on a 403; the joint check is the caller's job.
	client, _ := newAuthClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"code":"jwt_auth_invalid_token","data":{"status":403}}`))
	}))

	result, err := client.Validate(context.Background(), "bad")
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if result.OK() {
		t.Error("Expected rejected result")
	}
	if result.Code != "jwt_auth_invalid_token" || result.Status != 403 {
		t.Errorf("Unexpected result %+v", result)
	}
}

func TestValidationResult_JointCheck(t *testing.T) {
	tests := []struct {
		code   string
		status int
		ok     bool
	}{
		{ValidTokenCode, 200, true},
		{ValidTokenCode, 403, false},
		{"jwt_auth_invalid_token", 200, false},
		{"", 200, false},
	}
	for _, tt := range tests {
		r := &ValidationResult{Code: tt.code, Status: tt.status}
		if r.OK() != tt.ok {
			t.Errorf("OK() for (%q, %d) = %v, want %v", tt.code, tt.status, r.OK(), tt.ok)
		}
	}
}

func TestValidate_MalformedBody(t *testing.T) {
	client, _ := newAuthClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))

	_, err := client.Validate(context.Background(), "tok")
	apiErr, ok := apperrors.AsAPIError(err)
	if !ok {
		t.Fatalf("Expected APIError, got %v", err)
	}
	if apiErr.Kind != apperrors.KindMalformed {
		t.Errorf("Expected malformed kind, got %q", apiErr.Kind)
	}
}

func TestRegister_Success(t *testing.T) {
	client, _ := newAuthClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/wp-json/auth/v1/register" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"success":true,"message":"created","user":{"id":7,"username":"bob","display_name":"Bob"}}`))
	}))

	resp, err := client.Register(context.Background(), RegisterCredentials{
		Username: "bob", Email: "bob@example.com", Password: "secret1",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if resp.User.ID != 7 {
		t.Errorf("Expected user id 7, got %d", resp.User.ID)
	}
}

func TestRegister_SuccessFlagAlone_IsFailure(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"success without user", `{"success":true,"message":"ok"}`},
		{"user without success", `{"success":false,"user":{"id":7}}`},
		{"user with zero id", `{"success":true,"user":{"id":0}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newAuthClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))

			_, err := client.Register(context.Background(), RegisterCredentials{
				Username: "bob", Email: "b@e.com", Password: "secret1",
			})
			apiErr, ok := apperrors.AsAPIError(err)
			if !ok {
				t.Fatalf("Expected APIError, got %v", err)
			}
			if apiErr.Code != "registration_failed" {
				t.Errorf("Expected registration_failed, got %q", apiErr.Code)
			}
		})
	}
}

func TestProfile_Bearer(t *testing.T) {
	client, _ := newAuthClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("Expected bearer header, got %q", got)
		}
		w.Write([]byte(`{"id":1,"username":"bob","email":"bob@example.com","roles":["subscriber"]}`))
	}))

	user, err := client.Profile(context.Background(), "tok")
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if user.Username != "bob" || len(user.Roles) != 1 {
		t.Errorf("Unexpected user %+v", user)
	}
}

func TestUpdateProfile_RequiresUserID(t *testing.T) {
	client, _ := newAuthClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("Expected PUT, got %s", r.Method)
		}
		w.Write([]byte(`{}`))
	}))

	_, err := client.UpdateProfile(context.Background(), "tok", UpdateProfileData{Email: "b@e.com"})
	if err == nil {
		t.Fatal("Expected error for empty user in update response")
	}
}

func TestChangePassword_ProviderError(t *testing.T) {
	client, _ := newAuthClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"code":"incorrect_password","message":"Current password is incorrect."}`))
	}))

	_, err := client.ChangePassword(context.Background(), "tok", ChangePasswordData{
		CurrentPassword: "wrong", NewPassword: "newpass1",
	})
	apiErr, ok := apperrors.AsAPIError(err)
	if !ok {
		t.Fatalf("Expected APIError, got %v", err)
	}
	if apiErr.Code != "incorrect_password" {
		t.Errorf("Expected provider code, got %q", apiErr.Code)
	}
}
