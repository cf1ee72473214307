package identity

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/riefer02/astro-wordpress-starter/pkg/errors"
)

// Claims is the token payload. The nested data.user.id shape matches
// what the site gateway and the wider plugin ecosystem expect.
type Claims struct {
	jwt.RegisteredClaims
	Data ClaimsData `json:"data"`
}

// ClaimsData wraps the user reference inside the token.
type ClaimsData struct {
	User ClaimsUser `json:"user"`
}

// ClaimsUser identifies the token's subject account.
type ClaimsUser struct {
	ID int64 `json:"id"`
}

// TokenManager signs and validates HS256 bearer tokens.
type TokenManager struct {
	issuer string
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager creates a token manager. now defaults to time.Now when
// nil; tests inject a fixed clock.
func NewTokenManager(issuer, secret string, ttl time.Duration, now func() time.Time) *TokenManager {
	if now == nil {
		now = time.Now
	}
	return &TokenManager{
		issuer: issuer,
		secret: []byte(secret),
		ttl:    ttl,
		now:    now,
	}
}

// Issue creates a signed token for the given user.
func (m *TokenManager) Issue(userID int64) (string, error) {
	now := m.now().UTC()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
		Data: ClaimsData{User: ClaimsUser{ID: userID}},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", apperrors.Wrap(err, "failed to sign token")
	}
	return signed, nil
}

// Parse validates a token string and returns the subject user ID.
func (m *TokenManager) Parse(tokenString string) (int64, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now), jwt.WithIssuer(m.issuer))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, apperrors.ErrTokenExpired
		}
		return 0, apperrors.ErrTokenInvalid
	}
	if !token.Valid || claims.Data.User.ID == 0 {
		return 0, apperrors.ErrTokenInvalid
	}
	return claims.Data.User.ID, nil
}
