// Package identity implements the companion auth plugin service: the
// WordPress-compatible token, validation, and account endpoints the site
// gateway talks to.
package identity

import (
	"context"
	"time"
)

// User is a stored account. PasswordHash is a PHC-formatted argon2id
// string and never leaves this package.
type User struct {
	ID           int64
	Username     string
	Email        string
	FirstName    string
	LastName     string
	DisplayName  string
	PasswordHash string
	Roles        []string
	RegisteredAt time.Time
}

// ProfilePatch carries the mutable profile fields. Empty strings mean
// "leave unchanged".
type ProfilePatch struct {
	FirstName   string
	LastName    string
	DisplayName string
	Email       string
}

// UserRepository is the persistence port for accounts.
type UserRepository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByLogin(ctx context.Context, login string) (*User, error)
	UpdateProfile(ctx context.Context, id int64, patch ProfilePatch) (*User, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
}
