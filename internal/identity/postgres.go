package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/riefer02/astro-wordpress-starter/config"
	apperrors "github.com/riefer02/astro-wordpress-starter/pkg/errors"
)

// DB wraps a PostgreSQL connection pool.
type DB struct {
	Pool *pgxpool.Pool
}

// NewDB creates a connection pool and verifies connectivity.
func NewDB(cfg *config.DatabaseConfig) (*DB, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxOpenConns)
	poolConfig.MinConns = int32(cfg.MaxIdleConns)
	poolConfig.MaxConnLifetime = cfg.ConnMaxLifetime
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{Pool: pool}, nil
}

// Close closes the pool.
func (db *DB) Close() {
	if db.Pool != nil {
		db.Pool.Close()
	}
}

// Health checks database connectivity.
func (db *DB) Health(ctx context.Context) error {
	return db.Pool.Ping(ctx)
}

// PostgresUserRepository stores users in PostgreSQL.
type PostgresUserRepository struct {
	db *DB
}

// NewPostgresUserRepository creates the repository.
func NewPostgresUserRepository(db *DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

const userColumns = `id, username, email, first_name, last_name, display_name, password_hash, roles, registered_at`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.FirstName,
		&u.LastName,
		&u.DisplayName,
		&u.PasswordHash,
		&u.Roles,
		&u.RegisteredAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a user and fills in its assigned ID.
func (r *PostgresUserRepository) Create(ctx context.Context, u *User) error {
	if len(u.Roles) == 0 {
		u.Roles = []string{"subscriber"}
	}
	err := r.db.Pool.QueryRow(ctx, `
		INSERT INTO users (username, email, first_name, last_name, display_name, password_hash, roles, registered_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		u.Username, u.Email, u.FirstName, u.LastName, u.DisplayName,
		u.PasswordHash, u.Roles, u.RegisteredAt,
	).Scan(&u.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrUserAlreadyExists
		}
		return apperrors.Wrap(err, "failed to create user")
	}
	return nil
}

// GetByID fetches a user by primary key.
func (r *PostgresUserRepository) GetByID(ctx context.Context, id int64) (*User, error) {
	u, err := scanUser(r.db.Pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get user by id")
	}
	return u, nil
}

// GetByLogin fetches a user by username or email.
func (r *PostgresUserRepository) GetByLogin(ctx context.Context, login string) (*User, error) {
	u, err := scanUser(r.db.Pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1 OR email = $1`, login))
	if err != nil {
		if isNoRows(err) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get user by login")
	}
	return u, nil
}

// UpdateProfile writes the non-empty patch fields and returns the updated
// row. COALESCE with NULLIF keeps untouched columns as they were.
func (r *PostgresUserRepository) UpdateProfile(ctx context.Context, id int64, patch ProfilePatch) (*User, error) {
	u, err := scanUser(r.db.Pool.QueryRow(ctx, `
		UPDATE users SET
			first_name   = COALESCE(NULLIF($2, ''), first_name),
			last_name    = COALESCE(NULLIF($3, ''), last_name),
			display_name = COALESCE(NULLIF($4, ''), display_name),
			email        = COALESCE(NULLIF($5, ''), email)
		WHERE id = $1
		RETURNING `+userColumns,
		id, patch.FirstName, patch.LastName, patch.DisplayName, patch.Email,
	))
	if err != nil {
		if isNoRows(err) {
			return nil, apperrors.ErrUserNotFound
		}
		if isUniqueViolation(err) {
			return nil, apperrors.ErrUserAlreadyExists
		}
		return nil, apperrors.Wrap(err, "failed to update profile")
	}
	return u, nil
}

// UpdatePassword replaces the stored password hash.
func (r *PostgresUserRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	tag, err := r.db.Pool.Exec(ctx,
		`UPDATE users SET password_hash = $2 WHERE id = $1`, id, passwordHash)
	if err != nil {
		return apperrors.Wrap(err, "failed to update password")
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
