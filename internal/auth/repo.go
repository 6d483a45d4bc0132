package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/krsx/book-api/internal/shared"
)

// Repository defines the credential store the auth module depends on.
type Repository interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	Create(ctx context.Context, params CreateUserParams) (*User, error)
	SetVerified(ctx context.Context, uid uuid.UUID, verified bool) error
	SetPasswordHash(ctx context.Context, uid uuid.UUID, hash string) error
}

// CreateUserParams carries the fields persisted on signup.
type CreateUserParams struct {
	Username     string
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const userColumns = `uid, username, email, first_name, last_name, password_hash, role, is_verified, created_at, updated_at`

func scanUser(row pgx.Row) (*User, error) {
	var user User
	err := row.Scan(
		&user.UID,
		&user.Username,
		&user.Email,
		&user.FirstName,
		&user.LastName,
		&user.PasswordHash,
		&user.Role,
		&user.IsVerified,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// FindByEmail fetches a user by email.
func (r *PGRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

// Create persists a new unverified user with the default role. A duplicate
// email surfaces as ErrUserAlreadyExists via the unique constraint.
func (r *PGRepository) Create(ctx context.Context, params CreateUserParams) (*User, error) {
	now := time.Now().UTC()
	row := r.pool.QueryRow(ctx,
		`INSERT INTO users (uid, username, email, first_name, last_name, password_hash, role, is_verified, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, false, $8, $8)
		 RETURNING `+userColumns,
		uuid.New(), params.Username, params.Email, params.FirstName, params.LastName,
		params.PasswordHash, RoleUser, now)
	user, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, shared.ErrUserAlreadyExists
		}
		return nil, err
	}
	return user, nil
}

// SetVerified flips the verification flag.
func (r *PGRepository) SetVerified(ctx context.Context, uid uuid.UUID, verified bool) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET is_verified = $1, updated_at = $2 WHERE uid = $3`,
		verified, time.Now().UTC(), uid)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrUserNotFound
	}
	return nil
}

// SetPasswordHash overwrites the stored password hash.
func (r *PGRepository) SetPasswordHash(ctx context.Context, uid uuid.UUID, hash string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET password_hash = $1, updated_at = $2 WHERE uid = $3`,
		hash, time.Now().UTC(), uid)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrUserNotFound
	}
	return nil
}

var _ Repository = (*PGRepository)(nil)
