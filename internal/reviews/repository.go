package reviews

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/krsx/book-api/internal/shared"
)

// RepositoryPort defines data access methods for reviews.
type RepositoryPort interface {
	List(ctx context.Context) ([]Review, error)
	ListByBook(ctx context.Context, bookUID uuid.UUID) ([]Review, error)
	Get(ctx context.Context, uid uuid.UUID) (*Review, error)
	Create(ctx context.Context, review *Review) (*Review, error)
	Delete(ctx context.Context, uid uuid.UUID) error
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const reviewColumns = `uid, rating, review_text, user_uid, book_uid, created_at, updated_at`

func scanReview(row pgx.Row) (*Review, error) {
	var review Review
	err := row.Scan(
		&review.UID,
		&review.Rating,
		&review.ReviewText,
		&review.UserUID,
		&review.BookUID,
		&review.CreatedAt,
		&review.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrReviewNotFound
		}
		return nil, err
	}
	return &review, nil
}

func collectReviews(rows pgx.Rows) ([]Review, error) {
	defer rows.Close()
	var items []Review
	for rows.Next() {
		var review Review
		if err := rows.Scan(
			&review.UID,
			&review.Rating,
			&review.ReviewText,
			&review.UserUID,
			&review.BookUID,
			&review.CreatedAt,
			&review.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, review)
	}
	return items, rows.Err()
}

// List returns all reviews, newest first.
func (r *Repository) List(ctx context.Context) ([]Review, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+reviewColumns+` FROM reviews ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	return collectReviews(rows)
}

// ListByBook returns the reviews attached to one book, newest first.
func (r *Repository) ListByBook(ctx context.Context, bookUID uuid.UUID) ([]Review, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+reviewColumns+` FROM reviews WHERE book_uid = $1 ORDER BY created_at DESC`, bookUID)
	if err != nil {
		return nil, err
	}
	return collectReviews(rows)
}

// Get fetches one review.
func (r *Repository) Get(ctx context.Context, uid uuid.UUID) (*Review, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+reviewColumns+` FROM reviews WHERE uid = $1`, uid)
	return scanReview(row)
}

// Create persists a new review.
func (r *Repository) Create(ctx context.Context, review *Review) (*Review, error) {
	now := time.Now().UTC()
	row := r.pool.QueryRow(ctx,
		`INSERT INTO reviews (uid, rating, review_text, user_uid, book_uid, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $6)
		 RETURNING `+reviewColumns,
		uuid.New(), review.Rating, review.ReviewText, review.UserUID, review.BookUID, now)
	return scanReview(row)
}

// Delete removes a review.
func (r *Repository) Delete(ctx context.Context, uid uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM reviews WHERE uid = $1`, uid)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrReviewNotFound
	}
	return nil
}

var _ RepositoryPort = (*Repository)(nil)
