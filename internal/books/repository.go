package books

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/krsx/book-api/internal/shared"
)

// RepositoryPort defines data access methods for books.
type RepositoryPort interface {
	List(ctx context.Context) ([]Book, error)
	ListByUser(ctx context.Context, userUID uuid.UUID) ([]Book, error)
	Get(ctx context.Context, uid uuid.UUID) (*Book, error)
	Create(ctx context.Context, book *Book) (*Book, error)
	Update(ctx context.Context, book *Book) (*Book, error)
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

const bookColumns = `uid, title, author, publisher, published_date, page_count, language, user_uid, created_at, updated_at`

func scanBook(row pgx.Row) (*Book, error) {
	var book Book
	err := row.Scan(
		&book.UID,
		&book.Title,
		&book.Author,
		&book.Publisher,
		&book.PublishedDate,
		&book.PageCount,
		&book.Language,
		&book.UserUID,
		&book.CreatedAt,
		&book.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrBookNotFound
		}
		return nil, err
	}
	return &book, nil
}

func collectBooks(rows pgx.Rows) ([]Book, error) {
	defer rows.Close()
	var items []Book
	for rows.Next() {
		var book Book
		if err := rows.Scan(
			&book.UID,
			&book.Title,
			&book.Author,
			&book.Publisher,
			&book.PublishedDate,
			&book.PageCount,
			&book.Language,
			&book.UserUID,
			&book.CreatedAt,
			&book.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, book)
	}
	return items, rows.Err()
}

// List returns all books, most recently updated first.
func (r *Repository) List(ctx context.Context) ([]Book, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+bookColumns+` FROM books ORDER BY updated_at DESC`)
	if err != nil {
		return nil, err
	}
	return collectBooks(rows)
}

// ListByUser returns the books submitted by one user, newest first.
func (r *Repository) ListByUser(ctx context.Context, userUID uuid.UUID) ([]Book, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+bookColumns+` FROM books WHERE user_uid = $1 ORDER BY created_at DESC`, userUID)
	if err != nil {
		return nil, err
	}
	return collectBooks(rows)
}

// Get fetches one book by its identifier.
func (r *Repository) Get(ctx context.Context, uid uuid.UUID) (*Book, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+bookColumns+` FROM books WHERE uid = $1`, uid)
	return scanBook(row)
}

// Create persists a new book.
func (r *Repository) Create(ctx context.Context, book *Book) (*Book, error) {
	now := time.Now().UTC()
	row := r.pool.QueryRow(ctx,
		`INSERT INTO books (uid, title, author, publisher, published_date, page_count, language, user_uid, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
		 RETURNING `+bookColumns,
		uuid.New(), book.Title, book.Author, book.Publisher, book.PublishedDate,
		book.PageCount, book.Language, book.UserUID, now)
	return scanBook(row)
}

// Update overwrites the mutable fields of a book.
func (r *Repository) Update(ctx context.Context, book *Book) (*Book, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE books
		 SET title = $1, author = $2, publisher = $3, published_date = $4, page_count = $5, language = $6, updated_at = $7
		 WHERE uid = $8
		 RETURNING `+bookColumns,
		book.Title, book.Author, book.Publisher, book.PublishedDate,
		book.PageCount, book.Language, time.Now().UTC(), book.UID)
	return scanBook(row)
}

// Delete removes a book.
func (r *Repository) Delete(ctx context.Context, uid uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM books WHERE uid = $1`, uid)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrBookNotFound
	}
	return nil
}

var _ RepositoryPort = (*Repository)(nil)
