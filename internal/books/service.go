package books

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/krsx/book-api/internal/reviews"
)

// ReviewLister loads the reviews attached to a book for the detail view.
type ReviewLister interface {
	ListByBook(ctx context.Context, bookUID uuid.UUID) ([]reviews.Review, error)
}

// Service handles book business logic.
type Service struct {
	repo    RepositoryPort
	reviews ReviewLister
}

// NewService builds a Service instance. The review lister may be nil, in
// which case detail responses carry an empty reviews list.
func NewService(repo RepositoryPort, reviewLister ReviewLister) *Service {
	return &Service{repo: repo, reviews: reviewLister}
}

// CreateBookParams carries the fields accepted on creation.
type CreateBookParams struct {
	Title         string
	Author        string
	Publisher     string
	PublishedDate time.Time
	PageCount     int
	Language      string
}

// UpdateBookParams carries the optional fields of a partial update. Nil
// pointers leave the stored value untouched.
type UpdateBookParams struct {
	Title         *string
	Author        *string
	Publisher     *string
	PublishedDate *time.Time
	PageCount     *int
	Language      *string
}

// List returns all books.
func (s *Service) List(ctx context.Context) ([]Book, error) {
	return s.repo.List(ctx)
}

// ListByUser returns one user's books.
func (s *Service) ListByUser(ctx context.Context, userUID uuid.UUID) ([]Book, error) {
	return s.repo.ListByUser(ctx, userUID)
}

// Get fetches one book.
func (s *Service) Get(ctx context.Context, uid uuid.UUID) (*Book, error) {
	return s.repo.Get(ctx, uid)
}

// BookExists reports whether a book exists, returning ErrBookNotFound when
// it does not.
func (s *Service) BookExists(ctx context.Context, uid uuid.UUID) error {
	_, err := s.repo.Get(ctx, uid)
	return err
}

// BookDetail is a book together with its reviews.
type BookDetail struct {
	Book
	Reviews []reviews.Review `json:"reviews"`
}

// GetDetail fetches one book with its reviews attached.
func (s *Service) GetDetail(ctx context.Context, uid uuid.UUID) (*BookDetail, error) {
	book, err := s.repo.Get(ctx, uid)
	if err != nil {
		return nil, err
	}
	detail := &BookDetail{Book: *book, Reviews: []reviews.Review{}}
	if s.reviews != nil {
		items, err := s.reviews.ListByBook(ctx, uid)
		if err != nil {
			return nil, err
		}
		if items != nil {
			detail.Reviews = items
		}
	}
	return detail, nil
}

// Create persists a new book owned by the given user.
func (s *Service) Create(ctx context.Context, params CreateBookParams, ownerUID uuid.UUID) (*Book, error) {
	return s.repo.Create(ctx, &Book{
		Title:         params.Title,
		Author:        params.Author,
		Publisher:     params.Publisher,
		PublishedDate: params.PublishedDate,
		PageCount:     params.PageCount,
		Language:      params.Language,
		UserUID:       ownerUID,
	})
}

// Update applies a partial update to an existing book.
func (s *Service) Update(ctx context.Context, uid uuid.UUID, params UpdateBookParams) (*Book, error) {
	book, err := s.repo.Get(ctx, uid)
	if err != nil {
		return nil, err
	}
	if params.Title != nil {
		book.Title = *params.Title
	}
	if params.Author != nil {
		book.Author = *params.Author
	}
	if params.Publisher != nil {
		book.Publisher = *params.Publisher
	}
	if params.PublishedDate != nil {
		book.PublishedDate = *params.PublishedDate
	}
	if params.PageCount != nil {
		book.PageCount = *params.PageCount
	}
	if params.Language != nil {
		book.Language = *params.Language
	}
	return s.repo.Update(ctx, book)
}

// Delete removes a book.
func (s *Service) Delete(ctx context.Context, uid uuid.UUID) error {
	return s.repo.Delete(ctx, uid)
}
