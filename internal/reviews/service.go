package reviews

import (
	"context"

	"github.com/google/uuid"

	"github.com/krsx/book-api/internal/auth"
)

// BookFinder confirms the book a review attaches to exists.
type BookFinder interface {
	BookExists(ctx context.Context, uid uuid.UUID) error
}

// UserFinder resolves the review author from the token's email claim.
type UserFinder interface {
	FindByEmail(ctx context.Context, email string) (*auth.User, error)
}

// Service handles review business logic.
type Service struct {
	repo  RepositoryPort
	books BookFinder
	users UserFinder
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, books BookFinder, users UserFinder) *Service {
	return &Service{repo: repo, books: books, users: users}
}

// CreateReviewParams carries the fields accepted when adding a review.
type CreateReviewParams struct {
	Rating     int
	ReviewText string
}

// Add attaches a new review to a book on behalf of the user behind the
// email claim. Missing book or user fail with their respective not-found
// errors before any write.
func (s *Service) Add(ctx context.Context, userEmail string, bookUID uuid.UUID, params CreateReviewParams) (*Review, error) {
	if err := s.books.BookExists(ctx, bookUID); err != nil {
		return nil, err
	}
	user, err := s.users.FindByEmail(ctx, userEmail)
	if err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, &Review{
		Rating:     params.Rating,
		ReviewText: params.ReviewText,
		UserUID:    user.UID,
		BookUID:    bookUID,
	})
}

// List returns all reviews.
func (s *Service) List(ctx context.Context) ([]Review, error) {
	return s.repo.List(ctx)
}

// Get fetches one review.
func (s *Service) Get(ctx context.Context, uid uuid.UUID) (*Review, error) {
	return s.repo.Get(ctx, uid)
}

// Delete removes a review after resolving the requesting user.
func (s *Service) Delete(ctx context.Context, uid uuid.UUID, userEmail string) error {
	if _, err := s.users.FindByEmail(ctx, userEmail); err != nil {
		return err
	}
	if _, err := s.repo.Get(ctx, uid); err != nil {
		return err
	}
	return s.repo.Delete(ctx, uid)
}
