package books_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krsx/book-api/internal/books"
	"github.com/krsx/book-api/internal/reviews"
	"github.com/krsx/book-api/internal/shared"
	_ "github.com/krsx/book-api/testing"
)

type mockRepository struct {
	byUID map[uuid.UUID]*books.Book
	err   error
}

func newMockRepository(seed ...*books.Book) *mockRepository {
	repo := &mockRepository{byUID: make(map[uuid.UUID]*books.Book)}
	for _, b := range seed {
		repo.byUID[b.UID] = b
	}
	return repo
}

func (m *mockRepository) List(ctx context.Context) ([]books.Book, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([]books.Book, 0, len(m.byUID))
	for _, b := range m.byUID {
		out = append(out, *b)
	}
	return out, nil
}

func (m *mockRepository) ListByUser(ctx context.Context, userUID uuid.UUID) ([]books.Book, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []books.Book
	for _, b := range m.byUID {
		if b.UserUID == userUID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (m *mockRepository) Get(ctx context.Context, uid uuid.UUID) (*books.Book, error) {
	if m.err != nil {
		return nil, m.err
	}
	b, ok := m.byUID[uid]
	if !ok {
		return nil, shared.ErrBookNotFound
	}
	copied := *b
	return &copied, nil
}

func (m *mockRepository) Create(ctx context.Context, book *books.Book) (*books.Book, error) {
	if m.err != nil {
		return nil, m.err
	}
	book.UID = uuid.New()
	now := time.Now().UTC()
	book.CreatedAt = now
	book.UpdatedAt = now
	m.byUID[book.UID] = book
	copied := *book
	return &copied, nil
}

func (m *mockRepository) Update(ctx context.Context, book *books.Book) (*books.Book, error) {
	if m.err != nil {
		return nil, m.err
	}
	if _, ok := m.byUID[book.UID]; !ok {
		return nil, shared.ErrBookNotFound
	}
	book.UpdatedAt = time.Now().UTC()
	m.byUID[book.UID] = book
	copied := *book
	return &copied, nil
}

func (m *mockRepository) Delete(ctx context.Context, uid uuid.UUID) error {
	if m.err != nil {
		return m.err
	}
	if _, ok := m.byUID[uid]; !ok {
		return shared.ErrBookNotFound
	}
	delete(m.byUID, uid)
	return nil
}

func sampleBook(owner uuid.UUID) *books.Book {
	return &books.Book{
		UID:           uuid.New(),
		Title:         "The Go Programming Language",
		Author:        "Donovan and Kernighan",
		Publisher:     "Addison-Wesley",
		PublishedDate: time.Date(2015, 10, 26, 0, 0, 0, 0, time.UTC),
		PageCount:     380,
		Language:      "en",
		UserUID:       owner,
	}
}

func TestCreateBook(t *testing.T) {
	repo := newMockRepository()
	service := books.NewService(repo, nil)
	owner := uuid.New()

	book, err := service.Create(context.Background(), books.CreateBookParams{
		Title:         "The Go Programming Language",
		Author:        "Donovan and Kernighan",
		Publisher:     "Addison-Wesley",
		PublishedDate: time.Date(2015, 10, 26, 0, 0, 0, 0, time.UTC),
		PageCount:     380,
		Language:      "en",
	}, owner)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, book.UID)
	assert.Equal(t, owner, book.UserUID)
	assert.Equal(t, "The Go Programming Language", book.Title)
}

func TestListByUser(t *testing.T) {
	owner := uuid.New()
	other := uuid.New()
	repo := newMockRepository(sampleBook(owner), sampleBook(owner), sampleBook(other))
	service := books.NewService(repo, nil)

	mine, err := service.ListByUser(context.Background(), owner)
	require.NoError(t, err)
	assert.Len(t, mine, 2)
	for _, b := range mine {
		assert.Equal(t, owner, b.UserUID)
	}
}

type stubReviewLister struct {
	byBook map[uuid.UUID][]reviews.Review
}

func (s *stubReviewLister) ListByBook(ctx context.Context, bookUID uuid.UUID) ([]reviews.Review, error) {
	return s.byBook[bookUID], nil
}

func TestGetDetailIncludesReviews(t *testing.T) {
	owner := uuid.New()
	existing := sampleBook(owner)
	repo := newMockRepository(existing)
	lister := &stubReviewLister{byBook: map[uuid.UUID][]reviews.Review{
		existing.UID: {
			{UID: uuid.New(), Rating: 5, ReviewText: "excellent", BookUID: existing.UID},
			{UID: uuid.New(), Rating: 3, ReviewText: "fine", BookUID: existing.UID},
		},
	}}
	service := books.NewService(repo, lister)

	detail, err := service.GetDetail(context.Background(), existing.UID)
	require.NoError(t, err)
	assert.Equal(t, existing.Title, detail.Title)
	require.Len(t, detail.Reviews, 2)
	assert.Equal(t, existing.UID, detail.Reviews[0].BookUID)
}

func TestGetDetailWithoutReviews(t *testing.T) {
	owner := uuid.New()
	existing := sampleBook(owner)
	service := books.NewService(newMockRepository(existing), &stubReviewLister{})

	detail, err := service.GetDetail(context.Background(), existing.UID)
	require.NoError(t, err)
	// A book with no reviews still carries an empty list, never null.
	assert.NotNil(t, detail.Reviews)
	assert.Empty(t, detail.Reviews)
}

func TestGetDetailMissingBook(t *testing.T) {
	service := books.NewService(newMockRepository(), &stubReviewLister{})
	_, err := service.GetDetail(context.Background(), uuid.New())
	assert.ErrorIs(t, err, shared.ErrBookNotFound)
}

func TestBookExists(t *testing.T) {
	owner := uuid.New()
	existing := sampleBook(owner)
	service := books.NewService(newMockRepository(existing), nil)

	assert.NoError(t, service.BookExists(context.Background(), existing.UID))
	assert.ErrorIs(t, service.BookExists(context.Background(), uuid.New()), shared.ErrBookNotFound)
}

func TestUpdateBookPartial(t *testing.T) {
	owner := uuid.New()
	existing := sampleBook(owner)
	repo := newMockRepository(existing)
	service := books.NewService(repo, nil)

	title := "Updated Title"
	pages := 400
	updated, err := service.Update(context.Background(), existing.UID, books.UpdateBookParams{
		Title:     &title,
		PageCount: &pages,
	})
	require.NoError(t, err)
	assert.Equal(t, "Updated Title", updated.Title)
	assert.Equal(t, 400, updated.PageCount)
	// Untouched fields survive.
	assert.Equal(t, "Donovan and Kernighan", updated.Author)
	assert.Equal(t, owner, updated.UserUID)
}

func TestUpdateMissingBook(t *testing.T) {
	service := books.NewService(newMockRepository(), nil)
	title := "x"
	_, err := service.Update(context.Background(), uuid.New(), books.UpdateBookParams{Title: &title})
	assert.ErrorIs(t, err, shared.ErrBookNotFound)
}

func TestDeleteBook(t *testing.T) {
	owner := uuid.New()
	existing := sampleBook(owner)
	repo := newMockRepository(existing)
	service := books.NewService(repo, nil)

	require.NoError(t, service.Delete(context.Background(), existing.UID))
	_, err := service.Get(context.Background(), existing.UID)
	assert.ErrorIs(t, err, shared.ErrBookNotFound)
}

func TestDeleteMissingBook(t *testing.T) {
	service := books.NewService(newMockRepository(), nil)
	err := service.Delete(context.Background(), uuid.New())
	assert.ErrorIs(t, err, shared.ErrBookNotFound)
}
