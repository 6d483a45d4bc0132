package books_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/krsx/book-api/internal/auth"
	"github.com/krsx/book-api/internal/books"
	"github.com/krsx/book-api/internal/reviews"
	"github.com/krsx/book-api/internal/shared"
	_ "github.com/krsx/book-api/testing"
)

type stubUserRepo struct {
	user *auth.User
}

func (s *stubUserRepo) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	if s.user == nil || s.user.Email != email {
		return nil, shared.ErrUserNotFound
	}
	return s.user, nil
}

func (s *stubUserRepo) Create(ctx context.Context, params auth.CreateUserParams) (*auth.User, error) {
	return nil, shared.ErrUserAlreadyExists
}

func (s *stubUserRepo) SetVerified(ctx context.Context, uid uuid.UUID, verified bool) error {
	return nil
}

func (s *stubUserRepo) SetPasswordHash(ctx context.Context, uid uuid.UUID, hash string) error {
	return nil
}

type booksFixture struct {
	router chi.Router
	repo   *mockRepository
	token  string
	user   *auth.User
}

func newBooksFixture(t *testing.T, lister books.ReviewLister, seed ...*books.Book) booksFixture {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	codec, err := auth.NewTokenCodec(auth.CodecConfig{Secret: "test-secret", Algorithm: "HS256"})
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}
	user := &auth.User{
		UID:        uuid.New(),
		Username:   "reader",
		Email:      "reader@example.com",
		Role:       auth.RoleUser,
		IsVerified: true,
	}
	mw := auth.Middleware{
		Codec:     codec,
		Blocklist: auth.NewBlocklist(client, time.Hour),
		Repo:      &stubUserRepo{user: user},
	}
	token, err := codec.IssueToken(auth.SubjectClaims{
		Email:   user.Email,
		UserUID: user.UID.String(),
		Role:    string(user.Role),
	}, auth.AccessToken)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	repo := newMockRepository(seed...)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := books.NewHandler(logger, books.NewService(repo, lister), mw)
	router := chi.NewRouter()
	router.Route("/books", handler.MountRoutes)
	return booksFixture{router: router, repo: repo, token: token, user: user}
}

func (f booksFixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+f.token)
	res := httptest.NewRecorder()
	f.router.ServeHTTP(res, req)
	return res
}

func TestCreateBookEndpoint(t *testing.T) {
	f := newBooksFixture(t, nil)

	res := f.do(t, http.MethodPost, "/books/",
		`{"title":"The Go Programming Language","author":"Donovan","publisher":"Addison-Wesley","published_date":"2015-10-26","page_count":380,"language":"en"}`)
	if res.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", res.Code, res.Body.String())
	}
	var book books.Book
	if err := json.Unmarshal(res.Body.Bytes(), &book); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if book.UserUID != f.user.UID {
		t.Fatalf("expected owner %s, got %s", f.user.UID, book.UserUID)
	}
}

func TestCreateBookEndpointBadDate(t *testing.T) {
	f := newBooksFixture(t, nil)

	res := f.do(t, http.MethodPost, "/books/",
		`{"title":"x","author":"y","publisher":"z","published_date":"2015-13-40","page_count":10,"language":"en"}`)
	if res.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", res.Code, res.Body.String())
	}
}

func TestUpdateBookEndpointBadDate(t *testing.T) {
	owner := uuid.New()
	existing := sampleBook(owner)
	f := newBooksFixture(t, nil, existing)

	res := f.do(t, http.MethodPatch, "/books/"+existing.UID.String(),
		`{"published_date":"not-a-date"}`)
	if res.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", res.Code, res.Body.String())
	}
}

func TestGetBookEndpointReturnsDetail(t *testing.T) {
	owner := uuid.New()
	existing := sampleBook(owner)
	lister := &stubReviewLister{byBook: map[uuid.UUID][]reviews.Review{
		existing.UID: {{UID: uuid.New(), Rating: 5, ReviewText: "excellent", BookUID: existing.UID}},
	}}
	f := newBooksFixture(t, lister, existing)

	res := f.do(t, http.MethodGet, "/books/"+existing.UID.String(), "")
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}
	var body struct {
		Title   string           `json:"title"`
		Reviews []reviews.Review `json:"reviews"`
	}
	if err := json.Unmarshal(res.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Title != existing.Title {
		t.Fatalf("unexpected title %q", body.Title)
	}
	if len(body.Reviews) != 1 || body.Reviews[0].ReviewText != "excellent" {
		t.Fatalf("expected the book's reviews in the response, got %+v", body.Reviews)
	}
}

func TestGetBookEndpointEmptyReviews(t *testing.T) {
	owner := uuid.New()
	existing := sampleBook(owner)
	f := newBooksFixture(t, &stubReviewLister{}, existing)

	res := f.do(t, http.MethodGet, "/books/"+existing.UID.String(), "")
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}
	if !strings.Contains(res.Body.String(), `"reviews":[]`) {
		t.Fatalf("expected an empty reviews array, got %s", res.Body.String())
	}
}
