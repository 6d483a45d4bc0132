package books

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/krsx/book-api/internal/auth"
	"github.com/krsx/book-api/internal/platform/httpx"
	"github.com/krsx/book-api/internal/shared"
)

const dateLayout = "2006-01-02"

// Handler wires HTTP endpoints for the book catalog.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	authmw    auth.Middleware
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, authmw auth.Middleware) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		authmw:    authmw,
		validator: validator.New(),
	}
}

// MountRoutes registers book routes. Every endpoint requires a verified
// account holding one of the two roles.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Use(h.authmw.RequireToken(auth.AccessToken), h.authmw.RequireRoles(auth.RoleAdmin, auth.RoleUser))
	r.Get("/", h.listBooks)
	r.Post("/", h.createBook)
	r.Get("/user/{user_uid}", h.listUserBooks)
	r.Get("/{book_uid}", h.getBook)
	r.Patch("/{book_uid}", h.updateBook)
	r.Delete("/{book_uid}", h.deleteBook)
}

type createBookRequest struct {
	Title         string `json:"title" validate:"required"`
	Author        string `json:"author" validate:"required"`
	Publisher     string `json:"publisher" validate:"required"`
	PublishedDate string `json:"published_date" validate:"required,datetime=2006-01-02"`
	PageCount     int    `json:"page_count" validate:"required,gt=0"`
	Language      string `json:"language" validate:"required"`
}

type updateBookRequest struct {
	Title         *string `json:"title"`
	Author        *string `json:"author"`
	Publisher     *string `json:"publisher"`
	PublishedDate *string `json:"published_date" validate:"omitempty,datetime=2006-01-02"`
	PageCount     *int    `json:"page_count" validate:"omitempty,gt=0"`
	Language      *string `json:"language"`
}

func (h *Handler) listBooks(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list books", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, items)
}

func (h *Handler) listUserBooks(w http.ResponseWriter, r *http.Request) {
	userUID, err := uuid.Parse(chi.URLParam(r, "user_uid"))
	if err != nil {
		httpx.RespondError(w, shared.ErrUserNotFound)
		return
	}
	items, err := h.service.ListByUser(r.Context(), userUID)
	if err != nil {
		h.logger.Error("list user books", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, items)
}

func (h *Handler) createBook(w http.ResponseWriter, r *http.Request) {
	var req createBookRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, shared.ErrValidation)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, shared.ErrValidation)
		return
	}
	claims := auth.ClaimsFromContext(r.Context())
	ownerUID, err := uuid.Parse(claims.User.UserUID)
	if err != nil {
		httpx.RespondError(w, shared.ErrInvalidToken)
		return
	}
	published, err := time.Parse(dateLayout, req.PublishedDate)
	if err != nil {
		httpx.RespondError(w, shared.ErrValidation)
		return
	}
	book, err := h.service.Create(r.Context(), CreateBookParams{
		Title:         req.Title,
		Author:        req.Author,
		Publisher:     req.Publisher,
		PublishedDate: published,
		PageCount:     req.PageCount,
		Language:      req.Language,
	}, ownerUID)
	if err != nil {
		h.logger.Error("create book", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, book)
}

func (h *Handler) getBook(w http.ResponseWriter, r *http.Request) {
	uid, err := uuid.Parse(chi.URLParam(r, "book_uid"))
	if err != nil {
		httpx.RespondError(w, shared.ErrBookNotFound)
		return
	}
	detail, err := h.service.GetDetail(r.Context(), uid)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, detail)
}

func (h *Handler) updateBook(w http.ResponseWriter, r *http.Request) {
	uid, err := uuid.Parse(chi.URLParam(r, "book_uid"))
	if err != nil {
		httpx.RespondError(w, shared.ErrBookNotFound)
		return
	}
	var req updateBookRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, shared.ErrValidation)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, shared.ErrValidation)
		return
	}
	params := UpdateBookParams{
		Title:     req.Title,
		Author:    req.Author,
		Publisher: req.Publisher,
		PageCount: req.PageCount,
		Language:  req.Language,
	}
	if req.PublishedDate != nil {
		published, err := time.Parse(dateLayout, *req.PublishedDate)
		if err != nil {
			httpx.RespondError(w, shared.ErrValidation)
			return
		}
		params.PublishedDate = &published
	}
	book, err := h.service.Update(r.Context(), uid, params)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, book)
}

func (h *Handler) deleteBook(w http.ResponseWriter, r *http.Request) {
	uid, err := uuid.Parse(chi.URLParam(r, "book_uid"))
	if err != nil {
		httpx.RespondError(w, shared.ErrBookNotFound)
		return
	}
	if err := h.service.Delete(r.Context(), uid); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
