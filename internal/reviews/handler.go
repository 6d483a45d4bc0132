package reviews

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/krsx/book-api/internal/auth"
	"github.com/krsx/book-api/internal/platform/httpx"
	"github.com/krsx/book-api/internal/shared"
)

// Handler wires HTTP endpoints for book reviews.
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

// MountRoutes registers review routes behind the access-token and role gate.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Use(h.authmw.RequireToken(auth.AccessToken), h.authmw.RequireRoles(auth.RoleAdmin, auth.RoleUser))
	r.Get("/", h.listReviews)
	r.Post("/book/{book_uid}", h.addReview)
	r.Get("/{review_uid}", h.getReview)
	r.Delete("/{review_uid}", h.deleteReview)
}

type createReviewRequest struct {
	Rating     int    `json:"rating" validate:"required,gte=1,lte=5"`
	ReviewText string `json:"review_text" validate:"required"`
}

func (h *Handler) addReview(w http.ResponseWriter, r *http.Request) {
	bookUID, err := uuid.Parse(chi.URLParam(r, "book_uid"))
	if err != nil {
		httpx.RespondError(w, shared.ErrBookNotFound)
		return
	}
	var req createReviewRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, shared.ErrValidation)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, shared.ErrValidation)
		return
	}
	claims := auth.ClaimsFromContext(r.Context())
	review, err := h.service.Add(r.Context(), claims.User.Email, bookUID, CreateReviewParams{
		Rating:     req.Rating,
		ReviewText: req.ReviewText,
	})
	if err != nil {
		h.logger.Error("add review", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, review)
}

func (h *Handler) listReviews(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list reviews", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, items)
}

func (h *Handler) getReview(w http.ResponseWriter, r *http.Request) {
	uid, err := uuid.Parse(chi.URLParam(r, "review_uid"))
	if err != nil {
		httpx.RespondError(w, shared.ErrReviewNotFound)
		return
	}
	review, err := h.service.Get(r.Context(), uid)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, review)
}

func (h *Handler) deleteReview(w http.ResponseWriter, r *http.Request) {
	uid, err := uuid.Parse(chi.URLParam(r, "review_uid"))
	if err != nil {
		httpx.RespondError(w, shared.ErrReviewNotFound)
		return
	}
	claims := auth.ClaimsFromContext(r.Context())
	if err := h.service.Delete(r.Context(), uid, claims.User.Email); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
