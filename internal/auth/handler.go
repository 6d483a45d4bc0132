package auth

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/krsx/book-api/internal/platform/httpx"
	"github.com/krsx/book-api/internal/shared"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	mw        Middleware
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, mw Middleware) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		mw:        mw,
		validator: validator.New(),
	}
}

// MountRoutes registers auth routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/signup", h.signup)
	r.Post("/login", h.login)
	r.Get("/verify_email/{token}", h.verifyEmail)
	r.Post("/send_email", h.sendEmail)
	r.Post("/password_reset", h.passwordReset)
	r.Post("/password_reset_confirm/{token}", h.passwordResetConfirm)

	r.Group(func(r chi.Router) {
		r.Use(h.mw.RequireToken(RefreshToken))
		r.Get("/refresh_token", h.refreshToken)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.mw.RequireToken(AccessToken))
		r.Get("/logout", h.logout)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.mw.RequireToken(AccessToken), h.mw.RequireRoles(RoleAdmin, RoleUser))
		r.Get("/status", h.status)
	})
}

// Password length is capped at 72 bytes, the maximum input bcrypt accepts.
type signupRequest struct {
	Username  string `json:"username" validate:"required,max=50"`
	Email     string `json:"email" validate:"required,email,max=50"`
	Password  string `json:"password" validate:"required,min=8,max=72"`
	FirstName string `json:"first_name" validate:"max=50"`
	LastName  string `json:"last_name" validate:"max=50"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email,max=50"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type sendEmailRequest struct {
	Addresses []string `json:"addresses" validate:"required,min=1,dive,email"`
}

type passwordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type passwordResetConfirmRequest struct {
	NewPassword     string `json:"new_password" validate:"required,min=8,max=72"`
	ConfirmPassword string `json:"confirm_password" validate:"required,min=8,max=72"`
}

// userPayload is the outward shape of an account in auth responses. The
// password hash never appears here.
type userPayload struct {
	Email    string `json:"email"`
	UID      string `json:"uid"`
	Role     string `json:"role"`
	Verified bool   `json:"verified"`
}

func toUserPayload(user *User) userPayload {
	return userPayload{
		Email:    user.Email,
		UID:      user.UID.String(),
		Role:     string(user.Role),
		Verified: user.IsVerified,
	}
}

func (h *Handler) decodeValid(r *http.Request, target any) error {
	if err := httpx.DecodeJSON(r, target); err != nil {
		return shared.ErrValidation
	}
	if err := h.validator.Struct(target); err != nil {
		return shared.ErrValidation
	}
	return nil
}

func (h *Handler) signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := h.decodeValid(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	user, err := h.service.Signup(r.Context(), SignupParams{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{
		"message": "User created successfully. Please check your email to verify your account.",
		"user":    toUserPayload(user),
	})
}

func (h *Handler) verifyEmail(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.VerifyEmail(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"message": "Email verified successfully. You can now log in.",
		"user":    toUserPayload(user),
	})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := h.decodeValid(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	result, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"message":       "Login successful",
		"access_token":  result.AccessToken,
		"refresh_token": result.RefreshToken,
		"user":          toUserPayload(result.User),
	})
}

func (h *Handler) refreshToken(w http.ResponseWriter, r *http.Request) {
	token, err := h.service.Refresh(r.Context(), ClaimsFromContext(r.Context()))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"access_token": token})
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Logout(r.Context(), ClaimsFromContext(r.Context())); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"message": "Logged out successfully"})
}

func (h *Handler) status(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		httpx.RespondError(w, shared.ErrInvalidToken)
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}

func (h *Handler) sendEmail(w http.ResponseWriter, r *http.Request) {
	var req sendEmailRequest
	if err := h.decodeValid(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.SendTestEmail(r.Context(), req.Addresses); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"message": "Email sent successfully"})
}

func (h *Handler) passwordReset(w http.ResponseWriter, r *http.Request) {
	var req passwordResetRequest
	if err := h.decodeValid(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	link, err := h.service.RequestPasswordReset(r.Context(), req.Email)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"message":           "Password reset email sent successfully. Please check your email.",
		"verification_link": link,
	})
}

func (h *Handler) passwordResetConfirm(w http.ResponseWriter, r *http.Request) {
	var req passwordResetConfirmRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, shared.ErrValidation)
		return
	}
	// The mismatch check runs before schema validation and token decoding.
	if req.NewPassword != req.ConfirmPassword {
		httpx.RespondError(w, shared.ErrNewPasswordNotMatch)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, shared.ErrValidation)
		return
	}
	user, err := h.service.ConfirmPasswordReset(r.Context(), chi.URLParam(r, "token"), req.NewPassword, req.ConfirmPassword)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"message": "Password reset successfully. You can now log in with your new password.",
		"user":    toUserPayload(user),
	})
}
