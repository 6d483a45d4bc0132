package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/krsx/book-api/internal/shared"
)

// Mailer dispatches emails asynchronously. Delivery is fire-and-forget: the
// orchestrator never blocks a response on it and consumes no acknowledgment.
type Mailer interface {
	Enqueue(ctx context.Context, to []string, subject, htmlBody string) error
}

// Service composes the codec, blocklist, credential store and mailer into
// the signup, login, refresh, logout, verification and password-reset flows.
type Service struct {
	repo      Repository
	codec     *TokenCodec
	actions   *ActionCodec
	blocklist *Blocklist
	mailer    Mailer
	logger    *slog.Logger

	// domain and basePath feed the links embedded in outbound emails.
	domain   string
	basePath string
}

// ServiceConfig collects the collaborators of a Service.
type ServiceConfig struct {
	Repo      Repository
	Codec     *TokenCodec
	Actions   *ActionCodec
	Blocklist *Blocklist
	Mailer    Mailer
	Logger    *slog.Logger
	Domain    string
	BasePath  string
}

// NewService constructs a Service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		repo:      cfg.Repo,
		codec:     cfg.Codec,
		actions:   cfg.Actions,
		blocklist: cfg.Blocklist,
		mailer:    cfg.Mailer,
		logger:    cfg.Logger,
		domain:    cfg.Domain,
		basePath:  cfg.BasePath,
	}
}

// SignupParams carries the signup request fields.
type SignupParams struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
}

const verificationEmailBody = `<h1>Verify Your Email</h1>
<p>Thank you for signing up! Please click the link below to verify your email address:</p>
<a href="%s">Verify Email</a>`

const passwordResetEmailBody = `<h1>Password Reset Request</h1>
<p>We received a request to reset your password. Please click the link below to reset your password:</p>
<a href="%s">Reset Password</a>`

// Signup registers a new unverified account and dispatches the verification
// email. A duplicate email is rejected before any write.
func (s *Service) Signup(ctx context.Context, params SignupParams) (*User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("auth: hash password: %w", err)
	}

	user, err := s.repo.Create(ctx, CreateUserParams{
		Username:     params.Username,
		Email:        params.Email,
		FirstName:    params.FirstName,
		LastName:     params.LastName,
		PasswordHash: string(hash),
	})
	if err != nil {
		return nil, err
	}

	token, err := s.actions.IssueActionToken(user.Email)
	if err != nil {
		return nil, err
	}
	link := s.link("verify_email", token)
	s.dispatch(ctx, []string{user.Email}, "Email Verification", fmt.Sprintf(verificationEmailBody, link))

	return user, nil
}

// VerifyEmail resolves an action token and flips the verification flag.
func (s *Service) VerifyEmail(ctx context.Context, token string) (*User, error) {
	email, err := s.actions.DecodeActionToken(token)
	if err != nil {
		return nil, shared.ErrInvalidToken
	}
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetVerified(ctx, user.UID, true); err != nil {
		return nil, err
	}
	user.IsVerified = true
	return user, nil
}

// LoginResult bundles the token pair issued on a successful login.
type LoginResult struct {
	User         *User
	AccessToken  string
	RefreshToken string
}

// Login verifies credentials and issues an access/refresh token pair. The
// failure is a single undifferentiated error regardless of whether the email
// exists or the password mismatched.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}

	subject := SubjectClaims{
		Email:   user.Email,
		UserUID: user.UID.String(),
		Role:    string(user.Role),
	}
	access, err := s.codec.IssueToken(subject, AccessToken)
	if err != nil {
		return nil, err
	}
	refresh, err := s.codec.IssueToken(subject, RefreshToken)
	if err != nil {
		return nil, err
	}
	return &LoginResult{User: user, AccessToken: access, RefreshToken: refresh}, nil
}

// Refresh issues a new access token from still-valid refresh claims.
func (s *Service) Refresh(ctx context.Context, claims *Claims) (string, error) {
	if claims == nil || claims.ExpiresAt == nil || !claims.ExpiresAt.After(time.Now()) {
		return "", shared.ErrInvalidToken
	}
	return s.codec.IssueToken(claims.User, AccessToken)
}

// Logout revokes the presented access token's jti.
func (s *Service) Logout(ctx context.Context, claims *Claims) error {
	if claims == nil || claims.ID == "" {
		return shared.ErrInvalidToken
	}
	return s.blocklist.Revoke(ctx, claims.ID)
}

// RequestPasswordReset issues an action token for the given email and
// dispatches the reset email. The email is deliberately not checked against
// the credential store, so the response never reveals whether an address is
// registered.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	token, err := s.actions.IssueActionToken(email)
	if err != nil {
		return "", err
	}
	link := s.link("password_reset_confirm", token)
	s.dispatch(ctx, []string{email}, "Reset Your Password", fmt.Sprintf(passwordResetEmailBody, link))
	return link, nil
}

// ConfirmPasswordReset checks the password pair, resolves the action token
// and overwrites the stored hash. The field comparison runs before any token
// decoding.
func (s *Service) ConfirmPasswordReset(ctx context.Context, token, newPassword, confirmPassword string) (*User, error) {
	if newPassword != confirmPassword {
		return nil, shared.ErrNewPasswordNotMatch
	}
	email, err := s.actions.DecodeActionToken(token)
	if err != nil {
		return nil, shared.ErrInvalidToken
	}
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("auth: hash password: %w", err)
	}
	if err := s.repo.SetPasswordHash(ctx, user.UID, string(hash)); err != nil {
		return nil, err
	}
	return user, nil
}

// SendTestEmail enqueues a plain test email to the listed addresses.
func (s *Service) SendTestEmail(ctx context.Context, addresses []string) error {
	return s.mailer.Enqueue(ctx, addresses, "Test Email", "<h1>Test Email</h1><p>This is a test email.</p>")
}

// CurrentUser resolves the account behind an email claim.
func (s *Service) CurrentUser(ctx context.Context, email string) (*User, error) {
	return s.repo.FindByEmail(ctx, email)
}

func (s *Service) link(action, token string) string {
	return fmt.Sprintf("http://%s%s/auth/%s/%s", s.domain, s.basePath, action, token)
}

func (s *Service) dispatch(ctx context.Context, to []string, subject, body string) {
	if err := s.mailer.Enqueue(ctx, to, subject, body); err != nil && s.logger != nil {
		s.logger.Warn("enqueue email", slog.String("subject", subject), slog.Any("error", err))
	}
}
