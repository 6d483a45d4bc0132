package shared

import "net/http"

// APIError is a domain failure with a fixed HTTP status and a stable
// machine-readable code. Handlers never build ad-hoc error bodies; they
// return one of the sentinels below and let httpx translate it.
type APIError struct {
	Status int
	Code   string
	Detail string
}

func (e *APIError) Error() string {
	return e.Code + ": " + e.Detail
}

var (
	// ErrInvalidToken covers every token decode failure as well as revoked
	// tokens. Revocation is deliberately indistinguishable from invalidity.
	ErrInvalidToken = &APIError{
		Status: http.StatusUnauthorized,
		Code:   "invalid_token",
		Detail: "Invalid token provided. Please provide a valid token.",
	}
	// ErrMissingAuthHeader rejects protected paths without credentials.
	ErrMissingAuthHeader = &APIError{
		Status: http.StatusUnauthorized,
		Code:   "missing_authorization_header",
		Detail: "Authorization header is missing",
	}
	// ErrAccessTokenRequired rejects a refresh token on an access endpoint.
	ErrAccessTokenRequired = &APIError{
		Status: http.StatusUnauthorized,
		Code:   "access_token_required",
		Detail: "Access token is required for this operation.",
	}
	// ErrRefreshTokenRequired rejects an access token on a refresh endpoint.
	ErrRefreshTokenRequired = &APIError{
		Status: http.StatusUnauthorized,
		Code:   "refresh_token_required",
		Detail: "Refresh token is required for this operation.",
	}
	ErrInsufficientPermission = &APIError{
		Status: http.StatusUnauthorized,
		Code:   "insufficient_permission",
		Detail: "You do not have sufficient permissions to perform this action.",
	}
	ErrAccountNotVerified = &APIError{
		Status: http.StatusForbidden,
		Code:   "account_not_verified",
		Detail: "User account is not verified. Please verify your account via registered email.",
	}
	ErrUserAlreadyExists = &APIError{
		Status: http.StatusForbidden,
		Code:   "user_already_exists",
		Detail: "User with this email already exists.",
	}
	// ErrInvalidCredentials is the single undifferentiated login failure.
	// The body never reveals whether the email or the password was wrong.
	ErrInvalidCredentials = &APIError{
		Status: http.StatusBadRequest,
		Code:   "invalid_credentials",
		Detail: "Invalid email or password provided.",
	}
	ErrUserNotFound = &APIError{
		Status: http.StatusNotFound,
		Code:   "user_not_found",
		Detail: "The requested user was not found.",
	}
	ErrBookNotFound = &APIError{
		Status: http.StatusNotFound,
		Code:   "book_not_found",
		Detail: "The requested book was not found.",
	}
	ErrReviewNotFound = &APIError{
		Status: http.StatusNotFound,
		Code:   "review_not_found",
		Detail: "The requested review was not found.",
	}
	ErrVerificationFailed = &APIError{
		Status: http.StatusInternalServerError,
		Code:   "verification_failed",
		Detail: "User verification failed. Please try again.",
	}
	ErrNewPasswordNotMatch = &APIError{
		Status: http.StatusBadRequest,
		Code:   "new_password_not_match",
		Detail: "New password does not match the confirmation password.",
	}
	ErrPasswordResetFailed = &APIError{
		Status: http.StatusInternalServerError,
		Code:   "password_reset_failed",
		Detail: "Password reset failed due to an unknown error.",
	}
	ErrValidation = &APIError{
		Status: http.StatusUnprocessableEntity,
		Code:   "validation_error",
		Detail: "Request body failed validation.",
	}
)
