package httpx

import (
	"errors"
	"net/http"

	"github.com/krsx/book-api/internal/shared"
)

// RespondError maps a domain error to its fixed status and body. Anything
// that is not a *shared.APIError falls through to the generic 500 handler
// so internal details never reach the caller.
func RespondError(w http.ResponseWriter, err error) {
	var apiErr *shared.APIError
	if errors.As(err, &apiErr) {
		JSON(w, apiErr.Status, ErrorBody{Detail: apiErr.Detail, ErrorCode: apiErr.Code})
		return
	}
	JSON(w, http.StatusInternalServerError, ErrorBody{
		Detail:    "An unexpected error occurred. Please try again later.",
		ErrorCode: "internal_server_error",
	})
}
