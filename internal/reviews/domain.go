package reviews

import (
	"time"

	"github.com/google/uuid"
)

// Review is a rating left by a user on a book.
type Review struct {
	UID        uuid.UUID `json:"uid"`
	Rating     int       `json:"rating"`
	ReviewText string    `json:"review_text"`
	UserUID    uuid.UUID `json:"user_uid"`
	BookUID    uuid.UUID `json:"book_uid"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
