package books

import (
	"time"

	"github.com/google/uuid"
)

// Book represents a catalog entry owned by the user who created it.
type Book struct {
	UID           uuid.UUID `json:"uid"`
	Title         string    `json:"title"`
	Author        string    `json:"author"`
	Publisher     string    `json:"publisher"`
	PublishedDate time.Time `json:"published_date"`
	PageCount     int       `json:"page_count"`
	Language      string    `json:"language"`
	UserUID       uuid.UUID `json:"user_uid"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
