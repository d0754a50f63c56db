package types

import (
	"time"

	"github.com/google/uuid"
)

// Guide is a saved pet-friendly travel guide: the generated Markdown plus the
// search tuple it was generated from.
type Guide struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	City      string    `json:"city"`
	Country   string    `json:"country"`
	Interests string    `json:"interests"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// GuideDraft is the result of an explore run before the user decides to save it.
type GuideDraft struct {
	City      string        `json:"city"`
	Country   string        `json:"country"`
	Interests string        `json:"interests"`
	Content   string        `json:"content"`
	Places    []PlaceDetail `json:"places"`
}

type ExploreRequest struct {
	City      string `json:"city"`
	Country   string `json:"country"`
	Interests string `json:"interests"`
	Save      bool   `json:"save,omitempty"`
}

type SaveGuideRequest struct {
	City      string `json:"city"`
	Country   string `json:"country"`
	Interests string `json:"interests"`
	Content   string `json:"content"`
}

type PaginatedGuidesResponse struct {
	Guides       []Guide `json:"guides"`
	TotalRecords int     `json:"total_records"`
	Page         int     `json:"page"`
	PageSize     int     `json:"page_size"`
}
