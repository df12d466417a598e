package reading

import (
	"time"

	"bookshare_backend/internal/domain"

	"github.com/google/uuid"
)

// UpsertProgressRequest is the body of PUT /reading-progress/books/:book_id.
// Omitted fields keep their stored value.
type UpsertProgressRequest struct {
	PagesRead    *int                  `json:"pages_read" binding:"omitempty,min=0"`
	TotalPages   *int                  `json:"total_pages" binding:"omitempty,min=1"`
	Status       *domain.ReadingStatus `json:"status" binding:"omitempty,oneof=want_to_read reading finished"`
	StartedDate  *time.Time            `json:"started_date"`
	FinishedDate *time.Time            `json:"finished_date"`
	Notes        *string               `json:"notes" binding:"omitempty,max=2000"`
}

// ProgressResponse is one reading progress entry with its book's title.
type ProgressResponse struct {
	ID           uuid.UUID            `json:"id"`
	BookID       uuid.UUID            `json:"book_id"`
	BookTitle    string               `json:"book_title,omitempty"`
	BookAuthor   string               `json:"book_author,omitempty"`
	PagesRead    *int                 `json:"pages_read,omitempty"`
	TotalPages   *int                 `json:"total_pages,omitempty"`
	Percent      *int                 `json:"percent,omitempty"`
	Status       domain.ReadingStatus `json:"status"`
	StartedDate  *time.Time           `json:"started_date,omitempty"`
	FinishedDate *time.Time           `json:"finished_date,omitempty"`
	Notes        *string              `json:"notes,omitempty"`
	UpdatedAt    time.Time            `json:"updated_at"`
}

func ToProgressResponse(p domain.ReadingProgress) ProgressResponse {
	r := ProgressResponse{
		ID:           p.ID,
		BookID:       p.BookID,
		PagesRead:    p.PagesRead,
		TotalPages:   p.TotalPages,
		Status:       p.Status,
		StartedDate:  p.StartedDate,
		FinishedDate: p.FinishedDate,
		Notes:        p.Notes,
		UpdatedAt:    p.UpdatedAt,
	}
	if p.Book != nil {
		r.BookTitle = p.Book.Title
		r.BookAuthor = p.Book.Author
	}
	if p.PagesRead != nil && p.TotalPages != nil && *p.TotalPages > 0 {
		pct := *p.PagesRead * 100 / *p.TotalPages
		r.Percent = &pct
	}
	return r
}

func ToProgressResponses(list []domain.ReadingProgress) []ProgressResponse {
	out := make([]ProgressResponse, 0, len(list))
	for _, p := range list {
		out = append(out, ToProgressResponse(p))
	}
	return out
}
