// File: internal/borrow/model.go
package borrow

import (
	"time"

	"bookshare_backend/internal/domain"
	"bookshare_backend/internal/views"

	"github.com/google/uuid"
)

// CreateBorrowRequest is the body of POST /borrow-requests.
type CreateBorrowRequest struct {
	BookID  uuid.UUID  `json:"book_id" binding:"required"`
	Notes   *string    `json:"notes" binding:"omitempty,max=1000"`
	DueDate *time.Time `json:"due_date"`
}

// ListFilter narrows a request listing. Empty fields match everything.
type ListFilter struct {
	Role   views.Role           `form:"role" binding:"omitempty,oneof=lender borrower"`
	Status domain.RequestStatus `form:"status" binding:"omitempty,oneof=pending approved rejected returned"`
}
