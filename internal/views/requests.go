package views

import (
	"time"

	"bookshare_backend/internal/domain"

	"github.com/google/uuid"
)

// Role is the viewer's side of a borrow request.
type Role string

const (
	RoleLender   Role = "lender"
	RoleBorrower Role = "borrower"
)

// RoleFor labels the viewer's role by comparing them to the borrower.
func RoleFor(r domain.BorrowRequest, viewer uuid.UUID) Role {
	if r.BorrowerID == viewer {
		return RoleBorrower
	}
	return RoleLender
}

// RequestView is a borrow request joined with its book and both parties.
type RequestView struct {
	ID               uuid.UUID            `json:"id"`
	BookID           uuid.UUID            `json:"book_id"`
	BookTitle        string               `json:"book_title"`
	BookAuthor       string               `json:"book_author"`
	BorrowerID       uuid.UUID            `json:"borrower_id"`
	BorrowerName     string               `json:"borrower_name"`
	LenderID         uuid.UUID            `json:"lender_id"`
	LenderName       string               `json:"lender_name"`
	Role             Role                 `json:"role"`
	CounterPartyName string               `json:"counter_party_name"`
	Status           domain.RequestStatus `json:"status"`
	Notes            *string              `json:"notes,omitempty"`
	RequestedDate    time.Time            `json:"requested_date"`
	ApprovedDate     *time.Time           `json:"approved_date,omitempty"`
	DueDate          *time.Time           `json:"due_date,omitempty"`
	ReturnedDate     *time.Time           `json:"returned_date,omitempty"`
	CreatedAt        time.Time            `json:"created_at"`
}

// ToRequestView projects one request for viewer.
func ToRequestView(r domain.BorrowRequest, viewer uuid.UUID) RequestView {
	v := RequestView{
		ID:            r.ID,
		BookID:        r.BookID,
		BorrowerID:    r.BorrowerID,
		BorrowerName:  r.Borrower.DisplayName(),
		LenderID:      r.LenderID,
		LenderName:    r.Lender.DisplayName(),
		Role:          RoleFor(r, viewer),
		Status:        r.Status,
		Notes:         r.Notes,
		RequestedDate: r.RequestedDate,
		ApprovedDate:  r.ApprovedDate,
		DueDate:       r.DueDate,
		ReturnedDate:  r.ReturnedDate,
		CreatedAt:     r.CreatedAt,
	}
	if r.Book != nil {
		v.BookTitle = r.Book.Title
		v.BookAuthor = r.Book.Author
	}
	if v.Role == RoleBorrower {
		v.CounterPartyName = v.LenderName
	} else {
		v.CounterPartyName = v.BorrowerName
	}
	return v
}

// LabelRequests projects requests for viewer, preserving order.
func LabelRequests(requests []domain.BorrowRequest, viewer uuid.UUID) []RequestView {
	out := make([]RequestView, 0, len(requests))
	for _, r := range requests {
		out = append(out, ToRequestView(r, viewer))
	}
	return out
}

// FilterRequests keeps the views matching role and status. Empty values match all.
func FilterRequests(list []RequestView, role Role, status domain.RequestStatus) []RequestView {
	out := make([]RequestView, 0, len(list))
	for _, v := range list {
		if role != "" && v.Role != role {
			continue
		}
		if status != "" && v.Status != status {
			continue
		}
		out = append(out, v)
	}
	return out
}

// DashboardStats summarizes a viewer's library and pending requests.
type DashboardStats struct {
	TotalBooks      int `json:"total_books"`
	AvailableBooks  int `json:"available_books"`
	BorrowedBooks   int `json:"borrowed_books"`
	PendingRequests int `json:"pending_requests"`
}

// ComputeDashboard counts the viewer's own books by status and the pending
// requests where the viewer is either party.
func ComputeDashboard(books []domain.Book, requests []domain.BorrowRequest, viewer uuid.UUID) DashboardStats {
	var s DashboardStats
	for _, b := range books {
		if b.OwnerID != viewer {
			continue
		}
		s.TotalBooks++
		switch b.Status {
		case domain.BookAvailable:
			s.AvailableBooks++
		case domain.BookBorrowed:
			s.BorrowedBooks++
		}
	}
	for _, r := range requests {
		if r.Status == domain.RequestPending && (r.BorrowerID == viewer || r.LenderID == viewer) {
			s.PendingRequests++
		}
	}
	return s
}
