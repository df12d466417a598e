package lifecycle

import (
	"fmt"
	"sort"

	"bookshare_backend/internal/domain"

	"github.com/google/uuid"
)

// Violation describes one book whose stored state breaks a lifecycle invariant.
type Violation struct {
	BookID uuid.UUID
	Rule   string
	Detail string
}

const (
	RuleBorrowedWithoutApproval = "borrowed_without_approved_request"
	RuleApprovedNotBorrowed     = "approved_request_on_unborrowed_book"
	RuleMultipleActive          = "multiple_active_requests"
)

// CheckConsistency reports every book that breaks the borrowing invariants:
// status=borrowed iff an approved, unreturned request exists, and at most one
// active request per book.
func CheckConsistency(books []domain.Book, requests []domain.BorrowRequest) []Violation {
	active := make(map[uuid.UUID][]domain.BorrowRequest)
	approved := make(map[uuid.UUID]bool)
	for _, r := range requests {
		if r.Status.IsActive() {
			active[r.BookID] = append(active[r.BookID], r)
		}
		if r.Status == domain.RequestApproved && r.ReturnedDate == nil {
			approved[r.BookID] = true
		}
	}

	var out []Violation
	for _, b := range books {
		borrowed := b.Status == domain.BookBorrowed
		switch {
		case borrowed && !approved[b.ID]:
			out = append(out, Violation{BookID: b.ID, Rule: RuleBorrowedWithoutApproval,
				Detail: "book is borrowed but no approved request references it"})
		case !borrowed && approved[b.ID]:
			out = append(out, Violation{BookID: b.ID, Rule: RuleApprovedNotBorrowed,
				Detail: fmt.Sprintf("book is %s but has an approved request", b.Status)})
		}
		if n := len(active[b.ID]); n > 1 {
			out = append(out, Violation{BookID: b.ID, Rule: RuleMultipleActive,
				Detail: fmt.Sprintf("%d active requests", n)})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].BookID.String() < out[j].BookID.String()
	})
	return out
}
