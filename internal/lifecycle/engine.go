// Package lifecycle decides borrowing transitions. Plan is a pure function of the
// command, a snapshot of the affected entities, and the injected time; it never
// touches the store.
package lifecycle

import (
	"fmt"
	"time"

	"bookshare_backend/internal/domain"

	"github.com/google/uuid"
)

// Action names a lifecycle transition.
type Action string

const (
	ActionRequestBorrow Action = "request_borrow"
	ActionApprove       Action = "approve"
	ActionReject        Action = "reject"
	ActionReturn        Action = "return"
	ActionDeleteBook    Action = "delete_book"
	ActionSetBookStatus Action = "set_book_status"
)

// Command is a user's request to perform an action.
type Command struct {
	Action    Action
	ActorID   uuid.UUID
	ActorName string
	BookID    uuid.UUID
	// RequestID names the request acted on, or the ID to give a new request.
	RequestID    uuid.UUID
	Notes        *string
	DueDate      *time.Time
	TargetStatus domain.BookStatus
}

// State is the snapshot a command is decided against. ActiveRequests holds the
// pending or approved requests on the book.
type State struct {
	Book           *domain.Book
	Request        *domain.BorrowRequest
	ActiveRequests []domain.BorrowRequest
}

// RequestChange moves a request From one status To another. From is the
// compare-and-set precondition.
type RequestChange struct {
	RequestID    uuid.UUID
	From         domain.RequestStatus
	To           domain.RequestStatus
	ApprovedDate *time.Time
	ReturnedDate *time.Time
}

// BookChange moves a book From one status To another. From == To is a guard
// that only asserts the status still holds.
type BookChange struct {
	BookID uuid.UUID
	From   domain.BookStatus
	To     domain.BookStatus
}

// TransitionPlan is the complete set of writes a valid action implies.
type TransitionPlan struct {
	Action        Action
	NewRequest    *domain.BorrowRequest
	RequestChange *RequestChange
	BookChange    *BookChange
	DeleteBook    bool
	Notifications []domain.Notification
}

// Plan validates cmd against st and returns the writes to apply, or a *Rejection.
func Plan(cmd Command, st State, now time.Time) (*TransitionPlan, error) {
	switch cmd.Action {
	case ActionRequestBorrow:
		return planRequestBorrow(cmd, st, now)
	case ActionApprove:
		return planApprove(cmd, st, now)
	case ActionReject:
		return planReject(cmd, st, now)
	case ActionReturn:
		return planReturn(cmd, st, now)
	case ActionDeleteBook:
		return planDeleteBook(cmd, st)
	case ActionSetBookStatus:
		return planSetBookStatus(cmd, st)
	default:
		return nil, reject(KindInvalidState, "unknown action %q", cmd.Action)
	}
}

func planRequestBorrow(cmd Command, st State, now time.Time) (*TransitionPlan, error) {
	book := st.Book
	if book == nil {
		return nil, reject(KindNotFound, "book not found")
	}
	if cmd.ActorID == uuid.Nil {
		return nil, reject(KindInvalidActor, "borrower is not identified")
	}
	if cmd.ActorID == book.OwnerID {
		return nil, reject(KindInvalidActor, "owners cannot borrow their own book")
	}
	if len(st.ActiveRequests) > 0 {
		return nil, reject(KindConflict, "book already has an active borrow request")
	}
	if book.Status != domain.BookAvailable {
		return nil, reject(KindInvalidState, "book is %s, not available", book.Status)
	}

	req := &domain.BorrowRequest{
		BookID:        book.ID,
		BorrowerID:    cmd.ActorID,
		LenderID:      book.OwnerID,
		RequestedDate: now,
		DueDate:       cmd.DueDate,
		Notes:         cmd.Notes,
		Status:        domain.RequestPending,
	}
	req.ID = cmd.RequestID

	return &TransitionPlan{
		Action:     ActionRequestBorrow,
		NewRequest: req,
		BookChange: &BookChange{BookID: book.ID, From: domain.BookAvailable, To: domain.BookAvailable},
		Notifications: []domain.Notification{notify(
			book.OwnerID, req.ID, domain.NotificationBorrowRequest, "New borrow request",
			fmt.Sprintf("%s would like to borrow %q.", actorLabel(cmd), book.Title), now,
		)},
	}, nil
}

// lenderDecision holds the guard shared by Approve and Reject.
func lenderDecision(cmd Command, st State) (*domain.BorrowRequest, error) {
	req := st.Request
	if req == nil {
		return nil, reject(KindNotFound, "borrow request not found")
	}
	if cmd.ActorID != req.LenderID {
		return nil, reject(KindForbidden, "only the lender can decide on this request")
	}
	if req.Status != domain.RequestPending {
		return nil, reject(KindInvalidState, "request is %s, not pending", req.Status)
	}
	return req, nil
}

func planApprove(cmd Command, st State, now time.Time) (*TransitionPlan, error) {
	req, err := lenderDecision(cmd, st)
	if err != nil {
		return nil, err
	}
	book := st.Book
	if book == nil {
		return nil, reject(KindNotFound, "book not found")
	}
	if book.Status != domain.BookAvailable {
		return nil, reject(KindInvalidState, "book is %s, not available", book.Status)
	}

	approvedAt := now
	return &TransitionPlan{
		Action: ActionApprove,
		RequestChange: &RequestChange{
			RequestID: req.ID, From: domain.RequestPending, To: domain.RequestApproved, ApprovedDate: &approvedAt,
		},
		BookChange: &BookChange{BookID: book.ID, From: domain.BookAvailable, To: domain.BookBorrowed},
		Notifications: []domain.Notification{notify(
			req.BorrowerID, req.ID, domain.NotificationRequestApproved, "Borrow request approved",
			fmt.Sprintf("%s approved your request to borrow %q.", actorLabel(cmd), book.Title), now,
		)},
	}, nil
}

func planReject(cmd Command, st State, now time.Time) (*TransitionPlan, error) {
	req, err := lenderDecision(cmd, st)
	if err != nil {
		return nil, err
	}
	return &TransitionPlan{
		Action: ActionReject,
		RequestChange: &RequestChange{
			RequestID: req.ID, From: domain.RequestPending, To: domain.RequestRejected,
		},
		Notifications: []domain.Notification{notify(
			req.BorrowerID, req.ID, domain.NotificationRequestRejected, "Borrow request declined",
			fmt.Sprintf("%s declined your request to borrow %s.", actorLabel(cmd), quotedTitle(st.Book)), now,
		)},
	}, nil
}

func planReturn(cmd Command, st State, now time.Time) (*TransitionPlan, error) {
	req := st.Request
	if req == nil {
		return nil, reject(KindNotFound, "borrow request not found")
	}
	var counterParty uuid.UUID
	switch cmd.ActorID {
	case req.BorrowerID:
		counterParty = req.LenderID
	case req.LenderID:
		counterParty = req.BorrowerID
	default:
		return nil, reject(KindForbidden, "only the borrower or lender can return this book")
	}
	if req.Status != domain.RequestApproved {
		return nil, reject(KindInvalidState, "request is %s, not approved", req.Status)
	}
	book := st.Book
	if book == nil {
		return nil, reject(KindNotFound, "book not found")
	}
	if book.Status != domain.BookBorrowed {
		return nil, reject(KindInvalidState, "book is %s, not borrowed", book.Status)
	}

	returnedAt := now
	return &TransitionPlan{
		Action: ActionReturn,
		RequestChange: &RequestChange{
			RequestID: req.ID, From: domain.RequestApproved, To: domain.RequestReturned, ReturnedDate: &returnedAt,
		},
		BookChange: &BookChange{BookID: book.ID, From: domain.BookBorrowed, To: domain.BookAvailable},
		Notifications: []domain.Notification{notify(
			counterParty, req.ID, domain.NotificationBookReturned, "Book returned",
			fmt.Sprintf("%s marked %q as returned.", actorLabel(cmd), book.Title), now,
		)},
	}, nil
}

// ownerEdit holds the guard shared by DeleteBook and SetBookStatus.
func ownerEdit(cmd Command, st State) (*domain.Book, error) {
	book := st.Book
	if book == nil {
		return nil, reject(KindNotFound, "book not found")
	}
	if cmd.ActorID != book.OwnerID {
		return nil, reject(KindForbidden, "only the owner can change this book")
	}
	if len(st.ActiveRequests) > 0 {
		return nil, reject(KindConflict, "book has an active borrow request")
	}
	return book, nil
}

func planDeleteBook(cmd Command, st State) (*TransitionPlan, error) {
	book, err := ownerEdit(cmd, st)
	if err != nil {
		return nil, err
	}
	return &TransitionPlan{
		Action:     ActionDeleteBook,
		BookChange: &BookChange{BookID: book.ID, From: book.Status, To: book.Status},
		DeleteBook: true,
	}, nil
}

func planSetBookStatus(cmd Command, st State) (*TransitionPlan, error) {
	book, err := ownerEdit(cmd, st)
	if err != nil {
		return nil, err
	}
	switch cmd.TargetStatus {
	case domain.BookAvailable, domain.BookForSale, domain.BookNotAvailable:
	case domain.BookBorrowed:
		return nil, reject(KindInvalidState, "a book becomes borrowed only by approving a request")
	default:
		return nil, reject(KindInvalidState, "unknown book status %q", cmd.TargetStatus)
	}
	return &TransitionPlan{
		Action:     ActionSetBookStatus,
		BookChange: &BookChange{BookID: book.ID, From: book.Status, To: cmd.TargetStatus},
	}, nil
}

func notify(to, requestID uuid.UUID, typ domain.NotificationType, title, message string, now time.Time) domain.Notification {
	n := domain.Notification{
		UserID:    to,
		Type:      typ,
		Title:     title,
		Message:   message,
		CreatedAt: now,
	}
	if requestID != uuid.Nil {
		id := requestID
		n.BorrowRequestID = &id
	}
	return n
}

func actorLabel(cmd Command) string {
	if cmd.ActorName != "" {
		return cmd.ActorName
	}
	return "Someone"
}

func quotedTitle(b *domain.Book) string {
	if b == nil {
		return "a book"
	}
	return fmt.Sprintf("%q", b.Title)
}
