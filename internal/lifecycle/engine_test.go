package lifecycle

import (
	"net/http"
	"testing"
	"time"

	"bookshare_backend/internal/common"
	"bookshare_backend/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

type fixture struct {
	owner    uuid.UUID
	borrower uuid.UUID
	book     *domain.Book
}

func newFixture() fixture {
	owner := uuid.New()
	book := &domain.Book{OwnerID: owner, Title: "The Hobbit", Author: "J.R.R. Tolkien", Status: domain.BookAvailable}
	book.ID = uuid.New()
	return fixture{owner: owner, borrower: uuid.New(), book: book}
}

func (f fixture) request(status domain.RequestStatus) *domain.BorrowRequest {
	r := &domain.BorrowRequest{BookID: f.book.ID, BorrowerID: f.borrower, LenderID: f.owner, Status: status}
	r.ID = uuid.New()
	return r
}

func requireKind(t *testing.T, err error, want Kind) {
	t.Helper()
	require.Error(t, err)
	kind, ok := KindOf(err)
	require.True(t, ok, "expected a *Rejection, got %T", err)
	assert.Equal(t, want, kind)
}

func TestPlan_RequestBorrow_Success(t *testing.T) {
	f := newFixture()
	newID := uuid.New()
	notes := "Borrow request sent through browse page"

	plan, err := Plan(Command{
		Action: ActionRequestBorrow, ActorID: f.borrower, ActorName: "Ursula", BookID: f.book.ID,
		RequestID: newID, Notes: &notes,
	}, State{Book: f.book}, testNow)

	require.NoError(t, err)
	require.NotNil(t, plan.NewRequest)
	assert.Equal(t, newID, plan.NewRequest.ID)
	assert.Equal(t, domain.RequestPending, plan.NewRequest.Status)
	assert.Equal(t, f.owner, plan.NewRequest.LenderID)
	assert.Equal(t, f.borrower, plan.NewRequest.BorrowerID)
	assert.Equal(t, testNow, plan.NewRequest.RequestedDate)
	assert.Nil(t, plan.RequestChange)
	require.NotNil(t, plan.BookChange)
	assert.Equal(t, domain.BookAvailable, plan.BookChange.To, "requesting does not change availability")

	require.Len(t, plan.Notifications, 1)
	n := plan.Notifications[0]
	assert.Equal(t, f.owner, n.UserID)
	assert.Equal(t, domain.NotificationBorrowRequest, n.Type)
	assert.Equal(t, newID, *n.BorrowRequestID)
	assert.Contains(t, n.Message, "Ursula")
	assert.Contains(t, n.Message, "The Hobbit")
}

func TestPlan_RequestBorrow_OwnerIsInvalidActor(t *testing.T) {
	f := newFixture()
	_, err := Plan(Command{Action: ActionRequestBorrow, ActorID: f.owner, BookID: f.book.ID}, State{Book: f.book}, testNow)
	requireKind(t, err, KindInvalidActor)
}

func TestPlan_RequestBorrow_ActiveRequestIsConflict(t *testing.T) {
	f := newFixture()
	st := State{Book: f.book, ActiveRequests: []domain.BorrowRequest{*f.request(domain.RequestPending)}}
	_, err := Plan(Command{Action: ActionRequestBorrow, ActorID: uuid.New(), BookID: f.book.ID}, st, testNow)
	requireKind(t, err, KindConflict)
}

func TestPlan_RequestBorrow_UnavailableBookIsInvalidState(t *testing.T) {
	f := newFixture()
	f.book.Status = domain.BookForSale
	_, err := Plan(Command{Action: ActionRequestBorrow, ActorID: f.borrower, BookID: f.book.ID}, State{Book: f.book}, testNow)
	requireKind(t, err, KindInvalidState)
}

func TestPlan_RequestBorrow_MissingBookIsNotFound(t *testing.T) {
	_, err := Plan(Command{Action: ActionRequestBorrow, ActorID: uuid.New()}, State{}, testNow)
	requireKind(t, err, KindNotFound)
}

func TestPlan_Approve_Success(t *testing.T) {
	f := newFixture()
	req := f.request(domain.RequestPending)

	plan, err := Plan(Command{Action: ActionApprove, ActorID: f.owner, RequestID: req.ID},
		State{Book: f.book, Request: req, ActiveRequests: []domain.BorrowRequest{*req}}, testNow)

	require.NoError(t, err)
	require.NotNil(t, plan.RequestChange)
	assert.Equal(t, domain.RequestPending, plan.RequestChange.From)
	assert.Equal(t, domain.RequestApproved, plan.RequestChange.To)
	assert.Equal(t, testNow, *plan.RequestChange.ApprovedDate)
	require.NotNil(t, plan.BookChange)
	assert.Equal(t, domain.BookAvailable, plan.BookChange.From)
	assert.Equal(t, domain.BookBorrowed, plan.BookChange.To)
	require.Len(t, plan.Notifications, 1)
	assert.Equal(t, f.borrower, plan.Notifications[0].UserID)
	assert.Equal(t, domain.NotificationRequestApproved, plan.Notifications[0].Type)
}

func TestPlan_Approve_NonLenderIsForbidden(t *testing.T) {
	f := newFixture()
	req := f.request(domain.RequestPending)

	_, err := Plan(Command{Action: ActionApprove, ActorID: f.borrower, RequestID: req.ID}, State{Book: f.book, Request: req}, testNow)
	requireKind(t, err, KindForbidden)
}

func TestPlan_Approve_AlreadyApprovedIsInvalidState(t *testing.T) {
	f := newFixture()
	req := f.request(domain.RequestApproved)
	f.book.Status = domain.BookBorrowed

	_, err := Plan(Command{Action: ActionApprove, ActorID: f.owner, RequestID: req.ID}, State{Book: f.book, Request: req}, testNow)
	requireKind(t, err, KindInvalidState)
}

func TestPlan_Reject_LeavesBookUntouched(t *testing.T) {
	f := newFixture()
	req := f.request(domain.RequestPending)

	plan, err := Plan(Command{Action: ActionReject, ActorID: f.owner, RequestID: req.ID}, State{Book: f.book, Request: req}, testNow)

	require.NoError(t, err)
	assert.Nil(t, plan.BookChange)
	assert.Equal(t, domain.RequestRejected, plan.RequestChange.To)
	require.Len(t, plan.Notifications, 1)
	assert.Equal(t, f.borrower, plan.Notifications[0].UserID)
	assert.Equal(t, domain.NotificationRequestRejected, plan.Notifications[0].Type)
}

func TestPlan_Reject_OnlyFromPending(t *testing.T) {
	f := newFixture()
	for _, status := range []domain.RequestStatus{domain.RequestApproved, domain.RequestRejected, domain.RequestReturned} {
		req := f.request(status)
		_, err := Plan(Command{Action: ActionReject, ActorID: f.owner, RequestID: req.ID}, State{Book: f.book, Request: req}, testNow)
		requireKind(t, err, KindInvalidState)
	}
}

func TestPlan_Return_ByEitherParty(t *testing.T) {
	f := newFixture()
	f.book.Status = domain.BookBorrowed

	cases := map[string]struct {
		actor     uuid.UUID
		notifyWho uuid.UUID
	}{
		"borrower returns": {actor: f.borrower, notifyWho: f.owner},
		"lender returns":   {actor: f.owner, notifyWho: f.borrower},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			req := f.request(domain.RequestApproved)
			plan, err := Plan(Command{Action: ActionReturn, ActorID: tc.actor, RequestID: req.ID}, State{Book: f.book, Request: req}, testNow)

			require.NoError(t, err)
			assert.Equal(t, domain.RequestReturned, plan.RequestChange.To)
			assert.Equal(t, testNow, *plan.RequestChange.ReturnedDate)
			assert.Equal(t, domain.BookBorrowed, plan.BookChange.From)
			assert.Equal(t, domain.BookAvailable, plan.BookChange.To)
			require.Len(t, plan.Notifications, 1)
			assert.Equal(t, tc.notifyWho, plan.Notifications[0].UserID)
			assert.Equal(t, domain.NotificationBookReturned, plan.Notifications[0].Type)
		})
	}
}

func TestPlan_Return_StrangerIsForbidden(t *testing.T) {
	f := newFixture()
	f.book.Status = domain.BookBorrowed
	req := f.request(domain.RequestApproved)

	_, err := Plan(Command{Action: ActionReturn, ActorID: uuid.New(), RequestID: req.ID}, State{Book: f.book, Request: req}, testNow)
	requireKind(t, err, KindForbidden)
}

func TestPlan_Return_OnlyFromApproved(t *testing.T) {
	f := newFixture()
	for _, status := range []domain.RequestStatus{domain.RequestPending, domain.RequestRejected, domain.RequestReturned} {
		req := f.request(status)
		_, err := Plan(Command{Action: ActionReturn, ActorID: f.borrower, RequestID: req.ID}, State{Book: f.book, Request: req}, testNow)
		requireKind(t, err, KindInvalidState)
	}
}

func TestPlan_DeleteBook(t *testing.T) {
	f := newFixture()

	plan, err := Plan(Command{Action: ActionDeleteBook, ActorID: f.owner, BookID: f.book.ID}, State{Book: f.book}, testNow)
	require.NoError(t, err)
	assert.True(t, plan.DeleteBook)
	assert.Empty(t, plan.Notifications)

	_, err = Plan(Command{Action: ActionDeleteBook, ActorID: f.borrower, BookID: f.book.ID}, State{Book: f.book}, testNow)
	requireKind(t, err, KindForbidden)

	st := State{Book: f.book, ActiveRequests: []domain.BorrowRequest{*f.request(domain.RequestApproved)}}
	_, err = Plan(Command{Action: ActionDeleteBook, ActorID: f.owner, BookID: f.book.ID}, st, testNow)
	requireKind(t, err, KindConflict)
}

func TestPlan_SetBookStatus(t *testing.T) {
	f := newFixture()

	plan, err := Plan(Command{Action: ActionSetBookStatus, ActorID: f.owner, BookID: f.book.ID, TargetStatus: domain.BookNotAvailable},
		State{Book: f.book}, testNow)
	require.NoError(t, err)
	assert.Equal(t, domain.BookAvailable, plan.BookChange.From)
	assert.Equal(t, domain.BookNotAvailable, plan.BookChange.To)

	_, err = Plan(Command{Action: ActionSetBookStatus, ActorID: f.owner, BookID: f.book.ID, TargetStatus: domain.BookBorrowed},
		State{Book: f.book}, testNow)
	requireKind(t, err, KindInvalidState)

	st := State{Book: f.book, ActiveRequests: []domain.BorrowRequest{*f.request(domain.RequestPending)}}
	_, err = Plan(Command{Action: ActionSetBookStatus, ActorID: f.owner, BookID: f.book.ID, TargetStatus: domain.BookForSale}, st, testNow)
	requireKind(t, err, KindConflict)
}

func TestPlan_IsDeterministic(t *testing.T) {
	f := newFixture()
	req := f.request(domain.RequestPending)
	cmd := Command{Action: ActionApprove, ActorID: f.owner, RequestID: req.ID}
	st := State{Book: f.book, Request: req}

	first, err := Plan(cmd, st, testNow)
	require.NoError(t, err)
	second, err := Plan(cmd, st, testNow)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRejection_APIError(t *testing.T) {
	cases := map[Kind]int{
		KindInvalidActor:     http.StatusUnprocessableEntity,
		KindForbidden:        http.StatusForbidden,
		KindInvalidState:     http.StatusConflict,
		KindConflict:         http.StatusConflict,
		KindNotFound:         http.StatusNotFound,
		KindStoreUnavailable: http.StatusServiceUnavailable,
	}
	for kind, status := range cases {
		apiErr := NewRejection(kind, "why").APIError()
		assert.Equal(t, status, apiErr.StatusCode, string(kind))
		assert.Equal(t, "why", apiErr.Details)
	}

	apiErr, ok := common.IsAPIError(ToAPIError(NewRejection(KindInvalidState, "lost race")))
	require.True(t, ok)
	assert.Equal(t, "INVALID_STATE", apiErr.Code)
}

func TestCheckConsistency(t *testing.T) {
	f := newFixture()
	healthy := *f.book

	borrowedOrphan := domain.Book{Status: domain.BookBorrowed}
	borrowedOrphan.ID = uuid.New()

	approvedButAvailable := domain.Book{Status: domain.BookAvailable}
	approvedButAvailable.ID = uuid.New()
	approved := domain.BorrowRequest{BookID: approvedButAvailable.ID, Status: domain.RequestApproved}

	doubled := domain.Book{Status: domain.BookAvailable}
	doubled.ID = uuid.New()
	p1 := domain.BorrowRequest{BookID: doubled.ID, Status: domain.RequestPending}
	p2 := domain.BorrowRequest{BookID: doubled.ID, Status: domain.RequestPending}

	violations := CheckConsistency(
		[]domain.Book{healthy, borrowedOrphan, approvedButAvailable, doubled},
		[]domain.BorrowRequest{approved, p1, p2},
	)

	rules := map[uuid.UUID]string{}
	for _, v := range violations {
		rules[v.BookID] = v.Rule
	}
	assert.Len(t, violations, 3)
	assert.Equal(t, RuleBorrowedWithoutApproval, rules[borrowedOrphan.ID])
	assert.Equal(t, RuleApprovedNotBorrowed, rules[approvedButAvailable.ID])
	assert.Equal(t, RuleMultipleActive, rules[doubled.ID])
	_, flagged := rules[healthy.ID]
	assert.False(t, flagged)
}
