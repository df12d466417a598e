package borrow

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"bookshare_backend/internal/common"
	"bookshare_backend/internal/config"
	"bookshare_backend/internal/domain"
	"bookshare_backend/internal/orchestrator"
	"bookshare_backend/internal/platform/database"
	"bookshare_backend/internal/search"
	"bookshare_backend/internal/views"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type borrowFixture struct {
	db       *gorm.DB
	service  *ServiceImplementation
	lender   Actor
	borrower Actor
	stranger Actor
	book     *domain.Book
}

func createProfile(t *testing.T, db *gorm.DB, name string) Actor {
	t.Helper()
	p := &domain.Profile{AuthSubject: "sub-" + name, FullName: name}
	require.NoError(t, db.Create(p).Error)
	return Actor{ID: p.ID, Name: name}
}

func setupBorrowFixture(t *testing.T) *borrowFixture {
	t.Helper()
	db, err := database.NewTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { database.CloseGORMDB(db) })

	f := &borrowFixture{db: db}
	f.lender = createProfile(t, db, "Lena")
	f.borrower = createProfile(t, db, "Bo")
	f.stranger = createProfile(t, db, "Sam")
	f.book = &domain.Book{OwnerID: f.lender.ID, Title: "The Hobbit", Author: "J.R.R. Tolkien", Condition: domain.ConditionGood, Status: domain.BookAvailable}
	require.NoError(t, db.Create(f.book).Error)

	exec := orchestrator.New(db, &config.Config{StoreRetryAttempts: 1}, zap.NewNop())
	f.service = NewService(NewGORMRepository(db), exec, search.NoopIndexer{}, zap.NewNop())
	return f
}

func (f *borrowFixture) bookStatus(t *testing.T) domain.BookStatus {
	t.Helper()
	var b domain.Book
	require.NoError(t, f.db.Unscoped().Where("id = ?", f.book.ID).First(&b).Error)
	return b.Status
}

func (f *borrowFixture) notificationsFor(t *testing.T, id uuid.UUID) []domain.Notification {
	t.Helper()
	var list []domain.Notification
	require.NoError(t, f.db.Where("user_id = ?", id).Order("created_at ASC").Find(&list).Error)
	return list
}

func TestBorrowLifecycle_RequestApproveReturn(t *testing.T) {
	f := setupBorrowFixture(t)
	ctx := context.Background()

	created, err := f.service.RequestBorrow(ctx, f.borrower, CreateBorrowRequest{BookID: f.book.ID, Notes: strPtr("  next week?  ")})
	require.NoError(t, err)
	assert.Equal(t, domain.RequestPending, created.Status)
	assert.Equal(t, views.RoleBorrower, created.Role)
	assert.Equal(t, "Lena", created.CounterPartyName)
	assert.Equal(t, "next week?", *created.Notes)
	assert.Equal(t, domain.BookAvailable, f.bookStatus(t))

	lenderNotes := f.notificationsFor(t, f.lender.ID)
	require.Len(t, lenderNotes, 1)
	assert.Equal(t, domain.NotificationBorrowRequest, lenderNotes[0].Type)
	assert.Contains(t, lenderNotes[0].Message, "Bo")

	approved, err := f.service.Approve(ctx, f.lender, created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestApproved, approved.Status)
	assert.Equal(t, views.RoleLender, approved.Role)
	assert.NotNil(t, approved.ApprovedDate)
	assert.Equal(t, domain.BookBorrowed, f.bookStatus(t))

	returned, err := f.service.MarkReturned(ctx, f.borrower, created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestReturned, returned.Status)
	assert.NotNil(t, returned.ReturnedDate)
	assert.Equal(t, domain.BookAvailable, f.bookStatus(t))

	borrowerNotes := f.notificationsFor(t, f.borrower.ID)
	require.Len(t, borrowerNotes, 1)
	assert.Equal(t, domain.NotificationRequestApproved, borrowerNotes[0].Type)
	assert.Len(t, f.notificationsFor(t, f.lender.ID), 2, "the lender hears about the return")
}

func TestBorrowLifecycle_Guards(t *testing.T) {
	f := setupBorrowFixture(t)
	ctx := context.Background()

	_, err := f.service.RequestBorrow(ctx, f.lender, CreateBorrowRequest{BookID: f.book.ID})
	assert.ErrorIs(t, err, common.ErrInvalidActor)

	_, err = f.service.RequestBorrow(ctx, f.borrower, CreateBorrowRequest{BookID: uuid.New()})
	assert.ErrorIs(t, err, common.ErrNotFound)

	created, err := f.service.RequestBorrow(ctx, f.borrower, CreateBorrowRequest{BookID: f.book.ID})
	require.NoError(t, err)

	_, err = f.service.RequestBorrow(ctx, f.stranger, CreateBorrowRequest{BookID: f.book.ID})
	assert.ErrorIs(t, err, common.ErrConflict)

	_, err = f.service.Approve(ctx, f.borrower, created.ID)
	assert.ErrorIs(t, err, common.ErrForbidden)

	_, err = f.service.MarkReturned(ctx, f.borrower, created.ID)
	assert.ErrorIs(t, err, common.ErrInvalidState)

	rejected, err := f.service.Reject(ctx, f.lender, created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestRejected, rejected.Status)

	_, err = f.service.Approve(ctx, f.lender, created.ID)
	assert.ErrorIs(t, err, common.ErrInvalidState)

	_, err = f.service.Get(ctx, f.stranger.ID, created.ID)
	assert.ErrorIs(t, err, common.ErrForbidden)
}

func TestRequestBorrow_RejectsPastDueDate(t *testing.T) {
	f := setupBorrowFixture(t)
	past := time.Now().Add(-time.Hour)

	_, err := f.service.RequestBorrow(context.Background(), f.borrower, CreateBorrowRequest{BookID: f.book.ID, DueDate: &past})
	require.Error(t, err)
	apiErr, ok := common.IsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, "VALIDATION_ERROR", apiErr.Code)
}

func TestList_FiltersByRoleAndStatus(t *testing.T) {
	f := setupBorrowFixture(t)
	ctx := context.Background()
	created, err := f.service.RequestBorrow(ctx, f.borrower, CreateBorrowRequest{BookID: f.book.ID})
	require.NoError(t, err)

	lenderView, err := f.service.List(ctx, f.lender.ID, ListFilter{Role: views.RoleLender, Status: domain.RequestPending})
	require.NoError(t, err)
	require.Len(t, lenderView, 1)
	assert.Equal(t, created.ID, lenderView[0].ID)
	assert.Equal(t, "Bo", lenderView[0].CounterPartyName)
	assert.Equal(t, "The Hobbit", lenderView[0].BookTitle)

	asBorrower, err := f.service.List(ctx, f.lender.ID, ListFilter{Role: views.RoleBorrower})
	require.NoError(t, err)
	assert.Empty(t, asBorrower)

	none, err := f.service.List(ctx, f.stranger.ID, ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestHandler_Routes(t *testing.T) {
	f := setupBorrowFixture(t)
	gin.SetMode(gin.TestMode)

	router := func(actor Actor) *gin.Engine {
		r := gin.New()
		NewHandler(f.service, zap.NewNop()).RegisterRoutes(r.Group("/api/v1"), func(c *gin.Context) {
			c.Set(common.UserIDKey, actor.ID)
			c.Set(common.UserNameKey, actor.Name)
			c.Next()
		})
		return r
	}
	do := func(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := do(router(f.borrower), http.MethodPost, "/api/v1/borrow-requests", `{"book_id":"`+f.book.ID.String()+`"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	list, err := f.service.List(context.Background(), f.lender.ID, ListFilter{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	id := list[0].ID.String()

	w = do(router(f.borrower), http.MethodPost, "/api/v1/borrow-requests/"+id+"/approve", "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(router(f.lender), http.MethodPost, "/api/v1/borrow-requests/"+id+"/approve", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(router(f.lender), http.MethodPost, "/api/v1/borrow-requests/"+id+"/approve", "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_STATE")

	w = do(router(f.lender), http.MethodGet, "/api/v1/borrow-requests?role=owner", "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = do(router(f.lender), http.MethodGet, "/api/v1/borrow-requests?role=lender&status=approved", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"role":"lender"`)

	w = do(router(f.stranger), http.MethodGet, "/api/v1/borrow-requests/"+id, "")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func strPtr(s string) *string { return &s }
