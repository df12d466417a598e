package dashboard

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"bookshare_backend/internal/common"
	"bookshare_backend/internal/domain"
	"bookshare_backend/internal/views"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockOwnedBooks struct{ mock.Mock }

func (m *MockOwnedBooks) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Book, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Book), args.Error(1)
}

type MockPartyRequests struct{ mock.Mock }

func (m *MockPartyRequests) ListForProfile(ctx context.Context, profileID uuid.UUID) ([]domain.BorrowRequest, error) {
	args := m.Called(ctx, profileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BorrowRequest), args.Error(1)
}

func TestStats_CountsOwnBooksAndPendingRequests(t *testing.T) {
	viewer := uuid.New()
	books := new(MockOwnedBooks)
	books.On("ListByOwner", mock.Anything, viewer).Return([]domain.Book{
		{OwnerID: viewer, Status: domain.BookAvailable},
		{OwnerID: viewer, Status: domain.BookBorrowed},
	}, nil)
	requests := new(MockPartyRequests)
	requests.On("ListForProfile", mock.Anything, viewer).Return([]domain.BorrowRequest{
		{BorrowerID: viewer, Status: domain.RequestPending},
		{LenderID: viewer, Status: domain.RequestApproved},
	}, nil)

	stats, err := NewService(books, requests, zap.NewNop()).Stats(context.Background(), viewer)
	require.NoError(t, err)
	assert.Equal(t, views.DashboardStats{TotalBooks: 2, AvailableBooks: 1, BorrowedBooks: 1, PendingRequests: 1}, stats)
}

func TestStats_StoreError(t *testing.T) {
	viewer := uuid.New()
	books := new(MockOwnedBooks)
	books.On("ListByOwner", mock.Anything, viewer).Return(nil, errors.New("db down"))

	_, err := NewService(books, new(MockPartyRequests), zap.NewNop()).Stats(context.Background(), viewer)
	assert.ErrorIs(t, err, common.ErrInternalServer)
}

func TestHandler_Dashboard(t *testing.T) {
	viewer := uuid.New()
	books := new(MockOwnedBooks)
	books.On("ListByOwner", mock.Anything, viewer).Return([]domain.Book{}, nil)
	requests := new(MockPartyRequests)
	requests.On("ListForProfile", mock.Anything, viewer).Return([]domain.BorrowRequest{}, nil)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	fakeAuth := func(c *gin.Context) {
		c.Set(common.UserIDKey, viewer)
		c.Next()
	}
	NewHandler(NewService(books, requests, zap.NewNop()), zap.NewNop()).RegisterRoutes(r.Group("/api/v1"), fakeAuth)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/dashboard", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total_books":0`)
}
