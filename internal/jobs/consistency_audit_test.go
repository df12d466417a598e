package jobs

import (
	"context"
	"errors"
	"testing"

	"bookshare_backend/internal/config"
	"bookshare_backend/internal/domain"
	"bookshare_backend/internal/lifecycle"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type MockBookLister struct{ mock.Mock }

func (m *MockBookLister) ListAll(ctx context.Context) ([]domain.Book, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Book), args.Error(1)
}

type MockRequestLister struct{ mock.Mock }

func (m *MockRequestLister) ListAll(ctx context.Context) ([]domain.BorrowRequest, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BorrowRequest), args.Error(1)
}

func TestConsistencyAudit_ReportsViolations(t *testing.T) {
	ctx := context.Background()
	borrowed := domain.Book{Status: domain.BookBorrowed}
	borrowed.ID = uuid.New()
	healthy := domain.Book{Status: domain.BookAvailable}
	healthy.ID = uuid.New()

	books := new(MockBookLister)
	books.On("ListAll", ctx).Return([]domain.Book{borrowed, healthy}, nil)
	requests := new(MockRequestLister)
	requests.On("ListAll", ctx).Return([]domain.BorrowRequest{{BookID: healthy.ID, Status: domain.RequestPending}}, nil)

	core, logs := observer.New(zap.WarnLevel)
	job := NewConsistencyAuditJob(books, requests, zap.New(core), &config.Config{})

	violations, err := job.Run(ctx)
	require.NoError(t, err)
	require.Len(t, violations, 1)
	assert.Equal(t, borrowed.ID, violations[0].BookID)
	assert.Equal(t, lifecycle.RuleBorrowedWithoutApproval, violations[0].Rule)
	assert.Equal(t, 1, logs.FilterMessage("Lifecycle invariant violated").Len())
}

func TestConsistencyAudit_StoreError(t *testing.T) {
	ctx := context.Background()
	books := new(MockBookLister)
	books.On("ListAll", ctx).Return(nil, errors.New("db down"))
	requests := new(MockRequestLister)

	job := NewConsistencyAuditJob(books, requests, zap.NewNop(), &config.Config{})

	_, err := job.Run(ctx)
	assert.ErrorContains(t, err, "list books")
	requests.AssertNotCalled(t, "ListAll", mock.Anything)
}

func TestConsistencyAudit_EmptyScheduleDoesNotStart(t *testing.T) {
	job := NewConsistencyAuditJob(new(MockBookLister), new(MockRequestLister), zap.NewNop(), &config.Config{})
	assert.NoError(t, job.SetupAndStart())
	job.Stop()
}

func TestConsistencyAudit_InvalidSchedule(t *testing.T) {
	job := NewConsistencyAuditJob(new(MockBookLister), new(MockRequestLister), zap.NewNop(), &config.Config{ConsistencyAuditSchedule: "every tuesday"})
	assert.Error(t, job.SetupAndStart())
}
