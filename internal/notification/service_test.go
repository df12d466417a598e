package notification

import (
	"context"
	"errors"
	"testing"
	"time"

	"bookshare_backend/internal/common"
	"bookshare_backend/internal/domain"
	"bookshare_backend/internal/platform/database"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

// MockNotificationRepository is a mock type for notification.Repository
type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) GetByUserID(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]domain.Notification, *common.Pagination, error) {
	args := m.Called(ctx, userID, page, pageSize)
	var list []domain.Notification
	if args.Get(0) != nil {
		list = args.Get(0).([]domain.Notification)
	}
	var pagination *common.Pagination
	if args.Get(1) != nil {
		pagination = args.Get(1).(*common.Pagination)
	}
	return list, pagination, args.Error(2)
}

func (m *MockNotificationRepository) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNotificationRepository) MarkAsRead(ctx context.Context, notificationID, userID uuid.UUID) error {
	args := m.Called(ctx, notificationID, userID)
	return args.Error(0)
}

func (m *MockNotificationRepository) MarkAllAsRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

type NotificationServiceTestSuite struct {
	suite.Suite
	mockRepo *MockNotificationRepository
	service  Service
}

func (s *NotificationServiceTestSuite) SetupTest() {
	s.mockRepo = new(MockNotificationRepository)
	s.service = NewService(s.mockRepo, zap.NewNop())
}

func TestNotificationService(t *testing.T) {
	suite.Run(t, new(NotificationServiceTestSuite))
}

func (s *NotificationServiceTestSuite) TestGetNotificationsForUser_Success() {
	ctx := context.Background()
	userID := uuid.New()
	expected := []domain.Notification{{ID: uuid.New(), UserID: userID, Title: "Book Returned"}}
	pagination := common.NewPagination(1, 1, 10)
	s.mockRepo.On("GetByUserID", ctx, userID, 1, 10).Return(expected, pagination, nil).Once()

	list, p, err := s.service.GetNotificationsForUser(ctx, userID, 1, 10)

	s.NoError(err)
	s.Equal(expected, list)
	s.Equal(pagination, p)
	s.mockRepo.AssertExpectations(s.T())
}

func (s *NotificationServiceTestSuite) TestGetNotificationsForUser_RepoError() {
	ctx := context.Background()
	userID := uuid.New()
	s.mockRepo.On("GetByUserID", ctx, userID, 1, 10).Return(nil, nil, errors.New("db down")).Once()

	list, p, err := s.service.GetNotificationsForUser(ctx, userID, 1, 10)

	s.Nil(list)
	s.Nil(p)
	s.ErrorIs(err, common.ErrInternalServer)
}

func (s *NotificationServiceTestSuite) TestUnreadCount() {
	ctx := context.Background()
	userID := uuid.New()
	s.mockRepo.On("CountUnread", ctx, userID).Return(int64(3), nil).Once()

	n, err := s.service.UnreadCount(ctx, userID)

	s.NoError(err)
	s.Equal(int64(3), n)
}

func (s *NotificationServiceTestSuite) TestMarkNotificationAsRead_PassesNotFoundThrough() {
	ctx := context.Background()
	id, userID := uuid.New(), uuid.New()
	s.mockRepo.On("MarkAsRead", ctx, id, userID).Return(common.ErrNotFound.WithDetails("Notification not found.")).Once()

	err := s.service.MarkNotificationAsRead(ctx, id, userID)

	s.ErrorIs(err, common.ErrNotFound)
}

func (s *NotificationServiceTestSuite) TestMarkNotificationAsRead_WrapsStoreError() {
	ctx := context.Background()
	id, userID := uuid.New(), uuid.New()
	s.mockRepo.On("MarkAsRead", ctx, id, userID).Return(errors.New("db down")).Once()

	err := s.service.MarkNotificationAsRead(ctx, id, userID)

	s.ErrorIs(err, common.ErrInternalServer)
}

func (s *NotificationServiceTestSuite) TestMarkAllUserNotificationsAsRead() {
	ctx := context.Background()
	userID := uuid.New()
	s.mockRepo.On("MarkAllAsRead", ctx, userID).Return(int64(2), nil).Once()

	n, err := s.service.MarkAllUserNotificationsAsRead(ctx, userID)

	s.NoError(err)
	s.Equal(int64(2), n)
}

func TestGORMRepository_ReadFlow(t *testing.T) {
	db, err := database.NewTestDB()
	require.NoError(t, err)
	defer database.CloseGORMDB(db)

	ctx := context.Background()
	owner, stranger := uuid.New(), uuid.New()
	base := time.Now().UTC()
	for i := 0; i < 3; i++ {
		require.NoError(t, db.Create(&domain.Notification{
			UserID:    owner,
			Type:      domain.NotificationBorrowRequest,
			Title:     "New Borrow Request",
			Message:   "Someone wants to borrow your book",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}).Error)
	}
	repo := NewGORMRepository(db)

	list, pagination, err := repo.GetByUserID(ctx, owner, 1, 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, int64(3), pagination.TotalItems)
	assert.True(t, list[0].CreatedAt.After(list[1].CreatedAt))

	unread, err := repo.CountUnread(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, int64(3), unread)

	assert.ErrorIs(t, repo.MarkAsRead(ctx, list[0].ID, stranger), common.ErrNotFound)
	require.NoError(t, repo.MarkAsRead(ctx, list[0].ID, owner))
	require.NoError(t, repo.MarkAsRead(ctx, list[0].ID, owner))

	changed, err := repo.MarkAllAsRead(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, int64(2), changed)

	unread, err = repo.CountUnread(ctx, owner)
	require.NoError(t, err)
	assert.Zero(t, unread)
}
