// Package dashboard serves a viewer's summary counts.
package dashboard

import (
	"context"

	"bookshare_backend/internal/common"
	"bookshare_backend/internal/domain"
	"bookshare_backend/internal/views"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OwnedBooks lists the books a profile owns.
type OwnedBooks interface {
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Book, error)
}

// PartyRequests lists the requests where a profile is borrower or lender.
type PartyRequests interface {
	ListForProfile(ctx context.Context, profileID uuid.UUID) ([]domain.BorrowRequest, error)
}

type Service struct {
	books    OwnedBooks
	requests PartyRequests
	logger   *zap.Logger
}

func NewService(books OwnedBooks, requests PartyRequests, logger *zap.Logger) *Service {
	return &Service{books: books, requests: requests, logger: logger}
}

// Stats computes the viewer's dashboard counts.
func (s *Service) Stats(ctx context.Context, viewer uuid.UUID) (views.DashboardStats, error) {
	books, err := s.books.ListByOwner(ctx, viewer)
	if err != nil {
		s.logger.Error("Dashboard: failed to list books", zap.Error(err), zap.String("userID", viewer.String()))
		return views.DashboardStats{}, common.ErrInternalServer.WithDetails("Could not load dashboard.")
	}
	requests, err := s.requests.ListForProfile(ctx, viewer)
	if err != nil {
		s.logger.Error("Dashboard: failed to list requests", zap.Error(err), zap.String("userID", viewer.String()))
		return views.DashboardStats{}, common.ErrInternalServer.WithDetails("Could not load dashboard.")
	}
	return views.ComputeDashboard(books, requests, viewer), nil
}
