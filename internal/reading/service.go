// Package reading tracks what a profile is reading. Progress is kept per
// (profile, book) and has no effect on the borrowing lifecycle.
package reading

import (
	"context"
	"time"

	"bookshare_backend/internal/common"
	"bookshare_backend/internal/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Service interface {
	List(ctx context.Context, userID uuid.UUID) ([]domain.ReadingProgress, error)
	Upsert(ctx context.Context, userID, bookID uuid.UUID, req UpsertProgressRequest) (*domain.ReadingProgress, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

type service struct {
	repo   Repository
	logger *zap.Logger
	now    func() time.Time
}

func NewService(repo Repository, logger *zap.Logger) Service {
	return &service{repo: repo, logger: logger, now: time.Now}
}

func (s *service) List(ctx context.Context, userID uuid.UUID) ([]domain.ReadingProgress, error) {
	list, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to list reading progress", zap.Error(err), zap.String("userID", userID.String()))
		return nil, common.ErrInternalServer.WithDetails("Could not retrieve reading progress.")
	}
	return list, nil
}

// Upsert creates or updates the caller's progress on a book. A first entry
// takes its total pages from the book when the request omits them. Moving to
// reading or finished stamps the matching date if none is set.
func (s *service) Upsert(ctx context.Context, userID, bookID uuid.UUID, req UpsertProgressRequest) (*domain.ReadingProgress, error) {
	book, err := s.repo.FindBook(ctx, bookID)
	if err != nil {
		return nil, s.storeError(err, "find book")
	}
	p, err := s.repo.FindByUserAndBook(ctx, userID, bookID)
	if err != nil {
		return nil, s.storeError(err, "find reading progress")
	}
	if p == nil {
		p = &domain.ReadingProgress{UserID: userID, BookID: bookID, Status: domain.ReadingWantToRead, TotalPages: book.Pages}
	}

	if req.PagesRead != nil {
		p.PagesRead = req.PagesRead
	}
	if req.TotalPages != nil {
		p.TotalPages = req.TotalPages
	}
	if req.Status != nil {
		p.Status = *req.Status
	}
	if req.StartedDate != nil {
		p.StartedDate = req.StartedDate
	}
	if req.FinishedDate != nil {
		p.FinishedDate = req.FinishedDate
	}
	if req.Notes != nil {
		p.Notes = req.Notes
	}

	if p.PagesRead != nil && p.TotalPages != nil && *p.PagesRead > *p.TotalPages {
		return nil, common.NewValidationAPIError(map[string]string{"pages_read": "must not exceed total_pages"})
	}
	if p.StartedDate != nil && p.FinishedDate != nil && p.FinishedDate.Before(*p.StartedDate) {
		return nil, common.NewValidationAPIError(map[string]string{"finished_date": "must not be before started_date"})
	}

	now := s.now().UTC()
	switch p.Status {
	case domain.ReadingInProgress:
		if p.StartedDate == nil {
			p.StartedDate = &now
		}
	case domain.ReadingFinished:
		if p.StartedDate == nil {
			p.StartedDate = &now
		}
		if p.FinishedDate == nil {
			p.FinishedDate = &now
		}
		if p.TotalPages != nil && p.PagesRead == nil {
			pages := *p.TotalPages
			p.PagesRead = &pages
		}
	}

	if err := s.repo.Save(ctx, p); err != nil {
		return nil, s.storeError(err, "save reading progress")
	}
	p.Book = book
	return p, nil
}

func (s *service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id, userID); err != nil {
		return s.storeError(err, "delete reading progress")
	}
	return nil
}

func (s *service) storeError(err error, op string) error {
	if _, ok := common.IsAPIError(err); ok {
		return err
	}
	s.logger.Error("Reading progress store failure", zap.String("op", op), zap.Error(err))
	return common.ErrInternalServer.WithDetails("Could not update reading progress.")
}
