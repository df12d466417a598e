// File: internal/borrow/repository.go
package borrow

import (
	"context"
	"errors"

	"bookshare_backend/internal/common"
	"bookshare_backend/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository reads borrow requests. Writes go through the orchestrator.
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*domain.BorrowRequest, error)
	ListForProfile(ctx context.Context, profileID uuid.UUID) ([]domain.BorrowRequest, error)
	ListAll(ctx context.Context) ([]domain.BorrowRequest, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM borrow request repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

// withParties preloads the book, including deleted ones, and both profiles.
func withParties(db *gorm.DB) *gorm.DB {
	return db.Preload("Book", func(tx *gorm.DB) *gorm.DB { return tx.Unscoped() }).
		Preload("Borrower").Preload("Lender")
}

func (r *gormRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.BorrowRequest, error) {
	var req domain.BorrowRequest
	err := withParties(r.db.WithContext(ctx)).Where("id = ?", id).First(&req).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("Borrow request not found.")
		}
		return nil, err
	}
	return &req, nil
}

// ListForProfile returns the requests where the profile is borrower or lender, newest first.
func (r *gormRepository) ListForProfile(ctx context.Context, profileID uuid.UUID) ([]domain.BorrowRequest, error) {
	var list []domain.BorrowRequest
	err := withParties(r.db.WithContext(ctx)).
		Where("borrower_id = ? OR lender_id = ?", profileID, profileID).
		Order("created_at DESC").
		Find(&list).Error
	return list, err
}

func (r *gormRepository) ListAll(ctx context.Context) ([]domain.BorrowRequest, error) {
	var list []domain.BorrowRequest
	err := r.db.WithContext(ctx).Order("created_at ASC").Find(&list).Error
	return list, err
}
