package reading

import (
	"context"
	"errors"

	"bookshare_backend/internal/common"
	"bookshare_backend/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists reading progress entries.
type Repository interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.ReadingProgress, error)
	FindByUserAndBook(ctx context.Context, userID, bookID uuid.UUID) (*domain.ReadingProgress, error)
	FindBook(ctx context.Context, bookID uuid.UUID) (*domain.Book, error)
	Save(ctx context.Context, p *domain.ReadingProgress) error
	Delete(ctx context.Context, id, userID uuid.UUID) error
}

type gormRepository struct {
	db *gorm.DB
}

func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.ReadingProgress, error) {
	var list []domain.ReadingProgress
	err := r.db.WithContext(ctx).
		Preload("Book", func(tx *gorm.DB) *gorm.DB { return tx.Unscoped() }).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Find(&list).Error
	return list, err
}

// FindByUserAndBook returns nil without error when no entry exists.
func (r *gormRepository) FindByUserAndBook(ctx context.Context, userID, bookID uuid.UUID) (*domain.ReadingProgress, error) {
	var p domain.ReadingProgress
	err := r.db.WithContext(ctx).Where("user_id = ? AND book_id = ?", userID, bookID).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *gormRepository) FindBook(ctx context.Context, bookID uuid.UUID) (*domain.Book, error) {
	var b domain.Book
	if err := r.db.WithContext(ctx).Where("id = ?", bookID).First(&b).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("Book not found.")
		}
		return nil, err
	}
	return &b, nil
}

// Save inserts or updates p. A concurrent insert for the same book surfaces as a conflict.
func (r *gormRepository) Save(ctx context.Context, p *domain.ReadingProgress) error {
	err := r.db.WithContext(ctx).Save(p).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return common.ErrConflict.WithDetails("Reading progress for this book already exists.")
	}
	return err
}

func (r *gormRepository) Delete(ctx context.Context, id, userID uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&domain.ReadingProgress{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return common.ErrNotFound.WithDetails("Reading progress not found.")
	}
	return nil
}
