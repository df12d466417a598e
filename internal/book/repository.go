// File: internal/book/repository.go
package book

import (
	"context"
	"errors"

	"bookshare_backend/internal/common"
	"bookshare_backend/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines the interface for book data operations. Status changes
// and deletion go through the orchestrator, not here.
type Repository interface {
	Create(ctx context.Context, b *domain.Book) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Book, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Book, error)
	UpdateDetails(ctx context.Context, b *domain.Book) error
	UpdateCover(ctx context.Context, id uuid.UUID, url string) error
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Book, error)
	ListAvailable(ctx context.Context) ([]domain.Book, error)
	ListAll(ctx context.Context) ([]domain.Book, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM book repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

// detailColumns are the fields an owner may edit directly.
var detailColumns = []string{
	"title", "author", "genre", "description", "isbn", "pages", "publication_year", "condition", "updated_at",
}

func (r *gormRepository) Create(ctx context.Context, b *domain.Book) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *gormRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Book, error) {
	var b domain.Book
	err := r.db.WithContext(ctx).Preload("Owner").Where("id = ?", id).First(&b).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("Book not found.")
		}
		return nil, err
	}
	return &b, nil
}

// FindByIDs returns the live books among ids, in the order of ids.
func (r *gormRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Book, error) {
	if len(ids) == 0 {
		return []domain.Book{}, nil
	}
	var found []domain.Book
	if err := r.db.WithContext(ctx).Preload("Owner").Where("id IN ?", ids).Find(&found).Error; err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]domain.Book, len(found))
	for _, b := range found {
		byID[b.ID] = b
	}
	out := make([]domain.Book, 0, len(found))
	for _, id := range ids {
		if b, ok := byID[id]; ok {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *gormRepository) UpdateDetails(ctx context.Context, b *domain.Book) error {
	res := r.db.WithContext(ctx).Model(b).Select(detailColumns).Updates(b)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return common.ErrNotFound.WithDetails("Book not found.")
	}
	return nil
}

func (r *gormRepository) UpdateCover(ctx context.Context, id uuid.UUID, url string) error {
	res := r.db.WithContext(ctx).Model(&domain.Book{}).Where("id = ?", id).Update("cover_image_url", url)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return common.ErrNotFound.WithDetails("Book not found.")
	}
	return nil
}

func (r *gormRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Book, error) {
	var books []domain.Book
	err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).Order("created_at DESC").Find(&books).Error
	return books, err
}

func (r *gormRepository) ListAvailable(ctx context.Context) ([]domain.Book, error) {
	var books []domain.Book
	err := r.db.WithContext(ctx).Preload("Owner").
		Where("status = ?", domain.BookAvailable).
		Order("created_at DESC").Find(&books).Error
	return books, err
}

func (r *gormRepository) ListAll(ctx context.Context) ([]domain.Book, error) {
	var books []domain.Book
	err := r.db.WithContext(ctx).Order("created_at ASC").Find(&books).Error
	return books, err
}
