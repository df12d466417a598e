package database

import (
	"fmt"

	"bookshare_backend/internal/domain"

	"gorm.io/gorm"
)

// activeRequestIndex enforces at most one pending or approved request per book.
const activeRequestIndex = `CREATE UNIQUE INDEX IF NOT EXISTS idx_borrow_requests_active_book
ON borrow_requests (book_id) WHERE status IN ('pending', 'approved')`

// Migrate creates or updates the schema.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&domain.Profile{},
		&domain.Book{},
		&domain.BorrowRequest{},
		&domain.Notification{},
		&domain.ReadingProgress{},
	); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	if err := db.Exec(activeRequestIndex).Error; err != nil {
		return fmt.Errorf("create active request index: %w", err)
	}
	return nil
}

// NewTestDB opens a migrated in-memory SQLite database.
func NewTestDB() (*gorm.DB, error) {
	db, err := OpenSQLite("file::memory:", nil)
	if err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}
