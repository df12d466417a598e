package search

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"bookshare_backend/internal/domain"
	"bookshare_backend/internal/views"
)

// BookDocument is the indexed form of a book.
type BookDocument struct {
	Title       string    `json:"title"`
	Author      string    `json:"author"`
	Genre       string    `json:"genre,omitempty"`
	GenreKey    string    `json:"genre_key,omitempty"`
	Description string    `json:"description,omitempty"`
	ISBN        string    `json:"isbn,omitempty"`
	OwnerID     string    `json:"owner_id"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// BookToDocument converts a book to its index representation.
func BookToDocument(b *domain.Book) ([]byte, error) {
	if b == nil {
		return nil, errors.New("book cannot be nil")
	}
	doc := BookDocument{
		Title:     b.Title,
		Author:    b.Author,
		OwnerID:   b.OwnerID.String(),
		Status:    string(b.Status),
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
	if b.Genre != nil {
		doc.Genre = *b.Genre
		doc.GenreKey = views.GenreKey(*b.Genre)
	}
	if b.Description != nil {
		doc.Description = *b.Description
	}
	if b.ISBN != nil {
		doc.ISBN = *b.ISBN
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("error marshalling book to JSON for ES: %w", err)
	}
	return body, nil
}
