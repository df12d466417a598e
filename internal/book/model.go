// File: internal/book/model.go
package book

import (
	"bookshare_backend/internal/domain"
)

// CreateBookRequest is the body of POST /books.
type CreateBookRequest struct {
	Title           string               `json:"title" binding:"required,max=255"`
	Author          string               `json:"author" binding:"required,max=255"`
	Genre           *string              `json:"genre" binding:"omitempty,max=100"`
	Description     *string              `json:"description"`
	ISBN            *string              `json:"isbn" binding:"omitempty,max=20"`
	Pages           *int                 `json:"pages" binding:"omitempty,gte=0"`
	PublicationYear *int                 `json:"publication_year" binding:"omitempty,gte=0"`
	Condition       domain.BookCondition `json:"condition" binding:"omitempty,oneof=excellent good fair poor"`
	Status          domain.BookStatus    `json:"status" binding:"omitempty,oneof=available for_sale not_available"`
	CoverImageURL   *string              `json:"cover_image_url" binding:"omitempty,url"`
}

// UpdateBookRequest edits book details. Nil fields are left unchanged; status
// has its own endpoint.
type UpdateBookRequest struct {
	Title           *string               `json:"title" binding:"omitempty,min=1,max=255"`
	Author          *string               `json:"author" binding:"omitempty,min=1,max=255"`
	Genre           *string               `json:"genre" binding:"omitempty,max=100"`
	Description     *string               `json:"description"`
	ISBN            *string               `json:"isbn" binding:"omitempty,max=20"`
	Pages           *int                  `json:"pages" binding:"omitempty,gte=0"`
	PublicationYear *int                  `json:"publication_year" binding:"omitempty,gte=0"`
	Condition       *domain.BookCondition `json:"condition" binding:"omitempty,oneof=excellent good fair poor"`
}

// SetStatusRequest is the body of PATCH /books/:id/status.
type SetStatusRequest struct {
	Status domain.BookStatus `json:"status" binding:"required,oneof=available borrowed for_sale not_available"`
}

// BrowseQuery are the browse filters.
type BrowseQuery struct {
	Query    string
	Genre    string
	Page     int
	PageSize int
}
