// Package views turns store rows into response shapes and applies the list
// filters the screens rely on. Everything here is stateless.
package views

import (
	"sort"
	"strings"
	"time"

	"bookshare_backend/internal/domain"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

// BookCard is a book as listed to other users, with its owner's display attributes.
type BookCard struct {
	ID              uuid.UUID            `json:"id"`
	OwnerID         uuid.UUID            `json:"owner_id"`
	OwnerName       string               `json:"owner_name,omitempty"`
	OwnerLocation   *string              `json:"owner_location,omitempty"`
	Title           string               `json:"title"`
	Author          string               `json:"author"`
	Genre           *string              `json:"genre,omitempty"`
	GenreKey        string               `json:"genre_key,omitempty"`
	Description     *string              `json:"description,omitempty"`
	ISBN            *string              `json:"isbn,omitempty"`
	Pages           *int                 `json:"pages,omitempty"`
	PublicationYear *int                 `json:"publication_year,omitempty"`
	Condition       domain.BookCondition `json:"condition"`
	Status          domain.BookStatus    `json:"status"`
	CoverImageURL   *string              `json:"cover_image_url,omitempty"`
	CreatedAt       time.Time            `json:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at"`
}

// ToBookCard projects a book. The owner is optional.
func ToBookCard(b domain.Book) BookCard {
	card := BookCard{
		ID:              b.ID,
		OwnerID:         b.OwnerID,
		Title:           b.Title,
		Author:          b.Author,
		Genre:           b.Genre,
		Description:     b.Description,
		ISBN:            b.ISBN,
		Pages:           b.Pages,
		PublicationYear: b.PublicationYear,
		Condition:       b.Condition,
		Status:          b.Status,
		CoverImageURL:   b.CoverImageURL,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
	if b.Genre != nil {
		card.GenreKey = GenreKey(*b.Genre)
	}
	if b.Owner != nil {
		card.OwnerName = b.Owner.FullName
		card.OwnerLocation = b.Owner.Location
	}
	return card
}

// ToBookCards projects a list of books.
func ToBookCards(books []domain.Book) []BookCard {
	cards := make([]BookCard, 0, len(books))
	for _, b := range books {
		cards = append(cards, ToBookCard(b))
	}
	return cards
}

// MatchesQuery reports whether q is a case-insensitive substring of the
// book's title, author or genre. An empty query matches everything.
func MatchesQuery(b domain.Book, q string) bool {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return true
	}
	if strings.Contains(strings.ToLower(b.Title), q) || strings.Contains(strings.ToLower(b.Author), q) {
		return true
	}
	return b.Genre != nil && strings.Contains(strings.ToLower(*b.Genre), q)
}

// SearchBooks returns the books matching q, preserving order.
func SearchBooks(books []domain.Book, q string) []domain.Book {
	out := make([]domain.Book, 0, len(books))
	for _, b := range books {
		if MatchesQuery(b, q) {
			out = append(out, b)
		}
	}
	return out
}

// BrowseFilter keeps the books a viewer may request: available and not their own.
func BrowseFilter(books []domain.Book, viewer uuid.UUID) []domain.Book {
	out := make([]domain.Book, 0, len(books))
	for _, b := range books {
		if b.OwnerID == viewer || b.Status != domain.BookAvailable {
			continue
		}
		out = append(out, b)
	}
	return out
}

// GenreKey normalizes a genre label, e.g. "Science Fiction" -> "science-fiction".
func GenreKey(genre string) string {
	return slug.Make(strings.TrimSpace(genre))
}

// FilterByGenre keeps the books whose genre normalizes to key. An empty key keeps all.
func FilterByGenre(books []domain.Book, key string) []domain.Book {
	key = GenreKey(key)
	if key == "" {
		return books
	}
	out := make([]domain.Book, 0, len(books))
	for _, b := range books {
		if b.Genre != nil && GenreKey(*b.Genre) == key {
			out = append(out, b)
		}
	}
	return out
}

// GenreSummary counts books per normalized genre.
type GenreSummary struct {
	Key   string `json:"key"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Genres groups books by genre key. The first label seen names the group.
// Results are ordered by count, then name.
func Genres(books []domain.Book) []GenreSummary {
	index := make(map[string]int)
	var out []GenreSummary
	for _, b := range books {
		if b.Genre == nil {
			continue
		}
		key := GenreKey(*b.Genre)
		if key == "" {
			continue
		}
		if i, ok := index[key]; ok {
			out[i].Count++
			continue
		}
		index[key] = len(out)
		out = append(out, GenreSummary{Key: key, Name: strings.TrimSpace(*b.Genre), Count: 1})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}
