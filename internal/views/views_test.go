package views

import (
	"testing"

	"bookshare_backend/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func book(owner uuid.UUID, title, author string, genre *string, status domain.BookStatus) domain.Book {
	b := domain.Book{OwnerID: owner, Title: title, Author: author, Genre: genre, Status: status}
	b.ID = uuid.New()
	return b
}

func TestSearchBooks_MatchesAuthorCaseInsensitively(t *testing.T) {
	owner := uuid.New()
	hobbit := book(owner, "The Hobbit", "J.R.R. Tolkien", nil, domain.BookAvailable)
	dune := book(owner, "Dune", "Frank Herbert", strPtr("Science Fiction"), domain.BookAvailable)

	got := SearchBooks([]domain.Book{hobbit, dune}, "tolk")
	require.Len(t, got, 1)
	assert.Equal(t, hobbit.ID, got[0].ID)
}

func TestSearchBooks_MatchesTitleAndGenre(t *testing.T) {
	owner := uuid.New()
	hobbit := book(owner, "The Hobbit", "J.R.R. Tolkien", strPtr("Fantasy"), domain.BookAvailable)
	dune := book(owner, "Dune", "Frank Herbert", strPtr("Science Fiction"), domain.BookAvailable)
	books := []domain.Book{hobbit, dune}

	assert.Len(t, SearchBooks(books, "HOBB"), 1)
	assert.Len(t, SearchBooks(books, "fiction"), 1)
	assert.Len(t, SearchBooks(books, "  "), 2)
	assert.Empty(t, SearchBooks(books, "austen"))
}

func TestBrowseFilter_ExcludesOwnAndUnavailable(t *testing.T) {
	viewer := uuid.New()
	other := uuid.New()
	mine := book(viewer, "Mine", "Me", nil, domain.BookAvailable)
	lendable := book(other, "Lendable", "Them", nil, domain.BookAvailable)
	borrowed := book(other, "Borrowed", "Them", nil, domain.BookBorrowed)
	forSale := book(other, "For Sale", "Them", nil, domain.BookForSale)

	got := BrowseFilter([]domain.Book{mine, lendable, borrowed, forSale}, viewer)
	require.Len(t, got, 1)
	assert.Equal(t, lendable.ID, got[0].ID)
}

func TestGenres_GroupsBySlug(t *testing.T) {
	owner := uuid.New()
	books := []domain.Book{
		book(owner, "A", "x", strPtr("Science Fiction"), domain.BookAvailable),
		book(owner, "B", "x", strPtr("science fiction "), domain.BookAvailable),
		book(owner, "C", "x", strPtr("Fantasy"), domain.BookAvailable),
		book(owner, "D", "x", nil, domain.BookAvailable),
	}

	got := Genres(books)
	require.Len(t, got, 2)
	assert.Equal(t, GenreSummary{Key: "science-fiction", Name: "Science Fiction", Count: 2}, got[0])
	assert.Equal(t, "fantasy", got[1].Key)

	assert.Len(t, FilterByGenre(books, "Science Fiction"), 2)
	assert.Len(t, FilterByGenre(books, ""), 4)
}

func TestLabelRequests_RolesAndCounterParty(t *testing.T) {
	viewer := uuid.New()
	other := uuid.New()
	viewerProfile := &domain.Profile{FullName: "Vera"}
	otherProfile := &domain.Profile{FullName: "Oscar"}
	bk := &domain.Book{Title: "Emma", Author: "Jane Austen"}

	asBorrower := domain.BorrowRequest{BorrowerID: viewer, Borrower: viewerProfile, LenderID: other, Lender: otherProfile, Book: bk, Status: domain.RequestPending}
	asLender := domain.BorrowRequest{BorrowerID: other, Borrower: otherProfile, LenderID: viewer, Lender: viewerProfile, Book: bk, Status: domain.RequestApproved}

	got := LabelRequests([]domain.BorrowRequest{asBorrower, asLender}, viewer)
	require.Len(t, got, 2)
	assert.Equal(t, RoleBorrower, got[0].Role)
	assert.Equal(t, "Oscar", got[0].CounterPartyName)
	assert.Equal(t, "Emma", got[0].BookTitle)
	assert.Equal(t, RoleLender, got[1].Role)
	assert.Equal(t, "Oscar", got[1].CounterPartyName)

	assert.Len(t, FilterRequests(got, RoleLender, ""), 1)
	assert.Len(t, FilterRequests(got, "", domain.RequestPending), 1)
	assert.Empty(t, FilterRequests(got, RoleLender, domain.RequestPending))
}

func TestComputeDashboard(t *testing.T) {
	viewer := uuid.New()
	other := uuid.New()
	books := []domain.Book{
		book(viewer, "A", "x", nil, domain.BookAvailable),
		book(viewer, "B", "x", nil, domain.BookBorrowed),
		book(viewer, "C", "x", nil, domain.BookNotAvailable),
		book(other, "D", "x", nil, domain.BookAvailable),
	}
	requests := []domain.BorrowRequest{
		{BorrowerID: viewer, LenderID: other, Status: domain.RequestPending},
		{BorrowerID: other, LenderID: viewer, Status: domain.RequestPending},
		{BorrowerID: other, LenderID: viewer, Status: domain.RequestApproved},
		{BorrowerID: other, LenderID: uuid.New(), Status: domain.RequestPending},
	}

	assert.Equal(t, DashboardStats{TotalBooks: 3, AvailableBooks: 1, BorrowedBooks: 1, PendingRequests: 2},
		ComputeDashboard(books, requests, viewer))
}

func TestToBookCard_IncludesOwner(t *testing.T) {
	b := book(uuid.New(), "Dune", "Frank Herbert", strPtr("Science Fiction"), domain.BookAvailable)
	b.Owner = &domain.Profile{FullName: "Olivia", Location: strPtr("Portland")}

	card := ToBookCard(b)
	assert.Equal(t, "Olivia", card.OwnerName)
	assert.Equal(t, "Portland", *card.OwnerLocation)
	assert.Equal(t, "science-fiction", card.GenreKey)
}
