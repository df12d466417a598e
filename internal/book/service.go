// File: internal/book/service.go
package book

import (
	"context"
	"errors"
	"mime/multipart"
	"strings"

	"bookshare_backend/internal/common"
	"bookshare_backend/internal/domain"
	"bookshare_backend/internal/filestorage"
	"bookshare_backend/internal/lifecycle"
	"bookshare_backend/internal/orchestrator"
	"bookshare_backend/internal/search"
	"bookshare_backend/internal/views"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const searchLimit = 100

// CoverStorage stores cover uploads.
type CoverStorage interface {
	SaveCover(fh *multipart.FileHeader, bookID uuid.UUID) (string, error)
	DeleteCover(publicURL string) error
}

// Service defines the interface for book catalog operations.
type Service interface {
	CreateBook(ctx context.Context, ownerID uuid.UUID, req CreateBookRequest) (*domain.Book, error)
	GetBook(ctx context.Context, id uuid.UUID) (*domain.Book, error)
	UpdateBook(ctx context.Context, actorID, id uuid.UUID, req UpdateBookRequest) (*domain.Book, error)
	SetBookStatus(ctx context.Context, actorID uuid.UUID, actorName string, id uuid.UUID, status domain.BookStatus) (*domain.Book, error)
	DeleteBook(ctx context.Context, actorID uuid.UUID, actorName string, id uuid.UUID) error
	UploadCover(ctx context.Context, actorID, id uuid.UUID, fh *multipart.FileHeader) (*domain.Book, error)
	MyLibrary(ctx context.Context, ownerID uuid.UUID, q string) ([]domain.Book, error)
	Browse(ctx context.Context, viewerID uuid.UUID, q BrowseQuery) ([]domain.Book, *common.Pagination, error)
	Search(ctx context.Context, viewerID uuid.UUID, q string) ([]domain.Book, error)
	Genres(ctx context.Context) ([]views.GenreSummary, error)
	Reindex(ctx context.Context) (int, error)
}

// ServiceImplementation implements the book Service.
type ServiceImplementation struct {
	repo     Repository
	executor orchestrator.Executor
	indexer  search.Indexer
	covers   CoverStorage
	logger   *zap.Logger
}

// NewService creates a new book service.
func NewService(repo Repository, executor orchestrator.Executor, indexer search.Indexer, covers CoverStorage, logger *zap.Logger) *ServiceImplementation {
	return &ServiceImplementation{repo: repo, executor: executor, indexer: indexer, covers: covers, logger: logger.Named("book")}
}

func (s *ServiceImplementation) CreateBook(ctx context.Context, ownerID uuid.UUID, req CreateBookRequest) (*domain.Book, error) {
	b := &domain.Book{
		OwnerID:         ownerID,
		Title:           strings.TrimSpace(req.Title),
		Author:          strings.TrimSpace(req.Author),
		Genre:           trimmed(req.Genre),
		Description:     trimmed(req.Description),
		ISBN:            trimmed(req.ISBN),
		Pages:           req.Pages,
		PublicationYear: req.PublicationYear,
		Condition:       req.Condition,
		Status:          req.Status,
		CoverImageURL:   trimmed(req.CoverImageURL),
	}
	if b.Title == "" || b.Author == "" {
		return nil, common.NewValidationAPIError(map[string]string{"Title": "Title and author must not be blank."})
	}
	if b.Condition == "" {
		b.Condition = domain.ConditionGood
	}
	if b.Status == "" {
		b.Status = domain.BookAvailable
	}

	if err := s.repo.Create(ctx, b); err != nil {
		s.logger.Error("Failed to create book", zap.Error(err), zap.String("ownerID", ownerID.String()))
		return nil, err
	}
	s.index(ctx, b)
	s.logger.Info("Book created", zap.String("bookID", b.ID.String()), zap.String("ownerID", ownerID.String()))
	return b, nil
}

func (s *ServiceImplementation) GetBook(ctx context.Context, id uuid.UUID) (*domain.Book, error) {
	return s.repo.FindByID(ctx, id)
}

// UpdateBook edits details. Only the owner may edit.
func (s *ServiceImplementation) UpdateBook(ctx context.Context, actorID, id uuid.UUID, req UpdateBookRequest) (*domain.Book, error) {
	b, err := s.ownedBook(ctx, actorID, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		b.Title = strings.TrimSpace(*req.Title)
	}
	if req.Author != nil {
		b.Author = strings.TrimSpace(*req.Author)
	}
	if req.Genre != nil {
		b.Genre = trimmed(req.Genre)
	}
	if req.Description != nil {
		b.Description = trimmed(req.Description)
	}
	if req.ISBN != nil {
		b.ISBN = trimmed(req.ISBN)
	}
	if req.Pages != nil {
		b.Pages = req.Pages
	}
	if req.PublicationYear != nil {
		b.PublicationYear = req.PublicationYear
	}
	if req.Condition != nil {
		b.Condition = *req.Condition
	}
	if b.Title == "" || b.Author == "" {
		return nil, common.NewValidationAPIError(map[string]string{"Title": "Title and author must not be blank."})
	}

	if err := s.repo.UpdateDetails(ctx, b); err != nil {
		s.logger.Error("Failed to update book", zap.Error(err), zap.String("bookID", id.String()))
		return nil, err
	}
	s.index(ctx, b)
	return b, nil
}

// SetBookStatus changes availability through the lifecycle engine.
func (s *ServiceImplementation) SetBookStatus(ctx context.Context, actorID uuid.UUID, actorName string, id uuid.UUID, status domain.BookStatus) (*domain.Book, error) {
	res, err := s.executor.Execute(ctx, lifecycle.Command{
		Action:       lifecycle.ActionSetBookStatus,
		ActorID:      actorID,
		ActorName:    actorName,
		BookID:       id,
		TargetStatus: status,
	})
	if err != nil {
		return nil, lifecycle.ToAPIError(err)
	}
	s.index(ctx, res.Book)
	return res.Book, nil
}

// DeleteBook removes a book from the catalog. Its request history is kept.
func (s *ServiceImplementation) DeleteBook(ctx context.Context, actorID uuid.UUID, actorName string, id uuid.UUID) error {
	if _, err := s.executor.Execute(ctx, lifecycle.Command{
		Action:    lifecycle.ActionDeleteBook,
		ActorID:   actorID,
		ActorName: actorName,
		BookID:    id,
	}); err != nil {
		return lifecycle.ToAPIError(err)
	}
	if err := s.indexer.DeleteBook(ctx, id); err != nil {
		s.logger.Warn("Failed to remove book from search index", zap.Error(err), zap.String("bookID", id.String()))
	}
	s.logger.Info("Book deleted", zap.String("bookID", id.String()), zap.String("actorID", actorID.String()))
	return nil
}

// UploadCover stores a new cover image and replaces the old one.
func (s *ServiceImplementation) UploadCover(ctx context.Context, actorID, id uuid.UUID, fh *multipart.FileHeader) (*domain.Book, error) {
	b, err := s.ownedBook(ctx, actorID, id)
	if err != nil {
		return nil, err
	}

	url, err := s.covers.SaveCover(fh, id)
	switch {
	case errors.Is(err, filestorage.ErrUnsupportedType):
		return nil, common.ErrBadRequest.WithDetails("Cover must be a JPEG, PNG, GIF or WebP image.")
	case errors.Is(err, filestorage.ErrTooLarge):
		return nil, common.ErrBadRequest.WithDetails("Cover image is too large.")
	case err != nil:
		s.logger.Error("Failed to save cover", zap.Error(err), zap.String("bookID", id.String()))
		return nil, err
	}

	if err := s.repo.UpdateCover(ctx, id, url); err != nil {
		_ = s.covers.DeleteCover(url)
		return nil, err
	}
	if b.CoverImageURL != nil {
		if err := s.covers.DeleteCover(*b.CoverImageURL); err != nil {
			s.logger.Warn("Failed to delete previous cover", zap.Error(err), zap.String("bookID", id.String()))
		}
	}
	b.CoverImageURL = &url
	return b, nil
}

// MyLibrary lists the owner's books, optionally filtered by q.
func (s *ServiceImplementation) MyLibrary(ctx context.Context, ownerID uuid.UUID, q string) ([]domain.Book, error) {
	books, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return views.SearchBooks(books, q), nil
}

// Browse lists the books the viewer may request, filtered and paginated.
func (s *ServiceImplementation) Browse(ctx context.Context, viewerID uuid.UUID, q BrowseQuery) ([]domain.Book, *common.Pagination, error) {
	books, err := s.repo.ListAvailable(ctx)
	if err != nil {
		return nil, nil, err
	}
	books = views.FilterByGenre(views.SearchBooks(views.BrowseFilter(books, viewerID), q.Query), q.Genre)

	pq := common.PaginationQuery{Page: q.Page, PageSize: q.PageSize}.Normalized()
	page, pageSize := pq.Page, pq.PageSize
	start, end := common.PageBounds(len(books), page, pageSize)
	return books[start:end], common.NewPagination(int64(len(books)), page, pageSize), nil
}

// Search finds requestable books matching q, using the index when one is
// configured and the store otherwise.
func (s *ServiceImplementation) Search(ctx context.Context, viewerID uuid.UUID, q string) ([]domain.Book, error) {
	q = strings.TrimSpace(q)
	if q != "" && s.indexer.Enabled() {
		ids, err := s.indexer.SearchBookIDs(ctx, q, searchLimit)
		if err == nil {
			books, err := s.repo.FindByIDs(ctx, ids)
			if err != nil {
				return nil, err
			}
			return views.BrowseFilter(books, viewerID), nil
		}
		s.logger.Warn("Search index query failed; falling back to the store", zap.Error(err))
	}

	books, err := s.repo.ListAvailable(ctx)
	if err != nil {
		return nil, err
	}
	return views.SearchBooks(views.BrowseFilter(books, viewerID), q), nil
}

// Genres indexes the genres of available books.
func (s *ServiceImplementation) Genres(ctx context.Context) ([]views.GenreSummary, error) {
	books, err := s.repo.ListAvailable(ctx)
	if err != nil {
		return nil, err
	}
	return views.Genres(books), nil
}

// reindexBatchSize bounds one _bulk request.
const reindexBatchSize = 100

// Reindex pushes every live book to the search index in bulk batches and
// returns how many were accepted.
func (s *ServiceImplementation) Reindex(ctx context.Context) (int, error) {
	if !s.indexer.Enabled() {
		return 0, common.ErrServiceUnavailable.WithDetails("Search index is not configured.")
	}
	books, err := s.repo.ListAll(ctx)
	if err != nil {
		return 0, err
	}
	total := 0
	for start := 0; start < len(books); start += reindexBatchSize {
		end := start + reindexBatchSize
		if end > len(books) {
			end = len(books)
		}
		n, err := s.indexer.BulkIndex(ctx, books[start:end])
		total += n
		if err != nil {
			return total, err
		}
		s.logger.Info("Reindexed batch", zap.Int("from", start), zap.Int("count", n))
	}
	return total, nil
}

func (s *ServiceImplementation) ownedBook(ctx context.Context, actorID, id uuid.UUID) (*domain.Book, error) {
	b, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.OwnerID != actorID {
		return nil, common.ErrForbidden.WithDetails("Only the owner can change this book.")
	}
	return b, nil
}

func (s *ServiceImplementation) index(ctx context.Context, b *domain.Book) {
	if b == nil {
		return
	}
	if err := s.indexer.IndexBook(ctx, b); err != nil {
		s.logger.Warn("Failed to index book", zap.Error(err), zap.String("bookID", b.ID.String()))
	}
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
