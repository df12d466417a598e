// File: internal/borrow/service.go
package borrow

import (
	"context"
	"strings"
	"time"

	"bookshare_backend/internal/common"
	"bookshare_backend/internal/lifecycle"
	"bookshare_backend/internal/orchestrator"
	"bookshare_backend/internal/search"
	"bookshare_backend/internal/views"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Actor is the authenticated party performing an operation.
type Actor struct {
	ID   uuid.UUID
	Name string
}

// Service defines the borrow request operations.
type Service interface {
	RequestBorrow(ctx context.Context, actor Actor, req CreateBorrowRequest) (*views.RequestView, error)
	Approve(ctx context.Context, actor Actor, requestID uuid.UUID) (*views.RequestView, error)
	Reject(ctx context.Context, actor Actor, requestID uuid.UUID) (*views.RequestView, error)
	MarkReturned(ctx context.Context, actor Actor, requestID uuid.UUID) (*views.RequestView, error)
	Get(ctx context.Context, viewerID, requestID uuid.UUID) (*views.RequestView, error)
	List(ctx context.Context, viewerID uuid.UUID, filter ListFilter) ([]views.RequestView, error)
}

// ServiceImplementation implements Service on top of the orchestrator.
type ServiceImplementation struct {
	repo     Repository
	executor orchestrator.Executor
	indexer  search.Indexer
	logger   *zap.Logger
	now      func() time.Time
}

// NewService creates a new borrow request service.
func NewService(repo Repository, executor orchestrator.Executor, indexer search.Indexer, logger *zap.Logger) *ServiceImplementation {
	return &ServiceImplementation{repo: repo, executor: executor, indexer: indexer, logger: logger.Named("borrow"), now: time.Now}
}

func (s *ServiceImplementation) RequestBorrow(ctx context.Context, actor Actor, req CreateBorrowRequest) (*views.RequestView, error) {
	if req.DueDate != nil && !req.DueDate.After(s.now()) {
		return nil, common.NewValidationAPIError(map[string]string{"DueDate": "The due date must be in the future."})
	}
	if req.Notes != nil {
		n := strings.TrimSpace(*req.Notes)
		if n == "" {
			req.Notes = nil
		} else {
			req.Notes = &n
		}
	}
	return s.run(ctx, actor, lifecycle.Command{
		Action:  lifecycle.ActionRequestBorrow,
		BookID:  req.BookID,
		Notes:   req.Notes,
		DueDate: req.DueDate,
	})
}

func (s *ServiceImplementation) Approve(ctx context.Context, actor Actor, requestID uuid.UUID) (*views.RequestView, error) {
	return s.run(ctx, actor, lifecycle.Command{Action: lifecycle.ActionApprove, RequestID: requestID})
}

func (s *ServiceImplementation) Reject(ctx context.Context, actor Actor, requestID uuid.UUID) (*views.RequestView, error) {
	return s.run(ctx, actor, lifecycle.Command{Action: lifecycle.ActionReject, RequestID: requestID})
}

func (s *ServiceImplementation) MarkReturned(ctx context.Context, actor Actor, requestID uuid.UUID) (*views.RequestView, error) {
	return s.run(ctx, actor, lifecycle.Command{Action: lifecycle.ActionReturn, RequestID: requestID})
}

// Get returns a request to one of its parties.
func (s *ServiceImplementation) Get(ctx context.Context, viewerID, requestID uuid.UUID) (*views.RequestView, error) {
	req, err := s.repo.FindByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.BorrowerID != viewerID && req.LenderID != viewerID {
		return nil, common.ErrForbidden.WithDetails("Only the borrower or lender can view this request.")
	}
	v := views.ToRequestView(*req, viewerID)
	return &v, nil
}

// List returns the viewer's requests labelled with their role.
func (s *ServiceImplementation) List(ctx context.Context, viewerID uuid.UUID, filter ListFilter) ([]views.RequestView, error) {
	list, err := s.repo.ListForProfile(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	return views.FilterRequests(views.LabelRequests(list, viewerID), filter.Role, filter.Status), nil
}

func (s *ServiceImplementation) run(ctx context.Context, actor Actor, cmd lifecycle.Command) (*views.RequestView, error) {
	cmd.ActorID = actor.ID
	cmd.ActorName = actor.Name

	res, err := s.executor.Execute(ctx, cmd)
	if err != nil {
		return nil, lifecycle.ToAPIError(err)
	}

	if res.Book != nil && res.Plan != nil && res.Plan.BookChange != nil && res.Plan.BookChange.From != res.Plan.BookChange.To {
		if err := s.indexer.IndexBook(ctx, res.Book); err != nil {
			s.logger.Warn("Failed to reindex book after transition", zap.Error(err), zap.String("bookID", res.Book.ID.String()))
		}
	}

	if res.Request == nil {
		return nil, common.ErrInternalServer
	}
	v := views.ToRequestView(*res.Request, actor.ID)
	return &v, nil
}
