// Package orchestrator executes lifecycle transition plans against the store as
// single all-or-nothing units.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bookshare_backend/internal/config"
	"bookshare_backend/internal/domain"
	"bookshare_backend/internal/lifecycle"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Result is the state of the affected entities after a transition committed.
type Result struct {
	Plan          *lifecycle.TransitionPlan
	Request       *domain.BorrowRequest
	Book          *domain.Book
	Notifications []domain.Notification
}

// Executor runs lifecycle commands.
type Executor interface {
	Execute(ctx context.Context, cmd lifecycle.Command) (*Result, error)
}

// Orchestrator is the GORM-backed Executor.
type Orchestrator struct {
	db       *gorm.DB
	logger   *zap.Logger
	now      func() time.Time
	attempts int
	backoff  time.Duration
}

// New creates an Orchestrator using the store retry settings from cfg.
func New(db *gorm.DB, cfg *config.Config, logger *zap.Logger) *Orchestrator {
	attempts := cfg.StoreRetryAttempts
	if attempts < 1 {
		attempts = 1
	}
	return &Orchestrator{
		db:       db,
		logger:   logger.Named("orchestrator"),
		now:      func() time.Time { return time.Now().UTC() },
		attempts: attempts,
		backoff:  cfg.StoreRetryBackoff,
	}
}

// Execute decides and applies cmd. Every outcome other than success is a
// *lifecycle.Rejection. Transient store failures are retried, re-reading state
// each time, but only while no write of the plan has been attempted.
func (o *Orchestrator) Execute(ctx context.Context, cmd lifecycle.Command) (*Result, error) {
	if cmd.Action == lifecycle.ActionRequestBorrow && cmd.RequestID == uuid.Nil {
		cmd.RequestID = uuid.New()
	}

	log := o.logger.With(
		zap.String("action", string(cmd.Action)),
		zap.String("actorID", cmd.ActorID.String()),
	)

	for attempt := 1; ; attempt++ {
		res, wrote, err := o.attempt(ctx, cmd)
		if err == nil {
			log.Info("Lifecycle transition applied", zap.Int("attempt", attempt), zap.String("bookID", bookIDOf(res)))
			return res, nil
		}

		var rejection *lifecycle.Rejection
		if errors.As(err, &rejection) {
			log.Info("Lifecycle transition rejected", zap.String("kind", string(rejection.Kind)), zap.String("reason", rejection.Reason))
			return nil, rejection
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			log.Info("Lifecycle transition lost an active-request race", zap.Error(err))
			return nil, lifecycle.NewRejection(lifecycle.KindConflict, "book already has an active borrow request")
		}
		if !isTransient(err) {
			log.Error("Lifecycle transition failed", zap.Error(err))
			return nil, fmt.Errorf("execute %s: %w", cmd.Action, err)
		}
		if wrote {
			log.Warn("Store failed after writes were attempted; not retrying", zap.Error(err))
			return nil, lifecycle.NewRejection(lifecycle.KindStoreUnavailable, "store failed while applying the transition")
		}
		if attempt >= o.attempts || ctx.Err() != nil {
			log.Warn("Store unavailable; giving up", zap.Int("attempts", attempt), zap.Error(err))
			return nil, lifecycle.NewRejection(lifecycle.KindStoreUnavailable, "store is unavailable")
		}

		log.Warn("Transient store failure before any write; retrying", zap.Int("attempt", attempt), zap.Error(err))
		select {
		case <-ctx.Done():
			return nil, lifecycle.NewRejection(lifecycle.KindStoreUnavailable, ctx.Err().Error())
		case <-time.After(o.backoff * time.Duration(attempt)):
		}
	}
}

// attempt runs one transaction. wrote reports whether any write was issued.
func (o *Orchestrator) attempt(ctx context.Context, cmd lifecycle.Command) (res *Result, wrote bool, err error) {
	err = o.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		st, err := loadState(tx, cmd)
		if err != nil {
			return err
		}
		now := o.now()
		plan, err := lifecycle.Plan(cmd, st, now)
		if err != nil {
			return err
		}

		wrote = true
		if err := applyPlan(tx, plan, now); err != nil {
			return err
		}

		res, err = reload(tx, plan, st)
		return err
	})
	return res, wrote, err
}

// loadState reads the snapshot for cmd. On postgres the book row is locked for
// the rest of the transaction so transitions on one book are serialized.
func loadState(tx *gorm.DB, cmd lifecycle.Command) (lifecycle.State, error) {
	var st lifecycle.State

	bookID := cmd.BookID
	switch cmd.Action {
	case lifecycle.ActionApprove, lifecycle.ActionReject, lifecycle.ActionReturn:
		var req domain.BorrowRequest
		err := tx.Where("id = ?", cmd.RequestID).First(&req).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return st, nil
		}
		if err != nil {
			return st, err
		}
		bookID = req.BookID
	}

	var book domain.Book
	err := lockForUpdate(tx).Where("id = ?", bookID).First(&book).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
	case err != nil:
		return st, err
	default:
		st.Book = &book
	}

	if cmd.RequestID != uuid.Nil && cmd.Action != lifecycle.ActionRequestBorrow {
		var req domain.BorrowRequest
		err := lockForUpdate(tx).Where("id = ?", cmd.RequestID).First(&req).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
		case err != nil:
			return st, err
		default:
			st.Request = &req
		}
	}

	if err := tx.Where("book_id = ? AND status IN ?", bookID, domain.ActiveRequestStatuses).
		Find(&st.ActiveRequests).Error; err != nil {
		return st, err
	}
	return st, nil
}

func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// applyPlan issues the plan's writes. Status updates are compare-and-set on the
// planned prior status; a miss means another unit got there first.
func applyPlan(tx *gorm.DB, plan *lifecycle.TransitionPlan, now time.Time) error {
	if plan.NewRequest != nil {
		if err := tx.Create(plan.NewRequest).Error; err != nil {
			return err
		}
	}

	if rc := plan.RequestChange; rc != nil {
		updates := map[string]interface{}{"status": rc.To, "updated_at": now}
		if rc.ApprovedDate != nil {
			updates["approved_date"] = *rc.ApprovedDate
		}
		if rc.ReturnedDate != nil {
			updates["returned_date"] = *rc.ReturnedDate
		}
		r := tx.Model(&domain.BorrowRequest{}).
			Where("id = ? AND status = ?", rc.RequestID, rc.From).
			Updates(updates)
		if r.Error != nil {
			return r.Error
		}
		if r.RowsAffected == 0 {
			return lifecycle.NewRejection(lifecycle.KindInvalidState, fmt.Sprintf("request is no longer %s", rc.From))
		}
	}

	if bc := plan.BookChange; bc != nil {
		q := tx.Where("id = ? AND status = ?", bc.BookID, bc.From)
		var r *gorm.DB
		if plan.DeleteBook {
			r = q.Delete(&domain.Book{})
		} else {
			r = q.Model(&domain.Book{}).Updates(map[string]interface{}{"status": bc.To, "updated_at": now})
		}
		if r.Error != nil {
			return r.Error
		}
		if r.RowsAffected == 0 {
			return lifecycle.NewRejection(lifecycle.KindInvalidState, fmt.Sprintf("book is no longer %s", bc.From))
		}
	}

	if len(plan.Notifications) > 0 {
		if err := tx.Create(&plan.Notifications).Error; err != nil {
			return err
		}
	}
	return nil
}

func reload(tx *gorm.DB, plan *lifecycle.TransitionPlan, st lifecycle.State) (*Result, error) {
	res := &Result{Plan: plan, Notifications: plan.Notifications}

	var requestID uuid.UUID
	switch {
	case plan.NewRequest != nil:
		requestID = plan.NewRequest.ID
	case plan.RequestChange != nil:
		requestID = plan.RequestChange.RequestID
	}
	if requestID != uuid.Nil {
		var req domain.BorrowRequest
		if err := tx.Preload("Book", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
			Preload("Borrower").Preload("Lender").
			Where("id = ?", requestID).First(&req).Error; err != nil {
			return nil, err
		}
		res.Request = &req
	}

	if st.Book != nil {
		var book domain.Book
		if err := tx.Unscoped().Where("id = ?", st.Book.ID).First(&book).Error; err != nil {
			return nil, err
		}
		res.Book = &book
	}
	return res, nil
}

func bookIDOf(res *Result) string {
	if res == nil || res.Book == nil {
		return ""
	}
	return res.Book.ID.String()
}
