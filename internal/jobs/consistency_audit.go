// File: internal/jobs/consistency_audit.go
package jobs

import (
	"context"
	"fmt"
	"time"

	"bookshare_backend/internal/config"
	"bookshare_backend/internal/domain"
	"bookshare_backend/internal/lifecycle"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// BookLister lists every live book.
type BookLister interface {
	ListAll(ctx context.Context) ([]domain.Book, error)
}

// RequestLister lists every borrow request.
type RequestLister interface {
	ListAll(ctx context.Context) ([]domain.BorrowRequest, error)
}

// ConsistencyAuditJob scans the store for books and requests whose stored
// states disagree. It only reads and logs.
type ConsistencyAuditJob struct {
	books         BookLister
	requests      RequestLister
	logger        *zap.Logger
	cfg           *config.Config
	cronScheduler *cron.Cron
}

// NewConsistencyAuditJob creates a new ConsistencyAuditJob.
func NewConsistencyAuditJob(books BookLister, requests RequestLister, logger *zap.Logger, cfg *config.Config) *ConsistencyAuditJob {
	scheduler := cron.New(cron.WithLogger(NewCronLogger(logger.Named("cron"))),
		cron.WithChain(cron.SkipIfStillRunning(NewCronLogger(logger.Named("cron")))))

	return &ConsistencyAuditJob{
		books:         books,
		requests:      requests,
		logger:        logger.Named("ConsistencyAuditJob"),
		cfg:           cfg,
		cronScheduler: scheduler,
	}
}

// SetupAndStart schedules and starts the cron job.
func (j *ConsistencyAuditJob) SetupAndStart() error {
	jobSpec := j.cfg.ConsistencyAuditSchedule
	if jobSpec == "" {
		j.logger.Warn("Consistency audit schedule not defined (CONSISTENCY_AUDIT_SCHEDULE). Job will not run.")
		return nil
	}

	jobID, err := j.cronScheduler.AddFunc(jobSpec, j.runJob)
	if err != nil {
		j.logger.Error("Failed to schedule consistency audit", zap.String("spec", jobSpec), zap.Error(err))
		return err
	}

	j.logger.Info("Consistency audit scheduled", zap.String("spec", jobSpec), zap.Any("jobID", jobID))
	j.cronScheduler.Start()
	return nil
}

// Run loads every book and request and returns the invariant violations found.
func (j *ConsistencyAuditJob) Run(ctx context.Context) ([]lifecycle.Violation, error) {
	books, err := j.books.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	requests, err := j.requests.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list borrow requests: %w", err)
	}

	violations := lifecycle.CheckConsistency(books, requests)
	for _, v := range violations {
		j.logger.Warn("Lifecycle invariant violated",
			zap.String("bookID", v.BookID.String()),
			zap.String("rule", v.Rule),
			zap.String("detail", v.Detail))
	}
	j.logger.Info("Consistency audit completed",
		zap.Int("books", len(books)),
		zap.Int("requests", len(requests)),
		zap.Int("violations", len(violations)))
	return violations, nil
}

func (j *ConsistencyAuditJob) runJob() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if _, err := j.Run(ctx); err != nil {
		j.logger.Error("Consistency audit run failed", zap.Error(err))
	}
}

// Stop gracefully stops the cron scheduler.
func (j *ConsistencyAuditJob) Stop() {
	if j.cronScheduler == nil {
		return
	}
	stopCtx := j.cronScheduler.Stop()
	select {
	case <-stopCtx.Done():
		j.logger.Info("Consistency audit scheduler stopped gracefully.")
	case <-time.After(10 * time.Second):
		j.logger.Warn("Consistency audit scheduler stop timed out.")
	}
}
