package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"bookshare_backend/internal/auth"
	"bookshare_backend/internal/book"
	"bookshare_backend/internal/borrow"
	"bookshare_backend/internal/config"
	"bookshare_backend/internal/jobs"
	"bookshare_backend/internal/orchestrator"
	"bookshare_backend/internal/platform/database"
	"bookshare_backend/internal/platform/logger"
	"bookshare_backend/internal/search"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// env is loaded once per invocation by the root command.
type env struct {
	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	e := &env{}
	root := &cobra.Command{
		Use:           "bookctl",
		Short:         "Administrative tasks for the bookshare backend",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			l, err := logger.New(cfg)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			e.cfg, e.logger = cfg, l
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if e.logger != nil {
				_ = e.logger.Sync()
			}
		},
	}
	root.AddCommand(newMigrateCmd(e), newAuditCmd(e), newReindexCmd(e), newTokenCmd(e))
	return root
}

func (e *env) openDB() (*gorm.DB, error) {
	db, err := database.NewGORM(e.cfg, e.logger)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		e.closeDB(db)
		return nil, err
	}
	return db, nil
}

func (e *env) closeDB(db *gorm.DB) {
	if err := database.CloseGORMDB(db); err != nil {
		e.logger.Warn("Failed to close database", zap.Error(err))
	}
}

func newMigrateCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the schema and indexes",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := e.openDB()
			if err != nil {
				return err
			}
			defer e.closeDB(db)
			fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
			return nil
		},
	}
}

func newAuditCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "audit",
		Short: "Report books and requests whose states disagree",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := e.openDB()
			if err != nil {
				return err
			}
			defer e.closeDB(db)

			job := jobs.NewConsistencyAuditJob(book.NewGORMRepository(db), borrow.NewGORMRepository(db), e.logger, e.cfg)
			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
			defer cancel()
			violations, err := job.Run(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, v := range violations {
				fmt.Fprintf(out, "%s\t%s\t%s\n", v.BookID, v.Rule, v.Detail)
			}
			if len(violations) > 0 {
				return fmt.Errorf("%d violations found", len(violations))
			}
			fmt.Fprintln(out, "no violations")
			return nil
		},
	}
}

func newReindexCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "reindex",
		Short: "Rebuild the search index from the store",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := e.openDB()
			if err != nil {
				return err
			}
			defer e.closeDB(db)

			indexer := search.NewIndexer(e.cfg, e.logger)
			svc := book.NewService(book.NewGORMRepository(db), orchestrator.New(db, e.cfg, e.logger), indexer, nil, e.logger)
			n, err := svc.Reindex(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "indexed %d books\n", n)
			return nil
		},
	}
}

func newTokenCmd(e *env) *cobra.Command {
	var req auth.IssueTokenRequest
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a local HS256 token for development",
		RunE: func(cmd *cobra.Command, args []string) error {
			if e.cfg.JWTSecret == "" {
				return fmt.Errorf("JWT_SECRET is not set")
			}
			token, expiresAt, err := auth.NewJWTService(e.cfg, e.logger).Issue(req.Subject, req.Email, req.Name)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(auth.TokenResponse{AccessToken: token, TokenType: "Bearer", ExpiresAt: expiresAt.Unix()}); err != nil {
				return err
			}
			e.logger.Info("Issued development token", zap.String("subject", req.Subject), zap.Time("expiresAt", expiresAt))
			return nil
		},
	}
	cmd.Flags().StringVar(&req.Subject, "subject", "", "identity subject (required)")
	cmd.Flags().StringVar(&req.Email, "email", "", "email claim")
	cmd.Flags().StringVar(&req.Name, "name", "", "display name claim")
	_ = cmd.MarkFlagRequired("subject")
	return cmd
}
