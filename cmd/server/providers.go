package main

import (
	"bookshare_backend/internal/app"
	"bookshare_backend/internal/auth"
	"bookshare_backend/internal/book"
	"bookshare_backend/internal/borrow"
	"bookshare_backend/internal/config"
	"bookshare_backend/internal/dashboard"
	"bookshare_backend/internal/firebase"
	"bookshare_backend/internal/jobs"
	"bookshare_backend/internal/middleware"
	"bookshare_backend/internal/platform/database"
	"bookshare_backend/internal/profile"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// provideDatabase opens and migrates the store. The cleanup closes it.
func provideDatabase(cfg *config.Config, logger *zap.Logger) (*gorm.DB, func(), error) {
	db, err := database.NewGORM(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	if err := database.Migrate(db); err != nil {
		if closeErr := database.CloseGORMDB(db); closeErr != nil {
			logger.Warn("Closing database after failed migration", zap.Error(closeErr))
		}
		return nil, nil, err
	}
	cleanup := func() {
		logger.Info("Closing database connection")
		if err := database.CloseGORMDB(db); err != nil {
			logger.Error("Failed to close database", zap.Error(err))
		}
		_ = logger.Sync()
	}
	return db, cleanup, nil
}

// provideVerifier selects the identity provider named by AUTH_PROVIDER.
func provideVerifier(cfg *config.Config, logger *zap.Logger) (auth.Verifier, error) {
	if cfg.AuthProvider == config.AuthProviderFirebase {
		return firebase.NewFirebaseService(cfg, logger)
	}
	logger.Info("Using local JWT identity provider", zap.String("issuer", cfg.JWTIssuer))
	return auth.NewJWTService(cfg, logger), nil
}

func provideBlocklist() auth.TokenBlocklistService {
	return auth.NewInMemoryBlocklistService(auth.DefaultBlocklistConfig())
}

func provideAuthMiddleware(verifier auth.Verifier, blocklist auth.TokenBlocklistService, profiles profile.Service, logger *zap.Logger) app.AuthMiddleware {
	return app.AuthMiddleware(middleware.AuthMiddleware(verifier, blocklist, profiles, logger.Named("AuthMiddleware")))
}

func provideBookHandler(service book.Service, cfg *config.Config, logger *zap.Logger) *book.Handler {
	return book.NewHandler(service, cfg.MaxCoverSizeMB<<20, logger)
}

func provideDashboardService(books book.Repository, requests borrow.Repository, logger *zap.Logger) *dashboard.Service {
	return dashboard.NewService(books, requests, logger)
}

func provideAuditJob(books book.Repository, requests borrow.Repository, logger *zap.Logger, cfg *config.Config) *jobs.ConsistencyAuditJob {
	return jobs.NewConsistencyAuditJob(books, requests, logger, cfg)
}
