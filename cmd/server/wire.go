// File: cmd/server/wire.go
//go:build wireinject
// +build wireinject

package main

import (
	"bookshare_backend/internal/app"
	"bookshare_backend/internal/auth"
	"bookshare_backend/internal/book"
	"bookshare_backend/internal/borrow"
	"bookshare_backend/internal/config"
	"bookshare_backend/internal/dashboard"
	"bookshare_backend/internal/filestorage"
	"bookshare_backend/internal/isbn"
	"bookshare_backend/internal/notification"
	"bookshare_backend/internal/orchestrator"
	"bookshare_backend/internal/platform/logger"
	"bookshare_backend/internal/profile"
	"bookshare_backend/internal/reading"
	"bookshare_backend/internal/search"

	"github.com/google/wire"
)

// initializeServer is the main Wire injector.
func initializeServer(cfg *config.Config) (*app.Server, func(), error) {
	wire.Build(
		// Platform Layer
		logger.New,
		provideDatabase,
		search.NewIndexer,
		filestorage.NewCoverStore,
		wire.Bind(new(book.CoverStorage), new(*filestorage.CoverStore)),

		// Lifecycle
		orchestrator.New,
		wire.Bind(new(orchestrator.Executor), new(*orchestrator.Orchestrator)),

		// Identity
		provideVerifier,
		provideBlocklist,
		profile.NewGORMRepository,
		profile.NewService,
		wire.Bind(new(profile.Service), new(*profile.ServiceImplementation)),
		provideAuthMiddleware,
		auth.NewHandler,
		profile.NewHandler,

		// Catalog and borrowing
		book.NewGORMRepository,
		book.NewService,
		wire.Bind(new(book.Service), new(*book.ServiceImplementation)),
		provideBookHandler,
		isbn.NewService,
		wire.Bind(new(isbn.Lookuper), new(*isbn.Service)),
		isbn.NewHandler,
		borrow.NewGORMRepository,
		borrow.NewService,
		wire.Bind(new(borrow.Service), new(*borrow.ServiceImplementation)),
		borrow.NewHandler,

		// Inbox, reading, dashboard
		notification.NewGORMRepository,
		notification.NewService,
		notification.NewHandler,
		reading.NewGORMRepository,
		reading.NewService,
		reading.NewHandler,
		provideDashboardService,
		dashboard.NewHandler,

		provideAuditJob,

		// Application Layer
		wire.Struct(new(app.Handlers), "*"),
		app.NewServer,
	)
	return nil, nil, nil
}
