package main

import (
	"airunote/config"
	"airunote/internal/handler"
	"airunote/internal/repository"
	"airunote/internal/security"
	"airunote/internal/service"
	"airunote/internal/util"
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type handlers struct {
	folders   *handler.FolderHandler
	documents *handler.DocumentHandler
	shares    *handler.ShareHandler
	lenses    *handler.LensHandler
	vault     *handler.VaultHandler
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	configPath := "config.yaml"
	if path := os.Getenv("AIRUNOTE_CONFIG"); path != "" {
		configPath = path
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		util.Logger.Fatal().Err(err).Msg("Ошибка загрузки конфигурации")
	}
	util.SetupLogger(cfg.Logging.Level, cfg.Logging.Format, nil)

	db, err := config.SetupDatabase(&cfg.DatabaseConfig)
	if err != nil {
		util.Logger.Fatal().Err(err).Msg("Не удалось подключиться к БД")
	}
	defer func() {
		if err := db.Close(); err != nil {
			util.Logger.Error().Err(err).Msg("Ошибка при закрытии БД")
		}
	}()

	redisClient, err := config.SetupRedis(&cfg.RedisConfig)
	if err != nil {
		util.Logger.Fatal().Err(err).Msg("Ошибка подключения к Redis")
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			util.Logger.Error().Err(err).Msg("Ошибка при закрытии Redis")
		}
	}()

	s3Service, err := service.NewS3Service(ctx, &cfg.S3Config)
	if err != nil {
		util.Logger.Fatal().Err(err).Msg("Ошибка создания S3 сервиса")
	}

	srv, router := config.SetupServer(cfg.ServerAddr)

	txManager := repository.NewTxManager(db)
	folderRepo := repository.NewFolderRepository(db)
	docRepo := repository.NewDocumentRepository(db)
	shareRepo := repository.NewShareRepository(db)
	revisionRepo := repository.NewRevisionRepository(db)
	lensRepo := repository.NewLensRepository(db)
	lensItemRepo := repository.NewLensItemRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	linkCache := repository.NewLinkCacheRepository(redisClient, time.Duration(cfg.TTL.LinkCache)*time.Second)

	accessService := service.NewAccessService(db.DB, folderRepo, docRepo, shareRepo)
	hierarchyService := service.NewHierarchyService(db.DB, txManager, folderRepo, docRepo, shareRepo, lensItemRepo, auditRepo,
		accessService, linkCache, cfg.Vault.MaxTreeDepth)
	sharingService := service.NewSharingService(db.DB, txManager, folderRepo, docRepo, shareRepo, auditRepo,
		security.NewBcryptHasher(0), linkCache)
	docService := service.NewDocumentService(db.DB, txManager, folderRepo, docRepo, shareRepo, revisionRepo, lensItemRepo, auditRepo,
		accessService, s3Service, linkCache, time.Duration(cfg.TTL.S3AndRedis)*time.Second)
	contentService := service.NewContentService(db.DB, txManager, docRepo, revisionRepo, accessService)
	lensService := service.NewLensService(db.DB, txManager, folderRepo, docRepo, lensRepo, lensItemRepo, accessService, cfg.Vault.MaxBatchSize)
	vaultService := service.NewVaultService(db.DB, txManager, folderRepo, docRepo, lensRepo, lensItemRepo, auditRepo,
		hierarchyService, docService, cfg.Vault.ConfirmationToken)

	jwtService := security.NewJWTService(&cfg.JWT)

	h := handlers{
		folders:   handler.NewFolderHandler(hierarchyService),
		documents: handler.NewDocumentHandler(docService, contentService),
		shares:    handler.NewShareHandler(sharingService),
		lenses:    handler.NewLensHandler(lensService),
		vault:     handler.NewVaultHandler(vaultService),
	}

	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)

	router.Route("/api/orgs/{org_id}", func(r chi.Router) {
		r.Use(security.JWTMiddleware(jwtService))
		r.Use(security.OrgMembershipMiddleware)

		setupFolderRoutes(r, h)
		setupDocumentRoutes(r, h)
		setupShareRoutes(r, h)
		setupLensRoutes(r, h)
		setupVaultRoutes(r, h)
	})
	setupPublicRoutes(router, h)

	runServer(ctx, srv)
}

func setupFolderRoutes(r chi.Router, h handlers) {
	r.Get("/root", h.folders.GetUserRoot)
	r.Get("/tree", h.folders.GetTree)
	r.Post("/folders", h.folders.CreateFolder)

	r.Route("/folders/{folder_id}", func(r chi.Router) {
		r.Patch("/", h.folders.UpdateFolder)
		r.Post("/move", h.folders.MoveFolder)
		r.Delete("/", h.folders.DeleteFolder)

		r.Get("/lenses", h.lenses.ListFolderLenses)
		r.Post("/lenses", h.lenses.CreateFolderLens)
		r.Post("/lenses/switch", h.lenses.SwitchFolderLens)
		r.Get("/projection", h.lenses.GetFolderProjection)
	})
}

func setupDocumentRoutes(r chi.Router, h handlers) {
	r.Post("/documents", h.documents.CreateDocument)

	r.Route("/documents/{document_id}", func(r chi.Router) {
		r.Get("/", h.documents.GetDocument)
		r.Delete("/", h.documents.DeleteDocument)
		r.Post("/rename", h.documents.RenameDocument)
		r.Post("/move", h.documents.MoveDocument)
		r.Put("/attributes", h.documents.UpdateAttributes)

		r.Put("/content", h.documents.UpdateContent)
		r.Put("/content/canonical", h.documents.UpdateCanonicalContent)
		r.Put("/content/shared", h.documents.UpdateSharedContent)
		r.Post("/content/accept", h.documents.AcceptShared)
		r.Post("/content/revert", h.documents.RevertShared)
		r.Get("/revisions", h.documents.ListRevisions)

		r.Post("/attachments", h.documents.CreateUploadURL)
		r.Get("/attachments", h.documents.CreateDownloadURL)
	})
}

func setupShareRoutes(r chi.Router, h handlers) {
	r.Get("/shares", h.shares.ListShares)
	r.Post("/shares", h.shares.CreateShare)
	r.Delete("/shares/{share_id}", h.shares.RevokeShare)
}

func setupLensRoutes(r chi.Router, h handlers) {
	r.Get("/desktop/lenses", h.lenses.ListDesktopLenses)
	r.Post("/desktop/lenses", h.lenses.CreateDesktopLens)

	r.Route("/lenses/{lens_id}", func(r chi.Router) {
		r.Patch("/", h.lenses.UpdateFolderLens)
		r.Patch("/desktop", h.lenses.UpdateDesktopLens)
		r.Delete("/", h.lenses.DeleteLens)
		r.Post("/duplicate", h.lenses.DuplicateLens)
		r.Get("/projection", h.lenses.GetLensProjection)

		r.Put("/canvas/positions", h.lenses.UpdateCanvasPositions)
		r.Put("/board/card", h.lenses.UpdateBoardCard)
		r.Put("/board/lanes", h.lenses.UpdateBoardLanes)
		r.Put("/layout", h.lenses.UpdateBatchLayout)
		r.Put("/items", h.lenses.UpsertItems)
	})
}

func setupVaultRoutes(r chi.Router, h handlers) {
	r.Get("/vault/metadata", h.vault.GetFullMetadata)
	r.Delete("/vault", h.vault.DeleteVault)
}

// setupPublicRoutes : вход по ссылке без JWT, пароль передаётся в теле POST
func setupPublicRoutes(r chi.Router, h handlers) {
	r.Route("/public/links/{code}", func(r chi.Router) {
		r.Get("/", h.shares.ResolveLink)
		r.Post("/", h.shares.ResolveLink)
	})
}

func runServer(ctx context.Context, server *http.Server) {
	serverErrors := make(chan error, 1)
	go func() {
		util.Logger.Info().Str("addr", server.Addr).Msg("сервер запущен")
		serverErrors <- server.ListenAndServe()
	}()

	signalChannel := make(chan os.Signal, 1)
	signal.Notify(signalChannel, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			util.Logger.Fatal().Err(err).Msg("ошибка работы сервера")
		}
	case sig := <-signalChannel:
		util.Logger.Info().Str("signal", sig.String()).Msg("получен сигнал остановки работы сервера")
	}

	shutDownCtx, shutDownCancel := context.WithTimeout(ctx, 5*time.Second)
	defer shutDownCancel()

	if err := server.Shutdown(shutDownCtx); err != nil {
		util.Logger.Error().Err(err).Msg("ошибка при остановке сервера")
	} else {
		util.Logger.Info().Msg("Сервер успешно остановлен")
	}
}
