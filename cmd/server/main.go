package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"driveshare/internal/auth"
	"driveshare/internal/config"
	"driveshare/internal/filetype"
	"driveshare/internal/handler"
	"driveshare/internal/middleware"
	"driveshare/internal/repository/postgres"
	"driveshare/internal/service/vault"
	"driveshare/internal/storage"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()

	logLevel := slog.LevelInfo
	if cfg.Environment == "dev" {
		logLevel = slog.LevelDebug
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"storage_backend", cfg.StorageBackend,
	)

	verifier, err := auth.NewJWKSVerifier(cfg.JWKSURL, logger)
	if err != nil {
		log.Fatalf("Failed to create token verifier: %v", err)
	}
	defer verifier.Close()

	if cfg.Migrate {
		if err := postgres.Migrate(cfg.DatabaseURL); err != nil {
			log.Fatalf("Failed to apply migrations: %v", err)
		}
		logger.Info("migrations applied")
	}

	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	logger.Info("database connected",
		"max_conns", 25,
		"min_conns", 5,
	)

	store, err := buildStore(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}

	typeRegistry, err := filetype.NewRegistry()
	if err != nil {
		log.Fatalf("Failed to load file type registry: %v", err)
	}

	// Create repositories
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Logger: logger,
	}
	userRepo := postgres.NewUserRepository(repoConfig)
	folderRepo := postgres.NewFolderRepository(repoConfig)
	fileRepo := postgres.NewFileRepository(repoConfig)
	grantRepo := postgres.NewGrantRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool)

	// One lock table shared by both services so they serialize per folder.
	locks := vault.NewLockTable()

	folderService := vault.NewFolderService(folderRepo, grantRepo, userRepo, store, txManager, locks, logger)
	fileService := vault.NewFileService(fileRepo, folderRepo, grantRepo, typeRegistry, store, locks, logger)

	folderHandler := handler.NewFolderHandler(folderService, logger)
	fileHandler := handler.NewFileHandler(fileService, logger)

	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", handler.HealthCheck)

	// Folder routes
	mux.HandleFunc("POST /api/folders", folderHandler.CreateFolder)
	mux.HandleFunc("GET /api/folders", folderHandler.ListFolders)
	mux.HandleFunc("GET /api/folders/shared-with-me", folderHandler.ListSharedWithMe)
	mux.HandleFunc("GET /api/folders/shared-by-me", folderHandler.ListSharedByMe)
	mux.HandleFunc("PATCH /api/folders/{id}", folderHandler.RenameFolder)
	mux.HandleFunc("DELETE /api/folders/{id}", folderHandler.DeleteFolder)

	// Sharing routes
	mux.HandleFunc("POST /api/folders/{id}/share", folderHandler.ShareFolder)
	mux.HandleFunc("GET /api/folders/{id}/grants", folderHandler.ListGrants)
	mux.HandleFunc("PATCH /api/folders/{id}/grants/{userId}", folderHandler.UpdateGrant)
	mux.HandleFunc("DELETE /api/folders/{id}/grants/{userId}", folderHandler.RemoveGrant)

	// File routes
	mux.HandleFunc("POST /api/folders/{id}/files", fileHandler.UploadFiles)
	mux.HandleFunc("GET /api/folders/{id}/files", fileHandler.ListFiles)
	mux.HandleFunc("GET /api/files/mine", fileHandler.ListMyFiles)
	mux.HandleFunc("GET /api/files/{id}/download", fileHandler.DownloadFile)
	mux.HandleFunc("PATCH /api/files/{id}", fileHandler.RenameFile)
	mux.HandleFunc("DELETE /api/files/{id}", fileHandler.DeleteFile)

	// Public routes (no authentication)
	mux.HandleFunc("GET /api/public/users/{email}/folders", folderHandler.ListPublicFolders)
	mux.HandleFunc("GET /api/public/folders/{id}/files", fileHandler.ListPublicFiles)

	// Build middleware chain
	var h http.Handler = mux

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → Recovery → Auth → Routes
	h = middleware.Auth(verifier)(h)
	h = middleware.Recovery(logger)(h)

	// CORS - Must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	})
	h = corsHandler.Handler(h)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // Disabled so large downloads are never cut off
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func buildStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	if cfg.StorageBackend == "s3" {
		store, err := storage.NewS3Store(ctx, storage.S3Config{
			Bucket:   cfg.S3Bucket,
			Region:   cfg.S3Region,
			Endpoint: cfg.S3Endpoint,
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	}
	store, err := storage.NewDiskStore(cfg.StorageRoot)
	if err != nil {
		return nil, err
	}
	return store, nil
}
