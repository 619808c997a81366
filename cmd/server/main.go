package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"docmorph/internal/config"
	"docmorph/internal/domain/repositories"
	"docmorph/internal/domain/services"
	"docmorph/internal/formats"
	"docmorph/internal/handler"
	"docmorph/internal/middleware"
	"docmorph/internal/repository/memory"
	"docmorph/internal/repository/postgres"
	"docmorph/internal/repository/sqlite"
	"docmorph/internal/service/convert"
	"docmorph/internal/service/convert/cloudconvert"
	"docmorph/internal/service/convert/ocrengine"
	"docmorph/internal/service/convert/office"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
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
		"external_backend", cfg.ExternalBackend,
		"history_backend", cfg.HistoryBackend,
	)

	// Scratch directory for per-request upload copies
	if err := config.EnsureUploadDir(cfg.UploadDir); err != nil {
		log.Fatalf("Failed to prepare upload directory: %v", err)
	}
	if removed, err := config.SweepUploadDir(cfg.UploadDir, time.Hour); err != nil {
		logger.Warn("failed to sweep stale scratch files", "error", err)
	} else if removed > 0 {
		logger.Info("removed stale scratch files", "count", removed)
	}

	ctx := context.Background()

	history, err := newHistoryStore(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize history store: %v", err)
	}
	defer history.Close()
	logger.Info("history store ready", "backend", cfg.HistoryBackend)

	registry, err := formats.NewRegistry()
	if err != nil {
		log.Fatalf("Failed to load conversion registry: %v", err)
	}

	external := newExternalBackend(cfg, logger)
	retry := convert.NewRetryPolicy(cfg.RetryAttempts, cfg.RetryInitialDelay, logger)

	extractor := ocrengine.NewExtractor(cfg.OCRLanguage, cfg.OCRPoolSize, logger)
	defer extractor.Close()

	strategies := convert.NewStrategyRegistry()
	strategies.Register("external", convert.NewExternalStrategy(external, retry, logger))
	strategies.Register("pdf-text", convert.NewPDFTextStrategy())
	strategies.Register("text-document", convert.NewTextDocumentStrategy())
	strategies.Register("image-pdf", convert.NewImagePDFStrategy(cfg.UploadDir, external, retry, logger))
	strategies.Register("ocr", convert.NewOCRStrategy(extractor))

	dispatcher := convert.NewDispatcher(
		registry,
		convert.NewFormatValidator(registry),
		strategies,
		cfg.UploadDir,
		cfg.ExternalTimeout,
		logger,
	)

	convertHandler := handler.NewConvertHandler(dispatcher, history, logger)
	conversionsHandler := handler.NewConversionsHandler(history, logger)
	formatsHandler := handler.NewFormatsHandler(registry)
	healthHandler := handler.NewHealthHandler(external, logger)

	logger.Info("services initialized")

	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", healthHandler.Check)
	mux.HandleFunc("GET /api/formats", formatsHandler.List)

	mux.HandleFunc("POST /api/convert", convertHandler.Convert)

	mux.HandleFunc("GET /api/conversions", conversionsHandler.List)
	mux.HandleFunc("POST /api/conversions", conversionsHandler.Create)
	mux.HandleFunc("GET /api/conversions/export", conversionsHandler.Export) // Must come before {days} route
	mux.HandleFunc("GET /api/conversions/recent/{days}", conversionsHandler.ListRecent)
	mux.HandleFunc("DELETE /api/conversions/{id}", conversionsHandler.Delete)

	// Middleware chain, applied in reverse order (they wrap each other)
	var routes http.Handler = mux
	routes = middleware.RequestLogger(logger)(routes)
	routes = middleware.Recovery(logger)(routes)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept"},
		AllowCredentials: true,
	})
	routes = corsHandler.Handler(routes)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      routes,
		ReadTimeout:  5 * time.Minute, // uploads can be large and slow
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// newHistoryStore selects the history backend from configuration.
func newHistoryStore(ctx context.Context, cfg *config.Config) (repositories.ConversionRepository, error) {
	switch cfg.HistoryBackend {
	case "sqlite":
		return sqlite.NewConversionRepository(ctx, cfg.SQLitePath)
	case "postgres":
		pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return postgres.NewConversionRepository(ctx, pool)
	default:
		return memory.NewConversionRepository(), nil
	}
}

// newExternalBackend selects the conversion backend from configuration.
func newExternalBackend(cfg *config.Config, logger *slog.Logger) services.ExternalConverter {
	if cfg.ExternalBackend == "cloudconvert" {
		return cloudconvert.New(cloudconvert.Config{
			APIKey:     cfg.CloudConvertAPIKey,
			BaseURL:    cfg.CloudConvertBaseURL,
			ScratchDir: cfg.UploadDir,
			Logger:     logger,
		})
	}
	return office.New(cfg.OfficeBinary, cfg.UploadDir, logger)
}
