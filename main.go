package main

import (
	"log"
	"net/http"

	"github.com/joho/godotenv"

	"github.com/glucoguide/insulin-tracker/internal/ai"
	"github.com/glucoguide/insulin-tracker/internal/chat"
	"github.com/glucoguide/insulin-tracker/internal/config"
	"github.com/glucoguide/insulin-tracker/internal/logger"
	"github.com/glucoguide/insulin-tracker/internal/server"
	"github.com/glucoguide/insulin-tracker/internal/services"
	"github.com/glucoguide/insulin-tracker/internal/storage"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.InitWithConfig(logger.Config{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	}); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	logger.Info("starting insulin tracker", "storage", cfg.StorageBackend, "sessions", cfg.SessionBackend)

	store, err := newStore(cfg.StorageBackend, cfg)
	if err != nil {
		logger.Fatalf("Failed to open storage backend: %v", err)
	}
	sessions, err := newStore(cfg.SessionBackend, cfg)
	if err != nil {
		logger.Fatalf("Failed to open session backend: %v", err)
	}

	aiClient, err := ai.New(cfg)
	if err != nil {
		// The tracker stays useful without the assistant; chat requests
		// will fail with a network error until a key is configured.
		logger.Warn("AI assistant unavailable", "error", err)
		aiClient = ai.Unavailable{}
	}

	srv := server.New(
		services.NewAuthService(store, sessions),
		services.NewPatientService(store),
		services.NewInjectionService(store),
		services.NewAnalyticsService(),
		chat.NewManager(aiClient),
		store,
	)

	addr := ":" + cfg.Port
	logger.Info("listening", "addr", addr)
	if err := http.ListenAndServe(addr, srv.Router()); err != nil {
		logger.Fatalf("server error: %v", err)
	}
}

func newStore(backend string, cfg *config.Config) (storage.Store, error) {
	switch backend {
	case config.BackendRedis:
		return storage.NewRedisStore(cfg.Redis)
	case config.BackendPostgres:
		return storage.NewPostgresStore(cfg.DB)
	default:
		return storage.NewMemoryStore(), nil
	}
}
