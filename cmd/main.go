package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fjod/go_pos/internal/cache"
	"github.com/fjod/go_pos/internal/cart"
	posHttp "github.com/fjod/go_pos/internal/http"
	"github.com/fjod/go_pos/internal/repository"
	"github.com/fjod/go_pos/internal/service"
	"github.com/fjod/go_pos/internal/store"
)

type Config struct {
	HTTPPort        string
	DBPath          string
	MigrationsPath  string
	PostgresHost    string
	PostgresPort    int
	PostgresUser    string
	PostgresPass    string
	PostgresDB      string
	RedisAddr       string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

func loadConfig() *Config {
	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		DBPath:          getEnv("DB_PATH", "pos.db"),
		MigrationsPath:  getEnv("MIGRATIONS_PATH", "internal/repository/migrations"),
		PostgresHost:    getEnv("POSTGRES_HOST", ""),
		PostgresPort:    getEnvInt("POSTGRES_PORT", 5432),
		PostgresUser:    getEnv("POSTGRES_USER", "postgres"),
		PostgresPass:    getEnv("POSTGRES_PASSWORD", "postgres"),
		PostgresDB:      getEnv("POSTGRES_DB", "pos"),
		RedisAddr:       getEnv("REDIS_ADDR", ""),
		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

// openRepository picks the Postgres backend when POSTGRES_HOST is set and
// falls back to the embedded SQLite file otherwise.
func openRepository(cfg *Config) (repository.StateRepository, error) {
	if cfg.PostgresHost != "" {
		cred := &repository.Credentials{
			Host:              cfg.PostgresHost,
			Port:              cfg.PostgresPort,
			User:              cfg.PostgresUser,
			Password:          cfg.PostgresPass,
			DBName:            cfg.PostgresDB,
			MigrationsDirPath: cfg.MigrationsPath,
		}
		repo, err := repository.NewPostgresRepository(cred)
		if err != nil {
			return nil, err
		}
		if err := repo.RunMigrations(cred); err != nil {
			return nil, err
		}
		return repo, nil
	}

	repo, err := repository.NewSQLiteRepository(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	if err := repo.RunMigrations(cfg.MigrationsPath); err != nil {
		return nil, err
	}
	return repo, nil
}

func main() {
	cfg := loadConfig()

	repo, err := openRepository(cfg)
	if err != nil {
		log.Fatalf("failed to open repository: %v", err)
	}
	defer repo.Close()

	var invoiceCache cache.InvoiceCache
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer client.Close()
		invoiceCache = cache.NewRedisCache(client)
	}

	ledger := store.NewMemoryLedger()
	posCart := cart.New()
	svc := service.NewPOSService(ledger, posCart, repo, invoiceCache)

	if err := svc.LoadState(context.Background()); err != nil {
		log.Fatalf("failed to load state: %v", err)
	}

	handler := posHttp.NewHandler(svc)
	router := posHttp.NewRouter(handler, cfg.RequestTimeout)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("POS service starting on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("server exited")
}
