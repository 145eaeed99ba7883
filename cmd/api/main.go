package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"healthjournal/internal/ai"
	"healthjournal/internal/analysis"
	"healthjournal/internal/config"
	"healthjournal/internal/db"
	"healthjournal/internal/logger"
	"healthjournal/internal/notify"
	"healthjournal/internal/server"
	"healthjournal/internal/store"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	lg, err := logger.New(cfg.LogMode)
	if err != nil {
		log.Fatalf("logger init failed: %v", err)
	}
	defer lg.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backend, closeBackend, err := openBackend(ctx, cfg)
	if err != nil {
		lg.Fatal("storage init failed", "backend", cfg.StoreBackend, "error", err)
	}
	defer closeBackend()

	hub := notify.NewHub()
	var publisher notify.Publisher = hub
	if cfg.NotifyBackend == config.NotifyRedis {
		bus, err := notify.NewRedisBus(ctx, lg, cfg.RedisURL)
		if err != nil {
			lg.Fatal("event bus init failed", "error", err)
		}
		defer bus.Close()
		if err := bus.StartForwarder(ctx, hub.Deliver); err != nil {
			lg.Fatal("event forwarder failed", "error", err)
		}
		publisher = bus
	}

	client := ai.NewOpenAIClient(cfg)
	if !client.Configured() {
		lg.Info("OPENAI_API_KEY not set, analysis uses the local summary only")
	}
	orchestrator := analysis.NewOrchestrator(
		client,
		analysis.NewCache(cfg.AnalysisCacheSize, cfg.AnalysisCacheTTL, time.Now),
		publisher,
		lg,
		analysis.Options{
			Model:   cfg.OpenAIModel,
			Timeout: time.Duration(cfg.AITimeoutSeconds*(cfg.AIMaxRetries+1)) * time.Second,
		},
	)

	app := server.New(cfg, server.Deps{
		Backend:      backend,
		Orchestrator: orchestrator,
		Hub:          hub,
		Publisher:    publisher,
		Log:          lg,
	})
	httpServer := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           app.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		lg.Info("healthjournal api listening", "addr", "http://localhost:"+cfg.AppPort, "store", cfg.StoreBackend, "notify", cfg.NotifyBackend)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		lg.Warn("graceful shutdown failed", "error", err)
	}
}

// openBackend connects the configured document store and returns its
// release func.
func openBackend(ctx context.Context, cfg config.Config) (store.Backend, func(), error) {
	switch cfg.StoreBackend {
	case config.StorePostgres:
		pool, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := db.EnsureSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return store.NewPostgres(pool), pool.Close, nil
	case config.StoreRedis:
		opts, err := goredis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		rdb := goredis.NewClient(opts)
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, nil, err
		}
		return store.NewRedis(rdb), func() { _ = rdb.Close() }, nil
	default:
		return store.NewMemory(), func() {}, nil
	}
}
