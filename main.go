package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"

	"github.com/Billy-Davies-2/draft-assistant/internal/advice"
	"github.com/Billy-Davies-2/draft-assistant/internal/auth"
	"github.com/Billy-Davies-2/draft-assistant/internal/cache"
	"github.com/Billy-Davies-2/draft-assistant/internal/catalog"
	"github.com/Billy-Davies-2/draft-assistant/internal/clickhouse"
	"github.com/Billy-Davies-2/draft-assistant/internal/config"
	"github.com/Billy-Davies-2/draft-assistant/internal/dal"
	grpcserver "github.com/Billy-Davies-2/draft-assistant/internal/grpc"
	"github.com/Billy-Davies-2/draft-assistant/internal/handlers"
	"github.com/Billy-Davies-2/draft-assistant/internal/logger"
	"github.com/Billy-Davies-2/draft-assistant/internal/mocks"
	"github.com/Billy-Davies-2/draft-assistant/internal/models"
	"github.com/Billy-Davies-2/draft-assistant/internal/pubsub"
	"github.com/Billy-Davies-2/draft-assistant/internal/scheduler"
	"github.com/Billy-Davies-2/draft-assistant/internal/session"
	"github.com/Billy-Davies-2/draft-assistant/internal/summarizer"
	"github.com/Billy-Davies-2/draft-assistant/internal/valuation"
)

func main() {
	// Initialize logger first
	logger.Init()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	logger.Info("Starting draft assistant", "environment", cfg.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(cfg)
	if err != nil {
		logger.Error("Failed to initialize data store", "driver", cfg.DBDriver, "error", err)
		log.Fatalf("Failed to initialize data store: %v", err)
	}
	defer store.Close()

	events, err := openEvents(cfg)
	if err != nil {
		logger.Error("Failed to initialize pub/sub", "error", err)
		log.Fatalf("Failed to initialize pub/sub: %v", err)
	}
	defer events.Close()

	players := catalog.Default()
	if cfg.CatalogFile != "" {
		if players, err = catalog.LoadFile(cfg.CatalogFile); err != nil {
			log.Fatalf("Failed to load catalog: %v", err)
		}
	}
	logger.Info("Player catalog loaded", "players", len(players))

	tables := valuation.DefaultConfig()
	if cfg.ValuationFile != "" {
		if tables, err = valuation.LoadConfig(cfg.ValuationFile); err != nil {
			log.Fatalf("Failed to load valuation tables: %v", err)
		}
	}

	rationales, closeCache := newSummarizer(ctx, cfg)
	defer closeCache()
	engine := advice.NewEngine(tables, rationales, advice.WithTimeout(cfg.SummarizerTimeout))

	manager := session.NewManager(store, events, players, engine)

	if cfg.ValuationFile != "" {
		go func() {
			err := valuation.Watch(ctx, cfg.ValuationFile, func(tables valuation.Config) {
				manager.SetConfig(tables)
				if err := manager.Revalue(); err != nil {
					logger.Warn("Failed to revalue sessions", "error", err)
				}
			})
			if err != nil {
				logger.Warn("Valuation watcher stopped", "error", err)
			}
		}()
	}

	health := handlers.NewHealth().Critical("database", func(context.Context) error {
		_, err := store.ListSessions()
		return err
	})

	source, closeSource := projectionSource(cfg, players, health)
	defer closeSource()

	syncer := scheduler.New(ctx, source, manager, time.Minute)
	if err := syncer.Register(cfg.ProjectionSyncCron); err != nil {
		log.Fatalf("Failed to schedule projection sync: %v", err)
	}
	syncer.Start()
	defer syncer.Stop()

	hub := handlers.NewHub(events)
	go hub.Run(ctx)

	router := handlers.NewRouter(handlers.RouterConfig{
		API:    handlers.NewAPIHandlers(manager, syncer),
		Events: events,
		Hub:    hub,
		Health: health,
		Auth:   newAuth(cfg),
	})

	grpcServer := grpc.NewServer()
	grpcserver.RegisterDraftServiceServer(grpcServer, grpcserver.NewServer(manager, events))
	go func() {
		lis, err := net.Listen("tcp", "0.0.0.0:"+cfg.GRPCPort)
		if err != nil {
			logger.Error("Failed to listen for gRPC", "error", err, "port", cfg.GRPCPort)
			log.Fatalf("Failed to listen for gRPC: %v", err)
		}
		logger.Info("gRPC server starting", "address", lis.Addr().String())
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("gRPC server stopped", "error", err)
		}
	}()

	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("Server starting", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed", "error", err)
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}
	grpcServer.GracefulStop()
	logger.Info("Server exited")
}

// openStore picks the draft-state store. The sqlite driver in development
// stands in for Postgres through the mock DAL.
func openStore(cfg *config.Config) (dal.DraftDAL, error) {
	if cfg.IsDevelopment() && cfg.DBDriver == "sqlite" {
		store, err := mocks.NewMockPostgresDAL(cfg.SQLiteFile)
		if err != nil {
			return nil, err
		}
		return store, nil
	}

	dsn := cfg.DatabaseURL
	switch cfg.DBDriver {
	case "sqlite":
		dsn = cfg.SQLiteFile
	case "redis":
		dsn = cfg.RedisURL
	}
	store, err := dal.Open(cfg.DBDriver, dsn)
	if err != nil {
		return nil, err
	}
	logger.Info("Data store ready", "driver", cfg.DBDriver)
	return store, nil
}

// openEvents bridges the local bus to an upstream: embedded NATS in
// development, a Redis stream when EVENT_STREAM is set, NATS JetStream
// otherwise
func openEvents(cfg *config.Config) (*pubsub.PubSub, error) {
	switch {
	case cfg.EventStream != "" && cfg.RedisURL != "":
		stream, err := pubsub.NewRedisStreamPubSub(cfg.RedisURL, cfg.EventStream)
		if err != nil {
			return nil, err
		}
		logger.Info("Using Redis stream for events", "stream", cfg.EventStream)
		return pubsub.NewWithUpstream(stream), nil

	case cfg.IsDevelopment():
		opts := pubsub.DefaultEmbeddedNATSOptions()
		opts.Subject = cfg.NATSSubject
		embedded, err := pubsub.NewEmbeddedNATSPubSub(opts)
		if err != nil {
			logger.Warn("Embedded NATS unavailable, falling back to mock", "error", err)
			return pubsub.NewWithUpstream(pubsub.NewMockNATSPubSub()), nil
		}
		logger.Info("Embedded NATS server ready", "url", embedded.ServerURL())
		return pubsub.NewWithUpstream(embedded), nil

	default:
		nats, err := pubsub.NewNATSPubSub(cfg.NATSURL, cfg.NATSSubject)
		if err != nil {
			return nil, err
		}
		logger.Info("Connected to NATS", "url", cfg.NATSURL)
		return pubsub.NewWithUpstream(nats), nil
	}
}

// newSummarizer returns the cached rationale summarizer. Without an API key
// rationales are phrased locally.
func newSummarizer(ctx context.Context, cfg *config.Config) (advice.Summarizer, func()) {
	var next advice.Summarizer = summarizer.Static{}
	llm := summarizer.NewLLMClient(summarizer.Config{
		APIKey:     cfg.LLMAPIKey,
		BaseURL:    cfg.LLMBaseURL,
		Model:      cfg.LLMModel,
		RatePerSec: cfg.LLMRatePerSec,
	})
	if llm.Enabled() {
		logger.Info("Using LLM rationale summarizer", "model", cfg.LLMModel)
		next = llm
	}

	if cfg.RedisURL != "" {
		redisCache, err := cache.NewRedis(ctx, cfg.RedisURL)
		if err == nil {
			return summarizer.NewCached(next, redisCache), func() { redisCache.Close() }
		}
		logger.Warn("Redis cache unavailable, using memory cache", "error", err)
	}
	return summarizer.NewCached(next, cache.NewMemory()), func() {}
}

// projectionSource reads from ClickHouse when configured outside
// development, otherwise from a drifting copy of the catalog
func projectionSource(cfg *config.Config, players []models.Player, health *handlers.Health) (scheduler.ProjectionSource, func()) {
	if cfg.IsDevelopment() || cfg.ClickHouseAddr == "" {
		logger.Info("Using mock projections (ClickHouse not configured)")
		return mocks.NewProjectionSource(players, time.Now().UnixNano()), func() {}
	}

	client, err := clickhouse.NewClient(clickhouse.Options{
		Addr:     cfg.ClickHouseAddr,
		Database: cfg.ClickHouseDB,
		Username: cfg.ClickHouseUser,
		Password: cfg.ClickHousePassword,
	})
	if err != nil {
		logger.Error("Failed to initialize ClickHouse", "error", err, "address", cfg.ClickHouseAddr)
		log.Fatalf("Failed to initialize ClickHouse: %v", err)
	}
	logger.Info("Connected to ClickHouse", "address", cfg.ClickHouseAddr, "database", cfg.ClickHouseDB)
	health.Optional("clickhouse", client.Ping)
	return client, func() { client.Close() }
}

func newAuth(cfg *config.Config) auth.Provider {
	if cfg.IsDevelopment() {
		logger.Info("Using mock authentication for local development")
		return auth.NewMockAuth()
	}
	logger.Info("Using Authentik authentication", "url", cfg.AuthentikBaseURL)
	return auth.NewAuthentikAuth(auth.AuthentikConfig{
		BaseURL:      cfg.AuthentikBaseURL,
		ClientID:     cfg.AuthentikClientID,
		ClientSecret: cfg.AuthentikClientSecret,
		RedirectURL:  cfg.AuthentikRedirectURL,
	})
}
