package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/callcenter-service/internal/api/http"
	"github.com/spec-kit/callcenter-service/internal/api/http/handlers"
	"github.com/spec-kit/callcenter-service/internal/auth"
	"github.com/spec-kit/callcenter-service/internal/config"
	"github.com/spec-kit/callcenter-service/internal/events"
	"github.com/spec-kit/callcenter-service/internal/observability"
	"github.com/spec-kit/callcenter-service/internal/persistence"
	"github.com/spec-kit/callcenter-service/internal/repository"
	"github.com/spec-kit/callcenter-service/internal/service"
	"github.com/spec-kit/callcenter-service/internal/session"
	"github.com/spec-kit/callcenter-service/internal/worker"
)

const (
	demoStaffUsername = "agent"
	demoStaffPassword = "agent-pass"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), persistence.DefaultMigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	store := buildStore(cfg, pg, logger)
	sessions := buildSessionStore(ctx, cfg, redis, logger)
	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	worker.StartActivityWorker(service.NewActivityService(dispatcher, logger, metrics))

	resolver := service.NewCustomerResolver(service.CustomerResolverDependencies{
		Store:      store,
		Dispatcher: dispatcher,
		Logger:     logger,
		BcryptCost: cfg.Auth.BcryptCost,
	})
	complaints := service.NewComplaintService(service.ComplaintServiceDependencies{
		Store:      store,
		Picker:     service.NewStaffPicker(nil),
		Engine:     cfg.Engine,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	calls := service.NewCallSessionManager(service.CallSessionDependencies{
		Store:      store,
		Sessions:   sessions,
		Complaints: complaints,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	surveys := service.NewSurveyService(service.SurveyServiceDependencies{
		Store:      store,
		Complaints: complaints,
		Engine:     cfg.Engine,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	authService := service.NewAuthService(cfg.Auth, service.AuthDependencies{
		Store:    store,
		Resolver: resolver,
		Logger:   logger,
	})
	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), store)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	validate := validator.New()
	readiness := map[string]handlers.Pinger{"postgres": nil, "redis": redis}
	if pg.Enabled() {
		readiness["postgres"] = pg
	}

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, readiness),
		Auth:           handlers.NewAuthHandler(authService, validate),
		Customers:      handlers.NewCustomersHandler(resolver, validate),
		Calls:          handlers.NewCallsHandler(calls, validate),
		Complaints:     handlers.NewComplaintsHandler(complaints, surveys, validate),
		Dashboard:      handlers.NewDashboardHandler(service.NewDashboardService(store, nil), service.NewLookupService(store)),
		AuthMiddleware: authMiddleware,
		Metrics:        metrics,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

// buildStore uses Postgres when a DSN is configured and an in-process store otherwise.
func buildStore(cfg *config.Config, pg *persistence.Postgres, logger *zap.Logger) repository.Store {
	if pg.Enabled() {
		return repository.NewPostgresStore(pg.PoolHandle())
	}
	mem := repository.NewMemoryStore()
	if cfg.Engine.SeedMemoryStore {
		mem.SeedReferenceData()
		if cfg.App.Env == "development" {
			seedDemoStaff(mem, cfg.Auth.BcryptCost, logger)
		}
	}
	logger.Warn("running with in-memory store; data is lost on restart")
	return mem
}

func seedDemoStaff(mem *repository.MemoryStore, cost int, logger *zap.Logger) {
	hash, err := auth.HashPassword(demoStaffPassword, cost)
	if err != nil {
		logger.Warn("demo staff not seeded", zap.Error(err))
		return
	}
	staffID := mem.AddStaff("Demo", "Agent", true)
	mem.AddStaffLogin(staffID, demoStaffUsername, hash)
	logger.Info("demo staff login seeded", zap.String("username", demoStaffUsername))
}

// buildSessionStore keeps call sessions in Redis when it answers and in
// process memory otherwise.
func buildSessionStore(ctx context.Context, cfg *config.Config, redis *persistence.Redis, logger *zap.Logger) session.Store {
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := redis.Ping(pingCtx); err == nil {
		return session.NewRedisStore(redis.Client, cfg.Engine.SessionTTL())
	}
	logger.Warn("redis unavailable; call sessions kept in memory")
	return session.NewMemoryStore(cfg.Engine.SessionTTL())
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
