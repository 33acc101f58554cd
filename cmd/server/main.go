package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/gccconnect/connect/internal/api"
	"github.com/gccconnect/connect/internal/core/domain"
	"github.com/gccconnect/connect/internal/core/policy"
	"github.com/gccconnect/connect/internal/core/ports"
	"github.com/gccconnect/connect/internal/core/service"
	"github.com/gccconnect/connect/internal/infrastructure/config"
	"github.com/gccconnect/connect/internal/infrastructure/db/memory"
	mongodb "github.com/gccconnect/connect/internal/infrastructure/db/mongo"
	redisdb "github.com/gccconnect/connect/internal/infrastructure/db/redis"
	"github.com/gccconnect/connect/internal/infrastructure/http/handlers"
	"github.com/gccconnect/connect/internal/infrastructure/queue"
	"github.com/gccconnect/connect/internal/infrastructure/tracing"
	"github.com/gccconnect/connect/pkg/logger"
)

const (
	serviceName      = "connect-server"
	devJWTSecret     = "dev-only-secret"
	shutdownDeadline = 30 * time.Second
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		log := logger.Init(logger.Options{Service: serviceName})
		log.Fatal().Err(err).Msg("load config")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: serviceName,
		Env:     cfg.Env,
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	shutdownTracing, err := tracing.Init(ctx, log, cfg.OTLPEndpoint, serviceName, cfg.Env)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			log.Warn().Err(err).Msg("tracing shutdown")
		}
	}()

	checks := map[string]handlers.Checker{}

	repo, closeRepo, err := identityRepository(ctx, cfg, log, checks)
	if err != nil {
		return err
	}
	defer closeRepo()

	var limiter ports.AttemptLimiter
	if cfg.Redis.Enabled {
		rdb, err := redisdb.Connect(ctx, redisdb.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err != nil {
			return err
		}
		defer rdb.Close()
		checks["redis"] = handlers.RedisChecker(rdb)
		limiter = redisdb.NewAttemptLimiter(rdb, cfg.LoginAttempt.Limit, cfg.LoginAttempt.Window)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("redis connected")
	}

	secret := cfg.JWTSecret
	if secret == "" {
		log.Warn().Msg("JWT_SECRET not set, using development secret")
		secret = devJWTSecret
	}
	tokens := service.NewTokenIssuer(secret, cfg.TokenTTL)

	broker := queue.NewBroker(logger.Component("broker"))
	broker.Start(ctx)

	e := api.NewRouter(api.Deps{
		Verifier:       service.NewCredentialVerifier(repo, tokens, service.VerifierOptions{VerifyPasswords: cfg.VerifyPasswords}, logger.Component("auth")),
		Limiter:        limiter,
		Tokens:         tokens,
		Admin:          service.NewAdminService(repo, broker, logger.Component("admin")),
		Profiles:       service.NewProfileService(repo, logger.Component("profile")),
		Routes:         policy.NewTable(policy.Options{RequireApproval: cfg.RequireApproval}),
		Approvals:      broker,
		Checks:         checks,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		ServiceName:    serviceName,
		Log:            log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("port", cfg.Port).
			Str("backend", cfg.IdentityBackend).
			Bool("require_approval", cfg.RequireApproval).
			Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownDeadline)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return err
	}
	log.Info().Msg("server stopped gracefully")
	return nil
}

// identityRepository opens the configured backend and seeds the demo
// identities when enabled. The returned func releases the backend.
func identityRepository(ctx context.Context, cfg *config.Config, log zerolog.Logger, checks map[string]handlers.Checker) (ports.IdentityRepository, func(), error) {
	var seed []domain.Identity
	if cfg.SeedDemo {
		seed = memory.DemoIdentities()
	}

	if cfg.IdentityBackend == config.BackendMemory {
		log.Info().Int("seeded", len(seed)).Msg("using in-memory identities")
		return memory.NewIdentityRepository(seed...), func() {}, nil
	}

	client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database, Timeout: cfg.Mongo.Timeout})
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() { _ = mongodb.Disconnect(client, 5*time.Second) }
	checks["mongo"] = handlers.MongoChecker(db)

	repo := mongodb.NewIdentityRepository(db)
	if err := repo.EnsureIndexes(ctx); err != nil {
		closeFn()
		return nil, nil, err
	}

	seeded := 0
	for i := range seed {
		_, err := repo.Create(ctx, &seed[i])
		switch {
		case err == nil:
			seeded++
		case errors.Is(err, domain.ErrUserExists):
		default:
			closeFn()
			return nil, nil, err
		}
	}
	log.Info().Str("database", cfg.Mongo.Database).Int("seeded", seeded).Msg("mongo connected")
	return repo, closeFn, nil
}
