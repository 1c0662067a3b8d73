package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"github.com/vasapolrittideah/credential-api/services/auth-service/internal/clock"
	"github.com/vasapolrittideah/credential-api/services/auth-service/internal/config"
	"github.com/vasapolrittideah/credential-api/services/auth-service/internal/handler"
	"github.com/vasapolrittideah/credential-api/services/auth-service/internal/repository"
	"github.com/vasapolrittideah/credential-api/services/auth-service/internal/usecase"
	"github.com/vasapolrittideah/credential-api/shared/discovery"
	"github.com/vasapolrittideah/credential-api/shared/interceptor"
	"github.com/vasapolrittideah/credential-api/shared/logger"
	"github.com/vasapolrittideah/credential-api/shared/mailer"
	"github.com/vasapolrittideah/credential-api/shared/utilities"
	"github.com/vasapolrittideah/credential-api/shared/validation"
)

const connectTimeout = 10 * time.Second

func main() {
	// A missing .env is normal outside local development.
	envFileErr := godotenv.Load()

	cfg, err := config.NewAuthServiceConfig()
	if err != nil {
		bootstrap := logger.NewLogger(logger.Config{Level: "info"})
		bootstrap.Fatal().Err(err).Msg("failed to load auth service config")
	}

	log := logger.NewLogger(cfg.Log)
	if envFileErr != nil {
		log.Debug().Err(envFileErr).Msg("no .env file loaded")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg, log)
	stop()

	if err != nil {
		log.Fatal().Err(err).Msg("auth service stopped with error")
	}
	log.Info().Msg("auth service stopped")
}

func run(ctx context.Context, cfg *config.AuthServiceConfig, log *zerolog.Logger) error {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	validator, err := validation.NewValidator()
	if err != nil {
		return fmt.Errorf("create validator: %w", err)
	}

	identityRepo, profileRepo, closeDirectory, err := newDirectory(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeDirectory()

	attemptRepo, closeAttempts, err := newResetAttemptStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeAttempts()

	dispatcher := mailer.NewDispatcher(mailer.NewMailer(log), log,
		mailer.WithTimeout(cfg.Mail.Timeout),
		mailer.WithMaxInFlight(cfg.Mail.MaxInFlight),
		mailer.WithRegisterer(registry),
	)

	passwordResetUsecase := usecase.NewPasswordResetUsecase(
		attemptRepo,
		identityRepo,
		usecase.NewCodeGenerator(),
		dispatcher,
		clock.Real(),
		validator,
		log,
		cfg.Reset.CodeExpiresIn(),
	)
	accountUsecase := usecase.NewAccountUsecase(identityRepo, profileRepo, dispatcher, validator, log)

	router := handler.NewRouter(log, handler.RouterConfig{AllowedOrigin: cfg.AllowedOrigin, Registry: registry})
	handler.NewAuthHTTPHandler(router, passwordResetUsecase, accountUsecase, validator)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	grpcServer := grpc.NewServer(grpc.ChainUnaryInterceptor(
		interceptor.NewLoggingInterceptor(log, "/grpc.health.v1.Health/Check"),
	))
	healthServer := utilities.RegisterHealthServer(grpcServer, cfg.Discovery.ServiceName)

	deregister := registerService(cfg, log)
	defer deregister()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Int("port", cfg.Port).Msg("HTTP server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	if cfg.GRPCPort > 0 {
		g.Go(func() error {
			lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.GRPCPort))
			if err != nil {
				return fmt.Errorf("listen grpc: %w", err)
			}

			log.Info().Int("port", cfg.GRPCPort).Msg("gRPC health server listening")
			if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				return fmt.Errorf("grpc server: %w", err)
			}
			return nil
		})
	}

	if cfg.Reset.Store == config.ResetStoreMemory {
		g.Go(func() error {
			sweepExpiredAttempts(gctx, passwordResetUsecase, cfg.Reset.SweepInterval, log)
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down auth service")

		healthServer.Shutdown()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		grpcServer.GracefulStop()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	})

	return g.Wait()
}

func newDirectory(
	ctx context.Context,
	cfg *config.AuthServiceConfig,
	log *zerolog.Logger,
) (repository.IdentityRepository, repository.ProfileRepository, func(), error) {
	if cfg.Mongo.DirectoryStore == config.DirectoryStoreMemory {
		log.Warn().Msg("using in-memory identity directory, data is lost on restart")
		return repository.NewIdentityMemoryRepository(), repository.NewProfileMemoryRepository(), func() {}, nil
	}

	client, err := mongo.Connect(options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connect mongodb: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, nil, fmt.Errorf("ping mongodb: %w", err)
	}

	db := client.Database(cfg.Mongo.Database)
	closeFn := func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()
		if err := client.Disconnect(disconnectCtx); err != nil {
			log.Error().Err(err).Msg("failed to disconnect mongodb")
		}
	}

	return repository.NewIdentityMongoRepository(pingCtx, log, db), repository.NewProfileMongoRepository(db), closeFn, nil
}

func newResetAttemptStore(
	ctx context.Context,
	cfg *config.AuthServiceConfig,
) (repository.ResetAttemptRepository, func(), error) {
	if cfg.Reset.Store != config.ResetStoreRedis {
		return repository.NewResetAttemptMemoryRepository(), func() {}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("ping redis: %w", err)
	}

	return repository.NewResetAttemptRedisRepository(client), func() { _ = client.Close() }, nil
}

func registerService(cfg *config.AuthServiceConfig, log *zerolog.Logger) func() {
	if cfg.Discovery.ConsulAddr == "" {
		return func() {}
	}

	registry, err := discovery.NewConsulRegistry(cfg.Discovery.ConsulAddr)
	if err != nil {
		log.Error().Err(err).Msg("failed to create consul registry")
		return func() {}
	}

	id, err := registry.Register(discovery.Registration{
		Name:     cfg.Discovery.ServiceName,
		Host:     cfg.Discovery.ServiceHost,
		HTTPPort: cfg.Port,
		GRPCPort: cfg.GRPCPort,
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to register with consul")
		return func() {}
	}

	log.Info().Str("service_id", id).Msg("registered with consul")

	return func() {
		if err := registry.Deregister(id); err != nil {
			log.Error().Err(err).Str("service_id", id).Msg("failed to deregister from consul")
		}
	}
}

func sweepExpiredAttempts(
	ctx context.Context,
	passwordResetUsecase usecase.PasswordResetUsecase,
	interval time.Duration,
	log *zerolog.Logger,
) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := passwordResetUsecase.PurgeExpiredAttempts(ctx)
			if err != nil {
				log.Error().Err(err).Msg("failed to purge expired reset attempts")
				continue
			}
			if n > 0 {
				log.Debug().Int64("count", n).Msg("purged expired reset attempts")
			}
		}
	}
}
