package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"google.golang.org/grpc"

	"github.com/rl1809/mintmarket/internal/adapter/handler"
	"github.com/rl1809/mintmarket/internal/adapter/publisher"
	"github.com/rl1809/mintmarket/internal/adapter/storage"
	"github.com/rl1809/mintmarket/internal/auth"
	"github.com/rl1809/mintmarket/internal/capability"
	"github.com/rl1809/mintmarket/internal/config"
	"github.com/rl1809/mintmarket/internal/core/service"
	"github.com/rl1809/mintmarket/internal/ownership"
	"github.com/rl1809/mintmarket/internal/port"
)

const rateLimiterIdle = 10 * time.Minute

// Run is the application entry point. It loads configuration, opens the
// ledger, starts the HTTP and gRPC servers and blocks until ctx is canceled,
// then shuts everything down in reverse order.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)
	logger.Info("starting mintmarket",
		slog.String("version", BuildVersion()),
		slog.String("ledger", cfg.Ledger.Backend),
		slog.String("market", cfg.MarketAddress().String()),
	)

	led, err := OpenLedger(ctx, cfg.Ledger)
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}
	defer led.Close()

	var (
		requests port.RequestGuard
		sink     port.EventPublisher = publisher.NewLogPublisher(logger)
	)
	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		defer rdb.Close()

		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		logger.Info("connected to redis", slog.String("addr", cfg.Redis.Addr))

		ra := storage.NewRedisAdapter(rdb, cfg.Redis.IdempotencyTTL, cfg.Redis.Stream)
		requests = ra
		sink = publisher.Fanout{sink, ra}
	}

	market := cfg.MarketAddress()
	svc := service.NewMarketService(service.Deps{
		Ledger:       led,
		Registry:     ownership.NewRegistry(market),
		Factory:      ownership.NewFactory(market),
		Guard:        capability.NewGuard(),
		Access:       capability.NewRoles(cfg.Auth.Admins...),
		RequestGuard: requests,
	}, service.Options{
		SharedIDs:       cfg.Ledger.SharedIDSpace,
		ResolveCacheTTL: cfg.Market.ResolveCacheTTL,
	}, logger)

	relayCtx, stopRelay := context.WithCancel(context.Background())
	defer stopRelay()
	relay := publisher.NewRelay(svc, sink, logger, publisher.RelayOptions{
		BatchSize:    cfg.Market.EventBatchSize,
		PollInterval: cfg.Market.EventPollInterval,
		RetryDelay:   cfg.Market.EventRetryDelay,
	})
	relay.Start(relayCtx)
	logger.Info("started event relay")

	tokens := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.TokenTTL)

	grpcServer := grpc.NewServer(grpc.ChainUnaryInterceptor(
		handler.LoggingInterceptor(logger),
		handler.AuthInterceptor(tokens),
	))
	handler.RegisterMarketServer(grpcServer, handler.NewGRPCHandler(svc, logger))

	lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		return fmt.Errorf("listen grpc: %w", err)
	}

	errCh := make(chan error, 2)
	go func() {
		logger.Info("gRPC server listening", slog.String("addr", cfg.Server.GRPCAddr))
		if err := grpcServer.Serve(lis); err != nil {
			errCh <- fmt.Errorf("grpc server: %w", err)
		}
	}()

	limiter := handler.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst, rateLimiterIdle)
	routes := handler.NewHTTPHandler(svc, logger).Routes(
		handler.RequestID,
		handler.Recovery(logger),
		handler.AccessLog(logger),
		handler.Auth(tokens),
		limiter.Limit,
	)

	httpServer := &http.Server{
		Addr:         cfg.Server.HTTPAddr,
		Handler:      routes,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("HTTP server listening", slog.String("addr", cfg.Server.HTTPAddr))
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
		logger.Error("server failed", slog.Any("error", runErr))
	}

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP shutdown", slog.Any("error", err))
	}
	logger.Info("HTTP server stopped")

	grpcServer.GracefulStop()
	logger.Info("gRPC server stopped")

	// one last delivery pass; whatever is left stays in the outbox for the next start
	svc.Close()
	deadline := time.AfterFunc(cfg.Server.ShutdownTimeout, stopRelay)
	relay.Wait()
	deadline.Stop()
	logger.Info("event relay stopped")

	return runErr
}
