package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/flightescrow/config"
	"github.com/Domenick1991/flightescrow/internal/bootstrap"
	"github.com/Domenick1991/flightescrow/internal/cache"
	"github.com/Domenick1991/flightescrow/internal/domain"
	"github.com/Domenick1991/flightescrow/internal/logger"
	"github.com/Domenick1991/flightescrow/internal/repository"
	"github.com/Domenick1991/flightescrow/internal/service/escrow"
	"github.com/Domenick1991/flightescrow/internal/service/flights"
	"github.com/Domenick1991/flightescrow/internal/tracing"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// @title           Flight Escrow API
// @version         1.0
// @description     Ticket escrow between customers and the airline: bookings, cancellations, refunds and flight status.
// @BasePath        /
// @securityDefinitions.apikey CallerAccount
// @in header
// @name X-Account-ID
func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(config.Path())
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg.Env, cfg.Log.Level)
	defer func() {
		_ = log.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tp, err := tracing.InitTracer("flightescrow-app", cfg.Tracing.Jaeger)
	if err != nil {
		log.Warn("tracing disabled", zap.Error(err))
	} else {
		defer func() {
			_ = tp.Shutdown(context.Background())
		}()
	}

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatal("connect postgres", zap.Error(err))
	}
	defer pool.Close()

	store := repository.NewPGStore(pool)
	if err := store.Migrate(ctx); err != nil {
		log.Fatal("apply schema", zap.Error(err))
	}

	redisCache := cache.NewRedisCache(cfg.Redis, cfg.Escrow.FlightsCacheTTL)
	defer func() {
		_ = redisCache.Close()
	}()

	opts, err := bootstrap.EscrowOptions(cfg)
	if err != nil {
		log.Fatal("escrow options", zap.Error(err))
	}
	airline := domain.AccountID(cfg.Escrow.AirlineAccount)
	escrowService := escrow.NewService(log, store, airline, append(opts, escrow.WithCache(redisCache))...)
	flightService := flights.NewFlightService(log, store, redisCache, airline)

	log.Info("flightescrow starting",
		zap.String("env", cfg.Env),
		zap.String("http_addr", cfg.HTTP.Address),
		zap.String("grpc_addr", cfg.GRPC.Address),
		zap.String("airline", string(airline)),
	)

	if err := bootstrap.Run(ctx, log, cfg, flightService, escrowService); err != nil {
		log.Error("server stopped", zap.Error(err))
		return
	}
	log.Info("shutdown complete")
}
