package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Domenick1991/flightescrow/api"
	"github.com/Domenick1991/flightescrow/config"
	escrowapi "github.com/Domenick1991/flightescrow/internal/api/escrow_service_api"
	"github.com/Domenick1991/flightescrow/internal/grpcapp"
	"github.com/Domenick1991/flightescrow/internal/policy"
	"github.com/Domenick1991/flightescrow/internal/service/escrow"
	"github.com/Domenick1991/flightescrow/internal/service/flights"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
)

const shutdownTimeout = 5 * time.Second

type Servers struct {
	grpcApp    *grpcapp.GrpcApp
	httpServer *http.Server
}

// Run starts the gRPC and HTTP (gin + swagger) servers and blocks until ctx is canceled or a server fails.
func Run(ctx context.Context, log *zap.Logger, cfg *config.Config, flightSvc flights.FlightUseCase, escrowSvc escrow.EscrowUseCase) error {
	s := newServers(log, cfg, flightSvc, escrowSvc)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.grpcApp.Run()
	})

	g.Go(func() error {
		log.Info("HTTP server started", zap.String("addr", cfg.HTTP.Address))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.grpcApp.Stop()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	})

	return g.Wait()
}

func newServers(log *zap.Logger, cfg *config.Config, flightSvc flights.FlightUseCase, escrowSvc escrow.EscrowUseCase) *Servers {
	grpcApp := grpcapp.New(log, cfg.GRPC.Address, func(srv *grpc.Server) {
		escrowapi.RegisterEscrowServiceServer(srv, escrowapi.NewServer(escrowSvc, flightSvc))
	})

	httpSrv := &http.Server{
		Addr:              cfg.HTTP.Address,
		Handler:           api.NewRouter(log, flightSvc, escrowSvc),
		ReadHeaderTimeout: 5 * time.Second,
	}

	return &Servers{
		grpcApp:    grpcApp,
		httpServer: httpSrv,
	}
}

// EscrowOptions translates the escrow and policy sections of cfg into service options.
func EscrowOptions(cfg *config.Config) ([]escrow.ServiceOption, error) {
	cancellation, err := policyTable(cfg.Policy.Cancellation, policy.DefaultCancellation())
	if err != nil {
		return nil, fmt.Errorf("cancellation policy: %w", err)
	}
	delay, err := policyTable(cfg.Policy.Delay, policy.DefaultDelay())
	if err != nil {
		return nil, fmt.Errorf("delay policy: %w", err)
	}

	return []escrow.ServiceOption{
		escrow.WithPolicies(cancellation, delay),
		escrow.WithForwardFare(cfg.Escrow.ForwardFareOnBooking),
		escrow.WithRepayCancelledPenalty(cfg.Escrow.RepayCancelledPenalty),
		escrow.WithIdempotencyTTL(cfg.Escrow.IdempotencyTTL),
	}, nil
}

func policyTable(tc config.TableConfig, fallback *policy.Table) (*policy.Table, error) {
	if len(tc.Thresholds) == 0 {
		return fallback, nil
	}
	return policy.NewTable(tc.Thresholds, tc.FullRefundAfter)
}
