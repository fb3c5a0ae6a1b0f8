package rpc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/matevzStinjek/distributed-trading-system/stock-trading/internal/logger"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const defaultShutdownTimeout = 5 * time.Second

type Server struct {
	grpc            *grpc.Server
	health          *health.Server
	addr            string
	shutdownTimeout time.Duration
	logger          *logger.Logger
}

// NewServer registers svc and the standard health service on a new grpc
// server. Extra options are applied after the logging interceptors.
func NewServer(addr string, svc TradingServer, log *logger.Logger, opts ...grpc.ServerOption) *Server {
	log = log.Component("grpc_server")

	opts = append([]grpc.ServerOption{
		grpc.ChainUnaryInterceptor(UnaryLoggingInterceptor(log)),
		grpc.ChainStreamInterceptor(StreamLoggingInterceptor(log)),
	}, opts...)

	gs := grpc.NewServer(opts...)
	RegisterTradingServer(gs, svc)

	hs := health.NewServer()
	healthpb.RegisterHealthServer(gs, hs)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)

	return &Server{
		grpc:            gs,
		health:          hs,
		addr:            addr,
		shutdownTimeout: defaultShutdownTimeout,
		logger:          log,
	}
}

func (s *Server) Serve(lis net.Listener) error {
	s.logger.Info("grpc server listening", logger.String("addr", lis.Addr().String()))
	if err := s.grpc.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("grpc serve: %w", err)
	}
	return nil
}

// Start listens on the configured address and serves until ctx is done.
func (s *Server) Start(ctx context.Context) error {
	lis, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.addr, err)
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- s.Serve(lis)
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		s.Stop()
		return <-errChan
	}
}

// Stop drains in-flight calls, falling back to a hard stop once the shutdown
// timeout passes. Open sessions see their context canceled.
func (s *Server) Stop() {
	s.health.Shutdown()

	done := make(chan struct{})
	go func() {
		s.grpc.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("grpc server stopped")
	case <-time.After(s.shutdownTimeout):
		s.logger.Warn("graceful stop timed out, closing open streams",
			logger.Duration("timeout", s.shutdownTimeout))
		s.grpc.Stop()
	}
}
