package grpc

import (
	"context"
	"fmt"
	"net"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// Checker reports whether a dependency answers.
type Checker func(ctx context.Context) error

// HealthServer exposes the standard gRPC health service. The named service
// and the overall status follow the checker result.
type HealthServer struct {
	name     string
	srv      *grpc.Server
	health   *health.Server
	check    Checker
	interval time.Duration
	logger   *zap.Logger
}

func NewHealthServer(name string, check Checker, interval time.Duration, logger *zap.Logger) *HealthServer {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	h := &HealthServer{
		name:     name,
		srv:      grpc.NewServer(),
		health:   health.NewServer(),
		check:    check,
		interval: interval,
		logger:   logger,
	}
	healthpb.RegisterHealthServer(h.srv, h.health)
	reflection.Register(h.srv)
	h.set(healthpb.HealthCheckResponse_NOT_SERVING)
	return h
}

func (h *HealthServer) Start(host string, port int) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	h.logger.Info("Health service started", zap.String("address", addr))
	return h.Serve(lis)
}

func (h *HealthServer) Serve(lis net.Listener) error {
	return h.srv.Serve(lis)
}

// Refresh runs the checker once and publishes the result.
func (h *HealthServer) Refresh(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, h.interval)
	defer cancel()

	if err := h.check(ctx); err != nil {
		h.logger.Warn("Health check failed", zap.Error(err))
		h.set(healthpb.HealthCheckResponse_NOT_SERVING)
		return
	}
	h.set(healthpb.HealthCheckResponse_SERVING)
}

// Watch refreshes the status every interval until ctx is done.
func (h *HealthServer) Watch(ctx context.Context) {
	h.Refresh(ctx)
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.Refresh(ctx)
		}
	}
}

func (h *HealthServer) Stop() {
	h.health.Shutdown()
	h.srv.GracefulStop()
}

func (h *HealthServer) set(status healthpb.HealthCheckResponse_ServingStatus) {
	h.health.SetServingStatus("", status)
	h.health.SetServingStatus(h.name, status)
}
