// Package grpc 对外暴露gRPC健康检查,供负载均衡和k8s探针使用
package grpc

import (
	"context"
	"net"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName 检查项全部通过时该服务为SERVING
const ServiceName = "bookstore.checkout"

// Check 依赖检查,返回nil表示可用
type Check func(ctx context.Context) error

// HealthServer 周期性执行依赖检查并更新健康状态
type HealthServer struct {
	server *grpc.Server
	health *health.Server
	checks map[string]Check
	log    *zap.Logger
}

// NewHealthServer checks的key为依赖名称(mysql、redis),同时作为独立的服务名上报
func NewHealthServer(checks map[string]Check, log *zap.Logger) *HealthServer {
	s := &HealthServer{
		server: grpc.NewServer(),
		health: health.NewServer(),
		checks: checks,
		log:    log,
	}
	healthpb.RegisterHealthServer(s.server, s.health)
	reflection.Register(s.server)

	s.health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	for name := range checks {
		s.health.SetServingStatus(name, healthpb.HealthCheckResponse_NOT_SERVING)
	}
	return s
}

// Serve 阻塞直到Stop
func (s *HealthServer) Serve(lis net.Listener) error {
	return s.server.Serve(lis)
}

// Run 立即检查一次,之后每隔interval检查,ctx取消时返回
func (s *HealthServer) Run(ctx context.Context, interval time.Duration) {
	s.Probe(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Probe(ctx)
		}
	}
}

// Probe 执行一轮检查
func (s *HealthServer) Probe(ctx context.Context) {
	overall := healthpb.HealthCheckResponse_SERVING
	for name, check := range s.checks {
		status := healthpb.HealthCheckResponse_SERVING
		cctx, cancel := context.WithTimeout(ctx, 3*time.Second)
		if err := check(cctx); err != nil {
			status = healthpb.HealthCheckResponse_NOT_SERVING
			overall = status
			s.log.Warn("health check failed", zap.String("dependency", name), zap.Error(err))
		}
		cancel()
		s.health.SetServingStatus(name, status)
	}
	s.health.SetServingStatus(ServiceName, overall)
}

// Stop 先把状态置为NOT_SERVING,再优雅关闭
func (s *HealthServer) Stop() {
	s.health.Shutdown()
	s.server.GracefulStop()
}
