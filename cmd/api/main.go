package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	_ "github.com/xiebiao/bookstore-checkout/docs"
	"github.com/xiebiao/bookstore-checkout/internal/infrastructure/config"
	"github.com/xiebiao/bookstore-checkout/pkg/logger"
	"github.com/xiebiao/bookstore-checkout/pkg/metrics"
	"github.com/xiebiao/bookstore-checkout/pkg/tracing"
)

const serviceName = "bookstore-checkout"

// @title           Bookstore Checkout API
// @version         1.0
// @description     购物车、下单与支付编排
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	zlog, err := logger.New(logger.Options{
		Level:        cfg.Log.Level,
		Format:       cfg.Log.Format,
		Output:       cfg.Log.Output,
		EnableCaller: cfg.Log.EnableCaller,
		Service:      serviceName,
	})
	if err != nil {
		log.Fatalf("初始化日志失败: %v", err)
	}
	defer func() { _ = zlog.Sync() }()
	zap.ReplaceGlobals(zlog)

	if err := run(cfg, zlog); err != nil {
		zlog.Fatal("服务异常退出", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Tracing.Enabled {
		shutdown, err := tracing.InitTracer(tracing.Options{
			ServiceName: serviceName,
			Endpoint:    cfg.Tracing.Endpoint,
			SampleRatio: cfg.Tracing.SampleRatio,
			Insecure:    true,
		})
		if err != nil {
			return err
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				log.Warn("关闭TracerProvider失败", zap.Error(err))
			}
		}()
	}
	if cfg.Metrics.Enabled {
		metrics.InitMetrics()
	}

	app, cleanup, err := InitializeApp(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("初始化依赖失败: %w", err)
	}
	defer cleanup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      app.Engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	errCh := make(chan error, 2)
	go func() {
		log.Info("HTTP服务启动", zap.String("addr", srv.Addr), zap.String("mode", cfg.Server.Mode))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP服务异常: %w", err)
		}
	}()

	if cfg.GRPC.Port > 0 {
		lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.GRPC.Port))
		if err != nil {
			return fmt.Errorf("监听gRPC端口失败: %w", err)
		}
		go app.Health.Run(ctx, 10*time.Second)
		go func() {
			log.Info("gRPC健康检查启动", zap.String("addr", lis.Addr().String()))
			if err := app.Health.Serve(lis); err != nil {
				errCh <- fmt.Errorf("gRPC服务异常: %w", err)
			}
		}()
		defer app.Health.Stop()
	}

	select {
	case <-ctx.Done():
		log.Info("收到退出信号,开始优雅关闭")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("关闭HTTP服务失败: %w", err)
	}
	log.Info("服务已关闭")
	return nil
}
