// Package logger 基于zap的结构化日志
//
// 约定:
//   - 进程启动时用New构建根logger并调用zap.ReplaceGlobals
//   - 请求级字段(request_id、user_id)通过WithContext挂到context上
//   - FromContext会自动补上当前span的trace_id/span_id,便于日志与链路关联
package logger

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/xiebiao/bookstore-checkout/pkg/tracing"
)

// Options 日志配置(与config.LogConfig字段一一对应)
type Options struct {
	Level        string // debug | info | warn | error
	Format       string // console | json
	Output       string // stdout | stderr | 文件路径
	EnableCaller bool
	Service      string
}

// New 构建zap logger
func New(opts Options) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(strings.ToLower(orDefault(opts.Level, "info")))
	if err != nil {
		return nil, fmt.Errorf("无效的日志级别 %q: %w", opts.Level, err)
	}

	var cfg zap.Config
	if opts.Format == "console" {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.LowercaseLevelEncoder
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.MessageKey = "msg"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.DisableCaller = !opts.EnableCaller

	output := orDefault(opts.Output, "stdout")
	if output != "stdout" && output != "stderr" {
		if err := ensureLogFile(output); err != nil {
			return nil, fmt.Errorf("创建日志文件失败: %w", err)
		}
	}
	cfg.OutputPaths = []string{output}
	cfg.ErrorOutputPaths = []string{output}

	if opts.Service != "" {
		cfg.InitialFields = map[string]interface{}{"service": opts.Service}
	}

	return cfg.Build()
}

type ctxKey struct{}

// WithContext 把logger放进context
func WithContext(ctx context.Context, l *zap.Logger) context.Context {
	if l == nil {
		return ctx
	}
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext 取出请求级logger,没有则回退到zap.L()
func FromContext(ctx context.Context) *zap.Logger {
	l := zap.L()
	if ctx == nil {
		return l
	}
	if cl, ok := ctx.Value(ctxKey{}).(*zap.Logger); ok && cl != nil {
		l = cl
	}
	if traceID := tracing.ExtractTraceID(ctx); traceID != "" {
		l = l.With(
			zap.String("trace_id", traceID),
			zap.String("span_id", tracing.ExtractSpanID(ctx)),
		)
	}
	return l
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func ensureLogFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	return f.Close()
}
