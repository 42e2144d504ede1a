package main

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	apporder "github.com/xiebiao/bookstore-checkout/internal/application/order"
	appuser "github.com/xiebiao/bookstore-checkout/internal/application/user"
	"github.com/xiebiao/bookstore-checkout/internal/domain/book"
	"github.com/xiebiao/bookstore-checkout/internal/domain/cart"
	"github.com/xiebiao/bookstore-checkout/internal/domain/inventory"
	domainnotify "github.com/xiebiao/bookstore-checkout/internal/domain/notification"
	"github.com/xiebiao/bookstore-checkout/internal/domain/order"
	"github.com/xiebiao/bookstore-checkout/internal/domain/payment"
	"github.com/xiebiao/bookstore-checkout/internal/domain/pricing"
	"github.com/xiebiao/bookstore-checkout/internal/domain/user"
	"github.com/xiebiao/bookstore-checkout/internal/infrastructure/config"
	"github.com/xiebiao/bookstore-checkout/internal/infrastructure/notification"
	"github.com/xiebiao/bookstore-checkout/internal/infrastructure/payment/paypal"
	"github.com/xiebiao/bookstore-checkout/internal/infrastructure/payment/strategy"
	"github.com/xiebiao/bookstore-checkout/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/bookstore-checkout/internal/infrastructure/persistence/redis"
	grpcserver "github.com/xiebiao/bookstore-checkout/internal/interface/grpc"
	"github.com/xiebiao/bookstore-checkout/pkg/jwt"
)

// 下单时远程支付步骤的总超时
const checkoutSagaTimeout = 30 * time.Second

// App 进程持有的顶层组件
type App struct {
	Engine *gin.Engine
	Health *grpcserver.HealthServer
}

func provideDB(cfg *config.Config, log *zap.Logger) (*gorm.DB, func(), error) {
	db, err := mysql.NewDB(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	return db, cleanup, nil
}

func provideRedis(ctx context.Context, cfg *config.Config, log *zap.Logger) (*goredis.Client, func(), error) {
	client, err := redis.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		return nil, nil, err
	}
	return client, func() { _ = client.Close() }, nil
}

func provideNotifier(cfg *config.Config, log *zap.Logger) (domainnotify.Notifier, func(), error) {
	n, closeFn, err := notification.New(cfg.Notification, log)
	if err != nil {
		return nil, nil, err
	}
	return n, func() {
		if err := closeFn(); err != nil {
			log.Warn("关闭通知通道失败", zap.Error(err))
		}
	}, nil
}

// providePayPalGateway 未配置PayPal时返回nil接口,注册表里不会出现PAYPAL
func providePayPalGateway(cfg *config.Config) (strategy.PayPalGateway, error) {
	if !cfg.Payment.PayPal.Enabled() {
		return nil, nil
	}
	client, err := paypal.New(cfg.Payment.PayPal)
	if err != nil {
		return nil, err
	}
	return client, nil
}

func provideRegistry(cfg *config.Config, gw strategy.PayPalGateway) (*payment.Registry, error) {
	return strategy.NewRegistry(cfg.Payment, gw)
}

func providePricingEngine(cfg *config.Config) (*pricing.Engine, error) {
	rates, err := cfg.Payment.Rates()
	if err != nil {
		return nil, err
	}
	return pricing.NewEngine(cfg.Payment.CatalogCurrency, rates), nil
}

func provideLedger(books book.Repository) *inventory.Ledger {
	return inventory.NewLedger(books)
}

func provideUserService(repo user.Repository) user.Service {
	return user.NewService(repo, bcrypt.DefaultCost)
}

func provideJWTManager(cfg *config.Config) *jwt.Manager {
	return jwt.NewManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpire, cfg.JWT.RefreshTokenExpire)
}

func provideCallbackLock(client *goredis.Client, cfg *config.Config) *redis.CallbackLock {
	return redis.NewCallbackLock(client, cfg.Payment.CallbackLockTTL)
}

func provideRegisterUseCase(svc user.Service, notifier domainnotify.Notifier, tx *mysql.TxManager, cfg *config.Config) *appuser.RegisterUseCase {
	return appuser.NewRegisterUseCase(svc, notifier, tx, cfg.Server.PublicURL)
}

// 会话与refresh token同寿命
func provideLoginUseCase(svc user.Service, jwtManager *jwt.Manager, store *redis.SessionStore, cfg *config.Config) *appuser.LoginUseCase {
	return appuser.NewLoginUseCase(svc, jwtManager, store, cfg.JWT.RefreshTokenExpire)
}

func provideCreateOrderUseCase(
	users user.Repository,
	carts cart.Repository,
	books book.Repository,
	orders order.Repository,
	payments payment.Repository,
	ledger *inventory.Ledger,
	engine *pricing.Engine,
	registry *payment.Registry,
	notifier domainnotify.Notifier,
	tx *mysql.TxManager,
) *apporder.CreateOrderUseCase {
	return apporder.NewCreateOrderUseCase(users, carts, books, orders, payments,
		ledger, engine, registry, notifier, tx, checkoutSagaTimeout)
}

// provideHealthServer 上报MySQL和Redis的可用性
func provideHealthServer(db *gorm.DB, client *goredis.Client, log *zap.Logger) *grpcserver.HealthServer {
	return grpcserver.NewHealthServer(map[string]grpcserver.Check{
		"mysql": func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
		"redis": func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		},
	}, log)
}
