//go:build wireinject
// +build wireinject

package main

import (
	"context"

	"github.com/google/wire"
	"go.uber.org/zap"

	appbook "github.com/xiebiao/bookstore-checkout/internal/application/book"
	appcart "github.com/xiebiao/bookstore-checkout/internal/application/cart"
	apporder "github.com/xiebiao/bookstore-checkout/internal/application/order"
	apppayment "github.com/xiebiao/bookstore-checkout/internal/application/payment"
	appuser "github.com/xiebiao/bookstore-checkout/internal/application/user"
	"github.com/xiebiao/bookstore-checkout/internal/domain/book"
	"github.com/xiebiao/bookstore-checkout/internal/infrastructure/config"
	"github.com/xiebiao/bookstore-checkout/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/bookstore-checkout/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/bookstore-checkout/internal/interface/http/handler"
	"github.com/xiebiao/bookstore-checkout/internal/interface/http/middleware"
	"github.com/xiebiao/bookstore-checkout/internal/interface/http/router"
)

// 修改后执行 wire gen ./cmd/api 重新生成wire_gen.go

var infrastructureSet = wire.NewSet(
	provideDB,
	provideRedis,
	provideNotifier,
	providePayPalGateway,
	provideRegistry,
	providePricingEngine,
	provideHealthServer,
)

var repositorySet = wire.NewSet(
	mysql.NewUserRepository,
	mysql.NewBookRepository,
	mysql.NewCartRepository,
	mysql.NewOrderRepository,
	mysql.NewPaymentRepository,
	mysql.NewTxManager,
	wire.Bind(new(appcart.TxManager), new(*mysql.TxManager)),
	wire.Bind(new(apporder.TxManager), new(*mysql.TxManager)),
	wire.Bind(new(apppayment.TxManager), new(*mysql.TxManager)),
	redis.NewSessionStore,
	wire.Bind(new(appuser.SessionStore), new(*redis.SessionStore)),
	wire.Bind(new(middleware.Blacklist), new(*redis.SessionStore)),
	provideCallbackLock,
	wire.Bind(new(apppayment.CallbackLock), new(*redis.CallbackLock)),
)

var domainSet = wire.NewSet(
	provideUserService,
	book.NewService,
	provideLedger,
	provideJWTManager,
)

var applicationSet = wire.NewSet(
	provideRegisterUseCase,
	provideLoginUseCase,
	appuser.NewLogoutUseCase,
	appuser.NewRefreshTokenUseCase,
	appbook.NewPublishBookUseCase,
	appbook.NewListBooksUseCase,
	appbook.NewGetBookUseCase,
	appbook.NewManageBookUseCase,
	appcart.NewService,
	provideCreateOrderUseCase,
	apporder.NewUpdateOrderUseCase,
	apporder.NewCancelOrderUseCase,
	apporder.NewQueryService,
	apppayment.NewExecutePaymentUseCase,
	apppayment.NewCancelPaymentUseCase,
)

var interfaceSet = wire.NewSet(
	middleware.NewAuthMiddleware,
	handler.NewUserHandler,
	handler.NewBookHandler,
	handler.NewCartHandler,
	handler.NewOrderHandler,
	handler.NewPaymentHandler,
	wire.Struct(new(router.Handlers), "*"),
	router.New,
)

// InitializeApp 组装全部依赖,cleanup按创建的逆序释放连接
func InitializeApp(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, func(), error) {
	wire.Build(
		infrastructureSet,
		repositorySet,
		domainSet,
		applicationSet,
		interfaceSet,
		wire.Struct(new(App), "*"),
	)
	return nil, nil, nil
}
