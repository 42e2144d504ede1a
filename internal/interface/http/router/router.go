// Package router 注册HTTP路由
package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/xiebiao/bookstore-checkout/internal/infrastructure/config"
	"github.com/xiebiao/bookstore-checkout/internal/interface/http/handler"
	"github.com/xiebiao/bookstore-checkout/internal/interface/http/middleware"
	apperrors "github.com/xiebiao/bookstore-checkout/pkg/errors"
	"github.com/xiebiao/bookstore-checkout/pkg/logger"
	"github.com/xiebiao/bookstore-checkout/pkg/response"
)

// Handlers 所有HTTP处理器
type Handlers struct {
	User    *handler.UserHandler
	Book    *handler.BookHandler
	Cart    *handler.CartHandler
	Order   *handler.OrderHandler
	Payment *handler.PaymentHandler
}

// New 创建Gin引擎并注册全部路由
func New(cfg *config.Config, log *zap.Logger, h Handlers, auth *middleware.AuthMiddleware) *gin.Engine {
	switch cfg.Server.Mode {
	case gin.ReleaseMode, gin.TestMode:
		gin.SetMode(cfg.Server.Mode)
	}

	r := gin.New()
	r.Use(
		middleware.Tracing(),
		middleware.Logger(log),
		gin.CustomRecovery(recovery),
		middleware.Metrics(),
		middleware.CORS(cfg.Server.CORS),
	)

	r.GET("/ping", func(c *gin.Context) {
		response.Success(c, gin.H{"message": "pong"})
	})
	if cfg.Metrics.Enabled {
		path := cfg.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		r.GET(path, gin.WrapH(promhttp.Handler()))
	}
	if cfg.Server.Mode != gin.ReleaseMode {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	v1 := r.Group("/api/v1")
	{
		users := v1.Group("/users")
		users.POST("/register", h.User.Register)
		users.POST("/login", h.User.Login)
		users.POST("/refresh", h.User.RefreshToken)
		users.POST("/logout", auth.RequireAuth(), h.User.Logout)

		books := v1.Group("/books")
		books.GET("", h.Book.ListBooks)
		books.GET("/:id", h.Book.GetBook)
		staffBooks := books.Group("", auth.RequireAuth(), auth.RequireStaff())
		staffBooks.POST("", h.Book.PublishBook)
		staffBooks.PUT("/:id/price", h.Book.UpdatePrice)
		staffBooks.PUT("/:id/stock", h.Book.UpdateStock)
		staffBooks.DELETE("/:id", h.Book.DeleteBook)

		cart := v1.Group("/cart", auth.RequireAuth())
		cart.GET("", h.Cart.GetCart)
		cart.POST("/items", h.Cart.AddItem)
		cart.PUT("/items/:book_id", h.Cart.UpdateItem)
		cart.DELETE("/items/:book_id", h.Cart.RemoveItem)
		cart.POST("/merge", h.Cart.Merge)

		orders := v1.Group("/orders", auth.RequireAuth())
		orders.POST("", h.Order.CreateOrder)
		orders.GET("", h.Order.ListMyOrders)
		orders.GET("/:id", h.Order.GetOrder)
		orders.POST("/:id/cancel", h.Order.CancelOrder)

		admin := v1.Group("/admin", auth.RequireAuth(), auth.RequireStaff())
		admin.GET("/orders", h.Order.ListAllOrders)
		admin.PUT("/orders/:id", h.Order.UpdateOrder)

		// PayPal回跳是浏览器重定向,不带Token
		payments := v1.Group("/payments/paypal")
		payments.GET("/success", h.Payment.PayPalSuccess)
		payments.GET("/cancel", h.Payment.PayPalCancel)
	}

	return r
}

func recovery(c *gin.Context, rec any) {
	logger.FromContext(c.Request.Context()).Error("panic recovered",
		zap.Any("panic", rec),
		zap.String("path", c.Request.URL.Path),
		zap.Stack("stack"),
	)
	response.Error(c, apperrors.ErrInternal)
	c.Abort()
}
