package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	appbook "github.com/xiebiao/bookstore-checkout/internal/application/book"
	appcart "github.com/xiebiao/bookstore-checkout/internal/application/cart"
	apporder "github.com/xiebiao/bookstore-checkout/internal/application/order"
	apppayment "github.com/xiebiao/bookstore-checkout/internal/application/payment"
	appuser "github.com/xiebiao/bookstore-checkout/internal/application/user"
	"github.com/xiebiao/bookstore-checkout/internal/domain/book"
	"github.com/xiebiao/bookstore-checkout/internal/domain/inventory"
	"github.com/xiebiao/bookstore-checkout/internal/domain/pricing"
	"github.com/xiebiao/bookstore-checkout/internal/domain/user"
	"github.com/xiebiao/bookstore-checkout/internal/infrastructure/config"
	"github.com/xiebiao/bookstore-checkout/internal/infrastructure/notification"
	"github.com/xiebiao/bookstore-checkout/internal/infrastructure/payment/strategy"
	"github.com/xiebiao/bookstore-checkout/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/bookstore-checkout/internal/infrastructure/persistence/mysql/mysqltest"
	"github.com/xiebiao/bookstore-checkout/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/bookstore-checkout/internal/interface/http/handler"
	"github.com/xiebiao/bookstore-checkout/internal/interface/http/middleware"
	"github.com/xiebiao/bookstore-checkout/internal/interface/http/router"
	apperrors "github.com/xiebiao/bookstore-checkout/pkg/errors"
	"github.com/xiebiao/bookstore-checkout/pkg/jwt"
)

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testServer struct {
	engine *gin.Engine
	jwt    *jwt.Manager
	users  user.Repository
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := mysqltest.NewDB(t)
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cfg := &config.Config{
		Server: config.ServerConfig{Mode: gin.TestMode, PublicURL: "http://localhost:8080"},
		Payment: config.PaymentConfig{
			CatalogCurrency:  "VND",
			DefaultCODStatus: "PENDING",
			DefaultQRStatus:  "COMPLETED",
			SePay:            config.SePayConfig{Bank: "MBBank", Account: "0123456789"},
		},
	}
	log := zap.NewNop()

	userRepo := mysql.NewUserRepository(db)
	bookRepo := mysql.NewBookRepository(db)
	cartRepo := mysql.NewCartRepository(db)
	orderRepo := mysql.NewOrderRepository(db)
	paymentRepo := mysql.NewPaymentRepository(db)
	tx := mysql.NewTxManager(db)
	sessions := redis.NewSessionStore(client)
	jwtManager := jwt.NewManager("test-secret", time.Hour, 24*time.Hour)
	notifier := notification.NewLogNotifier(log)

	registry, err := strategy.NewRegistry(cfg.Payment, nil)
	require.NoError(t, err)
	engine := pricing.NewEngine("VND", map[string]decimal.Decimal{"USD": decimal.NewFromInt(25000)})
	ledger := inventory.NewLedger(bookRepo)
	userService := user.NewService(userRepo, bcrypt.MinCost)
	bookService := book.NewService(bookRepo)

	h := router.Handlers{
		User: handler.NewUserHandler(
			appuser.NewRegisterUseCase(userService, notifier, tx, cfg.Server.PublicURL),
			appuser.NewLoginUseCase(userService, jwtManager, sessions, time.Hour),
			appuser.NewLogoutUseCase(sessions),
			appuser.NewRefreshTokenUseCase(userRepo, jwtManager),
		),
		Book: handler.NewBookHandler(
			appbook.NewPublishBookUseCase(bookService),
			appbook.NewListBooksUseCase(bookService),
			appbook.NewGetBookUseCase(bookService),
			appbook.NewManageBookUseCase(bookService),
		),
		Cart: handler.NewCartHandler(appcart.NewService(cartRepo, bookRepo, ledger, engine, tx)),
		Order: handler.NewOrderHandler(
			apporder.NewCreateOrderUseCase(userRepo, cartRepo, bookRepo, orderRepo, paymentRepo,
				ledger, engine, registry, notifier, tx, time.Second),
			apporder.NewUpdateOrderUseCase(orderRepo, paymentRepo, tx),
			apporder.NewCancelOrderUseCase(orderRepo, userRepo, tx),
			apporder.NewQueryService(orderRepo, paymentRepo, userRepo),
		),
		Payment: handler.NewPaymentHandler(
			apppayment.NewExecutePaymentUseCase(orderRepo, paymentRepo, userRepo, registry,
				redis.NewCallbackLock(client, time.Second), notifier, tx),
			apppayment.NewCancelPaymentUseCase(orderRepo, paymentRepo, userRepo, registry,
				redis.NewCallbackLock(client, time.Second), notifier, tx),
		),
	}

	return &testServer{
		engine: router.New(cfg, log, h, middleware.NewAuthMiddleware(jwtManager, sessions)),
		jwt:    jwtManager,
		users:  userRepo,
	}
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) envelope {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

// seedUser 直接落库并签发Token
func (s *testServer) seedUser(t *testing.T, email, role string) (uint, string) {
	t.Helper()
	u := user.NewUser(email, "$2a$10$hash", "Reader")
	u.Role = role
	require.NoError(t, s.users.Create(context.Background(), u))
	pair, err := s.jwt.GenerateToken(jwt.Identity{UserID: u.ID, Email: u.Email, Nickname: u.Nickname, Role: u.Role})
	require.NoError(t, err)
	return u.ID, pair.AccessToken
}

func (s *testServer) publishBook(t *testing.T, staffToken, isbn, price string, stock int) uint {
	t.Helper()
	env := s.do(t, http.MethodPost, "/api/v1/books", staffToken, gin.H{
		"isbn":           isbn,
		"title":          "Sách " + isbn,
		"author":         "Tác giả",
		"publisher":      "NXB Trẻ",
		"original_price": price,
		"stock":          stock,
	})
	require.Equal(t, 0, env.Code, env.Message)

	var detail struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &detail))
	return detail.ID
}

func TestUserHandler(t *testing.T) {
	s := newTestServer(t)

	t.Run("注册登录登出", func(t *testing.T) {
		env := s.do(t, http.MethodPost, "/api/v1/users/register", "", gin.H{
			"email": "reader@example.com", "password": "secret123", "nickname": "Minh",
		})
		require.Equal(t, 0, env.Code, env.Message)

		env = s.do(t, http.MethodPost, "/api/v1/users/login", "", gin.H{
			"email": "reader@example.com", "password": "secret123",
		})
		require.Equal(t, 0, env.Code, env.Message)
		var login appuser.LoginResponse
		require.NoError(t, json.Unmarshal(env.Data, &login))
		assert.Equal(t, user.RoleCustomer, login.User.Role)
		require.NotEmpty(t, login.AccessToken)

		env = s.do(t, http.MethodGet, "/api/v1/cart", login.AccessToken, nil)
		assert.Equal(t, 0, env.Code)

		env = s.do(t, http.MethodPost, "/api/v1/users/logout", login.AccessToken, nil)
		require.Equal(t, 0, env.Code, env.Message)

		env = s.do(t, http.MethodGet, "/api/v1/cart", login.AccessToken, nil)
		assert.Equal(t, apperrors.ErrCodeTokenExpired, env.Code, "登出后Token失效")

		env = s.do(t, http.MethodPost, "/api/v1/users/refresh", "", gin.H{"refresh_token": login.RefreshToken})
		require.Equal(t, 0, env.Code, env.Message)
		var refreshed appuser.RefreshResponse
		require.NoError(t, json.Unmarshal(env.Data, &refreshed))
		env = s.do(t, http.MethodGet, "/api/v1/cart", refreshed.AccessToken, nil)
		assert.Equal(t, 0, env.Code, "刷新得到的新Token可用")
	})

	t.Run("参数校验失败", func(t *testing.T) {
		env := s.do(t, http.MethodPost, "/api/v1/users/register", "", gin.H{"email": "not-an-email"})
		assert.Equal(t, apperrors.ErrCodeInvalidParams, env.Code)
	})

	t.Run("密码错误", func(t *testing.T) {
		env := s.do(t, http.MethodPost, "/api/v1/users/login", "", gin.H{
			"email": "reader@example.com", "password": "wrong1234",
		})
		assert.Equal(t, apperrors.ErrCodeInvalidPassword, env.Code)
	})
}

func TestAuthorization(t *testing.T) {
	s := newTestServer(t)
	_, customer := s.seedUser(t, "c@example.com", user.RoleCustomer)

	t.Run("未登录", func(t *testing.T) {
		env := s.do(t, http.MethodGet, "/api/v1/orders", "", nil)
		assert.Equal(t, apperrors.ErrCodeUnauthorized, env.Code)
	})

	t.Run("顾客不能访问管理接口", func(t *testing.T) {
		env := s.do(t, http.MethodGet, "/api/v1/admin/orders", customer, nil)
		assert.Equal(t, apperrors.ErrCodeForbidden, env.Code)
	})

	t.Run("顾客不能上架图书", func(t *testing.T) {
		env := s.do(t, http.MethodPost, "/api/v1/books", customer, gin.H{"isbn": "9786041000009"})
		assert.Equal(t, apperrors.ErrCodeForbidden, env.Code)
	})
}

func TestBookManagement(t *testing.T) {
	s := newTestServer(t)
	_, owner := s.seedUser(t, "owner@example.com", user.RoleStaff)
	_, other := s.seedUser(t, "other@example.com", user.RoleStaff)
	bookID := s.publishBook(t, owner, "9786041000020", "100000", 5)
	path := fmt.Sprintf("/api/v1/books/%d", bookID)

	t.Run("其他店员无权修改", func(t *testing.T) {
		env := s.do(t, http.MethodPut, path+"/stock", other, gin.H{"stock": 10})
		assert.Equal(t, apperrors.ErrCodeForbidden, env.Code)
	})

	t.Run("调整库存", func(t *testing.T) {
		env := s.do(t, http.MethodPut, path+"/stock", owner, gin.H{"stock": 10})
		require.Equal(t, 0, env.Code, env.Message)
		var detail appbook.BookDetail
		require.NoError(t, json.Unmarshal(env.Data, &detail))
		assert.Equal(t, 10, detail.Stock)
	})

	t.Run("缺少库存字段", func(t *testing.T) {
		env := s.do(t, http.MethodPut, path+"/stock", owner, gin.H{})
		assert.Equal(t, apperrors.ErrCodeInvalidParams, env.Code)
	})

	t.Run("设置折扣价", func(t *testing.T) {
		env := s.do(t, http.MethodPut, path+"/price", owner, gin.H{
			"original_price": "100000", "discount_price": "80000",
		})
		require.Equal(t, 0, env.Code, env.Message)
		var detail appbook.BookDetail
		require.NoError(t, json.Unmarshal(env.Data, &detail))
		assert.True(t, detail.Price.Equal(decimal.NewFromInt(80000)))
	})

	t.Run("下架后查不到", func(t *testing.T) {
		env := s.do(t, http.MethodDelete, path, owner, nil)
		require.Equal(t, 0, env.Code, env.Message)
		env = s.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, apperrors.ErrCodeBookNotFound, env.Code)
	})
}

func TestCartHandler(t *testing.T) {
	s := newTestServer(t)
	_, staff := s.seedUser(t, "staff@example.com", user.RoleStaff)
	_, customer := s.seedUser(t, "c@example.com", user.RoleCustomer)
	bookID := s.publishBook(t, staff, "9786041000001", "100000", 5)

	t.Run("加购并查看合计", func(t *testing.T) {
		env := s.do(t, http.MethodPost, "/api/v1/cart/items", customer, gin.H{"book_id": bookID, "quantity": 2})
		require.Equal(t, 0, env.Code, env.Message)

		var view appcart.View
		require.NoError(t, json.Unmarshal(env.Data, &view))
		require.Len(t, view.Items, 1)
		assert.True(t, decimal.NewFromInt(200000).Equal(view.Total))
		assert.Equal(t, "VND", view.Currency)
	})

	t.Run("超过库存", func(t *testing.T) {
		env := s.do(t, http.MethodPost, "/api/v1/cart/items", customer, gin.H{"book_id": bookID, "quantity": 4})
		assert.Equal(t, apperrors.ErrCodeInsufficientStock, env.Code)
	})

	t.Run("路径与请求体图书ID不一致", func(t *testing.T) {
		path := fmt.Sprintf("/api/v1/cart/items/%d", bookID)
		env := s.do(t, http.MethodPut, path, customer, gin.H{"book_id": bookID + 1, "quantity": 1})
		assert.Equal(t, apperrors.ErrCodeQuantityMismatch, env.Code)
	})

	t.Run("修改数量为0删除该行", func(t *testing.T) {
		path := fmt.Sprintf("/api/v1/cart/items/%d", bookID)
		env := s.do(t, http.MethodPut, path, customer, gin.H{"book_id": bookID, "quantity": 0})
		require.Equal(t, 0, env.Code, env.Message)

		var view appcart.View
		require.NoError(t, json.Unmarshal(env.Data, &view))
		assert.Empty(t, view.Items)
	})

	t.Run("删除不存在的行", func(t *testing.T) {
		env := s.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/cart/items/%d", bookID), customer, nil)
		assert.Equal(t, apperrors.ErrCodeCartItemNotFound, env.Code)
	})

	t.Run("无效的路径参数", func(t *testing.T) {
		env := s.do(t, http.MethodDelete, "/api/v1/cart/items/abc", customer, nil)
		assert.Equal(t, apperrors.ErrCodeInvalidParams, env.Code)
	})
}

func TestOrderHandler(t *testing.T) {
	s := newTestServer(t)
	_, staff := s.seedUser(t, "staff@example.com", user.RoleStaff)
	_, customer := s.seedUser(t, "c@example.com", user.RoleCustomer)
	_, other := s.seedUser(t, "other@example.com", user.RoleCustomer)
	bookID := s.publishBook(t, staff, "9786041000001", "100000", 10)

	env := s.do(t, http.MethodPost, "/api/v1/cart/items", customer, gin.H{"book_id": bookID, "quantity": 2})
	require.Equal(t, 0, env.Code, env.Message)
	var view appcart.View
	require.NoError(t, json.Unmarshal(env.Data, &view))

	env = s.do(t, http.MethodPost, "/api/v1/orders", customer, gin.H{
		"cart_item_ids":  []uint{view.Items[0].ItemID},
		"address":        "12 Lê Lợi",
		"city":           "Hồ Chí Minh",
		"phone":          "0901234567",
		"payment_method": "COD",
	})
	require.Equal(t, 0, env.Code, env.Message)

	var created struct {
		ID      uint            `json:"id"`
		Status  string          `json:"status"`
		Total   decimal.Decimal `json:"total"`
		Payment struct {
			Method string `json:"method"`
			Status string `json:"status"`
		} `json:"payment"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, "PENDING", created.Status)
	assert.True(t, decimal.NewFromInt(200000).Equal(created.Total))
	assert.Equal(t, "COD", created.Payment.Method)
	assert.Equal(t, "PENDING", created.Payment.Status)
	orderPath := fmt.Sprintf("/api/v1/orders/%d", created.ID)

	t.Run("本人查看详情", func(t *testing.T) {
		env := s.do(t, http.MethodGet, orderPath, customer, nil)
		assert.Equal(t, 0, env.Code)
	})

	t.Run("他人不能查看", func(t *testing.T) {
		env := s.do(t, http.MethodGet, orderPath, other, nil)
		assert.Equal(t, apperrors.ErrCodeForbidden, env.Code)
	})

	t.Run("我的订单分页", func(t *testing.T) {
		env := s.do(t, http.MethodGet, "/api/v1/orders?page=1&page_size=10", customer, nil)
		require.Equal(t, 0, env.Code)
		var page struct {
			Total int64 `json:"total"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &page))
		assert.Equal(t, int64(1), page.Total)
	})

	t.Run("店员标记送达后COD支付完成", func(t *testing.T) {
		env := s.do(t, http.MethodPut, fmt.Sprintf("/api/v1/admin/orders/%d", created.ID), staff, gin.H{"status": "DELIVERED"})
		require.Equal(t, 0, env.Code, env.Message)

		var updated struct {
			Status  string `json:"status"`
			Payment struct {
				Status string `json:"status"`
			} `json:"payment"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &updated))
		assert.Equal(t, "DELIVERED", updated.Status)
		assert.Equal(t, "COMPLETED", updated.Payment.Status)
	})

	t.Run("非法状态", func(t *testing.T) {
		env := s.do(t, http.MethodPut, fmt.Sprintf("/api/v1/admin/orders/%d", created.ID), staff, gin.H{"status": "LOST"})
		assert.Equal(t, apperrors.ErrCodeInvalidParams, env.Code)
	})

	t.Run("购物车行已结算不能重复下单", func(t *testing.T) {
		env := s.do(t, http.MethodPost, "/api/v1/orders", customer, gin.H{
			"cart_item_ids":  []uint{view.Items[0].ItemID},
			"address":        "12 Lê Lợi",
			"city":           "Hồ Chí Minh",
			"phone":          "0901234567",
			"payment_method": "COD",
		})
		assert.Equal(t, apperrors.ErrCodeCartItemNotFound, env.Code)
	})
}

func TestPaymentHandler(t *testing.T) {
	s := newTestServer(t)

	t.Run("缺少token", func(t *testing.T) {
		env := s.do(t, http.MethodGet, "/api/v1/payments/paypal/success", "", nil)
		assert.Equal(t, apperrors.ErrCodeInvalidParams, env.Code)
	})

	t.Run("支付记录不存在", func(t *testing.T) {
		env := s.do(t, http.MethodGet, "/api/v1/payments/paypal/cancel?token=UNKNOWN", "", nil)
		assert.Equal(t, apperrors.ErrCodePaymentNotFound, env.Code)
	})
}
