package payment_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apppayment "github.com/xiebiao/bookstore-checkout/internal/application/payment"
	"github.com/xiebiao/bookstore-checkout/internal/domain/order"
	"github.com/xiebiao/bookstore-checkout/internal/domain/payment"
	"github.com/xiebiao/bookstore-checkout/internal/domain/user"
	"github.com/xiebiao/bookstore-checkout/internal/infrastructure/config"
	"github.com/xiebiao/bookstore-checkout/internal/infrastructure/payment/paypal"
	"github.com/xiebiao/bookstore-checkout/internal/infrastructure/payment/strategy"
	"github.com/xiebiao/bookstore-checkout/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/bookstore-checkout/internal/infrastructure/persistence/mysql/mysqltest"
	"github.com/xiebiao/bookstore-checkout/internal/infrastructure/persistence/redis"
	apperrors "github.com/xiebiao/bookstore-checkout/pkg/errors"
)

// fakeGateway 记录扣款次数,可以阻塞在Execute中模拟慢回调
type fakeGateway struct {
	mu       sync.Mutex
	captured []string
	err      error
	entered  chan struct{}
	block    chan struct{}
}

func (g *fakeGateway) CreateIntent(context.Context, decimal.Decimal, string, string, string, string) (*paypal.Intent, error) {
	return nil, errors.New("not used")
}

func (g *fakeGateway) Execute(_ context.Context, transactionID, _ string) error {
	if g.block != nil {
		close(g.entered)
		<-g.block
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return g.err
	}
	g.captured = append(g.captured, transactionID)
	return nil
}

func (g *fakeGateway) Cancel(context.Context, string) error { return nil }

func (g *fakeGateway) captures() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.captured)
}

type sentMail struct{ to, subject string }

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentMail
}

func (n *recordingNotifier) Send(_ context.Context, to, subject, _ string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentMail{to, subject})
	return nil
}

type fixture struct {
	execute  *apppayment.ExecutePaymentUseCase
	cancel   *apppayment.CancelPaymentUseCase
	users    user.Repository
	orders   order.Repository
	payments payment.Repository
	gateway  *fakeGateway
	notifier *recordingNotifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := mysqltest.NewDB(t)
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	f := &fixture{
		users:    mysql.NewUserRepository(db),
		orders:   mysql.NewOrderRepository(db),
		payments: mysql.NewPaymentRepository(db),
		gateway:  &fakeGateway{},
		notifier: &recordingNotifier{},
	}
	registry := payment.NewRegistry(
		strategy.NewCOD(""),
		strategy.NewPayPal(f.gateway, config.PayPalConfig{Mode: "sandbox", Currency: "USD", Timeout: time.Second}, config.BreakerConfig{}),
	)
	lock := redis.NewCallbackLock(client, time.Minute)
	tx := mysql.NewTxManager(db)

	f.execute = apppayment.NewExecutePaymentUseCase(f.orders, f.payments, f.users, registry, lock, f.notifier, tx)
	f.cancel = apppayment.NewCancelPaymentUseCase(f.orders, f.payments, f.users, registry, lock, f.notifier, tx)
	return f
}

// seedOrder 直接落库一个待支付订单
func (f *fixture) seedOrder(t *testing.T, method payment.Method, status payment.Status, txID string) (*order.Order, *user.User) {
	t.Helper()
	ctx := context.Background()
	u := user.NewUser(txID+"@example.com", "$2a$10$hash", "Reader")
	require.NoError(t, f.users.Create(ctx, u))

	o, err := order.NewOrder(order.GenerateOrderNo(), u.ID,
		[]order.OrderItem{{BookID: 1, Title: "Dế Mèn phiêu lưu ký", Quantity: 1, UnitPrice: decimal.NewFromInt(100000)}},
		decimal.NewFromInt(4), "USD", order.StatusPending,
		order.Shipping{Address: "1 Trần Hưng Đạo", City: "Đà Nẵng", Phone: "0912345678"})
	require.NoError(t, err)
	require.NoError(t, f.orders.Create(ctx, o))

	p := payment.NewPayment(o.ID, o.Total, o.Currency, method, &payment.Draft{Status: status, TransactionID: txID})
	require.NoError(t, f.payments.Create(ctx, p))
	return o, u
}

func TestExecutePayment(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	o, u := f.seedOrder(t, payment.MethodPayPal, payment.StatusFailed, "PP-1")

	res, err := f.execute.Execute(ctx, "PP-1", "PAYER-1")
	require.NoError(t, err)
	assert.False(t, res.Replayed)
	assert.Equal(t, payment.StatusCompleted, res.Payment.Status)
	assert.Equal(t, order.StatusProcessing, res.Order.Status)

	stored, err := f.orders.FindByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusProcessing, stored.Status)

	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, u.Email, f.notifier.sent[0].to)

	t.Run("重复回调不再扣款", func(t *testing.T) {
		res, err := f.execute.Execute(ctx, "PP-1", "PAYER-1")
		require.NoError(t, err)
		assert.True(t, res.Replayed)
		assert.Equal(t, 1, f.gateway.captures())
		assert.Len(t, f.notifier.sent, 1)
	})

	t.Run("已完成的支付不能取消", func(t *testing.T) {
		_, err := f.cancel.Execute(ctx, "PP-1")
		assert.ErrorIs(t, err, payment.ErrInvalidPaymentStatus)
	})

	t.Run("交易号不存在", func(t *testing.T) {
		_, err := f.execute.Execute(ctx, "PP-404", "PAYER-1")
		assert.ErrorIs(t, err, payment.ErrPaymentNotFound)
	})
}

func TestExecutePayment_Concurrent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedOrder(t, payment.MethodPayPal, payment.StatusFailed, "PP-C")
	f.gateway.entered = make(chan struct{})
	f.gateway.block = make(chan struct{})

	first := make(chan error, 1)
	go func() {
		_, err := f.execute.Execute(ctx, "PP-C", "PAYER-1")
		first <- err
	}()

	// 第一个回调拿到锁后阻塞在扣款上
	select {
	case <-f.gateway.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("第一个回调没有开始扣款")
	}
	_, err := f.execute.Execute(ctx, "PP-C", "PAYER-1")
	assert.ErrorIs(t, err, apperrors.ErrCallbackInProgress)

	close(f.gateway.block)
	require.NoError(t, <-first)
	assert.Equal(t, 1, f.gateway.captures())
}

func TestExecutePayment_ProviderFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	o, _ := f.seedOrder(t, payment.MethodPayPal, payment.StatusFailed, "PP-F")
	f.gateway.err = errors.New("connection reset")

	_, err := f.execute.Execute(ctx, "PP-F", "PAYER-1")
	assert.ErrorIs(t, err, apperrors.ErrProviderError)

	p, err := f.payments.FindByOrderID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, payment.StatusFailed, p.Status, "扣款失败不改状态")

	t.Run("锁已释放,可以重试", func(t *testing.T) {
		f.gateway.err = nil
		res, err := f.execute.Execute(ctx, "PP-F", "PAYER-1")
		require.NoError(t, err)
		assert.Equal(t, payment.StatusCompleted, res.Payment.Status)
	})
}

func TestExecutePayment_NotSupported(t *testing.T) {
	f := newFixture(t)
	f.seedOrder(t, payment.MethodCOD, payment.StatusPending, "COD-1")

	_, err := f.execute.Execute(context.Background(), "COD-1", "PAYER-1")
	assert.ErrorIs(t, err, payment.ErrEventNotSupported)
	assert.Zero(t, f.gateway.captures())
}

func TestCancelPayment(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	o, _ := f.seedOrder(t, payment.MethodPayPal, payment.StatusFailed, "PP-X")

	res, err := f.cancel.Execute(ctx, "PP-X")
	require.NoError(t, err)
	assert.Equal(t, payment.StatusFailed, res.Payment.Status)
	assert.Equal(t, order.StatusFailed, res.Order.Status)

	stored, err := f.orders.FindByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusFailed, stored.Status)

	require.Len(t, f.notifier.sent, 1)
	assert.Contains(t, f.notifier.sent[0].subject, o.OrderNo)
	assert.Zero(t, f.gateway.captures())
}
