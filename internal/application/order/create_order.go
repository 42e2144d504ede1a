package order

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/xiebiao/bookstore-checkout/internal/application/notify"
	"github.com/xiebiao/bookstore-checkout/internal/domain/book"
	"github.com/xiebiao/bookstore-checkout/internal/domain/cart"
	"github.com/xiebiao/bookstore-checkout/internal/domain/inventory"
	"github.com/xiebiao/bookstore-checkout/internal/domain/notification"
	"github.com/xiebiao/bookstore-checkout/internal/domain/order"
	"github.com/xiebiao/bookstore-checkout/internal/domain/payment"
	"github.com/xiebiao/bookstore-checkout/internal/domain/pricing"
	"github.com/xiebiao/bookstore-checkout/internal/domain/user"
	apperrors "github.com/xiebiao/bookstore-checkout/pkg/errors"
	"github.com/xiebiao/bookstore-checkout/pkg/logger"
	"github.com/xiebiao/bookstore-checkout/pkg/metrics"
	"github.com/xiebiao/bookstore-checkout/pkg/saga"
	"github.com/xiebiao/bookstore-checkout/pkg/tracing"
)

// TxManager 事务边界,由mysql.TxManager实现
type TxManager interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// CreateOrderUseCase 购物车结算下单
//
// 整个流程在一个事务里:
//  1. 校验收货信息和支付方式
//  2. 读取用户、购物车和选中的购物车行
//  3. 逐行锁定图书,快照书名和售价,累加销量,删除购物车行
//  4. 计算总价并换算到支付方式的结算币种
//  5. 写入订单和明细
//  6. saga: 创建支付(PayPal会调用远程接口) -> 写入支付记录
//
// saga任一步失败时已完成的步骤按逆序补偿,事务回滚;
// saga成功但事务提交失败时,撤销PayPal支付意图。
type CreateOrderUseCase struct {
	users     user.Repository
	carts     cart.Repository
	books     book.Repository
	orders    order.Repository
	payments  payment.Repository
	ledger    *inventory.Ledger
	pricing   *pricing.Engine
	registry  *payment.Registry
	notifier  notification.Notifier
	txManager TxManager
	// sagaTimeout 限制支付创建步骤的总时长
	sagaTimeout time.Duration
}

// NewCreateOrderUseCase 创建下单用例
func NewCreateOrderUseCase(
	users user.Repository,
	carts cart.Repository,
	books book.Repository,
	orders order.Repository,
	payments payment.Repository,
	ledger *inventory.Ledger,
	engine *pricing.Engine,
	registry *payment.Registry,
	notifier notification.Notifier,
	txManager TxManager,
	sagaTimeout time.Duration,
) *CreateOrderUseCase {
	return &CreateOrderUseCase{
		users:       users,
		carts:       carts,
		books:       books,
		orders:      orders,
		payments:    payments,
		ledger:      ledger,
		pricing:     engine,
		registry:    registry,
		notifier:    notifier,
		txManager:   txManager,
		sagaTimeout: sagaTimeout,
	}
}

// CreateOrderRequest 下单请求
type CreateOrderRequest struct {
	UserID      uint
	CartItemIDs []uint
	Shipping    order.Shipping
	Method      string
	// PaymentStatus 可选的初始支付状态(COD/QR),空表示使用配置的默认值
	PaymentStatus string
}

// CreateOrderResponse 下单结果
type CreateOrderResponse struct {
	Order   *order.Order
	Payment *payment.Payment
	// RedirectURL PayPal授权链接或SePay二维码,COD为空
	RedirectURL string
}

// Execute 执行下单
func (uc *CreateOrderUseCase) Execute(ctx context.Context, req CreateOrderRequest) (resp *CreateOrderResponse, err error) {
	start := time.Now()
	method := "unknown"
	ctx, span := tracing.StartSpan(ctx, "order.create")
	defer func() {
		tracing.EndSpan(span, err)
		metrics.RecordOrderCreated(method, apperrors.CodeOf(err), time.Since(start))
	}()

	strategy, requested, err := uc.validate(req)
	if err != nil {
		return nil, err
	}
	method = string(strategy.Method())

	var (
		o        *order.Order
		p        *payment.Payment
		u        *user.User
		paySteps *saga.Saga
	)
	err = uc.txManager.Transaction(ctx, func(ctx context.Context) error {
		var err error
		if u, err = uc.users.FindByID(ctx, req.UserID); err != nil {
			return err
		}
		if o, err = uc.buildOrder(ctx, req, strategy); err != nil {
			return err
		}
		if err = uc.orders.Create(ctx, o); err != nil {
			return err
		}

		paySteps, p = uc.paymentSaga(o, strategy, requested)
		return paySteps.Execute(ctx)
	})
	if err != nil {
		// 事务提交失败时saga的已完成步骤还在,撤销远程副作用
		if paySteps != nil && len(paySteps.Completed()) > 0 {
			if cerr := paySteps.Compensate(ctx); cerr != nil {
				logger.FromContext(ctx).Error("下单失败后撤销支付失败", zap.String("order_no", o.OrderNo), zap.Error(cerr))
			}
		}
		return nil, err
	}

	logger.FromContext(ctx).Info("订单已创建",
		zap.String("order_no", o.OrderNo),
		zap.Uint("user_id", o.UserID),
		zap.String("method", string(p.Method)),
		zap.String("total", o.Total.String()),
		zap.String("currency", o.Currency),
	)

	if strategy.NotifyOnCreate() {
		summary := notify.Summary(o, p, u.Nickname)
		notify.BestEffort(ctx, uc.notifier, notification.KindOrderCreated, u.Email,
			func() (*notification.Email, error) { return notification.OrderCreatedEmail(summary) },
			zap.String("order_no", o.OrderNo), zap.Uint("user_id", u.ID))
	}

	return &CreateOrderResponse{Order: o, Payment: p, RedirectURL: p.RedirectURL}, nil
}

func (uc *CreateOrderUseCase) validate(req CreateOrderRequest) (payment.Strategy, payment.Status, error) {
	if len(req.CartItemIDs) == 0 {
		return nil, "", order.ErrInvalidOrderItems
	}
	if err := req.Shipping.Validate(); err != nil {
		return nil, "", err
	}
	method, err := payment.ParseMethod(req.Method)
	if err != nil {
		return nil, "", err
	}
	requested, err := payment.ParseStatus(req.PaymentStatus)
	if err != nil {
		return nil, "", err
	}
	strategy, err := uc.registry.Select(method)
	if err != nil {
		return nil, "", err
	}
	return strategy, requested, nil
}

// buildOrder 消费购物车行并生成订单(尚未落库)
func (uc *CreateOrderUseCase) buildOrder(ctx context.Context, req CreateOrderRequest, strategy payment.Strategy) (*order.Order, error) {
	c, err := uc.carts.FindByUserID(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	ids := dedup(req.CartItemIDs)
	lines, err := uc.carts.FindItemsByIDs(ctx, c.ID, ids)
	if err != nil {
		return nil, err
	}
	if len(lines) != len(ids) {
		return nil, cart.ErrCartItemNotFound
	}

	items := make([]order.OrderItem, 0, len(lines))
	priced := make([]pricing.Line, 0, len(lines))
	for _, line := range lines {
		b, err := uc.books.LockByID(ctx, line.BookID)
		if err != nil {
			return nil, err
		}
		if !b.IsAvailable() {
			return nil, book.ErrBookNotFound
		}

		price := b.FinalPrice()
		items = append(items, order.OrderItem{
			BookID:    b.ID,
			Title:     b.Title,
			Quantity:  line.Quantity,
			UnitPrice: price,
		})
		priced = append(priced, pricing.Line{UnitPrice: price, Quantity: line.Quantity})

		if err := uc.ledger.Commit(ctx, b.ID, line.Quantity); err != nil {
			return nil, err
		}
	}
	if err := uc.carts.DeleteItemsByIDs(ctx, c.ID, ids); err != nil {
		return nil, err
	}

	currency := strategy.SettlementCurrency()
	if currency == "" {
		currency = uc.pricing.CatalogCurrency()
	}
	total, err := uc.pricing.Settle(uc.pricing.Total(priced), currency)
	if err != nil {
		return nil, err
	}

	return order.NewOrder(order.GenerateOrderNo(), req.UserID, items, total, currency, strategy.InitialOrderStatus(), req.Shipping)
}

// paymentSaga 返回的*payment.Payment在saga执行成功后才有值
func (uc *CreateOrderUseCase) paymentSaga(o *order.Order, strategy payment.Strategy, requested payment.Status) (*saga.Saga, *payment.Payment) {
	var (
		draft *payment.Draft
		p     = &payment.Payment{}
	)
	s := saga.NewSaga(uc.sagaTimeout).
		AddStep("create_payment",
			func(ctx context.Context) error {
				var err error
				draft, err = strategy.CreatePayment(ctx, payment.Intent{
					OrderID:         o.ID,
					OrderNo:         o.OrderNo,
					Amount:          o.Total,
					Currency:        o.Currency,
					RequestedStatus: requested,
				})
				return err
			},
			func(ctx context.Context) error {
				if draft == nil {
					return nil
				}
				return strategy.Void(ctx, draft.TransactionID)
			}).
		AddStep("save_payment",
			func(ctx context.Context) error {
				*p = *payment.NewPayment(o.ID, o.Total, o.Currency, strategy.Method(), draft)
				return uc.payments.Create(ctx, p)
			}, nil)
	return s, p
}

func dedup(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
