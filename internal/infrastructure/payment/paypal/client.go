// Package paypal PayPal Orders v2适配器
//
// 下单时创建CAPTURE意图并返回approve链接,买家授权后回调Execute完成扣款。
// 所有错误都包装为ErrProviderError。
package paypal

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"

	paypalsdk "github.com/plutov/paypal/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/xiebiao/bookstore-checkout/internal/infrastructure/config"
	apperrors "github.com/xiebiao/bookstore-checkout/pkg/errors"
	"github.com/xiebiao/bookstore-checkout/pkg/logger"
)

// Intent 创建结果
type Intent struct {
	TransactionID string // PayPal订单ID
	ApprovalURL   string
}

// Client 基于plutov/paypal的适配器,并发安全
type Client struct {
	sdk *paypalsdk.Client

	mu     sync.Mutex
	authed bool
}

// New mode为sandbox或live
func New(cfg config.PayPalConfig) (*Client, error) {
	base := paypalsdk.APIBaseSandBox
	if cfg.Mode == "live" {
		base = paypalsdk.APIBaseLive
	}
	return newClient(base, cfg)
}

func newClient(base string, cfg config.PayPalConfig) (*Client, error) {
	sdk, err := paypalsdk.NewClient(cfg.ClientID, cfg.Secret, base)
	if err != nil {
		return nil, fmt.Errorf("创建PayPal客户端失败: %w", err)
	}
	sdk.SetHTTPClient(&http.Client{Timeout: cfg.Timeout})
	return &Client{sdk: sdk}, nil
}

// ensureToken 首次调用时获取access token,之后由SDK在过期前自动刷新
func (c *Client) ensureToken(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.authed {
		return nil
	}
	if _, err := c.sdk.GetAccessToken(ctx); err != nil {
		return err
	}
	c.authed = true
	return nil
}

// CreateIntent 创建PayPal订单(intent=CAPTURE)
func (c *Client) CreateIntent(ctx context.Context, amount decimal.Decimal, currency, description, cancelURL, returnURL string) (*Intent, error) {
	if err := c.ensureToken(ctx); err != nil {
		return nil, apperrors.ErrProviderError.WithCause(fmt.Errorf("paypal auth: %w", err))
	}

	units := []paypalsdk.PurchaseUnitRequest{{
		Amount: &paypalsdk.PurchaseUnitAmount{
			Currency: strings.ToUpper(currency),
			Value:    amount.StringFixed(2),
		},
		Description: description,
	}}
	appCtx := &paypalsdk.ApplicationContext{
		ReturnURL: returnURL,
		CancelURL: cancelURL,
	}

	o, err := c.sdk.CreateOrder(ctx, paypalsdk.OrderIntentCapture, units, nil, appCtx)
	if err != nil {
		return nil, apperrors.ErrProviderError.WithCause(fmt.Errorf("paypal create order: %w", err))
	}

	for _, link := range o.Links {
		if strings.EqualFold(link.Rel, "approve") || strings.EqualFold(link.Rel, "payer-action") {
			return &Intent{TransactionID: o.ID, ApprovalURL: link.Href}, nil
		}
	}
	return nil, apperrors.ErrProviderError.WithCause(fmt.Errorf("paypal order %s: approval url not found", o.ID))
}

// Execute 扣款,PayPal返回的状态不是COMPLETED时视为失败
// payerID只用于日志,Orders v2的capture不需要它
func (c *Client) Execute(ctx context.Context, transactionID, payerID string) error {
	if err := c.ensureToken(ctx); err != nil {
		return apperrors.ErrProviderError.WithCause(fmt.Errorf("paypal auth: %w", err))
	}

	resp, err := c.sdk.CaptureOrder(ctx, transactionID, paypalsdk.CaptureOrderRequest{})
	if err != nil {
		return apperrors.ErrProviderError.WithCause(fmt.Errorf("paypal capture %s: %w", transactionID, err))
	}
	if resp.Status != "COMPLETED" {
		return apperrors.ErrProviderError.WithCause(fmt.Errorf("paypal capture %s: status %s", transactionID, resp.Status))
	}

	logger.FromContext(ctx).Info("PayPal扣款成功",
		zap.String("transaction_id", transactionID),
		zap.String("payer_id", payerID),
	)
	return nil
}

// Cancel 未授权的PayPal订单会自动过期,这里只记录日志
func (c *Client) Cancel(ctx context.Context, transactionID string) error {
	logger.FromContext(ctx).Warn("放弃PayPal订单,等待其自动过期", zap.String("transaction_id", transactionID))
	return nil
}
