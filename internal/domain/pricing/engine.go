// Package pricing 订单金额计算
//
// 所有金额使用decimal精确计算;只有在结算币种与目录币种不同时,
// 才按汇率换算并四舍五入(half-up)到2位小数,每个订单只换算一次。
package pricing

import (
	"strings"

	"github.com/shopspring/decimal"

	apperrors "github.com/xiebiao/bookstore-checkout/pkg/errors"
)

// ErrUnknownCurrency 没有配置汇率的币种
var ErrUnknownCurrency = apperrors.New(apperrors.ErrCodeInvalidParams, "不支持的结算币种")

// settlementPlaces 外币结算保留的小数位
const settlementPlaces = 2

// Line 一条计价明细
type Line struct {
	UnitPrice decimal.Decimal
	Quantity  int
}

// Engine 计价引擎
type Engine struct {
	catalogCurrency string
	// rates 1单位外币折合多少目录币种,如 USD: 25000 表示 1 USD = 25000 VND
	rates map[string]decimal.Decimal
}

// NewEngine rates的key不区分大小写
func NewEngine(catalogCurrency string, rates map[string]decimal.Decimal) *Engine {
	normalized := make(map[string]decimal.Decimal, len(rates))
	for k, v := range rates {
		normalized[strings.ToUpper(k)] = v
	}
	return &Engine{
		catalogCurrency: strings.ToUpper(catalogCurrency),
		rates:           normalized,
	}
}

// CatalogCurrency 目录币种
func (e *Engine) CatalogCurrency() string {
	return e.catalogCurrency
}

// LineAmount 单价 × 数量
func (e *Engine) LineAmount(unitPrice decimal.Decimal, qty int) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(qty)))
}

// Total 所有明细金额之和
func (e *Engine) Total(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(e.LineAmount(l.UnitPrice, l.Quantity))
	}
	return total
}

// Settle 把目录币种金额换算成结算币种
// 币种相同时原样返回;否则 total / rate,half-up保留2位
func (e *Engine) Settle(total decimal.Decimal, currency string) (decimal.Decimal, error) {
	currency = strings.ToUpper(currency)
	if currency == "" || currency == e.catalogCurrency {
		return total, nil
	}

	rate, ok := e.rates[currency]
	if !ok || !rate.IsPositive() {
		return decimal.Zero, ErrUnknownCurrency.WithMessage("不支持的结算币种: %s", currency)
	}
	// DivRound按精确商half-up,只舍入一次
	return total.DivRound(rate, settlementPlaces), nil
}
