// Package sepay 生成SePay转账二维码图片地址
package sepay

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"
)

const qrBaseURL = "https://qr.sepay.vn/img"

// BuildQRURL 参数顺序固定为bank、acc、template、amount、des
// 金额取整到元,描述按RFC 3986编码(空格为%20)
func BuildQRURL(bank, account, template string, amount decimal.Decimal, description string) string {
	return fmt.Sprintf("%s?bank=%s&acc=%s&template=%s&amount=%s&des=%s",
		qrBaseURL,
		escape(bank),
		escape(account),
		escape(template),
		amount.Round(0).String(),
		escape(description),
	)
}

// Description 默认转账备注
func Description(orderNo string) string {
	return "Thanh toan don hang #" + orderNo
}

func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
