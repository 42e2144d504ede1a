package notification

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/shopspring/decimal"
)

// OrderLine 邮件中的订单明细
type OrderLine struct {
	Title     string
	Quantity  int
	UnitPrice decimal.Decimal
}

// OrderSummary 订单邮件的公共数据
type OrderSummary struct {
	Nickname    string
	OrderNo     string
	Total       decimal.Decimal
	Currency    string
	Method      string
	Lines       []OrderLine
	RedirectURL string // 二维码图片或支付链接
	Address     string
	City        string
	Phone       string
}

var templates = template.Must(template.New("email").Funcs(template.FuncMap{
	"money": func(d decimal.Decimal, currency string) string {
		if currency == "VND" {
			return d.StringFixed(0) + " ₫"
		}
		return d.StringFixed(2) + " " + currency
	},
}).Parse(`
{{define "order_created"}}<h2>Xin chào {{.Nickname}},</h2>
<p>Đơn hàng <b>#{{.OrderNo}}</b> đã được tạo thành công.</p>
<table border="1" cellpadding="6" cellspacing="0">
<tr><th>Sách</th><th>Số lượng</th><th>Đơn giá</th></tr>
{{range .Lines}}<tr><td>{{.Title}}</td><td>{{.Quantity}}</td><td>{{money .UnitPrice "VND"}}</td></tr>
{{end}}</table>
<p>Tổng cộng: <b>{{money .Total .Currency}}</b> ({{.Method}})</p>
<p>Giao đến: {{.Address}}, {{.City}} - {{.Phone}}</p>
{{if .RedirectURL}}<p><img src="{{.RedirectURL}}" alt="QR thanh toán"/></p>{{end}}{{end}}

{{define "payment_success"}}<h2>Xin chào {{.Nickname}},</h2>
<p>Thanh toán cho đơn hàng <b>#{{.OrderNo}}</b> đã thành công.</p>
<p>Số tiền: <b>{{money .Total .Currency}}</b></p>
<p>Chúng tôi sẽ sớm giao hàng đến {{.Address}}, {{.City}}.</p>{{end}}

{{define "payment_cancelled"}}<h2>Xin chào {{.Nickname}},</h2>
<p>Thanh toán cho đơn hàng <b>#{{.OrderNo}}</b> đã bị hủy.</p>
<p>Nếu đây là nhầm lẫn, vui lòng đặt hàng lại.</p>{{end}}

{{define "activation"}}<h2>Chào mừng {{.Nickname}}!</h2>
<p>Cảm ơn bạn đã đăng ký tài khoản tại Bookstore.</p>
<p>Vui lòng kích hoạt tài khoản: <a href="{{.Link}}">{{.Link}}</a></p>{{end}}
`))

func render(kind Kind, subject string, data interface{}) (*Email, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, string(kind), data); err != nil {
		return nil, fmt.Errorf("渲染邮件模板%s失败: %w", kind, err)
	}
	return &Email{Kind: kind, Subject: subject, HTML: buf.String()}, nil
}

// OrderCreatedEmail 下单确认
func OrderCreatedEmail(s OrderSummary) (*Email, error) {
	return render(KindOrderCreated, fmt.Sprintf("Xác nhận đơn hàng #%s", s.OrderNo), s)
}

// PaymentSuccessEmail 在线支付成功
func PaymentSuccessEmail(s OrderSummary) (*Email, error) {
	return render(KindPaymentSuccess, fmt.Sprintf("Thanh toán thành công đơn hàng #%s", s.OrderNo), s)
}

// PaymentCancelledEmail 在线支付被取消
func PaymentCancelledEmail(s OrderSummary) (*Email, error) {
	return render(KindPaymentCancelled, fmt.Sprintf("Đơn hàng #%s đã bị hủy thanh toán", s.OrderNo), s)
}

// ActivationEmail 注册激活
func ActivationEmail(nickname, link string) (*Email, error) {
	return render(KindActivation, "Kích hoạt tài khoản Bookstore", struct {
		Nickname string
		Link     string
	}{nickname, link})
}
