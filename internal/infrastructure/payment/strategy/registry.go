package strategy

import (
	"fmt"

	"github.com/xiebiao/bookstore-checkout/internal/domain/payment"
	"github.com/xiebiao/bookstore-checkout/internal/infrastructure/config"
)

// NewRegistry 注册COD和QR;gw不为nil时注册PayPal
func NewRegistry(cfg config.PaymentConfig, gw PayPalGateway) (*payment.Registry, error) {
	codStatus, err := payment.ParseStatus(cfg.DefaultCODStatus)
	if err != nil {
		return nil, fmt.Errorf("payment.default_cod_status: %w", err)
	}
	qrStatus, err := payment.ParseStatus(cfg.DefaultQRStatus)
	if err != nil {
		return nil, fmt.Errorf("payment.default_qr_status: %w", err)
	}

	strategies := []payment.Strategy{
		NewCOD(codStatus),
		NewQR(cfg.SePay, qrStatus),
	}
	if gw != nil {
		strategies = append(strategies, NewPayPal(gw, cfg.PayPal, cfg.Breaker))
	}
	return payment.NewRegistry(strategies...), nil
}
