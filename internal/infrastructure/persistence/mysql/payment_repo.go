package mysql

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/bookstore-checkout/internal/domain/payment"
	apperrors "github.com/xiebiao/bookstore-checkout/pkg/errors"
)

// paymentRepository 支付仓储实现
type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository 创建支付仓储
func NewPaymentRepository(db *gorm.DB) payment.Repository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	model := &PaymentModel{
		OrderID:       p.OrderID,
		Amount:        p.Amount,
		Currency:      p.Currency,
		Method:        string(p.Method),
		Status:        string(p.Status),
		TransactionID: p.TransactionID,
		RedirectURL:   p.RedirectURL,
	}
	if err := dbFrom(ctx, r.db).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return apperrors.ErrDuplicateEntry.WithCause(err)
		}
		return apperrors.Wrap(err, "创建支付记录失败")
	}

	p.ID = model.ID
	p.CreatedAt = model.CreatedAt
	p.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *paymentRepository) FindByOrderID(ctx context.Context, orderID uint) (*payment.Payment, error) {
	return r.first(dbFrom(ctx, r.db).Where("order_id = ?", orderID), "查询支付记录失败")
}

func (r *paymentRepository) FindByTransactionID(ctx context.Context, transactionID string) (*payment.Payment, error) {
	return r.first(dbFrom(ctx, r.db).Where("transaction_id = ?", transactionID), "查询支付记录失败")
}

func (r *paymentRepository) LockByOrderID(ctx context.Context, orderID uint) (*payment.Payment, error) {
	query := dbFrom(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}).Where("order_id = ?", orderID)
	return r.first(query, "锁定支付记录失败")
}

func (r *paymentRepository) Update(ctx context.Context, p *payment.Payment) error {
	err := dbFrom(ctx, r.db).Model(&PaymentModel{ID: p.ID}).Update("status", string(p.Status)).Error
	if err != nil {
		return apperrors.Wrap(err, "更新支付记录失败")
	}
	return nil
}

func (r *paymentRepository) first(query *gorm.DB, msg string) (*payment.Payment, error) {
	var m PaymentModel
	if err := query.First(&m).Error; err != nil {
		if isNotFound(err) {
			return nil, payment.ErrPaymentNotFound
		}
		return nil, apperrors.Wrap(err, msg)
	}
	return &payment.Payment{
		ID:            m.ID,
		OrderID:       m.OrderID,
		Amount:        m.Amount,
		Currency:      m.Currency,
		Method:        payment.Method(m.Method),
		Status:        payment.Status(m.Status),
		TransactionID: m.TransactionID,
		RedirectURL:   m.RedirectURL,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}, nil
}
