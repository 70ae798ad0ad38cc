package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"subpay_backend/internal/model"
	"subpay_backend/pkg/apperror"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(ctx context.Context, pay *model.PaymentTransaction) error {
	err := r.db.WithContext(ctx).Create(pay).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperror.New(apperror.KindConflict, "order id already exists")
	}
	if err != nil {
		return apperror.Wrap(apperror.KindInternal, "could not create payment", err)
	}
	return nil
}

func (r *PaymentRepository) Save(ctx context.Context, pay *model.PaymentTransaction) error {
	if err := r.db.WithContext(ctx).Save(pay).Error; err != nil {
		return apperror.Wrap(apperror.KindInternal, "could not update payment", err)
	}
	return nil
}

// ByOrderID is the webhook lookup path: notifications carry only the gateway
// order id.
func (r *PaymentRepository) ByOrderID(ctx context.Context, orderID string) (*model.PaymentTransaction, error) {
	var pay model.PaymentTransaction
	err := r.db.WithContext(ctx).
		Where("external_order_id = ?", orderID).
		First(&pay).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.New(apperror.KindNotFound, "payment not found for order")
	}
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, "could not fetch payment", err)
	}
	return &pay, nil
}
