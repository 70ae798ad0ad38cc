package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"subpay_backend/internal/model"
	"subpay_backend/internal/service"
	"subpay_backend/pkg/apperror"
)

// Ledger composes the subscription and payment repositories behind the
// service.SubscriptionLedger port. InTransaction rebinds both repositories to
// one gorm transaction so the webhook's payment+subscription writes commit as
// a unit.
type Ledger struct {
	db            *gorm.DB
	subscriptions *SubscriptionRepository
	payments      *PaymentRepository
}

func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{
		db:            db,
		subscriptions: NewSubscriptionRepository(db),
		payments:      NewPaymentRepository(db),
	}
}

func (l *Ledger) InTransaction(ctx context.Context, fn func(tx service.SubscriptionLedger) error) error {
	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewLedger(tx))
	})
}

func (l *Ledger) ActiveOrPendingByUser(ctx context.Context, userID uint) (*model.Subscription, error) {
	return l.subscriptions.ActiveOrPendingByUser(ctx, userID)
}

func (l *Ledger) CreateSubscription(ctx context.Context, sub *model.Subscription) error {
	return l.subscriptions.Create(ctx, sub)
}

func (l *Ledger) SaveSubscription(ctx context.Context, sub *model.Subscription) error {
	return l.subscriptions.Save(ctx, sub)
}

func (l *Ledger) SubscriptionByID(ctx context.Context, id uint) (*model.Subscription, error) {
	return l.subscriptions.ByID(ctx, id)
}

func (l *Ledger) CreatePayment(ctx context.Context, pay *model.PaymentTransaction) error {
	return l.payments.Create(ctx, pay)
}

func (l *Ledger) SavePayment(ctx context.Context, pay *model.PaymentTransaction) error {
	return l.payments.Save(ctx, pay)
}

func (l *Ledger) PaymentByOrderID(ctx context.Context, orderID string) (*model.PaymentTransaction, error) {
	return l.payments.ByOrderID(ctx, orderID)
}

// StalePendingSubscriptions lists subscriptions still PENDING from before
// cutoff; the sweep decides what happens to them.
func (l *Ledger) StalePendingSubscriptions(ctx context.Context, cutoff time.Time) ([]model.Subscription, error) {
	var stale []model.Subscription
	err := l.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", model.SubscriptionPending, cutoff).
		Find(&stale).Error
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, "could not fetch stale subscriptions", err)
	}
	return stale, nil
}

func (l *Ledger) PendingPaymentsBySubscription(ctx context.Context, subscriptionID uint) ([]model.PaymentTransaction, error) {
	var pays []model.PaymentTransaction
	err := l.db.WithContext(ctx).
		Where("subscription_id = ? AND status = ?", subscriptionID, model.PaymentPending).
		Find(&pays).Error
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, "could not fetch pending payments", err)
	}
	return pays, nil
}
