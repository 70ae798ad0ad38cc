package service

import (
	"context"
	"time"

	"subpay_backend/internal/model"
	"subpay_backend/pkg/payment"
)

// PlanCatalog is the read-only view of the plan table. Plans are owned by an
// external management process.
type PlanCatalog interface {
	ActivePlan(ctx context.Context, planID uint) (*model.SubscriptionPlan, error)
	PlanByID(ctx context.Context, planID uint) (*model.SubscriptionPlan, error)
	ListActivePlans(ctx context.Context) ([]model.SubscriptionPlan, error)
}

// SubscriptionLedger is the persistence boundary for subscriptions and their
// payment transactions. InTransaction hands the callback a ledger bound to a
// single datastore transaction; everything done through it commits or rolls
// back as one unit.
type SubscriptionLedger interface {
	InTransaction(ctx context.Context, fn func(tx SubscriptionLedger) error) error

	ActiveOrPendingByUser(ctx context.Context, userID uint) (*model.Subscription, error)
	CreateSubscription(ctx context.Context, sub *model.Subscription) error
	SaveSubscription(ctx context.Context, sub *model.Subscription) error
	SubscriptionByID(ctx context.Context, id uint) (*model.Subscription, error)

	CreatePayment(ctx context.Context, pay *model.PaymentTransaction) error
	SavePayment(ctx context.Context, pay *model.PaymentTransaction) error
	PaymentByOrderID(ctx context.Context, orderID string) (*model.PaymentTransaction, error)

	StalePendingSubscriptions(ctx context.Context, cutoff time.Time) ([]model.Subscription, error)
	PendingPaymentsBySubscription(ctx context.Context, subscriptionID uint) ([]model.PaymentTransaction, error)
}

// PaymentGateway creates remote checkout transactions and verifies
// notification signatures. VerifySignature must not touch the network.
type PaymentGateway interface {
	CreateTransaction(ctx context.Context, req payment.TransactionRequest) (*payment.TransactionResponse, error)
	VerifySignature(n *payment.Notification) bool
}

// WebhookRecorder persists the notification audit trail. Recording failures
// never fail the reconciliation itself.
type WebhookRecorder interface {
	Record(ctx context.Context, event *model.WebhookEvent) error
}
