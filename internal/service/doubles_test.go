package service

import (
	"context"
	"time"

	"subpay_backend/internal/model"
	"subpay_backend/pkg/apperror"
	"subpay_backend/pkg/payment"
)

// In-memory doubles for the ports. The ledger copies aggregates on the way
// in and out so state only changes through Create/Save, like a real
// datastore.

type fakeCatalog struct {
	plans map[uint]model.SubscriptionPlan
}

func newFakeCatalog(plans ...model.SubscriptionPlan) *fakeCatalog {
	c := &fakeCatalog{plans: make(map[uint]model.SubscriptionPlan)}
	for _, p := range plans {
		c.plans[p.ID] = p
	}
	return c
}

func (c *fakeCatalog) ActivePlan(_ context.Context, planID uint) (*model.SubscriptionPlan, error) {
	plan, ok := c.plans[planID]
	if !ok || !plan.IsActive {
		return nil, apperror.New(apperror.KindNotFound, "subscription plan not found")
	}
	return &plan, nil
}

func (c *fakeCatalog) PlanByID(_ context.Context, planID uint) (*model.SubscriptionPlan, error) {
	plan, ok := c.plans[planID]
	if !ok {
		return nil, apperror.New(apperror.KindNotFound, "subscription plan not found")
	}
	return &plan, nil
}

func (c *fakeCatalog) ListActivePlans(_ context.Context) ([]model.SubscriptionPlan, error) {
	var out []model.SubscriptionPlan
	for _, p := range c.plans {
		if p.IsActive {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeLedger struct {
	subs map[uint]model.Subscription
	pays map[uint]model.PaymentTransaction

	nextSubID uint
	nextPayID uint

	reads  int
	writes int
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		subs: make(map[uint]model.Subscription),
		pays: make(map[uint]model.PaymentTransaction),
	}
}

func (l *fakeLedger) InTransaction(_ context.Context, fn func(tx SubscriptionLedger) error) error {
	return fn(l)
}

func (l *fakeLedger) ActiveOrPendingByUser(_ context.Context, userID uint) (*model.Subscription, error) {
	l.reads++
	for _, sub := range l.subs {
		if sub.UserID == userID && sub.IsOpen() {
			out := sub
			return &out, nil
		}
	}
	return nil, nil
}

func (l *fakeLedger) CreateSubscription(_ context.Context, sub *model.Subscription) error {
	l.writes++
	l.nextSubID++
	sub.ID = l.nextSubID
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = time.Now()
	}
	l.subs[sub.ID] = *sub
	return nil
}

func (l *fakeLedger) SaveSubscription(_ context.Context, sub *model.Subscription) error {
	l.writes++
	l.subs[sub.ID] = *sub
	return nil
}

func (l *fakeLedger) SubscriptionByID(_ context.Context, id uint) (*model.Subscription, error) {
	l.reads++
	sub, ok := l.subs[id]
	if !ok {
		return nil, apperror.New(apperror.KindNotFound, "subscription not found")
	}
	out := sub
	return &out, nil
}

func (l *fakeLedger) CreatePayment(_ context.Context, pay *model.PaymentTransaction) error {
	l.writes++
	l.nextPayID++
	pay.ID = l.nextPayID
	l.pays[pay.ID] = *pay
	return nil
}

func (l *fakeLedger) SavePayment(_ context.Context, pay *model.PaymentTransaction) error {
	l.writes++
	l.pays[pay.ID] = *pay
	return nil
}

func (l *fakeLedger) PaymentByOrderID(_ context.Context, orderID string) (*model.PaymentTransaction, error) {
	l.reads++
	for _, pay := range l.pays {
		if pay.ExternalOrderID == orderID {
			out := pay
			return &out, nil
		}
	}
	return nil, apperror.New(apperror.KindNotFound, "payment not found for order")
}

func (l *fakeLedger) StalePendingSubscriptions(_ context.Context, cutoff time.Time) ([]model.Subscription, error) {
	l.reads++
	var stale []model.Subscription
	for _, sub := range l.subs {
		if sub.Status == model.SubscriptionPending && sub.CreatedAt.Before(cutoff) {
			stale = append(stale, sub)
		}
	}
	return stale, nil
}

func (l *fakeLedger) PendingPaymentsBySubscription(_ context.Context, subscriptionID uint) ([]model.PaymentTransaction, error) {
	l.reads++
	var pays []model.PaymentTransaction
	for _, pay := range l.pays {
		if pay.SubscriptionID == subscriptionID && pay.Status == model.PaymentPending {
			pays = append(pays, pay)
		}
	}
	return pays, nil
}

type fakeGateway struct {
	serverKey string
	createFn  func(req payment.TransactionRequest) (*payment.TransactionResponse, error)
	calls     int
}

func (g *fakeGateway) CreateTransaction(_ context.Context, req payment.TransactionRequest) (*payment.TransactionResponse, error) {
	g.calls++
	if g.createFn != nil {
		return g.createFn(req)
	}
	return &payment.TransactionResponse{
		Token:       "snap-token",
		RedirectURL: "https://gateway.example/pay/snap-token",
		Raw:         []byte(`{"token":"snap-token"}`),
	}, nil
}

func (g *fakeGateway) VerifySignature(n *payment.Notification) bool {
	return (&payment.MidtransClient{ServerKey: g.serverKey}).VerifySignature(n)
}

type fakeRecorder struct {
	events []*model.WebhookEvent
}

func (r *fakeRecorder) Record(_ context.Context, event *model.WebhookEvent) error {
	r.events = append(r.events, event)
	return nil
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
