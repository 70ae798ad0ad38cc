package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"subpay_backend/internal/model"
)

func seedPair(ledger *fakeLedger, userID uint, subStatus model.SubscriptionStatus, payStatus model.PaymentStatus, createdAt time.Time) (uint, uint) {
	sub := &model.Subscription{
		UserID: userID,
		PlanID: 1,
		Status: subStatus,
	}
	sub.CreatedAt = createdAt
	ledger.CreateSubscription(context.Background(), sub)

	pay := &model.PaymentTransaction{
		SubscriptionID:  sub.ID,
		Status:          payStatus,
		Amount:          49000,
		Currency:        "IDR",
		ExternalOrderID: fmt.Sprintf("SUB-%d-%d", sub.ID, createdAt.UnixMilli()),
	}
	ledger.CreatePayment(context.Background(), pay)
	return sub.ID, pay.ID
}

func newSweepService(ledger SubscriptionLedger, now time.Time) *SweepService {
	svc := NewSweepService(ledger)
	svc.now = fixedClock(now)
	return svc
}

func TestExpireStalePending(t *testing.T) {
	now := time.Date(2024, time.March, 10, 3, 0, 0, 0, time.UTC)
	ttl := 24 * time.Hour

	t.Run("stale pending pair expires", func(t *testing.T) {
		ledger := newFakeLedger()
		subID, payID := seedPair(ledger, 7, model.SubscriptionPending, model.PaymentPending, now.Add(-48*time.Hour))

		expired, err := newSweepService(ledger, now).ExpireStalePending(context.Background(), ttl)
		require.NoError(t, err)
		assert.Equal(t, 1, expired)

		assert.Equal(t, model.SubscriptionExpired, ledger.subs[subID].Status)
		assert.Equal(t, model.PaymentExpired, ledger.pays[payID].Status)
	})

	t.Run("fresh pending pair survives the cutoff", func(t *testing.T) {
		ledger := newFakeLedger()
		subID, payID := seedPair(ledger, 7, model.SubscriptionPending, model.PaymentPending, now.Add(-time.Hour))

		expired, err := newSweepService(ledger, now).ExpireStalePending(context.Background(), ttl)
		require.NoError(t, err)
		assert.Zero(t, expired)

		assert.Equal(t, model.SubscriptionPending, ledger.subs[subID].Status)
		assert.Equal(t, model.PaymentPending, ledger.pays[payID].Status)
	})

	t.Run("active subscription is untouched", func(t *testing.T) {
		ledger := newFakeLedger()
		subID, payID := seedPair(ledger, 7, model.SubscriptionActive, model.PaymentSuccess, now.Add(-48*time.Hour))

		expired, err := newSweepService(ledger, now).ExpireStalePending(context.Background(), ttl)
		require.NoError(t, err)
		assert.Zero(t, expired)

		assert.Equal(t, model.SubscriptionActive, ledger.subs[subID].Status)
		assert.Equal(t, model.PaymentSuccess, ledger.pays[payID].Status)
	})

	t.Run("only the pair's pending payments flip", func(t *testing.T) {
		ledger := newFakeLedger()
		subID, stalePayID := seedPair(ledger, 7, model.SubscriptionPending, model.PaymentPending, now.Add(-48*time.Hour))

		// an earlier failed attempt on the same subscription keeps its verdict
		failed := &model.PaymentTransaction{
			SubscriptionID:  subID,
			Status:          model.PaymentFailed,
			Amount:          49000,
			Currency:        "IDR",
			ExternalOrderID: "SUB-1-failed",
		}
		ledger.CreatePayment(context.Background(), failed)

		expired, err := newSweepService(ledger, now).ExpireStalePending(context.Background(), ttl)
		require.NoError(t, err)
		assert.Equal(t, 1, expired)

		assert.Equal(t, model.PaymentExpired, ledger.pays[stalePayID].Status)
		assert.Equal(t, model.PaymentFailed, ledger.pays[failed.ID].Status)
	})

	t.Run("subscription activated after listing is left alone", func(t *testing.T) {
		ledger := newFakeLedger()
		subID, payID := seedPair(ledger, 7, model.SubscriptionPending, model.PaymentPending, now.Add(-48*time.Hour))

		// a settlement webhook lands between the stale listing and the
		// per-pair transaction
		activated := &activatingLedger{fakeLedger: ledger, subID: subID}

		expired, err := newSweepService(activated, now).ExpireStalePending(context.Background(), ttl)
		require.NoError(t, err)
		assert.Zero(t, expired)

		assert.Equal(t, model.SubscriptionActive, ledger.subs[subID].Status)
		assert.Equal(t, model.PaymentPending, ledger.pays[payID].Status,
			"a concurrently activated subscription must not have its payment expired")
	})
}

// activatingLedger flips the subscription to ACTIVE right after the stale
// listing, simulating a webhook racing the sweep.
type activatingLedger struct {
	*fakeLedger
	subID uint
}

func (l *activatingLedger) StalePendingSubscriptions(ctx context.Context, cutoff time.Time) ([]model.Subscription, error) {
	stale, err := l.fakeLedger.StalePendingSubscriptions(ctx, cutoff)
	if err != nil {
		return nil, err
	}
	sub := l.fakeLedger.subs[l.subID]
	sub.Status = model.SubscriptionActive
	l.fakeLedger.subs[l.subID] = sub
	return stale, nil
}
