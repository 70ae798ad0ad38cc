package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"subpay_backend/internal/model"
)

// SweepService expires checkout pairs that never received a gateway verdict:
// the customer abandoned the checkout page, or the gateway call failed after
// the PENDING rows were created.
type SweepService struct {
	ledger SubscriptionLedger
	now    func() time.Time
}

func NewSweepService(ledger SubscriptionLedger) *SweepService {
	return &SweepService{ledger: ledger, now: time.Now}
}

// ExpireStalePending moves PENDING subscriptions older than ttl, and their
// still-pending payments, to EXPIRED. Each pair is updated in its own
// transaction, and the status is re-checked inside it: a subscription a
// webhook activated between the listing and the update is left alone.
func (s *SweepService) ExpireStalePending(ctx context.Context, ttl time.Duration) (int, error) {
	cutoff := s.now().Add(-ttl)

	stale, err := s.ledger.StalePendingSubscriptions(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, sub := range stale {
		skipped := false
		err := s.ledger.InTransaction(ctx, func(tx SubscriptionLedger) error {
			current, err := tx.SubscriptionByID(ctx, sub.ID)
			if err != nil {
				return err
			}
			if current.Status != model.SubscriptionPending {
				skipped = true
				return nil
			}

			current.Status = model.SubscriptionExpired
			if err := tx.SaveSubscription(ctx, current); err != nil {
				return err
			}

			pays, err := tx.PendingPaymentsBySubscription(ctx, current.ID)
			if err != nil {
				return err
			}
			for i := range pays {
				pays[i].Status = model.PaymentExpired
				if err := tx.SavePayment(ctx, &pays[i]); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			log.Error().Err(err).Uint("subscription_id", sub.ID).Msg("could not expire stale subscription")
			continue
		}
		if !skipped {
			expired++
		}
	}
	return expired, nil
}
