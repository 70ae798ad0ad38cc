package service

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"

	"subpay_backend/internal/model"
	"subpay_backend/pkg/apperror"
	"subpay_backend/pkg/payment"
)

type ReconcileResult struct {
	Subscription *model.Subscription       `json:"subscription"`
	Payment      *model.PaymentTransaction `json:"payment"`
}

// WebhookService applies gateway notifications to payment and subscription
// state. It only ever writes through the ledger; the gateway client is used
// for signature verification alone.
type WebhookService struct {
	ledger        SubscriptionLedger
	catalog       PlanCatalog
	gateway       PaymentGateway
	events        WebhookRecorder
	callbackToken string
	location      *time.Location
	now           func() time.Time
}

// NewWebhookService wires the reconciler. location is the gateway's wall
// clock for bare settlement_time values (the gateway reports WIB, UTC+7);
// nil means UTC.
func NewWebhookService(ledger SubscriptionLedger, catalog PlanCatalog, gateway PaymentGateway, events WebhookRecorder, callbackToken string, location *time.Location) *WebhookService {
	if location == nil {
		location = time.UTC
	}
	return &WebhookService{
		ledger:        ledger,
		catalog:       catalog,
		gateway:       gateway,
		events:        events,
		callbackToken: callbackToken,
		location:      location,
		now:           time.Now,
	}
}

// ProcessNotification validates and reconciles one gateway notification.
// Authorization failures return before any mutable state is read.
func (s *WebhookService) ProcessNotification(ctx context.Context, n *payment.Notification, callbackToken string) (*ReconcileResult, error) {
	if s.callbackToken != "" &&
		subtle.ConstantTimeCompare([]byte(s.callbackToken), []byte(callbackToken)) != 1 {
		return nil, apperror.New(apperror.KindUnauthorized, "invalid callback token")
	}
	if n.OrderID == "" {
		return nil, apperror.New(apperror.KindValidation, "order_id is required")
	}
	if !s.gateway.VerifySignature(n) {
		log.Warn().Str("order_id", n.OrderID).Msg("webhook signature mismatch")
		return nil, apperror.New(apperror.KindUnauthorized, "invalid signature")
	}

	result, err := s.reconcile(ctx, n)
	s.recordEvent(ctx, n, err)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("order_id", n.OrderID).
		Str("transaction_status", n.TransactionStatus).
		Str("payment_status", string(result.Payment.Status)).
		Str("subscription_status", string(result.Subscription.Status)).
		Msg("webhook reconciled")

	return result, nil
}

func (s *WebhookService) reconcile(ctx context.Context, n *payment.Notification) (*ReconcileResult, error) {
	var result *ReconcileResult

	err := s.ledger.InTransaction(ctx, func(tx SubscriptionLedger) error {
		pay, err := tx.PaymentByOrderID(ctx, n.OrderID)
		if err != nil {
			return err
		}
		sub, err := tx.SubscriptionByID(ctx, pay.SubscriptionID)
		if err != nil {
			// A payment without its subscription breaks the data model.
			if apperror.IsKind(err, apperror.KindNotFound) {
				return apperror.Wrap(apperror.KindInternal, "payment references missing subscription", err)
			}
			return err
		}

		pay.Status = MapPaymentStatus(n.TransactionStatus, n.FraudStatus)
		pay.PaidAt = s.resolvePaidAt(n, pay.Status, pay.PaidAt)
		if n.PaymentType != "" {
			pay.PaymentType = n.PaymentType
		}
		if n.TransactionID != "" {
			txID := n.TransactionID
			pay.ExternalTransactionID = &txID
		}
		raw, marshalErr := json.Marshal(n)
		if marshalErr != nil {
			log.Error().Err(marshalErr).Str("order_id", n.OrderID).Msg("could not marshal notification payload")
		} else {
			pay.RawPayload = datatypes.JSON(raw)
		}

		sub.Status = MapSubscriptionStatus(n.TransactionStatus, n.FraudStatus)
		if sub.Status == model.SubscriptionActive {
			plan, err := s.catalog.PlanByID(ctx, sub.PlanID)
			if err != nil {
				return err
			}
			start := *pay.PaidAt
			end := AddBillingPeriod(start, plan.BillingPeriod)
			sub.CurrentPeriodStart = &start
			sub.CurrentPeriodEnd = &end
			if sub.ExternalSubscriptionID == nil && n.TransactionID != "" {
				txID := n.TransactionID
				sub.ExternalSubscriptionID = &txID
			}
		}

		if err := tx.SavePayment(ctx, pay); err != nil {
			return err
		}
		if err := tx.SaveSubscription(ctx, sub); err != nil {
			return err
		}

		result = &ReconcileResult{Subscription: sub, Payment: pay}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// resolvePaidAt keeps replays deterministic: a parseable settlement_time
// always wins, and the "now" fallback is stamped only on the first SUCCESS
// transition, never overwritten afterwards.
func (s *WebhookService) resolvePaidAt(n *payment.Notification, status model.PaymentStatus, existing *time.Time) *time.Time {
	if settled, ok := n.SettledAtIn(s.location); ok {
		return &settled
	}
	if status == model.PaymentSuccess {
		if existing != nil {
			return existing
		}
		now := s.now()
		return &now
	}
	return existing
}

func (s *WebhookService) recordEvent(ctx context.Context, n *payment.Notification, procErr error) {
	if s.events == nil {
		return
	}
	event := &model.WebhookEvent{
		EventID:        uuid.NewString(),
		OrderID:        n.OrderID,
		EventType:      n.TransactionStatus,
		SignatureValid: true,
	}
	raw, marshalErr := json.Marshal(n)
	if marshalErr != nil {
		log.Error().Err(marshalErr).Str("order_id", n.OrderID).Msg("could not marshal notification payload")
	} else {
		event.Payload = datatypes.JSON(raw)
	}
	if procErr != nil {
		event.ProcessingError = procErr.Error()
	} else {
		processedAt := s.now()
		event.ProcessedAt = &processedAt
	}
	if err := s.events.Record(ctx, event); err != nil {
		log.Warn().Err(err).Str("order_id", n.OrderID).Msg("could not record webhook event")
	}
}
