package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"

	"subpay_backend/internal/model"
	"subpay_backend/pkg/apperror"
	"subpay_backend/pkg/payment"
)

type CheckoutInput struct {
	UserID        uint
	PlanID        uint
	CustomerName  string
	CustomerEmail string
}

type CheckoutResult struct {
	Subscription *model.Subscription       `json:"subscription"`
	Payment      *model.PaymentTransaction `json:"payment"`
}

// CheckoutService creates the PENDING subscription/payment pair and registers
// the payment with the gateway.
type CheckoutService struct {
	catalog PlanCatalog
	ledger  SubscriptionLedger
	gateway PaymentGateway
	now     func() time.Time
}

func NewCheckoutService(catalog PlanCatalog, ledger SubscriptionLedger, gateway PaymentGateway) *CheckoutService {
	return &CheckoutService{
		catalog: catalog,
		ledger:  ledger,
		gateway: gateway,
		now:     time.Now,
	}
}

func (s *CheckoutService) CreateCheckout(ctx context.Context, input CheckoutInput) (*CheckoutResult, error) {
	if input.UserID == 0 || input.PlanID == 0 {
		return nil, apperror.New(apperror.KindValidation, "user id and plan id are required")
	}
	if strings.TrimSpace(input.CustomerEmail) == "" {
		return nil, apperror.New(apperror.KindValidation, "customer email is required")
	}

	plan, err := s.catalog.ActivePlan(ctx, input.PlanID)
	if err != nil {
		return nil, err
	}

	sub := &model.Subscription{
		UserID: input.UserID,
		PlanID: plan.ID,
		Status: model.SubscriptionPending,
	}
	pay := &model.PaymentTransaction{
		Status:   model.PaymentPending,
		Amount:   plan.Price,
		Currency: plan.Currency,
	}

	// The existence check and both inserts share one transaction; the partial
	// unique index on open subscriptions catches the race where two checkouts
	// pass the check concurrently.
	err = s.ledger.InTransaction(ctx, func(tx SubscriptionLedger) error {
		existing, err := tx.ActiveOrPendingByUser(ctx, input.UserID)
		if err != nil {
			return err
		}
		if existing != nil {
			return apperror.New(apperror.KindConflict, "user already has an active or pending subscription")
		}
		if err := tx.CreateSubscription(ctx, sub); err != nil {
			return err
		}
		pay.SubscriptionID = sub.ID
		pay.ExternalOrderID = fmt.Sprintf("SUB-%d-%d", sub.ID, s.now().UnixMilli())
		return tx.CreatePayment(ctx, pay)
	})
	if err != nil {
		return nil, err
	}

	gw, err := s.gateway.CreateTransaction(ctx, payment.TransactionRequest{
		OrderID:     pay.ExternalOrderID,
		GrossAmount: pay.Amount,
		Customer: payment.Customer{
			Name:  input.CustomerName,
			Email: input.CustomerEmail,
		},
		Items: []payment.LineItem{
			{
				ID:       fmt.Sprintf("PLAN-%d", plan.ID),
				Name:     plan.Name,
				Price:    plan.Price,
				Quantity: 1,
			},
		},
	})
	if err != nil {
		// The PENDING rows stay behind; the expiry sweep reclaims them.
		log.Warn().Err(err).Str("order_id", pay.ExternalOrderID).Msg("gateway transaction failed")
		return nil, apperror.Wrap(apperror.KindUpstream, "payment gateway unavailable", err)
	}

	pay.GatewayToken = gw.Token
	pay.RedirectURL = gw.RedirectURL
	pay.RawPayload = datatypes.JSON(gw.Raw)
	if err := s.ledger.SavePayment(ctx, pay); err != nil {
		return nil, err
	}

	log.Info().
		Uint("user_id", input.UserID).
		Uint("subscription_id", sub.ID).
		Str("order_id", pay.ExternalOrderID).
		Msg("checkout created")

	return &CheckoutResult{Subscription: sub, Payment: pay}, nil
}

// MySubscription returns the caller's open subscription, plan included.
func (s *CheckoutService) MySubscription(ctx context.Context, userID uint) (*model.Subscription, error) {
	sub, err := s.ledger.ActiveOrPendingByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, apperror.New(apperror.KindNotFound, "no active or pending subscription")
	}
	return sub, nil
}
