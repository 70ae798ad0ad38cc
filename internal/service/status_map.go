package service

import (
	"time"

	"subpay_backend/internal/model"
)

// The two mapping tables are pure functions of the notification body. Replays
// of the same notification therefore always compute the same target state,
// which is what makes redelivery safe.

var paymentStatusByTx = map[string]model.PaymentStatus{
	"settlement": model.PaymentSuccess,
	"pending":    model.PaymentPending,
	"deny":       model.PaymentFailed,
	"cancel":     model.PaymentCanceled,
	"expire":     model.PaymentExpired,
}

var subscriptionStatusByTx = map[string]model.SubscriptionStatus{
	"pending": model.SubscriptionPending,
	"deny":    model.SubscriptionCanceled,
	"cancel":  model.SubscriptionCanceled,
	"expire":  model.SubscriptionExpired,
}

// MapPaymentStatus resolves the gateway's transaction_status/fraud_status
// pair to a payment status. Unknown statuses fail the payment.
func MapPaymentStatus(txStatus, fraudStatus string) model.PaymentStatus {
	if txStatus == "capture" {
		switch {
		case fraudStatus == "challenge":
			return model.PaymentPending
		case fraudStatus != "" && fraudStatus != "accept":
			return model.PaymentFailed
		default:
			return model.PaymentSuccess
		}
	}
	if status, ok := paymentStatusByTx[txStatus]; ok {
		return status
	}
	return model.PaymentFailed
}

// MapSubscriptionStatus resolves the same pair to a subscription status.
// A challenged capture keeps the subscription PENDING until the gateway
// reports the fraud review's outcome.
func MapSubscriptionStatus(txStatus, fraudStatus string) model.SubscriptionStatus {
	if txStatus == "capture" || txStatus == "settlement" {
		switch {
		case fraudStatus == "challenge":
			return model.SubscriptionPending
		case fraudStatus != "" && fraudStatus != "accept":
			return model.SubscriptionCanceled
		default:
			return model.SubscriptionActive
		}
	}
	if status, ok := subscriptionStatusByTx[txStatus]; ok {
		return status
	}
	return model.SubscriptionCanceled
}

// AddBillingPeriod advances t by one billing cadence using calendar
// arithmetic. Day-of-month overflow clamps to the last valid day of the
// target month (Jan 31 + 1 month = Feb 28/29), unlike time.AddDate, which
// would normalize it into March.
func AddBillingPeriod(t time.Time, period model.BillingPeriod) time.Time {
	if period == model.BillingYearly {
		return addCalendar(t, 1, 0)
	}
	return addCalendar(t, 0, 1)
}

func addCalendar(t time.Time, years, months int) time.Time {
	year, month, day := t.Date()
	anchor := time.Date(year+years, month+time.Month(months), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	if last := daysInMonth(anchor.Year(), anchor.Month()); day > last {
		day = last
	}
	return time.Date(anchor.Year(), anchor.Month(), day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysInMonth(year int, month time.Month) int {
	// day 0 of the next month is the last day of this one
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
