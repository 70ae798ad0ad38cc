package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type BillingPeriod string

const (
	BillingMonthly BillingPeriod = "MONTHLY"
	BillingYearly  BillingPeriod = "YEARLY"
)

type SubscriptionStatus string

const (
	SubscriptionPending  SubscriptionStatus = "PENDING"
	SubscriptionActive   SubscriptionStatus = "ACTIVE"
	SubscriptionCanceled SubscriptionStatus = "CANCELED"
	SubscriptionExpired  SubscriptionStatus = "EXPIRED"
)

// SubscriptionPlan is owned by the plan-management side; this service only
// reads it.
type SubscriptionPlan struct {
	gorm.Model
	Name          string        `json:"name" gorm:"not null"`
	Price         int64         `json:"price" gorm:"not null"` // minor units (e.g. 49000 = Rp 49.000)
	Currency      string        `json:"currency" gorm:"size:3;not null"`
	BillingPeriod BillingPeriod `json:"billing_period" gorm:"size:10;not null"`
	IsActive      bool          `json:"is_active" gorm:"default:true"`

	// İlişkiler
	Subscriptions []Subscription `json:"-" gorm:"foreignKey:PlanID"`
}

type Subscription struct {
	gorm.Model
	UserID                 uint               `json:"user_id" gorm:"not null;index"`
	PlanID                 uint               `json:"plan_id" gorm:"not null"`
	Status                 SubscriptionStatus `json:"status" gorm:"size:10;not null;default:'PENDING';index"`
	CurrentPeriodStart     *time.Time         `json:"current_period_start"`
	CurrentPeriodEnd       *time.Time         `json:"current_period_end"`
	CancelAtPeriodEnd      bool               `json:"cancel_at_period_end" gorm:"default:false"`
	ExternalSubscriptionID *string            `json:"external_subscription_id"`

	// İlişkiler
	Plan     SubscriptionPlan     `json:"plan,omitempty" gorm:"foreignKey:PlanID"`
	Payments []PaymentTransaction `json:"-" gorm:"foreignKey:SubscriptionID"`
}

// IsOpen reports whether the subscription still occupies the user's single
// open-subscription slot.
func (s *Subscription) IsOpen() bool {
	return s.Status == SubscriptionPending || s.Status == SubscriptionActive
}

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "PENDING"
	PaymentSuccess  PaymentStatus = "SUCCESS"
	PaymentFailed   PaymentStatus = "FAILED"
	PaymentCanceled PaymentStatus = "CANCELED"
	PaymentExpired  PaymentStatus = "EXPIRED"
)

// PaymentTransaction records one checkout attempt against the gateway. The
// gateway's notifications carry only ExternalOrderID, so that column is the
// lookup key, not the subscription foreign key.
type PaymentTransaction struct {
	gorm.Model
	SubscriptionID        uint           `json:"subscription_id" gorm:"not null;index"`
	Status                PaymentStatus  `json:"status" gorm:"size:10;not null;default:'PENDING';index"`
	Amount                int64          `json:"amount" gorm:"not null"`
	Currency              string         `json:"currency" gorm:"size:3;not null"`
	ExternalOrderID       string         `json:"external_order_id" gorm:"size:100;not null;uniqueIndex"`
	ExternalTransactionID *string        `json:"external_transaction_id"`
	PaymentType           string         `json:"payment_type" gorm:"size:50"`
	GatewayToken          string         `json:"gateway_token"`
	RedirectURL           string         `json:"redirect_url"`
	RawPayload            datatypes.JSON `json:"-" gorm:"type:jsonb"`
	PaidAt                *time.Time     `json:"paid_at"`

	Subscription Subscription `json:"-" gorm:"foreignKey:SubscriptionID"`
}
