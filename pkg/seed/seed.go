package seed

import (
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"subpay_backend/internal/model"
)

func SeedSubscriptionPlans(db *gorm.DB) {
	plans := []model.SubscriptionPlan{
		{
			Name:          "Starter Monthly",
			Price:         49000,
			Currency:      "IDR",
			BillingPeriod: model.BillingMonthly,
			IsActive:      true,
		},
		{
			Name:          "Business Monthly",
			Price:         149000,
			Currency:      "IDR",
			BillingPeriod: model.BillingMonthly,
			IsActive:      true,
		},
		{
			Name:          "Business Yearly",
			Price:         1490000,
			Currency:      "IDR",
			BillingPeriod: model.BillingYearly,
			IsActive:      true,
		},
	}

	for _, plan := range plans {
		result := db.FirstOrCreate(&plan, model.SubscriptionPlan{Name: plan.Name})
		if result.Error != nil {
			log.Error().Err(result.Error).Str("plan", plan.Name).Msg("Error creating plan")
		}
	}

	log.Info().Msg("Subscription plans seeded successfully!")
}
