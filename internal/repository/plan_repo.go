package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"subpay_backend/internal/model"
	"subpay_backend/pkg/apperror"
)

// PlanRepository is the read-only catalog over subscription_plans.
type PlanRepository struct {
	db *gorm.DB
}

func NewPlanRepository(db *gorm.DB) *PlanRepository {
	return &PlanRepository{db: db}
}

func (r *PlanRepository) ActivePlan(ctx context.Context, planID uint) (*model.SubscriptionPlan, error) {
	var plan model.SubscriptionPlan
	err := r.db.WithContext(ctx).
		Where("id = ? AND is_active = ?", planID, true).
		First(&plan).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.New(apperror.KindNotFound, "subscription plan not found")
	}
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, "could not fetch plan", err)
	}
	return &plan, nil
}

// PlanByID skips the is_active filter: a plan deactivated after checkout must
// still settle its outstanding payments.
func (r *PlanRepository) PlanByID(ctx context.Context, planID uint) (*model.SubscriptionPlan, error) {
	var plan model.SubscriptionPlan
	err := r.db.WithContext(ctx).First(&plan, planID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.New(apperror.KindNotFound, "subscription plan not found")
	}
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, "could not fetch plan", err)
	}
	return &plan, nil
}

func (r *PlanRepository) ListActivePlans(ctx context.Context) ([]model.SubscriptionPlan, error) {
	var plans []model.SubscriptionPlan
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("price ASC").
		Find(&plans).Error
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, "could not fetch plans", err)
	}
	return plans, nil
}
