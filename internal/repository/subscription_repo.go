package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"subpay_backend/internal/model"
	"subpay_backend/pkg/apperror"
)

type SubscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

func (r *SubscriptionRepository) Create(ctx context.Context, sub *model.Subscription) error {
	err := r.db.WithContext(ctx).Create(sub).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// ux_subscriptions_user_open: the user already holds an open slot.
		return apperror.New(apperror.KindConflict, "user already has an active or pending subscription")
	}
	if err != nil {
		return apperror.Wrap(apperror.KindInternal, "could not create subscription", err)
	}
	return nil
}

func (r *SubscriptionRepository) Save(ctx context.Context, sub *model.Subscription) error {
	if err := r.db.WithContext(ctx).Save(sub).Error; err != nil {
		return apperror.Wrap(apperror.KindInternal, "could not update subscription", err)
	}
	return nil
}

func (r *SubscriptionRepository) ByID(ctx context.Context, id uint) (*model.Subscription, error) {
	var sub model.Subscription
	err := r.db.WithContext(ctx).First(&sub, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.New(apperror.KindNotFound, "subscription not found")
	}
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, "could not fetch subscription", err)
	}
	return &sub, nil
}

// ActiveOrPendingByUser returns (nil, nil) when the user has no open
// subscription; callers decide whether that is an error.
func (r *SubscriptionRepository) ActiveOrPendingByUser(ctx context.Context, userID uint) (*model.Subscription, error) {
	var sub model.Subscription
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status IN ?", userID, []model.SubscriptionStatus{model.SubscriptionPending, model.SubscriptionActive}).
		Preload("Plan").
		First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, "could not fetch subscription", err)
	}
	return &sub, nil
}
