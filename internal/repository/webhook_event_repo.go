package repository

import (
	"context"

	"gorm.io/gorm"

	"subpay_backend/internal/model"
	"subpay_backend/pkg/apperror"
)

type WebhookEventRepository struct {
	db *gorm.DB
}

func NewWebhookEventRepository(db *gorm.DB) *WebhookEventRepository {
	return &WebhookEventRepository{db: db}
}

func (r *WebhookEventRepository) Record(ctx context.Context, event *model.WebhookEvent) error {
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return apperror.Wrap(apperror.KindInternal, "could not record webhook event", err)
	}
	return nil
}
