package cron

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"subpay_backend/internal/service"
)

// InitPendingExpiryCron schedules the daily sweep over PENDING checkout
// pairs. A failed gateway call (or an abandoned checkout page) leaves
// PENDING subscription/payment rows behind with no compensating cleanup in
// the request path; this sweep expires them once they outlive the TTL.
func InitPendingExpiryCron(sweep *service.SweepService, ttlHours int) {
	c := cron.New()

	_, err := c.AddFunc("0 3 * * *", func() {
		expireStalePending(sweep, ttlHours)
	})

	if err != nil {
		log.Error().Err(err).Msg("Could not initialize pending expiry cron")
		return
	}

	c.Start()
}

func expireStalePending(sweep *service.SweepService, ttlHours int) {
	ttl := time.Duration(ttlHours) * time.Hour
	log.Info().Dur("ttl", ttl).Msg("Checking for stale pending checkouts...")

	expired, err := sweep.ExpireStalePending(context.Background(), ttl)
	if err != nil {
		log.Error().Err(err).Msg("Error expiring stale pending checkouts")
		return
	}

	if expired > 0 {
		log.Info().Int("expired", expired).Msg("Expired stale pending checkouts")
	}
}
