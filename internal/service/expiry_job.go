package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/coupon-marketplace/internal/metrics"
	"github.com/fairyhunter13/coupon-marketplace/internal/model"
)

// ExpiredCouponDeleter removes coupons whose end date has passed.
type ExpiredCouponDeleter interface {
	DeleteExpired(ctx context.Context, today time.Time) (int64, error)
}

// ExpiryJob periodically deletes coupons that ended before today.
type ExpiryJob struct {
	coupons  ExpiredCouponDeleter
	interval time.Duration
	now      func() time.Time
}

// NewExpiryJob creates an ExpiryJob that runs every interval.
func NewExpiryJob(coupons ExpiredCouponDeleter, interval time.Duration) *ExpiryJob {
	return &ExpiryJob{coupons: coupons, interval: interval, now: time.Now}
}

// PurgeExpired deletes every coupon whose end date is before today.
// A coupon ending today is kept.
func (j *ExpiryJob) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := j.coupons.DeleteExpired(ctx, model.DateOf(j.now()))
	if err != nil {
		return 0, fmt.Errorf("purge expired coupons: %w", err)
	}
	metrics.RecordPurged(n)
	log.Info().Int64("deleted", n).Msg("Expired coupons purged")
	return n, nil
}

// Run purges once immediately and then on every tick until ctx is cancelled.
// A failed purge is logged and retried on the next tick.
func (j *ExpiryJob) Run(ctx context.Context) error {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	log.Info().Dur("interval", j.interval).Msg("Expiry job started")
	for {
		if _, err := j.PurgeExpired(ctx); err != nil && ctx.Err() == nil {
			log.Error().Err(err).Msg("Expiry job run failed")
		}

		select {
		case <-ctx.Done():
			log.Info().Msg("Expiry job stopped")
			return nil
		case <-ticker.C:
		}
	}
}
