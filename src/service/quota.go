package service

import (
	"context"
	"time"

	"github.com/pyfast/backend/src/domain"
	"github.com/rs/zerolog"
)

// QuotaLedger owns the per-user quota lifecycle: lazy creation, periodic
// reset and consumption. The reset policy is a rolling window measured from
// the last reset.
type QuotaLedger struct {
	store       domain.ChallengeStore
	maxQuota    int
	resetPeriod time.Duration
	now         func() time.Time
}

func NewQuotaLedger(store domain.ChallengeStore, maxQuota int, resetPeriod time.Duration) *QuotaLedger {
	return &QuotaLedger{
		store:       store,
		maxQuota:    maxQuota,
		resetPeriod: resetPeriod,
		now:         time.Now,
	}
}

func (l *QuotaLedger) logger(ctx context.Context) *zerolog.Logger {
	log := zerolog.Ctx(ctx).With().Str("component", "quota-ledger").Logger()
	return &log
}

// MaxQuota returns the configured per-period generation limit.
func (l *QuotaLedger) MaxQuota() int {
	return l.maxQuota
}

// GetOrCreate returns the user's quota row, creating it with a full
// allowance on first use. A creation race between two first-time requests
// resolves to the single row the insert left behind.
func (l *QuotaLedger) GetOrCreate(ctx context.Context, userID string) (*domain.ChallengeQuota, error) {
	quota, err := l.store.FindQuota(ctx, userID)
	if err != nil {
		return nil, err
	}
	if quota != nil {
		return quota, nil
	}

	now := l.now()
	quota = &domain.ChallengeQuota{
		UserID:         userID,
		QuotaRemaining: l.maxQuota,
		PeriodStart:    now,
		LastReset:      now,
	}

	created, err := l.store.CreateQuota(ctx, quota)
	if err != nil {
		return nil, err
	}
	if created {
		l.logger(ctx).Info().Str("user_id", userID).Int("quota", l.maxQuota).Msg("created quota for new user")
		return quota, nil
	}

	// Lost the insert race: another request created the row first.
	return l.store.FindQuota(ctx, userID)
}

// ResetIfNeeded refreshes a stale quota row when the rolling period has
// elapsed. Called on every read path so no background job is needed; a
// second call within the same period is a no-op.
func (l *QuotaLedger) ResetIfNeeded(ctx context.Context, quota *domain.ChallengeQuota) (*domain.ChallengeQuota, error) {
	now := l.now()
	if !quota.ResetDue(l.resetPeriod, now) {
		return quota, nil
	}

	if err := l.store.ResetQuota(ctx, quota.UserID, l.maxQuota, now); err != nil {
		return nil, err
	}

	l.logger(ctx).Info().Str("user_id", quota.UserID).Msg("quota period elapsed, reset to maximum")

	quota.QuotaRemaining = l.maxQuota
	quota.PeriodStart = now
	quota.LastReset = now
	return quota, nil
}

// Consume atomically decrements the user's remaining quota through the
// given store (typically a transaction). It reports false when the user is
// already exhausted; the count never goes negative.
func (l *QuotaLedger) Consume(ctx context.Context, store domain.ChallengeStore, userID string) (bool, error) {
	return store.DecrementQuota(ctx, userID)
}
