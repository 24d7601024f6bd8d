package repository

import (
	"context"
	"errors"
	"time"

	"github.com/pyfast/backend/src/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type QuotaRepository struct {
	db *gorm.DB
}

func NewQuotaRepository(db *gorm.DB) *QuotaRepository {
	return &QuotaRepository{db: db}
}

// FindQuota retrieves the quota row for a user. Returns (nil, nil) when the
// user has no quota row yet.
func (r *QuotaRepository) FindQuota(ctx context.Context, userID string) (*domain.ChallengeQuota, error) {
	var quota domain.ChallengeQuota
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&quota).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &quota, nil
}

// CreateQuota inserts a quota row for a user. The insert is a no-op when a
// row already exists, so two first-time requests racing on creation both
// succeed; created reports whether this call inserted the row.
func (r *QuotaRepository) CreateQuota(ctx context.Context, quota *domain.ChallengeQuota) (created bool, err error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(quota)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ResetQuota sets the remaining count back to max and moves the period
// markers to now.
func (r *QuotaRepository) ResetQuota(ctx context.Context, userID string, maxQuota int, now time.Time) error {
	updates := map[string]interface{}{
		"quota_remaining": maxQuota,
		"period_start":    now,
		"last_reset":      now,
	}

	if err := r.db.WithContext(ctx).
		Model(&domain.ChallengeQuota{}).
		Where("user_id = ?", userID).
		Updates(updates).Error; err != nil {
		return err
	}

	return nil
}

// DecrementQuota atomically consumes one generation from the user's quota.
// The guard keeps quota_remaining from ever going below zero under
// concurrent requests; consumed is false when the user was already
// exhausted.
func (r *QuotaRepository) DecrementQuota(ctx context.Context, userID string) (consumed bool, err error) {
	result := r.db.WithContext(ctx).
		Model(&domain.ChallengeQuota{}).
		Where("user_id = ? AND quota_remaining > 0", userID).
		UpdateColumn("quota_remaining", gorm.Expr("quota_remaining - 1"))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
