package domain

import "time"

// DefaultMaxQuota is the number of AI generations a user gets per period
// unless configured otherwise.
const DefaultMaxQuota = 50

// DefaultQuotaResetPeriod is the rolling window after which a user's
// remaining count resets to the maximum.
const DefaultQuotaResetPeriod = 24 * time.Hour

// ChallengeQuota tracks how many AI generations a user has left in the
// current period. QuotaRemaining stays within [0, max]: the decrement path
// is guarded at the storage layer and the reset path writes the maximum.
type ChallengeQuota struct {
	UserID         string    `gorm:"primaryKey;type:varchar(255)" json:"user_id"`
	QuotaRemaining int       `gorm:"not null;default:50" json:"quota_remaining"`
	PeriodStart    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"period_start"`
	LastReset      time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"last_reset"`
}

func (ChallengeQuota) TableName() string {
	return "challenge_quotas"
}

// Exhausted reports whether the user has no generations left.
func (q *ChallengeQuota) Exhausted() bool {
	return q.QuotaRemaining <= 0
}

// ResetDue reports whether the rolling period has elapsed since the last reset.
func (q *ChallengeQuota) ResetDue(period time.Duration, now time.Time) bool {
	return now.Sub(q.LastReset) >= period
}
