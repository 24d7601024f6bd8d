package domain

import (
	"context"
	"time"
)

// ChallengeStore is the persistence contract the service layer works
// against. Implementations must make DecrementQuota an atomic conditional
// update and must scope all writes inside Transact to one commit.
type ChallengeStore interface {
	CreateChallenge(ctx context.Context, challenge *Challenge) error
	FindChallengesByUser(ctx context.Context, userID string) ([]Challenge, error)

	// FindQuota returns (nil, nil) when the user has no quota row yet.
	FindQuota(ctx context.Context, userID string) (*ChallengeQuota, error)
	// CreateQuota reports whether this call inserted the row; an existing
	// row is left untouched.
	CreateQuota(ctx context.Context, quota *ChallengeQuota) (created bool, err error)
	ResetQuota(ctx context.Context, userID string, maxQuota int, now time.Time) error
	// DecrementQuota reports whether a generation was consumed; false means
	// the user was already exhausted.
	DecrementQuota(ctx context.Context, userID string) (consumed bool, err error)

	// Transact runs fn against a store bound to a single transaction.
	Transact(ctx context.Context, fn func(tx ChallengeStore) error) error
}
