package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pyfast/backend/src/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubGenerator returns a canned draft without touching any backend.
type stubGenerator struct {
	draft *domain.ChallengeDraft
}

func (g *stubGenerator) Generate(ctx context.Context, difficulty string) *domain.ChallengeDraft {
	return g.draft
}

func aiDraft() *domain.ChallengeDraft {
	return &domain.ChallengeDraft{
		Title:           "What does the cap of a slice control?",
		Options:         []string{"Length", "Allocated capacity", "Element type", "Zero value"},
		CorrectAnswerID: 1,
		Explanation:     "cap reports the size of the backing array available to the slice.",
		IsFallback:      false,
	}
}

func newTestChallengeService(store *fakeStore, draft *domain.ChallengeDraft) *ChallengeService {
	ledger := NewQuotaLedger(store, 50, 24*time.Hour)
	return NewChallengeService(store, ledger, &stubGenerator{draft: draft})
}

func TestChallengeService_GenerateForUser_FreshUser(t *testing.T) {
	store := newFakeStore()
	svc := newTestChallengeService(store, aiDraft())
	ctx := context.Background()

	result, err := svc.GenerateForUser(ctx, "user_1", domain.DifficultyEasy)
	require.NoError(t, err)

	assert.True(t, result.QuotaConsumed)
	assert.False(t, result.IsFallback)
	assert.Equal(t, "user_1", result.Challenge.CreatedBy)
	assert.Equal(t, domain.DifficultyEasy, result.Challenge.Difficulty)

	options, err := result.Challenge.GetOptions()
	require.NoError(t, err)
	assert.Len(t, options, domain.ChallengeOptionCount)

	// Exactly one challenge row and exactly one consumed generation.
	assert.Len(t, store.challenges, 1)
	assert.Equal(t, 49, store.quotas["user_1"].QuotaRemaining)
}

func TestChallengeService_GenerateForUser_QuotaExhausted(t *testing.T) {
	store := newFakeStore()
	svc := newTestChallengeService(store, aiDraft())
	ctx := context.Background()

	now := time.Now()
	store.quotas["user_1"] = domain.ChallengeQuota{
		UserID:         "user_1",
		QuotaRemaining: 0,
		PeriodStart:    now,
		LastReset:      now,
	}

	_, err := svc.GenerateForUser(ctx, "user_1", domain.DifficultyMedium)
	require.Error(t, err)

	var domainErr domain.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "QUOTA_EXHAUSTED", domainErr.Name())

	// No challenge row was written and the count is untouched.
	assert.Empty(t, store.challenges)
	assert.Equal(t, 0, store.quotas["user_1"].QuotaRemaining)
}

func TestChallengeService_GenerateForUser_FallbackDoesNotConsumeQuota(t *testing.T) {
	store := newFakeStore()
	svc := newTestChallengeService(store, FallbackDraft())
	ctx := context.Background()

	result, err := svc.GenerateForUser(ctx, "user_1", domain.DifficultyHard)
	require.NoError(t, err)

	assert.True(t, result.IsFallback)
	assert.False(t, result.QuotaConsumed)
	assert.Equal(t, "Basic Python List Operation", result.Challenge.Title)

	// The fallback challenge is persisted but the allowance is untouched.
	assert.Len(t, store.challenges, 1)
	assert.Equal(t, 50, store.quotas["user_1"].QuotaRemaining)
}

func TestChallengeService_GenerateForUser_ResetBeforeCheck(t *testing.T) {
	store := newFakeStore()
	svc := newTestChallengeService(store, aiDraft())
	ctx := context.Background()

	now := time.Now()
	svc.ledger.now = func() time.Time { return now }

	// Exhausted, but the period elapsed: the request goes through.
	store.quotas["user_1"] = domain.ChallengeQuota{
		UserID:         "user_1",
		QuotaRemaining: 0,
		PeriodStart:    now.Add(-25 * time.Hour),
		LastReset:      now.Add(-25 * time.Hour),
	}

	result, err := svc.GenerateForUser(ctx, "user_1", domain.DifficultyEasy)
	require.NoError(t, err)

	assert.True(t, result.QuotaConsumed)
	assert.Equal(t, 49, store.quotas["user_1"].QuotaRemaining)
}

func TestChallengeService_GenerateForUser_LostDecrementRace(t *testing.T) {
	store := newFakeStore()
	svc := newTestChallengeService(store, aiDraft())
	ctx := context.Background()

	now := time.Now()
	quota := domain.ChallengeQuota{
		UserID:         "user_1",
		QuotaRemaining: 1,
		PeriodStart:    now,
		LastReset:      now,
	}
	store.quotas["user_1"] = quota

	// Drain the last generation after the service passed its check,
	// emulating a concurrent request winning the conditional decrement.
	quota.QuotaRemaining = 0
	store.quotas["user_1"] = quota

	_, err := svc.GenerateForUser(ctx, "user_1", domain.DifficultyEasy)
	require.Error(t, err)

	var domainErr domain.DomainError
	require.True(t, errors.As(err, &domainErr))

	// The transaction rolled the challenge insert back.
	assert.Empty(t, store.challenges)
	assert.Equal(t, 0, store.quotas["user_1"].QuotaRemaining)
}

func TestChallengeService_GenerateForUser_PersistenceFailureRollsBack(t *testing.T) {
	store := newFakeStore()
	store.createChallengeErr = errors.New("connection reset")
	svc := newTestChallengeService(store, aiDraft())
	ctx := context.Background()

	_, err := svc.GenerateForUser(ctx, "user_1", domain.DifficultyEasy)
	require.Error(t, err)

	var domainErr domain.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "INTERNAL_PROCESS", domainErr.Name())

	// Neither side of the commit happened.
	assert.Empty(t, store.challenges)
	assert.Equal(t, 50, store.quotas["user_1"].QuotaRemaining)
}

func TestChallengeService_HistoryForUser_NewestFirst(t *testing.T) {
	store := newFakeStore()
	svc := newTestChallengeService(store, aiDraft())
	ctx := context.Background()

	for _, difficulty := range []string{domain.DifficultyEasy, domain.DifficultyMedium, domain.DifficultyHard} {
		_, err := svc.GenerateForUser(ctx, "user_1", difficulty)
		require.NoError(t, err)
	}
	_, err := svc.GenerateForUser(ctx, "user_2", domain.DifficultyEasy)
	require.NoError(t, err)

	history, err := svc.HistoryForUser(ctx, "user_1")
	require.NoError(t, err)

	require.Len(t, history, 3)
	assert.Equal(t, domain.DifficultyHard, history[0].Difficulty)
	assert.Equal(t, domain.DifficultyMedium, history[1].Difficulty)
	assert.Equal(t, domain.DifficultyEasy, history[2].Difficulty)
}

func TestChallengeService_QuotaForUser_CreatesAndResets(t *testing.T) {
	store := newFakeStore()
	svc := newTestChallengeService(store, aiDraft())
	ctx := context.Background()

	// First read creates the row lazily.
	quota, err := svc.QuotaForUser(ctx, "user_1")
	require.NoError(t, err)
	assert.Equal(t, 50, quota.QuotaRemaining)

	// A stale row is refreshed on read without consuming anything.
	now := time.Now()
	svc.ledger.now = func() time.Time { return now }
	store.quotas["user_1"] = domain.ChallengeQuota{
		UserID:         "user_1",
		QuotaRemaining: 3,
		PeriodStart:    now.Add(-25 * time.Hour),
		LastReset:      now.Add(-25 * time.Hour),
	}

	quota, err = svc.QuotaForUser(ctx, "user_1")
	require.NoError(t, err)
	assert.Equal(t, 50, quota.QuotaRemaining)
	assert.Equal(t, now, quota.LastReset)
}
