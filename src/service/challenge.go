package service

import (
	"context"
	"errors"

	"github.com/pyfast/backend/src/domain"
	"github.com/rs/zerolog"
)

// DraftGenerator produces challenge drafts. Generate never fails; a broken
// upstream yields a fallback draft instead.
type DraftGenerator interface {
	Generate(ctx context.Context, difficulty string) *domain.ChallengeDraft
}

// ChallengeService orchestrates quota checks, generation and persistence
// for one request. Identity resolution happens in the handler layer; all
// methods assume a valid, non-empty user id.
type ChallengeService struct {
	store     domain.ChallengeStore
	ledger    *QuotaLedger
	generator DraftGenerator
}

func NewChallengeService(store domain.ChallengeStore, ledger *QuotaLedger, generator DraftGenerator) *ChallengeService {
	return &ChallengeService{
		store:     store,
		ledger:    ledger,
		generator: generator,
	}
}

func (s *ChallengeService) logger(ctx context.Context) *zerolog.Logger {
	l := zerolog.Ctx(ctx).With().Str("component", "challenge-service").Logger()
	return &l
}

// GenerateForUser runs the full generation flow: load or create the quota
// row, refresh it if the period elapsed, reject exhausted users before any
// generation happens, call the generator, then persist the challenge and
// the quota decrement in one transaction. Fallback drafts never consume
// quota.
func (s *ChallengeService) GenerateForUser(ctx context.Context, userID string, difficulty string) (*domain.GenerationResult, error) {
	quota, err := s.ledger.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, domain.NewError(domain.ErrorCodeInternalProcess, err, domain.WithMsg("Failed to load challenge quota"))
	}

	quota, err = s.ledger.ResetIfNeeded(ctx, quota)
	if err != nil {
		return nil, domain.NewError(domain.ErrorCodeInternalProcess, err, domain.WithMsg("Failed to refresh challenge quota"))
	}

	if quota.Exhausted() {
		return nil, domain.NewError(
			domain.ErrorCodeQuotaExhausted,
			errors.New("challenge quota exhausted"),
			domain.WithMsg("Quota exhausted"),
		)
	}

	// The only suspension point in the flow; the generator carries its own
	// timeout and falls back internally.
	draft := s.generator.Generate(ctx, difficulty)

	challenge, err := domain.NewChallengeFromDraft(draft, userID, difficulty)
	if err != nil {
		return nil, domain.NewError(domain.ErrorCodeInternalProcess, err, domain.WithMsg("Failed to build challenge"))
	}

	quotaConsumed := false
	err = s.store.Transact(ctx, func(tx domain.ChallengeStore) error {
		if err := tx.CreateChallenge(ctx, challenge); err != nil {
			return err
		}

		if draft.IsFallback {
			return nil
		}

		consumed, err := s.ledger.Consume(ctx, tx, userID)
		if err != nil {
			return err
		}
		if !consumed {
			// A concurrent request drained the last generation between the
			// check and the decrement; roll the insert back.
			return domain.NewError(
				domain.ErrorCodeQuotaExhausted,
				errors.New("challenge quota exhausted"),
				domain.WithMsg("Quota exhausted"),
			)
		}
		quotaConsumed = true
		return nil
	})
	if err != nil {
		var domainErr domain.DomainError
		if errors.As(err, &domainErr) {
			return nil, err
		}
		return nil, domain.NewError(domain.ErrorCodeInternalProcess, err, domain.WithMsg("Failed to save challenge"))
	}

	s.logger(ctx).Info().
		Str("user_id", userID).
		Str("challenge_id", challenge.ID.String()).
		Str("difficulty", difficulty).
		Bool("is_fallback", draft.IsFallback).
		Bool("quota_consumed", quotaConsumed).
		Msg("challenge generated")

	return &domain.GenerationResult{
		Challenge:     challenge,
		IsFallback:    draft.IsFallback,
		QuotaConsumed: quotaConsumed,
	}, nil
}

// HistoryForUser returns the user's challenges, newest first.
func (s *ChallengeService) HistoryForUser(ctx context.Context, userID string) ([]domain.Challenge, error) {
	challenges, err := s.store.FindChallengesByUser(ctx, userID)
	if err != nil {
		return nil, domain.NewError(domain.ErrorCodeInternalProcess, err, domain.WithMsg("Failed to load challenge history"))
	}
	return challenges, nil
}

// QuotaForUser returns the user's quota after the lazy-create and
// reset-if-needed steps. Read-only with respect to the remaining count.
func (s *ChallengeService) QuotaForUser(ctx context.Context, userID string) (*domain.ChallengeQuota, error) {
	quota, err := s.ledger.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, domain.NewError(domain.ErrorCodeInternalProcess, err, domain.WithMsg("Failed to load challenge quota"))
	}

	quota, err = s.ledger.ResetIfNeeded(ctx, quota)
	if err != nil {
		return nil, domain.NewError(domain.ErrorCodeInternalProcess, err, domain.WithMsg("Failed to refresh challenge quota"))
	}

	return quota, nil
}
