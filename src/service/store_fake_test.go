package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/pyfast/backend/src/domain"
)

// fakeStore is an in-memory domain.ChallengeStore. Transact snapshots the
// state and restores it when fn fails, mirroring a database rollback.
type fakeStore struct {
	quotas     map[string]domain.ChallengeQuota
	challenges []domain.Challenge

	createChallengeErr error
	decrementErr       error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		quotas: make(map[string]domain.ChallengeQuota),
	}
}

func (s *fakeStore) CreateChallenge(ctx context.Context, challenge *domain.Challenge) error {
	if s.createChallengeErr != nil {
		return s.createChallengeErr
	}
	if challenge.ID == uuid.Nil {
		challenge.ID = uuid.New()
	}
	if challenge.DateCreated.IsZero() {
		challenge.DateCreated = time.Now()
	}
	s.challenges = append(s.challenges, *challenge)
	return nil
}

// FindChallengesByUser returns the user's challenges newest first, matching
// the ordering contract of the real repository.
func (s *fakeStore) FindChallengesByUser(ctx context.Context, userID string) ([]domain.Challenge, error) {
	var result []domain.Challenge
	for i := len(s.challenges) - 1; i >= 0; i-- {
		if s.challenges[i].CreatedBy == userID {
			result = append(result, s.challenges[i])
		}
	}
	return result, nil
}

func (s *fakeStore) FindQuota(ctx context.Context, userID string) (*domain.ChallengeQuota, error) {
	quota, ok := s.quotas[userID]
	if !ok {
		return nil, nil
	}
	return &quota, nil
}

func (s *fakeStore) CreateQuota(ctx context.Context, quota *domain.ChallengeQuota) (bool, error) {
	if _, ok := s.quotas[quota.UserID]; ok {
		return false, nil
	}
	s.quotas[quota.UserID] = *quota
	return true, nil
}

func (s *fakeStore) ResetQuota(ctx context.Context, userID string, maxQuota int, now time.Time) error {
	quota, ok := s.quotas[userID]
	if !ok {
		return errors.New("quota row not found")
	}
	quota.QuotaRemaining = maxQuota
	quota.PeriodStart = now
	quota.LastReset = now
	s.quotas[userID] = quota
	return nil
}

func (s *fakeStore) DecrementQuota(ctx context.Context, userID string) (bool, error) {
	if s.decrementErr != nil {
		return false, s.decrementErr
	}
	quota, ok := s.quotas[userID]
	if !ok || quota.QuotaRemaining <= 0 {
		return false, nil
	}
	quota.QuotaRemaining--
	s.quotas[userID] = quota
	return true, nil
}

func (s *fakeStore) Transact(ctx context.Context, fn func(tx domain.ChallengeStore) error) error {
	snapshotQuotas := make(map[string]domain.ChallengeQuota, len(s.quotas))
	for k, v := range s.quotas {
		snapshotQuotas[k] = v
	}
	snapshotChallenges := make([]domain.Challenge, len(s.challenges))
	copy(snapshotChallenges, s.challenges)

	if err := fn(s); err != nil {
		s.quotas = snapshotQuotas
		s.challenges = snapshotChallenges
		return err
	}
	return nil
}
