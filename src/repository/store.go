package repository

import (
	"context"

	"github.com/pyfast/backend/src/domain"
	"gorm.io/gorm"
)

// Store bundles the per-entity repositories over a single gorm handle so a
// request can commit challenge and quota writes in one transaction. It
// implements domain.ChallengeStore.
type Store struct {
	db *gorm.DB
	*ChallengeRepository
	*QuotaRepository
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:                  db,
		ChallengeRepository: NewChallengeRepository(db),
		QuotaRepository:     NewQuotaRepository(db),
	}
}

// Transact runs fn inside a database transaction. The store passed to fn is
// bound to the transaction; returning an error rolls everything back.
func (s *Store) Transact(ctx context.Context, fn func(tx domain.ChallengeStore) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}
