package repository

import (
	"context"

	"github.com/pyfast/backend/src/domain"
	"gorm.io/gorm"
)

type ChallengeRepository struct {
	db *gorm.DB
}

func NewChallengeRepository(db *gorm.DB) *ChallengeRepository {
	return &ChallengeRepository{db: db}
}

// CreateChallenge inserts a new challenge row and fills in the generated
// ID and creation timestamp.
func (r *ChallengeRepository) CreateChallenge(ctx context.Context, challenge *domain.Challenge) error {
	if err := r.db.WithContext(ctx).Create(challenge).Error; err != nil {
		return err
	}
	return nil
}

// FindChallengesByUser retrieves all challenges created by a user,
// newest first.
func (r *ChallengeRepository) FindChallengesByUser(ctx context.Context, userID string) ([]domain.Challenge, error) {
	var challenges []domain.Challenge
	if err := r.db.WithContext(ctx).
		Where("created_by = ?", userID).
		Order("date_created DESC").
		Find(&challenges).Error; err != nil {
		return nil, err
	}
	return challenges, nil
}

// FindChallengeById retrieves a single challenge by its ID.
func (r *ChallengeRepository) FindChallengeById(ctx context.Context, id string) (*domain.Challenge, error) {
	var challenge domain.Challenge
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&challenge).Error; err != nil {
		return nil, err
	}
	return &challenge, nil
}
