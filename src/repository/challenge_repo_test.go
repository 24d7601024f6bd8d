package repository

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/pyfast/backend/src/domain"
	"github.com/pyfast/backend/src/testutil"
)

func testChallenge(t *testing.T, userID string, title string) *domain.Challenge {
	options, err := json.Marshal([]string{"a", "b", "c", "d"})
	if err != nil {
		t.Fatalf("Failed to marshal options: %v", err)
	}
	return &domain.Challenge{
		Difficulty:      domain.DifficultyEasy,
		CreatedBy:       userID,
		Title:           title,
		Options:         options,
		CorrectAnswerID: 1,
		Explanation:     "because",
	}
}

func TestChallengeRepository_CreateChallenge(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewChallengeRepository(db)
	ctx := context.Background()

	challenge := testChallenge(t, "user_1", "Sample question")
	if err := repo.CreateChallenge(ctx, challenge); err != nil {
		t.Fatalf("CreateChallenge failed: %v", err)
	}

	if challenge.ID == uuid.Nil {
		t.Error("Challenge ID should be generated")
	}
	if challenge.DateCreated.IsZero() {
		t.Error("DateCreated should be set")
	}

	// Read the row back and verify the options survived the jsonb round trip
	stored, err := repo.FindChallengeById(ctx, challenge.ID.String())
	if err != nil {
		t.Fatalf("FindChallengeById failed: %v", err)
	}

	options, err := stored.GetOptions()
	if err != nil {
		t.Fatalf("GetOptions failed: %v", err)
	}
	if len(options) != domain.ChallengeOptionCount {
		t.Errorf("Expected %d options, got %d", domain.ChallengeOptionCount, len(options))
	}
	if stored.CorrectAnswerID != 1 {
		t.Errorf("Expected correct_answer_id 1, got %d", stored.CorrectAnswerID)
	}
}

func TestChallengeRepository_FindChallengesByUser_NewestFirst(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewChallengeRepository(db)
	ctx := context.Background()

	titles := []string{"first", "second", "third"}
	for _, title := range titles {
		if err := repo.CreateChallenge(ctx, testChallenge(t, "user_1", title)); err != nil {
			t.Fatalf("CreateChallenge failed: %v", err)
		}
	}
	if err := repo.CreateChallenge(ctx, testChallenge(t, "user_2", "other user")); err != nil {
		t.Fatalf("CreateChallenge failed: %v", err)
	}

	challenges, err := repo.FindChallengesByUser(ctx, "user_1")
	if err != nil {
		t.Fatalf("FindChallengesByUser failed: %v", err)
	}

	if len(challenges) != 3 {
		t.Fatalf("Expected 3 challenges, got %d", len(challenges))
	}
	for i := 1; i < len(challenges); i++ {
		if challenges[i].DateCreated.After(challenges[i-1].DateCreated) {
			t.Errorf("Challenges not ordered newest first at index %d", i)
		}
	}
	for _, challenge := range challenges {
		if challenge.CreatedBy != "user_1" {
			t.Errorf("Got challenge belonging to %s", challenge.CreatedBy)
		}
	}
}
