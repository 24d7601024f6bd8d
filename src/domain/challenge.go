package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Difficulty levels understood by the generation prompt. The caller-supplied
// value is forwarded to the model verbatim, so unknown values are not
// rejected here.
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// ChallengeOptionCount is the number of answer options every challenge carries.
const ChallengeOptionCount = 4

// Challenge represents a persisted multiple-choice coding challenge.
// Rows are immutable once created.
type Challenge struct {
	ID              uuid.UUID       `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	Difficulty      string          `gorm:"type:varchar(32);not null" json:"difficulty"`
	CreatedBy       string          `gorm:"type:varchar(255);not null;index" json:"created_by"`
	Title           string          `gorm:"type:text;not null" json:"title"`
	Options         json.RawMessage `gorm:"type:jsonb;not null" json:"options"`
	CorrectAnswerID int             `gorm:"not null" json:"correct_answer_id"`
	Explanation     string          `gorm:"type:text;not null" json:"explanation"`
	DateCreated     time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"date_created"`
}

func (Challenge) TableName() string {
	return "challenges"
}

// GetOptions returns the stored options as a typed slice
func (c *Challenge) GetOptions() ([]string, error) {
	var options []string
	if err := json.Unmarshal(c.Options, &options); err != nil {
		return nil, fmt.Errorf("failed to unmarshal challenge options: %w", err)
	}
	return options, nil
}

// ChallengeDraft is the transient output of the generator. It is consumed
// immediately to build a Challenge and is never persisted directly.
type ChallengeDraft struct {
	Title           string   `json:"title"`
	Options         []string `json:"options"`
	CorrectAnswerID int      `json:"correct_answer_id"`
	Explanation     string   `json:"explanation"`
	IsFallback      bool     `json:"is_fallback"`
}

// NewChallengeFromDraft builds a persistable Challenge from a generated draft.
func NewChallengeFromDraft(draft *ChallengeDraft, userID string, difficulty string) (*Challenge, error) {
	optionsJSON, err := json.Marshal(draft.Options)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal challenge options: %w", err)
	}

	return &Challenge{
		Difficulty:      difficulty,
		CreatedBy:       userID,
		Title:           draft.Title,
		Options:         optionsJSON,
		CorrectAnswerID: draft.CorrectAnswerID,
		Explanation:     draft.Explanation,
	}, nil
}

// GenerationResult pairs the persisted challenge with flags describing how it
// was produced.
type GenerationResult struct {
	Challenge     *Challenge
	IsFallback    bool
	QuotaConsumed bool
}
