package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pyfast/backend/src/domain"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
)

const generationSystemPrompt = `You are an expert coding challenge creator.
Your task is to generate a coding question with multiple choice answers.
The question should be appropriate for the specified difficulty level.

For easy questions: Focus on basic syntax, simple operations, or common programming concepts.
For medium questions: Cover intermediate concepts like data structures, algorithms, or language features.
For hard questions: Include advanced topics, design patterns, optimization techniques, or complex algorithms.

Return the challenge in the following JSON structure:
{
    "title": "The question title",
    "options": ["Option 1", "Option 2", "Option 3", "Option 4"],
    "correct_answer_id": 0,
    "explanation": "Detailed explanation of why the correct answer is right"
}

The correct_answer_id is the index of the correct answer (0-3).
Make sure the options are plausible but with only one clearly correct answer.`

// GeneratorConfig holds the settings for the upstream completion backend.
type GeneratorConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// ChallengeGeneratorService wraps the completion backend behind a
// generate-or-fallback contract: callers always get a usable draft.
type ChallengeGeneratorService struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

func NewChallengeGeneratorService(config GeneratorConfig) *ChallengeGeneratorService {
	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	return &ChallengeGeneratorService{
		client:  openai.NewClientWithConfig(clientConfig),
		model:   config.Model,
		timeout: config.Timeout,
	}
}

func (s *ChallengeGeneratorService) logger(ctx context.Context) *zerolog.Logger {
	l := zerolog.Ctx(ctx).With().Str("component", "challenge-generator").Logger()
	return &l
}

// Generate produces a challenge draft for the given difficulty. It never
// fails outward: any upstream error, timeout or unusable response is
// recovered by returning the fixed fallback draft.
func (s *ChallengeGeneratorService) Generate(ctx context.Context, difficulty string) *domain.ChallengeDraft {
	draft, err := s.generateWithAI(ctx, difficulty)
	if err != nil {
		s.logger(ctx).Warn().
			Err(err).
			Str("difficulty", difficulty).
			Msg("AI generation failed, using fallback challenge")
		return FallbackDraft()
	}

	return draft
}

func (s *ChallengeGeneratorService) generateWithAI(ctx context.Context, difficulty string) (*domain.ChallengeDraft, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: s.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: generationSystemPrompt,
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: fmt.Sprintf("Generate a %s difficulty coding challenge.", difficulty),
				},
			},
			ResponseFormat: &openai.ChatCompletionResponseFormat{
				Type: openai.ChatCompletionResponseFormatTypeJSONObject,
			},
			Temperature: 0.7,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("completion response contains no choices")
	}

	return parseDraft(resp.Choices[0].Message.Content)
}

// parseDraft validates the model output against the required structure:
// all four fields present, exactly four options, answer index in range.
func parseDraft(content string) (*domain.ChallengeDraft, error) {
	var payload struct {
		Title           *string  `json:"title"`
		Options         []string `json:"options"`
		CorrectAnswerID *int     `json:"correct_answer_id"`
		Explanation     *string  `json:"explanation"`
	}

	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return nil, fmt.Errorf("failed to parse completion content: %w", err)
	}

	if payload.Title == nil || *payload.Title == "" {
		return nil, fmt.Errorf("missing required field: title")
	}
	if payload.Explanation == nil || *payload.Explanation == "" {
		return nil, fmt.Errorf("missing required field: explanation")
	}
	if payload.CorrectAnswerID == nil {
		return nil, fmt.Errorf("missing required field: correct_answer_id")
	}
	if len(payload.Options) != domain.ChallengeOptionCount {
		return nil, fmt.Errorf("expected %d options, got %d", domain.ChallengeOptionCount, len(payload.Options))
	}
	if *payload.CorrectAnswerID < 0 || *payload.CorrectAnswerID >= domain.ChallengeOptionCount {
		return nil, fmt.Errorf("correct_answer_id %d out of range", *payload.CorrectAnswerID)
	}

	return &domain.ChallengeDraft{
		Title:           *payload.Title,
		Options:         payload.Options,
		CorrectAnswerID: *payload.CorrectAnswerID,
		Explanation:     *payload.Explanation,
		IsFallback:      false,
	}, nil
}

// FallbackDraft returns the fixed challenge served when generation fails.
// The content is constant: not user-specific and not difficulty-specific.
func FallbackDraft() *domain.ChallengeDraft {
	return &domain.ChallengeDraft{
		Title: "Basic Python List Operation",
		Options: []string{
			"my_list.append(5)",
			"my_list.add(5)",
			"my_list.push(5)",
			"my_list.insert(5)",
		},
		CorrectAnswerID: 0,
		Explanation:     "In Python, append() is the correct method to add an element to the end of a list.",
		IsFallback:      true,
	}
}
