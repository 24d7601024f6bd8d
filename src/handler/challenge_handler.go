package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pyfast/backend/src/domain"
	"github.com/pyfast/backend/src/service"
	"github.com/rs/zerolog"
)

type ChallengeHandler struct {
	challengeService *service.ChallengeService
}

func NewChallengeHandler(challengeService *service.ChallengeService) *ChallengeHandler {
	return &ChallengeHandler{
		challengeService: challengeService,
	}
}

func (h *ChallengeHandler) logger(ctx context.Context) *zerolog.Logger {
	l := zerolog.Ctx(ctx).With().Str("handler", "challenge").Logger()
	return &l
}

// GenerateChallengeRequest represents the request payload for challenge generation
type GenerateChallengeRequest struct {
	Difficulty string `json:"difficulty" binding:"required"`
}

// GenerateChallengeResponse represents the response for a generated challenge
type GenerateChallengeResponse struct {
	ID              string    `json:"id"`
	Difficulty      string    `json:"difficulty"`
	Title           string    `json:"title"`
	Options         []string  `json:"options"`
	CorrectAnswerID int       `json:"correct_answer_id"`
	Explanation     string    `json:"explanation"`
	Timestamp       time.Time `json:"timestamp"`
	IsFallback      bool      `json:"is_fallback"`
	QuotaConsumed   bool      `json:"quota_consumed"`
}

// GenerateChallenge handles POST /api/generate-challenge
func (h *ChallengeHandler) GenerateChallenge(c *gin.Context) {
	logger := h.logger(c.Request.Context()).With().Str("func", "GenerateChallenge").Logger()

	userID, ok := userIDFromContext(c)
	if !ok {
		respondWithError(c, domain.NewError(domain.ErrorCodeAuthNotAuthenticated, errors.New("user id missing from context"), domain.WithMsg("Authentication required")))
		return
	}

	var req GenerateChallengeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error().Err(err).Msg("invalid request payload")
		respondWithError(c, domain.NewError(domain.ErrorCodeParameterInvalid, err, domain.WithMsg("Invalid request payload")))
		return
	}

	result, err := h.challengeService.GenerateForUser(c.Request.Context(), userID, req.Difficulty)
	if err != nil {
		logger.Error().Err(err).Msg("failed to generate challenge")
		respondWithError(c, err)
		return
	}

	options, err := result.Challenge.GetOptions()
	if err != nil {
		respondWithError(c, domain.NewError(domain.ErrorCodeInternalProcess, err, domain.WithMsg("Failed to read challenge options")))
		return
	}

	response := GenerateChallengeResponse{
		ID:              result.Challenge.ID.String(),
		Difficulty:      result.Challenge.Difficulty,
		Title:           result.Challenge.Title,
		Options:         options,
		CorrectAnswerID: result.Challenge.CorrectAnswerID,
		Explanation:     result.Challenge.Explanation,
		Timestamp:       result.Challenge.DateCreated,
		IsFallback:      result.IsFallback,
		QuotaConsumed:   result.QuotaConsumed,
	}

	logger.Info().
		Str("challenge_id", response.ID).
		Str("user_id", userID).
		Str("difficulty", req.Difficulty).
		Bool("is_fallback", result.IsFallback).
		Msg("challenge generated successfully")

	respondWithSuccessAndStatus(c, http.StatusOK, response, "Challenge generated successfully")
}

// GetQuota handles GET /api/quota
func (h *ChallengeHandler) GetQuota(c *gin.Context) {
	logger := h.logger(c.Request.Context()).With().Str("func", "GetQuota").Logger()

	userID, ok := userIDFromContext(c)
	if !ok {
		respondWithError(c, domain.NewError(domain.ErrorCodeAuthNotAuthenticated, errors.New("user id missing from context"), domain.WithMsg("Authentication required")))
		return
	}

	quota, err := h.challengeService.QuotaForUser(c.Request.Context(), userID)
	if err != nil {
		logger.Error().Err(err).Msg("failed to load quota")
		respondWithError(c, err)
		return
	}

	respondWithSuccess(c, quota)
}

// GetHistory handles GET /api/my-history
func (h *ChallengeHandler) GetHistory(c *gin.Context) {
	logger := h.logger(c.Request.Context()).With().Str("func", "GetHistory").Logger()

	userID, ok := userIDFromContext(c)
	if !ok {
		respondWithError(c, domain.NewError(domain.ErrorCodeAuthNotAuthenticated, errors.New("user id missing from context"), domain.WithMsg("Authentication required")))
		return
	}

	challenges, err := h.challengeService.HistoryForUser(c.Request.Context(), userID)
	if err != nil {
		logger.Error().Err(err).Msg("failed to load challenge history")
		respondWithError(c, err)
		return
	}

	respondWithSuccess(c, gin.H{"challenges": challenges})
}
