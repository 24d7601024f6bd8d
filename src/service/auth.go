package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pyfast/backend/src/domain"
	"github.com/rs/zerolog"
)

// TokenCache caches verified token -> user id mappings. Cache failures are
// independent of auth: errors are logged and full verification proceeds.
type TokenCache interface {
	GetUserID(ctx context.Context, token string) (string, error)
	SetUserID(ctx context.Context, token string, userID string) error
}

// TokenService resolves a stable user id from a bearer session token issued
// by the identity provider. Tokens are HS256-signed JWTs whose subject claim
// carries the user id.
type TokenService struct {
	secret []byte
	cache  TokenCache
}

// NewTokenService builds a token service. cache may be nil, in which case
// every request pays for full signature verification.
func NewTokenService(secret string, cache TokenCache) *TokenService {
	return &TokenService{
		secret: []byte(secret),
		cache:  cache,
	}
}

func (s *TokenService) logger(ctx context.Context) *zerolog.Logger {
	l := zerolog.Ctx(ctx).With().Str("component", "token-service").Logger()
	return &l
}

// VerifyToken validates a session token and returns the user id it was
// issued for. Previously verified tokens are served from the cache.
func (s *TokenService) VerifyToken(ctx context.Context, tokenString string) (string, error) {
	if tokenString == "" {
		return "", domain.NewError(
			domain.ErrorCodeAuthNotAuthenticated,
			errors.New("missing session token"),
			domain.WithMsg("Authorization token required"),
		)
	}

	if s.cache != nil {
		userID, err := s.cache.GetUserID(ctx, tokenString)
		if err != nil {
			s.logger(ctx).Warn().Err(err).Msg("token cache read failed")
		} else if userID != "" {
			return userID, nil
		}
	}

	userID, err := s.verify(tokenString)
	if err != nil {
		return "", domain.NewError(
			domain.ErrorCodeAuthNotAuthenticated,
			err,
			domain.WithMsg("Invalid session token"),
		)
	}

	if s.cache != nil {
		if err := s.cache.SetUserID(ctx, tokenString, userID); err != nil {
			s.logger(ctx).Warn().Err(err).Msg("token cache write failed")
		}
	}

	return userID, nil
}

func (s *TokenService) verify(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return "", errors.New("invalid token")
	}

	subject, err := token.Claims.GetSubject()
	if err != nil || subject == "" {
		return "", errors.New("token has no subject claim")
	}

	return subject, nil
}
