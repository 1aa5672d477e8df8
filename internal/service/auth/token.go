package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/campuscoin/api/internal/apperrors"
	"github.com/campuscoin/api/internal/models"
)

const DefaultSessionTTL = 7 * 24 * time.Hour

type SessionClaims struct {
	jwt.RegisteredClaims
	UserID uuid.UUID `json:"uid"`
}

// TokenManager issues and parses internal HS256 session tokens
type TokenManager struct {
	key string
	alg jwt.SigningMethod
	ttl time.Duration
}

func NewTokenManager(secretKey string, ttl time.Duration) TokenManager {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}

	return TokenManager{
		key: secretKey,
		alg: jwt.SigningMethodHS256,
		ttl: ttl,
	}
}

func (m TokenManager) Generate(user models.User) (token string, expiresAt time.Time, err error) {
	now := time.Now().Truncate(time.Second)
	expiresAt = now.Add(m.ttl)

	sessionToken := jwt.NewWithClaims(
		m.alg,
		SessionClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				ID:        uuid.NewString(),
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(expiresAt),
				Subject:   user.ID.String(),
			},
			UserID: user.ID,
		},
	)

	token, err = sessionToken.SignedString([]byte(m.key))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("error while signing session token. Err: %w", err)
	}

	return token, expiresAt, nil
}

// Parse validates a session token and returns the user id it names
func (m TokenManager) Parse(tokenString string) (uuid.UUID, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(t *jwt.Token) (any, error) { return []byte(m.key), nil },
		jwt.WithValidMethods([]string{m.alg.Alg()}),
	)
	if err != nil || !token.Valid {
		return uuid.Nil, fmt.Errorf("%w: %v", apperrors.ErrUnauthorized, err)
	}

	return claims.UserID, nil
}
