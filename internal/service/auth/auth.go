package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/campuscoin/api/internal/apperrors"
	"github.com/campuscoin/api/internal/models"
)

type userService interface {
	Onboard(ctx context.Context, identity models.Identity) (models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (models.User, error)
	GetByExternalID(ctx context.Context, externalID string) (models.User, error)
}

// Session is what a successful login hands back to the client
type Session struct {
	User      models.User
	Token     string
	ExpiresAt time.Time
}

// AuthService is the identity gateway: it exchanges verified external
// tokens for accounts and internal session tokens, and authenticates
// incoming requests carrying either kind.
type AuthService struct {
	verifier *IdentityVerifier
	tokens   TokenManager
	users    userService
}

func NewService(verifier *IdentityVerifier, tokens TokenManager, users userService) (*AuthService, error) {
	if verifier == nil || users == nil {
		return nil, errors.New("verifier and user service must not be nil")
	}

	return &AuthService{
		verifier: verifier,
		tokens:   tokens,
		users:    users,
	}, nil
}

// Login verifies an external token, onboards the account if needed and
// issues an internal session token. fullName, when provided by the
// client, wins over the name asserted in the token.
func (s *AuthService) Login(ctx context.Context, externalToken string, fullName string) (Session, error) {
	identity, err := s.verifier.Verify(ctx, externalToken)
	if err != nil {
		return Session{}, err
	}

	if fullName != "" {
		identity.FullName = fullName
	}

	user, err := s.users.Onboard(ctx, identity)
	if err != nil {
		return Session{}, err
	}

	token, expiresAt, err := s.tokens.Generate(user)
	if err != nil {
		return Session{}, err
	}

	return Session{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

// Auth authenticates a request. Internal HS256 session tokens and
// external RS256 tokens are both accepted; the kind is dispatched on
// the token's alg header.
func (s *AuthService) Auth(ctx context.Context, r *http.Request) (models.User, error) {
	tokenString, err := bearerToken(r)
	if err != nil {
		return models.User{}, err
	}

	unverified, _, err := jwt.NewParser().ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return models.User{}, fmt.Errorf("%w: %v", apperrors.ErrUnauthorized, err)
	}

	var user models.User
	if alg, _ := unverified.Header["alg"].(string); alg == jwt.SigningMethodRS256.Alg() {
		user, err = s.authExternal(ctx, tokenString)
	} else {
		user, err = s.authSession(ctx, tokenString)
	}
	if err != nil {
		return models.User{}, err
	}

	if !user.IsActive {
		return models.User{}, fmt.Errorf("%w: account is deactivated", apperrors.ErrUnauthorized)
	}

	return user, nil
}

func (s *AuthService) authExternal(ctx context.Context, tokenString string) (models.User, error) {
	identity, err := s.verifier.Verify(ctx, tokenString)
	if err != nil {
		return models.User{}, err
	}

	user, err := s.users.GetByExternalID(ctx, identity.ExternalID)
	if errors.Is(err, apperrors.ErrUserNotFound) {
		return s.users.Onboard(ctx, identity)
	}

	return user, err
}

func (s *AuthService) authSession(ctx context.Context, tokenString string) (models.User, error) {
	userID, err := s.tokens.Parse(tokenString)
	if err != nil {
		return models.User{}, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, apperrors.ErrUserNotFound) {
		return models.User{}, fmt.Errorf("%w: unknown session user", apperrors.ErrUnauthorized)
	}

	return user, err
}

func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")

	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return "", fmt.Errorf("%w: missing bearer token", apperrors.ErrUnauthorized)
	}

	return token, nil
}
