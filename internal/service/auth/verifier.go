package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/campuscoin/api/internal/apperrors"
	"github.com/campuscoin/api/internal/models"
)

type identityClaims struct {
	jwt.RegisteredClaims
	Email        string `json:"email"`
	PrimaryEmail string `json:"primary_email_address"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
}

// IdentityVerifier checks externally issued RS256 tokens against the
// provider's JWKS and maps claims to an Identity.
type IdentityVerifier struct {
	issuer string
	keys   *KeySet
}

func NewIdentityVerifier(issuer string, keys *KeySet) *IdentityVerifier {
	return &IdentityVerifier{
		issuer: strings.TrimRight(issuer, "/"),
		keys:   keys,
	}
}

func (v *IdentityVerifier) Verify(ctx context.Context, tokenString string) (models.Identity, error) {
	claims := &identityClaims{}
	token, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(t *jwt.Token) (any, error) {
			kid, _ := t.Header["kid"].(string)
			if kid == "" {
				return nil, errors.New("token has no key id")
			}
			return v.keys.Key(ctx, kid)
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithIssuer(v.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return models.Identity{}, fmt.Errorf("%w: %v", apperrors.ErrUnauthorized, err)
	}

	email := claims.Email
	if email == "" {
		email = claims.PrimaryEmail
	}
	if email == "" {
		return models.Identity{}, fmt.Errorf("%w: token carries no email claim", apperrors.ErrUnauthorized)
	}

	return models.Identity{
		ExternalID: claims.Subject,
		Email:      email,
		FullName:   strings.TrimSpace(claims.FirstName + " " + claims.LastName),
	}, nil
}
