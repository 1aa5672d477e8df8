package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuscoin/api/internal/apperrors"
)

// jwksServer serves a single RSA key as a JWKS endpoint the way the
// identity provider does
func jwksServer(t *testing.T, kid string, key *rsa.PublicKey) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /.well-known/jwks.json", func(w http.ResponseWriter, r *http.Request) {
		payload := map[string]any{
			"keys": []map[string]string{{
				"kty": "RSA",
				"kid": kid,
				"n":   base64.RawURLEncoding.EncodeToString(key.N.Bytes()),
				"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(key.E)).Bytes()),
			}},
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(payload))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func signIdentityToken(t *testing.T, key *rsa.PrivateKey, kid string, claims identityClaims) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = kid

	signed, err := token.SignedString(key)
	require.NoError(t, err)
	return signed
}

func TestIdentityVerifier(t *testing.T) {
	t.Parallel()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	const kid = "test-kid"
	server := jwksServer(t, kid, &key.PublicKey)

	newVerifier := func() *IdentityVerifier {
		return NewIdentityVerifier(server.URL, NewKeySet(server.URL, time.Minute))
	}

	validClaims := func() identityClaims {
		return identityClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    server.URL,
				Subject:   "user_2abcDEF",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
			},
			Email:     "maria@campus.edu",
			FirstName: "Maria",
			LastName:  "Lopez",
		}
	}

	t.Run("valid token maps claims to identity", func(t *testing.T) {
		v := newVerifier()

		identity, err := v.Verify(t.Context(), signIdentityToken(t, key, kid, validClaims()))

		require.NoError(t, err)
		assert.Equal(t, "user_2abcDEF", identity.ExternalID)
		assert.Equal(t, "maria@campus.edu", identity.Email)
		assert.Equal(t, "Maria Lopez", identity.FullName)
	})

	t.Run("primary email used as fallback", func(t *testing.T) {
		v := newVerifier()
		claims := validClaims()
		claims.Email = ""
		claims.PrimaryEmail = "fallback@campus.edu"

		identity, err := v.Verify(t.Context(), signIdentityToken(t, key, kid, claims))

		require.NoError(t, err)
		assert.Equal(t, "fallback@campus.edu", identity.Email)
	})

	t.Run("no email claim fails", func(t *testing.T) {
		v := newVerifier()
		claims := validClaims()
		claims.Email = ""

		_, err := v.Verify(t.Context(), signIdentityToken(t, key, kid, claims))

		assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	})

	t.Run("expired token fails", func(t *testing.T) {
		v := newVerifier()
		claims := validClaims()
		claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))

		_, err := v.Verify(t.Context(), signIdentityToken(t, key, kid, claims))

		assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	})

	t.Run("wrong issuer fails", func(t *testing.T) {
		v := newVerifier()
		claims := validClaims()
		claims.Issuer = "https://evil.example.com"

		_, err := v.Verify(t.Context(), signIdentityToken(t, key, kid, claims))

		assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	})

	t.Run("unknown kid fails", func(t *testing.T) {
		v := newVerifier()

		_, err := v.Verify(t.Context(), signIdentityToken(t, key, "rotated-away", validClaims()))

		assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	})

	t.Run("token signed with another key fails", func(t *testing.T) {
		v := newVerifier()

		otherKey, err := rsa.GenerateKey(rand.Reader, 2048)
		require.NoError(t, err)

		_, err = v.Verify(t.Context(), signIdentityToken(t, otherKey, kid, validClaims()))

		assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	})
}

func TestKeySet(t *testing.T) {
	t.Parallel()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	t.Run("fetches and caches keys", func(t *testing.T) {
		server := jwksServer(t, "kid-1", &key.PublicKey)
		ks := NewKeySet(server.URL, time.Minute)

		got, err := ks.Key(t.Context(), "kid-1")
		require.NoError(t, err)
		assert.Zero(t, got.N.Cmp(key.N))

		// Second lookup is served from cache even if the server is gone
		server.Close()
		_, err = ks.Key(t.Context(), "kid-1")
		require.NoError(t, err)
	})

	t.Run("unknown kid after refresh fails", func(t *testing.T) {
		server := jwksServer(t, "kid-1", &key.PublicKey)
		ks := NewKeySet(server.URL, time.Minute)

		_, err := ks.Key(t.Context(), "kid-2")
		assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	})

	t.Run("empty issuer fails", func(t *testing.T) {
		ks := NewKeySet("", time.Minute)

		_, err := ks.Key(t.Context(), "kid-1")
		assert.Error(t, err)
	})
}
