package auth

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/campuscoin/api/internal/apperrors"
)

const DefaultKeySetTTL = 15 * time.Minute

// KeySet caches the identity provider's JWKS. It is an explicit
// injected dependency with a TTL; an unknown kid forces a refresh once
// to pick up rotated keys.
type KeySet struct {
	issuer string
	ttl    time.Duration
	client *http.Client

	mu        sync.Mutex
	keys      map[string]*rsa.PublicKey
	fetchedAt time.Time
}

func NewKeySet(issuer string, ttl time.Duration) *KeySet {
	if ttl <= 0 {
		ttl = DefaultKeySetTTL
	}

	return &KeySet{
		issuer: strings.TrimRight(issuer, "/"),
		ttl:    ttl,
		client: &http.Client{},
	}
}

// Key returns the RSA public key for kid, fetching or refreshing the
// key set as needed.
func (ks *KeySet) Key(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	ks.mu.Lock()
	defer ks.mu.Unlock()

	fresh := time.Since(ks.fetchedAt) < ks.ttl
	if key, ok := ks.keys[kid]; ok && fresh {
		return key, nil
	}

	if err := ks.refresh(ctx); err != nil {
		return nil, err
	}

	if key, ok := ks.keys[kid]; ok {
		return key, nil
	}

	return nil, fmt.Errorf("%w: unknown signing key %q", apperrors.ErrUnauthorized, kid)
}

type jwk struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	N   string `json:"n"`
	E   string `json:"e"`
}

func (ks *KeySet) refresh(ctx context.Context) error {
	if ks.issuer == "" {
		return fmt.Errorf("identity issuer is not configured")
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ks.issuer+"/.well-known/jwks.json", nil)
	if err != nil {
		return fmt.Errorf("failed to create jwks request: %w", err)
	}

	resp, err := ks.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch jwks: %w", err)
	}
	defer resp.Body.Close() // nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d fetching jwks", resp.StatusCode)
	}

	var payload struct {
		Keys []jwk `json:"keys"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return fmt.Errorf("failed to decode jwks: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey, len(payload.Keys))
	for _, k := range payload.Keys {
		if k.Kty != "RSA" || k.Kid == "" {
			continue
		}

		key, err := k.publicKey()
		if err != nil {
			return fmt.Errorf("bad jwk %q: %w", k.Kid, err)
		}
		keys[k.Kid] = key
	}

	ks.keys = keys
	ks.fetchedAt = time.Now()

	return nil
}

func (k jwk) publicKey() (*rsa.PublicKey, error) {
	nb, err := base64.RawURLEncoding.DecodeString(k.N)
	if err != nil {
		return nil, fmt.Errorf("modulus: %w", err)
	}
	eb, err := base64.RawURLEncoding.DecodeString(k.E)
	if err != nil {
		return nil, fmt.Errorf("exponent: %w", err)
	}

	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(nb),
		E: int(new(big.Int).SetBytes(eb).Int64()),
	}, nil
}
