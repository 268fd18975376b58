package auth

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"sync"
	"time"

	"github.com/aws/aws-xray-sdk-go/xray"
	"golang.org/x/time/rate"
)

var (
	errUnknownKey = errors.New("signing key not in key set")
	errEmptyKeys  = errors.New("key set has no usable RSA keys")
)

type jwk struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	Use string `json:"use"`
	Alg string `json:"alg"`
	N   string `json:"n"`
	E   string `json:"e"`
}

type jwksResponse struct {
	Keys []jwk `json:"keys"`
}

// keySet holds the pool's signing keys. Keys are refetched once the TTL
// lapses; an unknown kid triggers at most one early refetch per minute so a
// stream of forged tokens cannot hammer the pool endpoint.
type keySet struct {
	url    string
	ttl    time.Duration
	client *http.Client
	early  *rate.Limiter

	mu        sync.RWMutex
	byKid     map[string]*rsa.PublicKey
	fetchedAt time.Time
}

func newKeySet(url string, ttl time.Duration) *keySet {
	return &keySet{
		url:    url,
		ttl:    ttl,
		client: xray.Client(&http.Client{Timeout: 5 * time.Second}),
		early:  rate.NewLimiter(rate.Every(time.Minute), 1),
		byKid:  map[string]*rsa.PublicKey{},
	}
}

func (s *keySet) key(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	key, fresh := s.lookup(kid)
	if key != nil && fresh {
		return key, nil
	}
	if fresh && !s.early.Allow() {
		return nil, fmt.Errorf("kid %q: %w", kid, errUnknownKey)
	}
	if err := s.fetch(ctx); err != nil {
		return nil, err
	}
	if key, _ = s.lookup(kid); key == nil {
		return nil, fmt.Errorf("kid %q: %w", kid, errUnknownKey)
	}
	return key, nil
}

func (s *keySet) lookup(kid string) (*rsa.PublicKey, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fresh := !s.fetchedAt.IsZero() && time.Since(s.fetchedAt) < s.ttl
	return s.byKid[kid], fresh
}

func (s *keySet) fetch(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch jwks: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch jwks: unexpected status %d", resp.StatusCode)
	}
	var body jwksResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("decode jwks: %w", err)
	}

	byKid := make(map[string]*rsa.PublicKey, len(body.Keys))
	for _, k := range body.Keys {
		if k.Kty != "RSA" || k.Kid == "" || (k.Use != "" && k.Use != "sig") {
			continue
		}
		pub, err := rsaFromJWK(k.N, k.E)
		if err != nil {
			continue
		}
		byKid[k.Kid] = pub
	}
	if len(byKid) == 0 {
		return errEmptyKeys
	}

	s.mu.Lock()
	s.byKid = byKid
	s.fetchedAt = time.Now()
	s.mu.Unlock()
	return nil
}

func rsaFromJWK(n, e string) (*rsa.PublicKey, error) {
	if n == "" || e == "" {
		return nil, errors.New("jwk: missing modulus or exponent")
	}
	modulus, err := base64.RawURLEncoding.DecodeString(n)
	if err != nil {
		return nil, fmt.Errorf("jwk modulus: %w", err)
	}
	exponent, err := base64.RawURLEncoding.DecodeString(e)
	if err != nil {
		return nil, fmt.Errorf("jwk exponent: %w", err)
	}
	exp := new(big.Int).SetBytes(exponent)
	if exp.Sign() == 0 || !exp.IsInt64() || exp.Int64() > 1<<31-1 {
		return nil, errors.New("jwk: invalid exponent")
	}
	return &rsa.PublicKey{N: new(big.Int).SetBytes(modulus), E: int(exp.Int64())}, nil
}
