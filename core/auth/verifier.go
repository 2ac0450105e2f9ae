package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// Verifier turns a raw bearer token into a resolved Identity, or fails.
type Verifier interface {
	Verify(ctx context.Context, raw string) (*Identity, error)
}

// JWKSVerifier validates RS256 tokens against the identity provider's
// published key set, checking signature, issuer, audience and expiry.
// The key set is fetched lazily and cached between requests.
type JWKSVerifier struct {
	issuer   string
	audience string
	jwksURL  string
	cache    *jwk.Cache
}

// NewJWKSVerifier registers jwksURL with a background-refreshing cache.
// ctx bounds the cache's refresh goroutine, not individual lookups.
func NewJWKSVerifier(ctx context.Context, issuer, audience, jwksURL string) (*JWKSVerifier, error) {
	if strings.TrimSpace(issuer) == "" || strings.TrimSpace(audience) == "" || strings.TrimSpace(jwksURL) == "" {
		return nil, errors.New("auth: issuer, audience and jwks url are all required")
	}
	cache := jwk.NewCache(ctx)
	if err := cache.Register(jwksURL, jwk.WithMinRefreshInterval(15*time.Minute)); err != nil {
		return nil, fmt.Errorf("register jwks url: %w", err)
	}
	return &JWKSVerifier{issuer: issuer, audience: audience, jwksURL: jwksURL, cache: cache}, nil
}

func (v *JWKSVerifier) Verify(ctx context.Context, raw string) (*Identity, error) {
	keySet, err := v.cache.Get(ctx, v.jwksURL)
	if err != nil {
		return nil, fmt.Errorf("fetch signing keys: %w", err)
	}
	token, err := jwt.Parse([]byte(raw),
		jwt.WithKeySet(keySet),
		jwt.WithValidate(true),
		jwt.WithIssuer(v.issuer),
		jwt.WithAudience(v.audience),
		jwt.WithAcceptableSkew(10*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("verify token: %w", err)
	}
	sub := token.Subject()
	if sub == "" {
		return nil, errors.New("token has no subject")
	}
	id := &Identity{Subject: sub}
	if email, ok := token.Get("email"); ok {
		if s, ok := email.(string); ok {
			id.Email = s
		}
	}
	if name, ok := token.Get("name"); ok {
		if s, ok := name.(string); ok {
			id.Name = s
		}
	}
	return id, nil
}
