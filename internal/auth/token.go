// Package auth identifies the actor behind settings writes. Actors present a
// signed HS256 access token; the subject is the actor id recorded in the
// audit trail.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Go-Digital-Alchemy-Repos/Power-Plunge-20-sub001/internal/config"
)

// MinSecretLength is the shortest accepted signing secret, in bytes.
const MinSecretLength = 16

var (
	// ErrWeakSecret is returned when the signing secret is missing or short.
	ErrWeakSecret = fmt.Errorf("jwt secret must be at least %d bytes", MinSecretLength)
	// ErrMissingActor is returned when a token is requested without an actor.
	ErrMissingActor = errors.New("actor id is required")
)

// Claims holds the JWT payload for access tokens.
type Claims struct {
	jwt.RegisteredClaims
	ActorID string `json:"aid"`
	Name    string `json:"name,omitempty"`
}

// TokenService issues and validates access tokens.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

// NewTokenService creates a TokenService with the given signing secret,
// token lifetime and issuer.
func NewTokenService(secret []byte, ttl time.Duration, issuer string) (*TokenService, error) {
	if len(secret) < MinSecretLength {
		return nil, ErrWeakSecret
	}
	return &TokenService{
		secret: secret,
		ttl:    ttl,
		issuer: issuer,
		now:    time.Now,
	}, nil
}

// NewTokenServiceFromConfig reads auth.jwt_secret, auth.access_token_ttl and
// auth.issuer.
func NewTokenServiceFromConfig(cfg config.Config) (*TokenService, error) {
	ttl := cfg.GetDuration("auth.access_token_ttl")
	if ttl <= 0 {
		return nil, fmt.Errorf("auth.access_token_ttl must be positive, got %v", ttl)
	}
	ts, err := NewTokenService([]byte(cfg.GetString("auth.jwt_secret")), ttl, cfg.GetString("auth.issuer"))
	if err != nil {
		return nil, fmt.Errorf("auth.jwt_secret: %w", err)
	}
	return ts, nil
}

// IssueAccessToken signs a token for actorID. name is informational.
func (s *TokenService) IssueAccessToken(actorID, name string) (string, error) {
	if actorID == "" {
		return "", ErrMissingActor
	}
	now := s.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actorID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			Issuer:    s.issuer,
		},
		ActorID: actorID,
		Name:    name,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return signed, nil
}

// ValidateAccessToken parses and validates a token, returning its claims.
func (s *TokenService) ValidateAccessToken(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(_ *jwt.Token) (any, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	if claims.ActorID == "" || claims.ActorID != claims.Subject {
		return nil, errors.New("token does not name an actor")
	}
	return claims, nil
}

// AccessTokenTTL returns the configured token lifetime.
func (s *TokenService) AccessTokenTTL() time.Duration {
	return s.ttl
}
