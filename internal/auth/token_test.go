package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/viper"

	"github.com/Go-Digital-Alchemy-Repos/Power-Plunge-20-sub001/internal/config"
)

const testSecret = "test-secret-key-32bytes-long!!"

func newTestTokenService(t *testing.T) *TokenService {
	t.Helper()
	ts, err := NewTokenService([]byte(testSecret), 15*time.Minute, "plunge")
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	return ts
}

func TestIssueAndValidateAccessToken(t *testing.T) {
	ts := newTestTokenService(t)

	token, err := ts.IssueAccessToken("merchandiser-7", "Dana")
	if err != nil {
		t.Fatalf("IssueAccessToken: %v", err)
	}

	claims, err := ts.ValidateAccessToken(token)
	if err != nil {
		t.Fatalf("ValidateAccessToken: %v", err)
	}
	if claims.ActorID != "merchandiser-7" || claims.Subject != "merchandiser-7" {
		t.Errorf("actor = %q, subject = %q", claims.ActorID, claims.Subject)
	}
	if claims.Name != "Dana" || claims.Issuer != "plunge" {
		t.Errorf("claims = %+v", claims)
	}
}

func TestIssueAccessToken_MissingActor(t *testing.T) {
	if _, err := newTestTokenService(t).IssueAccessToken("", "nobody"); !errors.Is(err, ErrMissingActor) {
		t.Errorf("IssueAccessToken() = %v, want ErrMissingActor", err)
	}
}

func TestNewTokenService_WeakSecret(t *testing.T) {
	for _, secret := range []string{"", "short"} {
		if _, err := NewTokenService([]byte(secret), time.Minute, "plunge"); !errors.Is(err, ErrWeakSecret) {
			t.Errorf("secret %q: err = %v, want ErrWeakSecret", secret, err)
		}
	}
}

func TestValidateAccessToken_Rejects(t *testing.T) {
	ts := newTestTokenService(t)

	other, err := NewTokenService([]byte("another-secret-of-enough-length"), 15*time.Minute, "plunge")
	if err != nil {
		t.Fatal(err)
	}
	foreignIssuer, err := NewTokenService([]byte(testSecret), 15*time.Minute, "someone-else")
	if err != nil {
		t.Fatal(err)
	}
	expired := newTestTokenService(t)
	expired.now = func() time.Time { return time.Now().Add(-time.Hour) }

	wrongSecret, _ := other.IssueAccessToken("alice", "")
	wrongIssuer, _ := foreignIssuer.IssueAccessToken("alice", "")
	stale, _ := expired.IssueAccessToken("alice", "")

	noActor := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "plunge",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	})
	anonymous, _ := noActor.SignedString([]byte(testSecret))

	noneAlg := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{ActorID: "alice"})
	unsigned, _ := noneAlg.SignedString(jwt.UnsafeAllowNoneSignatureType)

	tests := map[string]string{
		"garbage":      "not.a.jwt",
		"wrong secret": wrongSecret,
		"wrong issuer": wrongIssuer,
		"expired":      stale,
		"no actor":     anonymous,
		"alg none":     unsigned,
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := ts.ValidateAccessToken(token); err == nil {
				t.Error("ValidateAccessToken() accepted the token")
			}
		})
	}
}

func TestNewTokenServiceFromConfig(t *testing.T) {
	v := viper.New()
	v.Set("auth.jwt_secret", testSecret)
	v.Set("auth.access_token_ttl", "30m")
	v.Set("auth.issuer", "plunge")

	ts, err := NewTokenServiceFromConfig(config.New(v))
	if err != nil {
		t.Fatalf("NewTokenServiceFromConfig: %v", err)
	}
	if ts.AccessTokenTTL() != 30*time.Minute {
		t.Errorf("AccessTokenTTL = %v", ts.AccessTokenTTL())
	}

	v.Set("auth.jwt_secret", "")
	if _, err := NewTokenServiceFromConfig(config.New(v)); !errors.Is(err, ErrWeakSecret) {
		t.Errorf("empty secret: err = %v, want ErrWeakSecret", err)
	}

	v.Set("auth.jwt_secret", testSecret)
	v.Set("auth.access_token_ttl", "0s")
	if _, err := NewTokenServiceFromConfig(config.New(v)); err == nil {
		t.Error("zero ttl accepted")
	}
}
