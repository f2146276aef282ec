package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"makerspace/internal/user"
)

func TestTokens_IssueVerify(t *testing.T) {
	now := time.Unix(1700000000, 0)
	tokens := NewTokens("test_secret", "makerspace", time.Hour).WithClock(func() time.Time { return now })

	s, exp, err := tokens.Issue(user.User{ID: "u1", Role: user.RoleAdmin, Email: "a@example.com"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if !exp.Equal(now.Add(time.Hour)) {
		t.Fatalf("expiry mismatch: %v", exp)
	}

	c, err := tokens.Verify(s)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if c.Subject != "u1" || c.Role != "admin" || c.Email != "a@example.com" {
		t.Fatalf("claims mismatch: %+v", c)
	}
}

func TestTokens_Expired(t *testing.T) {
	now := time.Unix(1700000000, 0)
	tokens := NewTokens("test_secret", "makerspace", time.Minute).WithClock(func() time.Time { return now })
	s, _, err := tokens.Issue(user.User{ID: "u1"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	later := tokens.WithClock(func() time.Time { return now.Add(2 * time.Minute) })
	if _, err := later.VerifyToken(s); err == nil {
		t.Fatalf("expected expired token to fail")
	}
}

func TestTokens_RejectsWrongSecretAndIssuer(t *testing.T) {
	a := NewTokens("secret_a", "makerspace", time.Hour)
	b := NewTokens("secret_b", "makerspace", time.Hour)
	other := NewTokens("secret_a", "someone-else", time.Hour)

	s, _, err := a.Issue(user.User{ID: "u1"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := b.Verify(s); err == nil {
		t.Fatalf("expected signature mismatch")
	}
	if _, err := other.Verify(s); err == nil {
		t.Fatalf("expected issuer mismatch")
	}
}

func TestTokens_RejectsOtherAlgorithms(t *testing.T) {
	claims := Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "u1",
		Issuer:    "makerspace",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("test_secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := NewTokens("test_secret", "makerspace", time.Hour).Verify(s); err == nil {
		t.Fatalf("expected HS512 token to be rejected")
	}
}
