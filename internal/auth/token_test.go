package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret"

func TestIssueAndParse(t *testing.T) {
	iss := NewIssuer(testSecret, 0)

	tok, err := iss.Issue("alice")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	sub, err := iss.Parse(tok)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if sub != "alice" {
		t.Errorf("subject = %q, want alice", sub)
	}
}

func TestIssue_SevenDayExpiry(t *testing.T) {
	iss := NewIssuer(testSecret, 0)
	fixed := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	iss.now = func() time.Time { return fixed }

	tok, err := iss.Issue("alice")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tok, claims); err != nil {
		t.Fatalf("ParseUnverified: %v", err)
	}
	if got := claims.ExpiresAt.Sub(claims.IssuedAt.Time); got != 7*24*time.Hour {
		t.Errorf("exp - iat = %s, want 168h", got)
	}
}

func TestParse_Rejects(t *testing.T) {
	iss := NewIssuer(testSecret, time.Hour)
	valid, err := iss.Issue("alice")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	expired := func() string {
		old := NewIssuer(testSecret, time.Hour)
		old.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		tok, err := old.Issue("alice")
		if err != nil {
			t.Fatalf("Issue: %v", err)
		}
		return tok
	}()

	sign := func(method jwt.SigningMethod, claims jwt.Claims) string {
		tok, err := jwt.NewWithClaims(method, claims).SignedString([]byte(testSecret))
		if err != nil {
			t.Fatalf("sign: %v", err)
		}
		return tok
	}
	future := jwt.NewNumericDate(time.Now().Add(time.Hour))

	// Flip one character of the signature.
	parts := strings.Split(valid, ".")
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	tests := map[string]string{
		"empty":         "",
		"garbage":       "not.a.token",
		"tampered":      tampered,
		"expired":       expired,
		"wrong secret":  mustIssue(t, NewIssuer("other-secret", time.Hour), "alice"),
		"wrong alg":     sign(jwt.SigningMethodHS384, jwt.RegisteredClaims{Subject: "alice", ExpiresAt: future}),
		"no expiry":     sign(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "alice"}),
		"empty subject": sign(jwt.SigningMethodHS256, jwt.RegisteredClaims{ExpiresAt: future}),
	}
	for name, tok := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := iss.Parse(tok); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("Parse: got %v, want ErrInvalidToken", err)
			}
		})
	}
}

func mustIssue(t *testing.T, iss *Issuer, username string) string {
	t.Helper()
	tok, err := iss.Issue(username)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	return tok
}

func TestIdentityContext(t *testing.T) {
	if _, ok := IdentityFromContext(context.Background()); ok {
		t.Error("expected no identity in empty context")
	}
	ctx := WithIdentity(context.Background(), "alice")
	u, ok := IdentityFromContext(ctx)
	if !ok || u != "alice" {
		t.Errorf("IdentityFromContext = %q, %v", u, ok)
	}
}
