package services

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, subject string, email string, expiresIn time.Duration) string {
	t.Helper()
	claims := authClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func newVerifier(t *testing.T) TokenVerifier {
	t.Helper()
	v, err := NewTokenVerifier(testLogger(t), testSecret)
	if err != nil {
		t.Fatalf("NewTokenVerifier: %v", err)
	}
	return v
}

func TestVerifierRequiresSecret(t *testing.T) {
	if _, err := NewTokenVerifier(testLogger(t), "  "); err == nil {
		t.Fatalf("expected error for blank secret")
	}
}

func TestVerifyValidToken(t *testing.T) {
	v := newVerifier(t)
	userID := uuid.New()
	token := signToken(t, testSecret, userID.String(), "owner@example.com", time.Hour)

	ident, err := v.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if ident.UserID != userID || ident.Email != "owner@example.com" {
		t.Fatalf("identity = %+v", ident)
	}
}

func TestVerifyRejectsBadTokens(t *testing.T) {
	v := newVerifier(t)
	userID := uuid.New().String()

	cases := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not.a.jwt"},
		{"wrong secret", signToken(t, "other-secret", userID, "a@b.co", time.Hour)},
		{"expired", signToken(t, testSecret, userID, "a@b.co", -time.Minute)},
		{"non-uuid subject", signToken(t, testSecret, "user-42", "a@b.co", time.Hour)},
	}
	for _, c := range cases {
		if _, err := v.Verify(c.token); err == nil {
			t.Fatalf("%s: expected rejection", c.name)
		}
	}
}

func TestTokenSessionReportsCurrentIdentity(t *testing.T) {
	v := newVerifier(t)
	ts := NewTokenSession(v)

	if _, err := ts.Current(nil); err == nil {
		t.Fatalf("empty session should have no identity")
	}

	userID := uuid.New()
	ts.SetToken(signToken(t, testSecret, userID.String(), "owner@example.com", time.Hour))
	ident, err := ts.Current(nil)
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if ident.UserID != userID {
		t.Fatalf("identity = %+v", ident)
	}

	ts.SetToken("")
	if _, err := ts.Current(nil); err == nil {
		t.Fatalf("signed-out session should have no identity")
	}
}

func TestTokenSessionNotifiesOnFlips(t *testing.T) {
	v := newVerifier(t)
	ts := NewTokenSession(v)

	var events []bool
	ts.OnChange(func(authed bool) { events = append(events, authed) })

	token := signToken(t, testSecret, uuid.NewString(), "a@b.co", time.Hour)

	ts.SetToken(token) // false -> true
	ts.SetToken(token) // still true, no event
	ts.SetToken("")    // true -> false
	ts.SetToken("")    // still false, no event

	want := []bool{true, false}
	if len(events) != len(want) {
		t.Fatalf("events = %v, want %v", events, want)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Fatalf("events = %v, want %v", events, want)
		}
	}
}
