package auth

import (
	"errors"
	"testing"
	"time"
)

func TestIssueAndExtractSubject_RoundTrip(t *testing.T) {
	t.Parallel()

	tm := NewTokenManager("super-secret", time.Hour)

	token, expiresAt, err := tm.Issue("alice", []string{"ADMIN"})
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	if !expiresAt.After(time.Now()) {
		t.Fatalf("expected future expiry, got %v", expiresAt)
	}

	subject, err := tm.ExtractSubject(token)
	if err != nil {
		t.Fatalf("ExtractSubject error: %v", err)
	}
	if subject != "alice" {
		t.Fatalf("subject mismatch: got %q want %q", subject, "alice")
	}
}

func TestExtractSubject_Expired(t *testing.T) {
	t.Parallel()

	clock := time.Now()
	tm := NewTokenManager("secret", 0).WithClock(func() time.Time { return clock })

	token, _, err := tm.Issue("alice", nil)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	// TTL=0 means the token expires at its own issue instant.
	clock = clock.Add(time.Millisecond)

	_, err = tm.ExtractSubject(token)
	if !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestExtractSubject_WrongSecret(t *testing.T) {
	t.Parallel()

	issuer := NewTokenManager("right-secret", time.Hour)
	verifier := NewTokenManager("wrong-secret", time.Hour)

	token, _, err := issuer.Issue("bob", nil)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	subject, err := verifier.ExtractSubject(token)
	if !errors.Is(err, ErrBadSignature) {
		t.Fatalf("expected ErrBadSignature, got %v", err)
	}
	if subject != "" {
		t.Fatalf("subject of an invalid token leaked: %q", subject)
	}
}

func TestExtractSubject_Malformed(t *testing.T) {
	t.Parallel()

	tm := NewTokenManager("k", time.Hour)

	_, err := tm.ExtractSubject("not.a.jwt")
	if !errors.Is(err, ErrTokenMalformed) {
		t.Fatalf("expected ErrTokenMalformed, got %v", err)
	}
}

func TestIsValid(t *testing.T) {
	t.Parallel()

	tm := NewTokenManager("secret", time.Hour)

	token, _, err := tm.Issue("alice", nil)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	if !tm.IsValid(token, "alice") {
		t.Fatalf("expected token to validate for its own subject")
	}
	if tm.IsValid(token, "mallory") {
		t.Fatalf("token validated for a different subject")
	}
	if tm.IsValid("garbage", "alice") {
		t.Fatalf("garbage token validated")
	}
}

func TestIsValid_ExpiredAtBoundary(t *testing.T) {
	t.Parallel()

	clock := time.Now()
	tm := NewTokenManager("secret", time.Minute).WithClock(func() time.Time { return clock })

	token, _, err := tm.Issue("alice", nil)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	clock = clock.Add(time.Minute + time.Second)
	if tm.IsValid(token, "alice") {
		t.Fatalf("expired token validated")
	}
}
