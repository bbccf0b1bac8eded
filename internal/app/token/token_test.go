package token

import (
	"errors"
	"testing"
	"time"
)

func TestSessionSigner_RoundTrip(t *testing.T) {
	signer := NewSessionSigner([]byte("test-secret"), 0)

	issued := time.Now().Truncate(time.Second)
	tok, err := signer.Issue(Claims{
		UserID:   "user-1",
		Username: "ana",
		IssuedAt: issued,
	})
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	claims, err := signer.Validate(tok)
	if err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	if claims.UserID != "user-1" {
		t.Errorf("expected user id user-1, got %q", claims.UserID)
	}
	if claims.Username != "ana" {
		t.Errorf("expected username ana, got %q", claims.Username)
	}
	if !claims.IssuedAt.Equal(issued) {
		t.Errorf("expected issued at %v, got %v", issued, claims.IssuedAt)
	}
}

func TestSessionSigner_Tampered(t *testing.T) {
	signer := NewSessionSigner([]byte("test-secret"), 0)

	tok, err := signer.Issue(Claims{UserID: "user-1", Username: "ana", IssuedAt: time.Now()})
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	// Flip a character in the payload half.
	tampered := []byte(tok)
	if tampered[0] == 'A' {
		tampered[0] = 'B'
	} else {
		tampered[0] = 'A'
	}

	if _, err := signer.Validate(string(tampered)); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestSessionSigner_WrongSecret(t *testing.T) {
	signer := NewSessionSigner([]byte("test-secret"), 0)
	other := NewSessionSigner([]byte("other-secret"), 0)

	tok, err := signer.Issue(Claims{UserID: "user-1", IssuedAt: time.Now()})
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	if _, err := other.Validate(tok); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestSessionSigner_TTL(t *testing.T) {
	old := Claims{UserID: "user-1", IssuedAt: time.Now().Add(-2 * time.Hour)}

	expiring := NewSessionSigner([]byte("test-secret"), time.Hour)
	tok, err := expiring.Issue(old)
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}
	if _, err := expiring.Validate(tok); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected expired token to be invalid, got %v", err)
	}

	// Zero TTL disables expiry entirely.
	forever := NewSessionSigner([]byte("test-secret"), 0)
	tok, err = forever.Issue(old)
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}
	if _, err := forever.Validate(tok); err != nil {
		t.Fatalf("expected old token to stay valid with zero TTL, got %v", err)
	}
}

func TestSessionSigner_MissingSecret(t *testing.T) {
	signer := NewSessionSigner(nil, 0)
	if _, err := signer.Issue(Claims{UserID: "user-1"}); !errors.Is(err, ErrMissingSecret) {
		t.Fatalf("expected ErrMissingSecret, got %v", err)
	}
}

func TestRedirectSigner_BoundToLink(t *testing.T) {
	signer := NewRedirectSigner([]byte("test-secret"), time.Minute)

	tok, err := signer.Issue("link-1")
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	if err := signer.Validate("link-1", tok); err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	if err := signer.Validate("link-2", tok); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected token bound to link-1 to fail for link-2, got %v", err)
	}
}

func TestRedirectSigner_Expired(t *testing.T) {
	signer := NewRedirectSigner([]byte("test-secret"), -time.Minute)

	tok, err := signer.Issue("link-1")
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}
	if err := signer.Validate("link-1", tok); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected expired token to be invalid, got %v", err)
	}
}
