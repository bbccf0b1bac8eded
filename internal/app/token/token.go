// Package token implements the signed opaque tokens the product uses in
// place of real JWTs: a session token carrying {userId, username, issuedAt}
// claims, and a short-lived redirect token bound to a single link id so a
// countdown page can fire its visit exactly once.
package token

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidToken  = errors.New("invalid or expired token")
	ErrMissingSecret = errors.New("token secret is not configured")
)

// Claims is the payload embedded in a session token.
type Claims struct {
	UserID   string    `json:"uid"`
	Username string    `json:"username"`
	IssuedAt time.Time `json:"iat"`
}

// SessionSigner issues and validates session tokens. A zero TTL disables
// expiry checking entirely.
type SessionSigner struct {
	secret []byte
	ttl    time.Duration
}

// NewSessionSigner returns a signer for session tokens.
func NewSessionSigner(secret []byte, ttl time.Duration) *SessionSigner {
	return &SessionSigner{secret: secret, ttl: ttl}
}

// Issue mints a token for the given claims.
func (s *SessionSigner) Issue(claims Claims) (string, error) {
	if len(s.secret) == 0 {
		return "", ErrMissingSecret
	}

	payload, err := json.Marshal(claims)
	if err != nil {
		return "", err
	}

	payloadEnc := base64.RawURLEncoding.EncodeToString(payload)
	signature := sign(s.secret, payload)
	sigEnc := base64.RawURLEncoding.EncodeToString(signature[:16])
	return fmt.Sprintf("%s.%s", payloadEnc, sigEnc), nil
}

// Validate checks signature integrity and, when a TTL is configured, that the
// token has not outlived it. On success the embedded claims are returned.
func (s *SessionSigner) Validate(tok string) (*Claims, error) {
	if len(s.secret) == 0 {
		return nil, ErrMissingSecret
	}

	parts := strings.SplitN(tok, ".", 2)
	if len(parts) != 2 {
		return nil, ErrInvalidToken
	}

	payload, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return nil, ErrInvalidToken
	}
	sigProvided, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil || len(sigProvided) != 16 {
		return nil, ErrInvalidToken
	}

	expected := sign(s.secret, payload)
	if !hmac.Equal(sigProvided, expected[:16]) {
		return nil, ErrInvalidToken
	}

	var claims Claims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, ErrInvalidToken
	}

	if s.ttl > 0 && time.Now().After(claims.IssuedAt.Add(s.ttl)) {
		return nil, ErrInvalidToken
	}

	return &claims, nil
}

// RedirectSigner issues compact tokens bound to a link id, used as the
// continuation step of the countdown redirect page.
type RedirectSigner struct {
	secret []byte
	ttl    time.Duration
}

// NewRedirectSigner returns a signer for redirect continuation tokens.
func NewRedirectSigner(secret []byte, ttl time.Duration) *RedirectSigner {
	return &RedirectSigner{secret: secret, ttl: ttl}
}

// Issue mints a token for the provided link id.
func (s *RedirectSigner) Issue(linkID string) (string, error) {
	if len(s.secret) == 0 {
		return "", ErrMissingSecret
	}

	payload := make([]byte, 12) // 4 bytes expiry + 8 random bytes
	expires := uint32(time.Now().Add(s.ttl).Unix())
	binary.BigEndian.PutUint32(payload[:4], expires)
	if _, err := rand.Read(payload[4:]); err != nil {
		return "", err
	}

	payloadEnc := base64.RawURLEncoding.EncodeToString(payload)
	signature := signBound(s.secret, linkID, payload)
	sigEnc := base64.RawURLEncoding.EncodeToString(signature[:16])
	return fmt.Sprintf("%s.%s", payloadEnc, sigEnc), nil
}

// Validate checks signature integrity and TTL of the token for the link id.
func (s *RedirectSigner) Validate(linkID, tok string) error {
	if len(s.secret) == 0 {
		return ErrMissingSecret
	}

	parts := strings.SplitN(tok, ".", 2)
	if len(parts) != 2 {
		return ErrInvalidToken
	}

	payload, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil || len(payload) < 4 {
		return ErrInvalidToken
	}
	sigProvided, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil || len(sigProvided) != 16 {
		return ErrInvalidToken
	}

	expected := signBound(s.secret, linkID, payload)
	if !hmac.Equal(sigProvided, expected[:16]) {
		return ErrInvalidToken
	}

	expires := binary.BigEndian.Uint32(payload[:4])
	if time.Now().Unix() > int64(expires) {
		return ErrInvalidToken
	}

	return nil
}

func sign(secret, payload []byte) []byte {
	mac := hmac.New(sha256.New, secret)
	mac.Write(payload)
	return mac.Sum(nil)
}

func signBound(secret []byte, subject string, payload []byte) []byte {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(subject))
	mac.Write([]byte("|"))
	mac.Write(payload)
	return mac.Sum(nil)
}
