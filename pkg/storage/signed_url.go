package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrTokenFormat is returned for tokens that are not four dot-separated parts.
	ErrTokenFormat = errors.New("invalid token format")
	// ErrTokenSignature is returned when the HMAC does not match.
	ErrTokenSignature = errors.New("invalid token signature")
	// ErrTokenExpired is returned for well-signed tokens past their expiry.
	ErrTokenExpired = errors.New("token expired")
)

// SignedURLSigner creates and validates signed feed tokens. A token binds a subject
// (the subscriber) to a scope (the feed it unlocks) until it expires.
type SignedURLSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSignedURLSigner constructs a signer with the provided secret and default TTL.
func NewSignedURLSigner(secret string, ttl time.Duration) *SignedURLSigner {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SignedURLSigner{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Generate returns a token for subject and scope using the default TTL.
func (s *SignedURLSigner) Generate(subject, scope string) (string, time.Time, error) {
	return s.GenerateWithTTL(subject, scope, s.ttl)
}

// GenerateWithTTL returns a token valid for ttl.
func (s *SignedURLSigner) GenerateWithTTL(subject, scope string, ttl time.Duration) (string, time.Time, error) {
	if subject == "" || scope == "" {
		return "", time.Time{}, fmt.Errorf("subject and scope required")
	}
	if strings.Contains(subject, ".") {
		return "", time.Time{}, fmt.Errorf("subject must not contain '.'")
	}
	if len(s.secret) == 0 {
		return "", time.Time{}, fmt.Errorf("signing secret missing")
	}
	if ttl <= 0 {
		ttl = s.ttl
	}
	expiresAt := s.now().Add(ttl).Truncate(time.Second)
	encodedScope := base64.RawURLEncoding.EncodeToString([]byte(scope))
	ts := strconv.FormatInt(expiresAt.Unix(), 10)
	token := strings.Join([]string{subject, ts, encodedScope, s.sign(subject, ts, encodedScope)}, ".")
	return token, expiresAt, nil
}

// Parse validates a token and returns the embedded metadata.
// When allowExpired is true, the timestamp check is skipped.
func (s *SignedURLSigner) Parse(token string, allowExpired bool) (subject, scope string, expiresAt time.Time, err error) {
	parts := strings.Split(token, ".")
	if len(parts) != 4 || parts[0] == "" {
		return "", "", time.Time{}, ErrTokenFormat
	}
	subject, ts, encodedScope, signature := parts[0], parts[1], parts[2], parts[3]

	expUnix, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return "", "", time.Time{}, ErrTokenFormat
	}
	rawScope, err := base64.RawURLEncoding.DecodeString(encodedScope)
	if err != nil {
		return "", "", time.Time{}, ErrTokenFormat
	}

	expected := s.sign(subject, ts, encodedScope)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return "", "", time.Time{}, ErrTokenSignature
	}
	expiresAt = time.Unix(expUnix, 0)
	if !allowExpired && s.now().After(expiresAt) {
		return "", "", time.Time{}, ErrTokenExpired
	}
	return subject, string(rawScope), expiresAt, nil
}

func (s *SignedURLSigner) sign(subject, ts, encodedScope string) string {
	mac := hmac.New(sha256.New, s.secret)
	_, _ = mac.Write([]byte(subject + "|" + ts + "|" + encodedScope))
	return hex.EncodeToString(mac.Sum(nil))
}
