package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var ErrInvalidToken = errors.New("invalid auth token")

// HMACStrategy verifies session tokens signed with a secret shared with the identity provider.
// Token layout before base64: "<expires>:<userID>:<signature>".
type HMACStrategy struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewHMACStrategy builds HMACStrategy with provided secret and options.
func NewHMACStrategy(secret string, opts Options) *HMACStrategy {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &HMACStrategy{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// IssueToken generates a signed token for the user, as the identity provider would.
func (s *HMACStrategy) IssueToken(userID string) (string, error) {
	if userID == "" || len(s.secret) == 0 {
		return "", ErrInvalidToken
	}
	expires := s.now().Add(s.ttl).Unix()
	payload := fmt.Sprintf("%d:%s", expires, userID)
	token := fmt.Sprintf("%s:%s", payload, s.sign(payload))
	return base64.StdEncoding.EncodeToString([]byte(token)), nil
}

// ParseToken validates token and returns the encoded user id. Without a secret every
// token is rejected.
func (s *HMACStrategy) ParseToken(_ context.Context, token string) (string, error) {
	if len(s.secret) == 0 {
		return "", ErrInvalidToken
	}
	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return "", ErrInvalidToken
	}

	decoded := string(raw)
	first := strings.Index(decoded, ":")
	last := strings.LastIndex(decoded, ":")
	if first < 0 || first == last {
		return "", ErrInvalidToken
	}

	payload := decoded[:last]
	if !hmac.Equal([]byte(s.sign(payload)), []byte(decoded[last+1:])) {
		return "", ErrInvalidToken
	}

	expires, err := strconv.ParseInt(decoded[:first], 10, 64)
	if err != nil {
		return "", ErrInvalidToken
	}
	if time.Unix(expires, 0).Before(s.now()) {
		return "", ErrInvalidToken
	}

	userID := decoded[first+1 : last]
	if userID == "" {
		return "", ErrInvalidToken
	}
	return userID, nil
}

func (s *HMACStrategy) Name() string {
	return "hmac"
}

func (s *HMACStrategy) sign(payload string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(payload))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
