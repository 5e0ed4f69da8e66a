package auth

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestNewHMACStrategy_DefaultTTL(t *testing.T) {
	strategy := NewHMACStrategy("secret", Options{})
	if strategy == nil {
		t.Fatal("expected strategy instance")
	}
	if string(strategy.secret) != "secret" {
		t.Fatalf("unexpected secret: %q", string(strategy.secret))
	}
	if strategy.ttl != 24*time.Hour {
		t.Fatalf("unexpected ttl: %s", strategy.ttl)
	}
}

func TestNewHMACStrategy_CustomTTL(t *testing.T) {
	ttl := 2 * time.Hour
	strategy := NewHMACStrategy("secret", Options{TTL: ttl})
	if strategy.ttl != ttl {
		t.Fatalf("unexpected ttl: %s", strategy.ttl)
	}
}

func TestHMACStrategy_IssueAndParse(t *testing.T) {
	strategy := NewHMACStrategy("secret", Options{TTL: time.Minute})
	for _, userID := range []string{"42", "7f9c2ba4-e88f-4d1b-9a5e-3f1c2d4e5a6b", "auth0|user:with:colons"} {
		token, err := strategy.IssueToken(userID)
		if err != nil {
			t.Fatalf("issue token: %v", err)
		}
		got, err := strategy.ParseToken(context.Background(), token)
		if err != nil {
			t.Fatalf("parse token: %v", err)
		}
		if got != userID {
			t.Fatalf("expected %q, got %q", userID, got)
		}
	}
}

func TestHMACStrategy_IssueRejectsEmptyUser(t *testing.T) {
	strategy := NewHMACStrategy("secret", Options{})
	if _, err := strategy.IssueToken(""); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestHMACStrategy_ParseFailures(t *testing.T) {
	strategy := NewHMACStrategy("secret", Options{})
	encode := func(raw string) string { return base64.StdEncoding.EncodeToString([]byte(raw)) }
	signed := func(payload string) string { return encode(fmt.Sprintf("%s:%s", payload, strategy.sign(payload))) }
	future := time.Now().Add(time.Minute).Unix()

	valid, err := strategy.IssueToken("7")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	raw, _ := base64.StdEncoding.DecodeString(valid)
	parts := strings.Split(string(raw), ":")
	parts[len(parts)-1] = "tampered"

	cases := map[string]string{
		"not base64":       "not-base64!",
		"no separators":    encode("onlyone"),
		"single separator": encode("only:two"),
		"tampered":         encode(strings.Join(parts, ":")),
		"invalid expiry":   signed("not-a-number:10"),
		"expired":          signed(fmt.Sprintf("%d:10", time.Now().Add(-time.Minute).Unix())),
		"empty user":       signed(fmt.Sprintf("%d:", future)),
		"other secret":     func() string { tok, _ := NewHMACStrategy("other", Options{}).IssueToken("7"); return tok }(),
	}

	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := strategy.ParseToken(context.Background(), token); !errors.Is(err, ErrInvalidToken) {
				t.Fatalf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestHMACStrategy_Name(t *testing.T) {
	strategy := NewHMACStrategy("secret", Options{})
	if strategy.Name() != "hmac" {
		t.Fatalf("unexpected name: %s", strategy.Name())
	}
}

func TestHMACStrategy_EmptySecretRejectsEverything(t *testing.T) {
	// Anyone can sign with an empty key, so such tokens must never authenticate.
	forged := NewHMACStrategy("", Options{})
	payload := fmt.Sprintf("%d:%s", time.Now().Add(time.Hour).Unix(), "victim")
	token := base64.StdEncoding.EncodeToString([]byte(payload + ":" + forged.sign(payload)))

	if _, err := forged.ParseToken(context.Background(), token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
	if _, err := forged.IssueToken("victim"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected issue to fail without secret, got %v", err)
	}
}
