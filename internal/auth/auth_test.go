package auth

import (
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"ops-dashboard/internal/models"
)

func TestSanitizeUsername(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"twilcox@proterra.com", "twilcox"},
		{"  TWilcox@bus.local ", "twilcox"},
		{"admin", "admin"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := SanitizeUsername(tt.in); got != tt.want {
			t.Errorf("SanitizeUsername(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCredentialsDevFallback(t *testing.T) {
	c := Credentials{Username: "admin"}
	if !c.Check("Admin@corp.local", "admin") {
		t.Error("expected dev fallback to accept admin/admin")
	}
	if c.Check("admin", "wrong") {
		t.Error("expected wrong password to be rejected")
	}
	if c.Check("", "admin") {
		t.Error("expected empty username to be rejected")
	}
}

func TestCredentialsHash(t *testing.T) {
	hash, err := HashPassword("s3cret")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	c := Credentials{Username: "ops", PasswordHash: hash}

	if !c.Check("OPS", "s3cret") {
		t.Error("expected matching credentials to pass")
	}
	if c.Check("ops", "admin") {
		t.Error("expected wrong password to fail")
	}
	if c.Check("admin", "admin") {
		t.Error("dev fallback must be off once a hash is configured")
	}
}

func TestTokensRoundTrip(t *testing.T) {
	tokens := NewTokens("secret", time.Hour)
	signed, expiresAt, err := tokens.Issue("ops")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if time.Until(expiresAt) <= 0 {
		t.Errorf("expiry %v is not in the future", expiresAt)
	}

	user, err := tokens.Verify(signed)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if user != "ops" {
		t.Errorf("user = %q, want ops", user)
	}
}

func TestTokensRejects(t *testing.T) {
	tokens := NewTokens("secret", time.Hour)
	signed, _, err := tokens.Issue("ops")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	other := NewTokens("other", time.Hour)
	if _, err := other.Verify(signed); !errors.Is(err, models.ErrUnauthorized) {
		t.Errorf("wrong secret: got %v, want ErrUnauthorized", err)
	}

	expired := NewTokens("secret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, _, err := expired.Issue("ops")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := tokens.Verify(old); !errors.Is(err, models.ErrUnauthorized) {
		t.Errorf("expired token: got %v, want ErrUnauthorized", err)
	}
}

func TestBearerToken(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	if _, err := BearerToken(req); !errors.Is(err, models.ErrUnauthorized) {
		t.Errorf("missing header: got %v", err)
	}

	req.Header.Set("Authorization", "Bearer abc.def")
	tok, err := BearerToken(req)
	if err != nil || tok != "abc.def" {
		t.Errorf("BearerToken = %q, %v", tok, err)
	}
}
