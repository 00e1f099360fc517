package service

import (
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"ops-dashboard/internal/auth"
	"ops-dashboard/internal/models"
)

func TestAuthServiceLogin(t *testing.T) {
	s := NewAuthService(auth.Credentials{Username: "admin"}, auth.NewTokens("secret", time.Hour), zap.NewNop())

	resp, err := s.Login("Admin@corp.local", "admin")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if resp.User != "admin" || resp.Token == "" {
		t.Errorf("response = %+v", resp)
	}

	user, err := s.Authenticate(resp.Token)
	if err != nil || user != "admin" {
		t.Errorf("Authenticate = %q, %v", user, err)
	}

	if _, err := s.Login("admin", "nope"); !errors.Is(err, models.ErrUnauthorized) {
		t.Errorf("bad password: got %v, want ErrUnauthorized", err)
	}
}
