package service

import (
	"fmt"

	"go.uber.org/zap"

	"ops-dashboard/internal/auth"
	"ops-dashboard/internal/models"
)

type AuthService struct {
	credentials auth.Credentials
	tokens      *auth.Tokens
	logger      *zap.Logger
}

func NewAuthService(credentials auth.Credentials, tokens *auth.Tokens, logger *zap.Logger) *AuthService {
	if credentials.PasswordHash == "" {
		logger.Warn("no password hash configured, using development login admin/admin")
	}
	return &AuthService{credentials: credentials, tokens: tokens, logger: logger}
}

func (s *AuthService) Login(username, password string) (*models.LoginResponse, error) {
	user := auth.SanitizeUsername(username)
	if !s.credentials.Check(username, password) {
		s.logger.Warn("login failed", zap.String("user", user))
		return nil, fmt.Errorf("invalid username or password: %w", models.ErrUnauthorized)
	}

	token, expiresAt, err := s.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("error signing token: %w", err)
	}

	s.logger.Info("user logged in", zap.String("user", user))
	return &models.LoginResponse{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// Authenticate validates a bearer token and returns its user.
func (s *AuthService) Authenticate(token string) (string, error) {
	return s.tokens.Verify(token)
}
