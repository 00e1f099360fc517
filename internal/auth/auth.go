// Package auth checks dashboard credentials and issues the bearer tokens that
// guard mutating routes.
package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"ops-dashboard/internal/models"
)

const (
	devUsername = "admin"
	devPassword = "admin"
	issuer      = "opsdash"
)

// SanitizeUsername trims the input, drops an @domain suffix and lower-cases
// it, so "JDoe@corp.local " and "jdoe" name the same user.
func SanitizeUsername(raw string) string {
	username := strings.TrimSpace(raw)
	if i := strings.Index(username, "@"); i >= 0 {
		username = username[:i]
	}
	return strings.ToLower(username)
}

// HashPassword produces the value AUTH_PASSWORD_HASH expects.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

type Credentials struct {
	Username     string
	PasswordHash string
}

// Check reports whether the login matches. Without a configured hash only
// the development account admin/admin is accepted.
func (c Credentials) Check(username, password string) bool {
	username = SanitizeUsername(username)
	if username == "" || password == "" {
		return false
	}
	if c.PasswordHash == "" {
		return username == devUsername && password == devPassword
	}
	if username != SanitizeUsername(c.Username) {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte(password)) == nil
}

// Tokens issues and verifies HS256 bearer tokens.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokens(secret string, ttl time.Duration) *Tokens {
	return &Tokens{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (t *Tokens) Issue(username string) (string, time.Time, error) {
	now := t.now()
	expiresAt := now.Add(t.ttl)
	claims := jwt.RegisteredClaims{
		Subject:   username,
		Issuer:    issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Verify returns the username the token was issued to.
func (t *Tokens) Verify(tokenStr string) (string, error) {
	var claims jwt.RegisteredClaims
	token, err := jwt.ParseWithClaims(tokenStr, &claims, func(*jwt.Token) (interface{}, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrUnauthorized, err)
	}
	if !token.Valid || claims.Subject == "" {
		return "", fmt.Errorf("%w: invalid token", models.ErrUnauthorized)
	}
	return claims.Subject, nil
}

var errNoBearer = errors.New("missing bearer token")

// BearerToken extracts the token from an Authorization header.
func BearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", fmt.Errorf("%w: %v", models.ErrUnauthorized, errNoBearer)
	}
	return strings.TrimSpace(parts[1]), nil
}
