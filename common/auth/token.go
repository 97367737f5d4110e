package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// Token types carried in the "typ" claim.
const (
	TypeUser  = "user"
	TypeAdmin = "admin"
)

var ErrNoSecret = errors.New("JWT secret not configured")

// Claims is the subset of token claims the API relies on.
type Claims struct {
	Subject string
	Email   string
	Type    string
}

// TokenManager issues and validates HS256 tokens.
type TokenManager struct {
	secret   []byte
	userTTL  time.Duration
	adminTTL time.Duration
	now      func() time.Time
}

func NewTokenManager(secret string, userTTL, adminTTL time.Duration) *TokenManager {
	return &TokenManager{
		secret:   []byte(secret),
		userTTL:  userTTL,
		adminTTL: adminTTL,
		now:      time.Now,
	}
}

// IssueUser signs a token for a storefront customer.
func (m *TokenManager) IssueUser(userID, email string) (string, error) {
	return m.issue(userID, email, TypeUser, m.userTTL)
}

// IssueAdmin signs a token for the configured administrator.
func (m *TokenManager) IssueAdmin(email string) (string, error) {
	return m.issue("admin", email, TypeAdmin, m.adminTTL)
}

func (m *TokenManager) issue(sub, email, typ string, ttl time.Duration) (string, error) {
	if len(m.secret) == 0 {
		return "", ErrNoSecret
	}
	now := m.now()
	claims := jwt.MapClaims{
		"sub":   sub,
		"email": email,
		"typ":   typ,
		"iat":   now.Unix(),
		"exp":   now.Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Parse validates tokenStr. If expectedType is non-empty, the "typ" claim must match it.
func (m *TokenManager) Parse(tokenStr, expectedType string) (*Claims, error) {
	if len(m.secret) == 0 {
		return nil, ErrNoSecret
	}
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || token == nil || !token.Valid {
		return nil, fmt.Errorf("invalid or expired token")
	}

	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}
	claims := &Claims{}
	claims.Subject, _ = mc["sub"].(string)
	claims.Email, _ = mc["email"].(string)
	claims.Type, _ = mc["typ"].(string)
	if claims.Subject == "" {
		return nil, fmt.Errorf("token has no subject")
	}
	if expectedType != "" && claims.Type != expectedType {
		return nil, fmt.Errorf("invalid token type")
	}
	return claims, nil
}
