package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenProvider returns the bearer token attached to each API call. An empty
// token means the request is sent without an Authorization header.
type TokenProvider func(ctx context.Context) (string, error)

// StaticToken always returns the same token.
func StaticToken(token string) TokenProvider {
	return func(context.Context) (string, error) {
		return token, nil
	}
}

// NoToken sends requests unauthenticated.
func NoToken() TokenProvider {
	return StaticToken("")
}

const (
	tokenTTL     = 72 * time.Hour
	refreshSlack = 5 * time.Minute
)

// DevTokenProvider mints HS256 tokens for a fixed subject, the same shape the
// development server verifies. Tokens are reused until close to expiry.
type DevTokenProvider struct {
	secret []byte
	userID string
	now    func() time.Time

	mu      sync.Mutex
	token   string
	expires time.Time
}

func NewDevTokenProvider(secret, userID string) *DevTokenProvider {
	return &DevTokenProvider{secret: []byte(secret), userID: userID, now: time.Now}
}

// Token satisfies TokenProvider when passed as p.Token.
func (p *DevTokenProvider) Token(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	if p.token != "" && now.Add(refreshSlack).Before(p.expires) {
		return p.token, nil
	}

	token, err := GenerateToken(p.secret, p.userID, now)
	if err != nil {
		return "", err
	}
	p.token = token
	p.expires = now.Add(tokenTTL)
	return token, nil
}

// GenerateToken signs a token for userID issued at now.
func GenerateToken(secret []byte, userID string, now time.Time) (string, error) {
	if len(secret) == 0 {
		return "", errors.New("signing secret is empty")
	}
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ParseToken verifies a token and returns its subject.
func ParseToken(secret []byte, tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", err
	}
	if !token.Valid || claims.Subject == "" {
		return "", errors.New("invalid token")
	}
	return claims.Subject, nil
}
