// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid token")
)

// Auth issues and verifies the bearer tokens API clients (flow engines,
// agents) present on every request.
type Auth struct {
	secret []byte
	expiry time.Duration
}

type Claims struct {
	ClientID string `json:"client_id"`
	jwt.RegisteredClaims
}

// New returns an Auth signing with secret. A zero expiry issues tokens that
// never expire, which is what long-lived flow engine credentials need.
func New(secret string, expiry time.Duration) *Auth {
	return &Auth{secret: []byte(secret), expiry: expiry}
}

// GenerateToken signs a token identifying clientID.
func (a *Auth) GenerateToken(clientID string) (string, error) {
	now := time.Now()
	claims := Claims{
		ClientID: clientID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  clientID,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if a.expiry > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(a.expiry))
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (a *Auth) ValidateToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.ClientID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Authenticate reads the token from the Authorization header. Both the
// "Bearer" and the legacy "Token" schemes are accepted.
func (a *Auth) Authenticate(r *http.Request) (*Claims, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return nil, ErrMissingToken
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 {
		return nil, ErrInvalidToken
	}
	scheme := parts[0]
	if !strings.EqualFold(scheme, "bearer") && !strings.EqualFold(scheme, "token") {
		return nil, ErrInvalidToken
	}
	return a.ValidateToken(strings.TrimSpace(parts[1]))
}
