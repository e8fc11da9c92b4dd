// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-0123456789"

func TestGenerateAndValidateToken(t *testing.T) {
	a := New(testSecret, time.Hour)

	token, err := a.GenerateToken("rapidpro")
	require.NoError(t, err)

	claims, err := a.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "rapidpro", claims.ClientID)
	assert.Equal(t, "rapidpro", claims.Subject)
	require.NotNil(t, claims.ExpiresAt)
}

func TestNonExpiringToken(t *testing.T) {
	a := New(testSecret, 0)

	token, err := a.GenerateToken("turn")
	require.NoError(t, err)

	claims, err := a.ValidateToken(token)
	require.NoError(t, err)
	assert.Nil(t, claims.ExpiresAt)
}

func TestValidateToken_Rejects(t *testing.T) {
	a := New(testSecret, time.Hour)
	other := New("another-secret-0123456789", time.Hour)

	foreign, err := other.GenerateToken("rapidpro")
	require.NoError(t, err)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		ClientID: "rapidpro",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})
	expiredStr, err := expired.SignedString([]byte(testSecret))
	require.NoError(t, err)

	anonymous := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{})
	anonymousStr, err := anonymous.SignedString([]byte(testSecret))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"wrong secret", foreign},
		{"expired", expiredStr},
		{"no client id", anonymousStr},
		{"garbage", "not-a-jwt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := a.ValidateToken(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestAuthenticate(t *testing.T) {
	a := New(testSecret, time.Hour)
	token, err := a.GenerateToken("rapidpro")
	require.NoError(t, err)

	tests := []struct {
		name    string
		header  string
		wantErr error
	}{
		{"bearer", "Bearer " + token, nil},
		{"token scheme", "Token " + token, nil},
		{"lowercase", "bearer " + token, nil},
		{"missing", "", ErrMissingToken},
		{"basic", "Basic dXNlcjpwYXNz", ErrInvalidToken},
		{"no scheme", token, ErrInvalidToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/api/v1/mqr-faq/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			claims, err := a.Authenticate(req)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "rapidpro", claims.ClientID)
		})
	}
}
