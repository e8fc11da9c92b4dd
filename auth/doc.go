// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth issues and verifies API client tokens.

# Tokens

Every /api/v1 route requires a JWT signed with the configured secret (HS256):

	a := auth.New(cfg.JWTSecret, 0)
	token, err := a.GenerateToken("rapidpro")

Tokens carry the client id and, when an expiry is configured, an exp claim.
Flow engines are provisioned with non-expiring tokens minted by the
"mqr-hub token <client-id>" command.

# Request Authentication

	claims, err := a.Authenticate(r)

Accepts "Authorization: Bearer <jwt>" and the legacy "Authorization: Token <jwt>"
form. Returns ErrMissingToken when no header is present and ErrInvalidToken
for anything that does not verify.
*/
package auth
