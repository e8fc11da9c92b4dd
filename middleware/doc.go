// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

	mux.HandleFunc("GET /health", middleware.WithLogging(handler))

Logs request start and completion with a request id, the status code and
duration_ms. The id comes from X-Request-ID when it holds a UUID and is
echoed back in the response.

# Authentication

	middleware.RequireAuth(a, handler)

Answers 401 unless the request carries a valid token. The token's client id
is available through ClientID(r.Context()).

# Validation

	var req models.FAQRequest
	if !middleware.DecodeAndValidate(w, r, &req) {
		return
	}

Fields are checked against their validate tags and reported by JSON name.

# JSON Helpers

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")
	middleware.FieldErrorResponse(w, fields)

# CORS and Client IP

CORS allows cross-origin calls from flow builders; GetClientIP honours
X-Forwarded-For and X-Real-IP.
*/
package middleware
