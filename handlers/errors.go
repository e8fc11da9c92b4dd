// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/mqr-hub/clinics"
	"github.com/danielhkuo/mqr-hub/middleware"
	"github.com/danielhkuo/mqr-hub/models"
	"github.com/danielhkuo/mqr-hub/mqr"
	"github.com/danielhkuo/mqr-hub/strata"
	"github.com/danielhkuo/mqr-hub/survey"
)

// writeError maps domain errors to responses. Anything unrecognised is
// logged and answered with fallback.
func writeError(w http.ResponseWriter, r *http.Request, err error, fallback int) {
	var (
		contentErr *mqr.ContentError
		validErr   *middleware.ValidationError
		surveyErr  survey.FieldErrors
	)
	switch {
	case errors.As(err, &contentErr):
		middleware.JSONResponse(w, http.StatusBadRequest, models.ContentErrorResponse{Error: contentErr.Error()})
	case errors.As(err, &validErr):
		middleware.FieldErrorResponse(w, validErr.Fields)
	case errors.As(err, &surveyErr):
		middleware.FieldErrorResponse(w, surveyErr)
	case errors.Is(err, clinics.ErrUnknownFacility):
		middleware.FieldErrorResponse(w, map[string]string{"facility_code": "Unknown facility code."})
	case errors.Is(err, strata.ErrInvalidKey):
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, strata.ErrStrataConflict):
		slog.Warn("allocation gave up after retries",
			"request_id", middleware.RequestID(r.Context()), "error", err)
		middleware.ErrorResponse(w, http.StatusServiceUnavailable, "Allocation conflict, please retry")
	case errors.Is(err, survey.ErrNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		middleware.ErrorResponse(w, http.StatusGatewayTimeout, "Upstream request timed out")
	default:
		slog.Error("request failed",
			"request_id", middleware.RequestID(r.Context()),
			"path", r.URL.Path,
			"error", err,
		)
		middleware.ErrorResponse(w, fallback, http.StatusText(fallback))
	}
}
