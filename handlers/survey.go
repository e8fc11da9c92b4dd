// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/danielhkuo/mqr-hub/middleware"
	"github.com/danielhkuo/mqr-hub/models"
	"github.com/danielhkuo/mqr-hub/survey"
)

type SurveyHandler struct {
	store *survey.Store
}

func NewSurveyHandler(store *survey.Store) *SurveyHandler {
	return &SurveyHandler{store: store}
}

// Save handles POST /api/v1/mqr-baseline-survey/
func (h *SurveyHandler) Save(w http.ResponseWriter, r *http.Request) {
	var res survey.Result
	if err := middleware.ParseJSONBody(r, &res); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	// Timestamps belong to the store, the creator to the token.
	res.AirtimeSentAt = nil
	res.CreatedAt, res.UpdatedAt = time.Time{}, time.Time{}
	res.CreatedBy = middleware.ClientID(r.Context())

	if err := h.store.Upsert(r.Context(), res); err != nil {
		writeError(w, r, err, http.StatusInternalServerError)
		return
	}

	slog.Info("baseline survey saved", "created_by", res.CreatedBy)
	middleware.JSONResponse(w, http.StatusCreated, models.SurveyCreatedResponse{MSISDN: res.MSISDN})
}

// Get handles GET /api/v1/mqr-baseline-survey/{msisdn}
func (h *SurveyHandler) Get(w http.ResponseWriter, r *http.Request) {
	msisdn := r.PathValue("msisdn")
	if msisdn == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "msisdn is required")
		return
	}

	res, err := h.store.Get(r.Context(), msisdn)
	if err != nil {
		writeError(w, r, err, http.StatusInternalServerError)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, res)
}
