// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"k8s.io/utils/clock"

	"github.com/danielhkuo/mqr-hub/clinics"
	"github.com/danielhkuo/mqr-hub/metrics"
	"github.com/danielhkuo/mqr-hub/middleware"
	"github.com/danielhkuo/mqr-hub/models"
	"github.com/danielhkuo/mqr-hub/strata"
)

// Exclusion reasons returned instead of an arm, keyed by metric label.
var exclusionReasons = map[string]string{
	"province": "facility province is not part of the study",
	"weeks":    "pregnancy is outside the 16-30 week study window",
	"age":      "mother is younger than 18",
}

type StrataHandler struct {
	clinics   *clinics.Store
	allocator *strata.Allocator
	clock     clock.PassiveClock
}

func NewStrataHandler(db *sql.DB, allocator *strata.Allocator, clk clock.PassiveClock) *StrataHandler {
	return &StrataHandler{
		clinics:   clinics.NewStore(db),
		allocator: allocator,
		clock:     clk,
	}
}

// RandomStrataArm handles POST /api/v1/mqr_randomstrataarm
func (h *StrataHandler) RandomStrataArm(w http.ResponseWriter, r *http.Request) {
	var req models.RandomStrataArmRequest
	if !middleware.DecodeAndValidate(w, r, &req) {
		return
	}

	resp, err := h.Allocate(r.Context(), req)
	if err != nil {
		writeError(w, r, err, http.StatusInternalServerError)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, resp)
}

// Allocate places the participant in a stratum and draws the next arm for
// it. Participants outside every stratum get an excluded response.
func (h *StrataHandler) Allocate(ctx context.Context, req models.RandomStrataArmRequest) (models.RandomStrataArmResponse, error) {
	if err := middleware.Validate(req); err != nil {
		return models.RandomStrataArmResponse{}, err
	}
	edd, err := time.Parse(models.DateLayout, req.EstimatedDeliveryDate)
	if err != nil {
		return models.RandomStrataArmResponse{}, fmt.Errorf("%w: estimated_delivery_date %q", strata.ErrInvalidKey, req.EstimatedDeliveryDate)
	}

	province, err := h.clinics.Province(ctx, req.FacilityCode)
	if err != nil {
		return models.RandomStrataArmResponse{}, err
	}

	key, excluded := h.stratum(province, edd, *req.MomAge)
	if excluded != "" {
		reason := exclusionReasons[excluded]
		metrics.RecordExclusion(excluded)
		slog.Info("participant excluded from randomisation",
			"facility_code", req.FacilityCode,
			"reason", reason,
		)
		return models.RandomStrataArmResponse{Excluded: true, Reason: reason}, nil
	}

	arm, err := h.allocator.Allocate(ctx, key)
	if err != nil {
		return models.RandomStrataArmResponse{}, err
	}

	slog.Info("arm allocated", "stratum", key.String(), "arm", arm, "client", middleware.ClientID(ctx))
	return models.RandomStrataArmResponse{RandomArm: string(arm)}, nil
}

// stratum returns the participant's key, or the exclusion label when they
// fall outside the study buckets.
func (h *StrataHandler) stratum(province string, edd time.Time, age int) (strata.Key, string) {
	if !strata.ValidProvince(province) {
		return strata.Key{}, "province"
	}
	weeks, ok := strata.WeeksPregnantBucket(h.clock.Now(), edd)
	if !ok {
		return strata.Key{}, "weeks"
	}
	ageBucket, ok := strata.AgeBucket(age)
	if !ok {
		return strata.Key{}, "age"
	}
	return strata.Key{Province: province, WeeksBucket: weeks, AgeBucket: ageBucket}, ""
}
