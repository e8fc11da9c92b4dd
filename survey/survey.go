// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package survey

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"k8s.io/utils/clock"
)

var ErrNotFound = errors.New("survey result not found")

// Result is one participant's baseline survey. Unanswered questions are
// empty and stored as NULL.
type Result struct {
	MSISDN               string               `json:"msisdn"`
	Breastfeed           YesNo                `json:"breastfeed,omitempty"`
	BreastfeedPeriod     BreastfeedPeriod     `json:"breastfeed_period,omitempty"`
	VaccineImportance    Agreement            `json:"vaccine_importance,omitempty"`
	VaccineBenefits      Agreement            `json:"vaccine_benefits,omitempty"`
	ClinicVisitFrequency ClinicVisitFrequency `json:"clinic_visit_frequency,omitempty"`
	Vegetables           YesNo                `json:"vegetables,omitempty"`
	Fruit                YesNo                `json:"fruit,omitempty"`
	Dairy                YesNo                `json:"dairy,omitempty"`
	LiverFrequency       LiverFrequency       `json:"liver_frequency,omitempty"`
	DangerSign1          DangerSign1          `json:"danger_sign1,omitempty"`
	DangerSign2          DangerSign2          `json:"danger_sign2,omitempty"`
	MaritalStatus        MaritalStatus        `json:"marital_status,omitempty"`
	EducationLevel       EducationLevel       `json:"education_level,omitempty"`
	PregnancySupport     PregnancySupport     `json:"pregnancy_support,omitempty"`
	CreatedBy            string               `json:"created_by,omitempty"`
	AirtimeSent          bool                 `json:"airtime_sent"`
	AirtimeSentAt        *time.Time           `json:"airtime_sent_at,omitempty"`
	CreatedAt            time.Time            `json:"created_at"`
	UpdatedAt            time.Time            `json:"updated_at"`
}

// FieldErrors maps a JSON field name to the reason it was rejected.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e[k])
	}
	return "invalid survey answers: " + strings.Join(parts, "; ")
}

type validator interface {
	Valid() bool
}

// Validate reports every answer outside its choice set.
func (r Result) Validate() error {
	errs := FieldErrors{}
	if strings.TrimSpace(r.MSISDN) == "" {
		errs["msisdn"] = "is required"
	}
	checks := []struct {
		name  string
		value validator
	}{
		{"breastfeed", r.Breastfeed},
		{"breastfeed_period", r.BreastfeedPeriod},
		{"vaccine_importance", r.VaccineImportance},
		{"vaccine_benefits", r.VaccineBenefits},
		{"clinic_visit_frequency", r.ClinicVisitFrequency},
		{"vegetables", r.Vegetables},
		{"fruit", r.Fruit},
		{"dairy", r.Dairy},
		{"liver_frequency", r.LiverFrequency},
		{"danger_sign1", r.DangerSign1},
		{"danger_sign2", r.DangerSign2},
		{"marital_status", r.MaritalStatus},
		{"education_level", r.EducationLevel},
		{"pregnancy_support", r.PregnancySupport},
	}
	for _, c := range checks {
		if !c.value.Valid() {
			errs[c.name] = fmt.Sprintf("%q is not a valid choice", c.value)
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Store persists survey results keyed by msisdn.
type Store struct {
	db    *sql.DB
	clock clock.PassiveClock
}

func NewStore(db *sql.DB, clk clock.PassiveClock) *Store {
	return &Store{db: db, clock: clk}
}

// Upsert records r. Answers already stored are kept when r leaves them
// empty, so a survey can be submitted question by question. Airtime, once
// marked sent, stays sent with its original timestamp.
func (s *Store) Upsert(ctx context.Context, r Result) error {
	if err := r.Validate(); err != nil {
		return err
	}

	now := s.clock.Now().UTC()
	var sentAt *time.Time
	if r.AirtimeSent {
		sentAt = &now
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO mqr_baseline_survey_result (
			msisdn, breastfeed, breastfeed_period, vaccine_importance, vaccine_benefits,
			clinic_visit_frequency, vegetables, fruit, dairy, liver_frequency,
			danger_sign1, danger_sign2, marital_status, education_level, pregnancy_support,
			created_by, airtime_sent, airtime_sent_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $19)
		ON CONFLICT (msisdn) DO UPDATE SET
			breastfeed = COALESCE(excluded.breastfeed, mqr_baseline_survey_result.breastfeed),
			breastfeed_period = COALESCE(excluded.breastfeed_period, mqr_baseline_survey_result.breastfeed_period),
			vaccine_importance = COALESCE(excluded.vaccine_importance, mqr_baseline_survey_result.vaccine_importance),
			vaccine_benefits = COALESCE(excluded.vaccine_benefits, mqr_baseline_survey_result.vaccine_benefits),
			clinic_visit_frequency = COALESCE(excluded.clinic_visit_frequency, mqr_baseline_survey_result.clinic_visit_frequency),
			vegetables = COALESCE(excluded.vegetables, mqr_baseline_survey_result.vegetables),
			fruit = COALESCE(excluded.fruit, mqr_baseline_survey_result.fruit),
			dairy = COALESCE(excluded.dairy, mqr_baseline_survey_result.dairy),
			liver_frequency = COALESCE(excluded.liver_frequency, mqr_baseline_survey_result.liver_frequency),
			danger_sign1 = COALESCE(excluded.danger_sign1, mqr_baseline_survey_result.danger_sign1),
			danger_sign2 = COALESCE(excluded.danger_sign2, mqr_baseline_survey_result.danger_sign2),
			marital_status = COALESCE(excluded.marital_status, mqr_baseline_survey_result.marital_status),
			education_level = COALESCE(excluded.education_level, mqr_baseline_survey_result.education_level),
			pregnancy_support = COALESCE(excluded.pregnancy_support, mqr_baseline_survey_result.pregnancy_support),
			airtime_sent_at = CASE
				WHEN mqr_baseline_survey_result.airtime_sent THEN mqr_baseline_survey_result.airtime_sent_at
				ELSE excluded.airtime_sent_at
			END,
			airtime_sent = mqr_baseline_survey_result.airtime_sent OR excluded.airtime_sent,
			updated_at = excluded.updated_at
	`,
		r.MSISDN,
		nullable(r.Breastfeed), nullable(r.BreastfeedPeriod),
		nullable(r.VaccineImportance), nullable(r.VaccineBenefits),
		nullable(r.ClinicVisitFrequency),
		nullable(r.Vegetables), nullable(r.Fruit), nullable(r.Dairy),
		nullable(r.LiverFrequency),
		nullable(r.DangerSign1), nullable(r.DangerSign2),
		nullable(r.MaritalStatus), nullable(r.EducationLevel), nullable(r.PregnancySupport),
		r.CreatedBy, r.AirtimeSent, sentAt, now,
	)
	if err != nil {
		return fmt.Errorf("failed to save survey for %s: %w", r.MSISDN, err)
	}
	return nil
}

// Get returns the stored result for msisdn.
func (s *Store) Get(ctx context.Context, msisdn string) (*Result, error) {
	var (
		r       = Result{MSISDN: msisdn}
		answers [14]sql.NullString
		sentAt  sql.NullTime
	)
	dest := make([]any, 0, len(answers)+5)
	for i := range answers {
		dest = append(dest, &answers[i])
	}
	dest = append(dest, &r.CreatedBy, &r.AirtimeSent, &sentAt, &r.CreatedAt, &r.UpdatedAt)

	err := s.db.QueryRowContext(ctx, `
		SELECT breastfeed, breastfeed_period, vaccine_importance, vaccine_benefits,
			clinic_visit_frequency, vegetables, fruit, dairy, liver_frequency,
			danger_sign1, danger_sign2, marital_status, education_level, pregnancy_support,
			created_by, airtime_sent, airtime_sent_at, created_at, updated_at
		FROM mqr_baseline_survey_result
		WHERE msisdn = $1
	`, msisdn).Scan(dest...)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load survey for %s: %w", msisdn, err)
	}

	r.Breastfeed = YesNo(answers[0].String)
	r.BreastfeedPeriod = BreastfeedPeriod(answers[1].String)
	r.VaccineImportance = Agreement(answers[2].String)
	r.VaccineBenefits = Agreement(answers[3].String)
	r.ClinicVisitFrequency = ClinicVisitFrequency(answers[4].String)
	r.Vegetables = YesNo(answers[5].String)
	r.Fruit = YesNo(answers[6].String)
	r.Dairy = YesNo(answers[7].String)
	r.LiverFrequency = LiverFrequency(answers[8].String)
	r.DangerSign1 = DangerSign1(answers[9].String)
	r.DangerSign2 = DangerSign2(answers[10].String)
	r.MaritalStatus = MaritalStatus(answers[11].String)
	r.EducationLevel = EducationLevel(answers[12].String)
	r.PregnancySupport = PregnancySupport(answers[13].String)
	if sentAt.Valid {
		t := sentAt.Time.UTC()
		r.AirtimeSentAt = &t
	}
	r.CreatedAt = r.CreatedAt.UTC()
	r.UpdatedAt = r.UpdatedAt.UTC()
	return &r, nil
}

func nullable[T ~string](v T) sql.NullString {
	return sql.NullString{String: string(v), Valid: v != ""}
}
