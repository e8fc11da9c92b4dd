// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package clinics

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

var ErrUnknownFacility = errors.New("unknown facility code")

type Clinic struct {
	Code     string `json:"code"`
	Value    string `json:"value"`
	Name     string `json:"name"`
	Province string `json:"province"`
}

// Store resolves facility codes against the clinic_code table.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Province returns the province code of the facility. Codes are matched on
// either the code or its display value.
func (s *Store) Province(ctx context.Context, facilityCode string) (string, error) {
	code := strings.TrimSpace(facilityCode)
	if code == "" {
		return "", ErrUnknownFacility
	}

	var province string
	err := s.db.QueryRowContext(ctx, `
		SELECT province FROM clinic_code WHERE code = $1 OR value = $1
		ORDER BY CASE WHEN code = $1 THEN 0 ELSE 1 END
		LIMIT 1
	`, code).Scan(&province)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("%w: %s", ErrUnknownFacility, code)
	}
	if err != nil {
		return "", fmt.Errorf("failed to look up facility %s: %w", code, err)
	}
	return normaliseProvince(province), nil
}

// Upsert inserts or replaces a clinic.
func (s *Store) Upsert(ctx context.Context, c Clinic) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO clinic_code (code, value, name, province)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (code) DO UPDATE SET
			value = excluded.value,
			name = excluded.name,
			province = excluded.province
	`, c.Code, c.Value, c.Name, c.Province)
	if err != nil {
		return fmt.Errorf("failed to upsert clinic %s: %w", c.Code, err)
	}
	return nil
}

// Import upserts clinics from CSV with a header row naming the columns
// code, value, name and province, in any order. It returns the number of
// clinics written.
func (s *Store) Import(ctx context.Context, r io.Reader) (int, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return 0, fmt.Errorf("failed to read clinic header: %w", err)
	}
	cols := map[string]int{}
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{"code", "province"} {
		if _, ok := cols[required]; !ok {
			return 0, fmt.Errorf("clinic CSV is missing the %q column", required)
		}
	}
	field := func(rec []string, name string) string {
		if i, ok := cols[name]; ok && i < len(rec) {
			return strings.TrimSpace(rec[i])
		}
		return ""
	}

	n := 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			return n, nil
		}
		if err != nil {
			return n, fmt.Errorf("failed to read clinic row %d: %w", n+2, err)
		}
		c := Clinic{
			Code:     field(rec, "code"),
			Value:    field(rec, "value"),
			Name:     field(rec, "name"),
			Province: field(rec, "province"),
		}
		if c.Code == "" {
			continue
		}
		if c.Value == "" {
			c.Value = c.Code
		}
		if err := s.Upsert(ctx, c); err != nil {
			return n, err
		}
		n++
	}
}

// normaliseProvince accepts ISO 3166-2 style codes ("ZA-EC") as well as
// bare ones ("EC"). KwaZulu-Natal is stored as "ZA-NL" in ISO form.
func normaliseProvince(p string) string {
	p = strings.ToUpper(strings.TrimSpace(p))
	p = strings.TrimPrefix(p, "ZA-")
	if p == "NL" {
		return "KZN"
	}
	return p
}
