// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package mqr

import (
	"fmt"
	"strings"
	"time"

	"k8s.io/utils/clock"
)

// Phase is the part of the study a message belongs to: before or after birth.
type Phase string

const (
	PhasePre  Phase = "pre"
	PhasePost Phase = "post"
)

func ParsePhase(s string) (Phase, error) {
	switch Phase(strings.ToLower(s)) {
	case PhasePre:
		return PhasePre, nil
	case PhasePost:
		return PhasePost, nil
	}
	return "", fmt.Errorf("unknown subscription phase %q", s)
}

// ComposeTag derives the content tag for the participant's current week,
// "{arm}_week_{phase}{week}[_{sequence}]" in lower case. The week counts whole
// weeks between today and the reference date (EDD before birth, date of birth
// after), in either direction.
func ComposeTag(clk clock.PassiveClock, arm string, phase Phase, reference time.Time, sequence string) string {
	tag := fmt.Sprintf("%s_week_%s%d", arm, phase, WeeksBetween(clk.Now(), reference))
	if sequence != "" {
		tag += "_" + sequence
	}
	return strings.ToLower(tag)
}

// WeeksBetween is the number of whole weeks separating two calendar dates.
func WeeksBetween(a, b time.Time) int {
	days := daysBetween(a, b)
	if days < 0 {
		days = -days
	}
	return days / 7
}

func daysBetween(a, b time.Time) int {
	da := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	db := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}
