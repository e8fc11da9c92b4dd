// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package strata

import "time"

// Provinces are the province codes facilities resolve to.
var Provinces = []string{"EC", "FS", "GT", "KZN", "LP", "MP", "NC", "NW", "WC"}

// Study buckets. Participants outside them are excluded from randomisation.
var (
	WeeksBuckets = []string{"16-20", "21-25", "26-30"}
	AgeBuckets   = []string{"18-30", "31+"}
)

const fullTermWeeks = 40

func ValidProvince(p string) bool {
	return validBucket(Provinces, p)
}

func validBucket(buckets []string, b string) bool {
	for _, known := range buckets {
		if b == known {
			return true
		}
	}
	return false
}

// WeeksPregnant derives gestational age in whole weeks from the estimated
// delivery date.
func WeeksPregnant(today, edd time.Time) int {
	return fullTermWeeks - floorDiv(daysBetween(today, edd), 7)
}

// WeeksPregnantBucket returns the study bucket for the given delivery date,
// or false when the pregnancy is outside the study window.
func WeeksPregnantBucket(today, edd time.Time) (string, bool) {
	w := WeeksPregnant(today, edd)
	switch {
	case w >= 16 && w <= 20:
		return "16-20", true
	case w >= 21 && w <= 25:
		return "21-25", true
	case w >= 26 && w <= 30:
		return "26-30", true
	}
	return "", false
}

// AgeBucket returns the study bucket for the mother's age, or false for
// participants under 18.
func AgeBucket(age int) (string, bool) {
	switch {
	case age < 18:
		return "", false
	case age <= 30:
		return "18-30", true
	}
	return "31+", true
}

// daysBetween counts calendar days from a to b, ignoring time of day.
func daysBetween(a, b time.Time) int {
	da := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	db := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
