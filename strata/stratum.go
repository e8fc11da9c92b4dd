// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package strata

import (
	"fmt"
	"strings"
)

// Arm is one of the messaging interventions a participant can be assigned to.
type Arm string

const (
	ArmARM    Arm = "ARM"
	ArmRCM    Arm = "RCM"
	ArmBCM    Arm = "BCM"
	ArmRCMBCM Arm = "RCM_BCM"
	ArmRCMSMS Arm = "RCM_SMS"
)

// Arms is the fixed arm set every stratum permutes.
var Arms = []Arm{ArmARM, ArmRCM, ArmBCM, ArmRCMBCM, ArmRCMSMS}

// Valid reports whether a is a known study arm.
func (a Arm) Valid() bool {
	for _, known := range Arms {
		if a == known {
			return true
		}
	}
	return false
}

// Policy decides when a stratum's permutation is used up.
type Policy string

const (
	// PolicyServeAll serves every arm of the permutation, then discards it.
	PolicyServeAll Policy = "serve-all"
	// PolicyLegacySkipLast discards the permutation after serving its
	// second-to-last arm, so the final arm is never handed out. This matches
	// allocations made by the previous hub and exists for comparison only.
	PolicyLegacySkipLast Policy = "legacy-skip-last"
)

// ParsePolicy maps a configured policy name to a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case PolicyServeAll, PolicyLegacySkipLast:
		return Policy(s), nil
	}
	return "", fmt.Errorf("unknown exhaustion policy %q", s)
}

// lastIndex is the final cursor position served before exhaustion.
func (p Policy) lastIndex(n int) int {
	if p == PolicyLegacySkipLast && n > 1 {
		return n - 2
	}
	return n - 1
}

// State is the lifecycle position of a stratum.
type State int

const (
	// StateFresh: no row exists; the next allocation creates one.
	StateFresh State = iota
	// StateActive: the row has arms left to serve.
	StateActive
	// StateExhausted: the permutation is used up; the row must be removed.
	StateExhausted
)

func (s State) String() string {
	switch s {
	case StateFresh:
		return "fresh"
	case StateActive:
		return "active"
	case StateExhausted:
		return "exhausted"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Key is the natural key of a stratum.
type Key struct {
	Province    string `json:"province"`
	WeeksBucket string `json:"weeks_pregnant_bucket"`
	AgeBucket   string `json:"age_bucket"`
}

func (k Key) String() string {
	return k.Province + "/" + k.WeeksBucket + "/" + k.AgeBucket
}

// Validate checks every component of the key against the known buckets.
func (k Key) Validate() error {
	if !ValidProvince(k.Province) {
		return fmt.Errorf("%w: province %q", ErrInvalidKey, k.Province)
	}
	if !validBucket(WeeksBuckets, k.WeeksBucket) {
		return fmt.Errorf("%w: weeks pregnant bucket %q", ErrInvalidKey, k.WeeksBucket)
	}
	if !validBucket(AgeBuckets, k.AgeBucket) {
		return fmt.Errorf("%w: age bucket %q", ErrInvalidKey, k.AgeBucket)
	}
	return nil
}

// Stratum holds the randomised arm order of one demographic bucket and the
// cursor of the next arm to hand out.
type Stratum struct {
	Key       Key   `json:"key"`
	ArmOrder  []Arm `json:"arm_order"`
	NextIndex int   `json:"next_index"`
}

// State reports where the stratum sits under the given policy.
func (s *Stratum) State(p Policy) State {
	if s == nil {
		return StateFresh
	}
	if s.NextIndex > p.lastIndex(len(s.ArmOrder)) {
		return StateExhausted
	}
	return StateActive
}

// Advance returns the arm at the cursor, moves the cursor on and reports the
// state the stratum is left in.
func (s *Stratum) Advance(p Policy) (Arm, State, error) {
	if s.State(p) != StateActive {
		return "", StateExhausted, fmt.Errorf("stratum %s has no arms left", s.Key)
	}
	arm := s.ArmOrder[s.NextIndex]
	s.NextIndex++
	return arm, s.State(p), nil
}

func encodeOrder(order []Arm) string {
	parts := make([]string, len(order))
	for i, a := range order {
		parts[i] = string(a)
	}
	return strings.Join(parts, ",")
}

func decodeOrder(s string) ([]Arm, error) {
	parts := strings.Split(s, ",")
	order := make([]Arm, len(parts))
	for i, p := range parts {
		a := Arm(p)
		if !a.Valid() {
			return nil, fmt.Errorf("stored arm order %q contains unknown arm %q", s, p)
		}
		order[i] = a
	}
	return order, nil
}
