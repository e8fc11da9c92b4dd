// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package mqr

import "encoding/json"

// Viewed is an immutable ordered set of FAQ tags a participant has seen.
// The zero value is an empty set.
type Viewed struct {
	items []string
}

// NewViewed builds a set from tags, keeping first occurrences in order.
func NewViewed(tags ...string) Viewed {
	var v Viewed
	for _, t := range tags {
		if t != "" && !v.Contains(t) {
			v.items = append(v.items, t)
		}
	}
	return v
}

// With returns a new set with tag appended; v is left untouched.
func (v Viewed) With(tag string) Viewed {
	if tag == "" || v.Contains(tag) {
		return v
	}
	items := make([]string, len(v.items), len(v.items)+1)
	copy(items, v.items)
	return Viewed{items: append(items, tag)}
}

func (v Viewed) Contains(tag string) bool {
	for _, t := range v.items {
		if t == tag {
			return true
		}
	}
	return false
}

func (v Viewed) Len() int {
	return len(v.items)
}

// Items returns a copy of the tags in order.
func (v Viewed) Items() []string {
	out := make([]string, len(v.items))
	copy(out, v.items)
	return out
}

func (v Viewed) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Items())
}

func (v *Viewed) UnmarshalJSON(data []byte) error {
	var tags []string
	if err := json.Unmarshal(data, &tags); err != nil {
		return err
	}
	*v = NewViewed(tags...)
	return nil
}
