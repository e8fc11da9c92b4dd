// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package mqr

import (
	"context"
	"errors"
)

// fakeResolver serves canned content keyed by tag.
type fakeResolver struct {
	pages      map[string]ContentResult
	menus      map[string][]MenuEntry
	err        error
	lastViewed Viewed
	lookups    []string
}

func (f *fakeResolver) ResolveByTag(_ context.Context, tag string) (ContentResult, error) {
	f.lookups = append(f.lookups, tag)
	if f.err != nil {
		return ContentResult{}, f.err
	}
	if res, ok := f.pages[tag]; ok {
		return res, nil
	}
	return ContentResult{Status: ContentNotFound}, nil
}

func (f *fakeResolver) ResolveMenu(_ context.Context, tag string, viewed Viewed) ([]MenuEntry, error) {
	f.lastViewed = viewed
	if f.err != nil {
		return nil, f.err
	}
	return f.menus[tag], nil
}

var errUpstream = errors.New("content repo unavailable")

func found(msg string, template bool) ContentResult {
	return ContentResult{Status: ContentFound, Message: msg, IsTemplate: template, HasParameters: template}
}
