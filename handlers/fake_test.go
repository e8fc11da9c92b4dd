// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"errors"
	"testing"
	"time"

	testclock "k8s.io/utils/clock/testing"

	"github.com/danielhkuo/mqr-hub/mqr"
)

var handlerToday = time.Date(2024, 5, 15, 9, 30, 0, 0, time.UTC)

// fakeContent serves canned pages and menus keyed by tag.
type fakeContent struct {
	pages map[string]mqr.ContentResult
	menus map[string][]mqr.MenuEntry
	err   error
}

func (f *fakeContent) ResolveByTag(_ context.Context, tag string) (mqr.ContentResult, error) {
	if f.err != nil {
		return mqr.ContentResult{}, f.err
	}
	if res, ok := f.pages[tag]; ok {
		return res, nil
	}
	return mqr.ContentResult{Status: mqr.ContentNotFound}, nil
}

func (f *fakeContent) ResolveMenu(_ context.Context, tag string, _ mqr.Viewed) ([]mqr.MenuEntry, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.menus[tag], nil
}

var errContentDown = errors.New("content repository unavailable")

func newTestMessageHandler(t *testing.T, content *fakeContent) *MessageHandler {
	t.Helper()
	seq := mqr.NewSequencer(content, testclock.NewFakePassiveClock(handlerToday))
	return NewMessageHandler(seq)
}
