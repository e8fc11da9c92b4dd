// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package mqr

import (
	"context"
	"errors"
)

// ContentStatus classifies the outcome of a lookup by tag.
type ContentStatus int

const (
	ContentNotFound ContentStatus = iota
	ContentMultipleFound
	ContentFound
)

func (s ContentStatus) String() string {
	switch s {
	case ContentNotFound:
		return "not_found"
	case ContentMultipleFound:
		return "multiple"
	case ContentFound:
		return "found"
	}
	return "unknown"
}

// ContentResult is what the content repository holds for a tag. Message,
// IsTemplate and HasParameters are only meaningful when Status is ContentFound.
type ContentResult struct {
	Status        ContentStatus
	IsTemplate    bool
	HasParameters bool
	Message       string
}

// MenuEntry is one FAQ topic; Order is the FAQ number used to build its tag.
type MenuEntry struct {
	Order string `json:"order"`
	Title string `json:"title"`
}

// ContentResolver looks up study content. Errors returned are collaborator
// failures (transport, unexpected status); missing or ambiguous content is
// reported through ContentResult.Status instead.
type ContentResolver interface {
	ResolveByTag(ctx context.Context, tag string) (ContentResult, error)
	ResolveMenu(ctx context.Context, tag string, viewed Viewed) ([]MenuEntry, error)
}

var (
	ErrNoMessageFound       = errors.New("no message found")
	ErrMultipleMessageFound = errors.New("multiple message found")
)

// ContentError reports a tag that resolved to zero or several messages.
// Its text is exactly the user-facing error string.
type ContentError struct {
	Tag    string
	Status ContentStatus
}

func (e *ContentError) Error() string {
	return e.Unwrap().Error()
}

func (e *ContentError) Unwrap() error {
	if e.Status == ContentMultipleFound {
		return ErrMultipleMessageFound
	}
	return ErrNoMessageFound
}
