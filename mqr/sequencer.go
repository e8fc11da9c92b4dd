// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package mqr

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"k8s.io/utils/clock"

	"github.com/danielhkuo/mqr-hub/metrics"
)

// DefaultSendIntervalDays is the gap between two study messages.
const DefaultSendIntervalDays = 7

const nameParameter = "{{1}}"

// Sequencer serves next-message and FAQ flows on top of the content
// repository. It keeps no state between calls.
type Sequencer struct {
	content      ContentResolver
	clock        clock.PassiveClock
	intervalDays int
}

type SequencerOption func(*Sequencer)

// WithSendInterval sets the number of days until the next message.
func WithSendInterval(days int) SequencerOption {
	return func(s *Sequencer) { s.intervalDays = days }
}

func NewSequencer(content ContentResolver, clk clock.PassiveClock, opts ...SequencerOption) *Sequencer {
	s := &Sequencer{
		content:      content,
		clock:        clk,
		intervalDays: DefaultSendIntervalDays,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Message is resolved content ready to send.
type Message struct {
	Message       string `json:"message"`
	IsTemplate    bool   `json:"is_template"`
	HasParameters bool   `json:"has_parameters"`
}

type NextMessageRequest struct {
	ReferenceDate time.Time
	Phase         Phase
	Arm           string
	Sequence      string
	Name          string
}

type NextMessage struct {
	Message
	NextSendDate time.Time
	Tag          string
}

type FAQMessage struct {
	Message
	FAQMenu    string
	FAQNumbers string
	Viewed     Viewed
}

type Menu struct {
	Menu       string
	FAQNumbers string
}

// Tag composes the content tag for a participant as of today.
func (s *Sequencer) Tag(arm string, phase Phase, reference time.Time, sequence string) string {
	return ComposeTag(s.clock, arm, phase, reference, sequence)
}

// NextSendDate is the date the next study message goes out.
func (s *Sequencer) NextSendDate(today time.Time) time.Time {
	y, m, d := today.Date()
	return time.Date(y, m, d+s.intervalDays, 0, 0, 0, 0, today.Location())
}

// NextMessage resolves this week's message for the participant. Missing or
// ambiguous content is returned as a *ContentError.
func (s *Sequencer) NextMessage(ctx context.Context, req NextMessageRequest) (*NextMessage, error) {
	tag := s.Tag(req.Arm, req.Phase, req.ReferenceDate, req.Sequence)

	msg, err := s.resolve(ctx, "message", tag)
	if err != nil {
		return nil, err
	}
	if !msg.IsTemplate {
		msg.Message = strings.ReplaceAll(msg.Message, nameParameter, req.Name)
	}

	return &NextMessage{
		Message:      msg,
		NextSendDate: s.NextSendDate(s.clock.Now()),
		Tag:          tag,
	}, nil
}

// FAQMessage resolves FAQ number faqNumber under tag, records it as viewed
// and builds the menu of the FAQs still unseen.
func (s *Sequencer) FAQMessage(ctx context.Context, tag string, faqNumber int, viewed Viewed) (*FAQMessage, error) {
	faqTag := FAQTag(tag, strconv.Itoa(faqNumber))

	msg, err := s.resolve(ctx, "faq", faqTag)
	if err != nil {
		return nil, err
	}

	viewed = viewed.With(faqTag)
	menu, err := s.FAQMenu(ctx, tag, viewed, 0)
	if err != nil {
		return nil, err
	}

	return &FAQMessage{
		Message:    msg,
		FAQMenu:    menu.Menu,
		FAQNumbers: menu.FAQNumbers,
		Viewed:     viewed,
	}, nil
}

// FAQMenu formats the FAQ topics for tag that are not in viewed. Lines are
// numbered from offset+1.
func (s *Sequencer) FAQMenu(ctx context.Context, tag string, viewed Viewed, offset int) (*Menu, error) {
	entries, err := s.content.ResolveMenu(ctx, tag, viewed)
	if err != nil {
		metrics.RecordContentLookup("menu", "error")
		return nil, fmt.Errorf("resolving faq menu for %s: %w", tag, err)
	}
	metrics.RecordContentLookup("menu", "found")

	var lines, numbers []string
	for _, e := range entries {
		if viewed.Contains(FAQTag(tag, e.Order)) {
			continue
		}
		lines = append(lines, fmt.Sprintf("*%d* %s", offset+len(lines)+1, strings.TrimSpace(e.Title)))
		numbers = append(numbers, e.Order)
	}

	return &Menu{
		Menu:       strings.Join(lines, "\n"),
		FAQNumbers: strings.Join(numbers, ","),
	}, nil
}

// FAQTag names FAQ number order under tag.
func FAQTag(tag, order string) string {
	return tag + "_faq" + order
}

func (s *Sequencer) resolve(ctx context.Context, kind, tag string) (Message, error) {
	res, err := s.content.ResolveByTag(ctx, tag)
	if err != nil {
		metrics.RecordContentLookup(kind, "error")
		return Message{}, fmt.Errorf("resolving %s: %w", tag, err)
	}
	metrics.RecordContentLookup(kind, res.Status.String())

	if res.Status != ContentFound {
		return Message{}, &ContentError{Tag: tag, Status: res.Status}
	}
	return Message{
		Message:       res.Message,
		IsTemplate:    res.IsTemplate,
		HasParameters: res.HasParameters,
	}, nil
}
