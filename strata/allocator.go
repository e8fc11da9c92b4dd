// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package strata

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/danielhkuo/mqr-hub/db"
	"github.com/danielhkuo/mqr-hub/metrics"
)

var (
	ErrInvalidKey      = errors.New("invalid stratum key")
	ErrStratumNotFound = errors.New("stratum not found")
	// ErrStrataConflict marks a transaction that lost a race on the same
	// stratum. Allocate retries it; it only escapes after MaxRetries.
	ErrStrataConflict = errors.New("stratum allocation conflict")
)

// Allocator hands out study arms per stratum, without replacement, from a
// uniformly random permutation of Arms.
type Allocator struct {
	db         *sql.DB
	dialect    db.Dialect
	policy     Policy
	maxRetries int
	retryBase  time.Duration
	retryMax   time.Duration

	mu  sync.Mutex
	rng *rand.Rand
}

type Option func(*Allocator)

func WithPolicy(p Policy) Option {
	return func(a *Allocator) { a.policy = p }
}

func WithMaxRetries(n int) Option {
	return func(a *Allocator) { a.maxRetries = n }
}

// WithRetryBackoff sets the delay before the first retry and its cap. The
// delay doubles per attempt and is jittered. A zero base retries immediately.
func WithRetryBackoff(base, max time.Duration) Option {
	return func(a *Allocator) { a.retryBase, a.retryMax = base, max }
}

// WithRand makes shuffles reproducible. Without it the auto-seeded global
// source is used.
func WithRand(r *rand.Rand) Option {
	return func(a *Allocator) { a.rng = r }
}

func NewAllocator(conn *sql.DB, dialect db.Dialect, opts ...Option) *Allocator {
	a := &Allocator{
		db:         conn,
		dialect:    dialect,
		policy:     PolicyServeAll,
		maxRetries: 3,
		retryBase:  10 * time.Millisecond,
		retryMax:   250 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Allocator) Policy() Policy {
	return a.policy
}

// Allocate returns the next arm for the stratum, creating the stratum with a
// fresh permutation when none is live. The read, the cursor move and the
// removal of an exhausted stratum commit together or not at all.
func (a *Allocator) Allocate(ctx context.Context, key Key) (Arm, error) {
	if err := key.Validate(); err != nil {
		return "", err
	}

	for attempt := 0; ; attempt++ {
		arm, err := a.allocateOnce(ctx, key)
		if err == nil {
			metrics.RecordAllocation(string(arm), string(a.policy))
			return arm, nil
		}
		if !errors.Is(err, ErrStrataConflict) {
			return "", err
		}
		metrics.RecordAllocationConflict()
		if attempt >= a.maxRetries {
			return "", fmt.Errorf("allocating %s after %d attempts: %w", key, attempt+1, err)
		}
		slog.Warn("stratum allocation conflict, retrying", "stratum", key.String(), "attempt", attempt+1)
		if err := a.backoff(ctx, attempt); err != nil {
			return "", fmt.Errorf("allocating %s: %w", key, err)
		}
	}
}

// backoff sleeps before retry attempt+1, returning early when ctx is done.
func (a *Allocator) backoff(ctx context.Context, attempt int) error {
	if a.retryBase <= 0 {
		return ctx.Err()
	}
	d := a.retryBase << attempt
	if d <= 0 || (a.retryMax > 0 && d > a.retryMax) {
		d = a.retryMax
	}
	d = d/2 + rand.N(d/2+1)

	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (a *Allocator) allocateOnce(ctx context.Context, key Key) (Arm, error) {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return "", classify(fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer tx.Rollback()

	s, err := a.lockStratum(ctx, tx, key)
	stored := true
	if errors.Is(err, ErrStratumNotFound) {
		s = a.fresh(key)
		stored = false
	} else if err != nil {
		return "", err
	}

	prevIndex := s.NextIndex
	arm, state, err := s.Advance(a.policy)
	if err != nil {
		// A stored row that is already exhausted means it was written under a
		// different policy; replace it and serve from the new permutation.
		slog.Warn("discarding exhausted stratum", "stratum", key.String(), "next_index", s.NextIndex)
		if err := deleteStratum(ctx, tx, key); err != nil {
			return "", err
		}
		s = a.fresh(key)
		stored = false
		prevIndex = 0
		arm, state, err = s.Advance(a.policy)
		if err != nil {
			return "", err
		}
	}

	switch {
	case state == StateExhausted && stored:
		if err := deleteStratum(ctx, tx, key); err != nil {
			return "", err
		}
	case state == StateExhausted:
		// Single-use permutation; nothing to persist.
	case stored:
		res, err := tx.ExecContext(ctx, `
			UPDATE mqr_strata SET next_index = $1
			WHERE province = $2 AND weeks_pregnant_bucket = $3 AND age_bucket = $4 AND next_index = $5
		`, s.NextIndex, key.Province, key.WeeksBucket, key.AgeBucket, prevIndex)
		if err != nil {
			return "", classify(fmt.Errorf("failed to advance stratum: %w", err))
		}
		if n, _ := res.RowsAffected(); n != 1 {
			return "", fmt.Errorf("stratum %s moved underneath us: %w", key, ErrStrataConflict)
		}
	default:
		if err := insertStratum(ctx, tx, s); err != nil {
			return "", err
		}
	}

	if err := tx.Commit(); err != nil {
		return "", classify(fmt.Errorf("failed to commit allocation: %w", err))
	}

	if state == StateExhausted {
		metrics.RecordStratumExhausted()
	}
	slog.Debug("arm allocated", "stratum", key.String(), "arm", arm, "state", state.String())
	return arm, nil
}

// Reset atomically replaces the stratum's permutation with a fresh one and
// rewinds its cursor.
func (a *Allocator) Reset(ctx context.Context, key Key) (*Stratum, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, classify(fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer tx.Rollback()

	if err := deleteStratum(ctx, tx, key); err != nil {
		return nil, err
	}
	s := a.fresh(key)
	if err := insertStratum(ctx, tx, s); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, classify(fmt.Errorf("failed to commit reset: %w", err))
	}
	return s, nil
}

// Get returns the live stratum for key, or ErrStratumNotFound.
func (a *Allocator) Get(ctx context.Context, key Key) (*Stratum, error) {
	return scanStratum(key, a.db.QueryRowContext(ctx, `
		SELECT arm_order, next_index FROM mqr_strata
		WHERE province = $1 AND weeks_pregnant_bucket = $2 AND age_bucket = $3
	`, key.Province, key.WeeksBucket, key.AgeBucket))
}

func (a *Allocator) lockStratum(ctx context.Context, tx *sql.Tx, key Key) (*Stratum, error) {
	query := `
		SELECT arm_order, next_index FROM mqr_strata
		WHERE province = $1 AND weeks_pregnant_bucket = $2 AND age_bucket = $3`
	if a.dialect == db.Postgres {
		query += ` FOR UPDATE`
	}
	return scanStratum(key, tx.QueryRowContext(ctx, query, key.Province, key.WeeksBucket, key.AgeBucket))
}

func scanStratum(key Key, row *sql.Row) (*Stratum, error) {
	var order string
	s := &Stratum{Key: key}
	err := row.Scan(&order, &s.NextIndex)
	if err == sql.ErrNoRows {
		return nil, ErrStratumNotFound
	}
	if err != nil {
		return nil, classify(fmt.Errorf("failed to read stratum: %w", err))
	}
	if s.ArmOrder, err = decodeOrder(order); err != nil {
		return nil, err
	}
	return s, nil
}

func insertStratum(ctx context.Context, tx *sql.Tx, s *Stratum) error {
	res, err := tx.ExecContext(ctx, `
		INSERT INTO mqr_strata (province, weeks_pregnant_bucket, age_bucket, arm_order, next_index)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (province, weeks_pregnant_bucket, age_bucket) DO NOTHING
	`, s.Key.Province, s.Key.WeeksBucket, s.Key.AgeBucket, encodeOrder(s.ArmOrder), s.NextIndex)
	if err != nil {
		return classify(fmt.Errorf("failed to create stratum: %w", err))
	}
	if n, _ := res.RowsAffected(); n != 1 {
		// Another transaction created the stratum first.
		return fmt.Errorf("stratum %s created concurrently: %w", s.Key, ErrStrataConflict)
	}
	return nil
}

func deleteStratum(ctx context.Context, tx *sql.Tx, key Key) error {
	_, err := tx.ExecContext(ctx, `
		DELETE FROM mqr_strata
		WHERE province = $1 AND weeks_pregnant_bucket = $2 AND age_bucket = $3
	`, key.Province, key.WeeksBucket, key.AgeBucket)
	if err != nil {
		return classify(fmt.Errorf("failed to delete stratum: %w", err))
	}
	return nil
}

// fresh builds an unsaved stratum with a new uniformly random permutation.
func (a *Allocator) fresh(key Key) *Stratum {
	order := make([]Arm, len(Arms))
	copy(order, Arms)

	swap := func(i, j int) { order[i], order[j] = order[j], order[i] }
	if a.rng != nil {
		a.mu.Lock()
		a.rng.Shuffle(len(order), swap)
		a.mu.Unlock()
	} else {
		rand.Shuffle(len(order), swap)
	}
	return &Stratum{Key: key, ArmOrder: order}
}

// classify tags driver errors that signal a lost race so Allocate retries them.
func classify(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505", "40001", "40P01": // unique_violation, serialization_failure, deadlock_detected
			return fmt.Errorf("%w: %w", ErrStrataConflict, err)
		}
		return err
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() & 0xff {
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED, sqlite3.SQLITE_CONSTRAINT:
			return fmt.Errorf("%w: %w", ErrStrataConflict, err)
		}
	}
	return err
}
