// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package orchestrator

import (
	"context"
	"errors"
)

// AttemptFunc runs one attempt of a race. attempt is the launch index, which
// carries no priority.
type AttemptFunc[T any] func(ctx context.Context, attempt int) (T, error)

type outcome[T any] struct {
	attempt int
	value   T
	err     error
}

// RaceStats describes how a race ended.
type RaceStats struct {
	// Winner is the launch index of the successful attempt, -1 if none.
	Winner int

	// Failures is the number of failed outcomes received before the race
	// was decided.
	Failures int

	// Categories counts received failures by category.
	Categories map[Category]int
}

// Race launches attempts concurrent calls of fn and returns the first
// success. Outcomes are taken in delivery order only.
//
// Once a success is accepted the shared context passed to fn is cancelled,
// so losing attempts can abandon their I/O; their results land in a buffer
// sized to attempts and are dropped, so no sender ever blocks.
//
// If every attempt fails, Race returns an *Error in CategoryAggregate
// wrapping the first failure that was not a cancellation. If ctx ends first,
// ctx.Err() is returned. attempts <= 0 fails immediately with
// ErrConfiguration and fn is never called.
func Race[T any](ctx context.Context, attempts int, fn AttemptFunc[T]) (T, error) {
	v, _, err := race(ctx, attempts, fn)
	return v, err
}

func race[T any](ctx context.Context, attempts int, fn AttemptFunc[T]) (T, RaceStats, error) {
	var zero T
	stats := RaceStats{Winner: -1, Categories: make(map[Category]int)}
	if attempts <= 0 {
		return zero, stats, configurationError("race needs at least one attempt, got %d", attempts)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make(chan outcome[T], attempts)
	for i := 0; i < attempts; i++ {
		go func(i int) {
			v, err := fn(ctx, i)
			results <- outcome[T]{attempt: i, value: v, err: err}
		}(i)
	}

	var cause error
	for received := 0; received < attempts; received++ {
		select {
		case o := <-results:
			if o.err == nil {
				stats.Winner = o.attempt
				return o.value, stats, nil
			}
			stats.Failures++
			stats.Categories[CategoryOf(o.err)]++
			if cause == nil && !isCancellation(o.err) {
				cause = o.err
			}
		case <-ctx.Done():
			return zero, stats, ctx.Err()
		}
	}

	// failures caused by the caller giving up are not the orchestrator's
	if err := ctx.Err(); err != nil {
		return zero, stats, err
	}
	return zero, stats, &Error{
		Category: CategoryAggregate,
		Attempts: attempts,
		Err:      cause,
	}
}

func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled)
}
