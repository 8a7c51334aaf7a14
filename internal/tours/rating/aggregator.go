// Copyright (c) 2026 Wayfarer. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package rating maintains the denormalized rating aggregate on each tour.

Tours carry ratings_average and ratings_quantity as a read-optimized cache
of their reviews. This package is the only writer of those two columns: the
review service calls [Aggregator.Recompute] after every review mutation, and
the aggregator recalculates the pair from the review table itself.

# Consistency

Recomputes are best-effort by contract: a failed aggregate write never fails
the review request that triggered it. Within one process, recomputes for the
same tour are serialized through a per-tour lock so concurrent review
mutations cannot interleave their read-then-write cycles. Across processes
the last writer wins, which is acceptable because every recompute derives
the full pair from source data rather than incrementing.
*/
package rating

import (
	"context"
	"log/slog"
	"sync"
)

// Aggregate defaults for a tour with no reviews.
const (
	// DefaultAverage seeds new and review-less tours.
	DefaultAverage = 4.5
	// DefaultQuantity is the review count of a review-less tour.
	DefaultQuantity = 0
)

// # Contracts

// ReviewSummarizer reads the aggregate over a tour's reviews.
type ReviewSummarizer interface {
	/*
		Summarize returns the mean rating and review count for a tour.

		Parameters:
		  - context: context.Context
		  - tourID: string

		Returns:
		  - float64: Mean rating (0 when count is 0)
		  - int: Number of reviews
		  - error: Storage failures
	*/
	Summarize(context context.Context, tourID string) (float64, int, error)
}

// TourRatingWriter persists the derived aggregate pair onto the tour row.
type TourRatingWriter interface {
	/*
		UpdateRating writes ratings_average and ratings_quantity for a tour.

		Parameters:
		  - context: context.Context
		  - tourID: string
		  - average: float64
		  - quantity: int

		Returns:
		  - error: Storage failures
	*/
	UpdateRating(context context.Context, tourID string, average float64, quantity int) error
}

// StatsInvalidator drops cached tour statistics after an aggregate change.
type StatsInvalidator interface {
	InvalidateTourStats(context context.Context) error
}

// # Aggregator

// Aggregator recomputes tour rating aggregates from review data.
type Aggregator struct {
	reviewSummarizer ReviewSummarizer
	tourWriter       TourRatingWriter
	statsInvalidator StatsInvalidator
	logger           *slog.Logger

	// locks serializes in-process recomputes per tour.
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewAggregator constructs a new [Aggregator].
//
// statsInvalidator may be nil when no stats cache is wired (tests).
func NewAggregator(
	summarizer ReviewSummarizer,
	writer TourRatingWriter,
	invalidator StatsInvalidator,
	logger *slog.Logger,
) *Aggregator {
	return &Aggregator{
		reviewSummarizer: summarizer,
		tourWriter:       writer,
		statsInvalidator: invalidator,
		logger:           logger,
		locks:            make(map[string]*sync.Mutex),
	}
}

/*
Recompute recalculates and persists the rating aggregate for one tour.

Description: Reads AVG and COUNT over the tour's reviews in a single
aggregate query, then writes the pair back to the tour row. A tour with no
reviews returns to the seed values (4.5 average, 0 quantity). Failures are
logged and swallowed: the triggering review mutation has already succeeded
and must not be rolled back by a cache refresh.

Parameters:
  - context: context.Context (from the triggering request)
  - tourID: string
*/
func (aggregator *Aggregator) Recompute(context context.Context, tourID string) {
	lock := aggregator.lockFor(tourID)
	lock.Lock()
	defer lock.Unlock()

	average, quantity, err := aggregator.reviewSummarizer.Summarize(context, tourID)
	if err != nil {
		aggregator.logger.Error("rating_recompute_read_failed",
			slog.String("tour_id", tourID),
			slog.Any("error", err),
		)
		return
	}

	if quantity == DefaultQuantity {
		average = DefaultAverage
	}

	if err := aggregator.tourWriter.UpdateRating(context, tourID, average, quantity); err != nil {
		aggregator.logger.Error("rating_recompute_write_failed",
			slog.String("tour_id", tourID),
			slog.Any("error", err),
		)
		return
	}

	// Derived stats views are stale now.
	if aggregator.statsInvalidator != nil {
		if err := aggregator.statsInvalidator.InvalidateTourStats(context); err != nil {
			aggregator.logger.Warn("rating_stats_invalidate_failed",
				slog.String("tour_id", tourID),
				slog.Any("error", err),
			)
		}
	}
}

// lockFor returns the per-tour mutex, creating it on first use.
func (aggregator *Aggregator) lockFor(tourID string) *sync.Mutex {
	aggregator.mu.Lock()
	defer aggregator.mu.Unlock()

	lock, ok := aggregator.locks[tourID]
	if !ok {
		lock = &sync.Mutex{}
		aggregator.locks[tourID] = lock
	}
	return lock
}
