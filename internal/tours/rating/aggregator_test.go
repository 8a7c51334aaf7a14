// Copyright (c) 2026 Wayfarer. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package rating

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memorySummarizer derives the aggregate from an in-memory rating list.
type memorySummarizer struct {
	mu      sync.Mutex
	ratings map[string][]int
	err     error
}

func (s *memorySummarizer) Summarize(_ context.Context, tourID string) (float64, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return 0, 0, s.err
	}

	ratings := s.ratings[tourID]
	if len(ratings) == 0 {
		return 0, 0, nil
	}

	sum := 0
	for _, rating := range ratings {
		sum += rating
	}
	return float64(sum) / float64(len(ratings)), len(ratings), nil
}

// recordingWriter captures every aggregate write.
type recordingWriter struct {
	mu       sync.Mutex
	average  float64
	quantity int
	writes   int
	err      error
}

func (w *recordingWriter) UpdateRating(_ context.Context, _ string, average float64, quantity int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.average = average
	w.quantity = quantity
	w.writes++
	return nil
}

type countingInvalidator struct {
	mu    sync.Mutex
	calls int
}

func (i *countingInvalidator) InvalidateTourStats(context.Context) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.calls++
	return nil
}

const testTourID = "01912d68-783e-7a03-8467-5da5c7cf4ba1"

func TestRecompute_Mean(t *testing.T) {
	summarizer := &memorySummarizer{ratings: map[string][]int{testTourID: {5, 4, 3}}}
	writer := &recordingWriter{}
	invalidator := &countingInvalidator{}

	NewAggregator(summarizer, writer, invalidator, slog.Default()).
		Recompute(context.Background(), testTourID)

	assert.InDelta(t, 4.0, writer.average, 0.0001)
	assert.Equal(t, 3, writer.quantity)
	assert.Equal(t, 1, invalidator.calls)
}

func TestRecompute_EmptyResetsToDefaults(t *testing.T) {
	summarizer := &memorySummarizer{ratings: map[string][]int{}}
	writer := &recordingWriter{}

	NewAggregator(summarizer, writer, nil, slog.Default()).
		Recompute(context.Background(), testTourID)

	assert.Equal(t, DefaultAverage, writer.average)
	assert.Equal(t, DefaultQuantity, writer.quantity)
}

// Changing an existing review changes the mean but not the count.
func TestRecompute_UpdatedReviewKeepsQuantity(t *testing.T) {
	summarizer := &memorySummarizer{ratings: map[string][]int{testTourID: {3, 4}}}
	writer := &recordingWriter{}
	aggregator := NewAggregator(summarizer, writer, nil, slog.Default())

	aggregator.Recompute(context.Background(), testTourID)
	require.Equal(t, 2, writer.quantity)
	require.InDelta(t, 3.5, writer.average, 0.0001)

	// 3 → 5
	summarizer.ratings[testTourID] = []int{5, 4}
	aggregator.Recompute(context.Background(), testTourID)

	assert.Equal(t, 2, writer.quantity)
	assert.InDelta(t, 4.5, writer.average, 0.0001)
}

func TestRecompute_SwallowsFailures(t *testing.T) {
	t.Run("read failure skips write", func(t *testing.T) {
		summarizer := &memorySummarizer{err: errors.New("connection reset")}
		writer := &recordingWriter{}

		NewAggregator(summarizer, writer, nil, slog.Default()).
			Recompute(context.Background(), testTourID)

		assert.Equal(t, 0, writer.writes)
	})

	t.Run("write failure does not panic", func(t *testing.T) {
		summarizer := &memorySummarizer{ratings: map[string][]int{testTourID: {5}}}
		writer := &recordingWriter{err: errors.New("connection reset")}

		assert.NotPanics(t, func() {
			NewAggregator(summarizer, writer, nil, slog.Default()).
				Recompute(context.Background(), testTourID)
		})
	})
}

// Concurrent recomputes for the same tour serialize; the final state always
// reflects a complete read-then-write cycle.
func TestRecompute_ConcurrentSameTour(t *testing.T) {
	summarizer := &memorySummarizer{ratings: map[string][]int{testTourID: {5, 4, 3}}}
	writer := &recordingWriter{}
	aggregator := NewAggregator(summarizer, writer, nil, slog.Default())

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			aggregator.Recompute(context.Background(), testTourID)
		}()
	}
	wg.Wait()

	assert.Equal(t, 16, writer.writes)
	assert.InDelta(t, 4.0, writer.average, 0.0001)
	assert.Equal(t, 3, writer.quantity)
}
