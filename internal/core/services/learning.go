// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// This file defines the LearningService, which aggregates the example store
// into the learning statistics exposed by the API. Every call recomputes
// from the corpus; with one new row per promotion there is nothing worth
// caching.
package services

import (
	"context"
	"sort"
	"time"

	"github.com/jaycherian/gcp-go-prompt-studio/internal/core/model"
	"github.com/jaycherian/gcp-go-prompt-studio/internal/core/store"
)

// topGenreCount caps the TopGenres list in the statistics output.
const topGenreCount = 3

// LearningService computes corpus growth statistics.
type LearningService struct {
	store        store.ExampleStore
	recentWindow time.Duration // Window for the "recent promotions" count.
	now          func() time.Time
}

// NewLearningService is the constructor for LearningService.
//
// Inputs:
//   - exampleStore: The corpus to aggregate.
//   - recentWindow: How far back an example still counts as a recent
//     promotion (24 hours by default).
func NewLearningService(exampleStore store.ExampleStore, recentWindow time.Duration) *LearningService {
	return &LearningService{
		store:        exampleStore,
		recentWindow: recentWindow,
		now:          time.Now,
	}
}

// Stats scans the corpus once and returns the aggregate view: totals, the
// mean quality score, per-genre counts, the recent-promotion count, and the
// most populated genres.
//
// Outputs:
//   - *model.LearningStats: The aggregation; maps and slices are always
//     non-nil, so an empty corpus serializes as zeros rather than nulls.
//   - error: A *store.StoreError when the corpus cannot be read.
func (s *LearningService) Stats(ctx context.Context) (*model.LearningStats, error) {
	examples, err := s.store.QueryAny(ctx, 0, 0)
	if err != nil {
		return nil, err
	}

	stats := &model.LearningStats{
		CountsByGenre: make(map[string]int),
		TopGenres:     make([]string, 0, topGenreCount),
	}
	if len(examples) == 0 {
		return stats, nil
	}

	cutoff := s.now().Add(-s.recentWindow)
	scoreSum := 0.0
	for _, ex := range examples {
		stats.TotalExamples++
		scoreSum += ex.QualityScore
		stats.CountsByGenre[ex.Genre]++
		if ex.CreatedAt.After(cutoff) {
			stats.RecentPromotions++
		}
	}
	stats.AverageQualityScore = scoreSum / float64(stats.TotalExamples)

	// Rank genres by example count, breaking ties alphabetically so the
	// output is stable across calls.
	genres := make([]string, 0, len(stats.CountsByGenre))
	for genre := range stats.CountsByGenre {
		genres = append(genres, genre)
	}
	sort.Slice(genres, func(i, j int) bool {
		if stats.CountsByGenre[genres[i]] != stats.CountsByGenre[genres[j]] {
			return stats.CountsByGenre[genres[i]] > stats.CountsByGenre[genres[j]]
		}
		return genres[i] < genres[j]
	})
	if len(genres) > topGenreCount {
		genres = genres[:topGenreCount]
	}
	stats.TopGenres = genres

	return stats, nil
}
