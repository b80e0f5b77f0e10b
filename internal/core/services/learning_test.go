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

// This file tests the learning statistics aggregation over the example
// corpus.
package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/jaycherian/gcp-go-prompt-studio/internal/core/model"
	"github.com/jaycherian/gcp-go-prompt-studio/internal/core/services"
	"github.com/jaycherian/gcp-go-prompt-studio/internal/core/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestStatsEmptyCorpus verifies that an empty corpus yields zeros and empty
// collections rather than nils.
func TestStatsEmptyCorpus(t *testing.T) {
	learning := services.NewLearningService(store.NewMemoryExampleStore(7.0), 24*time.Hour)

	stats, err := learning.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalExamples)
	assert.Equal(t, 0.0, stats.AverageQualityScore)
	assert.NotNil(t, stats.CountsByGenre)
	assert.Empty(t, stats.CountsByGenre)
	assert.NotNil(t, stats.TopGenres)
	assert.Empty(t, stats.TopGenres)
	assert.Equal(t, 0, stats.RecentPromotions)
}

// TestStatsAggregation verifies totals, the mean score, the per-genre
// breakdown, the recent-promotion window, and the top-genre ranking.
func TestStatsAggregation(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryExampleStore(7.0)
	now := time.Now().UTC()

	insert := func(id, genre string, score float64, createdAt time.Time) {
		require.NoError(t, s.Insert(ctx, &model.Example{
			Id:           id,
			Content:      "content " + id,
			Genre:        genre,
			QualityScore: score,
			Source:       model.SourceGenerated,
			CreatedAt:    createdAt,
		}))
	}

	// Three EDM, two Folk, one Jazz; two of them older than the window.
	insert("edm-1", "EDM", 8.0, now.Add(-1*time.Hour))
	insert("edm-2", "EDM", 9.0, now.Add(-2*time.Hour))
	insert("edm-3", "EDM", 7.0, now.Add(-48*time.Hour))
	insert("folk-1", "Folk", 8.0, now.Add(-3*time.Hour))
	insert("folk-2", "Folk", 8.0, now.Add(-30*time.Hour))
	insert("jazz-1", "Jazz", 10.0, now.Add(-4*time.Hour))

	learning := services.NewLearningService(s, 24*time.Hour)
	stats, err := learning.Stats(ctx)
	require.NoError(t, err)

	assert.Equal(t, 6, stats.TotalExamples)
	assert.InDelta(t, 50.0/6.0, stats.AverageQualityScore, 1e-9)
	assert.Equal(t, map[string]int{"EDM": 3, "Folk": 2, "Jazz": 1}, stats.CountsByGenre)
	assert.Equal(t, 4, stats.RecentPromotions)
	assert.Equal(t, []string{"EDM", "Folk", "Jazz"}, stats.TopGenres)
}
