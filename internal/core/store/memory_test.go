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

// Package store contains the test suite for the in-memory stores. The
// in-memory implementations carry the same validation and ordering contract
// as the sheet-backed ones, so these tests pin down the contract itself.
package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jaycherian/gcp-go-prompt-studio/internal/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newExample is a small helper for building valid examples in tests.
func newExample(id, genre string, score float64, createdAt time.Time) *model.Example {
	return &model.Example{
		Id:           id,
		Content:      "content for " + id,
		Genre:        genre,
		QualityScore: score,
		Source:       model.SourceManual,
		CreatedAt:    createdAt,
	}
}

// TestExampleStoreValidation verifies that malformed examples are rejected
// with a *ValidationError before anything is stored.
func TestExampleStoreValidation(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryExampleStore(7.0)
	now := time.Now()

	cases := []struct {
		name    string
		example *model.Example
	}{
		{"nil example", nil},
		{"empty content", &model.Example{Id: "x", Genre: "EDM", QualityScore: 8, CreatedAt: now}},
		{"empty genre", &model.Example{Id: "x", Content: "c", QualityScore: 8, CreatedAt: now}},
		{"score below threshold", newExample("x", "EDM", 6.9, now)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := s.Insert(ctx, tc.example)
			var validationErr *ValidationError
			require.ErrorAs(t, err, &validationErr)
		})
	}

	// Nothing was stored.
	count, err := s.Count(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	// The threshold itself is accepted.
	assert.NoError(t, s.Insert(ctx, newExample("ok", "EDM", 7.0, now)))
}

// TestExampleStoreOrdering verifies the query contract: quality score
// descending, creation time descending on ties, exact genre match, and the
// limit cap.
func TestExampleStoreOrdering(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryExampleStore(7.0)
	base := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, s.Insert(ctx, newExample("edm-old", "EDM", 8.0, base)))
	require.NoError(t, s.Insert(ctx, newExample("edm-best", "EDM", 9.0, base)))
	require.NoError(t, s.Insert(ctx, newExample("edm-new", "EDM", 8.0, base.Add(time.Hour))))
	require.NoError(t, s.Insert(ctx, newExample("folk-1", "Folk", 8.5, base)))

	out, err := s.Query(ctx, "EDM", 0, 0)
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, "edm-best", out[0].Id)
	assert.Equal(t, "edm-new", out[1].Id) // Newer wins the 8.0 tie.
	assert.Equal(t, "edm-old", out[2].Id)

	// Genre matching is exact and case-sensitive.
	out, err = s.Query(ctx, "edm", 0, 0)
	require.NoError(t, err)
	assert.Empty(t, out)

	// minScore is inclusive.
	out, err = s.Query(ctx, "EDM", 8.0, 0)
	require.NoError(t, err)
	assert.Len(t, out, 3)
	out, err = s.Query(ctx, "EDM", 8.5, 0)
	require.NoError(t, err)
	assert.Len(t, out, 1)

	// The limit caps results; zero means no cap.
	out, err = s.QueryAny(ctx, 0, 2)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "edm-best", out[0].Id)
	assert.Equal(t, "folk-1", out[1].Id)

	out, err = s.QueryAny(ctx, 0, 0)
	require.NoError(t, err)
	assert.Len(t, out, 4)
}

// TestExampleStoreCount verifies total and per-genre counts.
func TestExampleStoreCount(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryExampleStore(7.0)
	now := time.Now()

	require.NoError(t, s.Insert(ctx, newExample("a", "EDM", 8, now)))
	require.NoError(t, s.Insert(ctx, newExample("b", "EDM", 9, now)))
	require.NoError(t, s.Insert(ctx, newExample("c", "Folk", 8, now)))

	total, err := s.Count(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 3, total)

	edm, err := s.Count(ctx, "EDM")
	require.NoError(t, err)
	assert.Equal(t, 2, edm)

	none, err := s.Count(ctx, "Jazz")
	require.NoError(t, err)
	assert.Equal(t, 0, none)
}

// TestExampleStoreInsertIsolation verifies that the store keeps its own
// copy: mutating the inserted value afterwards must not change what readers
// observe.
func TestExampleStoreInsertIsolation(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryExampleStore(7.0)

	example := newExample("a", "EDM", 8, time.Now())
	require.NoError(t, s.Insert(ctx, example))
	example.Content = "mutated after insert"

	out, err := s.Query(ctx, "EDM", 0, 0)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "content for a", out[0].Content)
}

// TestDraftStoreLifecycle walks a draft through save, lookup, the pending
// list, and a status update.
func TestDraftStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryDraftStore()

	first := model.NewPromptDraft("EDM", "first draft", 5)
	second := model.NewPromptDraft("Folk", "second draft", 5)
	require.NoError(t, s.SaveDraft(ctx, first))
	require.NoError(t, s.SaveDraft(ctx, second))

	got, err := s.Get(ctx, first.Id)
	require.NoError(t, err)
	assert.Equal(t, first.Content, got.Content)

	pending, err := s.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, first.Id, pending[0].Id) // Oldest first.

	require.NoError(t, s.SetStatus(ctx, first.Id, model.StatusPromoted))
	pending, err = s.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, second.Id, pending[0].Id)

	got, err = s.Get(ctx, first.Id)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPromoted, got.Status)
}

// TestDraftStoreNotFound verifies the miss behavior of Get and SetStatus.
func TestDraftStoreNotFound(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryDraftStore()

	_, err := s.Get(ctx, "nope")
	assert.True(t, errors.Is(err, ErrDraftNotFound))
	var storeErr *StoreError
	assert.ErrorAs(t, err, &storeErr)

	err = s.SetStatus(ctx, "nope", model.StatusRejected)
	assert.True(t, errors.Is(err, ErrDraftNotFound))
}

// TestDraftStoreQCResults verifies that verdicts accumulate per draft in
// append order.
func TestDraftStoreQCResults(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryDraftStore()
	draft := model.NewPromptDraft("EDM", "draft", 5)
	require.NoError(t, s.SaveDraft(ctx, draft))

	first := &model.QCResult{DraftId: draft.Id, Score: 5.5, Feedback: "weak hook", EvaluatedAt: time.Now()}
	second := &model.QCResult{DraftId: draft.Id, Score: 7.5, Feedback: "better", EvaluatedAt: time.Now()}
	require.NoError(t, s.SaveQCResult(ctx, first))
	require.NoError(t, s.SaveQCResult(ctx, second))

	results, err := s.ListQCResults(ctx, draft.Id)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, 5.5, results[0].Score)
	assert.Equal(t, 7.5, results[1].Score)

	results, err = s.ListQCResults(ctx, "other")
	require.NoError(t, err)
	assert.Empty(t, results)
}
