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

// This file tests the quality gate: verdict parsing, the inclusive
// promotion threshold, and the atomicity of promotion (corpus insert plus
// status transition as a unit).
package services_test

import (
	"context"
	"testing"

	"github.com/jaycherian/gcp-go-prompt-studio/internal/core/model"
	"github.com/jaycherian/gcp-go-prompt-studio/internal/core/services"
	"github.com/jaycherian/gcp-go-prompt-studio/internal/core/store"
	test "github.com/jaycherian/gcp-go-prompt-studio/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// judgeTemplate is a minimal stand-in for the configured judge prompt.
const judgeTemplate = `Rate this {{.Genre}} prompt: {{.Content}}`

// newGate builds a quality gate over a fresh memory store with the default
// threshold.
func newGate(t *testing.T, judge *test.FakeCompleter) (*services.QualityGateService, *store.MemoryExampleStore) {
	t.Helper()
	examples := store.NewMemoryExampleStore(7.0)
	gate, err := services.NewQualityGateService(judge, "judge", judgeTemplate, examples, 7.0)
	require.NoError(t, err)
	return gate, examples
}

// TestEvaluateParsesVerdict verifies the happy path of verdict parsing,
// including an integer score.
func TestEvaluateParsesVerdict(t *testing.T) {
	judge := test.NewFakeCompleter(test.FakeResponse{Text: `{"score": 8, "feedback": "strong hook, clear structure"}`})
	gate, _ := newGate(t, judge)
	draft := model.NewPromptDraft("EDM", "draft content", 5)

	result, err := gate.Evaluate(context.Background(), draft)
	require.NoError(t, err)
	assert.Equal(t, draft.Id, result.DraftId)
	assert.Equal(t, 8.0, result.Score)
	assert.Equal(t, "strong hook, clear structure", result.Feedback)
	assert.False(t, result.EvaluatedAt.IsZero())

	prompts := judge.Prompts()
	require.Len(t, prompts, 1)
	assert.Contains(t, prompts[0], "draft content")
}

// TestEvaluateParseFailures verifies that unusable judge responses surface
// as *ScoreParseError and leave the draft untouched.
func TestEvaluateParseFailures(t *testing.T) {
	cases := []struct {
		name     string
		response string
	}{
		{"not json", "this track slaps, 8/10"},
		{"missing score", `{"feedback": "nice"}`},
		{"score too high", `{"score": 11, "feedback": "x"}`},
		{"score negative", `{"score": -1, "feedback": "x"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			judge := test.NewFakeCompleter(test.FakeResponse{Text: tc.response})
			gate, _ := newGate(t, judge)
			draft := model.NewPromptDraft("EDM", "draft content", 5)

			_, err := gate.Evaluate(context.Background(), draft)
			var parseErr *services.ScoreParseError
			require.ErrorAs(t, err, &parseErr)
			assert.Equal(t, model.StatusPendingReview, draft.Status)
		})
	}
}

// TestEvaluateRetryAfterParseFailure verifies that a failed evaluation can
// simply be repeated: the draft is still pending and the second verdict
// resolves it.
func TestEvaluateRetryAfterParseFailure(t *testing.T) {
	judge := test.NewFakeCompleter(
		test.FakeResponse{Text: "garbled"},
		test.FakeResponse{Text: `{"score": 7.5, "feedback": "fine"}`},
	)
	gate, examples := newGate(t, judge)
	draft := model.NewPromptDraft("EDM", "draft content", 5)

	_, err := gate.Evaluate(context.Background(), draft)
	var parseErr *services.ScoreParseError
	require.ErrorAs(t, err, &parseErr)

	result, err := gate.Evaluate(context.Background(), draft)
	require.NoError(t, err)
	require.NoError(t, gate.Resolve(context.Background(), draft, result))
	assert.Equal(t, model.StatusPromoted, draft.Status)

	count, err := examples.Count(context.Background(), "EDM")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

// TestResolveThresholdBoundary verifies the inclusive threshold: 6.9 is
// rejected and grows nothing, 7.0 is promoted and grows the corpus by one.
func TestResolveThresholdBoundary(t *testing.T) {
	ctx := context.Background()

	t.Run("just below", func(t *testing.T) {
		gate, examples := newGate(t, test.NewFakeCompleter())
		draft := model.NewPromptDraft("EDM", "almost there", 5)

		err := gate.Resolve(ctx, draft, &model.QCResult{DraftId: draft.Id, Score: 6.9})
		require.NoError(t, err)
		assert.Equal(t, model.StatusRejected, draft.Status)

		count, err := examples.Count(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, 0, count)
	})

	t.Run("exactly at", func(t *testing.T) {
		gate, examples := newGate(t, test.NewFakeCompleter())
		draft := model.NewPromptDraft("EDM", "good enough", 5)

		err := gate.Resolve(ctx, draft, &model.QCResult{DraftId: draft.Id, Score: 7.0})
		require.NoError(t, err)
		assert.Equal(t, model.StatusPromoted, draft.Status)

		out, err := examples.Query(ctx, "EDM", 0, 0)
		require.NoError(t, err)
		require.Len(t, out, 1)
		assert.Equal(t, draft.Id, out[0].Id)
		assert.Equal(t, 7.0, out[0].QualityScore)
		assert.Equal(t, model.SourceGenerated, out[0].Source)
	})
}

// failingExampleStore wraps a memory store and fails every Insert, for
// testing promotion atomicity.
type failingExampleStore struct {
	*store.MemoryExampleStore
}

func (s *failingExampleStore) Insert(_ context.Context, _ *model.Example) error {
	return &store.StoreError{Op: "insert", Err: assert.AnError}
}

// TestResolveInsertFailureKeepsDraftPending verifies promotion atomicity: a
// corpus write failure surfaces the error and leaves the draft pending, so
// the promotion can be retried.
func TestResolveInsertFailureKeepsDraftPending(t *testing.T) {
	examples := &failingExampleStore{store.NewMemoryExampleStore(7.0)}
	gate, err := services.NewQualityGateService(test.NewFakeCompleter(), "judge", judgeTemplate, examples, 7.0)
	require.NoError(t, err)

	draft := model.NewPromptDraft("EDM", "great draft", 5)
	err = gate.Resolve(context.Background(), draft, &model.QCResult{DraftId: draft.Id, Score: 9.0})

	var storeErr *store.StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, model.StatusPendingReview, draft.Status)
}

// TestResolveRefusesResolvedDraft verifies that an already-resolved draft
// cannot be resolved again even with a passing score.
func TestResolveRefusesResolvedDraft(t *testing.T) {
	gate, _ := newGate(t, test.NewFakeCompleter())
	draft := model.NewPromptDraft("EDM", "content", 5)
	require.NoError(t, draft.Transition(model.StatusRejected))

	err := gate.Resolve(context.Background(), draft, &model.QCResult{DraftId: draft.Id, Score: 4.0})
	assert.Error(t, err)
	assert.Equal(t, model.StatusRejected, draft.Status)
}
