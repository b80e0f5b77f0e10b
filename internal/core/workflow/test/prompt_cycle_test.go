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

// This file tests the complete generation cycle: selection, generation,
// evaluation, and promotion, including the failure paths that leave a
// pending draft behind for the QC queue.
package workflow_test

import (
	"fmt"
	"testing"

	"github.com/jaycherian/gcp-go-prompt-studio/internal/core/model"
	"github.com/jaycherian/gcp-go-prompt-studio/internal/core/services"
	"github.com/jaycherian/gcp-go-prompt-studio/internal/core/store"
	test "github.com/jaycherian/gcp-go-prompt-studio/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCyclePromotesPassingDraft runs a full cycle where the judge approves
// the draft. The draft must end promoted, the verdict recorded, and the
// corpus grown by exactly the new example.
func TestCyclePromotesPassingDraft(t *testing.T) {
	generator := test.NewFakeCompleter(test.FakeResponse{Text: "a shimmering synth-pop anthem"})
	judge := test.NewFakeCompleter(test.FakeResponse{Text: `{"score": 8.5, "feedback": "vivid and specific"}`})
	h := newHarness(t, generator, judge)

	result, err := h.workflow.RunCycle(ctx, &model.GenerationRequest{Genre: "Electronic Pop"})
	require.NoError(t, err)
	require.NotNil(t, result)
	require.NotNil(t, result.Draft)
	require.NotNil(t, result.QC)

	assert.Equal(t, model.StatusPromoted, result.Draft.Status)
	assert.Equal(t, "a shimmering synth-pop anthem", result.Draft.Content)
	assert.Equal(t, 8.5, result.QC.Score)

	// The seed fallback supplied the few-shot examples on the empty corpus.
	assert.Equal(t, len(model.SeedExamples("Electronic Pop")), result.Draft.ExamplesUsed)

	// The registry agrees with the in-memory draft.
	stored, err := h.drafts.Get(ctx, result.Draft.Id)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPromoted, stored.Status)

	// The corpus grew by one generated example.
	out, err := h.examples.Query(ctx, "Electronic Pop", 0, 0)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, result.Draft.Id, out[0].Id)
	assert.Equal(t, model.SourceGenerated, out[0].Source)
}

// TestCycleRejectsFailingDraft runs a full cycle where the judge scores the
// draft below the threshold. The draft must end rejected and the corpus
// must stay empty.
func TestCycleRejectsFailingDraft(t *testing.T) {
	generator := test.NewFakeCompleter(test.FakeResponse{Text: "generic edm song"})
	judge := test.NewFakeCompleter(test.FakeResponse{Text: `{"score": 6.9, "feedback": "too vague"}`})
	h := newHarness(t, generator, judge)

	result, err := h.workflow.RunCycle(ctx, &model.GenerationRequest{Genre: "EDM"})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, model.StatusRejected, result.Draft.Status)

	count, err := h.examples.Count(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	stored, err := h.drafts.Get(ctx, result.Draft.Id)
	require.NoError(t, err)
	assert.Equal(t, model.StatusRejected, stored.Status)
}

// TestCycleGenerationFailure verifies that a generator outage surfaces as a
// *services.GenerationError and that nothing is registered.
func TestCycleGenerationFailure(t *testing.T) {
	generator := test.NewFakeCompleter(test.FakeResponse{Err: fmt.Errorf("deadline exceeded")})
	judge := test.NewFakeCompleter()
	h := newHarness(t, generator, judge)

	result, err := h.workflow.RunCycle(ctx, &model.GenerationRequest{Genre: "EDM"})
	var generationErr *services.GenerationError
	require.ErrorAs(t, err, &generationErr)
	assert.Nil(t, result)
	assert.Equal(t, 0, judge.Calls())

	pending, err := h.drafts.ListPending(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

// TestCycleParseFailureLeavesDraftPending verifies the recovery contract:
// a garbled judge verdict surfaces as a *services.ScoreParseError, the
// result still carries the draft, and the draft stays pending so the QC
// queue can finish the job later.
func TestCycleParseFailureLeavesDraftPending(t *testing.T) {
	generator := test.NewFakeCompleter(test.FakeResponse{Text: "a brooding downtempo cut"})
	judge := test.NewFakeCompleter(
		test.FakeResponse{Text: "i give it four stars"},
		test.FakeResponse{Text: `{"score": 7.2, "feedback": "grew on me"}`},
	)
	h := newHarness(t, generator, judge)

	result, err := h.workflow.RunCycle(ctx, &model.GenerationRequest{Genre: "EDM"})
	var parseErr *services.ScoreParseError
	require.ErrorAs(t, err, &parseErr)
	require.NotNil(t, result)
	require.NotNil(t, result.Draft)
	assert.Nil(t, result.QC)
	assert.Equal(t, model.StatusPendingReview, result.Draft.Status)

	pending, err := h.drafts.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	// The QC queue finishes the cycle on its next pass.
	gate, err := services.NewQualityGateService(judge, "judge", judgeTemplate, h.examples, 7.0)
	require.NoError(t, err)
	queue := services.NewQCQueueService(h.drafts, gate, 2)
	summary, err := queue.ProcessPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Promoted)

	stored, err := h.drafts.Get(ctx, result.Draft.Id)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPromoted, stored.Status)
}

// TestCycleValidationFailure verifies that a request without a genre fails
// with a *store.ValidationError before any draft exists.
func TestCycleValidationFailure(t *testing.T) {
	generator := test.NewFakeCompleter(test.FakeResponse{Text: "unused"})
	judge := test.NewFakeCompleter()
	h := newHarness(t, generator, judge)

	result, err := h.workflow.RunCycle(ctx, &model.GenerationRequest{Genre: ""})
	var validationErr *store.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Nil(t, result)
}

// TestCycleFeedsItsOwnCorpus runs two cycles and verifies the learning
// loop: the example promoted by the first cycle is selected as a few-shot
// example in the second.
func TestCycleFeedsItsOwnCorpus(t *testing.T) {
	generator := test.NewFakeCompleter(
		test.FakeResponse{Text: "first promoted prompt"},
		test.FakeResponse{Text: "second prompt"},
	)
	judge := test.NewFakeCompleter(test.FakeResponse{Text: `{"score": 9, "feedback": "excellent"}`})
	h := newHarness(t, generator, judge)

	first, err := h.workflow.RunCycle(ctx, &model.GenerationRequest{Genre: "EDM"})
	require.NoError(t, err)
	require.Equal(t, model.StatusPromoted, first.Draft.Status)

	second, err := h.workflow.RunCycle(ctx, &model.GenerationRequest{Genre: "EDM"})
	require.NoError(t, err)
	require.Equal(t, model.StatusPromoted, second.Draft.Status)

	// The corpus was no longer empty, so the second cycle used it instead
	// of the seeds, and the generator saw the first cycle's output.
	assert.Equal(t, 1, second.Draft.ExamplesUsed)
	prompts := generator.Prompts()
	require.Len(t, prompts, 2)
	assert.Contains(t, prompts[1], "first promoted prompt")
}
