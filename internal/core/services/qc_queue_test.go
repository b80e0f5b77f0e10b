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

// This file tests the QC queue: one pass evaluates every pending draft,
// applies the verdicts, and reports what happened without letting a single
// bad draft fail the pass.
package services_test

import (
	"context"
	"strings"
	"testing"

	"github.com/jaycherian/gcp-go-prompt-studio/internal/core/model"
	"github.com/jaycherian/gcp-go-prompt-studio/internal/core/services"
	"github.com/jaycherian/gcp-go-prompt-studio/internal/core/store"
	test "github.com/jaycherian/gcp-go-prompt-studio/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestProcessPendingEmptyBacklog verifies the no-op pass.
func TestProcessPendingEmptyBacklog(t *testing.T) {
	gate, _ := newGate(t, test.NewFakeCompleter())
	queue := services.NewQCQueueService(store.NewMemoryDraftStore(), gate, 4)

	summary, err := queue.ProcessPending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &model.QCQueueSummary{}, summary)
}

// TestProcessPendingResolvesBacklog verifies a full pass over one draft:
// the verdict is recorded, the draft is promoted, and the corpus grows.
func TestProcessPendingResolvesBacklog(t *testing.T) {
	ctx := context.Background()
	judge := test.NewFakeCompleter(test.FakeResponse{Text: `{"score": 8, "feedback": "solid"}`})
	gate, examples := newGate(t, judge)
	drafts := store.NewMemoryDraftStore()
	queue := services.NewQCQueueService(drafts, gate, 4)

	draft := model.NewPromptDraft("EDM", "pending draft", 5)
	require.NoError(t, drafts.SaveDraft(ctx, draft))

	summary, err := queue.ProcessPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Processed)
	assert.Equal(t, 1, summary.Promoted)
	assert.Equal(t, 0, summary.Rejected)
	assert.Equal(t, 0, summary.Failed)

	stored, err := drafts.Get(ctx, draft.Id)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPromoted, stored.Status)

	results, err := drafts.ListQCResults(ctx, draft.Id)
	require.NoError(t, err)
	assert.Len(t, results, 1)

	count, err := examples.Count(ctx, "EDM")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	// The backlog is drained; a second pass is a no-op.
	summary, err = queue.ProcessPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Processed)
}

// TestProcessPendingMixedOutcomes verifies the summary counts when the
// judge promotes one draft, rejects another, and garbles a third. The
// garbled draft stays pending for the next pass.
func TestProcessPendingMixedOutcomes(t *testing.T) {
	ctx := context.Background()

	// The judge's responses keyed by the draft content embedded in the
	// prompt; a scripted sequence would race under concurrency.
	judge := &contentKeyedJudge{verdicts: map[string]string{
		"winner": `{"score": 9, "feedback": "great"}`,
		"loser":  `{"score": 4, "feedback": "flat"}`,
		"broken": "not a verdict",
	}}
	examples := store.NewMemoryExampleStore(7.0)
	gate, err := services.NewQualityGateService(judge, "judge", judgeTemplate, examples, 7.0)
	require.NoError(t, err)

	drafts := store.NewMemoryDraftStore()
	queue := services.NewQCQueueService(drafts, gate, 4)
	for _, content := range []string{"winner", "loser", "broken"} {
		require.NoError(t, drafts.SaveDraft(ctx, model.NewPromptDraft("EDM", content, 5)))
	}

	summary, err := queue.ProcessPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Processed)
	assert.Equal(t, 1, summary.Promoted)
	assert.Equal(t, 1, summary.Rejected)
	assert.Equal(t, 1, summary.Failed)

	pending, err := drafts.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "broken", pending[0].Content)
}

// contentKeyedJudge returns a verdict based on which draft content appears
// in the prompt, independent of call order.
type contentKeyedJudge struct {
	verdicts map[string]string
}

func (j *contentKeyedJudge) Complete(_ context.Context, prompt string) (string, error) {
	for content, verdict := range j.verdicts {
		if strings.Contains(prompt, content) {
			return verdict, nil
		}
	}
	return "", assert.AnError
}
