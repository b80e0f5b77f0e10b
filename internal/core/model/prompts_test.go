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

// Package model_test contains the test suite for the domain model. The
// tests here cover the draft lifecycle rules and the built-in seed corpus.
package model_test

import (
	"testing"

	"github.com/jaycherian/gcp-go-prompt-studio/internal/core/model"
	"github.com/stretchr/testify/assert"
)

// TestNewPromptDraft verifies that freshly generated drafts carry a unique
// id and start their life pending review.
func TestNewPromptDraft(t *testing.T) {
	draft := model.NewPromptDraft("EDM", "a pounding festival anthem", 5)

	assert.NotEmpty(t, draft.Id)
	assert.Equal(t, "EDM", draft.Genre)
	assert.Equal(t, model.StatusPendingReview, draft.Status)
	assert.Equal(t, 5, draft.ExamplesUsed)
	assert.False(t, draft.CreatedAt.IsZero())

	other := model.NewPromptDraft("EDM", "another anthem", 5)
	assert.NotEqual(t, draft.Id, other.Id)
}

// TestDraftTransition verifies the single-transition rule: a draft leaves
// the pending state exactly once, and only into a terminal state.
func TestDraftTransition(t *testing.T) {
	draft := model.NewPromptDraft("Folk", "a quiet fireside ballad", 3)

	assert.NoError(t, draft.Transition(model.StatusPromoted))
	assert.Equal(t, model.StatusPromoted, draft.Status)

	// A resolved draft cannot transition again, in either direction.
	assert.Error(t, draft.Transition(model.StatusRejected))
	assert.Error(t, draft.Transition(model.StatusPromoted))
	assert.Equal(t, model.StatusPromoted, draft.Status)
}

// TestDraftTransitionRejectsNonTerminalTarget verifies that the pending
// state is never a valid transition target.
func TestDraftTransitionRejectsNonTerminalTarget(t *testing.T) {
	draft := model.NewPromptDraft("Folk", "a quiet fireside ballad", 3)

	assert.Error(t, draft.Transition(model.StatusPendingReview))
	assert.Error(t, draft.Transition("ARCHIVED"))
	assert.Equal(t, model.StatusPendingReview, draft.Status)
}

// TestSeedCorpus verifies the shape of the built-in seeds: every genre has
// examples, every seed is marked as such, and the full set is the union of
// the per-genre sets.
func TestSeedCorpus(t *testing.T) {
	genres := model.SeedGenres()
	assert.NotEmpty(t, genres)

	total := 0
	for _, genre := range genres {
		seeds := model.SeedExamples(genre)
		assert.NotEmpty(t, seeds, "genre %s has no seeds", genre)
		for _, seed := range seeds {
			assert.Equal(t, genre, seed.Genre)
			assert.Equal(t, model.SourceSeed, seed.Source)
			assert.NotEmpty(t, seed.Content)
			assert.GreaterOrEqual(t, seed.QualityScore, 7.0)
		}
		total += len(seeds)
	}

	assert.Len(t, model.AllSeedExamples(), total)
	assert.Empty(t, model.SeedExamples("Norwegian Black Metal"))
}
