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

// Package store provides persistence for the few-shot learning loop. This
// file contains the in-memory implementations used by the test suite and by
// local runs without a configured spreadsheet. The example store keeps its
// slice sorted at insert time so queries are a straight filtered scan.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/jaycherian/gcp-go-prompt-studio/internal/core/model"
)

// MemoryExampleStore is a mutex-guarded, append-only slice of examples. It
// satisfies the same ordering and validation contract as the sheet-backed
// store without any I/O.
type MemoryExampleStore struct {
	mu        sync.RWMutex
	threshold float64
	examples  []*model.Example
}

// NewMemoryExampleStore creates an empty in-memory example store that
// rejects inserts below the given promotion threshold.
func NewMemoryExampleStore(threshold float64) *MemoryExampleStore {
	return &MemoryExampleStore{threshold: threshold}
}

// Insert validates and appends an example, keeping the backing slice in
// query order (score descending, then creation time descending).
func (s *MemoryExampleStore) Insert(_ context.Context, example *model.Example) error {
	if err := validateExample(example, s.threshold); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *example
	s.examples = append(s.examples, &clone)
	sort.SliceStable(s.examples, func(i, j int) bool {
		a, b := s.examples[i], s.examples[j]
		if a.QualityScore != b.QualityScore {
			return a.QualityScore > b.QualityScore
		}
		return a.CreatedAt.After(b.CreatedAt)
	})
	return nil
}

// Query returns exact-genre matches at or above minScore, best first.
func (s *MemoryExampleStore) Query(_ context.Context, genre string, minScore float64, limit int) ([]*model.Example, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*model.Example, 0)
	for _, ex := range s.examples {
		if limit > 0 && len(out) == limit {
			break
		}
		if ex.Genre == genre && ex.QualityScore >= minScore {
			out = append(out, ex)
		}
	}
	return out, nil
}

// QueryAny returns examples of any genre at or above minScore, best first.
func (s *MemoryExampleStore) QueryAny(_ context.Context, minScore float64, limit int) ([]*model.Example, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*model.Example, 0)
	for _, ex := range s.examples {
		if limit > 0 && len(out) == limit {
			break
		}
		if ex.QualityScore >= minScore {
			out = append(out, ex)
		}
	}
	return out, nil
}

// Count returns the number of stored examples, optionally for one genre.
func (s *MemoryExampleStore) Count(_ context.Context, genre string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if genre == "" {
		return len(s.examples), nil
	}
	n := 0
	for _, ex := range s.examples {
		if ex.Genre == genre {
			n++
		}
	}
	return n, nil
}

// validateExample applies the insert preconditions shared by all example
// store implementations: non-empty content and genre, and a quality score
// at or above the promotion threshold. Rejects never persist as examples.
func validateExample(example *model.Example, threshold float64) error {
	if example == nil {
		return &ValidationError{Field: "example", Reason: "nil example"}
	}
	if example.Content == "" {
		return &ValidationError{Field: "content", Reason: "must not be empty"}
	}
	if example.Genre == "" {
		return &ValidationError{Field: "genre", Reason: "must not be empty"}
	}
	if example.QualityScore < threshold {
		return &ValidationError{
			Field:  "quality_score",
			Reason: "below promotion threshold",
		}
	}
	return nil
}

// MemoryDraftStore is the in-memory draft registry counterpart.
type MemoryDraftStore struct {
	mu      sync.RWMutex
	drafts  map[string]*model.PromptDraft
	order   []string // Insertion order, so listings are stable.
	results map[string][]*model.QCResult
}

// NewMemoryDraftStore creates an empty in-memory draft registry.
func NewMemoryDraftStore() *MemoryDraftStore {
	return &MemoryDraftStore{
		drafts:  make(map[string]*model.PromptDraft),
		results: make(map[string][]*model.QCResult),
	}
}

// SaveDraft records a draft. Saving the same id twice overwrites the stored
// copy; the orchestrator only ever saves a draft once.
func (s *MemoryDraftStore) SaveDraft(_ context.Context, draft *model.PromptDraft) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.drafts[draft.Id]; !ok {
		s.order = append(s.order, draft.Id)
	}
	clone := *draft
	s.drafts[draft.Id] = &clone
	return nil
}

// Get returns a copy of the stored draft by id.
func (s *MemoryDraftStore) Get(_ context.Context, id string) (*model.PromptDraft, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	draft, ok := s.drafts[id]
	if !ok {
		return nil, &StoreError{Op: "get", Err: ErrDraftNotFound}
	}
	clone := *draft
	return &clone, nil
}

// ListPending returns every draft still awaiting review, oldest first.
func (s *MemoryDraftStore) ListPending(_ context.Context) ([]*model.PromptDraft, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*model.PromptDraft, 0)
	for _, id := range s.order {
		if d := s.drafts[id]; d.Status == model.StatusPendingReview {
			clone := *d
			out = append(out, &clone)
		}
	}
	return out, nil
}

// SetStatus updates the status of a stored draft.
func (s *MemoryDraftStore) SetStatus(_ context.Context, id string, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	draft, ok := s.drafts[id]
	if !ok {
		return &StoreError{Op: "set_status", Err: ErrDraftNotFound}
	}
	draft.Status = status
	return nil
}

// SaveQCResult appends one verdict for a draft.
func (s *MemoryDraftStore) SaveQCResult(_ context.Context, result *model.QCResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *result
	s.results[result.DraftId] = append(s.results[result.DraftId], &clone)
	return nil
}

// ListQCResults returns all verdicts for a draft in append order.
func (s *MemoryDraftStore) ListQCResults(_ context.Context, draftId string) ([]*model.QCResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.results[draftId]
	out := make([]*model.QCResult, 0, len(stored))
	for _, r := range stored {
		clone := *r
		out = append(out, &clone)
	}
	return out, nil
}
