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

// Package store defines the persistence contracts of the few-shot learning
// loop and their error taxonomy. Two stores exist:
//
//   - ExampleStore: the append-only learning corpus. Examples enter through
//     the quality gate's promotion step (or manual seeding) and are never
//     updated or deleted; unbounded growth is an accepted limitation.
//   - DraftStore: the registry of generated prompt drafts and their QC
//     results, so pending drafts survive a failed evaluation and can be
//     re-processed by the QC queue.
//
// Both interfaces have an in-memory implementation (tests, sheetless local
// runs) and a Google Sheets backed implementation (production). Instances
// are always passed in through constructor injection; there is no ambient
// singleton store.
package store

import (
	"context"
	"fmt"

	"github.com/jaycherian/gcp-go-prompt-studio/internal/core/model"
)

// ExampleStore is the durable collection of scored examples. Insert must be
// serialized with respect to concurrent Query/QueryAny calls so a reader
// never observes a half-written Example.
type ExampleStore interface {
	// Insert appends an example. It fails with a *ValidationError when the
	// quality score is below the store's promotion threshold or when the
	// content or genre is empty, and with a *StoreError on I/O failure.
	Insert(ctx context.Context, example *model.Example) error

	// Query returns examples whose genre matches exactly (case-sensitive)
	// and whose quality score is >= minScore, ordered by quality score
	// descending then creation time descending (newer wins ties), capped
	// at limit. A limit <= 0 means no cap.
	Query(ctx context.Context, genre string, minScore float64, limit int) ([]*model.Example, error)

	// QueryAny behaves like Query but ignores genre. It backs the diverse
	// slice of the selection policy.
	QueryAny(ctx context.Context, minScore float64, limit int) ([]*model.Example, error)

	// Count returns the number of stored examples, filtered to a genre when
	// genre is non-empty.
	Count(ctx context.Context, genre string) (int, error)
}

// DraftStore records generated prompt drafts and the QC verdicts issued
// against them. Drafts are append-once rows whose only mutable field is the
// status column.
type DraftStore interface {
	// SaveDraft records a freshly generated draft in PENDING_REVIEW state.
	SaveDraft(ctx context.Context, draft *model.PromptDraft) error

	// Get returns a draft by id, or a *StoreError wrapping ErrDraftNotFound.
	Get(ctx context.Context, id string) (*model.PromptDraft, error)

	// ListPending returns every draft still in PENDING_REVIEW state.
	ListPending(ctx context.Context) ([]*model.PromptDraft, error)

	// SetStatus updates the status column of a stored draft. It does not
	// enforce the single-transition rule; that belongs to the owner of the
	// in-memory draft (the orchestrator / QC queue).
	SetStatus(ctx context.Context, id string, status string) error

	// SaveQCResult appends one evaluation verdict for a draft.
	SaveQCResult(ctx context.Context, result *model.QCResult) error

	// ListQCResults returns all verdicts recorded for a draft, oldest first.
	ListQCResults(ctx context.Context, draftId string) ([]*model.QCResult, error)
}

// ErrDraftNotFound marks Get misses; retrieve it with errors.Is through the
// wrapping *StoreError.
var ErrDraftNotFound = fmt.Errorf("draft not found")

// ValidationError reports a malformed example or request that was rejected
// before any side effect took place. The caller must fix the input; a retry
// with the same payload will fail the same way.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

// StoreError wraps an I/O failure of the underlying row store. Promotion
// treats the status transition and the store write as a single unit, so a
// StoreError during promotion leaves the draft pending rather than marked
// promoted without a stored example.
type StoreError struct {
	Op  string // The store operation that failed, e.g. "insert".
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s failed: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }
