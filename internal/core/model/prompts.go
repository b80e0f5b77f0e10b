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

// Package model defines the core data structures for the application.
// This file holds the domain objects of the few-shot learning loop: the
// scored Example records that make up the learning corpus, the transient
// GenerationRequest that callers submit, the PromptDraft produced by each
// generation cycle, and the QCResult recorded by the quality gate.
//
// Lifecycle summary:
//   - Example: created by the quality gate's promotion step or by manual
//     seeding; never updated, never deleted.
//   - GenerationRequest: constructed per call, never persisted.
//   - PromptDraft: created once per cycle; its Status transitions exactly
//     once out of StatusPendingReview.
//   - QCResult: created once per evaluation attempt, never mutated.
package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Draft status values. A draft starts in StatusPendingReview and moves to
// exactly one of the two terminal states.
const (
	StatusPendingReview = "PENDING_REVIEW"
	StatusPromoted      = "PROMOTED"
	StatusRejected      = "REJECTED"
)

// Example provenance tags. Seed examples are compiled into the binary and
// exist to cover the cold-start case; generated examples are promoted by
// the quality gate; manual examples are curated by an operator.
const (
	SourceSeed      = "seed"
	SourceGenerated = "generated"
	SourceManual    = "manual"
)

// Example is a stored artifact usable as an in-context demonstration for
// the generative model. Every Example that reaches the store carries a
// quality score at or above the promotion threshold; the store enforces
// this invariant at insert time.
type Example struct {
	Id           string    `json:"id"`            // Unique identifier, immutable.
	Content      string    `json:"content"`       // The prompt text; opaque to the core.
	Genre        string    `json:"genre"`         // Label used for same-genre weighting. Open set.
	QualityScore float64   `json:"quality_score"` // 0-10, set once at promotion time, never recomputed.
	Tags         []string  `json:"tags,omitempty"`
	Source       string    `json:"source"`     // One of the Source* constants.
	CreatedAt    time.Time `json:"created_at"` // Set at insertion, never mutated.
}

// GenerationRequest describes what the caller wants produced. Attributes is
// an open key/value map forwarded verbatim into the prompt; documented keys
// are "mood", "tempo", "style_references" and "additional_instructions",
// but the core does not enforce any vocabulary.
type GenerationRequest struct {
	Genre      string            `json:"genre" binding:"required"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// PromptDraft is the output of one generation cycle. The orchestrator is
// the only writer of Status, and the transition out of StatusPendingReview
// happens at most once (see Transition).
type PromptDraft struct {
	Id           string    `json:"id"`
	Genre        string    `json:"genre"`
	Content      string    `json:"content"`
	ExamplesUsed int       `json:"examples_used"` // Number of few-shot examples injected into the prompt.
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewPromptDraft creates a draft in the StatusPendingReview state with a
// fresh UUID and the current timestamp.
func NewPromptDraft(genre string, content string, examplesUsed int) *PromptDraft {
	return &PromptDraft{
		Id:           uuid.NewString(),
		Genre:        genre,
		Content:      content,
		ExamplesUsed: examplesUsed,
		Status:       StatusPendingReview,
		CreatedAt:    time.Now().UTC(),
	}
}

// Transition moves the draft from StatusPendingReview to the given terminal
// state. A draft already in a terminal state cannot transition again; this
// is what makes the review step safe to retry after a parse failure.
//
// Inputs:
//   - status: StatusPromoted or StatusRejected.
//
// Outputs:
//   - error: If the draft already left StatusPendingReview, or the target
//     state is not terminal.
func (d *PromptDraft) Transition(status string) error {
	if status != StatusPromoted && status != StatusRejected {
		return fmt.Errorf("invalid target status %q", status)
	}
	if d.Status != StatusPendingReview {
		return fmt.Errorf("draft %s already resolved to %s", d.Id, d.Status)
	}
	d.Status = status
	return nil
}

// QCResult is the judge's verdict on a single PromptDraft evaluation. A
// draft that needed multiple evaluation attempts (parse failures, queue
// retries) accumulates one QCResult per successful parse; the most recent
// one is authoritative.
type QCResult struct {
	DraftId     string    `json:"draft_id"`
	Score       float64   `json:"score"` // 0-10 as parsed from the judge response.
	Feedback    string    `json:"feedback"`
	EvaluatedAt time.Time `json:"evaluated_at"`
}

// CycleResult bundles the artifacts of one orchestrated generation cycle.
// QC is nil when the cycle ended before the evaluation step completed
// (generation failure or an unparseable judge response).
type CycleResult struct {
	Draft *PromptDraft `json:"draft"`
	QC    *QCResult    `json:"qc,omitempty"`
}

// LearningStats is a read-only aggregation over the example store that
// shows how the corpus is growing over time.
type LearningStats struct {
	TotalExamples       int            `json:"total_examples"`
	AverageQualityScore float64        `json:"average_quality_score"`
	CountsByGenre       map[string]int `json:"counts_by_genre"`
	RecentPromotions    int            `json:"recent_promotions"` // Examples added in the last 24 hours.
	TopGenres           []string       `json:"top_genres"`        // Genres with the most stored examples, best first.
}

// QCQueueSummary reports the outcome of one pass over the pending drafts.
type QCQueueSummary struct {
	Processed int `json:"processed"`
	Promoted  int `json:"promoted"`
	Rejected  int `json:"rejected"`
	Failed    int `json:"failed"` // Drafts whose judge response could not be parsed; they remain pending.
}
