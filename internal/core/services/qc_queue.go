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

// This file defines the QCQueueService, which re-runs the quality gate over
// every draft still pending review. Drafts end up here when their first
// evaluation failed (judge outage, unparseable verdict); the queue gives
// them another pass without regenerating anything.
package services

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/jaycherian/gcp-go-prompt-studio/internal/core/model"
	"github.com/jaycherian/gcp-go-prompt-studio/internal/core/store"
)

// QCQueueService drains the pending-review backlog through the quality gate.
type QCQueueService struct {
	drafts      store.DraftStore
	gate        *QualityGateService
	parallelism int // Concurrent evaluations; bounded by the judge model's rate limit anyway.
}

// NewQCQueueService is the constructor for QCQueueService.
//
// Inputs:
//   - drafts: The draft registry to drain.
//   - gate: The quality gate that evaluates and resolves each draft.
//   - parallelism: How many drafts to evaluate concurrently; values below 1
//     are treated as 1.
func NewQCQueueService(drafts store.DraftStore, gate *QualityGateService, parallelism int) *QCQueueService {
	if parallelism < 1 {
		parallelism = 1
	}
	return &QCQueueService{
		drafts:      drafts,
		gate:        gate,
		parallelism: parallelism,
	}
}

// ProcessPending evaluates every pending draft and applies the verdicts.
// Per-draft failures are counted, not fatal: a draft whose evaluation fails
// stays pending and will be picked up by the next pass. Only a failure to
// list the backlog aborts the run.
//
// Outputs:
//   - *model.QCQueueSummary: Counts of processed, promoted, rejected, and
//     failed drafts for this pass.
//   - error: A *store.StoreError when the pending list cannot be read.
func (s *QCQueueService) ProcessPending(ctx context.Context) (*model.QCQueueSummary, error) {
	pending, err := s.drafts.ListPending(ctx)
	if err != nil {
		return nil, err
	}

	summary := &model.QCQueueSummary{}
	var mu sync.Mutex

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(s.parallelism)
	for _, draft := range pending {
		group.Go(func() error {
			outcome := s.process(groupCtx, draft)
			mu.Lock()
			defer mu.Unlock()
			summary.Processed++
			switch outcome {
			case model.StatusPromoted:
				summary.Promoted++
			case model.StatusRejected:
				summary.Rejected++
			default:
				summary.Failed++
			}
			return nil
		})
	}
	// Workers never return errors; Wait only orders the counter updates
	// before the summary is read.
	_ = group.Wait()

	return summary, nil
}

// process runs one draft through the gate and persists the outcome. It
// returns the draft's final status, or an empty string when the draft is
// still pending.
func (s *QCQueueService) process(ctx context.Context, draft *model.PromptDraft) string {
	result, err := s.gate.Evaluate(ctx, draft)
	if err != nil {
		slog.Warn("qc queue: evaluation failed, draft stays pending",
			"draft_id", draft.Id, "error", err.Error())
		return ""
	}
	if err := s.drafts.SaveQCResult(ctx, result); err != nil {
		slog.Warn("qc queue: failed to record verdict",
			"draft_id", draft.Id, "error", err.Error())
		return ""
	}
	if err := s.gate.Resolve(ctx, draft, result); err != nil {
		slog.Warn("qc queue: failed to resolve draft, it stays pending",
			"draft_id", draft.Id, "error", err.Error())
		return ""
	}
	if err := s.drafts.SetStatus(ctx, draft.Id, draft.Status); err != nil {
		// The stored row still reads pending, so the next pass will
		// re-evaluate this draft from scratch.
		slog.Warn("qc queue: failed to persist status",
			"draft_id", draft.Id, "status", draft.Status, "error", err.Error())
		return ""
	}
	return draft.Status
}
