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

// This file defines the QualityGateService, the only path by which a draft
// becomes a corpus example.
//
// Logic Flow:
//
//  1. **Evaluate**: The judge model scores a pending draft. The response
//     must be a JSON object with a numeric "score" (0-10) and a string
//     "feedback"; anything else is a ScoreParseError and the draft stays
//     pending, so the evaluation can be retried without regenerating.
//  2. **Resolve**: A score at or above the promotion threshold (the
//     threshold itself passes) turns the draft into a corpus example and
//     marks it PROMOTED. Anything below is marked REJECTED and never enters
//     the corpus. The example insert happens before the status change: if
//     the store write fails, the draft stays pending rather than being
//     marked promoted with nothing stored.
package services

import (
	"context"
	"encoding/json"
	"strings"
	"text/template"
	"time"

	"github.com/jaycherian/gcp-go-prompt-studio/internal/cloud"
	"github.com/jaycherian/gcp-go-prompt-studio/internal/core/model"
	"github.com/jaycherian/gcp-go-prompt-studio/internal/core/store"
)

// JudgePromptData is the data passed to the judge template.
type JudgePromptData struct {
	Genre   string // The genre the draft was generated for.
	Content string // The draft text under evaluation.
}

// judgeVerdict mirrors the JSON shape the judge model is instructed to
// return. Score is a pointer so a missing field is distinguishable from a
// literal zero.
type judgeVerdict struct {
	Score    *float64 `json:"score"`
	Feedback string   `json:"feedback"`
}

// QualityGateService evaluates drafts and promotes the ones that pass.
type QualityGateService struct {
	judge     cloud.TextCompleter
	modelName string             // Logical judge model name, for error reporting.
	template  *template.Template // The parsed judge prompt template.
	examples  store.ExampleStore
	threshold float64 // Inclusive promotion threshold.
}

// NewQualityGateService is the constructor for QualityGateService.
//
// Inputs:
//   - judge: The judge model wrapper.
//   - modelName: The logical name of the judge model (e.g. "judge").
//   - templateSource: The Go text/template source of the judge prompt.
//   - examples: The corpus that promoted drafts are inserted into.
//   - threshold: The inclusive promotion threshold (7.0 by default).
//
// Outputs:
//   - *QualityGateService: The configured service.
//   - error: If the template source does not parse.
func NewQualityGateService(judge cloud.TextCompleter, modelName string, templateSource string, examples store.ExampleStore, threshold float64) (*QualityGateService, error) {
	tmpl, err := template.New("judge").Parse(templateSource)
	if err != nil {
		return nil, err
	}
	return &QualityGateService{
		judge:     judge,
		modelName: modelName,
		template:  tmpl,
		examples:  examples,
		threshold: threshold,
	}, nil
}

// Evaluate asks the judge model for a verdict on a draft. It has no side
// effects on the draft or the stores, so a failed evaluation can simply be
// run again.
//
// Inputs:
//   - ctx: The context for the request.
//   - draft: The pending draft to score.
//
// Outputs:
//   - *model.QCResult: The parsed verdict.
//   - error: A *GenerationError when the judge call fails, or a
//     *ScoreParseError when the response is not a usable verdict.
func (s *QualityGateService) Evaluate(ctx context.Context, draft *model.PromptDraft) (*model.QCResult, error) {
	var prompt strings.Builder
	err := s.template.Execute(&prompt, &JudgePromptData{
		Genre:   draft.Genre,
		Content: draft.Content,
	})
	if err != nil {
		return nil, &GenerationError{ModelName: s.modelName, Err: err}
	}

	raw, err := s.judge.Complete(ctx, prompt.String())
	if err != nil {
		return nil, &GenerationError{ModelName: s.modelName, Err: err}
	}

	var verdict judgeVerdict
	if err := json.Unmarshal([]byte(raw), &verdict); err != nil {
		return nil, &ScoreParseError{Raw: raw, Reason: "not valid JSON"}
	}
	if verdict.Score == nil {
		return nil, &ScoreParseError{Raw: raw, Reason: "missing score field"}
	}
	if *verdict.Score < 0 || *verdict.Score > 10 {
		return nil, &ScoreParseError{Raw: raw, Reason: "score outside 0-10 range"}
	}

	return &model.QCResult{
		DraftId:     draft.Id,
		Score:       *verdict.Score,
		Feedback:    verdict.Feedback,
		EvaluatedAt: time.Now().UTC(),
	}, nil
}

// Resolve applies a verdict to a draft: promotion into the corpus at or
// above the threshold, rejection below it. The example insert and the
// status transition act as one unit; a store failure leaves the draft
// pending and the corpus untouched.
//
// Inputs:
//   - ctx: The context for the request.
//   - draft: The draft being resolved. Its Status field is updated in
//     place; persisting the new status is the caller's job.
//   - result: The verdict from Evaluate.
//
// Outputs:
//   - error: A *store.StoreError when the corpus insert fails, or a
//     transition error when the draft already left the pending state.
func (s *QualityGateService) Resolve(ctx context.Context, draft *model.PromptDraft, result *model.QCResult) error {
	if result.Score < s.threshold {
		return draft.Transition(model.StatusRejected)
	}

	example := &model.Example{
		Id:           draft.Id,
		Content:      draft.Content,
		Genre:        draft.Genre,
		QualityScore: result.Score,
		Source:       model.SourceGenerated,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.examples.Insert(ctx, example); err != nil {
		return err
	}
	return draft.Transition(model.StatusPromoted)
}

// Threshold exposes the inclusive promotion threshold the gate applies.
func (s *QualityGateService) Threshold() float64 {
	return s.threshold
}
