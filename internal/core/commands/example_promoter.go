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

// This file defines the final command of the generation cycle. It applies
// the judge verdict: drafts at or above the promotion threshold enter the
// example corpus and are marked PROMOTED, everything else is marked
// REJECTED. This command is the only writer of the corpus in the whole
// pipeline.
package commands

import (
	"fmt"

	"github.com/jaycherian/gcp-go-prompt-studio/internal/core/cor"
	"github.com/jaycherian/gcp-go-prompt-studio/internal/core/services"
	"github.com/jaycherian/gcp-go-prompt-studio/internal/core/store"
)

// ExamplePromoter is the command that resolves a judged draft.
type ExamplePromoter struct {
	cor.BaseCommand
	gate   *services.QualityGateService // Applies the threshold and performs the corpus insert.
	drafts store.DraftStore             // The registry whose status column is updated.
}

// NewExamplePromoter is the constructor for the ExamplePromoter command.
//
// Inputs:
//   - name: A string name for this command instance.
//   - gate: The configured quality gate service.
//   - drafts: The draft registry.
//
// Outputs:
//   - *ExamplePromoter: A pointer to the newly instantiated command.
func NewExamplePromoter(name string, gate *services.QualityGateService, drafts store.DraftStore) *ExamplePromoter {
	return &ExamplePromoter{
		BaseCommand: *cor.NewBaseCommand(name),
		gate:        gate,
		drafts:      drafts,
	}
}

// Execute resolves the draft and persists its final status.
//
// Inputs:
//   - context: The shared `cor.Context`; the input parameter must hold the
//     *CycleState carrying a draft and a verdict.
func (t *ExamplePromoter) Execute(context cor.Context) {
	state, ok := context.Get(t.GetInputParam()).(*CycleState)
	if !ok || state.Draft == nil || state.Result == nil {
		t.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(t.GetName(), fmt.Errorf("input is not a cycle state with a verdict"))
		return
	}

	if err := t.gate.Resolve(context.GetContext(), state.Draft, state.Result); err != nil {
		t.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(t.GetName(), err)
		return
	}

	if err := t.drafts.SetStatus(context.GetContext(), state.Draft.Id, state.Draft.Status); err != nil {
		t.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(t.GetName(), err)
		return
	}

	t.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(t.GetOutputParam(), state)
}
