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

// This file defines the command that runs the judge model over a freshly
// generated draft. A failed or unparseable evaluation stops the chain but
// leaves the draft pending in the registry; nothing generated is lost.
package commands

import (
	"fmt"

	"github.com/jaycherian/gcp-go-prompt-studio/internal/core/cor"
	"github.com/jaycherian/gcp-go-prompt-studio/internal/core/services"
	"github.com/jaycherian/gcp-go-prompt-studio/internal/core/store"
)

// PromptEvaluator is the command that obtains and records the judge verdict.
type PromptEvaluator struct {
	cor.BaseCommand
	gate   *services.QualityGateService // Calls the judge and parses the verdict.
	drafts store.DraftStore             // The registry the verdict is recorded in.
}

// NewPromptEvaluator is the constructor for the PromptEvaluator command.
//
// Inputs:
//   - name: A string name for this command instance.
//   - gate: The configured quality gate service.
//   - drafts: The draft registry.
//
// Outputs:
//   - *PromptEvaluator: A pointer to the newly instantiated command.
func NewPromptEvaluator(name string, gate *services.QualityGateService, drafts store.DraftStore) *PromptEvaluator {
	return &PromptEvaluator{
		BaseCommand: *cor.NewBaseCommand(name),
		gate:        gate,
		drafts:      drafts,
	}
}

// Execute evaluates the draft and records the verdict.
//
// Inputs:
//   - context: The shared `cor.Context`; the input parameter must hold the
//     *CycleState carrying a generated draft.
func (t *PromptEvaluator) Execute(context cor.Context) {
	state, ok := context.Get(t.GetInputParam()).(*CycleState)
	if !ok || state.Draft == nil {
		t.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(t.GetName(), fmt.Errorf("input is not a cycle state with a draft"))
		return
	}

	result, err := t.gate.Evaluate(context.GetContext(), state.Draft)
	if err != nil {
		t.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(t.GetName(), err)
		return
	}
	state.Result = result

	if err := t.drafts.SaveQCResult(context.GetContext(), result); err != nil {
		t.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(t.GetName(), err)
		return
	}

	t.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(t.GetOutputParam(), state)
}
