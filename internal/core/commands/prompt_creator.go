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

// This file defines the command that turns a selected few-shot sample into
// a new prompt draft.
//
// Logic Flow:
//
//  1. It receives the CycleState seeded by the example selector.
//  2. The GenerationService renders the few-shot prompt and calls the
//     generator model; the response becomes a draft in PENDING_REVIEW state.
//  3. The draft is written to the draft registry immediately, before any
//     evaluation happens, so a judge failure later in the chain cannot lose
//     the generated content.
package commands

import (
	"fmt"

	"github.com/jaycherian/gcp-go-prompt-studio/internal/core/cor"
	"github.com/jaycherian/gcp-go-prompt-studio/internal/core/services"
	"github.com/jaycherian/gcp-go-prompt-studio/internal/core/store"
)

// PromptCreator is the command that generates and registers a new draft.
type PromptCreator struct {
	cor.BaseCommand
	generation *services.GenerationService // Renders the prompt and calls the generator model.
	drafts     store.DraftStore            // The registry the new draft is saved into.
}

// NewPromptCreator is the constructor for the PromptCreator command.
//
// Inputs:
//   - name: A string name for this command instance.
//   - generation: The configured generation service.
//   - drafts: The draft registry.
//
// Outputs:
//   - *PromptCreator: A pointer to the newly instantiated command.
func NewPromptCreator(name string, generation *services.GenerationService, drafts store.DraftStore) *PromptCreator {
	return &PromptCreator{
		BaseCommand: *cor.NewBaseCommand(name),
		generation:  generation,
		drafts:      drafts,
	}
}

// Execute generates the draft and persists it in pending state.
//
// Inputs:
//   - context: The shared `cor.Context`; the input parameter must hold the
//     *CycleState from the example selector.
func (t *PromptCreator) Execute(context cor.Context) {
	state, ok := context.Get(t.GetInputParam()).(*CycleState)
	if !ok {
		t.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(t.GetName(), fmt.Errorf("input is not a cycle state"))
		return
	}

	draft, err := t.generation.Generate(context.GetContext(), state.Request, state.Examples)
	if err != nil {
		t.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(t.GetName(), err)
		return
	}
	state.Draft = draft

	// Persist before evaluation: if the judge step fails, the pending row
	// lets the QC queue pick the draft up later.
	if err := t.drafts.SaveDraft(context.GetContext(), draft); err != nil {
		t.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(t.GetName(), err)
		return
	}

	t.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(t.GetOutputParam(), state)
}
