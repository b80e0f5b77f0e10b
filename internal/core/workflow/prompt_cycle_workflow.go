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

// Package workflow defines the high-level business logic orchestrations,
// combining various commands into coherent pipelines. This file implements
// the prompt generation cycle, the core loop of the system.
//
// The cycle moves a request through four states, one command per state:
//
//	SELECTING  -> draw the few-shot sample from the example corpus
//	GENERATING -> render the prompt, call the generator, register the draft
//	EVALUATING -> call the judge, record the verdict
//	PROMOTING  -> apply the threshold: corpus insert + PROMOTED, or REJECTED
//
// A failure in any state stops the chain there. Whatever was produced up to
// that point (typically a pending draft) is already persisted, so a failed
// cycle leaves work for the QC queue rather than losing it.
package workflow

import (
	"context"

	"github.com/jaycherian/gcp-go-prompt-studio/internal/core/commands"
	"github.com/jaycherian/gcp-go-prompt-studio/internal/core/cor"
	"github.com/jaycherian/gcp-go-prompt-studio/internal/core/model"
	"github.com/jaycherian/gcp-go-prompt-studio/internal/core/services"
	"github.com/jaycherian/gcp-go-prompt-studio/internal/core/store"
)

// PromptCycleWorkflow orchestrates one full generation cycle as a Chain of
// Responsibility (cor.Chain).
type PromptCycleWorkflow struct {
	cor.BaseCommand
	selection  *services.SelectionService
	generation *services.GenerationService
	gate       *services.QualityGateService
	drafts     store.DraftStore
	sampleSize int
	chain      cor.Chain // The underlying chain of commands to be executed.
}

// Execute runs the entire cycle by invoking the underlying chain. It passes
// the context, which contains the generation request and will be used to
// pass state between commands.
//
// Inputs:
//   - context: The chain of responsibility context for this execution.
func (w *PromptCycleWorkflow) Execute(context cor.Context) {
	w.chain.Execute(context)
}

// initializeChain builds the sequence of commands that make up this
// workflow. Each command is an atomic unit of work whose output serves as
// the input for the next. This method is called by the constructor.
func (w *PromptCycleWorkflow) initializeChain() {
	out := cor.NewBaseChain(w.GetName())

	// Step 1: Draw the few-shot sample for the request's genre. On an
	// empty corpus this falls back to the built-in seed examples.
	out.AddCommand(commands.NewExampleSelector("select-examples", w.selection, w.sampleSize))

	// Step 2: Render the few-shot prompt, call the generator model, and
	// register the resulting draft in PENDING_REVIEW state.
	out.AddCommand(commands.NewPromptCreator("create-prompt-draft", w.generation, w.drafts))

	// Step 3: Ask the judge model for a verdict and record it. A verdict
	// that cannot be parsed stops the chain here; the draft stays pending.
	out.AddCommand(commands.NewPromptEvaluator("evaluate-prompt-draft", w.gate, w.drafts))

	// Step 4: Apply the verdict. At or above the threshold the draft
	// enters the corpus and is marked PROMOTED; below it, REJECTED.
	out.AddCommand(commands.NewExamplePromoter("promote-or-reject", w.gate, w.drafts))

	w.chain = out
}

// RunCycle executes one generation cycle for a request and translates the
// chain outcome into a result and an error.
//
// Inputs:
//   - ctx: The context for the whole cycle, used for cancellation and
//     tracing.
//   - req: The generation request.
//
// Outputs:
//   - *model.CycleResult: The artifacts produced before the cycle ended.
//     On a failed cycle this still carries the pending draft when
//     generation succeeded; it is nil only when nothing was produced.
//   - error: The typed error from the step that stopped the chain
//     (*store.ValidationError, *services.GenerationError,
//     *services.ScoreParseError, *store.StoreError), or nil.
func (w *PromptCycleWorkflow) RunCycle(ctx context.Context, req *model.GenerationRequest) (*model.CycleResult, error) {
	chCtx := cor.NewBaseContext()
	chCtx.SetContext(ctx)
	chCtx.Add(cor.CtxIn, req)

	w.Execute(chCtx)

	var result *model.CycleResult
	if state, ok := chCtx.Get(commands.CycleStateParamName).(*commands.CycleState); ok && state.Draft != nil {
		result = &model.CycleResult{Draft: state.Draft, QC: state.Result}
	}

	// The chain stops at the first error, so the map holds at most one.
	for _, err := range chCtx.GetErrors() {
		return result, err
	}
	return result, nil
}

// NewPromptCycleWorkflow is the constructor for the PromptCycleWorkflow.
// It wires the four cycle commands around the provided services and builds
// the command chain.
//
// Inputs:
//   - selection: The example sampling policy.
//   - generation: The generator-model service.
//   - gate: The quality gate (judge + promotion).
//   - drafts: The draft registry used by every persisting step.
//   - sampleSize: The number of few-shot examples per generation.
//
// Returns:
//   - A pointer to a newly created and fully initialized PromptCycleWorkflow.
func NewPromptCycleWorkflow(
	selection *services.SelectionService,
	generation *services.GenerationService,
	gate *services.QualityGateService,
	drafts store.DraftStore,
	sampleSize int) *PromptCycleWorkflow {

	pipeline := &PromptCycleWorkflow{
		BaseCommand: *cor.NewBaseCommand("prompt-cycle"),
		selection:   selection,
		generation:  generation,
		gate:        gate,
		drafts:      drafts,
		sampleSize:  sampleSize,
	}
	pipeline.initializeChain()
	return pipeline
}
