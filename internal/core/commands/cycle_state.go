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

// Package commands provides the concrete implementations of the Chain of
// Responsibility (COR) pattern's Command interface for the prompt
// generation cycle. This file defines CycleState, the value the cycle's
// commands pipe to each other through the chain context.
package commands

import "github.com/jaycherian/gcp-go-prompt-studio/internal/core/model"

// CycleStateParamName is the well-known context key the cycle state is
// stored under, in addition to the chain's input/output piping. The piping
// keys are cleared after a failed command, so the workflow reads the state
// back through this key to report partial results.
const CycleStateParamName = "__cycle_state__"

// CycleState accumulates the artifacts of one generation cycle as it moves
// through the chain. Each command fills in its own field and passes the
// state forward; when the chain stops early, whatever was produced so far
// is still available to the caller.
type CycleState struct {
	Request  *model.GenerationRequest // The originating request; set by the selector.
	Examples []*model.Example         // The few-shot sample; set by the selector.
	Draft    *model.PromptDraft       // The generated draft; set by the creator.
	Result   *model.QCResult          // The judge verdict; set by the evaluator.
}
