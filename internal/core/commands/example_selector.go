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

// This file defines the first command of the generation cycle. It takes the
// incoming GenerationRequest from the chain context, draws the few-shot
// sample for its genre through the SelectionService, and passes a fresh
// CycleState forward to the prompt creator.
package commands

import (
	"fmt"

	"github.com/jaycherian/gcp-go-prompt-studio/internal/core/cor"
	"github.com/jaycherian/gcp-go-prompt-studio/internal/core/model"
	"github.com/jaycherian/gcp-go-prompt-studio/internal/core/services"
)

// ExampleSelector is the command that samples the few-shot examples for a
// generation request.
type ExampleSelector struct {
	cor.BaseCommand
	selection  *services.SelectionService // The sampling policy over the example corpus.
	sampleSize int                        // How many examples to draw per request.
}

// NewExampleSelector is the constructor for the ExampleSelector command.
//
// Inputs:
//   - name: A string name for this command instance.
//   - selection: The configured selection service.
//   - sampleSize: The number of examples to draw per request.
//
// Outputs:
//   - *ExampleSelector: A pointer to the newly instantiated command.
func NewExampleSelector(name string, selection *services.SelectionService, sampleSize int) *ExampleSelector {
	return &ExampleSelector{
		BaseCommand: *cor.NewBaseCommand(name),
		selection:   selection,
		sampleSize:  sampleSize,
	}
}

// Execute draws the sample and seeds the CycleState for the rest of the
// chain.
//
// Inputs:
//   - context: The shared `cor.Context`; the input parameter must hold a
//     *model.GenerationRequest.
func (t *ExampleSelector) Execute(context cor.Context) {
	request, ok := context.Get(t.GetInputParam()).(*model.GenerationRequest)
	if !ok {
		t.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(t.GetName(), fmt.Errorf("input is not a generation request"))
		return
	}

	examples, err := t.selection.Select(context.GetContext(), request.Genre, t.sampleSize)
	if err != nil {
		t.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(t.GetName(), fmt.Errorf("example selection failed: %w", err))
		return
	}

	t.GetSuccessCounter().Add(context.GetContext(), 1)
	state := &CycleState{
		Request:  request,
		Examples: examples,
	}

	// Store the state under the well-known key so the workflow can read it
	// back even when a later command stops the chain.
	context.Add(CycleStateParamName, state)

	// Also add it to the default output parameter so it becomes the input
	// for the very next command in the chain.
	context.Add(t.GetOutputParam(), state)
}
