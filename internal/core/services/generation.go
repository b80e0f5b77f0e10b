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

// This file defines the GenerationService, which renders the few-shot
// generation prompt and calls the generator model to produce a new prompt
// draft. The prompt template is configuration, not code: it lives in the
// TOML config and is parsed once at service construction.
package services

import (
	"context"
	"strings"
	"text/template"

	"github.com/jaycherian/gcp-go-prompt-studio/internal/cloud"
	"github.com/jaycherian/gcp-go-prompt-studio/internal/core/model"
	"github.com/jaycherian/gcp-go-prompt-studio/internal/core/store"
)

// GenerationPromptData is the data passed to the generation template.
type GenerationPromptData struct {
	Genre      string            // The requested genre.
	Attributes map[string]string // Free-form creative directions from the request.
	Examples   []*model.Example  // The few-shot examples, best first.
}

// GenerationService produces prompt drafts from generation requests.
type GenerationService struct {
	completer cloud.TextCompleter
	modelName string             // Logical model name, used in error reporting.
	template  *template.Template // The parsed generation prompt template.
}

// NewGenerationService is the constructor for GenerationService.
//
// Inputs:
//   - completer: The generator model wrapper.
//   - modelName: The logical name of the model (e.g. "generator"), carried
//     into GenerationError values.
//   - templateSource: The Go text/template source of the generation prompt.
//
// Outputs:
//   - *GenerationService: The configured service.
//   - error: If the template source does not parse.
func NewGenerationService(completer cloud.TextCompleter, modelName string, templateSource string) (*GenerationService, error) {
	tmpl, err := template.New("generation").Parse(templateSource)
	if err != nil {
		return nil, err
	}
	return &GenerationService{
		completer: completer,
		modelName: modelName,
		template:  tmpl,
	}, nil
}

// Generate renders the few-shot prompt for a request and asks the generator
// model for a new draft. The draft comes back in PENDING_REVIEW state; the
// quality gate decides its fate.
//
// Inputs:
//   - ctx: The context for the request.
//   - req: The generation request; the genre must be set.
//   - examples: The selected few-shot examples, injected in order.
//
// Outputs:
//   - *model.PromptDraft: The new pending draft.
//   - error: A *store.ValidationError for a malformed request, or a
//     *GenerationError when the model call fails or returns nothing.
func (s *GenerationService) Generate(ctx context.Context, req *model.GenerationRequest, examples []*model.Example) (*model.PromptDraft, error) {
	if req == nil || strings.TrimSpace(req.Genre) == "" {
		return nil, &store.ValidationError{Field: "genre", Reason: "must not be empty"}
	}

	var prompt strings.Builder
	err := s.template.Execute(&prompt, &GenerationPromptData{
		Genre:      req.Genre,
		Attributes: req.Attributes,
		Examples:   examples,
	})
	if err != nil {
		return nil, &GenerationError{ModelName: s.modelName, Err: err}
	}

	content, err := s.completer.Complete(ctx, prompt.String())
	if err != nil {
		return nil, &GenerationError{ModelName: s.modelName, Err: err}
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, &GenerationError{ModelName: s.modelName, Err: errEmptyCompletion}
	}

	return model.NewPromptDraft(req.Genre, content, len(examples)), nil
}
