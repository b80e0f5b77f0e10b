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

// Package services contains the business logic of the few-shot learning
// loop: example selection, prompt generation, the quality gate, the QC
// queue, and learning statistics. This file defines the typed errors the
// services raise so callers can distinguish a model outage from a malformed
// verdict without string matching.
package services

import "fmt"

// errEmptyCompletion marks a model call that succeeded at the transport
// level but produced no text.
var errEmptyCompletion = fmt.Errorf("model returned an empty completion")

// GenerationError reports a failed call to the generation model. The
// selected examples and the request are still valid; the caller may retry
// the same cycle from the generation step.
type GenerationError struct {
	ModelName string // Logical name of the model that failed, e.g. "generator".
	Err       error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation with model %q failed: %v", e.ModelName, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// ScoreParseError reports that the judge responded, but the response could
// not be turned into a usable verdict: not JSON, missing fields, or a score
// outside the 0-10 range. The draft stays pending so the evaluation can be
// retried without regenerating the prompt.
type ScoreParseError struct {
	Raw    string // The raw model response, kept for the error log.
	Reason string
}

func (e *ScoreParseError) Error() string {
	return fmt.Sprintf("unusable judge verdict (%s): %q", e.Reason, truncate(e.Raw, 200))
}

// truncate clips s for inclusion in an error message.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
