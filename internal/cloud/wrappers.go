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

// Package cloud provides components for interacting with Google Cloud
// services. This file implements a decorator around the Generative AI
// client that adds rate limiting, transient-error retries and token usage
// metrics, and narrows the API surface to the single text-completion call
// the learning loop needs.
//
// Why this matters:
//   - Rate limiting: Vertex AI enforces per-minute quotas. The limiter
//     keeps the application inside them instead of burning quota on
//     rejected requests.
//   - Retry logic: model calls fail for transient reasons; a bounded retry
//     makes the loop resilient without hiding persistent outages.
//   - The TextCompleter interface: the core services depend on this one
//     method, so tests substitute scripted fakes and never touch the
//     network.
package cloud

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// MaxModelRetries is the number of times a failed model call is retried
// before the error is surfaced to the caller.
const MaxModelRetries = 3

// TextCompleter is the collaborator contract the core depends on: prompt
// text in, completion text out. Both the generator and the judge satisfy
// it; transport and timeout failures surface as errors.
type TextCompleter interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// QuotaAwareGenerativeAIModel decorates a genai model handle with a rate
// limiter, bounded retries and OpenTelemetry token counters. It is the
// production implementation of TextCompleter.
type QuotaAwareGenerativeAIModel struct {
	GenerativeContentConfig *genai.GenerateContentConfig // Generation settings (temperature, system instructions, ...).
	ModelName               string
	ModelHandle             *genai.Models
	RateLimit               *rate.Limiter // Token bucket controlling request frequency.

	inputTokenCounter  metric.Int64Counter
	outputTokenCounter metric.Int64Counter
	retryCounter       metric.Int64Counter
}

// NewQuotaAwareModel creates a new QuotaAwareGenerativeAIModel. The rate
// limit is expressed in requests per second and doubles as the burst size.
//
// Inputs:
//   - config: The generation settings to apply on every call.
//   - name: The Vertex AI model name (e.g. "gemini-2.0-flash").
//   - handle: The genai.Models handle from an initialized client.
//   - requestsPerSecond: Maximum number of API calls allowed per second.
//
// Outputs:
//   - *QuotaAwareGenerativeAIModel: The configured decorator.
func NewQuotaAwareModel(config *genai.GenerateContentConfig, name string, handle *genai.Models, requestsPerSecond int) *QuotaAwareGenerativeAIModel {
	out := &QuotaAwareGenerativeAIModel{
		GenerativeContentConfig: config,
		ModelName:               name,
		ModelHandle:             handle,
		RateLimit:               rate.NewLimiter(rate.Every(time.Second), requestsPerSecond),
	}
	meter := otel.Meter("github.com/jaycherian/gcp-go-prompt-studio/cloud")
	out.inputTokenCounter, _ = meter.Int64Counter(fmt.Sprintf("%s.token.input", name))
	out.outputTokenCounter, _ = meter.Int64Counter(fmt.Sprintf("%s.token.output", name))
	out.retryCounter, _ = meter.Int64Counter(fmt.Sprintf("%s.retry", name))
	return out
}

// Complete sends a single text prompt to the model and returns the
// concatenated text of the response candidates. It blocks on the rate
// limiter, retries transient failures up to MaxModelRetries, and records
// token usage on success.
//
// Inputs:
//   - ctx: Controls cancellation; a cancelled context aborts both the
//     limiter wait and the in-flight request.
//   - prompt: The full prompt text.
//
// Outputs:
//   - string: The response text with any markdown JSON fences removed.
//   - error: The last error after all retries are exhausted.
func (q *QuotaAwareGenerativeAIModel) Complete(ctx context.Context, prompt string) (string, error) {
	content := genai.Text(prompt)

	var resp *genai.GenerateContentResponse
	var err error
	for attempt := 0; attempt <= MaxModelRetries; attempt++ {
		if attempt > 0 {
			q.retryCounter.Add(ctx, 1)
		}
		// Wait blocks until the token bucket allows another request or the
		// context is cancelled.
		if err = q.RateLimit.Wait(ctx); err != nil {
			return "", err
		}
		resp, err = q.ModelHandle.GenerateContent(ctx, q.ModelName, content, q.GenerativeContentConfig)
		if err == nil {
			break
		}
		if ctx.Err() != nil {
			return "", err
		}
	}
	if err != nil {
		return "", fmt.Errorf("model %s failed after %d retries: %w", q.ModelName, MaxModelRetries, err)
	}

	if resp.UsageMetadata != nil {
		q.inputTokenCounter.Add(ctx, int64(resp.UsageMetadata.PromptTokenCount))
		q.outputTokenCounter.Add(ctx, int64(resp.UsageMetadata.CandidatesTokenCount))
	}

	// Concatenate the text parts of every candidate.
	value := ""
	for _, candidate := range resp.Candidates {
		if candidate.Content != nil {
			for _, part := range candidate.Content.Parts {
				value += part.Text
			}
		}
	}
	value = strings.TrimSpace(value)
	value = strings.TrimPrefix(value, "```json")
	value = strings.TrimPrefix(value, "```")
	value = strings.TrimSuffix(value, "```")
	return strings.TrimSpace(value), nil
}
