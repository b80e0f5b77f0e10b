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

// Package cloud defines the data structures for application configuration,
// loaded from TOML files. It provides a structured way to manage settings
// for Google Cloud services, AI models, Pub/Sub topics, the spreadsheet
// row store, the few-shot learning tunables, and prompt templates.
//
// Structs:
//   - SheetDataSource: Spreadsheet id and worksheet names for the row store.
//   - PromptTemplates: Text templates for the generator and judge prompts.
//   - VertexAiLLMModel: Configuration for a Vertex AI LLM.
//   - TopicSubscription: Configuration for a Pub/Sub subscription.
//   - FewShot: Tunables of the example-selection and promotion policy.
//   - Config: The top-level aggregate.
//
// Functions:
//   - NewConfig: Constructor that initializes maps and few-shot defaults.
package cloud

import "google.golang.org/genai"

// Few-shot policy defaults. The threshold and ratio come from the system's
// original tuning; both stay configurable through the [few_shot] table.
const (
	DefaultPromotionThreshold = 7.0
	DefaultSameGenreRatio     = 0.6
	DefaultSampleSize         = 5
)

// DefaultSafetySettings defines the default content safety thresholds for
// GenAI models. These are non-restrictive; the inputs are trusted internal
// prompt material, not end-user content.
var DefaultSafetySettings = []*genai.SafetySetting{
	{
		Category:  genai.HarmCategoryDangerousContent,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
	{
		Category:  genai.HarmCategoryHarassment,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
	{
		Category:  genai.HarmCategoryHateSpeech,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
	{
		Category:  genai.HarmCategorySexuallyExplicit,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
}

// SheetDataSource represents the configuration for the Google Sheets backed
// row store. Each worksheet acts as one append-only table.
type SheetDataSource struct {
	SpreadsheetId  string `toml:"spreadsheet_id"`   // The id of the spreadsheet document.
	ExamplesTable  string `toml:"examples_table"`   // Worksheet holding the promoted example corpus.
	DraftsTable    string `toml:"drafts_table"`     // Worksheet holding generated prompt drafts.
	QCResultsTable string `toml:"qc_results_table"` // Worksheet holding judge verdicts.
}

// PromptTemplates holds the Go text/template sources for the two prompts
// the loop sends to the models.
type PromptTemplates struct {
	GenerationPrompt string `toml:"generation"` // Template for the few-shot generation request.
	JudgePrompt      string `toml:"judge"`      // Template for the quality-gate evaluation request.
}

// VertexAiLLMModel represents the configuration for a Vertex AI large
// language model (LLM).
type VertexAiLLMModel struct {
	Model              string  `toml:"model"`               // The name of the Vertex AI LLM.
	SystemInstructions string  `toml:"system_instructions"` // The system instructions for the LLM.
	Temperature        float32 `toml:"temperature"`         // The temperature parameter for the LLM.
	TopP               float32 `toml:"top_p"`               // The top_p parameter for the LLM.
	TopK               float32 `toml:"top_k"`               // The top_k parameter for the LLM.
	MaxTokens          int32   `toml:"max_tokens"`          // The maximum number of tokens for the LLM output.
	OutputFormat       string  `toml:"output_format"`       // The desired output MIME type for the LLM.
	RateLimit          int     `toml:"rate_limit"`          // The rate limit for the LLM in requests per second.
}

// TopicSubscription represents the configuration for a Pub/Sub topic
// subscription.
type TopicSubscription struct {
	Name             string `toml:"name"`               // The name of the Pub/Sub subscription.
	DeadLetterTopic  string `toml:"dead_letter_topic"`  // The name of the dead-letter topic for the subscription.
	TimeoutInSeconds int    `toml:"timeout_in_seconds"` // The timeout for the subscription in seconds.
}

// FewShot holds the tunables of the learning loop. The defaults preserve
// the original system's fixed constants; neither value was ever derived
// from measurement, so they are exposed for tuning rather than hardcoded.
type FewShot struct {
	PromotionThreshold float64 `toml:"promotion_threshold"` // Inclusive score required to enter the corpus.
	SameGenreRatio     float64 `toml:"same_genre_ratio"`    // Fraction of a sample drawn from the target genre.
	SampleSize         int     `toml:"sample_size"`         // Number of examples injected per generation.
	RecentWindowHours  int     `toml:"recent_window_hours"` // Window for the "recent promotions" statistic.
}

// Config represents the overall configuration for the application, loaded
// from TOML files. It acts as the root container for all other
// configuration structs.
type Config struct {
	// Application holds general application settings.
	Application struct {
		Name            string `toml:"name"`              // The name of the application.
		GoogleProjectId string `toml:"google_project_id"` // The Google Cloud project ID.
		GoogleLocation  string `toml:"location"`          // The Google Cloud location.
		ThreadPoolSize  int    `toml:"thread_pool_size"`  // Parallelism bound for the QC queue processor.
	} `toml:"application"`
	SheetDataSource    SheetDataSource              `toml:"sheet_data_source"`   // Row store configuration.
	PromptTemplates    PromptTemplates              `toml:"prompt_templates"`    // Prompt templates configuration.
	FewShot            FewShot                      `toml:"few_shot"`            // Learning-loop policy tunables.
	TopicSubscriptions map[string]TopicSubscription `toml:"topic_subscriptions"` // Pub/Sub subscriptions, keyed by a logical name (e.g. "QCRequests").
	AgentModels        map[string]VertexAiLLMModel  `toml:"agent_models"`        // Vertex AI LLM models, keyed by a logical name (e.g. "generator", "judge").
}

// NewConfig is a constructor function that creates a new, initialized
// Config instance. The maps must be initialized before the TOML decoder
// populates them, and the few-shot defaults apply when the [few_shot]
// table is absent from every config file.
func NewConfig() *Config {
	out := &Config{
		TopicSubscriptions: make(map[string]TopicSubscription),
		AgentModels:        make(map[string]VertexAiLLMModel),
	}
	out.Application.ThreadPoolSize = 4
	out.FewShot = FewShot{
		PromotionThreshold: DefaultPromotionThreshold,
		SameGenreRatio:     DefaultSameGenreRatio,
		SampleSize:         DefaultSampleSize,
		RecentWindowHours:  24,
	}
	return out
}
