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
// services. This file initializes and holds all the client objects the
// application needs, acting as a dependency injection container. The
// `NewCloudServiceClients` factory is called once at startup; the
// resulting `ServiceClients` struct is passed to whichever component
// needs a client, so no package reaches for a global connection.
//
// Logic flow:
//  1. NewCloudServiceClients receives the loaded configuration.
//  2. It creates the Pub/Sub client, the GenAI client (Vertex AI backend)
//     and the Sheets row client.
//  3. Every configured subscription becomes a PubSubListener; the command
//     is attached later when the workflows are assembled.
//  4. Every configured agent model becomes a rate-limited
//     QuotaAwareGenerativeAIModel.
package cloud

import (
	"context"

	"cloud.google.com/go/pubsub"
	"google.golang.org/genai"
)

// ServiceClients is a container for every external client the application
// talks to. It is a plain dependency-injection struct: create it once,
// hand its fields to the components that need them.
type ServiceClients struct {
	PubsubClient    *pubsub.Client                          // Client for Google Cloud Pub/Sub.
	GenAIClient     *genai.Client                           // Client for Google's Generative AI services (Vertex AI).
	RowClient       *SheetRowClient                         // Row store client for the configured spreadsheet.
	PubSubListeners map[string]*PubSubListener              // Active Pub/Sub listeners, keyed by the logical name from the config.
	AgentModels     map[string]*QuotaAwareGenerativeAIModel // Rate-limited LLM handles, keyed by logical name ("generator", "judge").
}

// Close releases all client connections. Useful in tests and controlled
// shutdowns; long-running servers normally let the root context do this.
func (c *ServiceClients) Close() {
	if c.PubsubClient != nil {
		_ = c.PubsubClient.Close()
	}
}

// NewCloudServiceClients initializes all required Google Cloud service
// clients based on the provided configuration.
//
// Inputs:
//   - ctx: The root context for the application.
//   - config: The loaded application configuration.
//
// Outputs:
//   - *ServiceClients: The fully initialized container.
//   - error: An error if any client fails to initialize.
func NewCloudServiceClients(ctx context.Context, config *Config) (*ServiceClients, error) {
	pc, err := pubsub.NewClient(ctx, config.Application.GoogleProjectId)
	if err != nil {
		return nil, err
	}

	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  config.Application.GoogleProjectId,
		Location: config.Application.GoogleLocation,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, err
	}

	rowClient, err := NewSheetRowClient(ctx, config.SheetDataSource.SpreadsheetId)
	if err != nil {
		return nil, err
	}

	// One listener per configured subscription. Commands are attached later
	// when the workflows are built, so they start as nil here.
	subscriptions := make(map[string]*PubSubListener)
	for subKey := range config.TopicSubscriptions {
		values := config.TopicSubscriptions[subKey]
		actual, err := NewPubSubListener(pc, values.Name, nil)
		if err != nil {
			return nil, err
		}
		subscriptions[subKey] = actual
	}

	// One rate-limited model wrapper per configured agent.
	agentModels := make(map[string]*QuotaAwareGenerativeAIModel)
	for amKey := range config.AgentModels {
		values := config.AgentModels[amKey]
		genConfig := &genai.GenerateContentConfig{
			Temperature:       genai.Ptr[float32](values.Temperature),
			TopP:              genai.Ptr[float32](values.TopP),
			TopK:              genai.Ptr[float32](values.TopK),
			MaxOutputTokens:   values.MaxTokens,
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: values.SystemInstructions}}},
			SafetySettings:    DefaultSafetySettings,
			ResponseMIMEType:  values.OutputFormat,
		}
		agentModels[amKey] = NewQuotaAwareModel(genConfig, values.Model, gc.Models, values.RateLimit)
	}

	return &ServiceClients{
		PubsubClient:    pc,
		GenAIClient:     gc,
		RowClient:       rowClient,
		PubSubListeners: subscriptions,
		AgentModels:     agentModels,
	}, nil
}
