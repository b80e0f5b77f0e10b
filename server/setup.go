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

// Package main contains the setup and initialization logic for the
// application's state. This file is responsible for creating and managing a
// centralized state manager that holds all shared dependencies: the
// configuration, the Google Cloud service clients, the stores, and the
// services of the learning loop.
//
// Functions:
//   - SetupOS: Configures the environment variables the config loader uses
//     to find the TOML files.
//   - GetConfig: A singleton function that loads the configuration from the
//     TOML files exactly once.
//   - InitState: The core initialization function that creates the service
//     clients, the stores, the services, and the generation workflow.
package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/jaycherian/gcp-go-prompt-studio/internal/api"
	"github.com/jaycherian/gcp-go-prompt-studio/internal/cloud"
	"github.com/jaycherian/gcp-go-prompt-studio/internal/core/services"
	"github.com/jaycherian/gcp-go-prompt-studio/internal/core/store"
	"github.com/jaycherian/gcp-go-prompt-studio/internal/core/workflow"
)

// StateManager holds all the shared dependencies for the application,
// acting as a centralized container for service clients and configuration.
// This avoids the need for scattered global variables and makes dependency
// management cleaner.
type StateManager struct {
	config       *cloud.Config
	cloud        *cloud.ServiceClients
	exampleStore store.ExampleStore
	draftStore   store.DraftStore
	qcQueue      *services.QCQueueService
	promptCycle  *workflow.PromptCycleWorkflow
	handlers     *api.Handlers
}

// state is a package-level variable that holds the single instance of
// StateManager.
var state = &StateManager{}

// SetupOS sets the environment variables that the configuration loader uses
// to find the correct TOML files: the config directory prefix and the
// runtime environment name ("local" here, so ".env.local.toml" overrides
// the base configuration).
//
// Outputs:
//   - error: An error if setting any of the environment variables fails.
func SetupOS() (err error) {
	err = os.Setenv(cloud.EnvConfigFilePrefix, "configs")
	if err != nil {
		return err
	}
	err = os.Setenv(cloud.EnvConfigRuntime, "local")
	return err
}

// GetConfig provides a singleton instance of the application configuration.
// On the first call it sets up the OS environment and loads the TOML files;
// subsequent calls return the cached configuration.
//
// Outputs:
//   - *cloud.Config: A pointer to the loaded application configuration.
func GetConfig() *cloud.Config {
	if state.config == nil {
		err := SetupOS()
		if err != nil {
			log.Fatalf("failed to setup os environment: %v\n", err)
		}
		config := cloud.NewConfig()
		cloud.LoadConfig(&config)
		state.config = config
	}
	return state.config
}

// InitState initializes the entire application state: cloud clients, the
// row stores, the learning-loop services, and the generation workflow.
//
// Inputs:
//   - ctx: The root context.Context for the application, used for managing
//     the lifecycle of client connections and background processes.
func InitState(ctx context.Context) {
	config := GetConfig()

	cloudClients, err := cloud.NewCloudServiceClients(ctx, config)
	if err != nil {
		panic(err)
	}
	state.cloud = cloudClients

	// The spreadsheet is the system of record. A run without a configured
	// spreadsheet id keeps everything in memory, which is enough for local
	// experiments but loses state on restart.
	if config.SheetDataSource.SpreadsheetId != "" {
		state.exampleStore = store.NewSheetExampleStore(
			cloudClients.RowClient,
			config.SheetDataSource.ExamplesTable,
			config.FewShot.PromotionThreshold)
		state.draftStore = store.NewSheetDraftStore(
			cloudClients.RowClient,
			config.SheetDataSource.DraftsTable,
			config.SheetDataSource.QCResultsTable)
	} else {
		state.exampleStore = store.NewMemoryExampleStore(config.FewShot.PromotionThreshold)
		state.draftStore = store.NewMemoryDraftStore()
	}

	selection := services.NewSelectionService(state.exampleStore, config.FewShot.SameGenreRatio, nil)

	generation, err := services.NewGenerationService(
		cloudClients.AgentModels["generator"],
		"generator",
		config.PromptTemplates.GenerationPrompt)
	if err != nil {
		panic(err)
	}

	gate, err := services.NewQualityGateService(
		cloudClients.AgentModels["judge"],
		"judge",
		config.PromptTemplates.JudgePrompt,
		state.exampleStore,
		config.FewShot.PromotionThreshold)
	if err != nil {
		panic(err)
	}

	learning := services.NewLearningService(
		state.exampleStore,
		time.Duration(config.FewShot.RecentWindowHours)*time.Hour)

	state.qcQueue = services.NewQCQueueService(state.draftStore, gate, config.Application.ThreadPoolSize)

	state.promptCycle = workflow.NewPromptCycleWorkflow(
		selection,
		generation,
		gate,
		state.draftStore,
		config.FewShot.SampleSize)

	state.handlers = &api.Handlers{
		Workflow: state.promptCycle,
		Drafts:   state.draftStore,
		QCQueue:  state.qcQueue,
		Learning: learning,
	}
}
