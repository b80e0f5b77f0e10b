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

// Package main contains the logic for setting up and starting the Pub/Sub
// message listeners. A message on the QC-requests topic triggers one pass
// of the QC queue over the pending drafts, so external systems (schedulers,
// the spreadsheet's apps script) can request re-evaluation without calling
// the HTTP API.
//
// Functions:
//   - SetupListeners: Attaches the QC queue trigger command to the
//     QC-requests listener and starts it.
package main

import (
	"context"
	"log/slog"

	"github.com/jaycherian/gcp-go-prompt-studio/internal/cloud"
	"github.com/jaycherian/gcp-go-prompt-studio/internal/core/commands"
)

// qcRequestsListener is the logical name of the QC-requests subscription in
// the [topic_subscriptions] config table.
const qcRequestsListener = "QCRequests"

// SetupListeners configures and starts the background Pub/Sub listeners.
//
// Inputs:
//   - cloudClients: The initialized Google Cloud service clients, holding
//     one listener per configured subscription.
//   - ctx: The application's root context, used to manage the lifecycle of
//     the listeners.
//
// Outputs:
//   - This function does not return any value. It starts the listeners as
//     background goroutines.
func SetupListeners(cloudClients *cloud.ServiceClients, ctx context.Context) {
	listener, ok := cloudClients.PubSubListeners[qcRequestsListener]
	if !ok {
		// No subscription configured; the QC queue is still reachable
		// through POST /api/v1/qc/run.
		slog.Info("no QC-requests subscription configured, skipping listener")
		return
	}

	trigger := commands.NewQCQueueTrigger("qc-queue-trigger", state.qcQueue)
	listener.SetCommand(trigger)
	listener.Listen(ctx)
}
