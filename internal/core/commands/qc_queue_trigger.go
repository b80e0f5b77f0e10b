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

// This file defines the command attached to the QC-requests Pub/Sub
// subscription. Any message on the topic triggers one full pass of the QC
// queue over the pending drafts; the message payload itself is ignored, it
// is purely a signal.
package commands

import (
	"fmt"
	"log/slog"

	"github.com/jaycherian/gcp-go-prompt-studio/internal/core/cor"
	"github.com/jaycherian/gcp-go-prompt-studio/internal/core/services"
)

// QCQueueTrigger is the command that drains the pending-review backlog when
// a QC request message arrives.
type QCQueueTrigger struct {
	cor.BaseCommand
	queue *services.QCQueueService // Runs the actual pass over pending drafts.
}

// NewQCQueueTrigger is the constructor for the QCQueueTrigger command.
//
// Inputs:
//   - name: A string name for this command instance.
//   - queue: The configured QC queue service.
//
// Outputs:
//   - *QCQueueTrigger: A pointer to the newly instantiated command.
func NewQCQueueTrigger(name string, queue *services.QCQueueService) *QCQueueTrigger {
	return &QCQueueTrigger{BaseCommand: *cor.NewBaseCommand(name), queue: queue}
}

// Execute runs one QC queue pass and places the summary in the output
// parameter.
//
// Inputs:
//   - context: The shared `cor.Context` for this message handling.
func (c *QCQueueTrigger) Execute(context cor.Context) {
	summary, err := c.queue.ProcessPending(context.GetContext())
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("qc queue pass failed: %w", err))
		return
	}

	slog.Info("qc queue pass complete",
		"processed", summary.Processed,
		"promoted", summary.Promoted,
		"rejected", summary.Rejected,
		"failed", summary.Failed)

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(c.GetOutputParam(), summary)
}
