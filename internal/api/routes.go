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

// Package api contains the HTTP route definitions for the server. The
// handlers are a thin translation layer: they bind requests, call into the
// workflow and services, and map the typed error taxonomy onto HTTP status
// codes. No business logic lives here.
//
// Endpoints (all under the /api/v1 prefix):
//   - POST /prompts: Run one full generation cycle for a request.
//   - GET  /prompts/:id: Fetch a draft and its recorded QC verdicts.
//   - POST /qc/run: Trigger one QC queue pass over the pending drafts.
//   - GET  /learning/stats: The learning statistics of the example corpus.
package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jaycherian/gcp-go-prompt-studio/internal/core/model"
	"github.com/jaycherian/gcp-go-prompt-studio/internal/core/services"
	"github.com/jaycherian/gcp-go-prompt-studio/internal/core/store"
	"github.com/jaycherian/gcp-go-prompt-studio/internal/core/workflow"
)

// Handlers bundles the dependencies the HTTP layer needs. All fields must
// be set before Register is called.
type Handlers struct {
	Workflow *workflow.PromptCycleWorkflow // Runs the generation cycle for POST /prompts.
	Drafts   store.DraftStore              // Backs the draft lookup endpoint.
	QCQueue  *services.QCQueueService      // Backs the manual QC trigger endpoint.
	Learning *services.LearningService     // Backs the statistics endpoint.
}

// draftView is the response shape for the draft lookup endpoint: the draft
// row plus every verdict recorded against it.
type draftView struct {
	Draft     *model.PromptDraft `json:"draft"`
	QCResults []*model.QCResult  `json:"qc_results"`
}

// Register attaches all routes to the given router group.
//
// Inputs:
//   - r: The *gin.RouterGroup the routes are added under (e.g. "/api/v1").
func (h *Handlers) Register(r *gin.RouterGroup) {
	prompts := r.Group("/prompts")
	{
		prompts.POST("", h.createPrompt)
		prompts.GET("/:id", h.getPrompt)
	}
	r.POST("/qc/run", h.runQCQueue)
	r.GET("/learning/stats", h.learningStats)
}

// createPrompt runs one generation cycle and returns its artifacts.
//
// Status codes:
//   - 201: The cycle completed; the draft was promoted or rejected.
//   - 202: The draft was generated but its evaluation failed; it stays
//     pending and will be re-processed by the QC queue.
//   - 400: The request was malformed.
//   - 502: The generator model failed before a draft existed.
//   - 500: A store failure.
func (h *Handlers) createPrompt(c *gin.Context) {
	var req model.GenerationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.Workflow.RunCycle(c.Request.Context(), &req)
	if err == nil {
		c.JSON(http.StatusCreated, result)
		return
	}

	slog.Warn("generation cycle failed", "genre", req.Genre, "error", err.Error())

	var validationErr *store.ValidationError
	var generationErr *services.GenerationError
	var parseErr *services.ScoreParseError
	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &parseErr) && result != nil:
		// The draft exists and is pending; the caller got something usable.
		c.JSON(http.StatusAccepted, gin.H{"result": result, "error": err.Error()})
	case errors.As(err, &generationErr):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// getPrompt returns a draft and its QC verdict history by id.
func (h *Handlers) getPrompt(c *gin.Context) {
	id := c.Param("id")

	draft, err := h.Drafts.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrDraftNotFound) {
			c.Status(http.StatusNotFound)
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	results, err := h.Drafts.ListQCResults(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, &draftView{Draft: draft, QCResults: results})
}

// runQCQueue triggers one synchronous pass over the pending drafts and
// returns the pass summary. The same pass also runs when a message arrives
// on the QC-requests subscription.
func (h *Handlers) runQCQueue(c *gin.Context) {
	summary, err := h.QCQueue.ProcessPending(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, summary)
}

// learningStats returns the aggregate view of the example corpus.
func (h *Handlers) learningStats(c *gin.Context) {
	stats, err := h.Learning.Stats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, stats)
}
