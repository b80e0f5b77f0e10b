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

// This file implements the Google Sheets backed versions of ExampleStore and
// DraftStore. A spreadsheet is the single durable system of record: examples,
// drafts, and QC verdicts each live on their own sheet (tab) and are written
// as flat rows through the cloud.SheetRowClient.
//
// Row layouts (the first row of every sheet is a header and is skipped on
// read):
//
//	examples:   id | content | genre | quality_score | tags (csv) | source | created_at (RFC3339)
//	drafts:     id | genre | content | examples_used | status | created_at (RFC3339)
//	qc_results: draft_id | score | feedback | evaluated_at (RFC3339)
//
// Reads load the full sheet and filter in memory. The corpus grows by one
// row per promotion, so full scans stay cheap for the lifetimes this system
// targets; the same trade-off keeps the append path a single Sheets API call
// with no read-modify-write races.
package store

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jaycherian/gcp-go-prompt-studio/internal/cloud"
	"github.com/jaycherian/gcp-go-prompt-studio/internal/core/model"
)

const (
	exampleSheetWidth  = 7
	draftSheetWidth    = 6
	qcResultSheetWidth = 4

	// Zero-based column of the status field on the drafts sheet, the only
	// cell the store ever rewrites in place.
	draftStatusColumn = 4
)

// SheetExampleStore persists the example corpus on a Google Sheets tab.
type SheetExampleStore struct {
	client    *cloud.SheetRowClient
	table     string  // Sheet (tab) name holding the example rows.
	threshold float64 // Minimum quality score accepted by Insert.
}

// NewSheetExampleStore creates an example store bound to one sheet tab.
//
// Inputs:
//   - client: The row client for the backing spreadsheet.
//   - table: The sheet (tab) name, e.g. "ApprovedBestPractices".
//   - threshold: The promotion threshold; Insert rejects lower scores.
func NewSheetExampleStore(client *cloud.SheetRowClient, table string, threshold float64) *SheetExampleStore {
	return &SheetExampleStore{client: client, table: table, threshold: threshold}
}

// Insert validates the example and appends it as a new row. The corpus is
// append-only: there is no update or delete path.
func (s *SheetExampleStore) Insert(ctx context.Context, example *model.Example) error {
	if err := validateExample(example, s.threshold); err != nil {
		return err
	}
	row := []interface{}{
		example.Id,
		example.Content,
		example.Genre,
		strconv.FormatFloat(example.QualityScore, 'f', -1, 64),
		strings.Join(example.Tags, ","),
		example.Source,
		example.CreatedAt.UTC().Format(time.RFC3339),
	}
	if err := s.client.AppendRow(ctx, s.table, row); err != nil {
		return &StoreError{Op: "insert", Err: err}
	}
	return nil
}

// Query returns examples of an exact genre with quality score >= minScore,
// best first, capped at limit.
func (s *SheetExampleStore) Query(ctx context.Context, genre string, minScore float64, limit int) ([]*model.Example, error) {
	examples, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*model.Example, 0, limit)
	for _, ex := range examples {
		if ex.Genre == genre && ex.QualityScore >= minScore {
			out = append(out, ex)
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// QueryAny returns examples of any genre with quality score >= minScore,
// best first, capped at limit.
func (s *SheetExampleStore) QueryAny(ctx context.Context, minScore float64, limit int) ([]*model.Example, error) {
	examples, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*model.Example, 0, limit)
	for _, ex := range examples {
		if ex.QualityScore >= minScore {
			out = append(out, ex)
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// Count returns the number of stored examples, restricted to a genre when
// genre is non-empty.
func (s *SheetExampleStore) Count(ctx context.Context, genre string) (int, error) {
	examples, err := s.load(ctx)
	if err != nil {
		return 0, err
	}
	if genre == "" {
		return len(examples), nil
	}
	count := 0
	for _, ex := range examples {
		if ex.Genre == genre {
			count++
		}
	}
	return count, nil
}

// load reads the full examples sheet, parses each row, and returns the
// corpus ordered by quality score descending with newer rows winning ties.
// Rows with an unparseable score are skipped rather than failing the read;
// a hand-edited spreadsheet must not take the learning loop down.
func (s *SheetExampleStore) load(ctx context.Context) ([]*model.Example, error) {
	rows, err := s.client.ReadRows(ctx, s.table, exampleSheetWidth)
	if err != nil {
		return nil, &StoreError{Op: "read", Err: err}
	}
	examples := make([]*model.Example, 0, len(rows))
	for _, row := range rows {
		score, err := strconv.ParseFloat(row[3], 64)
		if err != nil {
			continue
		}
		createdAt, _ := time.Parse(time.RFC3339, row[6])
		var tags []string
		if row[4] != "" {
			tags = strings.Split(row[4], ",")
		}
		examples = append(examples, &model.Example{
			Id:           row[0],
			Content:      row[1],
			Genre:        row[2],
			QualityScore: score,
			Tags:         tags,
			Source:       row[5],
			CreatedAt:    createdAt,
		})
	}
	sort.SliceStable(examples, func(i, j int) bool {
		if examples[i].QualityScore != examples[j].QualityScore {
			return examples[i].QualityScore > examples[j].QualityScore
		}
		return examples[i].CreatedAt.After(examples[j].CreatedAt)
	})
	return examples, nil
}

// SheetDraftStore persists prompt drafts and QC verdicts on two sheet tabs
// of the same spreadsheet.
type SheetDraftStore struct {
	client     *cloud.SheetRowClient
	draftTable string // Sheet (tab) holding the draft rows.
	qcTable    string // Sheet (tab) holding the QC verdict rows.
}

// NewSheetDraftStore creates a draft store bound to the drafts and QC
// results tabs.
func NewSheetDraftStore(client *cloud.SheetRowClient, draftTable string, qcTable string) *SheetDraftStore {
	return &SheetDraftStore{client: client, draftTable: draftTable, qcTable: qcTable}
}

// SaveDraft appends a draft row.
func (s *SheetDraftStore) SaveDraft(ctx context.Context, draft *model.PromptDraft) error {
	row := []interface{}{
		draft.Id,
		draft.Genre,
		draft.Content,
		strconv.Itoa(draft.ExamplesUsed),
		draft.Status,
		draft.CreatedAt.UTC().Format(time.RFC3339),
	}
	if err := s.client.AppendRow(ctx, s.draftTable, row); err != nil {
		return &StoreError{Op: "save_draft", Err: err}
	}
	return nil
}

// Get returns one draft by id.
func (s *SheetDraftStore) Get(ctx context.Context, id string) (*model.PromptDraft, error) {
	drafts, err := s.loadDrafts(ctx)
	if err != nil {
		return nil, err
	}
	for _, d := range drafts {
		if d.Id == id {
			return d, nil
		}
	}
	return nil, &StoreError{Op: "get", Err: ErrDraftNotFound}
}

// ListPending returns every draft whose status column still reads
// PENDING_REVIEW, in sheet (insertion) order.
func (s *SheetDraftStore) ListPending(ctx context.Context) ([]*model.PromptDraft, error) {
	drafts, err := s.loadDrafts(ctx)
	if err != nil {
		return nil, err
	}
	pending := make([]*model.PromptDraft, 0)
	for _, d := range drafts {
		if d.Status == model.StatusPendingReview {
			pending = append(pending, d)
		}
	}
	return pending, nil
}

// SetStatus rewrites the status cell of the row holding the given draft id.
// The row is located by scanning the id column; ids are UUIDs written once
// by SaveDraft, so at most one row matches.
func (s *SheetDraftStore) SetStatus(ctx context.Context, id string, status string) error {
	rows, err := s.client.ReadRows(ctx, s.draftTable, draftSheetWidth)
	if err != nil {
		return &StoreError{Op: "set_status", Err: err}
	}
	for i, row := range rows {
		if row[0] == id {
			if err := s.client.UpdateCell(ctx, s.draftTable, i, draftStatusColumn, status); err != nil {
				return &StoreError{Op: "set_status", Err: err}
			}
			return nil
		}
	}
	return &StoreError{Op: "set_status", Err: ErrDraftNotFound}
}

// SaveQCResult appends one evaluation verdict row.
func (s *SheetDraftStore) SaveQCResult(ctx context.Context, result *model.QCResult) error {
	row := []interface{}{
		result.DraftId,
		strconv.FormatFloat(result.Score, 'f', -1, 64),
		result.Feedback,
		result.EvaluatedAt.UTC().Format(time.RFC3339),
	}
	if err := s.client.AppendRow(ctx, s.qcTable, row); err != nil {
		return &StoreError{Op: "save_qc_result", Err: err}
	}
	return nil
}

// ListQCResults returns all verdicts recorded for a draft, oldest first
// (sheet order is append order).
func (s *SheetDraftStore) ListQCResults(ctx context.Context, draftId string) ([]*model.QCResult, error) {
	rows, err := s.client.ReadRows(ctx, s.qcTable, qcResultSheetWidth)
	if err != nil {
		return nil, &StoreError{Op: "list_qc_results", Err: err}
	}
	results := make([]*model.QCResult, 0)
	for _, row := range rows {
		if row[0] != draftId {
			continue
		}
		score, err := strconv.ParseFloat(row[1], 64)
		if err != nil {
			continue
		}
		evaluatedAt, _ := time.Parse(time.RFC3339, row[3])
		results = append(results, &model.QCResult{
			DraftId:     row[0],
			Score:       score,
			Feedback:    row[2],
			EvaluatedAt: evaluatedAt,
		})
	}
	return results, nil
}

// loadDrafts reads and parses the full drafts sheet in row order.
func (s *SheetDraftStore) loadDrafts(ctx context.Context) ([]*model.PromptDraft, error) {
	rows, err := s.client.ReadRows(ctx, s.draftTable, draftSheetWidth)
	if err != nil {
		return nil, &StoreError{Op: "read", Err: err}
	}
	drafts := make([]*model.PromptDraft, 0, len(rows))
	for _, row := range rows {
		used, _ := strconv.Atoi(row[3])
		createdAt, _ := time.Parse(time.RFC3339, row[5])
		drafts = append(drafts, &model.PromptDraft{
			Id:           row[0],
			Genre:        row[1],
			Content:      row[2],
			ExamplesUsed: used,
			Status:       row[4],
			CreatedAt:    createdAt,
		})
	}
	return drafts, nil
}
