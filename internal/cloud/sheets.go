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
// services. This file implements a thin row-store client on top of the
// Google Sheets API. Each worksheet in the configured spreadsheet acts as
// one append-only table: AppendRow adds a row at the bottom, ReadRows
// returns every data row, and UpdateCell rewrites a single cell (used only
// for the draft status column).
//
// The client knows nothing about the domain; the store package maps rows
// to and from model structs.
package cloud

import (
	"context"
	"fmt"
	"sync"

	"google.golang.org/api/sheets/v4"
)

// SheetRowClient wraps a sheets.Service with the three row operations the
// stores need. Appends are serialized through a mutex so two concurrent
// writers cannot interleave a half-written row.
type SheetRowClient struct {
	service       *sheets.Service
	spreadsheetId string
	mu            sync.Mutex
}

// NewSheetRowClient creates a row client bound to one spreadsheet. The
// service authenticates through Application Default Credentials.
//
// Inputs:
//   - ctx: The root context for the underlying HTTP client.
//   - spreadsheetId: The id of the spreadsheet document.
//
// Outputs:
//   - *SheetRowClient: The configured client.
//   - error: An error if the Sheets service could not be created.
func NewSheetRowClient(ctx context.Context, spreadsheetId string) (*SheetRowClient, error) {
	service, err := sheets.NewService(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}
	return &SheetRowClient{service: service, spreadsheetId: spreadsheetId}, nil
}

// AppendRow appends a single row to the named worksheet. The Sheets API
// places the row after the last non-empty row of the table.
//
// Inputs:
//   - ctx: The request context.
//   - table: The worksheet name (e.g. "ApprovedBestPractices").
//   - fields: The cell values, left to right.
func (c *SheetRowClient) AppendRow(ctx context.Context, table string, fields []interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	body := &sheets.ValueRange{Values: [][]interface{}{fields}}
	_, err := c.service.Spreadsheets.Values.
		Append(c.spreadsheetId, fmt.Sprintf("%s!A:A", table), body).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append to %s failed: %w", table, err)
	}
	return nil
}

// ReadRows returns every data row of the named worksheet as strings. The
// first row is assumed to be a header and is skipped; short rows are
// padded so callers can index columns without bounds checks.
//
// Inputs:
//   - ctx: The request context.
//   - table: The worksheet name.
//   - width: The number of columns each returned row is padded to.
//
// Outputs:
//   - [][]string: One slice per data row, each of length >= width.
//   - error: An error if the read fails.
func (c *SheetRowClient) ReadRows(ctx context.Context, table string, width int) ([][]string, error) {
	resp, err := c.service.Spreadsheets.Values.
		Get(c.spreadsheetId, table).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("read of %s failed: %w", table, err)
	}

	out := make([][]string, 0, len(resp.Values))
	for i, raw := range resp.Values {
		if i == 0 {
			continue // header row
		}
		row := make([]string, 0, width)
		for _, cell := range raw {
			row = append(row, fmt.Sprint(cell))
		}
		for len(row) < width {
			row = append(row, "")
		}
		out = append(out, row)
	}
	return out, nil
}

// UpdateCell rewrites a single cell. rowIndex counts data rows from zero
// (the header row is row one on the sheet), and colIndex counts columns
// from zero.
func (c *SheetRowClient) UpdateCell(ctx context.Context, table string, rowIndex int, colIndex int, value interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	cell := fmt.Sprintf("%s!%s%d", table, columnLetter(colIndex), rowIndex+2)
	body := &sheets.ValueRange{Values: [][]interface{}{{value}}}
	_, err := c.service.Spreadsheets.Values.
		Update(c.spreadsheetId, cell, body).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("update of %s failed: %w", cell, err)
	}
	return nil
}

// columnLetter converts a zero-based column index to its A1 notation
// letter. Two letters cover every table this application owns.
func columnLetter(index int) string {
	if index < 26 {
		return string(rune('A' + index))
	}
	return string(rune('A'+index/26-1)) + string(rune('A'+index%26))
}
