package domain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	// ErrFetchFailure marks a feed request that did not return a successful response.
	ErrFetchFailure = errors.New("failed to fetch spreadsheet")

	// ErrParseFailure marks a response whose envelope or JSON payload is malformed.
	ErrParseFailure = errors.New("failed to parse spreadsheet response")
)

// envelopeRe captures the payload of the gviz callback wrapper. The trailing
// semicolon is optional.
var envelopeRe = regexp.MustCompile(`google\.visualization\.Query\.setResponse\(([\s\S]*)\);?$`)

// Feed retrieves the raw spreadsheet response body.
type Feed interface {
	Fetch(ctx context.Context) (string, error)
}

// Column describes one spreadsheet column.
type Column struct {
	Label string `json:"label"`
}

// Row is an ordered, sparse sequence of cells. Null cells decode as CellEmpty.
type Row struct {
	Cells []Cell
}

// Cell returns the cell at index i, or an empty cell when the row is shorter.
func (r Row) Cell(i int) Cell {
	if i < 0 || i >= len(r.Cells) {
		return Cell{}
	}
	return r.Cells[i]
}

// UnmarshalJSON decodes a gviz row {"c": [...]}.
func (r *Row) UnmarshalJSON(data []byte) error {
	var raw struct {
		C []*Cell `json:"c"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.Cells = make([]Cell, len(raw.C))
	for i, c := range raw.C {
		if c != nil {
			r.Cells[i] = *c
		}
	}
	return nil
}

// Table is the decoded tabular payload.
type Table struct {
	Columns []Column `json:"cols"`
	Rows    []Row    `json:"rows"`
}

type queryError struct {
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

type queryResponse struct {
	Status string       `json:"status"`
	Errors []queryError `json:"errors"`
	Table  *Table       `json:"table"`
}

// UnwrapEnvelope extracts the JSON payload from the
// google.visualization.Query.setResponse(...) wrapper.
func UnwrapEnvelope(body string) ([]byte, error) {
	m := envelopeRe.FindStringSubmatch(strings.TrimRight(body, " \t\r\n"))
	if len(m) != 2 {
		return nil, fmt.Errorf("%w: response wrapper not found", ErrParseFailure)
	}
	return []byte(m[1]), nil
}

// ParseTable decodes the unwrapped JSON payload into a Table.
func ParseTable(payload []byte) (Table, error) {
	var resp queryResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return Table{}, fmt.Errorf("%w: %w", ErrParseFailure, err)
	}
	if resp.Status == "error" {
		msg := "query returned an error"
		if len(resp.Errors) > 0 {
			msg = resp.Errors[0].Reason + ": " + resp.Errors[0].Message
		}
		return Table{}, fmt.Errorf("%w: %s", ErrParseFailure, msg)
	}
	if resp.Table == nil {
		return Table{}, fmt.Errorf("%w: missing table", ErrParseFailure)
	}
	return *resp.Table, nil
}

// DecodeFeed unwraps and parses a raw response body.
func DecodeFeed(body string) (Table, error) {
	payload, err := UnwrapEnvelope(body)
	if err != nil {
		return Table{}, err
	}
	return ParseTable(payload)
}
