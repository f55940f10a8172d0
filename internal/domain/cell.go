package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// leadingFloatRe matches the numeric prefix accepted by spreadsheet formulas
// and browsers alike, e.g. "45.92 N" -> "45.92", "6,7" -> "6".
var leadingFloatRe = regexp.MustCompile(`^[+-]?(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?`)

// CellKind tags the raw value held by a Cell.
type CellKind int

const (
	CellEmpty CellKind = iota
	CellText
	CellNumber
)

// Cell is one spreadsheet cell. Exactly one of Text or Number is meaningful,
// selected by Kind. Formatted is the display string the spreadsheet rendered
// for the cell, when it sent one.
type Cell struct {
	Kind      CellKind
	Text      string
	Number    float64
	Formatted string
}

// TextCell returns a text cell.
func TextCell(s string) Cell { return Cell{Kind: CellText, Text: s} }

// NumberCell returns a numeric cell.
func NumberCell(v float64) Cell { return Cell{Kind: CellNumber, Number: v} }

// String returns the display value: the formatted string when present,
// otherwise the raw value, trimmed. Empty cells yield "".
func (c Cell) String() string {
	if c.Formatted != "" {
		return strings.TrimSpace(c.Formatted)
	}
	switch c.Kind {
	case CellText:
		return strings.TrimSpace(c.Text)
	case CellNumber:
		return formatNumber(c.Number)
	default:
		return ""
	}
}

// Float returns the numeric value of the raw cell content. Text is parsed for
// a leading decimal number. Non-finite values are reported as absent.
func (c Cell) Float() (float64, bool) {
	var v float64
	switch c.Kind {
	case CellNumber:
		v = c.Number
	case CellText:
		m := leadingFloatRe.FindString(strings.TrimSpace(c.Text))
		if m == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(m, 64)
		if err != nil && !isRangeError(err) {
			return 0, false
		}
		v = parsed
	default:
		return 0, false
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// IsNumber reports whether the raw value is a number.
func (c Cell) IsNumber() bool {
	return c.Kind == CellNumber && !math.IsNaN(c.Number)
}

// UnmarshalJSON decodes a gviz cell object {"v": ..., "f": ...}. A JSON null
// cell is handled by Row and never reaches this method.
func (c *Cell) UnmarshalJSON(data []byte) error {
	var raw struct {
		V json.RawMessage `json:"v"`
		F *string         `json:"f"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*c = Cell{}
	if raw.F != nil {
		c.Formatted = *raw.F
	}

	v := bytes.TrimSpace(raw.V)
	switch {
	case len(v) == 0 || bytes.Equal(v, []byte("null")):
		c.Kind = CellEmpty
	case v[0] == '"':
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return err
		}
		c.Kind = CellText
		c.Text = s
	case v[0] == '-' || (v[0] >= '0' && v[0] <= '9'):
		n, err := strconv.ParseFloat(string(v), 64)
		if err != nil {
			return err
		}
		c.Kind = CellNumber
		c.Number = n
	default:
		// Booleans, date arrays and objects keep their JSON literal.
		c.Kind = CellText
		c.Text = string(v)
	}
	return nil
}

// formatNumber renders a float the way the spreadsheet's JSON consumers do:
// integers without a fraction, shortest round-trip digits otherwise.
func formatNumber(v float64) string {
	abs := math.Abs(v)
	if abs != 0 && (abs >= 1e21 || abs < 1e-6) {
		return strconv.FormatFloat(v, 'e', -1, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func isRangeError(err error) bool {
	return errors.Is(err, strconv.ErrRange)
}
