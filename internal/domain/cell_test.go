package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCell_String(t *testing.T) {
	tests := []struct {
		name     string
		cell     Cell
		expected string
	}{
		{"empty", Cell{}, ""},
		{"text trimmed", TextCell("  Air \n"), "Air"},
		{"integer number", NumberCell(12), "12"},
		{"decimal number", NumberCell(45.9), "45.9"},
		{"negative number", NumberCell(-6.25), "-6.25"},
		{"formatted wins", Cell{Kind: CellNumber, Number: 46.06, Formatted: "46,06"}, "46,06"},
		{"formatted trimmed", Cell{Kind: CellText, Text: "raw", Formatted: " shown "}, "shown"},
		{"blank formatted falls back", Cell{Kind: CellText, Text: "raw", Formatted: ""}, "raw"},
		{"formatted on empty value", Cell{Kind: CellEmpty, Formatted: "01/02/2024"}, "01/02/2024"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.cell.String())
		})
	}
}

func TestCell_Float(t *testing.T) {
	tests := []struct {
		name     string
		cell     Cell
		expected float64
		ok       bool
	}{
		{"number", NumberCell(45.9), 45.9, true},
		{"text number", TextCell("6.7"), 6.7, true},
		{"text with spaces", TextCell("  6.7  "), 6.7, true},
		{"leading prefix", TextCell("45.92 N"), 45.92, true},
		{"comma decimal stops at comma", TextCell("6,7"), 6, true},
		{"exponent", TextCell("1.5e1"), 15, true},
		{"leading dot", TextCell(".5"), 0.5, true},
		{"signed", TextCell("-12"), -12, true},
		{"not a number", TextCell("abc"), 0, false},
		{"empty text", TextCell(""), 0, false},
		{"empty cell", Cell{}, 0, false},
		{"overflow", TextCell("1e400"), 0, false},
		{"formatted ignored", Cell{Kind: CellText, Text: "x", Formatted: "12"}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, ok := tt.cell.Float()
			assert.Equal(t, tt.ok, ok)
			assert.InDelta(t, tt.expected, v, 1e-9)
		})
	}
}

func TestCell_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Cell
	}{
		{"string", `{"v":"Air"}`, Cell{Kind: CellText, Text: "Air"}},
		{"number with format", `{"v":1.0,"f":"1"}`, Cell{Kind: CellNumber, Number: 1, Formatted: "1"}},
		{"negative number", `{"v":-6.5}`, Cell{Kind: CellNumber, Number: -6.5}},
		{"null value", `{"v":null}`, Cell{Kind: CellEmpty}},
		{"missing value", `{}`, Cell{Kind: CellEmpty}},
		{"null value with format", `{"v":null,"f":"-"}`, Cell{Kind: CellEmpty, Formatted: "-"}},
		{"boolean", `{"v":true,"f":"TRUE"}`, Cell{Kind: CellText, Text: "true", Formatted: "TRUE"}},
		{"date literal", `{"v":"Date(2024,0,15)","f":"15/01/2024"}`, Cell{Kind: CellText, Text: "Date(2024,0,15)", Formatted: "15/01/2024"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Cell
			require.NoError(t, json.Unmarshal([]byte(tt.input), &c))
			assert.Equal(t, tt.expected, c)
		})
	}
}

func TestCell_IsNumber(t *testing.T) {
	assert.True(t, NumberCell(0).IsNumber())
	assert.False(t, TextCell("1").IsNumber())
	assert.False(t, Cell{}.IsNumber())
}

func TestRow_UnmarshalJSON_NullCells(t *testing.T) {
	var row Row
	require.NoError(t, json.Unmarshal([]byte(`{"c":[{"v":3.0},null,{"v":"x"}]}`), &row))

	require.Len(t, row.Cells, 3)
	assert.True(t, row.Cell(0).IsNumber())
	assert.Equal(t, CellEmpty, row.Cell(1).Kind)
	assert.Equal(t, "x", row.Cell(2).String())
	assert.Equal(t, Cell{}, row.Cell(14), "out of range reads as empty")
}

func TestRow_UnmarshalJSON_NullRow(t *testing.T) {
	var row Row
	require.NoError(t, json.Unmarshal([]byte(`{"c":null}`), &row))
	assert.Empty(t, row.Cells)
}
