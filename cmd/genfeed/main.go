// Command genfeed turns a CSV export of the pollution sites sheet into a
// recorded Google Visualization response, the format served by the live feed.
// The first CSV row holds the column labels. Empty fields become null cells,
// fields of the numeric columns that parse as numbers become number cells,
// and a leading apostrophe forces a text cell, as in the spreadsheet editor.
//
// Usage:
//
//	go run ./cmd/genfeed \
//	  -csv internal/domain/testdata/sites.csv \
//	  -out internal/domain/testdata/sites_feed.txt
package main

import (
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/couchcryptid/pollution-map-service/internal/domain"
)

const (
	envelopePrefix = "/*O_o*/\ngoogle.visualization.Query.setResponse("
	envelopeSuffix = ");"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func run(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("genfeed", flag.ContinueOnError)
	csvPath := fs.String("csv", "", "CSV export of the sheet, header row first")
	outPath := fs.String("out", "", "output path for the recorded feed response")
	numberCols := fs.String("number-cols", "0,6,7", "comma-separated 0-based columns holding numbers")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *csvPath == "" || *outPath == "" {
		fs.Usage()
		return fmt.Errorf("missing required flags: -csv, -out")
	}

	numeric, err := parseColumns(*numberCols)
	if err != nil {
		return err
	}

	records, err := readCSV(*csvPath)
	if err != nil {
		return fmt.Errorf("reading %s: %w", *csvPath, err)
	}

	body, err := encodeFeed(records, numeric)
	if err != nil {
		return err
	}
	if err := os.WriteFile(*outPath, []byte(body), 0o644); err != nil { //nolint:gosec // fixture is not sensitive
		return fmt.Errorf("writing %s: %w", *outPath, err)
	}
	fmt.Fprintf(stdout, "wrote feed: %s (%d rows)\n", *outPath, len(records)-1)

	return printStats(stdout, body)
}

func parseColumns(s string) (map[int]bool, error) {
	cols := make(map[int]bool)
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid column %q in -number-cols", part)
		}
		cols[n] = true
	}
	return cols, nil
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) < 1 {
		return nil, fmt.Errorf("no header row")
	}
	return records, nil
}

// Google Visualization response types.

type response struct {
	Version string `json:"version"`
	Status  string `json:"status"`
	Table   table  `json:"table"`
}

type table struct {
	Cols []column `json:"cols"`
	Rows []row    `json:"rows"`
}

type column struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Type  string `json:"type"`
}

type row struct {
	C []*cell `json:"c"`
}

type cell struct {
	V any    `json:"v"`
	F string `json:"f,omitempty"`
}

// encodeFeed builds the wrapped response body for a header row plus data rows.
func encodeFeed(records [][]string, numeric map[int]bool) (string, error) {
	header := records[0]

	resp := response{Version: "0.6", Status: "ok"}
	for i, label := range header {
		typ := "string"
		if numeric[i] {
			typ = "number"
		}
		resp.Table.Cols = append(resp.Table.Cols, column{ID: columnID(i), Label: label, Type: typ})
	}

	resp.Table.Rows = make([]row, 0, len(records)-1)
	for _, rec := range records[1:] {
		cells := make([]*cell, len(header))
		for i := range cells {
			if i < len(rec) {
				cells[i] = toCell(rec[i], numeric[i])
			}
		}
		resp.Table.Rows = append(resp.Table.Rows, row{C: cells})
	}

	data, err := json.Marshal(resp)
	if err != nil {
		return "", fmt.Errorf("marshal response: %w", err)
	}
	return envelopePrefix + string(data) + envelopeSuffix, nil
}

func toCell(field string, numeric bool) *cell {
	switch {
	case field == "":
		return nil
	case strings.HasPrefix(field, "'"):
		return &cell{V: field[1:]}
	case numeric:
		if v, err := strconv.ParseFloat(strings.TrimSpace(field), 64); err == nil {
			// The sheet is French-locale: formatted numbers use a decimal comma.
			return &cell{V: v, F: strings.Replace(strconv.FormatFloat(v, 'f', -1, 64), ".", ",", 1)}
		}
	}
	return &cell{V: field}
}

// columnID returns the spreadsheet letter of a 0-based column.
func columnID(i int) string {
	id := ""
	for i >= 0 {
		id = string(rune('A'+i%26)) + id
		i = i/26 - 1
	}
	return id
}

func printStats(w io.Writer, body string) error {
	tbl, err := domain.DecodeFeed(body)
	if err != nil {
		return fmt.Errorf("generated feed does not decode: %w", err)
	}
	s := domain.Summarize(domain.BuildSites(tbl.Rows))

	fmt.Fprintf(w, "\n=== Summary ===\n")
	fmt.Fprintf(w, "Geolocated sites:  %d\n", s.Sites)
	fmt.Fprintf(w, "Diffuse sites:     %d\n", s.DiffuseSites)
	fmt.Fprintf(w, "Pollution entries: %d\n", s.PollutionEntries)
	return nil
}
