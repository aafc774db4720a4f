// Package importer reads bill lists exported from spreadsheets or other trackers.
package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/MrJamesThe3rd/budgetwise/internal/bill"
)

// Importer turns an uploaded file into bill drafts.
type Importer interface {
	Parse(r io.Reader) ([]bill.Draft, error)
}

// Parser auto-detects the column layout, delimiter and text encoding of a CSV
// bill list by matching the header row against known profiles.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) Parse(r io.Reader) ([]bill.Draft, error) {
	utf8r, charset, err := newUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	data, err := io.ReadAll(utf8r)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}

	if strings.TrimSpace(string(data)) == "" {
		return nil, nil
	}

	reader := csv.NewReader(strings.NewReader(string(data)))
	reader.Comma = sniffDelimiter(string(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	profile, cols, headerIdx := detectProfile(rows)
	if profile == nil {
		return nil, fmt.Errorf("no bill columns found: expected at least name, amount and due date")
	}

	slog.Debug("parsing bill csv", "profile", profile.Name, "charset", charset, "delimiter", string(reader.Comma))

	return parseRows(cols, rows[headerIdx+1:], headerIdx+1)
}

// sniffDelimiter picks ';' when the first non-empty line has more semicolons than commas.
func sniffDelimiter(data string) rune {
	for line := range strings.Lines(data) {
		if strings.TrimSpace(line) == "" {
			continue
		}

		if strings.Count(line, ";") > strings.Count(line, ",") {
			return ';'
		}

		return ','
	}

	return ','
}

// colIndex maps a logical field to its column position; -1 means absent.
type colIndex struct {
	name, amount, category, due, recurring int
}

func detectProfile(rows [][]string) (*Profile, colIndex, int) {
	for rowIdx, row := range rows {
		for i := range profiles {
			if cols, ok := profiles[i].match(row); ok {
				return &profiles[i], cols, rowIdx
			}
		}
	}

	return nil, colIndex{}, 0
}

// parseRows converts data rows into drafts. headerRowNum is the 0-based
// index of the header in the file, used for error messages.
func parseRows(cols colIndex, rows [][]string, headerRowNum int) ([]bill.Draft, error) {
	var drafts []bill.Draft

	for i, row := range rows {
		rowNum := headerRowNum + i + 1 // 1-based

		if blank(row) {
			continue
		}

		name := cellValue(row, cols.name)
		if name == "" {
			return nil, fmt.Errorf("row %d: missing name", rowNum)
		}

		amount, err := parseAmount(cellValue(row, cols.amount))
		if err != nil {
			return nil, fmt.Errorf("row %d: amount: %w", rowNum, err)
		}

		due, err := parseDate(cellValue(row, cols.due))
		if err != nil {
			return nil, fmt.Errorf("row %d: due date: %w", rowNum, err)
		}

		recurrence, err := bill.ParseRecurrence(cellValue(row, cols.recurring))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", rowNum, err)
		}

		drafts = append(drafts, bill.Draft{
			Name:       name,
			Amount:     amount,
			Category:   cellValue(row, cols.category),
			DueDate:    due,
			Recurrence: recurrence,
		})
	}

	return drafts, nil
}

var dateLayouts = []string{time.DateOnly, "02-01-2006", "02/01/2006", "2006/01/02"}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("missing")
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}

func blank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}

	return true
}

// cellValue safely gets a trimmed cell value from a row.
func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}
