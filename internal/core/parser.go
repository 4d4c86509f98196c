package core

// parser.go decodes a category dataset (comma-separated, header first) into
// Records.
//
// Row-level problems never abort the parse: the row is dropped and a
// RowWarning is collected. Only input that cannot be read as a table at all
// (no header, or a header naming none of the known columns) fails with a
// ParseError.

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// Column names as produced by the upstream data collection.
const (
	ColName    = "Name"
	ColPhone   = "Phone"
	ColHours   = "Hours"
	ColRating  = "Rating"
	ColAddress = "Address"
	ColURL     = "URL"
)

// RecordFields lists the recognised dataset columns.
var RecordFields = []FieldSpec{
	{Name: ColName},
	{Name: ColPhone},
	{Name: ColHours},
	{Name: ColRating},
	{Name: ColAddress},
	{Name: ColURL},
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Parse decodes data into Records. The result is fully materialized and
// parsing the same input twice yields equal results.
func Parse(data []byte) (*ParseResult, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &ParseError{Msg: "empty input"}
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &ParseError{Msg: "empty input"}
		}
		return nil, &ParseError{Msg: fmt.Sprintf("read header: %v", err)}
	}
	if !validUTF8(header) {
		return nil, &ParseError{Msg: "header is not valid UTF-8"}
	}

	idx := MakeHeaderIndex(header, RecordFields)
	if len(idx) == 0 {
		return nil, &ParseError{Msg: fmt.Sprintf("no recognised columns in header (want any of %s)", fieldNames())}
	}

	result := &ParseResult{Records: []Record{}}
	width := len(header)

	for {
		start := r.InputOffset()
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if !errors.As(err, &pe) {
				return nil, &ParseError{Msg: err.Error()}
			}
			result.Warnings = append(result.Warnings, RowWarning{Line: pe.StartLine, Reason: pe.Err.Error()})
			continue
		}

		// An unterminated quote swallows every line up to the next stray
		// quote or EOF. Split the swallowed text back into lines so each
		// one is judged on its own.
		if len(row) != width && spansLines(row) {
			first := bytes.Count(data[:start], []byte("\n")) + 1
			result.addLines(data[start:r.InputOffset()], first, width, idx)
			continue
		}

		line, _ := r.FieldPos(0)
		result.addRow(row, line, width, idx)
	}

	return result, nil
}

// addRow appends row as a Record, or a RowWarning when it is malformed.
// Rows with only empty cells are skipped silently.
func (res *ParseResult) addRow(row []string, line, width int, idx HeaderIndex) {
	if isEmptyRow(row) {
		return
	}
	if len(row) != width {
		res.Warnings = append(res.Warnings, RowWarning{
			Line:   line,
			Reason: fmt.Sprintf("expected %d fields, got %d", width, len(row)),
		})
		return
	}
	if !validUTF8(row) {
		res.Warnings = append(res.Warnings, RowWarning{Line: line, Reason: "invalid UTF-8"})
		return
	}
	res.Records = append(res.Records, buildRecord(row, idx))
}

// addLines reads each physical line of text as a row of its own. first is
// the line number of text's first line.
func (res *ParseResult) addLines(text []byte, first, width int, idx HeaderIndex) {
	for i, raw := range strings.Split(string(text), "\n") {
		raw = strings.TrimSuffix(raw, "\r")
		if strings.TrimSpace(raw) == "" {
			continue
		}

		lr := csv.NewReader(strings.NewReader(raw))
		lr.FieldsPerRecord = -1
		lr.LazyQuotes = true

		row, err := lr.Read()
		if err != nil {
			reason := err.Error()
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				reason = pe.Err.Error()
			}
			res.Warnings = append(res.Warnings, RowWarning{Line: first + i, Reason: reason})
			continue
		}
		res.addRow(row, first+i, width, idx)
	}
}

func spansLines(row []string) bool {
	for _, v := range row {
		if strings.Contains(v, "\n") {
			return true
		}
	}
	return false
}

// buildRecord decodes one well-formed row.
func buildRecord(row []string, idx HeaderIndex) Record {
	return Record{
		Name:         ToText(idx.cell(row, ColName)),
		Phone:        ToText(idx.cell(row, ColPhone)),
		Hours:        ToText(idx.cell(row, ColHours)),
		Rating:       ToRating(idx.cell(row, ColRating)),
		Address:      ToText(idx.cell(row, ColAddress)),
		LocationLink: ToText(idx.cell(row, ColURL)),
	}
}

func isEmptyRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func validUTF8(row []string) bool {
	for _, v := range row {
		if !utf8.ValidString(v) {
			return false
		}
	}
	return true
}

func fieldNames() string {
	names := make([]string, len(RecordFields))
	for i, f := range RecordFields {
		names[i] = f.Name
	}
	return strings.Join(names, ", ")
}
