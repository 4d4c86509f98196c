package core

// convert.go turns raw dataset cells into typed, nullable values.
//
// Absent cells (missing column, empty or whitespace-only value) become
// pgtype values with Valid=false so that absence never leaks into
// comparisons as "" or 0.

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"
)

// numericRegex validates that a string is a plain decimal or scientific number.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// ToText converts a cell to pgtype.Text.
// Returns invalid if the cell is empty or only whitespace.
func ToText(s string) pgtype.Text {
	s = CleanCell(s)
	if s == "" {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: s, Valid: true}
}

// ToRating converts a cell to pgtype.Float8.
// Returns invalid for empty, non-numeric, NaN or infinite input.
func ToRating(s string) pgtype.Float8 {
	s = CleanCell(s)
	if s == "" || !numericRegex.MatchString(s) {
		return pgtype.Float8{Valid: false}
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return pgtype.Float8{Valid: false}
	}
	return pgtype.Float8{Float64: f, Valid: true}
}

// CleanCell trims whitespace and removes an Excel formula wrapper (="...").
func CleanCell(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") && len(s) >= 3 {
		s = strings.TrimSpace(s[2 : len(s)-1])
	}
	return s
}

// HeaderIndex maps recognised column names to their position in a row.
type HeaderIndex map[string]int

// MakeHeaderIndex builds a HeaderIndex from a header row, keeping only the
// names listed in specs. The first occurrence of a duplicate name wins.
func MakeHeaderIndex(header []string, specs []FieldSpec) HeaderIndex {
	known := make(map[string]bool, len(specs))
	for _, spec := range specs {
		known[spec.Name] = true
	}

	idx := make(HeaderIndex, len(specs))
	for i, h := range header {
		name := strings.TrimSpace(h)
		if !known[name] {
			continue
		}
		if _, seen := idx[name]; seen {
			continue
		}
		idx[name] = i
	}
	return idx
}

// cell returns the value at the named column, or "" when the column is
// missing from the header or the row is too short.
func (h HeaderIndex) cell(row []string, name string) string {
	pos, ok := h[name]
	if !ok || pos >= len(row) {
		return ""
	}
	return row[pos]
}
