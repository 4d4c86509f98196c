package core

import (
	"strings"

	"github.com/jackc/pgx/v5/pgtype"
	"golang.org/x/text/cases"
)

// Visible computes the records to display for a query and show-all flag.
//
//   - blank query, showAll off: nothing
//   - blank query, showAll on: every record, in input order
//   - non-blank query: records whose name or address contains the query,
//     compared with Unicode case folding, in input order; showAll is ignored
//
// A query is blank when it is empty after trimming whitespace. The result
// is never nil.
func Visible(records []Record, query string, showAll bool) []Record {
	needle := strings.TrimSpace(query)

	if needle == "" {
		if !showAll {
			return []Record{}
		}
		out := make([]Record, len(records))
		copy(out, records)
		return out
	}

	out := []Record{}
	for _, r := range records {
		if Matches(r, needle) {
			out = append(out, r)
		}
	}
	return out
}

// Matches reports whether r's name or address contains a non-blank query
// under Unicode case folding. A blank query matches nothing.
func Matches(r Record, query string) bool {
	needle := strings.TrimSpace(query)
	if needle == "" {
		return false
	}
	// A Caser is stateful; one per call.
	fold := cases.Fold()
	needle = fold.String(needle)
	return containsFolded(fold, r.Name, needle) || containsFolded(fold, r.Address, needle)
}

func containsFolded(fold cases.Caser, field pgtype.Text, needle string) bool {
	if !field.Valid {
		return false
	}
	return strings.Contains(fold.String(field.String), needle)
}
