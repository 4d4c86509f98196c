package core

import (
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// FieldSpec describes one recognised dataset column.
type FieldSpec struct {
	Name string // Header name, matched exactly after trimming
}

// Record is one normalized dataset row.
//
// Every field is always present on the struct; Valid=false is the absent
// marker. Absent fields encode as JSON null.
type Record struct {
	Name         pgtype.Text   `json:"name"`
	Phone        pgtype.Text   `json:"phone"`
	Hours        pgtype.Text   `json:"hours"`
	Rating       pgtype.Float8 `json:"rating"`
	Address      pgtype.Text   `json:"address"`
	LocationLink pgtype.Text   `json:"locationLink"`
}

// HasLocation reports whether the record carries a link worth offering as a
// "view location" action.
func (r Record) HasLocation() bool {
	return r.LocationLink.Valid && r.LocationLink.String != ""
}

// RatingLabel formats the rating with one decimal, or "N/A" when absent.
func (r Record) RatingLabel() string {
	if !r.Rating.Valid {
		return "N/A"
	}
	return strconv.FormatFloat(r.Rating.Float64, 'f', 1, 64)
}

// Category identifies one dataset partition.
type Category struct {
	ID    string `json:"id" yaml:"id"`       // Stable key: "restaurants"
	Label string `json:"label" yaml:"label"` // Display name: "Restaurants"
	Path  string `json:"path" yaml:"path"`   // Resource path relative to the dataset base

	order int
}

// CategoryInfo is the consumer-facing view of a category.
type CategoryInfo struct {
	ID     string     `json:"id"`
	Label  string     `json:"label"`
	Status LoadStatus `json:"status"`
}

// LoadStatus is the load state of one category's cache entry.
type LoadStatus string

const (
	StatusUnloaded LoadStatus = "unloaded"
	StatusLoading  LoadStatus = "loading"
	StatusLoaded   LoadStatus = "loaded"
	StatusFailed   LoadStatus = "failed"
)

// RowWarning describes a data row the parser dropped.
type RowWarning struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

// ParseResult is the materialized output of Parse.
type ParseResult struct {
	Records  []Record
	Warnings []RowWarning
}

// Entry is a read-only snapshot of one category's cache entry.
type Entry struct {
	Category string
	Records  []Record
	Status   LoadStatus
	Err      error
	LoadID   string    // Most recent load attempt
	LoadedAt time.Time // Zero until the first successful load
	Warnings []RowWarning
}

// Selection is the UI-facing state of one session.
type Selection struct {
	Category string `json:"category"`
	Query    string `json:"query"`
	ShowAll  bool   `json:"showAll"`
}

// View is what the rendering layer consumes.
type View struct {
	Category    string     `json:"category"`
	Query       string     `json:"query"`
	ShowAll     bool       `json:"showAll"`
	Records     []Record   `json:"records"`
	ResultCount int        `json:"resultCount"`
	Status      LoadStatus `json:"status"`
	Error       string     `json:"error,omitempty"`
	ErrorCode   string     `json:"errorCode,omitempty"`
}

// LoadResult reports the outcome of one category in a bulk load.
type LoadResult struct {
	Category string
	Records  []Record
	Err      error
}
