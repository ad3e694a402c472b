package projectid

import (
	"fmt"

	"seqtrack/models"
)

// Numbering selects where a record's sequence number comes from
type Numbering string

const (
	// NumberingStable uses the sequence the store assigned at creation,
	// so deleting a record never changes the identifiers of the others.
	NumberingStable Numbering = "stable"
	// NumberingPositional uses the record's position in the current listing.
	NumberingPositional Numbering = "positional"
)

// ParseNumbering validates a numbering name
func ParseNumbering(s string) (Numbering, error) {
	switch Numbering(s) {
	case NumberingStable, NumberingPositional:
		return Numbering(s), nil
	default:
		return "", fmt.Errorf("unknown numbering %q", s)
	}
}

// SequenceNumberFor returns the sequence number of rec at index under n.
// Records without a stored sequence fall back to their position.
func (n Numbering) SequenceNumberFor(rec *models.Record, index int) int64 {
	if n == NumberingStable && rec.Sequence > 0 {
		return Base + rec.Sequence
	}
	return SequenceNumber(index)
}

// Listing accumulates display rows for one rendering of the table.
// Create one per listing call; it holds no state beyond that call.
type Listing struct {
	numbering Numbering
	rows      []models.DisplayRow
	records   int
}

// NewListing starts an empty listing
func NewListing(numbering Numbering) *Listing {
	return &Listing{numbering: numbering}
}

// Add expands the next record of the listing
func (l *Listing) Add(rec *models.Record) {
	seq := l.numbering.SequenceNumberFor(rec, l.records)
	l.rows = append(l.rows, Expand(rec, seq)...)
	l.records++
}

// AddAll expands records in order
func (l *Listing) AddAll(records []*models.Record) *Listing {
	for _, rec := range records {
		l.Add(rec)
	}
	return l
}

// Rows returns the flattened display rows
func (l *Listing) Rows() []models.DisplayRow {
	if l.rows == nil {
		return []models.DisplayRow{}
	}
	return l.rows
}

// Records returns how many records were added
func (l *Listing) Records() int {
	return l.records
}
