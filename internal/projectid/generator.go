// Package projectid derives the user-facing project identifiers shown for
// each customer of a stored record.
//
// A record whose customer field holds "Jane Doe, John Smith" and whose
// sequencing ID is SEQ42 expands, at sequence number 1003, into the rows
// 1003_SEQ42_Doe and 1003_SEQ42_Smith.
package projectid

import (
	"fmt"
	"strconv"
	"strings"

	"seqtrack/models"
)

// Base is added to a record's ordinal to form its sequence number
const Base = 1000

// SequenceNumber returns the positional sequence number for a zero-based listing index
func SequenceNumber(index int) int64 {
	return Base + int64(index) + 1
}

// SplitTokens splits a comma-separated field and trims each token.
// An empty field yields a single empty token.
func SplitTokens(s string) []string {
	parts := strings.Split(s, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

// Surname returns the text after the last space of name, or name itself
func Surname(name string) string {
	if i := strings.LastIndex(name, " "); i >= 0 {
		return strings.TrimSpace(name[i+1:])
	}
	return strings.TrimSpace(name)
}

// Format builds a project identifier
func Format(sequenceNumber int64, sequencingID, surname string) string {
	return strconv.FormatInt(sequenceNumber, 10) + "_" + sequencingID + "_" + surname
}

// Generate expands rec as the record at the given zero-based listing index
func Generate(rec *models.Record, index int) []models.DisplayRow {
	return Expand(rec, SequenceNumber(index))
}

// Expand emits one display row per customer token of rec.
// A token whose identifier was already produced for this record gets its
// one-based token position appended, so rows are never dropped.
func Expand(rec *models.Record, sequenceNumber int64) []models.DisplayRow {
	names := SplitTokens(rec.CustomerName)
	ids := SplitTokens(rec.ILabID)

	rows := make([]models.DisplayRow, 0, len(names))
	seen := make(map[string]bool, len(names))
	for i, name := range names {
		projectID := Format(sequenceNumber, rec.SequencingID, Surname(name))
		if seen[projectID] {
			base := projectID
			for n := i + 1; seen[projectID]; n++ {
				projectID = fmt.Sprintf("%s_%d", base, n)
			}
		}
		seen[projectID] = true

		iLabID := ""
		if i < len(ids) {
			iLabID = ids[i]
		}

		rows = append(rows, models.DisplayRow{
			RecordID:       rec.ID,
			ProjectID:      projectID,
			SequenceNumber: sequenceNumber,
			TokenIndex:     i,
			ILabID:         iLabID,
			FullName:       name,
			Clicked:        rec.Clicked,
			SpeciesName:    rec.SpeciesName,
			SequencingID:   rec.SequencingID,
			KitType:        rec.KitType,
			Name:           rec.Name,
			Date:           rec.Date,
			RunFolder:      rec.RunFolder,
			RunType:        rec.RunType,
		})
	}
	return rows
}
