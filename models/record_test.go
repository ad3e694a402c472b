package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func TestRecordPatch_ClickedOnly(t *testing.T) {
	patch := RecordPatch{Clicked: boolPtr(true)}

	fields := patch.Fields()
	require.Len(t, fields, 1)
	assert.Equal(t, "clicked", fields[0].Column)
	assert.Equal(t, true, fields[0].Value)

	rec := Record{CustomerName: "Jane Doe", SpeciesName: "E. coli"}
	patch.Apply(&rec)
	assert.True(t, rec.Clicked)
	assert.Equal(t, "Jane Doe", rec.CustomerName)
	assert.Equal(t, "E. coli", rec.SpeciesName)
}

func TestRecordPatch_FullEdit(t *testing.T) {
	patch := RecordPatch{
		CustomerName: strPtr("Jane Doe, John Smith"),
		ILabID:       strPtr("L1, L2"),
		Date:         strPtr("2023-10-05"),
	}

	var columns []string
	for _, f := range patch.Fields() {
		columns = append(columns, f.Column)
	}
	assert.Equal(t, []string{"customer_name", "date", "ilab_id"}, columns)

	rec := Record{Clicked: true}
	patch.Apply(&rec)
	assert.Equal(t, "Jane Doe, John Smith", rec.CustomerName)
	assert.Equal(t, "L1, L2", rec.ILabID)
	assert.Equal(t, "2023-10-05", rec.Date)
	assert.True(t, rec.Clicked, "clicked must survive an edit that does not set it")
}

func TestRecordPatch_IsEmpty(t *testing.T) {
	assert.True(t, RecordPatch{}.IsEmpty())
	assert.False(t, RecordPatch{Clicked: boolPtr(false)}.IsEmpty())
	assert.False(t, RecordPatch{Name: strPtr("")}.IsEmpty())
}

func TestNewIDUniqueness(t *testing.T) {
	const numIDs = 1000

	ids := make(map[string]bool, numIDs)
	for i := 0; i < numIDs; i++ {
		id := NewID()
		if id == "" {
			t.Fatalf("Generated empty ID at iteration %d", i)
		}
		if ids[id] {
			t.Fatalf("Generated duplicate ID: %s", id)
		}
		ids[id] = true
	}
}

func TestParseID(t *testing.T) {
	tests := []struct {
		input    string
		expected string
		hasError bool
	}{
		{"abc-123", "abc-123", false},
		{"  abc  ", "abc", false},
		{"", "", true},
		{"   ", "", true},
	}

	for _, test := range tests {
		result, err := ParseID(test.input)
		if test.hasError {
			assert.Error(t, err, "input %q", test.input)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, test.expected, result)
	}
}
