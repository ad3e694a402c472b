// Package testkit builds spreadsheet fixtures for tests.
package testkit

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// Cells maps "sheet!cell" keys, with 1-based sheet numbers, to values
type Cells map[string]interface{}

// RunSheet returns the cells of a complete two-sheet run sheet
func RunSheet(customers, iLabIDs, sequencingID string) Cells {
	return Cells{
		"1!D5": customers,
		"1!I5": "Homo sapiens",
		"1!B5": iLabIDs,
		"1!J1": sequencingID,
		"1!F1": "Ligation Kit",
		"1!M1": "Run A",
		"1!M2": "2023-10-05T00:00",
		"2!B1": "/runs/" + sequencingID,
		"2!B2": "PromethION",
	}
}

// Workbook renders cells into an xlsx with the given number of sheets
func Workbook(t testing.TB, sheets int, cells Cells) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	names := []string{"Samples"}
	require.NoError(t, f.SetSheetName("Sheet1", names[0]))
	for i := 2; i <= sheets; i++ {
		name := "Run" + strconv.Itoa(i)
		_, err := f.NewSheet(name)
		require.NoError(t, err)
		names = append(names, name)
	}

	for key, value := range cells {
		sheet, cell, ok := strings.Cut(key, "!")
		require.True(t, ok, "cell key %q", key)
		n, err := strconv.Atoi(sheet)
		require.NoError(t, err)
		require.LessOrEqual(t, n, len(names), "cell %s targets a missing sheet", key)
		require.NoError(t, f.SetCellValue(names[n-1], cell, value))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

// WriteWorkbook writes a workbook into dir and returns its path
func WriteWorkbook(t testing.TB, dir, name string, sheets int, cells Cells) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, Workbook(t, sheets, cells), 0644))
	return path
}
