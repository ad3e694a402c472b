package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"seqtrack/adapters/excel"
	"seqtrack/adapters/memory"
	"seqtrack/internal/records"
	"seqtrack/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunImport(t *testing.T) {
	dir := t.TempDir()
	testkit.WriteWorkbook(t, dir, "01.xlsx", 2, testkit.RunSheet("Jane Doe", "L1", "S1"))
	testkit.WriteWorkbook(t, dir, "02.xlsx", 2, testkit.RunSheet("John Smith", "L2", "S2"))

	repo := memory.NewRecordRepository()
	var out bytes.Buffer
	require.NoError(t, runImport(context.Background(), records.NewService(repo), dir, 2, &out))
	assert.Contains(t, out.String(), "imported 2 of 2 workbooks")

	list, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "S1", list[0].SequencingID)
	assert.Equal(t, "S2", list[1].SequencingID)
}

func TestRunImport_ReportsFailures(t *testing.T) {
	dir := t.TempDir()
	testkit.WriteWorkbook(t, dir, "good.xlsx", 2, testkit.RunSheet("Jane Doe", "L1", "S1"))
	testkit.WriteWorkbook(t, dir, "bad.xlsx", 1, testkit.Cells{"1!D5": "x"})

	var out bytes.Buffer
	err := runImport(context.Background(), records.NewService(memory.NewRecordRepository()), dir, 1, &out)
	require.Error(t, err)
	assert.Contains(t, out.String(), "FAIL")
	assert.Contains(t, out.String(), "imported 1 of 2 workbooks")
}

func TestRunImport_EmptyDir(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, runImport(context.Background(), records.NewService(memory.NewRecordRepository()), t.TempDir(), 1, &out))
	assert.Contains(t, out.String(), "no workbooks found")
}

func TestImportHelpListsAcceptedExtensions(t *testing.T) {
	long := newImportCmd().Long
	for _, ext := range excel.SupportedExtensions {
		assert.Contains(t, long, ext)
	}
	assert.Contains(t, long, ".xlsx/.xlsm/.xltx/.xltm file")
	assert.False(t, strings.Contains(long, ".xls "), "legacy .xls is not accepted")
	assert.False(t, strings.Contains(long, ".xls/"), "legacy .xls is not accepted")
}
