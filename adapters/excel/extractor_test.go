package excel

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"seqtrack/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// buildWorkbook writes a two-sheet run sheet with the given cells.
// Keys are "1!D5" style: sheet number, then cell.
func buildWorkbook(t *testing.T, sheetCount int, cells map[string]interface{}) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetSheetName("Sheet1", "Samples"))
	names := []string{"Samples"}
	for i := 2; i <= sheetCount; i++ {
		name := "Run" + string(rune('0'+i))
		_, err := f.NewSheet(name)
		require.NoError(t, err)
		names = append(names, name)
	}

	for key, value := range cells {
		sheetNum := int(key[0] - '1')
		require.Less(t, sheetNum, len(names), "cell %s targets a missing sheet", key)
		require.NoError(t, f.SetCellValue(names[sheetNum], key[2:], value))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func fullRunSheet() map[string]interface{} {
	return map[string]interface{}{
		"1!D5": "Jane Doe, John Smith",
		"1!I5": "Homo sapiens",
		"1!B5": "L1, L2",
		"1!J1": "SEQ42",
		"1!F1": "Ligation Kit",
		"1!M1": "Run A",
		"1!M2": "2023-10-05T00:00",
		"2!B1": "/runs/231005_A",
		"2!B2": "PromethION",
	}
}

func TestExtract_AllFields(t *testing.T) {
	content := buildWorkbook(t, 2, fullRunSheet())

	record, err := NewDefaultExtractor().ExtractBytes(content)
	require.NoError(t, err)

	assert.Equal(t, "Jane Doe, John Smith", record.CustomerName)
	assert.Equal(t, "Homo sapiens", record.SpeciesName)
	assert.Equal(t, "L1, L2", record.ILabID)
	assert.Equal(t, "SEQ42", record.SequencingID)
	assert.Equal(t, "Ligation Kit", record.KitType)
	assert.Equal(t, "Run A", record.Name)
	assert.Equal(t, "2023-10-05", record.Date)
	assert.Equal(t, "/runs/231005_A", record.RunFolder)
	assert.Equal(t, "PromethION", record.RunType)
	assert.False(t, record.Clicked)
	assert.Empty(t, record.ID)
}

func TestExtract_MissingCellsAreEmpty(t *testing.T) {
	content := buildWorkbook(t, 2, map[string]interface{}{
		"1!D5": "Madonna",
	})

	record, err := NewDefaultExtractor().ExtractBytes(content)
	require.NoError(t, err)

	assert.Equal(t, "Madonna", record.CustomerName)
	assert.Empty(t, record.ILabID)
	assert.Empty(t, record.SequencingID)
	assert.Empty(t, record.Date)
	assert.Empty(t, record.RunFolder)
	assert.Empty(t, record.RunType)
}

func TestExtract_NumericCellUsesRawValue(t *testing.T) {
	content := buildWorkbook(t, 2, map[string]interface{}{
		"1!J1": 42,
	})

	record, err := NewDefaultExtractor().ExtractBytes(content)
	require.NoError(t, err)
	assert.Equal(t, "42", record.SequencingID)
}

func TestExtract_ShortDateKeptWhole(t *testing.T) {
	content := buildWorkbook(t, 2, map[string]interface{}{
		"1!M2": "5/10/23",
	})

	record, err := NewDefaultExtractor().ExtractBytes(content)
	require.NoError(t, err)
	assert.Equal(t, "5/10/23", record.Date)
}

func TestExtract_DateCellUsesDisplayText(t *testing.T) {
	content := buildWorkbook(t, 2, map[string]interface{}{
		"1!M2": time.Date(2023, 10, 5, 0, 0, 0, 0, time.UTC),
	})

	record, err := NewDefaultExtractor().ExtractBytes(content)
	require.NoError(t, err)
	assert.Equal(t, "10-05-23", record.Date)
	assert.NotEqual(t, "45204", record.Date, "stored serial must not leak through")
}

func TestExtract_DateCellFollowsNumberFormat(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	_, err := f.NewSheet("Run")
	require.NoError(t, err)

	require.NoError(t, f.SetCellValue("Sheet1", "M2", time.Date(2023, 10, 5, 14, 30, 0, 0, time.UTC)))
	layout := "yyyy-mm-dd hh:mm"
	style, err := f.NewStyle(&excelize.Style{CustomNumFmt: &layout})
	require.NoError(t, err)
	require.NoError(t, f.SetCellStyle("Sheet1", "M2", "M2", style))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	record, err := NewDefaultExtractor().ExtractBytes(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "2023-10-05", record.Date)
}

func TestExtract_SingleSheetRejected(t *testing.T) {
	content := buildWorkbook(t, 1, map[string]interface{}{"1!D5": "Jane Doe"})

	_, err := NewDefaultExtractor().ExtractBytes(content)
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidUpload, errors.GetCode(err))
}

func TestExtract_InvalidInput(t *testing.T) {
	tests := []struct {
		name    string
		content []byte
	}{
		{"empty", nil},
		{"not a workbook", []byte("customer,species\nJane,Human\n")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDefaultExtractor().ExtractBytes(tt.content)
			require.Error(t, err)
			assert.Equal(t, errors.CodeInvalidUpload, errors.GetCode(err))
		})
	}

	_, err := NewDefaultExtractor().ExtractReader(nil)
	assert.Equal(t, errors.CodeInvalidUpload, errors.GetCode(err))
}

func TestExtract_FromDisk(t *testing.T) {
	content := buildWorkbook(t, 2, fullRunSheet())
	path := filepath.Join(t.TempDir(), "run.xlsx")
	require.NoError(t, os.WriteFile(path, content, 0o644))

	record, err := NewDefaultExtractor().ExtractFile(path)
	require.NoError(t, err)
	assert.Equal(t, "SEQ42", record.SequencingID)

	_, err = NewDefaultExtractor().ExtractFile(filepath.Join(t.TempDir(), "missing.xlsx"))
	assert.Equal(t, errors.CodeInvalidUpload, errors.GetCode(err))
}

func TestExtract_IsPure(t *testing.T) {
	content := buildWorkbook(t, 2, fullRunSheet())
	extractor := NewDefaultExtractor()

	first, err := extractor.ExtractReader(bytes.NewReader(content))
	require.NoError(t, err)
	second, err := extractor.ExtractReader(bytes.NewReader(content))
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "2023-10-05", truncateRunes("2023-10-05T00:00", DateWidth))
	assert.Equal(t, "", truncateRunes("", DateWidth))
	assert.Equal(t, "05.10.2023", truncateRunes("05.10.2023 г.", DateWidth))
	assert.Equal(t, "日付日付日付日付日付", truncateRunes("日付日付日付日付日付日付", DateWidth))
}

func TestLayoutValidate(t *testing.T) {
	require.NoError(t, DefaultLayout().Validate())

	bad := []Layout{
		{MinSheets: 1, Fields: []Field{{Name: "unknown", Ref: CellRef{Cell: "A1"}}}},
		{MinSheets: 1, Fields: []Field{{Name: "name", Ref: CellRef{Cell: "ZZZ"}}}},
		{MinSheets: 1, Fields: []Field{{Name: "name", Ref: CellRef{Cell: "A1"}}, {Name: "name", Ref: CellRef{Cell: "A2"}}}},
		{MinSheets: 1, Fields: []Field{{Name: "runType", Ref: CellRef{Sheet: 1, Cell: "B2"}}}},
	}
	for i, layout := range bad {
		_, err := NewExtractor(layout)
		assert.Error(t, err, "layout %d", i)
	}
}

func TestHasSupportedExtension(t *testing.T) {
	assert.True(t, HasSupportedExtension("run.xlsx"))
	assert.True(t, HasSupportedExtension("RUN.XLSM"))
	assert.False(t, HasSupportedExtension("run.xls"))
	assert.False(t, HasSupportedExtension("run.csv"))
	assert.False(t, HasSupportedExtension("run"))
}

func TestCellRefString(t *testing.T) {
	assert.Equal(t, "sheet 2!B1", CellRef{Sheet: 1, Cell: "B1"}.String())
}
