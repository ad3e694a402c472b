package excel

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"seqtrack/internal/errors"
	"seqtrack/models"

	"github.com/xuri/excelize/v2"
)

// SupportedExtensions lists the workbook formats excelize can open
var SupportedExtensions = []string{".xlsx", ".xlsm", ".xltx", ".xltm"}

// recordSetters maps layout field names onto record attributes
var recordSetters = map[string]func(*models.Record, string){
	"customerName": func(r *models.Record, v string) { r.CustomerName = v },
	"speciesName":  func(r *models.Record, v string) { r.SpeciesName = v },
	"iLabID":       func(r *models.Record, v string) { r.ILabID = v },
	"sequencingID": func(r *models.Record, v string) { r.SequencingID = v },
	"kitType":      func(r *models.Record, v string) { r.KitType = v },
	"name":         func(r *models.Record, v string) { r.Name = v },
	"date":         func(r *models.Record, v string) { r.Date = v },
	"runFolder":    func(r *models.Record, v string) { r.RunFolder = v },
	"runType":      func(r *models.Record, v string) { r.RunType = v },
}

// Extractor reads the fixed cells of a run sheet workbook into a record.
// It has no side effects; persisting the result is the caller's job.
type Extractor struct {
	layout Layout
}

// NewExtractor creates an extractor for the given layout
func NewExtractor(layout Layout) (*Extractor, error) {
	if err := layout.Validate(); err != nil {
		return nil, fmt.Errorf("invalid layout: %w", err)
	}
	return &Extractor{layout: layout}, nil
}

// NewDefaultExtractor creates an extractor for DefaultLayout
func NewDefaultExtractor() *Extractor {
	return &Extractor{layout: DefaultLayout()}
}

// Layout returns the cells this extractor reads
func (e *Extractor) Layout() Layout {
	return e.layout
}

// HasSupportedExtension reports whether filename looks like an OOXML workbook
func HasSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, valid := range SupportedExtensions {
		if ext == valid {
			return true
		}
	}
	return false
}

// ExtractFile opens a workbook from disk and extracts it
func (e *Extractor) ExtractFile(path string) (*models.Record, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.InvalidUpload(fmt.Sprintf("failed to read %s", path), err)
	}
	return e.ExtractBytes(content)
}

// ExtractBytes parses workbook bytes and extracts them
func (e *Extractor) ExtractBytes(content []byte) (*models.Record, error) {
	if len(content) == 0 {
		return nil, errors.InvalidUpload("no file uploaded", nil)
	}
	return e.ExtractReader(bytes.NewReader(content))
}

// ExtractReader parses a workbook stream and extracts it
func (e *Extractor) ExtractReader(r io.Reader) (*models.Record, error) {
	if r == nil {
		return nil, errors.InvalidUpload("no file uploaded", nil)
	}
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errors.InvalidUpload("invalid file format or structure", err)
	}
	defer f.Close()

	return e.Extract(f)
}

// Extract maps the layout cells of an open workbook onto a new record
func (e *Extractor) Extract(f *excelize.File) (*models.Record, error) {
	if f == nil {
		return nil, errors.InvalidUpload("no workbook", nil)
	}

	sheets := f.GetSheetList()
	if len(sheets) < e.layout.MinSheets {
		return nil, errors.InvalidUpload(
			fmt.Sprintf("workbook has %d sheet(s), expected at least %d", len(sheets), e.layout.MinSheets), nil)
	}

	record := &models.Record{}
	for _, field := range e.layout.Fields {
		sheet := sheets[field.Ref.Sheet]
		var value string
		switch field.Kind {
		case KindDate:
			value = truncateRunes(cellOrDefault(f, sheet, field.Ref.Cell, false), DateWidth)
		default:
			value = cellOrDefault(f, sheet, field.Ref.Cell, true)
		}
		recordSetters[field.Name](record, value)
	}

	return record, nil
}

// cellOrDefault returns the cell's raw value or formatted text, or "" when the
// cell is absent or unreadable.
func cellOrDefault(f *excelize.File, sheet, cell string, raw bool) string {
	value, err := f.GetCellValue(sheet, cell, excelize.Options{RawCellValue: raw})
	if err != nil {
		return ""
	}
	return value
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
