package excel

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// CellRef addresses one cell by sheet position and A1-style coordinate
type CellRef struct {
	Sheet int    // zero-based position in the workbook's sheet list
	Cell  string // e.g. "D5"
}

func (c CellRef) String() string {
	return fmt.Sprintf("sheet %d!%s", c.Sheet+1, c.Cell)
}

// Validate checks the coordinate is a well-formed A1 reference
func (c CellRef) Validate() error {
	if c.Sheet < 0 {
		return fmt.Errorf("negative sheet index %d", c.Sheet)
	}
	if _, _, err := excelize.CellNameToCoordinates(c.Cell); err != nil {
		return fmt.Errorf("invalid cell %q: %w", c.Cell, err)
	}
	return nil
}

// FieldKind decides which cell representation is read
type FieldKind int

const (
	// KindText reads the raw stored value
	KindText FieldKind = iota
	// KindDate reads the formatted display text, truncated to DateWidth runes
	KindDate
)

// DateWidth is the number of characters kept from a date cell's display text
const DateWidth = 10

// Field binds a record attribute to a cell
type Field struct {
	Name string // JSON name of the record attribute
	Ref  CellRef
	Kind FieldKind
}
