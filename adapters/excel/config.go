package excel

import (
	"fmt"
)

// Layout is the ordered set of cells read from an uploaded workbook
type Layout struct {
	Fields []Field
	// MinSheets is how many sheets a workbook must have to be accepted
	MinSheets int
}

// DefaultLayout returns the run sheet layout: header cells on the first tab,
// run folder and run type on the second.
func DefaultLayout() Layout {
	return Layout{
		MinSheets: 2,
		Fields: []Field{
			{Name: "customerName", Ref: CellRef{Sheet: 0, Cell: "D5"}, Kind: KindText},
			{Name: "speciesName", Ref: CellRef{Sheet: 0, Cell: "I5"}, Kind: KindText},
			{Name: "iLabID", Ref: CellRef{Sheet: 0, Cell: "B5"}, Kind: KindText},
			{Name: "sequencingID", Ref: CellRef{Sheet: 0, Cell: "J1"}, Kind: KindText},
			{Name: "kitType", Ref: CellRef{Sheet: 0, Cell: "F1"}, Kind: KindText},
			{Name: "name", Ref: CellRef{Sheet: 0, Cell: "M1"}, Kind: KindText},
			{Name: "date", Ref: CellRef{Sheet: 0, Cell: "M2"}, Kind: KindDate},
			{Name: "runFolder", Ref: CellRef{Sheet: 1, Cell: "B1"}, Kind: KindText},
			{Name: "runType", Ref: CellRef{Sheet: 1, Cell: "B2"}, Kind: KindText},
		},
	}
}

// Validate checks every field has a known name and a well-formed cell
func (l Layout) Validate() error {
	seen := make(map[string]bool, len(l.Fields))
	for _, f := range l.Fields {
		if _, ok := recordSetters[f.Name]; !ok {
			return fmt.Errorf("unknown record field %q", f.Name)
		}
		if seen[f.Name] {
			return fmt.Errorf("field %q mapped twice", f.Name)
		}
		seen[f.Name] = true
		if err := f.Ref.Validate(); err != nil {
			return fmt.Errorf("field %q: %w", f.Name, err)
		}
		if f.Ref.Sheet >= l.MinSheets {
			return fmt.Errorf("field %q reads sheet %d but only %d sheets are required", f.Name, f.Ref.Sheet+1, l.MinSheets)
		}
	}
	return nil
}
