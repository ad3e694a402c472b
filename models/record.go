package models

import (
	"time"
)

// Record is one spreadsheet upload extracted into structured fields.
// JSON names follow the table client contract; db tags map the SQL columns.
type Record struct {
	ID           string    `json:"id" db:"id" bson:"-"`
	Sequence     int64     `json:"sequence" db:"sequence" bson:"sequence"`
	CustomerName string    `json:"customerName" db:"customer_name" bson:"customerName"`
	SpeciesName  string    `json:"speciesName" db:"species_name" bson:"speciesName"`
	SequencingID string    `json:"sequencingID" db:"sequencing_id" bson:"sequencingID"`
	KitType      string    `json:"kitType" db:"kit_type" bson:"kitType"`
	Name         string    `json:"name" db:"name" bson:"name"`
	Date         string    `json:"date" db:"date" bson:"date"`
	ILabID       string    `json:"iLabID" db:"ilab_id" bson:"iLabID"`
	RunFolder    string    `json:"runFolder" db:"run_folder" bson:"runFolder"`
	RunType      string    `json:"runType" db:"run_type" bson:"runType"`
	Clicked      bool      `json:"clicked" db:"clicked" bson:"clicked"`
	SourceFile   string    `json:"sourceFile,omitempty" db:"source_file" bson:"sourceFile,omitempty"`
	ArchiveKey   string    `json:"archiveKey,omitempty" db:"archive_key" bson:"archiveKey,omitempty"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at" bson:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at" bson:"updatedAt"`
}

// RecordPatch is a partial update. Nil fields are left untouched.
type RecordPatch struct {
	CustomerName *string `json:"customerName,omitempty"`
	SpeciesName  *string `json:"speciesName,omitempty"`
	SequencingID *string `json:"sequencingID,omitempty"`
	KitType      *string `json:"kitType,omitempty"`
	Name         *string `json:"name,omitempty"`
	Date         *string `json:"date,omitempty"`
	ILabID       *string `json:"iLabID,omitempty"`
	RunFolder    *string `json:"runFolder,omitempty"`
	RunType      *string `json:"runType,omitempty"`
	Clicked      *bool   `json:"clicked,omitempty"`
}

// PatchField is one column assignment produced from a RecordPatch.
type PatchField struct {
	Column string // SQL column name
	Key    string // document key
	Value  interface{}
}

// Fields returns the set fields in a fixed column order.
func (p RecordPatch) Fields() []PatchField {
	var fields []PatchField
	add := func(column, key string, v *string) {
		if v != nil {
			fields = append(fields, PatchField{Column: column, Key: key, Value: *v})
		}
	}
	add("customer_name", "customerName", p.CustomerName)
	add("species_name", "speciesName", p.SpeciesName)
	add("sequencing_id", "sequencingID", p.SequencingID)
	add("kit_type", "kitType", p.KitType)
	add("name", "name", p.Name)
	add("date", "date", p.Date)
	add("ilab_id", "iLabID", p.ILabID)
	add("run_folder", "runFolder", p.RunFolder)
	add("run_type", "runType", p.RunType)
	if p.Clicked != nil {
		fields = append(fields, PatchField{Column: "clicked", Key: "clicked", Value: *p.Clicked})
	}
	return fields
}

// IsEmpty reports whether the patch changes nothing.
func (p RecordPatch) IsEmpty() bool {
	return len(p.Fields()) == 0
}

// Apply copies the set fields onto r.
func (p RecordPatch) Apply(r *Record) {
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&r.CustomerName, p.CustomerName)
	set(&r.SpeciesName, p.SpeciesName)
	set(&r.SequencingID, p.SequencingID)
	set(&r.KitType, p.KitType)
	set(&r.Name, p.Name)
	set(&r.Date, p.Date)
	set(&r.ILabID, p.ILabID)
	set(&r.RunFolder, p.RunFolder)
	set(&r.RunType, p.RunType)
	if p.Clicked != nil {
		r.Clicked = *p.Clicked
	}
}

// DisplayRow is one customer token of a record, as shown in the table.
// It is derived on every listing and never stored.
type DisplayRow struct {
	RecordID       string `json:"recordId"`
	ProjectID      string `json:"projectId"`
	SequenceNumber int64  `json:"sequenceNumber"`
	TokenIndex     int    `json:"tokenIndex"`
	ILabID         string `json:"iLabID"`
	FullName       string `json:"fullName"`
	Clicked        bool   `json:"clicked"`
	SpeciesName    string `json:"speciesName"`
	SequencingID   string `json:"sequencingID"`
	KitType        string `json:"kitType"`
	Name           string `json:"name"`
	Date           string `json:"date"`
	RunFolder      string `json:"runFolder"`
	RunType        string `json:"runType"`
}
