package models

import (
	"time"

	"gorm.io/gorm"
)

// File is the row representation of a catalog record in SQL backed stores.
// Document holds the canonical JSON of every field except the identifier;
// UID and Checksum are copied out of it for indexed lookups.
type File struct {
	ID       string `gorm:"primaryKey;type:text"`
	UID      string `gorm:"type:text;index:idx_files_uid"`
	Checksum string `gorm:"type:text"`
	Document string `gorm:"type:text;not null"`

	// Timestamps
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// NewFile builds a row for the given identifier and record.
func NewFile(id string, md Metadata) (*File, error) {
	file := &File{ID: id}
	if err := file.SetMetadata(md); err != nil {
		return nil, err
	}
	return file, nil
}

// SetMetadata replaces the stored document and the indexed columns.
func (f *File) SetMetadata(md Metadata) error {
	doc, err := Canonical(md.Without(FieldID))
	if err != nil {
		return err
	}

	f.UID = md.UID()
	f.Checksum = md.Checksum()
	f.Document = string(doc)
	return nil
}

// Metadata decodes the stored document and attaches the identifier.
func (f *File) Metadata() (Metadata, error) {
	md, err := Decode([]byte(f.Document))
	if err != nil {
		return nil, err
	}
	md[FieldID] = f.ID
	return md, nil
}
