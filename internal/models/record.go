package models

import (
	"fmt"

	"gorm.io/datatypes"
)

// System field names addressable by condition and trigger field references.
var systemFields = map[string]struct{}{
	"id":         {},
	"created_at": {},
	"updated_at": {},
}

// Record holds one row of a collection: a dynamically typed key/value data
// payload whose keys are field identifiers from the collection schema.
type Record struct {
	BaseModel

	CollectionID string            `gorm:"type:uuid;index;not null" json:"collection_id"`
	Data         datatypes.JSONMap `json:"data"`
	CreatedBy    *string           `gorm:"type:uuid" json:"created_by"`

	Collection *Collection `gorm:"foreignKey:CollectionID" json:"collection,omitempty"`
}

// FieldValue resolves a condition/trigger field name against the record.
// System fields come from the record's own attributes, everything else from
// the data payload; absent keys resolve to nil.
func (r *Record) FieldValue(field string) any {
	if _, ok := systemFields[field]; ok {
		switch field {
		case "id":
			return r.ID
		case "created_at":
			return r.CreatedAt
		case "updated_at":
			return r.UpdatedAt
		}
	}

	if r.Data == nil {
		return nil
	}
	value, ok := r.Data[field]
	if !ok {
		return nil
	}
	return value
}

// Title derives a display title from common data keys, falling back to the id.
func (r *Record) Title() string {
	for _, key := range []string{"name", "title", "subject", "description"} {
		if value, ok := r.Data[key]; ok {
			if s := Stringify(value); s != "" {
				return s
			}
		}
	}
	return fmt.Sprintf("Record #%s", r.ID)
}
