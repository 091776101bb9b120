package models

import "gorm.io/datatypes"

// Field types understood by the engine. The schema is user defined, so the
// list is advisory; only date gets special treatment during templating.
const (
	FieldTypeText     = "text"
	FieldTypeNumber   = "number"
	FieldTypeBoolean  = "boolean"
	FieldTypeDate     = "date"
	FieldTypeSelect   = "select"
	FieldTypeRelation = "relation"
)

// SchemaField describes one column of a collection's user defined schema.
type SchemaField struct {
	ID                   string   `json:"id"`
	Label                string   `json:"label"`
	Type                 string   `json:"type"`
	Options              []string `json:"options,omitempty"`
	RelationCollectionID string   `json:"relation_collection_id,omitempty"`
	Multiple             bool     `json:"multiple,omitempty"`
}

// Collection is a user defined table of schema-less records.
type Collection struct {
	BaseModel

	WorkspaceID string `gorm:"type:uuid;index;not null" json:"workspace_id"`
	Name        string `gorm:"not null" json:"name"`
	Slug        string `gorm:"index;not null" json:"slug"`
	Description string `json:"description"`

	Schema datatypes.JSONSlice[SchemaField] `json:"schema"`

	Workspace *Workspace `gorm:"foreignKey:WorkspaceID" json:"workspace,omitempty"`
	Records   []Record   `gorm:"foreignKey:CollectionID;constraint:OnDelete:CASCADE" json:"-"`
}

// Field looks up a schema field by its identifier.
func (c *Collection) Field(id string) (SchemaField, bool) {
	for _, field := range c.Schema {
		if field.ID == id {
			return field, true
		}
	}
	return SchemaField{}, false
}
