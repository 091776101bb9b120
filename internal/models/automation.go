package models

// Automation is a named rule bound to one collection. Triggers decide when it
// becomes eligible, conditions gate execution, actions run in order after the
// conditions pass. Inactive automations are never evaluated.
type Automation struct {
	BaseModel

	WorkspaceID  string `gorm:"type:uuid;index;not null" json:"workspace_id"`
	CollectionID string `gorm:"type:uuid;index;not null" json:"collection_id"`
	Name         string `gorm:"not null" json:"name"`
	Description  string `json:"description"`
	IsActive     bool   `gorm:"default:true;index" json:"is_active"`

	Triggers   []AutomationTrigger   `gorm:"foreignKey:AutomationID;constraint:OnDelete:CASCADE" json:"triggers,omitempty"`
	Conditions []AutomationCondition `gorm:"foreignKey:AutomationID;constraint:OnDelete:CASCADE" json:"conditions,omitempty"`
	Actions    []AutomationAction    `gorm:"foreignKey:AutomationID;constraint:OnDelete:CASCADE" json:"actions,omitempty"`
	Logs       []AutomationLog       `gorm:"foreignKey:AutomationID;constraint:OnDelete:CASCADE" json:"-"`

	Workspace  *Workspace  `gorm:"foreignKey:WorkspaceID" json:"workspace,omitempty"`
	Collection *Collection `gorm:"foreignKey:CollectionID" json:"collection,omitempty"`
}

// TriggersOfKind returns the automation's triggers matching the given kind.
func (a *Automation) TriggersOfKind(kind TriggerKind) []AutomationTrigger {
	var out []AutomationTrigger
	for _, trigger := range a.Triggers {
		if trigger.Kind == kind {
			out = append(out, trigger)
		}
	}
	return out
}
