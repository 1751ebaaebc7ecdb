package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ModificationEntry is one append-only audit record of a report update. It is
// written when at least one root scalar field changed or the caller attached
// a note; child-collection replacements alone leave no trace here.
type ModificationEntry struct {
	ID        uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	ReportID  uuid.UUID     `gorm:"type:uuid;index" json:"report_id"`
	ActorID   uuid.UUID     `gorm:"type:uuid" json:"actor_id"`
	ActorName string        `json:"actor_name"`
	Note      string        `json:"note"`
	CreatedAt time.Time     `json:"created_at"`
	Changes   []FieldChange `gorm:"foreignKey:ModificationID;constraint:OnDelete:CASCADE" json:"changes,omitempty"`
}

func (ModificationEntry) TableName() string { return "report_modifications" }

// FieldChange records one scalar field transition. Values are stored
// JSON-encoded so the log keeps the original type, not a string cast.
type FieldChange struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ModificationID uuid.UUID      `gorm:"type:uuid;index" json:"modification_id"`
	Field          string         `json:"field"`
	PreviousValue  datatypes.JSON `json:"previous_value"`
	NewValue       datatypes.JSON `json:"new_value"`
	Position       int            `json:"position"`
}

func (FieldChange) TableName() string { return "report_modification_changes" }

// FieldDiff is an in-memory scalar change before it is persisted.
type FieldDiff struct {
	Field    string
	Previous any
	New      any
}
