package model

import (
	"time"

	"github.com/google/uuid"
)

// Report is the aggregate root for one day of field activity on a project.
// Child collections are loaded only by the composite read; list queries
// return bare roots.
type Report struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ProjectID    uuid.UUID `gorm:"type:uuid;index:idx_reports_project_date" json:"project_id"`
	AuthorID     uuid.UUID `gorm:"type:uuid;index" json:"author_id"`
	ActivityDate time.Time `gorm:"index:idx_reports_project_date" json:"activity_date"`
	Shift        string    `json:"shift"`
	Zone         string    `json:"zone"`
	Location     string    `json:"location"`
	StartTime    string    `json:"start_time"`
	EndTime      string    `json:"end_time"`
	Foreman      string    `json:"foreman"`
	Supervisor   string    `json:"supervisor"`
	Observations string    `json:"observations"`
	ClientKey    *string   `gorm:"uniqueIndex" json:"client_key,omitempty"`
	CreatedAt    time.Time `json:"created_at"`

	Haul      []HaulEntry           `gorm:"foreignKey:ReportID;constraint:OnDelete:CASCADE" json:"haul,omitempty"`
	Materials []MaterialEntry       `gorm:"foreignKey:ReportID;constraint:OnDelete:CASCADE" json:"materials,omitempty"`
	Water     []WaterEntry          `gorm:"foreignKey:ReportID;constraint:OnDelete:CASCADE" json:"water,omitempty"`
	Machinery []MachineryEntry      `gorm:"foreignKey:ReportID;constraint:OnDelete:CASCADE" json:"machinery,omitempty"`
	MapPins   []MapPin              `gorm:"foreignKey:ReportID;constraint:OnDelete:CASCADE" json:"map_pins,omitempty"`
	Personnel []PersonnelAssignment `gorm:"foreignKey:ReportID;constraint:OnDelete:CASCADE" json:"personnel,omitempty"`
	History   []ModificationEntry   `gorm:"foreignKey:ReportID;constraint:OnDelete:CASCADE" json:"history,omitempty"`
}

type HaulEntry struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ReportID      uuid.UUID `gorm:"type:uuid;index" json:"report_id"`
	Material      string    `json:"material"`
	TripNumber    int       `json:"trip_number"`
	Capacity      string    `json:"capacity"`
	LooseVolumeM3 float64   `json:"loose_volume_m3"`
	Origin        string    `json:"origin"`
	Destination   string    `json:"destination"`
	Elevation     string    `json:"elevation"`
	Layer         string    `json:"layer"`
}

type MaterialEntry struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ReportID uuid.UUID `gorm:"type:uuid;index" json:"report_id"`
	Material string    `json:"material"`
	Quantity float64   `json:"quantity"`
	Unit     string    `json:"unit"`
}

type WaterEntry struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ReportID    uuid.UUID `gorm:"type:uuid;index" json:"report_id"`
	VehicleTag  string    `json:"vehicle_tag"`
	TripNumber  int       `json:"trip_number"`
	VolumeM3    float64   `json:"volume_m3"`
	Origin      string    `json:"origin"`
	Destination string    `json:"destination"`
}

type MachineryEntry struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ReportID       uuid.UUID  `gorm:"type:uuid;index" json:"report_id"`
	EquipmentType  string     `json:"equipment_type"`
	VehicleID      *uuid.UUID `gorm:"type:uuid;index" json:"vehicle_id,omitempty"`
	HourmeterStart *float64   `json:"hourmeter_start,omitempty"`
	HourmeterEnd   *float64   `json:"hourmeter_end,omitempty"`
	OperatedHours  float64    `json:"operated_hours"`
	Operator       string     `json:"operator"`
	Activity       string     `json:"activity"`
}

// MapPin coordinates are normalized to the 0..1 range over the site map.
type MapPin struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ReportID uuid.UUID `gorm:"type:uuid;index" json:"report_id"`
	X        float64   `json:"x"`
	Y        float64   `json:"y"`
	Label    string    `json:"label"`
}

type PersonnelAssignment struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ReportID    uuid.UUID `gorm:"type:uuid;index" json:"report_id"`
	PersonID    uuid.UUID `gorm:"type:uuid" json:"person_id"`
	RoleID      uuid.UUID `gorm:"type:uuid" json:"role_id"`
	HoursWorked float64   `json:"hours_worked"`
	Activity    string    `json:"activity"`
}
