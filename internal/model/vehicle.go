package model

import "github.com/google/uuid"

// Vehicle belongs to the equipment catalog. The usage ledger keeps its
// operated-hours counter and the latest hour-meter pair in sync with the
// machinery entries of the reports that currently exist.
type Vehicle struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Tag                string    `json:"tag"`
	OperatedHours      float64   `json:"operated_hours"`
	LastHourmeterStart *float64  `json:"last_hourmeter_start,omitempty"`
	LastHourmeterEnd   *float64  `json:"last_hourmeter_end,omitempty"`
}

// Person and Role are read-side catalogs, resolved to display labels by the
// stats aggregator and the printable report.
type Person struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	FullName string    `json:"full_name"`
}

func (Person) TableName() string { return "people" }

type Role struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name string    `json:"name"`
}
