package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	`CREATE EXTENSION IF NOT EXISTS "pgcrypto";`,
	`CREATE TABLE IF NOT EXISTS vehicles (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		tag VARCHAR(64) NOT NULL,
		operated_hours NUMERIC(12,2) NOT NULL DEFAULT 0,
		last_hourmeter_start NUMERIC(12,2),
		last_hourmeter_end NUMERIC(12,2)
	);`,
	`CREATE TABLE IF NOT EXISTS people (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		full_name VARCHAR(255) NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS roles (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		name VARCHAR(128) NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS reports (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		project_id UUID NOT NULL,
		author_id UUID NOT NULL,
		activity_date DATE NOT NULL,
		shift VARCHAR(64),
		zone VARCHAR(255),
		location VARCHAR(255),
		start_time VARCHAR(16),
		end_time VARCHAR(16),
		foreman VARCHAR(255),
		supervisor VARCHAR(255),
		observations TEXT,
		client_key VARCHAR(128),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_reports_client_key ON reports (client_key) WHERE client_key IS NOT NULL;`,
	`CREATE INDEX IF NOT EXISTS idx_reports_project_date ON reports (project_id, activity_date);`,
	`CREATE INDEX IF NOT EXISTS idx_reports_author ON reports (author_id);`,
	`CREATE TABLE IF NOT EXISTS haul_entries (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		report_id UUID NOT NULL REFERENCES reports(id) ON DELETE CASCADE,
		material VARCHAR(255),
		trip_number INTEGER NOT NULL DEFAULT 0,
		capacity VARCHAR(64),
		loose_volume_m3 NUMERIC(12,2) NOT NULL DEFAULT 0,
		origin VARCHAR(255),
		destination VARCHAR(255),
		elevation VARCHAR(64),
		layer VARCHAR(64)
	);`,
	`CREATE INDEX IF NOT EXISTS idx_haul_entries_report_id ON haul_entries (report_id);`,
	`CREATE TABLE IF NOT EXISTS material_entries (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		report_id UUID NOT NULL REFERENCES reports(id) ON DELETE CASCADE,
		material VARCHAR(255),
		quantity NUMERIC(12,2) NOT NULL DEFAULT 0,
		unit VARCHAR(32)
	);`,
	`CREATE INDEX IF NOT EXISTS idx_material_entries_report_id ON material_entries (report_id);`,
	`CREATE TABLE IF NOT EXISTS water_entries (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		report_id UUID NOT NULL REFERENCES reports(id) ON DELETE CASCADE,
		vehicle_tag VARCHAR(64),
		trip_number INTEGER NOT NULL DEFAULT 0,
		volume_m3 NUMERIC(12,2) NOT NULL DEFAULT 0,
		origin VARCHAR(255),
		destination VARCHAR(255)
	);`,
	`CREATE INDEX IF NOT EXISTS idx_water_entries_report_id ON water_entries (report_id);`,
	`CREATE TABLE IF NOT EXISTS machinery_entries (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		report_id UUID NOT NULL REFERENCES reports(id) ON DELETE CASCADE,
		equipment_type VARCHAR(255),
		vehicle_id UUID REFERENCES vehicles(id),
		hourmeter_start NUMERIC(12,2),
		hourmeter_end NUMERIC(12,2),
		operated_hours NUMERIC(12,2) NOT NULL DEFAULT 0,
		operator VARCHAR(255),
		activity TEXT
	);`,
	`CREATE INDEX IF NOT EXISTS idx_machinery_entries_report_id ON machinery_entries (report_id);`,
	`CREATE INDEX IF NOT EXISTS idx_machinery_entries_vehicle_id ON machinery_entries (vehicle_id) WHERE vehicle_id IS NOT NULL;`,
	`CREATE TABLE IF NOT EXISTS map_pins (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		report_id UUID NOT NULL REFERENCES reports(id) ON DELETE CASCADE,
		x NUMERIC(8,6) NOT NULL DEFAULT 0,
		y NUMERIC(8,6) NOT NULL DEFAULT 0,
		label VARCHAR(255)
	);`,
	`CREATE INDEX IF NOT EXISTS idx_map_pins_report_id ON map_pins (report_id);`,
	`CREATE TABLE IF NOT EXISTS personnel_assignments (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		report_id UUID NOT NULL REFERENCES reports(id) ON DELETE CASCADE,
		person_id UUID NOT NULL,
		role_id UUID NOT NULL,
		hours_worked NUMERIC(8,2) NOT NULL DEFAULT 0,
		activity TEXT
	);`,
	`CREATE INDEX IF NOT EXISTS idx_personnel_assignments_report_id ON personnel_assignments (report_id);`,
	`CREATE TABLE IF NOT EXISTS report_modifications (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		report_id UUID NOT NULL REFERENCES reports(id) ON DELETE CASCADE,
		actor_id UUID NOT NULL,
		actor_name VARCHAR(255),
		note TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_report_modifications_report_id ON report_modifications (report_id);`,
	`CREATE TABLE IF NOT EXISTS report_modification_changes (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		modification_id UUID NOT NULL REFERENCES report_modifications(id) ON DELETE CASCADE,
		field VARCHAR(64) NOT NULL,
		previous_value JSONB,
		new_value JSONB,
		position INTEGER NOT NULL DEFAULT 0
	);`,
	`CREATE INDEX IF NOT EXISTS idx_report_modification_changes_modification_id ON report_modification_changes (modification_id);`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
