package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/mineops-reports/internal/model"
)

// StatsRepository pulls raw child rows across many reports; all grouping and
// ranking happens in the stats service.
type StatsRepository struct {
	db *gorm.DB
}

func NewStatsRepository(db *gorm.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// MachineryUsageRow carries the joined vehicle tag; EquipmentType is the
// fallback bucket key when the entry references no catalog vehicle.
type MachineryUsageRow struct {
	EquipmentType string
	VehicleTag    *string
	OperatedHours float64
}

type PersonnelUsageRow struct {
	PersonID    uuid.UUID
	PersonName  string
	HoursWorked float64
}

func (r *StatsRepository) ReportIDs(ctx context.Context, projectIDs []uuid.UUID, from, to *time.Time) ([]uuid.UUID, error) {
	query := r.db.WithContext(ctx).Model(&model.Report{})
	if len(projectIDs) > 0 {
		query = query.Where("project_id IN ?", projectIDs)
	}
	if from != nil {
		query = query.Where("activity_date >= ?", *from)
	}
	if to != nil {
		query = query.Where("activity_date <= ?", *to)
	}

	var ids []uuid.UUID
	if err := query.Order("activity_date ASC").Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *StatsRepository) HaulRows(ctx context.Context, reportIDs []uuid.UUID) ([]model.HaulEntry, error) {
	var rows []model.HaulEntry
	err := r.db.WithContext(ctx).
		Where("report_id IN ?", reportIDs).
		Find(&rows).Error
	return rows, err
}

func (r *StatsRepository) MaterialRows(ctx context.Context, reportIDs []uuid.UUID) ([]model.MaterialEntry, error) {
	var rows []model.MaterialEntry
	err := r.db.WithContext(ctx).
		Where("report_id IN ?", reportIDs).
		Find(&rows).Error
	return rows, err
}

func (r *StatsRepository) WaterRows(ctx context.Context, reportIDs []uuid.UUID) ([]model.WaterEntry, error) {
	var rows []model.WaterEntry
	err := r.db.WithContext(ctx).
		Where("report_id IN ?", reportIDs).
		Find(&rows).Error
	return rows, err
}

func (r *StatsRepository) MachineryRows(ctx context.Context, reportIDs []uuid.UUID) ([]MachineryUsageRow, error) {
	var rows []MachineryUsageRow
	err := r.db.WithContext(ctx).
		Table("machinery_entries m").
		Select("m.equipment_type, v.tag AS vehicle_tag, m.operated_hours").
		Joins("LEFT JOIN vehicles v ON v.id = m.vehicle_id").
		Where("m.report_id IN ?", reportIDs).
		Scan(&rows).Error
	return rows, err
}

func (r *StatsRepository) PersonnelRows(ctx context.Context, reportIDs []uuid.UUID) ([]PersonnelUsageRow, error) {
	var rows []PersonnelUsageRow
	err := r.db.WithContext(ctx).
		Table("personnel_assignments pa").
		Select("pa.person_id, COALESCE(p.full_name, '') AS person_name, pa.hours_worked").
		Joins("LEFT JOIN people p ON p.id = pa.person_id").
		Where("pa.report_id IN ?", reportIDs).
		Scan(&rows).Error
	return rows, err
}
