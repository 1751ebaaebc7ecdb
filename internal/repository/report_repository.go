package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nurpe/mineops-reports/internal/model"
)

// ReportRepository owns the report aggregate: the root row plus the six
// child collections keyed by report_id. Child collections are only ever
// written through the Replace* operations, which encapsulate the
// delete-then-insert full replacement.
type ReportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

type ListFilter struct {
	ProjectID *uuid.UUID
	AuthorID  *uuid.UUID
	DateFrom  *time.Time
	DateTo    *time.Time
	Limit     int
	Offset    int
}

func (r *ReportRepository) Create(ctx context.Context, report *model.Report) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(report).Error
}

func (r *ReportRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Report, error) {
	var report model.Report
	if err := r.db.WithContext(ctx).First(&report, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *ReportRepository) GetByClientKey(ctx context.Context, key string) (*model.Report, error) {
	var report model.Report
	if err := r.db.WithContext(ctx).First(&report, "client_key = ?", key).Error; err != nil {
		return nil, err
	}
	return &report, nil
}

// GetComposite loads the root row, then fans out the six child collections
// and the modification history concurrently. History entries come back
// oldest first with their field changes in emission order.
func (r *ReportRepository) GetComposite(ctx context.Context, id uuid.UUID) (*model.Report, error) {
	var report model.Report
	if err := r.db.WithContext(ctx).First(&report, "id = ?", id).Error; err != nil {
		return nil, err
	}

	var g errgroup.Group
	g.Go(func() error {
		return r.db.WithContext(ctx).Where("report_id = ?", id).Find(&report.Haul).Error
	})
	g.Go(func() error {
		return r.db.WithContext(ctx).Where("report_id = ?", id).Find(&report.Materials).Error
	})
	g.Go(func() error {
		return r.db.WithContext(ctx).Where("report_id = ?", id).Find(&report.Water).Error
	})
	g.Go(func() error {
		return r.db.WithContext(ctx).Where("report_id = ?", id).Find(&report.Machinery).Error
	})
	g.Go(func() error {
		return r.db.WithContext(ctx).Where("report_id = ?", id).Find(&report.MapPins).Error
	})
	g.Go(func() error {
		return r.db.WithContext(ctx).Where("report_id = ?", id).Find(&report.Personnel).Error
	})
	g.Go(func() error {
		if err := r.db.WithContext(ctx).
			Where("report_id = ?", id).
			Order("created_at ASC").
			Find(&report.History).Error; err != nil {
			return err
		}
		for i := range report.History {
			if err := r.db.WithContext(ctx).
				Where("modification_id = ?", report.History[i].ID).
				Order("position ASC").
				Find(&report.History[i].Changes).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *ReportRepository) List(ctx context.Context, filter ListFilter) ([]model.Report, error) {
	query := r.db.WithContext(ctx).Model(&model.Report{})
	if filter.ProjectID != nil {
		query = query.Where("project_id = ?", *filter.ProjectID)
	}
	if filter.AuthorID != nil {
		query = query.Where("author_id = ?", *filter.AuthorID)
	}
	if filter.DateFrom != nil {
		query = query.Where("activity_date >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("activity_date <= ?", *filter.DateTo)
	}
	query = query.Order("activity_date DESC")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var reports []model.Report
	if err := query.Find(&reports).Error; err != nil {
		return nil, err
	}
	return reports, nil
}

func (r *ReportRepository) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).
		Model(&model.Report{}).
		Where("id = ?", id).
		Updates(fields).Error
}

// Delete removes the root row; child rows and history cascade at the store.
// Deleting an id that does not exist is not an error.
func (r *ReportRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Report{}, "id = ?", id).Error
}

func (r *ReportRepository) ReplaceHaul(ctx context.Context, reportID uuid.UUID, rows []model.HaulEntry) error {
	for i := range rows {
		rows[i].ID = uuid.New()
		rows[i].ReportID = reportID
	}
	return replaceRows(ctx, r.db, reportID, rows)
}

func (r *ReportRepository) ReplaceMaterials(ctx context.Context, reportID uuid.UUID, rows []model.MaterialEntry) error {
	for i := range rows {
		rows[i].ID = uuid.New()
		rows[i].ReportID = reportID
	}
	return replaceRows(ctx, r.db, reportID, rows)
}

func (r *ReportRepository) ReplaceWater(ctx context.Context, reportID uuid.UUID, rows []model.WaterEntry) error {
	for i := range rows {
		rows[i].ID = uuid.New()
		rows[i].ReportID = reportID
	}
	return replaceRows(ctx, r.db, reportID, rows)
}

func (r *ReportRepository) ReplaceMachinery(ctx context.Context, reportID uuid.UUID, rows []model.MachineryEntry) error {
	for i := range rows {
		rows[i].ID = uuid.New()
		rows[i].ReportID = reportID
	}
	return replaceRows(ctx, r.db, reportID, rows)
}

func (r *ReportRepository) ReplaceMapPins(ctx context.Context, reportID uuid.UUID, rows []model.MapPin) error {
	for i := range rows {
		rows[i].ID = uuid.New()
		rows[i].ReportID = reportID
	}
	return replaceRows(ctx, r.db, reportID, rows)
}

func (r *ReportRepository) ReplacePersonnel(ctx context.Context, reportID uuid.UUID, rows []model.PersonnelAssignment) error {
	for i := range rows {
		rows[i].ID = uuid.New()
		rows[i].ReportID = reportID
	}
	return replaceRows(ctx, r.db, reportID, rows)
}

// PersonNames resolves catalog people to their display names.
func (r *ReportRepository) PersonNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	names := map[uuid.UUID]string{}
	if len(ids) == 0 {
		return names, nil
	}
	var people []model.Person
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&people).Error; err != nil {
		return nil, err
	}
	for _, person := range people {
		names[person.ID] = person.FullName
	}
	return names, nil
}

// RoleNames resolves catalog roles to their display names.
func (r *ReportRepository) RoleNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	names := map[uuid.UUID]string{}
	if len(ids) == 0 {
		return names, nil
	}
	var roles []model.Role
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&roles).Error; err != nil {
		return nil, err
	}
	for _, role := range roles {
		names[role.ID] = role.Name
	}
	return names, nil
}

// replaceRows deletes every row of one collection for the report, then bulk
// inserts the replacement set. Not transactional with sibling collections.
func replaceRows[T any](ctx context.Context, db *gorm.DB, reportID uuid.UUID, rows []T) error {
	if err := db.WithContext(ctx).Where("report_id = ?", reportID).Delete(new(T)).Error; err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	return db.WithContext(ctx).Create(&rows).Error
}
