package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/mineops-reports/internal/model"
)

// HistoryRepository appends report modification entries. There is no update
// or delete path; the log is write-once.
type HistoryRepository struct {
	db *gorm.DB
}

func NewHistoryRepository(db *gorm.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

func (r *HistoryRepository) Append(ctx context.Context, entry *model.ModificationEntry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		changes := entry.Changes
		entry.Changes = nil
		if entry.ID == uuid.Nil {
			entry.ID = uuid.New()
		}
		if err := tx.Create(entry).Error; err != nil {
			return err
		}
		for i := range changes {
			changes[i].ID = uuid.New()
			changes[i].ModificationID = entry.ID
			changes[i].Position = i
		}
		if len(changes) > 0 {
			if err := tx.Create(&changes).Error; err != nil {
				return err
			}
		}
		entry.Changes = changes
		return nil
	})
}

func (r *HistoryRepository) CountByReport(ctx context.Context, reportID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.ModificationEntry{}).
		Where("report_id = ?", reportID).
		Count(&count).Error
	return count, err
}
