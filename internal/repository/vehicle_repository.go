package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/mineops-reports/internal/model"
)

type VehicleRepository struct {
	db *gorm.DB
}

func NewVehicleRepository(db *gorm.DB) *VehicleRepository {
	return &VehicleRepository{db: db}
}

func (r *VehicleRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Vehicle, error) {
	var vehicle model.Vehicle
	if err := r.db.WithContext(ctx).First(&vehicle, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &vehicle, nil
}

// UpdateReadings overwrites only the supplied columns. It never reads prior
// state; the ledger decides what to persist.
func (r *VehicleRepository) UpdateReadings(ctx context.Context, id uuid.UUID, start, end, operated *float64) error {
	fields := map[string]interface{}{}
	if start != nil {
		fields["last_hourmeter_start"] = *start
	}
	if end != nil {
		fields["last_hourmeter_end"] = *end
	}
	if operated != nil {
		fields["operated_hours"] = *operated
	}
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&model.Vehicle{}).
		Where("id = ?", id).
		Updates(fields).Error
}
