package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/nurpe/mineops-reports/internal/repository"
)

// Ledger keeps vehicle hour-meter readings in step with machinery entries.
// It overwrites whichever readings it is given, last writer wins; it never
// reads prior vehicle state. A report carrying two machinery rows for the
// same vehicle therefore ends with the second row's readings.
type Ledger struct {
	vehicles *repository.VehicleRepository
}

func NewLedger(vehicles *repository.VehicleRepository) *Ledger {
	return &Ledger{vehicles: vehicles}
}

// Apply persists the supplied readings. With both present, operated hours is
// recomputed as end minus start. With only one, that reading is stored and
// the operated-hours counter is left untouched. With neither, no write.
func (l *Ledger) Apply(ctx context.Context, vehicleID uuid.UUID, start, end *float64) error {
	if start == nil && end == nil {
		return nil
	}
	var operated *float64
	if start != nil && end != nil {
		hours := *end - *start
		operated = &hours
	}
	return l.vehicles.UpdateReadings(ctx, vehicleID, start, end, operated)
}
