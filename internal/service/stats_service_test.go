package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nurpe/mineops-reports/internal/model"
)

func TestComputeZeroResultShape(t *testing.T) {
	env := setupEnv(t)

	from := day(2030, time.January, 1)
	to := day(2030, time.January, 31)
	stats, err := env.stats.Compute(context.Background(), StatsFilter{DateFrom: &from, DateTo: &to})
	require.NoError(t, err)
	require.NotNil(t, stats)

	assert.Zero(t, stats.ReportCount)
	for _, category := range []model.CategoryStats{
		stats.Haul, stats.Materials, stats.Water, stats.Machinery, stats.Personnel,
	} {
		assert.Zero(t, category.Total)
		assert.Zero(t, category.Trips)
		assert.Equal(t, model.MostUsedNone, category.MostUsed)
		assert.NotNil(t, category.Groups)
		assert.Empty(t, category.Groups)
	}
}

func TestComputeGroupedTotals(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	actor := testActor()
	projectID := uuid.New()

	vehicle := model.Vehicle{ID: uuid.New(), Tag: "EXC-07"}
	require.NoError(t, env.db.Create(&vehicle).Error)
	person := model.Person{ID: uuid.New(), FullName: "A. Huanca"}
	require.NoError(t, env.db.Create(&person).Error)
	role := model.Role{ID: uuid.New(), Name: "Operator"}
	require.NoError(t, env.db.Create(&role).Error)

	input := baseCreateInput(actor)
	input.ProjectID = projectID
	input.Haul = []model.HaulEntry{
		{Material: "ore", TripNumber: 3, LooseVolumeM3: 30},
		{Material: "waste", TripNumber: 1, LooseVolumeM3: 10},
	}
	input.Water = []model.WaterEntry{
		{VehicleTag: "WT-01", TripNumber: 2, VolumeM3: 40, Origin: "well A"},
		{VehicleTag: "WT-01", TripNumber: 1, VolumeM3: 20, Origin: "well B"},
	}
	input.Machinery = []model.MachineryEntry{{
		EquipmentType:  "excavator",
		VehicleID:      &vehicle.ID,
		HourmeterStart: floatPtr(100),
		HourmeterEnd:   floatPtr(106),
	}}
	input.Personnel = []model.PersonnelAssignment{{
		PersonID:    person.ID,
		RoleID:      role.ID,
		HoursWorked: 9.5,
	}}
	_, err := env.reports.Create(ctx, input)
	require.NoError(t, err)

	second := baseCreateInput(actor)
	second.ProjectID = projectID
	second.ActivityDate = day(2026, time.March, 13)
	second.Haul = []model.HaulEntry{{Material: "ore", TripNumber: 2, LooseVolumeM3: 20}}
	_, err = env.reports.Create(ctx, second)
	require.NoError(t, err)

	stats, err := env.stats.Compute(ctx, StatsFilter{ProjectIDs: []uuid.UUID{projectID}})
	require.NoError(t, err)

	assert.Equal(t, int64(2), stats.ReportCount)

	require.Len(t, stats.Haul.Groups, 2)
	assert.Equal(t, "ore", stats.Haul.MostUsed)
	assert.InDelta(t, 60, stats.Haul.Total, 1e-9)
	assert.Equal(t, int64(6), stats.Haul.Trips)
	assert.InDelta(t, 83.33, stats.Haul.Groups[0].Percentage, 1e-9)
	assert.InDelta(t, 16.67, stats.Haul.Groups[1].Percentage, 1e-9)

	require.Len(t, stats.Water.Groups, 2)
	assert.Equal(t, "well A", stats.Water.MostUsed)
	assert.Equal(t, int64(3), stats.Water.Trips)

	// Machinery buckets by catalog tag when the entry references a vehicle.
	require.Len(t, stats.Machinery.Groups, 1)
	assert.Equal(t, "EXC-07", stats.Machinery.Groups[0].Key)
	assert.InDelta(t, 6, stats.Machinery.Total, 1e-9)

	require.Len(t, stats.Personnel.Groups, 1)
	assert.Equal(t, "A. Huanca", stats.Personnel.Groups[0].Key)
	assert.InDelta(t, 9.5, stats.Personnel.Total, 1e-9)

	assert.Equal(t, model.MostUsedNone, stats.Materials.MostUsed)
}

func TestComputePercentagesSumToHundred(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	actor := testActor()
	projectID := uuid.New()

	input := baseCreateInput(actor)
	input.ProjectID = projectID
	input.Materials = []model.MaterialEntry{
		{Material: "diesel", Quantity: 33.33, Unit: "l"},
		{Material: "anfo", Quantity: 33.33, Unit: "kg"},
		{Material: "lime", Quantity: 33.34, Unit: "kg"},
	}
	_, err := env.reports.Create(ctx, input)
	require.NoError(t, err)

	stats, err := env.stats.Compute(ctx, StatsFilter{ProjectIDs: []uuid.UUID{projectID}})
	require.NoError(t, err)

	var sum float64
	for _, group := range stats.Materials.Groups {
		sum += group.Percentage
	}
	assert.InDelta(t, 100, sum, 0.05)
}

func TestBuildCategoryTieBreakFirstEncountered(t *testing.T) {
	category := buildCategory([]measure{
		{key: "bench 1", value: 5, trips: 1},
		{key: "bench 2", value: 5, trips: 1},
	})
	assert.Equal(t, "bench 1", category.MostUsed)
	assert.Equal(t, int64(2), category.Trips)
	require.Len(t, category.Groups, 2)
	assert.InDelta(t, 50, category.Groups[0].Percentage, 1e-9)
}

func TestBuildCategoryRoundsAtEmission(t *testing.T) {
	category := buildCategory([]measure{
		{key: "a", value: 0.004},
		{key: "a", value: 0.004},
	})
	// Accumulated first, rounded once: 0.008 rounds to 0.01, not 0 + 0.
	require.Len(t, category.Groups, 1)
	assert.InDelta(t, 0.01, category.Groups[0].Total, 1e-9)
}

func TestBuildCategoryZeroTotalPercentage(t *testing.T) {
	category := buildCategory([]measure{{key: "idle", value: 0}})
	require.Len(t, category.Groups, 1)
	assert.Zero(t, category.Groups[0].Percentage)
	assert.Equal(t, "idle", category.MostUsed)
}
