package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/nurpe/mineops-reports/internal/model"
	"github.com/nurpe/mineops-reports/internal/repository"
)

type ExcelGenerator interface {
	Generate(stats model.Stats, from, to *time.Time) ([]byte, error)
}

type StatsFilter struct {
	ProjectIDs []uuid.UUID
	DateFrom   *time.Time
	DateTo     *time.Time
}

// StatsService is the read-only fan-in over many reports' child rows. It
// never fails on an empty match set: the zero-valued shape is a valid
// result, so list screens need no special case.
type StatsService struct {
	stats *repository.StatsRepository
	excel ExcelGenerator
}

func NewStatsService(stats *repository.StatsRepository, excel ExcelGenerator) *StatsService {
	return &StatsService{stats: stats, excel: excel}
}

func (s *StatsService) Compute(ctx context.Context, filter StatsFilter) (*model.Stats, error) {
	ids, err := s.stats.ReportIDs(ctx, filter.ProjectIDs, filter.DateFrom, filter.DateTo)
	if err != nil {
		return nil, err
	}

	result := &model.Stats{
		ReportCount: int64(len(ids)),
		Haul:        emptyCategory(),
		Materials:   emptyCategory(),
		Water:       emptyCategory(),
		Machinery:   emptyCategory(),
		Personnel:   emptyCategory(),
	}
	if len(ids) == 0 {
		return result, nil
	}

	var (
		haul      []model.HaulEntry
		materials []model.MaterialEntry
		water     []model.WaterEntry
		machinery []repository.MachineryUsageRow
		personnel []repository.PersonnelUsageRow
	)
	var g errgroup.Group
	g.Go(func() error {
		var err error
		haul, err = s.stats.HaulRows(ctx, ids)
		return err
	})
	g.Go(func() error {
		var err error
		materials, err = s.stats.MaterialRows(ctx, ids)
		return err
	})
	g.Go(func() error {
		var err error
		water, err = s.stats.WaterRows(ctx, ids)
		return err
	})
	g.Go(func() error {
		var err error
		machinery, err = s.stats.MachineryRows(ctx, ids)
		return err
	})
	g.Go(func() error {
		var err error
		personnel, err = s.stats.PersonnelRows(ctx, ids)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	haulRows := make([]measure, 0, len(haul))
	for _, row := range haul {
		haulRows = append(haulRows, measure{key: row.Material, value: row.LooseVolumeM3, trips: int64(row.TripNumber)})
	}
	materialRows := make([]measure, 0, len(materials))
	for _, row := range materials {
		materialRows = append(materialRows, measure{key: row.Material, value: row.Quantity})
	}
	waterRows := make([]measure, 0, len(water))
	for _, row := range water {
		waterRows = append(waterRows, measure{key: row.Origin, value: row.VolumeM3, trips: int64(row.TripNumber)})
	}
	machineryRows := make([]measure, 0, len(machinery))
	for _, row := range machinery {
		key := row.EquipmentType
		if row.VehicleTag != nil && *row.VehicleTag != "" {
			key = *row.VehicleTag
		}
		machineryRows = append(machineryRows, measure{key: key, value: row.OperatedHours})
	}
	personnelRows := make([]measure, 0, len(personnel))
	for _, row := range personnel {
		key := row.PersonName
		if key == "" {
			key = row.PersonID.String()
		}
		personnelRows = append(personnelRows, measure{key: key, value: row.HoursWorked})
	}

	result.Haul = buildCategory(haulRows)
	result.Materials = buildCategory(materialRows)
	result.Water = buildCategory(waterRows)
	result.Machinery = buildCategory(machineryRows)
	result.Personnel = buildCategory(personnelRows)
	return result, nil
}

// ExportExcel renders the computed statistics as a workbook.
func (s *StatsService) ExportExcel(ctx context.Context, filter StatsFilter) (*ExportResult, error) {
	stats, err := s.Compute(ctx, filter)
	if err != nil {
		return nil, err
	}
	content, err := s.excel.Generate(*stats, filter.DateFrom, filter.DateTo)
	if err != nil {
		return nil, err
	}
	return &ExportResult{
		FileName: buildStatsFileName(filter.DateFrom, filter.DateTo),
		Content:  content,
	}, nil
}

type measure struct {
	key   string
	value float64
	trips int64
}

// buildCategory accumulates at full precision in first-encounter order and
// rounds only when the groups are emitted. The top group is the strict
// maximum, so ties keep the earlier bucket.
func buildCategory(rows []measure) model.CategoryStats {
	category := emptyCategory()
	if len(rows) == 0 {
		return category
	}

	index := map[string]int{}
	type bucket struct {
		key   string
		total float64
		trips int64
	}
	var buckets []bucket
	var categoryTotal float64
	var categoryTrips int64
	for _, row := range rows {
		pos, ok := index[row.key]
		if !ok {
			buckets = append(buckets, bucket{key: row.key})
			pos = len(buckets) - 1
			index[row.key] = pos
		}
		buckets[pos].total += row.value
		buckets[pos].trips += row.trips
		categoryTotal += row.value
		categoryTrips += row.trips
	}

	top := 0
	for i, b := range buckets {
		if b.total > buckets[top].total {
			top = i
		}
	}

	groups := make([]model.StatsGroup, 0, len(buckets))
	for _, b := range buckets {
		percentage := 0.0
		if categoryTotal != 0 {
			percentage = b.total / categoryTotal * 100
		}
		groups = append(groups, model.StatsGroup{
			Key:        b.key,
			Total:      round2(b.total),
			Trips:      b.trips,
			Percentage: round2(percentage),
		})
	}

	category.Groups = groups
	category.Total = round2(categoryTotal)
	category.Trips = categoryTrips
	category.MostUsed = buckets[top].key
	return category
}

func emptyCategory() model.CategoryStats {
	return model.CategoryStats{
		Groups:   []model.StatsGroup{},
		MostUsed: model.MostUsedNone,
	}
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}

func buildStatsFileName(from, to *time.Time) string {
	format := func(t *time.Time) string {
		if t == nil {
			return "all"
		}
		return t.Format("20060102")
	}
	return fmt.Sprintf("stats-%s-%s.xlsx", format(from), format(to))
}
