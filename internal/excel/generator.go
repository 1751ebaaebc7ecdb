package excel

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/nurpe/mineops-reports/internal/model"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

type categorySheet struct {
	name       string
	totalLabel string
	stats      model.CategoryStats
	showTrips  bool
}

func (g *Generator) Generate(stats model.Stats, from, to *time.Time) ([]byte, error) {
	file := excelize.NewFile()

	summarySheet := "Summary"
	file.SetSheetName("Sheet1", summarySheet)
	if err := g.writeSummary(file, summarySheet, stats, from, to); err != nil {
		return nil, err
	}

	sheets := []categorySheet{
		{name: "Haul", totalLabel: "Volume, m3", stats: stats.Haul, showTrips: true},
		{name: "Materials", totalLabel: "Quantity", stats: stats.Materials},
		{name: "Water", totalLabel: "Volume, m3", stats: stats.Water, showTrips: true},
		{name: "Machinery", totalLabel: "Operated hours", stats: stats.Machinery},
		{name: "Personnel", totalLabel: "Hours worked", stats: stats.Personnel},
	}
	for _, sheet := range sheets {
		file.NewSheet(sheet.name)
		if err := g.writeCategory(file, sheet); err != nil {
			return nil, err
		}
	}

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *Generator) writeSummary(file *excelize.File, sheet string, stats model.Stats, from, to *time.Time) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	set("A1", "Period start")
	set("B1", formatDate(from))
	set("A2", "Period end")
	set("B2", formatDate(to))
	set("A3", "Reports")
	set("B3", stats.ReportCount)

	tableRow := 5
	set(fmt.Sprintf("A%d", tableRow), "Category")
	set(fmt.Sprintf("B%d", tableRow), "Total")
	set(fmt.Sprintf("C%d", tableRow), "Trips")
	set(fmt.Sprintf("D%d", tableRow), "Most used")

	rows := []struct {
		name  string
		stats model.CategoryStats
	}{
		{"Haul", stats.Haul},
		{"Materials", stats.Materials},
		{"Water", stats.Water},
		{"Machinery", stats.Machinery},
		{"Personnel", stats.Personnel},
	}
	for i, row := range rows {
		line := tableRow + 1 + i
		set(fmt.Sprintf("A%d", line), row.name)
		set(fmt.Sprintf("B%d", line), row.stats.Total)
		set(fmt.Sprintf("C%d", line), row.stats.Trips)
		set(fmt.Sprintf("D%d", line), row.stats.MostUsed)
	}

	_ = file.SetColWidth(sheet, "A", "A", 24)
	_ = file.SetColWidth(sheet, "B", "C", 14)
	_ = file.SetColWidth(sheet, "D", "D", 32)
	return nil
}

func (g *Generator) writeCategory(file *excelize.File, sheet categorySheet) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet.name, cell, value)
	}

	set("A1", "Total")
	set("B1", sheet.stats.Total)
	if sheet.showTrips {
		set("A2", "Trips")
		set("B2", sheet.stats.Trips)
	}
	set("A3", "Most used")
	set("B3", sheet.stats.MostUsed)

	tableRow := 5
	headers := []string{"Group", sheet.totalLabel, "Trips", "Share, %"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, tableRow)
		set(cell, header)
	}

	for i, group := range sheet.stats.Groups {
		row := tableRow + 1 + i
		set(fmt.Sprintf("A%d", row), group.Key)
		set(fmt.Sprintf("B%d", row), group.Total)
		set(fmt.Sprintf("C%d", row), group.Trips)
		set(fmt.Sprintf("D%d", row), group.Percentage)
	}

	_ = file.SetColWidth(sheet.name, "A", "A", 36)
	_ = file.SetColWidth(sheet.name, "B", "D", 14)
	return nil
}

func formatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}
