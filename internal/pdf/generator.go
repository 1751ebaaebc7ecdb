package pdf

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jung-kurt/gofpdf"

	"github.com/nurpe/mineops-reports/internal/model"
)

type Generator struct {
	fontName string
}

func NewGenerator() *Generator {
	return &Generator{fontName: "Helvetica"}
}

func (g *Generator) Generate(report *model.Report, personNames, roleNames map[uuid.UUID]string) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pdf.SetFont(g.fontName, "B", 14)
	pdf.CellFormat(0, 10, "Daily Activity Report", "", 1, "C", false, 0, "")

	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("Date: %s    Shift: %s", report.ActivityDate.Format("2006-01-02"), safeValue(report.Shift)), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	g.headerBlock(pdf, report)

	if len(report.Haul) > 0 {
		g.sectionTitle(pdf, "Haul Control")
		widths := []float64{45, 18, 25, 25, 34, 33}
		g.tableRow(pdf, []string{"Material", "Trips", "Volume, m3", "Capacity", "Origin", "Destination"}, widths, true)
		for _, row := range report.Haul {
			g.tableRow(pdf, []string{
				row.Material,
				fmt.Sprintf("%d", row.TripNumber),
				fmt.Sprintf("%.2f", row.LooseVolumeM3),
				row.Capacity,
				row.Origin,
				row.Destination,
			}, widths, false)
		}
		pdf.Ln(3)
	}

	if len(report.Materials) > 0 {
		g.sectionTitle(pdf, "Material Control")
		widths := []float64{90, 45, 45}
		g.tableRow(pdf, []string{"Material", "Quantity", "Unit"}, widths, true)
		for _, row := range report.Materials {
			g.tableRow(pdf, []string{row.Material, fmt.Sprintf("%.2f", row.Quantity), row.Unit}, widths, false)
		}
		pdf.Ln(3)
	}

	if len(report.Water) > 0 {
		g.sectionTitle(pdf, "Water Control")
		widths := []float64{35, 18, 27, 50, 50}
		g.tableRow(pdf, []string{"Vehicle", "Trips", "Volume, m3", "Origin", "Destination"}, widths, true)
		for _, row := range report.Water {
			g.tableRow(pdf, []string{
				row.VehicleTag,
				fmt.Sprintf("%d", row.TripNumber),
				fmt.Sprintf("%.2f", row.VolumeM3),
				row.Origin,
				row.Destination,
			}, widths, false)
		}
		pdf.Ln(3)
	}

	if len(report.Machinery) > 0 {
		g.sectionTitle(pdf, "Machinery Control")
		widths := []float64{50, 30, 30, 30, 40}
		g.tableRow(pdf, []string{"Equipment", "HM start", "HM end", "Hours", "Operator"}, widths, true)
		for _, row := range report.Machinery {
			g.tableRow(pdf, []string{
				row.EquipmentType,
				formatReading(row.HourmeterStart),
				formatReading(row.HourmeterEnd),
				fmt.Sprintf("%.2f", row.OperatedHours),
				row.Operator,
			}, widths, false)
		}
		pdf.Ln(3)
	}

	if len(report.Personnel) > 0 {
		g.sectionTitle(pdf, "Personnel")
		widths := []float64{55, 40, 20, 65}
		g.tableRow(pdf, []string{"Person", "Role", "Hours", "Activity"}, widths, true)
		for _, row := range report.Personnel {
			person := personNames[row.PersonID]
			if person == "" {
				person = row.PersonID.String()
			}
			g.tableRow(pdf, []string{
				person,
				safeValue(roleNames[row.RoleID]),
				fmt.Sprintf("%.2f", row.HoursWorked),
				row.Activity,
			}, widths, false)
		}
		pdf.Ln(3)
	}

	if strings.TrimSpace(report.Observations) != "" {
		g.sectionTitle(pdf, "Observations")
		pdf.SetFont(g.fontName, "", 10)
		pdf.MultiCell(0, 5, report.Observations, "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *Generator) headerBlock(pdf *gofpdf.Fpdf, report *model.Report) {
	pdf.SetFont(g.fontName, "", 10)
	lines := []string{
		fmt.Sprintf("Zone: %s", safeValue(report.Zone)),
		fmt.Sprintf("Location: %s", safeValue(report.Location)),
		fmt.Sprintf("Working hours: %s - %s", safeValue(report.StartTime), safeValue(report.EndTime)),
		fmt.Sprintf("Foreman: %s", safeValue(report.Foreman)),
		fmt.Sprintf("Supervisor: %s", safeValue(report.Supervisor)),
	}
	for _, line := range lines {
		pdf.MultiCell(0, 5, line, "", "L", false)
	}
	pdf.Ln(2)
}

func (g *Generator) sectionTitle(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, title, "", 1, "L", false, 0, "")
}

func (g *Generator) tableRow(pdf *gofpdf.Fpdf, cols []string, widths []float64, header bool) {
	style := ""
	if header {
		style = "B"
	}
	pdf.SetFont(g.fontName, style, 9)
	for i, col := range cols {
		align := "L"
		if i > 0 {
			align = "R"
		}
		pdf.CellFormat(widths[i], 7, col, "1", 0, align, false, 0, "")
	}
	pdf.Ln(-1)
}

func formatReading(value *float64) string {
	if value == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *value)
}

func safeValue(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}
