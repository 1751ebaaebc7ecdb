package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nurpe/mineops-reports/internal/model"
)

func TestDiffReportFieldsEmptyPatch(t *testing.T) {
	current := model.Report{Zone: "north pit", Foreman: "R. Quispe"}
	assert.Empty(t, DiffReportFields(current, ReportPatch{}))
}

func TestDiffReportFieldsEqualValues(t *testing.T) {
	current := model.Report{Zone: "north pit", Shift: "day"}
	patch := ReportPatch{Zone: strPtr("north pit"), Shift: strPtr("day")}
	assert.Empty(t, DiffReportFields(current, patch))
}

func TestDiffReportFieldsOmittedNeverChanged(t *testing.T) {
	current := model.Report{Zone: "north pit", Foreman: "R. Quispe"}
	patch := ReportPatch{Foreman: strPtr("L. Mamani")}

	diffs := DiffReportFields(current, patch)
	require.Len(t, diffs, 1)
	assert.Equal(t, "foreman", diffs[0].Field)
	assert.Equal(t, "R. Quispe", diffs[0].Previous)
	assert.Equal(t, "L. Mamani", diffs[0].New)
}

func TestDiffReportFieldsOrder(t *testing.T) {
	projectID := uuid.New()
	newProject := uuid.New()
	date := day(2026, time.March, 12)
	newDate := day(2026, time.March, 13)
	current := model.Report{
		ProjectID:    projectID,
		ActivityDate: date,
		Shift:        "day",
		Supervisor:   "J. Flores",
	}
	patch := ReportPatch{
		Supervisor:   strPtr("M. Condori"),
		ProjectID:    &newProject,
		ActivityDate: &newDate,
		Shift:        strPtr("night"),
	}

	diffs := DiffReportFields(current, patch)
	require.Len(t, diffs, 4)
	fields := make([]string, 0, len(diffs))
	for _, d := range diffs {
		fields = append(fields, d.Field)
	}
	assert.Equal(t, []string{"project_id", "activity_date", "shift", "supervisor"}, fields)
}

func TestReportPatchFieldsCoversOnlySupplied(t *testing.T) {
	patch := ReportPatch{Zone: strPtr("ramp 2"), Observations: strPtr("")}
	fields := patch.Fields()
	assert.Len(t, fields, 2)
	assert.Equal(t, "ramp 2", fields["zone"])
	assert.Equal(t, "", fields["observations"])
}
