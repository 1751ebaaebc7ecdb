package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/nurpe/mineops-reports/internal/model"
	"github.com/nurpe/mineops-reports/internal/repository"
)

// ReportPatch carries the root scalar fields an update may touch. A nil
// field is omitted from both the write and the diff, so an untouched field
// can never show up as changed.
type ReportPatch struct {
	ProjectID    *uuid.UUID
	ActivityDate *time.Time
	Shift        *string
	Zone         *string
	Location     *string
	StartTime    *string
	EndTime      *string
	Foreman      *string
	Supervisor   *string
	Observations *string
}

// Fields returns the column map for the root update, covering only the
// fields that were actually supplied.
func (p ReportPatch) Fields() map[string]interface{} {
	fields := map[string]interface{}{}
	if p.ProjectID != nil {
		fields["project_id"] = *p.ProjectID
	}
	if p.ActivityDate != nil {
		fields["activity_date"] = *p.ActivityDate
	}
	if p.Shift != nil {
		fields["shift"] = *p.Shift
	}
	if p.Zone != nil {
		fields["zone"] = *p.Zone
	}
	if p.Location != nil {
		fields["location"] = *p.Location
	}
	if p.StartTime != nil {
		fields["start_time"] = *p.StartTime
	}
	if p.EndTime != nil {
		fields["end_time"] = *p.EndTime
	}
	if p.Foreman != nil {
		fields["foreman"] = *p.Foreman
	}
	if p.Supervisor != nil {
		fields["supervisor"] = *p.Supervisor
	}
	if p.Observations != nil {
		fields["observations"] = *p.Observations
	}
	return fields
}

// DiffReportFields compares the supplied patch fields against the current
// snapshot and emits one FieldDiff per changed field, in declaration order.
// Pure function; the caller passes the snapshot it read before writing.
func DiffReportFields(current model.Report, patch ReportPatch) []model.FieldDiff {
	var diffs []model.FieldDiff

	if patch.ProjectID != nil && *patch.ProjectID != current.ProjectID {
		diffs = append(diffs, model.FieldDiff{Field: "project_id", Previous: current.ProjectID, New: *patch.ProjectID})
	}
	if patch.ActivityDate != nil && !patch.ActivityDate.Equal(current.ActivityDate) {
		diffs = append(diffs, model.FieldDiff{Field: "activity_date", Previous: current.ActivityDate, New: *patch.ActivityDate})
	}
	diffs = appendStringDiff(diffs, "shift", current.Shift, patch.Shift)
	diffs = appendStringDiff(diffs, "zone", current.Zone, patch.Zone)
	diffs = appendStringDiff(diffs, "location", current.Location, patch.Location)
	diffs = appendStringDiff(diffs, "start_time", current.StartTime, patch.StartTime)
	diffs = appendStringDiff(diffs, "end_time", current.EndTime, patch.EndTime)
	diffs = appendStringDiff(diffs, "foreman", current.Foreman, patch.Foreman)
	diffs = appendStringDiff(diffs, "supervisor", current.Supervisor, patch.Supervisor)
	diffs = appendStringDiff(diffs, "observations", current.Observations, patch.Observations)

	return diffs
}

func appendStringDiff(diffs []model.FieldDiff, field, current string, proposed *string) []model.FieldDiff {
	if proposed == nil || *proposed == current {
		return diffs
	}
	return append(diffs, model.FieldDiff{Field: field, Previous: current, New: *proposed})
}

// Recorder persists modification entries. It writes unconditionally; the
// caller gates on "at least one diff or a note".
type Recorder struct {
	history *repository.HistoryRepository
}

func NewRecorder(history *repository.HistoryRepository) *Recorder {
	return &Recorder{history: history}
}

func (r *Recorder) Record(ctx context.Context, reportID uuid.UUID, actor model.Principal, diffs []model.FieldDiff, note string) error {
	entry := &model.ModificationEntry{
		ReportID:  reportID,
		ActorID:   actor.UserID,
		ActorName: actor.FullName,
		Note:      note,
		CreatedAt: time.Now().UTC(),
	}
	for _, diff := range diffs {
		previous, err := json.Marshal(diff.Previous)
		if err != nil {
			return err
		}
		next, err := json.Marshal(diff.New)
		if err != nil {
			return err
		}
		entry.Changes = append(entry.Changes, model.FieldChange{
			Field:         diff.Field,
			PreviousValue: previous,
			NewValue:      next,
		})
	}
	return r.history.Append(ctx, entry)
}
