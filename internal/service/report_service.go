package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/nurpe/mineops-reports/internal/config"
	"github.com/nurpe/mineops-reports/internal/model"
	"github.com/nurpe/mineops-reports/internal/repository"
)

type PDFGenerator interface {
	Generate(report *model.Report, personNames, roleNames map[uuid.UUID]string) ([]byte, error)
}

type ExportResult struct {
	FileName string
	Content  []byte
}

// ReportService orchestrates the report aggregate: the root row, its six
// child collections, the usage ledger side effect and the modification
// history. Child-collection writes are independent failure domains; a
// failed create or update may leave the aggregate partially applied, and
// callers recover by retrying through the client key (create) or by
// re-issuing the full update, whose replace semantics are self-healing.
type ReportService struct {
	reports *repository.ReportRepository
	ledger  *Ledger
	history *Recorder
	pdf     PDFGenerator
	cfg     *config.Config
}

func NewReportService(
	reports *repository.ReportRepository,
	ledger *Ledger,
	history *Recorder,
	pdf PDFGenerator,
	cfg *config.Config,
) *ReportService {
	return &ReportService{
		reports: reports,
		ledger:  ledger,
		history: history,
		pdf:     pdf,
		cfg:     cfg,
	}
}

// ChildCollections names the collections an operation touches. A nil entry
// means "leave unchanged"; a pointer to an empty slice clears the
// collection. Supplied collections are always full replacements.
type ChildCollections struct {
	Haul      *[]model.HaulEntry
	Materials *[]model.MaterialEntry
	Water     *[]model.WaterEntry
	Machinery *[]model.MachineryEntry
	MapPins   *[]model.MapPin
	Personnel *[]model.PersonnelAssignment
}

type CreateReportInput struct {
	ProjectID    uuid.UUID
	AuthorID     uuid.UUID
	ActivityDate time.Time
	Shift        string
	Zone         string
	Location     string
	StartTime    string
	EndTime      string
	Foreman      string
	Supervisor   string
	Observations string
	ClientKey    *string
	Haul         []model.HaulEntry
	Materials    []model.MaterialEntry
	Water        []model.WaterEntry
	Machinery    []model.MachineryEntry
	MapPins      []model.MapPin
	Personnel    []model.PersonnelAssignment
}

type UpdateReportInput struct {
	Patch    ReportPatch
	Children ChildCollections
	Actor    model.Principal
	Note     string
}

// Create inserts the root and all supplied child rows. When a client key is
// given, the pre-check lookup makes retries cheap, but the unique index is
// the source of truth: a duplicated-key failure on insert means a concurrent
// retry won the race, and the existing report is returned instead.
func (s *ReportService) Create(ctx context.Context, input CreateReportInput) (*model.Report, error) {
	if input.ProjectID == uuid.Nil {
		return nil, fmt.Errorf("%w: project_id is required", ErrInvalidInput)
	}
	if input.ActivityDate.IsZero() {
		return nil, fmt.Errorf("%w: activity_date is required", ErrInvalidInput)
	}

	clientKey := normalizeClientKey(input.ClientKey)
	if clientKey != nil {
		existing, err := s.reports.GetByClientKey(ctx, *clientKey)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		if existing != nil {
			return existing, nil
		}
	}

	report := &model.Report{
		ID:           uuid.New(),
		ProjectID:    input.ProjectID,
		AuthorID:     input.AuthorID,
		ActivityDate: dateOnly(input.ActivityDate),
		Shift:        input.Shift,
		Zone:         input.Zone,
		Location:     input.Location,
		StartTime:    input.StartTime,
		EndTime:      input.EndTime,
		Foreman:      input.Foreman,
		Supervisor:   input.Supervisor,
		Observations: input.Observations,
		ClientKey:    clientKey,
		CreatedAt:    time.Now().UTC(),
	}
	report, recovered, err := s.insertOrRecover(ctx, report)
	if err != nil {
		return nil, err
	}
	if recovered {
		return report, nil
	}

	children := ChildCollections{}
	if len(input.Haul) > 0 {
		children.Haul = &input.Haul
	}
	if len(input.Materials) > 0 {
		children.Materials = &input.Materials
	}
	if len(input.Water) > 0 {
		children.Water = &input.Water
	}
	if len(input.Machinery) > 0 {
		children.Machinery = &input.Machinery
	}
	if len(input.MapPins) > 0 {
		children.MapPins = &input.MapPins
	}
	if len(input.Personnel) > 0 {
		children.Personnel = &input.Personnel
	}
	if err := s.replaceChildren(ctx, report.ID, children); err != nil {
		return nil, err
	}

	if err := s.applyMachineryUsage(ctx, input.Machinery); err != nil {
		return nil, err
	}
	return report, nil
}

// insertOrRecover inserts the root row. A duplicated-key failure means a
// concurrent retry carrying the same client key won the race between the
// pre-check and the insert; the winner's row is returned with recovered set,
// and the caller must not write children on the loser's behalf.
func (s *ReportService) insertOrRecover(ctx context.Context, report *model.Report) (*model.Report, bool, error) {
	if err := s.reports.Create(ctx, report); err != nil {
		if report.ClientKey != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
			existing, readErr := s.reports.GetByClientKey(ctx, *report.ClientKey)
			if readErr != nil {
				return nil, false, readErr
			}
			return existing, true, nil
		}
		return nil, false, err
	}
	return report, false, nil
}

// Get assembles the composite view: root, the six child collections and the
// modification history. Read-only.
func (s *ReportService) Get(ctx context.Context, id uuid.UUID) (*model.Report, error) {
	report, err := s.reports.GetComposite(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return report, nil
}

// List returns bare roots ordered by activity date descending. A missing
// limit falls back to the configured page size.
func (s *ReportService) List(ctx context.Context, filter repository.ListFilter) ([]model.Report, error) {
	if filter.Limit <= 0 {
		filter.Limit = s.cfg.Reports.DefaultPageSize
	}
	if filter.Limit > s.cfg.Reports.MaxPageSize {
		filter.Limit = s.cfg.Reports.MaxPageSize
	}
	return s.reports.List(ctx, filter)
}

// Update applies a partial root update and full replacements of the named
// child collections, then records the scalar diff when anything changed or
// a note was supplied. The snapshot for the diff is read before any write.
func (s *ReportService) Update(ctx context.Context, id uuid.UUID, input UpdateReportInput) (*model.Report, error) {
	current, err := s.reports.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	// The root stores calendar dates; a timestamp in the patch would write a
	// time-of-day component and surface as a spurious diff on the next update.
	if input.Patch.ActivityDate != nil {
		normalized := dateOnly(*input.Patch.ActivityDate)
		input.Patch.ActivityDate = &normalized
	}

	diffs := DiffReportFields(*current, input.Patch)

	if fields := input.Patch.Fields(); len(fields) > 0 {
		if err := s.reports.UpdateFields(ctx, id, fields); err != nil {
			return nil, err
		}
	}

	if err := s.replaceChildren(ctx, id, input.Children); err != nil {
		return nil, err
	}

	if input.Children.Machinery != nil {
		if err := s.applyMachineryUsage(ctx, *input.Children.Machinery); err != nil {
			return nil, err
		}
	}

	note := strings.TrimSpace(input.Note)
	if len(diffs) > 0 || note != "" {
		if err := s.history.Record(ctx, id, input.Actor, diffs, note); err != nil {
			return nil, err
		}
	}

	return s.reports.GetByID(ctx, id)
}

// Delete removes the root; children and history cascade at the store.
// Idempotent.
func (s *ReportService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.reports.Delete(ctx, id)
}

// ExportPDF renders the composite report as a printable document. Personnel
// rows reference catalog people and roles by id; the document needs their
// labels, so they are resolved here and handed to the generator.
func (s *ReportService) ExportPDF(ctx context.Context, id uuid.UUID) (*ExportResult, error) {
	report, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	personIDs := make([]uuid.UUID, 0, len(report.Personnel))
	roleIDs := make([]uuid.UUID, 0, len(report.Personnel))
	for _, row := range report.Personnel {
		personIDs = append(personIDs, row.PersonID)
		roleIDs = append(roleIDs, row.RoleID)
	}
	personNames, err := s.reports.PersonNames(ctx, personIDs)
	if err != nil {
		return nil, err
	}
	roleNames, err := s.reports.RoleNames(ctx, roleIDs)
	if err != nil {
		return nil, err
	}

	content, err := s.pdf.Generate(report, personNames, roleNames)
	if err != nil {
		return nil, err
	}
	fileName := fmt.Sprintf("report-%s-%s.pdf", report.ActivityDate.Format("20060102"), report.ID.String())
	return &ExportResult{FileName: fileName, Content: content}, nil
}

// replaceChildren fans out one replace per supplied collection. The writes
// run concurrently and do not cancel each other; the first failure is
// surfaced after all have finished.
func (s *ReportService) replaceChildren(ctx context.Context, reportID uuid.UUID, children ChildCollections) error {
	var g errgroup.Group
	if children.Haul != nil {
		rows := *children.Haul
		g.Go(func() error { return s.reports.ReplaceHaul(ctx, reportID, rows) })
	}
	if children.Materials != nil {
		rows := *children.Materials
		g.Go(func() error { return s.reports.ReplaceMaterials(ctx, reportID, rows) })
	}
	if children.Water != nil {
		rows := *children.Water
		g.Go(func() error { return s.reports.ReplaceWater(ctx, reportID, rows) })
	}
	if children.Machinery != nil {
		rows := *children.Machinery
		deriveOperatedHours(rows)
		g.Go(func() error { return s.reports.ReplaceMachinery(ctx, reportID, rows) })
	}
	if children.MapPins != nil {
		rows := *children.MapPins
		g.Go(func() error { return s.reports.ReplaceMapPins(ctx, reportID, rows) })
	}
	if children.Personnel != nil {
		rows := *children.Personnel
		g.Go(func() error { return s.reports.ReplacePersonnel(ctx, reportID, rows) })
	}
	return g.Wait()
}

func deriveOperatedHours(rows []model.MachineryEntry) {
	for i := range rows {
		if rows[i].HourmeterStart != nil && rows[i].HourmeterEnd != nil {
			rows[i].OperatedHours = *rows[i].HourmeterEnd - *rows[i].HourmeterStart
		}
	}
}

func (s *ReportService) applyMachineryUsage(ctx context.Context, rows []model.MachineryEntry) error {
	for _, row := range rows {
		if row.VehicleID == nil {
			continue
		}
		if err := s.ledger.Apply(ctx, *row.VehicleID, row.HourmeterStart, row.HourmeterEnd); err != nil {
			return err
		}
	}
	return nil
}

func normalizeClientKey(key *string) *string {
	if key == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*key)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func dateOnly(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
