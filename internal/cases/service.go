// Package cases serves the dashboard over the session's consolidated
// table: listing, detail, export and the edit and assignment actions. Every
// role goes through the same code; only the capability differs.
package cases

import (
	"context"
	"convenios-dashboard/internal/assignment"
	"convenios-dashboard/internal/convenio"
	"convenios-dashboard/internal/edition"
	"convenios-dashboard/internal/errors"
	"convenios-dashboard/internal/session"
	defError "errors"
	"fmt"
	"io"

	"go.uber.org/zap"
)

// Actor is the user behind a request.
type Actor struct {
	SessionID string
	Name      string
	Role      convenio.Role
}

type Service interface {
	Upload(ctx context.Context, actor Actor, uploads []convenio.Upload) (*UploadSummary, error)
	List(ctx context.Context, actor Actor, f convenio.Filter, page, pageSize int) (*PaginatedCases, error)
	Export(ctx context.Context, actor Actor, f convenio.Filter, w io.Writer) error
	Options(ctx context.Context, actor Actor, column string) ([]string, error)
	Detail(ctx context.Context, actor Actor, caseID string) (*CaseDetail, error)
	History(ctx context.Context, actor Actor, caseID string) ([]edition.HistoryEntry, error)
	Edit(ctx context.Context, actor Actor, caseID, field, value string) (*edition.HistoryEntry, error)
	Assign(ctx context.Context, actor Actor, caseID string, a convenio.Assignment) (*assignment.Assignment, error)
}

type DefaultService struct {
	ingester    *convenio.Ingester
	tables      session.Store
	editions    edition.Service
	assignments assignment.Service
	logger      *zap.Logger
}

func NewService(
	ingester *convenio.Ingester,
	tables session.Store,
	editions edition.Service,
	assignments assignment.Service,
	logger *zap.Logger,
) *DefaultService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DefaultService{
		ingester:    ingester,
		tables:      tables,
		editions:    editions,
		assignments: assignments,
		logger:      logger,
	}
}

type UploadSummary struct {
	Records        int      `json:"records"`
	Columns        []string `json:"columns"`
	MissingFields  []string `json:"missing_fields"`
	UnknownHeaders []string `json:"unknown_headers"`
	DroppedRows    int      `json:"dropped_rows"`
}

// Upload ingests the files and replaces the session table. On any error the
// previous table stays in place.
func (s *DefaultService) Upload(ctx context.Context, actor Actor, uploads []convenio.Upload) (*UploadSummary, error) {
	res, err := s.ingester.Ingest(ctx, uploads)
	if err != nil {
		var uploadErr *convenio.UploadError
		switch {
		case defError.Is(err, convenio.ErrNoFiles):
			return nil, errors.BadRequest("No files uploaded", err)
		case defError.As(err, &uploadErr):
			return nil, errors.UnprocessableEntity(fmt.Sprintf("Could not read %s as a table", uploadErr.Filename), err)
		}
		return nil, errors.Internal(err)
	}
	if err := s.tables.Save(ctx, actor.SessionID, res.Table); err != nil {
		return nil, errors.Internal(err)
	}

	s.logger.Info("table loaded",
		zap.String("session", actor.SessionID),
		zap.String("user", actor.Name),
		zap.Int("files", len(uploads)),
		zap.Int("records", res.Table.Len()),
		zap.Strings("missing_fields", res.MissingFields))

	unknown := res.UnknownHeaders
	if unknown == nil {
		unknown = []string{}
	}
	return &UploadSummary{
		Records:        res.Table.Len(),
		Columns:        res.Table.Columns,
		MissingFields:  res.MissingFields,
		UnknownHeaders: unknown,
		DroppedRows:    res.DroppedRows,
	}, nil
}

func (s *DefaultService) table(ctx context.Context, actor Actor) (*convenio.Table, error) {
	t, err := s.tables.Load(ctx, actor.SessionID)
	if err != nil {
		if defError.Is(err, session.ErrNoTable) {
			return nil, errors.NotFound("No spreadsheet loaded, upload files first", err)
		}
		return nil, errors.Internal(err)
	}
	return t, nil
}

func (s *DefaultService) record(ctx context.Context, actor Actor, caseID string) (*convenio.Table, *convenio.Record, error) {
	t, err := s.table(ctx, actor)
	if err != nil {
		return nil, nil, err
	}
	r, ok := t.Find(caseID)
	if !ok {
		return nil, nil, errors.NotFound("Case not found", nil)
	}
	return t, r, nil
}

type CasesMeta struct {
	Total       int `json:"total"`
	CurrentPage int `json:"current_page"`
	PerPage     int `json:"per_page"`
	TotalPage   int `json:"total_page"`
}

type PaginatedCases struct {
	Columns []string          `json:"columns"`
	Data    []convenio.Record `json:"data"`
	Meta    CasesMeta         `json:"meta"`
}

func (s *DefaultService) List(ctx context.Context, actor Actor, f convenio.Filter, page, pageSize int) (*PaginatedCases, error) {
	t, err := s.table(ctx, actor)
	if err != nil {
		return nil, err
	}
	filtered := f.Apply(t)
	total := filtered.Len()
	return &PaginatedCases{
		Columns: filtered.Columns,
		Data:    filtered.Page(page, pageSize),
		Meta: CasesMeta{
			Total:       total,
			CurrentPage: page,
			PerPage:     pageSize,
			TotalPage:   (total + pageSize - 1) / pageSize,
		},
	}, nil
}

// Export writes the whole filtered table as CSV.
func (s *DefaultService) Export(ctx context.Context, actor Actor, f convenio.Filter, w io.Writer) error {
	t, err := s.table(ctx, actor)
	if err != nil {
		return err
	}
	return f.Apply(t).WriteCSV(w)
}

func (s *DefaultService) Options(ctx context.Context, actor Actor, column string) ([]string, error) {
	t, err := s.table(ctx, actor)
	if err != nil {
		return nil, err
	}
	return t.Distinct(column), nil
}

type CaseDetail struct {
	Record     convenio.Record          `json:"record"`
	Capability convenio.Capability      `json:"capability"`
	Editions   map[string]string        `json:"editions"`
	Panel      convenio.PanelComparison `json:"panel_comparison"`
}

// Detail renders one case with the acting user's capability and the
// current edited values overlaid for display.
func (s *DefaultService) Detail(ctx context.Context, actor Actor, caseID string) (*CaseDetail, error) {
	_, r, err := s.record(ctx, actor, caseID)
	if err != nil {
		return nil, err
	}
	values, err := s.editions.CurrentValues(ctx, r.ID())
	if err != nil {
		return nil, err
	}
	return &CaseDetail{
		Record:     *r,
		Capability: convenio.CapabilityFor(r, actor.Name, actor.Role),
		Editions:   values,
		Panel:      convenio.ComparePanel(r, values[convenio.EditManualGlobalValue]),
	}, nil
}

func (s *DefaultService) History(ctx context.Context, actor Actor, caseID string) ([]edition.HistoryEntry, error) {
	_, r, err := s.record(ctx, actor, caseID)
	if err != nil {
		return nil, err
	}
	return s.editions.History(ctx, r.ID())
}

// Edit records one field edit after checking the actor may edit it.
func (s *DefaultService) Edit(ctx context.Context, actor Actor, caseID, field, value string) (*edition.HistoryEntry, error) {
	if !convenio.IsEditableField(field) {
		return nil, errors.UnprocessableEntity("Field is not editable", nil)
	}
	_, r, err := s.record(ctx, actor, caseID)
	if err != nil {
		return nil, err
	}
	if !convenio.CapabilityFor(r, actor.Name, actor.Role).CanEdit(field) {
		return nil, errors.Forbidden("You cannot edit this field on this case", nil)
	}
	entry, err := s.editions.Record(ctx, r.ID(), field, value, actor.Name)
	if err != nil {
		return nil, err
	}
	s.logger.Info("case edited",
		zap.String("case", r.ID()),
		zap.String("field", field),
		zap.String("user", actor.Name))
	return entry, nil
}

// Assign stores the assignment and replaces the session table with one that
// reflects it.
func (s *DefaultService) Assign(ctx context.Context, actor Actor, caseID string, a convenio.Assignment) (*assignment.Assignment, error) {
	if actor.Role != convenio.RoleManager {
		return nil, errors.Forbidden("Only managers can assign cases", nil)
	}
	t, r, err := s.record(ctx, actor, caseID)
	if err != nil {
		return nil, err
	}
	stored, err := s.assignments.Assign(ctx, r.ID(), a, actor.Name)
	if err != nil {
		return nil, err
	}
	applied := convenio.Assignment{EngResp: stored.EngResp, TecResp: stored.TecResp, InspectorResp: stored.InspectorResp}
	if err := s.tables.Save(ctx, actor.SessionID, t.WithAssignments(map[string]convenio.Assignment{stored.CaseID: applied})); err != nil {
		return nil, errors.Internal(err)
	}
	s.logger.Info("case assigned", zap.String("case", stored.CaseID), zap.String("user", actor.Name))
	return stored, nil
}
