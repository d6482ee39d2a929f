package convenio

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Assignment is the responsible personnel attached to a case.
type Assignment struct {
	EngResp       string
	TecResp       string
	InspectorResp string
}

// AssignmentSource supplies the current assignments keyed by case id.
type AssignmentSource interface {
	LoadAll(ctx context.Context) (map[string]Assignment, error)
}

// Result is the outcome of one ingestion.
type Result struct {
	Table *Table
	// MissingFields lists required fields no uploaded file provided. It is
	// informational; ingestion still succeeds.
	MissingFields []string
	// UnknownHeaders lists headers left unrenamed.
	UnknownHeaders []string
	// DroppedRows counts rows without instrument or proposal number.
	DroppedRows int
}

// Ingester builds the consolidated table from uploaded spreadsheets.
type Ingester struct {
	assignments AssignmentSource
	logger      *zap.Logger
	concurrency int
}

// NewIngester creates an Ingester. assignments may be nil.
func NewIngester(assignments AssignmentSource, logger *zap.Logger, concurrency int) *Ingester {
	if logger == nil {
		logger = zap.NewNop()
	}
	if concurrency < 1 {
		concurrency = 1
	}
	return &Ingester{assignments: assignments, logger: logger, concurrency: concurrency}
}

// Ingest parses every upload and consolidates them into one table. The batch
// is all-or-nothing: the first unreadable file aborts the whole call and no
// table is returned.
func (in *Ingester) Ingest(ctx context.Context, uploads []Upload) (*Result, error) {
	if len(uploads) == 0 {
		return nil, ErrNoFiles
	}

	frames := make([]*frame, len(uploads))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(in.concurrency)
	for i, u := range uploads {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			s, err := readSheet(u)
			if err != nil {
				return err
			}
			frames[i] = buildFrame(s)
			in.logger.Info("sheet parsed",
				zap.String("file", u.Filename),
				zap.Int("rows", len(frames[i].records)),
				zap.Int("dropped", frames[i].dropped))
			if len(frames[i].unknown) > 0 {
				in.logger.Debug("unknown headers", zap.String("file", u.Filename), zap.Strings("headers", frames[i].unknown))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	acc := frames[0]
	for i, next := range frames[1:] {
		var key string
		acc, key = mergeFrames(acc, next)
		if key == mergeConcat {
			key = "concat"
		}
		in.logger.Info("sheet merged", zap.String("file", uploads[i+1].Filename), zap.String("key", key))
	}

	missing := MissingRequired(acc.columns)
	columns := acc.columns
	for _, f := range Fields {
		if !acc.hasColumn(f.Name) {
			columns = append(columns, f.Name)
		}
	}

	records := acc.records
	if in.assignments != nil {
		assigned, err := in.assignments.LoadAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("load assignments: %w", err)
		}
		applyAssignments(records, assigned)
	}
	for i := range records {
		records[i].Flags = ComputeFlags(&records[i])
	}
	columns = append(columns, FlagColumns...)

	return &Result{
		Table:          &Table{Columns: columns, Records: records},
		MissingFields:  missing,
		UnknownHeaders: acc.unknown,
		DroppedRows:    acc.dropped,
	}, nil
}

// applyAssignments left-joins the assignments by case id. A stored
// assignment always replaces the spreadsheet's responsible fields, and an
// empty stored name clears them.
func applyAssignments(records []Record, assigned map[string]Assignment) {
	for i := range records {
		a, ok := assigned[records[i].ID()]
		if !ok {
			continue
		}
		records[i].EngResp = optional(a.EngResp)
		records[i].TecResp = optional(a.TecResp)
		records[i].InspectorResp = optional(a.InspectorResp)
	}
}

// WithAssignments returns a copy of t with the assignments applied. The
// source table is left untouched.
func (t *Table) WithAssignments(assigned map[string]Assignment) *Table {
	records := make([]Record, len(t.Records))
	copy(records, t.Records)
	applyAssignments(records, assigned)
	return &Table{Columns: t.Columns, Records: records}
}

func optional(s string) *string {
	if v, ok := cleanText(s); ok {
		return &v
	}
	return nil
}
