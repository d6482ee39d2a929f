package edition

import (
	"context"
	"convenios-dashboard/internal/convenio"
	"convenios-dashboard/internal/errors"
	"strconv"
	"strings"
	"time"
)

type Service interface {
	Record(ctx context.Context, caseID, field, value, actor string) (*HistoryEntry, error)
	CurrentValues(ctx context.Context, caseID string) (map[string]string, error)
	History(ctx context.Context, caseID string) ([]HistoryEntry, error)
	RebuildEditions(ctx context.Context) (int, error)
}

type DefaultService struct {
	repository Repository
}

func NewService(repository Repository) *DefaultService {
	return &DefaultService{repository: repository}
}

// Record validates and stores one edit. A storage failure is returned as
// an internal error; the edit must not be reported as saved.
func (s *DefaultService) Record(ctx context.Context, caseID, field, value, actor string) (*HistoryEntry, error) {
	caseID = strings.TrimSpace(caseID)
	if caseID == "" {
		return nil, errors.BadRequest("Case id cannot be empty", nil)
	}
	if !convenio.IsEditableField(field) {
		return nil, errors.UnprocessableEntity("Field is not editable", nil)
	}
	normalized, err := normalizeValue(field, value)
	if err != nil {
		return nil, err
	}

	entry := &HistoryEntry{CaseID: caseID, Field: field, Value: normalized, Actor: actor}
	if err := s.repository.Record(ctx, entry); err != nil {
		return nil, errors.Internal(err)
	}
	return entry, nil
}

func (s *DefaultService) CurrentValues(ctx context.Context, caseID string) (map[string]string, error) {
	values, err := s.repository.CurrentValues(ctx, strings.TrimSpace(caseID))
	if err != nil {
		return nil, errors.Internal(err)
	}
	return values, nil
}

func (s *DefaultService) History(ctx context.Context, caseID string) ([]HistoryEntry, error) {
	entries, err := s.repository.History(ctx, strings.TrimSpace(caseID))
	if err != nil {
		return nil, errors.Internal(err)
	}
	return entries, nil
}

func (s *DefaultService) RebuildEditions(ctx context.Context) (int, error) {
	return s.repository.RebuildEditions(ctx)
}

var dateLayouts = []string{"2006-01-02", "02/01/2006"}

// normalizeValue trims the value and checks field-specific formats. An
// empty value clears the field.
func normalizeValue(field, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", nil
	}
	switch field {
	case convenio.EditManualGlobalValue:
		n, ok := convenio.ParseNumber(value)
		if !ok || n < 0 {
			return "", errors.UnprocessableEntity("Manual global value must be a non-negative number", nil)
		}
		return strconv.FormatFloat(n, 'f', 2, 64), nil
	case convenio.EditInspectionDate:
		for _, layout := range dateLayouts {
			if d, err := time.Parse(layout, value); err == nil {
				return d.Format("2006-01-02"), nil
			}
		}
		return "", errors.UnprocessableEntity("Inspection date must be YYYY-MM-DD or DD/MM/YYYY", nil)
	}
	return value, nil
}
