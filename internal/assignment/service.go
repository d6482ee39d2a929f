package assignment

import (
	"context"
	"convenios-dashboard/internal/convenio"
	"convenios-dashboard/internal/errors"
	defError "errors"
	"strings"

	"gorm.io/gorm"
)

type Service interface {
	Assign(ctx context.Context, caseID string, a convenio.Assignment, actor string) (*Assignment, error)
	Get(ctx context.Context, caseID string) (*Assignment, error)
	List(ctx context.Context) ([]Assignment, error)
	LoadAll(ctx context.Context) (map[string]convenio.Assignment, error)
}

type DefaultService struct {
	repository Repository
}

func NewService(repository Repository) *DefaultService {
	return &DefaultService{repository: repository}
}

func (s *DefaultService) Assign(ctx context.Context, caseID string, a convenio.Assignment, actor string) (*Assignment, error) {
	caseID = strings.TrimSpace(caseID)
	if caseID == "" {
		return nil, errors.BadRequest("Case id cannot be empty", nil)
	}
	row := &Assignment{
		CaseID:        caseID,
		EngResp:       strings.TrimSpace(a.EngResp),
		TecResp:       strings.TrimSpace(a.TecResp),
		InspectorResp: strings.TrimSpace(a.InspectorResp),
		UpdatedBy:     actor,
	}
	if err := s.repository.Upsert(ctx, row); err != nil {
		return nil, errors.Internal(err)
	}
	return row, nil
}

func (s *DefaultService) Get(ctx context.Context, caseID string) (*Assignment, error) {
	a, err := s.repository.FindByCaseID(ctx, caseID)
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("Assignment not found", err)
		}
		return nil, err
	}
	return a, nil
}

func (s *DefaultService) List(ctx context.Context) ([]Assignment, error) {
	return s.repository.FindAll(ctx)
}

// LoadAll returns every assignment keyed by case id, for the ingestion
// left-join.
func (s *DefaultService) LoadAll(ctx context.Context) (map[string]convenio.Assignment, error) {
	all, err := s.repository.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]convenio.Assignment, len(all))
	for _, a := range all {
		out[a.CaseID] = convenio.Assignment{
			EngResp:       a.EngResp,
			TecResp:       a.TecResp,
			InspectorResp: a.InspectorResp,
		}
	}
	return out, nil
}
