package assignment

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	Upsert(ctx context.Context, a *Assignment) error
	FindByCaseID(ctx context.Context, caseID string) (*Assignment, error)
	FindAll(ctx context.Context) ([]Assignment, error)
}

type RepositoryImpl struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &RepositoryImpl{db: db}
}

// Upsert replaces the assignment of the case. The write is synchronous;
// concurrent upserts on the same case resolve as last write wins.
func (r *RepositoryImpl) Upsert(ctx context.Context, a *Assignment) error {
	a.UpdatedAt = time.Now().UTC()
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "case_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"eng_resp", "tec_resp", "inspector_resp", "updated_by", "updated_at"}),
	}).Create(a).Error
	if err != nil {
		return fmt.Errorf("upsert assignment %s: %w", a.CaseID, err)
	}
	return nil
}

func (r *RepositoryImpl) FindByCaseID(ctx context.Context, caseID string) (*Assignment, error) {
	var a Assignment
	if err := r.db.WithContext(ctx).Where("case_id = ?", caseID).First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *RepositoryImpl) FindAll(ctx context.Context) ([]Assignment, error) {
	var all []Assignment
	if err := r.db.WithContext(ctx).Order("case_id").Find(&all).Error; err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	return all, nil
}
