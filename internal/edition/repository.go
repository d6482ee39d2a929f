package edition

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	Record(ctx context.Context, entry *HistoryEntry) error
	CurrentValues(ctx context.Context, caseID string) (map[string]string, error)
	History(ctx context.Context, caseID string) ([]HistoryEntry, error)
	RebuildEditions(ctx context.Context) (int, error)
}

type RepositoryImpl struct {
	db  *gorm.DB
	now func() time.Time
}

func NewRepository(db *gorm.DB) *RepositoryImpl {
	return &RepositoryImpl{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// Record appends the history entry and upserts the edition projection in
// one transaction. Concurrent records on the same field are not serialized:
// the last committed write wins in the projection, and both stay in the
// history.
func (r *RepositoryImpl) Record(ctx context.Context, entry *HistoryEntry) error {
	entry.ID = 0
	entry.CreatedAt = r.now()
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(entry).Error; err != nil {
			return fmt.Errorf("append history: %w", err)
		}
		if err := upsertEdition(tx, entry); err != nil {
			return fmt.Errorf("upsert edition: %w", err)
		}
		return nil
	})
}

func upsertEdition(tx *gorm.DB, entry *HistoryEntry) error {
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "case_id"}, {Name: "field"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_by", "updated_at"}),
	}).Create(&Edition{
		CaseID:    entry.CaseID,
		Field:     entry.Field,
		Value:     entry.Value,
		UpdatedBy: entry.Actor,
		UpdatedAt: entry.CreatedAt,
	}).Error
}

// CurrentValues reads the projection of the case. When the case has
// history but no projection rows, the history is folded instead.
func (r *RepositoryImpl) CurrentValues(ctx context.Context, caseID string) (map[string]string, error) {
	var editions []Edition
	if err := r.db.WithContext(ctx).Where("case_id = ?", caseID).Find(&editions).Error; err != nil {
		return nil, fmt.Errorf("read editions: %w", err)
	}
	if len(editions) > 0 {
		out := make(map[string]string, len(editions))
		for _, e := range editions {
			out[e.Field] = e.Value
		}
		return out, nil
	}

	var entries []HistoryEntry
	if err := r.db.WithContext(ctx).Where("case_id = ?", caseID).
		Order("created_at ASC, id ASC").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	out := make(map[string]string)
	for _, e := range fold(entries) {
		out[e.Field] = e.Value
	}
	return out, nil
}

// History returns every entry of the case, newest first. Entries sharing a
// timestamp keep insertion order reversed.
func (r *RepositoryImpl) History(ctx context.Context, caseID string) ([]HistoryEntry, error) {
	entries := []HistoryEntry{}
	if err := r.db.WithContext(ctx).Where("case_id = ?", caseID).
		Order("created_at DESC, id DESC").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	return entries, nil
}

// RebuildEditions replaces the whole projection with the one derived from
// the history and returns the number of projection rows written.
func (r *RepositoryImpl) RebuildEditions(ctx context.Context) (int, error) {
	var written int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var entries []HistoryEntry
		if err := tx.Order("created_at ASC, id ASC").Find(&entries).Error; err != nil {
			return fmt.Errorf("read history: %w", err)
		}
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&Edition{}).Error; err != nil {
			return fmt.Errorf("clear editions: %w", err)
		}
		latest := fold(entries)
		for i := range latest {
			if err := upsertEdition(tx, &latest[i]); err != nil {
				return fmt.Errorf("upsert edition: %w", err)
			}
		}
		written = len(latest)
		return nil
	})
	return written, err
}

// fold keeps the last entry per (case, field) of entries sorted oldest
// first, preserving first-seen order of the keys.
func fold(entries []HistoryEntry) []HistoryEntry {
	type key struct{ caseID, field string }
	index := make(map[key]int)
	var out []HistoryEntry
	for _, e := range entries {
		k := key{e.CaseID, e.Field}
		if i, ok := index[k]; ok {
			out[i] = e
			continue
		}
		index[k] = len(out)
		out = append(out, e)
	}
	return out
}
