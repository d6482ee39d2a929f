package edition

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&Edition{}, &HistoryEntry{}))
	return db
}

// steppingClock returns a clock advancing one second per call.
func steppingClock() func() time.Time {
	t := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func newTestRepository(t *testing.T) (*RepositoryImpl, *gorm.DB) {
	db := newTestDB(t)
	repo := NewRepository(db)
	repo.now = steppingClock()
	return repo, db
}

func TestRecord_UpsertsProjectionAndKeepsHistory(t *testing.T) {
	ctx := context.Background()
	repo, db := newTestRepository(t)

	require.NoError(t, repo.Record(ctx, &HistoryEntry{CaseID: "42", Field: "observations", Value: "a", Actor: "user1"}))
	require.NoError(t, repo.Record(ctx, &HistoryEntry{CaseID: "42", Field: "observations", Value: "b", Actor: "user2"}))

	current, err := repo.CurrentValues(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, "b", current["observations"])

	var rows int64
	require.NoError(t, db.Model(&Edition{}).Count(&rows).Error)
	assert.Equal(t, int64(1), rows)

	history, err := repo.History(ctx, "42")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "b", history[0].Value)
	assert.Equal(t, "user2", history[0].Actor)
	assert.Equal(t, "a", history[1].Value)
}

func TestRecord_HistoryOnlyGrows(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepository(t)

	last := 0
	for i, v := range []string{"x", "y", "", "y", "z"} {
		require.NoError(t, repo.Record(ctx, &HistoryEntry{CaseID: "7", Field: "inspection_notes", Value: v, Actor: "fiscal"}))
		history, err := repo.History(ctx, "7")
		require.NoError(t, err)
		assert.Len(t, history, i+1)
		assert.GreaterOrEqual(t, len(history), last)
		last = len(history)
	}
}

func TestHistory_TiesKeepInsertionOrder(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepository(t)
	fixed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return fixed }

	require.NoError(t, repo.Record(ctx, &HistoryEntry{CaseID: "1", Field: "observations", Value: "first"}))
	require.NoError(t, repo.Record(ctx, &HistoryEntry{CaseID: "1", Field: "observations", Value: "second"}))

	history, err := repo.History(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "second", history[0].Value)

	current, err := repo.CurrentValues(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "second", current["observations"])
}

func TestCurrentValues_FoldsHistoryWithoutProjection(t *testing.T) {
	ctx := context.Background()
	repo, db := newTestRepository(t)

	require.NoError(t, repo.Record(ctx, &HistoryEntry{CaseID: "9", Field: "observations", Value: "old"}))
	require.NoError(t, repo.Record(ctx, &HistoryEntry{CaseID: "9", Field: "inspection_status", Value: "ok"}))
	require.NoError(t, repo.Record(ctx, &HistoryEntry{CaseID: "9", Field: "observations", Value: "new"}))

	fromProjection, err := repo.CurrentValues(ctx, "9")
	require.NoError(t, err)

	require.NoError(t, db.Where("case_id = ?", "9").Delete(&Edition{}).Error)
	fromHistory, err := repo.CurrentValues(ctx, "9")
	require.NoError(t, err)

	assert.Equal(t, fromProjection, fromHistory)
	assert.Equal(t, map[string]string{"observations": "new", "inspection_status": "ok"}, fromHistory)
}

func TestCurrentValues_UnknownCase(t *testing.T) {
	repo, _ := newTestRepository(t)
	current, err := repo.CurrentValues(context.Background(), "none")
	require.NoError(t, err)
	assert.Empty(t, current)

	history, err := repo.History(context.Background(), "none")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestRebuildEditions(t *testing.T) {
	ctx := context.Background()
	repo, db := newTestRepository(t)

	require.NoError(t, repo.Record(ctx, &HistoryEntry{CaseID: "1", Field: "observations", Value: "a"}))
	require.NoError(t, repo.Record(ctx, &HistoryEntry{CaseID: "1", Field: "observations", Value: "b"}))
	require.NoError(t, repo.Record(ctx, &HistoryEntry{CaseID: "2", Field: "observations", Value: "c"}))

	// simulate a projection that drifted from the history
	require.NoError(t, db.Model(&Edition{}).Where("case_id = ?", "1").Update("value", "stale").Error)
	require.NoError(t, db.Where("case_id = ?", "2").Delete(&Edition{}).Error)

	n, err := repo.RebuildEditions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	var editions []Edition
	require.NoError(t, db.Order("case_id").Find(&editions).Error)
	require.Len(t, editions, 2)
	assert.Equal(t, "b", editions[0].Value)
	assert.Equal(t, "c", editions[1].Value)

	var entries int64
	require.NoError(t, db.Model(&HistoryEntry{}).Count(&entries).Error)
	assert.Equal(t, int64(3), entries)
}
