package assignment

import (
	"context"
	"convenios-dashboard/internal/convenio"
	"testing"

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
	sqlDB.SetMaxOpenConns(1) // each :memory: connection is its own database
	require.NoError(t, db.AutoMigrate(&Assignment{}))
	return db
}

func TestRepository_UpsertReplaces(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(newTestDB(t))

	require.NoError(t, repo.Upsert(ctx, &Assignment{CaseID: "909561", EngResp: "Ana", TecResp: "Bia", UpdatedBy: "gestor"}))
	require.NoError(t, repo.Upsert(ctx, &Assignment{CaseID: "909561", EngResp: "Caio", TecResp: "", UpdatedBy: "gestor2"}))

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Caio", all[0].EngResp)
	assert.Equal(t, "", all[0].TecResp)
	assert.Equal(t, "gestor2", all[0].UpdatedBy)
	assert.False(t, all[0].UpdatedAt.IsZero())
}

func TestRepository_FindByCaseID(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(newTestDB(t))
	require.NoError(t, repo.Upsert(ctx, &Assignment{CaseID: "1", EngResp: "Ana"}))

	a, err := repo.FindByCaseID(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "Ana", a.EngResp)

	_, err = repo.FindByCaseID(ctx, "2")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestService_LoadAll(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewRepository(newTestDB(t)))

	_, err := svc.Assign(ctx, " 1 ", convenio.Assignment{EngResp: " Ana ", InspectorResp: "Iris"}, "gestor")
	require.NoError(t, err)
	_, err = svc.Assign(ctx, "2", convenio.Assignment{TecResp: "Bia"}, "gestor")
	require.NoError(t, err)

	got, err := svc.LoadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]convenio.Assignment{
		"1": {EngResp: "Ana", InspectorResp: "Iris"},
		"2": {TecResp: "Bia"},
	}, got)
}

func TestService_AssignRejectsEmptyCase(t *testing.T) {
	svc := NewService(NewRepository(newTestDB(t)))
	_, err := svc.Assign(context.Background(), "  ", convenio.Assignment{}, "gestor")
	assert.Error(t, err)
}

func TestService_GetNotFound(t *testing.T) {
	svc := NewService(NewRepository(newTestDB(t)))
	_, err := svc.Get(context.Background(), "nope")
	assert.ErrorContains(t, err, "Assignment not found")
}
