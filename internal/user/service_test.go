package user

import (
	"context"
	"convenios-dashboard/internal/auth"
	"convenios-dashboard/internal/convenio"
	apiError "convenios-dashboard/internal/errors"
	"convenios-dashboard/internal/session"
	"net/http"
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
	require.NoError(t, db.AutoMigrate(&User{}))
	return db
}

func TestRepository_TouchAndSearch(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Touch(ctx, &User{Name: "Ana", Role: convenio.RoleEngineer, LastLoginAt: time.Now()}))
	require.NoError(t, repo.Touch(ctx, &User{Name: "Bia", Role: convenio.RoleTechnician, LastLoginAt: time.Now()}))
	require.NoError(t, repo.Touch(ctx, &User{Name: "Ana", Role: convenio.RoleManager, LastLoginAt: time.Now()}))

	all, err := repo.Search(ctx, "", 10)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Ana", all[0].Name)
	assert.Equal(t, convenio.RoleManager, all[0].Role)

	found, err := repo.Search(ctx, "BI", 10)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Bia", found[0].Name)
}

func TestService_LoginIssuesVerifiableToken(t *testing.T) {
	signer := auth.NewSigner("secret", time.Hour)
	s := NewService(NewRepository(newTestDB(t)), signer, session.NewMemoryStore(time.Hour))

	sess, err := s.Login(context.Background(), "  Ana ", convenio.RoleEngineer)
	require.NoError(t, err)
	assert.Equal(t, "Ana", sess.Name)
	assert.NotEmpty(t, sess.SessionID)

	claims, err := signer.Verify(sess.Token)
	require.NoError(t, err)
	assert.Equal(t, sess.SessionID, claims.SessionID)
	assert.Equal(t, "Ana", claims.Name)
	assert.Equal(t, convenio.RoleEngineer, claims.Role)

	other, err := s.Login(context.Background(), "Ana", convenio.RoleEngineer)
	require.NoError(t, err)
	assert.NotEqual(t, sess.SessionID, other.SessionID)

	users, err := s.SearchUsers(context.Background(), "ana")
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestService_LoginRejectsBlankName(t *testing.T) {
	s := NewService(NewRepository(newTestDB(t)), auth.NewSigner("secret", time.Hour), session.NewMemoryStore(time.Hour))

	_, err := s.Login(context.Background(), "   ", convenio.RoleManager)
	var apiErr *apiError.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
}

func TestService_LogoutDropsTable(t *testing.T) {
	tables := session.NewMemoryStore(time.Hour)
	s := NewService(NewRepository(newTestDB(t)), auth.NewSigner("secret", time.Hour), tables)
	ctx := context.Background()

	require.NoError(t, tables.Save(ctx, "sid", &convenio.Table{}))
	require.NoError(t, s.Logout(ctx, "sid"))

	_, err := tables.Load(ctx, "sid")
	assert.ErrorIs(t, err, session.ErrNoTable)
}
