package middleware

import (
	"convenios-dashboard/internal/auth"
	"convenios-dashboard/internal/convenio"
	apiError "convenios-dashboard/internal/errors"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter(signer *auth.Signer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(ErrorHandler(nil))
	m := &Auth{Signer: signer}
	router.GET("/me", m.AuthMiddleWare(), func(c *gin.Context) {
		id := IdentityFrom(c)
		c.JSON(http.StatusOK, gin.H{"sid": id.SessionID, "name": id.Name, "role": id.Role})
	})
	router.GET("/admin", m.AuthMiddleWare(), RequireRole(convenio.RoleManager), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return router
}

func TestAuthMiddleware_AcceptsBearer(t *testing.T) {
	signer := auth.NewSigner("secret", time.Hour)
	router := setupRouter(signer)
	token, err := signer.Generate("sid-9", "Ana", convenio.RoleEngineer)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "sid-9", body["sid"])
	assert.Equal(t, "Ana", body["name"])
	assert.Equal(t, "engineer", body["role"])
}

func TestAuthMiddleware_AcceptsQueryToken(t *testing.T) {
	signer := auth.NewSigner("secret", time.Hour)
	router := setupRouter(signer)
	token, _ := signer.Generate("sid", "Ana", convenio.RoleEngineer)

	req := httptest.NewRequest("GET", "/me?token="+token, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthMiddleware_Missing(t *testing.T) {
	router := setupRouter(auth.NewSigner("secret", time.Hour))

	req := httptest.NewRequest("GET", "/me", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Authorization is not found!")
}

func TestAuthMiddleware_Invalid(t *testing.T) {
	router := setupRouter(auth.NewSigner("secret", time.Hour))

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireRole(t *testing.T) {
	signer := auth.NewSigner("secret", time.Hour)
	router := setupRouter(signer)

	for role, want := range map[convenio.Role]int{
		convenio.RoleManager:    http.StatusNoContent,
		convenio.RoleTechnician: http.StatusForbidden,
	} {
		token, _ := signer.Generate("sid", "Ana", role)
		req := httptest.NewRequest("GET", "/admin", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, want, w.Code, string(role))
	}
}

func TestErrorHandler_WrapsRawErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(ErrorHandler(nil))
	router.GET("/raw", func(c *gin.Context) { c.Error(errors.New("boom")) })
	router.GET("/api", func(c *gin.Context) { c.Error(apiError.NotFound("Case not found", nil)) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/raw", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "boom")

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Case not found"}`, w.Body.String())
}
