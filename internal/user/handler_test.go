package user

import (
	"bytes"
	"context"
	"convenios-dashboard/internal/convenio"
	"convenios-dashboard/internal/errors"
	"convenios-dashboard/internal/middleware"
	"convenios-dashboard/internal/validation"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockService is a mock implementation of the Service interface
type MockService struct {
	mock.Mock
}

func (m *MockService) Login(ctx context.Context, name string, role convenio.Role) (*Session, error) {
	args := m.Called(ctx, name, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Session), args.Error(1)
}

func (m *MockService) Logout(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

func (m *MockService) SearchUsers(ctx context.Context, query string) ([]User, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return []User{}, args.Error(1)
	}
	return args.Get(0).([]User), args.Error(1)
}

func setupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	if err := validation.Register(); err != nil {
		panic(err)
	}
	router := gin.New()
	router.Use(middleware.ErrorHandler(nil))
	return router
}

func withIdentity(c *gin.Context) {
	c.Set(middleware.KeySessionID, "sid-1")
	c.Set(middleware.KeyUserName, "Ana")
	c.Set(middleware.KeyUserRole, convenio.RoleEngineer)
}

func postLogin(router *gin.Engine, payload any) *httptest.ResponseRecorder {
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest("POST", "/login", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestLogin_Success(t *testing.T) {
	mockService := new(MockService)
	handler := NewHandler(mockService)
	router := setupRouter()
	router.POST("/login", handler.Login)

	expires := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	mockService.On("Login", mock.Anything, "Gestora", convenio.RoleManager).Return(&Session{
		Token:     "tok",
		SessionID: "sid",
		Name:      "Gestora",
		Role:      convenio.RoleManager,
		ExpiresAt: expires,
	}, nil)

	// the Portuguese label is accepted and mapped to the role
	w := postLogin(router, FormLogin{Name: "Gestora", Role: "Gestor"})

	assert.Equal(t, http.StatusOK, w.Code)
	var response Session
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "tok", response.Token)
	assert.Equal(t, convenio.RoleManager, response.Role)
	mockService.AssertExpectations(t)
}

func TestLogin_InvalidInput(t *testing.T) {
	mockService := new(MockService)
	handler := NewHandler(mockService)
	router := setupRouter()
	router.POST("/login", handler.Login)

	w := postLogin(router, struct{ Name string }{Name: "Ana"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = postLogin(router, FormLogin{Name: "Ana", Role: "admin"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "role")

	mockService.AssertNotCalled(t, "Login")
}

func TestLogin_ServiceError(t *testing.T) {
	mockService := new(MockService)
	handler := NewHandler(mockService)
	router := setupRouter()
	router.POST("/login", handler.Login)

	mockService.On("Login", mock.Anything, "Ana", convenio.RoleEngineer).
		Return(nil, errors.Internal(assert.AnError))

	w := postLogin(router, FormLogin{Name: "Ana", Role: "engineer"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	mockService.AssertExpectations(t)
}

func TestLogout_Success(t *testing.T) {
	mockService := new(MockService)
	handler := NewHandler(mockService)
	router := setupRouter()
	router.DELETE("/logout", withIdentity, handler.Logout)

	mockService.On("Logout", mock.Anything, "sid-1").Return(nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("DELETE", "/logout", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
	mockService.AssertExpectations(t)
}

func TestGetProfile_Success(t *testing.T) {
	handler := NewHandler(new(MockService))
	router := setupRouter()
	router.GET("/profile", withIdentity, handler.GetProfile)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/profile", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"session_id":"sid-1","name":"Ana","role":"engineer"}`, w.Body.String())
}

func TestGetProfile_NoSession(t *testing.T) {
	handler := NewHandler(new(MockService))
	router := setupRouter()
	router.GET("/profile", handler.GetProfile)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/profile", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSearchUsers(t *testing.T) {
	mockService := new(MockService)
	handler := NewHandler(mockService)
	router := setupRouter()
	router.GET("/users", handler.SearchUsers)

	mockService.On("SearchUsers", mock.Anything, "an").
		Return([]User{{Name: "Ana", Role: convenio.RoleEngineer}}, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/users?q=an", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	var response struct {
		Data []User `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "Ana", response.Data[0].Name)
	mockService.AssertExpectations(t)
}
