package assignment

import (
	"context"
	"convenios-dashboard/internal/convenio"
	"convenios-dashboard/internal/errors"
	"convenios-dashboard/internal/middleware"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockService is a mock implementation of the Service interface
type MockService struct {
	mock.Mock
}

func (m *MockService) Assign(ctx context.Context, caseID string, a convenio.Assignment, actor string) (*Assignment, error) {
	args := m.Called(ctx, caseID, a, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Assignment), args.Error(1)
}

func (m *MockService) Get(ctx context.Context, caseID string) (*Assignment, error) {
	args := m.Called(ctx, caseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Assignment), args.Error(1)
}

func (m *MockService) List(ctx context.Context) ([]Assignment, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Assignment), args.Error(1)
}

func (m *MockService) LoadAll(ctx context.Context) (map[string]convenio.Assignment, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]convenio.Assignment), args.Error(1)
}

func setupRouter(handler *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.ErrorHandler(nil))
	router.GET("/assignments", handler.List)
	router.GET("/assignments/:id", handler.Show)
	return router
}

func TestList_Success(t *testing.T) {
	mockService := new(MockService)
	router := setupRouter(NewHandler(mockService))
	mockService.On("List", mock.Anything).Return([]Assignment{{CaseID: "1", EngResp: "Ana"}}, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/assignments", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	var response struct {
		Data []Assignment `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "Ana", response.Data[0].EngResp)
	mockService.AssertExpectations(t)
}

func TestShow_NotFound(t *testing.T) {
	mockService := new(MockService)
	router := setupRouter(NewHandler(mockService))
	mockService.On("Get", mock.Anything, "9").Return(nil, errors.NotFound("Assignment not found", nil))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/assignments/9", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	mockService.AssertExpectations(t)
}
