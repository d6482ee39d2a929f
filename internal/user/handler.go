package user

import (
	"convenios-dashboard/internal/convenio"
	"convenios-dashboard/internal/errors"
	"convenios-dashboard/internal/middleware"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Handler handles HTTP requests for users
type Handler struct {
	service Service
}

// NewHandler creates a new user handler
func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// FormLogin represents login form data
type FormLogin struct {
	Name string `json:"name" binding:"required,max=255"`
	Role string `json:"role" binding:"required,role"`
}

// Login handles user login
func (h *Handler) Login(c *gin.Context) {
	var form FormLogin
	if err := c.ShouldBindJSON(&form); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}
	role, _ := convenio.ParseRole(form.Role)

	sess, err := h.service.Login(c.Request.Context(), form.Name, role)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

// Logout handles user logout
func (h *Handler) Logout(c *gin.Context) {
	if err := h.service.Logout(c.Request.Context(), middleware.IdentityFrom(c).SessionID); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetProfile returns the identity carried by the token
func (h *Handler) GetProfile(c *gin.Context) {
	id := middleware.IdentityFrom(c)
	if id.SessionID == "" {
		c.Error(errors.Unauthorized("Session not found", nil))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"session_id": id.SessionID,
		"name":       id.Name,
		"role":       id.Role,
	})
}

func (h *Handler) SearchUsers(c *gin.Context) {
	users, err := h.service.SearchUsers(c.Request.Context(), c.Query("q"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": users})
}
