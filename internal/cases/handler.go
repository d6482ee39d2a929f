package cases

import (
	"bytes"
	"convenios-dashboard/internal/convenio"
	"convenios-dashboard/internal/errors"
	"convenios-dashboard/internal/middleware"
	"convenios-dashboard/internal/utils"
	defError "errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service        Service
	uploadMaxBytes int64
}

func NewHandler(service Service, uploadMaxBytes int64) *Handler {
	return &Handler{service: service, uploadMaxBytes: uploadMaxBytes}
}

func actorFrom(c *gin.Context) Actor {
	id := middleware.IdentityFrom(c)
	return Actor{SessionID: id.SessionID, Name: id.Name, Role: id.Role}
}

// filterFrom reads the filter from the query string; mine=true restricts
// to cases the acting user is responsible for.
func filterFrom(c *gin.Context, actor Actor) convenio.Filter {
	f := convenio.ParseFilter(c.Request.URL.Query())
	if utils.QueryBool(c, "mine") {
		f.AssignedTo = actor.Name
	}
	return f
}

// Upload ingests the multipart "files" and replaces the session table.
func (h *Handler) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.uploadMaxBytes)
	form, err := c.MultipartForm()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if defError.As(err, &tooLarge) {
			c.Error(errors.RequestTooLarge(fmt.Sprintf("Upload exceeds %d MB", h.uploadMaxBytes>>20), err))
			return
		}
		c.Error(errors.BadRequest("Expected a multipart form with files", err))
		return
	}

	var uploads []convenio.Upload
	for _, fh := range form.File["files"] {
		f, err := fh.Open()
		if err != nil {
			c.Error(errors.BadRequest(fmt.Sprintf("Cannot open %s", fh.Filename), err))
			return
		}
		content, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			c.Error(errors.BadRequest(fmt.Sprintf("Cannot read %s", fh.Filename), err))
			return
		}
		uploads = append(uploads, convenio.Upload{Filename: fh.Filename, Content: content})
	}

	summary, err := h.service.Upload(c.Request.Context(), actorFrom(c), uploads)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, summary)
}

func (h *Handler) List(c *gin.Context) {
	actor := actorFrom(c)
	page, pageSize := utils.GetPaginationParams(c)
	result, err := h.service.List(c.Request.Context(), actor, filterFrom(c, actor), page, pageSize)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) Export(c *gin.Context) {
	actor := actorFrom(c)

	// buffered so a failure can still be reported as JSON
	var buf bytes.Buffer
	if err := h.service.Export(c.Request.Context(), actor, filterFrom(c, actor), &buf); err != nil {
		c.Error(err)
		return
	}
	filename := fmt.Sprintf("convenios_%s.csv", time.Now().Format("20060102_150405"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func (h *Handler) Options(c *gin.Context) {
	values, err := h.service.Options(c.Request.Context(), actorFrom(c), c.Param("column"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"column": c.Param("column"), "values": values})
}

func (h *Handler) Show(c *gin.Context) {
	detail, err := h.service.Detail(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *Handler) History(c *gin.Context) {
	entries, err := h.service.History(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": entries})
}

type EditRequest struct {
	Field string `json:"field" binding:"required,editable_field"`
	Value string `json:"value" binding:"max=4000"`
}

func (h *Handler) Edit(c *gin.Context) {
	var form EditRequest
	if err := c.ShouldBindJSON(&form); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	entry, err := h.service.Edit(c.Request.Context(), actorFrom(c), c.Param("id"), form.Field, form.Value)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

type AssignRequest struct {
	EngResp       string `json:"eng_resp" binding:"max=255"`
	TecResp       string `json:"tec_resp" binding:"max=255"`
	InspectorResp string `json:"inspector_resp" binding:"max=255"`
}

func (h *Handler) Assign(c *gin.Context) {
	var form AssignRequest
	if err := c.ShouldBindJSON(&form); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	stored, err := h.service.Assign(c.Request.Context(), actorFrom(c), c.Param("id"), convenio.Assignment{
		EngResp:       form.EngResp,
		TecResp:       form.TecResp,
		InspectorResp: form.InspectorResp,
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, stored)
}
