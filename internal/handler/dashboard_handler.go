package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/tuition-web/internal/dto"
	"github.com/noah-isme/tuition-web/internal/models"
	"github.com/noah-isme/tuition-web/internal/service"
	appErrors "github.com/noah-isme/tuition-web/pkg/errors"
	"github.com/noah-isme/tuition-web/pkg/response"
)

type exportService interface {
	Export(tuitions []models.Tuition, format string) (*service.ExportResult, error)
}

// DashboardHandler exposes the student's tuition dashboard as a JSON API.
type DashboardHandler struct {
	registry      controllerRegistry
	exports       exportService
	exportEnabled bool
}

// NewDashboardHandler constructs the handler. GET /export answers 404 unless exportEnabled.
func NewDashboardHandler(registry controllerRegistry, exports exportService, exportEnabled bool) *DashboardHandler {
	return &DashboardHandler{registry: registry, exports: exports, exportEnabled: exportEnabled && exports != nil}
}

// Load godoc
// @Summary Reload the student's tuitions from the backend
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard/load [post]
func (h *DashboardHandler) Load(c *gin.Context) {
	ctrl, principal, mounted, err := mountController(c, h.registry)
	if err != nil {
		response.Error(c, err)
		return
	}
	// A failed load empties the list and queues a toast; the view still renders.
	if !mounted {
		_ = ctrl.Load(c.Request.Context(), principal.Email)
	}
	response.OK(c, ctrl.View())
}

// List godoc
// @Summary Filter the tuition list
// @Tags Dashboard
// @Produce json
// @Param search query string false "Case-insensitive match on subject, class or location"
// @Param status query string false "all, pending, approved, rejected or completed"
// @Success 200 {object} response.Envelope
// @Router /dashboard/tuitions [get]
func (h *DashboardHandler) List(c *gin.Context) {
	ctrl, _, err := sessionController(c, h.registry)
	if err != nil {
		response.Error(c, err)
		return
	}
	applyQueryFilter(c, ctrl)
	response.OK(c, ctrl.View())
}

// Stats godoc
// @Summary Tuition counts by status
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard/stats [get]
func (h *DashboardHandler) Stats(c *gin.Context) {
	ctrl, _, err := sessionController(c, h.registry)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, ctrl.Stats())
}

// RequestEdit godoc
// @Summary Open the edit form for a tuition
// @Tags Dashboard
// @Produce json
// @Param id path string true "Tuition ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /dashboard/tuitions/{id}/edit [post]
func (h *DashboardHandler) RequestEdit(c *gin.Context) {
	ctrl, _, err := sessionController(c, h.registry)
	if err != nil {
		response.Error(c, err)
		return
	}
	form, err := ctrl.RequestEdit(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, form)
}

// SubmitEdit godoc
// @Summary Submit the open edit form
// @Tags Dashboard
// @Accept json
// @Produce json
// @Param payload body dto.TuitionForm true "Form values"
// @Success 200 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /dashboard/edit [put]
func (h *DashboardHandler) SubmitEdit(c *gin.Context) {
	ctrl, _, err := sessionController(c, h.registry)
	if err != nil {
		response.Error(c, err)
		return
	}
	var form dto.TuitionForm
	if err := c.ShouldBindJSON(&form); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrBadRequest.Code, appErrors.ErrBadRequest.Status, "invalid form payload"))
		return
	}
	if err := ctrl.SubmitEdit(c.Request.Context(), form); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, ctrl.View())
}

// CloseEdit godoc
// @Summary Dismiss the edit form
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard/edit [delete]
func (h *DashboardHandler) CloseEdit(c *gin.Context) {
	ctrl, _, err := sessionController(c, h.registry)
	if err != nil {
		response.Error(c, err)
		return
	}
	ctrl.CloseEdit()
	response.OK(c, ctrl.View())
}

// RequestDelete godoc
// @Summary Ask for confirmation before deleting a tuition
// @Tags Dashboard
// @Produce json
// @Param id path string true "Tuition ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /dashboard/tuitions/{id}/delete [post]
func (h *DashboardHandler) RequestDelete(c *gin.Context) {
	ctrl, _, err := sessionController(c, h.registry)
	if err != nil {
		response.Error(c, err)
		return
	}
	target, err := ctrl.RequestDelete(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, target)
}

// ConfirmDelete godoc
// @Summary Delete the tuition awaiting confirmation
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /dashboard/delete/confirm [post]
func (h *DashboardHandler) ConfirmDelete(c *gin.Context) {
	ctrl, _, err := sessionController(c, h.registry)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := ctrl.OnDeleteConfirmed(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, ctrl.View())
}

// CloseDelete godoc
// @Summary Dismiss the delete confirmation
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard/delete [delete]
func (h *DashboardHandler) CloseDelete(c *gin.Context) {
	ctrl, _, err := sessionController(c, h.registry)
	if err != nil {
		response.Error(c, err)
		return
	}
	ctrl.CloseDelete()
	response.OK(c, ctrl.View())
}

// Export godoc
// @Summary Download the filtered tuition list
// @Tags Dashboard
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv (default) or pdf"
// @Success 200 {file} file
// @Router /dashboard/export [get]
func (h *DashboardHandler) Export(c *gin.Context) {
	if !h.exportEnabled {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "export is disabled"))
		return
	}
	ctrl, _, err := sessionController(c, h.registry)
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.exports.Export(ctrl.Filtered(), c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, result.ContentType, result.Data)
}
