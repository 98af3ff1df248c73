package handler

import (
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/tuition-web/internal/dto"
	"github.com/noah-isme/tuition-web/internal/middleware"
	"github.com/noah-isme/tuition-web/internal/models"
	"github.com/noah-isme/tuition-web/internal/service"
	"github.com/noah-isme/tuition-web/pkg/response"
)

type statusOption struct {
	Value string
	Label string
}

var statusOptions = []statusOption{
	{Value: models.StatusFilterAll, Label: "All"},
	{Value: string(models.TuitionStatusPending), Label: service.StatusLabel(models.TuitionStatusPending)},
	{Value: string(models.TuitionStatusApproved), Label: service.StatusLabel(models.TuitionStatusApproved)},
	{Value: string(models.TuitionStatusRejected), Label: service.StatusLabel(models.TuitionStatusRejected)},
	{Value: string(models.TuitionStatusCompleted), Label: service.StatusLabel(models.TuitionStatusCompleted)},
}

type pageData struct {
	Title         string
	Notifications []models.Notification
	Subjects      []string
	View          dto.DashboardView
	StatusOptions []statusOption
	ExportEnabled bool
}

// TemplateFuncs are the helpers available to page templates.
func TemplateFuncs() template.FuncMap {
	return template.FuncMap{
		"statusLabel": service.StatusLabel,
	}
}

// PageHandler renders the server-side HTML pages.
type PageHandler struct {
	registry      controllerRegistry
	exportEnabled bool
}

// NewPageHandler constructs the handler.
func NewPageHandler(registry controllerRegistry, exportEnabled bool) *PageHandler {
	return &PageHandler{registry: registry, exportEnabled: exportEnabled}
}

// About renders the marketing page.
func (h *PageHandler) About(c *gin.Context) {
	c.HTML(http.StatusOK, "about.tmpl", pageData{
		Title:         "About",
		Notifications: response.Pending(c),
		Subjects:      models.Subjects,
	})
}

// Dashboard renders the student's tuition list. Query parameters search and status update the filter.
func (h *PageHandler) Dashboard(c *gin.Context) {
	if _, ok := middleware.PrincipalFrom(c); !ok {
		c.HTML(http.StatusUnauthorized, "login.tmpl", pageData{Title: "Log in", Notifications: response.Pending(c)})
		return
	}
	ctrl, _, err := sessionController(c, h.registry)
	if err != nil {
		c.HTML(http.StatusUnauthorized, "login.tmpl", pageData{Title: "Log in", Notifications: response.Pending(c)})
		return
	}
	applyQueryFilter(c, ctrl)
	c.Header("Cache-Control", "no-store")
	c.HTML(http.StatusOK, "dashboard.tmpl", pageData{
		Title:         "Dashboard",
		Notifications: response.Pending(c),
		View:          ctrl.View(),
		StatusOptions: statusOptions,
		ExportEnabled: h.exportEnabled,
	})
}
