package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/tuition-web/internal/middleware"
	"github.com/noah-isme/tuition-web/internal/models"
	"github.com/noah-isme/tuition-web/internal/service"
	appErrors "github.com/noah-isme/tuition-web/pkg/errors"
)

type controllerRegistry interface {
	Acquire(sessionID string, principal models.Principal) *service.TuitionListController
}

// sessionController resolves the caller's controller. The first request of a session mounts it by loading.
func sessionController(c *gin.Context, registry controllerRegistry) (*service.TuitionListController, models.Principal, error) {
	ctrl, principal, _, err := mountController(c, registry)
	return ctrl, principal, err
}

// mountController is sessionController that also reports whether this request performed the mount load.
func mountController(c *gin.Context, registry controllerRegistry) (*service.TuitionListController, models.Principal, bool, error) {
	principal, ok := middleware.PrincipalFrom(c)
	if !ok {
		return nil, models.Principal{}, false, appErrors.ErrUnauthorized
	}
	sessionID := middleware.SessionFrom(c)
	if sessionID == "" {
		return nil, models.Principal{}, false, appErrors.Clone(appErrors.ErrBadRequest, "missing session")
	}
	ctrl := registry.Acquire(sessionID, principal)
	if ctrl.Loaded() {
		return ctrl, principal, false, nil
	}
	// Failures degrade to an empty list and a toast.
	_ = ctrl.Load(c.Request.Context(), principal.Email)
	return ctrl, principal, true, nil
}

// applyQueryFilter updates the controller's filter from the search and status query parameters.
// A parameter that is absent keeps its current value.
func applyQueryFilter(c *gin.Context, ctrl *service.TuitionListController) {
	search, hasSearch := c.GetQuery("search")
	status, hasStatus := c.GetQuery("status")
	if !hasSearch && !hasStatus {
		return
	}
	current := ctrl.View().Filter
	if !hasSearch {
		search = current.Search
	}
	if hasStatus {
		status = strings.ToLower(strings.TrimSpace(status))
	} else {
		status = current.Status
	}
	ctrl.ApplyFilter(search, status)
}
