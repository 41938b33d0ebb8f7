package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/tnmle/vastra-backend/internal/app/service"
	apperrors "github.com/tnmle/vastra-backend/internal/errors"
	"github.com/tnmle/vastra-backend/internal/middleware"
)

type DashboardController struct {
	dashboardService service.DashboardService
	auditService     service.AuditService
}

func NewDashboardController(dashboardService service.DashboardService, auditService service.AuditService) *DashboardController {
	return &DashboardController{
		dashboardService: dashboardService,
		auditService:     auditService,
	}
}

// GetOverview returns aggregated stats, top sellers and low-stock SKUs
// GET /api/v1/admin/dashboard
func (ctrl *DashboardController) GetOverview(c *gin.Context) {
	overview, err := ctrl.dashboardService.GetOverview()
	if err != nil {
		middleware.GetLoggerFromContext(c).Error("Failed to build dashboard overview", err)
		apperrors.InternalError(c, "")
		return
	}

	apperrors.RespondWithData(c, http.StatusOK, overview)
}

// ListAuditLog returns recent admin actions, newest first
// GET /api/v1/admin/audit
func (ctrl *DashboardController) ListAuditLog(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	entries, err := ctrl.auditService.ListRecent(limit, offset)
	if err != nil {
		apperrors.InternalError(c, "")
		return
	}

	apperrors.RespondWithData(c, http.StatusOK, gin.H{
		"entries": entries,
		"count":   len(entries),
	})
}
