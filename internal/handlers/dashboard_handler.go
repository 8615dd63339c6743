package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"altvest/internal/services"
)

// DashboardHandler handles investor dashboard requests.
type DashboardHandler struct {
	dashboardService services.DashboardServicer
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(dashboardService services.DashboardServicer) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// GetDashboard builds the consolidated portfolio view for the caller.
// @Summary     Investor dashboard
// @Description Consolidated position across all structures the caller is invested in
// @Tags        dashboard
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.InvestorDashboard "Dashboard"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /dashboard [get]
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	caller, err := getCaller(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	dashboard, err := h.dashboardService.BuildDashboard(caller.ID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, dashboard)
}
