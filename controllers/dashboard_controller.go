package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type DashboardController struct {
	dashboard DashboardServiceAPI
}

func NewDashboardController(dashboard DashboardServiceAPI) *DashboardController {
	return &DashboardController{dashboard: dashboard}
}

// Stats handles GET /api/dashboard/stats
func (dc *DashboardController) Stats(c *gin.Context) {
	stats, err := dc.dashboard.Stats(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"stats": stats})
}
