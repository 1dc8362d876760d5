package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/daffodils/florist-api/internal/service"
)

type AdminHandler struct {
	stats *service.StatsService
}

func NewAdminHandler(stats *service.StatsService) *AdminHandler {
	return &AdminHandler{stats: stats}
}

func (h *AdminHandler) Dashboard(c *gin.Context) {
	dashboard, err := h.stats.Dashboard(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to compute dashboard.")
		return
	}
	respondOK(c, http.StatusOK, dashboard)
}
