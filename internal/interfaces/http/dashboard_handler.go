package http

import (
	"github.com/gofiber/fiber/v2"
)

// DashboardHandler métricas de negocio para el tablero.
type DashboardHandler struct {
	uc dashboardService
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(uc dashboardService) *DashboardHandler {
	return &DashboardHandler{uc: uc}
}

// GetStats godoc
// @Summary      Indicadores del tablero
// @Tags         analytics
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.DashboardStatsDTO
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/analytics/dashboard [get]
func (h *DashboardHandler) GetStats(c *fiber.Ctx) error {
	out, err := h.uc.GetStats(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
