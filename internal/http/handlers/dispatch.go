package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// @Summary Run a dispatch pass now
// @Tags dispatch
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/dispatch/run [post]
func (h *Handler) RunDispatch(c *gin.Context) {
	if err := h.Dispatcher.RunPass(c.Request.Context()); err != nil {
		writeError(c, http.StatusInternalServerError, "DISPATCH_ERROR", "Dispatch pass failed", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// @Summary Get dispatch automation state
// @Tags dispatch
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/dispatch/automation [get]
func (h *Handler) DispatchAutomation(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"enabled": h.Dispatcher.Enabled()})
}

type AutomationRequest struct {
	Enabled *bool `json:"enabled" validate:"required"`
}

// @Summary Toggle dispatch automation
// @Tags dispatch
// @Accept json
// @Produce json
// @Param body body AutomationRequest true "toggle"
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]any
// @Router /api/dispatch/automation [put]
func (h *Handler) SetDispatchAutomation(c *gin.Context) {
	var req AutomationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}

	h.Dispatcher.SetEnabled(*req.Enabled)
	h.Logger.Info().Bool("enabled", *req.Enabled).Msg("dispatch automation toggled")
	c.JSON(http.StatusOK, gin.H{"enabled": h.Dispatcher.Enabled()})
}

// @Summary Advance route simulation one tick
// @Tags dispatch
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/simulation/tick [post]
func (h *Handler) RunSimulationTick(c *gin.Context) {
	if err := h.Simulator.Tick(c.Request.Context()); err != nil {
		writeError(c, http.StatusInternalServerError, "SIMULATION_ERROR", "Simulation tick failed", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
