package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/rescuegrid/backend/internal/cache"
	"github.com/rescuegrid/backend/internal/db"
	"github.com/rescuegrid/backend/internal/geocode"
	"github.com/rescuegrid/backend/internal/service"
)

type Handler struct {
	Store       *db.Store
	Incidents   *service.IncidentService
	Assignments *service.AssignmentService
	Dispatcher  *service.Dispatcher
	Simulator   *service.RouteSimulator
	Positions   cache.PositionStore
	Geocoder    geocode.Geocoder
	Validator   *validator.Validate
	Logger      zerolog.Logger
	AdminKey    string
}

func (h *Handler) Healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()
	if err := h.Store.Ping(ctx); err != nil {
		writeError(c, http.StatusServiceUnavailable, "DB_UNAVAILABLE", "Database unavailable", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func writeError(c *gin.Context, status int, code string, message string, details any) {
	c.JSON(status, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}

// writeDomainError maps persistence and lifecycle errors onto the API error
// envelope.
func writeDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, db.ErrNotFound):
		writeError(c, http.StatusNotFound, "NOT_FOUND", "Resource not found", err.Error())
	case errors.Is(err, service.ErrInvalidState), errors.Is(err, db.ErrVehicleUnavailable):
		writeError(c, http.StatusBadRequest, "INVALID_STATE", "Operation not allowed in current state", err.Error())
	default:
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Operation failed", err.Error())
	}
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid id", c.Param("id"))
		return 0, false
	}
	return id, true
}
