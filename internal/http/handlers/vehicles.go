package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rescuegrid/backend/internal/models"
)

type RegisterVehicleRequest struct {
	RegistrationNumber string  `json:"registration_number" validate:"required"`
	VehicleType        string  `json:"vehicle_type" validate:"required,oneof=AMBULANCE FIRE_TRUCK POLICE_CAR"`
	Capacity           int     `json:"capacity" validate:"min=1"`
	Latitude           float64 `json:"latitude" validate:"min=-90,max=90"`
	Longitude          float64 `json:"longitude" validate:"min=-180,max=180"`
}

// @Summary Register a vehicle
// @Tags vehicles
// @Accept json
// @Produce json
// @Param vehicle body RegisterVehicleRequest true "vehicle"
// @Success 201 {object} models.Vehicle
// @Failure 400 {object} map[string]any
// @Router /api/vehicles [post]
func (h *Handler) RegisterVehicle(c *gin.Context) {
	var req RegisterVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}

	v, err := h.Store.CreateVehicle(c.Request.Context(), models.Vehicle{
		RegistrationNumber: req.RegistrationNumber,
		Type:               models.VehicleType(req.VehicleType),
		Capacity:           req.Capacity,
		Status:             models.VehicleAvailable,
		Latitude:           req.Latitude,
		Longitude:          req.Longitude,
		LastUpdated:        time.Now().UTC(),
	})
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, v)
}

// @Summary List vehicles
// @Description Vehicle rows with cached live positions overlaid when present.
// @Tags vehicles
// @Produce json
// @Param status query string false "filter by vehicle status"
// @Success 200 {array} models.Vehicle
// @Router /api/vehicles [get]
func (h *Handler) VehiclesList(c *gin.Context) {
	ctx := c.Request.Context()
	var vehicles []models.Vehicle
	var err error
	if status := c.Query("status"); status != "" {
		vehicles, err = h.Store.ListVehiclesByStatus(ctx, models.VehicleStatus(status))
	} else {
		vehicles, err = h.Store.ListVehicles(ctx)
	}
	if err != nil {
		writeDomainError(c, err)
		return
	}

	cached, err := h.Positions.All(ctx)
	if err != nil {
		h.Logger.Warn().Err(err).Msg("position cache read failed, serving db positions")
		cached = nil
	}
	for i := range vehicles {
		if pos, ok := cached[vehicles[i].ID]; ok {
			vehicles[i].Latitude = pos.Latitude
			vehicles[i].Longitude = pos.Longitude
			vehicles[i].LastUpdated = pos.Timestamp
		}
	}
	c.JSON(http.StatusOK, vehicles)
}

// @Summary Get vehicle details
// @Tags vehicles
// @Produce json
// @Param id path int true "vehicle id"
// @Success 200 {object} models.Vehicle
// @Failure 404 {object} map[string]any
// @Router /api/vehicles/{id} [get]
func (h *Handler) VehicleDetails(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	v, err := h.Store.GetVehicle(ctx, id)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	if pos, ok, err := h.Positions.Get(ctx, id); err == nil && ok {
		v.Latitude = pos.Latitude
		v.Longitude = pos.Longitude
		v.LastUpdated = pos.Timestamp
	}
	c.JSON(http.StatusOK, v)
}

type UpdatePositionRequest struct {
	Latitude  float64 `json:"latitude" validate:"min=-90,max=90"`
	Longitude float64 `json:"longitude" validate:"min=-180,max=180"`
}

// @Summary Override a vehicle position
// @Description Writes to the live position cache; the flusher persists it.
// @Tags vehicles
// @Accept json
// @Produce json
// @Param id path int true "vehicle id"
// @Param position body UpdatePositionRequest true "position"
// @Success 200 {object} models.Position
// @Failure 404 {object} map[string]any
// @Router /api/vehicles/{id}/position [put]
func (h *Handler) UpdateVehiclePosition(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req UpdatePositionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}

	ctx := c.Request.Context()
	if _, err := h.Store.GetVehicle(ctx, id); err != nil {
		writeDomainError(c, err)
		return
	}

	now := time.Now().UTC()
	if err := h.Positions.Set(ctx, id, req.Latitude, req.Longitude, now); err != nil {
		writeError(c, http.StatusInternalServerError, "CACHE_ERROR", "Failed to store position", err.Error())
		return
	}
	c.JSON(http.StatusOK, models.Position{Latitude: req.Latitude, Longitude: req.Longitude, Timestamp: now})
}
