package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rescuegrid/backend/internal/models"
)

type CreateAssignmentRequest struct {
	IncidentID int64  `json:"incident_id" validate:"required,min=1"`
	VehicleID  int64  `json:"vehicle_id" validate:"required,min=1"`
	AssignedBy string `json:"assigned_by" validate:"required"`
}

// @Summary Manually assign a vehicle to an incident
// @Tags assignments
// @Accept json
// @Produce json
// @Param assignment body CreateAssignmentRequest true "assignment"
// @Success 201 {object} models.Assignment
// @Failure 400 {object} map[string]any
// @Router /api/assignments [post]
func (h *Handler) CreateAssignment(c *gin.Context) {
	var req CreateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}

	ctx := c.Request.Context()
	a, err := h.Assignments.Create(ctx, req.IncidentID, req.VehicleID, req.AssignedBy)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	if h.Simulator != nil {
		inc, err := h.Incidents.Get(ctx, req.IncidentID)
		if err == nil {
			dest := models.Point{Latitude: inc.Latitude, Longitude: inc.Longitude}
			if err := h.Simulator.StartRoute(ctx, req.VehicleID, dest); err != nil {
				h.Logger.Warn().Err(err).Int64("vehicle_id", req.VehicleID).Msg("route start failed")
			}
		}
	}
	c.JSON(http.StatusCreated, a)
}

// @Summary List assignments
// @Tags assignments
// @Produce json
// @Param status query string false "filter by status"
// @Success 200 {array} models.Assignment
// @Router /api/assignments [get]
func (h *Handler) AssignmentsList(c *gin.Context) {
	ctx := c.Request.Context()
	status := c.Query("status")

	var (
		assignments []models.Assignment
		err         error
	)
	if status == "" {
		assignments, err = h.Assignments.List(ctx)
	} else {
		assignments, err = h.Assignments.ListByStatus(ctx, models.AssignmentStatus(status))
	}
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, assignments)
}

// @Summary Get assignment details
// @Tags assignments
// @Produce json
// @Param id path int true "assignment id"
// @Success 200 {object} models.Assignment
// @Failure 404 {object} map[string]any
// @Router /api/assignments/{id} [get]
func (h *Handler) AssignmentDetails(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	a, err := h.Assignments.Get(c.Request.Context(), id)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

type AcceptAssignmentRequest struct {
	Responder string `json:"responder" validate:"required"`
}

// @Summary Accept an assignment
// @Tags assignments
// @Accept json
// @Produce json
// @Param id path int true "assignment id"
// @Param body body AcceptAssignmentRequest true "responder"
// @Success 200 {object} models.Assignment
// @Failure 400 {object} map[string]any
// @Router /api/assignments/{id}/accept [post]
func (h *Handler) AcceptAssignment(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req AcceptAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}

	a, err := h.Assignments.Accept(c.Request.Context(), id, req.Responder)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

type UpdateAssignmentStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=ENROUTE ARRIVED COMPLETED CANCELLED"`
}

// @Summary Update assignment status
// @Tags assignments
// @Accept json
// @Produce json
// @Param id path int true "assignment id"
// @Param status body UpdateAssignmentStatusRequest true "target status"
// @Success 200 {object} models.Assignment
// @Failure 400 {object} map[string]any
// @Router /api/assignments/{id}/status [put]
func (h *Handler) UpdateAssignmentStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req UpdateAssignmentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}

	a, err := h.Assignments.UpdateStatus(c.Request.Context(), id, models.AssignmentStatus(req.Status))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

type ReassignAssignmentRequest struct {
	VehicleID int64 `json:"vehicle_id" validate:"required,min=1"`
}

// @Summary Reassign an assignment to another vehicle
// @Tags assignments
// @Accept json
// @Produce json
// @Param id path int true "assignment id"
// @Param body body ReassignAssignmentRequest true "new vehicle"
// @Success 200 {object} models.Assignment
// @Failure 400 {object} map[string]any
// @Router /api/assignments/{id}/reassign [post]
func (h *Handler) ReassignAssignment(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req ReassignAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}

	ctx := c.Request.Context()
	a, err := h.Assignments.Reassign(ctx, id, req.VehicleID)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	if h.Simulator != nil {
		if inc, err := h.Incidents.Get(ctx, a.IncidentID); err == nil {
			dest := models.Point{Latitude: inc.Latitude, Longitude: inc.Longitude}
			if err := h.Simulator.StartRoute(ctx, req.VehicleID, dest); err != nil {
				h.Logger.Warn().Err(err).Int64("vehicle_id", req.VehicleID).Msg("route start failed")
			}
		}
	}
	c.JSON(http.StatusOK, a)
}
