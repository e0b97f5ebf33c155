package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rescuegrid/backend/internal/models"
)

type ReportIncidentRequest struct {
	ServiceType string   `json:"service_type" validate:"required,oneof=MEDICAL FIRE POLICE"`
	Latitude    *float64 `json:"latitude" validate:"omitempty,min=-90,max=90"`
	Longitude   *float64 `json:"longitude" validate:"omitempty,min=-180,max=180"`
	Address     string   `json:"address"`
	Severity    int      `json:"severity" validate:"required,min=1,max=5"`
	ReportedBy  string   `json:"reported_by" validate:"required"`
	Description string   `json:"description"`
}

// @Summary Report an incident
// @Description Accepts either coordinates or a street address. An address
// without coordinates is resolved through the geocoder.
// @Tags incidents
// @Accept json
// @Produce json
// @Param incident body ReportIncidentRequest true "incident"
// @Success 201 {object} models.Incident
// @Failure 400 {object} map[string]any
// @Router /api/incidents [post]
func (h *Handler) ReportIncident(c *gin.Context) {
	var req ReportIncidentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}

	ctx := c.Request.Context()
	address := req.Address
	var lat, lon float64
	switch {
	case req.Latitude != nil && req.Longitude != nil:
		lat, lon = *req.Latitude, *req.Longitude
	case address != "":
		if h.Geocoder == nil {
			writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Geocoding not available, coordinates required", nil)
			return
		}
		var display string
		var err error
		lat, lon, display, err = h.Geocoder.Geocode(ctx, address)
		if err != nil {
			writeError(c, http.StatusBadRequest, "GEOCODE_FAILED", "Could not resolve address", err.Error())
			return
		}
		address = display
	default:
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Coordinates or address required", nil)
		return
	}

	inc, err := h.Incidents.Report(ctx, models.Incident{
		ServiceType: models.ServiceType(req.ServiceType),
		Latitude:    lat,
		Longitude:   lon,
		Address:     address,
		Severity:    req.Severity,
		ReportedBy:  req.ReportedBy,
		Description: req.Description,
	})
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, inc)
}

// @Summary List incidents
// @Tags incidents
// @Produce json
// @Param status query string false "filter by status"
// @Success 200 {array} models.Incident
// @Router /api/incidents [get]
func (h *Handler) IncidentsList(c *gin.Context) {
	ctx := c.Request.Context()
	status := c.Query("status")

	var (
		incidents []models.Incident
		err       error
	)
	if status == "" {
		incidents, err = h.Incidents.List(ctx)
	} else {
		incidents, err = h.Incidents.ListByStatus(ctx, models.IncidentStatus(status))
	}
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, incidents)
}

// @Summary Get incident details
// @Tags incidents
// @Produce json
// @Param id path int true "incident id"
// @Success 200 {object} models.Incident
// @Failure 404 {object} map[string]any
// @Router /api/incidents/{id} [get]
func (h *Handler) IncidentDetails(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	inc, err := h.Incidents.Get(c.Request.Context(), id)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, inc)
}

// @Summary List assignments for an incident
// @Tags incidents
// @Produce json
// @Param id path int true "incident id"
// @Success 200 {array} models.Assignment
// @Router /api/incidents/{id}/assignments [get]
func (h *Handler) IncidentAssignments(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	assignments, err := h.Store.ListAssignmentsByIncident(c.Request.Context(), id)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, assignments)
}

// @Summary Accept a reported incident
// @Tags incidents
// @Produce json
// @Param id path int true "incident id"
// @Success 200 {object} models.Incident
// @Failure 400 {object} map[string]any
// @Router /api/incidents/{id}/accept [post]
func (h *Handler) AcceptIncident(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	inc, err := h.Incidents.Accept(c.Request.Context(), id)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, inc)
}

// @Summary Resolve an incident
// @Tags incidents
// @Produce json
// @Param id path int true "incident id"
// @Success 200 {object} models.Incident
// @Router /api/incidents/{id}/resolve [post]
func (h *Handler) ResolveIncident(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	inc, err := h.Incidents.Resolve(c.Request.Context(), id)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, inc)
}

// @Summary Cancel an incident
// @Description Deletes the incident; cascades to its assignments.
// @Tags incidents
// @Produce json
// @Param id path int true "incident id"
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]any
// @Router /api/incidents/{id} [delete]
func (h *Handler) CancelIncident(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.Incidents.Cancel(c.Request.Context(), id); err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cancelled"})
}

type UpdateSeverityRequest struct {
	Severity int `json:"severity" validate:"required,min=1,max=5"`
}

// @Summary Update incident severity
// @Tags incidents
// @Accept json
// @Produce json
// @Param id path int true "incident id"
// @Param severity body UpdateSeverityRequest true "severity"
// @Success 200 {object} models.Incident
// @Router /api/incidents/{id}/severity [put]
func (h *Handler) UpdateSeverity(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req UpdateSeverityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}

	inc, err := h.Incidents.SetSeverity(c.Request.Context(), id, req.Severity)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, inc)
}
