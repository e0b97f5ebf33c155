package httpapi

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/rescuegrid/backend/internal/cache"
	"github.com/rescuegrid/backend/internal/config"
	"github.com/rescuegrid/backend/internal/db"
	"github.com/rescuegrid/backend/internal/geocode"
	"github.com/rescuegrid/backend/internal/http/handlers"
	"github.com/rescuegrid/backend/internal/http/middleware"
	"github.com/rescuegrid/backend/internal/service"

	_ "github.com/rescuegrid/backend/docs"
)

func Router(cfg config.Config, store *db.Store, incidents *service.IncidentService, assignments *service.AssignmentService, dispatcher *service.Dispatcher, simulator *service.RouteSimulator, positions cache.PositionStore, geocoder geocode.Geocoder, logger zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Admin-Key", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if cfg.CORSAllowed == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = []string{cfg.CORSAllowed}
	}
	r.Use(cors.New(corsCfg))

	h := &handlers.Handler{
		Store:       store,
		Incidents:   incidents,
		Assignments: assignments,
		Dispatcher:  dispatcher,
		Simulator:   simulator,
		Positions:   positions,
		Geocoder:    geocoder,
		Validator:   validator.New(),
		Logger:      logger,
		AdminKey:    cfg.AdminKey,
	}

	r.GET("/healthz", h.Healthz)

	api := r.Group("/api")
	{
		api.POST("/incidents", h.ReportIncident)
		api.GET("/incidents", h.IncidentsList)
		api.GET("/incidents/:id", h.IncidentDetails)
		api.GET("/incidents/:id/assignments", h.IncidentAssignments)
		api.GET("/vehicles", h.VehiclesList)
		api.GET("/vehicles/:id", h.VehicleDetails)
		api.GET("/assignments", h.AssignmentsList)
		api.GET("/assignments/:id", h.AssignmentDetails)
	}

	admin := api.Group("")
	admin.Use(middleware.AdminKey(cfg.AdminKey))
	{
		admin.POST("/incidents/:id/accept", h.AcceptIncident)
		admin.POST("/incidents/:id/resolve", h.ResolveIncident)
		admin.PUT("/incidents/:id/severity", h.UpdateSeverity)
		admin.DELETE("/incidents/:id", h.CancelIncident)

		admin.POST("/vehicles", h.RegisterVehicle)
		admin.PUT("/vehicles/:id/position", h.UpdateVehiclePosition)

		admin.POST("/assignments", h.CreateAssignment)
		admin.POST("/assignments/:id/accept", h.AcceptAssignment)
		admin.POST("/assignments/:id/reassign", h.ReassignAssignment)
		admin.PUT("/assignments/:id/status", h.UpdateAssignmentStatus)

		admin.POST("/dispatch/run", h.RunDispatch)
		admin.GET("/dispatch/automation", h.DispatchAutomation)
		admin.PUT("/dispatch/automation", h.SetDispatchAutomation)
		admin.POST("/simulation/tick", h.RunSimulationTick)
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}
