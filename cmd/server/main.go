package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rescuegrid/backend/internal/cache"
	"github.com/rescuegrid/backend/internal/config"
	"github.com/rescuegrid/backend/internal/db"
	"github.com/rescuegrid/backend/internal/geocode"
	httpapi "github.com/rescuegrid/backend/internal/http"
	"github.com/rescuegrid/backend/internal/routing"
	"github.com/rescuegrid/backend/internal/scheduler"
	"github.com/rescuegrid/backend/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	zerolog.TimeFieldFormat = time.RFC3339
	level, _ := zerolog.ParseLevel(cfg.LogLevel)
	logger := log.Level(level).With().Str("service", "rescuegrid-backend").Logger()

	ctx := context.Background()
	store, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect db")
	}
	defer store.Close()
	if err := store.InitSchema(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to init schema")
	}

	var (
		positions cache.PositionStore
		routes    cache.RouteStore
		notifier  cache.Notifier
	)
	if cfg.RedisURL == "" {
		positions = cache.NewMemoryPositionStore()
		routes = cache.NewMemoryRouteStore()
		notifier = cache.LogNotifier{Logger: logger}
		logger.Info().Msg("redis not configured, using in-memory caches")
	} else {
		client, err := cache.NewRedis(ctx, cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect redis")
		}
		defer client.Close()
		positions = cache.NewRedisPositionStore(client)
		routes = cache.NewRedisRouteStore(client)
		notifier = cache.NewRedisNotifier(client)
	}

	var provider routing.Provider
	if cfg.OSRMURL == "" {
		provider = routing.StraightLineProvider{}
		logger.Info().Msg("osrm not configured, using straight-line routing")
	} else {
		provider = &routing.OSRMProvider{BaseURL: cfg.OSRMURL}
	}

	var geocoder geocode.Geocoder
	if cfg.NominatimURL == "" {
		logger.Info().Msg("nominatim not configured, address reporting disabled")
	} else {
		geocoder = &geocode.NominatimGeocoder{BaseURL: cfg.NominatimURL}
	}

	clock := service.SystemClock()

	incidents := &service.IncidentService{
		Store:    store,
		Notifier: notifier,
		Routes:   routes,
		Clock:    clock,
		Logger:   logger,
	}
	assignments := &service.AssignmentService{
		Store:     store,
		Incidents: incidents,
		Notifier:  notifier,
		Routes:    routes,
		Clock:     clock,
		Logger:    logger,
	}
	simulator := &service.RouteSimulator{
		Provider:           provider,
		Routes:             routes,
		Positions:          positions,
		Store:              store,
		Assignments:        assignments,
		Clock:              clock,
		Logger:             logger,
		SpeedMultiplier:    cfg.SimSpeedMultiplier,
		ArrivalThresholdKm: cfg.SimArrivalThresholdKm,
		ServiceTime:        cfg.ServiceTime,
	}
	dispatcher := &service.Dispatcher{
		Store:          store,
		Assignments:    assignments,
		Simulator:      simulator,
		Clock:          clock,
		Logger:         logger,
		MaxRadiusKm:    cfg.DispatchMaxRadiusKm,
		SeverityWeight: cfg.DispatchSeverityWeight,
		AssignedBy:     "dispatcher",
	}
	dispatcher.SetEnabled(cfg.DispatchEnabled)
	flusher := &service.PositionFlusher{
		Positions: positions,
		Store:     store,
		Logger:    logger,
	}

	runner := &scheduler.Runner{Logger: logger}
	runner.Add(scheduler.Task{Name: "dispatch", Interval: cfg.DispatchInterval, Run: dispatcher.RunPass})
	runner.Add(scheduler.Task{Name: "simulation", Interval: cfg.SimTickInterval, Run: simulator.Tick})
	runner.Add(scheduler.Task{Name: "position-flush", Interval: cfg.PositionFlushInterval, Run: flusher.FlushAll})

	schedCtx, stopSched := context.WithCancel(ctx)
	schedDone := make(chan struct{})
	go func() {
		runner.Start(schedCtx)
		close(schedDone)
	}()

	router := httpapi.Router(cfg, store, incidents, assignments, dispatcher, simulator, positions, geocoder, logger)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Msg("server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	stopSched()
	<-schedDone

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctxShutdown)
	logger.Info().Msg("server stopped")
}
