package main

import (
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/weekab/timetable-api/internal/calendar"
	"github.com/weekab/timetable-api/internal/handler"
	"github.com/weekab/timetable-api/internal/middleware"
	"github.com/weekab/timetable-api/internal/schedule"
	"github.com/weekab/timetable-api/internal/service"
	"github.com/weekab/timetable-api/pkg/config"
	"github.com/weekab/timetable-api/pkg/logger"
	corsmiddleware "github.com/weekab/timetable-api/pkg/middleware/cors"
	reqidmiddleware "github.com/weekab/timetable-api/pkg/middleware/requestid"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Timetable.WeekAStart == "" {
		logr.Sugar().Fatalw("TIMETABLE_WEEK_A_START is required (ISO date of a week A start)")
	}

	cal, err := calendar.New(cfg.Timetable.WeekAStart, cfg.Timetable.Timezone)
	if err != nil {
		logr.Sugar().Fatalw("failed to build week calendar", "error", err)
	}

	// The schedule loads once, before serving begins; a bad CSV is fatal.
	store, err := schedule.Load(cfg.Timetable.CSVPath)
	if err != nil {
		logr.Sugar().Fatalw("failed to load timetable", "path", cfg.Timetable.CSVPath, "error", err)
	}

	metrics := service.NewMetricsService()
	metrics.SetLessonsLoaded(store.Len())

	engine := service.NewTimetableService(store, cal, nil, logr, cfg.Timetable.Strict)
	queries := service.NewQueryService(engine, validator.New(), logr, metrics)
	exports := service.NewExportService(store, nil, nil, logr)

	timetableHandler := handler.NewTimetableHandler(queries)
	exportHandler := handler.NewExportHandler(exports)
	metricsHandler := handler.NewMetricsHandler(metrics)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)

	r.POST("/query", timetableHandler.Query)

	api := r.Group(cfg.APIPrefix)
	{
		tt := api.Group("/timetable")
		tt.GET("/status", timetableHandler.Status)
		tt.GET("/week", timetableHandler.Week)
		tt.GET("/day", timetableHandler.Day)
		tt.GET("/at", timetableHandler.At)
		tt.GET("/next", timetableHandler.Next)
		tt.GET("/find", timetableHandler.Find)
		tt.GET("/period", timetableHandler.Period)
		if cfg.Exports.Enabled {
			tt.GET("/export", exportHandler.Download)
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting",
		"addr", addr,
		"env", cfg.Env,
		"lessons", store.Len(),
		"week_a_start", cfg.Timetable.WeekAStart,
		"tz", cfg.Timetable.Timezone)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
