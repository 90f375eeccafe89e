package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"model-pipeline/api/rest/handlers"
	"model-pipeline/api/rest/routes"
	"model-pipeline/config"
	"model-pipeline/core/dataset"
	"model-pipeline/core/repository"
	"model-pipeline/core/stages"
	"model-pipeline/providers/aws"

	"github.com/gorilla/mux"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("load configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	clients, err := aws.NewClients(ctx, cfg.Region)
	if err != nil {
		logger.Error("initialize aws clients", "error", err)
		os.Exit(1)
	}

	// Optional invocation audit log
	var audit *repository.InvocationRepository
	if cfg.AuditDSN != "" {
		db, err := repository.NewDB(cfg.AuditDSN)
		if err != nil {
			logger.Error("connect audit database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := db.EnsureSchema(); err != nil {
			logger.Error("prepare audit schema", "error", err)
			os.Exit(1)
		}
		audit = repository.NewInvocationRepository(db)
	}

	objects := aws.NewObjectStore(clients.S3)
	launcher := aws.NewLauncher(clients.SageMaker)
	registry := aws.NewRegistry(clients.SageMaker)

	// Job names and record keys carry wall-clock timestamps in the
	// pipeline's home timezone, offset from UTC.
	offset := time.Duration(cfg.ClockOffsetHours) * time.Hour
	opts := stages.Options{
		Project:   cfg.Project,
		JobPrefix: cfg.JobPrefix,
		Clock: func() time.Time {
			return time.Now().UTC().Add(offset)
		},
		Log: logger,
	}

	stageHandler := handlers.NewStageHandler(
		stages.NewProcessingStage(objects, launcher, opts),
		stages.NewTuningStage(objects, launcher, opts),
		stages.NewTrainingStage(objects, launcher, opts),
		stages.NewPromotionStage(objects, registry, opts),
		stages.NewTransformStage(objects, launcher, registry, opts),
		dataset.NewProfiler(objects),
		audit,
		logger,
	)

	r := mux.NewRouter()
	routes.SetupRoutes(r, stageHandler)

	server := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: r,
	}

	go func() {
		logger.Info("starting server", "addr", cfg.ListenAddr, "region", cfg.Region)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("forced shutdown", "error", err)
		os.Exit(1)
	}
	logger.Info("server exited")
}
