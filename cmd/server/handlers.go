package main

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rhyrak/term-scheduler/internal/csvio"
	"github.com/rhyrak/term-scheduler/pkg/config"
	"github.com/rhyrak/term-scheduler/pkg/logger"
	"github.com/rhyrak/term-scheduler/pkg/metrics"
)

type server struct {
	cfg     *config.Config
	log     *zap.Logger
	metrics *metrics.Recorder
	runs    *runRegistry
}

func newServer(cfg *config.Config, log *zap.Logger, rec *metrics.Recorder) *server {
	return &server{
		cfg:     cfg,
		log:     log,
		metrics: rec,
		runs:    newRunRegistry(filepath.Join(cfg.DataDir, "runs")),
	}
}

func (s *server) router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), logger.GinMiddleware(s.log))

	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	r.GET("/health", s.handleHealth)
	r.GET("/schedules", s.handleGetSchedules)
	r.GET("/schedules/:id", s.handleGetScheduleWithId)
	r.POST("/runs", s.handlePostRun)
	r.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	return r
}

func (s *server) handleHealth(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *server) handleGetSchedules(ctx *gin.Context) {
	ids, err := s.runs.list()
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"scheduleIds": ids,
	})
}

func (s *server) handleGetScheduleWithId(ctx *gin.Context) {
	id := ctx.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "malformed schedule id"})
		return
	}
	ctx.Set("run_id", id)

	status, known := s.runs.status(id)
	dir := s.runs.dir(id)
	term, err := os.ReadFile(filepath.Join(dir, csvio.TermScheduleFile))
	if err != nil {
		if known {
			ctx.JSON(http.StatusAccepted, gin.H{"id": id, "status": status.State, "error": status.Error})
			return
		}
		ctx.Status(http.StatusNotFound)
		return
	}
	// The overflow table is absent until the last stage finishes.
	overflow, _ := os.ReadFile(filepath.Join(dir, csvio.OverflowScheduleFile))
	days, _ := os.ReadFile(filepath.Join(dir, csvio.OverflowDaysFile))

	if !known {
		status = runStatus{State: stateDone}
	}
	ctx.JSON(http.StatusOK, gin.H{
		"id":           id,
		"status":       status.State,
		"error":        status.Error,
		"data":         string(term),
		"overflow":     string(overflow),
		"overflowDays": string(days),
	})
}

func (s *server) handlePostRun(ctx *gin.Context) {
	id := uuid.NewString()
	ctx.Set("run_id", id)

	cfg := *s.cfg
	cfg.DataDir = s.runs.dir(id)
	cfg.MetricsFile = ""

	// An uploaded roster replaces the configured input directory for this run.
	if file, err := ctx.FormFile("roster"); err == nil {
		cfg.InputDir = filepath.Join(cfg.DataDir, "input")
		if err := os.MkdirAll(cfg.InputDir, os.ModePerm); err != nil {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if err := ctx.SaveUploadedFile(file, filepath.Join(cfg.InputDir, csvio.RosterFile)); err != nil {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}

	s.runs.start(id, &cfg, s.log, s.metrics)

	ctx.JSON(http.StatusAccepted, gin.H{
		"id": id,
	})
}
