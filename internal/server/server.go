package server

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/TheCandyMan-apps/footprintiq-sub026/internal/config"
	"github.com/TheCandyMan-apps/footprintiq-sub026/internal/eventlog"
	"github.com/TheCandyMan-apps/footprintiq-sub026/internal/health"
	"github.com/TheCandyMan-apps/footprintiq-sub026/internal/lens"
	"github.com/TheCandyMan-apps/footprintiq-sub026/internal/model"
	"github.com/TheCandyMan-apps/footprintiq-sub026/internal/repair"
	"github.com/TheCandyMan-apps/footprintiq-sub026/internal/scan"
	"github.com/TheCandyMan-apps/footprintiq-sub026/internal/stats"
	"github.com/TheCandyMan-apps/footprintiq-sub026/internal/store"
)

type Server struct {
	cfg       *config.Config
	runner    *scan.Runner
	stats     *stats.Aggregator
	health    *health.Aggregator
	refresher *health.Refresher
}

func New(cfg *config.Config, runner *scan.Runner, events *eventlog.Log) *Server {
	healthAgg := health.New(events)
	return &Server{
		cfg:       cfg,
		runner:    runner,
		stats:     stats.New(events),
		health:    healthAgg,
		refresher: health.NewRefresher(healthAgg, cfg.Health.WindowDays, time.Duration(cfg.Health.RefreshSeconds)*time.Second),
	}
}

func (s *Server) Router() *gin.Engine {
	r := gin.Default()

	r.POST("/scan/start", s.startHandler)
	r.POST("/scan/stop/:id", s.stopHandler)
	r.GET("/scan/status/:id", s.statusHandler)
	r.GET("/scan/stats/:id", s.statsHandler)
	r.GET("/scan/result/:id", s.resultHandler)
	r.GET("/health/providers", s.providerHealthHandler)
	r.POST("/scan/repair/:id", s.repairHandler)

	return r
}

// Run starts the background health refresher and serves until the listener
// fails.
func (s *Server) Run(ctx context.Context) error {
	go s.refresher.Run(ctx)

	server := &http.Server{
		Addr:           s.cfg.Server.Addr,
		Handler:        s.Router(),
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   0,
		MaxHeaderBytes: 1 << 20, // 1 MB
	}

	log.Printf("[server] listening on %s", server.Addr)
	return server.ListenAndServe()
}

func (s *Server) startHandler(ctx *gin.Context) {
	var request model.ScanRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		log.Printf("[startHandler] invalid request: %v", err)
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id, err := s.runner.Start(&request)
	if err != nil {
		log.Printf("[startHandler] start error: %v", err)
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	log.Printf("[startHandler] scan started, id=%s", id)
	ctx.JSON(http.StatusAccepted, gin.H{"scan_id": id})
}

func (s *Server) stopHandler(ctx *gin.Context) {
	id := ctx.Param("id")
	log.Printf("[stopHandler] stopping scan id=%s", id)

	if _, ok := store.GetSummary(id); !ok {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "scan not found"})
		return
	}

	if err := s.runner.Stop(id); err != nil {
		log.Printf("[stopHandler] scan already finished with id=%s", id)
		ctx.JSON(http.StatusConflict, gin.H{"error": "scan already finished"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"scan_id": id, "status": model.ScanStopped})
}

func (s *Server) statusHandler(ctx *gin.Context) {
	id := ctx.Param("id")

	summary, ok := store.GetSummary(id)
	if !ok {
		log.Printf("[statusHandler] summary not found for id=%s", id)
		ctx.JSON(http.StatusNotFound, gin.H{"error": "scan not found"})
		return
	}
	ctx.JSON(http.StatusOK, summary)
}

func (s *Server) statsHandler(ctx *gin.Context) {
	id := ctx.Param("id")

	if _, ok := store.GetSummary(id); !ok {
		log.Printf("[statsHandler] summary not found for id=%s", id)
		ctx.JSON(http.StatusNotFound, gin.H{"error": "scan not found"})
		return
	}
	ctx.JSON(http.StatusOK, s.stats.ComputeStats(id))
}

func (s *Server) resultHandler(ctx *gin.Context) {
	id := ctx.Param("id")
	log.Printf("[resultHandler] fetching result for id=%s", id)

	summary, ok := store.GetSummary(id)
	if !ok {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "scan not found"})
		return
	}

	if summary.Status == model.ScanRunning || summary.Status == model.ScanPending {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "scan not ready"})
		return
	}

	findings := store.GetFindings(id)
	ctx.JSON(http.StatusOK, gin.H{
		"summary":  summary,
		"findings": findings,
		"lens":     lens.Analyze(findings),
	})
}

func (s *Server) providerHealthHandler(ctx *gin.Context) {
	if raw := ctx.Query("days"); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil || days < 1 {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "days must be a positive integer"})
			return
		}
		metrics, summary := s.health.ComputeHealth(days)
		ctx.JSON(http.StatusOK, gin.H{"providers": metrics, "summary": summary})
		return
	}

	metrics, summary := s.refresher.Current()
	ctx.JSON(http.StatusOK, gin.H{"providers": metrics, "summary": summary})
}

func (s *Server) repairHandler(ctx *gin.Context) {
	id := ctx.Param("id")
	log.Printf("[repairHandler] repairing scan id=%s", id)

	result, err := repair.Repair(id)
	if err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, result)
}
