// Package main provides the study advisor HTTP server entry point.
package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kona-labs/study-advisor-go/internal/app"
	"github.com/kona-labs/study-advisor-go/internal/buildinfo"
	"github.com/kona-labs/study-advisor-go/internal/config"
	"github.com/kona-labs/study-advisor-go/internal/metrics"
)

// answerRequest is the POST /api/v1/answer request body.
type answerRequest struct {
	Query string `json:"query" binding:"required"`
	K     int    `json:"k"`
}

// setupRoutes configures all HTTP routes
func setupRoutes(router *gin.Engine, application *app.App, registry *prometheus.Registry, m *metrics.Metrics, cfg *config.Config) {
	// Root endpoint - service identification
	rootHandler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": "study-advisor",
			"version": buildinfo.Version,
		})
	}
	router.GET("/", rootHandler)
	router.HEAD("/", rootHandler)

	// Liveness Probe - checks if the application is alive (minimal check)
	// This should NEVER check dependencies - only that the process is running
	healthHandler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
	router.GET("/healthz", healthHandler)
	router.HEAD("/healthz", healthHandler)

	// Readiness Probe - the node is ready once catalogue and index are
	// loaded and row-aligned, which app.New already guaranteed.
	readyHandler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ready",
			"corpus": gin.H{
				"records":    application.Store.Len(),
				"vectors":    application.Index.Len(),
				"dimensions": application.Index.Dim(),
			},
			"generation": application.Config.HasGenerativeBackend(),
		})
	}
	router.GET("/ready", readyHandler)
	router.HEAD("/ready", readyHandler)

	// Answer endpoint. Pipeline failures are reported in-band with HTTP 200
	// and an error-intent result; only malformed requests get a 4xx.
	router.POST("/api/v1/answer", func(c *gin.Context) {
		var req answerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			m.RecordHTTPError("bad_request")
			c.JSON(http.StatusBadRequest, gin.H{"error": "query is required"})
			return
		}

		result := application.Orchestrator.Answer(c.Request.Context(), req.Query, req.K)
		c.JSON(http.StatusOK, result)
	})

	// Conversation history of this instance
	router.GET("/api/v1/history", func(c *gin.Context) {
		history := application.Orchestrator.History()
		c.JSON(http.StatusOK, gin.H{
			"count": len(history),
			"turns": history,
		})
	})

	// Prometheus metrics endpoint
	router.GET("/metrics",
		metricsAuthMiddleware(cfg.MetricsUsername, cfg.MetricsPassword),
		gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
}
