package server

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) registerRoutes() {
	// Observability endpoints
	s.echo.GET("/health/live", s.handleLiveness)
	s.echo.GET("/health/ready", s.handleReadiness)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	s.echo.GET("/version", s.handleVersion)

	// Liveness banner for the mobile app's connectivity check
	s.echo.GET("/", s.handleRoot)

	// Alert ingestion and history
	s.echo.POST("/sos", s.handleSubmitAlert)
	s.echo.GET("/alerts", s.handleListAlerts)

	// Live dashboard feed
	s.echo.GET("/ws/alerts", s.handleAlertsWebSocket)
}
