package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/heart-risk-mcp-server/internal/domain"
	"github.com/heart-risk-mcp-server/internal/middleware"
	"github.com/heart-risk-mcp-server/internal/presets"
)

// Server represents the HTTP server
type Server struct {
	configManager domain.ConfigManager
	predictor     domain.RiskPredictor
	logger        *logrus.Logger
	router        *gin.Engine
	server        *http.Server
}

// NewServer creates a new HTTP server instance
func NewServer(configManager domain.ConfigManager, predictor domain.RiskPredictor, logger *logrus.Logger) *Server {
	cfg := configManager.GetConfig()

	// Set Gin mode based on environment
	if gin.Mode() != gin.TestMode {
		if cfg.Logging.Level == "debug" {
			gin.SetMode(gin.DebugMode)
		} else {
			gin.SetMode(gin.ReleaseMode)
		}
	}

	router := gin.New()

	// Add middleware
	router.Use(middleware.CorrelationID())
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.AuditLogger(logger))
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.RateLimit(cfg.Server.RateLimit, cfg.Server.RateBurst))
	router.Use(middleware.RequestTimeout(cfg.Server.RequestTimeout))

	server := &Server{
		configManager: configManager,
		predictor:     predictor,
		logger:        logger,
		router:        router,
	}

	// Setup routes
	server.setupRoutes()

	return server
}

// Handler exposes the router for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves HTTP until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	cfg := s.configManager.GetServerConfig()
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", addr).Info("HTTP server listening")
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return s.server.Shutdown(shutdownCtx)
}

// setupRoutes configures the API routes
func (s *Server) setupRoutes() {
	// Health check endpoint
	s.router.GET("/health", s.handleHealth)

	// API v1 routes
	v1 := s.router.Group("/api/v1")
	{
		v1.GET("/model", s.handleModelStatus)
		v1.GET("/presets", s.handleListPresets)
		v1.POST("/predict", s.handlePredict)
		v1.POST("/presets/:id/predict", s.handlePredictPreset)
		v1.POST("/features", s.handleTransform)
	}
}

// handleHealth reports liveness; a process without artifacts is degraded
// but still up
func (s *Server) handleHealth(c *gin.Context) {
	status := s.predictor.Status()
	health := "healthy"
	if !status.Ready {
		health = "degraded"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    health,
		"model":     status,
		"timestamp": time.Now().UTC(),
		"version":   s.configManager.GetMCPConfig().ServerVersion,
	})
}

func (s *Server) handleModelStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.predictor.Status())
}

func (s *Server) handleListPresets(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"presets": presets.All()})
}

func (s *Server) handlePredict(c *gin.Context) {
	var rec domain.PatientRecord
	if !s.bindRecord(c, &rec) {
		return
	}

	outcome := s.predictor.Predict(c.Request.Context(), rec)
	c.JSON(statusFor(outcome.Diagnostic), outcome)
}

func (s *Server) handlePredictPreset(c *gin.Context) {
	outcome := s.predictor.PredictPreset(c.Request.Context(), c.Param("id"))
	c.JSON(statusFor(outcome.Diagnostic), outcome)
}

type featureValue struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

func (s *Server) handleTransform(c *gin.Context) {
	var rec domain.PatientRecord
	if !s.bindRecord(c, &rec) {
		return
	}

	vec, diag := s.predictor.Transform(c.Request.Context(), rec)
	if diag != nil {
		c.JSON(statusFor(diag), gin.H{"diagnostic": diag})
		return
	}

	features := make([]featureValue, len(vec.Names))
	for i, name := range vec.Names {
		features[i] = featureValue{Name: name, Value: vec.Values[i]}
	}
	c.JSON(http.StatusOK, gin.H{"features": features})
}

func (s *Server) bindRecord(c *gin.Context, rec *domain.PatientRecord) bool {
	if err := c.ShouldBindJSON(rec); err != nil {
		s.logger.WithFields(logrus.Fields{
			"correlation_id": c.GetString("correlation_id"),
			"error":          err.Error(),
		}).Debug("Rejected undecodable patient record")

		diag := domain.NewDiagnostic(domain.ErrInvalidInput, "Request body is not a valid patient record", err.Error())
		c.JSON(http.StatusBadRequest, domain.Unavailable(diag))
		return false
	}
	return true
}

// statusFor maps a diagnostic code to an HTTP status
func statusFor(diag *domain.Diagnostic) int {
	if diag == nil {
		return http.StatusOK
	}
	switch diag.Code {
	case domain.ErrArtifactMissing, domain.ErrArtifactLoadFailure:
		return http.StatusServiceUnavailable
	case domain.ErrTransformFailure:
		return http.StatusUnprocessableEntity
	case domain.ErrPresetNotFound:
		return http.StatusNotFound
	case domain.ErrInvalidInput:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
