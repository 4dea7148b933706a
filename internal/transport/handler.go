package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"go-object-recognizer/internal/config"
	"go-object-recognizer/internal/detector"
	apperrors "go-object-recognizer/internal/errors"
	"go-object-recognizer/internal/logger"
	"go-object-recognizer/internal/service"
	"go-object-recognizer/pkg/models"
)

// ErrorResponse is the failure payload of every endpoint.
type ErrorResponse struct {
	Error string `json:"error"`
}

// NewHandler builds the HTTP routing surface around the recognition service.
func NewHandler(svc service.RecognitionService, cfg *config.Config) http.Handler {
	r := gin.Default()

	// Add middleware. CORS is open to all origins, matching the public
	// frontend this API serves.
	r.Use(
		cors.Default(),
		requestSizeLimiter(cfg.MaxRequestBodySize),
	)

	// Configure routes
	api := r.Group("/api")
	api.GET("/health", healthCheck)
	api.GET("/test", testEndpoint)
	api.POST("/recognize", recognizeObjects(svc, cfg))

	return r
}

func recognizeObjects(svc service.RecognitionService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		logger.WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
			"ip":     c.ClientIP(),
		}).Info("Processing recognition request")

		var req models.RecognitionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "invalid request format", err)
			return
		}

		if req.Image == "" {
			respondError(c, http.StatusBadRequest, "no image data provided",
				apperrors.NewValidationError("No image data provided", nil))
			return
		}

		opts := detectionOptions(cfg, req)

		result, err := svc.Recognize(ctx, req.Image, opts)
		if err != nil {
			respondError(c, apperrors.GetStatusCode(err), "recognition failed", err)
			return
		}

		duration := time.Since(startTime)
		logger.WithFields(logrus.Fields{
			"objects":            len(result.Objects),
			"threshold":          opts.Threshold,
			"processing_time_ms": duration.Milliseconds(),
		}).Info("Recognition completed successfully")

		c.JSON(http.StatusOK, result)
	}
}

// detectionOptions merges per-request overrides into the configured defaults.
// Out-of-range overrides are ignored rather than rejected.
func detectionOptions(cfg *config.Config, req models.RecognitionRequest) detector.DetectionOptions {
	opts := detector.DetectionOptions{
		Threshold:  cfg.DetectionThreshold,
		MaxObjects: cfg.MaxObjects,
	}
	if req.Threshold != nil && *req.Threshold >= 0 {
		opts.Threshold = *req.Threshold
	}
	if req.MaxObjects != nil && *req.MaxObjects >= 0 {
		opts.MaxObjects = *req.MaxObjects
	}
	return opts
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"message": "Object recognition API is running",
	})
}

func testEndpoint(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Backend connection successful",
	})
}

// Middleware and helper functions
func requestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func respondError(c *gin.Context, code int, message string, err error) {
	logger.WithError(err).WithFields(logrus.Fields{
		"status_code": code,
		"path":        c.Request.URL.Path,
		"method":      c.Request.Method,
		"ip":          c.ClientIP(),
	}).Error("Request failed")

	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		code = http.StatusRequestEntityTooLarge
	}

	c.AbortWithStatusJSON(code, ErrorResponse{
		Error: fmt.Sprintf("%s: %v", message, err),
	})
}
