package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"storefront-service/internal/apperr"
	"storefront-service/internal/util"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// errorHandler renders the last error recorded on the context as the JSON
// error envelope. Outside production the envelope also carries a stack.
func errorHandler(production bool) gin.HandlerFunc {
	logger := util.GetLogger()

	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		status := apperr.StatusOf(err)
		ae := apperr.From(err)

		message := err.Error()
		if ae != nil && status < http.StatusInternalServerError {
			message = ae.Message
		}

		if status >= http.StatusInternalServerError {
			logger.Error("Request failed",
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				zap.Error(err))
			if production {
				message = "Something went wrong"
			}
		}

		body := gin.H{
			"success":    false,
			"statusCode": status,
			"message":    message,
		}
		if !production && ae != nil {
			body["stack"] = ae.Stack()
		}

		c.AbortWithStatusJSON(status, body)
	}
}

// recovery turns panics into a 500 error envelope.
func recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		c.Error(apperr.Internal(fmt.Errorf("panic: %v", recovered)))
		c.Abort()
	})
}

// requestLogger writes one zap line per request
func requestLogger() gin.HandlerFunc {
	logger := util.GetLogger()

	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			logger.Warn("HTTP request", fields...)
			return
		}
		logger.Info("HTTP request", fields...)
	}
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		util.HTTPRequestDuration.WithLabelValues(c.Request.Method, path, status).Observe(duration)
		util.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
	}
}

// corsMiddleware allows credentialed requests from the configured origins
func corsMiddleware(origins []string) gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}
