package ui

import (
	"io/fs"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// setupMiddleware configures Gin middleware
func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(s.requestLogger())

	staticFS, err := fs.Sub(s.assets, "static")
	if err != nil {
		s.logger.Warn("[setupMiddleware] static files unavailable: %v", err)
		return
	}
	s.router.StaticFS("/static", http.FS(staticFS))
}

// requestLogger logs each request and observes its duration
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		elapsed := time.Since(start)
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()

		if s.metrics != nil && s.metrics.HTTPDuration != nil {
			s.metrics.HTTPDuration.WithLabelValues(route, c.Request.Method, strconv.Itoa(status)).Observe(elapsed.Seconds())
		}

		if status >= http.StatusInternalServerError {
			s.logger.Error("[HTTP] %s %s %d %s", c.Request.Method, c.Request.URL.Path, status, elapsed)
			return
		}
		s.logger.Debug("[HTTP] %s %s %d %s", c.Request.Method, c.Request.URL.Path, status, elapsed)
	}
}
