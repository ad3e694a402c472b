package ui

import (
	stderrors "errors"
	"net/http"
	"strings"

	"seqtrack/internal/errors"

	"github.com/gin-gonic/gin"
)

// respondError writes err as a JSON error with the status its code maps to
func (s *Server) respondError(c *gin.Context, err error) {
	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("[%s] %v", c.FullPath(), err)
	}

	message := err.Error()
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		message = appErr.Message
	}
	c.AbortWithStatusJSON(status, gin.H{"error": message, "code": errors.GetCode(err)})
}

// wantsJSON reports whether the client asked for a JSON response
func wantsJSON(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Accept"), "application/json")
}
