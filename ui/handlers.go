package ui

import (
	"net/http"

	"seqtrack/internal/errors"
	"seqtrack/models"

	"github.com/gin-gonic/gin"
)

// handleData returns every record as JSON
func (s *Server) handleData(c *gin.Context) {
	list, err := s.records.List(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// handleRows returns the display rows as JSON
func (s *Server) handleRows(c *gin.Context) {
	rows, err := s.records.Rows(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (s *Server) handleSummary(c *gin.Context) {
	sum, err := s.records.Summary(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sum)
}

type toggleRequest struct {
	Clicked *bool `json:"clicked"`
}

// handleToggle updates only the clicked flag
func (s *Server) handleToggle(c *gin.Context) {
	var req toggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, errors.InvalidInput("invalid request body"))
		return
	}
	if req.Clicked == nil {
		s.respondError(c, errors.InvalidInput("clicked is required"))
		return
	}

	rec, err := s.records.Toggle(c.Request.Context(), c.Param("id"), *req.Clicked)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// handleEdit applies a partial update of text fields and/or clicked
func (s *Server) handleEdit(c *gin.Context) {
	var patch models.RecordPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		s.respondError(c, errors.InvalidInput("invalid request body"))
		return
	}

	rec, err := s.records.Edit(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Record updated successfully", "data": rec})
}

func (s *Server) handleDelete(c *gin.Context) {
	if err := s.records.Delete(c.Request.Context(), c.Param("id")); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
