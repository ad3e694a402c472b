package ui

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"path/filepath"

	"seqtrack/internal/errors"

	"github.com/gin-gonic/gin"
)

// multipartOverhead leaves room for the form framing around the file
const multipartOverhead = 1 << 20

// handleUpload extracts and stores one uploaded run sheet
func (s *Server) handleUpload(c *gin.Context) {
	limit := s.records.MaxUploadBytes()
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit+multipartOverhead)

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			s.respondError(c, errors.InvalidUpload(fmt.Sprintf("file exceeds the %d MB limit", limit/(1024*1024)), err))
			return
		}
		s.respondError(c, errors.InvalidUpload("no file uploaded", err))
		return
	}
	defer file.Close()

	s.logger.Info("[Upload] received %s (%d bytes)", header.Filename, header.Size)

	rec, err := s.records.Upload(c.Request.Context(), header.Filename, file)
	if err != nil {
		s.respondError(c, err)
		return
	}

	if wantsJSON(c) {
		c.JSON(http.StatusCreated, rec)
		return
	}
	c.Redirect(http.StatusSeeOther, "/index")
}

// handleDownload streams the archived spreadsheet of a record
func (s *Server) handleDownload(c *gin.Context) {
	rc, rec, err := s.records.Archive(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	defer rc.Close()

	name := rec.SourceFile
	if name == "" {
		name = filepath.Base(rec.ArchiveKey)
	}
	c.DataFromReader(http.StatusOK, -1,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", rc,
		map[string]string{"Content-Disposition": fmt.Sprintf("attachment; filename=%q", name)})
}
