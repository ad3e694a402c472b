package ui

import (
	"net/http"

	"seqtrack/ui/middleware"
	"seqtrack/ui/templates/fragments"

	"github.com/gin-gonic/gin"
)

// handleLoginPage shows the sign-in form, or skips it for an admitted caller
func (s *Server) handleLoginPage(c *gin.Context) {
	if _, ok := s.resolver.Resolve(middleware.Credential(c, s.cookieName)); ok {
		c.Redirect(http.StatusSeeOther, "/index")
		return
	}
	s.renderTemplate(c, http.StatusOK, fragments.LoginPage, gin.H{
		"TokenRequired": s.resolver.RequiresCredential(),
		"Error":         c.Query("error") != "",
	})
}

// handleLogin checks the submitted token and sets the session cookie
func (s *Server) handleLogin(c *gin.Context) {
	token := c.PostForm("token")
	if _, ok := s.resolver.Resolve(token); !ok {
		s.logger.Warn("[Login] rejected sign-in from %s", c.ClientIP())
		c.Redirect(http.StatusSeeOther, "/?error=1")
		return
	}
	if s.resolver.RequiresCredential() {
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(s.cookieName, token, 0, "/", "", c.Request.TLS != nil, true)
	}
	c.Redirect(http.StatusSeeOther, "/index")
}

func (s *Server) handleLogout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.cookieName, "", -1, "/", "", c.Request.TLS != nil, true)
	c.Redirect(http.StatusSeeOther, "/")
}

// handleIndex renders the record table
func (s *Server) handleIndex(c *gin.Context) {
	ctx := c.Request.Context()
	rows, err := s.records.Rows(ctx)
	if err != nil {
		s.respondError(c, err)
		return
	}
	sum, err := s.records.Summary(ctx)
	if err != nil {
		s.respondError(c, err)
		return
	}
	s.renderTemplate(c, http.StatusOK, fragments.IndexPage, gin.H{
		"Rows":      rows,
		"Summary":   sum,
		"Numbering": s.records.Numbering(),
	})
}

func (s *Server) handleHelp(c *gin.Context) {
	s.renderTemplate(c, http.StatusOK, fragments.HelpPage, gin.H{"Body": s.helpBody})
}
