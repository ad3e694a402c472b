package ui

import (
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"seqtrack/internal"
	"seqtrack/internal/records"
	"seqtrack/ui/middleware"
	"seqtrack/ui/templates/fragments"

	"github.com/gin-gonic/gin"
)

// Options configures a Server
type Options struct {
	Resolver   middleware.SessionResolver
	CookieName string
	Logger     *internal.Logger
	Metrics    *records.Metrics
	// Events streams change notifications at /events when set
	Events gin.HandlerFunc
}

// Server represents the web server for the record table
type Server struct {
	router     *gin.Engine
	records    *records.Service
	resolver   middleware.SessionResolver
	cookieName string
	templates  *template.Template
	assets     fs.FS
	helpBody   template.HTML
	logger     *internal.Logger
	metrics    *records.Metrics
	events     gin.HandlerFunc
}

// NewServer parses templates from assets and registers all routes
func NewServer(svc *records.Service, assets fs.FS, opts Options) (*Server, error) {
	if opts.Resolver == nil {
		opts.Resolver = middleware.SingleUser{}
	}
	if opts.CookieName == "" {
		opts.CookieName = "seqtrack_session"
	}
	if opts.Logger == nil {
		opts.Logger = internal.NewNopLogger()
	}

	s := &Server{
		router:     gin.New(),
		records:    svc,
		resolver:   opts.Resolver,
		cookieName: opts.CookieName,
		assets:     assets,
		logger:     opts.Logger,
		metrics:    opts.Metrics,
		events:     opts.Events,
	}

	if err := s.parseTemplates(); err != nil {
		return nil, err
	}

	body, err := RenderHelp(svc.Extractor().Layout(), svc.MaxUploadBytes())
	if err != nil {
		return nil, fmt.Errorf("failed to render help page: %w", err)
	}
	s.helpBody = body

	s.setupMiddleware()
	s.setupRoutes()
	return s, nil
}

func (s *Server) parseTemplates() error {
	funcMap := template.FuncMap{
		"add": func(a, b int) int { return a + b },
	}

	templatesFS, err := fs.Sub(s.assets, "templates")
	if err != nil {
		return fmt.Errorf("failed to create templates filesystem: %w", err)
	}

	s.templates = template.New("").Funcs(funcMap)
	for _, name := range fragments.Pages {
		content, err := fs.ReadFile(templatesFS, name)
		if err != nil {
			return fmt.Errorf("failed to read template %s: %w", name, err)
		}
		if _, err := s.templates.New(name).Parse(string(content)); err != nil {
			return fmt.Errorf("failed to parse template %s: %w", name, err)
		}
	}
	s.logger.Debug("[TemplateInit] parsed %d templates", len(fragments.Pages))
	return nil
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes() {
	s.router.GET("/", s.handleLoginPage)
	s.router.POST("/login", s.handleLogin)
	s.router.GET("/logout", s.handleLogout)

	gated := s.router.Group("/")
	gated.Use(middleware.RequireSession(s.resolver, s.cookieName))

	gated.GET("/index", s.handleIndex)
	gated.GET("/help", s.handleHelp)

	gated.POST("/upload", s.handleUpload)
	gated.GET("/uploads/:id", s.handleDownload)

	gated.GET("/data", s.handleData)
	gated.GET("/rows", s.handleRows)
	gated.GET("/summary", s.handleSummary)

	gated.PUT("/update/:id", s.handleToggle)
	gated.PUT("/edit/:id", s.handleEdit)
	gated.DELETE("/delete/:id", s.handleDelete)

	if s.events != nil {
		gated.GET("/events", s.events)
	}
}

// Handler returns the root http.Handler
func (s *Server) Handler() http.Handler {
	return s.router
}
