package container

import (
	"context"
	"fmt"
	"io/fs"

	"seqtrack/adapters/memory"
	"seqtrack/adapters/mongostore"
	"seqtrack/adapters/sqlstore"
	"seqtrack/internal"
	"seqtrack/internal/api"
	"seqtrack/internal/config"
	"seqtrack/internal/migration"
	"seqtrack/internal/projectid"
	"seqtrack/internal/records"
	"seqtrack/internal/storage"
	"seqtrack/ports"
	"seqtrack/ui"
	"seqtrack/ui/middleware"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Infrastructure
	Registry *prometheus.Registry
	Repo     ports.RecordRepository
	Blobs    ports.BlobStore

	// Services
	Metrics *records.Metrics
	Records *records.Service
	SSEHub  *api.SSEHub
}

// New creates a new dependency injection container
func New(ctx context.Context, cfg *config.Config, logger *internal.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if logger == nil {
		logger = internal.NewNopLogger()
	}

	c := &Container{
		Config: cfg,
		Logger: logger,
	}

	c.initMetrics()

	repo, err := OpenStore(ctx, cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open record store: %w", err)
	}
	c.Repo = repo

	if c.Blobs, err = storage.New(ctx, cfg.Blob); err != nil {
		repo.Close()
		return nil, fmt.Errorf("failed to open blob store: %w", err)
	}

	if err := c.initRecords(); err != nil {
		repo.Close()
		return nil, err
	}

	logger.Info("Container initialized (store=%s, blobs=%s, numbering=%s)",
		cfg.Database.Driver, cfg.Blob.Driver, cfg.Records.Numbering)
	return c, nil
}

// OpenStore connects the record repository selected by cfg.Driver and prepares its schema
func OpenStore(ctx context.Context, cfg config.DatabaseConfig, logger *internal.Logger) (ports.RecordRepository, error) {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	switch cfg.Driver {
	case config.DriverPostgres, config.DriverSQLite:
		db, err := sqlstore.Open(ctx, cfg.Driver, cfg.URL)
		if err != nil {
			return nil, err
		}
		runner := migration.NewRunner()
		if err := runner.Run(ctx, db); err != nil {
			db.Close()
			return nil, err
		}
		logger.Info("Applied schema version %s on %s", runner.Version(), cfg.Driver)
		return sqlstore.NewRecordRepository(db), nil

	case config.DriverMongo:
		client, err := mongostore.Connect(ctx, cfg.URL)
		if err != nil {
			return nil, err
		}
		db := client.Database(cfg.MongoDatabase)
		if err := mongostore.EnsureIndexes(ctx, db); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, err
		}
		return mongostore.NewRecordRepository(db), nil

	case config.DriverMemory:
		logger.Warn("Using in-memory record store; records are lost on restart")
		return memory.NewRecordRepository(), nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

// initMetrics creates the registry shared by the app and ops listeners
func (c *Container) initMetrics() {
	c.Registry = prometheus.NewRegistry()
	c.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	c.Metrics = records.NewMetrics(c.Registry)
}

// initRecords builds the record service and its change hub
func (c *Container) initRecords() error {
	numbering, err := projectid.ParseNumbering(c.Config.Records.Numbering)
	if err != nil {
		return err
	}

	c.SSEHub = api.NewSSEHub(c.Logger.With("component", "sse"))
	c.Records = records.NewService(c.Repo,
		records.WithBlobStore(c.Blobs),
		records.WithNumbering(numbering),
		records.WithMaxUploadBytes(c.Config.Records.MaxUploadBytes),
		records.WithLogger(c.Logger.With("component", "records")),
		records.WithMetrics(c.Metrics),
		records.WithNotifier(c.SSEHub),
	)
	return nil
}

// UIServer builds the web application over the record service
func (c *Container) UIServer(assets fs.FS) (*ui.Server, error) {
	return ui.NewServer(c.Records, assets, ui.Options{
		Resolver:   middleware.NewSessionResolver(c.Config.Auth.Token),
		CookieName: c.Config.Auth.CookieName,
		Logger:     c.Logger.With("component", "ui"),
		Metrics:    c.Metrics,
		Events:     c.SSEHub.HandleSSE,
	})
}

// OpsServer builds the health and metrics listener
func (c *Container) OpsServer() *api.OpsServer {
	return api.NewOpsServer(c.Records, c.Registry, api.OpsConfig{
		Pprof: c.Config.Ops.PprofEnabled,
	})
}

// Shutdown gracefully shuts down all components
func (c *Container) Shutdown(ctx context.Context) error {
	if c.SSEHub != nil {
		c.SSEHub.Close()
	}
	if c.Repo != nil {
		return c.Repo.Close()
	}
	return nil
}
