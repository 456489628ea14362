// Package app wires the service's components together from configuration.
package app

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shibalabs/inspection-console/internal/blobstore"
	"github.com/shibalabs/inspection-console/internal/caselog"
	"github.com/shibalabs/inspection-console/internal/cases"
	"github.com/shibalabs/inspection-console/internal/config"
	"github.com/shibalabs/inspection-console/internal/database"
	"github.com/shibalabs/inspection-console/internal/google"
	"github.com/shibalabs/inspection-console/internal/httpapi"
	"github.com/shibalabs/inspection-console/internal/images"
	"github.com/shibalabs/inspection-console/internal/logging"
	"github.com/shibalabs/inspection-console/internal/moderation"
	"github.com/shibalabs/inspection-console/internal/submit"
)

// App holds all application dependencies
type App struct {
	Config     *config.Config
	Logger     *logging.Logger
	Registry   *cases.Registry
	ImageSvc   *images.Service
	SubmitSvc  *submit.Service
	HTTPServer *httpapi.Server

	blob    blobstore.Store
	caseLog caselog.Log
	db      *database.DB
}

// New creates and initializes a new App instance
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	app := &App{Config: cfg}

	app.Logger = app.initLogger()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := app.initBlobStore(ctx); err != nil {
		return nil, err
	}
	if err := app.initCaseLog(ctx); err != nil {
		return nil, err
	}
	app.initImageService(ctx)

	app.Registry = cases.NewRegistry(cfg.App.AggregateThreshold)
	app.SubmitSvc = submit.NewService(app.blob, app.caseLog, submit.Config{
		RootFolderID:  cfg.Google.RootFolderID,
		WeightVersion: cfg.App.WeightVersion,
	}, app.Logger)

	app.HTTPServer = httpapi.New(app.Registry, app.ImageSvc, app.SubmitSvc, app.Logger)

	return app, nil
}

// Run starts the HTTP server and blocks until it stops.
func (a *App) Run() error {
	a.Logger.Info("Starting HTTP server", logging.WithField("addr", a.Config.Server.HTTPAddr))
	return a.HTTPServer.Start(a.Config.Server.HTTPAddr)
}

// Shutdown gracefully shuts down the application
func (a *App) Shutdown(ctx context.Context) error {
	if a.HTTPServer != nil {
		if err := a.HTTPServer.Shutdown(ctx); err != nil {
			a.Logger.Error("HTTP server shutdown error", logging.WithField("error", err.Error()))
		}
	}

	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.Logger.Error("Database close error", logging.WithField("error", err.Error()))
		}
	}

	a.Logger.Sync()
	return nil
}

func (a *App) initLogger() *logging.Logger {
	level := logging.LevelInfo
	switch a.Config.Logging.Level {
	case "debug":
		level = logging.LevelDebug
	case "warn":
		level = logging.LevelWarn
	case "error":
		level = logging.LevelError
	}
	return logging.New(level)
}

func (a *App) initBlobStore(ctx context.Context) error {
	switch a.Config.Blob.Backend {
	case "local":
		a.Logger.Info("Using local-directory blob store", logging.WithField("dir", a.Config.Blob.LocalDir))
		store, err := blobstore.NewLocalDirStore(a.Config.Blob.LocalDir)
		if err != nil {
			return err
		}
		a.blob = store
	default:
		a.Logger.Info("Using Google Drive blob store")
		store, err := blobstore.NewDriveStore(ctx, google.ClientOptions(a.Config.Google.Credentials)...)
		if err != nil {
			return err
		}
		a.blob = store
	}
	return nil
}

func (a *App) initCaseLog(ctx context.Context) error {
	switch a.Config.CaseLog.Backend {
	case "postgres":
		db, err := database.New(database.Config{
			Host:            a.Config.Database.Host,
			Port:            a.Config.Database.Port,
			User:            a.Config.Database.User,
			Password:        a.Config.Database.Password,
			Database:        a.Config.Database.Database,
			SSLMode:         a.Config.Database.SSLMode,
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
		})
		if err != nil {
			return err
		}
		a.Logger.Info("Using PostgreSQL tabular log",
			logging.WithField("database", a.Config.Database.Database))
		a.db = db
		a.caseLog = database.NewCaseLogStore(db)
	default:
		a.Logger.Info("Using Google Sheets tabular log",
			logging.WithField("spreadsheet_id", a.Config.Google.SpreadsheetID))
		log, err := caselog.NewSheetsLog(ctx, a.Config.Google.SpreadsheetID,
			google.ClientOptions(a.Config.Google.Credentials)...)
		if err != nil {
			return err
		}
		a.caseLog = log
	}
	return nil
}

func (a *App) initImageService(ctx context.Context) {
	var moderator moderation.Moderator
	if a.Config.Moderation.Enabled {
		detector, err := moderation.NewAWSDetector(ctx, a.Config.Moderation.AWSRegion)
		if err != nil {
			a.Logger.Warn("Failed to initialize Rekognition, photo screening disabled",
				logging.WithField("error", err.Error()))
		} else {
			moderator = moderation.NewService(detector, a.Config.Moderation.RejectConfidence)
			a.Logger.Info("Photo screening enabled",
				logging.WithField("region", a.Config.Moderation.AWSRegion))
		}
	}

	pending := a.initPendingStore()
	a.ImageSvc = images.NewService(moderator, pending, a.Config.Moderation.Timeout)
}

func (a *App) initPendingStore() images.PendingStore {
	switch a.Config.Uploads.Backend {
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: a.Config.Uploads.RedisAddr})
		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			a.Logger.Error("Failed to connect to Redis, falling back to memory pending store",
				logging.WithField("error", err.Error()))
			return images.NewInMemoryPendingStore(a.Config.Uploads.TTL)
		}
		a.Logger.Info("Using Redis pending-upload store",
			logging.WithField("addr", a.Config.Uploads.RedisAddr))
		return images.NewRedisPendingStore(client, a.Config.Uploads.TTL)
	default:
		a.Logger.Info("Using in-memory pending-upload store")
		return images.NewInMemoryPendingStore(a.Config.Uploads.TTL)
	}
}
