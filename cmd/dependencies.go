package cmd

import (
	"context"
	"fmt"
	"playstore-predictor/config"
	"playstore-predictor/internal/service"
	"playstore-predictor/pkg/logger"
	"playstore-predictor/pkg/postgres"
	"playstore-predictor/pkg/queue"

	goValidator "github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

type AppDependency struct {
	db        *postgres.DB
	queue     queue.Queue
	cfg       *config.Config
	log       *logger.Logger
	validator *goValidator.Validate
	echo      *echo.Echo
}

type queueMode int

const (
	queueNone queueMode = iota
	queueRedis
	// queuePredictor keeps the queue in process, with a database for the
	// embedded uploader, when predictor.embedded_uploader is set, and uses
	// redis otherwise.
	queuePredictor
)

type dependencyOptions struct {
	database bool
	queue    queueMode
}

func NewAppDependency(ctx context.Context, opts dependencyOptions) (*AppDependency, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Encoding)
	if err != nil {
		return nil, err
	}

	dep := &AppDependency{
		cfg:       cfg,
		log:       log,
		validator: service.NewValidator(),
		echo:      echo.New(),
	}
	dep.echo.HideBanner = true

	mode := opts.queue
	if mode == queuePredictor {
		mode = queueRedis
		if cfg.Predictor.EmbeddedUploader {
			opts.database = true
			dep.queue = queue.NewMemory(256)
			mode = queueNone
		}
	}

	if opts.database {
		db, err := postgres.NewDB(cfg.DB, log)
		if err != nil {
			log.Error("Failed to connect to database", logger.ErrorField(err))
			return nil, err
		}
		dep.db = db
	}

	if mode == queueRedis {
		q, err := queue.NewRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.Queue, cfg.Redis.BlockTimeout)
		if err != nil {
			log.Error("Failed to connect to redis", logger.ErrorField(err), logger.StringField("addr", cfg.Redis.Addr))
			_ = dep.Close()
			return nil, fmt.Errorf("failed to open upload queue: %w", err)
		}
		dep.queue = q
	}

	return dep, nil
}

// gormDB returns nil when the process runs without a database.
func (d *AppDependency) gormDB() *gorm.DB {
	if d.db == nil {
		return nil
	}
	return d.db.DB
}

func (d *AppDependency) Close() error {
	d.log.Info("Closing app dependency")
	if d.queue != nil {
		if err := d.queue.Close(); err != nil {
			d.log.Warn("Failed to close upload queue", logger.ErrorField(err))
		}
	}
	var err error
	if d.db != nil {
		err = d.db.Close()
	}
	_ = d.log.Sync()
	return err
}
