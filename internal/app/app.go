package app

import (
	"context"
	"fmt"
	"io"

	"github.com/semmidev/siteshot-storage/internal/adapter/notifier"
	"github.com/semmidev/siteshot-storage/internal/adapter/storage"
	"github.com/semmidev/siteshot-storage/internal/config"
	"github.com/semmidev/siteshot-storage/internal/domain"
	"github.com/semmidev/siteshot-storage/internal/infrastructure/logger"
	"github.com/semmidev/siteshot-storage/internal/infrastructure/scheduler"
	"github.com/semmidev/siteshot-storage/internal/usecase"
)

type App struct {
	config    *config.Config
	logger    *logger.Logger
	store     domain.BlobStore
	jobFiles  *usecase.JobFiles
	cleanupUC *usecase.CacheCleanup
	scheduler *scheduler.Scheduler
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	log, err := logger.New(logger.Options{
		App:   cfg.App.Name,
		Level: cfg.App.LogLevel,
		File:  cfg.App.LogFile,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return newWithLogger(ctx, cfg, log)
}

func newWithLogger(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	log.Debugf("Starting %s", cfg.App.Name)

	store, err := initializeStore(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	jobFiles := usecase.NewJobFiles(store, log, usecase.JobFilesOptions{
		Access:               domain.AccessPolicy(cfg.Storage.Access),
		MaxConcurrentUploads: cfg.Jobs.MaxConcurrentUploads,
		Notifier:             initializeNotifier(cfg, log),
		NotifyOnlyFailures:   cfg.Notify.Telegram.OnlyFailures,
	})

	return &App{
		config:    cfg,
		logger:    log,
		store:     store,
		jobFiles:  jobFiles,
		cleanupUC: usecase.NewCacheCleanup(cfg.Cache.Root, cfg.Cache.RetentionDays, log),
		scheduler: scheduler.New(log),
	}, nil
}

func initializeStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (domain.BlobStore, error) {
	switch cfg.Storage.Type {
	case "s3":
		store, err := storage.NewS3(ctx, &cfg.Storage)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize S3: %w", err)
		}
		log.Debugf("✓ S3 storage (bucket: %s)", cfg.Storage.Container)
		return store, nil

	case "local":
		store, err := storage.NewLocal(cfg.Storage.LocalPath, cfg.Storage.Container)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize local storage: %w", err)
		}
		log.Debugf("✓ Local storage (%s)", cfg.Storage.LocalPath)
		return store, nil

	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Storage.Type)
	}
}

// A broken notifier must not stop uploads, so failures here only disable it.
func initializeNotifier(cfg *config.Config, log *logger.Logger) usecase.Notifier {
	if !cfg.Notify.Telegram.Enabled {
		return nil
	}

	n, err := notifier.NewTelegram(&cfg.Notify.Telegram)
	if err != nil {
		log.Errorf("Failed to initialize Telegram: %v", err)
		return nil
	}
	log.Debugf("✓ Telegram notifications enabled")
	return n
}

func (a *App) Setup(ctx context.Context) error {
	return a.jobFiles.Setup(ctx)
}

func (a *App) UploadJob(ctx context.Context, job domain.Job) (*domain.UploadReport, error) {
	return a.jobFiles.UploadJob(ctx, job)
}

// FetchFilesForJob returns a copy of job whose pages carry the prepared
// image paths. On failure the pages prepared so far are kept.
func (a *App) FetchFilesForJob(ctx context.Context, job domain.Job) (domain.Job, error) {
	pages, err := a.jobFiles.FetchFilesForJob(ctx, job)
	if pages != nil {
		merged := make([]domain.Page, len(job.Pages))
		copy(merged, job.Pages)
		copy(merged, pages)
		job.Pages = merged
	}
	return job, err
}

func (a *App) StreamFile(ctx context.Context, key string, w io.Writer) error {
	return a.jobFiles.StreamFile(ctx, key, w)
}

func (a *App) CleanupCache(ctx context.Context) error {
	return a.cleanupUC.Execute(ctx)
}

// Run ensures the container and runs the cache cleanup on its schedule
// until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if err := a.Setup(ctx); err != nil {
		return err
	}

	if a.config.CacheCleanupEnabled() {
		schedule := a.config.Cache.CleanupSchedule
		a.logger.Infof("Scheduling cache cleanup: %s", schedule)
		if err := a.scheduler.AddJob("cache cleanup", schedule, a.cleanupUC.Execute); err != nil {
			return fmt.Errorf("failed to schedule cache cleanup: %w", err)
		}
	} else {
		a.logger.Infof("Cache cleanup disabled")
	}

	a.scheduler.Start()
	a.logger.Infof("%s running (storage: %s, container: %s)",
		a.config.App.Name, a.config.Storage.Type, a.config.Storage.Container)

	<-ctx.Done()
	return nil
}

func (a *App) Shutdown() {
	a.logger.Debugf("Shutting down application...")
	a.scheduler.Stop()
	a.logger.Close()
}
