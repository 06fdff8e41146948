package usecase

import (
	"context"
	"fmt"
	"io"

	"github.com/semmidev/siteshot-storage/internal/domain"
	"github.com/semmidev/siteshot-storage/internal/pagename"
)

type Logger interface {
	Debugf(template string, args ...interface{})
	Infof(template string, args ...interface{})
	Warnf(template string, args ...interface{})
	Errorf(template string, args ...interface{})
}

// Notifier delivers a short human readable message, e.g. to a chat.
type Notifier interface {
	Notify(ctx context.Context, message string) error
}

type JobFilesOptions struct {
	Access domain.AccessPolicy

	// MaxConcurrentUploads caps in-flight uploads per job. Zero means no cap.
	MaxConcurrentUploads int

	Notifier           Notifier
	NotifyOnlyFailures bool
}

// JobFiles moves a job's screenshot artifacts between the local disk and
// the blob store.
type JobFiles struct {
	store    domain.BlobStore
	logger   Logger
	opts     JobFilesOptions
	pageName func(rawURL string) string
}

func NewJobFiles(store domain.BlobStore, logger Logger, opts JobFilesOptions) *JobFiles {
	if opts.Access == "" {
		opts.Access = domain.AccessPrivate
	}
	return &JobFiles{
		store:    store,
		logger:   logger,
		opts:     opts,
		pageName: pagename.FromURL,
	}
}

// Setup makes sure the storage container exists.
func (uc *JobFiles) Setup(ctx context.Context) error {
	created, err := uc.store.EnsureContainer(ctx, uc.opts.Access)
	if err != nil {
		return fmt.Errorf("ensure container: %w", err)
	}

	if created {
		uc.logger.Infof("Storage container created")
	} else {
		uc.logger.Infof("Storage container already existed")
	}
	return nil
}

// SaveFileToLocal downloads key to localPath. There is no retry and no
// existence check; a missing key surfaces as domain.ErrNotFound.
func (uc *JobFiles) SaveFileToLocal(ctx context.Context, remoteKey, localPath string) error {
	return uc.store.GetFile(ctx, remoteKey, localPath)
}

// StreamFile writes the object stored under key into w.
func (uc *JobFiles) StreamFile(ctx context.Context, key string, w io.Writer) error {
	if err := uc.store.GetStream(ctx, key, w); err != nil {
		return fmt.Errorf("stream %s: %w", key, err)
	}
	return nil
}
