package usecase

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/semmidev/siteshot-storage/internal/domain"
	"github.com/sourcegraph/conc/pool"
)

const maxReportedFailures = 10

// UploadJob uploads every file directly inside job.Folder to
// job.SubFolder/<name>. All uploads are attempted even when some fail; the
// report is returned once every attempt has finished. Only a folder listing
// failure is returned as an error.
func (uc *JobFiles) UploadJob(ctx context.Context, job domain.Job) (*domain.UploadReport, error) {
	start := time.Now()

	entries, err := os.ReadDir(job.Folder)
	if err != nil {
		return nil, &domain.ListingError{Folder: job.Folder, Err: err}
	}

	uc.logger.Infof("[%s] Uploading %s to %s...", job.ID, job.Folder, job.SubFolder)

	p := pool.NewWithResults[domain.UploadResult]()
	if uc.opts.MaxConcurrentUploads > 0 {
		p = p.WithMaxGoroutines(uc.opts.MaxConcurrentUploads)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			uc.logger.Debugf("[%s] Skipping directory %s", job.ID, entry.Name())
			continue
		}

		name := entry.Name()
		p.Go(func() domain.UploadResult {
			return uc.uploadFile(ctx, job, name)
		})
	}

	results := p.Wait()
	sort.Slice(results, func(i, j int) bool {
		return results[i].Name < results[j].Name
	})

	report := &domain.UploadReport{JobID: job.ID, Results: results}
	if failed := len(report.Failed()); failed > 0 {
		uc.logger.Warnf("[%s] Upload finished in %s: %d/%d file(s) failed",
			job.ID, time.Since(start).Round(time.Millisecond), failed, len(results))
	} else {
		uc.logger.Infof("[%s] Uploaded %d file(s) in %s",
			job.ID, len(results), time.Since(start).Round(time.Millisecond))
	}

	uc.notify(ctx, report)

	return report, nil
}

func (uc *JobFiles) uploadFile(ctx context.Context, job domain.Job, name string) domain.UploadResult {
	key := path.Join(job.SubFolder, name)
	localPath := filepath.Join(job.Folder, name)

	if err := uc.store.PutFile(ctx, key, localPath); err != nil {
		uc.logger.Errorf("[%s] Failed to upload %s: %v", job.ID, name, err)
		return domain.UploadResult{
			Name: name,
			Key:  key,
			Err:  &domain.TransferError{Op: "upload", Key: key, Path: localPath, Err: err},
		}
	}

	uc.logger.Debugf("[%s] Uploaded %s", job.ID, key)
	return domain.UploadResult{Name: name, Key: key}
}

func (uc *JobFiles) notify(ctx context.Context, report *domain.UploadReport) {
	if uc.opts.Notifier == nil {
		return
	}
	if uc.opts.NotifyOnlyFailures && len(report.Failed()) == 0 {
		return
	}

	if err := uc.opts.Notifier.Notify(ctx, FormatUploadReport(report)); err != nil {
		uc.logger.Warnf("[%s] Failed to send upload notification: %v", report.JobID, err)
	}
}

func FormatUploadReport(report *domain.UploadReport) string {
	failed := report.Failed()

	var b strings.Builder
	if len(failed) == 0 {
		fmt.Fprintf(&b, "✅ Job %s uploaded\n\n", report.JobID)
	} else {
		fmt.Fprintf(&b, "⚠️ Job %s uploaded with failures\n\n", report.JobID)
	}
	fmt.Fprintf(&b, "📁 Files: %d/%d", report.Uploaded(), len(report.Results))

	if len(failed) > 0 {
		b.WriteString("\n❌ Failed:")
		for i, res := range failed {
			if i == maxReportedFailures {
				fmt.Fprintf(&b, "\n  … and %d more", len(failed)-maxReportedFailures)
				break
			}
			fmt.Fprintf(&b, "\n  %s", res.Name)
		}
	}

	return b.String()
}
