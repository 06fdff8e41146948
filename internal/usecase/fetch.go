package usecase

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"time"

	"github.com/semmidev/siteshot-storage/internal/domain"
)

// Suffixes of the images a diff job reads and writes for one page.
const (
	currentSuffix      = ".png"
	currentThumbSuffix = ".thumb.png"
	diffSuffix         = ".diff.png"
	diffThumbSuffix    = ".diff.thumb.png"
	overlaySuffix      = ".overlay.png"
	overlayThumbSuffix = ".overlay.thumb.png"
)

// FetchFilesForJob stages the previous scan's image of every page in the
// local cache and assigns the paths the current, diff and overlay images
// will be rendered to. Pages are handled one at a time in order. A missing
// previous image only clears HasBaseline; any other failure stops the run
// and the pages finished so far are returned with the error.
//
// The job is not modified; the prepared pages are returned.
func (uc *JobFiles) FetchFilesForJob(ctx context.Context, job domain.Job) ([]domain.Page, error) {
	if len(job.Scans) < 2 {
		return nil, domain.ErrMissingScans
	}
	previousID := job.PreviousScan().ID
	if previousID == "" {
		return nil, fmt.Errorf("%w: previous scan has no id", domain.ErrMissingScans)
	}

	if err := CreateDirIfNotExists(job.Folder); err != nil {
		return nil, err
	}
	if err := CreateDirIfNotExists(filepath.Join(job.SiteFolder, previousID)); err != nil {
		return nil, err
	}

	start := time.Now()
	uc.logger.Infof("[%s] Preparing %d page(s) of scan %s against scan %s",
		job.ID, len(job.Pages), job.CurrentScan().ID, previousID)

	pages := make([]domain.Page, 0, len(job.Pages))
	baselines := 0
	for i, page := range job.Pages {
		if err := ctx.Err(); err != nil {
			return pages, err
		}

		prepared, err := uc.downloadPreviousVersion(ctx, job, previousID, page)
		if err != nil {
			uc.logger.Errorf("[%s] Failed to prepare page %d (%s): %v", job.ID, i, page.URL, err)
			return pages, fmt.Errorf("page %d (%s): %w", i, page.URL, err)
		}
		if prepared.HasBaseline {
			baselines++
		}

		pages = append(pages, uc.setupCurrentVersion(job, prepared))
	}

	uc.logger.Infof("[%s] Prepared %d page(s), %d with a baseline, in %s",
		job.ID, len(pages), baselines, time.Since(start).Round(time.Millisecond))

	return pages, nil
}

func (uc *JobFiles) downloadPreviousVersion(ctx context.Context, job domain.Job, previousID string, page domain.Page) (domain.Page, error) {
	name := uc.pageName(page.URL) + currentSuffix
	key := path.Join(job.SiteID, previousID, name)

	page.PreviousImagePath = filepath.Join(job.SiteFolder, previousID, name)
	page.HasBaseline = false

	err := uc.SaveFileToLocal(ctx, key, page.PreviousImagePath)
	switch {
	case err == nil:
		page.HasBaseline = true
		uc.logger.Debugf("[%s] Downloaded baseline %s", job.ID, key)
	case domain.IsNotFound(err):
		uc.logger.Infof("[%s] No baseline for %s", job.ID, page.URL)
	default:
		return page, &domain.TransferError{Op: "download", Key: key, Path: page.PreviousImagePath, Err: err}
	}

	return page, nil
}

func (uc *JobFiles) setupCurrentVersion(job domain.Job, page domain.Page) domain.Page {
	base := filepath.Join(job.Folder, uc.pageName(page.URL))

	page.CurrentImagePath = base + currentSuffix
	page.CurrentImageThumbPath = base + currentThumbSuffix
	page.DiffImagePath = base + diffSuffix
	page.DiffImageThumbPath = base + diffThumbSuffix
	page.OverlayImagePath = base + overlaySuffix
	page.OverlayImageThumbPath = base + overlayThumbSuffix

	return page
}
