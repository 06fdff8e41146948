package usecase

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// CacheCleanup removes cached previous-scan directories
// (<root>/<site>/<scan>) that have not been touched for the retention period.
type CacheCleanup struct {
	root          string
	retentionDays int
	logger        Logger
	now           func() time.Time
}

func NewCacheCleanup(root string, retentionDays int, logger Logger) *CacheCleanup {
	return &CacheCleanup{
		root:          root,
		retentionDays: retentionDays,
		logger:        logger,
		now:           time.Now,
	}
}

func (uc *CacheCleanup) Execute(ctx context.Context) error {
	if uc.retentionDays <= 0 {
		return nil
	}

	uc.logger.Infof("Starting cache cleanup in %s, retention: %d days", uc.root, uc.retentionDays)
	cutoff := uc.now().AddDate(0, 0, -uc.retentionDays)

	sites, err := os.ReadDir(uc.root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			uc.logger.Infof("Cache root %s does not exist, nothing to clean", uc.root)
			return nil
		}
		return fmt.Errorf("read cache root: %w", err)
	}

	deleted := 0
	for _, site := range sites {
		if !site.IsDir() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		deleted += uc.cleanupSite(filepath.Join(uc.root, site.Name()), cutoff)
	}

	uc.logger.Infof("Cache cleanup completed, deleted %d scan folder(s)", deleted)
	return nil
}

func (uc *CacheCleanup) cleanupSite(siteDir string, cutoff time.Time) int {
	scans, err := os.ReadDir(siteDir)
	if err != nil {
		uc.logger.Warnf("Could not read %s: %v", siteDir, err)
		return 0
	}

	deleted := 0
	for _, scan := range scans {
		if !scan.IsDir() {
			continue
		}

		info, err := scan.Info()
		if err != nil {
			uc.logger.Warnf("Could not stat %s: %v", scan.Name(), err)
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}

		scanDir := filepath.Join(siteDir, scan.Name())
		uc.logger.Infof("Deleting cached scan %s", scanDir)
		if err := os.RemoveAll(scanDir); err != nil {
			uc.logger.Errorf("Failed to delete %s: %v", scanDir, err)
			continue
		}
		deleted++
	}

	return deleted
}
