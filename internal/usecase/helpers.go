package usecase

import (
	"os"

	"github.com/semmidev/siteshot-storage/internal/domain"
)

// CreateDirIfNotExists creates dir and its parents. An existing directory
// is not an error, so concurrent jobs can race on the same path.
func CreateDirIfNotExists(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return &domain.DirectoryError{Path: dir, Err: err}
	}
	return nil
}
