package app

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/semmidev/siteshot-storage/internal/domain"
)

// LoadJob reads a job record as written by the orchestrator. Jobs without
// an id get a random one so their log lines can still be correlated.
func LoadJob(path string) (domain.Job, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.Job{}, fmt.Errorf("failed to open job file: %w", err)
	}
	defer f.Close()

	return DecodeJob(f)
}

func DecodeJob(r io.Reader) (domain.Job, error) {
	var job domain.Job
	if err := json.NewDecoder(r).Decode(&job); err != nil {
		return domain.Job{}, fmt.Errorf("failed to decode job: %w", err)
	}

	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	return job, nil
}

func WriteJob(w io.Writer, job domain.Job) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(job); err != nil {
		return fmt.Errorf("failed to encode job: %w", err)
	}
	return nil
}
