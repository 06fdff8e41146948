package domain

import (
	"go.uber.org/multierr"
)

// Job is one site comparison run. Scans[0] is the current scan and
// Scans[1] the previous one.
type Job struct {
	ID         string `json:"_id,omitempty"`
	Folder     string `json:"folder"`
	SubFolder  string `json:"subFolder"`
	SiteFolder string `json:"siteFolder"`
	SiteID     string `json:"siteId"`
	Scans      []Scan `json:"scans"`
	Pages      []Page `json:"pages"`
}

type Scan struct {
	ID string `json:"_id"`
}

// Page is one captured URL. The path fields stay empty until the job's
// assets are prepared.
type Page struct {
	URL string `json:"url"`

	PreviousImagePath     string `json:"previousImagePath,omitempty"`
	CurrentImagePath      string `json:"currentImagePath,omitempty"`
	CurrentImageThumbPath string `json:"currentImageThumbPath,omitempty"`
	DiffImagePath         string `json:"diffImagePath,omitempty"`
	DiffImageThumbPath    string `json:"diffImageThumbPath,omitempty"`
	OverlayImagePath      string `json:"overlayImagePath,omitempty"`
	OverlayImageThumbPath string `json:"overlayImageThumbPath,omitempty"`

	HasBaseline bool `json:"hasBaseline"`
}

func (j Job) CurrentScan() Scan {
	return j.Scans[0]
}

func (j Job) PreviousScan() Scan {
	return j.Scans[1]
}

type UploadResult struct {
	Name string
	Key  string
	Err  error
}

type UploadReport struct {
	JobID   string
	Results []UploadResult
}

func (r *UploadReport) Failed() []UploadResult {
	var failed []UploadResult
	for _, res := range r.Results {
		if res.Err != nil {
			failed = append(failed, res)
		}
	}
	return failed
}

func (r *UploadReport) Uploaded() int {
	return len(r.Results) - len(r.Failed())
}

// Err combines every failed upload into one error, nil when all succeeded.
func (r *UploadReport) Err() error {
	var err error
	for _, res := range r.Results {
		err = multierr.Append(err, res.Err)
	}
	return err
}
