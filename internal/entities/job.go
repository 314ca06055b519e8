package entities

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

// DateLayout is the single textual timestamp representation every adapter
// normalizes to, regardless of the source's native date format.
const DateLayout = "Mon, 02 Jan 2006 15:04:05 GMT"

// DefaultTag is attached when a source provides no categories of its own.
const DefaultTag = "remote"

var validate = validator.New()

type Image struct {
	URI string `json:"uri" validate:"required"`
}

type Job struct {
	ID          string   `json:"id" validate:"required"`
	Company     string   `json:"company"`
	Position    string   `json:"position"`
	Date        string   `json:"date" validate:"required"`
	Image       Image    `json:"image"`
	Description string   `json:"description"`
	URL         string   `json:"url" validate:"required"`
	Tags        []string `json:"tags" validate:"min=1"`
	Source      string   `json:"source" validate:"required"`
	Location    string   `json:"location,omitempty"`
}

// Validate enforces the adapter contract: adapters drop or repair malformed
// records instead of emitting partial ones.
func (j Job) Validate() error {
	if err := validate.Struct(j); err != nil {
		return err
	}
	if j.Company == "" && j.Position == "" {
		return errors.New("job has neither company nor position")
	}
	if _, err := time.Parse(DateLayout, j.Date); err != nil {
		return errors.Wrapf(err, "job %s has unparseable date %q", j.ID, j.Date)
	}
	return nil
}

// ParsedDate returns the job's publication time. Unparseable dates collapse
// to epoch zero so they sort as oldest.
func (j Job) ParsedDate() time.Time {
	t, err := time.Parse(DateLayout, j.Date)
	if err != nil {
		return time.Unix(0, 0).UTC()
	}
	return t
}

// NormalizeDate renders any source timestamp in the canonical layout.
func NormalizeDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}
