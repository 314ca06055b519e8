package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/remotelist/jobs-aggregator/internal/entities"
	"github.com/remotelist/jobs-aggregator/internal/fetch"
)

const (
	himalayasName        = "himalayas"
	himalayasAPIURL      = "https://himalayas.app/jobs/api"
	himalayasDefaultLogo = "https://himalayas.app/images/logo.png"

	// The response is a wrapper array, not a bare job list; the job array
	// sits at this index. Documented provider quirk.
	himalayasJobsIndex = 2
)

type himalayasJob struct {
	GUID                 string   `json:"guid"`
	CompanyName          string   `json:"companyName"`
	Title                string   `json:"title"`
	PubDate              int64    `json:"pubDate"`
	Description          string   `json:"description"`
	ApplicationLink      string   `json:"applicationLink"`
	Categories           []string `json:"categories"`
	CompanyLogo          string   `json:"companyLogo"`
	LocationRestrictions []string `json:"locationRestrictions"`
}

// Himalayas fetches the Himalayas jobs API. Ids are prefixed with the source
// name: the provider uses bare numeric guids that would collide with other
// sources' numeric ids.
type Himalayas struct {
	client *fetch.Client
	apiURL string
}

func NewHimalayas(client *fetch.Client) *Himalayas {
	return &Himalayas{client: client, apiURL: himalayasAPIURL}
}

func (s *Himalayas) Name() string {
	return himalayasName
}

func (s *Himalayas) Fetch(ctx context.Context) ([]entities.Job, error) {

	body, err := s.client.GetJSON(ctx, himalayasName, s.apiURL)
	if err != nil {
		return nil, err
	}

	var wrapper []json.RawMessage
	if err := json.NewDecoder(bytes.NewReader(body)).Decode(&wrapper); err != nil {
		return nil, fmt.Errorf("error decoding JSON response: %v", err)
	}
	if len(wrapper) <= himalayasJobsIndex {
		return nil, fmt.Errorf("unexpected response shape: wrapper has %d elements", len(wrapper))
	}

	var srcJobs []himalayasJob
	if err := json.Unmarshal(wrapper[himalayasJobsIndex], &srcJobs); err != nil {
		return nil, fmt.Errorf("error decoding job array: %v", err)
	}

	var jobs []entities.Job
	for _, src := range srcJobs {
		if src.GUID == "" {
			log.Warn("himalayas: skipping record without guid")
			continue
		}
		job := s.toJob(src)
		if err := job.Validate(); err != nil {
			log.Warnf("himalayas: dropping malformed job: %v", err)
			continue
		}
		jobs = append(jobs, job)
	}

	return jobs, nil
}

func (s *Himalayas) toJob(src himalayasJob) entities.Job {

	date := ""
	if src.PubDate > 0 {
		date = entities.NormalizeDate(time.Unix(src.PubDate, 0))
	}

	image := src.CompanyLogo
	if image == "" {
		image = himalayasDefaultLogo
	}

	tags := src.Categories
	if len(tags) == 0 {
		tags = []string{entities.DefaultTag}
	}

	return entities.Job{
		ID:          himalayasName + "-" + src.GUID,
		Company:     src.CompanyName,
		Position:    src.Title,
		Date:        date,
		Image:       entities.Image{URI: image},
		Description: StripHTML(src.Description),
		URL:         src.ApplicationLink,
		Tags:        tags,
		Source:      himalayasName,
		Location:    strings.Join(src.LocationRestrictions, ", "),
	}
}
