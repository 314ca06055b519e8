package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/remotelist/jobs-aggregator/internal/entities"
	"github.com/remotelist/jobs-aggregator/internal/fetch"
	"github.com/remotelist/jobs-aggregator/internal/logger"
)

const (
	remoteOKName        = "remoteok"
	remoteOKAPIURL      = "https://remoteok.com/api"
	remoteOKDefaultLogo = "https://remoteok.com/assets/img/logo.png"
)

// remoteOKJob mirrors one element of the RemoteOK response array.
type remoteOKJob struct {
	ID          string   `json:"id"`
	Company     string   `json:"company"`
	Position    string   `json:"position"`
	Date        string   `json:"date"`
	Epoch       int64    `json:"epoch"`
	Description string   `json:"description"`
	URL         string   `json:"url"`
	Tags        []string `json:"tags"`
	CompanyLogo string   `json:"company_logo"`
	Logo        string   `json:"logo"`
	Location    string   `json:"location"`
}

// RemoteOK fetches the public RemoteOK API. The provider places a non-job
// legal-notice record first in the response array; it is discarded.
type RemoteOK struct {
	client *fetch.Client
	apiURL string
}

func NewRemoteOK(client *fetch.Client) *RemoteOK {
	return &RemoteOK{client: client, apiURL: remoteOKAPIURL}
}

func (s *RemoteOK) Name() string {
	return remoteOKName
}

func (s *RemoteOK) Fetch(ctx context.Context) ([]entities.Job, error) {

	body, err := s.client.GetJSON(ctx, remoteOKName, s.apiURL)
	if err != nil {
		return nil, err
	}

	var raw []json.RawMessage
	if err := json.NewDecoder(bytes.NewReader(body)).Decode(&raw); err != nil {
		return nil, fmt.Errorf("error decoding JSON response: %v", err)
	}

	if len(raw) > 0 && isLegalNotice(raw[0]) {
		raw = raw[1:]
	}

	var jobs []entities.Job
	for _, message := range raw {

		var src remoteOKJob
		if err := json.Unmarshal(message, &src); err != nil {
			log.WithField(logger.ErrorTypeField, logger.ErrorTypeSourceAPI).
				Warnf("remoteok: skipping undecodable record: %v", err)
			continue
		}

		job := s.toJob(src)
		if err := job.Validate(); err != nil {
			log.Warnf("remoteok: dropping malformed job: %v", err)
			continue
		}
		jobs = append(jobs, job)
	}

	return jobs, nil
}

func (s *RemoteOK) toJob(src remoteOKJob) entities.Job {

	date := ""
	if t, ok := parseSourceDate(src.Date); ok {
		date = entities.NormalizeDate(t)
	} else if src.Epoch > 0 {
		date = entities.NormalizeDate(time.Unix(src.Epoch, 0))
	}

	image := src.CompanyLogo
	if image == "" {
		image = src.Logo
	}
	if image == "" {
		image = remoteOKDefaultLogo
	}

	tags := src.Tags
	if len(tags) == 0 {
		tags = []string{entities.DefaultTag}
	}

	return entities.Job{
		ID:          src.ID,
		Company:     src.Company,
		Position:    src.Position,
		Date:        date,
		Image:       entities.Image{URI: image},
		Description: StripHTML(src.Description),
		URL:         src.URL,
		Tags:        tags,
		Source:      remoteOKName,
		Location:    src.Location,
	}
}

// isLegalNotice recognizes the sentinel the provider prepends to its array:
// it carries legal text and no job id.
func isLegalNotice(message json.RawMessage) bool {
	var probe struct {
		ID    string `json:"id"`
		Legal string `json:"legal"`
	}
	if err := json.Unmarshal(message, &probe); err != nil {
		return true
	}
	return probe.ID == "" || probe.Legal != ""
}
