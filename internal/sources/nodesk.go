package sources

import (
	"context"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/remotelist/jobs-aggregator/internal/entities"
	"github.com/remotelist/jobs-aggregator/internal/fetch"
)

const (
	noDeskName        = "nodesk"
	noDeskFeedURL     = "https://nodesk.co/remote-jobs/index.xml"
	noDeskDefaultLogo = "https://nodesk.co/images/nodesk-logo.png"
)

// NoDesk fetches a single RSS feed whose titles follow the
// "Position at Company" convention.
type NoDesk struct {
	client  *fetch.Client
	feedURL string
}

func NewNoDesk(client *fetch.Client) *NoDesk {
	return &NoDesk{client: client, feedURL: noDeskFeedURL}
}

func (s *NoDesk) Name() string {
	return noDeskName
}

func (s *NoDesk) Fetch(ctx context.Context) ([]entities.Job, error) {

	body, err := s.client.GetFeed(ctx, noDeskName, s.feedURL)
	if err != nil {
		return nil, err
	}

	var jobs []entities.Job
	for _, item := range extractItems(string(body)) {

		if item.Title == "" || item.Link == "" {
			log.Debug("nodesk: skipping item without title or link")
			continue
		}

		job := s.toJob(item)
		if err := job.Validate(); err != nil {
			log.Warnf("nodesk: dropping malformed item: %v", err)
			continue
		}
		jobs = append(jobs, job)
	}

	return jobs, nil
}

func (s *NoDesk) toJob(item rssItem) entities.Job {

	// Split on the last " at ": position names themselves may contain "at".
	position, company := item.Title, ""
	if idx := strings.LastIndex(item.Title, " at "); idx >= 0 {
		position = strings.TrimSpace(item.Title[:idx])
		company = strings.TrimSpace(item.Title[idx+4:])
	}

	date := ""
	if t, ok := parseSourceDate(item.PubDate); ok {
		date = entities.NormalizeDate(t)
	}

	tags := item.Categories
	if len(tags) == 0 {
		tags = tagsFromURL(item.Link)
	}

	return entities.Job{
		ID:          deriveID("nodesk", item.Link),
		Company:     company,
		Position:    position,
		Date:        date,
		Image:       entities.Image{URI: ExtractImageURL(item.Description, noDeskDefaultLogo)},
		Description: StripHTML(item.Description),
		URL:         item.Link,
		Tags:        tags,
		Source:      noDeskName,
	}
}

// tagsFromURL derives a tag from the listing URL's category path segment
// when the feed supplies no explicit categories.
func tagsFromURL(url string) []string {
	url = strings.TrimPrefix(url, "https://")
	url = strings.TrimPrefix(url, "http://")

	segments := strings.Split(url, "/")
	for i, segment := range segments {
		if segment == "remote-jobs" && i+1 < len(segments) && segments[i+1] != "" {
			return []string{strings.ReplaceAll(segments[i+1], "-", " ")}
		}
	}
	return []string{entities.DefaultTag}
}
