package sources

import (
	"context"
	"fmt"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/remotelist/jobs-aggregator/internal/entities"
	"github.com/remotelist/jobs-aggregator/internal/fetch"
	"github.com/remotelist/jobs-aggregator/internal/logger"
)

const (
	wwrName        = "weworkremotely"
	wwrDefaultLogo = "https://weworkremotely.com/assets/wwr-logo.png"
)

// Category feeds fetched per run. The slug doubles as the default tag for
// items whose feed carries no explicit categories.
var wwrFeeds = map[string]string{
	"programming":      "https://weworkremotely.com/categories/remote-programming-jobs.rss",
	"design":           "https://weworkremotely.com/categories/remote-design-jobs.rss",
	"devops-sysadmin":  "https://weworkremotely.com/categories/remote-devops-sysadmin-jobs.rss",
	"customer-support": "https://weworkremotely.com/categories/remote-customer-support-jobs.rss",
}

// WeWorkRemotely aggregates several category feeds. Feeds are fetched
// concurrently and individual feed failures are tolerated: the successful
// feeds' items are still returned.
type WeWorkRemotely struct {
	client *fetch.Client
	feeds  map[string]string
}

func NewWeWorkRemotely(client *fetch.Client) *WeWorkRemotely {
	return &WeWorkRemotely{client: client, feeds: wwrFeeds}
}

func (s *WeWorkRemotely) Name() string {
	return wwrName
}

func (s *WeWorkRemotely) Fetch(ctx context.Context) ([]entities.Job, error) {

	type feedResult struct {
		jobs []entities.Job
		err  error
	}

	results := make([]feedResult, 0, len(s.feeds))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for category, url := range s.feeds {
		wg.Add(1)
		go func(category, url string) {
			defer wg.Done()
			jobs, err := s.fetchFeed(ctx, category, url)
			mu.Lock()
			results = append(results, feedResult{jobs: jobs, err: err})
			mu.Unlock()
		}(category, url)
	}
	wg.Wait()

	var jobs []entities.Job
	failed := 0
	for _, result := range results {
		if result.err != nil {
			failed++
			log.WithField(logger.ErrorTypeField, logger.ErrorTypeSourceAPI).
				Errorf("weworkremotely: feed failed: %v", result.err)
			continue
		}
		jobs = append(jobs, result.jobs...)
	}

	if failed == len(s.feeds) {
		return nil, fmt.Errorf("all %d feeds failed", failed)
	}
	return jobs, nil
}

func (s *WeWorkRemotely) fetchFeed(ctx context.Context, category, url string) ([]entities.Job, error) {

	body, err := s.client.GetFeed(ctx, wwrName, url)
	if err != nil {
		return nil, err
	}

	var jobs []entities.Job
	for _, item := range extractItems(string(body)) {

		if item.Title == "" || item.Link == "" {
			log.Debugf("weworkremotely: skipping item without title or link in %s feed", category)
			continue
		}

		job := s.toJob(item, category)
		if err := job.Validate(); err != nil {
			log.Warnf("weworkremotely: dropping malformed item: %v", err)
			continue
		}
		jobs = append(jobs, job)
	}

	return jobs, nil
}

func (s *WeWorkRemotely) toJob(item rssItem, category string) entities.Job {

	// WWR titles follow the "Company: Position" convention.
	company, position := item.Title, ""
	if idx := strings.Index(item.Title, ": "); idx >= 0 {
		company = strings.TrimSpace(item.Title[:idx])
		position = strings.TrimSpace(item.Title[idx+2:])
	}

	date := ""
	if t, ok := parseSourceDate(item.PubDate); ok {
		date = entities.NormalizeDate(t)
	}

	tags := item.Categories
	if len(tags) == 0 {
		tags = []string{category}
	}

	return entities.Job{
		ID:          deriveID("wwr", item.Link),
		Company:     company,
		Position:    position,
		Date:        date,
		Image:       entities.Image{URI: ExtractImageURL(item.Description, wwrDefaultLogo)},
		Description: StripHTML(item.Description),
		URL:         item.Link,
		Tags:        tags,
		Source:      wwrName,
	}
}
