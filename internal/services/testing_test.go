package services

import (
	"context"
	"sync"

	"github.com/remotelist/jobs-aggregator/internal/entities"
)

type fakeAggregator struct {
	result entities.AggregationResult
	panics bool
	calls  int
}

func (f *fakeAggregator) Aggregate(_ context.Context) entities.AggregationResult {
	f.calls++
	if f.panics {
		panic("aggregation blew up")
	}
	return f.result
}

type fakeStore struct {
	mu sync.Mutex

	generation *entities.CacheGeneration
	loadErr    error
	saveErr    error

	savedJobs []entities.Job
	savedMeta entities.AggregationMetadata
	saves     int
}

func (f *fakeStore) Load(_ context.Context) (*entities.CacheGeneration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f.generation, nil
}

func (f *fakeStore) Save(_ context.Context, jobs []entities.Job, meta entities.AggregationMetadata) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.savedJobs = jobs
	f.savedMeta = meta
	f.saves++
	return nil
}

func sampleJobs() []entities.Job {
	return []entities.Job{
		{
			ID:     "job-1",
			Date:   "Thu, 20 Aug 2026 10:00:00 GMT",
			URL:    "https://example.com/jobs/1",
			Tags:   []string{"remote"},
			Source: "test",
		},
	}
}
