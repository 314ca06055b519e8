package services

import (
	"context"
	"fmt"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"github.com/remotelist/jobs-aggregator/internal/entities"
	"github.com/remotelist/jobs-aggregator/internal/events"
	"github.com/remotelist/jobs-aggregator/internal/logger"
	"github.com/remotelist/jobs-aggregator/internal/metrics"
)

type jobsAggregator interface {
	Aggregate(ctx context.Context) entities.AggregationResult
}

type cacheStore interface {
	Save(ctx context.Context, jobs []entities.Job, meta entities.AggregationMetadata) error
	Load(ctx context.Context) (*entities.CacheGeneration, error)
}

// RefreshService periodically rebuilds the cache: it runs a full aggregation
// and writes the snapshot through the chunked cache store. Partial source
// failure is never an error here; only infrastructure failures (the cache
// write) propagate so the scheduler can record a failed run.
type RefreshService struct {
	aggregator jobsAggregator
	cache      cacheStore
	bus        EventBus.Bus
	cron       *cron.Cron
	budget     time.Duration
}

func NewRefreshService(bus EventBus.Bus, aggregator jobsAggregator, cache cacheStore,
	interval, budget time.Duration) (*RefreshService, error) {

	if interval <= 0 {
		return nil, errors.New("refresh interval must be greater than zero")
	}
	if budget <= 0 {
		return nil, errors.New("refresh budget must be greater than zero")
	}

	s := &RefreshService{
		aggregator: aggregator,
		cache:      cache,
		bus:        bus,
		cron:       cron.New(),
		budget:     budget,
	}

	_, err := s.cron.AddFunc(fmt.Sprintf("@every %s", interval), s.runScheduled)
	if err != nil {
		return nil, err
	}

	return s, nil
}

// Start begins the periodic schedule and fires one refresh immediately so
// the cache is populated without waiting for the first tick.
func (s *RefreshService) Start() {
	s.cron.Start()
	go s.runScheduled()
	log.Info("refresh scheduler started")
}

func (s *RefreshService) Stop() {
	s.cron.Stop()
}

func (s *RefreshService) runScheduled() {
	if err := s.Refresh(context.Background()); err != nil {
		metrics.RefreshFailuresCounter.Inc()
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeCache).
			Errorf("scheduled refresh failed: %v", err)
	}
}

// Refresh is the externally triggered cache refresh operation. The whole run
// is bounded by a hard wall-clock budget; because the cache write is atomic
// and happens only after the full aggregate completes, an abandoned run
// never leaves a partial generation behind.
func (s *RefreshService) Refresh(ctx context.Context) error {

	ctx, cancel := context.WithTimeout(ctx, s.budget)
	defer cancel()

	start := time.Now()
	log.Infof("running cache refresh at %v", start)

	result := s.aggregator.Aggregate(ctx)

	if err := s.cache.Save(ctx, result.Jobs, result.Metadata); err != nil {
		return errors.Wrap(err, "failed to persist aggregation result")
	}

	executionTime := time.Since(start)
	metrics.RefreshDuration.Observe(executionTime.Seconds())
	log.Infof("cache refresh ended after %v, %d jobs cached", executionTime, result.Metadata.JobCount)

	s.bus.Publish(events.RefreshCompletedTopic, events.RefreshCompleted{Metadata: result.Metadata})
	return nil
}
