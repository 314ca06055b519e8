package services

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/remotelist/jobs-aggregator/internal/entities"
	"github.com/remotelist/jobs-aggregator/internal/logger"
	"github.com/remotelist/jobs-aggregator/internal/metrics"
	"github.com/remotelist/jobs-aggregator/internal/repositories"
)

// CacheStatus labels which of the three read-path states served a request.
type CacheStatus string

const (
	StatusCached        CacheStatus = "cached"
	StatusLiveFetch     CacheStatus = "live-fetch"
	StatusFallbackFetch CacheStatus = "fallback-fetch"
)

// ReadResult is what a single read request receives: a flat job sequence
// plus metadata describing the snapshot it came from.
type ReadResult struct {
	Jobs     []entities.Job
	Metadata entities.AggregationMetadata
	Status   CacheStatus
	CacheAge time.Duration
}

// FatalPipelineError is the only error class a client ever sees: the
// last-resort live fetch itself failed.
type FatalPipelineError struct {
	Message   string
	Timestamp time.Time
}

func (e *FatalPipelineError) Error() string {
	return e.Message
}

// ReaderService serves read requests from the chunked cache, falling back to
// a live aggregation when the cache is absent or unreadable. Each request
// operates on an independent snapshot; readers never block the refresh
// writer.
type ReaderService struct {
	aggregator     jobsAggregator
	cache          cacheStore
	staleThreshold time.Duration
}

func NewReaderService(aggregator jobsAggregator, cache cacheStore, staleThreshold time.Duration) *ReaderService {
	return &ReaderService{
		aggregator:     aggregator,
		cache:          cache,
		staleThreshold: staleThreshold,
	}
}

// GetJobs walks the tiered read path: cache hit, cache-miss live fetch, or
// error-recovery live fetch. The response is a flat job sequence in every
// state; only the metadata distinguishes them.
func (r *ReaderService) GetJobs(ctx context.Context) (*ReadResult, error) {

	generation, err := r.cache.Load(ctx)

	switch {
	case err == nil:
		return r.serveCached(generation), nil

	case errors.Is(err, repositories.ErrCacheAbsent):
		log.Info("cache absent, serving live fetch")
		return r.serveLive(ctx, StatusLiveFetch)

	default:
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeCache).
			Errorf("cache read failed, serving fallback fetch: %v", err)
		return r.serveLive(ctx, StatusFallbackFetch)
	}
}

func (r *ReaderService) serveCached(generation *entities.CacheGeneration) *ReadResult {

	age := repositories.Age(generation.Metadata, time.Now().UTC())
	log.Infof("serving %d jobs from cache, age %v", len(generation.Jobs), age.Round(time.Second))

	if r.staleThreshold > 0 && age > r.staleThreshold {
		log.Warnf("cache is stale: age %v exceeds threshold %v", age.Round(time.Second), r.staleThreshold)
	}

	metrics.ReadRequestsCounter.WithLabelValues(string(StatusCached)).Inc()

	return &ReadResult{
		Jobs: generation.Jobs,
		Metadata: entities.AggregationMetadata{
			LastUpdated: generation.Metadata.LastUpdated,
			JobCount:    generation.Metadata.JobCount,
			Sources:     generation.Metadata.Sources,
		},
		Status:   StatusCached,
		CacheAge: age,
	}
}

// serveLive runs the aggregator on the request path and opportunistically
// seeds the cache for subsequent requests. A save failure is logged, never
// surfaced: the client already has its answer.
func (r *ReaderService) serveLive(ctx context.Context, status CacheStatus) (*ReadResult, error) {

	result, err := r.aggregateSafely(ctx)
	if err != nil {
		return nil, &FatalPipelineError{
			Message:   fmt.Sprintf("live fetch failed: %v", err),
			Timestamp: time.Now().UTC(),
		}
	}

	if err := r.cache.Save(ctx, result.Jobs, result.Metadata); err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeCache).
			Errorf("opportunistic cache save failed: %v", err)
	}

	metrics.ReadRequestsCounter.WithLabelValues(string(status)).Inc()

	return &ReadResult{
		Jobs:     result.Jobs,
		Metadata: result.Metadata,
		Status:   status,
		CacheAge: 0,
	}, nil
}

// aggregateSafely guards the last-resort path: the aggregator absorbs all
// source-level failures, so only a programming or infrastructure error can
// escape here, and it must not take the process down with it.
func (r *ReaderService) aggregateSafely(ctx context.Context) (result entities.AggregationResult, err error) {

	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("aggregation panic: %v", p)
		}
	}()

	result = r.aggregator.Aggregate(ctx)
	return result, nil
}
