package aggregator

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"

	"github.com/remotelist/jobs-aggregator/internal/entities"
	"github.com/remotelist/jobs-aggregator/internal/logger"
	"github.com/remotelist/jobs-aggregator/internal/metrics"
	"github.com/remotelist/jobs-aggregator/internal/sources"
)

// Aggregator fans out to all source adapters concurrently, isolates
// per-source failure, and merges the survivors into one ordered,
// deduplicated snapshot. Aggregate never fails: when every source is down
// the result simply carries zero jobs and all-failed reports.
type Aggregator struct {
	sources []sources.Source
}

func New(srcs ...sources.Source) *Aggregator {
	return &Aggregator{sources: srcs}
}

type fetchResult struct {
	name string
	jobs []entities.Job
	err  error
}

func (a *Aggregator) Aggregate(ctx context.Context) entities.AggregationResult {

	start := time.Now()

	// Per-index writes: no shared state between adapter goroutines.
	results := make([]fetchResult, len(a.sources))
	var wg sync.WaitGroup

	for i, source := range a.sources {
		wg.Add(1)
		go func(i int, source sources.Source) {
			defer wg.Done()
			results[i] = a.fetchOne(ctx, source)
		}(i, source)
	}
	wg.Wait()

	var merged []entities.Job
	reports := make(map[string]entities.SourceReport, len(a.sources))

	for _, result := range results {
		report := entities.SourceReport{
			SourceName: result.name,
			Count:      len(result.jobs),
			Success:    result.err == nil,
		}
		if result.err != nil {
			report.Error = result.err.Error()
			log.WithField(logger.ErrorTypeField, logger.ErrorTypeSourceAPI).
				Errorf("source %s failed: %v", result.name, result.err)
		}
		reports[result.name] = report
		metrics.SourceJobsFetched.WithLabelValues(result.name).Set(float64(len(result.jobs)))

		merged = append(merged, result.jobs...)
	}

	// Stable sort, most recent first; unparseable dates collapsed to epoch
	// zero sort last.
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].ParsedDate().After(merged[j].ParsedDate())
	})

	// Keep the first occurrence of each id. With the stable sort above this
	// favors whichever duplicate sorted earlier, not necessarily the truly
	// newest republication; kept for compatibility with the cache lineage.
	deduped := lo.UniqBy(merged, func(job entities.Job) string { return job.ID })

	duration := time.Since(start)
	log.Infof("aggregated %d jobs from %d sources in %v", len(deduped), len(a.sources), duration)

	return entities.AggregationResult{
		Jobs: deduped,
		Metadata: entities.AggregationMetadata{
			LastUpdated:      time.Now().UTC(),
			JobCount:         len(deduped),
			Sources:          reports,
			UpdateDurationMs: duration.Milliseconds(),
		},
	}
}

// fetchOne shields the aggregation from a misbehaving adapter: both returned
// errors and panics reduce to a failed report for that source alone.
func (a *Aggregator) fetchOne(ctx context.Context, source sources.Source) (result fetchResult) {

	result.name = source.Name()

	defer func() {
		if r := recover(); r != nil {
			result.jobs = nil
			result.err = fmt.Errorf("adapter panic: %v", r)
		}
	}()

	jobs, err := source.Fetch(ctx)
	if err != nil {
		result.err = err
		return result
	}

	result.jobs = jobs
	return result
}
