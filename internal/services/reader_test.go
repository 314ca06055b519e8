package services

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/remotelist/jobs-aggregator/internal/entities"
	"github.com/remotelist/jobs-aggregator/internal/repositories"
)

func Test_GetJobs_ServesFromCacheWhenPresent(t *testing.T) {

	lastUpdated := time.Now().UTC().Add(-30 * time.Minute)
	store := &fakeStore{generation: &entities.CacheGeneration{
		Metadata: entities.CacheMetadata{
			LastUpdated: lastUpdated,
			JobCount:    1,
			Sources:     map[string]entities.SourceReport{"test": {Success: true}},
		},
		Jobs: sampleJobs(),
	}}
	agg := &fakeAggregator{}

	reader := NewReaderService(agg, store, 12*time.Hour)

	result, err := reader.GetJobs(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StatusCached, result.Status)
	assert.Equal(t, sampleJobs(), result.Jobs)
	assert.Equal(t, lastUpdated, result.Metadata.LastUpdated)
	assert.InDelta(t, 30*time.Minute, result.CacheAge, float64(time.Minute))

	// the cached path never touches the sources
	assert.Zero(t, agg.calls)
}

func Test_GetJobs_AbsentCacheTriggersLiveFetchAndSeedsCache(t *testing.T) {

	store := &fakeStore{loadErr: repositories.ErrCacheAbsent}
	agg := &fakeAggregator{result: entities.AggregationResult{
		Jobs:     sampleJobs(),
		Metadata: entities.AggregationMetadata{JobCount: 1},
	}}

	reader := NewReaderService(agg, store, 0)

	result, err := reader.GetJobs(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StatusLiveFetch, result.Status)
	assert.Equal(t, sampleJobs(), result.Jobs)
	assert.Zero(t, result.CacheAge)

	assert.Equal(t, 1, store.saves)
	assert.Equal(t, sampleJobs(), store.savedJobs)
}

func Test_GetJobs_ReadErrorTriggersFallbackFetch(t *testing.T) {

	store := &fakeStore{loadErr: errors.Wrap(repositories.ErrCacheRead, "chunk 2 missing")}
	agg := &fakeAggregator{result: entities.AggregationResult{
		Jobs:     sampleJobs(),
		Metadata: entities.AggregationMetadata{JobCount: 1},
	}}

	reader := NewReaderService(agg, store, 0)

	result, err := reader.GetJobs(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StatusFallbackFetch, result.Status)
	assert.Equal(t, 1, store.saves)
}

func Test_GetJobs_SaveFailureDoesNotFailTheRequest(t *testing.T) {

	store := &fakeStore{
		loadErr: repositories.ErrCacheAbsent,
		saveErr: errors.New("disk full"),
	}
	agg := &fakeAggregator{result: entities.AggregationResult{Jobs: sampleJobs()}}

	reader := NewReaderService(agg, store, 0)

	result, err := reader.GetJobs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusLiveFetch, result.Status)
	assert.Equal(t, sampleJobs(), result.Jobs)
}

func Test_GetJobs_AggregationPanicBecomesFatalPipelineError(t *testing.T) {

	store := &fakeStore{loadErr: repositories.ErrCacheAbsent}
	agg := &fakeAggregator{panics: true}

	reader := NewReaderService(agg, store, 0)

	result, err := reader.GetJobs(context.Background())
	assert.Nil(t, result)

	var fatal *FatalPipelineError
	require.ErrorAs(t, err, &fatal)
	assert.Contains(t, fatal.Message, "live fetch failed")
	assert.False(t, fatal.Timestamp.IsZero())
}
