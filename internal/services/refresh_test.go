package services

import (
	"context"
	"testing"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/remotelist/jobs-aggregator/internal/entities"
	"github.com/remotelist/jobs-aggregator/internal/events"
)

func Test_NewRefreshService_RejectsInvalidSchedule(t *testing.T) {

	bus := EventBus.New()

	_, err := NewRefreshService(bus, &fakeAggregator{}, &fakeStore{}, 0, time.Minute)
	assert.Error(t, err)

	_, err = NewRefreshService(bus, &fakeAggregator{}, &fakeStore{}, time.Hour, 0)
	assert.Error(t, err)
}

func Test_Refresh_PersistsAggregationAndPublishesEvent(t *testing.T) {

	bus := EventBus.New()
	store := &fakeStore{}
	agg := &fakeAggregator{result: entities.AggregationResult{
		Jobs: sampleJobs(),
		Metadata: entities.AggregationMetadata{
			JobCount: 1,
			Sources:  map[string]entities.SourceReport{"test": {Success: true}},
		},
	}}

	published := make(chan events.RefreshCompleted, 1)
	require.NoError(t, bus.Subscribe(events.RefreshCompletedTopic, func(event events.RefreshCompleted) {
		published <- event
	}))

	service, err := NewRefreshService(bus, agg, store, time.Hour, time.Minute)
	require.NoError(t, err)

	require.NoError(t, service.Refresh(context.Background()))

	assert.Equal(t, 1, store.saves)
	assert.Equal(t, sampleJobs(), store.savedJobs)
	assert.Equal(t, 1, store.savedMeta.JobCount)

	select {
	case event := <-published:
		assert.Equal(t, 1, event.Metadata.JobCount)
	case <-time.After(time.Second):
		t.Fatal("refresh completed event was not published")
	}
}

func Test_Refresh_CacheWriteFailurePropagates(t *testing.T) {

	bus := EventBus.New()
	store := &fakeStore{saveErr: errors.New("database is locked")}
	agg := &fakeAggregator{result: entities.AggregationResult{Jobs: sampleJobs()}}

	service, err := NewRefreshService(bus, agg, store, time.Hour, time.Minute)
	require.NoError(t, err)

	err = service.Refresh(context.Background())
	assert.ErrorContains(t, err, "failed to persist aggregation result")
}

func Test_Refresh_SourceFailuresAreNotRefreshFailures(t *testing.T) {

	bus := EventBus.New()
	store := &fakeStore{}
	agg := &fakeAggregator{result: entities.AggregationResult{
		Metadata: entities.AggregationMetadata{
			Sources: map[string]entities.SourceReport{
				"down": {SourceName: "down", Success: false, Error: "unreachable"},
			},
		},
	}}

	service, err := NewRefreshService(bus, agg, store, time.Hour, time.Minute)
	require.NoError(t, err)

	assert.NoError(t, service.Refresh(context.Background()))
	assert.Equal(t, 1, store.saves)
}
