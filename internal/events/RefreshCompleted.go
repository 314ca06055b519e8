package events

import "github.com/remotelist/jobs-aggregator/internal/entities"

var RefreshCompletedTopic = "RefreshCompletedEvent"

type RefreshCompleted struct {
	Metadata entities.AggregationMetadata
}
