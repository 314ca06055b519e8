package entities

import "time"

// SourceReport is the per-source outcome of one aggregation run.
type SourceReport struct {
	SourceName string `json:"sourceName"`
	Count      int    `json:"count"`
	Success    bool   `json:"success"`
	Error      string `json:"error,omitempty"`
}

type AggregationMetadata struct {
	LastUpdated      time.Time               `json:"lastUpdated"`
	JobCount         int                     `json:"jobCount"`
	Sources          map[string]SourceReport `json:"sources"`
	UpdateDurationMs int64                   `json:"updateDurationMs"`
}

// AggregationResult is one complete, immutable snapshot produced by the
// aggregator. It is owned by whichever caller requested it until handed to
// the cache store or the client response.
type AggregationResult struct {
	Jobs     []Job
	Metadata AggregationMetadata
}
