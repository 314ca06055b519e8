package entities

import "time"

// CacheMetadata describes one persisted cache generation.
type CacheMetadata struct {
	LastUpdated time.Time
	JobCount    int
	ChunkCount  int
	Sources     map[string]SourceReport
}

// CacheGeneration is a fully reconstructed generation: the union of all
// chunks concatenated in chunk-index order.
type CacheGeneration struct {
	Metadata CacheMetadata
	Jobs     []Job
}

// CacheMetadataRecord is the single persisted metadata row. Exactly one row
// exists at a time; writing a new generation overwrites it.
type CacheMetadataRecord struct {
	ID          int `gorm:"primaryKey"`
	LastUpdated time.Time
	JobCount    int
	ChunkCount  int
	SourcesJSON []byte
	UpdatedAt   time.Time
}

// CacheChunkRecord holds one bounded-size slice of a generation's job
// sequence. The table itself acts as the chunk marker: replacing a
// generation deletes every row here, so a shrinking generation leaves no
// stale chunks behind.
type CacheChunkRecord struct {
	ChunkIndex int `gorm:"primaryKey;autoIncrement:false"`
	JobCount   int
	JobsJSON   []byte
	CreatedAt  time.Time
}
