package repositories

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/remotelist/jobs-aggregator/internal/entities"
)

const (
	// DefaultChunkSize keeps each chunk row comfortably below the storage
	// document ceiling the layout was designed around.
	DefaultChunkSize = 100

	metadataRecordID = 1
)

var (
	// ErrCacheAbsent signals that no generation has been persisted yet.
	// This is an expected state, not a failure.
	ErrCacheAbsent = errors.New("no cache generation exists")

	// ErrCacheRead signals that a generation exists but could not be read
	// back consistently. Callers fall back to a live fetch.
	ErrCacheRead = errors.New("cache generation unreadable")
)

// Cache persists aggregation snapshots as one metadata row plus N bounded
// chunk rows. A generation is replaced whole inside a single transaction, so
// a reader never observes a mix of two generations.
type Cache struct {
	db        *gorm.DB
	chunkSize int
}

func NewCacheRepository(db *gorm.DB) *Cache {
	return &Cache{db: db, chunkSize: DefaultChunkSize}
}

func (c *Cache) SetChunkSize(size int) {
	if size > 0 {
		c.chunkSize = size
	}
}

// Save partitions jobs into fixed-size chunks and atomically replaces the
// previous generation: every existing chunk row is deleted (by table, not by
// index, so a shrinking generation leaves nothing stale), the metadata row is
// overwritten, and the new chunks are inserted — all in one transaction.
func (c *Cache) Save(ctx context.Context, jobs []entities.Job, meta entities.AggregationMetadata) error {

	chunks := lo.Chunk(jobs, c.chunkSize)

	sourcesJSON, err := json.Marshal(meta.Sources)
	if err != nil {
		return errors.Wrap(err, "failed to serialize source reports")
	}

	return c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {

		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).
			Delete(&entities.CacheChunkRecord{}).Error; err != nil {
			return errors.Wrap(err, "failed to delete previous chunks")
		}

		record := entities.CacheMetadataRecord{
			ID:          metadataRecordID,
			LastUpdated: meta.LastUpdated,
			JobCount:    len(jobs),
			ChunkCount:  len(chunks),
			SourcesJSON: sourcesJSON,
		}
		if err := tx.Save(&record).Error; err != nil {
			return errors.Wrap(err, "failed to write cache metadata")
		}

		for index, chunk := range chunks {
			jobsJSON, err := json.Marshal(chunk)
			if err != nil {
				return errors.Wrapf(err, "failed to serialize chunk %d", index)
			}
			chunkRecord := entities.CacheChunkRecord{
				ChunkIndex: index,
				JobCount:   len(chunk),
				JobsJSON:   jobsJSON,
			}
			if err := tx.Create(&chunkRecord).Error; err != nil {
				return errors.Wrapf(err, "failed to write chunk %d", index)
			}
		}

		return nil
	})
}

// Load reconstructs the persisted generation. Returns ErrCacheAbsent when no
// metadata row exists; any inconsistency (missing chunk, undecodable payload)
// surfaces as ErrCacheRead rather than a silently truncated result.
func (c *Cache) Load(ctx context.Context) (*entities.CacheGeneration, error) {

	var record entities.CacheMetadataRecord
	err := c.db.WithContext(ctx).First(&record, "id = ?", metadataRecordID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCacheAbsent
		}
		return nil, errors.Wrapf(ErrCacheRead, "failed to read cache metadata: %v", err)
	}

	var sources map[string]entities.SourceReport
	if err := json.Unmarshal(record.SourcesJSON, &sources); err != nil {
		return nil, errors.Wrapf(ErrCacheRead, "failed to decode source reports: %v", err)
	}

	chunks := make([][]entities.Job, record.ChunkCount)

	group, groupCtx := errgroup.WithContext(ctx)
	for index := 0; index < record.ChunkCount; index++ {
		index := index
		group.Go(func() error {
			chunk, err := c.loadChunk(groupCtx, index)
			if err != nil {
				return err
			}
			chunks[index] = chunk
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	jobs := make([]entities.Job, 0, record.JobCount)
	for _, chunk := range chunks {
		jobs = append(jobs, chunk...)
	}

	return &entities.CacheGeneration{
		Metadata: entities.CacheMetadata{
			LastUpdated: record.LastUpdated,
			JobCount:    record.JobCount,
			ChunkCount:  record.ChunkCount,
			Sources:     sources,
		},
		Jobs: jobs,
	}, nil
}

func (c *Cache) loadChunk(ctx context.Context, index int) ([]entities.Job, error) {

	var record entities.CacheChunkRecord
	err := c.db.WithContext(ctx).First(&record, "chunk_index = ?", index).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.Wrapf(ErrCacheRead, "chunk %d missing", index)
		}
		return nil, errors.Wrapf(ErrCacheRead, "failed to read chunk %d: %v", index, err)
	}

	var jobs []entities.Job
	if err := json.Unmarshal(record.JobsJSON, &jobs); err != nil {
		return nil, errors.Wrapf(ErrCacheRead, "failed to decode chunk %d: %v", index, err)
	}
	return jobs, nil
}

// Age reports how old a generation is relative to now.
func Age(meta entities.CacheMetadata, now time.Time) time.Duration {
	return now.Sub(meta.LastUpdated)
}
