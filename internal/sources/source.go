package sources

import (
	"context"

	"github.com/remotelist/jobs-aggregator/internal/entities"
)

// Source translates one external provider's native format into normalized
// jobs. Fetch reports a non-nil error only when the whole source is down;
// per-record problems are logged and the record dropped. One failing source
// never prevents others from being aggregated.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]entities.Job, error)
}
