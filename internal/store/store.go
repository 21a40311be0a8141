package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/allspots/spots-cli/internal/model"
)

// MaxBatchOps is the store's hard per-batch operation ceiling. Write batch
// sizes are configured below it; the stores refuse larger batches outright
// rather than splitting silently.
const MaxBatchOps = 500

// serverTimestamp is the sentinel replaced by the store clock at commit.
type serverTimestamp struct{}

// ServerTimestamp marks a field value to be assigned the store-side
// timestamp when the batch commits.
var ServerTimestamp any = serverTimestamp{}

// DocStore is the document collection capability the dedupe engine and the
// importer run against: an id-ordered paginated scan, merge upserts, and
// deletes, each batch atomic on its own.
type DocStore interface {
	// ListPage returns up to limit records with id > afterID, ordered by id.
	ListPage(ctx context.Context, afterID string, limit int) ([]model.Record, error)
	// BatchMerge upserts every doc, merging fields into any existing
	// document with the same id. At most MaxBatchOps docs.
	BatchMerge(ctx context.Context, docs []model.Record) error
	// BatchDelete removes the documents with the given ids. Missing ids
	// are not an error. At most MaxBatchOps ids.
	BatchDelete(ctx context.Context, ids []string) error
	Migrate(ctx context.Context) error
	Close() error
}

// ScanAll reads the entire collection through ListPage.
func ScanAll(ctx context.Context, s DocStore, pageSize int) ([]model.Record, error) {
	if pageSize <= 0 || pageSize > MaxBatchOps {
		return nil, eris.Errorf("store: page size %d out of range (1..%d)", pageSize, MaxBatchOps)
	}

	var all []model.Record
	afterID := ""
	for {
		page, err := s.ListPage(ctx, afterID, pageSize)
		if err != nil {
			return nil, eris.Wrap(err, "store: scan page")
		}
		all = append(all, page...)
		if len(page) < pageSize {
			return all, nil
		}
		afterID = page[len(page)-1].ID
	}
}

// resolveServerTimestamps replaces ServerTimestamp sentinels with now.
// Timestamps only appear at the top level of a document.
func resolveServerTimestamps(fields map[string]any, now time.Time) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		if _, ok := v.(serverTimestamp); ok {
			out[k] = now.UTC().Format(time.RFC3339Nano)
			continue
		}
		out[k] = v
	}
	return out
}

func checkBatchSize(n int, op string) error {
	if n > MaxBatchOps {
		return eris.Errorf("store: %s batch of %d exceeds limit %d", op, n, MaxBatchOps)
	}
	return nil
}
