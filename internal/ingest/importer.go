package ingest

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/allspots/spots-cli/internal/dedupe"
	"github.com/allspots/spots-cli/internal/model"
	"github.com/allspots/spots-cli/internal/store"
)

// Importer is the streaming import-time resolver: it assigns each incoming
// POI its deterministic identity before anything is persisted, drops
// in-payload duplicates, and upserts with merge keyed by that identity —
// so re-importing the same payload never grows the collection.
type Importer struct {
	store     store.DocStore
	batchSize int
	maxImages int
}

// Stats counts the outcome of an import run.
type Stats struct {
	Prepared int
	Skipped  int
	Imported int
}

// NewImporter validates the batch size against the store ceiling.
func NewImporter(st store.DocStore, batchSize, maxImages int) (*Importer, error) {
	if batchSize <= 0 || batchSize > store.MaxBatchOps {
		return nil, eris.Errorf("ingest: batch size %d out of range (1..%d)", batchSize, store.MaxBatchOps)
	}
	if maxImages <= 0 {
		maxImages = 5
	}
	return &Importer{store: st, batchSize: batchSize, maxImages: maxImages}, nil
}

// Prepare resolves identities and normalizes shapes for a fresh payload.
// Rejected records (no coordinates, or a duplicate of an earlier record in
// the same payload) are counted, never fatal.
func (im *Importer) Prepare(pois []map[string]any) ([]model.Record, Stats) {
	var (
		prepared []model.Record
		stats    Stats
		seen     = make(map[string]bool)
	)

	for _, poi := range pois {
		lat, lng, ok := dedupe.ExtractCoords(poi)
		if !ok {
			stats.Skipped++
			continue
		}

		docID := dedupe.ImportID(poi, lat, lng)
		if seen[docID] {
			stats.Skipped++
			continue
		}
		seen[docID] = true

		images := NormalizeImageURLs(poi, im.maxImages)

		fields := make(map[string]any, len(poi)+8)
		for k, v := range poi {
			fields[k] = v
		}
		fields["location"] = model.GeoPoint{Latitude: lat, Longitude: lng}
		fields["lat"] = lat
		fields["lng"] = lng
		fields["imageUrls"] = images
		fields["images"] = images
		fields["isPublic"] = boolOrDefault(poi["isPublic"], true)
		fields["isValidated"] = boolOrDefault(poi["isValidated"], true)
		fields["createdAt"] = normalizeTimestamp(poi["createdAt"])
		fields["updatedAt"] = normalizeTimestamp(poi["updatedAt"])
		fields["dedupeKey"] = docID
		fields["importedAt"] = store.ServerTimestamp

		prepared = append(prepared, model.Record{ID: docID, Fields: fields})
		stats.Prepared++
	}

	return prepared, stats
}

// Run prepares the payload and commits it in bounded merge batches.
// Batches already committed before an error stand; the returned stats
// report how far the run got.
func (im *Importer) Run(ctx context.Context, pois []map[string]any) (Stats, error) {
	log := zap.L().With(zap.String("component", "importer"))

	prepared, stats := im.Prepare(pois)
	log.Info("payload prepared",
		zap.Int("prepared", stats.Prepared),
		zap.Int("skipped", stats.Skipped),
	)

	for start := 0; start < len(prepared); start += im.batchSize {
		end := min(start+im.batchSize, len(prepared))
		if err := im.store.BatchMerge(ctx, prepared[start:end]); err != nil {
			return stats, eris.Wrapf(err, "ingest: batch at %d (committed %d)", start, stats.Imported)
		}
		stats.Imported = end
		log.Info("import batch committed",
			zap.Int("imported", stats.Imported),
			zap.Int("total", len(prepared)),
		)
	}

	return stats, nil
}

// normalizeTimestamp coerces the shapes sources use for timestamps into a
// store-friendly value: a decoded time, a {_seconds,_nanoseconds} object,
// a numeric millisecond value, or an ISO-8601 string. Anything else gets
// the server timestamp.
func normalizeTimestamp(v any) any {
	switch t := v.(type) {
	case time.Time:
		return t.UTC()
	case map[string]any:
		if secs, ok := t["_seconds"].(float64); ok {
			nanos, _ := t["_nanoseconds"].(float64)
			return time.Unix(int64(secs), int64(nanos)).UTC()
		}
	case float64:
		return time.UnixMilli(int64(t)).UTC()
	case string:
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05"} {
			if parsed, err := time.Parse(layout, t); err == nil {
				return parsed.UTC()
			}
		}
	}
	return store.ServerTimestamp
}

func boolOrDefault(v any, def bool) bool {
	if b, ok := v.(bool); ok {
		return b
	}
	return def
}
