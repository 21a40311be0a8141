package dedupe

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/allspots/spots-cli/internal/model"
	"github.com/allspots/spots-cli/internal/store"
)

// Applier executes a duplicate plan against the store: backup first, then
// keeper tagging, then deletions, all in bounded batches. Re-applying
// against the post-apply state is a no-op — keeper tagging is a merge and
// every duplicate is already gone.
type Applier struct {
	store       store.DocStore
	keeperBatch int
	deleteBatch int
}

// ApplyResult summarizes what an apply run committed. On error the counts
// reflect the batches that committed before the failure; those stand.
type ApplyResult struct {
	KeepersUpdated int
	Deleted        int
	BackupPath     string
}

// NewApplier validates batch sizes against the store ceiling.
func NewApplier(st store.DocStore, keeperBatch, deleteBatch int) (*Applier, error) {
	if keeperBatch <= 0 || keeperBatch > store.MaxBatchOps {
		return nil, eris.Errorf("dedupe: keeper batch size %d out of range (1..%d)", keeperBatch, store.MaxBatchOps)
	}
	if deleteBatch <= 0 || deleteBatch > store.MaxBatchOps {
		return nil, eris.Errorf("dedupe: delete batch size %d out of range (1..%d)", deleteBatch, store.MaxBatchOps)
	}
	return &Applier{store: st, keeperBatch: keeperBatch, deleteBatch: deleteBatch}, nil
}

// Apply runs the plan. When backupPath is non-empty, every record slated
// for deletion is serialized there and synced to disk before any mutation;
// a backup failure blocks the whole run. Batches are committed
// sequentially and there is no cross-batch rollback: a failed run reports
// what was committed, and re-running the engine finishes the rest.
func (a *Applier) Apply(ctx context.Context, groups []Group, backupPath string) (ApplyResult, error) {
	log := zap.L().With(zap.String("component", "dedupe_apply"))
	result := ApplyResult{}

	if backupPath != "" {
		if err := writeBackup(backupPath, groups); err != nil {
			return result, eris.Wrap(err, "dedupe: backup before delete")
		}
		result.BackupPath = backupPath
		log.Info("backup written", zap.String("path", backupPath))
	}

	// Phase 1: tag keepers with their canonical key and a dedupedAt marker.
	for start := 0; start < len(groups); start += a.keeperBatch {
		end := min(start+a.keeperBatch, len(groups))
		docs := make([]model.Record, 0, end-start)
		for _, g := range groups[start:end] {
			docs = append(docs, model.Record{
				ID: g.Keeper.ID,
				Fields: map[string]any{
					"dedupeKey": g.Key,
					"dedupedAt": store.ServerTimestamp,
				},
			})
		}
		if err := a.store.BatchMerge(ctx, docs); err != nil {
			return result, eris.Wrapf(err, "dedupe: keeper batch at %d (committed %d keepers)", start, result.KeepersUpdated)
		}
		result.KeepersUpdated += len(docs)
		log.Info("keeper batch committed",
			zap.Int("updated", result.KeepersUpdated),
			zap.Int("total", len(groups)),
		)
	}

	// Phase 2: delete everything else.
	var toDelete []string
	for _, g := range groups {
		for _, rec := range g.ToDelete {
			toDelete = append(toDelete, rec.ID)
		}
	}
	for start := 0; start < len(toDelete); start += a.deleteBatch {
		end := min(start+a.deleteBatch, len(toDelete))
		if err := a.store.BatchDelete(ctx, toDelete[start:end]); err != nil {
			return result, eris.Wrapf(err, "dedupe: delete batch at %d (committed %d deletions)", start, result.Deleted)
		}
		result.Deleted += end - start
		log.Info("delete batch committed",
			zap.Int("deleted", result.Deleted),
			zap.Int("total", len(toDelete)),
		)
	}

	return result, nil
}

type backupRecord struct {
	ID   string         `json:"id"`
	Data map[string]any `json:"data"`
}

type backupGroup struct {
	DedupeKey  string         `json:"dedupeKey"`
	KeeperID   string         `json:"keeperId"`
	Duplicates []backupRecord `json:"duplicates"`
}

type backupManifest struct {
	RunID     string        `json:"runId"`
	CreatedAt time.Time     `json:"createdAt"`
	Groups    []backupGroup `json:"groups"`
}

// writeBackup serializes the full content of every record about to be
// deleted, per group, and fsyncs before returning. The file is the manual
// recovery path if a deletion later proves wrong.
func writeBackup(path string, groups []Group) error {
	manifest := backupManifest{
		RunID:     uuid.New().String(),
		CreatedAt: time.Now().UTC(),
		Groups:    make([]backupGroup, 0, len(groups)),
	}
	for _, g := range groups {
		bg := backupGroup{
			DedupeKey:  g.Key,
			KeeperID:   g.Keeper.ID,
			Duplicates: make([]backupRecord, 0, len(g.ToDelete)),
		}
		for _, rec := range g.ToDelete {
			bg.Duplicates = append(bg.Duplicates, backupRecord{ID: rec.ID, Data: rec.Fields})
		}
		manifest.Groups = append(manifest.Groups, bg)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return eris.Wrap(err, "create backup dir")
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, "create backup file")
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(manifest); err != nil {
		f.Close() //nolint:errcheck
		return eris.Wrap(err, "encode backup")
	}
	if err := f.Sync(); err != nil {
		f.Close() //nolint:errcheck
		return eris.Wrap(err, "sync backup")
	}
	return eris.Wrap(f.Close(), "close backup")
}
