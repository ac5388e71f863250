package reconcile

import (
	"context"
	"fmt"
	"time"

	"github.com/harryzhoudev/portfolio-api/internal/storage"
	"github.com/harryzhoudev/portfolio-api/pkg/logger"
)

// ObjectStore lists and deletes stored assets.
type ObjectStore interface {
	List(ctx context.Context, prefix string) ([]storage.ObjectInfo, error)
	Delete(ctx context.Context, assetID string) error
}

// References reports every asset id still referenced by a content document.
type References interface {
	ListAssetIDs(ctx context.Context) ([]string, error)
}

type Options struct {
	// Prefix limits the sweep to keys under the asset folder.
	Prefix string
	// GracePeriod skips objects younger than this; an upload may not be persisted yet.
	GracePeriod time.Duration
	DryRun      bool
	Now         func() time.Time
}

// Report summarizes one sweep.
type Report struct {
	Scanned    int
	Referenced int
	Recent     int
	Orphans    []string
	Deleted    int
	Failed     []string
}

// Run deletes stored objects under opts.Prefix that no document references.
// Objects are listed before references are read, so an asset persisted during
// the sweep is always seen as referenced.
func Run(ctx context.Context, refs References, store ObjectStore, opts Options) (*Report, error) {
	log := logger.Op("reconcile")
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}

	objects, err := store.List(ctx, opts.Prefix)
	if err != nil {
		return nil, fmt.Errorf("listing assets: %w", err)
	}
	ids, err := refs.ListAssetIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing referenced assets: %w", err)
	}
	referenced := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		referenced[id] = struct{}{}
	}

	rep := &Report{Scanned: len(objects)}
	cutoff := now().Add(-opts.GracePeriod)
	for _, obj := range objects {
		if _, ok := referenced[obj.Key]; ok {
			rep.Referenced++
			continue
		}
		if obj.LastModified.After(cutoff) {
			rep.Recent++
			continue
		}
		rep.Orphans = append(rep.Orphans, obj.Key)
		if opts.DryRun {
			log.Infof("would delete %s (%d bytes, modified %s)", obj.Key, obj.Size, obj.LastModified.Format(time.RFC3339))
			continue
		}
		if err := store.Delete(ctx, obj.Key); err != nil {
			log.Warnf("delete %s failed: %v", obj.Key, err)
			rep.Failed = append(rep.Failed, obj.Key)
			continue
		}
		rep.Deleted++
		log.Infof("deleted %s", obj.Key)
	}
	return rep, ctx.Err()
}
