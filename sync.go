package relsync

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/unkn0wn-root/relsync/locker"
	"github.com/unkn0wn-root/relsync/store"

	c "github.com/unkn0wn-root/relsync/codec"
)

const defaultRetention = 7 * 24 * time.Hour

type syncer[F any, V Item] struct {
	ns      string
	store   store.Store
	codec   c.Codec[V]
	adapter Adapter[F, V]
	lock    locker.Locker
	log     Logger
	hooks   Hooks

	enabled    bool
	resetDelta time.Duration
	stability  time.Duration
	retention  time.Duration
	clock      func() time.Time

	// collapses concurrent same-key syncs in-process; cross-process
	// serialization is the Locker's job.
	flight singleflight.Group
}

func newSyncer[F any, V Item](opts Options[F, V]) (*syncer[F, V], error) {
	if opts.Namespace == "" {
		return nil, fmt.Errorf("relsync: namespace is required")
	}
	if opts.Store == nil && !opts.Disabled {
		return nil, fmt.Errorf("relsync: store is required")
	}
	if opts.Codec == nil && !opts.Disabled {
		return nil, fmt.Errorf("relsync: codec is required")
	}
	if opts.Adapter == nil {
		return nil, fmt.Errorf("relsync: adapter is required")
	}

	s := &syncer[F, V]{
		ns:      opts.Namespace,
		store:   opts.Store,
		codec:   opts.Codec,
		adapter: opts.Adapter,
		lock:    opts.Locker,
		enabled: !opts.Disabled,
	}

	// defaults
	s.log = coalesce[Logger](opts.Logger, NopLogger{})
	s.hooks = coalesce[Hooks](opts.Hooks, NopHooks{})
	s.retention = coalesce[time.Duration](opts.RetentionWindow, defaultRetention)
	// zero is meaningful for both: ResetDelta 0 forces a full resync on
	// every call, StabilityWindow 0 stops at the first known version.
	s.resetDelta = opts.ResetDelta
	s.stability = opts.StabilityWindow
	if opts.Clock != nil {
		s.clock = opts.Clock
	} else {
		s.clock = time.Now
	}
	return s, nil
}

func (s *syncer[F, V]) Enabled() bool { return s.enabled }

func (s *syncer[F, V]) Close(ctx context.Context) error {
	// close the locker first (best effort)
	if s.lock != nil {
		_ = s.lock.Close(ctx)
	}
	if s.store != nil {
		return s.store.Close(ctx)
	}
	return nil
}

func (s *syncer[F, V]) Sync(ctx context.Context, key string, src PageSource[F]) ([]V, error) {
	if src == nil {
		return nil, fmt.Errorf("relsync: source is required")
	}
	v, err, _ := s.flight.Do(s.recordKey(key), func() (any, error) {
		return s.sync(ctx, key, src)
	})
	if err != nil {
		return nil, err
	}
	return v.([]V), nil
}

func (s *syncer[F, V]) sync(ctx context.Context, key string, src PageSource[F]) ([]V, error) {
	now := s.clock()

	if !s.enabled {
		res := s.walk(ctx, key, src, Record[V]{}, now, true)
		if res.aborted {
			return nil, nil
		}
		return Record[V]{Items: res.merged}.values(), nil
	}

	k := s.recordKey(key)

	if s.lock != nil {
		release, ok, err := s.lock.Acquire(ctx, k)
		if err != nil {
			s.log.Warn("lock acquire failed; serving cached record", Fields{"key": key, "err": err})
		}
		if err != nil || !ok {
			s.hooks.LockContended(key)
			rec, _, _ := s.load(ctx, k, now)
			return rec.values(), nil
		}
		defer release()
	}

	rec, found, err := s.load(ctx, k, now)
	if err != nil {
		// store read failure: proceed as if absent, a forced walk rebuilds
		s.log.Warn("record load failed; rebuilding", Fields{"key": key, "err": err})
	}

	forced := !found || now.Sub(rec.UpdatedAt) >= s.resetDelta

	res := s.walk(ctx, key, src, rec, now, forced)
	if res.aborted {
		// atomic failure: discard all merge work, nothing is written
		return rec.values(), nil
	}

	if forced && res.complete {
		removed := 0
		for ver := range res.merged {
			if _, ok := res.observed[ver]; !ok {
				delete(res.merged, ver)
				removed++
			}
		}
		if removed > 0 {
			s.hooks.DeletionScan(key, removed)
			s.log.Debug("deletion scan removed vanished versions", Fields{"key": key, "removed": removed})
		}
	}

	next := Record[V]{CreatedAt: rec.CreatedAt, UpdatedAt: now, Items: res.merged}
	if !found {
		next.CreatedAt = now
	}

	if err := s.persist(ctx, k, next, now); err != nil {
		// freshness for this key degrades until the next sync; the merged
		// set is still correct, so serve it
		s.hooks.StoreWriteFailed(k, err)
		s.log.Error("record persist failed", Fields{"key": key, "err": err})
	}

	s.log.Debug("sync completed", Fields{
		"key": key, "forced": forced, "complete": res.complete,
		"pages": res.pages, "items": len(next.Items),
		"changed": res.changed, "unchanged": res.unchanged,
	})
	return next.values(), nil
}

type walkResult[V Item] struct {
	merged    map[string]V
	observed  map[string]struct{}
	complete  bool // reached a page with HasNextPage=false
	aborted   bool // a page fetch failed; all merge work must be discarded
	pages     int
	changed   int
	unchanged int
}

// walk consumes the feed newest-first, upserting coerced items into a copy
// of the prior record. Incremental walks stop at the first previously known
// version whose age reaches the stability window; everything at or past the
// stop point keeps its previously stored value.
func (s *syncer[F, V]) walk(ctx context.Context, key string, src PageSource[F], prior Record[V], now time.Time, forced bool) walkResult[V] {
	res := walkResult[V]{
		merged:   make(map[string]V, len(prior.Items)),
		observed: make(map[string]struct{}, len(prior.Items)),
	}
	for ver, v := range prior.Items {
		res.merged[ver] = v
	}

	cursor := ""
	for {
		page, err := src.FetchPage(ctx, cursor)
		if err != nil {
			s.hooks.WalkAborted(key, res.pages, err)
			s.log.Warn("page fetch failed; keeping previous record", Fields{"key": key, "pages": res.pages, "err": err})
			res.aborted = true
			return res
		}
		res.pages++

		for _, f := range page.Items {
			v, ok := s.adapter.Coerce(f)
			if !ok {
				continue
			}
			ver := v.Version()
			prev, exists := prior.Items[ver]
			if !forced && exists && now.Sub(v.ReleasedAt()) >= s.stability {
				// known version past the stability window is immutable:
				// stop the whole walk without merging this value
				s.hooks.StabilityStop(key, ver)
				s.log.Debug("stability stop", Fields{"key": key, "version": ver, "pages": res.pages})
				return res
			}
			if exists && s.adapter.Equivalent(prev, v) {
				res.unchanged++
			} else {
				res.changed++
			}
			res.merged[ver] = v
			res.observed[ver] = struct{}{}
		}

		if !page.HasNextPage {
			res.complete = true
			return res
		}
		cursor = page.EndCursor
	}
}

func (s *syncer[F, V]) Peek(ctx context.Context, key string) ([]V, bool, error) {
	if !s.enabled {
		return nil, false, nil
	}
	rec, found, err := s.load(ctx, s.recordKey(key), s.clock())
	if err != nil || !found {
		return nil, false, err
	}
	return rec.values(), true, nil
}

func (s *syncer[F, V]) Invalidate(ctx context.Context, key string) error {
	if !s.enabled {
		return nil
	}
	k := s.recordKey(key)
	if err := s.store.Del(ctx, k); err != nil {
		return &StoreError{Op: "del", Key: k, Err: err}
	}
	s.log.Debug("record invalidated", Fields{"key": key})
	return nil
}

// load returns the persisted record for k. Corrupt entries and records past
// the retention window are deleted (self-heal) and reported as absent.
func (s *syncer[F, V]) load(ctx context.Context, k string, now time.Time) (Record[V], bool, error) {
	raw, ok, err := s.store.Get(ctx, k)
	if err != nil {
		return Record[V]{}, false, &StoreError{Op: "get", Key: k, Err: err}
	}
	if !ok {
		return Record[V]{}, false, nil
	}
	rec, err := s.decodeRecord(raw)
	if err != nil {
		_ = s.store.Del(ctx, k) // self-heal corrupt
		s.hooks.RecordSelfHeal(k, "corrupt")
		return Record[V]{}, false, nil
	}
	if now.Sub(rec.CreatedAt) >= s.retention {
		// total record age is bounded regardless of store TTL support
		_ = s.store.Del(ctx, k)
		s.hooks.RecordSelfHeal(k, "retention_expired")
		return Record[V]{}, false, nil
	}
	return rec, true, nil
}

// persist writes the record with a TTL anchored to its original CreatedAt,
// so the record as a whole expires exactly one retention window after it
// was first created, no matter how many incremental updates happened.
func (s *syncer[F, V]) persist(ctx context.Context, k string, rec Record[V], now time.Time) error {
	raw, err := s.encodeRecord(rec)
	if err != nil {
		return err
	}
	ttl := s.retention - now.Sub(rec.CreatedAt)
	ok, err := s.store.Set(ctx, k, raw, int64(len(raw)), ttl)
	if err != nil {
		return &StoreError{Op: "set", Key: k, Err: err}
	}
	if !ok {
		s.hooks.StoreWriteRejected(k)
		s.log.Debug("record write rejected by store (pressure)", Fields{"key": k})
	}
	return nil
}

func (s *syncer[F, V]) recordKey(userKey string) string {
	// isolate by namespace
	return "rec:" + s.ns + ":" + userKey
}
