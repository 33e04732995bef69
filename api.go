package relsync

import (
	"context"
	"time"

	c "github.com/unkn0wn-root/relsync/codec"
	"github.com/unkn0wn-root/relsync/locker"
	"github.com/unkn0wn-root/relsync/store"
)

// Item is the minimal shape of a stored item. Version must be unique within
// a record; ReleasedAt is when the underlying entity was published.
type Item interface {
	Version() string
	ReleasedAt() time.Time
}

// Syncer is the high-level mirror API. F is the raw fetched item type of the
// remote feed, V the stored item type. Serialization is handled by a
// pluggable Codec[V]; persistence by a pluggable store.Store.
type Syncer[F any, V Item] interface {
	Enabled() bool
	Close(context.Context) error

	// Sync returns the current full item set for key (unordered),
	// refreshing the persisted record from src as needed. Remote failures
	// degrade to the previously persisted set and are never returned as
	// errors; a first-call failure yields an empty set.
	Sync(ctx context.Context, key string, src PageSource[F]) ([]V, error)

	// Peek returns the currently cached items without any remote call.
	Peek(ctx context.Context, key string) (items []V, ok bool, err error)

	// Invalidate drops the record so the next Sync rebuilds from scratch.
	Invalidate(ctx context.Context, key string) error
}

// Options tune the behavior of a Syncer.
// Namespace, Store, Codec and Adapter are required; others have defaults.
type Options[F any, V Item] struct {
	// Required
	Namespace string // logical namespace to avoid collisions, e.g. "registry:prod"
	Store     store.Store
	Codec     c.Codec[V]
	Adapter   Adapter[F, V]

	Logger Logger // if nil, NopLogger is used
	Hooks  Hooks  // if nil, NopHooks is used

	// ResetDelta is how stale a record's UpdatedAt may grow before a sync
	// is forced to walk to completion and run the deletion scan. Zero
	// forces a full resync on every call.
	ResetDelta time.Duration

	// StabilityWindow is the age (now minus release time) beyond which a
	// previously known version is assumed immutable; encountering one
	// stops an incremental walk. Zero stops at the first known version.
	StabilityWindow time.Duration

	// RetentionWindow bounds total record lifetime measured from its
	// original CreatedAt, independent of incremental updates. 0 => 7d.
	RetentionWindow time.Duration

	Clock    func() time.Time // 0-arg time source; nil => time.Now
	Locker   locker.Locker    // optional cross-process per-key serialization
	Disabled bool             // bypass the store entirely (every Sync walks the remote)
}

func New[F any, V Item](opts Options[F, V]) (Syncer[F, V], error) {
	return newSyncer[F, V](opts)
}
