package relsync

// Hooks are lightweight callbacks for high-signal sync events.
// Implementations MUST be cheap and non-blocking; the engine calls them
// inline during walks. Wrap with hooks/async when in doubt.
type Hooks interface {
	// A page fetch failed after `pages` successful pages; the walk was
	// abandoned and the previously persisted set was served.
	WalkAborted(key string, pages int, err error)

	// An incremental walk stopped at a known version past the stability window.
	StabilityStop(key, version string)

	// A persisted record was deleted on read.
	// reason is "corrupt" or "retention_expired".
	RecordSelfHeal(storageKey, reason string)

	// Store returned ok=false on Set (backpressure/eviction).
	StoreWriteRejected(storageKey string)

	// Store Set returned an error; the merged result was still served.
	StoreWriteFailed(storageKey string, err error)

	// A completed forced resync removed versions no longer present remotely.
	DeletionScan(key string, removed int)

	// A sync was skipped because another holder owns the per-key lock.
	LockContended(key string)
}

// NopHooks is the default no-op.
type NopHooks struct{}

func (NopHooks) WalkAborted(string, int, error) {}
func (NopHooks) StabilityStop(string, string)   {}
func (NopHooks) RecordSelfHeal(string, string)  {}
func (NopHooks) StoreWriteRejected(string)      {}
func (NopHooks) StoreWriteFailed(string, error) {}
func (NopHooks) DeletionScan(string, int)       {}
func (NopHooks) LockContended(string)           {}
