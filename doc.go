// Package relsync incrementally mirrors a remote, paginated release feed
// into a persisted cache record. Instead of re-fetching the full feed on
// every query, a sync walks pages newest-first and stops as soon as it
// reaches data it already trusts, while forced resyncs walk to completion
// and detect deletions. A failed page fetch never corrupts or loses
// previously persisted data: the walk aborts, nothing is written, and the
// old item set is served.
//
// Components:
//   - store.Store: byte store with TTL (e.g. Ristretto, BigCache, Redis, SQLite).
//   - codec.Codec[V]: (de)serializes stored items <-> []byte.
//   - PageSource[F]: fetches one page of the remote feed per cursor.
//   - Adapter[F, V]: coerces raw fetched items into stored items.
//
// Keys:
//
//	rec:<ns>:<key> - one record per logical entity
//
// Sync pattern:
//
//	s, _ := relsync.New[feed.Entry, Release](relsync.Options[feed.Entry, Release]{
//	    Namespace: "registry:prod",
//	    Store:     st,
//	    Codec:     codec.Msgpack[Release]{},
//	    Adapter:   releaseAdapter{},
//	})
//	items, _ := s.Sync(ctx, relsync.CacheKey(endpoint, "acme/widget"), src)
package relsync
