package relsync

import "context"

// Page is one slice of the remote feed. Items are ordered newest-first by
// release time; the sequence across pages forms a single newest-to-oldest
// stream. EndCursor is opaque to the engine and only meaningful when
// HasNextPage is true.
type Page[F any] struct {
	Items       []F
	HasNextPage bool
	EndCursor   string
}

// PageSource produces pages of the remote feed one at a time. The first
// request of a walk passes an empty cursor; subsequent requests pass the
// EndCursor of the previous page. Any non-nil error aborts the walk.
type PageSource[F any] interface {
	FetchPage(ctx context.Context, cursor string) (Page[F], error)
}

// PageFunc adapts a plain function to a PageSource.
type PageFunc[F any] func(ctx context.Context, cursor string) (Page[F], error)

func (f PageFunc[F]) FetchPage(ctx context.Context, cursor string) (Page[F], error) {
	return f(ctx, cursor)
}

// Adapter supplies the domain-specific half of a sync: how a raw fetched
// item becomes a stored item, and when two stored items count as the same.
type Adapter[F any, V Item] interface {
	// Coerce converts one fetched item. ok=false drops the item entirely:
	// it is excluded from the result, from the record, and from stability
	// checks.
	Coerce(fetched F) (v V, ok bool)

	// Equivalent reports whether two stored items are semantically equal.
	// The merge policy replaces on upsert regardless; the engine uses this
	// only to classify upserts as changed vs. unchanged for hooks/logging.
	Equivalent(a, b V) bool
}
