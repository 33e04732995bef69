package relsync

import (
	"sort"
	"time"

	"github.com/unkn0wn-root/relsync/internal/wire"
)

// Record is one persisted mirror of a remote entity's release set.
// CreatedAt is fixed at first persistence and anchors the retention window;
// UpdatedAt moves on every completed sync. Items is keyed by version.
type Record[V Item] struct {
	CreatedAt time.Time
	UpdatedAt time.Time
	Items     map[string]V
}

func (r Record[V]) values() []V {
	if len(r.Items) == 0 {
		return nil
	}
	out := make([]V, 0, len(r.Items))
	for _, v := range r.Items {
		out = append(out, v)
	}
	return out
}

func (s *syncer[F, V]) encodeRecord(rec Record[V]) ([]byte, error) {
	// deterministic item order for stable encodings
	vers := make([]string, 0, len(rec.Items))
	for ver := range rec.Items {
		vers = append(vers, ver)
	}
	sort.Strings(vers)

	items := make([]wire.Item, 0, len(vers))
	for _, ver := range vers {
		payload, err := s.codec.Encode(rec.Items[ver])
		if err != nil {
			return nil, err
		}
		items = append(items, wire.Item{Version: ver, Payload: payload})
	}
	return wire.Encode(wire.Record{
		CreatedAt: rec.CreatedAt.UnixNano(),
		UpdatedAt: rec.UpdatedAt.UnixNano(),
		Items:     items,
	})
}

func (s *syncer[F, V]) decodeRecord(b []byte) (Record[V], error) {
	wr, err := wire.Decode(b)
	if err != nil {
		return Record[V]{}, err
	}
	items := make(map[string]V, len(wr.Items))
	for _, it := range wr.Items {
		v, err := s.codec.Decode(it.Payload)
		if err != nil {
			return Record[V]{}, err
		}
		if v.Version() != it.Version {
			// frame and payload disagree; treat the whole record as corrupt
			return Record[V]{}, wire.ErrCorrupt
		}
		items[it.Version] = v
	}
	return Record[V]{
		CreatedAt: time.Unix(0, wr.CreatedAt),
		UpdatedAt: time.Unix(0, wr.UpdatedAt),
		Items:     items,
	}, nil
}
