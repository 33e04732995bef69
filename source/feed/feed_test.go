package feed

import (
	"testing"
	"time"

	"github.com/mmcdole/gofeed"
)

func TestAdapterCoerce(t *testing.T) {
	pub := time.Date(2024, 5, 20, 12, 0, 0, 0, time.UTC)

	t.Run("keeps_guid_and_timestamp", func(t *testing.T) {
		r, ok := Adapter{}.Coerce(&gofeed.Item{
			GUID:            "v1.2.3",
			Title:           "widget v1.2.3",
			Link:            "https://example.com/v1.2.3",
			PublishedParsed: &pub,
		})
		if !ok {
			t.Fatalf("entry with GUID and timestamp should coerce")
		}
		if r.Version() != "v1.2.3" || !r.ReleasedAt().Equal(pub) {
			t.Fatalf("unexpected release: %+v", r)
		}
	})

	t.Run("drops_missing_guid", func(t *testing.T) {
		if _, ok := (Adapter{}).Coerce(&gofeed.Item{PublishedParsed: &pub}); ok {
			t.Fatalf("entry without GUID must be dropped")
		}
	})

	t.Run("drops_missing_timestamp", func(t *testing.T) {
		if _, ok := (Adapter{}).Coerce(&gofeed.Item{GUID: "v1"}); ok {
			t.Fatalf("entry without timestamp must be dropped")
		}
	})

	t.Run("drops_nil", func(t *testing.T) {
		if _, ok := (Adapter{}).Coerce(nil); ok {
			t.Fatalf("nil entry must be dropped")
		}
	})

	t.Run("falls_back_to_updated", func(t *testing.T) {
		upd := pub.Add(time.Hour)
		r, ok := Adapter{}.Coerce(&gofeed.Item{GUID: "v1", UpdatedParsed: &upd})
		if !ok || !r.ReleasedAt().Equal(upd) {
			t.Fatalf("expected updated time fallback, got ok=%v r=%+v", ok, r)
		}
	})
}
