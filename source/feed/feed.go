// Package feed adapts an RSS/Atom release feed to the relsync PageSource
// contract. Syndication feeds carry no continuation cursor, so the whole
// feed is returned as a single terminal page, ordered newest-first by
// published time.
package feed

import (
	"context"
	"sort"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/unkn0wn-root/relsync"
)

type Source struct {
	url    string
	parser *gofeed.Parser
}

var _ relsync.PageSource[*gofeed.Item] = (*Source)(nil)

func New(url string) *Source {
	return &Source{url: url, parser: gofeed.NewParser()}
}

func (s *Source) FetchPage(ctx context.Context, _ string) (relsync.Page[*gofeed.Item], error) {
	f, err := s.parser.ParseURLWithContext(s.url, ctx)
	if err != nil {
		return relsync.Page[*gofeed.Item]{}, err
	}
	items := append([]*gofeed.Item(nil), f.Items...)
	sort.SliceStable(items, func(i, j int) bool {
		return publishedAt(items[i]).After(publishedAt(items[j]))
	})
	return relsync.Page[*gofeed.Item]{Items: items}, nil
}

// Release is a minimal stored item for feed entries, keyed by GUID.
type Release struct {
	Tag         string    `json:"tag" msgpack:"tag"`
	Title       string    `json:"title" msgpack:"title"`
	Link        string    `json:"link" msgpack:"link"`
	PublishedAt time.Time `json:"published_at" msgpack:"published_at"`
}

func (r Release) Version() string       { return r.Tag }
func (r Release) ReleasedAt() time.Time { return r.PublishedAt }

// Adapter coerces feed entries into Releases. Entries without a GUID or a
// parseable timestamp are dropped.
type Adapter struct{}

var _ relsync.Adapter[*gofeed.Item, Release] = Adapter{}

func (Adapter) Coerce(it *gofeed.Item) (Release, bool) {
	if it == nil || it.GUID == "" {
		return Release{}, false
	}
	at := publishedAt(it)
	if at.IsZero() {
		return Release{}, false
	}
	return Release{Tag: it.GUID, Title: it.Title, Link: it.Link, PublishedAt: at}, true
}

func (Adapter) Equivalent(a, b Release) bool { return a == b }

func publishedAt(it *gofeed.Item) time.Time {
	if it.PublishedParsed != nil {
		return *it.PublishedParsed
	}
	if it.UpdatedParsed != nil {
		return *it.UpdatedParsed
	}
	return time.Time{}
}
