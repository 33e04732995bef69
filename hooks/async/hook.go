// usage:
//
// import (
//
//	"log/slog"
//
//	"github.com/unkn0wn-root/relsync"
//	"github.com/unkn0wn-root/relsync/hooks/async"
//	"github.com/unkn0wn-root/relsync/hooks/sloghook"
//
// )
//
//	raw := sloghook.New(slog.Default(), sloghook.Options{
//	    SelfHealEvery:      10, // sample logs: ~every 10th self-heal
//	    StabilityStopEvery: 1,  // log every stability stop
//	})
//
// hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
// defer hooks.Close()
//
//	s, _ := relsync.New[Entry, Release](relsync.Options[Entry, Release]{
//	    Namespace: "registry:prod",
//	    Store:     st,
//	    Codec:     codec.Msgpack[Release]{},
//	    Adapter:   adapter,
//	    Hooks:     hooks, // or `raw` if you don't want async
//	})
package asynchook

import (
	"sync"

	"github.com/unkn0wn-root/relsync"
)

type Hooks struct {
	inner relsync.Hooks
	q     chan func()
	wg    sync.WaitGroup
	once  sync.Once
}

var _ relsync.Hooks = (*Hooks)(nil)

func New(inner relsync.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

func (h *Hooks) Close() {
	h.once.Do(func() {
		close(h.q)
		h.wg.Wait()
	})
}

func (h *Hooks) try(f func()) {
	select {
	case h.q <- f:
	default: // drop
	}
}

func (h *Hooks) WalkAborted(k string, pages int, err error) {
	h.try(func() { h.inner.WalkAborted(k, pages, err) })
}
func (h *Hooks) StabilityStop(k, ver string)  { h.try(func() { h.inner.StabilityStop(k, ver) }) }
func (h *Hooks) RecordSelfHeal(k, r string)   { h.try(func() { h.inner.RecordSelfHeal(k, r) }) }
func (h *Hooks) StoreWriteRejected(k string)  { h.try(func() { h.inner.StoreWriteRejected(k) }) }
func (h *Hooks) LockContended(k string)       { h.try(func() { h.inner.LockContended(k) }) }
func (h *Hooks) DeletionScan(k string, n int) { h.try(func() { h.inner.DeletionScan(k, n) }) }
func (h *Hooks) StoreWriteFailed(k string, err error) {
	h.try(func() { h.inner.StoreWriteFailed(k, err) })
}
