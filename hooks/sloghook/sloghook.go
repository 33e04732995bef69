// Package sloghook implements relsync.Hooks on log/slog with optional
// sampling for the chatty events.
package sloghook

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync/atomic"

	"github.com/unkn0wn-root/relsync"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	SelfHealEvery      uint64
	StabilityStopEvery uint64
	// Optional key redactor. Defaults to SHA-256 prefix.
	Redact func(string) string
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	selfHealCtr      atomic.Uint64
	stabilityStopCtr atomic.Uint64
}

var _ relsync.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func (h *Hooks) redact(k string) string {
	if h.opts.Redact != nil {
		return h.opts.Redact(k)
	}
	sum := sha256.Sum256([]byte(k))
	return hex.EncodeToString(sum[:8])
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) WalkAborted(key string, pages int, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("relsync.walk_aborted",
		"key", h.redact(key),
		"pages", pages,
		"err", err)
}

func (h *Hooks) StabilityStop(key, version string) {
	if h.l == nil || !sample(h.opts.StabilityStopEvery, &h.stabilityStopCtr) {
		return
	}
	h.l.Debug("relsync.stability_stop",
		"key", h.redact(key),
		"version", version)
}

func (h *Hooks) RecordSelfHeal(storageKey, reason string) {
	if h.l == nil || !sample(h.opts.SelfHealEvery, &h.selfHealCtr) {
		return
	}
	h.l.Debug("relsync.record_self_heal",
		"key", h.redact(storageKey),
		"reason", reason)
}

func (h *Hooks) StoreWriteRejected(storageKey string) {
	if h.l == nil {
		return
	}
	h.l.Debug("relsync.store_write_rejected",
		"key", h.redact(storageKey))
}

func (h *Hooks) StoreWriteFailed(storageKey string, err error) {
	if h.l == nil {
		return
	}
	h.l.Error("relsync.store_write_failed",
		"key", h.redact(storageKey),
		"err", err)
}

func (h *Hooks) DeletionScan(key string, removed int) {
	if h.l == nil {
		return
	}
	h.l.Debug("relsync.deletion_scan",
		"key", h.redact(key),
		"removed", removed)
}

func (h *Hooks) LockContended(key string) {
	if h.l == nil {
		return
	}
	h.l.Debug("relsync.lock_contended",
		"key", h.redact(key))
}
