package locker

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the lock key only when it still carries our token,
// so a lease that expired and was re-acquired elsewhere is never released
// by the old holder.
var releaseScript = redis.NewScript(
	`if redis.call("get", KEYS[1]) == ARGV[1] then return redis.call("del", KEYS[1]) else return 0 end`)

// Redis shares per-key locks across processes via SET NX leases. A lease
// expires after ttl even if the holder dies mid-walk, so a crashed replica
// cannot wedge a key forever. Pick a ttl comfortably above the longest
// expected walk.
type Redis struct {
	rdb redis.UniversalClient
	ns  string // logical namespace; should match Options.Namespace
	ttl time.Duration
}

var _ Locker = (*Redis)(nil)

// NewRedis creates a Redis-backed locker. If ttl <= 0, a 1 minute lease is
// used.
func NewRedis(client redis.UniversalClient, namespace string, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &Redis{rdb: client, ns: namespace, ttl: ttl}
}

func (l *Redis) key(k string) string { return "lock:" + l.ns + ":" + k }

func (l *Redis) Acquire(ctx context.Context, key string) (func(), bool, error) {
	token, err := newToken()
	if err != nil {
		return nil, false, err
	}
	k := l.key(key)
	ok, err := l.rdb.SetNX(ctx, k, token, l.ttl).Result()
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}
	release := func() {
		// best-effort; the lease expires on its own if this fails
		_ = releaseScript.Run(context.Background(), l.rdb, []string{k}, token).Err()
	}
	return release, true, nil
}

// Close closes the underlying Redis client.
func (l *Redis) Close(context.Context) error { return l.rdb.Close() }

func newToken() (string, error) {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", fmt.Errorf("lock token: %w", err)
	}
	return hex.EncodeToString(b[:]), nil
}
