package resilite

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/unkn0wn-root/resilite/codec"
	"github.com/unkn0wn-root/resilite/internal/util"
	"github.com/unkn0wn-root/resilite/internal/wire"
	st "github.com/unkn0wn-root/resilite/store"
	"github.com/unkn0wn-root/resilite/store/memory"
)

const storeKeyPrefix = "q"

// QueryCache memoizes read results keyed by normalized query text.
//
// The cache is an explicit object with a defined lifecycle: construct once,
// hand it to every caller that needs it, Close it when done. There is no
// package-global state. Safe for concurrent use; concurrent misses on the
// same key are collapsed to a single execution of the miss operation.
//
// Keying is by query TEXT ONLY - bound parameters do not participate. Two
// logically distinct queries with identical text and different parameters
// collide, and the later caller silently receives the earlier snapshot.
// This mirrors the documented contract of Query.CacheKey.
type QueryCache struct {
	store st.Store
	codec codec.Codec[Rows]
	log   Logger
	hooks Hooks

	epoch atomic.Uint64
	group singleflight.Group
}

// CacheOptions tune QueryCache. All fields are optional: the default store
// is an unbounded in-process map and the default codec is msgpack, which
// round-trips the driver's integer and blob types exactly. Pick codec.JSON
// when human-readable entries matter more than type fidelity.
type CacheOptions struct {
	Store  st.Store
	Codec  codec.Codec[Rows]
	Logger Logger
	Hooks  Hooks
}

func NewQueryCache(opts CacheOptions) (*QueryCache, error) {
	c := &QueryCache{
		store: opts.Store,
		codec: opts.Codec,
	}
	if c.store == nil {
		c.store = memory.New()
	}
	if c.codec == nil {
		c.codec = codec.Msgpack[Rows]{}
	}
	c.log = coalesce[Logger](opts.Logger, NopLogger{})
	c.hooks = coalesce[Hooks](opts.Hooks, NopHooks{})
	return c, nil
}

// Fetch returns the cached snapshot for text when present; otherwise it runs
// miss, stores the result, and returns it. A cache miss is never an error.
//
// Concurrent Fetch calls for one key share a single execution of miss; the
// shared execution runs under the first caller's context, so its
// cancellation propagates to every waiter of that flight.
func (c *QueryCache) Fetch(ctx context.Context, text string, miss Operation[Rows]) (Rows, error) {
	key := NormalizeQueryText(text)
	if key == "" {
		// nothing to key on; run uncached
		return miss(ctx)
	}

	if rows, ok := c.lookup(ctx, key); ok {
		c.log.Debug("cache hit", Fields{"key": key})
		return rows, nil
	}

	v, err, shared := c.group.Do(key, func() (any, error) {
		// another flight may have populated the key after our lookup
		if rows, ok := c.lookup(ctx, key); ok {
			return rows, nil
		}
		epoch := c.epoch.Load()
		rows, err := miss(ctx)
		if err != nil {
			return nil, err
		}
		c.put(ctx, key, epoch, rows)
		return rows, nil
	})
	if shared {
		c.hooks.CacheCollapsed(key)
	}
	if err != nil {
		return nil, err
	}
	return v.(Rows), nil
}

// Invalidate deletes the entry for text. Best-effort: a miss already in
// flight for the same key may repopulate the entry after the delete.
func (c *QueryCache) Invalidate(ctx context.Context, text string) error {
	key := NormalizeQueryText(text)
	if key == "" {
		return nil
	}
	return c.store.Del(ctx, util.StoreKey(storeKeyPrefix, key))
}

// InvalidateAll bumps the cache epoch. Entries written under earlier epochs
// fail validation on their next read and are deleted then (self-heal); the
// bump itself touches no stored bytes.
func (c *QueryCache) InvalidateAll() {
	c.epoch.Add(1)
}

func (c *QueryCache) Close(ctx context.Context) error {
	return c.store.Close(ctx)
}

func (c *QueryCache) lookup(ctx context.Context, key string) (Rows, bool) {
	sk := util.StoreKey(storeKeyPrefix, key)
	raw, ok, err := c.store.Get(ctx, sk)
	if err != nil {
		c.log.Warn("store get error; treating as miss", Fields{"key": key, "err": err})
		return nil, false
	}
	if !ok {
		return nil, false
	}
	epoch, storedKey, payload, err := wire.Decode(raw)
	if err != nil {
		c.selfHeal(ctx, sk, key, "corrupt")
		return nil, false
	}
	if storedKey != key {
		// hash collision or foreign write under our key prefix
		c.selfHeal(ctx, sk, key, "key_mismatch")
		return nil, false
	}
	if epoch != c.epoch.Load() {
		c.selfHeal(ctx, sk, key, "epoch_mismatch")
		return nil, false
	}
	rows, err := c.codec.Decode(payload)
	if err != nil {
		c.selfHeal(ctx, sk, key, "decode_error")
		return nil, false
	}
	return rows, true
}

func (c *QueryCache) selfHeal(ctx context.Context, storageKey, key, reason string) {
	_ = c.store.Del(ctx, storageKey)
	c.hooks.CacheSelfHeal(key, reason)
	c.log.Debug("self-healed cache entry", Fields{"key": key, "reason": reason})
}

func (c *QueryCache) put(ctx context.Context, key string, epoch uint64, rows Rows) {
	payload, err := c.codec.Encode(rows)
	if err != nil {
		c.log.Warn("snapshot encode failed; result not cached", Fields{"key": key, "err": err})
		return
	}
	if epoch != c.epoch.Load() {
		// invalidated while the miss ran; skip stale write
		c.log.Debug("put skipped (epoch moved)", Fields{"key": key})
		return
	}
	ok, err := c.store.Set(ctx, util.StoreKey(storeKeyPrefix, key), wire.Encode(epoch, key, payload))
	if err != nil {
		c.log.Warn("store set error; result not cached", Fields{"key": key, "err": err})
		return
	}
	if !ok {
		c.hooks.StoreSetRejected(key)
		c.log.Debug("set rejected by store (pressure)", Fields{"key": key})
	}
}
