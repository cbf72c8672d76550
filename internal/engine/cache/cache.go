// Package cache implements the two-tier artifact cache keyed by combined fingerprint.
package cache

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/hashicorp/golang-lru/v2/simplelru"
	"go.trai.ch/press/internal/adapters/codec" //nolint:depguard // Cache entries use the canonical CBOR encoding
	"go.trai.ch/press/internal/core/domain"
	"go.trai.ch/press/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/singleflight"
)

// Cache events reported to ports.Metrics.
const (
	EventHit        = "hit"
	EventMiss       = "miss"
	EventEviction   = "eviction"
	EventCorruption = "corruption"
)

// ComputeFunc builds the artifact for a missing fingerprint.
type ComputeFunc func(ctx context.Context) (domain.Artifact, error)

// Options bounds the in-memory tier.
type Options struct {
	MaxEntries int
	MaxBytes   int64
}

// envelope is the persisted form of a cache entry.
type envelope struct {
	Key        domain.Fingerprint `cbor:"key"`
	Checksum   uint64             `cbor:"checksum"`
	Size       int64              `cbor:"size"`
	CreatedAt  int64              `cbor:"created_at"`
	LastAccess int64              `cbor:"last_access"`
	Payload    []byte             `cbor:"payload"`
}

type entry struct {
	artifact   domain.Artifact
	size       int64
	createdAt  time.Time
	lastAccess time.Time
}

type result struct {
	artifact domain.Artifact
	hit      bool
}

// Cache is safe for concurrent use by many build workers.
type Cache struct {
	store   ports.BlobStore
	logger  ports.Logger
	metrics ports.Metrics
	opts    Options
	now     func() time.Time

	mu     sync.Mutex
	lru    *simplelru.LRU[domain.Fingerprint, *entry]
	bytes  int64
	pinned map[domain.Fingerprint]int

	group singleflight.Group
}

// New creates a Cache persisting through store. metrics may be nil.
func New(store ports.BlobStore, logger ports.Logger, metrics ports.Metrics, opts Options) (*Cache, error) {
	if opts.MaxEntries <= 0 {
		opts.MaxEntries = domain.DefaultCacheMaxEntries
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = domain.DefaultCacheMaxBytes
	}

	// Capacity is enforced by trim so that pinned entries can be skipped.
	lru, err := simplelru.NewLRU[domain.Fingerprint, *entry](math.MaxInt, nil)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to create cache index")
	}

	return &Cache{
		store:   store,
		logger:  logger,
		metrics: metrics,
		opts:    opts,
		now:     time.Now,
		lru:     lru,
		pinned:  make(map[domain.Fingerprint]int),
	}, nil
}

// GetOrCompute returns the artifact for fp, computing and storing it on a
// miss. Concurrent calls for the same fingerprint share one computation and
// all receive its result or its error. hit reports whether the artifact came
// from either cache tier.
func (c *Cache) GetOrCompute(ctx context.Context, fp domain.Fingerprint, compute ComputeFunc) (domain.Artifact, bool, error) {
	c.pin(fp)
	defer c.unpin(fp)

	if a, ok := c.memGet(fp); ok {
		c.event(EventHit)
		return a, true, nil
	}

	ch := c.group.DoChan(fp.String(), func() (any, error) {
		if a, ok := c.memGet(fp); ok {
			return result{artifact: a, hit: true}, nil
		}
		if a, ok := c.diskGet(ctx, fp); ok {
			return result{artifact: a, hit: true}, nil
		}

		a, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		a = a.Clone()
		c.persist(ctx, fp, a)
		c.insert(fp, a, c.now())
		return result{artifact: a}, nil
	})

	select {
	case <-ctx.Done():
		return domain.Artifact{}, false, zerr.Wrap(domain.ErrBuildCancelled, ctx.Err().Error())
	case r := <-ch:
		if r.Err != nil {
			return domain.Artifact{}, false, r.Err
		}
		res, _ := r.Val.(result)
		if res.hit {
			c.event(EventHit)
		} else {
			c.event(EventMiss)
		}
		return res.artifact.Clone(), res.hit, nil
	}
}

// Lookup returns the artifact for fp without computing it. Corrupt persisted
// entries are invalidated and reported as misses.
func (c *Cache) Lookup(ctx context.Context, fp domain.Fingerprint) (domain.Artifact, bool) {
	if a, ok := c.memGet(fp); ok {
		return a, true
	}
	a, ok := c.diskGet(ctx, fp)
	if !ok {
		return domain.Artifact{}, false
	}
	return a.Clone(), true
}

// Invalidate drops fp from both tiers.
func (c *Cache) Invalidate(ctx context.Context, fp domain.Fingerprint) error {
	c.mu.Lock()
	c.removeLocked(fp)
	c.mu.Unlock()

	if err := c.store.Delete(ctx, fp.String()); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to invalidate cache entry"), "fingerprint", fp.Short())
	}
	return nil
}

// Prune removes persisted entries whose fingerprint is not in keep and
// returns how many were removed. Pinned entries are never pruned.
func (c *Cache) Prune(ctx context.Context, keep map[domain.Fingerprint]struct{}) (int, error) {
	keys, err := c.store.Keys(ctx)
	if err != nil {
		return 0, zerr.Wrap(err, "failed to list cache entries")
	}

	removed := 0
	for _, key := range keys {
		fp, err := domain.ParseFingerprint(key)
		if err != nil {
			// Foreign blob in the cache directory.
			if err := c.store.Delete(ctx, key); err != nil {
				return removed, err
			}
			removed++
			continue
		}
		if _, ok := keep[fp]; ok || c.isPinned(fp) {
			continue
		}
		if err := c.Invalidate(ctx, fp); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

// Len returns the number of entries held in memory.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// Size returns the bytes held in memory.
func (c *Cache) Size() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bytes
}

// Close releases the in-memory tier. Persisted entries remain.
func (c *Cache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Purge()
	c.bytes = 0
	return nil
}

func (c *Cache) memGet(fp domain.Fingerprint) (domain.Artifact, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.lru.Get(fp)
	if !ok {
		return domain.Artifact{}, false
	}
	e.lastAccess = c.now()
	return e.artifact.Clone(), true
}

func (c *Cache) diskGet(ctx context.Context, fp domain.Fingerprint) (domain.Artifact, bool) {
	data, ok, err := c.store.Get(ctx, fp.String())
	if err != nil {
		if errors.Is(err, domain.ErrCacheCorruption) {
			c.corrupt(ctx, fp, err)
		} else {
			c.logger.Warn("cache read failed, treating as miss", "fingerprint", fp.Short(), "error", err)
		}
		return domain.Artifact{}, false
	}
	if !ok {
		return domain.Artifact{}, false
	}

	a, created, err := decodeEntry(fp, data)
	if err != nil {
		c.corrupt(ctx, fp, err)
		return domain.Artifact{}, false
	}
	c.insert(fp, a, created)
	return a, true
}

func (c *Cache) corrupt(ctx context.Context, fp domain.Fingerprint, err error) {
	c.event(EventCorruption)
	c.logger.Warn("corrupt cache entry discarded", "fingerprint", fp.Short(), "error", err)
	if err := c.Invalidate(ctx, fp); err != nil {
		c.logger.Error(err)
	}
}

func (c *Cache) persist(ctx context.Context, fp domain.Fingerprint, a domain.Artifact) {
	data, err := encodeEntry(fp, a, c.now())
	if err == nil {
		err = c.store.Put(ctx, fp.String(), data)
	}
	if err != nil {
		c.logger.Warn("cache write failed, entry kept in memory only", "fingerprint", fp.Short(), "error", err)
	}
}

func (c *Cache) insert(fp domain.Fingerprint, a domain.Artifact, created time.Time) {
	size := a.Size()

	c.mu.Lock()
	defer c.mu.Unlock()

	if size > c.opts.MaxBytes {
		return
	}
	c.removeLocked(fp)
	c.lru.Add(fp, &entry{artifact: a, size: size, createdAt: created, lastAccess: c.now()})
	c.bytes += size
	c.trimLocked()
}

// trimLocked evicts least recently used unpinned entries until both limits hold.
func (c *Cache) trimLocked() {
	if c.lru.Len() <= c.opts.MaxEntries && c.bytes <= c.opts.MaxBytes {
		return
	}
	for _, fp := range c.lru.Keys() {
		if c.lru.Len() <= c.opts.MaxEntries && c.bytes <= c.opts.MaxBytes {
			return
		}
		if c.pinned[fp] > 0 {
			continue
		}
		c.removeLocked(fp)
		c.event(EventEviction)
	}
}

func (c *Cache) removeLocked(fp domain.Fingerprint) {
	if e, ok := c.lru.Peek(fp); ok {
		c.bytes -= e.size
		c.lru.Remove(fp)
	}
}

func (c *Cache) pin(fp domain.Fingerprint) {
	c.mu.Lock()
	c.pinned[fp]++
	c.mu.Unlock()
}

func (c *Cache) unpin(fp domain.Fingerprint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pinned[fp]--; c.pinned[fp] <= 0 {
		delete(c.pinned, fp)
	}
	c.trimLocked()
}

func (c *Cache) isPinned(fp domain.Fingerprint) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pinned[fp] > 0
}

func (c *Cache) event(name string) {
	if c.metrics != nil {
		c.metrics.CacheEvent(name)
	}
}

func encodeEntry(fp domain.Fingerprint, a domain.Artifact, now time.Time) ([]byte, error) {
	payload, err := codec.Marshal(a)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to encode artifact")
	}
	env := envelope{
		Key:        fp,
		Checksum:   xxhash.Sum64(payload),
		Size:       int64(len(payload)),
		CreatedAt:  now.UnixNano(),
		LastAccess: now.UnixNano(),
		Payload:    payload,
	}
	data, err := codec.Marshal(env)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to encode cache envelope")
	}
	return data, nil
}

func decodeEntry(fp domain.Fingerprint, data []byte) (domain.Artifact, time.Time, error) {
	var env envelope
	if err := codec.Unmarshal(data, &env); err != nil {
		return domain.Artifact{}, time.Time{}, zerr.Wrap(domain.ErrCacheCorruption, "undecodable envelope")
	}
	if env.Key != fp {
		return domain.Artifact{}, time.Time{}, zerr.With(zerr.Wrap(domain.ErrCacheCorruption, "key mismatch"), "stored", env.Key.Short())
	}
	if int64(len(env.Payload)) != env.Size || xxhash.Sum64(env.Payload) != env.Checksum {
		return domain.Artifact{}, time.Time{}, zerr.Wrap(domain.ErrCacheCorruption, "checksum mismatch")
	}

	var a domain.Artifact
	if err := codec.Unmarshal(env.Payload, &a); err != nil {
		return domain.Artifact{}, time.Time{}, zerr.Wrap(domain.ErrCacheCorruption, "undecodable artifact")
	}
	return a, time.Unix(0, env.CreatedAt), nil
}
