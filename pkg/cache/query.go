package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	appErrors "github.com/noah-isme/sma-adp-console/pkg/errors"
)

// DefaultTTL is how long an entry without subscribers stays fresh.
const DefaultTTL = 60 * time.Second

// Tag labels cached data. A tag without ID names a whole resource type.
type Tag struct {
	Type string `json:"type"`
	ID   string `json:"id,omitempty"`
}

// TypeTag returns the list-level tag for a resource type.
func TypeTag(typ string) Tag { return Tag{Type: typ} }

// RecordTag returns the tag for a single record.
func RecordTag(typ, id string) Tag { return Tag{Type: typ, ID: id} }

// Matches reports whether invalidating t affects an entry providing tag p.
func (t Tag) Matches(p Tag) bool {
	if t.Type != p.Type {
		return false
	}
	return t.ID == "" || t.ID == p.ID
}

func (t Tag) String() string {
	if t.ID == "" {
		return t.Type
	}
	return t.Type + ":" + t.ID
}

// Fetcher loads the value for one cache key.
type Fetcher func(ctx context.Context) (interface{}, error)

// Listener receives the outcome of every completed fetch for a subscribed key.
// On failure value holds the last good value, if any.
type Listener func(value interface{}, err error)

// Scheduler runs refetches triggered by invalidation outside the writer's call.
type Scheduler interface {
	Schedule(key string, task func(ctx context.Context)) error
}

// Recorder receives cache measurements.
type Recorder interface {
	RecordCacheOperation(hit bool, duration time.Duration)
	RecordCoalescedWait()
	RecordInvalidation(tag string, entries int)
}

// QueryConfig configures a QueryCache.
type QueryConfig struct {
	TTL       time.Duration
	Scheduler Scheduler
	Recorder  Recorder
	Logger    *zap.Logger
}

// Subscription identifies one registered listener.
type Subscription struct {
	Key string
	id  uint64
}

type entry struct {
	key   string
	tags  []Tag
	fetch Fetcher

	value     interface{}
	err       error
	hasValue  bool
	stale     bool
	expiresAt time.Time
	inflight  bool
	gen       uint64

	subscribers map[uint64]Listener
}

// QueryCache memoizes reads by key, coalesces identical in-flight reads and
// refetches subscribed entries when their tags are invalidated.
type QueryCache struct {
	ttl       time.Duration
	scheduler Scheduler
	recorder  Recorder
	logger    *zap.Logger
	now       func() time.Time

	mu      sync.Mutex
	entries map[string]*entry
	group   singleflight.Group
	nextSub uint64
}

// NewQueryCache constructs an empty cache.
func NewQueryCache(cfg QueryConfig) *QueryCache {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &QueryCache{
		ttl:       cfg.TTL,
		scheduler: cfg.Scheduler,
		recorder:  cfg.Recorder,
		logger:    cfg.Logger,
		now:       time.Now,
		entries:   make(map[string]*entry),
	}
}

// Key builds the cache key for an operation and its arguments. Arguments are
// encoded as JSON, so map keys are sorted and struct fields keep their order.
func Key(op string, args interface{}) string {
	if args == nil {
		return op
	}
	raw, err := json.Marshal(args)
	if err != nil {
		return op + ":" + err.Error()
	}
	return op + ":" + string(raw)
}

// Get returns the cached value for key or loads it with fetch. Concurrent
// callers for the same key share one fetch. The fetch runs detached from ctx:
// a caller whose context ends stops waiting but the request completes.
func (c *QueryCache) Get(ctx context.Context, key string, tags []Tag, fetch Fetcher) (interface{}, error) {
	start := time.Now()

	c.mu.Lock()
	c.pruneLocked()
	e := c.ensureLocked(key, tags, fetch)
	if e.hasValue && !e.stale {
		if len(e.subscribers) == 0 {
			e.expiresAt = c.now().Add(c.ttl)
		}
		value := e.value
		c.mu.Unlock()
		c.record(true, time.Since(start))
		return value, nil
	}
	coalesced := e.inflight
	e.inflight = true
	c.mu.Unlock()
	if coalesced && c.recorder != nil {
		c.recorder.RecordCoalescedWait()
	}

	value, err := c.load(ctx, e)
	c.record(false, time.Since(start))
	return value, err
}

// Peek returns the current value for key without fetching.
func (c *QueryCache) Peek(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok || !e.hasValue {
		return nil, false
	}
	return e.value, true
}

// Subscribe registers fn for every completed fetch of key and returns the
// current value, loading it when missing or stale.
func (c *QueryCache) Subscribe(ctx context.Context, key string, tags []Tag, fetch Fetcher, fn Listener) (Subscription, interface{}, error) {
	c.mu.Lock()
	e := c.ensureLocked(key, tags, fetch)
	c.nextSub++
	sub := Subscription{Key: key, id: c.nextSub}
	e.subscribers[sub.id] = fn
	c.mu.Unlock()

	value, err := c.Get(ctx, key, tags, fetch)
	return sub, value, err
}

// Unsubscribe drops the listener. The entry stays cached for the idle TTL.
func (c *QueryCache) Unsubscribe(sub Subscription) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[sub.Key]
	if !ok {
		return
	}
	delete(e.subscribers, sub.id)
	if len(e.subscribers) == 0 {
		e.expiresAt = c.now().Add(c.ttl)
	}
}

// Invalidate marks entries providing a matching tag as stale. Subscribed
// entries are refetched through the scheduler; the rest are dropped. It
// returns the number of affected entries.
func (c *QueryCache) Invalidate(tags ...Tag) int {
	if len(tags) == 0 {
		return 0
	}

	c.mu.Lock()
	var refetch []string
	affected := 0
	for key, e := range c.entries {
		if !matchesAny(tags, e.tags) {
			continue
		}
		affected++
		e.gen++
		e.inflight = false
		c.group.Forget(key)
		if len(e.subscribers) > 0 {
			e.stale = true
			refetch = append(refetch, key)
			continue
		}
		delete(c.entries, key)
	}
	c.mu.Unlock()

	if c.recorder != nil {
		for _, t := range tags {
			c.recorder.RecordInvalidation(t.Type, affected)
		}
	}
	c.logger.Debug("cache_invalidate", zap.Stringers("tags", tags), zap.Int("entries", affected), zap.Int("refetch", len(refetch)))

	for _, key := range refetch {
		c.scheduleRefetch(key)
	}
	return affected
}

// Refetch reloads key now, bypassing freshness. It fails with CACHE_MISS when
// the key was never read.
func (c *QueryCache) Refetch(ctx context.Context, key string) (interface{}, error) {
	c.mu.Lock()
	e, ok := c.entries[key]
	if ok && !e.inflight {
		e.stale = true
	}
	c.mu.Unlock()
	if !ok {
		return nil, appErrors.ErrCacheMiss
	}
	return c.load(ctx, e)
}

// Reset drops every entry and subscription.
func (c *QueryCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		c.group.Forget(key)
	}
	c.entries = make(map[string]*entry)
	c.logger.Debug("cache_reset")
}

// Len returns the number of cached entries.
func (c *QueryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *QueryCache) load(ctx context.Context, e *entry) (interface{}, error) {
	c.mu.Lock()
	key, fetch, gen := e.key, e.fetch, e.gen
	e.inflight = true
	c.mu.Unlock()

	detached := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (interface{}, error) {
		value, err := fetch(detached)
		c.complete(e, gen, value, err)
		return value, err
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		return res.Val, res.Err
	}
}

func (c *QueryCache) complete(e *entry, gen uint64, value interface{}, err error) {
	c.mu.Lock()
	current, ok := c.entries[e.key]
	if !ok || current != e || e.gen != gen {
		c.mu.Unlock()
		return
	}
	e.inflight = false
	if err == nil {
		e.value, e.err, e.hasValue, e.stale = value, nil, true, false
		if len(e.subscribers) == 0 {
			e.expiresAt = c.now().Add(c.ttl)
		}
	} else {
		e.err = err
		c.logger.Debug("cache_fetch_failed", zap.String("key", e.key), zap.Error(err))
	}
	delivered := value
	if err != nil {
		delivered = e.value
	}
	listeners := make([]Listener, 0, len(e.subscribers))
	for _, fn := range e.subscribers {
		listeners = append(listeners, fn)
	}
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(delivered, err)
	}
}

func (c *QueryCache) scheduleRefetch(key string) {
	task := func(ctx context.Context) {
		if _, err := c.Refetch(ctx, key); err != nil {
			c.logger.Debug("cache_refetch_failed", zap.String("key", key), zap.Error(err))
		}
	}
	if c.scheduler != nil {
		err := c.scheduler.Schedule(key, task)
		if err == nil {
			return
		}
		c.logger.Warn("cache_refetch_schedule_failed", zap.String("key", key), zap.Error(err))
	}
	go task(context.Background())
}

func (c *QueryCache) ensureLocked(key string, tags []Tag, fetch Fetcher) *entry {
	e, ok := c.entries[key]
	if !ok {
		e = &entry{
			key:         key,
			subscribers: make(map[uint64]Listener),
			expiresAt:   c.now().Add(c.ttl),
		}
		c.entries[key] = e
	}
	e.tags = append([]Tag(nil), tags...)
	e.fetch = fetch
	return e
}

func (c *QueryCache) pruneLocked() {
	now := c.now()
	for key, e := range c.entries {
		if len(e.subscribers) > 0 || e.inflight {
			continue
		}
		if now.After(e.expiresAt) {
			delete(c.entries, key)
		}
	}
}

func (c *QueryCache) record(hit bool, d time.Duration) {
	if c.recorder != nil {
		c.recorder.RecordCacheOperation(hit, d)
	}
}

func matchesAny(invalidated, provided []Tag) bool {
	for _, inv := range invalidated {
		for _, p := range provided {
			if inv.Matches(p) {
				return true
			}
		}
	}
	return false
}
