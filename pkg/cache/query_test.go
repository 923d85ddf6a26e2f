package cache

import (
	"context"
	stdErrors "errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/sma-adp-console/pkg/errors"
)

type syncScheduler struct {
	mu   sync.Mutex
	keys []string
}

func (s *syncScheduler) Schedule(key string, task func(ctx context.Context)) error {
	s.mu.Lock()
	s.keys = append(s.keys, key)
	s.mu.Unlock()
	task(context.Background())
	return nil
}

type countingRecorder struct {
	hits, misses, coalesced, invalidations int64
}

func (r *countingRecorder) RecordCacheOperation(hit bool, _ time.Duration) {
	if hit {
		atomic.AddInt64(&r.hits, 1)
		return
	}
	atomic.AddInt64(&r.misses, 1)
}

func (r *countingRecorder) RecordCoalescedWait() { atomic.AddInt64(&r.coalesced, 1) }

func (r *countingRecorder) RecordInvalidation(string, int) { atomic.AddInt64(&r.invalidations, 1) }

func TestTagMatching(t *testing.T) {
	assert.True(t, TypeTag("Fee").Matches(RecordTag("Fee", "1")))
	assert.True(t, TypeTag("Fee").Matches(TypeTag("Fee")))
	assert.True(t, RecordTag("Fee", "1").Matches(RecordTag("Fee", "1")))
	assert.False(t, RecordTag("Fee", "1").Matches(RecordTag("Fee", "2")))
	assert.False(t, RecordTag("Fee", "1").Matches(TypeTag("Fee")))
	assert.False(t, TypeTag("Fee").Matches(TypeTag("Payment")))
	assert.Equal(t, "Notice:7", RecordTag("Notice", "7").String())
}

func TestKeyIsCanonical(t *testing.T) {
	a := Key("getUsers", map[string]interface{}{"role": "teacher", "page": 1})
	b := Key("getUsers", map[string]interface{}{"page": 1, "role": "teacher"})
	assert.Equal(t, a, b)
	assert.Equal(t, "getSettings", Key("getSettings", nil))
	assert.NotEqual(t, Key("getUsers", map[string]int{"page": 1}), Key("getUsers", map[string]int{"page": 2}))
}

func TestGetCachesFreshValue(t *testing.T) {
	rec := &countingRecorder{}
	c := NewQueryCache(QueryConfig{Recorder: rec})
	var calls int32
	fetch := func(context.Context) (interface{}, error) {
		atomic.AddInt32(&calls, 1)
		return "v", nil
	}

	for i := 0; i < 3; i++ {
		v, err := c.Get(context.Background(), "k", []Tag{TypeTag("User")}, fetch)
		require.NoError(t, err)
		assert.Equal(t, "v", v)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Equal(t, int64(2), rec.hits)
	assert.Equal(t, int64(1), rec.misses)
}

func TestConcurrentIdenticalReadsShareOneRequest(t *testing.T) {
	rec := &countingRecorder{}
	c := NewQueryCache(QueryConfig{Recorder: rec})
	release := make(chan struct{})
	var calls int32
	fetch := func(context.Context) (interface{}, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return []string{"a"}, nil
	}

	var wg sync.WaitGroup
	results := make([]interface{}, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := c.Get(context.Background(), "getFees:{}", []Tag{TypeTag("Fee")}, fetch)
			assert.NoError(t, err)
			results[i] = v
		}(i)
	}

	require.Eventually(t, func() bool { return atomic.LoadInt64(&rec.coalesced) == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Equal(t, results[0], results[1])
}

func TestCancelledCallerDoesNotCancelSharedFetch(t *testing.T) {
	c := NewQueryCache(QueryConfig{})
	release := make(chan struct{})
	var fetchErr atomic.Value
	fetch := func(ctx context.Context) (interface{}, error) {
		<-release
		if err := ctx.Err(); err != nil {
			fetchErr.Store(err)
		}
		return "done", nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := c.Get(ctx, "k", nil, fetch)
		errCh <- err
	}()
	time.Sleep(10 * time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-errCh, context.Canceled)

	close(release)
	require.Eventually(t, func() bool {
		v, ok := c.Peek("k")
		return ok && v == "done"
	}, time.Second, 5*time.Millisecond)
	assert.Nil(t, fetchErr.Load())
}

func TestInvalidateRefetchesSubscribedEntries(t *testing.T) {
	sched := &syncScheduler{}
	c := NewQueryCache(QueryConfig{Scheduler: sched})
	var version int32
	fetch := func(context.Context) (interface{}, error) {
		return atomic.AddInt32(&version, 1), nil
	}

	var mu sync.Mutex
	var seen []interface{}
	sub, v, err := c.Subscribe(context.Background(), "getFees", []Tag{TypeTag("Fee")}, fetch, func(value interface{}, err error) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, value)
	})
	require.NoError(t, err)
	assert.Equal(t, int32(1), v)

	_, err = c.Get(context.Background(), "getBooks", []Tag{TypeTag("Book")}, func(context.Context) (interface{}, error) { return "books", nil })
	require.NoError(t, err)

	assert.Equal(t, 1, c.Invalidate(TypeTag("Fee"), RecordTag("Fee", "9")))
	assert.Equal(t, []string{"getFees"}, sched.keys)

	mu.Lock()
	assert.Equal(t, []interface{}{int32(1), int32(2)}, seen)
	mu.Unlock()

	got, ok := c.Peek("getFees")
	require.True(t, ok)
	assert.Equal(t, int32(2), got)

	_, ok = c.Peek("getBooks")
	assert.True(t, ok)

	c.Unsubscribe(sub)
	assert.Equal(t, 1, c.Invalidate(TypeTag("Fee")))
	_, ok = c.Peek("getFees")
	assert.False(t, ok)
}

func TestRecordTagInvalidationIsScoped(t *testing.T) {
	c := NewQueryCache(QueryConfig{Scheduler: &syncScheduler{}})
	value := func(v string) Fetcher {
		return func(context.Context) (interface{}, error) { return v, nil }
	}
	_, _ = c.Get(context.Background(), "notice:1", []Tag{RecordTag("Notice", "1")}, value("one"))
	_, _ = c.Get(context.Background(), "notice:2", []Tag{RecordTag("Notice", "2")}, value("two"))

	assert.Equal(t, 1, c.Invalidate(RecordTag("Notice", "1")))
	_, ok := c.Peek("notice:1")
	assert.False(t, ok)
	_, ok = c.Peek("notice:2")
	assert.True(t, ok)
}

func TestFailedRefetchKeepsLastGoodValue(t *testing.T) {
	c := NewQueryCache(QueryConfig{Scheduler: &syncScheduler{}})
	fail := false
	fetch := func(context.Context) (interface{}, error) {
		if fail {
			return nil, appErrors.ErrRequestFailed
		}
		return "good", nil
	}

	var lastValue interface{}
	var lastErr error
	_, _, err := c.Subscribe(context.Background(), "k", []Tag{TypeTag("Role")}, fetch, func(v interface{}, err error) {
		lastValue, lastErr = v, err
	})
	require.NoError(t, err)

	fail = true
	c.Invalidate(TypeTag("Role"))
	assert.Equal(t, "good", lastValue)
	assert.True(t, stdErrors.Is(lastErr, appErrors.ErrRequestFailed))

	v, ok := c.Peek("k")
	require.True(t, ok)
	assert.Equal(t, "good", v)
}

func TestIdleEntriesExpire(t *testing.T) {
	c := NewQueryCache(QueryConfig{TTL: time.Minute})
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	var calls int32
	fetch := func(context.Context) (interface{}, error) {
		atomic.AddInt32(&calls, 1)
		return "x", nil
	}
	_, _ = c.Get(context.Background(), "k", nil, fetch)
	now = now.Add(30 * time.Second)
	_, _ = c.Get(context.Background(), "k", nil, fetch)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	now = now.Add(2 * time.Minute)
	_, _ = c.Get(context.Background(), "k", nil, fetch)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestRefetchAndReset(t *testing.T) {
	c := NewQueryCache(QueryConfig{})
	_, err := c.Refetch(context.Background(), "missing")
	assert.True(t, stdErrors.Is(err, appErrors.ErrCacheMiss))

	var calls int32
	fetch := func(context.Context) (interface{}, error) { return atomic.AddInt32(&calls, 1), nil }
	_, _ = c.Get(context.Background(), "k", nil, fetch)
	v, err := c.Refetch(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, int32(2), v)

	c.Reset()
	assert.Zero(t, c.Len())
}
