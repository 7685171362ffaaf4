package petango

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bigwing/petango/internal/singleflight"
)

const testRememberKey = "remember_key"

func TestRememberCachesValue(t *testing.T) {
	cache := NewInMemoryCache()
	ctx := context.Background()
	calls := 0
	produce := func(context.Context) (string, error) {
		calls++
		return "produced", nil
	}

	for i := 0; i < 3; i++ {
		got, err := Remember(ctx, cache, testRememberKey, time.Minute, produce)
		if err != nil {
			t.Fatalf("Remember() error: %v", err)
		}
		if got != "produced" {
			t.Errorf("Remember() = %q, want %q", got, "produced")
		}
	}
	if calls != 1 {
		t.Errorf("producer called %d times, want 1", calls)
	}
}

func TestRememberDoesNotCacheErrors(t *testing.T) {
	cache := NewInMemoryCache()
	ctx := context.Background()
	errBoom := errors.New("boom")
	calls := 0
	produce := func(context.Context) (string, error) {
		calls++
		if calls == 1 {
			return "", errBoom
		}
		return "ok", nil
	}

	if _, err := Remember(ctx, cache, testRememberKey, time.Minute, produce); !errors.Is(err, errBoom) {
		t.Fatalf("first call error = %v, want boom", err)
	}
	if _, ok, _ := cache.Get(ctx, testRememberKey); ok {
		t.Fatal("failure was cached")
	}

	got, err := Remember(ctx, cache, testRememberKey, time.Minute, produce)
	if err != nil || got != "ok" {
		t.Errorf("second call = %q, %v; want ok", got, err)
	}
	if calls != 2 {
		t.Errorf("producer called %d times, want 2", calls)
	}
}

func TestRememberRecomputesAfterExpiry(t *testing.T) {
	cache := NewInMemoryCache()
	now := time.Now()
	cache.now = func() time.Time { return now }
	ctx := context.Background()
	calls := 0
	produce := func(context.Context) (int, error) {
		calls++
		return calls, nil
	}

	first, _ := Remember(ctx, cache, testRememberKey, time.Minute, produce)
	now = now.Add(2 * time.Minute)
	second, _ := Remember(ctx, cache, testRememberKey, time.Minute, produce)

	if first != 1 || second != 2 {
		t.Errorf("got %d then %d, want 1 then 2", first, second)
	}
}

func TestRememberRecords(t *testing.T) {
	cache := NewInMemoryCache()
	ctx := context.Background()
	calls := 0
	produce := func(context.Context) ([]*Record, error) {
		calls++
		a := NewRecord()
		a.Set("ID", "1")
		a.Set("Name", "Rex")
		return []*Record{a}, nil
	}

	_, _ = Remember(ctx, cache, testRememberKey, time.Minute, produce)
	got, err := Remember(ctx, cache, testRememberKey, time.Minute, produce)
	if err != nil {
		t.Fatalf("Remember() error: %v", err)
	}
	if calls != 1 {
		t.Fatalf("producer called %d times, want 1", calls)
	}
	if len(got) != 1 || got[0].Get("Name") != "Rex" {
		t.Errorf("cached records = %v", got)
	}
	if names := got[0].FieldNames(); len(names) != 2 || names[0] != "ID" {
		t.Errorf("field order lost through cache: %v", names)
	}
}

func TestRememberWithoutCache(t *testing.T) {
	ctx := context.Background()
	calls := 0
	produce := func(context.Context) (string, error) {
		calls++
		return "v", nil
	}

	_, _ = Remember(ctx, nil, testRememberKey, time.Minute, produce)
	_, _ = Remember(ctx, nil, testRememberKey, time.Minute, produce)
	if calls != 2 {
		t.Errorf("producer called %d times without cache, want 2", calls)
	}
}

type failingCache struct{}

func (failingCache) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("read failed")
}

func (failingCache) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("write failed")
}

func (failingCache) Delete(context.Context, string) error {
	return errors.New("delete failed")
}

func TestRememberCacheFailuresAreMisses(t *testing.T) {
	logger := &recordingLogger{}
	ca := &cacheAside{cache: failingCache{}, logger: logger}

	got, err := remember(context.Background(), ca, "op", testRememberKey, time.Minute, func(context.Context) (string, error) {
		return "v", nil
	})
	if err != nil || got != "v" {
		t.Errorf("remember() = %q, %v; want v, nil", got, err)
	}
	if n := logger.count("warn"); n != 2 {
		t.Errorf("expected 2 warnings (read and write), got %d: %v", n, logger)
	}
}

func TestRememberUndecodableEntry(t *testing.T) {
	cache := NewInMemoryCache()
	ctx := context.Background()
	_ = cache.Set(ctx, testRememberKey, []byte("{not json"), time.Minute)

	got, err := Remember(ctx, cache, testRememberKey, time.Minute, func(context.Context) (int, error) {
		return 42, nil
	})
	if err != nil || got != 42 {
		t.Errorf("Remember() = %d, %v; want 42", got, err)
	}
}

func newCoalescingAside() *cacheAside {
	return &cacheAside{
		cache:  NewInMemoryCache(),
		logger: NopLogger{},
		group:  singleflight.New[[]byte](),
	}
}

func waitForWaiters(t *testing.T, ca *cacheAside, key string, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for ca.group.Waiters(key) < n {
		if time.Now().After(deadline) {
			t.Fatalf("only %d of %d callers joined the flight", ca.group.Waiters(key), n)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestRememberCoalescing(t *testing.T) {
	ca := newCoalescingAside()

	var calls atomic.Int32
	release := make(chan struct{})
	produce := func(context.Context) (*Record, error) {
		calls.Add(1)
		<-release
		r := NewRecord()
		r.Set("Location", "I am at an event today!")
		return r, nil
	}

	const n = 8
	var wg sync.WaitGroup
	results := make([]*Record, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = remember(context.Background(), ca, "op", testRememberKey, time.Minute, produce)
			if errs[i] == nil {
				results[i].IsAdoptableToday()
			}
		}(i)
	}

	waitForWaiters(t, ca, testRememberKey, n-1)
	close(release)
	wg.Wait()

	if c := calls.Load(); c != 1 {
		t.Errorf("producer called %d times, want 1", c)
	}
	seen := make(map[*Record]bool, n)
	for i, r := range results {
		if errs[i] != nil {
			t.Fatalf("caller %d: %v", i, errs[i])
		}
		if seen[r] {
			t.Errorf("caller %d got a record another caller also holds", i)
		}
		seen[r] = true
		if !r.Bool(AdoptableTodayField) {
			t.Errorf("caller %d: record = %v", i, r)
		}
	}
}

func TestRememberCoalescingCallerCancels(t *testing.T) {
	ca := newCoalescingAside()

	release := make(chan struct{})
	var producedCtxErr atomic.Value
	produce := func(ctx context.Context) (string, error) {
		<-release
		if err := ctx.Err(); err != nil {
			producedCtxErr.Store(err)
		}
		return "value", nil
	}

	leaderCtx, cancel := context.WithCancel(context.Background())
	leaderDone := make(chan error, 1)
	go func() {
		_, err := remember(leaderCtx, ca, "op", testRememberKey, time.Minute, produce)
		leaderDone <- err
	}()
	for !ca.group.InFlight(testRememberKey) {
		time.Sleep(time.Millisecond)
	}

	followerDone := make(chan string, 1)
	go func() {
		v, err := remember(context.Background(), ca, "op", testRememberKey, time.Minute, produce)
		if err != nil {
			t.Errorf("follower error: %v", err)
		}
		followerDone <- v
	}()
	waitForWaiters(t, ca, testRememberKey, 1)

	cancel()
	err := <-leaderDone
	if !errors.Is(err, context.Canceled) || !errors.Is(err, ErrTransport) {
		t.Errorf("leader error = %v, want TransportError wrapping context.Canceled", err)
	}

	close(release)
	if v := <-followerDone; v != "value" {
		t.Errorf("follower got %q, want value", v)
	}
	if err, ok := producedCtxErr.Load().(error); ok {
		t.Errorf("shared producer saw cancelled context: %v", err)
	}
	if _, ok, _ := ca.cache.Get(context.Background(), testRememberKey); !ok {
		t.Error("shared result not cached")
	}
}

func TestRememberCoalescingErrorNotCached(t *testing.T) {
	ca := newCoalescingAside()
	errBoom := errors.New("boom")

	_, err := remember(context.Background(), ca, "op", testRememberKey, time.Minute, func(context.Context) (string, error) {
		return "", errBoom
	})
	if !errors.Is(err, errBoom) {
		t.Fatalf("error = %v, want boom", err)
	}
	if _, ok, _ := ca.cache.Get(context.Background(), testRememberKey); ok {
		t.Error("failure was cached")
	}
}
