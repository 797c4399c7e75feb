package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestStore_GetOrLoad_CollapsesConcurrentHealthReads(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	var calls atomic.Int32

	loader := func(context.Context) (any, error) {
		calls.Add(1)
		time.Sleep(20 * time.Millisecond)
		return "HEALTHY", nil
	}

	const workers = 32
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)
	errCh := make(chan error, workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			v, err := store.GetOrLoad(context.Background(), "quota-health", loader)
			if err != nil {
				errCh <- err
				return
			}
			if got, _ := v.(string); got != "HEALTHY" {
				errCh <- errUnexpectedValue
			}
		}()
	}

	close(start)
	wg.Wait()
	close(errCh)
	for err := range errCh {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if got := calls.Load(); got != 1 {
		t.Fatalf("loader called %d times, want 1", got)
	}
}

func TestStore_GetOrLoad_UsesCachedValueAfterFirstLoad(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	var calls atomic.Int32

	loader := func(context.Context) (any, error) {
		calls.Add(1)
		return "cached", nil
	}

	if _, err := store.GetOrLoad(context.Background(), "quota-usage", loader); err != nil {
		t.Fatalf("first GetOrLoad error: %v", err)
	}
	if _, err := store.GetOrLoad(context.Background(), "quota-usage", loader); err != nil {
		t.Fatalf("second GetOrLoad error: %v", err)
	}

	if got := calls.Load(); got != 1 {
		t.Fatalf("loader called %d times, want 1", got)
	}
}

func TestStore_ExpiredEntryIsMiss(t *testing.T) {
	t.Parallel()

	store := NewStore(10 * time.Millisecond)
	store.Set(context.Background(), "quota-health", "HEALTHY")

	if _, ok := store.Get(context.Background(), "quota-health"); !ok {
		t.Fatalf("expected hit before TTL expiry")
	}

	time.Sleep(25 * time.Millisecond)
	if _, ok := store.Get(context.Background(), "quota-health"); ok {
		t.Fatalf("expected miss after TTL expiry")
	}
}

var errUnexpectedValue = errors.New("unexpected loaded value")
