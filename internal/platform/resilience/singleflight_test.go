package resilience

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestSingleFlight_Do_RunsOncePerKey(t *testing.T) {
	t.Parallel()

	var g SingleFlight
	var calls atomic.Int32

	const readers = 20
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(readers)

	for i := 0; i < readers; i++ {
		go func() {
			defer wg.Done()
			<-start
			value, err, _ := g.Do("prediction:7", func() (any, error) {
				calls.Add(1)
				time.Sleep(20 * time.Millisecond)
				return "loaded", nil
			})
			if err != nil {
				t.Errorf("singleflight call failed: %v", err)
			}
			if got, _ := value.(string); got != "loaded" {
				t.Errorf("unexpected shared value %v", value)
			}
		}()
	}

	close(start)
	wg.Wait()

	if got := calls.Load(); got != 1 {
		t.Fatalf("expected the loader to run once, got %d", got)
	}
}

func TestSingleFlight_Do_SeparateKeysDoNotShare(t *testing.T) {
	t.Parallel()

	var g SingleFlight
	var calls atomic.Int32

	load := func() (any, error) {
		calls.Add(1)
		return nil, nil
	}

	if _, err, shared := g.Do("prediction:1", load); err != nil || shared {
		t.Fatalf("first key: err=%v shared=%t", err, shared)
	}
	if _, err, shared := g.Do("prediction:2", load); err != nil || shared {
		t.Fatalf("second key: err=%v shared=%t", err, shared)
	}

	if got := calls.Load(); got != 2 {
		t.Fatalf("expected two independent runs, got %d", got)
	}
}
