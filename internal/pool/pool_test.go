package pool

import (
	"context"
	"errors"
	"sort"
	"sync/atomic"
	"testing"
	"time"
)

func TestWorkers(t *testing.T) {
	tests := []struct {
		items, limit, want int
	}{
		{6, 5, 5},
		{3, 5, 3},
		{0, 5, 1},
		{10, 0, DefaultMaxWorkers},
		{8, 10, DefaultMaxWorkers},
	}
	for _, tt := range tests {
		if got := Workers(tt.items, tt.limit); got != tt.want {
			t.Errorf("Workers(%d, %d) = %d, want %d", tt.items, tt.limit, got, tt.want)
		}
	}
}

func TestRun_BoundsConcurrency(t *testing.T) {
	var inFlight, peak int32

	results := Run(context.Background(), 12, 3, func(ctx context.Context, i int) (int, error) {
		cur := atomic.AddInt32(&inFlight, 1)
		for {
			old := atomic.LoadInt32(&peak)
			if cur <= old || atomic.CompareAndSwapInt32(&peak, old, cur) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		return i * 10, nil
	})

	if len(results) != 12 {
		t.Fatalf("len(results) = %d, want 12", len(results))
	}
	if peak > 3 {
		t.Errorf("peak concurrency = %d, want <= 3", peak)
	}
	for _, r := range results {
		if r.Value != r.Index*10 {
			t.Errorf("result for index %d = %d, want %d", r.Index, r.Value, r.Index*10)
		}
	}
}

func TestRun_LimitAboveDefaultIsClamped(t *testing.T) {
	var inFlight, peak int32

	Run(context.Background(), 8, 10, func(ctx context.Context, i int) (int, error) {
		cur := atomic.AddInt32(&inFlight, 1)
		for {
			old := atomic.LoadInt32(&peak)
			if cur <= old || atomic.CompareAndSwapInt32(&peak, old, cur) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		return i, nil
	})

	if peak > DefaultMaxWorkers {
		t.Errorf("peak concurrency = %d, want <= %d", peak, DefaultMaxWorkers)
	}
}

func TestRun_FailuresAreIsolated(t *testing.T) {
	results := Run(context.Background(), 5, 5, func(ctx context.Context, i int) (string, error) {
		switch i {
		case 1:
			return "", errors.New("remote error")
		case 3:
			panic("unexpected")
		}
		return "ok", nil
	})

	if len(results) != 5 {
		t.Fatalf("len(results) = %d, want 5", len(results))
	}

	var failed []int
	for _, r := range results {
		if r.Err != nil {
			failed = append(failed, r.Index)
		}
	}
	sort.Ints(failed)
	if len(failed) != 2 || failed[0] != 1 || failed[1] != 3 {
		t.Errorf("failed indexes = %v, want [1 3]", failed)
	}
}

func TestRun_Empty(t *testing.T) {
	results := Run(context.Background(), 0, 5, func(ctx context.Context, i int) (int, error) {
		t.Fatal("task should not run")
		return 0, nil
	})
	if results != nil {
		t.Errorf("expected nil results, got %v", results)
	}
}
