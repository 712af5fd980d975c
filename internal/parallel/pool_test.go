package parallel

import (
	"context"
	"testing"
	"time"
)

func TestEvaluateAllPreservesOrder(t *testing.T) {
	pool := NewWorkerPool(4)
	defer pool.Shutdown()

	items := []int{5, 1, 4, 2, 3}
	results := EvaluateAll(context.Background(), pool, items, func(_ context.Context, n int) (int, error) {
		time.Sleep(time.Duration(n) * time.Millisecond)
		return n * n, nil
	})

	for i, n := range items {
		if results[i].Err != nil {
			t.Fatalf("unexpected error at index %d: %v", i, results[i].Err)
		}
		if results[i].Value != n*n {
			t.Errorf("index %d: want %d, got %d", i, n*n, results[i].Value)
		}
	}
}

func TestEvaluateAllNilPoolFallsBackSequential(t *testing.T) {
	items := []int{1, 2, 3}
	results := EvaluateAll(context.Background(), nil, items, func(_ context.Context, n int) (int, error) {
		return n + 1, nil
	})
	for i, n := range items {
		if results[i].Value != n+1 {
			t.Errorf("index %d: want %d, got %d", i, n+1, results[i].Value)
		}
	}
}

func TestWorkerPoolShutdownIsIdempotent(t *testing.T) {
	pool := NewWorkerPool(2)
	pool.Shutdown()
	pool.Shutdown()

	if err := pool.Submit(context.Background(), func() {}); err != ErrPoolShutdown {
		t.Errorf("want ErrPoolShutdown after shutdown, got %v", err)
	}
}

func BenchmarkWorkerPool(b *testing.B) {
	pool := NewWorkerPool(4)
	defer pool.Shutdown()

	ctx := context.Background()

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			task := func() {
				time.Sleep(1 * time.Millisecond)
			}
			pool.Submit(ctx, task)
		}
	})
}
