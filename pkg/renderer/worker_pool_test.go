package renderer

import (
	"sync/atomic"
	"testing"
)

func TestWorkerPool(t *testing.T) {
	var calls atomic.Int32
	pool := NewWorkerPool(3, 10, func(task TileTask) TileResult {
		calls.Add(1)
		return TileResult{TaskID: task.TaskID, Samples: task.TaskID * 2}
	})
	pool.Start()
	pool.Start() // idempotent

	for i := 0; i < 10; i++ {
		pool.SubmitTask(TileTask{TaskID: i})
	}

	seen := make(map[int]bool)
	total := 0
	for i := 0; i < 10; i++ {
		result, ok := pool.GetResult()
		if !ok {
			t.Fatal("Result queue closed early")
		}
		seen[result.TaskID] = true
		total += result.Samples
	}
	pool.Stop()

	if len(seen) != 10 {
		t.Errorf("Expected 10 distinct results, got %d", len(seen))
	}
	if total != 90 {
		t.Errorf("Expected sample total 90, got %d", total)
	}
	if calls.Load() != 10 {
		t.Errorf("Expected 10 render calls, got %d", calls.Load())
	}
	if pool.NumWorkers() != 3 {
		t.Errorf("Expected 3 workers, got %d", pool.NumWorkers())
	}
	if _, ok := pool.GetResult(); ok {
		t.Error("Expected result queue to be closed after Stop")
	}
}
