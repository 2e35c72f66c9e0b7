// Copyright 2025 The go-highway Authors. SPDX-License-Identifier: Apache-2.0

package workerpool

import (
	"runtime"
	"sync/atomic"
	"testing"
)

func TestNew(t *testing.T) {
	pool := New(4)
	defer pool.Close()

	if pool.NumWorkers() != 4 {
		t.Errorf("NumWorkers() = %d, want 4", pool.NumWorkers())
	}
}

func TestNewDefault(t *testing.T) {
	pool := New(0)
	defer pool.Close()

	if pool.NumWorkers() != runtime.GOMAXPROCS(0) {
		t.Errorf("NumWorkers() = %d, want %d", pool.NumWorkers(), runtime.GOMAXPROCS(0))
	}
}

func TestRunAll(t *testing.T) {
	pool := New(4)
	defer pool.Close()

	n := 16
	results := make([]int, n)
	tasks := make([]func(), n)
	for i := range tasks {
		i := i
		tasks[i] = func() { results[i] = i * 2 }
	}

	pool.RunAll(tasks)

	for i := 0; i < n; i++ {
		if results[i] != i*2 {
			t.Errorf("results[%d] = %d, want %d", i, results[i], i*2)
		}
	}
}

func TestRunAllSingleTask(t *testing.T) {
	pool := New(8)
	defer pool.Close()

	var count atomic.Int32
	pool.RunAll([]func(){func() { count.Add(1) }})

	if count.Load() != 1 {
		t.Errorf("count = %d, want 1", count.Load())
	}
}

func TestRunAllEmpty(t *testing.T) {
	pool := New(4)
	defer pool.Close()

	var called bool
	pool.RunAll(nil)
	if called {
		t.Error("RunAll with no tasks should not call anything")
	}
}

func TestCloseMultipleTimes(t *testing.T) {
	pool := New(4)
	pool.Close()
	pool.Close() // Should not panic
}

func TestClosedPoolFallback(t *testing.T) {
	pool := New(4)
	pool.Close()

	n := 16
	results := make([]int, n)
	tasks := make([]func(), n)
	for i := range tasks {
		i := i
		tasks[i] = func() { results[i] = i * 2 }
	}

	// Should still work (sequential fallback on the calling goroutine).
	pool.RunAll(tasks)

	for i := 0; i < n; i++ {
		if results[i] != i*2 {
			t.Errorf("results[%d] = %d, want %d", i, results[i], i*2)
		}
	}
}

func BenchmarkRunAll(b *testing.B) {
	pool := New(0) // Use GOMAXPROCS
	defer pool.Close()

	tasks := make([]func(), pool.NumWorkers())
	for i := range tasks {
		tasks[i] = func() {
			for j := 0; j < 1000; j++ {
				_ = j * j
			}
		}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		pool.RunAll(tasks)
	}
}
