package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcherDeliversTasks(t *testing.T) {
	got := make(chan int64, 2)
	d := NewDispatcher("test", func(ctx context.Context, task Task) error {
		got <- task.RequestID
		return nil
	}, 2, 4, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)
	defer d.Stop()

	require.NoError(t, d.Enqueue(7))
	require.NoError(t, d.Enqueue(8))

	seen := map[int64]bool{}
	for i := 0; i < 2; i++ {
		select {
		case id := <-got:
			seen[id] = true
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for task")
		}
	}
	assert.True(t, seen[7])
	assert.True(t, seen[8])
}

func TestDispatcherEnqueueBeforeStart(t *testing.T) {
	d := NewDispatcher("test", func(ctx context.Context, task Task) error { return nil }, 1, 1, nil)
	assert.Error(t, d.Enqueue(1))
}

func TestDispatcherStopWaitsForWorkers(t *testing.T) {
	done := make(chan struct{}, 1)
	d := NewDispatcher("test", func(ctx context.Context, task Task) error {
		time.Sleep(50 * time.Millisecond)
		done <- struct{}{}
		return nil
	}, 1, 1, nil)

	d.Start(context.Background())
	require.NoError(t, d.Enqueue(1))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("handler never ran")
	}
	d.Stop()
}
