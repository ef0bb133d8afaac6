package worker

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestPool_RunsSubmittedTasks(t *testing.T) {
	p := NewPool(2, 8, zap.NewNop())

	var count int64
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		ok := p.Submit(func() {
			atomic.AddInt64(&count, 1)
			wg.Done()
		})
		assert.True(t, ok)
	}
	wg.Wait()
	p.Shutdown()

	assert.Equal(t, int64(8), atomic.LoadInt64(&count))
}

func TestPool_DropsWhenQueueFull(t *testing.T) {
	p := NewPool(1, 1, zap.NewNop())
	defer p.Shutdown()

	block := make(chan struct{})
	started := make(chan struct{})
	assert.True(t, p.Submit(func() {
		close(started)
		<-block
	}))
	<-started

	// Worker is busy; one slot in the queue, then drops.
	assert.True(t, p.Submit(func() {}))
	assert.False(t, p.Submit(func() {}))
	close(block)
}

func TestPool_ShutdownWaitsForInFlight(t *testing.T) {
	p := NewPool(1, 4, zap.NewNop())

	var done int32
	p.Submit(func() {
		time.Sleep(20 * time.Millisecond)
		atomic.StoreInt32(&done, 1)
	})
	p.Shutdown()

	assert.Equal(t, int32(1), atomic.LoadInt32(&done))
	assert.False(t, p.Submit(func() {}), "submits after shutdown must be rejected")
}

func TestPool_SurvivesPanickingTask(t *testing.T) {
	p := NewPool(1, 4, zap.NewNop())

	p.Submit(func() { panic("boom") })

	ran := make(chan struct{})
	p.Submit(func() { close(ran) })
	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("worker did not recover from panicking task")
	}
	p.Shutdown()
}
