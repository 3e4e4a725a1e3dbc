package engine

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQueue_FIFO(t *testing.T) {
	q := newMutationQueue()

	q.Enqueue(Mutation{SketchID: "a"})
	q.Enqueue(Mutation{SketchID: "b"})
	q.Enqueue(Mutation{SketchID: "c"})

	for _, want := range []string{"a", "b", "c"} {
		m, ok := q.TryDequeue()
		assert.True(t, ok)
		assert.Equal(t, want, m.SketchID)
	}

	_, ok := q.TryDequeue()
	assert.False(t, ok, "drained queue should dequeue nothing")
}

func TestQueue_EnqueueSignals(t *testing.T) {
	q := newMutationQueue()

	q.Enqueue(Mutation{SketchID: "a"})

	select {
	case <-q.Wait():
	default:
		t.Fatal("enqueue should signal a waiter")
	}
}

func TestQueue_SignalCoalesces(t *testing.T) {
	q := newMutationQueue()

	// Many enqueues, at most one pending signal.
	for i := 0; i < 10; i++ {
		q.Enqueue(Mutation{SketchID: "a"})
	}

	<-q.Wait()
	select {
	case <-q.Wait():
		t.Fatal("signals should coalesce into one")
	default:
	}

	assert.Equal(t, 10, q.Len(), "coalescing must not lose mutations")
}

func TestQueue_CloseRejectsEnqueue(t *testing.T) {
	q := newMutationQueue()

	assert.True(t, q.Enqueue(Mutation{SketchID: "a"}))
	q.Close()
	assert.False(t, q.Enqueue(Mutation{SketchID: "b"}), "closed queue should reject")
	assert.True(t, q.Closed())

	// Already-queued work remains dequeueable after close.
	m, ok := q.TryDequeue()
	assert.True(t, ok)
	assert.Equal(t, "a", m.SketchID)
}

func TestQueue_CloseWakesWaiters(t *testing.T) {
	q := newMutationQueue()

	done := make(chan struct{})
	go func() {
		<-q.Wait()
		close(done)
	}()

	q.Close()
	<-done
}

func TestQueue_CloseIdempotent(t *testing.T) {
	q := newMutationQueue()
	q.Close()
	q.Close() // must not panic on double close
}

func TestQueue_ConcurrentEnqueue(t *testing.T) {
	q := newMutationQueue()
	const goroutines = 50
	const perGoroutine = 20

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perGoroutine; j++ {
				q.Enqueue(Mutation{SketchID: "x"})
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, goroutines*perGoroutine, q.Len())
}
