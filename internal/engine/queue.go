package engine

import "sync"

// mutationQueue is a thread-safe FIFO queue of sketch mutations.
//
// The queue is unbounded: an interactive caller may flood it with drag
// mutations faster than solves complete, and dropping or blocking either
// would make solve order depend on timing.
//
// A buffered size-1 signal channel lets the Run loop wait for work with
// context cancellation; multiple enqueues coalesce into one signal.
type mutationQueue struct {
	mu        sync.Mutex
	mutations []Mutation
	closed    bool
	signal    chan struct{}
}

func newMutationQueue() *mutationQueue {
	return &mutationQueue{
		mutations: make([]Mutation, 0, 64),
		signal:    make(chan struct{}, 1),
	}
}

// Enqueue appends a mutation. Safe from any goroutine. Returns false if
// the queue has been closed.
func (q *mutationQueue) Enqueue(m Mutation) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}
	q.mutations = append(q.mutations, m)

	select {
	case q.signal <- struct{}{}:
	default:
	}
	return true
}

// TryDequeue pops the front mutation without blocking.
func (q *mutationQueue) TryDequeue() (Mutation, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.mutations) == 0 {
		return Mutation{}, false
	}
	m := q.mutations[0]

	// Zero the slot so the backing array does not retain the mutation's
	// pointers until reallocation.
	q.mutations[0] = Mutation{}
	if len(q.mutations) == 1 {
		q.mutations = q.mutations[:0]
	} else {
		q.mutations = q.mutations[1:]
	}
	return m, true
}

// Wait returns the signal channel for select-based waiting. The channel
// closes when the queue closes, waking all waiters.
func (q *mutationQueue) Wait() <-chan struct{} {
	return q.signal
}

// Closed reports whether the queue has stopped accepting mutations.
func (q *mutationQueue) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

// Len returns the current queue depth.
func (q *mutationQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.mutations)
}

// Close stops accepting mutations and wakes any waiters.
func (q *mutationQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.signal)
}
