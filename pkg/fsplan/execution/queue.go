package execution

import (
	"github.com/fsplan/fsplan/pkg/fsplan/operations"
)

// Queue is an ordered, insertion-order sequence of operations: a plain FIFO
// container with no validation of its contents. Insertion order is
// execution order. Enqueue and Dequeue are O(1) amortized via a head index
// over the backing slice; nothing is ever renumbered.
//
// A Queue is owned by its creator. The Processor works on a snapshot from
// Operations, so handing a queue to a run never consumes it.
type Queue struct {
	items []operations.Operation
	head  int
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Enqueue appends operations to the back of the queue.
func (q *Queue) Enqueue(ops ...operations.Operation) {
	q.items = append(q.items, ops...)
}

// Dequeue removes and returns the operation at the front of the queue.
func (q *Queue) Dequeue() (operations.Operation, bool) {
	if q.IsEmpty() {
		return nil, false
	}
	op := q.items[q.head]
	q.items[q.head] = nil
	q.head++
	if q.head > 32 && q.head*2 >= len(q.items) {
		q.items = append([]operations.Operation(nil), q.items[q.head:]...)
		q.head = 0
	}
	return op, true
}

// Peek returns the operation at the front without removing it.
func (q *Queue) Peek() (operations.Operation, bool) {
	if q.IsEmpty() {
		return nil, false
	}
	return q.items[q.head], true
}

// IsEmpty reports whether the queue holds no operations.
func (q *Queue) IsEmpty() bool {
	return q.head >= len(q.items)
}

// Size returns the number of queued operations.
func (q *Queue) Size() int {
	return len(q.items) - q.head
}

// Clear removes all operations.
func (q *Queue) Clear() {
	q.items = nil
	q.head = 0
}

// Remove removes and returns the operation at the given position, counted
// from the front of the queue.
func (q *Queue) Remove(index int) (operations.Operation, bool) {
	if index < 0 || index >= q.Size() {
		return nil, false
	}
	i := q.head + index
	op := q.items[i]
	q.items = append(q.items[:i], q.items[i+1:]...)
	return op, true
}

// Operations returns a snapshot copy of the queued operations in order.
func (q *Queue) Operations() []operations.Operation {
	ops := make([]operations.Operation, q.Size())
	copy(ops, q.items[q.head:])
	return ops
}
