package execution

import (
	"fmt"
	"testing"

	"github.com/fsplan/fsplan/pkg/fsplan/operations"
)

func makeOps(n int) []operations.Operation {
	ops := make([]operations.Operation, n)
	for i := range ops {
		ops[i] = operations.NewCreateFile(fmt.Sprintf("file-%d.txt", i), []byte("x"), operations.CreateFileOptions{})
	}
	return ops
}

func TestQueueFIFO(t *testing.T) {
	q := NewQueue()
	if !q.IsEmpty() || q.Size() != 0 {
		t.Error("new queue should be empty")
	}

	ops := makeOps(3)
	q.Enqueue(ops...)
	if q.Size() != 3 {
		t.Fatalf("Size = %d, want 3", q.Size())
	}

	for i := 0; i < 3; i++ {
		front, ok := q.Peek()
		if !ok || front != ops[i] {
			t.Fatalf("Peek at %d returned the wrong operation", i)
		}
		got, ok := q.Dequeue()
		if !ok || got != ops[i] {
			t.Fatalf("Dequeue at %d returned the wrong operation", i)
		}
	}

	if _, ok := q.Dequeue(); ok {
		t.Error("Dequeue on an empty queue should report false")
	}
	if _, ok := q.Peek(); ok {
		t.Error("Peek on an empty queue should report false")
	}
}

func TestQueueCompaction(t *testing.T) {
	q := NewQueue()
	ops := makeOps(100)
	q.Enqueue(ops...)
	for i := 0; i < 80; i++ {
		got, ok := q.Dequeue()
		if !ok || got != ops[i] {
			t.Fatalf("Dequeue at %d returned the wrong operation", i)
		}
	}
	if q.Size() != 20 {
		t.Fatalf("Size = %d, want 20", q.Size())
	}
	for i := 80; i < 100; i++ {
		got, ok := q.Dequeue()
		if !ok || got != ops[i] {
			t.Fatalf("Dequeue at %d returned the wrong operation after compaction", i)
		}
	}
}

func TestQueueClear(t *testing.T) {
	q := NewQueue()
	q.Enqueue(makeOps(5)...)
	q.Clear()
	if !q.IsEmpty() {
		t.Error("queue should be empty after Clear")
	}
}

func TestQueueRemove(t *testing.T) {
	q := NewQueue()
	ops := makeOps(4)
	q.Enqueue(ops...)

	got, ok := q.Remove(1)
	if !ok || got != ops[1] {
		t.Fatal("Remove(1) returned the wrong operation")
	}
	if q.Size() != 3 {
		t.Fatalf("Size = %d, want 3", q.Size())
	}

	want := []operations.Operation{ops[0], ops[2], ops[3]}
	for i, w := range want {
		got, ok := q.Dequeue()
		if !ok || got != w {
			t.Fatalf("Dequeue at %d returned the wrong operation after Remove", i)
		}
	}

	if _, ok := q.Remove(0); ok {
		t.Error("Remove on an empty queue should report false")
	}
	q.Enqueue(ops[0])
	if _, ok := q.Remove(-1); ok {
		t.Error("Remove with a negative index should report false")
	}
	if _, ok := q.Remove(5); ok {
		t.Error("Remove past the end should report false")
	}
}

func TestQueueRemoveAfterDequeue(t *testing.T) {
	q := NewQueue()
	ops := makeOps(4)
	q.Enqueue(ops...)
	if _, ok := q.Dequeue(); !ok {
		t.Fatal("Dequeue failed")
	}

	// Index 0 now refers to the new front.
	got, ok := q.Remove(0)
	if !ok || got != ops[1] {
		t.Fatal("Remove(0) should return the current front")
	}
}

func TestQueueOperationsSnapshot(t *testing.T) {
	q := NewQueue()
	ops := makeOps(2)
	q.Enqueue(ops...)

	snapshot := q.Operations()
	if len(snapshot) != 2 {
		t.Fatalf("snapshot length = %d, want 2", len(snapshot))
	}
	snapshot[0] = nil
	if front, _ := q.Peek(); front != ops[0] {
		t.Error("mutating the snapshot must not affect the queue")
	}
}
