package queue

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func monday(n int) time.Time {
	return time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC).AddDate(0, 0, 7*n)
}

func TestInMemoryQueue_BasicOperations(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}

	job := Job{UserID: "alice", Week: monday(0)}
	if !q.Enqueue(ctx, job) {
		t.Error("expected enqueue to succeed")
	}

	if l := q.Len(ctx); l != 1 {
		t.Errorf("expected length 1, got %d", l)
	}

	jobChan := q.Dequeue(ctx)
	got := <-jobChan
	if got.UserID != "alice" || !got.Week.Equal(monday(0)) {
		t.Errorf("unexpected job %+v", got)
	}

	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}
}

func TestInMemoryQueue_Capacity(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if !q.Enqueue(ctx, Job{UserID: "u1", Week: monday(0)}) {
		t.Error("expected enqueue to succeed")
	}
	if !q.Enqueue(ctx, Job{UserID: "u2", Week: monday(0)}) {
		t.Error("expected enqueue to succeed")
	}

	if q.Enqueue(ctx, Job{UserID: "u3", Week: monday(0)}) {
		t.Error("expected enqueue to fail when full")
	}

	if l := q.Len(ctx); l != 2 {
		t.Errorf("expected length 2, got %d", l)
	}
}

func TestInMemoryQueue_CloseSemantics(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(4))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		q.Enqueue(ctx, Job{UserID: fmt.Sprintf("u%d", i), Week: monday(0)})
	}

	if err := q.Close(); err != nil {
		t.Fatalf("first close: %v", err)
	}
	if !q.IsClosed() {
		t.Error("expected queue to report closed")
	}
	if err := q.Close(); !errors.Is(err, ErrClosed) {
		t.Errorf("second close = %v, want ErrClosed", err)
	}

	if q.Enqueue(ctx, Job{UserID: "late", Week: monday(0)}) {
		t.Error("expected enqueue after close to fail")
	}

	// Queued jobs still drain, then the channel closes.
	drained := 0
	for range q.Dequeue(ctx) {
		drained++
	}
	if drained != 3 {
		t.Errorf("drained %d jobs, want 3", drained)
	}
}

func TestInMemoryQueue_ConcurrentAccess(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(1000))
	ctx := context.Background()
	numProducers := 10
	jobsEach := 100

	done := make(chan bool, numProducers)
	for i := 0; i < numProducers; i++ {
		go func(id int) {
			for j := 0; j < jobsEach; j++ {
				q.Enqueue(ctx, Job{
					UserID: fmt.Sprintf("user-%d-%d", id, j),
					Week:   monday(0),
				})
			}
			done <- true
		}(i)
	}

	received := make(chan Job, numProducers*jobsEach)
	go func() {
		for j := range q.Dequeue(ctx) {
			received <- j
		}
		close(received)
	}()

	for i := 0; i < numProducers; i++ {
		<-done
	}
	if err := q.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	count := 0
	for range received {
		count++
	}
	if count != numProducers*jobsEach {
		t.Errorf("received %d jobs, want %d", count, numProducers*jobsEach)
	}
}
