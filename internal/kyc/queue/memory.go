package queue

import (
	"container/heap"
	"context"
	"sync"
	"time"
)

// InMemoryQueue is a min-heap on DueAt. Tasks are lost on restart; the
// stuck-submission sweeper covers that.
type InMemoryQueue struct {
	mu    sync.Mutex
	tasks taskHeap
}

func NewInMemory() *InMemoryQueue {
	return &InMemoryQueue{}
}

func (q *InMemoryQueue) Enqueue(_ context.Context, task Task) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	heap.Push(&q.tasks, task)
	return nil
}

func (q *InMemoryQueue) Due(_ context.Context, now time.Time, limit int) ([]Task, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	var out []Task
	for q.tasks.Len() > 0 && !q.tasks[0].DueAt.After(now) {
		if limit > 0 && len(out) >= limit {
			break
		}
		out = append(out, heap.Pop(&q.tasks).(Task))
	}
	return out, nil
}

func (q *InMemoryQueue) Len(_ context.Context) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.tasks.Len(), nil
}

type taskHeap []Task

func (h taskHeap) Len() int           { return len(h) }
func (h taskHeap) Less(i, j int) bool { return h[i].DueAt.Before(h[j].DueAt) }
func (h taskHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *taskHeap) Push(x any) {
	*h = append(*h, x.(Task))
}

func (h *taskHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	*h = old[:n-1]
	return t
}
