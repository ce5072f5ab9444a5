package octree

// queue is a FIFO backed by a slice; popped slots are reclaimed when the queue drains.
type queue[T any] struct {
	items []T
	head  int
}

func (q *queue[T]) push(v T) {
	q.items = append(q.items, v)
}

func (q *queue[T]) pop() T {
	v := q.items[q.head]
	var zero T
	q.items[q.head] = zero
	q.head++
	if q.head == len(q.items) {
		q.items = q.items[:0]
		q.head = 0
	}
	return v
}

func (q *queue[T]) Len() int {
	return len(q.items) - q.head
}
