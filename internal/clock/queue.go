package clock

import (
	"container/heap"
	"time"
)

type entry struct {
	handle Handle
	when   time.Time
	fn     func()
	index  int
}

// timerQueue is a min-heap ordered by due time, then by scheduling order.
type timerQueue []*entry

func (q timerQueue) Len() int { return len(q) }

func (q timerQueue) Less(i, j int) bool {
	if q[i].when.Equal(q[j].when) {
		return q[i].handle < q[j].handle
	}
	return q[i].when.Before(q[j].when)
}

func (q timerQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *timerQueue) Push(x any) {
	e := x.(*entry)
	e.index = len(*q)
	*q = append(*q, e)
}

func (q *timerQueue) Pop() any {
	old := *q
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	e.index = -1
	*q = old[:n-1]
	return e
}

// schedule holds the pending callbacks shared by Loop and Manual.
// Callers hold their own lock.
type schedule struct {
	queue   timerQueue
	entries map[Handle]*entry
	seq     Handle
}

func (s *schedule) add(when time.Time, fn func()) Handle {
	if s.entries == nil {
		s.entries = make(map[Handle]*entry)
	}
	s.seq++
	e := &entry{handle: s.seq, when: when, fn: fn}
	heap.Push(&s.queue, e)
	s.entries[e.handle] = e
	return e.handle
}

func (s *schedule) cancel(h Handle) bool {
	e, ok := s.entries[h]
	if !ok {
		return false
	}
	heap.Remove(&s.queue, e.index)
	delete(s.entries, h)
	return true
}

// popDue removes and returns the earliest entry due at or before now.
func (s *schedule) popDue(now time.Time) *entry {
	if len(s.queue) == 0 || s.queue[0].when.After(now) {
		return nil
	}
	e := heap.Pop(&s.queue).(*entry)
	delete(s.entries, e.handle)
	return e
}

// nextDue returns the due time of the earliest entry.
func (s *schedule) nextDue() (time.Time, bool) {
	if len(s.queue) == 0 {
		return time.Time{}, false
	}
	return s.queue[0].when, true
}

func (s *schedule) len() int {
	return len(s.queue)
}
