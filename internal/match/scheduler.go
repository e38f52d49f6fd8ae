package match

import (
	"container/heap"
	"time"

	"go.uber.org/zap"
)

// Clock reports virtual time; ManualClock implements it.
type Clock interface {
	Now() time.Duration
}

type task struct {
	at   time.Duration
	seq  uint64
	name string
	fn   func()
}

type taskQueue []*task

func (q taskQueue) Len() int { return len(q) }
func (q taskQueue) Less(i, j int) bool {
	if q[i].at != q[j].at {
		return q[i].at < q[j].at
	}
	return q[i].seq < q[j].seq
}
func (q taskQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *taskQueue) Push(x any)   { *q = append(*q, x.(*task)) }
func (q *taskQueue) Pop() any {
	old := *q
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return t
}

// Scheduler is a deferred-task queue keyed by virtual time and drained once
// per tick. Tasks never block and cannot be cancelled; each one re-checks
// its own precondition when it runs.
type Scheduler struct {
	clock Clock
	queue taskQueue
	seq   uint64
	log   *zap.Logger
}

func NewScheduler(clock Clock, log *zap.Logger) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Scheduler{clock: clock, log: log}
}

// After queues fn to run once delay has elapsed on the virtual clock.
func (s *Scheduler) After(delay time.Duration, name string, fn func()) {
	s.seq++
	heap.Push(&s.queue, &task{
		at:   s.clock.Now() + max(delay, 0),
		seq:  s.seq,
		name: name,
		fn:   fn,
	})
}

// RunDue runs every task due by now in (due time, insertion) order and
// returns how many ran. Tasks queued while draining wait for the next call.
// A panicking task is logged and skipped.
func (s *Scheduler) RunDue() int {
	now := s.clock.Now()
	limit := s.seq
	ran := 0
	for len(s.queue) > 0 {
		next := s.queue[0]
		if next.at > now || next.seq > limit {
			break
		}
		heap.Pop(&s.queue)
		s.run(next)
		ran++
	}
	return ran
}

func (s *Scheduler) run(t *task) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("scheduled task panicked", zap.String("task", t.name), zap.Any("panic", r))
		}
	}()
	t.fn()
}

// Len returns the number of queued tasks.
func (s *Scheduler) Len() int { return len(s.queue) }
