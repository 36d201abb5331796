package testutil

import (
	"sort"
	"sync"
	"time"

	"github.com/ayoisaiah/studyblocks/timer"
)

// ManualScheduler is a timer.Scheduler driven by virtual time. Callbacks run
// on the goroutine that calls Advance or Tick.
type ManualScheduler struct {
	tasks []*task
	now   time.Duration
	seq   int
	mu    sync.Mutex
}

type task struct {
	f       func()
	at      time.Duration
	seq     int
	done    bool
	stopped bool
	mu      *sync.Mutex
}

func (t *task) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.done || t.stopped {
		return false
	}

	t.stopped = true

	return true
}

// NewManualScheduler returns a scheduler positioned at virtual time zero.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

// AfterFunc schedules f to run once virtual time has moved d forward.
func (s *ManualScheduler) AfterFunc(d time.Duration, f func()) timer.Stopper {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++

	t := &task{
		f:   f,
		at:  s.now + d,
		seq: s.seq,
		mu:  &s.mu,
	}

	s.tasks = append(s.tasks, t)

	return t
}

// Advance moves virtual time forward by d and runs every callback that
// falls due, including callbacks scheduled by earlier ones.
func (s *ManualScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.now + d
	s.mu.Unlock()

	for {
		t := s.next(target)
		if t == nil {
			break
		}

		t.f()
	}

	s.mu.Lock()
	s.now = target
	s.mu.Unlock()
}

// Tick advances virtual time by n engine ticks, one at a time.
func (s *ManualScheduler) Tick(n int) {
	for range n {
		s.Advance(timer.Tick)
	}
}

// Pending returns the number of callbacks waiting to run.
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int

	for _, t := range s.tasks {
		if !t.done && !t.stopped {
			n++
		}
	}

	return n
}

func (s *ManualScheduler) next(target time.Duration) *task {
	s.mu.Lock()
	defer s.mu.Unlock()

	live := s.tasks[:0]

	for _, t := range s.tasks {
		if !t.done && !t.stopped {
			live = append(live, t)
		}
	}

	s.tasks = live

	sort.SliceStable(s.tasks, func(i, j int) bool {
		if s.tasks[i].at == s.tasks[j].at {
			return s.tasks[i].seq < s.tasks[j].seq
		}

		return s.tasks[i].at < s.tasks[j].at
	})

	if len(s.tasks) == 0 || s.tasks[0].at > target {
		return nil
	}

	t := s.tasks[0]
	t.done = true
	s.now = t.at

	return t
}
