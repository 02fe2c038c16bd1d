// Package clock provides tick-driven game time and delayed tasks.
package clock

import "sort"

// Task is a scheduled callback. Cancel before it fires to drop it.
type Task struct {
	due       float64
	seq       uint64
	fn        func()
	cancelled bool
	fired     bool
}

// Cancel prevents the task from running. It reports whether the task was still pending.
func (t *Task) Cancel() bool {
	if t == nil || t.cancelled || t.fired {
		return false
	}
	t.cancelled = true
	return true
}

// Pending reports whether the task will still run.
func (t *Task) Pending() bool {
	return t != nil && !t.cancelled && !t.fired
}

// Scheduler runs callbacks after a delay measured in host ticks. It is not
// safe for concurrent use; the host advances it from its update loop.
type Scheduler struct {
	now   float64
	seq   uint64
	tasks []*Task
}

// NewScheduler returns a scheduler at time zero.
func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// Now returns the elapsed scheduler time in milliseconds.
func (s *Scheduler) Now() float64 {
	return s.now
}

// After schedules fn to run once delayMs from now.
func (s *Scheduler) After(delayMs float64, fn func()) *Task {
	if delayMs < 0 {
		delayMs = 0
	}
	s.seq++
	task := &Task{due: s.now + delayMs, seq: s.seq, fn: fn}
	s.tasks = append(s.tasks, task)
	return task
}

// Advance moves time forward and runs every task that became due, in due order.
// Tasks scheduled by a running task are considered in the same call.
func (s *Scheduler) Advance(deltaMs float64) {
	if deltaMs > 0 {
		s.now += deltaMs
	}
	for {
		task := s.nextDue()
		if task == nil {
			break
		}
		task.fired = true
		task.fn()
	}
	s.compact()
}

// CancelAll drops every pending task.
func (s *Scheduler) CancelAll() {
	for _, t := range s.tasks {
		t.Cancel()
	}
	s.tasks = nil
}

// Len returns the number of pending tasks.
func (s *Scheduler) Len() int {
	n := 0
	for _, t := range s.tasks {
		if t.Pending() {
			n++
		}
	}
	return n
}

func (s *Scheduler) nextDue() *Task {
	var next *Task
	for _, t := range s.tasks {
		if !t.Pending() || t.due > s.now {
			continue
		}
		if next == nil || t.due < next.due || (t.due == next.due && t.seq < next.seq) {
			next = t
		}
	}
	return next
}

func (s *Scheduler) compact() {
	kept := s.tasks[:0]
	for _, t := range s.tasks {
		if t.Pending() {
			kept = append(kept, t)
		}
	}
	for i := len(kept); i < len(s.tasks); i++ {
		s.tasks[i] = nil
	}
	s.tasks = kept
	sort.SliceStable(s.tasks, func(i, j int) bool { return s.tasks[i].due < s.tasks[j].due })
}
