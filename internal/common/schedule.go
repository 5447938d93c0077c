package common

import "time"

// A schedule is the wall clock cousin of the timed executor: the task runs
// once every time Execute is called after the due time, and the next due
// time is computed from the moment it ran
type Schedule struct {
	next func(time.Time) time.Time
	due  time.Time
	task func(time.Time)
}

func NewSchedule(now time.Time, next func(time.Time) time.Time, task func(time.Time)) Schedule {
	return Schedule{next: next, due: next(now), task: task}
}

func (s *Schedule) Execute(now time.Time) bool {
	if now.Before(s.due) {
		return false
	}
	s.due = s.next(now)
	s.task(now)
	return true
}

func (s *Schedule) Due() time.Time {
	return s.due
}
