// Package schedule decides when the driver rebalances. Policies are
// stateless predicates over calendar dates and are selected by name at
// configuration time.
package schedule

import (
	"fmt"
	"strings"
	"time"
)

// Scheduler reports whether a given calendar date is a rebalance date.
type Scheduler interface {
	IsDue(t time.Time) bool
}

var registry = make(map[string]Scheduler)

// Register makes a scheduler available under a name.
func Register(name string, s Scheduler) {
	registry[strings.ToLower(strings.TrimSpace(name))] = s
}

// ByName returns a registered scheduler.
func ByName(name string) (Scheduler, error) {
	s, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("schedule: unknown scheduler %q", name)
	}
	return s, nil
}

func init() {
	Register("end-of-month", EndOfMonth{})
	Register("daily", Daily{})
}

// EndOfMonth is due on the last business day (Monday through Friday, no
// holiday calendar) on or before the end of the calendar month.
type EndOfMonth struct{}

func (EndOfMonth) IsDue(t time.Time) bool {
	y, m, d := t.Date()
	last := lastBusinessDay(y, m, t.Location())
	ly, lm, ld := last.Date()
	return y == ly && m == lm && d == ld
}

func lastBusinessDay(year int, month time.Month, loc *time.Location) time.Time {
	// Day 0 of the next month is the last day of this one.
	d := time.Date(year, month+1, 0, 0, 0, 0, 0, loc)
	for d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
		d = d.AddDate(0, 0, -1)
	}
	return d
}

// Daily is due every day. Useful for demos and tests.
type Daily struct{}

func (Daily) IsDue(time.Time) bool { return true }
