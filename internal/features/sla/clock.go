// Package sla holds the time arithmetic behind ticket service levels. Every
// function is a pure view over its arguments; nothing here reads the wall
// clock or mutates a ticket.
package sla

import (
	"fmt"
	"math"
	"time"
)

// DegenerateIntervalError reports a deadline that is not strictly after the
// creation time. It signals bad data upstream and is never papered over.
type DegenerateIntervalError struct {
	CreatedAt time.Time
	Deadline  time.Time
}

func (e *DegenerateIntervalError) Error() string {
	return fmt.Sprintf("sla deadline %s is not after creation time %s",
		e.Deadline.Format(time.RFC3339), e.CreatedAt.Format(time.RFC3339))
}

// Remaining is deadline - now; negative once the deadline has passed.
func Remaining(deadline, now time.Time) time.Duration {
	return deadline.Sub(now)
}

// IsOverdue is strict: at exactly the deadline the ticket is still on time.
func IsOverdue(deadline, now time.Time) bool {
	return Remaining(deadline, now) < 0
}

// ProgressRatio is the elapsed share of the SLA window clamped to [0,1].
func ProgressRatio(createdAt, deadline, now time.Time) (float64, error) {
	total := deadline.Sub(createdAt)
	if total <= 0 {
		return 0, &DegenerateIntervalError{CreatedAt: createdAt, Deadline: deadline}
	}
	ratio := float64(now.Sub(createdAt)) / float64(total)
	switch {
	case ratio < 0:
		return 0, nil
	case ratio > 1:
		return 1, nil
	}
	return ratio, nil
}

// Breakdown is the display-neutral magnitude of the remaining time. Beyond a
// day it is expressed in days and hours (Minutes is 0); within a day in hours
// and minutes (Days is 0). When Overdue is set the magnitude is the time
// past the deadline.
type Breakdown struct {
	Overdue bool `json:"overdue"`
	Days    int  `json:"days"`
	Hours   int  `json:"hours"`
	Minutes int  `json:"minutes"`
}

// HumanizeRemaining splits |deadline - now| into the two-tier breakdown.
// Partial minutes are truncated.
func HumanizeRemaining(deadline, now time.Time) Breakdown {
	remaining := Remaining(deadline, now)
	b := Breakdown{Overdue: remaining < 0}
	switch {
	case remaining == math.MinInt64:
		// Sub saturates; negating the minimum would overflow
		remaining = math.MaxInt64
	case remaining < 0:
		remaining = -remaining
	}

	if remaining >= 24*time.Hour {
		b.Days = int(remaining / (24 * time.Hour))
		b.Hours = int((remaining % (24 * time.Hour)) / time.Hour)
		return b
	}
	b.Hours = int(remaining / time.Hour)
	b.Minutes = int((remaining % time.Hour) / time.Minute)
	return b
}
