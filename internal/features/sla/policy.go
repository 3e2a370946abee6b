package sla

import (
	"fmt"
	"time"
)

// Policy maps a ticket priority to its resolution window.
type Policy struct {
	Priority       string        `json:"priority" yaml:"priority"`
	ResolutionTime time.Duration `json:"resolution_time" yaml:"resolution_time"`
}

// PolicyTable is keyed by priority.
type PolicyTable map[string]Policy

// DefaultPolicies is the built-in resolution table.
func DefaultPolicies() PolicyTable {
	return PolicyTable{
		"low":    {Priority: "low", ResolutionTime: 72 * time.Hour},
		"medium": {Priority: "medium", ResolutionTime: 48 * time.Hour},
		"high":   {Priority: "high", ResolutionTime: 24 * time.Hour},
		"urgent": {Priority: "urgent", ResolutionTime: 4 * time.Hour},
	}
}

// DeadlineFor returns createdAt plus the resolution window for priority.
func (t PolicyTable) DeadlineFor(priority string, createdAt time.Time) (time.Time, error) {
	p, ok := t[priority]
	if !ok {
		return time.Time{}, fmt.Errorf("no sla policy for priority %q", priority)
	}
	if p.ResolutionTime <= 0 {
		return time.Time{}, &DegenerateIntervalError{CreatedAt: createdAt, Deadline: createdAt.Add(p.ResolutionTime)}
	}
	return createdAt.Add(p.ResolutionTime), nil
}
