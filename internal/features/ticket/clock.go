package ticket

import (
	"time"

	"go-crm-funnel/internal/features/sla"
)

// evaluationTime stops the clock when a ticket is finished.
func evaluationTime(t Ticket, now time.Time) (time.Time, bool) {
	if !t.Status.IsFinished() {
		return now, false
	}
	if t.ResolvedAt != nil {
		return *t.ResolvedAt, true
	}
	if t.ClosedAt != nil {
		return *t.ClosedAt, true
	}
	return now, false
}

// ComputeSLA evaluates the SLA clock for t at now.
func ComputeSLA(t Ticket, now time.Time) (SLAStatus, error) {
	at, stopped := evaluationTime(t, now)

	progress, err := sla.ProgressRatio(t.CreatedAt, t.SLADeadline, at)
	if err != nil {
		return SLAStatus{}, err
	}

	return SLAStatus{
		TicketID:         t.ID,
		Deadline:         t.SLADeadline,
		EvaluatedAt:      at,
		RemainingSeconds: int64(sla.Remaining(t.SLADeadline, at) / time.Second),
		Overdue:          sla.IsOverdue(t.SLADeadline, at),
		Progress:         progress,
		Breakdown:        sla.HumanizeRemaining(t.SLADeadline, at),
		Stopped:          stopped,
	}, nil
}
