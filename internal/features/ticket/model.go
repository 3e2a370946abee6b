package ticket

import (
	"time"

	"go-crm-funnel/internal/features/sla"
)

// TicketStatus represents the status of a ticket
type TicketStatus string

const (
	TicketStatusNew      TicketStatus = "NEW"
	TicketStatusOpen     TicketStatus = "OPEN"
	TicketStatusPending  TicketStatus = "PENDING"
	TicketStatusResolved TicketStatus = "RESOLVED"
	TicketStatusClosed   TicketStatus = "CLOSED"
)

var validStatuses = map[TicketStatus]bool{
	TicketStatusNew:      true,
	TicketStatusOpen:     true,
	TicketStatusPending:  true,
	TicketStatusResolved: true,
	TicketStatusClosed:   true,
}

// IsFinished reports whether the SLA clock has stopped for this status.
func (s TicketStatus) IsFinished() bool {
	return s == TicketStatusResolved || s == TicketStatusClosed
}

// TicketPriority represents the priority level of a ticket
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "low"
	TicketPriorityMedium TicketPriority = "medium"
	TicketPriorityHigh   TicketPriority = "high"
	TicketPriorityUrgent TicketPriority = "urgent"
)

// StatusHistoryEntry represents a status change in the ticket lifecycle
type StatusHistoryEntry struct {
	Status    TicketStatus `json:"status" bson:"status"`
	ChangedBy string       `json:"changed_by" bson:"changed_by"`
	ChangedAt time.Time    `json:"changed_at" bson:"changed_at"`
	Comment   string       `json:"comment,omitempty" bson:"comment,omitempty"`
}

// Ticket represents a customer support ticket
type Ticket struct {
	ID           string `json:"id" bson:"_id"`
	TicketNumber string `json:"ticket_number" bson:"ticket_number"`
	Subject      string `json:"subject" bson:"subject"`
	Description  string `json:"description" bson:"description"`

	// Priority & SLA
	Priority    TicketPriority `json:"priority" bson:"priority"`
	SLADeadline time.Time      `json:"sla_deadline" bson:"sla_deadline"`

	// Status Workflow
	Status        TicketStatus         `json:"status" bson:"status"`
	StatusHistory []StatusHistoryEntry `json:"status_history,omitempty" bson:"status_history,omitempty"`

	AssignedTo    string `json:"assigned_to,omitempty" bson:"assigned_to,omitempty"`
	CustomerEmail string `json:"customer_email" bson:"customer_email"`
	CustomerName  string `json:"customer_name" bson:"customer_name"`
	Category      string `json:"category,omitempty" bson:"category,omitempty"`

	Version int64 `json:"version" bson:"version"`

	// Timestamps
	CreatedAt  time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at" bson:"updated_at"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty" bson:"resolved_at,omitempty"`
	ClosedAt   *time.Time `json:"closed_at,omitempty" bson:"closed_at,omitempty"`
}

// SLAStatus is the SLA clock evaluated for one ticket.
type SLAStatus struct {
	TicketID         string        `json:"ticket_id"`
	Deadline         time.Time     `json:"deadline"`
	EvaluatedAt      time.Time     `json:"evaluated_at"`
	RemainingSeconds int64         `json:"remaining_seconds"`
	Overdue          bool          `json:"overdue"`
	Progress         float64       `json:"progress"`
	Breakdown        sla.Breakdown `json:"breakdown"`
	Stopped          bool          `json:"stopped"`
}

// TicketView is a ticket with its current SLA status.
type TicketView struct {
	Ticket
	SLA SLAStatus `json:"sla"`
}

// CreateTicketRequest is the body accepted when opening a ticket.
type CreateTicketRequest struct {
	Subject       string         `json:"subject"`
	Description   string         `json:"description"`
	Priority      TicketPriority `json:"priority"`
	AssignedTo    string         `json:"assigned_to"`
	CustomerEmail string         `json:"customer_email"`
	CustomerName  string         `json:"customer_name"`
	Category      string         `json:"category"`
}

// StatusUpdate moves a ticket through its workflow.
type StatusUpdate struct {
	Status          TicketStatus `json:"status"`
	Comment         string       `json:"comment,omitempty"`
	ExpectedVersion *int64       `json:"version,omitempty"`
}
