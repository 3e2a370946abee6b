package ticket

import (
	"time"

	"go-crm-funnel/internal/features/filter"
)

const (
	FacetStatus     = "status"
	FacetPriority   = "priority"
	FacetAssignedTo = "assigned_to"
)

var FacetNames = []string{FacetStatus, FacetPriority, FacetAssignedTo}

// TicketSchema searches subject, number and customer; the date range applies
// to the creation time.
var TicketSchema = filter.Schema[Ticket]{
	SearchFields: []func(Ticket) string{
		func(t Ticket) string { return t.TicketNumber },
		func(t Ticket) string { return t.Subject },
		func(t Ticket) string { return t.CustomerName },
		func(t Ticket) string { return t.CustomerEmail },
	},
	Facets: map[string]func(Ticket) string{
		FacetStatus:     func(t Ticket) string { return string(t.Status) },
		FacetPriority:   func(t Ticket) string { return string(t.Priority) },
		FacetAssignedTo: func(t Ticket) string { return t.AssignedTo },
	},
	Date: func(t Ticket) (time.Time, bool) {
		return t.CreatedAt, !t.CreatedAt.IsZero()
	},
}
