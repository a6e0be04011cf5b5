package domain

import "time"

// Priority is a named urgency tier carrying the default SLA budget.
type Priority struct {
	ID                int64
	Key               string
	Name              string
	ResolutionMinutes int
	SortOrder         int
	CreatedAt         time.Time
}

// SLARule overrides the priority budget for one ticket type.
type SLARule struct {
	ID            int64
	PriorityID    int64
	TicketType    TicketType
	TargetMinutes int
}

// Area is the functional area a ticket belongs to.
type Area struct {
	ID        int64
	Key       string
	Name      string
	SortOrder int
}
